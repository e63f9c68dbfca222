package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/c360studio/sparqlassist/endpoints"
	"github.com/c360studio/sparqlassist/schema"
)

func newSchemaCmd() *cobra.Command {
	var refresh bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "schema <endpoint-url>",
		Short: "Fetch and display the VoID-derived schema of an endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			endpoint := args[0]

			cache := schema.NewCache(schema.NewProvider(),
				schema.WithMaxAge(cfg.Schema.MaxAge))

			var dict schema.Dict
			if refresh {
				dict, err = cache.Refresh(cmd.Context(), endpoint)
			} else {
				dict, err = cache.Schema(cmd.Context(), endpoint)
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dict)
			}

			label := endpoint
			if catalog, err := endpoints.Load(cfg.Endpoints.CatalogPath); err == nil {
				label = endpointLabel(catalog, endpoint)
			}

			classes := dict.Classes()
			sort.Strings(classes)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d classes\n\n", label, len(classes))
			for _, class := range classes {
				preds := dict.Predicates(class)
				sort.Strings(preds)
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d predicates)\n", class, len(preds))
				for _, pred := range preds {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s -> %v\n", pred, dict[class][pred])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and refetch")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw schema dictionary as JSON")
	return cmd
}

// endpointLabel prefixes a URL with its catalog name when the catalog knows
// the endpoint.
func endpointLabel(catalog *endpoints.Catalog, url string) string {
	if ep, ok := catalog.ByURL(url); ok {
		return fmt.Sprintf("%s (%s)", ep.Name, url)
	}
	return url
}
