package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/sparqlassist/endpoints"
)

func newEndpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List the configured SPARQL endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			catalog, err := endpoints.Load(cfg.Endpoints.CatalogPath)
			if err != nil {
				return err
			}

			for _, ep := range catalog.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n  %s\n", ep.Name, ep.URL)
				if ep.Description != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", ep.Description)
				}
			}
			return nil
		},
	}
}
