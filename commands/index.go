package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var search string
	var k int

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the retrieval corpus and optionally test a search",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			st, err := buildStack(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents.\n", st.index.Len())

			if search != "" {
				hits := st.index.Search(search, k)
				if len(hits) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
					return nil
				}
				for _, hit := range hits {
					fmt.Fprintf(cmd.OutOrStdout(), "%6.3f  %s", hit.Score, hit.Document.Title)
					if hit.Document.Endpoint != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "  (%s)", hit.Document.Endpoint)
					}
					fmt.Fprintln(cmd.OutOrStdout())
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "run a test retrieval over the index")
	cmd.Flags().IntVar(&k, "k", 5, "number of results for --search")
	return cmd
}
