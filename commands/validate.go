package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate the SPARQL blocks of a markdown file (or stdin)",
		Long: `Reads markdown containing fenced sparql blocks annotated with
"#+ endpoint: <URL>" and validates each query against that endpoint's
schema. Exits non-zero when any query fails validation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content []byte
			var err error
			if len(args) == 1 && args[0] != "-" {
				content, err = os.ReadFile(args[0])
			} else {
				content, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := buildStack(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}

			results := st.validator.ValidateMessage(cmd.Context(), string(content))
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No annotated SPARQL blocks found.")
				return nil
			}

			failed := 0
			for i, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "Query %d (%s): ", i+1, r.EndpointURL)
				if r.Valid() {
					fmt.Fprintln(cmd.OutOrStdout(), "ok")
					continue
				}
				failed++
				fmt.Fprintln(cmd.OutOrStdout(), "FAILED")
				for _, issue := range r.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", issue)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d queries failed validation", failed, len(results))
			}
			return nil
		},
	}
	return cmd
}
