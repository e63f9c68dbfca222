package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	// Register LLM providers via init()
	_ "github.com/c360studio/sparqlassist/llm/providers"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question and get validated SPARQL back",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			st, err := buildStack(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")
			answer, err := st.assistant.Ask(cmd.Context(), question)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), answer.Message)

			if !answer.Valid() {
				fmt.Fprintf(cmd.ErrOrStderr(),
					"\nWarning: validation issues remain after %d attempt(s):\n", answer.Attempts)
				for _, v := range answer.Validations {
					for _, issue := range v.Errors {
						fmt.Fprintf(cmd.ErrOrStderr(), "  - [%s] %s\n", v.EndpointURL, issue)
					}
				}
			}
			return nil
		},
	}
	return cmd
}
