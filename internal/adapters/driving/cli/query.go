package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

var querySources int

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question against the harvested catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&querySources, "sources", "s", 0, "number of chunks to retrieve (default from config)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured: set embedding and llm API keys")
	}

	k := querySources
	if k <= 0 {
		k = settings.RetrieveK
	}

	question := strings.Join(args, " ")
	answer, err := queryService.Ask(cmd.Context(), question, k)
	if err != nil {
		if errors.Is(err, domain.ErrNoResults) {
			cmd.Println("Nothing relevant in the catalog. Harvest some sources first.")
			return nil
		}
		return fmt.Errorf("query failed: %w", err)
	}

	printAnswer(cmd, answer)
	return nil
}

// printAnswer renders the answer text followed by its citations.
func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)

	if len(answer.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, c := range answer.Citations {
			cmd.Printf("  [%d] %s\n", c.Index, c.Label())
		}
	}

	if answer.TokensUsed > 0 {
		cmd.Println()
		cmd.Printf("Tokens used: %d\n", answer.TokensUsed)
	}
}
