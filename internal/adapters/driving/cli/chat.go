package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/distillyzer/dz-cli/internal/adapters/driving/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat over the harvested catalog",
	Long: `Opens an interactive chat session. Each question is answered from
the catalog with conversational grounding from prior turns. History is
windowed; old turns fall off once the session cap is reached.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured: set embedding and llm API keys")
	}

	if err := chat.Run(queryService, settings.SessionCap, settings.RetrieveK); err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	return nil
}
