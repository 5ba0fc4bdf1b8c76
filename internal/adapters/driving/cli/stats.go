package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if harvestService == nil {
		return errors.New("harvest service not configured")
	}

	stats, err := harvestService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	cmd.Printf("Sources:  %d\n", stats.Sources)
	cmd.Printf("Items:    %d\n", stats.Items)
	cmd.Printf("Chunks:   %d\n", stats.Chunks)
	cmd.Printf("Embedded: %d\n", stats.Embedded)
	return nil
}
