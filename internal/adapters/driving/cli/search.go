package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [topic]",
	Short: "Search YouTube for harvest candidates",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if harvestService == nil {
		return errors.New("harvest service not configured")
	}

	query := strings.Join(args, " ")
	videos, err := harvestService.SearchVideos(cmd.Context(), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printVideoTable(cmd, videos)
	return nil
}

// printVideoTable renders videos as an indexed table with durations.
func printVideoTable(cmd *cobra.Command, videos []driven.VideoInfo) {
	if len(videos) == 0 {
		cmd.Println("No videos found.")
		return
	}

	for i, v := range videos {
		cmd.Printf("  [%d] %s (%s)\n", i+1, v.Title, domain.FormatTimestamp(v.Duration))
		cmd.Printf("      %s\n", v.Channel)
		cmd.Printf("      %s\n", v.URL)
		cmd.Println()
	}
}
