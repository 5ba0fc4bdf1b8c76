package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest [url]",
	Short: "Ingest a video, article or repository into the catalog",
	Long: `Detects the content kind from the URL. YouTube videos are
transcribed, articles are extracted, GitHub repositories contribute
their documentation files. Content is chunked, embedded and indexed.`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	if harvestService == nil {
		return errors.New("harvest service not configured")
	}

	result, err := harvestService.Harvest(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}

	if result.AlreadyExists {
		cmd.Printf("Already harvested: %s\n", result.Item.Title)
		return nil
	}

	if result.Items > 1 {
		cmd.Printf("Harvested %d documents (%d chunks)\n", result.Items, result.Chunks)
	} else {
		cmd.Printf("Harvested: %s (%d chunks)\n", result.Item.Title, result.Chunks)
	}
	return nil
}
