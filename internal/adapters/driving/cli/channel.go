package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var channelLimit int

var channelCmd = &cobra.Command{
	Use:   "channel [url]",
	Short: "List a channel's recent videos",
	Args:  cobra.ExactArgs(1),
	RunE:  runChannel,
}

func init() {
	channelCmd.Flags().IntVarP(&channelLimit, "limit", "n", 10, "maximum number of videos")
	rootCmd.AddCommand(channelCmd)
}

func runChannel(cmd *cobra.Command, args []string) error {
	if harvestService == nil {
		return errors.New("harvest service not configured")
	}

	videos, err := harvestService.ListChannel(cmd.Context(), args[0], channelLimit)
	if err != nil {
		return fmt.Errorf("listing channel failed: %w", err)
	}

	printVideoTable(cmd, videos)
	return nil
}
