package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearHistory bool

// historyCmd shows the lines saved by interactive sessions.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the saved shell history.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}

		if clearHistory {
			return config.ClearHistory()
		}

		entries, err := config.HistoryEntries()
		if err != nil {
			return err
		}
		for i, line := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", i, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolVar(&clearHistory, "clear", false, "delete every saved entry")
}
