package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sportzvillage/svassist/internal/chatlog"
	"github.com/sportzvillage/svassist/internal/logging"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Aggregate the chat logs into a usage and cost report",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Analytics only needs the logs, not embeddings or the
		// vector store, so skip the full stack.
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logging.Nop()
		if verbose {
			if log, err = logging.New("dev"); err != nil {
				return err
			}
		}

		chatLog, err := chatlog.New(cfg.LogDir, log)
		if err != nil {
			return fmt.Errorf("opening chat log: %w", err)
		}

		stats, err := chatLog.Analytics(pricingTiers(cfg))
		if err != nil {
			return fmt.Errorf("computing analytics: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
}
