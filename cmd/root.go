package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "brandswitch",
	Short: "Brand catalog ingestion and enrichment pipeline",
	Long:  "Fetches affiliate feed listings, normalizes and deduplicates them, resolves logos, assigns categories and writes the per-market catalog artifacts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
