package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/checkpoint"
	"github.com/photon-dotcom/brandswitch/internal/feed"
	"github.com/photon-dotcom/brandswitch/internal/model"
	"github.com/photon-dotcom/brandswitch/internal/resilience"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch raw listings from all configured feeds",
	Long: `Pages through every configured feed and accumulates the raw records
into the checkpoint file. Use --resume to continue an interrupted fetch from
the last checkpoint instead of starting over.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resume, _ := cmd.Flags().GetBool("resume")
		applyFetchFlags(cmd)

		cp, err := runFetch(cmd.Context(), resume)
		if err != nil {
			return err
		}

		fmt.Printf("Fetched %d records from %d feeds\n", len(cp.Records), len(cp.Feeds))
		return nil
	},
}

func init() {
	fetchCmd.Flags().Bool("resume", false, "resume from an incomplete checkpoint")
	fetchCmd.Flags().Int("max-pages", 0, "override per-feed page cap")
	fetchCmd.Flags().Int("page-delay", 0, "override page delay in milliseconds")
	rootCmd.AddCommand(fetchCmd)
}

// applyFetchFlags folds command-line overrides into the loaded config.
func applyFetchFlags(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetInt("max-pages"); v > 0 {
		cfg.Fetch.MaxPages = v
	}
	if v, _ := cmd.Flags().GetInt("page-delay"); v > 0 {
		cfg.Fetch.PageDelayMillis = v
	}
}

func checkpointPath() string {
	return filepath.Join(cfg.Output.DataDir, checkpoint.FileName)
}

// runFetch drives the feed orchestrator with the current config.
func runFetch(ctx context.Context, resume bool) (*model.Checkpoint, error) {
	log := zap.L().With(zap.String("command", "fetch"))

	client := feed.NewClient(feed.ClientOptions{
		PageSize: cfg.Fetch.PageSize,
		Timeout:  time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		Retry:    resilience.DefaultRetryConfig(),
	})

	orch := feed.NewOrchestrator(client, cfg.Feeds, feed.OrchestratorOptions{
		MaxPages:           cfg.Fetch.MaxPages,
		PageDelay:          time.Duration(cfg.Fetch.PageDelayMillis) * time.Millisecond,
		CheckpointInterval: cfg.Fetch.CheckpointInterval,
		CheckpointPath:     checkpointPath(),
	})

	log.Info("starting fetch",
		zap.Int("feeds", len(cfg.Feeds)),
		zap.Bool("resume", resume),
	)
	return orch.Run(ctx, resume)
}
