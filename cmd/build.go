package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/checkpoint"
	"github.com/photon-dotcom/brandswitch/internal/model"
	"github.com/photon-dotcom/brandswitch/internal/pipeline"
	"github.com/photon-dotcom/brandswitch/pkg/anthropic"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build catalog artifacts from fetched records",
	Long: `Runs the enrichment pipeline over the records accumulated by a
completed fetch: normalization, deduplication, junk filtering, logo
resolution, category assignment, slugs, similarity and artifact output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyBuildFlags(cmd)

		cp, err := checkpoint.Load(checkpointPath())
		if err != nil {
			return err
		}
		if cp == nil {
			return eris.New("build: no checkpoint found, run fetch first")
		}
		if !cp.Complete() {
			return eris.New("build: checkpoint is incomplete, finish the fetch with fetch --resume")
		}

		result, err := runBuild(cmd.Context(), cp)
		if err != nil {
			return err
		}

		printBuildResult(result)
		return nil
	},
}

func init() {
	buildCmd.Flags().Bool("classify", false, "enable the paid LLM classification pass")
	buildCmd.Flags().String("out-dir", "", "override the artifact data directory")
	rootCmd.AddCommand(buildCmd)
}

func applyBuildFlags(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetBool("classify"); v {
		cfg.Classify.Enabled = true
	}
	if v, _ := cmd.Flags().GetString("out-dir"); v != "" {
		cfg.Output.DataDir = v
	}
}

// runBuild wires the pipeline dependencies and executes the build stages.
func runBuild(ctx context.Context, cp *model.Checkpoint) (*pipeline.BuildResult, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck

	var aiClient anthropic.Client
	if cfg.Classify.Enabled {
		if cfg.Classify.Key == "" {
			return nil, eris.New("build: classification enabled but no API key configured (BRANDSWITCH_CLASSIFY_KEY)")
		}
		aiClient = anthropic.NewClient(cfg.Classify.Key)
	}

	zap.L().Info("starting build",
		zap.Int("records", len(cp.Records)),
		zap.Strings("markets", cfg.Markets),
		zap.Bool("classify", cfg.Classify.Enabled),
	)
	return pipeline.New(cfg, st, aiClient).Build(ctx, cp)
}

func printBuildResult(result *pipeline.BuildResult) {
	markets := make([]string, 0, len(result.Markets))
	for m := range result.Markets {
		markets = append(markets, m)
	}
	sort.Strings(markets)

	for _, m := range markets {
		c := result.Markets[m]
		fmt.Printf("%s: %d brands (%d flagged, %d uncategorized)\n",
			m, c.Brands, c.Flagged, c.Uncategorized)
	}
}
