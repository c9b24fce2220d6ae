package main

import (
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch feeds and build artifacts in one run",
	Long:  "Runs fetch followed by build, the normal daily invocation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		resume, _ := cmd.Flags().GetBool("resume")
		applyFetchFlags(cmd)
		applyBuildFlags(cmd)

		cp, err := runFetch(cmd.Context(), resume)
		if err != nil {
			return err
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
	syncCmd.Flags().Bool("resume", false, "resume from an incomplete checkpoint")
	syncCmd.Flags().Int("max-pages", 0, "override per-feed page cap")
	syncCmd.Flags().Int("page-delay", 0, "override page delay in milliseconds")
	syncCmd.Flags().Bool("classify", false, "enable the paid LLM classification pass")
	syncCmd.Flags().String("out-dir", "", "override the artifact data directory")
	rootCmd.AddCommand(syncCmd)
}
