package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/photon-dotcom/brandswitch/internal/checkpoint"
	"github.com/photon-dotcom/brandswitch/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show fetch checkpoint progress",
	Long:  "Displays per-feed fetch progress from the current checkpoint file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cp, err := checkpoint.Load(checkpointPath())
		if err != nil {
			return err
		}
		if cp == nil {
			fmt.Println("No checkpoint found, run 'fetch' to start a sync")
			return nil
		}

		formatCheckpoint(os.Stdout, cp)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func formatCheckpoint(out io.Writer, cp *model.Checkpoint) {
	state := "in progress"
	if cp.Complete() {
		state = "complete"
	}
	_, _ = fmt.Fprintf(out, "Run started %s (%s), %d records\n\n",
		cp.StartedAt.Format("2006-01-02 15:04"), state, len(cp.Records))

	names := make([]string, 0, len(cp.Feeds))
	for name := range cp.Feeds {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FEED\tSTATE\tLAST PAGE\tTOTAL PAGES")
	_, _ = fmt.Fprintln(w, "----\t-----\t---------\t-----------")
	for _, name := range names {
		p := cp.Feeds[name]
		total := "-"
		if p.TotalPages > 0 {
			total = fmt.Sprintf("%d", p.TotalPages)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", name, p.State, p.LastPage, total)
	}
	_ = w.Flush()
}
