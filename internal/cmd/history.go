package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/splitlease/parity/internal/e2e"
	"github.com/splitlease/parity/internal/store"
)

// NewHistoryCommand creates the 'parity history' command
func NewHistoryCommand(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs, or the artifacts of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if len(args) == 1 {
				return showRunWithOutput(st, args[0], cmd.OutOrStdout())
			}
			return historyWithOutput(st, limit, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")

	return cmd
}

func historyWithOutput(st *store.Store, limit int, output io.Writer) error {
	runs, err := st.RecentRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(output, "No runs recorded yet")
		return nil
	}

	tw := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tSTARTED\tDURATION\tTARGET")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Kind, statusText(r.Status),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration(r), r.Target)
	}
	return tw.Flush()
}

func showRunWithOutput(st *store.Store, id string, output io.Writer) error {
	run, err := st.GetRun(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Run:     %s\n", run.ID)
	fmt.Fprintf(output, "Kind:    %s\n", run.Kind)
	fmt.Fprintf(output, "Target:  %s\n", run.Target)
	fmt.Fprintf(output, "Status:  %s\n", statusText(run.Status))
	fmt.Fprintf(output, "Started: %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if run.Error != "" {
		fmt.Fprintf(output, "Error:   %s\n", run.Error)
	}

	artifacts, err := st.Artifacts(run.ID)
	if err != nil {
		return fmt.Errorf("failed to list artifacts: %w", err)
	}
	if len(artifacts) == 0 {
		return nil
	}

	fmt.Fprintln(output, "\nArtifacts:")
	for _, art := range artifacts {
		fmt.Fprintf(output, "  %-10s %s\n", art.Kind, art.Path)
	}

	for _, art := range artifacts {
		if art.Kind == store.ArtifactResult {
			printResult(output, art.Path)
		}
	}
	return nil
}

// printResult lists the steps and warnings of a saved e2e result
func printResult(w io.Writer, path string) {
	res, err := store.LoadJSON[e2e.Result](path)
	if err != nil {
		color.New(color.FgYellow).Fprintf(w, "\n%v\n", err)
		return
	}

	fmt.Fprintln(w, "\nSteps:")
	for _, s := range res.StepsCompleted {
		fmt.Fprintf(w, "  %s\n", s)
	}
	if res.Structure != nil {
		total := len(res.Structure.Results())
		fmt.Fprintf(w, "\nStructure: %d/%d checks passed\n", total-len(res.Structure.Failed()), total)
		for _, label := range res.Structure.Failed() {
			fmt.Fprintf(w, "  [FAIL]: %s\n", label)
		}
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warn := range res.Warnings {
			fmt.Fprintf(w, "  %s\n", warn)
		}
	}
}

func statusText(s store.Status) string {
	switch s {
	case store.StatusPassed:
		return color.GreenString(string(s))
	case store.StatusFailed:
		return color.RedString(string(s))
	default:
		return color.YellowString(string(s))
	}
}

func duration(r store.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
}
