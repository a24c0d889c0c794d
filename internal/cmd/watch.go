package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/splitlease/parity/internal/scheduler"
)

const e2eJob = "e2e"

// NewWatchCommand creates the 'parity watch' command
func NewWatchCommand(flags *globalFlags) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the e2e click-through on a schedule",
		Long: `Run the e2e click-through on schedule.cron in schedule.timezone until
interrupted. Every run is recorded in the history like 'parity e2e'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.setup()
			if err != nil {
				return err
			}
			defer a.close()

			return watch(cmd.Context(), a, now, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "run once immediately before waiting for the schedule")

	return cmd
}

func watch(ctx context.Context, a *app, now bool, output io.Writer) error {
	s, err := scheduler.New(ctx, a.cfg.Schedule.Timezone, a.log)
	if err != nil {
		return err
	}

	job := func(ctx context.Context) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := runE2E(ctx, a, st, output)
		if err != nil {
			return err
		}
		if !res.Passed() {
			return fmt.Errorf("%w: %s", ErrChecksFailed, *res.Error)
		}
		return nil
	}

	if err := s.AddJob(e2eJob, a.cfg.Schedule.Cron, job); err != nil {
		return err
	}

	if now {
		if err := s.RunNow(ctx, e2eJob, job); err != nil {
			a.log.Error("job failed", zap.String("job", e2eJob), zap.Error(err))
		}
	}

	s.Start()
	for _, j := range s.ListJobs() {
		a.log.Info("next run", zap.String("job", j.Name), zap.Time("at", j.NextRun))
	}

	<-ctx.Done()
	<-s.Stop().Done()
	return nil
}
