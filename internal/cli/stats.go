package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"lingo-trainer/internal/analytics"
	"lingo-trainer/internal/config"

	"github.com/spf13/cobra"
)

// NewStatsCmd prints progress analytics from the configured store.
func NewStatsCmd(configPath *string) *cobra.Command {
	var (
		granularity string
		window      int
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print streak, achievements and activity from stored attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := analytics.ParseGranularity(granularity)
			if err != nil {
				return err
			}
			return runStats(cmd.Context(), *configPath, g, window, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&granularity, "granularity", string(analytics.Daily), "daily, weekly or monthly")
	cmd.Flags().IntVar(&window, "window", 0, "number of periods (0 uses the granularity default)")
	return cmd
}

func runStats(ctx context.Context, configPath string, g analytics.Granularity, window int, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := setupLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	rt, err := newRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	summary := rt.progress.Summary(ctx)
	fmt.Fprintf(out, "streak: %d day(s)\n", summary.Streak)
	fmt.Fprintf(out, "quizzes completed: %d\n", summary.QuizzesCompleted)
	fmt.Fprintf(out, "words mastered: %d\n", summary.WordsMastered)
	fmt.Fprintf(out, "accuracy (last %d days): %d%%\n\n", analytics.DefaultDays, summary.Accuracy)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACHIEVEMENT\tUNLOCKED")
	for _, a := range rt.progress.AchievementStates(ctx) {
		fmt.Fprintf(tw, "%s\t%t\n", a.Title, a.Unlocked)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	series := rt.progress.ActivitySeries(ctx, g, window)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tSESSIONS\tCORRECT\tTOTAL")
	for _, p := range series.Points {
		fmt.Fprintf(tw, "%s (%s)\t%d\t%d\t%d\n", p.Label, p.Date, p.Sessions, p.Correct, p.Total)
	}
	fmt.Fprintf(tw, "average accuracy\t\t\t%d%%\n", series.AverageAccuracy)
	return tw.Flush()
}
