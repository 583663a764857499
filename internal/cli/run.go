package cli

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ygrebnov/batch/internal/jobs"
	"github.com/ygrebnov/batch/metrics"
)

// ErrJobsFailed is returned when at least one job did not succeed.
var ErrJobsFailed = errors.New("one or more jobs failed")

type runOptions struct {
	file          string
	concurrency   int
	timeout       time.Duration
	keepGoing     bool
	cancelOnError bool
	metricsFile   string
	showOutput    bool
}

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every job of a job file",
		Long: `Runs the commands listed in a YAML job file, at most --concurrency at a time.

Without --keep-going the first failing job stops the run. Flags override the
corresponding job file settings.`,
		Example: `  # Run with the settings of the file
  batchrun run -f jobs.yaml

  # Run everything, four at a time, each bounded to one minute
  batchrun run -f jobs.yaml --keep-going --concurrency 4 --timeout 1m`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJobs(cmd, o)
		},
	}

	cmd.Flags().StringVarP(&o.file, "file", "f", "", "job file (YAML)")
	cmd.Flags().IntVar(&o.concurrency, "concurrency", 0, "maximum number of jobs running at once")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "per-job timeout (0 = none)")
	cmd.Flags().BoolVar(&o.keepGoing, "keep-going", false, "run every job even if some fail")
	cmd.Flags().BoolVar(&o.cancelOnError, "cancel-on-error", false, "kill running jobs on the first failure")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	cmd.Flags().BoolVar(&o.showOutput, "output", false, "print the output of failed jobs")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runJobs(cmd *cobra.Command, o runOptions) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	file, err := jobs.Load(o.file)
	if err != nil {
		return err
	}
	applyOverrides(cmd, file, o)
	if err := file.Validate(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	runner := jobs.NewRunner(logger, metrics.NewPrometheusProvider(reg))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("running jobs",
		zap.String("file", o.file),
		zap.Int("jobs", len(file.Jobs)),
		zap.Int("concurrency", file.Concurrency),
		zap.Duration("timeout", file.Timeout),
		zap.Bool("keep_going", file.KeepGoing),
	)

	sum, runErr := runner.Run(ctx, file)
	printSummary(cmd.OutOrStdout(), sum, o.showOutput)

	if o.metricsFile != "" {
		if err := prometheus.WriteToTextfile(o.metricsFile, reg); err != nil {
			logger.Error("failed to write metrics", zap.String("path", o.metricsFile), zap.Error(err))
		}
	}

	if runErr != nil {
		return fmt.Errorf("%w: %w", ErrJobsFailed, runErr)
	}
	if sum.Failed() {
		return ErrJobsFailed
	}
	return nil
}

// applyOverrides copies explicitly set flags over the job file settings.
func applyOverrides(cmd *cobra.Command, file *jobs.File, o runOptions) {
	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		file.Concurrency = o.concurrency
	}
	if flags.Changed("timeout") {
		file.Timeout = o.timeout
	}
	if flags.Changed("keep-going") {
		file.KeepGoing = o.keepGoing
	}
	if flags.Changed("cancel-on-error") {
		file.CancelOnError = o.cancelOnError
	}
}

func printSummary(w io.Writer, sum jobs.Summary, showOutput bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "JOB\tSTATUS\tEXIT\tDURATION")
	for _, r := range sum.Reports {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Name, r.Status, r.ExitCode, r.Duration.Round(time.Millisecond))
	}
	_ = tw.Flush()

	if !showOutput {
		return
	}
	for _, r := range sum.Reports {
		if r.Status == jobs.StatusOK || len(r.Output) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n--- %s ---\n%s", r.Name, r.Output)
	}
}
