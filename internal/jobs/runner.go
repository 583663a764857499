package jobs

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ygrebnov/batch"
	"github.com/ygrebnov/batch/metrics"
)

// Status is the final state of a job.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
	StatusSkipped Status = "skipped"
	// StatusAborted marks jobs whose outcome is unknown because the batch failed fast.
	StatusAborted Status = "aborted"
)

// Report is the outcome of one job.
type Report struct {
	Name     string
	Status   Status
	ExitCode int
	Output   []byte
	Duration time.Duration
	Err      error
}

// Summary lists the reports in job file order.
type Summary struct {
	Reports []Report
}

// Failed reports whether any job did not finish successfully.
func (s Summary) Failed() bool {
	for _, r := range s.Reports {
		if r.Status != StatusOK {
			return true
		}
	}
	return false
}

// Count returns the number of reports per status.
func (s Summary) Count() map[Status]int {
	out := make(map[Status]int, 4)
	for _, r := range s.Reports {
		out[r.Status]++
	}
	return out
}

// waitDelay bounds how long a killed command may hold its output pipes open,
// e.g. through a child process that outlives it.
const waitDelay = 500 * time.Millisecond

// Runner executes the jobs of a File.
type Runner struct {
	logger  *zap.Logger
	metrics metrics.Provider
}

// NewRunner returns a Runner. Nil arguments fall back to no-op implementations.
func NewRunner(logger *zap.Logger, p metrics.Provider) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if p == nil {
		p = metrics.NewNoopProvider()
	}
	return &Runner{logger: logger, metrics: p}
}

// Run executes all jobs of f. The returned error is non-nil only when the batch was
// aborted (fail-fast without keep_going) or ctx ended; per-job failures are in the Summary.
func (r *Runner) Run(ctx context.Context, f *File) (Summary, error) {
	tasks := make([]batch.Task[Report], len(f.Jobs))
	for i := range f.Jobs {
		tasks[i] = r.task(f.Jobs[i])
	}

	opts := []batch.Option{
		batch.WithLogger(r.logger),
		batch.WithMetrics(r.metrics),
		batch.WithTimeout(f.Timeout),
	}
	if f.Concurrency > 0 {
		opts = append(opts, batch.WithMaxConcurrency(f.Concurrency))
	}
	switch {
	case f.KeepGoing:
		opts = append(opts, batch.WithErrorHandler(func(err error, index int) {
			r.logger.Error("job failed", zap.String("job", f.Jobs[index].Name), zap.Error(err))
		}))
	case f.CancelOnError:
		opts = append(opts, batch.WithCancelOnError())
	}

	results, err := batch.ExecuteResults[Report](ctx, tasks, opts...)
	if results == nil {
		return r.aborted(f, err), err
	}

	sum := Summary{Reports: make([]Report, len(results))}
	for i, res := range results {
		sum.Reports[i] = reportFor(f.Jobs[i], res)
	}
	return sum, err
}

// task wraps one job into a batch task. A non-zero exit is a task failure.
func (r *Runner) task(j Job) batch.Task[Report] {
	return func(ctx context.Context) (Report, error) {
		start := time.Now()
		cmd := exec.CommandContext(ctx, j.Command[0], j.Command[1:]...)
		cmd.Dir = j.Dir
		cmd.WaitDelay = waitDelay
		if len(j.Env) > 0 {
			cmd.Env = os.Environ()
			keys := make([]string, 0, len(j.Env))
			for k := range j.Env {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				cmd.Env = append(cmd.Env, k+"="+j.Env[k])
			}
		}

		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out

		r.logger.Debug("job started", zap.String("job", j.Name), zap.Strings("command", j.Command))
		err := cmd.Run()
		rep := Report{
			Name:     j.Name,
			Output:   out.Bytes(),
			Duration: time.Since(start),
			ExitCode: cmd.ProcessState.ExitCode(),
		}
		if err != nil {
			return rep, &jobError{report: rep, err: err}
		}
		rep.Status = StatusOK
		return rep, nil
	}
}

// jobError carries the partial report of a failed command to the summary.
type jobError struct {
	report Report
	err    error
}

func (e *jobError) Error() string { return e.report.Name + ": " + e.err.Error() }
func (e *jobError) Unwrap() error { return e.err }

func reportFor(j Job, res batch.Result[Report]) Report {
	if v, ok := res.Get(); ok {
		return v
	}
	if res.Err == nil {
		return Report{Name: j.Name, Status: StatusSkipped, ExitCode: -1}
	}

	rep := Report{Name: j.Name, ExitCode: -1}
	var je *jobError
	if errors.As(res.Err, &je) {
		rep = je.report
	}
	rep.Status = StatusFailed
	var toe *batch.TimeoutError
	if errors.As(res.Err, &toe) {
		rep.Status = StatusTimeout
		rep.Duration = toe.Elapsed
	}
	rep.Err = res.Err
	return rep
}

// aborted builds the summary for a fail-fast batch: only the failing job is known.
func (r *Runner) aborted(f *File, err error) Summary {
	sum := Summary{Reports: make([]Report, len(f.Jobs))}
	failed := -1
	if idx, ok := batch.ExtractTaskIndex(err); ok {
		failed = idx
	}
	for i, j := range f.Jobs {
		if i == failed {
			sum.Reports[i] = reportFor(j, batch.Result[Report]{Err: err})
			continue
		}
		sum.Reports[i] = Report{Name: j.Name, Status: StatusAborted, ExitCode: -1}
	}
	return sum
}
