package batch

import "github.com/ygrebnov/batch/metrics"

// Instrument names recorded through the configured metrics.Provider.
const (
	MetricTasksStarted   = "batch_tasks_started_total"
	MetricTasksCompleted = "batch_tasks_completed_total"
	MetricTasksFailed    = "batch_tasks_failed_total"
	MetricTasksTimedOut  = "batch_tasks_timeout_total"
	MetricTasksInflight  = "batch_tasks_inflight"
	MetricTaskDuration   = "batch_task_duration_seconds"
)

type instruments struct {
	started   metrics.Counter
	completed metrics.Counter
	failed    metrics.Counter
	timedOut  metrics.Counter
	inflight  metrics.UpDownCounter
	duration  metrics.Histogram
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		started: p.Counter(MetricTasksStarted,
			metrics.WithDescription("Tasks claimed by a worker"), metrics.WithUnit("1")),
		completed: p.Counter(MetricTasksCompleted,
			metrics.WithDescription("Tasks settled, successfully or not"), metrics.WithUnit("1")),
		failed: p.Counter(MetricTasksFailed,
			metrics.WithDescription("Tasks that failed, including timeouts"), metrics.WithUnit("1")),
		timedOut: p.Counter(MetricTasksTimedOut,
			metrics.WithDescription("Tasks abandoned after the per-task timeout"), metrics.WithUnit("1")),
		inflight: p.UpDownCounter(MetricTasksInflight,
			metrics.WithDescription("Tasks currently awaited by a worker"), metrics.WithUnit("1")),
		duration: p.Histogram(MetricTaskDuration,
			metrics.WithDescription("Time a worker spent waiting for a task"), metrics.WithUnit("seconds")),
	}
}
