package batch

import (
	"strconv"
	"time"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/batch/metrics"
)

// DefaultMaxConcurrency is the number of workers used when WithMaxConcurrency is not provided.
const DefaultMaxConcurrency = 5

// ErrorHandler receives every task failure together with the index of the failed task.
// It is called from the worker goroutine that ran the task, so it must be safe for concurrent use.
type ErrorHandler func(err error, index int)

// config holds batch execution configuration.
type config struct {
	// MaxConcurrency caps the number of tasks running at the same time.
	// Values below 1 are clamped to 1.
	// Default: 5
	MaxConcurrency int

	// Timeout bounds how long a worker waits for a single task.
	// Zero disables the timeout.
	// Default: 0
	Timeout time.Duration

	// OnError receives task failures. When nil, the first failure aborts the batch.
	// Default: nil
	OnError ErrorHandler

	// CancelOnError cancels the context of all other tasks on the first failure
	// and stops workers from claiming new tasks. Only meaningful when OnError is nil.
	// Default: false
	CancelOnError bool

	// Logger receives debug records about failures.
	// Default: zap.NewNop()
	Logger *zap.Logger

	// Metrics records task counters and durations.
	// Default: metrics.NoopProvider
	Metrics metrics.Provider
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		MaxConcurrency: DefaultMaxConcurrency,
		Timeout:        0,
		OnError:        nil,
		CancelOnError:  false,
		Logger:         zap.NewNop(),
		Metrics:        metrics.NewNoopProvider(),
	}
}

// validateConfig clamps out-of-range values that have a sensible fallback.
func validateConfig(cfg *config) error {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoopProvider()
	}
	return nil
}

// newConfig applies opts on top of the defaults.
func newConfig(opts ...Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Option configures a batch execution.
type Option func(*config) error

// WithMaxConcurrency sets the maximum number of tasks running at the same time (default 5).
// Values below 1 are clamped to 1.
func WithMaxConcurrency(n int) Option {
	return func(cfg *config) error { cfg.MaxConcurrency = n; return nil }
}

// WithTimeout sets the per-task timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithTimeout requires d >= 0, got "+d.String()))
		}
		cfg.Timeout = d
		return nil
	}
}

// WithErrorHandler routes task failures to fn instead of aborting the batch.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(cfg *config) error {
		if fn == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithErrorHandler requires a non-nil handler"))
		}
		cfg.OnError = fn
		return nil
	}
}

// WithCancelOnError cancels the remaining work when the batch fails fast.
func WithCancelOnError() Option {
	return func(cfg *config) error { cfg.CancelOnError = true; return nil }
}

// WithLogger sets the logger used for failure reporting.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) error { cfg.Logger = l; return nil }
}

// WithMetrics sets the metrics provider.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error { cfg.Metrics = p; return nil }
}

// validateTasks rejects nil entries before any worker starts.
func validateTasks[R any](tasks []Task[R]) error {
	for i, t := range tasks {
		if t == nil {
			return errorc.With(ErrInvalidTask, errorc.String("", "nil task at index "+strconv.Itoa(i)))
		}
	}
	return nil
}
