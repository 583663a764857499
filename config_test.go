package batch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/batch/metrics"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := defaultConfig()
	require.Equal(t, 5, cfg.MaxConcurrency)
	require.Zero(t, cfg.Timeout)
	require.Nil(t, cfg.OnError)
	require.False(t, cfg.CancelOnError)
	require.NotNil(t, cfg.Logger)
	require.IsType(t, metrics.NoopProvider{}, cfg.Metrics)
}

func TestValidateConfig_Clamps(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "negative", in: -3, want: 1},
		{name: "zero", in: 0, want: 1},
		{name: "one", in: 1, want: 1},
		{name: "large", in: 64, want: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.MaxConcurrency = tt.in
			require.NoError(t, validateConfig(&cfg))
			require.Equal(t, tt.want, cfg.MaxConcurrency)
		})
	}
}

func TestValidateConfig_RestoresNilDependencies(t *testing.T) {
	cfg, err := newConfig(WithLogger(nil), WithMetrics(nil))
	require.NoError(t, err)
	require.NotNil(t, cfg.Logger)
	require.NotNil(t, cfg.Metrics)
}

func TestNewConfig_InvalidOptions_ReturnsError(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "negative timeout", opt: WithTimeout(-time.Millisecond)},
		{name: "nil handler", opt: WithErrorHandler(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := newConfig(tt.opt)
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.Nil(t, cfg)
		})
	}
}

func TestNewConfig_ValidOptions_Succeeds(t *testing.T) {
	p := metrics.NewBasicProvider()
	cfg, err := newConfig(
		nil, // nil options are skipped
		WithMaxConcurrency(3),
		WithTimeout(time.Second),
		WithErrorHandler(func(error, int) {}),
		WithCancelOnError(),
		WithMetrics(p),
	)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.MaxConcurrency)
	require.Equal(t, time.Second, cfg.Timeout)
	require.NotNil(t, cfg.OnError)
	require.True(t, cfg.CancelOnError)
	require.Same(t, p, cfg.Metrics)
}

func TestValidateTasks(t *testing.T) {
	ok := TaskValue[int](func(context.Context) int { return 0 })
	require.NoError(t, validateTasks([]Task[int]{ok}))
	require.NoError(t, validateTasks[int](nil))
	require.ErrorIs(t, validateTasks([]Task[int]{ok, nil}), ErrInvalidTask)
}
