package batch_test

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/batch"
)

func TestMap_PreservesItemOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6}
	res, err := batch.Map[int, string](context.Background(), items,
		func(_ context.Context, n int) (string, error) { return strconv.Itoa(n * n), nil },
		batch.WithMaxConcurrency(3),
	)
	require.NoError(t, err)
	require.Len(t, res, len(items))
	for i, n := range items {
		require.Equal(t, strconv.Itoa(n*n), *res[i])
	}
}

func TestMap_EmptyItems(t *testing.T) {
	res, err := batch.Map[int, int](context.Background(), nil,
		func(_ context.Context, n int) (int, error) { return n, nil })
	require.NoError(t, err)
	require.Empty(t, res)
}

func TestMap_FailureWithHandlerLeavesNil(t *testing.T) {
	var calls atomic.Int32
	res, err := batch.Map[string, int](context.Background(), []string{"1", "x", "3"},
		func(_ context.Context, s string) (int, error) { return strconv.Atoi(s) },
		batch.WithErrorHandler(func(error, int) { calls.Add(1) }),
	)
	require.NoError(t, err)
	require.Equal(t, 1, *res[0])
	require.Nil(t, res[1])
	require.Equal(t, 3, *res[2])
	require.Equal(t, int32(1), calls.Load())
}

func TestForEach_AllSucceed(t *testing.T) {
	var sum atomic.Int64
	err := batch.ForEach[int](context.Background(), []int{1, 2, 3, 4},
		func(_ context.Context, n int) error { sum.Add(int64(n)); return nil },
		batch.WithMaxConcurrency(2),
	)
	require.NoError(t, err)
	require.Equal(t, int64(10), sum.Load())
}

func TestForEach_FailFast(t *testing.T) {
	err := batch.ForEach[int](context.Background(), []int{1, 2, 3},
		func(_ context.Context, n int) error {
			if n == 2 {
				return errBoom
			}
			return nil
		},
		batch.WithMaxConcurrency(1),
	)
	require.ErrorIs(t, err, errBoom)
	idx, ok := batch.ExtractTaskIndex(err)
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func TestForEach_JoinsHandledErrors(t *testing.T) {
	errOdd := errors.New("odd")
	var handled atomic.Int32

	err := batch.ForEach[int](context.Background(), []int{1, 2, 3, 4, 5},
		func(_ context.Context, n int) error {
			if n%2 == 1 {
				return errOdd
			}
			return nil
		},
		batch.WithErrorHandler(func(error, int) { handled.Add(1) }),
	)
	require.ErrorIs(t, err, errOdd)
	require.Equal(t, int32(3), handled.Load())

	var joined interface{ Unwrap() []error }
	require.ErrorAs(t, err, &joined)
	require.Len(t, joined.Unwrap(), 3)
}

func TestForEach_InvalidOption(t *testing.T) {
	err := batch.ForEach[int](context.Background(), []int{1},
		func(context.Context, int) error { return nil }, batch.WithTimeout(-1))
	require.ErrorIs(t, err, batch.ErrInvalidConfig)
}
