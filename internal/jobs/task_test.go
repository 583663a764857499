package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTask_KilledCommandDoesNotWaitForOrphanedChildren(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// the backgrounded sleep inherits stdout and outlives the killed shell
	run := NewRunner(nil, nil).task(Job{Name: "orphan", Command: []string{"sh", "-c", "sleep 5 & wait"}})

	start := time.Now()
	rep, err := run(ctx)
	require.Error(t, err)
	require.Less(t, time.Since(start), 100*time.Millisecond+waitDelay+time.Second)
	require.Equal(t, "orphan", rep.Name)
}
