package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJobFile(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRun_Success(t *testing.T) {
	path := writeJobFile(t, `
concurrency: 2
jobs:
  - name: one
    command: ["true"]
  - name: two
    command: ["sh", "-c", "exit 0"]
`)
	metricsPath := filepath.Join(t.TempDir(), "batch.prom")

	out, err := execute(t, "run", "-f", path, "--log-level", "error", "--metrics-file", metricsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "JOB")
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "two")

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "batch_tasks_completed_total 2")
}

func TestRun_FailureReturnsError(t *testing.T) {
	path := writeJobFile(t, `
jobs:
  - name: bad
    command: ["sh", "-c", "echo broken; exit 4"]
  - name: good
    command: ["true"]
`)

	out, err := execute(t, "run", "-f", path, "--log-level", "error", "--keep-going", "--output")
	require.ErrorIs(t, err, ErrJobsFailed)
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "--- bad ---")
	assert.Contains(t, out, "broken")
}

func TestRun_FlagsOverrideFile(t *testing.T) {
	path := writeJobFile(t, `
timeout: 1m
jobs:
  - name: slow
    command: ["sleep", "5"]
`)

	out, err := execute(t, "run", "-f", path, "--log-level", "error", "--keep-going", "--timeout", "100ms")
	require.ErrorIs(t, err, ErrJobsFailed)
	assert.Contains(t, out, "timeout")
}

func TestRun_InvalidInvocations(t *testing.T) {
	valid := writeJobFile(t, "jobs:\n  - name: a\n    command: [\"true\"]\n")

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing file flag", args: []string{"run"}},
		{name: "missing file", args: []string{"run", "-f", filepath.Join(t.TempDir(), "nope.yaml")}},
		{name: "bad log level", args: []string{"run", "-f", valid, "--log-level", "loud"}},
		{name: "negative timeout", args: []string{"run", "-f", valid, "--timeout", "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
		})
	}
}
