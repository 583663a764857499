// Package jobs loads batchrun job files and runs their commands through the batch executor.
package jobs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidFile = errors.New("jobs: invalid job file")
)

// File is the on-disk description of a batch of commands.
//
//	concurrency: 3
//	timeout: 30s
//	keep_going: true
//	jobs:
//	  - name: lint
//	    command: ["golangci-lint", "run"]
type File struct {
	// Concurrency caps the number of commands running at once. Zero means the executor default.
	Concurrency int `yaml:"concurrency"`
	// Timeout bounds every command. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`
	// KeepGoing runs every job even if some fail.
	KeepGoing bool `yaml:"keep_going"`
	// CancelOnError kills running commands on the first failure. Ignored with KeepGoing.
	CancelOnError bool `yaml:"cancel_on_error"`

	Jobs []Job `yaml:"jobs"`
}

// Job is a single command.
type Job struct {
	Name    string            `yaml:"name"`
	Command []string          `yaml:"command"`
	Dir     string            `yaml:"dir"`
	Env     map[string]string `yaml:"env"`
}

// Load reads and validates the job file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open job file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates a job file. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate checks job names and commands.
func (f *File) Validate() error {
	if f.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must be >= 0, got %d", ErrInvalidFile, f.Concurrency)
	}
	if f.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be >= 0, got %s", ErrInvalidFile, f.Timeout)
	}

	seen := make(map[string]int, len(f.Jobs))
	for i, j := range f.Jobs {
		if j.Name == "" {
			return fmt.Errorf("%w: job %d has no name", ErrInvalidFile, i)
		}
		if prev, ok := seen[j.Name]; ok {
			return fmt.Errorf("%w: job %q defined at %d and %d", ErrInvalidFile, j.Name, prev, i)
		}
		seen[j.Name] = i
		if len(j.Command) == 0 || j.Command[0] == "" {
			return fmt.Errorf("%w: job %q has no command", ErrInvalidFile, j.Name)
		}
	}
	return nil
}
