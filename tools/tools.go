//go:build tools

// Package tools pins the linter version used by the batch module.
package tools

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
)
