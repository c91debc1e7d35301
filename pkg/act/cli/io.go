// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package cli provides utilities for building CLI commands using the act framework.
package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// IO provides input/output streams for CLI commands.
type IO struct {
	In  io.Reader // stdin
	Out io.Writer // stdout
	Err io.Writer // stderr
}

var yellow = color.New(color.FgYellow).SprintFunc()

// Notef writes a highlighted notice line to Err.
func (cio IO) Notef(format string, args ...any) {
	fmt.Fprintln(cio.Err, yellow("NOTE:"), fmt.Sprintf(format, args...))
}
