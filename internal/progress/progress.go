// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package progress renders download progress on a terminal.
package progress

import (
	"io"

	"github.com/cheggaaa/pb"
)

// Bars draws one byte-counting bar per transfer on Output.
type Bars struct {
	Output io.Writer
}

// Track implements download.Progress. An unknown total shows a counter only.
func (b Bars) Track(name string, total int64, r io.Reader) (io.Reader, func()) {
	if total < 0 {
		total = 0
	}
	bar := pb.New64(total).SetUnits(pb.U_BYTES).Prefix(name + " ")
	bar.Output = b.Output
	bar.ShowSpeed = true
	bar.ShowTimeLeft = total > 0
	bar.Start()
	return bar.NewProxyReader(r), func() { bar.Finish() }
}
