// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"io"
	"math"

	"github.com/pterm/pterm"
	"github.com/walteh/rxscan/pkg/scan"
)

// ⏳ Progress is a scan.Listener that drives a pterm progress bar from
// segment progress
type Progress struct {
	bar  *pterm.ProgressbarPrinter
	seen int
}

var _ scan.Listener = (*Progress)(nil)

// 🏭 StartProgress starts a bar titled title on w
func StartProgress(w io.Writer, title string) (*Progress, error) {
	bar, err := pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle(title).
		WithShowElapsedTime(false).
		WithRemoveWhenDone(true).
		WithWriter(w).
		Start()
	if err != nil {
		return nil, err
	}
	return &Progress{bar: bar}, nil
}

// OnSegment advances the bar to the segment's progress
func (p *Progress) OnSegment(seg scan.Segment) {
	pct := int(math.Floor(seg.Progress * 100))
	if pct > p.seen {
		p.bar.Add(pct - p.seen)
		p.seen = pct
	}
}

// Percent is how far the bar has moved
func (p *Progress) Percent() int {
	return p.seen
}

// Stop removes the bar
func (p *Progress) Stop() {
	_, _ = p.bar.Stop()
}
