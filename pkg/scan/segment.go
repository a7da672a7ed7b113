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

package scan

import (
	"strings"
)

// 🧩 Segment is one piece of a scan. Gap segments carry source text through
// unchanged; matched segments carry the evaluated replacement. Offsets are
// half-open byte ranges into the source text and the output built so far.
type Segment struct {
	FromSrc int    `json:"from_src"`
	ToSrc   int    `json:"to_src"`
	SrcText string `json:"src_text"`

	FromDst int    `json:"from_dst"`
	ToDst   int    `json:"to_dst"`
	DstText string `json:"dst_text"`

	Matched    bool    `json:"matched"`
	Progress   float64 `json:"progress"`    // ToSrc / len(text), 0 for empty text
	MatchCount int     `json:"match_count"` // matches seen so far, this one included
}

// String renders the segment as "src -> dst"
func (s Segment) String() string {
	return s.SrcText + " -> " + s.DstText
}

// 👂 Listener receives segments in order, on the goroutine running the scan
type Listener interface {
	OnSegment(seg Segment)
}

// ListenerFunc adapts a plain func to Listener
type ListenerFunc func(seg Segment)

func (f ListenerFunc) OnSegment(seg Segment) {
	f(seg)
}

type discard struct{}

func (discard) OnSegment(Segment) {}

// 📦 Collector is a Listener that keeps every segment it receives
type Collector struct {
	Segments []Segment
}

func (c *Collector) OnSegment(seg Segment) {
	c.Segments = append(c.Segments, seg)
}

// Src joins the source text of all collected segments
func (c *Collector) Src() string {
	var sb strings.Builder
	for _, seg := range c.Segments {
		sb.WriteString(seg.SrcText)
	}
	return sb.String()
}

// Dst joins the output text of all collected segments
func (c *Collector) Dst() string {
	var sb strings.Builder
	for _, seg := range c.Segments {
		sb.WriteString(seg.DstText)
	}
	return sb.String()
}

// Matches returns only the matched segments
func (c *Collector) Matches() []Segment {
	var out []Segment
	for _, seg := range c.Segments {
		if seg.Matched {
			out = append(out, seg)
		}
	}
	return out
}
