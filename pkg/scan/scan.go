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

// Package scan runs a pattern over a text and reports the result as an
// ordered series of segments: the untouched gap before each match, then the
// match with its replacement, then whatever trails the last match.
//
// Scans are synchronous and poll their cancel.Token between steps; a
// canceled scan returns nil after whatever it already emitted.
package scan

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/rxscan/pkg/cancel"
	"github.com/walteh/rxscan/pkg/pattern"
	"github.com/walteh/rxscan/pkg/template"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"gitlab.com/tozd/go/errors"
)

// FindTemplate echoes every match unchanged
const FindTemplate = "$0"

// ErrDegenerateMatch is returned for an empty match strictly inside the text
var ErrDegenerateMatch = errors.New("match length is zero at a non-boundary position")

// 📥 Request describes one scan. A nil Listener drops the segments and a nil
// Token never cancels.
type Request struct {
	Text     string
	Pattern  string
	Template string
	Flags    pattern.Flags
	Listener Listener
	Token    cancel.Token
}

// 🚦 State is where a scan ended up
type State int

const (
	NotStarted State = iota
	Scanning
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Scanning:
		return "scanning"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Summary describes a finished scan
type Summary struct {
	State      State
	MatchCount int
	Segments   int
	DstLength  int
}

// 🔍 Scanner runs scans with a given pattern engine and telemetry providers.
// A Scanner holds no per-scan state and is safe for concurrent use.
type Scanner struct {
	compiler pattern.Compiler
	tp       trace.TracerProvider
	mp       metric.MeterProvider
	inst     instruments
}

// Option configures a Scanner
type Option func(*Scanner)

// WithCompiler selects the pattern engine (default pattern.RE2)
func WithCompiler(c pattern.Compiler) Option {
	return func(s *Scanner) {
		s.compiler = c
	}
}

// WithTracerProvider overrides the global otel tracer provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Scanner) {
		s.tp = tp
	}
}

// WithMeterProvider overrides the global otel meter provider
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Scanner) {
		s.mp = mp
	}
}

// 🏭 New creates a Scanner
func New(opts ...Option) *Scanner {
	s := &Scanner{
		compiler: pattern.RE2{},
		tp:       otel.GetTracerProvider(),
		mp:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.inst = newInstruments(s.tp, s.mp)
	return s
}

// Engine returns the name of the pattern engine in use
func (s *Scanner) Engine() string {
	return s.compiler.Name()
}

// 🏃 Run scans req.Text and reports how the scan ended. Cancellation is not
// an error: the summary state is Cancelled and err is nil.
func (s *Scanner) Run(ctx context.Context, req Request) (Summary, error) {
	ctx, span := s.inst.start(ctx, s.Engine(), req)

	logger := zerolog.Ctx(ctx).With().
		Str("engine", s.Engine()).
		Str("pattern", req.Pattern).
		Int("text_length", len(req.Text)).
		Logger()

	var sum Summary
	err := s.run(req, &sum)
	if err != nil {
		sum.State = Failed
		logger.Debug().Err(err).Int("match_count", sum.MatchCount).Msg("scan failed")
	} else {
		logger.Debug().
			Str("state", sum.State.String()).
			Int("match_count", sum.MatchCount).
			Int("segments", sum.Segments).
			Msg("scan finished")
	}

	s.inst.finish(ctx, span, sum, err)
	return sum, err
}

func (s *Scanner) run(req Request, sum *Summary) error {
	tok := cancel.OrNever(req.Token)
	listener := req.Listener
	if listener == nil {
		listener = discard{}
	}

	if tok.IsCanceled() {
		sum.State = Cancelled
		return nil
	}

	p, err := s.compiler.Compile(req.Pattern, req.Flags)
	if err != nil {
		return err
	}
	sum.State = Scanning

	text := req.Text
	size := len(text)
	progress := func(at int) float64 {
		if size == 0 {
			return 0
		}
		return float64(at) / float64(size)
	}
	emit := func(seg Segment) {
		sum.Segments++
		sum.DstLength = seg.ToDst
		listener.OnSegment(seg)
	}

	matcher := p.Matcher(text)
	srcCursor, dstCursor := 0, 0

	for pos := 0; pos <= size; {
		m, err := matcher.FindFrom(pos)
		if err != nil {
			return errors.Errorf("finding next match: %w", err)
		}
		if m == nil {
			break
		}

		if tok.IsCanceled() {
			sum.State = Cancelled
			return nil
		}

		start, end := m.Start(), m.End()
		if start == end && start != 0 && end != size {
			return errors.Errorf("%w (offset %d)", ErrDegenerateMatch, start)
		}

		sum.MatchCount++

		gap := text[srcCursor:start]
		emit(Segment{
			FromSrc:    srcCursor,
			ToSrc:      start,
			SrcText:    gap,
			FromDst:    dstCursor,
			ToDst:      dstCursor + len(gap),
			DstText:    gap,
			Matched:    false,
			Progress:   progress(start),
			MatchCount: sum.MatchCount,
		})
		dstCursor += len(gap)

		if tok.IsCanceled() {
			sum.State = Cancelled
			return nil
		}

		repl, err := template.Evaluate(req.Template, m)
		if err != nil {
			return errors.Errorf("evaluating template for match at offset %d: %w", start, err)
		}

		emit(Segment{
			FromSrc:    start,
			ToSrc:      end,
			SrcText:    text[start:end],
			FromDst:    dstCursor,
			ToDst:      dstCursor + len(repl),
			DstText:    repl,
			Matched:    true,
			Progress:   progress(end),
			MatchCount: sum.MatchCount,
		})
		dstCursor += len(repl)
		srcCursor = end

		pos = end
		if start == end {
			if end >= size {
				break
			}
			_, w := utf8.DecodeRuneInString(text[end:])
			pos += w
		}
	}

	if tok.IsCanceled() {
		sum.State = Cancelled
		return nil
	}

	if srcCursor < size {
		tail := text[srcCursor:]
		emit(Segment{
			FromSrc:    srcCursor,
			ToSrc:      size,
			SrcText:    tail,
			FromDst:    dstCursor,
			ToDst:      dstCursor + len(tail),
			DstText:    tail,
			Matched:    false,
			Progress:   progress(size),
			MatchCount: sum.MatchCount,
		})
	}

	sum.State = Completed
	return nil
}

// Scan runs req, discarding the summary
func (s *Scanner) Scan(ctx context.Context, req Request) error {
	_, err := s.Run(ctx, req)
	return err
}

// 🔄 Replace returns text with every match of expr replaced by tmpl
func (s *Scanner) Replace(ctx context.Context, text, expr, tmpl string, flags pattern.Flags) (string, error) {
	var out strings.Builder
	out.Grow(len(text))
	err := s.Scan(ctx, Request{
		Text:     text,
		Pattern:  expr,
		Template: tmpl,
		Flags:    flags,
		Listener: ListenerFunc(func(seg Segment) {
			out.WriteString(seg.DstText)
		}),
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// 🔎 Find reports the segments of text around each match of expr without
// changing anything; matched segments have SrcText == DstText.
func (s *Scanner) Find(ctx context.Context, text, expr string, flags pattern.Flags, l Listener) error {
	return s.Scan(ctx, Request{
		Text:     text,
		Pattern:  expr,
		Template: FindTemplate,
		Flags:    flags,
		Listener: l,
	})
}

var defaultScanner = sync.OnceValue(func() *Scanner {
	return New()
})

// Scan runs req with the default Scanner
func Scan(ctx context.Context, req Request) error {
	return defaultScanner().Scan(ctx, req)
}

// Replace runs a replacement with the default Scanner
func Replace(ctx context.Context, text, expr, tmpl string, flags pattern.Flags) (string, error) {
	return defaultScanner().Replace(ctx, text, expr, tmpl, flags)
}

// Find runs a find with the default Scanner
func Find(ctx context.Context, text, expr string, flags pattern.Flags, l Listener) error {
	return defaultScanner().Find(ctx, text, expr, flags, l)
}
