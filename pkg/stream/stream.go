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

// Package stream runs scans on their own goroutine and delivers the segments
// over a channel.
package stream

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/rxscan/pkg/cancel"
	"github.com/walteh/rxscan/pkg/pattern"
	"github.com/walteh/rxscan/pkg/scan"
	"golang.org/x/sync/errgroup"
)

type options struct {
	scanner *scan.Scanner
	buffer  int
}

// Option configures a subscription
type Option func(*options)

// WithScanner runs the scan with s instead of a default scan.New()
func WithScanner(s *scan.Scanner) Option {
	return func(o *options) {
		o.scanner = s
	}
}

// WithBuffer sets the capacity of the events channel (default 0)
func WithBuffer(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.buffer = n
		}
	}
}

// 📡 Subscription is one running scan. Events is closed once the scan has
// returned, after which Wait reports its error.
type Subscription struct {
	events  chan scan.Segment
	token   *cancel.Flag
	stopped chan struct{}
	once    sync.Once
	group   *errgroup.Group
	summary scan.Summary
}

// 🚀 Replace starts scanning req in the background. The subscription owns
// cancellation: req.Token is replaced by a token tripped by Cancel or by ctx
// ending, and req.Listener is replaced by the events channel.
func Replace(ctx context.Context, req scan.Request, opts ...Option) *Subscription {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.scanner == nil {
		o.scanner = scan.New()
	}

	sub := &Subscription{
		events:  make(chan scan.Segment, o.buffer),
		token:   cancel.New(),
		stopped: make(chan struct{}),
	}

	req.Token = sub.token
	req.Listener = scan.ListenerFunc(sub.deliver)

	stop := context.AfterFunc(ctx, sub.Cancel)

	sub.group = &errgroup.Group{}
	sub.group.Go(func() error {
		defer stop()
		defer close(sub.events)

		sum, err := o.scanner.Run(ctx, req)
		sub.summary = sum
		if err != nil {
			return err
		}
		zerolog.Ctx(ctx).Trace().Str("state", sum.State.String()).Msg("stream finished")
		return nil
	})

	return sub
}

// 🔎 Find streams the segments of text around each match of expr
func Find(ctx context.Context, text, expr string, flags pattern.Flags, opts ...Option) *Subscription {
	return Replace(ctx, scan.Request{
		Text:     text,
		Pattern:  expr,
		Template: scan.FindTemplate,
		Flags:    flags,
	}, opts...)
}

// deliver hands a segment to the consumer unless the subscription was stopped
func (s *Subscription) deliver(seg scan.Segment) {
	select {
	case s.events <- seg:
	case <-s.stopped:
	}
}

// Events returns the segment channel
func (s *Subscription) Events() <-chan scan.Segment {
	return s.events
}

// ❌ Cancel stops the scan at its next checkpoint. Segments not yet received
// are dropped. Safe to call more than once and from any goroutine.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.token.Cancel()
		close(s.stopped)
	})
}

// ⏳ Wait blocks until the scan returns. A canceled scan is not an error.
// Wait does not drain Events; with an unbuffered channel the caller must keep
// receiving or call Cancel first.
func (s *Subscription) Wait() error {
	return s.group.Wait()
}

// Summary reports how the scan ended; valid once Wait has returned
func (s *Subscription) Summary() scan.Summary {
	return s.summary
}

// Collect drains Events and waits for the scan
func (s *Subscription) Collect() ([]scan.Segment, error) {
	var segs []scan.Segment
	for seg := range s.events {
		segs = append(segs, seg)
	}
	return segs, s.Wait()
}
