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

// Package cancel provides the cooperative cancellation flag polled by scans.
package cancel

import (
	"context"
	"sync/atomic"
)

// 🛑 Token is a shared flag that a running scan polls at its checkpoints.
// Implementations must be safe to read and set from different goroutines.
type Token interface {
	IsCanceled() bool
	Cancel()
}

// 🚩 Flag is the default Token, backed by an atomic bool
type Flag struct {
	canceled atomic.Bool
}

// 🏭 New creates a token that is not canceled yet
func New() *Flag {
	return &Flag{}
}

// IsCanceled reports whether Cancel has been called
func (f *Flag) IsCanceled() bool {
	return f.canceled.Load()
}

// Cancel marks the token as canceled. Calling it more than once is fine.
func (f *Flag) Cancel() {
	f.canceled.Store(true)
}

type never struct{}

func (never) IsCanceled() bool { return false }

func (never) Cancel() {}

// Never returns a token that is never canceled; Cancel on it does nothing.
func Never() Token {
	return never{}
}

// OrNever returns tok, or Never() when tok is nil
func OrNever(tok Token) Token {
	if tok == nil {
		return Never()
	}
	return tok
}

// 🔗 FromContext returns a token that flips when ctx is done.
// The returned stop func detaches the token from ctx and must be called
// once the scan using the token has returned.
func FromContext(ctx context.Context) (Token, func()) {
	tok := New()
	if ctx.Err() != nil {
		tok.Cancel()
		return tok, func() {}
	}
	stop := context.AfterFunc(ctx, tok.Cancel)
	return tok, func() { stop() }
}
