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

package operation

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// 🏃 OperationRunner runs per-file work either in order or concurrently
type OperationRunner struct {
	async bool
	limit int
}

// 🏗️ NewRunner creates a new runner. limit caps concurrent work when async;
// zero or less means GOMAXPROCS.
func NewRunner(async bool, limit int) *OperationRunner {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &OperationRunner{
		async: async,
		limit: limit,
	}
}

// 🏃 Each calls fn for 0..n-1 and returns the first error. Once ctx is done
// no further calls start.
func (r *OperationRunner) Each(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if r.async {
		return r.runAsync(ctx, n, fn)
	}
	return r.runSync(ctx, n, fn)
}

// 🔄 runSync runs fn in order on the calling goroutine
func (r *OperationRunner) runSync(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// ⚡ runAsync runs up to limit calls at once; the first error cancels the rest
func (r *OperationRunner) runAsync(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
