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

package cancel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag(t *testing.T) {
	tok := New()
	assert.False(t, tok.IsCanceled(), "new token should not be canceled")

	tok.Cancel()
	assert.True(t, tok.IsCanceled(), "token should be canceled after Cancel")

	tok.Cancel()
	assert.True(t, tok.IsCanceled(), "second Cancel should keep the token canceled")
}

func TestFlagConcurrentCancel(t *testing.T) {
	tok := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tok.IsCanceled()
			tok.Cancel()
		}()
	}
	wg.Wait()

	assert.True(t, tok.IsCanceled())
}

func TestNever(t *testing.T) {
	tok := Never()
	tok.Cancel()
	assert.False(t, tok.IsCanceled(), "never token should ignore Cancel")
}

func TestOrNever(t *testing.T) {
	assert.Equal(t, Never(), OrNever(nil))

	tok := New()
	assert.Same(t, tok, OrNever(tok))
}

func TestFromContext(t *testing.T) {
	t.Run("cancel_after_start", func(t *testing.T) {
		ctx, cancelFn := context.WithCancel(context.Background())
		tok, stop := FromContext(ctx)
		defer stop()

		assert.False(t, tok.IsCanceled())
		cancelFn()

		require.Eventually(t, tok.IsCanceled, time.Second, time.Millisecond,
			"token should follow context cancellation")
	})

	t.Run("already_canceled", func(t *testing.T) {
		ctx, cancelFn := context.WithCancel(context.Background())
		cancelFn()

		tok, stop := FromContext(ctx)
		defer stop()

		assert.True(t, tok.IsCanceled())
	})

	t.Run("stopped_before_cancel", func(t *testing.T) {
		ctx, cancelFn := context.WithCancel(context.Background())
		tok, stop := FromContext(ctx)
		stop()
		cancelFn()

		time.Sleep(10 * time.Millisecond)
		assert.False(t, tok.IsCanceled(), "stopped token should not follow the context")
	})
}
