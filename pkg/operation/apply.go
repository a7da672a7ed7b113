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
	"bytes"
	"context"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/walteh/rxscan/pkg/cancel"
	"github.com/walteh/rxscan/pkg/config"
	"github.com/walteh/rxscan/pkg/scan"
	"github.com/walteh/rxscan/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔄 NewApplyOperation creates an operation that runs every rule over every
// file it selects and writes back the files whose content changed
func NewApplyOperation(opts Options) (Operation, error) {
	base, err := NewBaseOperation(opts)
	if err != nil {
		return nil, err
	}
	return &applyOperation{BaseOperation: base}, nil
}

type applyOperation struct {
	BaseOperation
}

// 🏃 Execute runs the apply operation. A file that fails is tracked as
// status.StatusFailed and the others still run; the returned error then
// wraps ErrFilesFailed.
func (op *applyOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	files, err := op.listFiles("**")
	if err != nil {
		return err
	}
	logger.Debug().Int("files", len(files)).Bool("dry_run", op.DryRun).Msg("applying rules")

	op.Reporter.StartOperation(ctx, len(files))
	defer op.Reporter.FinishOperation(ctx)

	var processed, failed atomic.Int64
	err = op.Runner.Each(ctx, len(files), func(ctx context.Context, i int) error {
		info := op.processFile(ctx, files[i])
		if info.Error != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed.Add(1)
		}
		op.Reporter.TrackFile(ctx, files[i], info)
		op.Reporter.UpdateProgress(ctx, int(processed.Add(1)))
		return nil
	})
	if err != nil {
		return errors.Errorf("applying rules: %w", err)
	}

	if n := failed.Load(); n > 0 {
		return errors.Errorf("%w: %d of %d", ErrFilesFailed, n, len(files))
	}
	return nil
}

// 📄 processFile runs the rules for path in order, each on the output of the
// previous one
func (op *applyOperation) processFile(ctx context.Context, path string) status.FileInfo {
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()

	info := status.FileInfo{Path: path, Status: status.StatusUnchanged}

	rules := op.rulesFor(path)
	if len(rules) == 0 {
		logger.Trace().Msg("no rule selects file")
		return info
	}

	content, err := op.Files.ReadFile(ctx, path)
	if err != nil {
		return failedInfo(info, err)
	}
	info.Size = int64(len(content))
	info.Checksum = status.Checksum(content)

	if bytes.IndexByte(content, 0) >= 0 {
		logger.Debug().Msg("skipping binary file")
		return info
	}

	original := string(content)
	text := original
	for _, r := range rules {
		out, n, err := op.applyRule(ctx, r, text)
		if err != nil {
			return failedInfo(info, errors.Errorf("rule %q: %w", r.Name, err))
		}
		if n > 0 {
			info.Matches += n
			info.Rules = append(info.Rules, r.Name)
		}
		text = out
	}

	if text == original {
		return info
	}

	info.Status = status.StatusModified
	info.Size = int64(len(text))
	info.Checksum = status.Checksum([]byte(text))

	if op.DryRun {
		return info
	}

	if op.Config.Backup {
		if err := op.Files.BackupFile(ctx, path); err != nil {
			return failedInfo(info, err)
		}
	}
	if err := op.Files.WriteFileAtomic(ctx, path, []byte(text)); err != nil {
		return failedInfo(info, err)
	}

	logger.Debug().Int("matches", info.Matches).Strs("rules", info.Rules).Msg("file rewritten")
	return info
}

// applyRule replaces every match of r in text, returning the new text and
// the number of matches
func (op *applyOperation) applyRule(ctx context.Context, r *config.Rule, text string) (string, int, error) {
	tok, stop := cancel.FromContext(ctx)
	defer stop()

	var out strings.Builder
	out.Grow(len(text))

	sum, err := op.Scanner.Run(ctx, scan.Request{
		Text:     text,
		Pattern:  r.Pattern,
		Template: r.Template,
		Flags:    r.PatternFlags(),
		Token:    tok,
		Listener: scan.ListenerFunc(func(seg scan.Segment) {
			out.WriteString(seg.DstText)
		}),
	})
	if err != nil {
		return "", 0, err
	}
	if sum.State == scan.Cancelled {
		return "", 0, errors.Errorf("scan cancelled: %w", context.Cause(ctx))
	}

	return out.String(), sum.MatchCount, nil
}

func failedInfo(info status.FileInfo, err error) status.FileInfo {
	info.Status = status.StatusFailed
	info.Error = err
	return info
}
