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
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/walteh/rxscan/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ⏪ NewRestoreOperation creates an operation that puts every backed up file
// back and removes its backup
func NewRestoreOperation(opts Options) (Operation, error) {
	base, err := NewBaseOperation(opts)
	if err != nil {
		return nil, err
	}
	return &restoreOperation{BaseOperation: base}, nil
}

type restoreOperation struct {
	BaseOperation
}

// 🏃 Execute runs the restore operation
func (op *restoreOperation) Execute(ctx context.Context) error {
	backups, err := op.listBackups()
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Int("backups", len(backups)).Msg("restoring backups")

	op.Reporter.StartOperation(ctx, len(backups))
	defer op.Reporter.FinishOperation(ctx)

	var processed, failed atomic.Int64
	err = op.Runner.Each(ctx, len(backups), func(ctx context.Context, i int) error {
		path := backupTarget(backups[i])
		info := status.FileInfo{Path: path, Status: status.StatusRestored}

		if !op.DryRun {
			if err := op.Files.RestoreFile(ctx, path); err != nil {
				info = failedInfo(info, err)
				failed.Add(1)
			}
		}

		op.Reporter.TrackFile(ctx, path, info)
		op.Reporter.UpdateProgress(ctx, int(processed.Add(1)))
		return nil
	})
	if err != nil {
		return errors.Errorf("restoring backups: %w", err)
	}

	if n := failed.Load(); n > 0 {
		return errors.Errorf("%w: %d of %d", ErrFilesFailed, n, len(backups))
	}
	return nil
}

// listBackups returns every backup file in FS, sorted
func (op *restoreOperation) listBackups() ([]string, error) {
	return op.listFilesWithIgnore("**/*"+status.BackupSuffix, vcsIgnore)
}

// backupTarget maps a backup path to the file it backs up
func backupTarget(path string) string {
	return strings.TrimSuffix(path, status.BackupSuffix)
}
