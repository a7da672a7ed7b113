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

	"github.com/walteh/rxscan/pkg/status"
)

// 🔍 Check runs the rules without writing anything and returns the files
// that would change. A file that fails is reported with the others and the
// error wraps ErrFilesFailed.
func Check(ctx context.Context, opts Options) ([]status.FileInfo, error) {
	opts.DryRun = true

	op, err := NewApplyOperation(opts)
	if err != nil {
		return nil, err
	}
	execErr := op.Execute(ctx)

	files, err := opts.Reporter.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	var changed []status.FileInfo
	for _, f := range files {
		if f.Status == status.StatusModified || f.Status == status.StatusFailed {
			changed = append(changed, f)
		}
	}
	return changed, execErr
}
