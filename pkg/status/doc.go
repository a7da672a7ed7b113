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

/*
Package status writes processed files and tracks what happened to each one.

🎯 Purpose:
- Writes files atomically (temp file + rename) keeping their mode
- Creates and restores .bak backups
- Tracks per-file status, match counts and the rules that fired
- Reports progress through the logger in the context

🤝 Interfaces:
- FileManager: reads and writes under a base directory
- StatusReporter: per-file status and progress
- FileFormatter: renders status messages

🔍 Example:

	mgr := status.New(root)
	if err := mgr.BackupFile(ctx, "main.go"); err != nil {
		return err
	}
	if err := mgr.WriteFileAtomic(ctx, "main.go", out); err != nil {
		return err
	}
	mgr.TrackFile(ctx, "main.go", status.FileInfo{Status: status.StatusModified, Matches: 3})
*/
package status
