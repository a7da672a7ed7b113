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
Package operation runs rule sets over file trees.

🎯 Purpose:
- Selects files with doublestar globs (rule files / ignore)
- Runs each selected rule through the scan engine, in config order
- Hands writes, backups and status to the status package

🔄 Flow:
1. List every file in the tree (skipping .git, backups and temp files)
2. For each file, pick the rules whose globs select it
3. Run the rules one after another on the file's text
4. If the text changed: back up (optional) and write atomically
5. Track the outcome and progress

⚡ Operations:
- apply: rewrite files (NewApplyOperation)
- check: dry run that reports what apply would change (Check)
- restore: put .bak backups back (NewRestoreOperation)

With Config.Async set, files are processed concurrently (OperationRunner).

🔍 Example:

	opts, mgr := operation.NewOptions(cfg, ".")
	op, err := operation.NewApplyOperation(opts)
	if err != nil {
		return err
	}
	if err := op.Execute(ctx); err != nil {
		return err
	}
	files, _ := mgr.ListFiles(ctx)
*/
package operation
