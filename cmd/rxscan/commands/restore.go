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

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/rxscan/cmd/rxscan/opts"
	"github.com/walteh/rxscan/pkg/config"
	"github.com/walteh/rxscan/pkg/operation"
	"github.com/walteh/rxscan/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ⏪ NewRestoreCmd creates the restore command
func NewRestoreCmd(o *opts.RootOpts) *cobra.Command {
	var tf treeFlags

	cmd := &cobra.Command{
		Use:   "restore [DIR]",
		Short: "Put back every file from its " + status.BackupSuffix + " backup",
		Long: `Restore finds every backup left by apply or replace --backup under DIR,
copies it over the file it was taken from and removes it. No config is needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := dirArg(args)

			cfg := &config.Config{Async: tf.async}
			opOpts, mgr, err := treeOptions(o, cfg, dir, &tf)
			if err != nil {
				return err
			}

			op, err := operation.NewRestoreOperation(opOpts)
			if err != nil {
				return errors.Errorf("creating operation: %w", err)
			}

			o.Logger.Header("restoring backups in " + dir)
			execErr := op.Execute(ctx)
			if err := reportFiles(ctx, o, mgr, true); err != nil {
				return err
			}
			return execErr
		},
	}

	tf.register(cmd)

	return cmd
}
