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
	"github.com/walteh/rxscan/pkg/operation"
	"github.com/walteh/rxscan/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🚀 NewApplyCmd creates the apply command
func NewApplyCmd(o *opts.RootOpts) *cobra.Command {
	var (
		tf     treeFlags
		dryRun bool
		backup bool
	)

	cmd := &cobra.Command{
		Use:   "apply [DIR]",
		Short: "Apply the configured rules to a directory",
		Long: `Apply runs every rule of the config over the files it selects and writes
the results back atomically. It will:
1. Load the config (--config, or the first of .rxscan.{yaml,yml,hcl,json} in DIR)
2. Run the matching rules over each file, in config order
3. Back up changed files when backups are enabled
4. Report every changed or failed file`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := dirArg(args)

			cfg, err := loadConfig(cmd, o, dir, &tf)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			if cmd.Flags().Changed("backup") {
				cfg.Backup = backup
			}

			opOpts, mgr, err := treeOptions(o, cfg, dir, &tf)
			if err != nil {
				return err
			}
			opOpts.DryRun = dryRun

			op, err := operation.NewApplyOperation(opOpts)
			if err != nil {
				return errors.Errorf("creating operation: %w", err)
			}

			header := "applying " + cfg.String()
			if dryRun {
				header += " (dry run)"
			}
			o.Logger.Header(header)

			execErr := op.Execute(ctx)
			if err := reportFiles(ctx, o, mgr, tf.verbose); err != nil {
				return err
			}
			return execErr
		},
	}

	tf.register(cmd)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report what would change without writing")
	cmd.Flags().BoolVar(&backup, "backup", false, "keep a "+status.BackupSuffix+" copy of every file written (overrides the config)")

	return cmd
}
