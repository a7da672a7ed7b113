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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/rxscan/cmd/rxscan/opts"
	"github.com/walteh/rxscan/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// 🔍 NewCheckCmd creates the check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	var tf treeFlags

	cmd := &cobra.Command{
		Use:   "check [DIR]",
		Short: "Check that no configured rule would change a file",
		Long: `Check validates the config and runs every rule without writing anything.
It exits non-zero when a file would change or could not be processed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := dirArg(args)

			cfg, err := loadConfig(cmd, o, dir, &tf)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			o.UserLogger.LogValidation(true, fmt.Sprintf("%s is valid: %s", cfg.Location(), cfg), nil)

			opOpts, _, err := treeOptions(o, cfg, dir, &tf)
			if err != nil {
				return err
			}

			changed, err := operation.Check(ctx, opOpts)
			for _, f := range changed {
				o.Logger.LogFile(ctx, f)
			}
			if err != nil {
				return err
			}

			if len(changed) > 0 {
				o.UserLogger.LogValidation(false, fmt.Sprintf("%d files need changes", len(changed)), nil)
				return ErrChangesNeeded
			}
			o.UserLogger.LogValidation(true, "all files are up to date", nil)
			return nil
		},
	}

	tf.register(cmd)

	return cmd
}
