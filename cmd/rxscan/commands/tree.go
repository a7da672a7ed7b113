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
	"context"

	"github.com/spf13/cobra"
	"github.com/walteh/rxscan/cmd/rxscan/opts"
	"github.com/walteh/rxscan/pkg/config"
	"github.com/walteh/rxscan/pkg/operation"
	"github.com/walteh/rxscan/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ErrChangesNeeded is returned by check when applying the rules would
// modify at least one file
var ErrChangesNeeded = errors.New("files need changes")

// 🔧 treeFlags are the flags shared by the commands that walk a directory
type treeFlags struct {
	async   bool
	limit   int
	verbose bool
}

func (f *treeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.async, "async", false, "process files concurrently (overrides the config)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum files processed at once with --async")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "also list unchanged files")
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// 📂 loadConfig loads the config for dir and applies command line overrides
func loadConfig(cmd *cobra.Command, o *opts.RootOpts, dir string, tf *treeFlags) (*config.Config, error) {
	ctx := cmd.Context()

	cfg, err := o.LoadConfig(ctx, dir)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("engine") && cfg.Engine != o.Engine {
		cfg.Engine = o.Engine
		if err := cfg.Validate(ctx); err != nil {
			return nil, errors.Errorf("validating config with engine %s: %w", o.Engine, err)
		}
	}
	if cmd.Flags().Changed("async") {
		cfg.Async = tf.async
	}
	return cfg, nil
}

// 🏗️ treeOptions builds operation options for cfg over dir
func treeOptions(o *opts.RootOpts, cfg *config.Config, dir string, tf *treeFlags) (operation.Options, *status.Manager, error) {
	opOpts, mgr := operation.NewOptions(cfg, dir)
	opOpts.Limit = tf.limit

	compiler, err := o.Compiler(cfg.Engine)
	if err != nil {
		return operation.Options{}, nil, err
	}
	opOpts.Compiler = compiler
	return opOpts, mgr, nil
}

// 📊 reportFiles prints the tracked files and a summary
func reportFiles(ctx context.Context, o *opts.RootOpts, mgr *status.Manager, verbose bool) error {
	files, err := mgr.ListFiles(ctx)
	if err != nil {
		return err
	}
	for _, f := range files {
		if verbose || f.Status != status.StatusUnchanged {
			o.Logger.LogFile(ctx, f)
		}
	}
	o.Logger.Summary()
	return nil
}
