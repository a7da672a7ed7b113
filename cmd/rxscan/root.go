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

package main

import (
	"github.com/spf13/cobra"
	"github.com/walteh/rxscan/cmd/rxscan/commands"
	"github.com/walteh/rxscan/cmd/rxscan/opts"
)

// newRootCmd creates the root command with every subcommand attached
func newRootCmd() (*cobra.Command, *opts.RootOpts) {
	o := opts.FromEnv()

	rootCmd := &cobra.Command{
		Use:   "rxscan",
		Short: "Regular expression find and replace, one segment at a time",
		Long: `rxscan finds and replaces regular expression matches in text and files.
Replacements are templates where $0-$9 stand for match groups and \n, \r, \t
for control characters. Rules kept in a .rxscan.{yaml,hcl,json} file can be
applied to a whole tree, checked in CI and rolled back from backups.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(o.Setup(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr()))
			return nil
		},
	}

	addRootFlags(rootCmd, o)

	rootCmd.AddCommand(
		commands.NewReplaceCmd(o),
		commands.NewFindCmd(o),
		commands.NewApplyCmd(o),
		commands.NewCheckCmd(o),
		commands.NewRestoreCmd(o),
		commands.NewEnginesCmd(o),
		newVersionCmd(),
	)

	return rootCmd, o
}

// addRootFlags adds shared flags to the root command. Defaults come from
// the RXSCAN_* environment.
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", o.ConfigFile, "config file path (default: discovered in the target directory)")
	cmd.PersistentFlags().StringVar(&o.Engine, "engine", o.Engine, "pattern engine")
	cmd.PersistentFlags().DurationVar(&o.Timeout, "timeout", o.Timeout, "match timeout for the regexp2 engine")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", o.Debug, "enable debug logging")
}
