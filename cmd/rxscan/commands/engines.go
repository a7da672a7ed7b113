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
	"github.com/walteh/rxscan/pkg/pattern"
)

// ⚙️ NewEnginesCmd creates the engines command
func NewEnginesCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List the available pattern engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range pattern.Engines() {
				mark := " "
				if name == o.Engine {
					mark = "*"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
