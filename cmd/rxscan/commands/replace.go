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
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/rxscan/cmd/rxscan/opts"
	"github.com/walteh/rxscan/pkg/cancel"
	"github.com/walteh/rxscan/pkg/log"
	"github.com/walteh/rxscan/pkg/pattern"
	"github.com/walteh/rxscan/pkg/scan"
	"github.com/walteh/rxscan/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ✏️ NewReplaceCmd creates the replace command
func NewReplaceCmd(o *opts.RootOpts) *cobra.Command {
	var (
		flagNames []string
		write     bool
		backup    bool
		explain   bool
		progress  bool
	)

	cmd := &cobra.Command{
		Use:   "replace PATTERN TEMPLATE [FILE...]",
		Short: "Replace every match of a pattern",
		Long: `Replace evaluates TEMPLATE for every match of PATTERN and prints the result.
Templates use $0-$9 for groups and \n, \r, \t for control characters.
Without files the text is read from stdin.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			flags, err := pattern.ParseFlags(flagNames)
			if err != nil {
				return err
			}
			scanner, err := o.Scanner("")
			if err != nil {
				return err
			}

			r := &replacer{
				scanner:  scanner,
				pattern:  args[0],
				template: args[1],
				flags:    flags,
				logger:   o.Logger,
				explain:  explain,
				progress: progress,
				errOut:   cmd.ErrOrStderr(),
			}

			files := args[2:]
			if len(files) == 0 {
				if write {
					return errors.New("--write needs at least one file")
				}
				text, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Errorf("reading stdin: %w", err)
				}
				out, _, err := r.run(ctx, string(text))
				if err != nil {
					return err
				}
				if !explain {
					_, err = io.WriteString(cmd.OutOrStdout(), out)
				}
				return err
			}

			var failed int
			for _, path := range files {
				if !write {
					out, err := r.file(ctx, path)
					if err != nil {
						return err
					}
					if !explain {
						if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
							return err
						}
					}
					continue
				}

				info := r.writeFile(ctx, path, backup)
				o.Logger.LogFile(ctx, info)
				if info.Status == status.StatusFailed {
					failed++
				}
			}

			if write {
				o.Logger.Summary()
			}
			if failed > 0 {
				return errors.Errorf("%d of %d files failed", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&flagNames, "flags", "f", nil, "pattern flags (i, m, s, q, x, U)")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write results back to the files")
	cmd.Flags().BoolVar(&backup, "backup", false, "keep a "+status.BackupSuffix+" copy of every file written")
	cmd.Flags().BoolVar(&explain, "explain", false, "print each replacement instead of the result")
	cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar on stderr")

	return cmd
}

// 🔁 replacer runs one pattern and template over many texts
type replacer struct {
	scanner  *scan.Scanner
	pattern  string
	template string
	flags    pattern.Flags
	logger   *log.Logger
	explain  bool
	progress bool
	errOut   io.Writer
}

func (r *replacer) run(ctx context.Context, text string) (string, scan.Summary, error) {
	tok, stop := cancel.FromContext(ctx)
	defer stop()

	var out strings.Builder
	out.Grow(len(text))

	var bar *log.Progress
	if r.progress {
		b, err := log.StartProgress(r.errOut, "replacing")
		if err != nil {
			return "", scan.Summary{}, errors.Errorf("starting progress bar: %w", err)
		}
		defer b.Stop()
		bar = b
	}

	sum, err := r.scanner.Run(ctx, scan.Request{
		Text:     text,
		Pattern:  r.pattern,
		Template: r.template,
		Flags:    r.flags,
		Token:    tok,
		Listener: scan.ListenerFunc(func(seg scan.Segment) {
			out.WriteString(seg.DstText)
			if r.explain {
				r.logger.LogSegment(seg)
			}
			if bar != nil {
				bar.OnSegment(seg)
			}
		}),
	})
	if err != nil {
		return "", sum, err
	}
	if sum.State == scan.Cancelled {
		return "", sum, errors.Errorf("scan cancelled: %w", context.Cause(ctx))
	}
	return out.String(), sum, nil
}

func (r *replacer) file(ctx context.Context, path string) (string, error) {
	mgr, name := fileManager(path)
	content, err := mgr.ReadFile(ctx, name)
	if err != nil {
		return "", err
	}
	out, _, err := r.run(ctx, string(content))
	if err != nil {
		return "", errors.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func (r *replacer) writeFile(ctx context.Context, path string, backup bool) status.FileInfo {
	info := status.FileInfo{Path: path, Status: status.StatusUnchanged}

	mgr, name := fileManager(path)
	content, err := mgr.ReadFile(ctx, name)
	if err != nil {
		return failedInfo(info, err)
	}

	out, sum, err := r.run(ctx, string(content))
	if err != nil {
		return failedInfo(info, err)
	}
	info.Matches = sum.MatchCount
	info.Size = int64(len(out))
	info.Checksum = status.Checksum([]byte(out))

	if out == string(content) {
		return info
	}
	if backup {
		if err := mgr.BackupFile(ctx, name); err != nil {
			return failedInfo(info, err)
		}
	}
	if err := mgr.WriteFileAtomic(ctx, name, []byte(out)); err != nil {
		return failedInfo(info, err)
	}
	info.Status = status.StatusModified
	return info
}

// fileManager returns a status.Manager rooted at the directory of path and
// the name of path inside it
func fileManager(path string) (*status.Manager, string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return status.New(filepath.Dir(abs)), filepath.Base(abs)
}

func failedInfo(info status.FileInfo, err error) status.FileInfo {
	info.Status = status.StatusFailed
	info.Error = err
	return info
}
