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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/rxscan/cmd/rxscan/opts"
	"github.com/walteh/rxscan/pkg/pattern"
	"github.com/walteh/rxscan/pkg/scan"
	"github.com/walteh/rxscan/pkg/stream"
	"gitlab.com/tozd/go/errors"
)

// 🔎 NewFindCmd creates the find command
func NewFindCmd(o *opts.RootOpts) *cobra.Command {
	var (
		flagNames []string
		asJSON    bool
		count     bool
	)

	cmd := &cobra.Command{
		Use:   "find PATTERN [FILE...]",
		Short: "Print every match of a pattern",
		Long: `Find prints each match of PATTERN as FILE:LINE:COLUMN: TEXT.
Lines and columns are 1-based; columns count bytes.
Without files the text is read from stdin.`,
		Args: cobra.MinimumNArgs(1),
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

			f := &finder{
				scanner: scanner,
				pattern: args[0],
				flags:   flags,
				out:     cmd.OutOrStdout(),
				asJSON:  asJSON,
				count:   count,
			}

			total := 0
			files := args[1:]
			if len(files) == 0 {
				text, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Errorf("reading stdin: %w", err)
				}
				n, err := f.find(ctx, "", string(text))
				if err != nil {
					return err
				}
				total += n
			}
			for _, path := range files {
				mgr, name := fileManager(path)
				content, err := mgr.ReadFile(ctx, name)
				if err != nil {
					return err
				}
				n, err := f.find(ctx, path, string(content))
				if err != nil {
					return errors.Errorf("%s: %w", path, err)
				}
				total += n
			}

			if count {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), total)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&flagNames, "flags", "f", nil, "pattern flags (i, m, s, q, x, U)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per match")
	cmd.Flags().BoolVar(&count, "count", false, "only print the number of matches")

	return cmd
}

// 📍 match is the JSON form of one find result
type match struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	scan.Segment
}

type finder struct {
	scanner *scan.Scanner
	pattern string
	flags   pattern.Flags
	out     io.Writer
	asJSON  bool
	count   bool
}

// find streams the matches of one text to f.out and returns how many there were
func (f *finder) find(ctx context.Context, file, text string) (int, error) {
	sub := stream.Find(ctx, text, f.pattern, f.flags, stream.WithScanner(f.scanner), stream.WithBuffer(64))

	enc := json.NewEncoder(f.out)
	pos := &position{text: text, line: 1}
	prefix := ""
	if file != "" {
		prefix = file + ":"
	}

	for seg := range sub.Events() {
		if !seg.Matched || f.count {
			continue
		}
		line, col := pos.at(seg.FromSrc)

		var err error
		if f.asJSON {
			err = enc.Encode(match{File: file, Line: line, Column: col, Segment: seg})
		} else {
			_, err = fmt.Fprintf(f.out, "%s%d:%d: %s\n", prefix, line, col, seg.SrcText)
		}
		if err != nil {
			sub.Cancel()
			_ = sub.Wait()
			return 0, errors.Errorf("writing match: %w", err)
		}
	}

	if err := sub.Wait(); err != nil {
		return 0, err
	}
	sum := sub.Summary()
	if sum.State == scan.Cancelled {
		return sum.MatchCount, errors.Errorf("scan cancelled: %w", context.Cause(ctx))
	}
	return sum.MatchCount, nil
}

// position converts increasing byte offsets to line and column numbers
type position struct {
	text string
	off  int // offset of the last lookup
	line int // line at off
	bol  int // offset of the start of line
}

func (p *position) at(off int) (line, col int) {
	if off < p.off {
		p.off, p.line, p.bol = 0, 1, 0
	}
	chunk := p.text[p.off:off]
	if n := strings.Count(chunk, "\n"); n > 0 {
		p.line += n
		p.bol = p.off + strings.LastIndexByte(chunk, '\n') + 1
	}
	p.off = off
	return p.line, off - p.bol + 1
}
