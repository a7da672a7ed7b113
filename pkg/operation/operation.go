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

package operation

import (
	"context"
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/rxscan/pkg/config"
	"github.com/walteh/rxscan/pkg/pattern"
	"github.com/walteh/rxscan/pkg/scan"
	"github.com/walteh/rxscan/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ErrFilesFailed is returned when at least one file could not be processed;
// the per-file errors are on the tracked status.FileInfo.
var ErrFilesFailed = errors.New("some files failed")

var (
	// vcsIgnore is never walked
	vcsIgnore = []string{".git/**", "**/.git/**"}

	// defaultIgnore is never scanned, whatever the rules say
	defaultIgnore = append([]string{"**/*" + status.BackupSuffix, "**/*.tmp"}, vcsIgnore...)
)

// 🎯 Operation is one pass over a file tree
type Operation interface {
	Execute(ctx context.Context) error
}

// 🔧 Options contains what every operation needs
type Options struct {
	Config   *config.Config
	FS       fs.FS // tree to walk; paths are slash separated and relative
	Files    status.FileManager
	Reporter status.StatusReporter
	DryRun   bool // compute status without writing
	Limit    int  // concurrent files when Config.Async is set; 0 means GOMAXPROCS

	// Compiler overrides the engine named by Config.Engine
	Compiler pattern.Compiler
}

// 🏭 NewOptions builds Options for the directory root, using one
// status.Manager as both file manager and reporter
func NewOptions(cfg *config.Config, root string) (Options, *status.Manager) {
	mgr := status.New(root)
	return Options{
		Config:   cfg,
		FS:       os.DirFS(root),
		Files:    mgr,
		Reporter: mgr,
	}, mgr
}

// 📦 BaseOperation holds what is shared between operations
type BaseOperation struct {
	Options
	Scanner *scan.Scanner
	Runner  *OperationRunner
}

// 🏗️ NewBaseOperation validates opts and builds the scanner for the
// configured engine
func NewBaseOperation(opts Options) (BaseOperation, error) {
	if opts.Config == nil {
		return BaseOperation{}, errors.New("config is required")
	}
	if opts.FS == nil {
		return BaseOperation{}, errors.New("file system is required")
	}
	if opts.Files == nil || opts.Reporter == nil {
		return BaseOperation{}, errors.New("file manager and reporter are required")
	}

	compiler := opts.Compiler
	if compiler == nil {
		engine := opts.Config.Engine
		if engine == "" {
			engine = pattern.DefaultEngine
		}
		c, err := pattern.Lookup(engine)
		if err != nil {
			return BaseOperation{}, err
		}
		compiler = c
	}

	return BaseOperation{
		Options: opts,
		Scanner: scan.New(scan.WithCompiler(compiler)),
		Runner:  NewRunner(opts.Config.Async, opts.Limit),
	}, nil
}

// 📂 listFiles returns every file in FS matching pattern, minus defaultIgnore, sorted
func (op *BaseOperation) listFiles(pattern string) ([]string, error) {
	return op.listFilesWithIgnore(pattern, defaultIgnore)
}

func (op *BaseOperation) listFilesWithIgnore(pattern string, ignore []string) ([]string, error) {
	matches, err := doublestar.Glob(op.FS, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("listing files: %w", err)
	}

	files := matches[:0]
	for _, m := range matches {
		if !matchAny(ignore, m) {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// 🔍 rulesFor returns the rules whose files globs match path and whose ignore
// globs do not
func (op *BaseOperation) rulesFor(path string) []*config.Rule {
	var out []*config.Rule
	for i := range op.Config.Rules {
		r := &op.Config.Rules[i]
		files := r.Files
		if len(files) == 0 {
			files = []string{"**"}
		}
		if matchAny(files, path) && !matchAny(r.Ignore, path) {
			out = append(out, r)
		}
	}
	return out
}

func matchAny(globs []string, path string) bool {
	for _, g := range globs {
		if doublestar.MatchUnvalidated(g, path) {
			return true
		}
	}
	return false
}
