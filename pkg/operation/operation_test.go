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
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rxscan/pkg/config"
	"github.com/walteh/rxscan/pkg/pattern"
	"github.com/walteh/rxscan/pkg/status"
	"github.com/walteh/rxscan/pkg/testutils"
	"gitlab.com/tozd/go/errors"
)

func parseConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	cfg, err := config.Parse(testutils.Context(t), "rules.yaml", []byte(yaml))
	require.NoError(t, err)
	return cfg
}

func TestApply(t *testing.T) {
	tree := map[string]string{
		"main.go":          "package main\n\nfunc fooBar() {}\n",
		"pkg/util.go":      "package pkg\n\n// FooBar does nothing\nfunc FooBar() {}\n",
		"vendor/x/lib.go":  "package x\nfunc fooBar() {}\n",
		"README.md":        "call fooBar\n",
		"bin/tool":         "foo\x00Bar",
		".git/HEAD":        "fooBar",
		"notes/empty.txt":  "",
		"notes/plain.txt":  "nothing to see\n",
		"pkg/util_test.go": "package pkg\n",
	}

	tests := []struct {
		name    string
		config  string
		dryRun  bool
		want    map[string]string
		status  map[string]status.FileStatus
		matches map[string]int
	}{
		{
			name: "go_files_only",
			config: `
rules:
  - name: rename
    pattern: "(?i)foo(bar)"
    template: "baz$1"
    files: ["**/*.go"]
    ignore: ["vendor/**"]
`,
			want: map[string]string{
				"main.go":     "package main\n\nfunc bazBar() {}\n",
				"pkg/util.go": "package pkg\n\n// bazBar does nothing\nfunc bazBar() {}\n",
			},
			status: map[string]status.FileStatus{
				"main.go":          status.StatusModified,
				"pkg/util.go":      status.StatusModified,
				"pkg/util_test.go": status.StatusUnchanged,
				"vendor/x/lib.go":  status.StatusUnchanged,
				"README.md":        status.StatusUnchanged,
			},
			matches: map[string]int{"main.go": 1, "pkg/util.go": 2},
		},
		{
			name: "chained_rules",
			config: `
rules:
  - name: first
    pattern: fooBar
    template: quxBar
    files: ["*.md"]
  - name: second
    pattern: "qux(\\w+)"
    template: "[$1]"
    files: ["*.md"]
`,
			want: map[string]string{
				"README.md": "call [Bar]\n",
			},
			status:  map[string]status.FileStatus{"README.md": status.StatusModified, "main.go": status.StatusUnchanged},
			matches: map[string]int{"README.md": 2},
		},
		{
			name:   "dry_run",
			dryRun: true,
			config: `
rules:
  - name: rename
    pattern: fooBar
    template: bazBar
`,
			want:    map[string]string{},
			status:  map[string]status.FileStatus{"main.go": status.StatusModified, "README.md": status.StatusModified, "bin/tool": status.StatusUnchanged},
			matches: map[string]int{"main.go": 1},
		},
		{
			name: "regexp2_engine",
			config: `
engine: regexp2
rules:
  - name: lookbehind
    pattern: "(?<=func )fooBar"
    template: "barFoo"
    files: ["main.go"]
`,
			want: map[string]string{
				"main.go": "package main\n\nfunc barFoo() {}\n",
			},
			status: map[string]status.FileStatus{"main.go": status.StatusModified},
		},
		{
			name: "identical_replacement_is_unchanged",
			config: `
rules:
  - name: noop
    pattern: "package (\\w+)"
    template: "package $1"
`,
			want:    map[string]string{},
			status:  map[string]status.FileStatus{"main.go": status.StatusUnchanged},
			matches: map[string]int{"main.go": 1},
		},
	}

	for _, async := range []bool{false, true} {
		for _, tt := range tests {
			name := tt.name
			if async {
				name += "_async"
			}
			t.Run(name, func(t *testing.T) {
				ctx := testutils.Context(t)
				dir := testutils.SetupTree(t, tree)
				cfg := parseConfig(t, tt.config)
				cfg.Async = async

				opts, mgr := NewOptions(cfg, dir)
				opts.DryRun = tt.dryRun
				opts.Limit = 2

				op, err := NewApplyOperation(opts)
				require.NoError(t, err)
				require.NoError(t, op.Execute(ctx))

				want := map[string]string{}
				for k, v := range tree {
					want[k] = v
				}
				for k, v := range tt.want {
					want[k] = v
				}
				assert.Equal(t, want, testutils.ReadTree(t, dir))

				for path, st := range tt.status {
					info, err := mgr.GetFileInfo(ctx, path)
					require.NoError(t, err, path)
					assert.Equal(t, st, info.Status, path)
				}
				for path, n := range tt.matches {
					info, err := mgr.GetFileInfo(ctx, path)
					require.NoError(t, err, path)
					assert.Equal(t, n, info.Matches, path)
				}

				_, err = mgr.GetFileInfo(ctx, ".git/HEAD")
				assert.Error(t, err, ".git is never walked")

				processed, total := mgr.Progress()
				assert.Equal(t, total, processed)
				assert.Equal(t, len(tree)-1, total)
			})
		}
	}
}

func TestApplyBackupAndRestore(t *testing.T) {
	ctx := testutils.Context(t)
	dir := testutils.SetupTree(t, map[string]string{
		"a.txt":     "hello world",
		"sub/b.txt": "hello there",
		"c.txt":     "nothing",
	})
	cfg := parseConfig(t, `
backup: true
rules:
  - name: greet
    pattern: hello
    template: goodbye
`)

	opts, mgr := NewOptions(cfg, dir)
	op, err := NewApplyOperation(opts)
	require.NoError(t, err)
	require.NoError(t, op.Execute(ctx))

	assert.Equal(t, map[string]string{
		"a.txt":         "goodbye world",
		"a.txt.bak":     "hello world",
		"sub/b.txt":     "goodbye there",
		"sub/b.txt.bak": "hello there",
		"c.txt":         "nothing",
	}, testutils.ReadTree(t, dir))
	assert.Equal(t, map[status.FileStatus]int{status.StatusModified: 2, status.StatusUnchanged: 1}, mgr.Counts())

	// a second run must not scan the backups
	opts, _ = NewOptions(cfg, dir)
	op, err = NewApplyOperation(opts)
	require.NoError(t, err)
	require.NoError(t, op.Execute(ctx))
	assert.Equal(t, "hello world", testutils.ReadTree(t, dir)["a.txt.bak"])

	opts, mgr = NewOptions(cfg, dir)
	restore, err := NewRestoreOperation(opts)
	require.NoError(t, err)
	require.NoError(t, restore.Execute(ctx))

	assert.Equal(t, map[string]string{
		"a.txt":     "hello world",
		"sub/b.txt": "hello there",
		"c.txt":     "nothing",
	}, testutils.ReadTree(t, dir))

	files, err := mgr.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].Path)
	assert.Equal(t, status.StatusRestored, files[0].Status)
	assert.Equal(t, "sub/b.txt", files[1].Path)
}

func TestCheck(t *testing.T) {
	ctx := testutils.Context(t)
	tree := map[string]string{"a.txt": "x1", "b.txt": "y"}
	dir := testutils.SetupTree(t, tree)
	cfg := parseConfig(t, `
rules:
  - name: digits
    pattern: "\\d"
    template: "#"
`)

	opts, _ := NewOptions(cfg, dir)
	changed, err := Check(ctx, opts)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, "a.txt", changed[0].Path)
	assert.Equal(t, 1, changed[0].Matches)
	assert.Equal(t, []string{"digits"}, changed[0].Rules)

	assert.Equal(t, tree, testutils.ReadTree(t, dir), "check never writes")
}

// 🔧 MockFileManager is a mock implementation of status.FileManager
type MockFileManager struct {
	mock.Mock
}

func (m *MockFileManager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockFileManager) FileExists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileManager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	return m.Called(ctx, path, content).Error(0)
}

func (m *MockFileManager) BackupFile(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockFileManager) RestoreFile(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func TestApplyFailures(t *testing.T) {
	ctx := testutils.Context(t)
	fsys := fstest.MapFS{
		"ok.txt":    {Data: []byte("abc")},
		"write.txt": {Data: []byte("abc")},
		"read.txt":  {Data: []byte("abc")},
	}
	cfg := parseConfig(t, `
backup: true
rules:
  - name: upper
    pattern: b
    template: B
`)

	files := &MockFileManager{}
	files.On("ReadFile", mock.Anything, "ok.txt").Return([]byte("abc"), nil)
	files.On("ReadFile", mock.Anything, "write.txt").Return([]byte("abc"), nil)
	files.On("ReadFile", mock.Anything, "read.txt").Return(nil, os.ErrPermission)
	files.On("BackupFile", mock.Anything, mock.Anything).Return(nil)
	files.On("WriteFileAtomic", mock.Anything, "ok.txt", []byte("aBc")).Return(nil)
	files.On("WriteFileAtomic", mock.Anything, "write.txt", []byte("aBc")).Return(errors.New("disk full"))

	reporter := status.New(t.TempDir())
	op, err := NewApplyOperation(Options{Config: cfg, FS: fsys, Files: files, Reporter: reporter})
	require.NoError(t, err)

	err = op.Execute(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFilesFailed))
	assert.Contains(t, err.Error(), "2 of 3")

	files.AssertExpectations(t)
	files.AssertNumberOfCalls(t, "BackupFile", 2)

	info, err := reporter.GetFileInfo(ctx, "read.txt")
	require.NoError(t, err)
	assert.Equal(t, status.StatusFailed, info.Status)
	assert.True(t, errors.Is(info.Error, os.ErrPermission))

	info, err = reporter.GetFileInfo(ctx, "write.txt")
	require.NoError(t, err)
	assert.Equal(t, status.StatusFailed, info.Status)
	assert.Contains(t, info.Error.Error(), "disk full")

	info, err = reporter.GetFileInfo(ctx, "ok.txt")
	require.NoError(t, err)
	assert.Equal(t, status.StatusModified, info.Status)
}

func TestApplyCancelled(t *testing.T) {
	ctx, cancelFn := context.WithCancel(testutils.Context(t))
	cancelFn()

	dir := testutils.SetupTree(t, map[string]string{"a.txt": "aaa"})
	cfg := parseConfig(t, "rules:\n  - {name: a, pattern: a, template: b}\n")

	opts, _ := NewOptions(cfg, dir)
	op, err := NewApplyOperation(opts)
	require.NoError(t, err)

	err = op.Execute(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, "aaa", testutils.ReadTree(t, dir)["a.txt"])
}

func TestNewBaseOperation(t *testing.T) {
	cfg := &config.Config{Rules: []config.Rule{{Name: "a", Pattern: "a"}}}
	mgr := status.New(t.TempDir())

	tests := []struct {
		name        string
		opts        Options
		errContains string
	}{
		{name: "no_config", opts: Options{FS: fstest.MapFS{}, Files: mgr, Reporter: mgr}, errContains: "config is required"},
		{name: "no_fs", opts: Options{Config: cfg, Files: mgr, Reporter: mgr}, errContains: "file system is required"},
		{name: "no_files", opts: Options{Config: cfg, FS: fstest.MapFS{}}, errContains: "file manager and reporter are required"},
		{name: "bad_engine", opts: Options{Config: &config.Config{Engine: "pcre"}, FS: fstest.MapFS{}, Files: mgr, Reporter: mgr}, errContains: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBaseOperation(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestNewBaseOperationCompilerOverride(t *testing.T) {
	mgr := status.New(t.TempDir())
	op, err := NewBaseOperation(Options{
		Config:   &config.Config{Engine: "pcre"},
		FS:       fstest.MapFS{},
		Files:    mgr,
		Reporter: mgr,
		Compiler: pattern.Regexp2{},
	})
	require.NoError(t, err)
	assert.Equal(t, "regexp2", op.Scanner.Engine())
}
