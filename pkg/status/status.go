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

package status

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// BackupSuffix is appended to a file's path to name its backup
const BackupSuffix = ".bak"

// 📊 FileStatus is what applying rules did to a file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusModified             // at least one replacement changed the content
	StatusUnchanged            // no match, or every replacement was identical
	StatusFailed               // reading, scanning or writing failed
	StatusRestored             // content put back from a backup
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusFailed:
		return "failed"
	case StatusRestored:
		return "restored"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains what is known about one processed file
type FileInfo struct {
	Path     string      // Relative to the manager's base directory
	Status   FileStatus  // Current status
	Size     int64       // Size after processing
	Mode     os.FileMode // File permissions
	Checksum string      // SHA-256 of the content after processing
	Matches  int         // Replacements made across all rules
	Rules    []string    // Rules that matched at least once
	Error    error       // Any error associated with this file
}

// 💾 FileManager reads and writes files under a base directory
type FileManager interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	FileExists(ctx context.Context, path string) (bool, error)
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
	BackupFile(ctx context.Context, path string) error
	RestoreFile(ctx context.Context, path string) error
}

// 📈 StatusReporter tracks file status and reports progress
type StatusReporter interface {
	TrackFile(ctx context.Context, path string, info FileInfo)
	GetFileInfo(ctx context.Context, path string) (FileInfo, error)
	ListFiles(ctx context.Context) ([]FileInfo, error)

	StartOperation(ctx context.Context, total int)
	UpdateProgress(ctx context.Context, processed int)
	FinishOperation(ctx context.Context)
}

// 🔧 Manager implements both FileManager and StatusReporter. All paths are
// relative to baseDir.
type Manager struct {
	baseDir   string
	formatter FileFormatter

	mu    sync.RWMutex
	files map[string]FileInfo

	total     int
	processed int
}

var (
	_ FileManager    = (*Manager)(nil)
	_ StatusReporter = (*Manager)(nil)
)

// 🏭 New creates a manager for the tree rooted at baseDir
func New(baseDir string) *Manager {
	return &Manager{
		baseDir:   filepath.Clean(baseDir),
		formatter: NewDefaultFileFormatter(),
		files:     map[string]FileInfo{},
	}
}

// BaseDir returns the directory all paths are relative to
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// resolve turns a slash separated path relative to baseDir into an OS path
func (m *Manager) resolve(path string) string {
	return filepath.Join(m.baseDir, filepath.FromSlash(path))
}

// Checksum returns the hex SHA-256 of content
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// 📖 ReadFile returns the content of path
func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(m.resolve(path))
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	return content, nil
}

// FileExists reports whether path exists
func (m *Manager) FileExists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(m.resolve(path))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, errors.Errorf("stat %s: %w", path, err)
	}
}

// 💾 WriteFileAtomic replaces path with content through a temp file in the
// same directory, keeping the mode of the file it replaces
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	target := m.resolve(path)

	mode, err := modeOf(target, 0o644)
	if err != nil {
		return errors.Errorf("stat %s: %w", path, err)
	}
	if err := writeAtomic(target, content, mode); err != nil {
		return errors.Errorf("writing %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Trace().Str("path", path).Int("size", len(content)).Msg("file written")
	return nil
}

// 🗄️ BackupFile copies path to path+BackupSuffix; a missing path is not an error
func (m *Manager) BackupFile(ctx context.Context, path string) error {
	src := m.resolve(path)

	content, err := os.ReadFile(src)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Errorf("reading %s for backup: %w", path, err)
	}
	mode, err := modeOf(src, 0o644)
	if err != nil {
		return errors.Errorf("stat %s: %w", path, err)
	}

	if err := writeAtomic(src+BackupSuffix, content, mode); err != nil {
		return errors.Errorf("backing up %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("backup created")
	return nil
}

// ⏪ RestoreFile puts path+BackupSuffix back over path and removes the backup
func (m *Manager) RestoreFile(ctx context.Context, path string) error {
	backup := m.resolve(path) + BackupSuffix

	content, err := os.ReadFile(backup)
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("backup file does not exist: %s", path+BackupSuffix)
	}
	if err != nil {
		return errors.Errorf("reading backup of %s: %w", path, err)
	}
	mode, err := modeOf(backup, 0o644)
	if err != nil {
		return errors.Errorf("stat backup of %s: %w", path, err)
	}

	if err := writeAtomic(m.resolve(path), content, mode); err != nil {
		return errors.Errorf("restoring %s: %w", path, err)
	}
	if err := os.Remove(backup); err != nil {
		return errors.Errorf("removing backup of %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("backup restored")
	return nil
}

// 📝 TrackFile records the outcome for path, replacing any earlier one
func (m *Manager) TrackFile(ctx context.Context, path string, info FileInfo) {
	info.Path = path

	m.mu.Lock()
	m.files[path] = info
	m.mu.Unlock()

	ev := zerolog.Ctx(ctx).Debug()
	msg := m.formatter.FormatFileOperation(path, info.Status, info.Matches)
	if info.Error != nil {
		ev = ev.Err(info.Error)
		msg = m.formatter.FormatError(info.Error)
	}
	ev.Str("path", path).
		Str("status", info.Status.String()).
		Int("matches", info.Matches).
		Msg(msg)
}

// GetFileInfo returns what was tracked for path
func (m *Manager) GetFileInfo(ctx context.Context, path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if info, ok := m.files[path]; ok {
		return info, nil
	}
	return FileInfo{}, errors.Errorf("file not tracked: %s", path)
}

// ListFiles returns every tracked file sorted by path
func (m *Manager) ListFiles(ctx context.Context) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b FileInfo) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out, nil
}

// Counts returns how many tracked files are in each status
func (m *Manager) Counts() map[FileStatus]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := map[FileStatus]int{}
	for _, info := range m.files {
		counts[info.Status]++
	}
	return counts
}

// ⏳ StartOperation resets progress for a pass over total files
func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.setProgress(ctx, 0, total, zerolog.DebugLevel)
}

// UpdateProgress records that processed files are done
func (m *Manager) UpdateProgress(ctx context.Context, processed int) {
	m.mu.RLock()
	total := m.total
	m.mu.RUnlock()
	m.setProgress(ctx, processed, total, zerolog.TraceLevel)
}

// FinishOperation marks the pass complete
func (m *Manager) FinishOperation(ctx context.Context) {
	m.mu.RLock()
	total := m.total
	m.mu.RUnlock()
	m.setProgress(ctx, total, total, zerolog.DebugLevel)
}

func (m *Manager) setProgress(ctx context.Context, processed, total int, level zerolog.Level) {
	m.mu.Lock()
	m.processed, m.total = processed, total
	m.mu.Unlock()

	zerolog.Ctx(ctx).WithLevel(level).
		Int("processed", processed).
		Int("total", total).
		Msg(m.formatter.FormatProgress(processed, total))
}

// Progress returns processed and total from the current operation
func (m *Manager) Progress() (processed, total int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processed, m.total
}

// modeOf returns the permission bits of path, or def when it does not exist
func modeOf(path string, def os.FileMode) (os.FileMode, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return 0, err
	}
	return fi.Mode().Perm(), nil
}

// writeAtomic writes content to a temp file next to target, then renames it
// over target
func writeAtomic(target string, content []byte, mode os.FileMode) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()

	_, err = tmp.Write(content)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(name, mode)
	}
	if err == nil {
		err = os.Rename(name, target)
	}
	if err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}
