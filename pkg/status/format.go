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
	"fmt"
)

// 🎨 FileFormatter renders status messages
type FileFormatter interface {
	// FormatFileOperation formats the outcome for one file
	FormatFileOperation(path string, status FileStatus, matches int) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a file operation status message with emojis
func (f *DefaultFileFormatter) FormatFileOperation(path string, status FileStatus, matches int) string {
	switch status {
	case StatusModified:
		return fmt.Sprintf("📝 Modified %s (%s)", path, plural(matches, "replacement"))
	case StatusRestored:
		return fmt.Sprintf("⏪ Restored %s", path)
	case StatusFailed:
		return fmt.Sprintf("❌ Failed %s", path)
	default:
		return fmt.Sprintf("👍 Unchanged %s", path)
	}
}

// FormatProgress renders "⏳ 1/4 files (25%)", with ✅ once current reaches total
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	icon := "⏳"
	if current >= total {
		icon = "✅"
	}
	return fmt.Sprintf("%s %d/%d files (%.0f%%)", icon, current, total, percent(current, total))
}

// FormatError renders err behind a cross
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return "❌ " + err.Error()
}

func percent(current, total int) float64 {
	switch {
	case total > 0:
		return float64(current) / float64(total) * 100
	case current > 0:
		return 100
	default:
		return 0
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
