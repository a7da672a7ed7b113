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
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 10 // Width for status text
)

// 🎯 FormatFileLine formats one file's outcome as a colored table row
func FormatFileLine(info FileInfo) string {
	var prefix string
	switch info.Status {
	case StatusModified:
		prefix = color.YellowString("⟳")
	case StatusRestored:
		prefix = color.GreenString("↺")
	case StatusFailed:
		prefix = color.RedString("✗")
	default:
		prefix = color.HiBlackString("-")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, info.Path)
	statusPart := fmt.Sprintf("%-*s", statusWidth, info.Status.String())

	detail := ""
	switch {
	case info.Error != nil:
		detail = color.RedString("%v", info.Error)
	case info.Matches > 0 && len(info.Rules) > 0:
		detail = fmt.Sprintf("%s [%s]", plural(info.Matches, "replacement"), strings.Join(info.Rules, ", "))
	case info.Matches > 0:
		detail = plural(info.Matches, "replacement")
	}

	return strings.TrimRight(fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		namePart,
		statusPart,
		detail,
	), " ")
}
