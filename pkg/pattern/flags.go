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

package pattern

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🚩 Flags is a bit mask of match options. What each bit means exactly is
// up to the engine that compiles the pattern.
type Flags uint

const (
	CaseInsensitive Flags = 1 << iota // i: case-insensitive matching
	Multiline                         // m: ^ and $ match at line boundaries
	DotAll                            // s: . matches \n
	Literal                           // pattern is matched as plain text
	Comments                          // x: whitespace and #-comments are ignored in the pattern
	Ungreedy                          // U: swap the meaning of x* and x*?
)

var flagNames = []struct {
	flag  Flags
	short string
	long  string
}{
	{CaseInsensitive, "i", "case_insensitive"},
	{Multiline, "m", "multiline"},
	{DotAll, "s", "dot_all"},
	{Literal, "q", "literal"},
	{Comments, "x", "comments"},
	{Ungreedy, "U", "ungreedy"},
}

// Has reports whether every bit of f2 is set in f
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// String renders the flags as their short names, e.g. "im"
func (f Flags) String() string {
	var sb strings.Builder
	for _, n := range flagNames {
		if f.Has(n.flag) {
			sb.WriteString(n.short)
		}
	}
	return sb.String()
}

// 🔍 ParseFlags turns flag names into a Flags mask. Both the short form
// ("i", "m", "s", "q", "x", "U") and the long form ("case_insensitive",
// "multiline", ...) are accepted; long names are case-insensitive.
func ParseFlags(names []string) (Flags, error) {
	var f Flags
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for _, n := range flagNames {
			if name == n.short || strings.EqualFold(name, n.long) {
				f |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, errors.Errorf("unknown flag %q", name)
		}
	}
	return f, nil
}
