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
	"sort"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(Regexp2{})
}

// 🔧 Regexp2 compiles patterns with github.com/dlclark/regexp2, a
// backtracking engine with lookaround and backreferences.
type Regexp2 struct {
	// Timeout bounds a single match attempt; zero means no limit
	Timeout time.Duration
}

func (Regexp2) Name() string { return "regexp2" }

func (c Regexp2) Compile(expr string, flags Flags) (Pattern, error) {
	if flags.Has(Ungreedy) {
		return nil, errors.Errorf("%w: %s does not support ungreedy mode", ErrUnsupportedFlag, c.Name())
	}

	src := expr
	if flags.Has(Literal) {
		src = regexp2.Escape(expr)
	}

	opts := regexp2.RegexOptions(regexp2.None)
	if flags.Has(CaseInsensitive) {
		opts |= regexp2.IgnoreCase
	}
	if flags.Has(Multiline) {
		opts |= regexp2.Multiline
	}
	if flags.Has(DotAll) {
		opts |= regexp2.Singleline
	}
	if flags.Has(Comments) {
		opts |= regexp2.IgnorePatternWhitespace
	}

	re, err := regexp2.Compile(src, opts)
	if err != nil {
		return nil, &SyntaxError{Engine: c.Name(), Pattern: expr, Err: err}
	}
	if c.Timeout > 0 {
		re.MatchTimeout = c.Timeout
	}
	return &regexp2Pattern{re: re}, nil
}

type regexp2Pattern struct {
	re *regexp2.Regexp
}

func (p *regexp2Pattern) NumGroups() int {
	return len(p.re.GetGroupNumbers()) - 1
}

func (p *regexp2Pattern) Matcher(text string) Matcher {
	runes := make([]rune, 0, utf8.RuneCountInString(text))
	offsets := make([]int, 0, cap(runes)+1)
	for i, r := range text {
		runes = append(runes, r)
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	return &regexp2Matcher{re: p.re, runes: runes, offsets: offsets}
}

// regexp2Matcher works on runes; offsets maps a rune index to its byte offset
// so that callers only ever see byte offsets.
type regexp2Matcher struct {
	re      *regexp2.Regexp
	runes   []rune
	offsets []int
}

func (m *regexp2Matcher) FindFrom(pos int) (Match, error) {
	if pos > m.offsets[len(m.offsets)-1] {
		return nil, nil
	}
	// first rune starting at or after pos
	start := sort.SearchInts(m.offsets, pos)

	found, err := m.re.FindRunesMatchStartingAt(m.runes, start)
	if err != nil {
		return nil, errors.Errorf("matching at offset %d: %w", pos, err)
	}
	if found == nil {
		return nil, nil
	}
	return &regexp2Match{m: found, offsets: m.offsets}, nil
}

type regexp2Match struct {
	m       *regexp2.Match
	offsets []int
}

func (r *regexp2Match) Start() int {
	return r.offsets[r.m.Index]
}

func (r *regexp2Match) End() int {
	return r.offsets[r.m.Index+r.m.Length]
}

func (r *regexp2Match) Group(i int) (string, bool) {
	g := r.m.GroupByNumber(i)
	if g == nil {
		return "", false
	}
	if len(g.Captures) == 0 {
		return "", true
	}
	return g.String(), true
}
