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
	"regexp"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(RE2{})
}

// 🔧 RE2 compiles patterns with the standard library regexp package
// (linear time, no backreferences or lookaround).
type RE2 struct{}

func (RE2) Name() string { return "re2" }

func (c RE2) Compile(expr string, flags Flags) (Pattern, error) {
	if flags.Has(Comments) {
		return nil, errors.Errorf("%w: %s does not support comments mode", ErrUnsupportedFlag, c.Name())
	}

	src := expr
	if flags.Has(Literal) {
		src = regexp.QuoteMeta(expr)
	}

	var inline strings.Builder
	if flags.Has(CaseInsensitive) {
		inline.WriteByte('i')
	}
	if flags.Has(Multiline) {
		inline.WriteByte('m')
	}
	if flags.Has(DotAll) {
		inline.WriteByte('s')
	}
	if flags.Has(Ungreedy) {
		inline.WriteByte('U')
	}
	if inline.Len() > 0 {
		src = "(?" + inline.String() + ")" + src
	}

	re, err := regexp.Compile(src)
	if err != nil {
		return nil, &SyntaxError{Engine: c.Name(), Pattern: expr, Err: err}
	}
	// resume skips exactly one rune of context, then searches lazily for
	// the pattern; group 1 is the match
	resume, err := regexp.Compile(`\A(?s:.)(?s:.*?)(` + src + `)`)
	if err != nil {
		return nil, &SyntaxError{Engine: c.Name(), Pattern: expr, Err: err}
	}
	return &re2Pattern{re: re, resume: resume}, nil
}

type re2Pattern struct {
	re     *regexp.Regexp
	resume *regexp.Regexp
}

func (p *re2Pattern) NumGroups() int {
	return p.re.NumSubexp()
}

func (p *re2Pattern) Matcher(text string) Matcher {
	return &re2Matcher{p: p, text: text}
}

// re2Matcher searches on demand. regexp cannot start a search at an offset,
// so a search from pos > 0 runs p.resume over the text starting one rune
// before pos: that rune keeps \b, ^ and $ correct at pos, and an empty
// match right at pos is found like any other.
type re2Matcher struct {
	p    *re2Pattern
	text string
}

func (m *re2Matcher) FindFrom(pos int) (Match, error) {
	if pos > len(m.text) {
		return nil, nil
	}
	if pos <= 0 {
		loc := m.p.re.FindStringSubmatchIndex(m.text)
		if loc == nil {
			return nil, nil
		}
		return &re2Match{text: m.text, loc: loc}, nil
	}

	_, width := utf8.DecodeLastRuneInString(m.text[:pos])
	base := pos - width
	loc := m.p.resume.FindStringSubmatchIndex(m.text[base:])
	if loc == nil {
		return nil, nil
	}

	// drop the outer match, shift the rest back into m.text
	out := make([]int, len(loc)-2)
	for i, v := range loc[2:] {
		if v >= 0 {
			v += base
		}
		out[i] = v
	}
	return &re2Match{text: m.text, loc: out}, nil
}

type re2Match struct {
	text string
	loc  []int
}

func (m *re2Match) Start() int { return m.loc[0] }

func (m *re2Match) End() int { return m.loc[1] }

func (m *re2Match) Group(i int) (string, bool) {
	if i < 0 || 2*i+1 >= len(m.loc) {
		return "", false
	}
	if m.loc[2*i] < 0 {
		return "", true
	}
	return m.text[m.loc[2*i]:m.loc[2*i+1]], true
}
