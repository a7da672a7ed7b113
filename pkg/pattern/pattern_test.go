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
	"regexp/syntax"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

type span struct {
	start, end int
	group0     string
}

func collect(t *testing.T, p Pattern, text string) []span {
	t.Helper()
	m := p.Matcher(text)
	var out []span
	pos := 0
	for pos <= len(text) {
		found, err := m.FindFrom(pos)
		require.NoError(t, err)
		if found == nil {
			break
		}
		g, ok := found.Group(0)
		require.True(t, ok)
		out = append(out, span{found.Start(), found.End(), g})
		pos = found.End()
		if found.Start() == found.End() {
			pos++
		}
	}
	return out
}

func TestEngines(t *testing.T) {
	assert.Equal(t, []string{"re2", "regexp2"}, Engines())

	c, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEngine, c.Name())

	_, err = Lookup("pcre")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEngine))
}

func TestCompileAndFind(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		flags Flags
		text  string
		want  []span
	}{
		{
			name: "simple",
			expr: "bc",
			text: "abcd",
			want: []span{{1, 3, "bc"}},
		},
		{
			name: "repeats",
			expr: "a",
			text: "abcaad",
			want: []span{{0, 1, "a"}, {3, 4, "a"}, {4, 5, "a"}},
		},
		{
			name: "empty_after_match",
			expr: "a*",
			text: "baaa",
			want: []span{{0, 0, ""}, {1, 4, "aaa"}, {4, 4, ""}},
		},
		{
			name: "word_boundaries",
			expr: `\b`,
			text: "ab cd",
			want: []span{{0, 0, ""}, {2, 2, ""}, {3, 3, ""}, {5, 5, ""}},
		},
		{
			name: "no_match",
			expr: "123",
			text: "abcd",
		},
		{
			name:  "case_insensitive",
			expr:  "B",
			flags: CaseInsensitive,
			text:  "abB",
			want:  []span{{1, 2, "b"}, {2, 3, "B"}},
		},
		{
			name:  "literal",
			expr:  "a.c",
			flags: Literal,
			text:  "abc a.c",
			want:  []span{{4, 7, "a.c"}},
		},
		{
			name:  "multiline_anchor",
			expr:  "^x",
			flags: Multiline,
			text:  "x\nx",
			want:  []span{{0, 1, "x"}, {2, 3, "x"}},
		},
		{
			name: "anchor_keeps_context",
			expr: "^x",
			text: "xx",
			want: []span{{0, 1, "x"}},
		},
		{
			name: "multibyte_offsets",
			expr: "é+",
			text: "aéébé",
			want: []span{{1, 5, "éé"}, {6, 8, "é"}},
		},
	}

	for _, engine := range Engines() {
		for _, tt := range tests {
			t.Run(engine+"/"+tt.name, func(t *testing.T) {
				p, err := Compile(engine, tt.expr, tt.flags)
				require.NoError(t, err)

				got := collect(t, p, tt.text)
				assert.Equal(t, tt.want, got)
			})
		}
	}
}

func TestGroups(t *testing.T) {
	for _, engine := range Engines() {
		t.Run(engine, func(t *testing.T) {
			p, err := Compile(engine, "(b)(x)?(c)", 0)
			require.NoError(t, err)
			assert.Equal(t, 3, p.NumGroups())

			m, err := p.Matcher("abcd").FindFrom(0)
			require.NoError(t, err)
			require.NotNil(t, m)

			g, ok := m.Group(1)
			assert.True(t, ok)
			assert.Equal(t, "b", g)

			g, ok = m.Group(2)
			assert.True(t, ok, "non-participating group still exists")
			assert.Equal(t, "", g)

			g, ok = m.Group(3)
			assert.True(t, ok)
			assert.Equal(t, "c", g)

			_, ok = m.Group(4)
			assert.False(t, ok)
		})
	}
}

func TestFindFromAnyOffset(t *testing.T) {
	text := "a1 b2 c3"
	for _, engine := range Engines() {
		t.Run(engine, func(t *testing.T) {
			p, err := Compile(engine, `([a-z])(\d)`, 0)
			require.NoError(t, err)
			m := p.Matcher(text)

			// searches do not depend on earlier calls
			for _, tt := range []struct {
				pos   int
				start int
				group string
			}{
				{pos: 6, start: 6, group: "c"},
				{pos: 1, start: 3, group: "b"},
				{pos: 0, start: 0, group: "a"},
				{pos: 4, start: 6, group: "c"},
			} {
				found, err := m.FindFrom(tt.pos)
				require.NoError(t, err)
				require.NotNil(t, found)
				assert.Equal(t, tt.start, found.Start(), "from %d", tt.pos)
				assert.Equal(t, tt.start+2, found.End(), "from %d", tt.pos)
				g, ok := found.Group(1)
				assert.True(t, ok)
				assert.Equal(t, tt.group, g, "from %d", tt.pos)
			}

			found, err := m.FindFrom(7)
			require.NoError(t, err)
			assert.Nil(t, found)

			found, err = m.FindFrom(len(text) + 1)
			require.NoError(t, err)
			assert.Nil(t, found)
		})
	}
}

func TestSyntaxError(t *testing.T) {
	for _, engine := range Engines() {
		t.Run(engine, func(t *testing.T) {
			_, err := Compile(engine, "(ab", 0)
			require.Error(t, err)

			var serr *SyntaxError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, engine, serr.Engine)
			assert.Equal(t, "(ab", serr.Pattern)
		})
	}

	t.Run("re2_unwraps_to_regexp_syntax", func(t *testing.T) {
		_, err := RE2{}.Compile("(ab", 0)
		var perr *syntax.Error
		assert.True(t, errors.As(err, &perr))
	})
}

func TestUnsupportedFlags(t *testing.T) {
	_, err := RE2{}.Compile("a b", Comments)
	assert.True(t, errors.Is(err, ErrUnsupportedFlag))

	_, err = Regexp2{}.Compile("a*", Ungreedy)
	assert.True(t, errors.Is(err, ErrUnsupportedFlag))
}

func TestRegexp2Lookaround(t *testing.T) {
	p, err := Regexp2{}.Compile(`(?<=a)b`, 0)
	require.NoError(t, err)

	got := collect(t, p, "abcb")
	assert.Equal(t, []span{{1, 2, "b"}}, got)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    Flags
		wantErr string
	}{
		{name: "empty", in: nil, want: 0},
		{name: "short", in: []string{"i", "m"}, want: CaseInsensitive | Multiline},
		{name: "long", in: []string{"DOT_ALL", "literal"}, want: DotAll | Literal},
		{name: "blank_ignored", in: []string{" ", "U"}, want: Ungreedy},
		{name: "unknown", in: []string{"z"}, wantErr: `unknown flag "z"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlags(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "", Flags(0).String())
	assert.Equal(t, "imsqxU", (CaseInsensitive | Multiline | DotAll | Literal | Comments | Ungreedy).String())
}
