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

// Package template evaluates replacement templates.
//
// A template is literal text with two kinds of markup:
//
//	$0 .. $9     text of capture group N of the current match ($0 is the whole match)
//	\n \r \t     newline, carriage return, tab
//
// A backslash before any other character is kept along with that character,
// and a $ that is not followed by a digit produces nothing. A template that
// ends with an unescaped backslash is malformed.
package template

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrTrailingEscape = errors.New("template ends with an unfinished escape")
	ErrMissingGroup   = errors.New("template references a missing group")
)

// MissingGroupError names the group a template asked for that the match lacks
type MissingGroupError struct {
	Index int
}

func (e *MissingGroupError) Error() string {
	return fmt.Sprintf("%v: $%d", ErrMissingGroup, e.Index)
}

func (e *MissingGroupError) Is(target error) bool {
	return target == ErrMissingGroup
}

// Groups gives access to the capture groups of the current match
type Groups interface {
	Group(i int) (string, bool)
}

type state int

const (
	stateNormal state = iota
	stateAfterBackslash
	stateAfterDollar
)

// 🔄 Evaluate expands tmpl against the groups of one match
func Evaluate(tmpl string, groups Groups) (string, error) {
	var out strings.Builder
	out.Grow(len(tmpl))
	if err := walk(tmpl, &out, func(i int) (string, error) {
		g, ok := groups.Group(i)
		if !ok {
			return "", &MissingGroupError{Index: i}
		}
		return g, nil
	}); err != nil {
		return "", err
	}
	return out.String(), nil
}

// 🔍 Validate checks tmpl without a match. References to groups above
// numGroups are reported as missing; a negative numGroups skips that check.
func Validate(tmpl string, numGroups int) error {
	return walk(tmpl, nil, func(i int) (string, error) {
		if numGroups >= 0 && i > numGroups {
			return "", &MissingGroupError{Index: i}
		}
		return "", nil
	})
}

// walk runs the template state machine; out may be nil when only errors matter.
// Only ASCII bytes are special, so the template is walked byte by byte and
// everything else, invalid UTF-8 included, is copied through untouched.
func walk(tmpl string, out *strings.Builder, group func(i int) (string, error)) error {
	emit := func(s string) {
		if out != nil {
			out.WriteString(s)
		}
	}
	emitByte := func(c byte) {
		if out != nil {
			out.WriteByte(c)
		}
	}

	st := stateNormal
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch st {
		case stateNormal:
			switch c {
			case '\\':
				st = stateAfterBackslash
			case '$':
				st = stateAfterDollar
			default:
				emitByte(c)
			}

		case stateAfterBackslash:
			switch c {
			case 'n':
				emitByte('\n')
			case 'r':
				emitByte('\r')
			case 't':
				emitByte('\t')
			default:
				emitByte('\\')
				emitByte(c)
			}
			st = stateNormal

		case stateAfterDollar:
			switch {
			case c >= '0' && c <= '9':
				g, err := group(int(c - '0'))
				if err != nil {
					return err
				}
				emit(g)
				st = stateNormal
			case c == '\\':
				st = stateAfterBackslash
			case c == '$':
				// a second $ restarts the reference
			default:
				emitByte(c)
				st = stateNormal
			}
		}
	}

	if st == stateAfterBackslash {
		return errors.Errorf("%w at offset %d", ErrTrailingEscape, len(tmpl)-1)
	}
	return nil
}
