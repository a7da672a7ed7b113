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
	"fmt"
	"sort"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// DefaultEngine is the engine used when none is named
const DefaultEngine = "re2"

var (
	ErrUnknownEngine   = errors.New("unknown pattern engine")
	ErrUnsupportedFlag = errors.New("flag not supported by pattern engine")
)

// 🔌 Compiler turns a pattern string into a Pattern
type Compiler interface {
	// Name identifies the engine, e.g. "re2"
	Name() string

	// Compile fails with a *SyntaxError when expr is not a valid pattern
	Compile(expr string, flags Flags) (Pattern, error)
}

// 📐 Pattern is a compiled expression. It is safe for concurrent use.
type Pattern interface {
	// NumGroups is the number of capture groups, not counting group 0
	NumGroups() int

	// Matcher binds the pattern to one text for a single pass
	Matcher(text string) Matcher
}

// 🔎 Matcher finds matches in the text it was created for
type Matcher interface {
	// FindFrom returns the first match starting at or after byte offset pos,
	// or nil when there is none.
	FindFrom(pos int) (Match, error)
}

// 🎯 Match is one match. Offsets are byte offsets into the text.
type Match interface {
	Start() int
	End() int

	// Group returns the text of group i (0 is the whole match). ok is false
	// when the pattern has no such group; a group that did not take part in
	// the match is "", true.
	Group(i int) (string, bool)
}

// ⚠️ SyntaxError reports a pattern the engine refused to compile.
// Unwrap returns the engine's own error.
type SyntaxError struct {
	Engine  string
	Pattern string
	Err     error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid %s pattern %q: %v", e.Engine, e.Pattern, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

var (
	mu        sync.RWMutex
	compilers = map[string]Compiler{}
)

// 📝 Register makes a compiler available under its name
func Register(c Compiler) {
	mu.Lock()
	defer mu.Unlock()
	compilers[c.Name()] = c
}

// 🎯 Lookup returns the compiler registered under name; "" selects DefaultEngine
func Lookup(name string) (Compiler, error) {
	if name == "" {
		name = DefaultEngine
	}
	mu.RLock()
	defer mu.RUnlock()
	c, ok := compilers[name]
	if !ok {
		return nil, errors.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	return c, nil
}

// Engines lists the registered engine names in sorted order
func Engines() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(compilers))
	for name := range compilers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile looks up engine and compiles expr with it
func Compile(engine, expr string, flags Flags) (Pattern, error) {
	c, err := Lookup(engine)
	if err != nil {
		return nil, err
	}
	return c.Compile(expr, flags)
}
