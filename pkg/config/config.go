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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/rxscan/pkg/pattern"
	"github.com/walteh/rxscan/pkg/template"
	"gitlab.com/tozd/go/errors"
)

// DefaultFiles are tried in order when no config path is given
var DefaultFiles = []string{".rxscan.yaml", ".rxscan.yml", ".rxscan.hcl", ".rxscan.json"}

// 🔄 Rule is one pattern/template pair and the files it applies to
type Rule struct {
	Name     string   `json:"name" yaml:"name" hcl:"name,label"`
	Pattern  string   `json:"pattern" yaml:"pattern" hcl:"pattern"`
	Template string   `json:"template" yaml:"template" hcl:"template"`
	Flags    []string `json:"flags,omitempty" yaml:"flags,omitempty" hcl:"flags,optional"`
	Files    []string `json:"files,omitempty" yaml:"files,omitempty" hcl:"files,optional"`
	Ignore   []string `json:"ignore,omitempty" yaml:"ignore,omitempty" hcl:"ignore,optional"`

	flags pattern.Flags
}

// PatternFlags returns the parsed flags; set by Validate
func (r *Rule) PatternFlags() pattern.Flags {
	return r.flags
}

// 📚 Config is a rule set
type Config struct {
	Engine string `json:"engine,omitempty" yaml:"engine,omitempty" hcl:"engine,optional"`
	Backup bool   `json:"backup,omitempty" yaml:"backup,omitempty" hcl:"backup,optional"`
	Async  bool   `json:"async,omitempty" yaml:"async,omitempty" hcl:"async,optional"`
	Rules  []Rule `json:"rules" yaml:"rules" hcl:"rule,block"`

	location string
}

// Location is the file the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 🎯 Load reads, parses and validates the config at path
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(ctx, path, data)
	if err != nil {
		return nil, err
	}
	cfg.location = path

	logger.Debug().Str("path", path).Int("rules", len(cfg.Rules)).Str("engine", cfg.Engine).Msg("configuration loaded")
	return cfg, nil
}

// 🔍 Discover returns the first of DefaultFiles present in dir
func Discover(dir string) (string, error) {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.Errorf("no config file found in %s (tried %v)", dir, DefaultFiles)
}

// 📝 Parse decodes data with the parser registered for filename and validates it
func Parse(ctx context.Context, filename string, data []byte) (*Config, error) {
	p := GetParser(filename)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", filename)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(ctx); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate fills defaults, then checks every rule: its pattern must
// compile with the configured engine, its template may only reference groups
// the pattern has, and its globs must be well formed.
func (cfg *Config) Validate(ctx context.Context) error {
	if cfg.Engine == "" {
		cfg.Engine = pattern.DefaultEngine
	}
	compiler, err := pattern.Lookup(cfg.Engine)
	if err != nil {
		return err
	}

	if len(cfg.Rules) == 0 {
		return errors.New("at least one rule is required")
	}

	seen := map[string]bool{}
	for i := range cfg.Rules {
		r := &cfg.Rules[i]
		if r.Name == "" {
			return errors.Errorf("rules[%d]: name is required", i)
		}
		if seen[r.Name] {
			return errors.Errorf("rule %q: duplicate name", r.Name)
		}
		seen[r.Name] = true

		if err := r.validate(compiler); err != nil {
			return errors.Errorf("rule %q: %w", r.Name, err)
		}

		zerolog.Ctx(ctx).Trace().Str("rule", r.Name).Str("flags", r.flags.String()).Msg("rule validated")
	}

	return nil
}

func (r *Rule) validate(compiler pattern.Compiler) error {
	if r.Pattern == "" {
		return errors.New("pattern is required")
	}

	flags, err := pattern.ParseFlags(r.Flags)
	if err != nil {
		return err
	}
	r.flags = flags

	p, err := compiler.Compile(r.Pattern, flags)
	if err != nil {
		return err
	}

	if err := template.Validate(r.Template, p.NumGroups()); err != nil {
		return errors.Errorf("template: %w", err)
	}

	if len(r.Files) == 0 {
		r.Files = []string{"**"}
	}
	for _, g := range append(append([]string{}, r.Files...), r.Ignore...) {
		if !doublestar.ValidatePattern(g) {
			return errors.Errorf("invalid glob %q", g)
		}
	}

	return nil
}

// 📝 String returns a short description of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%d rules (engine %s)", len(cfg.Rules), cfg.Engine)
}
