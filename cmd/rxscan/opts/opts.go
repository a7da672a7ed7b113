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

package opts

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/walteh/rxscan/pkg/config"
	"github.com/walteh/rxscan/pkg/log"
	"github.com/walteh/rxscan/pkg/pattern"
	"github.com/walteh/rxscan/pkg/scan"
	"gitlab.com/tozd/go/errors"
)

// 🔧 RootOpts contains shared options for all commands
type RootOpts struct {
	ConfigFile string        // empty means discover one of config.DefaultFiles
	Engine     string        // pattern engine for ad hoc scans
	Timeout    time.Duration // regexp2 match timeout, zero for none
	Debug      bool

	Logger     *log.Logger
	UserLogger *log.UserLogger
}

// 🌱 FromEnv builds RootOpts from RXSCAN_* environment variables, reading a
// .env file in the working directory first when there is one
func FromEnv() *RootOpts {
	_ = godotenv.Load()

	o := &RootOpts{
		Engine:     pattern.DefaultEngine,
		ConfigFile: strings.TrimSpace(os.Getenv("RXSCAN_CONFIG")),
		Debug:      envBool("RXSCAN_DEBUG"),
	}
	if v := strings.TrimSpace(os.Getenv("RXSCAN_ENGINE")); v != "" {
		o.Engine = v
	}
	if v := strings.TrimSpace(os.Getenv("RXSCAN_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			o.Timeout = d
		}
	}
	return o
}

func envBool(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "1" || strings.EqualFold(v, "true")
}

// 📝 Setup builds the loggers. Console output goes to out and structured
// logs to errOut. The returned context carries both.
func (o *RootOpts) Setup(ctx context.Context, out, errOut io.Writer) context.Context {
	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = errOut
	})).With().Timestamp().Logger().Level(level)

	o.Logger = log.NewWithZerolog(out, zlog)
	o.UserLogger = log.NewUserLogger(errOut, zlog)
	return log.NewContext(ctx, o.Logger)
}

// 🔍 Compiler returns the compiler for engine, or for o.Engine when engine
// is empty, with the match timeout applied
func (o *RootOpts) Compiler(engine string) (pattern.Compiler, error) {
	if engine == "" {
		engine = o.Engine
	}
	c, err := pattern.Lookup(engine)
	if err != nil {
		return nil, err
	}
	if r, ok := c.(pattern.Regexp2); ok && o.Timeout > 0 {
		r.Timeout = o.Timeout
		c = r
	}
	return c, nil
}

// Scanner builds a scanner for engine, see Compiler
func (o *RootOpts) Scanner(engine string) (*scan.Scanner, error) {
	c, err := o.Compiler(engine)
	if err != nil {
		return nil, err
	}
	return scan.New(scan.WithCompiler(c)), nil
}

// 📂 LoadConfig loads ConfigFile, or the config discovered in dir
func (o *RootOpts) LoadConfig(ctx context.Context, dir string) (*config.Config, error) {
	path := o.ConfigFile
	if path == "" {
		found, err := config.Discover(dir)
		if err != nil {
			return nil, errors.Errorf("finding config in %s: %w", dir, err)
		}
		path = found
	}
	return config.Load(ctx, path)
}
