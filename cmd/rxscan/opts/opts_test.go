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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rxscan/pkg/log"
	"github.com/walteh/rxscan/pkg/pattern"
)

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, o *RootOpts)
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			check: func(t *testing.T, o *RootOpts) {
				assert.Equal(t, pattern.DefaultEngine, o.Engine)
				assert.False(t, o.Debug)
				assert.Zero(t, o.Timeout)
				assert.Empty(t, o.ConfigFile)
			},
		},
		{
			name: "all_set",
			env: map[string]string{
				"RXSCAN_ENGINE":  " regexp2 ",
				"RXSCAN_DEBUG":   "TRUE",
				"RXSCAN_TIMEOUT": "2s",
				"RXSCAN_CONFIG":  "rules.hcl",
			},
			check: func(t *testing.T, o *RootOpts) {
				assert.Equal(t, "regexp2", o.Engine)
				assert.True(t, o.Debug)
				assert.Equal(t, 2*time.Second, o.Timeout)
				assert.Equal(t, "rules.hcl", o.ConfigFile)
			},
		},
		{
			name: "debug_one",
			env:  map[string]string{"RXSCAN_DEBUG": "1"},
			check: func(t *testing.T, o *RootOpts) {
				assert.True(t, o.Debug)
			},
		},
		{
			name: "bad_values",
			env:  map[string]string{"RXSCAN_DEBUG": "yes", "RXSCAN_TIMEOUT": "soon"},
			check: func(t *testing.T, o *RootOpts) {
				assert.False(t, o.Debug)
				assert.Zero(t, o.Timeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"RXSCAN_ENGINE", "RXSCAN_DEBUG", "RXSCAN_TIMEOUT", "RXSCAN_CONFIG"} {
				t.Setenv(key, tt.env[key])
			}
			tt.check(t, FromEnv())
		})
	}
}

func TestFromEnvDotenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RXSCAN_ENGINE=regexp2\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// godotenv never overrides what is already set, so start from empty
	t.Setenv("RXSCAN_ENGINE", "")
	require.NoError(t, os.Unsetenv("RXSCAN_ENGINE"))

	assert.Equal(t, "regexp2", FromEnv().Engine)
}

func TestSetup(t *testing.T) {
	var out, errOut bytes.Buffer

	o := &RootOpts{Debug: true}
	ctx := o.Setup(context.Background(), &out, &errOut)

	require.NotNil(t, o.Logger)
	require.NotNil(t, o.UserLogger)
	assert.Same(t, o.Logger, log.FromContext(ctx))
	assert.Equal(t, zerolog.DebugLevel, zerolog.Ctx(ctx).GetLevel())

	o.Logger.Info("hello")
	assert.Contains(t, out.String(), "hello")

	zerolog.Ctx(ctx).Debug().Msg("structured")
	assert.Contains(t, errOut.String(), "structured")
}

func TestCompiler(t *testing.T) {
	o := &RootOpts{Engine: "regexp2", Timeout: time.Second}

	c, err := o.Compiler("")
	require.NoError(t, err)
	assert.Equal(t, pattern.Regexp2{Timeout: time.Second}, c)

	c, err = o.Compiler("re2")
	require.NoError(t, err)
	assert.Equal(t, pattern.RE2{}, c)

	_, err = o.Compiler("pcre")
	require.Error(t, err)

	s, err := o.Scanner("")
	require.NoError(t, err)
	assert.Equal(t, "regexp2", s.Engine())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".rxscan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rules":[{"name":"a","pattern":"a","template":"b"}]}`), 0o644))

	o := &RootOpts{}
	cfg, err := o.LoadConfig(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Location())

	o.ConfigFile = filepath.Join(dir, "missing.yaml")
	_, err = o.LoadConfig(context.Background(), dir)
	require.Error(t, err)

	o.ConfigFile = ""
	_, err = o.LoadConfig(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config file found")
}
