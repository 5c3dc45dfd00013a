// Copyright 2021 Andrew Werner.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package workout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ansel1/merry"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajwerner/intrusive/heap"
)

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := LoadConfig(nil, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultEntries, cfg.Entries)
	assert.Equal(t, DefaultRounds, cfg.Rounds)
	assert.Equal(t, DefaultThreads, cfg.Threads)
	assert.Equal(t, int64(DefaultSeed), cfg.Seed)
	assert.Equal(t, DefaultHeapKind, cfg.HeapKind)
	assert.False(t, cfg.Verify)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
entries: 250
rounds: 3
threads: 4
verify: true
heap_kind: max
`), 0o600))

	cfg, err := LoadConfig(nil, path)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Entries)
	assert.Equal(t, 3, cfg.Rounds)
	assert.Equal(t, 4, cfg.Threads)
	assert.True(t, cfg.Verify)
	kind, err := cfg.Kind()
	require.NoError(t, err)
	assert.Equal(t, heap.Max, kind)
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entries: 250\nrounds: 3\n"), 0o600))
	t.Setenv("INTRUSIVE_ROUNDS", "7")

	v := viper.New()
	v.Set("entries", 99)
	cfg, err := LoadConfig(v, path)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Entries)
	assert.Equal(t, 7, cfg.Rounds)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(nil, filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{Entries: 1, Rounds: 1, Threads: 1, HeapKind: "min", LogLevel: "info"}
	}
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"upper case kind", func(c *Config) { c.HeapKind = "MAX" }, nil},
		{"zero entries", func(c *Config) { c.Entries = 0 }, ErrInvalidEntries},
		{"negative rounds", func(c *Config) { c.Rounds = -1 }, ErrInvalidRounds},
		{"zero threads", func(c *Config) { c.Threads = 0 }, ErrInvalidThreads},
		{"bad kind", func(c *Config) { c.HeapKind = "middle" }, ErrInvalidHeapKind},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, ErrInvalidLogLevel},
		{"json format", func(c *Config) { c.LogFormat = "JSON" }, nil},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidLogFormat},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, merry.Is(err, tt.want), "got %v", err)
		})
	}
}

// chdir changes the working directory to dir for the duration of the test
// and restores it on cleanup (equivalent of testing.T.Chdir for go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
