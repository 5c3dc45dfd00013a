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
	"errors"
	"strings"

	"github.com/ansel1/merry"
	"github.com/spf13/viper"

	"github.com/ajwerner/intrusive/heap"
)

// Sentinel validation errors.
var (
	ErrInvalidEntries   = merry.New("entries must be positive")
	ErrInvalidRounds    = merry.New("rounds must be positive")
	ErrInvalidThreads   = merry.New("threads must be positive")
	ErrInvalidHeapKind  = merry.New(`heap kind must be "min" or "max"`)
	ErrInvalidLogLevel  = merry.New("unknown log level")
	ErrInvalidLogFormat = merry.New(`log format must be "text" or "json"`)
)

// Default configuration values.
const (
	DefaultEntries   = 10000
	DefaultRounds    = 5
	DefaultThreads   = 1
	DefaultSeed      = 1
	DefaultHeapKind  = "min"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	envPrefix  = "INTRUSIVE"
	configName = "intrusive-workout"
)

var logLevels = []string{"panic", "fatal", "error", "warn", "warning", "info", "debug", "trace"}

// Config holds all configuration for a workout.
type Config struct {
	// Entries is the number of records each thread owns.
	Entries int `mapstructure:"entries"`
	// Rounds is the number of times each thread cycles its records through
	// both containers.
	Rounds int `mapstructure:"rounds"`
	// Threads is the number of goroutines, each with its own pair of
	// containers.
	Threads int   `mapstructure:"threads"`
	Seed    int64 `mapstructure:"seed"`
	// Verify mirrors tree mutations into a shadow model and checks the tree
	// against it after every phase.
	Verify      bool   `mapstructure:"verify"`
	HeapKind    string `mapstructure:"heap_kind"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// LoadConfig loads configuration from v, a config file and environment
// variables. v may carry bound command line flags; a nil v starts from
// defaults alone. An empty configPath searches the working directory for an
// optional intrusive-workout.yaml.
func LoadConfig(v *viper.Viper, configPath string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return nil, merry.Prepend(err, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, merry.Prepend(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("entries", DefaultEntries)
	v.SetDefault("rounds", DefaultRounds)
	v.SetDefault("threads", DefaultThreads)
	v.SetDefault("seed", DefaultSeed)
	v.SetDefault("verify", false)
	v.SetDefault("heap_kind", DefaultHeapKind)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
}

// Validate checks the configuration.
func (cfg *Config) Validate() error {
	if cfg.Entries <= 0 {
		return merry.Appendf(ErrInvalidEntries, "got %d", cfg.Entries)
	}
	if cfg.Rounds <= 0 {
		return merry.Appendf(ErrInvalidRounds, "got %d", cfg.Rounds)
	}
	if cfg.Threads <= 0 {
		return merry.Appendf(ErrInvalidThreads, "got %d", cfg.Threads)
	}
	if _, err := cfg.Kind(); err != nil {
		return err
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "", "text", "json":
	default:
		return merry.Appendf(ErrInvalidLogFormat, "got %q", cfg.LogFormat)
	}
	level := strings.ToLower(cfg.LogLevel)
	for _, l := range logLevels {
		if l == level {
			return nil
		}
	}
	return merry.Appendf(ErrInvalidLogLevel, "%q", cfg.LogLevel)
}

// Kind returns the heap kind named by HeapKind.
func (cfg *Config) Kind() (heap.Kind, error) {
	switch strings.ToLower(cfg.HeapKind) {
	case "min":
		return heap.Min, nil
	case "max":
		return heap.Max, nil
	default:
		return 0, merry.Appendf(ErrInvalidHeapKind, "got %q", cfg.HeapKind)
	}
}
