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

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/extsort/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config holds the tunables of a sort run
type Config struct {
	Jobs             int      `json:"jobs,omitempty" yaml:"jobs,omitempty" hcl:"jobs,optional"`                                           // Max concurrent copies, 0 is unbounded
	FoldCase         bool     `json:"fold_case,omitempty" yaml:"fold_case,omitempty" hcl:"fold_case,optional"`                            // Lower-case bucket names
	Ignore           []string `json:"ignore,omitempty" yaml:"ignore,omitempty" hcl:"ignore,optional"`                                     // Doublestar patterns to skip
	NoFollowSymlinks bool     `json:"no_follow_symlinks,omitempty" yaml:"no_follow_symlinks,omitempty" hcl:"no_follow_symlinks,optional"` // Skip symlinks
	Strict           bool     `json:"strict,omitempty" yaml:"strict,omitempty" hcl:"strict,optional"`                                     // Non-zero exit on any failed copy
	LogLevel         string   `json:"log_level,omitempty" yaml:"log_level,omitempty" hcl:"log_level,optional"`                            // zerolog level name
	LogFormat        string   `json:"log_format,omitempty" yaml:"log_format,omitempty" hcl:"log_format,optional"`                         // text or json
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.Jobs < 0 {
		return errors.Errorf("jobs must not be negative, got %d", cfg.Jobs)
	}

	for _, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	if _, err := cfg.Level(); err != nil {
		return err
	}

	if _, err := log.ParseFormat(cfg.LogFormat); err != nil {
		return errors.Errorf("log_format: %w", err)
	}

	return nil
}

// 📶 Level returns the configured log level, info when unset
func (cfg *Config) Level() (zerolog.Level, error) {
	if cfg.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.NoLevel, errors.Errorf("log_level: %w", err)
	}
	return level, nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("jobs=%d fold_case=%t ignore=%v no_follow_symlinks=%t strict=%t",
		cfg.Jobs, cfg.FoldCase, cfg.Ignore, cfg.NoFollowSymlinks, cfg.Strict)
}
