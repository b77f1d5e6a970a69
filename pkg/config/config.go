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
	"io"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/degit/pkg/refs"
	"gitlab.com/tozd/go/errors"
)

// EnvPath names the environment variable holding the default config path
const EnvPath = "DEGIT_CONFIG"

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

// 📚 Config holds defaults for the command line
type Config struct {
	Lister     string   `json:"lister,omitempty" yaml:"lister,omitempty" hcl:"lister,optional"`
	GitBinary  string   `json:"git_binary,omitempty" yaml:"git_binary,omitempty" hcl:"git_binary,optional"`
	Exclude    []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
	NoProgress bool     `json:"no_progress,omitempty" yaml:"no_progress,omitempty" hcl:"no_progress,optional"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// decoder is the part of the json and yaml decoders the parsers share. Both
// are set up to reject unknown keys before they get here.
type decoder interface {
	Decode(v any) error
}

// decodeDocument reads exactly one document from dec. An empty input leaves
// the defaults in place.
func decodeDocument(format string, dec decoder) (*Config, error) {
	var cfg Config
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, errors.Errorf("parsing %s: %w", format, err)
	}

	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, errors.Errorf("parsing %s: more than one document", format)
	}

	return &cfg, nil
}

// 🔍 Validate checks lister names and exclude patterns
func (cfg *Config) Validate() error {
	if cfg.Lister != "" && !slices.Contains(refs.Listers(), cfg.Lister) {
		return errors.Errorf("unknown lister %q (options: %s)", cfg.Lister, strings.Join(refs.Listers(), ", "))
	}

	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	return nil
}
