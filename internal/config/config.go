// Package config holds the run configuration: normalization flags, pass
// exclusion lists, and the name-mapping document. Values come from an
// optional config file (JSON or YAML) overridden by CLI flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"irdiverge/internal/normalize"
)

// Fatal input errors. Both abort the run before any scanning happens.
var (
	ErrMissingInput     = errors.New("required input not found")
	ErrMalformedMapping = errors.New("malformed pass mapping")
)

// Config is the effective run configuration, read-only after load.
type Config struct {
	Normalize normalize.Options

	// Passes excluded from alignment entirely, per pipeline.
	ExcludedLegacy []string
	ExcludedNPM    []string

	// Quiet suppresses the console summary. Log verbosity is a logger
	// concern and is settled at the CLI boundary.
	Quiet bool
}

// Default returns the stock configuration used when no config file is given.
func Default() Config {
	return Config{Normalize: normalize.DefaultOptions()}
}

// fileConfig mirrors the on-disk config document. Pointer fields distinguish
// "absent" from "explicitly false" so absent keys keep their defaults.
type fileConfig struct {
	IgnoreWhitespace *bool `json:"ignore_whitespace" yaml:"ignore_whitespace"`
	IgnoreEmptyLines *bool `json:"ignore_empty_lines" yaml:"ignore_empty_lines"`
	IgnoreTempVars   *bool `json:"ignore_temp_vars" yaml:"ignore_temp_vars"`
	IgnoreLabels     *bool `json:"ignore_labels" yaml:"ignore_labels"`
	IgnoreMetadata   *bool `json:"ignore_metadata" yaml:"ignore_metadata"`
	IgnoreDebugInfo  *bool `json:"ignore_debug_info" yaml:"ignore_debug_info"`
	IgnoreComments   *bool `json:"ignore_comments" yaml:"ignore_comments"`

	ExcludedPasses struct {
		LegacyPasses []string `json:"legacy_passes" yaml:"legacy_passes"`
		NPMPasses    []string `json:"npm_passes" yaml:"npm_passes"`
	} `json:"excluded_passes" yaml:"excluded_passes"`
}

// Load reads a config file and applies it over Default(). The decoder is
// chosen by extension: .yaml/.yml use YAML, everything else JSON.
func Load(fs afero.Fs, path string) (Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("%w: config file %s: %v", ErrMissingInput, path, err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	apply := func(dst, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&cfg.Normalize.IgnoreWhitespace, fc.IgnoreWhitespace)
	apply(&cfg.Normalize.IgnoreEmptyLines, fc.IgnoreEmptyLines)
	apply(&cfg.Normalize.IgnoreTempVars, fc.IgnoreTempVars)
	apply(&cfg.Normalize.IgnoreLabels, fc.IgnoreLabels)
	apply(&cfg.Normalize.IgnoreMetadata, fc.IgnoreMetadata)
	apply(&cfg.Normalize.IgnoreDebugInfo, fc.IgnoreDebugInfo)
	apply(&cfg.Normalize.IgnoreComments, fc.IgnoreComments)

	cfg.ExcludedLegacy = fc.ExcludedPasses.LegacyPasses
	cfg.ExcludedNPM = fc.ExcludedPasses.NPMPasses

	return cfg, nil
}

// ExclusionSet converts a name list into the set form the aligner consumes.
func ExclusionSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
