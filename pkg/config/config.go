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

// Package config holds the run configuration: the encoding probe order,
// the suggested-output suffix, and named transform presets.
package config

import (
	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/linerc/pkg/encoding"
	"github.com/walteh/linerc/pkg/naming"
	"github.com/walteh/linerc/pkg/transform"
	"gitlab.com/tozd/go/errors"
)

// 📚 Config is the complete linerc configuration.
type Config struct {
	// Encodings is the probe candidate list, in priority order.
	Encodings []string `json:"encodings,omitempty" yaml:"encodings,omitempty" hcl:"encodings,optional"`
	// OutputSuffix is appended to an input's base name when suggesting a
	// destination (default "_modified").
	OutputSuffix string `json:"output_suffix,omitempty" yaml:"output_suffix,omitempty" hcl:"output_suffix,optional"`
	// Presets are named, reusable transform choices.
	Presets []Preset `json:"presets,omitempty" yaml:"presets,omitempty" hcl:"preset,block"`

	location string
}

// 🎛️ Preset is a named transform with an optional file filter used by
// batch runs.
type Preset struct {
	Name        string `json:"name" yaml:"name" hcl:"name,label"`
	Transform   string `json:"transform" yaml:"transform" hcl:"transform"`
	Target      string `json:"target,omitempty" yaml:"target,omitempty" hcl:"target,optional"`
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty" hcl:"replacement,optional"`
	// FileFilterGlob restricts which files the preset applies to in
	// batch mode (doublestar syntax).
	FileFilterGlob string `json:"file_filter_glob,omitempty" yaml:"file_filter_glob,omitempty" hcl:"file_filter_glob,optional"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Encodings:    []string{"utf-8", "windows-1252", "iso-8859-1"},
		OutputSuffix: naming.DefaultSuffix,
	}
}

// Location returns the path the config was loaded from, or "" for the
// built-in default.
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate checks the configuration and fills in defaults.
func Validate(cfg *Config) error {
	if len(cfg.Encodings) == 0 {
		cfg.Encodings = Default().Encodings
	}
	if cfg.OutputSuffix == "" {
		cfg.OutputSuffix = naming.DefaultSuffix
	}

	if _, err := cfg.Codecs(); err != nil {
		return err
	}

	seen := map[string]bool{}
	for i, p := range cfg.Presets {
		if p.Name == "" {
			return errors.Errorf("preset %d: name is required", i)
		}
		if seen[p.Name] {
			return errors.Errorf("preset %q: duplicate name", p.Name)
		}
		seen[p.Name] = true
		if _, err := p.Spec(); err != nil {
			return errors.Errorf("preset %q: %w", p.Name, err)
		}
		if p.FileFilterGlob != "" && !doublestar.ValidatePattern(p.FileFilterGlob) {
			return errors.Errorf("preset %q: invalid file_filter_glob %q", p.Name, p.FileFilterGlob)
		}
	}
	return nil
}

// Codecs resolves the configured encoding names into probe candidates.
func (cfg *Config) Codecs() ([]encoding.Codec, error) {
	return encoding.Candidates(cfg.Encodings)
}

// Preset looks up a preset by name.
func (cfg *Config) Preset(name string) (Preset, error) {
	for _, p := range cfg.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, errors.Errorf("preset %q not found", name)
}

// Spec converts the preset into a transform spec.
func (p Preset) Spec() (transform.Spec, error) {
	kind, err := transform.ParseKind(p.Transform)
	if err != nil {
		return transform.Spec{}, err
	}
	spec := transform.Spec{Kind: kind}
	if kind == transform.KindReplace {
		spec.Target = p.Target
		spec.Replacement = p.Replacement
	}
	if err := spec.Validate(); err != nil {
		return transform.Spec{}, err
	}
	return spec, nil
}

// Matches reports whether the preset applies to path. An empty filter
// matches everything.
func (p Preset) Matches(path string) bool {
	if p.FileFilterGlob == "" {
		return true
	}
	ok, err := doublestar.Match(p.FileFilterGlob, path)
	return err == nil && ok
}
