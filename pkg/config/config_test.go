package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/linerc/pkg/transform"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		check   func(t *testing.T, cfg *Config)
		wantErr bool
	}{
		{
			name: "yaml",
			file: "config.yaml",
			content: `
encodings: ["utf-8", "latin-1"]
output_suffix: "_out"
presets:
  - name: shout
    transform: uppercase
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"utf-8", "latin-1"}, cfg.Encodings)
				assert.Equal(t, "_out", cfg.OutputSuffix)
				require.Len(t, cfg.Presets, 1)
				assert.Equal(t, "shout", cfg.Presets[0].Name)
			},
		},
		{
			name: "json",
			file: "config.json",
			content: `{
  "encodings": ["utf-8"],
  "presets": [
    {"name": "strip", "transform": "remove-blank", "file_filter_glob": "**/*.txt"}
  ]
}`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Presets, 1)
				assert.Equal(t, "**/*.txt", cfg.Presets[0].FileFilterGlob)
			},
		},
		{
			name: "hcl",
			file: "config.hcl",
			content: `
encodings = ["utf-8", "windows-1252"]

preset "fix-name" {
  transform   = "replace"
  target      = "teh"
  replacement = "the"
}
`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Presets, 1)
				spec, err := cfg.Presets[0].Spec()
				require.NoError(t, err)
				assert.Equal(t, transform.KindReplace, spec.Kind)
				assert.Equal(t, "teh", spec.Target)
				assert.Equal(t, "the", spec.Replacement)
			},
		},
		{
			name:    "dot_linerc_as_yaml",
			file:    ".linerc",
			content: `output_suffix: "_copy"`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "_copy", cfg.OutputSuffix)
				// Defaults still fill the rest.
				assert.Equal(t, Default().Encodings, cfg.Encodings)
			},
		},
		{
			name:    "unknown_extension",
			file:    "config.toml",
			content: `whatever = true`,
			wantErr: true,
		},
		{
			name:    "unknown_yaml_field",
			file:    "config.yaml",
			content: `encodngs: ["utf-8"]`,
			wantErr: true,
		},
		{
			name: "invalid_preset_transform",
			file: "config.yaml",
			content: `
presets:
  - name: bogus
    transform: rot13
`,
			wantErr: true,
		},
		{
			name: "duplicate_preset_names",
			file: "config.yaml",
			content: `
presets:
  - name: a
    transform: uppercase
  - name: a
    transform: lowercase
`,
			wantErr: true,
		},
		{
			name: "unknown_encoding",
			file: "config.yaml",
			content: `
encodings: ["klingon"]
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			cfg, err := Load(context.Background(), path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, path, cfg.Location())
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFileUsesDefault(t *testing.T) {
	cfg, err := Load(context.Background(), filepath.Join(t.TempDir(), ".linerc"))
	require.NoError(t, err)
	assert.Equal(t, Default().Encodings, cfg.Encodings)
	assert.Equal(t, Default().OutputSuffix, cfg.OutputSuffix)
	assert.Empty(t, cfg.Location())
}

func TestPresetLookupAndMatch(t *testing.T) {
	cfg := &Config{
		Presets: []Preset{
			{Name: "texty", Transform: "uppercase", FileFilterGlob: "**/*.txt"},
			{Name: "all", Transform: "identity"},
		},
	}
	require.NoError(t, Validate(cfg))

	p, err := cfg.Preset("texty")
	require.NoError(t, err)
	assert.True(t, p.Matches("docs/readme.txt"))
	assert.False(t, p.Matches("docs/readme.md"))

	all, err := cfg.Preset("all")
	require.NoError(t, err)
	assert.True(t, all.Matches("anything.bin"), "empty filter matches everything")

	_, err = cfg.Preset("missing")
	require.Error(t, err)
}

func TestValidateRejectsBadGlob(t *testing.T) {
	cfg := &Config{
		Presets: []Preset{{Name: "broken", Transform: "identity", FileFilterGlob: "[unclosed"}},
	}
	require.Error(t, Validate(cfg))
}
