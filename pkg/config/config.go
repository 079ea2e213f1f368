// Package config loads the template manifest that accompanies a template
// root (stencil.toml or stencil.yaml).
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
)

// Manifest file names looked up in the template root, in order.
const (
	ManifestTOML = "stencil.toml"
	ManifestYAML = "stencil.yaml"
)

// Config is the parsed template manifest.
type Config struct {
	Template     TemplateSection        `toml:"template" yaml:"template"`
	Hooks        HooksSection           `toml:"hooks" yaml:"hooks"`
	Placeholders map[string]Placeholder `toml:"placeholders" yaml:"placeholders"`
}

// TemplateSection controls the walk: inclusion globs and whitespace mode.
type TemplateSection struct {
	Include            []string `toml:"include" yaml:"include"`
	Exclude            []string `toml:"exclude" yaml:"exclude"`
	Ignore             []string `toml:"ignore" yaml:"ignore"`
	PreserveWhitespace bool     `toml:"preserve_whitespace" yaml:"preserve_whitespace"`
}

// HooksSection lists scripts executed against the variable context before
// the walk.
type HooksSection struct {
	Init []string `toml:"init" yaml:"init"`
}

// Placeholder declares a variable collected before generation.
type Placeholder struct {
	Type    string   `toml:"type" yaml:"type"`
	Prompt  string   `toml:"prompt" yaml:"prompt"`
	Default string   `toml:"default" yaml:"default"`
	Regex   string   `toml:"regex" yaml:"regex"`
	Choices []string `toml:"choices" yaml:"choices"`
}

// IsManifestName reports whether name is a recognized manifest file name.
func IsManifestName(name string) bool {
	return name == ManifestTOML || name == ManifestYAML
}

// Load reads the manifest from the template root. A missing manifest is
// not an error: generation proceeds with an empty config.
func Load(templateRoot string) (*Config, error) {
	logger := logging.GetLogger("config")

	tomlPath := filepath.Join(templateRoot, ManifestTOML)
	if data, err := os.ReadFile(tomlPath); err == nil {
		config := &Config{}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "parsing %s", ManifestTOML)
		}
		logger.Debug().Str("path", tomlPath).Msg("loaded template manifest")
		return config, nil
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "reading %s", ManifestTOML)
	}

	yamlPath := filepath.Join(templateRoot, ManifestYAML)
	if data, err := os.ReadFile(yamlPath); err == nil {
		config := &Config{}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "parsing %s", ManifestYAML)
		}
		logger.Debug().Str("path", yamlPath).Msg("loaded template manifest")
		return config, nil
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "reading %s", ManifestYAML)
	}

	logger.Debug().Str("root", templateRoot).Msg("no template manifest found")
	return &Config{}, nil
}
