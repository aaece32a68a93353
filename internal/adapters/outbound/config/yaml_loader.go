package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

// FileName is the analyzer configuration file looked up in the workspace root.
const FileName = ".sdkprobe.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .sdkprobe.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .sdkprobe.yaml from workspacePath.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(workspacePath string) (domain.AnalyzerConfig, error) {
	return l.LoadFile(filepath.Join(workspacePath, FileName))
}

// LoadFile reads an explicit configuration file. A missing file yields the
// defaults.
func (l *YAMLLoader) LoadFile(path string) (domain.AnalyzerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.AnalyzerConfig{}, err
	}

	var cfg domain.AnalyzerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.AnalyzerConfig{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	if err := cfg.Validate(); err != nil {
		return domain.AnalyzerConfig{}, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}

	return cfg, nil
}

// DefaultFile is the commented template written by `sdkprobe init`.
const DefaultFile = `# sdkprobe analyzer configuration.

# Short provider name, e.g. aws, gcp, azure. Used in output and to check
# that the inferred package template names the provider.
provider: ""

# Human readable provider name written to the metadata document.
display_name: ""

# Fields scored below this confidence are annotated for review (0..1).
threshold: 0.6

# Maximum number of service packages parsed for client and error detection.
# 0 selects the default of 15.
max_samples: 0

# Parallel package parses. 0 selects the number of CPUs.
workers: 0

# Extra name fragments marking infrastructure (non-service) packages.
infra_fragments: []

# Packages removed from the workspace before detection.
exclude_packages: []

# Force the configuration package instead of detecting it.
config_package: ""

# Write metadata to this file instead of stdout. Relative paths are
# resolved against the workspace root.
output: ""
`

// WriteDefault writes DefaultFile into dir. An existing file is left alone
// and reported through os.ErrExist.
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return path, err
	}
	if _, err := f.WriteString(DefaultFile); err != nil {
		f.Close()
		return path, fmt.Errorf("writing %s: %w", FileName, err)
	}
	return path, f.Close()
}
