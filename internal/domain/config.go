package domain

import (
	"fmt"
	"strings"
)

// DefaultMaxSamples bounds the number of service packages parsed per run.
const DefaultMaxSamples = 15

// AnalyzerConfig holds run configuration loaded from .sdkprobe.yaml.
// Pointer fields distinguish "not specified" from zero values.
type AnalyzerConfig struct {
	Provider        string   `yaml:"provider"                   json:"provider,omitempty"`
	DisplayName     string   `yaml:"display_name"               json:"display_name,omitempty"`
	Threshold       *float64 `yaml:"threshold,omitempty"        json:"threshold,omitempty"`
	MaxSamples      int      `yaml:"max_samples"                json:"max_samples,omitempty"`
	Workers         int      `yaml:"workers"                    json:"workers,omitempty"`
	InfraFragments  []string `yaml:"infra_fragments"            json:"infra_fragments,omitempty"`
	ExcludePackages []string `yaml:"exclude_packages"           json:"exclude_packages,omitempty"`
	ConfigPackage   string   `yaml:"config_package"             json:"config_package,omitempty"`
	Output          string   `yaml:"output"                     json:"output,omitempty"`
}

// DefaultConfig returns a zero-value config that changes nothing.
func DefaultConfig() AnalyzerConfig {
	return AnalyzerConfig{}
}

// EffectiveThreshold returns the configured threshold or DefaultThreshold.
func (c AnalyzerConfig) EffectiveThreshold() float64 {
	if c.Threshold == nil {
		return DefaultThreshold
	}
	return *c.Threshold
}

// EffectiveMaxSamples returns the configured sample bound or the default.
func (c AnalyzerConfig) EffectiveMaxSamples() int {
	if c.MaxSamples <= 0 {
		return DefaultMaxSamples
	}
	return c.MaxSamples
}

// IsExcluded reports whether a package was excluded by name.
func (c AnalyzerConfig) IsExcluded(name string) bool {
	for _, e := range c.ExcludePackages {
		if e == name {
			return true
		}
	}
	return false
}

// Merge overlays explicit (non-zero) values of override on c.
func (c AnalyzerConfig) Merge(override AnalyzerConfig) AnalyzerConfig {
	result := c
	if override.Provider != "" {
		result.Provider = override.Provider
	}
	if override.DisplayName != "" {
		result.DisplayName = override.DisplayName
	}
	if override.Threshold != nil {
		result.Threshold = override.Threshold
	}
	if override.MaxSamples > 0 {
		result.MaxSamples = override.MaxSamples
	}
	if override.Workers > 0 {
		result.Workers = override.Workers
	}
	if len(override.InfraFragments) > 0 {
		result.InfraFragments = append(append([]string(nil), c.InfraFragments...), override.InfraFragments...)
	}
	if len(override.ExcludePackages) > 0 {
		result.ExcludePackages = append(append([]string(nil), c.ExcludePackages...), override.ExcludePackages...)
	}
	if override.ConfigPackage != "" {
		result.ConfigPackage = override.ConfigPackage
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	return result
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c AnalyzerConfig) Validate() error {
	if c.Threshold != nil && (*c.Threshold < 0 || *c.Threshold > 1) {
		return fmt.Errorf("threshold %.2f must be between 0 and 1", *c.Threshold)
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("max_samples %d must not be negative", c.MaxSamples)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d must not be negative", c.Workers)
	}
	for _, f := range c.InfraFragments {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("infra_fragments must not contain empty entries")
		}
	}
	if strings.ContainsAny(c.Provider, " \t/") {
		return fmt.Errorf("provider %q must be a short name without spaces or slashes", c.Provider)
	}
	return nil
}
