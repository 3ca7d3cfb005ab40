package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DeviceProfile describes one recorder model: the file extensions it
// writes and the marker timing its buttons produce. A profile overrides
// the matching Config fields, so one .env can serve several devices.
type DeviceProfile struct {
	Name       string          `yaml:"name"`
	AudioExt   string          `yaml:"audio_ext"`
	MarkerExt  string          `yaml:"marker_ext"`
	GapSeconds float64         `yaml:"gap_seconds"`
	Lookbacks  LookbackProfile `yaml:"lookbacks"`
}

// LookbackProfile carries per-pattern lookback overrides in seconds. Zero
// keeps the configured value.
type LookbackProfile struct {
	ShortNote   float64 `yaml:"short_note"`
	LongNote    float64 `yaml:"long_note"`
	ProjectIdea float64 `yaml:"project_idea"`
}

// LoadProfile reads and parses a device profile file.
func LoadProfile(path string) (*DeviceProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read device profile %s: %w", path, err)
	}

	var profile DeviceProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse device profile %s: %w", path, err)
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("device profile %s: %w", path, err)
	}
	return &profile, nil
}

// Validate checks the profile for values that would break scanning or
// classification.
func (p *DeviceProfile) Validate() error {
	if p.AudioExt != "" && !strings.HasPrefix(p.AudioExt, ".") {
		return fmt.Errorf("audio_ext %q must start with a dot", p.AudioExt)
	}
	if p.MarkerExt != "" && !strings.HasPrefix(p.MarkerExt, ".") {
		return fmt.Errorf("marker_ext %q must start with a dot", p.MarkerExt)
	}
	if p.GapSeconds < 0 {
		return fmt.Errorf("gap_seconds must not be negative, got %v", p.GapSeconds)
	}
	if p.Lookbacks.ShortNote < 0 || p.Lookbacks.LongNote < 0 || p.Lookbacks.ProjectIdea < 0 {
		return fmt.Errorf("lookbacks must not be negative")
	}
	return nil
}

// ApplyProfile overrides the recorder-specific fields of the configuration
// with the profile's non-zero values.
func (c *Config) ApplyProfile(p *DeviceProfile) {
	if p.AudioExt != "" {
		c.AudioExt = p.AudioExt
	}
	if p.MarkerExt != "" {
		c.MarkerExt = p.MarkerExt
	}
	if p.GapSeconds > 0 {
		c.GapSeconds = p.GapSeconds
	}
	if p.Lookbacks.ShortNote > 0 {
		c.ShortNoteLookback = p.Lookbacks.ShortNote
	}
	if p.Lookbacks.LongNote > 0 {
		c.LongNoteLookback = p.Lookbacks.LongNote
	}
	if p.Lookbacks.ProjectIdea > 0 {
		c.ProjectIdeaLookback = p.Lookbacks.ProjectIdea
	}
}
