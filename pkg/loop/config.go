package loop

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Clamping bounds for the buffer settings. Out-of-range values are pulled
// into range rather than rejected; a misconfigured buffer still runs.
const (
	minBufferSeconds = 10
	maxBufferSeconds = 60
	minPlaybackSpeed = 0.1
	maxPlaybackSpeed = 2.0
)

// Config holds all replayloop configuration.
type Config struct {
	Buffer   BufferConfig   `yaml:"buffer"`
	Source   SourceConfig   `yaml:"source"`
	Render   RenderConfig   `yaml:"render"`
	API      APIConfig      `yaml:"api"`
	Platform PlatformConfig `yaml:"platform"`
}

// BufferConfig configures the frame store and playback behaviour.
type BufferConfig struct {
	Seconds       int     `yaml:"seconds" json:"buffer_seconds"`         // seconds of content to keep (10-60)
	PingPong      bool    `yaml:"ping_pong" json:"ping_pong"`            // reverse at the ends instead of wrapping
	PlaybackSpeed float64 `yaml:"playback_speed" json:"playback_speed"`  // 0.1-2.0x
	SampleDivisor int     `yaml:"sample_divisor" json:"sample_divisor"`  // admit every Nth source frame (>=1)
	MaxMemory     string  `yaml:"max_memory" json:"max_memory,omitempty"` // memory budget for pixels (256MB, 2GB)

	// MaxMemoryBytes is the parsed form of MaxMemory. Set during load;
	// callers constructing a BufferConfig directly fill it themselves.
	MaxMemoryBytes uint64 `yaml:"-" json:"max_memory_bytes"`
}

// Clamp pulls every field into its valid range.
func (c *BufferConfig) Clamp() {
	if c.Seconds < minBufferSeconds {
		c.Seconds = minBufferSeconds
	}
	if c.Seconds > maxBufferSeconds {
		c.Seconds = maxBufferSeconds
	}
	if c.PlaybackSpeed < minPlaybackSpeed {
		c.PlaybackSpeed = minPlaybackSpeed
	}
	if c.PlaybackSpeed > maxPlaybackSpeed {
		c.PlaybackSpeed = maxPlaybackSpeed
	}
	if c.SampleDivisor < 1 {
		c.SampleDivisor = 1
	}
}

// SourceConfig configures the video source.
type SourceConfig struct {
	Type      string `yaml:"type"`      // synth, screen
	Device    string `yaml:"device"`    // source-specific identifier
	Width     int    `yaml:"width"`     // synth frame width
	Height    int    `yaml:"height"`    // synth frame height
	Framerate int    `yaml:"framerate"` // 30, 60
}

// RenderConfig configures the playback sink.
type RenderConfig struct {
	Type string `yaml:"type"` // snapshot, none
	Path string `yaml:"path"` // snapshot output directory
}

// APIConfig configures the control API.
type APIConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// PlatformConfig configures optional platform integration.
type PlatformConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	APIKey        string `yaml:"api_key"`
	InstanceName  string `yaml:"instance_name"`
	HeartbeatSecs int    `yaml:"heartbeat_secs"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	_ = cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() error {
	if c.Buffer.Seconds == 0 {
		c.Buffer.Seconds = 30
	}
	if c.Buffer.PlaybackSpeed == 0 {
		c.Buffer.PlaybackSpeed = 1.0
	}
	if c.Buffer.SampleDivisor == 0 {
		c.Buffer.SampleDivisor = 2
	}
	if c.Buffer.MaxMemory == "" {
		c.Buffer.MaxMemory = "1GB"
	}
	bytes, err := parseSize(c.Buffer.MaxMemory)
	if err != nil {
		return fmt.Errorf("parse buffer.max_memory: %w", err)
	}
	c.Buffer.MaxMemoryBytes = bytes
	c.Buffer.Clamp()

	if c.Source.Type == "" {
		c.Source.Type = "synth"
	}
	if c.Source.Width == 0 {
		c.Source.Width = 1280
	}
	if c.Source.Height == 0 {
		c.Source.Height = 720
	}
	if c.Source.Framerate == 0 {
		c.Source.Framerate = 30
	}
	if c.Render.Type == "" {
		c.Render.Type = "none"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Platform.HeartbeatSecs == 0 {
		c.Platform.HeartbeatSecs = 10
	}
	return nil
}

// parseSize converts a human-readable size (256MB, 2GB, 1048576) to bytes.
func parseSize(s string) (uint64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, nil
	}
	multiplier := uint64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1 << 30
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1 << 20
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1 << 10
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n * multiplier, nil
}
