package config

import (
	"fmt"

	"github.com/getuserd/userd/pkg/directory"
	"github.com/getuserd/userd/pkg/validation"
)

// Mode selects the behavioral profile of the user API.
type Mode string

const (
	// ModeDTO is the default profile: counter-based IDs, merge updates,
	// boundary validation, and REST-style status codes.
	ModeDTO Mode = "dto"

	// ModeBasic is the compatibility profile: length-derived IDs, replace
	// updates, no validation, and 200 responses with null for absent records.
	ModeBasic Mode = "basic"
)

// ParseMode parses a mode string. Empty defaults to ModeDTO.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeDTO, nil
	case ModeDTO, ModeBasic:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (valid: dto, basic)", s)
	}
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error. Default: info.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is the output format: text or json. Default: text.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Config is the root configuration for a userd server.
type Config struct {
	// Port is the port the HTTP API listens on. Default: 4380.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
	// Host is the interface to bind. Empty binds all interfaces.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Mode selects the behavioral profile: "dto" (default) or "basic".
	Mode Mode `json:"mode,omitempty" yaml:"mode,omitempty"`

	// IDPolicy overrides the id assignment policy derived from Mode.
	// Valid values: "sequence", "length". Empty follows the mode.
	IDPolicy string `json:"idPolicy,omitempty" yaml:"idPolicy,omitempty"`

	// ReadTimeout is the HTTP read timeout in seconds. Default: 30.
	ReadTimeout int `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	// WriteTimeout is the HTTP write timeout in seconds. Default: 30.
	WriteTimeout int `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`

	// LogRequests enables the in-memory request log. Nil means enabled;
	// set to false to disable recording.
	LogRequests *bool `json:"logRequests,omitempty" yaml:"logRequests,omitempty"`
	// MaxLogEntries is the maximum number of request log entries to retain.
	// Default: 1000.
	MaxLogEntries int `json:"maxLogEntries,omitempty" yaml:"maxLogEntries,omitempty"`

	// Logging controls log level and format.
	Logging *LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`

	// Validation adds operator-supplied rules on top of the built-in
	// boundary checks. Applied only in dto mode.
	Validation *validation.Rules `json:"validation,omitempty" yaml:"validation,omitempty"`

	// Seed lists users loaded into the store at startup, inline or from
	// files and glob patterns.
	Seed []SeedEntry `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:          4380,
		Mode:          ModeDTO,
		ReadTimeout:   30,
		WriteTimeout:  30,
		MaxLogEntries: 1000,
	}
}

// Validate checks the config for invalid values. Zero values that have
// defaults are allowed; they are filled in by ApplyDefaults.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 0 and 65535", c.Port)
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if _, err := directory.ParseIDPolicy(c.IDPolicy); err != nil {
		return err
	}
	if c.MaxLogEntries < 0 {
		return fmt.Errorf("invalid maxLogEntries %d: must not be negative", c.MaxLogEntries)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	for i, entry := range c.Seed {
		if !entry.IsInline() && !entry.IsFileRef() && !entry.IsGlob() {
			return fmt.Errorf("seed[%d]: no users, file, or files specified", i)
		}
	}
	return nil
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 4380
	}
	if c.Mode == "" {
		c.Mode = ModeDTO
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30
	}
	if c.MaxLogEntries == 0 {
		c.MaxLogEntries = 1000
	}
}

// EffectiveIDPolicy resolves the id assignment policy. An explicit
// IDPolicy wins; otherwise basic mode uses length-derived ids and dto
// mode uses the monotonic counter.
func (c *Config) EffectiveIDPolicy() directory.IDPolicy {
	if c.IDPolicy != "" {
		policy, err := directory.ParseIDPolicy(c.IDPolicy)
		if err == nil {
			return policy
		}
	}
	if c.Mode == ModeBasic {
		return directory.IDPolicyLength
	}
	return directory.IDPolicySequence
}

// ValidationEnabled reports whether boundary validation applies.
// Basic mode forwards bodies to the store unchecked.
func (c *Config) ValidationEnabled() bool {
	return c.Mode != ModeBasic
}

// RequestLogEnabled reports whether request history recording is on.
// It is on unless the config explicitly disables it.
func (c *Config) RequestLogEnabled() bool {
	return c.LogRequests == nil || *c.LogRequests
}
