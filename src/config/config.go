package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spot-observer/src/models"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	appDirName        = "spot-observer"
	FallbackConfig    = "config/default.yaml"
	DefaultTimezone   = "Europe/Helsinki"
	DefaultInterval   = 30 * time.Minute
	DefaultDownsample = 20
	DefaultWorkers    = 4

	DefaultRetentionDays = 30
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
	location *time.Location
}

// -----------------------------------------------------------------------------

// DefaultPath returns the user config file if one exists under the XDG config
// dirs, otherwise the repository fallback.
func DefaultPath() string {
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		if p, err := xdg.SearchConfigFile(filepath.Join(appDirName, name)); err == nil {
			return p
		}
	}
	return FallbackConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML or TOML file.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if isTOML(configPath) {
		if err := toml.Unmarshal(data, &modelConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config from TOML: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &modelConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	return FromModel(&modelConfig)
}

// FromModel applies defaults to an in-memory configuration and validates it.
func FromModel(m *models.MConfig) (*Config, error) {
	config := &Config{MConfig: m}
	config.ApplyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = appDirName
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.GrpcHost == "" {
		c.GrpcHost = "127.0.0.1"
	}
	if c.GrpcPort == 0 {
		c.GrpcPort = 50051
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.DefaultVat == nil {
		vat := int(models.Vat24)
		c.DefaultVat = &vat
	}

	if c.Storage.DBType == "" {
		c.Storage.DBType = "none"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "data/spot_observer.db"
	}
	if c.Storage.DataRetentionDays == nil {
		days := DefaultRetentionDays
		c.Storage.DataRetentionDays = &days
	}

	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 15
	}

	if c.Scheduler.Workers == 0 {
		c.Scheduler.Workers = DefaultWorkers
	}

	for i := range c.Sources {
		src := &c.Sources[i]
		if src.IntervalMinutes == 0 {
			src.IntervalMinutes = int(DefaultInterval / time.Minute)
		}
		if src.ID == string(models.SourceGridProduction) && src.Downsample == 0 {
			src.Downsample = DefaultDownsample
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("application name cannot be empty")
	}

	if c.Host == "" {
		return errors.New("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort <= 1024 || c.GrpcPort > 65535 {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.DefaultVat != nil {
		if _, err := models.ParseVatRegime(fmt.Sprint(*c.DefaultVat)); err != nil {
			return err
		}
	}

	switch c.Storage.DBType {
	case "none":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return errors.New("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return errors.New("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type %q", c.Storage.DBType)
	}
	if c.Storage.RetentionDays() < 0 {
		return errors.New("data retention days cannot be negative")
	}

	if c.Network.RequestTimeout <= 0 {
		return errors.New("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}

	if c.Scheduler.Workers <= 0 {
		return errors.New("scheduler workers must be greater than 0")
	}

	if len(c.Sources) == 0 {
		return errors.New("at least one source must be configured")
	}
	seen := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		if _, err := models.ParseSourceID(src.ID); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
		if seen[src.ID] {
			return fmt.Errorf("source '%s' configured twice", src.ID)
		}
		seen[src.ID] = true
		if src.URL == "" {
			return fmt.Errorf("source '%s' must have a url", src.ID)
		}
		if src.IntervalMinutes <= 0 {
			return fmt.Errorf("source '%s' interval must be greater than 0", src.ID)
		}
		if src.Downsample < 0 {
			return fmt.Errorf("source '%s' downsample cannot be negative", src.ID)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Location returns the local timezone used for day boundaries.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return time.UTC
		}
		c.location = loc
	}
	return c.location
}

// DefaultRegime returns the configured VAT regime.
func (c *Config) DefaultRegime() models.MVatRegime {
	if c.DefaultVat == nil {
		return models.Vat24
	}
	return models.MVatRegime(*c.DefaultVat)
}

// Source returns the configuration of one source.
func (c *Config) Source(id models.MSourceID) (models.MSourceConfig, bool) {
	for _, src := range c.Sources {
		if src.ID == string(id) {
			return src, true
		}
	}
	return models.MSourceConfig{}, false
}

// Interval returns the refresh cadence of a source.
func Interval(src models.MSourceConfig) time.Duration {
	if src.IntervalMinutes <= 0 {
		return DefaultInterval
	}
	return time.Duration(src.IntervalMinutes) * time.Minute
}

// -----------------------------------------------------------------------------

// Save persists the current configuration, choosing the format by extension.
func (c *Config) Save(configPath string) error {
	var data []byte
	if isTOML(configPath) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c.MConfig); err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(c.MConfig)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir '%s': %w", dir, err)
		}
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
