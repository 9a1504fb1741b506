package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
	Registry RegistryConfig `toml:"registry"`
	Logging  LoggingConfig  `toml:"logging"`
}

// StorageConfig contains flat-file backing store locations.
type StorageConfig struct {
	RecipientsPath string `toml:"recipients_path"`
	DonorsPath     string `toml:"donors_path"`
}

// DatabaseConfig contains database connection settings for the donation ledger.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RegistryConfig controls recipient registry behavior.
type RegistryConfig struct {
	AutoSave bool               `toml:"auto_save"`
	Defaults []DefaultRecipient `toml:"defaults"`
}

// DefaultRecipient is a recipient seeded at startup when absent.
type DefaultRecipient struct {
	ID   int    `toml:"id"`
	Name string `toml:"name"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys missing from the file keep their embedded defaults. Default
	// recipients are replaced wholesale when the file lists any.
	config := DefaultConfig()
	defaults := config.Registry.Defaults
	config.Registry.Defaults = nil

	md, err := toml.Decode(string(data), config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !md.IsDefined("registry", "defaults") {
		config.Registry.Defaults = defaults
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks paths are set and default recipients are unique.
func (c *Config) Validate() error {
	if c.Storage.RecipientsPath == "" {
		return fmt.Errorf("%w: storage.recipients_path is empty", ErrInvalidConfig)
	}
	if c.Storage.DonorsPath == "" {
		return fmt.Errorf("%w: storage.donors_path is empty", ErrInvalidConfig)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", ErrInvalidConfig)
	}

	seen := make(map[int]bool, len(c.Registry.Defaults))
	for _, d := range c.Registry.Defaults {
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate default recipient id %d", ErrInvalidConfig, d.ID)
		}
		seen[d.ID] = true
	}

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
