/*
Package config manages TOML config for the completion server.

InitConfig handles automatic config file creation and loading with fallback to defaults.
LoadConfig and SaveConfig provide direct fs for runtime changes.
LoadConfigWithPriority resolves a user path, the WORDSERVE_CONFIG env var,
the platform config dir, and defaults, in that order, the way the
command-line binary resolves its data and config directories at startup.
Update allows targeted parameter changes with persistence.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/Razdeep/autocomplete/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Engine EngineConfig `toml:"engine"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig has IPC request validation options.
type ServerConfig struct {
	MinPrefix    int  `toml:"min_prefix"`
	MaxPrefix    int  `toml:"max_prefix"`
	EnableFilter bool `toml:"enable_filter"`
}

// EngineConfig mirrors engine.Limits: the compile-time-ish bounds a
// caller is responsible for clamping to before calling in.
type EngineConfig struct {
	MaxK                int `toml:"max_k"`
	MaxNumCharsPerQuery int `toml:"max_num_chars_per_query"`
	MaxNumTermsPerQuery int `toml:"max_num_terms_per_query"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit    int  `toml:"default_limit"`
	DefaultMinLen   int  `toml:"default_min_len"`
	DefaultMaxLen   int  `toml:"default_max_len"`
	DefaultNoFilter bool `toml:"default_no_filter"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MinPrefix:    1,
			MaxPrefix:    256,
			EnableFilter: true,
		},
		Engine: EngineConfig{
			MaxK:                64,
			MaxNumCharsPerQuery: 256,
			MaxNumTermsPerQuery: 16,
		},
		CLI: CliConfig{
			DefaultLimit:    24,
			DefaultMinLen:   1,
			DefaultMaxLen:   60,
			DefaultNoFilter: false,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		return nil, err
	}
	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			return nil, err
		}
		log.Debugf("Created default config file at: ( %s )", configPath)
		return config, nil
	}
	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config, using defaults: %v", err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. When the file is valid TOML but does
// not decode into Config (a value of the wrong type), it falls back to a
// partial-recovery pass over the values that do fit, rather than
// discarding the file outright. A file that is not valid TOML at all
// returns an error.
func LoadConfig(configPath string) (*Config, error) {
	var config Config
	if err := utils.LoadTOMLFile(configPath, &config); err != nil {
		return recoverPartialConfig(configPath)
	}
	return &config, nil
}

// recoverPartialConfig salvages whatever top-level sections parse out of a
// malformed config file, layering them over defaults, instead of falling
// back to pure defaults for the whole file.
func recoverPartialConfig(configPath string) (*Config, error) {
	data, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	if section, ok := utils.ExtractSection(data, "server"); ok {
		if v, ok := utils.ExtractInt64(section, "min_prefix"); ok {
			config.Server.MinPrefix = v
		}
		if v, ok := utils.ExtractInt64(section, "max_prefix"); ok {
			config.Server.MaxPrefix = v
		}
		if v, ok := utils.ExtractBool(section, "enable_filter"); ok {
			config.Server.EnableFilter = v
		}
	}
	if section, ok := utils.ExtractSection(data, "engine"); ok {
		if v, ok := utils.ExtractInt64(section, "max_k"); ok {
			config.Engine.MaxK = v
		}
		if v, ok := utils.ExtractInt64(section, "max_num_chars_per_query"); ok {
			config.Engine.MaxNumCharsPerQuery = v
		}
		if v, ok := utils.ExtractInt64(section, "max_num_terms_per_query"); ok {
			config.Engine.MaxNumTermsPerQuery = v
		}
	}
	if section, ok := utils.ExtractSection(data, "cli"); ok {
		if v, ok := utils.ExtractInt64(section, "default_limit"); ok {
			config.CLI.DefaultLimit = v
		}
		if v, ok := utils.ExtractInt64(section, "default_min_len"); ok {
			config.CLI.DefaultMinLen = v
		}
		if v, ok := utils.ExtractInt64(section, "default_max_len"); ok {
			config.CLI.DefaultMaxLen = v
		}
		if v, ok := utils.ExtractBool(section, "default_no_filter"); ok {
			config.CLI.DefaultNoFilter = v
		}
	}
	log.Warnf("Recovered partial config from %s; unparsed sections use defaults", configPath)
	return config, nil
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// LoadConfigWithPriority resolves the config path with priority explicit
// flag > WORDSERVE_CONFIG env var > platform config directory, creating a
// default file the first time, and returns the loaded config alongside the
// path it used.
func LoadConfigWithPriority(userPath string) (*Config, string, error) {
	if userPath != "" {
		cfg, err := InitConfig(userPath)
		return cfg, userPath, err
	}

	if envPath := os.Getenv("WORDSERVE_CONFIG"); envPath != "" {
		cfg, err := InitConfig(envPath)
		return cfg, envPath, err
	}

	resolver, err := utils.NewPathResolver()
	if err != nil {
		log.Warnf("Failed to create path resolver, using defaults: %v", err)
		return DefaultConfig(), "", nil
	}

	configPath, err := resolver.GetConfigPath("config.toml")
	if err != nil {
		log.Warnf("Failed to resolve config path, using defaults: %v", err)
		return DefaultConfig(), "", nil
	}

	cfg, err := InitConfig(configPath)
	if err != nil {
		return nil, configPath, err
	}
	return cfg, configPath, nil
}

// Update changes the config values and saves to file
func (c *Config) Update(configPath string, minPrefix, maxPrefix *int, enableFilter *bool) error {
	server := &c.Server
	if minPrefix != nil {
		server.MinPrefix = *minPrefix
	}
	if maxPrefix != nil {
		server.MaxPrefix = *maxPrefix
	}
	if enableFilter != nil {
		server.EnableFilter = *enableFilter
	}
	return SaveConfig(c, configPath)
}
