// Package config loads textfinder settings from defaults, an optional config
// file, TEXTFINDER_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cheerioskun/textfinder/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "TEXTFINDER"

// Config holds the resolved settings
type Config struct {
	Server   string        `mapstructure:"server"`    // Search server base URL
	Timeout  time.Duration `mapstructure:"timeout"`   // Per-request timeout, 0 disables
	LogFile  string        `mapstructure:"log-file"`  // Debug log destination
	Debug    bool          `mapstructure:"debug"`     // Enables [DEBUG] log lines
	Verbose  bool          `mapstructure:"verbose"`   // Extra progress output on stderr
	Fallback bool          `mapstructure:"fallback"`  // Select folders as flat file lists
	Session  string        `mapstructure:"session"`   // Session file to load and save
	CacheDir string        `mapstructure:"cache-dir"` // Offline asset cache location
	Listen   string        `mapstructure:"listen"`    // Offline cache proxy address
}

// DefaultConfig values
var DefaultConfig = Config{
	Server:   "http://127.0.0.1:5055",
	Timeout:  0,
	LogFile:  utils.DefaultLogPath,
	Debug:    false,
	Verbose:  false,
	Fallback: false,
	Session:  "",
	CacheDir: defaultCacheDir(),
	Listen:   "127.0.0.1:5056",
}

// File is the config file path set with --config
var File string

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "textfinder")
	}
	return filepath.Join(os.TempDir(), "textfinder-cache")
}

// SetDefaults registers every default with viper
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server", DefaultConfig.Server)
	v.SetDefault("timeout", DefaultConfig.Timeout)
	v.SetDefault("log-file", DefaultConfig.LogFile)
	v.SetDefault("debug", DefaultConfig.Debug)
	v.SetDefault("verbose", DefaultConfig.Verbose)
	v.SetDefault("fallback", DefaultConfig.Fallback)
	v.SetDefault("session", DefaultConfig.Session)
	v.SetDefault("cache-dir", DefaultConfig.CacheDir)
	v.SetDefault("listen", DefaultConfig.Listen)
}

// BindFlags binds the root command's persistent flags and any local flags of
// cmd that share a config key name
func BindFlags(v *viper.Viper, cmd *cobra.Command) {
	for _, key := range []string{"server", "timeout", "log-file", "debug", "verbose", "fallback", "session", "cache-dir", "listen"} {
		if f := cmd.Flags().Lookup(key); f != nil {
			_ = v.BindPFlag(key, f)
			continue
		}
		if f := cmd.Root().PersistentFlags().Lookup(key); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// Load resolves the configuration for cmd. A config file named with --config
// must exist; otherwise .textfinder.yaml is looked up in the working and home
// directories and skipped when absent.
func Load(v *viper.Viper, cmd *cobra.Command) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if File != "" {
		v.SetConfigFile(File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(".textfinder")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if cmd != nil {
		BindFlags(v, cmd)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Server = strings.TrimRight(cfg.Server, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that cannot work
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server URL must not be empty")
	}
	if !strings.HasPrefix(c.Server, "http://") && !strings.HasPrefix(c.Server, "https://") {
		return fmt.Errorf("server URL %q must start with http:// or https://", c.Server)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
