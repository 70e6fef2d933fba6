// Package config loads mdhtml settings. Precedence, highest first: bound
// command-line flags, MDHTML_* environment variables, the config file
// ($XDG_CONFIG_HOME/mdhtml/config.yaml or an explicit path), built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MDHTML_SERVER_ADDR.
const EnvPrefix = "MDHTML"

// Config holds all mdhtml settings.
type Config struct {
	Preview  PreviewConfig  `mapstructure:"preview"`
	Render   RenderConfig   `mapstructure:"render"`
	Server   ServerConfig   `mapstructure:"server"`
	Registry RegistryConfig `mapstructure:"registry"`
	Watch    WatchConfig    `mapstructure:"watch"`
}

// PreviewConfig controls file previews.
type PreviewConfig struct {
	// Engine is "basic" or "gfm".
	Engine   string `mapstructure:"engine"`
	Sanitize bool   `mapstructure:"sanitize"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

// RenderConfig controls the render command.
type RenderConfig struct {
	FrontMatter bool `mapstructure:"front_matter"`
	Sanitize    bool `mapstructure:"sanitize"`
	Document    bool `mapstructure:"document"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type RegistryConfig struct {
	// Path is the SQLite registry file; empty selects the XDG data directory.
	Path string `mapstructure:"path"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Options selects the config file and the flags bound to config keys.
type Options struct {
	// File is an explicit config file; it must exist when set.
	File string
	// Flags maps config keys (e.g. "server.addr") to command flags.
	Flags map[string]*pflag.Flag
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(UserConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading user config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be enforced by decoding alone.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Preview.Engine) {
	case "basic", "gfm":
	default:
		return fmt.Errorf("config: preview.engine must be basic or gfm, got %q", c.Preview.Engine)
	}
	if c.Preview.MaxBytes <= 0 {
		return fmt.Errorf("config: preview.max_bytes must be positive, got %d", c.Preview.MaxBytes)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("config: watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr must not be empty")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("preview.engine", "basic")
	v.SetDefault("preview.sanitize", false)
	v.SetDefault("preview.max_bytes", 10<<20)

	v.SetDefault("render.front_matter", true)
	v.SetDefault("render.sanitize", false)
	v.SetDefault("render.document", false)

	v.SetDefault("server.addr", "127.0.0.1:7878")
	v.SetDefault("registry.path", "")
	v.SetDefault("watch.debounce", "300ms")
}

// UserConfigDir returns $XDG_CONFIG_HOME/mdhtml, falling back to ~/.config/mdhtml.
func UserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mdhtml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "mdhtml")
	}
	return filepath.Join(home, ".config", "mdhtml")
}

// UserConfigPath returns the default config file path.
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), "config.yaml")
}
