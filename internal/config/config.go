/*
Package config
File: config.go
Description:
    Process settings. Precedence, highest first:
    1. Command line flags (--seed, --serve, --new, --catalog, --config)
    2. Environment (TRADEWINDS_SAVE_PATH, TRADEWINDS_SERVER_ADDR, ... and .env)
    3. config.yaml (./ or ./config, or the file given with --config)
    4. Built-in defaults
*/

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TRADEWINDS"

// Config is the full process configuration.
type Config struct {
	CatalogPath string       `mapstructure:"catalog_path"` // Empty = embedded catalog
	SavePath    string       `mapstructure:"save_path"`
	Seed        uint64       `mapstructure:"seed"`     // 0 = seed from the clock
	MaxDays     int          `mapstructure:"max_days"` // 0 = catalog value
	EventChance float64      `mapstructure:"event_chance"`
	NewGame     bool         `mapstructure:"new"`   // Ignore any existing save
	Serve       bool         `mapstructure:"serve"` // Headless HTTP mode instead of the terminal
	Log         LogConfig    `mapstructure:"log"`
	Server      ServerConfig `mapstructure:"server"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ServerConfig is used by --serve.
type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	PulseInterval time.Duration `mapstructure:"pulse_interval"` // 0 disables the market pulse
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog_path", "")
	v.SetDefault("save_path", "tradewinds-save.json")
	v.SetDefault("seed", 0)
	v.SetDefault("max_days", 0)
	v.SetDefault("event_chance", 0.25)
	v.SetDefault("new", false)
	v.SetDefault("serve", false)
	v.SetDefault("log.file", "tradewinds.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 5)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("server.addr", ":8081")
	v.SetDefault("server.pulse_interval", "30s")
}

// RegisterFlags adds the command line flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file (default: ./config.yaml or ./config/config.yaml)")
	fs.String("catalog", "", "path to a catalog YAML file (default: built in)")
	fs.Uint64("seed", 0, "random seed (0 = time based)")
	fs.Bool("new", false, "start a new game even if a save exists")
	fs.Bool("serve", false, "run the headless HTTP/WebSocket server instead of the terminal")
}

// Load resolves the configuration. fs may be nil when no flags are in play.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// 1. .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// 2. Environment
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. Flags
	configFile := ""
	if fs != nil {
		configFile, _ = fs.GetString("config")
		for key, flag := range map[string]string{
			"catalog_path": "catalog",
			"seed":         "seed",
			"new":          "new",
			"serve":        "serve",
		} {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	// 4. Config file; only an explicitly named file is required
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the game cannot run with.
func (c *Config) Validate() error {
	if c.SavePath == "" {
		return errors.New("config: save_path must not be empty")
	}
	if c.EventChance < 0 || c.EventChance > 1 {
		return fmt.Errorf("config: event_chance %.2f is outside [0, 1]", c.EventChance)
	}
	if c.MaxDays < 0 {
		return fmt.Errorf("config: max_days %d is negative", c.MaxDays)
	}
	if c.Server.PulseInterval < 0 {
		return fmt.Errorf("config: server.pulse_interval %s is negative", c.Server.PulseInterval)
	}
	if c.Serve && c.Server.Addr == "" {
		return errors.New("config: server.addr is required with --serve")
	}
	return nil
}
