// Package config loads simplefs settings from defaults, an optional config
// file, SIMPLEFS_* environment variables and bound command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	AppName   = "simplefs"
	EnvPrefix = "SIMPLEFS"
)

type Config struct {
	Disk      string `mapstructure:"disk"`       // disk image path
	Blocks    uint64 `mapstructure:"blocks"`     // image size used by format
	Debug     uint64 `mapstructure:"debug"`      // util.DPrintf threshold
	LogFormat string `mapstructure:"log_format"` // json or human
}

// New returns a viper instance with defaults and environment lookup set up.
// Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("disk", AppName+".img")
	v.SetDefault("blocks", 100)
	v.SetDefault("debug", 0)
	v.SetDefault("log_format", "human")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads cfgFile (if not empty) into v and decodes the result.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Disk == "" {
		return nil, fmt.Errorf("no disk image configured")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "human" {
		return nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return cfg, nil
}
