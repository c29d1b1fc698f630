// Package config loads application settings: where run output lives, the
// recorder database path, logging, and the terminal theme. Settings come
// from defaults, an optional forcelab.yaml, and FORCELAB_* environment
// variables, in rising priority.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultDataDir  = "forcelab-runs"
	DefaultDBName   = "forcelab.db"
	DefaultLogLevel = "info"
	DefaultTheme    = "matrix"
)

// Settings is the resolved application configuration. Scenario content is
// a separate concern and lives in scenario YAML files.
type Settings struct {
	DataDir   string `mapstructure:"data_dir"`
	DBPath    string `mapstructure:"db_path"`
	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`
	Theme     string `mapstructure:"theme"`
}

// Load resolves settings. path may name a config file explicitly; when
// empty, forcelab.yaml is looked up in the current directory and is
// optional.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("db_path", filepath.Join(DefaultDataDir, DefaultDBName))
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_pretty", true)
	v.SetDefault("theme", DefaultTheme)

	v.SetEnvPrefix("FORCELAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("forcelab")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &s, nil
}
