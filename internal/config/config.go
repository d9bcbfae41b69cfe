// Package config loads rewrites.yaml and REWRITES_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "rewrites"
	configFileType = "yaml"
	envPrefix      = "REWRITES"

	KeyDatabase    = "database"
	KeyKindsDir    = "kinds_dir"
	KeyWorkers     = "workers"
	KeyMaxFailures = "max_failures"
	KeyLogFile     = "log_file"

	DefaultDatabase = "rewrites.db"
	DefaultWorkers  = 4
)

// Config is the resolved tool configuration.
type Config struct {
	Database    string `mapstructure:"database"`
	KindsDir    string `mapstructure:"kinds_dir"`
	Workers     int    `mapstructure:"workers"`
	MaxFailures int    `mapstructure:"max_failures"`
	LogFile     string `mapstructure:"log_file"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// New returns a viper instance with defaults, env binding and the search
// path set up. An explicit file replaces the search path.
func New(file string) *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDatabase, DefaultDatabase)
	v.SetDefault(KeyKindsDir, "")
	v.SetDefault(KeyWorkers, DefaultWorkers)
	v.SetDefault(KeyMaxFailures, 0)
	v.SetDefault(KeyLogFile, "")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		return v
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "rewrites"))
	}
	return v
}

// Read loads the config file into v. A missing file is not an error when
// it was searched for; an explicit file must exist.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load is New followed by Read and Decode.
func Load(file string) (*Config, error) {
	v := New(file)
	if err := Read(v); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Decode unmarshals the resolved settings of v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.MaxFailures < 0 {
		return nil, fmt.Errorf("max_failures must be non-negative, got %d", cfg.MaxFailures)
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}
