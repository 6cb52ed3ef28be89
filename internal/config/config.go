// Package config loads and saves the application configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/ProfilePack/internal/model"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. PROFILEPACK_CONTAINER_MAX_WEIGHT_KG.
	EnvPrefix = "PROFILEPACK"

	fileName = "profilepack"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.profilepack/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".profilepack")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), fileName+".yaml")
}

// DefaultRunsDir returns where saved runs go when the config does not say.
func DefaultRunsDir() string {
	return filepath.Join(DefaultConfigDir(), "runs")
}

// Load builds the AppConfig from defaults, the config file and PROFILEPACK_*
// environment variables, in increasing priority. With an empty path the file
// is searched for as profilepack.yaml in the working directory and then in
// DefaultConfigDir; a missing file is not an error. An explicit path must
// exist. The returned string is the file that was read, if any.
func Load(path string) (model.AppConfig, string, error) {
	v, err := newViper()
	if err != nil {
		return model.AppConfig{}, "", err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultConfigDir())
	}
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return model.AppConfig{}, "", fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg model.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return model.AppConfig{}, "", fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return model.AppConfig{}, "", fmt.Errorf("invalid config %s: %w", v.ConfigFileUsed(), err)
	}
	return cfg, v.ConfigFileUsed(), nil
}

// newViper returns a viper instance seeded with model.DefaultAppConfig so
// that every key is known to the environment lookup.
func newViper() (*viper.Viper, error) {
	defaults, err := yaml.Marshal(model.DefaultAppConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to encode defaults: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(string(defaults))); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// SaveAppConfig persists an AppConfig to the given path as YAML.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, cfg model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
