package model

import "fmt"

// AppConfig holds application-wide defaults loaded from the config file.
type AppConfig struct {
	// Default envelopes applied to every run unless overridden by flags
	Container ContainerLimits `json:"container" yaml:"container" mapstructure:"container"`
	Pallet    PalletLimits    `json:"pallet" yaml:"pallet" mapstructure:"pallet"`
	Search    Settings        `json:"search" yaml:"search" mapstructure:"search"`

	// Application preferences
	RunsDir     string `json:"runs_dir" yaml:"runs_dir" mapstructure:"runs_dir"`             // where saved runs go, empty = ~/.profilepack/runs
	MetricsFile string `json:"metrics_file" yaml:"metrics_file" mapstructure:"metrics_file"` // prometheus textfile, empty = disabled
	Debug       bool   `json:"debug" yaml:"debug" mapstructure:"debug"`
}

// DefaultAppConfig returns an AppConfig populated with the defaults
// from DefaultContainerLimits, DefaultPalletLimits and DefaultSettings.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Container: DefaultContainerLimits(),
		Pallet:    DefaultPalletLimits(),
		Search:    DefaultSettings(),
	}
}

// Validate checks every section of the config.
func (c AppConfig) Validate() error {
	if err := c.Container.Validate(); err != nil {
		return fmt.Errorf("container: %w", err)
	}
	if err := c.Pallet.Validate(); err != nil {
		return fmt.Errorf("pallet: %w", err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return nil
}

// ApplyToSettings copies the search defaults from AppConfig into a Settings struct.
// Worker count is left alone when the config does not set one.
func (c AppConfig) ApplyToSettings(s *Settings) {
	workers := s.Workers
	*s = c.Search
	if s.Workers == 0 {
		s.Workers = workers
	}
}
