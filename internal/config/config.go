// Package config provides configuration types and defaults for tabsuspend.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/npratt/tabsuspend/internal/tabs"
)

// Config holds all configuration for tabsuspend.
type Config struct {
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Resolver    ResolverConfig    `yaml:"resolver" mapstructure:"resolver"`
	Tracker     TrackerConfig     `yaml:"tracker" mapstructure:"tracker"`
	Options     tabs.Options      `yaml:"options" mapstructure:"options"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
	Popup       PopupConfig       `yaml:"popup" mapstructure:"popup"`
}

// PathsConfig holds file paths for the socket, pid file, logs, and tab
// snapshot.
type PathsConfig struct {
	Socket   string `yaml:"socket" mapstructure:"socket"`
	PID      string `yaml:"pid" mapstructure:"pid"`
	Log      string `yaml:"log" mapstructure:"log"`             // daemon event journal (JSONL)
	PopupLog string `yaml:"popup_log" mapstructure:"popup_log"` // popup debug log, rotated
	Tabs     string `yaml:"tabs" mapstructure:"tabs"`           // .yaml or .toml
}

// ResolverConfig tunes the popup's status resolution.
type ResolverConfig struct {
	ImmediateRetries int           `yaml:"immediate_retries" mapstructure:"immediate_retries"`
	PatientRetries   int           `yaml:"patient_retries" mapstructure:"patient_retries"`
	RetryDelay       time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
	QueryTimeout     time.Duration `yaml:"query_timeout" mapstructure:"query_timeout"` // per socket round trip
}

// TrackerConfig holds the daemon's inspection loop settings.
type TrackerConfig struct {
	CheckInterval time.Duration `yaml:"check_interval" mapstructure:"check_interval"`
	CheckDelay    time.Duration `yaml:"check_delay" mapstructure:"check_delay"`
	ProbePower    bool          `yaml:"probe_power" mapstructure:"probe_power"` // read UPower/NetworkManager over D-Bus
	WatchTabs     bool          `yaml:"watch_tabs" mapstructure:"watch_tabs"`   // reload the snapshot when it changes
}

// LogRotationConfig holds settings for the popup debug log
// (lumberjack-based automatic rotation).
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// PopupConfig holds popup presentation settings.
type PopupConfig struct {
	FadeIn time.Duration `yaml:"fade_in" mapstructure:"fade_in"`
}

// Default returns a Config with the stock settings.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Socket:   ".tabsuspend/tabsuspend.sock",
			PID:      ".tabsuspend/tabsuspend.pid",
			Log:      ".tabsuspend/events.jsonl",
			PopupLog: ".tabsuspend/popup.log",
			Tabs:     ".tabsuspend/tabs.yaml",
		},
		Resolver: ResolverConfig{
			ImmediateRetries: 0,
			PatientRetries:   50,
			RetryDelay:       200 * time.Millisecond,
			QueryTimeout:     2 * time.Second,
		},
		Tracker: TrackerConfig{
			CheckInterval: time.Second,
			CheckDelay:    500 * time.Millisecond,
			ProbePower:    true,
			WatchTabs:     true,
		},
		Options: tabs.DefaultOptions(),
		LogRotation: LogRotationConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Popup: PopupConfig{
			FadeIn: 100 * time.Millisecond,
		},
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Resolver.ImmediateRetries < 0 {
		errs = append(errs, fmt.Errorf("resolver.immediate_retries must be >= 0, got %d", c.Resolver.ImmediateRetries))
	}
	if c.Resolver.PatientRetries < 0 {
		errs = append(errs, fmt.Errorf("resolver.patient_retries must be >= 0, got %d", c.Resolver.PatientRetries))
	}
	if c.Resolver.RetryDelay <= 0 {
		errs = append(errs, fmt.Errorf("resolver.retry_delay must be positive, got %s", c.Resolver.RetryDelay))
	}
	if c.Tracker.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("tracker.check_interval must be positive, got %s", c.Tracker.CheckInterval))
	}
	if c.Paths.Socket == "" {
		errs = append(errs, errors.New("paths.socket is required"))
	}
	return errors.Join(errs...)
}
