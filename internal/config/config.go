// Package config handles testscope configuration loading and
// validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete runtime configuration.
type Config struct {
	Analysis     AnalysisConfig     `mapstructure:"analysis" yaml:"analysis"`
	Reachability ReachabilityConfig `mapstructure:"reachability" yaml:"reachability"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// AnalysisConfig controls the application-code boundary and batch
// behavior.
type AnalysisConfig struct {
	// AppPackages lists package prefixes counted as application
	// code for reachability expansion and focal-class eligibility.
	// Empty means every class present in the code model qualifies.
	AppPackages []string `mapstructure:"app_packages" yaml:"app_packages"`

	// ExcludePackages lists package prefixes excluded from
	// application code even when present in the model.
	ExcludePackages []string `mapstructure:"exclude_packages" yaml:"exclude_packages"`

	// Workers is the number of test classes analyzed concurrently.
	// 0 means runtime.NumCPU().
	Workers int `mapstructure:"workers" yaml:"workers"`

	// SignatureTables is an optional path to a signature table
	// override file; empty uses the embedded defaults.
	SignatureTables string `mapstructure:"signature_tables" yaml:"signature_tables"`
}

// ReachabilityConfig bounds the helper-method traversal.
type ReachabilityConfig struct {
	// MaxDepth is the maximum call-hierarchy depth expanded from a
	// test method.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`

	// MaxVisited caps the total number of methods visited per root,
	// guarding against adversarial graphs.
	MaxVisited int `mapstructure:"max_visited" yaml:"max_visited"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Workers: 0, // 0 = runtime.NumCPU()
		},
		Reachability: ReachabilityConfig{
			MaxDepth:   5,
			MaxVisited: 512,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from an optional YAML file, applying
// TESTSCOPE_* environment overrides and defaults for anything not
// set. An empty path still honors the environment.
func Load(path string) (*Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TESTSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a registered default for AutomaticEnv to
	// surface it through Unmarshal.
	v.SetDefault("analysis.app_packages", def.Analysis.AppPackages)
	v.SetDefault("analysis.exclude_packages", def.Analysis.ExcludePackages)
	v.SetDefault("analysis.workers", def.Analysis.Workers)
	v.SetDefault("analysis.signature_tables", def.Analysis.SignatureTables)
	v.SetDefault("reachability.max_depth", def.Reachability.MaxDepth)
	v.SetDefault("reachability.max_visited", def.Reachability.MaxVisited)
	v.SetDefault("logging.level", def.Logging.Level)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Re-apply defaults for zeroed bounds.
	if cfg.Reachability.MaxDepth <= 0 {
		cfg.Reachability.MaxDepth = 5
	}
	if cfg.Reachability.MaxVisited <= 0 {
		cfg.Reachability.MaxVisited = 512
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func Validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", cfg.Logging.Level)
	}
	if cfg.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must be >= 0, got %d", cfg.Analysis.Workers)
	}
	return nil
}
