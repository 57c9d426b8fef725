// Package config loads settings from defaults, an optional YAML file, a
// .env file and SHUPROPHET_ environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Yuuki0u0/shuprophet/ensemble"
	"github.com/Yuuki0u0/shuprophet/forecast"
	"github.com/Yuuki0u0/shuprophet/reasoning"
	"github.com/Yuuki0u0/shuprophet/session"
)

// EnvPrefix prefixes every environment override, e.g.
// SHUPROPHET_SESSION_MAX_STEPS.
const EnvPrefix = "SHUPROPHET"

// Config is the full application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Session  SessionConfig  `mapstructure:"session"`
	Ensemble EnsembleConfig `mapstructure:"ensemble"`
	Store    session.Config `mapstructure:"store"`
	Input    InputConfig    `mapstructure:"input"`
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SessionConfig bounds one forecasting session.
type SessionConfig struct {
	MaxSteps         int  `mapstructure:"max_steps"`
	EnableCorrection bool `mapstructure:"enable_correction"`
	Horizon          int  `mapstructure:"horizon"`
}

// EnsembleConfig tunes model selection and the bootstrap bounds.
type EnsembleConfig struct {
	DefaultModel      string  `mapstructure:"default_model"`
	MinHoldout        int     `mapstructure:"min_holdout"`
	HoldoutDivisor    int     `mapstructure:"holdout_divisor"`
	MinTrain          int     `mapstructure:"min_train"`
	SwitchRatio       float64 `mapstructure:"switch_ratio"`
	BootstrapReplicas int     `mapstructure:"bootstrap_replicas"`
	Seed              uint64  `mapstructure:"seed"`
	Parallel          bool    `mapstructure:"parallel"`
}

// InputConfig constrains the series accepted by the CLI.
type InputConfig struct {
	MinPoints int `mapstructure:"min_points"`
}

// Load reads configuration. An empty path skips the YAML file; a missing
// .env file is ignored.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("session.max_steps", 8)
	v.SetDefault("session.enable_correction", true)
	v.SetDefault("session.horizon", 10)

	ens := ensemble.DefaultConfig()
	v.SetDefault("ensemble.default_model", string(ens.DefaultModel))
	v.SetDefault("ensemble.min_holdout", ens.MinHoldout)
	v.SetDefault("ensemble.holdout_divisor", ens.HoldoutDivisor)
	v.SetDefault("ensemble.min_train", ens.MinTrain)
	v.SetDefault("ensemble.switch_ratio", ens.SwitchRatio)
	v.SetDefault("ensemble.bootstrap_replicas", ens.BootstrapReplicas)
	v.SetDefault("ensemble.seed", ens.Seed)
	v.SetDefault("ensemble.parallel", ens.Parallel)

	store := session.DefaultConfig()
	v.SetDefault("store.ttl", store.TTL)
	v.SetDefault("store.capacity", store.Capacity)

	v.SetDefault("input.min_points", 10)
}

// Validate rejects settings the forecasting engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Session.MaxSteps <= 0:
		return fmt.Errorf("config: session.max_steps must be positive, got %d", c.Session.MaxSteps)
	case c.Session.Horizon <= 0:
		return fmt.Errorf("config: session.horizon must be positive, got %d", c.Session.Horizon)
	case c.Ensemble.BootstrapReplicas <= 0:
		return fmt.Errorf("config: ensemble.bootstrap_replicas must be positive, got %d", c.Ensemble.BootstrapReplicas)
	case c.Ensemble.SwitchRatio <= 0 || c.Ensemble.SwitchRatio > 1:
		return fmt.Errorf("config: ensemble.switch_ratio must be in (0, 1], got %g", c.Ensemble.SwitchRatio)
	case c.Ensemble.MinHoldout <= 0 || c.Ensemble.HoldoutDivisor <= 0:
		return errors.New("config: ensemble holdout sizes must be positive")
	case c.Input.MinPoints < 2:
		return fmt.Errorf("config: input.min_points must be at least 2, got %d", c.Input.MinPoints)
	case c.Store.TTL <= 0 || c.Store.Capacity <= 0:
		return errors.New("config: store.ttl and store.capacity must be positive")
	}
	if !validModel(forecast.ModelID(c.Ensemble.DefaultModel)) {
		return fmt.Errorf("config: unknown ensemble.default_model %q", c.Ensemble.DefaultModel)
	}
	return nil
}

func validModel(id forecast.ModelID) bool {
	for _, f := range forecast.Bank() {
		if f.ID() == id {
			return true
		}
	}
	return false
}

// EnsembleSettings converts the ensemble section.
func (c *Config) EnsembleSettings() ensemble.Config {
	ens := ensemble.DefaultConfig()
	ens.DefaultModel = forecast.ModelID(c.Ensemble.DefaultModel)
	ens.MinHoldout = c.Ensemble.MinHoldout
	ens.HoldoutDivisor = c.Ensemble.HoldoutDivisor
	ens.MinTrain = c.Ensemble.MinTrain
	ens.SwitchRatio = c.Ensemble.SwitchRatio
	ens.BootstrapReplicas = c.Ensemble.BootstrapReplicas
	ens.Seed = c.Ensemble.Seed
	ens.Parallel = c.Ensemble.Parallel
	return ens
}

// ReasoningSettings converts the session and ensemble sections.
func (c *Config) ReasoningSettings() reasoning.Config {
	rc := reasoning.DefaultConfig()
	rc.MaxSteps = c.Session.MaxSteps
	rc.EnableCorrection = c.Session.EnableCorrection
	rc.Horizon = c.Session.Horizon
	rc.Ensemble = c.EnsembleSettings()
	return rc
}
