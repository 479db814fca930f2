// Package config loads runtime configuration for the server binary
// from a YAML file, environment variables and defaults, in that
// priority order.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the server runtime configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Sim    SimConfig    `mapstructure:"sim"`
}

// ServerConfig holds the HTTP/websocket listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// SimConfig holds the simulation wiring: where the static catalog
// lives, the grid size, and the tick timer.
type SimConfig struct {
	DataDir string `mapstructure:"data_dir" validate:"required"`
	Rows    int    `mapstructure:"rows" validate:"gte=1"`
	Cols    int    `mapstructure:"cols" validate:"gte=1"`

	// TickMs is the nominal tick interval. Speed divides the real
	// interval between timer firings; it never changes the per-tick
	// simulation quantum.
	TickMs int     `mapstructure:"tick_ms" validate:"gt=0"`
	Speed  float64 `mapstructure:"speed" validate:"gt=0"`

	// Start is the initial resource grant for a fresh simulation.
	Start map[string]float64 `mapstructure:"start"`
}

// Load reads configuration with priority: environment variables
// (HAMLET_ prefix), then the config file, then defaults. When no path
// is given, a missing config.yaml in the working directory is not an
// error; an explicitly given path that cannot be read is.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HAMLET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("sim.data_dir", "data")
	v.SetDefault("sim.rows", 16)
	v.SetDefault("sim.cols", 16)
	v.SetDefault("sim.tick_ms", 1000)
	v.SetDefault("sim.speed", 1.0)
}

func validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range errs {
			messages = append(messages, fmt.Sprintf("field %q failed %q", e.Namespace(), e.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(messages, "; "))
	}
	return err
}
