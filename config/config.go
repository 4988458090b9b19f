package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// DUCKPOND_SIM_TICKS.
const EnvPrefix = "DUCKPOND"

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Sim    SimConfig    `mapstructure:"sim" yaml:"sim"`
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	View   ViewConfig   `mapstructure:"view" yaml:"view"`
}

// SimConfig drives the fixed-step simulation.
type SimConfig struct {
	TickRate  int    `mapstructure:"tick_rate" yaml:"tick_rate"`
	Ticks     int    `mapstructure:"ticks" yaml:"ticks"`
	Seed      uint64 `mapstructure:"seed" yaml:"seed"`
	Scene     string `mapstructure:"scene" yaml:"scene"`
	Duck      string `mapstructure:"duck" yaml:"duck"`
	Player    string `mapstructure:"player" yaml:"player"`
	Script    string `mapstructure:"script" yaml:"script"`
	PrefabDir string `mapstructure:"prefab_dir" yaml:"prefab_dir"`
	Watch     bool   `mapstructure:"watch" yaml:"watch"`
}

// DeltaTime is the fixed step length in seconds.
func (s SimConfig) DeltaTime() float64 {
	if s.TickRate <= 0 {
		return 0
	}
	return 1 / float64(s.TickRate)
}

type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

type ViewConfig struct {
	Width  int     `mapstructure:"width" yaml:"width"`
	Height int     `mapstructure:"height" yaml:"height"`
	Scale  float64 `mapstructure:"scale" yaml:"scale"`
}

func SetDefaults(v *viper.Viper) {
	// -- Sim --
	v.SetDefault("sim.tick_rate", 60)
	v.SetDefault("sim.ticks", 600)
	v.SetDefault("sim.seed", 1)
	v.SetDefault("sim.scene", "scene.yaml")
	v.SetDefault("sim.duck", "duck.yaml")
	v.SetDefault("sim.player", "player.yaml")
	v.SetDefault("sim.script", "scripts/patrol.tengo")
	v.SetDefault("sim.prefab_dir", "prefabs")
	v.SetDefault("sim.watch", false)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "duckpond")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)

	// -- View --
	v.SetDefault("view.width", 960)
	v.SetDefault("view.height", 720)
	v.SetDefault("view.scale", 32.0)
}

// NewDefaultConfig returns the configuration with only defaults applied.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		// defaults are static; failing here is a programming error
		panic(err)
	}
	return cfg
}

// Load wires environment overrides and an optional config file into v and
// decodes the result. A missing path means defaults plus environment.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return NewConfigFromViper(v)
}

func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("%w: sim.tick_rate must be positive", ErrInvalidConfig)
	}
	if c.Sim.Ticks < 0 {
		return fmt.Errorf("%w: sim.ticks must not be negative", ErrInvalidConfig)
	}
	if c.Sim.Scene == "" || c.Sim.Duck == "" || c.Sim.Player == "" {
		return fmt.Errorf("%w: sim.scene, sim.duck and sim.player are required", ErrInvalidConfig)
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logger.format %q", ErrInvalidConfig, c.Logger.Format)
	}
	if c.View.Width <= 0 || c.View.Height <= 0 || c.View.Scale <= 0 {
		return fmt.Errorf("%w: view dimensions must be positive", ErrInvalidConfig)
	}
	return nil
}
