package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration. Every key can be set through a
// FLEETSIM_ prefixed environment variable, e.g. FLEETSIM_PORT.
type Config struct {
	Port         string `mapstructure:"port"`
	SQLitePath   string `mapstructure:"sqlite_path"`
	DatabaseURL  string `mapstructure:"database_url"`
	SeedPath     string `mapstructure:"seed_path"`
	ScenarioPath string `mapstructure:"scenario_path"`
	JournalDir   string `mapstructure:"journal_dir"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
	TickSeconds  int    `mapstructure:"tick_seconds"`
	Mode         string `mapstructure:"mode"`
}

const (
	ModeServe = "serve"
	ModeBatch = "batch"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("sqlite_path", "data/fleet.db")
	v.SetDefault("database_url", "")
	v.SetDefault("seed_path", "data/seeds/fleet.json")
	v.SetDefault("scenario_path", "data/scenario.yaml")
	v.SetDefault("journal_dir", "data/journal")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("tick_seconds", 1)
	v.SetDefault("mode", ModeServe)
}

// Load reads an optional .env file, then layers FLEETSIM_* variables over
// the defaults.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FLEETSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TickSeconds < 1 {
		return fmt.Errorf("tick_seconds must be positive, got %d", c.TickSeconds)
	}
	switch c.Mode {
	case ModeServe, ModeBatch:
	default:
		return fmt.Errorf("mode %q: want %s or %s", c.Mode, ModeServe, ModeBatch)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" && strings.TrimSpace(c.SQLitePath) == "" {
		return fmt.Errorf("one of database_url or sqlite_path is required")
	}
	return nil
}

// UsePostgres reports whether the Postgres store is configured.
func (c Config) UsePostgres() bool { return strings.TrimSpace(c.DatabaseURL) != "" }

