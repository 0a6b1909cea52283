// Package config provides Viper-based configuration loading for the engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g.
// STATENGINE_ENGINE_TICK_RATE.
const EnvPrefix = "STATENGINE"

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled turns snapshot persistence to PostgreSQL on.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds snapshot cache settings.
type RedisConfig struct {
	// Enabled turns the Redis snapshot cache on.
	Enabled bool `mapstructure:"enabled"`
	// URL is a redis:// connection URL.
	URL string `mapstructure:"url"`
	// TTL is how long a cached snapshot lives; zero keeps it forever.
	TTL time.Duration `mapstructure:"ttl"`
	// KeyPrefix namespaces cache keys.
	KeyPrefix string `mapstructure:"key_prefix"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EngineConfig holds game loop settings.
type EngineConfig struct {
	// TickRate is the number of game updates per second.
	TickRate int `mapstructure:"tick_rate"`
	// PlayerDimensions is the dimensionality of the player's position.
	PlayerDimensions int `mapstructure:"player_dimensions"`
	// PersistInterval is how often the running game is snapshotted; zero
	// snapshots only on shutdown.
	PersistInterval time.Duration `mapstructure:"persist_interval"`
	// StatusEvery logs a status line every N ticks; zero disables it.
	StatusEvery int `mapstructure:"status_every"`
	// Version is stamped on new game states.
	Version string `mapstructure:"version"`
}

// TickInterval returns the wall-clock duration of one tick.
//
// Precondition: TickRate > 0.
func (e EngineConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(e.TickRate)
}

// ContentConfig names the directories game content is loaded from. Empty
// directories are skipped.
type ContentConfig struct {
	TagsDir     string `mapstructure:"tags_dir"`
	EntitiesDir string `mapstructure:"entities_dir"`
	ItemsDir    string `mapstructure:"items_dir"`
	NPCsDir     string `mapstructure:"npcs_dir"`
	AssetsDir   string `mapstructure:"assets_dir"`
}

// ScriptingConfig holds Lua condition evaluation settings.
type ScriptingConfig struct {
	// ConditionDir holds *.lua condition hooks; empty uses only the built-in
	// defaults.
	ConditionDir string `mapstructure:"condition_dir"`
	// InstructionLimit bounds each hook call; zero uses the package default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Content   ContentConfig   `mapstructure:"content"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateLogging(c.Logging),
		validateDatabase(c.Database),
		validateRedis(c.Redis),
		validateEngine(c.Engine),
		validateScripting(c.Scripting),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	if !d.Enabled {
		return nil
	}
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRedis(r RedisConfig) error {
	var errs []string
	if r.Enabled && r.URL == "" {
		errs = append(errs, "redis.url must not be empty when redis is enabled")
	}
	if r.TTL < 0 {
		errs = append(errs, "redis.ttl must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if e.TickRate < 1 || e.TickRate > 240 {
		errs = append(errs, fmt.Sprintf("engine.tick_rate must be 1-240, got %d", e.TickRate))
	}
	if e.PlayerDimensions < 1 {
		errs = append(errs, fmt.Sprintf("engine.player_dimensions must be >= 1, got %d", e.PlayerDimensions))
	}
	if e.PersistInterval < 0 {
		errs = append(errs, "engine.persist_interval must not be negative")
	}
	if e.StatusEvery < 0 {
		errs = append(errs, fmt.Sprintf("engine.status_every must be >= 0, got %d", e.StatusEvery))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and STATENGINE_ environment
// overrides installed.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "statengine")
	v.SetDefault("database.password", "statengine")
	v.SetDefault("database.name", "statengine")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.ttl", "24h")
	v.SetDefault("redis.key_prefix", "statengine:snapshot:")

	v.SetDefault("engine.tick_rate", 10)
	v.SetDefault("engine.player_dimensions", 2)
	v.SetDefault("engine.persist_interval", "0s")
	v.SetDefault("engine.status_every", 10)
	v.SetDefault("engine.version", "0.1.0")

	v.SetDefault("content.tags_dir", "")
	v.SetDefault("content.entities_dir", "")
	v.SetDefault("content.items_dir", "")
	v.SetDefault("content.npcs_dir", "")
	v.SetDefault("content.assets_dir", "assets")

	v.SetDefault("scripting.condition_dir", "")
	v.SetDefault("scripting.instruction_limit", 0)
}
