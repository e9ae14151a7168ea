// Package config provides Viper-based configuration loading for the duskborne engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/duskborne/internal/game/tuning"
)

// DatabaseConfig holds PostgreSQL connection settings for the server save store.
type DatabaseConfig struct {
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

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a file path, "stdout", or "stderr". Empty keeps the zap default.
	Output string `mapstructure:"output"`
}

// SimulationConfig controls the tick loop.
type SimulationConfig struct {
	// TickInterval is the wall-clock period between ticks in the headless runner.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// MaxDelta is the largest frame delta, in seconds, a single tick may consume.
	MaxDelta float64 `mapstructure:"max_delta"`
	// DeferredClock selects the clock deferred effects run against: "wall" or "pausable".
	DeferredClock string `mapstructure:"deferred_clock"`
	// MaxTicks stops the headless runner after this many ticks; 0 means unbounded.
	MaxTicks int `mapstructure:"max_ticks"`
	// Seed seeds the random source; 0 selects crypto randomness.
	Seed int64 `mapstructure:"seed"`
}

// EventsConfig controls the event trigger system.
type EventsConfig struct {
	// Cooldown is the minimum time between random encounters.
	Cooldown time.Duration `mapstructure:"cooldown"`
	// EncounterChance is the per-tick probability of a random encounter once off cooldown.
	EncounterChance float64 `mapstructure:"encounter_chance"`
	// StoryChance is the probability that interacting away from any NPC plays a story beat.
	StoryChance float64 `mapstructure:"story_chance"`
	// ScriptDir optionally holds Lua predicate scripts.
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit bounds every Lua predicate call.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// ContentConfig locates the YAML content tree.
type ContentConfig struct {
	AreasDir    string `mapstructure:"areas_dir"`
	NPCsDir     string `mapstructure:"npcs_dir"`
	EventsDir   string `mapstructure:"events_dir"`
	ProfilesDir string `mapstructure:"profiles_dir"`
	StartArea   string `mapstructure:"start_area"`
}

// StorageConfig selects the save store.
type StorageConfig struct {
	// Driver is one of "none", "sqlite", or "postgres".
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// TracingConfig holds OpenTelemetry export settings.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
	Insecure    bool   `mapstructure:"insecure"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Tuning     tuning.Constants `mapstructure:"tuning"`
	Events     EventsConfig     `mapstructure:"events"`
	Content    ContentConfig    `mapstructure:"content"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Tuning.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEvents(c.Events); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Driver == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateTracing(c.Tracing); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_interval must be > 0, got %s", s.TickInterval))
	}
	if s.MaxDelta <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.max_delta must be > 0, got %v", s.MaxDelta))
	}
	if s.DeferredClock != "wall" && s.DeferredClock != "pausable" {
		errs = append(errs, fmt.Sprintf("simulation.deferred_clock must be one of [wall, pausable], got %q", s.DeferredClock))
	}
	if s.MaxTicks < 0 {
		errs = append(errs, fmt.Sprintf("simulation.max_ticks must be >= 0, got %d", s.MaxTicks))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEvents(e EventsConfig) error {
	var errs []string
	if e.Cooldown < 0 {
		errs = append(errs, "events.cooldown must not be negative")
	}
	if e.EncounterChance < 0 || e.EncounterChance > 1 {
		errs = append(errs, fmt.Sprintf("events.encounter_chance must be in [0, 1], got %v", e.EncounterChance))
	}
	if e.StoryChance < 0 || e.StoryChance > 1 {
		errs = append(errs, fmt.Sprintf("events.story_chance must be in [0, 1], got %v", e.StoryChance))
	}
	if e.InstructionLimit < 1 {
		errs = append(errs, fmt.Sprintf("events.instruction_limit must be >= 1, got %d", e.InstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.AreasDir == "" {
		errs = append(errs, "content.areas_dir must not be empty")
	}
	if c.StartArea == "" {
		errs = append(errs, "content.start_area must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case "none", "postgres":
		return nil
	case "sqlite":
		if s.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path must not be empty when storage.driver is sqlite")
		}
		return nil
	default:
		return fmt.Errorf("storage.driver must be one of [none, sqlite, postgres], got %q", s.Driver)
	}
}

func validateDatabase(d DatabaseConfig) error {
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

func validateTracing(t TracingConfig) error {
	if !t.Enabled {
		return nil
	}
	var errs []string
	if t.Endpoint == "" {
		errs = append(errs, "tracing.endpoint must not be empty when tracing is enabled")
	}
	if t.ServiceName == "" {
		errs = append(errs, "tracing.service_name must not be empty when tracing is enabled")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DUSK_ prefix
	v.SetEnvPrefix("DUSK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
// Defaults are applied for every key the instance leaves unset.
//
// Precondition: v must be non-nil.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by the built-in defaults alone.
//
// Postcondition: The returned Config passes Validate.
func Default() Config {
	cfg, err := LoadFromViper(viper.New())
	if err != nil {
		panic(fmt.Sprintf("config: built-in defaults invalid: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulation.tick_interval", "16ms")
	v.SetDefault("simulation.max_delta", 0.1)
	v.SetDefault("simulation.deferred_clock", "wall")
	v.SetDefault("simulation.max_ticks", 0)
	v.SetDefault("simulation.seed", 0)

	t := tuning.Defaults()
	v.SetDefault("tuning.gravity", t.Gravity)
	v.SetDefault("tuning.max_fall_speed", t.MaxFallSpeed)
	v.SetDefault("tuning.jump_speed", t.JumpSpeed)
	v.SetDefault("tuning.player_speed", t.PlayerSpeed)
	v.SetDefault("tuning.dash_speed", t.DashSpeed)
	v.SetDefault("tuning.friction", t.Friction)
	v.SetDefault("tuning.player_max_hp", t.PlayerMaxHP)
	v.SetDefault("tuning.player_damage", t.PlayerDamage)
	v.SetDefault("tuning.attack_cooldown", t.AttackCooldown)
	v.SetDefault("tuning.combo_window", t.ComboWindow)
	v.SetDefault("tuning.dodge_cooldown", t.DodgeCooldown)
	v.SetDefault("tuning.invulnerability", t.Invulnerability)
	v.SetDefault("tuning.dodge_duration", t.DodgeDuration)
	v.SetDefault("tuning.attack_window", t.AttackWindow)
	v.SetDefault("tuning.world_width", t.WorldWidth)
	v.SetDefault("tuning.world_height", t.WorldHeight)
	v.SetDefault("tuning.morality_bound", t.MoralityBound)
	v.SetDefault("tuning.morality_tier", t.MoralityTier)
	v.SetDefault("tuning.ending_decision_limit", t.EndingDecisionLimit)
	v.SetDefault("tuning.hit_effect_lifetime", t.HitEffectLifetime)

	v.SetDefault("events.cooldown", "30s")
	v.SetDefault("events.encounter_chance", 0.1)
	v.SetDefault("events.story_chance", 0.001)
	v.SetDefault("events.script_dir", "")
	v.SetDefault("events.instruction_limit", 100_000)

	v.SetDefault("content.areas_dir", "content/areas")
	v.SetDefault("content.npcs_dir", "content/npcs")
	v.SetDefault("content.events_dir", "content/events")
	v.SetDefault("content.profiles_dir", "content/profiles")
	v.SetDefault("content.start_area", "forest")

	v.SetDefault("storage.driver", "none")
	v.SetDefault("storage.sqlite_path", "duskborne.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "duskborne")
	v.SetDefault("database.password", "duskborne")
	v.SetDefault("database.name", "duskborne")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "http://localhost:4318")
	v.SetDefault("tracing.service_name", "duskborne")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.insecure", true)
}
