package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Name string `toml:"name"`
	// TickPeriod drives the game clock. Zero leaves ticking to manual calls.
	TickPeriod           Duration `toml:"tick_period"`
	RandomizeSpawnPoints bool     `toml:"randomize_spawn_points"`
	DataFile             string   `toml:"data_file"`
	ScriptsDir           string   `toml:"scripts_dir"`
	StartTime            int64    // set at boot, not from config
}

type SnapshotConfig struct {
	// Path of the state file. Empty disables saving and restoring.
	Path           string   `toml:"path"`
	AutosavePeriod Duration `toml:"autosave_period"`
}

type DatabaseConfig struct {
	Driver          string   `toml:"driver"` // "postgres", "sqlite" or "" for none
	DSN             string   `toml:"dsn"`
	MaxOpenConns    int      `toml:"max_open_conns"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
	QueueSize       int      `toml:"queue_size"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Duration accepts TOML strings like "50ms" and bare integers (milliseconds).
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d *Duration) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		d.Duration = time.Duration(x) * time.Millisecond
		return nil
	case string:
		return d.UnmarshalText([]byte(x))
	}
	return fmt.Errorf("invalid duration %v", v)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if dsn := os.Getenv("GAME_DB_URL"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Database.Driver != "" && c.Database.DSN == "" {
		return fmt.Errorf("database driver %q needs a dsn", c.Database.Driver)
	}
	if c.Server.TickPeriod.Duration < 0 || c.Snapshot.AutosavePeriod.Duration < 0 {
		return fmt.Errorf("periods must not be negative")
	}
	if c.Server.DataFile == "" {
		return fmt.Errorf("server.data_file is required")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:       "dogloot",
			TickPeriod: Duration{50 * time.Millisecond},
			DataFile:   "data/maps.yaml",
		},
		Snapshot: SnapshotConfig{
			AutosavePeriod: Duration{time.Minute},
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: Duration{30 * time.Minute},
			QueueSize:       1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
