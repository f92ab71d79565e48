package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradejournal/advisor"
	"github.com/rustyeddy/tradejournal/internal/scheduler"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/risk"
)

// Environment variables read after the config file. They carry secrets and
// per-host overrides.
const (
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvDatabaseURL  = "TRADEJOURNAL_DATABASE_URL"
	EnvStorePath    = "TRADEJOURNAL_DB_PATH"
	EnvPort         = "TRADEJOURNAL_PORT"
	EnvLogLevel     = "LOG_LEVEL"
	EnvBackupKey    = "TRADEJOURNAL_BACKUP_ACCESS_KEY_ID"
	EnvBackupSecret = "TRADEJOURNAL_BACKUP_SECRET_ACCESS_KEY"
)

// Config represents the complete journal configuration
type Config struct {
	Store   StoreConfig   `json:"store" yaml:"store"`
	Advisor AdvisorConfig `json:"advisor" yaml:"advisor"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Backup  BackupConfig  `json:"backup" yaml:"backup"`
	Rules   risk.Policy   `json:"rules" yaml:"rules"`
}

// StoreConfig selects the blob backend holding accounts and trades
type StoreConfig struct {
	Driver string `json:"driver" yaml:"driver"` // "sqlite", "postgres" or "memory"
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	Codec  string `json:"codec,omitempty" yaml:"codec,omitempty"` // "json" or "msgpack"
}

// Options converts the section to journal.Open options.
func (s StoreConfig) Options() journal.Options {
	return journal.Options{Driver: s.Driver, Path: s.Path, URL: s.URL, Codec: s.Codec}
}

// AdvisorConfig contains the hosted model settings
type AdvisorConfig struct {
	APIKey         string         `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Endpoint       string         `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Models         advisor.Models `json:"models" yaml:"models"`
	ThinkingBudget int            `json:"thinking_budget" yaml:"thinking_budget"`
}

type ServerConfig struct {
	Port    int  `json:"port" yaml:"port"`
	DevMode bool `json:"dev_mode" yaml:"dev_mode"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// BackupConfig contains snapshot upload parameters. Endpoint is set for
// S3-compatible services other than AWS.
type BackupConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"` // cron spec, empty for manual only

	AccessKeyID     string `json:"access_key_id,omitempty" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty" yaml:"secret_access_key,omitempty"`
}

// Load reads path when it is not empty, starts from Default otherwise, then
// applies the environment (including a .env file when present).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		var err error
		cfg, err = readFile(path)
		if err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto c. Unset variables leave the
// file values alone.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvGeminiKey); v != "" {
		c.Advisor.APIKey = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Store.URL = v
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvBackupKey); v != "" {
		c.Backup.AccessKeyID = v
	}
	if v := os.Getenv(EnvBackupSecret); v != "" {
		c.Backup.SecretAccessKey = v
	}
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON).
// Sections missing from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case journal.DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path required for sqlite driver")
		}
	case journal.DriverPostgres:
		if c.Store.URL == "" {
			return fmt.Errorf("store.url required for postgres driver")
		}
	case journal.DriverMemory:
	default:
		return fmt.Errorf("store.driver must be 'sqlite', 'postgres' or 'memory'")
	}
	if _, err := journal.CodecFor(c.Store.Codec); err != nil {
		return fmt.Errorf("store.codec: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Advisor.ThinkingBudget < 0 {
		return fmt.Errorf("advisor.thinking_budget must not be negative")
	}
	if c.Backup.Enabled && c.Backup.Bucket == "" {
		return fmt.Errorf("backup.bucket required when backup is enabled")
	}
	if r := c.Rules; r.MaxRiskPct < 0 || r.MaxDailyLossPct < 0 || r.MaxWeeklyLossPct < 0 || r.MinRR < 0 || r.MaxTradesPerDay < 0 {
		return fmt.Errorf("rules must not be negative")
	}
	if c.Backup.Schedule != "" {
		if err := scheduler.Validate(c.Backup.Schedule); err != nil {
			return fmt.Errorf("backup.schedule: %w", err)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: journal.DriverSQLite,
			Path:   "./tradejournal.db",
			Codec:  "json",
		},
		Advisor: AdvisorConfig{
			Models:         advisor.DefaultModels(),
			ThinkingBudget: 4000,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
		},
		Backup: BackupConfig{
			Prefix: "tradejournal",
			Region: "us-east-1",
		},
	}
}
