// Package config loads application configuration from config.yaml and the
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Sync      SyncConfig      `yaml:"sync" mapstructure:"sync"`
	Screening ScreeningConfig `yaml:"screening" mapstructure:"screening"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DatabaseConfig holds the Postgres connection settings used when the store
// driver is "postgres".
type DatabaseConfig struct {
	URL      string `yaml:"url" mapstructure:"url"`
	MaxConns int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver     string `yaml:"driver" mapstructure:"driver"` // postgres | sqlite
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ServerConfig configures the screening HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// AnthropicConfig holds Anthropic API settings for entity extraction.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SyncConfig configures the list download and ingest run.
type SyncConfig struct {
	TempDir     string `yaml:"temp_dir" mapstructure:"temp_dir"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	SourceURL   string `yaml:"source_url" mapstructure:"source_url"` // override for mirrors and tests
}

// ScreeningConfig holds default screening parameters. Per-request values
// still clamp to threshold [0,10] and limit [1,100].
type ScreeningConfig struct {
	DefaultThreshold int `yaml:"default_threshold" mapstructure:"default_threshold"`
	DefaultLimit     int `yaml:"default_limit" mapstructure:"default_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SANCTIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "sanctions.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("sync.temp_dir", "/tmp/sanctions")
	v.SetDefault("sync.timeout_secs", 300)
	v.SetDefault("screening.default_threshold", 4)
	v.SetDefault("screening.default_limit", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration has everything the given mode
// needs. Modes: "sync" (list ingest), "serve" (HTTP API), "screen"
// (name/document screening). Errors name every missing key at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	requireStore := func() {
		switch c.Store.Driver {
		case "postgres":
			if c.Database.URL == "" {
				problems = append(problems, "database.url is required when store.driver is postgres")
			}
		case "sqlite":
			if c.Store.SQLitePath == "" {
				problems = append(problems, "store.sqlite_path is required when store.driver is sqlite")
			}
		default:
			problems = append(problems, "store.driver must be postgres or sqlite")
		}
	}

	switch mode {
	case "sync":
		requireStore()
		if c.Sync.TempDir == "" {
			problems = append(problems, "sync.temp_dir is required")
		}
	case "serve":
		requireStore()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Screening.DefaultThreshold < 0 || c.Screening.DefaultThreshold > 10 {
			problems = append(problems, "screening.default_threshold must be between 0 and 10")
		}
		if c.Screening.DefaultLimit < 1 || c.Screening.DefaultLimit > 100 {
			problems = append(problems, "screening.default_limit must be between 1 and 100")
		}
	case "screen":
		requireStore()
		if c.Screening.DefaultThreshold < 0 || c.Screening.DefaultThreshold > 10 {
			problems = append(problems, "screening.default_threshold must be between 0 and 10")
		}
		if c.Screening.DefaultLimit < 1 || c.Screening.DefaultLimit > 100 {
			problems = append(problems, "screening.default_limit must be between 1 and 100")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
