// Package config loads reeltrend settings from defaults, an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Backends understood by backend.Open.
const (
	BackendAppwrite = "appwrite"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

const (
	envPrefix      = "REELTREND"
	configDirName  = ".reeltrend"
	configFileName = "config.yaml"
	redacted       = "********"
)

var (
	ErrMissingConfig  = errors.New("missing required configuration")
	ErrInvalidBackend = errors.New("unknown backend")
)

// Config is the effective configuration.
type Config struct {
	Backend   string          `mapstructure:"backend" yaml:"backend"`
	Appwrite  AppwriteConfig  `mapstructure:"appwrite" yaml:"appwrite"`
	SQLite    SQLiteConfig    `mapstructure:"sqlite" yaml:"sqlite"`
	TMDB      TMDBConfig      `mapstructure:"tmdb" yaml:"tmdb"`
	Analytics AnalyticsConfig `mapstructure:"analytics" yaml:"analytics"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

type AppwriteConfig struct {
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint"`
	ProjectID  string        `mapstructure:"project_id" yaml:"project_id"`
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	DatabaseID string        `mapstructure:"database_id" yaml:"database_id"`
	TableID    string        `mapstructure:"table_id" yaml:"table_id"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type TMDBConfig struct {
	APIKey   string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	Language string        `mapstructure:"language" yaml:"language"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type AnalyticsConfig struct {
	TrendingLimit int `mapstructure:"trending_limit" yaml:"trending_limit"`
	LookupLimit   int `mapstructure:"lookup_limit" yaml:"lookup_limit"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// envAliases lists the variable names the mobile front-end already uses.
var envAliases = map[string]string{
	"appwrite.endpoint":    "EXPO_PUBLIC_APPWRITE_ENDPOINT",
	"appwrite.project_id":  "EXPO_PUBLIC_APPWRITE_PROJECT_ID",
	"appwrite.database_id": "EXPO_PUBLIC_APPWRITE_DATABASE_ID",
	"appwrite.table_id":    "EXPO_PUBLIC_APPWRITE_TABLE_ID",
	"tmdb.api_key":         "EXPO_PUBLIC_MOVIE_API_KEY",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendAppwrite,
		Appwrite: AppwriteConfig{
			Endpoint: "https://cloud.appwrite.io/v1",
			Timeout:  30 * time.Second,
		},
		SQLite: SQLiteConfig{
			Path: DefaultSQLitePath(),
		},
		TMDB: TMDBConfig{
			BaseURL:  "https://api.themoviedb.org/3",
			Language: "en-US",
			CacheTTL: 10 * time.Minute,
			Timeout:  15 * time.Second,
		},
		Analytics: AnalyticsConfig{
			TrendingLimit: 5,
			LookupLimit:   5,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// DefaultSQLitePath returns ~/.reeltrend/analytics.db, or a relative path
// when the home directory is unknown.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(configDirName, "analytics.db")
	}

	return filepath.Join(home, configDirName, "analytics.db")
}

// Load builds the configuration. An explicit path must exist; without one
// ~/.reeltrend/config.yaml is read when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(configFileName, filepath.Ext(configFileName)))
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, configDirName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.File = v.ConfigFileUsed()
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("backend", d.Backend)
	v.SetDefault("appwrite.endpoint", d.Appwrite.Endpoint)
	v.SetDefault("appwrite.project_id", "")
	v.SetDefault("appwrite.api_key", "")
	v.SetDefault("appwrite.database_id", "")
	v.SetDefault("appwrite.table_id", "")
	v.SetDefault("appwrite.timeout", d.Appwrite.Timeout)
	v.SetDefault("sqlite.path", d.SQLite.Path)
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", d.TMDB.BaseURL)
	v.SetDefault("tmdb.language", d.TMDB.Language)
	v.SetDefault("tmdb.cache_ttl", d.TMDB.CacheTTL)
	v.SetDefault("tmdb.timeout", d.TMDB.Timeout)
	v.SetDefault("analytics.trending_limit", d.Analytics.TrendingLimit)
	v.SetDefault("analytics.lookup_limit", d.Analytics.LookupLimit)
	v.SetDefault("server.addr", d.Server.Addr)
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, alias := range envAliases {
		primary := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, primary, alias); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	return nil
}

// Validate reports every missing or invalid setting needed by the selected backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAppwrite:
		var missing []string
		if c.Appwrite.Endpoint == "" {
			missing = append(missing, "appwrite.endpoint")
		}
		if c.Appwrite.ProjectID == "" {
			missing = append(missing, "appwrite.project_id")
		}
		if c.Appwrite.DatabaseID == "" {
			missing = append(missing, "appwrite.database_id")
		}
		if c.Appwrite.TableID == "" {
			missing = append(missing, "appwrite.table_id")
		}

		if len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("%w: sqlite.path", ErrMissingConfig)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w %q (expected %s, %s or %s)", ErrInvalidBackend, c.Backend, BackendAppwrite, BackendSQLite, BackendMemory)
	}

	return nil
}

// DatabaseID returns the database identifier, falling back to a fixed name
// for local backends.
func (c *Config) DatabaseID() string {
	if c.Appwrite.DatabaseID != "" {
		return c.Appwrite.DatabaseID
	}

	return "reeltrend"
}

// TableID returns the analytics table identifier, falling back to a fixed
// name for local backends.
func (c *Config) TableID() string {
	if c.Appwrite.TableID != "" {
		return c.Appwrite.TableID
	}

	return "metrics"
}

// Redacted returns a copy with secrets masked.
func (c *Config) Redacted() *Config {
	clone := *c
	if clone.Appwrite.APIKey != "" {
		clone.Appwrite.APIKey = redacted
	}
	if clone.TMDB.APIKey != "" {
		clone.TMDB.APIKey = redacted
	}

	return &clone
}

// YAML renders the configuration with secrets masked.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	return data, nil
}
