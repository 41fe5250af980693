package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tomthias/cleanAlbere9/internal/model"
)

// Config holds everything the server and client commands need.
// Values resolve in the usual viper order: flags are bound by the CLI,
// then FLATMATE_* environment variables, then an optional config file,
// then the defaults below.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	DBPath     string `mapstructure:"db_path"`

	ServerURL string `mapstructure:"server_url"`
	CachePath string `mapstructure:"cache_path"`

	CurrentUser string `mapstructure:"current_user"`
	Language    string `mapstructure:"language"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	Backup BackupConfig `mapstructure:"backup"`
}

// BackupConfig enables encrypted off-site snapshots of the database.
// Backups stay off until the bucket, credentials and passphrase are
// all set.
type BackupConfig struct {
	S3Endpoint    string `mapstructure:"s3_endpoint"`
	S3Bucket      string `mapstructure:"s3_bucket"`
	S3Region      string `mapstructure:"s3_region"`
	S3AccessKey   string `mapstructure:"s3_access_key"`
	S3SecretKey   string `mapstructure:"s3_secret_key"`
	Passphrase    string `mapstructure:"passphrase"`
	IntervalHours int    `mapstructure:"interval_hours"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Load reads the configuration. A config file is optional; a missing
// one is not an error.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8484")
	v.SetDefault("db_path", "flatmate.db")
	v.SetDefault("server_url", "http://localhost:8484")
	v.SetDefault("cache_path", defaultCachePath())
	v.SetDefault("current_user", "")
	v.SetDefault("language", string(model.LangItalian))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("backup.interval_hours", 24)
	v.SetDefault("backup.retention_days", 30)

	v.SetEnvPrefix("FLATMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("flatmate")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "flatmate"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// User returns the configured current user, or an error when none is
// set. Mutating commands refuse to run without an identity.
func (c *Config) User() (model.Person, error) {
	if c.CurrentUser == "" {
		return "", fmt.Errorf("no current user configured (set FLATMATE_CURRENT_USER or current_user in the config file)")
	}
	return model.ParsePerson(c.CurrentUser)
}

// Lang returns the configured display language, defaulting to Italian.
func (c *Config) Lang() model.Language {
	lang := model.Language(c.Language)
	if !lang.Valid() {
		return model.LangItalian
	}
	return lang
}

// WebSocketURL derives the change-channel URL from the server URL.
func (c *Config) WebSocketURL() string {
	url := c.ServerURL
	url = strings.Replace(url, "https://", "wss://", 1)
	url = strings.Replace(url, "http://", "ws://", 1)
	return strings.TrimRight(url, "/") + "/ws"
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "flatmate-cache.json"
	}
	return filepath.Join(home, ".local", "share", "flatmate", "cache.json")
}
