// Package config loads settings for both commands from defaults, an optional
// schedule.yaml, a .env file and UNIVE_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/unive-tools/schedule-sync/internal/crypto"
)

// EnvPrefix namespaces environment overrides, e.g. UNIVE_NOTION_API_KEY.
const EnvPrefix = "UNIVE"

// Config is the merged configuration
type Config struct {
	Notion    NotionConfig   `mapstructure:"notion"`
	Classes   ClassesConfig  `mapstructure:"classes"`
	Sessions  SessionsConfig `mapstructure:"sessions"`
	Source    SourceConfig   `mapstructure:"source"`
	Log       LogConfig      `mapstructure:"log"`
	Cache     CacheConfig    `mapstructure:"cache"`
	SecretKey string         `mapstructure:"secret_key"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// NotionConfig holds the credential and target databases of the importer.
type NotionConfig struct {
	APIKey             string        `mapstructure:"api_key"`
	APIKeyEncrypted    string        `mapstructure:"api_key_encrypted"`
	ClassesDatabaseID  string        `mapstructure:"classes_database_id"`
	SessionsDatabaseID string        `mapstructure:"sessions_database_id"`
	BaseURL            string        `mapstructure:"base_url"`
	Version            string        `mapstructure:"version"`
	Timeout            time.Duration `mapstructure:"timeout"`
	TimeOffset         string        `mapstructure:"time_offset"`
}

// ClassesConfig names the properties of the classes database
type ClassesConfig struct {
	TitleProperty    string `mapstructure:"title_property"`
	FullNameProperty string `mapstructure:"full_name_property"`
}

// SessionsConfig names the properties of the sessions database
type SessionsConfig struct {
	TitleProperty     string `mapstructure:"title_property"`
	DateProperty      string `mapstructure:"date_property"`
	ClassProperty     string `mapstructure:"class_property"`
	ClassroomProperty string `mapstructure:"classroom_property"`
}

// SourceConfig configures the schedule page fetch
type SourceConfig struct {
	URL       string        `mapstructure:"url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CacheConfig sizes the class lookup cache; 0 disables it.
type CacheConfig struct {
	Size int `mapstructure:"size"`
}

// legacyEnv maps keys to the variable names used by earlier releases.
var legacyEnv = map[string]string{
	"notion.api_key":              "NOTION_API_KEY",
	"notion.classes_database_id":  "NOTION_CLASSES_DATABASE_ID",
	"notion.sessions_database_id": "NOTION_SESSIONS_DATABASE_ID",
}

var offsetPattern = regexp.MustCompile(`^(Z|[+-]\d{2}:\d{2})$`)

// ErrMissingCredential is returned by ValidateImport when no API key is configured.
var ErrMissingCredential = errors.New("notion.api_key is required (set NOTION_API_KEY or UNIVE_NOTION_API_KEY)")

func setDefaults(v *viper.Viper) {
	v.SetDefault("notion.api_key", "")
	v.SetDefault("notion.api_key_encrypted", "")
	v.SetDefault("notion.classes_database_id", "")
	v.SetDefault("notion.sessions_database_id", "")
	v.SetDefault("notion.base_url", "https://api.notion.com")
	v.SetDefault("notion.version", "2022-06-28")
	v.SetDefault("notion.timeout", "30s")
	v.SetDefault("notion.time_offset", "Z")

	v.SetDefault("classes.title_property", "Name")
	v.SetDefault("classes.full_name_property", "Full Name")

	v.SetDefault("sessions.title_property", "Name")
	v.SetDefault("sessions.date_property", "Date")
	v.SetDefault("sessions.class_property", "Class")
	v.SetDefault("sessions.classroom_property", "Classroom")

	v.SetDefault("source.url", "https://www.unive.it/data/it/1592/orario-lezioni")
	v.SetDefault("source.user_agent", "unive-schedule/1.0 (github.com/unive-tools/schedule-sync)")
	v.SetDefault("source.timeout", "30s")

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	v.SetDefault("cache.size", 256)
	v.SetDefault("secret_key", "")
}

// Load reads the configuration. Precedence: environment > config file > defaults.
// With an empty path, schedule.yaml is looked up in the working directory and in
// ~/.config/unive-schedule; a missing file is not an error.
func Load(path string) (*Config, error) {
	// .env only fills variables that are not already set
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("schedule")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "unive-schedule"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings shared by both commands
func (c *Config) Validate() error {
	if !offsetPattern.MatchString(c.Notion.TimeOffset) {
		return fmt.Errorf("invalid notion.time_offset %q: use Z or ±HH:MM", c.Notion.TimeOffset)
	}
	if c.Notion.Timeout <= 0 {
		return fmt.Errorf("notion.timeout must be positive")
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source.timeout must be positive")
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative")
	}
	return nil
}

// ValidateImport checks what the importer needs beyond Validate.
func (c *Config) ValidateImport() error {
	if c.Notion.APIKey == "" && c.Notion.APIKeyEncrypted == "" {
		return ErrMissingCredential
	}
	if c.Notion.ClassesDatabaseID == "" {
		return fmt.Errorf("notion.classes_database_id is required")
	}
	if c.Notion.SessionsDatabaseID == "" {
		return fmt.Errorf("notion.sessions_database_id is required")
	}
	return nil
}

// APIKey returns the Notion credential, opening a sealed value with secret_key.
func (c *Config) APIKey() (string, error) {
	key := c.Notion.APIKey
	if key == "" {
		key = c.Notion.APIKeyEncrypted
	}

	plain, err := crypto.NewEncryptor(c.SecretKey).Decrypt(key)
	if err != nil {
		return "", fmt.Errorf("decrypting notion api key: %w", err)
	}
	return plain, nil
}
