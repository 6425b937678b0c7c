// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultOpsPort is the default operational HTTP endpoint port.
	DefaultOpsPort = 8080

	// DefaultDatabaseMaxConns is the default connection pool ceiling.
	DefaultDatabaseMaxConns = 10

	// DefaultMaxSearchResults caps the rows shown by the search command.
	DefaultMaxSearchResults = 10

	// DefaultMaxDeleteResults caps the rows offered by the delete and edit
	// workflows; beyond this the search is reported as too general.
	DefaultMaxDeleteResults = 5

	// DefaultLeaderboardSize is the default number of leaderboard rows.
	DefaultLeaderboardSize = 10

	// DefaultWordcloudSize is the canvas edge length in pixels.
	DefaultWordcloudSize = 512

	// DefaultWordcloudMaxWords caps how many words are laid out.
	DefaultWordcloudMaxWords = 100

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Discord   DiscordConfig   `koanf:"discord"   validate:"required"`
	Database  DatabaseConfig  `koanf:"database"  validate:"required"`
	Ops       OpsConfig       `koanf:"ops"       validate:"required"`
	Limits    LimitsConfig    `koanf:"limits"    validate:"required"`
	Workflow  WorkflowConfig  `koanf:"workflow"  validate:"required"`
	Wordcloud WordcloudConfig `koanf:"wordcloud"`
	Recap     RecapConfig     `koanf:"recap"     validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// DiscordConfig contains gateway connection settings. The token is a secret
// and is redacted from logs.
type DiscordConfig struct {
	Token    string `koanf:"token"    validate:"required"`
	AppID    string `koanf:"app_id"   validate:"required"`
	GuildID  string `koanf:"guild_id"`
	Presence string `koanf:"presence"`
}

// DatabaseConfig contains Postgres pool settings. The URL carries the
// password and is redacted from logs.
type DatabaseConfig struct {
	URL            string        `koanf:"url"             validate:"required"`
	MaxConns       int32         `koanf:"max_conns"       validate:"required,min=1,max=100"`
	MinConns       int32         `koanf:"min_conns"       validate:"min=0,max=100"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"required,min=1s"`
}

// OpsConfig contains the operational HTTP endpoint settings (liveness,
// readiness, build info, metrics).
type OpsConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"             validate:"required"`
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
}

// LimitsConfig bounds user submissions and result listings.
type LimitsConfig struct {
	MaxQuotationLength int `koanf:"max_quotation_length" validate:"required,min=1,max=4000"`
	MaxAuthorLength    int `koanf:"max_author_length"    validate:"required,min=1,max=1000"`
	MaxSearchResults   int `koanf:"max_search_results"   validate:"required,min=1,max=25"`
	MaxDeleteResults   int `koanf:"max_delete_results"   validate:"required,min=1,max=25"`
	LeaderboardSize    int `koanf:"leaderboard_size"     validate:"required,min=1,max=25"`
}

// WorkflowConfig sets the interactive wait windows. Selection and form
// submission are independent waits with independent timeouts.
type WorkflowConfig struct {
	DeleteSelectTimeout time.Duration `koanf:"delete_select_timeout" validate:"required,min=1s"`
	EditSelectTimeout   time.Duration `koanf:"edit_select_timeout"   validate:"required,min=1s"`
	EditSubmitTimeout   time.Duration `koanf:"edit_submit_timeout"   validate:"required,min=1s"`
}

// WordcloudConfig contains word-cloud rendering settings. The feature is
// optional; when disabled (or no fonts are found) the command reports the
// feature as unavailable.
type WordcloudConfig struct {
	Enabled      bool    `koanf:"enabled"`
	FontDir      string  `koanf:"font_dir"      validate:"required_if=Enabled true"`
	Size         int     `koanf:"size"          validate:"omitempty,min=64,max=4096"`
	MaxWords     int     `koanf:"max_words"     validate:"omitempty,min=1,max=1000"`
	MinFontSize  int     `koanf:"min_font_size" validate:"omitempty,min=1"`
	MaxFontSize  int     `koanf:"max_font_size" validate:"omitempty,min=1"`
	SizeExponent float64 `koanf:"size_exponent" validate:"omitempty,min=0.1,max=10"`
}

// RecapConfig bounds the channel recap command.
type RecapConfig struct {
	DefaultMessages int `koanf:"default_messages" validate:"required,min=25,max=300"`
	MinMessages     int `koanf:"min_messages"     validate:"required,min=1"`
	MaxMessages     int `koanf:"max_messages"     validate:"required,min=1,max=300"`
	DefaultHours    int `koanf:"default_hours"    validate:"required,min=1,max=168"`
	MaxHours        int `koanf:"max_hours"        validate:"required,min=1,max=168"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quotebot",
		"app.version":     "dev",
		"app.environment": "local",

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/quotebot.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"discord.token":    "",
		"discord.app_id":   "",
		"discord.guild_id": "",
		"discord.presence": "cursed quotes",

		"database.url":             "",
		"database.max_conns":       DefaultDatabaseMaxConns,
		"database.min_conns":       0,
		"database.connect_timeout": "5s",

		"ops.enabled":          true,
		"ops.host":             "0.0.0.0",
		"ops.port":             DefaultOpsPort,
		"ops.read_timeout":     "10s",
		"ops.write_timeout":    "10s",
		"ops.shutdown_timeout": "10s",

		"limits.max_quotation_length": 1500,
		"limits.max_author_length":    200,
		"limits.max_search_results":   DefaultMaxSearchResults,
		"limits.max_delete_results":   DefaultMaxDeleteResults,
		"limits.leaderboard_size":     DefaultLeaderboardSize,

		"workflow.delete_select_timeout": "60s",
		"workflow.edit_select_timeout":   "15m",
		"workflow.edit_submit_timeout":   "2m",

		"wordcloud.enabled":       false,
		"wordcloud.font_dir":      "./fonts",
		"wordcloud.size":          DefaultWordcloudSize,
		"wordcloud.max_words":     DefaultWordcloudMaxWords,
		"wordcloud.min_font_size": 25,
		"wordcloud.max_font_size": 100,
		"wordcloud.size_exponent": 3.0,

		"recap.default_messages": 150,
		"recap.min_messages":     25,
		"recap.max_messages":     300,
		"recap.default_hours":    24,
		"recap.max_hours":        168,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	err = k.Load(env.Provider("APP_", ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_SECTION__MULTI_WORD_KEY to section.multi_word_key and
// APP_SECTION_KEY to section.key. Double underscores separate nesting levels
// so that keys containing underscores stay addressable.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "APP_"))
	if strings.Contains(s, "__") {
		return strings.ReplaceAll(s, "__", ".")
	}

	return strings.ReplaceAll(s, "_", ".")
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
