package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MimeLyc/term-catalog-merger/internal/termmap"
	"github.com/MimeLyc/term-catalog-merger/pkg/log"
	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// UI Configuration:
// - TERMMERGE_LANGUAGE: message language, en or fr (default: en)
// - TERMMERGE_LANGUAGE_FILE: dictionary catalog, created when missing (default: built-in)
//
// Merge Configuration:
// - TERMMERGE_LOCALE: locale for file name comparison (default: LC_ALL, LC_COLLATE, LANG, else en)
// - TERMMERGE_DIRECTORY: directory scanned by the scheduled merge
// - TERMMERGE_FILE_NAME: catalog file name merged by the scheduled merge
// - TERMMERGE_OUTPUT: output of the scheduled merge (default: <directory>/<name>.merged.xml)
// - TERMMERGE_CRON_EXPR: schedule (default: 0 * * * *)
//
// System Configuration:
// - TERMMERGE_LOG_LEVEL: debug, info, warn or error (default: info)
// - TERMMERGE_LOG_FILE: also append logs to this file (optional)
// - TERMMERGE_SETTINGS_FILE: runtime settings (default: <user config dir>/termmerge/settings.json)
//
// Lint Configuration:
// - TERMMERGE_LINT_MIN_LENGTH: shortest value whose language is checked (default: 24)
type Config struct {
	UI       UIConfig       `json:"ui"`
	Merge    MergeConfig    `json:"merge"`
	Schedule ScheduleConfig `json:"schedule"`
	Lint     LintConfig     `json:"lint"`
	System   SystemConfig   `json:"system"`
}

type UIConfig struct {
	Language     language.Tag `json:"language"`
	LanguageFile string       `json:"language_file"`
}

type MergeConfig struct {
	Locale    language.Tag `json:"locale"`
	Directory string       `json:"directory"`
	FileName  string       `json:"file_name"`
	Output    string       `json:"output"`
}

type ScheduleConfig struct {
	CronExpr string `json:"cron_expr"`
}

type LintConfig struct {
	MinLength int `json:"min_length"`
}

type SystemConfig struct {
	LogLevel     string `json:"log_level"`
	LogFile      string `json:"log_file"`
	SettingsFile string `json:"settings_file"`
}

// Option is a function type for configuring Config
type Option func(*Config)

func WithLanguage(tag language.Tag) Option {
	return func(c *Config) {
		c.UI.Language = tag
	}
}

func WithLocale(tag language.Tag) Option {
	return func(c *Config) {
		c.Merge.Locale = tag
	}
}

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	lang, err := termmap.ParseLanguage(getEnvString("TERMMERGE_LANGUAGE", "en"))
	if err != nil {
		return nil, fmt.Errorf("invalid TERMMERGE_LANGUAGE: %w", err)
	}

	config := &Config{
		UI: UIConfig{
			Language:     lang,
			LanguageFile: getEnvString("TERMMERGE_LANGUAGE_FILE", ""),
		},
		Merge: MergeConfig{
			Locale:    ParseLocale(getEnvString("TERMMERGE_LOCALE", systemLocale())),
			Directory: getEnvString("TERMMERGE_DIRECTORY", ""),
			FileName:  getEnvString("TERMMERGE_FILE_NAME", ""),
			Output:    getEnvString("TERMMERGE_OUTPUT", ""),
		},
		Schedule: ScheduleConfig{
			CronExpr: getEnvString("TERMMERGE_CRON_EXPR", "0 * * * *"),
		},
		Lint: LintConfig{
			MinLength: getEnvInt("TERMMERGE_LINT_MIN_LENGTH", 24),
		},
		System: SystemConfig{
			LogLevel:     getEnvString("TERMMERGE_LOG_LEVEL", "info"),
			LogFile:      getEnvString("TERMMERGE_LOG_FILE", ""),
			SettingsFile: RuntimeSettingsFilePath(),
		},
	}

	log.Debug("Config: %+v", config)

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.UI.Language != termmap.English && c.UI.Language != termmap.French {
		return fmt.Errorf("unsupported language: %s", c.UI.Language)
	}
	if _, err := cron.ParseStandard(c.Schedule.CronExpr); err != nil {
		return fmt.Errorf("invalid TERMMERGE_CRON_EXPR: %w", err)
	}
	if c.Lint.MinLength < 0 {
		return fmt.Errorf("TERMMERGE_LINT_MIN_LENGTH cannot be negative")
	}
	return nil
}

// ParseLocale accepts BCP 47 tags and POSIX locale names such as
// "fr_FR.UTF-8". "C", "POSIX" and unparsable values yield English.
func ParseLocale(s string) language.Tag {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "" || s == "C" || s == "POSIX" {
		return language.English
	}

	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.English
	}
	return tag
}

func systemLocale() string {
	for _, key := range []string{"LC_ALL", "LC_COLLATE", "LANG"} {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return "en"
}

func defaultSettingsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".termmerge", "settings.json")
	}
	return filepath.Join(dir, "termmerge", "settings.json")
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
