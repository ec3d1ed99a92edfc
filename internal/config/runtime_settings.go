package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MimeLyc/term-catalog-merger/internal/termmap"
)

// RuntimeSettings are remembered between sessions.
type RuntimeSettings struct {
	LastDirectory string `json:"last_directory"`
	LastFileName  string `json:"last_file_name"`
	Language      string `json:"language"`
}

func RuntimeSettingsFilePath() string {
	return getEnvString("TERMMERGE_SETTINGS_FILE", defaultSettingsFile())
}

func (s RuntimeSettings) Validate() error {
	if strings.TrimSpace(s.Language) == "" {
		return nil
	}
	if _, err := termmap.ParseLanguage(s.Language); err != nil {
		return fmt.Errorf("invalid language: %w", err)
	}
	return nil
}

func (c *Config) RuntimeSettings() RuntimeSettings {
	base, _ := c.UI.Language.Base()
	return RuntimeSettings{
		LastDirectory: c.Merge.Directory,
		LastFileName:  c.Merge.FileName,
		Language:      base.String(),
	}
}

// WithRuntimeSettings fills the merge directory and file name when the
// environment leaves them empty. A remembered language replaces the
// configured one.
func WithRuntimeSettings(settings RuntimeSettings) Option {
	return func(c *Config) {
		if c.Merge.Directory == "" {
			c.Merge.Directory = settings.LastDirectory
		}
		if c.Merge.FileName == "" {
			c.Merge.FileName = settings.LastFileName
		}
		if tag, err := termmap.ParseLanguage(settings.Language); err == nil {
			c.UI.Language = tag
		}
	}
}

func LoadRuntimeSettingsFile(path string) (RuntimeSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeSettings{}, err
	}
	var settings RuntimeSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return RuntimeSettings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}

func WriteRuntimeSettingsFile(path string, settings RuntimeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	content, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	content = append(content, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

type RuntimeSettingsStore struct {
	path string

	mu      sync.RWMutex
	current RuntimeSettings
}

func NewRuntimeSettingsStore(path string, initial RuntimeSettings) (*RuntimeSettingsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings file path is required")
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &RuntimeSettingsStore{
		path:    path,
		current: initial,
	}, nil
}

// OpenRuntimeSettingsStore loads the settings at path. A missing file
// starts from empty settings.
func OpenRuntimeSettingsStore(path string) (*RuntimeSettingsStore, error) {
	settings, err := LoadRuntimeSettingsFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return NewRuntimeSettingsStore(path, settings)
}

func (s *RuntimeSettingsStore) Path() string {
	return s.path
}

func (s *RuntimeSettingsStore) GetRuntimeSettings() (RuntimeSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *RuntimeSettingsStore) UpdateRuntimeSettings(next RuntimeSettings) (RuntimeSettings, error) {
	if err := next.Validate(); err != nil {
		return RuntimeSettings{}, err
	}
	if err := WriteRuntimeSettingsFile(s.path, next); err != nil {
		return RuntimeSettings{}, err
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next, nil
}
