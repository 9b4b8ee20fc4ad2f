// Package prefs persists the editor's user preferences between sessions.
package prefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// EnvDir overrides the preferences directory.
const EnvDir = "PAGEWRIGHT_CONFIG_DIR"

const fileName = "prefs.json"

// Preferences are the persisted user choices.
type Preferences struct {
	DarkMode   bool `json:"darkMode"`
	Animations bool `json:"animations"`
}

// Defaults is light mode with animations on.
func Defaults() Preferences {
	return Preferences{DarkMode: false, Animations: true}
}

// Store reads and writes preferences in a single JSON file. A Store without a
// usable directory behaves as if nothing was ever saved.
type Store struct {
	path     string
	log      *zap.Logger
	defaults *Preferences
}

// WithDefaults sets what Load returns while nothing has been saved yet.
func (s *Store) WithDefaults(p Preferences) *Store {
	s.defaults = &p
	return s
}

func (s *Store) fallback() Preferences {
	if s.defaults != nil {
		return *s.defaults
	}
	return Defaults()
}

// Open locates the preferences file. It never fails: when no directory can
// be determined the store is unavailable.
func Open(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("prefs")
	dir := os.Getenv(EnvDir)
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			log.Debug("Preferences unavailable", zap.Error(err))
			return &Store{log: log}
		}
		dir = filepath.Join(base, "pagewright")
	}
	return &Store{path: filepath.Join(dir, fileName), log: log}
}

// NewStore returns a store backed by path. An empty path is unavailable.
func NewStore(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, log: log.Named("prefs")}
}

// Path returns the backing file, empty when unavailable.
func (s *Store) Path() string { return s.path }

// Available reports whether preferences can be persisted.
func (s *Store) Available() bool { return s.path != "" }

// Load returns the stored preferences, or defaults when there are none or
// the file cannot be read.
func (s *Store) Load() Preferences {
	p := s.fallback()
	if !s.Available() {
		return p
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("Unable to read preferences", zap.String("path", s.path), zap.Error(err))
		}
		return p
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return p
	}
	if err := json.Unmarshal(data, &p); err != nil {
		s.log.Warn("Ignoring corrupt preferences", zap.String("path", s.path), zap.Error(err))
		return s.fallback()
	}
	return p
}

// Save writes p. Failures are logged, never returned: losing a preference
// must not interrupt editing.
func (s *Store) Save(p Preferences) {
	if !s.Available() {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Warn("Unable to create preferences directory", zap.Error(err))
		return
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		s.log.Warn("Unable to encode preferences", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.Warn("Unable to save preferences", zap.String("path", s.path), zap.Error(err))
	}
}
