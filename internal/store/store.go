// Package store persists documents as JSON snapshots with a bounded version
// history.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/csheth/pagewright/internal/document"
)

// ErrNoRevision is returned when a version is neither current nor kept in the
// history.
var ErrNoRevision = errors.New("revision not found")

// Revision is an earlier version of the document kept in the history.
type Revision struct {
	Version int                `json:"version"`
	SavedAt time.Time          `json:"savedAt"`
	Pages   []document.Content `json:"pages"`
}

// Snapshot is the on-disk document record.
type Snapshot struct {
	ID      string             `json:"id"`
	Title   string             `json:"title"`
	Version int                `json:"version"`
	SavedAt time.Time          `json:"savedAt"`
	Pages   []document.Content `json:"pages"`
	History []Revision         `json:"history,omitempty"`
}

// Save writes pages to path. An existing snapshot keeps its id, gets its
// version bumped and has its previous pages pushed onto the history, which is
// capped at limit revisions (newest first). limit <= 0 keeps no history.
func Save(path, title string, pages []document.Content, limit int) (Snapshot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Snapshot{}, err
	}
	prev, err := Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, err
	}

	snap := Snapshot{
		ID:      prev.ID,
		Title:   title,
		Version: prev.Version + 1,
		SavedAt: time.Now().UTC(),
		Pages:   pages,
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.Pages == nil {
		snap.Pages = []document.Content{}
	}
	if prev.Version > 0 && limit > 0 {
		snap.History = append([]Revision{{Version: prev.Version, SavedAt: prev.SavedAt, Pages: prev.Pages}}, prev.History...)
		if len(snap.History) > limit {
			snap.History = snap.History[:limit]
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Snapshot{}, err
	}
	if err := writeAtomic(path, data); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Revisions lists every version that can be restored, newest first, starting
// with the current one.
func (s Snapshot) Revisions() []Revision {
	if s.Version == 0 {
		return nil
	}
	out := make([]Revision, 0, len(s.History)+1)
	out = append(out, Revision{Version: s.Version, SavedAt: s.SavedAt, Pages: s.Pages})
	return append(out, s.History...)
}

// Revision returns the given version of the document.
func (s Snapshot) Revision(version int) (Revision, error) {
	for _, rev := range s.Revisions() {
		if rev.Version == version {
			return rev, nil
		}
	}
	return Revision{}, fmt.Errorf("version %d of %q: %w", version, s.Title, ErrNoRevision)
}

// Restore makes an earlier version current again. The restored pages are
// saved as a new version, so the version being replaced stays in the history.
func Restore(path string, version, limit int) (Snapshot, error) {
	snap, err := Load(path)
	if err != nil {
		return Snapshot{}, err
	}
	rev, err := snap.Revision(version)
	if err != nil {
		return Snapshot{}, err
	}
	return Save(path, snap.Title, rev.Pages, limit)
}

// Load reads the snapshot at path. A missing file yields an error matching
// os.ErrNotExist.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	return Decode(data)
}

// Decode parses snapshot bytes. Empty input decodes to an empty snapshot.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if len(bytes.TrimSpace(data)) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
