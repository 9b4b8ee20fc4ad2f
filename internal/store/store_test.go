package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/pagewright/internal/document"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "report.json")
	pages := []document.Content{
		{document.Styled("Title\n", document.Style{Header: 1}), document.Text("body")},
		{document.Image("fig.png", 20, 4)},
	}

	saved, err := Save(path, "Report", pages, 5)
	require.NoError(t, err)
	_, err = uuid.Parse(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)
	assert.Empty(t, saved.History)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, "Report", loaded.Title)
	assert.Equal(t, pages, loaded.Pages)
}

func TestSaveKeepsIDAndCapsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	var first Snapshot
	for i, text := range []string{"v1", "v2", "v3", "v4"} {
		snap, err := Save(path, "Doc", []document.Content{{document.Text(text)}}, 2)
		require.NoError(t, err)
		if i == 0 {
			first = snap
		}
		assert.Equal(t, first.ID, snap.ID)
		assert.Equal(t, i+1, snap.Version)
	}

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.History, 2)
	assert.Equal(t, 3, loaded.History[0].Version)
	assert.Equal(t, "v3", loaded.History[0].Pages[0].Plain())
	assert.Equal(t, 2, loaded.History[1].Version)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	_, err = Save(path, "Doc", nil, 3)
	assert.Error(t, err, "a corrupt snapshot is never overwritten silently")
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := Save(filepath.Join(dir, "doc.json"), "Doc", []document.Content{{}}, 1)
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.json", entries[0].Name())
}

func TestRevisionsListCurrentThenHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	for _, text := range []string{"v1", "v2", "v3"} {
		_, err := Save(path, "Doc", []document.Content{{document.Text(text)}}, 5)
		require.NoError(t, err)
	}
	snap, err := Load(path)
	require.NoError(t, err)

	var versions []int
	for _, rev := range snap.Revisions() {
		versions = append(versions, rev.Version)
	}
	assert.Equal(t, []int{3, 2, 1}, versions)

	rev, err := snap.Revision(2)
	require.NoError(t, err)
	assert.Equal(t, "v2", rev.Pages[0].Plain())

	_, err = snap.Revision(9)
	assert.ErrorIs(t, err, ErrNoRevision)
	assert.Empty(t, Snapshot{}.Revisions())
}

func TestRestoreSavesOldPagesAsNewVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	for _, text := range []string{"first draft", "second draft"} {
		_, err := Save(path, "Doc", []document.Content{{document.Text(text)}}, 5)
		require.NoError(t, err)
	}

	restored, err := Restore(path, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, restored.Version)
	assert.Equal(t, "first draft", restored.Pages[0].Plain())
	assert.Equal(t, "Doc", restored.Title)
	require.NotEmpty(t, restored.History)
	assert.Equal(t, 2, restored.History[0].Version, "the replaced version stays restorable")
	assert.Equal(t, "second draft", restored.History[0].Pages[0].Plain())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, restored.Version, loaded.Version)

	_, err = Restore(path, 7, 5)
	assert.ErrorIs(t, err, ErrNoRevision)
}
