package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func TestDefaults(t *testing.T) {
	s := DefaultUIState()
	assert.True(t, s.Review.ShowDiff)
	assert.Empty(t, s.LastForm())

	s = Load(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, s.Review.ShowDiff)
	assert.Empty(t, s.Recent)
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	s := DefaultUIState()
	s.Review.ShowDiff = false
	s.Touch("patent", 0, epoch)
	s.Touch("reagent", 2, epoch.Add(time.Minute))
	require.NoError(t, Save(dir, s))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file is cleaned up")
	assert.Equal(t, FileName, entries[0].Name())

	loaded := Load(dir)
	assert.False(t, loaded.Review.ShowDiff)
	assert.Equal(t, "reagent", loaded.LastForm())
	used, ok := loaded.Used("reagent")
	require.True(t, ok)
	assert.Equal(t, 2, used.Submitted)
	assert.True(t, used.UsedAt.Equal(epoch.Add(time.Minute)))
}

func TestLoad_OlderFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"recent":[{"id":"patent"}]}`), 0644))

	s := Load(dir)
	assert.True(t, s.Review.ShowDiff, "absent keys keep their default")
	assert.Equal(t, "patent", s.LastForm())
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("invalid json {{{"), 0644))

	s := Load(dir)
	require.NotNil(t, s)
	assert.True(t, s.Review.ShowDiff)
	assert.Empty(t, s.Recent)
}

func TestTouch(t *testing.T) {
	s := DefaultUIState()
	for i, form := range []string{"a", "b", "c", "d", "e", "f", "b"} {
		s.Touch(form, i, epoch.Add(time.Duration(i)*time.Hour))
	}

	var ids []string
	for _, r := range s.Recent {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"b", "f", "e", "d", "c"}, ids)
	b, _ := s.Used("b")
	assert.Equal(t, 6, b.Submitted, "touch replaces the old entry")
	_, ok := s.Used("a")
	assert.False(t, ok)
}

func TestForget(t *testing.T) {
	s := DefaultUIState()
	s.Touch("grant", 0, epoch)
	s.Touch("patent", 1, epoch)
	s.Touch("retired", 0, epoch)

	s.Forget(func(id string) bool { return id != "retired" })

	assert.Equal(t, "patent", s.LastForm())
	assert.Len(t, s.Recent, 2)
}
