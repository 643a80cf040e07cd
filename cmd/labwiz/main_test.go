package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/labwiz/internal/hooks"
	"github.com/mark3labs/labwiz/internal/records"
	"github.com/mark3labs/labwiz/internal/wizard"
)

func TestRenderRecords(t *testing.T) {
	schema := &wizard.Schema{
		ID:    "reagent",
		Title: "Reagent",
		Fields: []wizard.Field{
			{Name: "name", Label: "Name", Kind: wizard.KindText},
			{Name: "notes", Label: "Notes", Kind: wizard.KindText, Multiline: true},
			{Name: "qty", Label: "Qty", Kind: wizard.KindNumber},
			{Name: "sheet", Label: "Sheet", Kind: wizard.KindFiles},
			{Name: "location", Label: "Location", Kind: wizard.KindText},
			{Name: "extra", Label: "Extra", Kind: wizard.KindText},
		},
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := []*records.Record{{
		ID:        "d0abc",
		Values:    wizard.Values{"name": wizard.TextValue("Agar"), "qty": wizard.NumberValue(3)},
		Version:   2,
		UpdatedAt: now.Add(-2 * time.Hour),
	}}

	out := ansi.Strip(renderRecords(schema, recs, now))

	for _, want := range []string{"Reagent records (1)", "Name", "Qty", "Location", "d0abc", "Agar", "2hr ago"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Notes", "multi-line fields are left out")
	assert.NotContains(t, out, "Sheet", "file fields are left out")
	assert.NotContains(t, out, "Extra", "only the first columns are shown")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\nb", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestCheckForms(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`id: grant
title: Grant
fields:
  - name: funder
    label: Funder
    kind: text
steps:
  - name: basics
    title: Basics
    fields: [funder]
    required: [funder]
  - name: review
    title: Review
`), 0644))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("id: grant\ntitle: Grant\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, checkForms(&out, []string{good}))
	assert.Contains(t, out.String(), "✓ "+good)

	out.Reset()
	err := checkForms(&out, []string{good, bad, filepath.Join(dir, "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3")
	assert.Contains(t, out.String(), "✗ "+bad)
}

func TestSampleHooksParse(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, hooks.ConfigFileName), []byte(sampleHooks), 0644))

	cfg, err := hooks.LoadConfig(dir)
	require.NoError(t, err)
	require.Len(t, cfg.Hooks.PostSubmit, 1)
	assert.True(t, cfg.Hooks.PostSubmit[0].PipeOutput)
	assert.True(t, cfg.Hooks.PostSubmit[0].Applies("patent"))
}

func TestDraftHints(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hints := draftHints("patent", []wizard.Draft{
		{Form: "patent", SavedAt: now.Add(-5 * time.Minute)},
		{Form: "patent", RecordID: "d0abc", SavedAt: now.Add(-26 * time.Hour)},
	}, now)

	assert.Equal(t, []string{
		"Unsaved new record (draft 5min ago): labwiz new patent --resume",
		"Unsaved edit of d0abc (draft 1 day ago): labwiz edit patent d0abc --resume",
	}, hints)
}
