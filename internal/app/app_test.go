package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/labwiz/internal/records"
	"github.com/mark3labs/labwiz/internal/wizard"
)

func startApp(t *testing.T, cfg Config) *App {
	t.Helper()
	a := New(cfg)
	require.NoError(t, a.Start())
	t.Cleanup(func() { _ = a.Stop() })
	return a
}

func TestNew_DefaultDataDir(t *testing.T) {
	a := New(Config{})
	assert.Equal(t, ".labwiz", a.cfg.DataDir)
	require.NoError(t, a.Stop())
}

func TestStartStop(t *testing.T) {
	dir := t.TempDir()
	a := startApp(t, Config{DataDir: dir})

	assert.DirExists(t, filepath.Join(dir, "nats"))
	require.NotNil(t, a.Forms())
	require.NotNil(t, a.Records())
	require.NotNil(t, a.Drafts())

	_, err := a.Forms().Get("patent")
	require.NoError(t, err)

	require.NoError(t, a.Stop())
	require.NoError(t, a.Stop(), "Stop is idempotent")
	assert.Error(t, a.Context().Err(), "context is cancelled on stop")
}

func TestStart_SchemaDir(t *testing.T) {
	schemas := t.TempDir()
	def := `id: grant
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
`
	require.NoError(t, os.WriteFile(filepath.Join(schemas, "grant.yaml"), []byte(def), 0644))

	a := startApp(t, Config{DataDir: t.TempDir(), SchemaDir: schemas})

	f, err := a.Forms().Get("grant")
	require.NoError(t, err)
	assert.Equal(t, "Grant", f.Schema.Title)
}

func TestStart_BadSchemaDir(t *testing.T) {
	schemas := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(schemas, "bad.yaml"), []byte("id: [oops"), 0644))

	a := New(Config{DataDir: t.TempDir(), SchemaDir: schemas})
	err := a.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestMount(t *testing.T) {
	ctx := context.Background()
	a := startApp(t, Config{DataDir: t.TempDir()})
	form, err := a.Forms().Get("reagent")
	require.NoError(t, err)

	data, err := a.Mount(ctx, form, "", false)
	require.NoError(t, err)
	assert.Nil(t, data, "blank create session")

	_, err = a.Mount(ctx, form, "", true)
	assert.ErrorIs(t, err, ErrNoDraft)

	_, err = a.Mount(ctx, form, "missing", false)
	assert.ErrorIs(t, err, records.ErrNotFound)

	receipt, err := a.Records().CreateRecord(ctx, "reagent", wizard.Values{"name": wizard.TextValue("Agar")})
	require.NoError(t, err)
	data, err = a.Mount(ctx, form, receipt.ID, false)
	require.NoError(t, err)
	assert.Equal(t, receipt.ID, data.RecordID)
	assert.Equal(t, "Agar", data.Values["name"].Text)

	require.NoError(t, a.Drafts().SaveDraft(ctx, wizard.Draft{
		Form:        "reagent",
		Values:      wizard.Values{"name": wizard.TextValue("Draft")},
		CurrentStep: 1,
		Completed:   []int{0},
	}))
	data, err = a.Mount(ctx, form, "", true)
	require.NoError(t, err)
	require.NotNil(t, data.CurrentStep)
	assert.Equal(t, 1, *data.CurrentStep)
	assert.Equal(t, []int{0}, data.Completed)
}
