package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/labwiz/internal/nats"
	"github.com/mark3labs/labwiz/internal/wizard"
)

func setupStores(t *testing.T) (*Store, *DraftStore) {
	t.Helper()
	ctx := context.Background()

	ns, err := nats.StartEmbeddedNATS(t.TempDir())
	require.NoError(t, err)
	nc, err := nats.ConnectInProcess(ns)
	require.NoError(t, err)
	t.Cleanup(func() { _ = nats.Shutdown(nc, ns) })

	js, err := nats.CreateJetStream(nc)
	require.NoError(t, err)
	stream, err := nats.SetupStream(ctx, js)
	require.NoError(t, err)
	kv, err := nats.SetupDrafts(ctx, js)
	require.NoError(t, err)

	return NewStore(js, stream), NewDraftStore(kv)
}

func TestStore_CreateUpdateList(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStores(t)

	r1, err := store.CreateRecord(ctx, "patent", wizard.Values{
		"patentNumber": wizard.TextValue("CN-001"),
		"inventors":    wizard.ListValue("Ada", "Grace"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, r1.ID)

	r2, err := store.CreateRecord(ctx, "patent", wizard.Values{"patentNumber": wizard.TextValue("CN-002")})
	require.NoError(t, err)

	_, err = store.CreateRecord(ctx, "reagent", wizard.Values{"name": wizard.TextValue("Ethanol")})
	require.NoError(t, err)

	list, err := store.ListRecords(ctx, "patent")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, r1.ID, list[0].ID)
	assert.Equal(t, r2.ID, list[1].ID)
	assert.Equal(t, []string{"Ada", "Grace"}, list[0].Values["inventors"].List)

	receipt, err := store.UpdateRecord(ctx, "patent", r1.ID, wizard.Values{"patentNumber": wizard.TextValue("CN-001-A")})
	require.NoError(t, err)
	assert.Equal(t, r1.ID, receipt.ID)

	rec, err := store.GetRecord(ctx, "patent", r1.ID)
	require.NoError(t, err)
	assert.Equal(t, "CN-001-A", rec.Values["patentNumber"].Text)
	assert.Equal(t, 2, rec.Version)
	assert.False(t, rec.UpdatedAt.Before(rec.CreatedAt))

	require.NoError(t, store.DeleteRecord(ctx, "patent", r2.ID))
	list, err = store.ListRecords(ctx, "patent")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStores(t)

	_, err := store.GetRecord(ctx, "patent", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.UpdateRecord(ctx, "patent", "missing", wizard.Values{})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.DeleteRecord(ctx, "patent", "missing"), ErrNotFound)

	list, err := store.ListRecords(ctx, "journal-level")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_SkipsMalformedEvents(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStores(t)

	_, err := store.js.Publish(ctx, nats.SubjectForForm("patent"), []byte("{not json"))
	require.NoError(t, err)
	_, err = store.CreateRecord(ctx, "patent", wizard.Values{"patentNumber": wizard.TextValue("CN-9")})
	require.NoError(t, err)

	list, err := store.ListRecords(ctx, "patent")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestState_Apply(t *testing.T) {
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	st := &State{Form: "patent", Records: map[string]*Record{}}

	st.Apply(Event{Form: "patent", Record: "b", Action: ActionCreate, Timestamp: t0})
	st.Apply(Event{Form: "patent", Record: "a", Action: ActionCreate, Timestamp: t0})
	st.Apply(Event{Form: "patent", Record: "ghost", Action: ActionUpdate, Timestamp: t0})
	st.Apply(Event{Form: "patent", Record: "a", Action: "rename", Timestamp: t0})

	sorted := st.Sorted()
	require.Len(t, sorted, 2)
	assert.Equal(t, "a", sorted[0].ID, "ties break on ID")
	assert.Equal(t, 1, sorted[0].Version)
}

func TestDraftStore(t *testing.T) {
	ctx := context.Background()
	_, drafts := setupStores(t)

	_, err := drafts.LoadDraft(ctx, "patent", "")
	require.ErrorIs(t, err, ErrNotFound)

	older := wizard.Draft{
		Form:        "patent",
		Values:      wizard.Values{"patentNumber": wizard.TextValue("CN-1")},
		CurrentStep: 1,
		Completed:   []int{0},
		SavedAt:     time.Now().Add(-time.Hour),
	}
	newer := wizard.Draft{
		Form:     "patent",
		RecordID: "rec1",
		Values:   wizard.Values{"patentNumber": wizard.TextValue("CN-2")},
		SavedAt:  time.Now(),
	}
	require.NoError(t, drafts.SaveDraft(ctx, older))
	require.NoError(t, drafts.SaveDraft(ctx, newer))
	require.NoError(t, drafts.SaveDraft(ctx, wizard.Draft{Form: "reagent", SavedAt: time.Now()}))

	got, err := drafts.LoadDraft(ctx, "patent", "")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentStep)
	assert.Equal(t, []int{0}, got.Completed)
	assert.Equal(t, "CN-1", got.Values["patentNumber"].Text)

	list, err := drafts.ListDrafts(ctx, "patent")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "rec1", list[0].RecordID)

	require.NoError(t, drafts.DeleteDraft(ctx, "patent", ""))
	require.NoError(t, drafts.DeleteDraft(ctx, "patent", ""))
	_, err = drafts.LoadDraft(ctx, "patent", "")
	assert.ErrorIs(t, err, ErrNotFound)
}
