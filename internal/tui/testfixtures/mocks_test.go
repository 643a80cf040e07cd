package testfixtures

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	engine "github.com/mark3labs/labwiz/internal/wizard"
)

// --- MockPersister Tests ---

func TestMockPersister_Create(t *testing.T) {
	t.Parallel()

	p := NewMockPersister()
	r, err := p.CreateRecord(context.Background(), FixedForm, SampleValues())
	require.NoError(t, err)
	require.Equal(t, "rec-0001", r.ID)

	r, err = p.CreateRecord(context.Background(), FixedForm, nil)
	require.NoError(t, err)
	require.Equal(t, "rec-0002", r.ID)
	require.Equal(t, 2, p.CreateCalls())
	require.Equal(t, FixedForm, p.Creates()[0].Form)
}

func TestMockPersister_UpdateError(t *testing.T) {
	t.Parallel()

	p := NewMockPersister()
	p.SetErr(errors.New("disk full"))

	_, err := p.UpdateRecord(context.Background(), FixedForm, FixedRecordID, nil)
	require.EqualError(t, err, "disk full")
	require.Len(t, p.Updates(), 1)
	require.Equal(t, FixedRecordID, p.Updates()[0].RecordID)
}

func TestMockPersister_Gate(t *testing.T) {
	t.Parallel()

	p := NewMockPersister()
	p.Gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := p.CreateRecord(context.Background(), FixedForm, nil)
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("call returned before the gate opened")
	case <-time.After(50 * time.Millisecond):
	}
	close(p.Gate)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(DefaultWaitDuration):
		t.Fatal("call did not return after the gate opened")
	}
}

func TestMockPersister_GateHonoursContext(t *testing.T) {
	t.Parallel()

	p := NewMockPersister()
	p.Gate = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.CreateRecord(ctx, FixedForm, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, p.CreateCalls())
}

func TestMockPersister_Concurrent(t *testing.T) {
	t.Parallel()

	p := NewMockPersister()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.CreateRecord(context.Background(), FixedForm, nil)
		}()
	}
	wg.Wait()
	require.Equal(t, 20, p.CreateCalls())
}

// --- MockDraftSaver Tests ---

func TestMockDraftSaver(t *testing.T) {
	t.Parallel()

	d := NewMockDraftSaver()
	_, ok := d.Last()
	require.False(t, ok)

	require.NoError(t, d.SaveDraft(context.Background(), engine.Draft{Form: FixedForm, CurrentStep: 1}))
	last, ok := d.Last()
	require.True(t, ok)
	require.Equal(t, 1, last.CurrentStep)

	d.Err = errors.New("no space")
	require.Error(t, d.SaveDraft(context.Background(), engine.Draft{Form: FixedForm}))
	require.Len(t, d.Drafts(), 1)
}

// --- Fixture Tests ---

func TestSampleSchema(t *testing.T) {
	t.Parallel()

	schema := SampleSchema()
	require.NoError(t, schema.Validate())

	store := engine.NewFieldStore(schema.Kinds(), SampleValues())
	for i := schema.First(); i <= schema.Last(); i++ {
		require.True(t, engine.ValidateStep(schema, i, store).IsValid(), "step %d", i)
	}

	store.Update("quantity", engine.NumberValue(50))
	res := engine.ValidateStep(schema, 1, store)
	require.Equal(t, "Quantity must be below Limit", res.Failures["quantity"])
}
