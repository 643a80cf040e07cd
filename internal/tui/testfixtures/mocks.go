// Package testfixtures provides mock implementations and test utilities for TUI testing.
//
// This file contains mock implementations of the wizard collaborators:
//   - MockPersister: records create and update calls, with an optional error
//     and an optional gate to hold a submission in flight
//   - MockDraftSaver: records saved drafts
//
// All mocks are thread-safe because submissions run inside tea.Cmd goroutines.
//
// Example usage:
//
//	p := testfixtures.NewMockPersister()
//	m := wizard.New(w, p, wizard.Options{})
//	// drive m...
//	require.Equal(t, 1, p.CreateCalls())
package testfixtures

import (
	"context"
	"fmt"
	"sync"

	engine "github.com/mark3labs/labwiz/internal/wizard"
)

// Call is one recorded persister call.
type Call struct {
	Form     string
	RecordID string
	Values   engine.Values
}

// MockPersister is an in-memory engine.Persister.
type MockPersister struct {
	mu sync.Mutex

	// Err is returned from every call when set.
	Err error
	// Gate, when non-nil, blocks each call until it receives or ctx ends.
	Gate chan struct{}

	creates []Call
	updates []Call
}

// NewMockPersister creates a persister that succeeds.
func NewMockPersister() *MockPersister {
	return &MockPersister{}
}

func (m *MockPersister) wait(ctx context.Context) error {
	m.mu.Lock()
	gate := m.Gate
	m.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CreateRecord records the call and returns a sequential ID.
func (m *MockPersister) CreateRecord(ctx context.Context, form string, values engine.Values) (engine.Receipt, error) {
	if err := m.wait(ctx); err != nil {
		return engine.Receipt{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates = append(m.creates, Call{Form: form, Values: values})
	if m.Err != nil {
		return engine.Receipt{}, m.Err
	}
	return engine.Receipt{ID: fmt.Sprintf("rec-%04d", len(m.creates))}, nil
}

// UpdateRecord records the call and echoes the record ID.
func (m *MockPersister) UpdateRecord(ctx context.Context, form, id string, values engine.Values) (engine.Receipt, error) {
	if err := m.wait(ctx); err != nil {
		return engine.Receipt{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, Call{Form: form, RecordID: id, Values: values})
	if m.Err != nil {
		return engine.Receipt{}, m.Err
	}
	return engine.Receipt{ID: id}, nil
}

// SetErr changes the error returned by later calls.
func (m *MockPersister) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// Creates returns a copy of the recorded create calls.
func (m *MockPersister) Creates() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.creates...)
}

// Updates returns a copy of the recorded update calls.
func (m *MockPersister) Updates() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.updates...)
}

// CreateCalls returns the number of create calls.
func (m *MockPersister) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.creates)
}

// MockDraftSaver is an in-memory engine.DraftSaver.
type MockDraftSaver struct {
	mu sync.Mutex

	// Err is returned from SaveDraft when set.
	Err    error
	drafts []engine.Draft
}

// NewMockDraftSaver creates a draft saver that succeeds.
func NewMockDraftSaver() *MockDraftSaver {
	return &MockDraftSaver{}
}

// SaveDraft records d.
func (m *MockDraftSaver) SaveDraft(ctx context.Context, d engine.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.drafts = append(m.drafts, d)
	return nil
}

// Drafts returns a copy of the saved drafts.
func (m *MockDraftSaver) Drafts() []engine.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]engine.Draft(nil), m.drafts...)
}

// Last returns the most recent draft.
func (m *MockDraftSaver) Last() (engine.Draft, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.drafts) == 0 {
		return engine.Draft{}, false
	}
	return m.drafts[len(m.drafts)-1], true
}
