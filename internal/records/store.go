// Package records persists wizard submissions as an append-only event log
// on JetStream and keeps unsubmitted drafts in a JetStream key-value bucket.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	ierr "github.com/mark3labs/labwiz/internal/errors"
	"github.com/mark3labs/labwiz/internal/logger"
	"github.com/mark3labs/labwiz/internal/nats"
	"github.com/mark3labs/labwiz/internal/wizard"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"
)

// ErrNotFound is returned for unknown records and drafts.
var ErrNotFound = errors.New("not found")

// Event actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event is one change to one record.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Form      string        `json:"form"`
	Record    string        `json:"record"`
	Action    string        `json:"action"`
	Values    wizard.Values `json:"values,omitempty"`
}

// Record is the current state of a submitted record.
type Record struct {
	ID        string        `json:"id"`
	Form      string        `json:"form"`
	Values    wizard.Values `json:"values"`
	Version   int           `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// State is every live record of one form, rebuilt by replaying events.
type State struct {
	Form    string
	Records map[string]*Record
}

// Apply folds one event into the state.
func (st *State) Apply(e Event) {
	switch e.Action {
	case ActionCreate:
		st.Records[e.Record] = &Record{
			ID:        e.Record,
			Form:      e.Form,
			Values:    e.Values,
			Version:   1,
			CreatedAt: e.Timestamp,
			UpdatedAt: e.Timestamp,
		}
	case ActionUpdate:
		if r, ok := st.Records[e.Record]; ok {
			r.Values = e.Values
			r.Version++
			r.UpdatedAt = e.Timestamp
		}
	case ActionDelete:
		delete(st.Records, e.Record)
	}
}

// Sorted returns the records oldest first.
func (st *State) Sorted() []*Record {
	out := make([]*Record, 0, len(st.Records))
	for _, r := range st.Records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Store reads and writes record events. It implements wizard.Persister.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
	now    func() time.Time
}

var _ wizard.Persister = (*Store)(nil)

func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream, now: time.Now}
}

// PublishEvent appends an event to the log.
func (s *Store) PublishEvent(ctx context.Context, e Event) (*jetstream.PubAck, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	if e.ID == "" {
		e.ID = xid.New().String()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshaling event: %w", err)
	}

	ack, err := s.js.Publish(ctx, nats.SubjectForForm(e.Form), data, jetstream.WithMsgID(e.ID))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, jetstream.ErrNoStreamResponse) {
			err = ierr.NewTransientError("publish", err)
		}
		return nil, fmt.Errorf("publishing %s event for %s: %w", e.Action, e.Form, err)
	}
	logger.Debug("Published %s %s/%s seq=%d", e.Action, e.Form, e.Record, ack.Sequence)
	return ack, nil
}

// CreateRecord stores a new record and returns its generated ID.
func (s *Store) CreateRecord(ctx context.Context, form string, values wizard.Values) (wizard.Receipt, error) {
	id := xid.New().String()
	_, err := s.PublishEvent(ctx, Event{Form: form, Record: id, Action: ActionCreate, Values: values})
	if err != nil {
		return wizard.Receipt{}, err
	}
	return wizard.Receipt{ID: id}, nil
}

// UpdateRecord replaces the values of an existing record.
func (s *Store) UpdateRecord(ctx context.Context, form, id string, values wizard.Values) (wizard.Receipt, error) {
	if _, err := s.GetRecord(ctx, form, id); err != nil {
		return wizard.Receipt{}, err
	}
	_, err := s.PublishEvent(ctx, Event{Form: form, Record: id, Action: ActionUpdate, Values: values})
	if err != nil {
		return wizard.Receipt{}, err
	}
	return wizard.Receipt{ID: id}, nil
}

// DeleteRecord removes a record from the live state. Its history remains in
// the log.
func (s *Store) DeleteRecord(ctx context.Context, form, id string) error {
	if _, err := s.GetRecord(ctx, form, id); err != nil {
		return err
	}
	_, err := s.PublishEvent(ctx, Event{Form: form, Record: id, Action: ActionDelete})
	return err
}

// GetRecord returns one record.
func (s *Store) GetRecord(ctx context.Context, form, id string) (*Record, error) {
	st, err := s.LoadState(ctx, form)
	if err != nil {
		return nil, err
	}
	r, ok := st.Records[id]
	if !ok {
		return nil, fmt.Errorf("record %s/%s: %w", form, id, ErrNotFound)
	}
	return r, nil
}

// ListRecords returns every live record of a form, oldest first.
func (s *Store) ListRecords(ctx context.Context, form string) ([]*Record, error) {
	st, err := s.LoadState(ctx, form)
	if err != nil {
		return nil, err
	}
	return st.Sorted(), nil
}

// LoadState replays all events of a form. Malformed events are skipped.
func (s *Store) LoadState(ctx context.Context, form string) (*State, error) {
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject:     nats.SubjectForForm(form),
		DeliverPolicy:     jetstream.DeliverAllPolicy,
		AckPolicy:         jetstream.AckExplicitPolicy,
		InactiveThreshold: 30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("creating consumer for %s: %w", form, err)
	}
	defer func() {
		name := consumer.CachedInfo().Name
		if err := s.stream.DeleteConsumer(context.WithoutCancel(ctx), name); err != nil {
			logger.Debug("Deleting consumer %s: %v", name, err)
		}
	}()

	st := &State{Form: form, Records: make(map[string]*Record)}

	const batchSize = 1000
	skipped := 0
	for {
		batch, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}
		n := 0
		for msg := range batch.Messages() {
			n++
			var e Event
			if err := json.Unmarshal(msg.Data(), &e); err != nil {
				skipped++
				logger.Warn("Skipping malformed %s event: %v", form, err)
				_ = msg.Ack()
				continue
			}
			st.Apply(e)
			_ = msg.Ack()
		}
		if err := batch.Error(); err != nil {
			logger.Debug("Fetch for %s ended: %v", form, err)
		}
		if n < batchSize {
			break
		}
	}
	if skipped > 0 {
		logger.Warn("Skipped %d malformed events while loading %s", skipped, form)
	}
	logger.Debug("Loaded %d %s records", len(st.Records), form)
	return st, nil
}
