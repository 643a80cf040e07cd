package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/labwiz/internal/logger"
	"github.com/mark3labs/labwiz/internal/nats"
	"github.com/mark3labs/labwiz/internal/wizard"
	"github.com/nats-io/nats.go/jetstream"
)

// DraftStore keeps the latest draft per form and record. It implements
// wizard.DraftSaver.
type DraftStore struct {
	kv jetstream.KeyValue
}

var _ wizard.DraftSaver = (*DraftStore)(nil)

func NewDraftStore(kv jetstream.KeyValue) *DraftStore {
	return &DraftStore{kv: kv}
}

// SaveDraft overwrites the draft for d.Form and d.RecordID.
func (s *DraftStore) SaveDraft(ctx context.Context, d wizard.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling draft: %w", err)
	}
	if _, err := s.kv.Put(ctx, nats.DraftKey(d.Form, d.RecordID), data); err != nil {
		return fmt.Errorf("storing draft: %w", err)
	}
	return nil
}

// LoadDraft returns the draft for a form and record ("" for a new record).
func (s *DraftStore) LoadDraft(ctx context.Context, form, recordID string) (*wizard.Draft, error) {
	entry, err := s.kv.Get(ctx, nats.DraftKey(form, recordID))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, fmt.Errorf("draft %s: %w", nats.DraftKey(form, recordID), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading draft: %w", err)
	}
	var d wizard.Draft
	if err := json.Unmarshal(entry.Value(), &d); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}
	return &d, nil
}

// DeleteDraft removes a draft. Deleting a missing draft is not an error.
func (s *DraftStore) DeleteDraft(ctx context.Context, form, recordID string) error {
	err := s.kv.Delete(ctx, nats.DraftKey(form, recordID))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting draft: %w", err)
	}
	return nil
}

// ListDrafts returns the drafts of a form, most recently saved first.
func (s *DraftStore) ListDrafts(ctx context.Context, form string) ([]wizard.Draft, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer lister.Stop()

	prefix := nats.DraftKey(form, "x")
	prefix = prefix[:len(prefix)-1]

	var out []wizard.Draft
	for key := range lister.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			logger.Debug("Draft %s vanished while listing: %v", key, err)
			continue
		}
		var d wizard.Draft
		if err := json.Unmarshal(entry.Value(), &d); err != nil {
			logger.Warn("Skipping malformed draft %s: %v", key, err)
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}
