// Package state persists small UI preferences between labwiz runs.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/labwiz/internal/logger"
)

// FileName is the state file inside the data directory.
const FileName = "ui-state.json"

// maxRecent is how many recently used forms are remembered.
const maxRecent = 5

// UIState holds preferences that carry across runs.
type UIState struct {
	Review ReviewState `json:"review"`
	// Recent lists forms, most recently used first.
	Recent []RecentForm `json:"recent,omitempty"`
}

// ReviewState holds review step preferences.
type ReviewState struct {
	// ShowDiff shows changed fields as a diff when editing a record.
	ShowDiff bool `json:"show_diff"`
}

// RecentForm records the last wizard session of one form.
type RecentForm struct {
	ID     string    `json:"id"`
	UsedAt time.Time `json:"used_at"`
	// Submitted counts records saved in that session.
	Submitted int `json:"submitted,omitempty"`
}

// DefaultUIState shows diffs and remembers nothing.
func DefaultUIState() *UIState {
	return &UIState{Review: ReviewState{ShowDiff: true}}
}

// LastForm returns the most recently used form ID, or "".
func (s *UIState) LastForm() string {
	if len(s.Recent) == 0 {
		return ""
	}
	return s.Recent[0].ID
}

// Used returns the recent entry for form.
func (s *UIState) Used(form string) (RecentForm, bool) {
	for _, r := range s.Recent {
		if r.ID == form {
			return r, true
		}
	}
	return RecentForm{}, false
}

// Touch moves form to the front of the recent list.
func (s *UIState) Touch(form string, submitted int, now time.Time) {
	recent := []RecentForm{{ID: form, UsedAt: now, Submitted: submitted}}
	for _, r := range s.Recent {
		if r.ID != form && len(recent) < maxRecent {
			recent = append(recent, r)
		}
	}
	s.Recent = recent
}

// Forget drops forms for which known returns false, such as definitions
// removed from schema_dir.
func (s *UIState) Forget(known func(id string) bool) {
	kept := s.Recent[:0]
	for _, r := range s.Recent {
		if known(r.ID) {
			kept = append(kept, r)
		}
	}
	s.Recent = kept
}

// Load reads <dataDir>/ui-state.json. Missing or unreadable state yields
// the defaults.
func Load(dataDir string) *UIState {
	path := filepath.Join(dataDir, FileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultUIState()
	}
	if err != nil {
		logger.Warn("Failed to read UI state file: %v", err)
		return DefaultUIState()
	}

	state := DefaultUIState()
	if err := json.Unmarshal(data, state); err != nil {
		logger.Warn("Failed to parse UI state %s: %v", path, err)
		return DefaultUIState()
	}
	return state
}

// Save writes the state next to the records, replacing the old file
// atomically.
func Save(dataDir string, state *UIState) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling UI state: %w", err)
	}

	tmp, err := os.CreateTemp(dataDir, FileName+".*")
	if err != nil {
		return fmt.Errorf("writing UI state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing UI state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing UI state: %w", err)
	}
	path := filepath.Join(dataDir, FileName)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing UI state: %w", err)
	}

	logger.Debug("UI state saved to %s", path)
	return nil
}
