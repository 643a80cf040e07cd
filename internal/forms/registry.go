package forms

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gosimple/slug"

	"github.com/mark3labs/labwiz/internal/logger"
	"github.com/mark3labs/labwiz/internal/wizard"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// ErrUnknownForm is returned by Get for unregistered form IDs.
var ErrUnknownForm = errors.New("unknown form")

// Form is a compiled definition ready to drive a wizard.
type Form struct {
	Schema      *wizard.Schema
	Description string
	Source      string
}

// Registry holds forms by ID.
type Registry struct {
	mu    sync.RWMutex
	forms map[string]*Form
}

func NewRegistry() *Registry {
	return &Registry{forms: make(map[string]*Form)}
}

// Builtin returns a registry with the forms shipped in the binary.
func Builtin() (*Registry, error) {
	r := NewRegistry()
	err := fs.WalkDir(builtinFS, "builtin", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := builtinFS.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = r.Load("builtin:"+d.Name(), data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading builtin forms: %w", err)
	}
	return r, nil
}

// Load parses, compiles and registers one definition, replacing any form
// with the same ID.
func (r *Registry) Load(source string, data []byte) (*Form, error) {
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	schema, err := def.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	f := &Form{Schema: schema, Description: def.Description, Source: source}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.forms[schema.ID]; ok {
		logger.Info("Form %s from %s replaces %s", schema.ID, source, prev.Source)
	}
	r.forms[schema.ID] = f
	return f, nil
}

// LoadDir registers every .yaml and .yml file in dir. A missing directory
// is not an error.
func (r *Registry) LoadDir(dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("Schema dir %s does not exist", dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading schema dir: %w", err)
	}
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if _, err := r.Load(path, data); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a form by ID. IDs are matched after slug normalization, so
// "Journal Level" finds "journal-level".
func (r *Registry) Get(id string) (*Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.forms[slug.Make(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownForm, id)
	}
	return f, nil
}

// List returns every form ordered by ID.
func (r *Registry) List() []*Form {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Form, 0, len(r.forms))
	for _, f := range r.forms {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Schema.ID < out[j].Schema.ID })
	return out
}
