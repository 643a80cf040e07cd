// Package app owns the runtime shared by every labwiz command: the embedded
// NATS server, the record and draft stores and the form registry.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	natsserver "github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	ierr "github.com/mark3labs/labwiz/internal/errors"
	"github.com/mark3labs/labwiz/internal/forms"
	"github.com/mark3labs/labwiz/internal/logger"
	"github.com/mark3labs/labwiz/internal/nats"
	"github.com/mark3labs/labwiz/internal/records"
	"github.com/mark3labs/labwiz/internal/wizard"
)

// ErrNoDraft is returned by Mount when resuming without a saved draft.
var ErrNoDraft = errors.New("no draft saved")

// Config holds configuration for the runtime.
type Config struct {
	DataDir   string // Data directory for NATS storage
	SchemaDir string // Extra form definitions (optional)
}

// App wires storage and forms together for the lifetime of one command.
type App struct {
	cfg     Config
	ns      *natsserver.Server
	nc      *natsgo.Conn
	records *records.Store
	drafts  *records.DraftStore
	forms   *forms.Registry
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
}

// New creates an App. Nothing is started until Start is called.
func New(cfg Config) *App {
	if cfg.DataDir == "" {
		cfg.DataDir = ".labwiz"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &App{cfg: cfg, ctx: ctx, cancel: cancel}
}

// Start loads the forms, then starts NATS and opens the stores.
func (a *App) Start() error {
	logger.Debug("Loading forms")
	reg, err := forms.Builtin()
	if err != nil {
		return err
	}
	if err := reg.LoadDir(a.cfg.SchemaDir); err != nil {
		return fmt.Errorf("loading schema dir: %w", err)
	}
	a.forms = reg

	storeDir := filepath.Join(a.cfg.DataDir, "nats")
	if err := os.MkdirAll(storeDir, 0755); err != nil {
		return fmt.Errorf("failed to create NATS data directory: %w", err)
	}

	ns, err := nats.StartEmbeddedNATS(storeDir)
	if err != nil {
		return fmt.Errorf("failed to start NATS server: %w", err)
	}
	a.ns = ns

	nc, err := nats.ConnectInProcess(ns)
	if err != nil {
		ns.Shutdown()
		a.ns = nil
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	a.nc = nc

	if err := a.setupJetStream(); err != nil {
		return errors.Join(err, a.Stop())
	}
	logger.Info("Runtime started with %d form(s) in %s", len(reg.List()), a.cfg.DataDir)
	return nil
}

func (a *App) setupJetStream() error {
	js, err := nats.CreateJetStream(a.nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	stream, err := nats.SetupStream(a.ctx, js)
	if err != nil {
		return fmt.Errorf("failed to setup stream: %w", err)
	}
	kv, err := nats.SetupDrafts(a.ctx, js)
	if err != nil {
		return fmt.Errorf("failed to setup draft bucket: %w", err)
	}
	a.records = records.NewStore(js, stream)
	a.drafts = records.NewDraftStore(kv)
	return nil
}

// Stop shuts everything down. It is safe to call more than once.
func (a *App) Stop() error {
	if a.stopped {
		return nil
	}
	a.stopped = true
	logger.Debug("Stopping runtime")

	multiErr := &ierr.MultiError{}
	a.cancel()

	err := ierr.Recover(func() error { return nats.Shutdown(a.nc, a.ns) })
	if err != nil {
		logger.Error("NATS shutdown failed: %v", err)
		multiErr.Append(fmt.Errorf("NATS shutdown failed: %w", err))
	}
	a.nc = nil
	a.ns = nil

	logger.Debug("Runtime stopped")
	return multiErr.ErrorOrNil()
}

// Context is cancelled when the App stops.
func (a *App) Context() context.Context { return a.ctx }

func (a *App) Forms() *forms.Registry { return a.forms }

func (a *App) Records() *records.Store { return a.records }

func (a *App) Drafts() *records.DraftStore { return a.drafts }

// Mount builds the initial data for a wizard session. With resume it loads
// the draft for form and recordID; otherwise a non-empty recordID loads
// that record for editing. A nil result means a blank create session.
func (a *App) Mount(ctx context.Context, form *forms.Form, recordID string, resume bool) (*wizard.InitialData, error) {
	id := form.Schema.ID
	if resume {
		d, err := a.drafts.LoadDraft(ctx, id, recordID)
		if errors.Is(err, records.ErrNotFound) {
			return nil, fmt.Errorf("%w for %s", ErrNoDraft, id)
		}
		if err != nil {
			return nil, err
		}
		logger.Info("Resuming %s draft saved %s", id, d.SavedAt.Format("2006-01-02 15:04"))
		data := d.InitialData()
		return &data, nil
	}
	if recordID == "" {
		return nil, nil
	}
	rec, err := a.records.GetRecord(ctx, id, recordID)
	if err != nil {
		return nil, err
	}
	return &wizard.InitialData{RecordID: rec.ID, Values: rec.Values}, nil
}
