// Package mcpserver exposes headless wizard sessions as MCP tools so agents
// and scripts can fill in records without the terminal UI.
package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mark3labs/labwiz/internal/forms"
	"github.com/mark3labs/labwiz/internal/logger"
	"github.com/mark3labs/labwiz/internal/records"
	"github.com/mark3labs/labwiz/internal/wizard"
)

// maxSessions bounds how many wizards may be open at once.
const maxSessions = 64

// RecordStore persists submissions and answers record lookups.
type RecordStore interface {
	wizard.Persister
	GetRecord(ctx context.Context, form, id string) (*records.Record, error)
	ListRecords(ctx context.Context, form string) ([]*records.Record, error)
}

// DraftStore keeps unsubmitted sessions.
type DraftStore interface {
	wizard.DraftSaver
	LoadDraft(ctx context.Context, form, recordID string) (*wizard.Draft, error)
	DeleteDraft(ctx context.Context, form, recordID string) error
}

// Server manages an MCP HTTP server whose tools drive wizard sessions.
// Each session is an independent wizard; tool calls on the same session are
// serialized by the session's own mutex.
type Server struct {
	forms   *forms.Registry
	records RecordStore
	drafts  DraftStore

	validate *validator.Validate
	// NotifyInvalid also reports validation failures as session notices.
	NotifyInvalid bool

	sessMu   sync.Mutex
	sessions map[string]*session

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	stdServer  *http.Server
	port       int
	mu         sync.Mutex
}

// New creates a server over the given registry and stores. drafts may be
// nil, in which case draft tools report that drafts are unavailable.
// The server is not started until Start() is called.
func New(reg *forms.Registry, store RecordStore, drafts DraftStore) *Server {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonTagName)
	return &Server{
		forms:    reg,
		records:  store,
		drafts:   drafts,
		validate: v,
		sessions: make(map[string]*session),
	}
}

// Start starts the MCP HTTP server on 127.0.0.1:port, or on a random free
// port when port is 0. Returns the bound port.
func (s *Server) Start(ctx context.Context, port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	s.mcpServer = server.NewMCPServer(
		"labwiz",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return 0, fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	// Sessions live in this server, not in the transport, so the transport
	// itself can stay stateless.
	mux := http.NewServeMux()
	mcpHandler := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
	mux.Handle("/mcp", mcpHandler)

	s.stdServer = &http.Server{Handler: mux}
	s.httpServer = mcpHandler

	logger.Debug("Starting MCP server on port %d", s.port)

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Info("MCP server ready on port %d", s.port)
	return s.port, nil
}

// Stop stops the HTTP server and drops every open session.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}

	logger.Debug("Stopping MCP server")
	if err := s.stdServer.Shutdown(context.Background()); err != nil {
		logger.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	s.sessMu.Lock()
	if n := len(s.sessions); n > 0 {
		logger.Info("Dropping %d open wizard session(s)", n)
	}
	s.sessions = make(map[string]*session)
	s.sessMu.Unlock()

	s.httpServer = nil
	s.stdServer = nil
	s.mcpServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the HTTP URL for the MCP server endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
