package mcpserver

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/mark3labs/labwiz/internal/forms"
	"github.com/mark3labs/labwiz/internal/wizard"
)

var (
	errUnknownSession = errors.New("unknown session")
	errTooMany        = fmt.Errorf("too many open sessions (limit %d)", maxSessions)
)

// Exit destinations recorded when a session is closed.
const (
	exitList = "list"
	exitBack = "back"
)

type notice struct {
	Kind    wizard.NoticeKind `json:"kind"`
	Message string            `json:"message"`
}

// session is one headless wizard. mu serializes tool calls except the
// persistence wait inside Submit, which relies on the engine's own guard.
type session struct {
	mu      sync.Mutex
	id      string
	form    *forms.Form
	wiz     *wizard.Wizard
	coord   *wizard.Coordinator
	started time.Time

	noticeMu sync.Mutex
	notices  []notice
	exit     string
	// lastRecord is the ID of the latest successful submission.
	lastRecord string
}

// Notify implements wizard.Notifier.
func (ss *session) Notify(kind wizard.NoticeKind, message string) {
	ss.noticeMu.Lock()
	defer ss.noticeMu.Unlock()
	ss.notices = append(ss.notices, notice{Kind: kind, Message: message})
}

// GoToList implements wizard.Navigator.
func (ss *session) GoToList() { ss.setExit(exitList) }

// GoBack implements wizard.Navigator.
func (ss *session) GoBack() { ss.setExit(exitBack) }

func (ss *session) setExit(dest string) {
	ss.noticeMu.Lock()
	defer ss.noticeMu.Unlock()
	ss.exit = dest
}

func (ss *session) drain() []notice {
	ss.noticeMu.Lock()
	defer ss.noticeMu.Unlock()
	out := ss.notices
	ss.notices = nil
	return out
}

func (ss *session) setLastRecord(id string) {
	ss.noticeMu.Lock()
	defer ss.noticeMu.Unlock()
	ss.lastRecord = id
}

func (ss *session) exitAndRecord() (string, string) {
	ss.noticeMu.Lock()
	defer ss.noticeMu.Unlock()
	return ss.exit, ss.lastRecord
}

// openSession builds a wizard for form and registers it under a new ID.
func (s *Server) openSession(form *forms.Form, initial *wizard.InitialData) (*session, error) {
	var opts []wizard.Option
	if initial != nil {
		opts = append(opts, wizard.WithInitialData(*initial))
	}
	w, err := wizard.New(form.Schema, opts...)
	if err != nil {
		return nil, err
	}

	ss := &session{
		id:      xid.New().String(),
		form:    form,
		wiz:     w,
		started: time.Now(),
	}
	copts := []wizard.CoordinatorOption{
		wizard.WithNotifier(ss),
		wizard.WithNavigator(ss),
		wizard.WithInvalidNotices(s.NotifyInvalid),
	}
	if s.drafts != nil {
		copts = append(copts, wizard.WithDraftSaver(s.drafts))
	}
	ss.coord = wizard.NewCoordinator(w, s.records, copts...)

	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	if len(s.sessions) >= maxSessions {
		return nil, errTooMany
	}
	s.sessions[ss.id] = ss
	return ss, nil
}

func (s *Server) session(id string) (*session, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	ss, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", errUnknownSession, id)
	}
	return ss, nil
}

func (s *Server) closeSession(id string) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	delete(s.sessions, id)
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	return len(s.sessions)
}
