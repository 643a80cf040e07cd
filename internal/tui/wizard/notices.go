package wizard

import (
	"sync"

	engine "github.com/mark3labs/labwiz/internal/wizard"
)

type notice struct {
	kind    engine.NoticeKind
	message string
}

// noticeQueue collects coordinator notifications. Submissions run inside a
// tea.Cmd goroutine, so the model drains the queue when the result message
// arrives instead of touching the toast from another goroutine.
type noticeQueue struct {
	mu    sync.Mutex
	items []notice
}

func (q *noticeQueue) Notify(kind engine.NoticeKind, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, notice{kind: kind, message: message})
}

// drain returns and clears every queued notice.
func (q *noticeQueue) drain() []notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
