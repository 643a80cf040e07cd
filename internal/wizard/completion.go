package wizard

import "sort"

// CompletionTracker records which steps have passed validation at least once.
type CompletionTracker struct {
	done map[int]struct{}
}

func NewCompletionTracker() *CompletionTracker {
	return &CompletionTracker{done: make(map[int]struct{})}
}

// MarkCompleted adds a step. Marking twice is a no-op.
func (c *CompletionTracker) MarkCompleted(index int) {
	c.done[index] = struct{}{}
}

func (c *CompletionTracker) IsCompleted(index int) bool {
	_, ok := c.done[index]
	return ok
}

func (c *CompletionTracker) Reset() {
	c.done = make(map[int]struct{})
}

// Completed returns the completed step indices in ascending order.
func (c *CompletionTracker) Completed() []int {
	out := make([]int, 0, len(c.done))
	for i := range c.done {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
