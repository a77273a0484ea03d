// Package reveal tracks the first time a display element enters the viewport.
//
// A visibility detector (IntersectionObserver in the browser client) reports
// every intersection change through Notify. Observer turns that stream into a
// single reveal per element: the registered callback runs on the first
// visible report and the element is dropped from the pending set, so later
// hidden/visible cycles are ignored.
package reveal

import (
	"strings"
	"sync"
)

// Callback runs once when the element identified by id is first revealed.
type Callback func(id string)

// Observer registers elements and fires their reveal callbacks at most once.
type Observer struct {
	mu       sync.Mutex
	pending  map[string]Callback
	revealed map[string]struct{}
}

// NewObserver constructs an empty Observer.
func NewObserver() *Observer {
	return &Observer{
		pending:  make(map[string]Callback),
		revealed: make(map[string]struct{}),
	}
}

// Observe registers id with the detector. It reports false when id is blank,
// already pending, or was revealed before; the callback is not stored then.
func (o *Observer) Observe(id string, fn Callback) bool {
	id = strings.TrimSpace(id)
	if id == "" || fn == nil {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, done := o.revealed[id]; done {
		return false
	}
	if _, exists := o.pending[id]; exists {
		return false
	}
	o.pending[id] = fn
	return true
}

// Notify feeds one visibility report. It returns true only when the report
// revealed a pending element and its callback ran.
func (o *Observer) Notify(id string, visible bool) bool {
	if !visible {
		return false
	}
	id = strings.TrimSpace(id)
	o.mu.Lock()
	fn, ok := o.pending[id]
	if ok {
		delete(o.pending, id)
		o.revealed[id] = struct{}{}
	}
	o.mu.Unlock()

	if !ok {
		return false
	}
	fn(id)
	return true
}

// Unobserve drops a pending registration, e.g. when its element unmounts.
func (o *Observer) Unobserve(id string) {
	o.mu.Lock()
	delete(o.pending, strings.TrimSpace(id))
	o.mu.Unlock()
}

// Revealed reports whether id has already fired.
func (o *Observer) Revealed(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.revealed[strings.TrimSpace(id)]
	return ok
}

// Pending returns the ids still waiting for their first reveal.
func (o *Observer) Pending() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]string, 0, len(o.pending))
	for id := range o.pending {
		ids = append(ids, id)
	}
	return ids
}
