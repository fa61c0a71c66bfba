// Package epoch implements a quiescent-state reclamation primitive:
// readers announce their presence, and a writer's retired callbacks
// only run once no reader is active. It is a single grace-period
// queue per domain, drained only by an explicit Flush rather than by a
// full generational epoch/hazard-pointer scheme.
package epoch

import "sync"

// Domain is one reclamation domain, typically one per classifier
// instance.
type Domain struct {
	mu      sync.Mutex
	active  int
	pending []func()
}

// NewDomain returns a ready-to-use Domain.
func NewDomain() *Domain {
	return &Domain{}
}

// Guard marks a reader as active for the duration of a traversal.
// Exit must be called exactly once.
type Guard struct {
	d *Domain
}

// Enter announces a new active reader.
func (d *Domain) Enter() *Guard {
	d.mu.Lock()
	d.active++
	d.mu.Unlock()
	return &Guard{d: d}
}

// Exit retires the reader announced by the matching Enter.
func (g *Guard) Exit() {
	d := g.d
	d.mu.Lock()
	d.active--
	d.mu.Unlock()
}

// Retire queues free to run once every reader active at some future
// Flush call has exited.
func (d *Domain) Retire(free func()) {
	d.mu.Lock()
	d.pending = append(d.pending, free)
	d.mu.Unlock()
}

// Flush runs every pending retired callback if no reader is currently
// active, clearing the queue, and reports whether it did so. If a
// reader is active, Flush is a no-op; the caller should retry later
// (e.g. on the next mutation).
func (d *Domain) Flush() bool {
	d.mu.Lock()
	if d.active != 0 {
		d.mu.Unlock()
		return false
	}
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	for _, free := range pending {
		free()
	}
	return true
}

// Pending reports how many retired callbacks are queued, for tests
// and diagnostics.
func (d *Domain) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
