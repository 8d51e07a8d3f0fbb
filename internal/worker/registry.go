// Package worker coordinates skiff's background goroutines: one-shot
// reporting units spawned by the Supervisor and long-lived periodic
// workers (lease renewal, heartbeat). Failures from any of them land in
// a shared Registry that the event loop consults every iteration.
package worker

import (
	"fmt"
	"strings"
	"sync"
)

// Record captures one failure from a background unit of work.
type Record struct {
	Err    error  // What went wrong
	Origin string // Diagnostic name of the unit that raised it
}

func (r Record) String() string {
	return fmt.Sprintf("%s: %v", r.Origin, r.Err)
}

// Registry is the process-wide, append-only collector of background
// failures. It supports concurrent writers and a single reader. Once it
// is non-empty the event loop treats that as a termination request.
type Registry struct {
	mu      sync.Mutex
	records []Record
	notify  func()
}

// NewRegistry creates an empty registry. It is constructed once by the
// session and passed by reference; there is no ambient global.
func NewRegistry() *Registry {
	return &Registry{}
}

// SetNotify registers a callback invoked after every Add. The event
// loop uses it to break out of its blocking read when a failure lands,
// so the stop condition is seen within one iteration.
func (r *Registry) SetNotify(fn func()) {
	r.mu.Lock()
	r.notify = fn
	r.mu.Unlock()
}

// Add appends a failure record. Safe to call from any goroutine.
func (r *Registry) Add(origin string, err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	r.records = append(r.records, Record{Err: err, Origin: origin})
	notify := r.notify
	r.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// Len returns the number of captured failures.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Empty reports whether no failures have been captured.
func (r *Registry) Empty() bool {
	return r.Len() == 0
}

// Records returns a copy of the captured failures in arrival order.
func (r *Registry) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Report renders the aggregated failures as a human-readable block,
// one line per {origin, error} pair.
func (r *Registry) Report() string {
	records := r.Records()
	if len(records) == 0 {
		return ""
	}
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "%s\n", rec)
	}
	return b.String()
}
