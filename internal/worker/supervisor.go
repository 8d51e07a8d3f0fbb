package worker

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"skiff/internal/log"
)

// Supervisor spawns named one-shot units of background work. A unit
// that returns an error or panics has the failure captured into the
// Registry under its name; it is never allowed to crash the process
// and it is never retried. Retry policy, when wanted, lives inside the
// operation itself.
type Supervisor struct {
	registry *Registry
	wg       sync.WaitGroup
}

// NewSupervisor creates a supervisor reporting into the given registry.
func NewSupervisor(registry *Registry) *Supervisor {
	return &Supervisor{registry: registry}
}

// Go starts op as an independent goroutine. The name identifies the
// unit in diagnostics and in any failure record it produces.
func (s *Supervisor) Go(name string, op func() error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v\n%s", r, debug.Stack())
				log.WithOrigin(name).Error("background unit panicked")
				s.registry.Add(name, err)
			}
		}()
		if err := op(); err != nil {
			log.WithOrigin(name).Errorf("background unit failed: %v", err)
			s.registry.Add(name, err)
		}
	}()
}

// Wait blocks until every spawned unit has returned. Tests use it to
// observe spawns deterministically.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// WaitTimeout waits for in-flight units to drain, giving up after d.
// There is no hard cancellation of a unit; a false return means some
// operation was still running when the timeout expired. The shutdown
// sequencer uses this to bound the "stop remaining sync" step.
func (s *Supervisor) WaitTimeout(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
