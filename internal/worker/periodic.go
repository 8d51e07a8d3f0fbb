package worker

import (
	"sync"
	"time"

	"skiff/internal/log"
)

// Periodic is a long-lived background worker: sleep a fixed interval,
// perform one unit of work, repeat until stopped. Unlike Supervisor
// units these loops are availability-critical — a failed iteration is
// recorded in the Registry but does not stop subsequent iterations.
// The session runs two of them: lock lease renewal and keep-alive pings.
type Periodic struct {
	name     string
	interval time.Duration
	op       func() error
	registry *Registry

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	started  bool
	mu       sync.Mutex
}

// NewPeriodic creates a periodic worker. The op runs once per interval
// until Stop is called.
func NewPeriodic(name string, interval time.Duration, registry *Registry, op func() error) *Periodic {
	return &Periodic{
		name:     name,
		interval: interval,
		op:       op,
		registry: registry,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name returns the worker's diagnostic name.
func (p *Periodic) Name() string {
	return p.name
}

// Start launches the loop. Calling Start more than once has no effect.
func (p *Periodic) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.loop()
}

func (p *Periodic) loop() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			if err := p.op(); err != nil {
				log.WithOrigin(p.name).Errorf("iteration failed: %v", err)
				p.registry.Add(p.name, err)
			}
		}
	}
}

// Stop prevents the next iteration from starting. It is idempotent, is
// safe to call before Start, and never interrupts an in-flight
// operation: the loop exits within one interval.
func (p *Periodic) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if started {
		<-p.done
	}
}
