package pip

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"pipdock/pkg/core"
)

var ErrAlreadyRunning = errors.New("monitoring already running")

// Poller is one pass of the control loop.
type Poller interface {
	Attempt(ctx context.Context) Result
}

// Event is sent to status listeners when monitoring starts and when it ends.
// Result is set when the run ended on a latched outcome.
type Event struct {
	Running bool
	Result  *Result
}

// Monitor drives a Poller on a fixed interval until an outcome latches or
// Stop is called.
type Monitor struct {
	log core.Logger

	mu        sync.Mutex
	poller    Poller
	interval  time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
	listeners []func(Event)

	running atomic.Bool
}

func NewMonitor(p Poller, interval time.Duration, log core.Logger) *Monitor {
	done := make(chan struct{})
	close(done)
	return &Monitor{
		log:      log,
		poller:   p,
		interval: interval,
		done:     done,
	}
}

// Configure replaces the poller and interval. It takes effect on the next
// Start.
func (m *Monitor) Configure(p Poller, interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poller = p
	m.interval = interval
}

// OnStatus registers fn for start and stop events. The stop event is
// delivered on the monitor's goroutine before Running turns false and Done
// is closed, so listeners must not call Stop or Start.
func (m *Monitor) OnStatus(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Monitor) emit(ev Event) {
	m.mu.Lock()
	listeners := make([]func(Event), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (m *Monitor) Running() bool {
	return m.running.Load()
}

// Done is closed when the current run has fully exited.
func (m *Monitor) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Start begins polling. The run ends when ctx is cancelled, Stop is called
// or an attempt latches.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if !m.running.CompareAndSwap(false, true) {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	poller, interval := m.poller, m.interval
	m.mu.Unlock()

	m.log.Info("Monitoring started", "interval", interval.String())
	m.emit(Event{Running: true})

	go m.run(runCtx, cancel, done, poller, interval)
	return nil
}

func (m *Monitor) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}, p Poller, interval time.Duration) {
	var last *Result
	defer func() {
		cancel()
		m.log.Info("Monitoring stopped")
		// Running stays true until every listener has seen the stop event.
		m.emit(Event{Running: false, Result: last})
		m.running.Store(false)
		close(done)
	}()

	for {
		res := p.Attempt(ctx)
		if ctx.Err() != nil {
			return
		}
		if res.Outcome.Latches() {
			m.log.Info("Run finished", "outcome", res.Outcome.String())
			last = &res
			return
		}
		if err := sleep(ctx, interval); err != nil {
			return
		}
	}
}

// Stop cancels the current run and waits for it to exit, so no window
// system calls or status events happen after it returns. Stopping an idle
// monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-done
}
