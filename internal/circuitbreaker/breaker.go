// Package circuitbreaker stops calling a failing backend for a cool-down
// period instead of letting every request wait on it.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without calling the backend while the circuit is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type Config struct {
	Name            string
	MaxFailures     int           // consecutive failures before opening, default 5
	Cooldown        time.Duration // how long to stay open, default 30s
	HalfOpenSuccess int           // trial successes needed to close, default 1

	// OnStateChange, when set, is called with the lock released.
	OnStateChange func(name string, from, to State)
}

type Breaker struct {
	mu              sync.Mutex
	name            string
	state           State
	failureCount    int
	successCount    int
	openedAt        time.Time
	lastStateChange time.Time

	maxFailures     int
	cooldown        time.Duration
	halfOpenSuccess int
	onStateChange   func(name string, from, to State)
	now             func() time.Time
}

// Snapshot is the breaker state reported on the admin status endpoint.
type Snapshot struct {
	Name            string    `json:"name"`
	State           string    `json:"state"`
	FailureCount    int       `json:"failure_count"`
	LastStateChange time.Time `json:"last_state_change"`
}

func New(cfg Config) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.HalfOpenSuccess <= 0 {
		cfg.HalfOpenSuccess = 1
	}

	b := &Breaker{
		name:            cfg.Name,
		state:           StateClosed,
		maxFailures:     cfg.MaxFailures,
		cooldown:        cfg.Cooldown,
		halfOpenSuccess: cfg.HalfOpenSuccess,
		onStateChange:   cfg.OnStateChange,
		now:             time.Now,
	}
	b.lastStateChange = b.now()
	return b
}

// Execute runs fn unless the circuit is open. A cancelled or expired ctx is
// the caller giving up, so it does not count against the backend.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.before(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil {
		return err
	}

	b.after(err)
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	if b.state != StateOpen {
		b.mu.Unlock()
		return nil
	}
	if b.now().Sub(b.openedAt) < b.cooldown {
		b.mu.Unlock()
		return ErrCircuitOpen
	}
	change := b.transition(StateHalfOpen)
	b.mu.Unlock()

	change()
	return nil
}

func (b *Breaker) after(err error) {
	b.mu.Lock()
	change := b.record(err)
	b.mu.Unlock()

	change()
}

// record updates counters and returns the state change callback to run
// once the lock is released.
func (b *Breaker) record(err error) func() {
	if err != nil {
		b.failureCount++
		if b.state == StateHalfOpen || b.failureCount >= b.maxFailures {
			b.openedAt = b.now()
			b.successCount = 0
			return b.transition(StateOpen)
		}
		return func() {}
	}

	switch b.state {
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.halfOpenSuccess {
			b.failureCount = 0
			return b.transition(StateClosed)
		}
	case StateClosed:
		b.failureCount = 0
	}
	return func() {}
}

func (b *Breaker) transition(to State) func() {
	from := b.state
	if from == to {
		return func() {}
	}
	b.state = to
	b.lastStateChange = b.now()

	if b.onStateChange == nil {
		return func() {}
	}
	return func() { b.onStateChange(b.name, from, to) }
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset closes the circuit.
func (b *Breaker) Reset() {
	b.mu.Lock()
	change := b.transition(StateClosed)
	b.failureCount = 0
	b.successCount = 0
	b.mu.Unlock()

	change()
}

func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Snapshot{
		Name:            b.name,
		State:           b.state.String(),
		FailureCount:    b.failureCount,
		LastStateChange: b.lastStateChange,
	}
}
