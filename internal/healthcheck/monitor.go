// Package healthcheck tracks the reachability of the backing stores.
package healthcheck

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is anything that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Interval    time.Duration // default 15s
	Timeout     time.Duration // default 2s
	MaxFailures int           // consecutive failures before unhealthy, default 2
}

// Monitor pings its dependencies in the background and keeps the results,
// so health requests never wait on a slow store.
type Monitor struct {
	mu       sync.RWMutex
	pingers  map[string]Pinger
	statuses map[string]*Status
	order    []string

	interval    time.Duration
	timeout     time.Duration
	maxFailures int
	logger      *zap.Logger
	now         func() time.Time
}

func NewMonitor(cfg Config, logger *zap.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 2
	}

	return &Monitor{
		pingers:     make(map[string]Pinger),
		statuses:    make(map[string]*Status),
		interval:    cfg.Interval,
		timeout:     cfg.Timeout,
		maxFailures: cfg.MaxFailures,
		logger:      logger,
		now:         time.Now,
	}
}

// Add registers a dependency. It counts as healthy until a check says otherwise.
func (m *Monitor) Add(name string, p Pinger) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.pingers[name]; !exists {
		m.order = append(m.order, name)
	}
	m.pingers[name] = p
	m.statuses[name] = &Status{Name: name, IsHealthy: true, LastCheck: m.now()}
}

// Start checks every dependency once, then again on each interval until
// ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	m.CheckAll(ctx)

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.CheckAll(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// CheckAll pings every dependency concurrently and waits for the results.
func (m *Monitor) CheckAll(ctx context.Context) {
	m.mu.RLock()
	pingers := make(map[string]Pinger, len(m.pingers))
	for name, p := range m.pingers {
		pingers[name] = p
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for name, p := range pingers {
		wg.Add(1)
		go func(name string, p Pinger) {
			defer wg.Done()

			pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			m.record(name, p.Ping(pingCtx))
		}(name, p)
	}
	wg.Wait()
}

func (m *Monitor) record(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := m.statuses[name]
	now := m.now()
	status.LastCheck = now

	if err == nil {
		status.LastSuccess = now
		status.LastError = ""
		status.FailureCount = 0
		if !status.IsHealthy {
			m.logger.Info("dependency recovered", zap.String("dependency", name))
			status.IsHealthy = true
		}
		return
	}

	status.LastFailure = now
	status.LastError = err.Error()
	status.FailureCount++

	if status.IsHealthy && status.FailureCount >= m.maxFailures {
		m.logger.Warn("dependency unhealthy",
			zap.String("dependency", name),
			zap.Int("failures", status.FailureCount),
			zap.Error(err),
		)
		status.IsHealthy = false
	}
}

// Statuses returns a copy of every dependency's status in registration order.
func (m *Monitor) Statuses() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Status, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, *m.statuses[name])
	}
	return out
}

// OverallHealth is Healthy with no dependencies registered.
func (m *Monitor) OverallHealth() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	healthy := 0
	for _, status := range m.statuses {
		if status.IsHealthy {
			healthy++
		}
	}

	switch {
	case healthy == len(m.statuses):
		return Healthy
	case healthy == 0:
		return Unhealthy
	default:
		return Degraded
	}
}
