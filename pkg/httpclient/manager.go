package httpclient

import (
	"log/slog"
	"sync"
)

// Manager maintains named circuit breakers so that multiple clients talking
// to the same upstream share failure state.
type Manager struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
	logger   *slog.Logger
}

// NewManager creates a circuit breaker manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		breakers: make(map[string]*CircuitBreaker),
		logger:   logger,
	}
}

// GetOrCreate returns the breaker registered under name, creating one from
// the given config if it does not exist yet.
func (m *Manager) GetOrCreate(name string, cfg Config) *CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if breaker, ok := m.breakers[name]; ok {
		return breaker
	}

	breaker := NewCircuitBreaker(cfg.CircuitThreshold, cfg.CircuitTimeout, cfg.CircuitHalfOpenMax)
	m.breakers[name] = breaker

	m.logger.Debug("created circuit breaker",
		slog.String("name", name),
		slog.Int("threshold", cfg.CircuitThreshold),
		slog.Duration("timeout", cfg.CircuitTimeout),
	)

	return breaker
}

// ClientFor returns a client bound to the named shared breaker.
func (m *Manager) ClientFor(name string, cfg Config) *Client {
	return NewWithBreaker(cfg, m.GetOrCreate(name, cfg))
}

// States returns a snapshot of all breaker states keyed by name.
func (m *Manager) States() map[string]CircuitState {
	m.mu.Lock()
	defer m.mu.Unlock()

	states := make(map[string]CircuitState, len(m.breakers))
	for name, breaker := range m.breakers {
		states[name] = breaker.State()
	}
	return states
}

// Reset resets the named breaker if it exists.
func (m *Manager) Reset(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if breaker, ok := m.breakers[name]; ok {
		breaker.Reset()
	}
}
