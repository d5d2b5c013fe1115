package lifescope

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultScopeTimeout is how long a request scope may sit idle before
	// the sweeper disposes it.
	DefaultScopeTimeout = 60 * time.Second
	// DefaultSweepInterval is how often the sweeper scans for idle scopes.
	DefaultSweepInterval = time.Second
)

type scopeEntry struct {
	scope      *Container
	lastAccess time.Time
}

// ScopeManager creates one container scope per request identifier and
// disposes scopes whose idle time exceeds the configured timeout. It is
// the only component expected to call CreateScope and Dispose on a timer;
// the container itself stays passive.
type ScopeManager struct {
	root          *Container
	timeout       time.Duration
	sweepInterval time.Duration
	log           *zap.Logger

	mu     sync.Mutex
	scopes map[string]*scopeEntry

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// ManagerOption configures a ScopeManager.
type ManagerOption func(*ScopeManager)

// WithScopeTimeout sets the idle timeout after which a scope is evicted.
func WithScopeTimeout(d time.Duration) ManagerOption {
	return func(m *ScopeManager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithSweepInterval sets how often the background sweeper runs.
func WithSweepInterval(d time.Duration) ManagerOption {
	return func(m *ScopeManager) {
		if d > 0 {
			m.sweepInterval = d
		}
	}
}

// WithManagerLogger sets the manager's logger.
func WithManagerLogger(log *zap.Logger) ManagerOption {
	return func(m *ScopeManager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewScopeManager starts a manager over the given root container,
// including its background sweeper. Call Close to stop it.
func NewScopeManager(root *Container, opts ...ManagerOption) *ScopeManager {
	m := &ScopeManager{
		root:          root,
		timeout:       DefaultScopeTimeout,
		sweepInterval: DefaultSweepInterval,
		log:           zap.NewNop(),
		scopes:        make(map[string]*scopeEntry),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.sweep()
	return m
}

// GetOrCreateScope returns the scope for requestID, creating it on first
// access. Every call refreshes the scope's idle clock.
func (m *ScopeManager) GetOrCreateScope(requestID string) *Container {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.scopes[requestID]; ok {
		entry.lastAccess = time.Now()
		return entry.scope
	}

	m.log.Debug("creating request scope", zap.String("request", requestID))
	scope := m.root.CreateScope()
	m.scopes[requestID] = &scopeEntry{
		scope:      scope,
		lastAccess: time.Now(),
	}
	return scope
}

// GetScope returns the existing scope for requestID without creating one.
// A hit refreshes the scope's idle clock.
func (m *ScopeManager) GetScope(requestID string) (*Container, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.scopes[requestID]
	if !ok {
		return nil, false
	}
	entry.lastAccess = time.Now()
	return entry.scope, true
}

// RemoveScope disposes and removes the scope for requestID, reporting
// whether it existed.
func (m *ScopeManager) RemoveScope(requestID string) bool {
	m.mu.Lock()
	entry, ok := m.scopes[requestID]
	if ok {
		delete(m.scopes, requestID)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.log.Debug("removing request scope", zap.String("request", requestID))
	if err := entry.scope.Dispose(); err != nil {
		m.log.Error("request scope disposal failed",
			zap.String("request", requestID),
			zap.Error(err))
	}
	return true
}

// ScopeCount returns the number of live request scopes.
func (m *ScopeManager) ScopeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scopes)
}

// Close stops the sweeper and disposes every remaining scope. Idempotent.
func (m *ScopeManager) Close() error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.done

	m.mu.Lock()
	remaining := m.scopes
	m.scopes = make(map[string]*scopeEntry)
	m.mu.Unlock()

	for requestID, entry := range remaining {
		if err := entry.scope.Dispose(); err != nil {
			m.log.Error("request scope disposal failed",
				zap.String("request", requestID),
				zap.Error(err))
		}
	}
	return nil
}

// sweep is the background eviction loop: it wakes on a fixed interval,
// removes expired scopes from the map under lock, then disposes them
// outside the lock, independent of any in-flight resolution.
func (m *ScopeManager) sweep() {
	defer close(m.done)

	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			var expired []*scopeEntry
			m.mu.Lock()
			for requestID, entry := range m.scopes {
				if now.Sub(entry.lastAccess) > m.timeout {
					m.log.Debug("evicting idle request scope", zap.String("request", requestID))
					expired = append(expired, entry)
					delete(m.scopes, requestID)
				}
			}
			m.mu.Unlock()

			for _, entry := range expired {
				if err := entry.scope.Dispose(); err != nil {
					m.log.Error("idle scope disposal failed", zap.Error(err))
				}
			}
		}
	}
}
