package lifescope

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// slot is a cache entry with a single-claim state machine: the first
// resolver to reach the slot runs the construction closure inside once,
// racing losers block on once and observe the winner's result. The map
// lock is never held while a closure runs, so cross-key recursive
// construction cannot deadlock on it. Closures must still not resolve
// their own key from the cache they are being constructed under.
type slot struct {
	once  sync.Once
	ready atomic.Bool
	value any
	err   error
}

// materialize builds the slot's value exactly once. onNew runs only in the
// claiming goroutine, after a successful construction.
func (s *slot) materialize(build Factory, onNew func(any)) (any, error) {
	s.once.Do(func() {
		s.value, s.err = build()
		if s.err == nil && onNew != nil {
			onNew(s.value)
		}
		s.ready.Store(true)
	})
	return s.value, s.err
}

var scopeIDs atomic.Uint64

// Cache owns the lifetime state of one scope: the singleton cache, the
// scoped-instance cache, and the disposal list. The two caches have
// independent locks so singleton reads never contend with scoped reads.
type Cache struct {
	id       uint64
	parentID uint64 // diagnostic only, never used for resolution

	singletonsMu sync.RWMutex
	singletons   map[ContractKey]*slot

	scopedMu sync.RWMutex
	scoped   map[ContractKey]*slot

	disposablesMu sync.Mutex
	disposables   []Disposable

	log *zap.Logger
}

// NewCache creates a root lifetime cache. A nil logger disables logging.
func NewCache(log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		id:         scopeIDs.Add(1),
		singletons: make(map[ContractKey]*slot, 16),
		scoped:     make(map[ContractKey]*slot, 16),
		log:        log,
	}
}

// ID returns the cache's scope identifier.
func (c *Cache) ID() uint64 {
	return c.id
}

// ParentID returns the identifier of the scope this cache was created
// from, or zero for a root cache.
func (c *Cache) ParentID() uint64 {
	return c.parentID
}

// Instance returns an instance built from build under the given lifetime.
//
// Transient invokes build immediately and never caches. Singleton and
// Scoped claim a slot in the corresponding cache so that all callers
// racing on the same key observe the same instance. Disposable products
// of Scoped and Transient bindings are tracked for teardown; singletons
// outlive every scope and are not tracked.
func (c *Cache) Instance(key ContractKey, build Factory, lifetime Lifetime) (any, error) {
	switch lifetime {
	case LifetimeSingleton:
		return c.cached(&c.singletonsMu, c.singletons, key, build, false)
	case LifetimeScoped:
		return c.cached(&c.scopedMu, c.scoped, key, build, true)
	case LifetimeTransient:
		instance, err := build()
		if err != nil {
			return nil, err
		}
		c.track(instance)
		return instance, nil
	default:
		return nil, &InvalidLifetimeError{Type: key.String(), Lifetime: string(lifetime)}
	}
}

// ScopedInstanceByKey is the key-driven variant of the scoped path, used
// when the caller dispatches from registry metadata rather than a static
// type parameter.
func (c *Cache) ScopedInstanceByKey(key ContractKey, build Factory) (any, error) {
	return c.cached(&c.scopedMu, c.scoped, key, build, true)
}

func (c *Cache) cached(mu *sync.RWMutex, m map[ContractKey]*slot, key ContractKey, build Factory, track bool) (any, error) {
	mu.RLock()
	s, ok := m[key]
	mu.RUnlock()

	if !ok {
		mu.Lock()
		// re-check: another resolver may have claimed the slot while we
		// waited for the write lock
		s, ok = m[key]
		if !ok {
			s = &slot{}
			m[key] = s
		}
		mu.Unlock()
	}

	onNew := func(instance any) {
		if track {
			c.track(instance)
		}
	}
	return s.materialize(build, onNew)
}

// track appends the instance to the disposal list if it is disposable.
func (c *Cache) track(instance any) {
	d, ok := instance.(Disposable)
	if !ok {
		return
	}
	c.disposablesMu.Lock()
	c.disposables = append(c.disposables, d)
	c.disposablesMu.Unlock()
}

// Track registers a disposable for teardown with this scope. Exposed for
// callers that construct instances outside the cache but want them torn
// down with the scope.
func (c *Cache) Track(d Disposable) {
	if d == nil {
		return
	}
	c.disposablesMu.Lock()
	c.disposables = append(c.disposables, d)
	c.disposablesMu.Unlock()
}

// CreateScope allocates a child cache. The child's singleton cache is
// seeded with the parent's materialized entries at this moment: instances
// already resolved are shared, while singletons still unresolved (or still
// under construction) will be built independently by whichever side
// resolves them first. The child's scoped cache and disposal list start
// empty. The parent reference is informational only.
func (c *Cache) CreateScope() *Cache {
	child := NewCache(c.log)
	child.parentID = c.id

	c.singletonsMu.RLock()
	for k, s := range c.singletons {
		if s.ready.Load() && s.err == nil {
			child.singletons[k] = s
		}
	}
	c.singletonsMu.RUnlock()

	c.log.Debug("created scope",
		zap.Uint64("scope", child.id),
		zap.Uint64("parent", c.id))
	return child
}

// Dispose tears down every tracked disposable in reverse registration
// order, exactly once, then clears the scoped-instance cache. Repeated
// calls are idempotent: the second call finds an empty disposal list.
func (c *Cache) Dispose() error {
	c.disposablesMu.Lock()
	list := c.disposables
	c.disposables = nil
	c.disposablesMu.Unlock()

	var errs []error
	for i := len(list) - 1; i >= 0; i-- {
		if err := list[i].Dispose(); err != nil {
			c.log.Error("disposal failed",
				zap.Uint64("scope", c.id),
				zap.String("instance", fmt.Sprintf("%T", list[i])),
				zap.Error(err))
			errs = append(errs, &DisposalError{
				Type: fmt.Sprintf("%T", list[i]),
				Err:  err,
			})
		}
	}

	c.scopedMu.Lock()
	c.scoped = make(map[ContractKey]*slot)
	c.scopedMu.Unlock()

	if len(list) > 0 {
		c.log.Debug("disposed scope",
			zap.Uint64("scope", c.id),
			zap.Int("instances", len(list)))
	}
	return errors.Join(errs...)
}
