package lifescope

import (
	"fmt"

	"go.uber.org/zap"
)

// Container composes a binding registry with a lifetime cache and applies
// the per-lifetime rules for resolution and scope creation.
//
// Containers are explicit values: there is no package-level default
// instance. Create an application-lifetime container once at process
// start, pass it where it is needed, and dispose it at shutdown.
type Container struct {
	registry *Registry
	cache    *Cache
	log      *zap.Logger
}

// Option configures a container.
type Option func(*Container)

// WithLogger sets the logger used by the container and its lifetime cache.
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates an empty root container.
func New(opts ...Option) *Container {
	c := &Container{
		registry: NewRegistry(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = NewCache(c.log)
	return c
}

// RegisterOption configures a single binding.
type RegisterOption func(*Binding)

// AsDisposable marks the binding's product as disposable at registration
// time. The generic Register derives this automatically when the contract
// type itself implements Disposable; use this option when only the
// concrete product does and the binding is registered dynamically.
func AsDisposable() RegisterOption {
	return func(b *Binding) {
		b.disposable = true
	}
}

// Register binds a construction closure to key under the given lifetime.
// Re-registering a key overwrites the previous binding. Registration is
// expected to happen before concurrent resolution begins.
func (c *Container) Register(key ContractKey, build Factory, lifetime Lifetime, opts ...RegisterOption) error {
	if build == nil {
		return &NilFactoryError{Type: key.String()}
	}
	if !lifetime.Valid() {
		return &InvalidLifetimeError{Type: key.String(), Lifetime: string(lifetime)}
	}
	b := Binding{Key: key, Lifetime: lifetime, Build: build}
	for _, opt := range opts {
		opt(&b)
	}
	return c.registry.Register(b)
}

// Register binds a typed construction closure to the contract type T.
func Register[T any](c *Container, build func() (T, error), lifetime Lifetime, opts ...RegisterOption) error {
	key := KeyOf[T]()
	if build == nil {
		return &NilFactoryError{Type: key.String()}
	}
	if key.Type.Implements(disposableType) {
		opts = append(opts, AsDisposable())
	}
	return c.Register(key, func() (any, error) { return build() }, lifetime, opts...)
}

// RegisterNamed binds a typed construction closure under a named key,
// allowing multiple bindings of the same contract type.
func RegisterNamed[T any](c *Container, name string, build func() (T, error), lifetime Lifetime, opts ...RegisterOption) error {
	key := NamedKeyOf[T](name)
	if build == nil {
		return &NilFactoryError{Type: key.String()}
	}
	if key.Type.Implements(disposableType) {
		opts = append(opts, AsDisposable())
	}
	return c.Register(key, func() (any, error) { return build() }, lifetime, opts...)
}

// Resolve returns an instance for key, cached according to the lifetime
// the key was registered with. Construction failures are logged with the
// contract identity and propagated unchanged inside a ConstructionError;
// they are never retried or swallowed.
func (c *Container) Resolve(key ContractKey) (any, error) {
	b, ok := c.registry.Lookup(key)
	if !ok {
		return nil, &BindingNotFoundError{Type: key.String()}
	}
	instance, err := c.cache.Instance(key, b.Build, b.Lifetime)
	if err != nil {
		c.log.Error("construction failed",
			zap.String("contract", key.String()),
			zap.String("lifetime", string(b.Lifetime)),
			zap.Error(err))
		return nil, &ConstructionError{Type: key.String(), Lifetime: b.Lifetime, Err: err}
	}
	return instance, nil
}

// Resolve returns a typed instance for the contract type T.
func Resolve[T any](c *Container) (T, error) {
	return resolveKey[T](c, KeyOf[T]())
}

// ResolveNamed returns a typed instance for the named binding of T.
func ResolveNamed[T any](c *Container, name string) (T, error) {
	return resolveKey[T](c, NamedKeyOf[T](name))
}

func resolveKey[T any](c *Container, key ContractKey) (T, error) {
	var zero T
	instance, err := c.Resolve(key)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Expected: key.Type.String(),
			Got:      fmt.Sprintf("%T", instance),
		}
	}
	return typed, nil
}

// Bound reports whether a binding exists for key.
func (c *Container) Bound(key ContractKey) bool {
	return c.registry.Has(key)
}

// Registry returns the container's binding registry.
func (c *Container) Registry() *Registry {
	return c.registry
}

// Cache returns the container's lifetime cache.
func (c *Container) Cache() *Cache {
	return c.cache
}

// CreateScope produces a child container with a snapshot copy of the
// bindings and a child lifetime cache. The per-lifetime behavior of the
// child follows from that composition:
//
//   - Singleton: the child keeps the parent's construction closure, and
//     the cache snapshot shares every singleton materialized before this
//     call. A singleton not yet resolved by either side is constructed
//     independently by whichever side resolves it first.
//   - Scoped: the child keeps the original unwrapped closure and caches
//     its product in the child's own scoped cache, so a new scope always
//     constructs a fresh instance and never inherits the parent's.
//   - Transient: every resolution through the child invokes the closure
//     fresh and routes disposable products into the child's disposal
//     list, so disposing the child cleans up transients created by it.
//
// Registrations made on either side after this call are not visible to
// the other.
func (c *Container) CreateScope() *Container {
	return &Container{
		registry: c.registry.Child(),
		cache:    c.cache.CreateScope(),
		log:      c.log,
	}
}

// Dispose tears down every disposable instance this container's scope
// produced, in reverse construction order. Safe to call more than once.
func (c *Container) Dispose() error {
	return c.cache.Dispose()
}
