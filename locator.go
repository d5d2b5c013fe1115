package lifescope

import (
	"errors"
	"reflect"

	"go.uber.org/zap"
)

// Locator is the convenience surface the host application uses: instance
// and factory registration shortcuts, named resolution with a best-effort
// fallback to the unnamed binding, and request-scoped resolution through
// an owned ScopeManager.
type Locator struct {
	root   *Container
	scopes *ScopeManager
	log    *zap.Logger
}

// LocatorOption configures a Locator.
type LocatorOption func(*locatorConfig)

type locatorConfig struct {
	log         *zap.Logger
	managerOpts []ManagerOption
}

// WithLocatorLogger sets the logger shared by the locator, its root
// container, and its scope manager.
func WithLocatorLogger(log *zap.Logger) LocatorOption {
	return func(cfg *locatorConfig) {
		if log != nil {
			cfg.log = log
		}
	}
}

// WithScopeOptions forwards options to the locator's scope manager.
func WithScopeOptions(opts ...ManagerOption) LocatorOption {
	return func(cfg *locatorConfig) {
		cfg.managerOpts = append(cfg.managerOpts, opts...)
	}
}

// NewLocator creates a locator with a fresh root container and a running
// scope manager. Call Dispose at shutdown.
func NewLocator(opts ...LocatorOption) *Locator {
	cfg := locatorConfig{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	root := New(WithLogger(cfg.log))
	managerOpts := append([]ManagerOption{WithManagerLogger(cfg.log)}, cfg.managerOpts...)
	return &Locator{
		root:   root,
		scopes: NewScopeManager(root, managerOpts...),
		log:    cfg.log,
	}
}

// Container returns the root container.
func (l *Locator) Container() *Container {
	return l.root
}

// Scopes returns the locator's request scope manager.
func (l *Locator) Scopes() *ScopeManager {
	return l.scopes
}

// CreateScope returns a new child scope of the root container. The caller
// owns its disposal.
func (l *Locator) CreateScope() *Container {
	return l.root.CreateScope()
}

// Dispose stops the scope manager, disposes every live request scope, and
// tears down the root container. Idempotent.
func (l *Locator) Dispose() error {
	return errors.Join(l.scopes.Close(), l.root.Dispose())
}

// RegisterInstance registers an existing instance as a singleton for the
// contract type T.
func RegisterInstance[T any](l *Locator, instance T) error {
	return registerInstance(l, KeyOf[T](), instance)
}

// RegisterNamedInstance registers an existing instance as a named
// singleton for the contract type T.
func RegisterNamedInstance[T any](l *Locator, name string, instance T) error {
	return registerInstance(l, NamedKeyOf[T](name), instance)
}

func registerInstance[T any](l *Locator, key ContractKey, instance T) error {
	if isNil(instance) {
		return &NilInstanceError{Type: key.String()}
	}
	return l.root.Register(key, func() (any, error) { return instance, nil }, LifetimeSingleton)
}

// RegisterFactory registers a typed construction closure for T.
func RegisterFactory[T any](l *Locator, build func() (T, error), lifetime Lifetime, opts ...RegisterOption) error {
	return Register[T](l.root, build, lifetime, opts...)
}

// RegisterNamedFactory registers a typed construction closure for T under
// a name.
func RegisterNamedFactory[T any](l *Locator, name string, build func() (T, error), lifetime Lifetime, opts ...RegisterOption) error {
	return RegisterNamed[T](l.root, name, build, lifetime, opts...)
}

// Get resolves T from the root container.
func Get[T any](l *Locator) (T, error) {
	return Resolve[T](l.root)
}

// GetNamed resolves the named binding of T, falling back to the unnamed
// binding when no binding exists under that name.
func GetNamed[T any](l *Locator, name string) (T, error) {
	return getNamed[T](l.root, name)
}

// GetForRequest resolves T inside the scope owned by requestID, creating
// the scope on first use.
func GetForRequest[T any](l *Locator, requestID string) (T, error) {
	scope := l.scopes.GetOrCreateScope(requestID)
	return Resolve[T](scope)
}

// GetNamedForRequest resolves the named binding of T inside the scope
// owned by requestID, with the same fallback as GetNamed.
func GetNamedForRequest[T any](l *Locator, name, requestID string) (T, error) {
	scope := l.scopes.GetOrCreateScope(requestID)
	return getNamed[T](scope, name)
}

func getNamed[T any](c *Container, name string) (T, error) {
	if c.Bound(NamedKeyOf[T](name)) {
		return ResolveNamed[T](c, name)
	}
	return Resolve[T](c)
}

// isNil guards against typed-nil instances slipping past an any check.
func isNil(instance any) bool {
	if instance == nil {
		return true
	}
	v := reflect.ValueOf(instance)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}
