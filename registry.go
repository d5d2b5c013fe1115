package lifescope

// Binding pairs a contract key with its construction closure and lifetime.
type Binding struct {
	Key      ContractKey
	Lifetime Lifetime
	Build    Factory

	// recorded at registration time so dynamic-dispatch paths can route
	// to disposal without inspecting an opaque instance
	disposable bool
}

// Disposable reports whether the binding's product was declared disposable
// when the binding was registered.
func (b Binding) Disposable() bool {
	return b.disposable
}

// Registry maps contract keys to bindings.
//
// The registry performs no locking: bindings are established during a
// configuration phase before concurrent resolution begins. Callers that
// must register concurrently are responsible for external synchronization.
type Registry struct {
	bindings map[ContractKey]Binding
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[ContractKey]Binding, 16),
	}
}

// Register stores a binding, overwriting any existing binding for the same
// key. Last writer wins so tests can override production bindings.
func (r *Registry) Register(b Binding) error {
	if b.Build == nil {
		return &NilFactoryError{Type: b.Key.String()}
	}
	r.bindings[b.Key] = b
	return nil
}

// Lookup returns the binding for key, if one exists.
func (r *Registry) Lookup(key ContractKey) (Binding, bool) {
	b, ok := r.bindings[key]
	return b, ok
}

// Resolve invokes the construction closure bound to key.
func (r *Registry) Resolve(key ContractKey) (any, error) {
	b, ok := r.bindings[key]
	if !ok {
		return nil, &BindingNotFoundError{Type: key.String()}
	}
	return b.Build()
}

// Has reports whether a binding exists for key.
func (r *Registry) Has(key ContractKey) bool {
	_, ok := r.bindings[key]
	return ok
}

// Keys returns the registered contract keys, for diagnostics.
func (r *Registry) Keys() []ContractKey {
	keys := make([]ContractKey, 0, len(r.bindings))
	for k := range r.bindings {
		keys = append(keys, k)
	}
	return keys
}

// Child returns a new registry seeded with a full copy of the current
// bindings. Subsequent registrations in either the parent or the child do
// not affect the other, which keeps scope and test configurations isolated
// without runtime lookup chains.
func (r *Registry) Child() *Registry {
	child := &Registry{
		bindings: make(map[ContractKey]Binding, len(r.bindings)),
	}
	for k, b := range r.bindings {
		child.bindings[k] = b
	}
	return child
}
