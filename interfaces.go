package lifescope

import "reflect"

// Lifetime defines the sharing behavior of a service produced by a binding.
type Lifetime string

// Available service lifetimes
const (
	// LifetimeTransient creates a new instance for each resolution
	LifetimeTransient Lifetime = "transient"
	// LifetimeScoped shares an instance within a single scope
	LifetimeScoped Lifetime = "scoped"
	// LifetimeSingleton shares a single instance across the root container
	// and every scope created after the instance was materialized
	LifetimeSingleton Lifetime = "singleton"
)

// Valid reports whether l is one of the defined lifetimes.
func (l Lifetime) Valid() bool {
	switch l {
	case LifetimeTransient, LifetimeScoped, LifetimeSingleton:
		return true
	}
	return false
}

// Factory is a zero-argument construction closure producing a concrete
// instance satisfying the bound contract.
type Factory func() (any, error)

// Disposable is implemented by services that hold external resources and
// need deterministic teardown when their owning scope is disposed.
type Disposable interface {
	Dispose() error
}

var disposableType = reflect.TypeOf((*Disposable)(nil)).Elem()

// ContractKey identifies a registered contract type, optionally qualified
// by a name so the same contract can carry multiple named bindings.
// Keys are opaque: equality and map usage are the only operations the
// container performs on them.
type ContractKey struct {
	Type reflect.Type
	Name string
}

func (k ContractKey) String() string {
	if k.Type == nil {
		return "<nil>"
	}
	if k.Name == "" {
		return k.Type.String()
	}
	return k.Type.String() + "#" + k.Name
}

// KeyOf returns the contract key for type T.
func KeyOf[T any]() ContractKey {
	return ContractKey{Type: reflect.TypeOf((*T)(nil)).Elem()}
}

// NamedKeyOf returns the contract key for type T qualified by name.
func NamedKeyOf[T any](name string) ContractKey {
	return ContractKey{Type: reflect.TypeOf((*T)(nil)).Elem(), Name: name}
}
