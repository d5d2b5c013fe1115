package lifescope

import "fmt"

// NilFactoryError represents an attempt to register a nil construction closure.
type NilFactoryError struct {
	Type string
}

func (e *NilFactoryError) Error() string {
	return fmt.Sprintf("nil factory provided for contract: %s", e.Type)
}

// NilInstanceError represents an attempt to register a nil instance.
type NilInstanceError struct {
	Type string
}

func (e *NilInstanceError) Error() string {
	return fmt.Sprintf("nil instance provided for contract: %s", e.Type)
}

// BindingNotFoundError represents resolution of a contract that was never bound.
type BindingNotFoundError struct {
	Type string
}

func (e *BindingNotFoundError) Error() string {
	return fmt.Sprintf("no binding found for contract: %s", e.Type)
}

// InvalidLifetimeError represents registration under an undefined lifetime.
type InvalidLifetimeError struct {
	Type     string
	Lifetime string
}

func (e *InvalidLifetimeError) Error() string {
	return fmt.Sprintf("invalid lifetime %q for contract %s", e.Lifetime, e.Type)
}

// ConstructionError represents a construction closure failure.
// The underlying error from the closure is preserved and never retried.
type ConstructionError struct {
	Type     string
	Lifetime Lifetime
	Err      error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construction failed for %s contract %s: %v", e.Lifetime, e.Type, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// TypeMismatchError represents a resolved instance that does not satisfy
// the requested contract type.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// DisposalError represents a service teardown failure.
type DisposalError struct {
	Type string
	Err  error
}

func (e *DisposalError) Error() string {
	return fmt.Sprintf("disposal failed for %s: %v", e.Type, e.Err)
}

func (e *DisposalError) Unwrap() error {
	return e.Err
}
