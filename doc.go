// Package lifescope is an in-process service container with
// lifetime-scoped object management.
//
// Bindings pair a contract key with a zero-argument construction closure
// and a lifetime: singleton (one per root), scoped (one per scope), or
// transient (one per resolution). Scopes are isolated resolution contexts
// with their own caches and disposal lists; disposing a scope tears down
// its disposable instances in reverse construction order, exactly once.
//
// Resolution is safe for concurrent use. Registration is a configuration
// phase and is expected to finish before concurrent resolution begins.
//
// A note on child-scope singletons: a scope seeds its singleton cache
// with a point-in-time copy of the parent's materialized entries. A
// singleton resolved before the scope was created is therefore shared;
// a singleton first resolved afterwards is constructed independently on
// each side. Resolve process-wide singletons once at bootstrap if this
// matters to you.
//
// The ScopeManager and RequestScope middleware layer a per-request scope
// lifecycle on top, evicting idle request scopes on a background timer.
package lifescope
