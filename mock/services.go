package mock

import (
	"sync"
	"sync/atomic"
)

// Logger is the shared application-wide test contract.
type Logger interface {
	Log(msg string)
	Lines() []string
}

// MemoryLogger records log lines in memory.
type MemoryLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *MemoryLogger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, msg)
}

func (l *MemoryLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Greeter is the per-scope test contract.
type Greeter interface {
	Greet(name string) string
}

// ScopedGreeter greets through a shared logger.
type ScopedGreeter struct {
	Logger Logger
}

func (g *ScopedGreeter) Greet(name string) string {
	g.Logger.Log("greeting " + name)
	return "hello, " + name
}

// Service is a per-resolution test value depending on a Greeter.
type Service struct {
	Greeter Greeter
}

// DisposeRecorder captures the order in which tracked resources were
// disposed, across goroutines.
type DisposeRecorder struct {
	mu    sync.Mutex
	order []string
}

func (r *DisposeRecorder) record(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, id)
}

func (r *DisposeRecorder) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// TrackedResource reports its disposal to a recorder and counts how many
// times Dispose ran.
type TrackedResource struct {
	ID       string
	Recorder *DisposeRecorder
	disposed atomic.Int32
}

func (t *TrackedResource) Dispose() error {
	t.disposed.Add(1)
	if t.Recorder != nil {
		t.Recorder.record(t.ID)
	}
	return nil
}

func (t *TrackedResource) DisposeCount() int {
	return int(t.disposed.Load())
}

// FailingResource always fails to dispose.
type FailingResource struct {
	Err error
}

func (f *FailingResource) Dispose() error {
	return f.Err
}

// Counter tracks how many instances a factory constructed.
type Counter struct {
	n atomic.Int64
}

func (c *Counter) Inc() int64 {
	return c.n.Add(1)
}

func (c *Counter) Count() int64 {
	return c.n.Load()
}
