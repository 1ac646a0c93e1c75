package scheduler

import "sync/atomic"

// Guard is a process-wide single-flight latch for one job type. A
// trigger that fires while the previous invocation of the same job is
// still running is skipped entirely; the next scheduled tick is the next
// opportunity. Guards are never persisted, so a process restart resets
// them.
type Guard struct {
	name    string
	running atomic.Bool
}

// NewGuard creates a guard for the named job type
func NewGuard(name string) *Guard {
	return &Guard{name: name}
}

// Name returns the job type this guard protects
func (g *Guard) Name() string { return g.name }

// TryAcquire attempts to take the latch. It returns false when a
// previous invocation still holds it.
func (g *Guard) TryAcquire() bool {
	return g.running.CompareAndSwap(false, true)
}

// Release frees the latch. It must run unconditionally at job exit,
// success or failure, so a failed run cannot lock the job out forever.
func (g *Guard) Release() {
	g.running.Store(false)
}
