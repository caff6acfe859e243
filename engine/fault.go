package engine

import "sync"

// Fault is the sticky audio-thread error slot. Spec §7 requires the
// realtime path to never return an error from its per-cycle hot
// functions; instead it records a fault here and emits silence, and a
// non-realtime reader (UI, tests) observes and clears it. Generalizes
// the teacher's ErrorHandler interface (errors.go) into a single
// lock-guarded slot rather than a callback, since the audio thread must
// never call out to arbitrary user code mid-cycle.
type Fault struct {
	mu  sync.Mutex
	err error
}

// Set records err, overwriting any previous fault. Safe to call from
// the audio thread.
func (f *Fault) Set(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// Err returns the current fault, or nil.
func (f *Fault) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Clear drops the current fault.
func (f *Fault) Clear() {
	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
}
