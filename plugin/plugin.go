// Package plugin implements the opaque black-box plugin facade (spec
// §4.1/§6/§9): a uniform (prepare, process) wrapper around whatever DSP a
// plugin format provides, plus the failed/bypassed state the graph wires
// around instead of removing from the strip.
package plugin

import (
	"errors"
	"fmt"

	"github.com/shaban/dawcore/port"
	"github.com/shaban/dawcore/region"
)

// State is a plugin slot's lifecycle/runtime state.
type State int

const (
	StateOK State = iota
	StateFailed
	StateBypassed
)

// ErrPluginUnderrun is returned (and remembered for the rest of the
// cycle) when a plugin writes fewer frames than requested — spec §9's
// Open Question decision: plugins are required to always fill exactly
// nframes, and a short write is treated as equivalent to a failure for
// that cycle.
var ErrPluginUnderrun = errors.New("plugin: wrote fewer frames than requested")

// Backend is what a concrete plugin format (AU/VST/LV2/CLAP/SFZ —
// all out of scope here, spec §1) must provide. Process returns how many
// frames it actually wrote.
type Backend interface {
	Instantiate() error
	Prepare(sampleRate float64, blockLength int) error
	Process(ti region.TimeInfo) (framesWritten int, err error)
	Disconnect() error
}

// Wrapper is one plugin slot in a Channel's strip (spec §4.1 "Plugin
// wrapper"). In/Out are the plugin's exposed ports, paired by index for
// the bypass/failed wire-around.
type Wrapper struct {
	Name    string
	Backend Backend
	State   State
	In      []*port.Port
	Out     []*port.Port

	failedThisCycle bool
}

// New creates a plugin slot bound to backend, not yet instantiated.
func New(name string, backend Backend, in, out []*port.Port) *Wrapper {
	return &Wrapper{Name: name, Backend: backend, In: in, Out: out}
}

// Instantiate loads the backend. On failure the slot is marked Failed
// rather than returning an unusable Wrapper — spec §7's
// PluginInstantiationFailed policy ("mark plugin failed, bypass in
// graph").
func (w *Wrapper) Instantiate() error {
	if err := w.Backend.Instantiate(); err != nil {
		w.State = StateFailed
		return fmt.Errorf("plugin %q: instantiate: %w", w.Name, err)
	}
	return nil
}

// Prepare resets the per-cycle underrun flag and forwards to the backend.
func (w *Wrapper) Prepare(sampleRate float64, blockLength int) error {
	w.failedThisCycle = false
	if w.State == StateFailed {
		return nil
	}
	if err := w.Backend.Prepare(sampleRate, blockLength); err != nil {
		w.State = StateFailed
		return fmt.Errorf("plugin %q: prepare: %w", w.Name, err)
	}
	return nil
}

// Process runs one block (spec §4.1). A Failed or Bypassed slot, or one
// that has already underrun this cycle, is wired around: input ports are
// copied straight to the paired output ports instead of running the
// backend.
func (w *Wrapper) Process(ti region.TimeInfo) error {
	if w.State != StateOK || w.failedThisCycle {
		w.wireAround(ti.NFrames)
		return nil
	}
	n, err := w.Backend.Process(ti)
	if err != nil {
		w.failedThisCycle = true
		w.wireAround(ti.NFrames)
		return fmt.Errorf("plugin %q: process: %w", w.Name, err)
	}
	if n < ti.NFrames {
		w.failedThisCycle = true
		w.wireAround(ti.NFrames)
		return fmt.Errorf("plugin %q: %w (%d/%d frames)", w.Name, ErrPluginUnderrun, n, ti.NFrames)
	}
	return nil
}

func (w *Wrapper) wireAround(nframes int) {
	n := len(w.In)
	if len(w.Out) < n {
		n = len(w.Out)
	}
	for i := 0; i < n; i++ {
		dst := w.Out[i].Buffer()
		src := w.In[i].Buffer()
		m := nframes
		if len(dst) < m {
			m = len(dst)
		}
		if len(src) < m {
			m = len(src)
		}
		copy(dst[:m], src[:m])
	}
}

// SetBypassed toggles the explicit user bypass, independent of Failed.
func (w *Wrapper) SetBypassed(bypassed bool) {
	if w.State == StateFailed {
		return
	}
	if bypassed {
		w.State = StateBypassed
	} else {
		w.State = StateOK
	}
}
