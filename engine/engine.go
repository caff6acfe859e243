// Package engine implements the AudioEngine (spec §4.10): per-callback
// cycle orchestration (process_prepare → router kick → post_process →
// fill_out_bufs), the cross-thread event queue, and denormal
// prevention. Grounded on the teacher's root `Engine`/`Dispatcher`
// (engine.go, dispatcher.go) generalized from an AVFoundation wrapper
// into a pure-Go deterministic cycle loop, and on `engine/queue`'s
// single-consumer serialization idiom for the event pump.
package engine

import (
	"fmt"
	"sync"

	"github.com/shaban/dawcore/graph"
	"github.com/shaban/dawcore/port"
	"github.com/shaban/dawcore/region"
	"github.com/shaban/dawcore/transport"
)

// Engine is the cycle orchestrator. One Engine drives exactly one audio
// thread's worth of process() calls (spec §5); mutation of its Graph
// must go through the port-operation lock this type owns.
type Engine struct {
	mu  sync.Mutex // guards run/cfg/processingEvents against control-thread writers
	run bool
	cfg Config

	opLock           sync.Mutex
	processingEvents bool

	cycleID uint64
	events  *EventQueue
	fault   *Fault

	Metrics Metrics
	Logger  Logger

	Transport *transport.Transport
	Graph     *graph.Graph

	MasterL *port.Port
	MasterR *port.Port

	outL, outR []float32

	wasRolling       bool
	remainingPreroll int64
}

// New creates an Engine over an already-wired Transport and Graph,
// bound to the given master/monitor output ports that fill_out_bufs
// copies into the scratch buffers Process returns.
func New(cfg Config, tr *transport.Transport, g *graph.Graph, masterL, masterR *port.Port) (*Engine, error) {
	resolved, err := ResolveConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       resolved,
		events:    NewEventQueue(),
		fault:     &Fault{},
		Metrics:   NoopMetrics{},
		Logger:    FmtLogger{},
		Transport: tr,
		Graph:     g,
		MasterL:   masterL,
		MasterR:   masterR,
		outL:      make([]float32, resolved.BlockLength),
		outR:      make([]float32, resolved.BlockLength),
	}, nil
}

// Activate corresponds to the backend driver's engine.activate(run)
// call (spec §6): true starts cycle processing, false makes every
// subsequent Process call emit silence and skip the graph.
func (e *Engine) Activate(run bool) {
	e.mu.Lock()
	e.run = run
	e.mu.Unlock()
}

// PushEvent enqueues a cross-thread control event (spec §4.10). Safe to
// call from any thread; returns false if the queue is at MaxEvents.
func (e *Engine) PushEvent(ev Event) bool {
	return e.events.Push(ev)
}

// Fault returns the current sticky audio-thread error, or nil.
func (e *Engine) Fault() error {
	return e.fault.Err()
}

// DrainEvents is the non-realtime event pump (spec §4.10): it must be
// called by the control thread, never the audio thread, since handle
// performs the port-operation-lock-guarded buffer reallocation.
func (e *Engine) DrainEvents(handle func(Event) error) error {
	e.mu.Lock()
	e.processingEvents = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.processingEvents = false
		e.mu.Unlock()
	}()

	e.opLock.Lock()
	defer e.opLock.Unlock()
	return e.events.Drain(handle)
}

// HandleBufferSizeChange is the default handle passed to DrainEvents
// for a BufferSizeChange event: it reallocates every port the caller
// names and the engine's own scratch output buffers. Must run with the
// port-operation lock held, which DrainEvents already guarantees.
func (e *Engine) HandleBufferSizeChange(newBlockLength int, ports ...*port.Port) error {
	if !recognizedBlockLengths[newBlockLength] {
		return fmt.Errorf("%w: %d", ErrBufferSizeUnsupported, newBlockLength)
	}
	for _, p := range ports {
		p.Realloc(newBlockLength)
	}
	e.mu.Lock()
	e.cfg.BlockLength = newBlockLength
	e.outL = make([]float32, newBlockLength)
	e.outR = make([]float32, newBlockLength)
	e.mu.Unlock()
	return nil
}

// Process runs one audio-thread cycle for nframes and returns the
// master output buffers, trimmed to nframes (spec §4.10's pseudocode).
// Never blocks and never returns an error: faults are recorded via
// Fault/Metrics instead, matching spec §7's realtime-path policy.
func (e *Engine) Process(nframes int) (outL, outR []float32) {
	e.cycleID++
	cycleID := e.cycleID

	e.ensureScratch(nframes)

	if !e.opLock.TryLock() {
		e.clearOutputBuffers(nframes)
		return e.outL[:nframes], e.outR[:nframes]
	}
	defer e.opLock.Unlock()

	e.mu.Lock()
	run := e.run
	processingEvents := e.processingEvents
	e.mu.Unlock()

	if !run || !e.events.Empty() || processingEvents {
		e.clearOutputBuffers(nframes)
		return e.outL[:nframes], e.outR[:nframes]
	}

	e.trackPrerollEdge()

	remaining := nframes
	offset := 0
	for remaining > 0 {
		split := e.splitForBoundary(remaining)

		e.processPrepare(split)

		startFrame := e.Transport.TicksToFrames(e.Transport.PlayheadTicks)
		ti := region.TimeInfo{GStartFrame: startFrame, LocalOffset: int64(offset), NFrames: split}
		for _, err := range e.Graph.Run(ti) {
			e.fault.Set(err)
		}

		roll := int64(0)
		if e.Transport.IsRolling {
			preroll := split
			if e.remainingPreroll < int64(preroll) {
				preroll = int(e.remainingPreroll)
			}
			e.remainingPreroll -= int64(preroll)
			roll = int64(split - preroll)
		}
		e.Transport.PostProcess(roll)

		remaining -= split
		offset += split
	}

	e.fillOutBufs(nframes, cycleID)
	return e.outL[:nframes], e.outR[:nframes]
}

// splitForBoundary bounds a sub-block to remaining, mirroring the
// spec's "min(remaining, frames_until_next_loop_or_preroll_boundary())".
// This module has no separate loop-boundary split requirement beyond
// what Transport.PostProcess's own wrap arithmetic already handles per
// call, so the boundary is remaining itself — the loop exists to keep
// the shape spec §4.10 names, and to be the hook a future loop-aware
// split would extend.
func (e *Engine) splitForBoundary(remaining int) int {
	return remaining
}

func (e *Engine) ensureScratch(nframes int) {
	if len(e.outL) >= nframes {
		return
	}
	e.outL = make([]float32, nframes)
	e.outR = make([]float32, nframes)
}

func (e *Engine) clearOutputBuffers(nframes int) {
	for i := 0; i < nframes; i++ {
		e.outL[i] = 0
		e.outR[i] = 0
	}
}

// processPrepare clears buffers and dequeues MIDI by walking every node
// the graph knows via its own Prepare hooks — this module's Prepare
// closures already do that per node (spec §4.10: "process_prepare
// (clear buffers, dequeue MIDI)").
func (e *Engine) processPrepare(split int) {
	if e.MasterL != nil {
		e.MasterL.Prepare(split)
	}
	if e.MasterR != nil {
		e.MasterR.Prepare(split)
	}
}

// fillOutBufs copies the master output ports into the engine's scratch
// buffers the backend reads, applying the denormal-prevention bias
// (spec §4.10).
func (e *Engine) fillOutBufs(nframes int, cycleID uint64) {
	bias := DenormalPreventionValue(cycleID)
	if e.MasterL != nil {
		copy(e.outL[:nframes], e.MasterL.Buffer()[:nframes])
	}
	if e.MasterR != nil {
		copy(e.outR[:nframes], e.MasterR.Buffer()[:nframes])
	}
	applyDenormalBias(e.outL[:nframes], bias)
	applyDenormalBias(e.outR[:nframes], bias)
}

// trackPrerollEdge resets remainingPreroll to Transport.PrerollFrames
// the cycle transport starts rolling (spec §4.9's "remaining_latency_preroll
// on transport start").
func (e *Engine) trackPrerollEdge() {
	if e.Transport.IsRolling && !e.wasRolling {
		e.remainingPreroll = e.Transport.PrerollFrames
	}
	e.wasRolling = e.Transport.IsRolling
}
