// Package port implements the typed audio/CV/MIDI/Control I/O ports that
// make up the processing graph's edges: buffers, gain-multiplied fan-in
// summation, and the metering ring buffers consumed by non-realtime code.
package port

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Type identifies the kind of signal a Port carries.
type Type int

const (
	TypeAudio Type = iota
	TypeCV
	TypeMIDI
	TypeControl
)

func (t Type) String() string {
	switch t {
	case TypeAudio:
		return "audio"
	case TypeCV:
		return "cv"
	case TypeMIDI:
		return "midi"
	case TypeControl:
		return "control"
	default:
		return "unknown"
	}
}

// Flow identifies whether a Port receives or emits signal.
type Flow int

const (
	FlowInput Flow = iota
	FlowOutput
)

// Owner identifies the kind of object that created a Port, per spec §3:
// "exactly one owner". Owners are referenced elsewhere by ID, never by
// pointer, per the Design Notes on cyclic back-references.
type OwnerKind int

const (
	OwnerTrack OwnerKind = iota
	OwnerPlugin
	OwnerFader
	OwnerChannel
	OwnerEngine
	OwnerHardwareProcessor
)

// Flag is a bitmask of Port behavior traits.
type Flag uint32

const (
	FlagAmplitude Flag = 1 << iota
	FlagStereoBalance
	FlagToggle
	FlagFaderMute
	FlagFaderSolo
	FlagFaderListen
	FlagFaderMonoCompat
	FlagFaderSwapPhase
	FlagAutomatable
	FlagChannelFader
)

func (f Flag) Has(flag Flag) bool { return f&flag != 0 }

// Range describes the valid value range of a Control-type port.
type Range struct {
	Min  float32
	Max  float32
	Zero float32
}

// ID is a stable, process-wide unique Port identifier. Ports are never
// referenced by pointer across ownership boundaries — only by ID — so that
// connections and graphs can outlive a single owner's lifetime view.
type ID uint64

// Event is a single MIDI event carried by a MIDI-type port. Raw holds the
// up-to-3-byte channel message payload (status, data1, data2); Frame is the
// offset in [0, nframes) at which the event fires within the current block.
type Event struct {
	Frame uint32
	Raw   [3]byte
	Len   int
}

// Port is one node of the graph's typed I/O surface.
type Port struct {
	id    ID
	typ   Type
	flow  Flow
	owner OwnerKind

	label  string
	symbol string
	rng    Range
	flags  Flag

	exposed bool

	mu sync.Mutex

	audioBuf []float32
	midiBuf  []Event // active events for the current block, frame-sorted

	queuedMIDI []Event // events queued since the last Prepare, moved into midiBuf by the next one

	meter *MeterRing

	connsIn []*Connection
}

// Config describes a Port at creation time.
type Config struct {
	ID     ID
	Type   Type
	Flow   Flow
	Owner  OwnerKind
	Label  string
	Symbol string
	Range  Range
	Flags  Flag
}

// New creates a Port sized for the given initial block length. Buffers are
// reallocated by Realloc on a buffer-size change.
func New(cfg Config, blockLength int) *Port {
	p := &Port{
		id:     cfg.ID,
		typ:    cfg.Type,
		flow:   cfg.Flow,
		owner:  cfg.Owner,
		label:  cfg.Label,
		symbol: cfg.Symbol,
		rng:    cfg.Range,
		flags:  cfg.Flags,
	}
	switch cfg.Type {
	case TypeAudio, TypeCV:
		p.audioBuf = make([]float32, blockLength)
	case TypeControl:
		// Control ports hold a single persistent value rather than a
		// per-block buffer; Prepare never clears it.
		p.audioBuf = []float32{cfg.Range.Zero}
	}
	return p
}

func (p *Port) ID() ID          { return p.id }
func (p *Port) Type() Type      { return p.typ }
func (p *Port) Flow() Flow      { return p.flow }
func (p *Port) Owner() OwnerKind { return p.owner }
func (p *Port) Label() string   { return p.label }
func (p *Port) Symbol() string  { return p.symbol }
func (p *Port) Range() Range    { return p.rng }
func (p *Port) Flags() Flag     { return p.flags }

// Buffer exposes the raw audio/CV buffer for direct read/write by the
// owner's processing code. Its length always equals the current block size
// per spec §8's invariant.
func (p *Port) Buffer() []float32 { return p.audioBuf }

// MIDIEvents returns the active, frame-sorted event list for the current
// block. Callers must not retain the returned slice past the next Prepare.
func (p *Port) MIDIEvents() []Event { return p.midiBuf }

// QueueMIDI appends an event to be merged in on the next Prepare/Process
// cycle (used by non-realtime producers such as a piano-roll "manual
// press" or an external MIDI-in callback).
func (p *Port) QueueMIDI(ev Event) {
	p.mu.Lock()
	p.queuedMIDI = append(p.queuedMIDI, ev)
	p.mu.Unlock()
}

// Realloc resizes the audio/CV buffer to match a new block length. Must
// only be called while the port-operation lock is held (§4.9, §5) — never
// from the audio thread mid-cycle.
func (p *Port) Realloc(blockLength int) {
	if p.typ == TypeAudio || p.typ == TypeCV {
		p.audioBuf = make([]float32, blockLength)
	}
}

// Prepare zeroes the audio/CV buffer and clears the active MIDI event
// list, retaining any events queued by a non-realtime producer since the
// last Prepare (spec §4.1).
func (p *Port) Prepare(nframes int) {
	switch p.typ {
	case TypeAudio, TypeCV:
		for i := range p.audioBuf[:nframes] {
			p.audioBuf[i] = 0
		}
	case TypeMIDI:
		p.mu.Lock()
		p.midiBuf = p.midiBuf[:0]
		if len(p.queuedMIDI) > 0 {
			p.midiBuf = append(p.midiBuf, p.queuedMIDI...)
			p.queuedMIDI = p.queuedMIDI[:0]
			sortEvents(p.midiBuf)
		}
		p.mu.Unlock()
	}
}

func sortEvents(evs []Event) {
	sort.Slice(evs, func(i, j int) bool { return evs[i].Frame < evs[j].Frame })
}

// Process sums every enabled incoming connection's source buffer, scaled by
// its multiplier, into this port's buffer (audio/CV fan-in), or merges
// incoming MIDI event lists in frame order (spec §4.1).
func (p *Port) Process(nframes int) {
	switch p.typ {
	case TypeAudio, TypeCV:
		for _, c := range p.connsIn {
			if !c.Enabled() {
				continue
			}
			src := c.src.audioBuf
			mult := c.Multiplier()
			n := nframes
			if n > len(src) {
				n = len(src)
			}
			dst := p.audioBuf
			for i := 0; i < n; i++ {
				dst[i] += src[i] * mult
			}
		}
	case TypeMIDI:
		merged := false
		for _, c := range p.connsIn {
			if !c.Enabled() {
				continue
			}
			if len(c.src.midiBuf) == 0 {
				continue
			}
			p.midiBuf = append(p.midiBuf, c.src.midiBuf...)
			merged = true
		}
		if merged {
			sortEvents(p.midiBuf)
		}
	}
	if p.exposed && p.meter != nil && (p.typ == TypeAudio || p.typ == TypeCV) {
		p.meter.Push(p.audioBuf[:nframes])
	}
}

// ExposeToBackend marks this port as visible at the audio-I/O boundary.
// Idempotent. Only exposed audio ports write metering blocks.
func (p *Port) ExposeToBackend(exposed bool) {
	if p.exposed == exposed {
		return
	}
	p.exposed = exposed
	if exposed && p.meter == nil && (p.typ == TypeAudio || p.typ == TypeCV) {
		p.meter = NewMeterRing(DefaultMeterBlocks, len(p.audioBuf))
	}
}

// IsExposed reports whether ExposeToBackend(true) is currently in effect.
func (p *Port) IsExposed() bool { return p.exposed }

// Meter returns the port's metering ring, or nil if not exposed.
func (p *Port) Meter() *MeterRing { return p.meter }

// ErrAlreadyConnected is returned by Connect when a connection for the
// given (src, dst) pair already exists (spec §3 uniqueness invariant).
var ErrAlreadyConnected = fmt.Errorf("port: connection already exists for this (src, dst) pair")

// ErrTypeMismatch is returned by Connect when src and dst carry
// different signal types — the graph never fans MIDI into an audio
// sink or vice versa.
var ErrTypeMismatch = fmt.Errorf("port: source and destination types do not match")

// Connect creates a Connection from this port to dst, applying multiplier
// and recording whether it is locked against casual editing. Fails with
// ErrAlreadyConnected if a connection between the two ports already
// exists, or ErrTypeMismatch if src and dst carry different Types.
func (p *Port) Connect(dst *Port, multiplier float32, locked bool) (*Connection, error) {
	if p.typ != dst.typ {
		return nil, ErrTypeMismatch
	}
	for _, c := range dst.connsIn {
		if c.src == p {
			return nil, ErrAlreadyConnected
		}
	}
	c := &Connection{src: p, dst: dst, locked: locked}
	c.multiplier.Store(math.Float32bits(multiplier))
	c.enabled.Store(true)
	dst.connsIn = append(dst.connsIn, c)
	return c, nil
}


// Incoming returns the connections feeding this port, in an undefined but
// stable order for the lifetime of the slice.
func (p *Port) Incoming() []*Connection { return p.connsIn }
