// Package hwproc implements the HardwareProcessor port owner named in
// spec §3's ownership paragraph: a thin pull/push bridge between a
// MIDI device stream and this module's Port model. Device enumeration
// and selection are out of scope (spec Non-goals) — a backend driver
// opens the device and hands this package the already-open stream;
// this package only exposes the seam.
package hwproc

import (
	"fmt"

	"github.com/rakyll/portmidi"

	"github.com/shaban/dawcore/port"
)

// Backend is the minimal surface hwproc needs from a MIDI device
// stream — exactly *portmidi.Stream's shape, kept as an interface so a
// test or an alternate driver can stand in without a real device.
type Backend interface {
	Read() ([]portmidi.Event, error)
	WriteShort(status, data1, data2 int64) error
	Close() error
}

// Processor is one HardwareProcessor: In carries events the hardware
// produced into the graph, Out carries events the graph produced out
// to the hardware.
type Processor struct {
	ID      string
	In      *port.Port
	Out     *port.Port
	Backend Backend
}

// New allocates a Processor's ports. The Backend is left nil — callers
// assign it once a driver has opened the device.
func New(id string, blockLength int) *Processor {
	return &Processor{
		ID:  id,
		In:  port.New(port.Config{Type: port.TypeMIDI, Flow: port.FlowOutput, Owner: port.OwnerHardwareProcessor, Label: id + " in"}, blockLength),
		Out: port.New(port.Config{Type: port.TypeMIDI, Flow: port.FlowInput, Owner: port.OwnerHardwareProcessor, Label: id + " out"}, blockLength),
	}
}

// Pull drains the backend's incoming MIDI into In's queue, to be merged
// in on the next Prepare. frameHint is stamped on every event since a
// portmidi.Event's Timestamp is wall-clock milliseconds, not a
// block-relative frame offset — spec §6's "frame offset per event"
// wire format has no direct hardware-timestamp equivalent here, so
// every event pulled in one call lands at the same frame.
func (p *Processor) Pull(frameHint uint32) error {
	if p.Backend == nil || p.In == nil {
		return nil
	}
	evs, err := p.Backend.Read()
	if err != nil {
		return fmt.Errorf("hwproc %q: read: %w", p.ID, err)
	}
	for _, e := range evs {
		raw := [3]byte{byte(e.Status), byte(e.Data1), byte(e.Data2)}
		p.In.QueueMIDI(port.Event{Frame: frameHint, Raw: raw, Len: 3})
	}
	return nil
}

// Push writes every event queued on Out's active list to the backend.
func (p *Processor) Push() error {
	if p.Backend == nil || p.Out == nil {
		return nil
	}
	for _, ev := range p.Out.MIDIEvents() {
		if err := p.Backend.WriteShort(int64(ev.Raw[0]), int64(ev.Raw[1]), int64(ev.Raw[2])); err != nil {
			return fmt.Errorf("hwproc %q: write: %w", p.ID, err)
		}
	}
	return nil
}

// Close releases the backend stream, if any.
func (p *Processor) Close() error {
	if p.Backend == nil {
		return nil
	}
	return p.Backend.Close()
}
