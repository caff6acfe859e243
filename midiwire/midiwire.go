// Package midiwire bridges this module's port.Event wire format
// (spec §6: "standard 3-byte channel messages... frame offset per
// event") to gitlab.com/gomidi/midi/v2's Message type, so construction
// and inspection of channel messages goes through a real MIDI library
// instead of hand-rolled byte math. Grounded on the teacher's own
// dependency (go.mod) and on vsariola-sointu's
// tracker/gomidi/midi.go, which decodes incoming gomidi Messages with
// the same Get*-method style used here.
package midiwire

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/shaban/dawcore/port"
)

// ToMessage converts a port.Event's raw bytes into a gomidi Message.
func ToMessage(ev port.Event) midi.Message {
	return midi.Message(ev.Raw[:ev.Len])
}

// FromMessage builds a port.Event from a gomidi Message at the given
// frame offset within the current block. ok is false if msg is longer
// than the 3-byte channel messages this module's Port carries (spec
// §6); system-exclusive and other long messages are not supported.
func FromMessage(msg midi.Message, frame uint32) (ev port.Event, ok bool) {
	raw := []byte(msg)
	if len(raw) == 0 || len(raw) > 3 {
		return port.Event{}, false
	}
	ev.Frame = frame
	ev.Len = len(raw)
	copy(ev.Raw[:], raw)
	return ev, true
}

// NoteOn builds a note-on port.Event via midi.NoteOn.
func NoteOn(frame uint32, channel, key, velocity uint8) port.Event {
	ev, _ := FromMessage(midi.NoteOn(channel, key, velocity), frame)
	return ev
}

// NoteOff builds a note-off port.Event via midi.NoteOff.
func NoteOff(frame uint32, channel, key, velocity uint8) port.Event {
	ev, _ := FromMessage(midi.NoteOffVelocity(channel, key, velocity), frame)
	return ev
}

// ControlChange builds a CC port.Event via midi.ControlChange — used by
// fader.Fader's CCVolume mode (spec §4.6) to emit a volume CC from the
// fader's gain control.
func ControlChange(frame uint32, channel, controller, value uint8) port.Event {
	ev, _ := FromMessage(midi.ControlChange(channel, controller, value), frame)
	return ev
}

// Channel extracts the MIDI channel nibble from a channel-voice
// message, trying each gomidi Get* decoder in turn the way
// vsariola-sointu's HandleMessage/NextEvent does for note messages.
// For the remaining channel-voice kinds (control change, program
// change, pitch bend, aftertouch) the channel nibble is read directly
// off the status byte — every channel-voice status shares that layout,
// and gomidi's per-kind decoders all hand the channel back as their
// first out-param in the same style, so this is the kind-agnostic
// equivalent for a 3-byte-or-shorter message. ok is false for an empty
// event or a status byte outside the channel-voice range (0x80-0xEF).
func Channel(ev port.Event) (channel uint8, ok bool) {
	msg := ToMessage(ev)
	var key, velocity uint8
	if msg.GetNoteOn(&channel, &key, &velocity) {
		return channel, true
	}
	if msg.GetNoteOff(&channel, &key, &velocity) {
		return channel, true
	}
	raw := []byte(msg)
	if len(raw) == 0 || raw[0] < 0x80 || raw[0] > 0xEF {
		return 0, false
	}
	return raw[0] & 0x0F, true
}
