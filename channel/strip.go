package channel

import (
	"fmt"

	"github.com/shaban/dawcore/plugin"
	"github.com/shaban/dawcore/port"
)

// strip returns the strip's fixed slot order: MidiFx, then Instrument,
// then Inserts. A slot's nearest occupied predecessor/successor search
// walking this single concatenated order reproduces every rule in
// channel.cpp's wiring table ("MidiFx sees no previous outside MidiFx",
// "Inserts sees MidiFx/Instrument when no insert precedes", "Instrument
// sees MidiFx as predecessor") without needing per-kind special cases.
func (c *Channel) strip() []*plugin.Wrapper {
	s := make([]*plugin.Wrapper, 0, 2*StripSize+1)
	for i := range c.MidiFx {
		s = append(s, c.MidiFx[i])
	}
	s = append(s, c.Instrument)
	for i := range c.Inserts {
		s = append(s, c.Inserts[i])
	}
	return s
}

// Rewire rebuilds the port connections along the strip: TrackProcessor →
// first occupied slot → … → last occupied slot → Prefader. An empty
// strip connects TrackProcessor straight to Prefader (channel.cpp's
// "neither previous nor next" case).
func (c *Channel) Rewire() error {
	prevOut := c.sourcePorts()
	for _, w := range c.strip() {
		if w == nil {
			continue
		}
		if err := connectPairs(prevOut, w.In); err != nil {
			return fmt.Errorf("channel: rewire into %q: %w", w.Name, err)
		}
		prevOut = w.Out
	}
	if err := connectPairs(prevOut, c.sinkPorts(prevOut)); err != nil {
		return fmt.Errorf("channel: rewire into prefader: %w", err)
	}
	if err := c.connectPrefaderToFader(); err != nil {
		return fmt.Errorf("channel: rewire prefader into fader: %w", err)
	}
	return nil
}

// connectPrefaderToFader wires the fixed Prefader→Fader edge, which
// never changes shape with the strip's plugin contents.
func (c *Channel) connectPrefaderToFader() error {
	if c.Prefader == nil || c.Fader == nil {
		return nil
	}
	if c.Prefader.MidiOut != nil && c.Fader.MidiIn != nil {
		return connectPairs([]*port.Port{c.Prefader.MidiOut}, []*port.Port{c.Fader.MidiIn})
	}
	return connectPairs([]*port.Port{c.Prefader.StereoOutL, c.Prefader.StereoOutR},
		[]*port.Port{c.Fader.StereoInL, c.Fader.StereoInR})
}

// sourcePorts returns the TrackProcessor output feeding the first
// occupied strip slot: MIDI for a MIDI track, stereo audio otherwise.
func (c *Channel) sourcePorts() []*port.Port {
	if c.trackproc == nil {
		return nil
	}
	if c.trackproc.MIDIOut != nil {
		return []*port.Port{c.trackproc.MIDIOut}
	}
	return []*port.Port{c.trackproc.StereoOutL, c.trackproc.StereoOutR}
}

// sinkPorts returns the Prefader input matching prevOut's rail. A strip
// that ends on the MIDI rail with no audio-producing Instrument has
// nothing typed to hand the (audio) Prefader — that channel instead
// exposes its own midi_out directly, per spec §3's `midi_out |
// (stereo_out_l, stereo_out_r)` alternative, so no connection is made.
func (c *Channel) sinkPorts(prevOut []*port.Port) []*port.Port {
	if c.Prefader == nil {
		return nil
	}
	if len(prevOut) > 0 && prevOut[0] != nil && prevOut[0].Type() == port.TypeMIDI {
		if c.Prefader.MidiIn != nil {
			return []*port.Port{c.Prefader.MidiIn}
		}
		return nil
	}
	return []*port.Port{c.Prefader.StereoInL, c.Prefader.StereoInR}
}

// connectPairs connects out[i]→in[i] for each index present on both
// sides, skipping nil ports (an incomplete audio/MIDI rail pairing). Any
// connection already feeding in[i] from a previous Rewire is dropped
// first — each strip slot's input has exactly one logical predecessor,
// so re-wiring always replaces rather than adds to it (channel.cpp's
// "removing a plugin rewires prev↔next" applies equally to inserting
// one).
func connectPairs(out, in []*port.Port) error {
	n := len(out)
	if len(in) < n {
		n = len(in)
	}
	for i := 0; i < n; i++ {
		if out[i] == nil || in[i] == nil {
			continue
		}
		disconnectIncoming(in[i])
		if _, err := out[i].Connect(in[i], 1.0, false); err != nil && err != port.ErrAlreadyConnected {
			return err
		}
	}
	return nil
}

// disconnectIncoming removes every connection currently feeding dst.
func disconnectIncoming(dst *port.Port) {
	for _, c := range append([]*port.Connection(nil), dst.Incoming()...) {
		c.Disconnect()
	}
}
