// Package channel implements the Channel strip (spec §4.7): the fixed
// MidiFx/Instrument/Inserts plugin slots wired around the
// TrackProcessor→strip→Prefader→Fader signal path, plus auxiliary
// sends. Strip wiring rules and slot removal follow
// original_source/src/gui/backend/channel.cpp; the base
// name/volume/mute/send surface is grounded on the teacher's
// engine/channel.Channel and BaseChannel.
package channel

import (
	"fmt"

	"github.com/shaban/dawcore/fader"
	"github.com/shaban/dawcore/plugin"
	"github.com/shaban/dawcore/port"
	"github.com/shaban/dawcore/trackproc"
)

// StripSize is the fixed number of MidiFx and Insert slots per channel.
const StripSize = 9

// Send is an auxiliary routing tap off a channel's fader (post-fader) or
// prefader (pre-fader) output, implemented directly as a gain-multiplied
// port.Connection rather than bespoke mixing code — the port model
// already does gain-multiplied fan-in summation (spec §4.1), so a send
// is nothing more than a second Connect from the tap point.
type Send struct {
	DestinationTrackID uint64
	PreFader           bool
	connL, connR       *port.Connection
}

// SetLevel adjusts the send's gain without touching the routing.
func (s *Send) SetLevel(level float32) {
	if s.connL != nil {
		s.connL.SetMultiplier(level)
	}
	if s.connR != nil {
		s.connR.SetMultiplier(level)
	}
}

// SetMuted enables or disables the send's connections without removing
// them, matching Connection's Enabled flag (spec §4.1).
func (s *Send) SetMuted(muted bool) {
	if s.connL != nil {
		s.connL.SetEnabled(!muted)
	}
	if s.connR != nil {
		s.connR.SetEnabled(!muted)
	}
}

// Channel is one track's fixed plugin strip plus prefader, fader, and
// sends (spec §3 Channel data model).
type Channel struct {
	TrackID uint64
	IsMIDI  bool

	MidiFx     [StripSize]*plugin.Wrapper
	Instrument *plugin.Wrapper
	Inserts    [StripSize]*plugin.Wrapper

	Prefader *fader.Fader
	Fader    *fader.Fader

	Sends []*Send

	OutputTrackID uint64 // 0 = routes to master

	trackproc *trackproc.Processor
}

// New builds an empty Channel strip wired to the given track processor's
// output; plugins and sends are added with SetMidiFx/SetInstrument/
// SetInsert/AddSend, and the Set* methods rewire the strip themselves.
func New(trackID uint64, isMIDI bool, tp *trackproc.Processor, prefader, fdr *fader.Fader) *Channel {
	return &Channel{
		TrackID:   trackID,
		IsMIDI:    isMIDI,
		Prefader:  prefader,
		Fader:     fdr,
		trackproc: tp,
	}
}

func (c *Channel) errSlotRange(kind string, s int) error {
	return fmt.Errorf("channel: %s slot %d out of range [0,%d)", kind, s, StripSize)
}

// SetMidiFx installs w at MidiFx slot s (nil to clear) and rewires the
// strip around it.
func (c *Channel) SetMidiFx(s int, w *plugin.Wrapper) error {
	if s < 0 || s >= StripSize {
		return c.errSlotRange("midi fx", s)
	}
	c.MidiFx[s] = w
	return c.Rewire()
}

// SetInstrument installs or clears the instrument slot and rewires.
func (c *Channel) SetInstrument(w *plugin.Wrapper) error {
	c.Instrument = w
	return c.Rewire()
}

// SetInsert installs w at Insert slot s (nil to clear) and rewires.
func (c *Channel) SetInsert(s int, w *plugin.Wrapper) error {
	if s < 0 || s >= StripSize {
		return c.errSlotRange("insert", s)
	}
	c.Inserts[s] = w
	return c.Rewire()
}

// AddSend creates a new send tapped from the fader (or prefader, if
// preFader) output, connected to dst's stereo input ports at the given
// level.
func (c *Channel) AddSend(dstTrackID uint64, level float32, preFader bool, dstL, dstR *port.Port) (*Send, error) {
	src := c.Fader
	if preFader {
		src = c.Prefader
	}
	if src == nil || src.StereoOutL == nil || src.StereoOutR == nil {
		return nil, fmt.Errorf("channel: send source has no stereo output")
	}
	connL, err := src.StereoOutL.Connect(dstL, level, false)
	if err != nil {
		return nil, fmt.Errorf("channel: send connect L: %w", err)
	}
	connR, err := src.StereoOutR.Connect(dstR, level, false)
	if err != nil {
		return nil, fmt.Errorf("channel: send connect R: %w", err)
	}
	s := &Send{DestinationTrackID: dstTrackID, PreFader: preFader, connL: connL, connR: connR}
	c.Sends = append(c.Sends, s)
	return s, nil
}

// RemoveSend drops the send at index i.
func (c *Channel) RemoveSend(i int) error {
	if i < 0 || i >= len(c.Sends) {
		return fmt.Errorf("channel: send index %d out of range", i)
	}
	c.Sends = append(c.Sends[:i], c.Sends[i+1:]...)
	return nil
}
