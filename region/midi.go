package region

import (
	"fmt"

	"github.com/shaban/dawcore/port"
)

// TimeInfo mirrors the plugin black box's process() time parameter (spec
// §6): the timeline frame this call starts at, the offset inside the
// engine's current block this sub-call begins writing to, and how many
// frames it covers. Callers are expected to have already split their
// range with FramesTillNextLoopOrEnd so no loop wrap falls inside a
// single TimeInfo span.
type TimeInfo struct {
	GStartFrame int64
	LocalOffset int64
	NFrames     int
}

const (
	midiNoteOn  = 0x90
	midiNoteOff = 0x80
)

func noteEvent(status byte, channel, pitch, velocity uint8, frame uint32) port.Event {
	return port.Event{
		Frame: frame,
		Raw:   [3]byte{status | (channel & 0x0F), pitch, velocity},
		Len:   3,
	}
}

// FillMidiEvents emits the note-on/note-off events that fall inside this
// call's window for MidiRegion and ChordRegion kinds (spec §4.3). Event
// frames are offsets inside [0, nframes) relative to ti.LocalOffset.
// addNoteOffAtEnd requests boundary cleanup; endIsRegionOrLoopBoundary
// tells whether this call's end actually lands on a boundary (loop wrap
// or region end — which one is derived from r.EndPos and ti).
func (r *Region) FillMidiEvents(ti TimeInfo, addNoteOffAtEnd, endIsRegionOrLoopBoundary bool, out *[]port.Event) error {
	switch r.Kind {
	case KindMidi:
		r.fillFromNotes(ti, addNoteOffAtEnd, endIsRegionOrLoopBoundary, out)
		return nil
	case KindChord:
		r.fillFromChords(ti, addNoteOffAtEnd, endIsRegionOrLoopBoundary, out)
		return nil
	default:
		return errInvalidKindForMidi(r.Kind)
	}
}

func errInvalidKindForMidi(k Kind) error {
	return fmt.Errorf("region: FillMidiEvents called on a %s region", k)
}

func (r *Region) fillFromNotes(ti TimeInfo, addNoteOffAtEnd, endIsBoundary bool, out *[]port.Event) {
	localStart := r.TimelineFramesToLocal(ti.GStartFrame, true)
	localEnd := localStart + int64(ti.NFrames)
	isLoopWrap := endIsBoundary && ti.GStartFrame+int64(ti.NFrames) != r.EndPos

	for _, n := range r.Notes {
		if n.StartLocal >= localStart && n.StartLocal < localEnd {
			offset := uint32(n.StartLocal-localStart) + uint32(ti.LocalOffset)
			*out = append(*out, noteEvent(midiNoteOn, n.Channel, n.Pitch, n.Velocity, offset))
		}
		if n.EndLocal >= localStart && n.EndLocal < localEnd {
			offset := uint32(n.EndLocal-localStart) + uint32(ti.LocalOffset)
			*out = append(*out, noteEvent(midiNoteOff, n.Channel, n.Pitch, 0, offset))
		}
	}

	if !endIsBoundary || !addNoteOffAtEnd {
		return
	}
	lastOffset := uint32(ti.NFrames-1) + uint32(ti.LocalOffset)
	if isLoopWrap {
		*out = append(*out, port.Event{Frame: lastOffset, Raw: [3]byte{0xB0, 0x7B, 0x00}, Len: 3})
		return
	}
	for _, n := range r.Notes {
		if n.StartLocal < localEnd && n.EndLocal >= localEnd {
			*out = append(*out, noteEvent(midiNoteOff, n.Channel, n.Pitch, 0, lastOffset))
		}
	}
}

func (r *Region) fillFromChords(ti TimeInfo, addNoteOffAtEnd, endIsBoundary bool, out *[]port.Event) {
	localStart := r.TimelineFramesToLocal(ti.GStartFrame, true)
	localEnd := localStart + int64(ti.NFrames)
	isLoopWrap := endIsBoundary && ti.GStartFrame+int64(ti.NFrames) != r.EndPos

	for idx, c := range r.Chords {
		if c.LocalPos < localStart || c.LocalPos >= localEnd {
			continue
		}
		offset := uint32(c.LocalPos-localStart) + uint32(ti.LocalOffset)
		for _, p := range c.Pitches {
			*out = append(*out, noteEvent(midiNoteOn, c.Channel, p, c.Velocity, offset))
		}
		// A chord sounds until the next chord object or a boundary; if the
		// next chord also falls in this window, turn the current one off
		// there rather than waiting for end-of-call cleanup.
		if idx+1 < len(r.Chords) {
			next := r.Chords[idx+1]
			if next.LocalPos >= localStart && next.LocalPos < localEnd {
				offOffset := uint32(next.LocalPos-localStart) + uint32(ti.LocalOffset)
				for _, p := range c.Pitches {
					*out = append(*out, noteEvent(midiNoteOff, c.Channel, p, 0, offOffset))
				}
			}
		}
	}

	if !endIsBoundary || !addNoteOffAtEnd || len(r.Chords) == 0 {
		return
	}
	lastOffset := uint32(ti.NFrames-1) + uint32(ti.LocalOffset)
	if isLoopWrap {
		*out = append(*out, port.Event{Frame: lastOffset, Raw: [3]byte{0xB0, 0x7B, 0x00}, Len: 3})
		return
	}
	// The chord still sounding at the boundary is the last one starting
	// before localEnd, whether or not it started in this window.
	for idx := len(r.Chords) - 1; idx >= 0; idx-- {
		c := r.Chords[idx]
		if c.LocalPos < localEnd {
			for _, p := range c.Pitches {
				*out = append(*out, noteEvent(midiNoteOff, c.Channel, p, 0, lastOffset))
			}
			break
		}
	}
}
