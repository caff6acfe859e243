// Package region implements the timeline object model (spec §4.3): the
// four region kinds (Audio/MIDI/Chord/Automation) as one tagged record,
// timeline-to-local frame mapping with loop unrolling, and MIDI event
// emission for MIDI/Chord regions.
package region

import (
	"fmt"

	"github.com/shaban/dawcore/curve"
	"github.com/shaban/dawcore/pool"
)

// Kind tags which variant of the Region sum type a value holds, replacing
// the Region → Midi/Audio/Chord/Automation virtual hierarchy with a shared
// record and match-dispatched operations.
type Kind int

const (
	KindAudio Kind = iota
	KindMidi
	KindChord
	KindAutomation
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindMidi:
		return "midi"
	case KindChord:
		return "chord"
	case KindAutomation:
		return "automation"
	default:
		return "unknown"
	}
}

// MusicalMode controls whether an AudioRegion auto-stretches its clip when
// the project tempo changes.
type MusicalMode int

const (
	MusicalModeInherit MusicalMode = iota
	MusicalModeOff
	MusicalModeOn
)

// MidiNote is one note event inside a MidiRegion, positioned in frames
// local to the region's clip (not wall-clock timeline frames).
type MidiNote struct {
	Pitch      uint8
	Velocity   uint8
	Channel    uint8
	StartLocal int64
	EndLocal   int64
}

// ChordObject is a chord trigger inside a ChordRegion: a set of pitches
// sounding together starting at LocalPos, held until the next ChordObject
// or a region/loop boundary.
type ChordObject struct {
	LocalPos int64
	Pitches  []uint8
	Velocity uint8
	Channel  uint8
}

// AutomationPoint is one control-value sample inside an AutomationRegion.
type AutomationPoint struct {
	LocalPos        int64
	NormalizedValue float64
	CurveOpts       curve.Options
}

// Region is the shared record for all four region kinds (spec §9's
// "tagged sum type" resolution of the original virtual hierarchy). Only
// the fields relevant to Kind are populated; the others are zero.
type Region struct {
	Kind         Kind
	TrackID      uint64
	LaneOrAtIdx  int
	StartPos     int64
	EndPos       int64
	ClipStartPos int64
	LoopStartPos int64
	LoopEndPos   int64
	FadeInPos    int64
	FadeOutPos   int64
	FadeInOpts   curve.Options
	FadeOutOpts  curve.Options
	Muted        bool
	Name         string
	LinkGroup    int

	// Audio region fields.
	PoolID      pool.ID
	MusicalMode MusicalMode
	Gain        float64

	// MIDI region fields.
	Notes []MidiNote

	// Chord region fields.
	Chords []ChordObject

	// Automation region fields.
	Points []AutomationPoint
}

// Validate checks the invariants spec §3 lists for Region.
func (r *Region) Validate() error {
	if r.EndPos <= r.StartPos {
		return fmt.Errorf("region: end %d must be after start %d", r.EndPos, r.StartPos)
	}
	if r.LoopStartPos >= r.LoopEndPos {
		return fmt.Errorf("region: loop_start %d must precede loop_end %d", r.LoopStartPos, r.LoopEndPos)
	}
	if r.ClipStartPos < 0 || r.ClipStartPos >= r.LoopEndPos {
		return fmt.Errorf("region: clip_start %d must be in [0, loop_end=%d)", r.ClipStartPos, r.LoopEndPos)
	}
	length := r.EndPos - r.StartPos
	if r.FadeInPos >= r.FadeOutPos {
		return fmt.Errorf("region: fade_in %d must precede fade_out %d", r.FadeInPos, r.FadeOutPos)
	}
	if r.FadeInPos < 0 || r.FadeOutPos > length {
		return fmt.Errorf("region: fades must lie within [0, %d]", length)
	}
	return nil
}

// localUnclamped converts a timeline frame to clip-local time ignoring
// loop wraps — i.e. what the local position would be if the clip played
// straight through without looping.
func (r *Region) localUnclamped(tlFrames int64) int64 {
	return r.ClipStartPos + (tlFrames - r.StartPos)
}

// TimelineFramesToLocal maps a global timeline frame to an offset inside
// the clip (spec §4.3). With normalize=false the raw unrolled position is
// returned, which may exceed loop_end. With normalize=true, loop
// boundaries are traversed so the result lies in [clip_start, loop_end).
func (r *Region) TimelineFramesToLocal(tlFrames int64, normalize bool) int64 {
	local := r.localUnclamped(tlFrames)
	if !normalize {
		return local
	}
	if local < r.LoopEndPos {
		return local
	}
	loopLen := r.LoopEndPos - r.LoopStartPos
	return r.LoopStartPos + (local-r.LoopEndPos)%loopLen
}

// FramesTillNextLoopOrEnd returns the number of frames from tlFrames until
// either the next loop wrap or the region's end, whichever is nearer, and
// whether that boundary is a loop wrap (spec §4.3).
func (r *Region) FramesTillNextLoopOrEnd(tlFrames int64) (frames int64, isLoop bool) {
	local := r.TimelineFramesToLocal(tlFrames, true)
	framesToLoop := r.LoopEndPos - local
	framesToEnd := r.EndPos - tlFrames
	if framesToLoop < framesToEnd {
		return framesToLoop, true
	}
	return framesToEnd, false
}
