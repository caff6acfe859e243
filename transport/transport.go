// Package transport implements the Transport and Metronome (spec
// §4.8): playhead/loop/bars-beats arithmetic and post_process, plus a
// MIDI metronome click keyed off bar/beat boundaries. Grounded on
// spec §4.8's invariants and on `ticks_per_frame_`'s role in
// original_source/inc/dsp/engine.h and arranger_object.cpp's tick/frame
// conversions — no transport.cpp survived retrieval, so the bars/beats
// breakdown and the click emission are built from spec prose rather
// than ported line for line.
package transport

import "fmt"

// TicksPerQuarterNote is the PPQN resolution ticks are expressed in.
// Not recoverable from the retrieved source; 960 is the conventional
// DAW-wide PPQN (Zrythm's own UI reports positions down to this
// resolution) and is used here as a documented judgment call.
const TicksPerQuarterNote = 960

// TimeSignature is a musical meter.
type TimeSignature struct {
	Numerator   int
	Denominator int
}

func (ts TimeSignature) ticksPerBeat() int64 {
	return int64(TicksPerQuarterNote * 4 / ts.Denominator)
}

func (ts TimeSignature) ticksPerBar() int64 {
	return ts.ticksPerBeat() * int64(ts.Numerator)
}

// Transport is the engine's shared playhead/tempo/loop state (spec §3).
type Transport struct {
	BPM           float64
	TimeSig       TimeSignature
	PlayheadTicks int64
	IsRolling     bool

	Looping            bool
	LoopStart, LoopEnd int64

	PunchIn, PunchOut int64
	PrerollFrames     int64

	// FramesPerTick is how many audio frames correspond to one tick at
	// the current BPM and sample rate — the inverse of the original's
	// ticks_per_frame_.
	FramesPerTick float64

	Bar, Beat, Sixteenth int
	Tick                 int64
}

// New creates a Transport with its cached bar/beat position computed
// from the initial PlayheadTicks.
func New(bpm float64, sig TimeSignature, framesPerTick float64) (*Transport, error) {
	t := &Transport{BPM: bpm, TimeSig: sig, FramesPerTick: framesPerTick, LoopEnd: sig.ticksPerBar()}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.recalcBarBeat()
	return t, nil
}

// Validate checks spec §4.8's invariants: 0 ≤ loop_start < loop_end,
// playhead ≥ 0.
func (t *Transport) Validate() error {
	if t.PlayheadTicks < 0 {
		return fmt.Errorf("transport: playhead %d < 0", t.PlayheadTicks)
	}
	if t.LoopStart < 0 || t.LoopStart >= t.LoopEnd {
		return fmt.Errorf("transport: loop_start %d must be in [0, loop_end=%d)", t.LoopStart, t.LoopEnd)
	}
	if t.FramesPerTick <= 0 {
		return fmt.Errorf("transport: frames_per_tick must be positive, got %v", t.FramesPerTick)
	}
	return nil
}

// FramesToTicks converts a frame count to ticks at the current tempo.
func (t *Transport) FramesToTicks(frames int64) int64 {
	return int64(float64(frames) / t.FramesPerTick)
}

// TicksToFrames converts a tick count to frames at the current tempo.
func (t *Transport) TicksToFrames(ticks int64) int64 {
	return int64(float64(ticks) * t.FramesPerTick)
}

// PostProcess advances the playhead by rollFrames if rolling, wrapping
// at the loop boundary while preserving the sub-loop fractional offset
// (spec §4.8), then refreshes the cached (bar, beat, sixteenth, tick)
// position.
func (t *Transport) PostProcess(rollFrames int64) {
	if t.IsRolling {
		newTicks := t.PlayheadTicks + t.FramesToTicks(rollFrames)
		if t.Looping && newTicks >= t.LoopEnd {
			loopLen := t.LoopEnd - t.LoopStart
			overshoot := newTicks - t.LoopEnd
			if loopLen > 0 {
				overshoot %= loopLen
			}
			newTicks = t.LoopStart + overshoot
		}
		t.PlayheadTicks = newTicks
	}
	t.recalcBarBeat()
}

// recalcBarBeat derives Bar/Beat/Sixteenth/Tick from PlayheadTicks and
// the current time signature, 1-indexed per DAW convention.
func (t *Transport) recalcBarBeat() {
	ticksPerBar := t.TimeSig.ticksPerBar()
	ticksPerBeat := t.TimeSig.ticksPerBeat()
	sixteenthTicks := int64(TicksPerQuarterNote / 4)

	ticks := t.PlayheadTicks
	bar := ticks/ticksPerBar + 1
	remBar := ticks % ticksPerBar
	beat := remBar/ticksPerBeat + 1
	remBeat := remBar % ticksPerBeat
	sixteenth := remBeat/sixteenthTicks + 1
	tick := remBeat % sixteenthTicks

	t.Bar, t.Beat, t.Sixteenth, t.Tick = int(bar), int(beat), int(sixteenth), tick
}

// Start begins playback.
func (t *Transport) Start() { t.IsRolling = true }

// Stop halts playback without moving the playhead.
func (t *Transport) Stop() { t.IsRolling = false }

// SetPlayhead relocates the playhead directly (e.g. a UI seek) and
// refreshes the cached position.
func (t *Transport) SetPlayhead(ticks int64) {
	t.PlayheadTicks = ticks
	t.recalcBarBeat()
}
