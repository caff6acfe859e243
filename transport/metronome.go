package transport

import "github.com/shaban/dawcore/port"

const (
	clickNoteOn  = 0x90
	clickNoteOff = 0x80

	// Click pitches are GM percussion notes (Claves=75, Hi Wood
	// Block=76) chosen only for being two clearly distinct short
	// percussive hits, not a claim that either is the canonical
	// metronome assignment.
	beatPitch uint8 = 75
	barPitch  uint8 = 76

	clickVelocity  uint8 = 100
	clickFrameSpan       = 4 // note-off offset from note-on, in frames
)

// Metronome emits a MIDI click at every beat (and a distinct click at
// every bar) the transport's playhead crosses during a block.
type Metronome struct {
	Out *port.Port

	ClickOnBar  bool
	ClickOnBeat bool
}

// Process queues click events for the span [t.PlayheadTicks,
// t.PlayheadTicks + framesToTicks(nframes)) — the window PostProcess
// will subsequently advance the playhead across. Must run before
// Transport.PostProcess in the cycle so the window reflects the block
// about to be played, not the one just finished.
func (m *Metronome) Process(t *Transport, nframes int) {
	if m.Out == nil || !t.IsRolling || (!m.ClickOnBar && !m.ClickOnBeat) {
		return
	}
	startTick := t.PlayheadTicks
	endTick := startTick + t.FramesToTicks(int64(nframes))
	ticksPerBeat := t.TimeSig.ticksPerBeat()
	ticksPerBar := t.TimeSig.ticksPerBar()

	first := ((startTick + ticksPerBeat - 1) / ticksPerBeat) * ticksPerBeat
	for tick := first; tick < endTick; tick += ticksPerBeat {
		isBar := tick%ticksPerBar == 0
		if isBar && !m.ClickOnBar {
			continue
		}
		if !isBar && !m.ClickOnBeat {
			continue
		}
		frame := t.TicksToFrames(tick - startTick)
		if frame < 0 || frame >= int64(nframes) {
			continue
		}
		pitch := beatPitch
		if isBar {
			pitch = barPitch
		}
		m.emit(uint32(frame), pitch, nframes)
	}
}

func (m *Metronome) emit(frame uint32, pitch uint8, nframes int) {
	m.Out.QueueMIDI(port.Event{Frame: frame, Raw: [3]byte{clickNoteOn, pitch, clickVelocity}, Len: 3})
	offFrame := frame + clickFrameSpan
	if offFrame >= uint32(nframes) {
		offFrame = uint32(nframes) - 1
	}
	m.Out.QueueMIDI(port.Event{Frame: offFrame, Raw: [3]byte{clickNoteOff, pitch, 0}, Len: 3})
}
