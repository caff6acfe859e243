package fader

import "github.com/shaban/dawcore/midiwire"

const midiNoteOn = 0x90
const ccVolume = 0x07

// ProcessMIDI passes events from MidiIn to MidiOut, silencing everything
// while effectively muted and otherwise applying the fader's amp per
// MidiMode: VelMultiplier scales each note-on's velocity by amp,
// CCVolume re-emits a CC#7 volume event on MidiChannel whenever amp
// changes.
func (f *Fader) ProcessMIDI(ctx ProcessContext) {
	if f.MidiIn == nil || f.MidiOut == nil {
		return
	}
	if f.EffectivelyMuted(ctx.SoloRegistry, ctx.BounceMode) {
		return
	}
	amp := controlValue(f.Amp)
	for _, ev := range f.MidiIn.MIDIEvents() {
		if f.MidiMode == VelMultiplier && ev.Raw[0]&0xF0 == midiNoteOn {
			scaled := float32(ev.Raw[2]) * amp
			if scaled > 127 {
				scaled = 127
			}
			if scaled < 0 {
				scaled = 0
			}
			ev.Raw[2] = byte(scaled)
		}
		f.MidiOut.QueueMIDI(ev)
	}
	if f.MidiMode == CCVolume && amp != f.LastCCVolume {
		f.LastCCVolume = amp
		value := amp * 127
		if value > 127 {
			value = 127
		}
		if value < 0 {
			value = 0
		}
		f.MidiOut.QueueMIDI(midiwire.ControlChange(0, f.MidiChannel, ccVolume, byte(value)))
	}
}
