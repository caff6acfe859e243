package fader

import (
	"testing"

	"github.com/shaban/dawcore/port"
)

func controlPort(id port.ID) *port.Port {
	return port.New(port.Config{ID: id, Type: port.TypeControl, Flow: port.FlowInput, Owner: port.OwnerFader}, 8)
}

func audioPort(id port.ID, flow port.Flow) *port.Port {
	return port.New(port.Config{ID: id, Type: port.TypeAudio, Flow: flow, Owner: port.OwnerFader}, 64)
}

func newChannelFader() *Fader {
	return &Fader{
		Type:       TypeAudioChannel,
		TrackID:    1,
		Amp:        controlPort(1),
		Balance:    controlPort(2),
		Mute:       controlPort(3),
		Solo:       controlPort(4),
		Listen:     controlPort(5),
		MonoCompat: controlPort(6),
		SwapPhase:  controlPort(7),
		StereoInL:  audioPort(8, port.FlowInput),
		StereoInR:  audioPort(9, port.FlowInput),
		StereoOutL: audioPort(10, port.FlowOutput),
		StereoOutR: audioPort(11, port.FlowOutput),
	}
}

func fillConst(p *port.Port, v float32, n int) {
	buf := p.Buffer()
	for i := 0; i < n; i++ {
		buf[i] = v
	}
}

func TestBalanceControlCenterIsUnityBoth(t *testing.T) {
	l, r := balanceControl(0.5)
	if l != 1.0 || r != 1.0 {
		t.Fatalf("balanceControl(0.5) = (%v,%v), want (1,1)", l, r)
	}
}

func TestProcessAppliesAmpAndPan(t *testing.T) {
	f := newChannelFader()
	f.Amp.Buffer()[0] = 1
	f.Balance.Buffer()[0] = 0.5
	fillConst(f.StereoInL, 1, 32)
	fillConst(f.StereoInR, 1, 32)

	reg := NewSoloRegistry()
	ctx := ProcessContext{SoloRegistry: reg}
	f.Process(ctx, 32)

	if f.StereoOutL.Buffer()[10] != 1 {
		t.Fatalf("outL[10] = %v, want 1", f.StereoOutL.Buffer()[10])
	}
	if f.StereoOutR.Buffer()[10] != 1 {
		t.Fatalf("outR[10] = %v, want 1", f.StereoOutR.Buffer()[10])
	}
}

func TestProcessMuteFadeOutRampsLinearlyToMuteAmp(t *testing.T) {
	f := newChannelFader()
	f.Amp.Buffer()[0] = 1
	f.Balance.Buffer()[0] = 0.5
	fillConst(f.StereoInL, 1, 64)
	fillConst(f.StereoInR, 1, 64)

	reg := NewSoloRegistry()
	ctx := ProcessContext{SoloRegistry: reg, MuteFaderAmp: 0}

	// Cycle 1: unmuted, establishes wasEffectivelyMuted=false.
	f.Process(ctx, 32)

	// Cycle 2: mute toggles on, triggering the fade-out.
	f.Mute.Buffer()[0] = 1
	fillConst(f.StereoInL, 1, 64)
	fillConst(f.StereoInR, 1, 64)
	f.Process(ctx, DefaultFadeFramesShort)

	n := DefaultFadeFramesShort
	for i := 0; i < n; i++ {
		want := float32(1.0) - float32(i)/float32(n)
		got := f.StereoOutL.Buffer()[i]
		if diff := got - want; diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("outL[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestProcessSoloExcludesUnsoloedChannel(t *testing.T) {
	f := newChannelFader()
	f.Amp.Buffer()[0] = 1
	f.Balance.Buffer()[0] = 0.5
	fillConst(f.StereoInL, 1, 64)
	fillConst(f.StereoInR, 1, 64)

	reg := NewSoloRegistry()
	reg.SetSoloed(99, true) // a different track is soloed
	ctx := ProcessContext{SoloRegistry: reg}

	f.Process(ctx, 32) // cycle 1: already excluded, so the 32-frame fade-out runs here
	f.Process(ctx, DefaultFadeFramesShort)

	last := f.StereoOutL.Buffer()[DefaultFadeFramesShort-1]
	if last != 0 {
		t.Fatalf("outL[last] = %v, want 0 (fully faded out under solo exclusion)", last)
	}
}

func TestProcessImpliedSoloedChildNotSilenced(t *testing.T) {
	f := newChannelFader()
	f.TrackID = 5
	f.Amp.Buffer()[0] = 1
	f.Balance.Buffer()[0] = 0.5
	fillConst(f.StereoInL, 1, 32)
	fillConst(f.StereoInR, 1, 32)

	reg := NewSoloRegistry()
	reg.SetSoloed(1, true)
	reg.AddChild(1, 5) // track 5 is implied-soloed via its soloed parent group 1
	reg.SetOutput(5, 1)
	ctx := ProcessContext{SoloRegistry: reg}

	f.Process(ctx, 32)

	if f.StereoOutL.Buffer()[5] == 0 {
		t.Fatalf("implied-soloed child was silenced")
	}
}

func TestProcessMonoCompatAveragesChannels(t *testing.T) {
	f := newChannelFader()
	f.Amp.Buffer()[0] = 1
	f.Balance.Buffer()[0] = 0.5
	f.MonoCompat.Buffer()[0] = 1
	fillConst(f.StereoInL, 1, 16)
	fillConst(f.StereoInR, -1, 16)

	reg := NewSoloRegistry()
	f.Process(ProcessContext{SoloRegistry: reg}, 16)

	if f.StereoOutL.Buffer()[0] != 0 || f.StereoOutR.Buffer()[0] != 0 {
		t.Fatalf("mono-compat of [1,-1] should average to 0, got (%v,%v)",
			f.StereoOutL.Buffer()[0], f.StereoOutR.Buffer()[0])
	}
}

func TestProcessSwapPhaseInvertsSign(t *testing.T) {
	f := newChannelFader()
	f.Amp.Buffer()[0] = 1
	f.Balance.Buffer()[0] = 0.5
	f.SwapPhase.Buffer()[0] = 1
	fillConst(f.StereoInL, 1, 16)
	fillConst(f.StereoInR, 1, 16)

	reg := NewSoloRegistry()
	f.Process(ProcessContext{SoloRegistry: reg}, 16)

	if f.StereoOutL.Buffer()[0] != -1 {
		t.Fatalf("outL[0] = %v, want -1", f.StereoOutL.Buffer()[0])
	}
}

func TestProcessHardLimitsMasterTrack(t *testing.T) {
	f := newChannelFader()
	f.Amp.Buffer()[0] = 10
	f.Balance.Buffer()[0] = 0.5
	fillConst(f.StereoInL, 1, 8)
	fillConst(f.StereoInR, 1, 8)

	reg := NewSoloRegistry()
	reg.SetMaster(f.TrackID)
	f.Process(ProcessContext{SoloRegistry: reg}, 8)

	if f.StereoOutL.Buffer()[0] != 2 {
		t.Fatalf("outL[0] = %v, want clipped to 2", f.StereoOutL.Buffer()[0])
	}
}

func TestPassthroughFaderIsNeverEffectivelyMuted(t *testing.T) {
	f := newChannelFader()
	f.Passthrough = true
	f.Mute.Buffer()[0] = 1
	reg := NewSoloRegistry()
	if f.EffectivelyMuted(reg, BounceOff) {
		t.Fatal("passthrough fader reported effectively muted")
	}
}

func TestProcessMIDIVelMultiplierScalesNoteOnVelocity(t *testing.T) {
	f := &Fader{
		Type:    TypeMidiChannel,
		TrackID: 1,
		Amp:     controlPort(1),
		MidiIn:  port.New(port.Config{ID: 20, Type: port.TypeMIDI, Flow: port.FlowInput, Owner: port.OwnerFader}, 64),
		MidiOut: port.New(port.Config{ID: 21, Type: port.TypeMIDI, Flow: port.FlowOutput, Owner: port.OwnerFader}, 64),
		MidiMode: VelMultiplier,
	}
	f.Amp.Buffer()[0] = 0.5
	f.MidiIn.QueueMIDI(port.Event{Frame: 0, Raw: [3]byte{0x90, 60, 100}, Len: 3})
	f.MidiIn.Prepare(64)

	reg := NewSoloRegistry()
	f.ProcessMIDI(ProcessContext{SoloRegistry: reg})
	f.MidiOut.Prepare(64)

	out := f.MidiOut.MIDIEvents()
	if len(out) != 1 {
		t.Fatalf("got %d events, want 1", len(out))
	}
	if out[0].Raw[2] != 50 {
		t.Fatalf("scaled velocity = %d, want 50", out[0].Raw[2])
	}
}

func TestProcessMIDIMutedSuppressesEvents(t *testing.T) {
	f := &Fader{
		Type:    TypeMidiChannel,
		TrackID: 1,
		Amp:     controlPort(1),
		Mute:    controlPort(2),
		MidiIn:  port.New(port.Config{ID: 22, Type: port.TypeMIDI, Flow: port.FlowInput, Owner: port.OwnerFader}, 64),
		MidiOut: port.New(port.Config{ID: 23, Type: port.TypeMIDI, Flow: port.FlowOutput, Owner: port.OwnerFader}, 64),
	}
	f.Mute.Buffer()[0] = 1
	f.MidiIn.QueueMIDI(port.Event{Frame: 0, Raw: [3]byte{0x90, 60, 100}, Len: 3})
	f.MidiIn.Prepare(64)

	reg := NewSoloRegistry()
	f.ProcessMIDI(ProcessContext{SoloRegistry: reg})
	f.MidiOut.Prepare(64)

	if len(f.MidiOut.MIDIEvents()) != 0 {
		t.Fatal("expected no events passed through while muted")
	}
}

func TestProcessMIDICCVolumeEmitsControlChangeOnAmpChange(t *testing.T) {
	f := &Fader{
		Type:        TypeMidiChannel,
		TrackID:     1,
		Amp:         controlPort(1),
		MidiIn:      port.New(port.Config{ID: 24, Type: port.TypeMIDI, Flow: port.FlowInput, Owner: port.OwnerFader}, 64),
		MidiOut:     port.New(port.Config{ID: 25, Type: port.TypeMIDI, Flow: port.FlowOutput, Owner: port.OwnerFader}, 64),
		MidiMode:    CCVolume,
		MidiChannel: 3,
	}
	f.Amp.Buffer()[0] = 1.0
	f.MidiIn.Prepare(64)

	reg := NewSoloRegistry()
	f.ProcessMIDI(ProcessContext{SoloRegistry: reg})
	f.MidiOut.Prepare(64)

	out := f.MidiOut.MIDIEvents()
	if len(out) != 1 {
		t.Fatalf("got %d events, want 1", len(out))
	}
	if out[0].Raw[0]&0xF0 != 0xB0 || out[0].Raw[0]&0x0F != 3 {
		t.Fatalf("status byte = %x, want CC on channel 3", out[0].Raw[0])
	}
	if out[0].Raw[1] != ccVolume {
		t.Fatalf("controller = %d, want %d", out[0].Raw[1], ccVolume)
	}
	if out[0].Raw[2] != 127 {
		t.Fatalf("value = %d, want 127 (amp=1.0)", out[0].Raw[2])
	}
}
