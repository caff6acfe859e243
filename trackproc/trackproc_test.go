package trackproc

import (
	"testing"

	"github.com/shaban/dawcore/port"
	"github.com/shaban/dawcore/region"
)

func TestProcessAudioCopiesInputWhenArmed(t *testing.T) {
	p := New(false, 8)
	p.Armed = true
	copy(p.StereoInL.Buffer(), []float32{1, 2, 3, 4, 5, 6, 7, 8})
	copy(p.StereoInR.Buffer(), []float32{8, 7, 6, 5, 4, 3, 2, 1})

	if err := p.Process(8, nil); err != nil {
		t.Fatal(err)
	}
	if p.StereoOutL.Buffer()[2] != 3 {
		t.Fatalf("StereoOutL[2] = %v, want 3", p.StereoOutL.Buffer()[2])
	}
	if p.StereoOutR.Buffer()[2] != 6 {
		t.Fatalf("StereoOutR[2] = %v, want 6", p.StereoOutR.Buffer()[2])
	}
}

func TestProcessAudioSkipsWhenNotMonitoring(t *testing.T) {
	p := New(false, 8)
	copy(p.StereoInL.Buffer(), []float32{1, 2, 3, 4, 5, 6, 7, 8})

	if err := p.Process(8, nil); err != nil {
		t.Fatal(err)
	}
	for _, v := range p.StereoOutL.Buffer() {
		if v != 0 {
			t.Fatalf("expected silent output when not armed/monitoring, got %v", p.StereoOutL.Buffer())
		}
	}
}

func TestProcessMIDIFiltersExternalChannel(t *testing.T) {
	p := New(true, 32)
	p.AllMIDIChannels = false
	p.MIDIChannelMask = 1 << 2 // only channel 2 allowed

	p.ExternalMIDIIn.QueueMIDI(port.Event{Frame: 0, Raw: [3]byte{0x90 | 0, 60, 100}, Len: 3})
	p.ExternalMIDIIn.QueueMIDI(port.Event{Frame: 1, Raw: [3]byte{0x90 | 2, 62, 100}, Len: 3})
	p.ExternalMIDIIn.Prepare(32)
	p.ExternalMIDIIn.Process(32)

	if err := p.Process(32, nil); err != nil {
		t.Fatal(err)
	}
	if len(p.scratch) != 1 || p.scratch[0].Raw[1] != 62 {
		t.Fatalf("expected only the channel-2 event to pass, got %+v", p.scratch)
	}
}

func TestProcessMIDIMergesRegionEvents(t *testing.T) {
	p := New(true, 32)
	r := &region.Region{
		Kind:         region.KindMidi,
		StartPos:     0,
		EndPos:       1000,
		LoopStartPos: 0,
		LoopEndPos:   1000,
		Notes: []region.MidiNote{
			{Pitch: 64, Velocity: 90, StartLocal: 0, EndLocal: 16},
		},
	}
	active := []ActiveRegion{{
		Region:   r,
		TimeInfo: region.TimeInfo{GStartFrame: 0, NFrames: 32},
	}}

	if err := p.Process(32, active); err != nil {
		t.Fatal(err)
	}
	if len(p.scratch) == 0 {
		t.Fatalf("expected region note events to be merged into the MIDI stream")
	}
}
