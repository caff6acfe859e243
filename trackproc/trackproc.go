// Package trackproc implements TrackProcessor (spec §4.5): the per-track
// input stage that merges external MIDI, piano-roll preview, and
// currently-playing region events into a track's midi_in, or copies
// configured stereo inputs for audio tracks.
package trackproc

import (
	"github.com/shaban/dawcore/port"
	"github.com/shaban/dawcore/region"
)

// MonitorMode mirrors the teacher's habit of a small state enum per
// input-capture concern (c.f. engine/channel's InputOptions) rather than
// a bare bool, since a track can later grow a third monitoring state.
type MonitorMode int

const (
	MonitorOff MonitorMode = iota
	MonitorOn
)

// Processor is one track's input stage. MIDI tracks merge ExternalMIDIIn,
// PianoRoll and the active regions' events into MIDIOut; audio tracks copy
// StereoInL/StereoInR into StereoOutL/StereoOutR.
type Processor struct {
	// MIDI surface.
	ExternalMIDIIn   *port.Port
	PianoRoll        *port.Port
	MIDIOut          *port.Port
	AllMIDIChannels  bool
	MIDIChannelMask  uint16 // bit i set => channel i is allowed through ExternalMIDIIn

	// Audio surface.
	StereoInL, StereoInR   *port.Port
	StereoOutL, StereoOutR *port.Port

	Monitor MonitorMode
	Armed   bool

	scratch []port.Event
}

// New builds a Processor. isMIDI selects which surface is wired; the
// other surface's fields are left nil.
func New(isMIDI bool, blockLength int) *Processor {
	p := &Processor{}
	if isMIDI {
		p.ExternalMIDIIn = port.New(port.Config{Type: port.TypeMIDI, Flow: port.FlowInput, Owner: port.OwnerTrack, Label: "ext midi in"}, blockLength)
		p.PianoRoll = port.New(port.Config{Type: port.TypeMIDI, Flow: port.FlowInput, Owner: port.OwnerTrack, Label: "piano roll"}, blockLength)
		p.MIDIOut = port.New(port.Config{Type: port.TypeMIDI, Flow: port.FlowOutput, Owner: port.OwnerTrack, Label: "midi in (track)"}, blockLength)
	} else {
		p.StereoInL = port.New(port.Config{Type: port.TypeAudio, Flow: port.FlowInput, Owner: port.OwnerTrack, Label: "stereo in L"}, blockLength)
		p.StereoInR = port.New(port.Config{Type: port.TypeAudio, Flow: port.FlowInput, Owner: port.OwnerTrack, Label: "stereo in R"}, blockLength)
		p.StereoOutL = port.New(port.Config{Type: port.TypeAudio, Flow: port.FlowOutput, Owner: port.OwnerTrack, Label: "stereo out L"}, blockLength)
		p.StereoOutR = port.New(port.Config{Type: port.TypeAudio, Flow: port.FlowOutput, Owner: port.OwnerTrack, Label: "stereo out R"}, blockLength)
	}
	return p
}

// channelAllowed reports whether raw[0]'s MIDI channel nibble passes the
// configured mask, honoring AllMIDIChannels.
func (p *Processor) channelAllowed(raw [3]byte) bool {
	if p.AllMIDIChannels {
		return true
	}
	ch := raw[0] & 0x0F
	return p.MIDIChannelMask&(1<<ch) != 0
}

// Process runs one block through the processor (spec §4.5). activeRegions
// are the MIDI/Chord regions currently sounding at this track, each with
// the TimeInfo describing where inside it this block falls.
func (p *Processor) Process(nframes int, activeRegions []ActiveRegion) error {
	if p.MIDIOut != nil {
		return p.processMIDI(nframes, activeRegions)
	}
	return p.processAudio(nframes)
}

// ActiveRegion pairs a region with the TimeInfo describing this block's
// position inside it, as supplied by the caller of Process.
type ActiveRegion struct {
	Region                    *region.Region
	TimeInfo                  region.TimeInfo
	AddNoteOffAtEnd           bool
	EndIsRegionOrLoopBoundary bool
}

func (p *Processor) processMIDI(nframes int, activeRegions []ActiveRegion) error {
	p.scratch = p.scratch[:0]

	for _, ev := range p.ExternalMIDIIn.MIDIEvents() {
		if p.channelAllowed(ev.Raw) {
			p.scratch = append(p.scratch, ev)
		}
	}

	if p.Armed || p.Monitor == MonitorOn {
		p.scratch = append(p.scratch, p.PianoRoll.MIDIEvents()...)
	}

	for _, ar := range activeRegions {
		if err := ar.Region.FillMidiEvents(ar.TimeInfo, ar.AddNoteOffAtEnd, ar.EndIsRegionOrLoopBoundary, &p.scratch); err != nil {
			return err
		}
	}

	for _, ev := range p.scratch {
		p.MIDIOut.QueueMIDI(ev)
	}
	return nil
}

func (p *Processor) processAudio(nframes int) error {
	if !p.Armed && p.Monitor != MonitorOn {
		return nil
	}
	copyBuf(p.StereoOutL.Buffer(), p.StereoInL.Buffer())
	copyBuf(p.StereoOutR.Buffer(), p.StereoInR.Buffer())
	return nil
}

func copyBuf(dst, src []float32) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	copy(dst[:n], src[:n])
}
