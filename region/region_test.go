package region

import (
	"testing"

	"github.com/shaban/dawcore/port"
)

func baseRegion() *Region {
	return &Region{
		Kind:         KindAudio,
		StartPos:     0,
		EndPos:       96000,
		ClipStartPos: 0,
		LoopStartPos: 0,
		LoopEndPos:   48000,
		FadeOutPos:   96000,
	}
}

func TestValidateRejectsBadPositions(t *testing.T) {
	r := baseRegion()
	r.EndPos = r.StartPos
	if err := r.Validate(); err == nil {
		t.Fatalf("expected error for end <= start")
	}
}

func TestTimelineFramesToLocalBeforeFirstLoopEnd(t *testing.T) {
	r := baseRegion()
	if got := r.TimelineFramesToLocal(47999, true); got != 47999 {
		t.Fatalf("TimelineFramesToLocal(47999) = %d, want 47999", got)
	}
}

func TestTimelineFramesToLocalWrapsAtLoopEnd(t *testing.T) {
	r := baseRegion()
	cases := map[int64]int64{
		48000: 0,
		48001: 1,
		48002: 2,
	}
	for tl, want := range cases {
		if got := r.TimelineFramesToLocal(tl, true); got != want {
			t.Fatalf("TimelineFramesToLocal(%d) = %d, want %d", tl, got, want)
		}
	}
}

func TestFramesTillNextLoopOrEndPicksNearerBoundary(t *testing.T) {
	r := baseRegion()
	frames, isLoop := r.FramesTillNextLoopOrEnd(47999)
	if frames != 1 || !isLoop {
		t.Fatalf("FramesTillNextLoopOrEnd(47999) = (%d, %v), want (1, true)", frames, isLoop)
	}

	r2 := baseRegion()
	r2.LoopEndPos = 200000 // push the loop boundary past region end
	frames2, isLoop2 := r2.FramesTillNextLoopOrEnd(95999)
	if frames2 != 1 || isLoop2 {
		t.Fatalf("FramesTillNextLoopOrEnd near region end = (%d, %v), want (1, false)", frames2, isLoop2)
	}
}

func TestFillMidiEventsEmitsNoteOnAndOff(t *testing.T) {
	r := &Region{
		Kind:         KindMidi,
		StartPos:     0,
		EndPos:       1000,
		LoopStartPos: 0,
		LoopEndPos:   1000,
		Notes: []MidiNote{
			{Pitch: 60, Velocity: 100, Channel: 0, StartLocal: 10, EndLocal: 20},
		},
	}
	var events []port.Event
	if err := r.FillMidiEvents(TimeInfo{GStartFrame: 0, NFrames: 32}, true, false, &events); err != nil {
		t.Fatalf("FillMidiEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Frame != 10 || events[0].Raw[0] != midiNoteOn {
		t.Fatalf("unexpected note-on event: %+v", events[0])
	}
	if events[1].Frame != 20 || events[1].Raw[0] != midiNoteOff {
		t.Fatalf("unexpected note-off event: %+v", events[1])
	}
}

func TestFillMidiEventsOnWrongKindErrors(t *testing.T) {
	r := baseRegion()
	var events []port.Event
	if err := r.FillMidiEvents(TimeInfo{NFrames: 16}, false, false, &events); err == nil {
		t.Fatalf("expected error calling FillMidiEvents on an audio region")
	}
}

func TestFillMidiEventsRegionEndFlushesActiveNotes(t *testing.T) {
	r := &Region{
		Kind:         KindMidi,
		StartPos:     0,
		EndPos:       32,
		LoopStartPos: 0,
		LoopEndPos:   1000,
		Notes: []MidiNote{
			{Pitch: 64, Velocity: 90, StartLocal: 0, EndLocal: 100}, // extends past region end
		},
	}
	var events []port.Event
	if err := r.FillMidiEvents(TimeInfo{GStartFrame: 0, NFrames: 32}, true, true, &events); err != nil {
		t.Fatalf("FillMidiEvents: %v", err)
	}
	var sawFlush bool
	for _, e := range events {
		if e.Raw[0] == midiNoteOff && e.Frame == 31 {
			sawFlush = true
		}
	}
	if !sawFlush {
		t.Fatalf("expected a flush note-off at the region boundary, got %+v", events)
	}
}

func TestFillMidiEventsLoopWrapEmitsAllNotesOff(t *testing.T) {
	r := &Region{
		Kind:         KindMidi,
		StartPos:     0,
		EndPos:       1000,
		LoopStartPos: 0,
		LoopEndPos:   32,
	}
	var events []port.Event
	if err := r.FillMidiEvents(TimeInfo{GStartFrame: 0, NFrames: 32}, true, true, &events); err != nil {
		t.Fatalf("FillMidiEvents: %v", err)
	}
	if len(events) != 1 || events[0].Raw[1] != 0x7B {
		t.Fatalf("expected a single all-notes-off CC event, got %+v", events)
	}
}
