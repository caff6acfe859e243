package transport

import "testing"

func newTestTransport(t *testing.T) *Transport {
	tr, err := New(120, TimeSignature{Numerator: 4, Denominator: 4}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestValidateRejectsBadLoopBounds(t *testing.T) {
	_, err := New(120, TimeSignature{Numerator: 4, Denominator: 4}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	tr := &Transport{LoopStart: 10, LoopEnd: 5, FramesPerTick: 1}
	if err := tr.Validate(); err == nil {
		t.Fatal("expected error for loop_start >= loop_end")
	}
}

func TestPostProcessAdvancesPlayheadWhenRolling(t *testing.T) {
	tr := newTestTransport(t)
	tr.Start()
	tr.PostProcess(100) // 100 frames / 0.5 frames-per-tick = 200 ticks
	if tr.PlayheadTicks != 200 {
		t.Fatalf("playhead = %d, want 200", tr.PlayheadTicks)
	}
}

func TestPostProcessDoesNotAdvanceWhenStopped(t *testing.T) {
	tr := newTestTransport(t)
	tr.PostProcess(100)
	if tr.PlayheadTicks != 0 {
		t.Fatalf("playhead = %d, want 0 (not rolling)", tr.PlayheadTicks)
	}
}

func TestPostProcessWrapsAtLoopEndPreservingOffset(t *testing.T) {
	tr := newTestTransport(t)
	tr.Looping = true
	tr.LoopStart = 0
	tr.LoopEnd = 1000
	tr.PlayheadTicks = 950
	tr.Start()
	tr.PostProcess(100) // +200 ticks => 1150, overshoot 150 past loop_end
	if tr.PlayheadTicks != 150 {
		t.Fatalf("playhead = %d, want 150 (wrapped)", tr.PlayheadTicks)
	}
}

func TestRecalcBarBeatAtOrigin(t *testing.T) {
	tr := newTestTransport(t)
	tr.SetPlayhead(0)
	if tr.Bar != 1 || tr.Beat != 1 || tr.Sixteenth != 1 || tr.Tick != 0 {
		t.Fatalf("origin position = %d.%d.%d.%d, want 1.1.1.0", tr.Bar, tr.Beat, tr.Sixteenth, tr.Tick)
	}
}

func TestRecalcBarBeatAfterOneBar(t *testing.T) {
	tr := newTestTransport(t)
	ticksPerBar := tr.TimeSig.ticksPerBar()
	tr.SetPlayhead(ticksPerBar)
	if tr.Bar != 2 || tr.Beat != 1 {
		t.Fatalf("position after one bar = %d.%d, want 2.1", tr.Bar, tr.Beat)
	}
}

func TestRecalcBarBeatMidBeat(t *testing.T) {
	tr := newTestTransport(t)
	ticksPerBeat := tr.TimeSig.ticksPerBeat()
	sixteenthTicks := int64(TicksPerQuarterNote / 4)
	tr.SetPlayhead(ticksPerBeat*2 + sixteenthTicks*3 + 7)
	if tr.Beat != 3 || tr.Sixteenth != 4 || tr.Tick != 7 {
		t.Fatalf("position = beat %d sixteenth %d tick %d, want beat 3 sixteenth 4 tick 7", tr.Beat, tr.Sixteenth, tr.Tick)
	}
}
