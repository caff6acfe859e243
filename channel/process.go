package channel

import (
	"github.com/shaban/dawcore/fader"
	"github.com/shaban/dawcore/region"
)

// Process runs one block through the strip in order: each slot's input
// ports pull their fan-in sum, then the slot itself runs, followed by
// Prefader and Fader. Per-slot errors (plugin failures/underruns) are
// collected rather than aborting the cycle, since a failed slot still
// produces valid wired-around output (spec §7's bypass-in-graph policy).
func (c *Channel) Process(ti region.TimeInfo, ctx fader.ProcessContext) []error {
	var errs []error
	for _, w := range c.strip() {
		if w == nil {
			continue
		}
		for _, in := range w.In {
			in.Process(ti.NFrames)
		}
		if err := w.Process(ti); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Prefader != nil {
		runFader(c.Prefader, ctx, ti.NFrames)
	}
	if c.Fader != nil {
		runFader(c.Fader, ctx, ti.NFrames)
	}
	return errs
}

func runFader(f *fader.Fader, ctx fader.ProcessContext, nframes int) {
	if f.StereoInL != nil {
		f.StereoInL.Process(nframes)
	}
	if f.StereoInR != nil {
		f.StereoInR.Process(nframes)
	}
	f.Process(ctx, nframes)
	if f.MidiIn != nil {
		f.MidiIn.Process(nframes)
		f.ProcessMIDI(ctx)
	}
}
