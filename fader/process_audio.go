package fader

// ProcessContext carries the per-cycle state process_block reaches into
// the engine/control-room for (solo status, bounce mode, the monitor's
// dim/listen mix bus) rather than storing it on the Fader itself, since
// it is shared across every fader processed in a cycle.
type ProcessContext struct {
	SoloRegistry *SoloRegistry
	BounceMode   BounceMode

	// MuteFaderAmp is the amp a muted channel fader decays to — not
	// necessarily silence, mirroring CONTROL_ROOM->mute_fader_'s own amp
	// control in the original.
	MuteFaderAmp float32

	// Monitor-only fields, ignored for channel/sample-processor faders.
	DimFaderAmp       float32
	ListenFaderAmp    float32
	DimOutputEnabled  bool
	HasListenedTracks bool
	ListenedL         []float32
	ListenedR         []float32
}

// Process runs one audio block through the fader: copy-in, the mute/solo
// fade-in/fade-out anti-click state machine, pan/mono/swap-phase, the
// monitor's dim/listen mix, and (for Monitor/SampleProcessor/master
// AudioChannel) a hard limiter to [-2,2].
func (f *Fader) Process(ctx ProcessContext, nframes int) {
	if f.StereoInL == nil || f.StereoInR == nil || f.StereoOutL == nil || f.StereoOutR == nil {
		return
	}
	inL, inR := f.StereoInL.Buffer(), f.StereoInR.Buffer()
	outL, outR := f.StereoOutL.Buffer(), f.StereoOutR.Buffer()
	copyRange(outL, inL, nframes)
	copyRange(outR, inR, nframes)

	if f.Passthrough {
		return
	}

	if f.Type == TypeMonitor {
		f.processMonitorMix(ctx, outL, outR, nframes)
		f.applyHardLimit(outL, outR, nframes)
		return
	}

	effectivelyMuted := f.EffectivelyMuted(ctx.SoloRegistry, ctx.BounceMode)
	f.runMuteFadeStateMachine(effectivelyMuted)

	muteAmp := ctx.MuteFaderAmp
	switch {
	case f.fadingOut:
		consumed := f.fadeFramesForType() - f.fadeOutSamples
		n := nframes
		if n > f.fadeOutSamples {
			n = f.fadeOutSamples
		}
		linearFadeOut(outL, consumed, f.fadeFramesForType(), n, muteAmp)
		linearFadeOut(outR, consumed, f.fadeFramesForType(), n, muteAmp)
		f.fadeOutSamples -= n
		if f.fadeOutSamples <= 0 {
			f.fadingOut = false
		}
		if n < nframes {
			fillVal(outL[n:], muteAmp, nframes-n)
			fillVal(outR[n:], muteAmp, nframes-n)
		}
	case f.fadeInSamples > 0:
		consumed := f.fadeFramesForType() - f.fadeInSamples
		n := nframes
		if n > f.fadeInSamples {
			n = f.fadeInSamples
		}
		linearFadeIn(outL, consumed, f.fadeFramesForType(), n, muteAmp)
		linearFadeIn(outR, consumed, f.fadeFramesForType(), n, muteAmp)
		f.fadeInSamples -= n
	case effectivelyMuted:
		fillVal(outL, muteAmp, nframes)
		fillVal(outR, muteAmp, nframes)
	}

	amp := controlValue(f.Amp)
	calcL, calcR := balanceControl(controlValue(f.Balance))
	mulK2(outL, amp*calcL, nframes)
	mulK2(outR, amp*calcR, nframes)

	if isToggled(f.MonoCompat) {
		makeMono(outL, outR, nframes)
	}
	if isToggled(f.SwapPhase) {
		mulK2(outL, -1, nframes)
		mulK2(outR, -1, nframes)
	}

	if f.Type == TypeSampleProcessor || ctx.SoloRegistry.IsMaster(f.TrackID) {
		f.applyHardLimit(outL, outR, nframes)
	}

	f.wasEffectivelyMuted = effectivelyMuted
}

// runMuteFadeStateMachine starts a fade-out on a mute-on transition and a
// fade-in on a mute-off transition, per process_block's edge detection
// against wasEffectivelyMuted.
func (f *Fader) runMuteFadeStateMachine(effectivelyMuted bool) {
	if effectivelyMuted && !f.wasEffectivelyMuted {
		f.fadeOutSamples = f.fadeFramesForType()
		f.fadingOut = true
	} else if !effectivelyMuted && f.wasEffectivelyMuted {
		f.fadingOut = false
		f.fadeInSamples = f.fadeFramesForType()
	}
}

// processMonitorMix applies the Monitor fader's dim-when-listening and
// listened-track mix bus on top of the already-copied main-bus signal.
func (f *Fader) processMonitorMix(ctx ProcessContext, outL, outR []float32, nframes int) {
	if ctx.HasListenedTracks {
		mulK2(outL, ctx.DimFaderAmp, nframes)
		mulK2(outR, ctx.DimFaderAmp, nframes)
		if len(ctx.ListenedL) > 0 {
			mixProduct(outL, ctx.ListenedL, ctx.ListenFaderAmp, nframes)
			mixProduct(outR, ctx.ListenedR, ctx.ListenFaderAmp, nframes)
		}
	}
	if ctx.DimOutputEnabled {
		mulK2(outL, ctx.DimFaderAmp, nframes)
		mulK2(outR, ctx.DimFaderAmp, nframes)
	}
	amp := controlValue(f.Amp)
	mulK2(outL, amp, nframes)
	mulK2(outR, amp, nframes)
}

func (f *Fader) applyHardLimit(outL, outR []float32, nframes int) {
	clipRange(outL, -2, 2, nframes)
	clipRange(outR, -2, 2, nframes)
}
