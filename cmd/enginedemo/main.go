// Command enginedemo wires one audio channel strip — track processor,
// a single gain insert, prefader, and fader — into an Engine and drives
// it with a dummy DSP thread (spec §5: "a dummy DSP thread used in
// tests when no backend is present"), printing a heartbeat every 20 cycles.
// Grounded on the teacher's examples/engine_demo/main.go for the
// create-engine/create-channel/run-loop/signal-handling shape.
package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shaban/dawcore/channel"
	"github.com/shaban/dawcore/engine"
	"github.com/shaban/dawcore/fader"
	"github.com/shaban/dawcore/graph"
	"github.com/shaban/dawcore/plugin"
	"github.com/shaban/dawcore/port"
	"github.com/shaban/dawcore/region"
	"github.com/shaban/dawcore/trackproc"
	"github.com/shaban/dawcore/transport"
)

const blockLength = 256
const sampleRate = 48000

// unityGainBackend is a stand-in plugin backend: a single-insert gain
// stage that copies input straight to output, the way the teacher's own
// demo tries to load a real AU plugin and prints "expected" failure
// when none is installed. This module has no real plugin host (spec
// Non-goal), so the demo uses the same passthrough shape its own test
// suite does (channel_test.go's passthroughBackend).
type unityGainBackend struct{}

func (unityGainBackend) Instantiate() error              { return nil }
func (unityGainBackend) Prepare(float64, int) error      { return nil }
func (unityGainBackend) Disconnect() error               { return nil }
func (unityGainBackend) Process(ti region.TimeInfo) (int, error) {
	return ti.NFrames, nil
}

func stereoPort(id port.ID, flow port.Flow, owner port.OwnerKind) *port.Port {
	return port.New(port.Config{ID: id, Type: port.TypeAudio, Flow: flow, Owner: owner}, blockLength)
}

func controlPort(id port.ID, zero float32) *port.Port {
	return port.New(port.Config{ID: id, Type: port.TypeControl, Flow: port.FlowInput, Owner: port.OwnerFader, Range: port.Range{Zero: zero}}, blockLength)
}

func newAudioFader(id port.ID) *fader.Fader {
	return &fader.Fader{
		Type:       fader.TypeAudioChannel,
		Amp:        controlPort(id, 1),
		Balance:    controlPort(id+1, 0.5),
		Mute:       controlPort(id+2, 0),
		Solo:       controlPort(id+3, 0),
		Listen:     controlPort(id+4, 0),
		MonoCompat: controlPort(id+5, 0),
		SwapPhase:  controlPort(id+6, 0),
		StereoInL:  stereoPort(id+7, port.FlowInput, port.OwnerFader),
		StereoInR:  stereoPort(id+8, port.FlowInput, port.OwnerFader),
		StereoOutL: stereoPort(id+9, port.FlowOutput, port.OwnerFader),
		StereoOutR: stereoPort(id+10, port.FlowOutput, port.OwnerFader),
	}
}

func newGainInsert(id port.ID) *plugin.Wrapper {
	in := []*port.Port{stereoPort(id, port.FlowInput, port.OwnerPlugin), stereoPort(id+1, port.FlowInput, port.OwnerPlugin)}
	out := []*port.Port{stereoPort(id+2, port.FlowOutput, port.OwnerPlugin), stereoPort(id+3, port.FlowOutput, port.OwnerPlugin)}
	return plugin.New("unity gain", unityGainBackend{}, in, out)
}

func main() {
	fmt.Println("dawcore engine demo")
	fmt.Println("===================")

	tr, err := transport.New(120, transport.TimeSignature{Numerator: 4, Denominator: 4}, float64(sampleRate)/(120.0/60.0*960.0))
	if err != nil {
		log.Fatalf("transport: %v", err)
	}
	tr.Start()

	tp := trackproc.New(false, blockLength)
	tp.Armed = true

	prefader := newAudioFader(100)
	prefader.Passthrough = true
	fdr := newAudioFader(200)

	ch := channel.New(1, false, tp, prefader, fdr)
	insert := newGainInsert(300)
	if err := ch.SetInsert(0, insert); err != nil {
		log.Fatalf("wiring insert: %v", err)
	}
	if err := insert.Instantiate(); err != nil {
		log.Fatalf("instantiating insert: %v", err)
	}

	metro := &transport.Metronome{
		Out:         port.New(port.Config{ID: 900, Type: port.TypeMIDI, Flow: port.FlowOutput, Owner: port.OwnerEngine}, blockLength),
		ClickOnBar:  true,
		ClickOnBeat: true,
	}

	g := graph.New()
	mustAddNode(g, &graph.Node{
		ID:      "metronome",
		Prepare: func(n int) { metro.Out.Prepare(n) },
		Process: func(region.TimeInfo) error { metro.Process(tr, blockLength); return nil },
	})
	mustAddNode(g, &graph.Node{
		ID: "trackproc",
		Prepare: func(n int) {
			tp.StereoInL.Prepare(n)
			tp.StereoInR.Prepare(n)
			tp.StereoOutL.Prepare(n)
			tp.StereoOutR.Prepare(n)
		},
		Process: func(ti region.TimeInfo) error {
			fillTestTone(tp.StereoInL.Buffer(), tp.StereoInR.Buffer(), ti.GStartFrame)
			return tp.Process(ti.NFrames, nil)
		},
	})
	mustAddNode(g, &graph.Node{
		ID:      "channel",
		Prepare: func(n int) {},
		Process: func(ti region.TimeInfo) error {
			errs := ch.Process(ti, fader.ProcessContext{SoloRegistry: fader.NewSoloRegistry(), MuteFaderAmp: 0})
			if len(errs) > 0 {
				return errs[0]
			}
			return nil
		},
	})
	if err := g.AddEdge("trackproc", "channel"); err != nil {
		log.Fatalf("wiring graph: %v", err)
	}

	e, err := engine.New(engine.Config{SampleRate: sampleRate, BlockLength: blockLength}, tr, g, fdr.StereoOutL, fdr.StereoOutR)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	e.Activate(true)

	fmt.Println("Engine running. Press Ctrl+C to stop...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	blockPeriodMs := float64(blockLength) / float64(sampleRate) * 1000
	ticker := time.NewTicker(time.Duration(blockPeriodMs * float64(time.Millisecond)))
	defer ticker.Stop()

	cycles := 0
	for {
		select {
		case <-ticker.C:
			outL, outR := e.Process(blockLength)
			cycles++
			if cycles%20 == 0 {
				fmt.Printf("cycle %d: bar %d beat %d, peak L=%.4f R=%.4f, fault=%v\n",
					cycles, tr.Bar, tr.Beat, peak(outL), peak(outR), e.Fault())
			}
		case <-sigChan:
			fmt.Println("\nShutdown signal received.")
			e.Activate(false)
			return
		}
	}
}

// fillTestTone writes a low-amplitude sine wave into l/r, the demo's
// stand-in for a real audio input device.
func fillTestTone(l, r []float32, startFrame int64) {
	const freq = 220.0
	for i := range l {
		phase := 2 * math.Pi * freq * float64(startFrame+int64(i)) / float64(sampleRate)
		v := float32(0.1 * math.Sin(phase))
		l[i] = v
		r[i] = v
	}
}

func mustAddNode(g *graph.Graph, n *graph.Node) {
	if err := g.AddNode(n); err != nil {
		log.Fatalf("wiring graph: %v", err)
	}
}

func peak(buf []float32) float32 {
	var m float32
	for _, v := range buf {
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}
