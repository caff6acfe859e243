package port

import "testing"

func TestPrepareZeroesAudioBuffer(t *testing.T) {
	p := New(Config{ID: 1, Type: TypeAudio, Flow: FlowOutput}, 8)
	buf := p.Buffer()
	for i := range buf {
		buf[i] = 1.0
	}
	p.Prepare(8)
	for i, v := range p.Buffer() {
		if v != 0 {
			t.Fatalf("buffer[%d] = %v, want 0 after Prepare", i, v)
		}
	}
}

func TestPrepareBufferLengthMatchesBlockSize(t *testing.T) {
	p := New(Config{ID: 1, Type: TypeAudio, Flow: FlowOutput}, 256)
	if got := len(p.Buffer()); got != 256 {
		t.Fatalf("buffer length = %d, want 256", got)
	}
	p.Realloc(512)
	if got := len(p.Buffer()); got != 512 {
		t.Fatalf("buffer length after Realloc = %d, want 512", got)
	}
}

func TestConnectRejectsDuplicate(t *testing.T) {
	src := New(Config{ID: 1, Type: TypeAudio, Flow: FlowOutput}, 8)
	dst := New(Config{ID: 2, Type: TypeAudio, Flow: FlowInput}, 8)

	if _, err := src.Connect(dst, 1.0, false); err != nil {
		t.Fatalf("first Connect: unexpected error %v", err)
	}
	if _, err := src.Connect(dst, 1.0, false); err != ErrAlreadyConnected {
		t.Fatalf("second Connect: got %v, want ErrAlreadyConnected", err)
	}
}

func TestProcessSumsGainMultipliedFanIn(t *testing.T) {
	tests := []struct {
		name       string
		srcValues  [][]float32
		multipliers []float32
		want       []float32
	}{
		{
			name:        "single source unity gain",
			srcValues:   [][]float32{{1, 1, 1, 1}},
			multipliers: []float32{1.0},
			want:        []float32{1, 1, 1, 1},
		},
		{
			name:        "two sources half gain each",
			srcValues:   [][]float32{{1, 1, 1, 1}, {1, 1, 1, 1}},
			multipliers: []float32{0.5, 0.5},
			want:        []float32{1, 1, 1, 1},
		},
		{
			name:        "negative multiplier inverts",
			srcValues:   [][]float32{{1, 2, 3, 4}},
			multipliers: []float32{-1.0},
			want:        []float32{-1, -2, -3, -4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := New(Config{ID: 100, Type: TypeAudio, Flow: FlowInput}, 4)
			for i, vals := range tt.srcValues {
				src := New(Config{ID: ID(i + 1), Type: TypeAudio, Flow: FlowOutput}, 4)
				copy(src.Buffer(), vals)
				if _, err := src.Connect(dst, tt.multipliers[i], false); err != nil {
					t.Fatalf("Connect: %v", err)
				}
			}
			dst.Prepare(4)
			dst.Process(4)
			for i, v := range dst.Buffer() {
				if v != tt.want[i] {
					t.Fatalf("buffer[%d] = %v, want %v", i, v, tt.want[i])
				}
			}
		})
	}
}

func TestDisabledConnectionDoesNotContribute(t *testing.T) {
	src := New(Config{ID: 1, Type: TypeAudio, Flow: FlowOutput}, 4)
	dst := New(Config{ID: 2, Type: TypeAudio, Flow: FlowInput}, 4)
	copy(src.Buffer(), []float32{1, 1, 1, 1})

	c, err := src.Connect(dst, 1.0, false)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	c.SetEnabled(false)

	dst.Prepare(4)
	dst.Process(4)
	for i, v := range dst.Buffer() {
		if v != 0 {
			t.Fatalf("buffer[%d] = %v, want 0 (connection disabled)", i, v)
		}
	}
}

func TestMIDIEventsMergeAndSort(t *testing.T) {
	src1 := New(Config{ID: 1, Type: TypeMIDI, Flow: FlowOutput}, 4)
	src2 := New(Config{ID: 2, Type: TypeMIDI, Flow: FlowOutput}, 4)
	dst := New(Config{ID: 3, Type: TypeMIDI, Flow: FlowInput}, 4)

	if _, err := src1.Connect(dst, 1.0, false); err != nil {
		t.Fatal(err)
	}
	if _, err := src2.Connect(dst, 1.0, false); err != nil {
		t.Fatal(err)
	}

	src1.midiBuf = []Event{{Frame: 10}}
	src2.midiBuf = []Event{{Frame: 3}, {Frame: 7}}

	dst.Prepare(64)
	dst.Process(64)

	evs := dst.MIDIEvents()
	if len(evs) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(evs))
	}
	for i := 1; i < len(evs); i++ {
		if evs[i-1].Frame > evs[i].Frame {
			t.Fatalf("events not sorted: %v", evs)
		}
	}
}

func TestExposeToBackendIsIdempotent(t *testing.T) {
	p := New(Config{ID: 1, Type: TypeAudio, Flow: FlowOutput}, 4)
	p.ExposeToBackend(true)
	m1 := p.Meter()
	p.ExposeToBackend(true)
	if p.Meter() != m1 {
		t.Fatalf("ExposeToBackend(true) twice allocated a new meter ring")
	}
	if !p.IsExposed() {
		t.Fatalf("IsExposed() = false after ExposeToBackend(true)")
	}
}

func TestMeterRingTracksLatestBlock(t *testing.T) {
	r := NewMeterRing(2, 4)
	r.Push([]float32{1, 1, 1, 1})
	r.Push([]float32{2, 2, 2, 2})
	latest := r.Latest()
	for _, v := range latest {
		if v != 2 {
			t.Fatalf("Latest() = %v, want all 2s", latest)
		}
	}
}

func TestManagerConnectUnknownPort(t *testing.T) {
	m := NewManager()
	p := New(Config{ID: 1, Type: TypeAudio, Flow: FlowOutput}, 4)
	m.Register(p)
	if _, err := m.Connect(1, 2, 1.0, false); err == nil {
		t.Fatalf("Connect with unknown destination: expected error")
	}
}

func TestManagerUnregisterRemovesConnections(t *testing.T) {
	m := NewManager()
	src := New(Config{ID: 1, Type: TypeAudio, Flow: FlowOutput}, 4)
	dst := New(Config{ID: 2, Type: TypeAudio, Flow: FlowInput}, 4)
	m.Register(src)
	m.Register(dst)
	if _, err := m.Connect(1, 2, 1.0, false); err != nil {
		t.Fatal(err)
	}
	m.Unregister(1)
	if len(m.ByDestination(2)) != 0 {
		t.Fatalf("expected no connections to port 2 after unregistering port 1")
	}
}
