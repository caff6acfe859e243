package hwproc

import (
	"errors"
	"testing"

	"github.com/rakyll/portmidi"

	"github.com/shaban/dawcore/port"
)

type fakeBackend struct {
	toRead   []portmidi.Event
	readErr  error
	written  [][3]int64
	writeErr error
	closed   bool
}

func (f *fakeBackend) Read() ([]portmidi.Event, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.toRead, nil
}

func (f *fakeBackend) WriteShort(status, data1, data2 int64) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, [3]int64{status, data1, data2})
	return nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func TestPullQueuesBackendEventsOntoIn(t *testing.T) {
	p := New("test-device", 64)
	p.Backend = &fakeBackend{toRead: []portmidi.Event{
		{Status: 0x90, Data1: 60, Data2: 100},
	}}

	if err := p.Pull(5); err != nil {
		t.Fatal(err)
	}
	p.In.Prepare(64)

	evs := p.In.MIDIEvents()
	if len(evs) != 1 {
		t.Fatalf("got %d events, want 1", len(evs))
	}
	if evs[0].Frame != 5 || evs[0].Raw[0] != 0x90 || evs[0].Raw[1] != 60 || evs[0].Raw[2] != 100 {
		t.Fatalf("event = %+v, want {frame:5 90 60 100}", evs[0])
	}
}

func TestPullPropagatesBackendReadError(t *testing.T) {
	p := New("test-device", 64)
	boom := errors.New("device gone")
	p.Backend = &fakeBackend{readErr: boom}

	if err := p.Pull(0); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapping %v", err, boom)
	}
}

func TestPushWritesQueuedOutEventsToBackend(t *testing.T) {
	p := New("test-device", 64)
	backend := &fakeBackend{}
	p.Backend = backend

	p.Out.QueueMIDI(port.Event{Frame: 0, Raw: [3]byte{0x90, 64, 90}, Len: 3})
	p.Out.Prepare(64)

	if err := p.Push(); err != nil {
		t.Fatal(err)
	}
	if len(backend.written) != 1 || backend.written[0] != [3]int64{0x90, 64, 90} {
		t.Fatalf("written = %+v, want [[0x90 64 90]]", backend.written)
	}
}

func TestCloseReleasesBackend(t *testing.T) {
	p := New("test-device", 64)
	backend := &fakeBackend{}
	p.Backend = backend

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !backend.closed {
		t.Fatal("expected backend to be closed")
	}
}

func TestNilBackendIsANoop(t *testing.T) {
	p := New("test-device", 64)
	if err := p.Pull(0); err != nil {
		t.Fatal(err)
	}
	if err := p.Push(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}
