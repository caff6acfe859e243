package pool

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// makeWAV builds a minimal canonical 16-bit PCM WAV file, following the
// layout ik5-audpbx's format test helpers construct.
func makeWAV(sampleRate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)
	numChannels := uint16(channels)
	bits := uint16(16)
	byteRate := uint32(sampleRate) * uint32(numChannels) * uint32(bits/8)
	blockAlign := numChannels * (bits / 8)
	dataSize := uint32(len(samples) * 2)
	riffSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, riffSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, numChannels)
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, bits)

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func TestDecodeWAVRoundTripsSampleValues(t *testing.T) {
	data := makeWAV(44100, 1, []int16{0, 16384, -16384, 32767})
	clip, err := Decode(data, 120.0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if clip.Channels != 1 {
		t.Fatalf("Channels = %d, want 1", clip.Channels)
	}
	if clip.SampleRate != 44100 {
		t.Fatalf("SampleRate = %d, want 44100", clip.SampleRate)
	}
	if clip.NumFrames != 4 {
		t.Fatalf("NumFrames = %d, want 4", clip.NumFrames)
	}
	want := []float32{0, 0.5, -0.5, 32767.0 / 32768.0}
	for i, w := range want {
		if diff := clip.Frames[i] - w; diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("Frames[%d] = %v, want %v", i, clip.Frames[i], w)
		}
	}
}

func TestDecodeUnrecognizedFormat(t *testing.T) {
	if _, err := Decode([]byte("not an audio file"), 0); err == nil {
		t.Fatalf("expected error for unrecognized container")
	}
}

func TestDecodeFLACReturnsUnsupported(t *testing.T) {
	_, err := Decode([]byte("fLaC" + "padding-to-look-plausible"), 0)
	if err == nil {
		t.Fatalf("expected ErrUnsupportedFormat for FLAC signature")
	}
}

func TestPoolAddIsContentAddressed(t *testing.T) {
	data := makeWAV(44100, 2, []int16{1, 2, 3, 4})
	clip1, err := Decode(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	clip2, err := Decode(data, 0)
	if err != nil {
		t.Fatal(err)
	}

	p := NewPool()
	id1 := p.Add(clip1)
	id2 := p.Add(clip2)
	if id1 != id2 {
		t.Fatalf("identical content got different pool IDs: %d vs %d", id1, id2)
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (deduplicated)", p.Len())
	}
}

func TestPoolGetUnknownID(t *testing.T) {
	p := NewPool()
	if _, err := p.Get(999); err != ErrNotFound {
		t.Fatalf("Get(unknown) = %v, want ErrNotFound", err)
	}
}

func TestPoolDuplicateIsIndependentCopy(t *testing.T) {
	data := makeWAV(44100, 1, []int16{10, 20, 30})
	clip, err := Decode(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	p := NewPool()
	id := p.Add(clip)

	dupID, err := p.Duplicate(id, true)
	if err != nil {
		t.Fatal(err)
	}
	if dupID == id {
		t.Fatalf("Duplicate returned the same ID")
	}

	orig, _ := p.Get(id)
	dup, _ := p.Get(dupID)
	dup.Frames[0] = 999

	if orig.Frames[0] == dup.Frames[0] {
		t.Fatalf("mutating the duplicate affected the original")
	}
}

func TestChannelFramesDeinterleaves(t *testing.T) {
	data := makeWAV(44100, 2, []int16{1, 2, 3, 4})
	clip, err := Decode(data, 0)
	if err != nil {
		t.Fatal(err)
	}
	left := clip.ChannelFrames(0)
	right := clip.ChannelFrames(1)
	if len(left) != 2 || len(right) != 2 {
		t.Fatalf("expected 2 frames per channel, got %d/%d", len(left), len(right))
	}
}
