package pool

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// ErrUnsupportedFormat is returned when the input's container signature is
// recognized but no decoder for it is wired into this pool.
var ErrUnsupportedFormat = errors.New("pool: unsupported clip format")

// decoded is the normalized result of running one of the format decoders
// below; buildClip turns it into a pool.Clip.
type decoded struct {
	channels   int
	sampleRate int
	bitDepth   int
	frames     []float32 // interleaved
}

// decodeBytes sniffs the container signature and dispatches to the
// matching decoder. Spec §6 names WAV (32-bit float) and FLAC (16/24-bit
// integer) as the clip file formats; mp3/oggvorbis are a supplemental
// pool-import path (see SPEC_FULL.md §B) carried over from
// ik5-audpbx's multi-format Source/Decoder registry.
func decodeBytes(data []byte) (decoded, error) {
	switch {
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) > 12 && bytes.Equal(data[8:12], []byte("WAVE")):
		return decodeWAV(data)
	case bytes.HasPrefix(data, []byte("fLaC")):
		return decoded{}, fmt.Errorf("%w: FLAC (no decoder available)", ErrUnsupportedFormat)
	case bytes.HasPrefix(data, []byte("OggS")):
		return decodeOggVorbis(data)
	case looksLikeMP3(data):
		return decodeMP3(data)
	default:
		return decoded{}, fmt.Errorf("%w: unrecognized container", ErrUnsupportedFormat)
	}
}

func looksLikeMP3(data []byte) bool {
	if len(data) < 3 {
		return false
	}
	if bytes.HasPrefix(data, []byte("ID3")) {
		return true
	}
	// MPEG frame sync: 11 set bits at the start of a frame header.
	return data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

func decodeWAV(data []byte) (decoded, error) {
	r := bytes.NewReader(data)
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return decoded{}, errors.New("pool: not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return decoded{}, fmt.Errorf("pool: decode WAV: %w", err)
	}
	fmtInfo := dec.Format()
	if fmtInfo == nil {
		return decoded{}, errors.New("pool: WAV has no format chunk")
	}
	bitDepth := int(dec.BitDepth)
	maxVal := maxValForBitDepth(bitDepth)
	frames := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		frames[i] = float32(v) / maxVal
	}
	return decoded{
		channels:   fmtInfo.NumChannels,
		sampleRate: fmtInfo.SampleRate,
		bitDepth:   bitDepth,
		frames:     frames,
	}, nil
}

func maxValForBitDepth(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 16:
		return 32768.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

func decodeMP3(data []byte) (decoded, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return decoded{}, fmt.Errorf("pool: decode MP3: %w", err)
	}
	var frames []float32
	buf := make([]byte, 4096)
	for {
		n, err := dec.Read(buf)
		for i := 0; i+1 < n; i += 2 {
			v := int16(uint16(buf[i]) | uint16(buf[i+1])<<8)
			frames = append(frames, float32(v)/32768.0)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return decoded{}, fmt.Errorf("pool: decode MP3: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return decoded{
		channels:   2,
		sampleRate: dec.SampleRate(),
		bitDepth:   16,
		frames:     frames,
	}, nil
}

func decodeOggVorbis(data []byte) (decoded, error) {
	dec, err := oggvorbis.NewReader(bytes.NewReader(data))
	if err != nil {
		return decoded{}, fmt.Errorf("pool: decode OggVorbis: %w", err)
	}
	channels := dec.Channels()
	buf := make([]float32, 4096*channels)
	var frames []float32
	for {
		n, err := dec.Read(buf)
		frames = append(frames, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return decoded{}, fmt.Errorf("pool: decode OggVorbis: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return decoded{
		channels:   channels,
		sampleRate: dec.SampleRate(),
		bitDepth:   32,
		frames:     frames,
	}, nil
}
