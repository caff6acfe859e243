package engine

import "fmt"

// BlockLengthDefault is the spec's default block length (STRIP_SIZE's
// sibling constant, spec §6).
const BlockLengthDefault = 4096

var recognizedSampleRates = map[int]bool{
	22050: true, 32000: true, 44100: true, 48000: true,
	88200: true, 96000: true, 192000: true,
}

var recognizedBlockLengths = map[int]bool{
	16: true, 32: true, 64: true, 128: true, 256: true,
	512: true, 1024: true, 2048: true, 4096: true,
}

// Config holds the two values a backend driver negotiates with the
// engine before the first process() call (spec §6).
type Config struct {
	SampleRate  int
	BlockLength int
}

// ResolveConfig validates cfg against the recognized sample-rate and
// block-length sets (spec §6), defaulting an unset BlockLength to
// BlockLengthDefault the way the teacher's `engine/spec.Resolve`
// defaults an unset BufferSize.
func ResolveConfig(cfg Config) (Config, error) {
	if cfg.BlockLength <= 0 {
		cfg.BlockLength = BlockLengthDefault
	}
	if !recognizedSampleRates[cfg.SampleRate] {
		return Config{}, fmt.Errorf("engine: unsupported sample rate %d", cfg.SampleRate)
	}
	if !recognizedBlockLengths[cfg.BlockLength] {
		return Config{}, fmt.Errorf("engine: unsupported block length %d", cfg.BlockLength)
	}
	return cfg, nil
}
