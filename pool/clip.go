// Package pool implements the content-addressed AudioClip store referenced
// by audio regions (spec §4.2). Clips are decoded once on a non-realtime
// thread; once inserted, their sample data is immutable and safe for
// concurrent real-time reads.
package pool

// ID identifies a clip inside a Pool. Stable for the clip's lifetime.
type ID uint64

// Clip holds decoded PCM data for one audio file, content-addressed by its
// source bytes' hash (spec §4.2).
type Clip struct {
	PoolID     ID
	Channels   int
	NumFrames  int64
	SampleRate int
	BitDepth   int

	// Frames is interleaved float32 PCM, len == NumFrames*Channels.
	Frames []float32

	// ChFrames is the deinterleaved per-channel cache, lazily built by
	// ChannelFrames and reused afterwards.
	chFrames [][]float32

	BPMAtCreation float64
	FileHash      string
}

// ChannelFrames returns a deinterleaved view of channel ch, building and
// caching it on first use.
func (c *Clip) ChannelFrames(ch int) []float32 {
	if ch < 0 || ch >= c.Channels {
		return nil
	}
	if c.chFrames == nil {
		c.chFrames = make([][]float32, c.Channels)
	}
	if c.chFrames[ch] == nil {
		out := make([]float32, c.NumFrames)
		for i := range out {
			out[i] = c.Frames[int64(i)*int64(c.Channels)+int64(ch)]
		}
		c.chFrames[ch] = out
	}
	return c.chFrames[ch]
}

// DurationFrames is an alias for NumFrames kept for readability at call
// sites that compute region-to-clip frame math.
func (c *Clip) DurationFrames() int64 { return c.NumFrames }
