package port

import (
	"math"
	"sync/atomic"
)

// DefaultMeterBlocks is the default depth (K in spec §4.1) of the metering
// ring buffer kept per exposed audio port.
const DefaultMeterBlocks = 8

// MeterRing is a lock-free SPSC ring buffer of the last K audio blocks
// written by a port, for non-realtime metering consumers. The audio
// thread is the sole writer (Push); any number of readers may call
// Snapshot, but only the most recent reader's view is meaningful across
// concurrent Pushes (read-tearing of in-flight blocks is acceptable for a
// meter, matching §5's "SPSC lock-free from audio thread to UI").
//
// Modeled after the generic RingBuffer[T] used for scope/meter data in
// vsariola/sointu's tracker package, specialized to []float32 blocks and
// made safe for a single writer / many readers via an atomic write index.
type MeterRing struct {
	blocks  [][]float32
	blockSz int
	write   atomic.Uint64
}

// NewMeterRing allocates a ring with room for depth blocks of blockSize
// samples each.
func NewMeterRing(depth, blockSize int) *MeterRing {
	if depth <= 0 {
		depth = DefaultMeterBlocks
	}
	r := &MeterRing{blocks: make([][]float32, depth), blockSz: blockSize}
	for i := range r.blocks {
		r.blocks[i] = make([]float32, blockSize)
	}
	return r
}

// Push copies block into the next ring slot. Called once per cycle by the
// audio thread for each exposed port.
func (r *MeterRing) Push(block []float32) {
	if len(r.blocks) == 0 {
		return
	}
	idx := r.write.Load() % uint64(len(r.blocks))
	dst := r.blocks[idx]
	n := copy(dst, block)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	r.write.Add(1)
}

// Depth returns the number of blocks the ring holds.
func (r *MeterRing) Depth() int { return len(r.blocks) }

// Latest returns a copy of the most recently pushed block, or nil if
// nothing has been pushed yet.
func (r *MeterRing) Latest() []float32 {
	w := r.write.Load()
	if w == 0 {
		return nil
	}
	idx := (w - 1) % uint64(len(r.blocks))
	out := make([]float32, len(r.blocks[idx]))
	copy(out, r.blocks[idx])
	return out
}

// RMS computes the root-mean-square level of the most recently pushed
// block, used by non-realtime meter widgets.
func (r *MeterRing) RMS() float64 {
	latest := r.Latest()
	if len(latest) == 0 {
		return 0
	}
	var sum float64
	for _, v := range latest {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(latest)))
}
