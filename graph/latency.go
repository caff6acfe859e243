package graph

// DelayLine is a fixed-length ring buffer used to align a fast path's
// output with a slower parallel path feeding the same sink (spec
// §4.9's latency compensation: "sources with smaller latency feed delay
// lines so all paths to a sink align to the max latency on that path").
type DelayLine struct {
	buf   []float32
	write int
}

// NewDelayLine allocates a delay line of the given length in frames. A
// zero-length delay line is a valid no-op passthrough.
func NewDelayLine(frames int) *DelayLine {
	if frames < 0 {
		frames = 0
	}
	return &DelayLine{buf: make([]float32, frames)}
}

// Len reports the delay in frames.
func (d *DelayLine) Len() int { return len(d.buf) }

// Process writes in through the delay line into out, sample by sample.
// in and out may be the same slice: each in[i] is read before out[i] is
// written, so in-place use is safe.
func (d *DelayLine) Process(in, out []float32, n int) {
	if n > len(in) {
		n = len(in)
	}
	if n > len(out) {
		n = len(out)
	}
	if len(d.buf) == 0 {
		if !samePointer(in, out) {
			copy(out[:n], in[:n])
		}
		return
	}
	for i := 0; i < n; i++ {
		delayed := d.buf[d.write]
		d.buf[d.write] = in[i]
		out[i] = delayed
		d.write++
		if d.write == len(d.buf) {
			d.write = 0
		}
	}
}

func samePointer(a, b []float32) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}

// CumulativeLatency returns, for every node, its own Latency plus the
// maximum CumulativeLatency among its predecessors — the total
// processing delay a listener hears by the time that node's output is
// ready.
func (g *Graph) CumulativeLatency() (map[string]int, error) {
	if g.levels == nil {
		if err := g.Build(); err != nil {
			return nil, err
		}
	}
	preds := make(map[string][]string, len(g.nodes))
	for from, outs := range g.edges {
		for to := range outs {
			preds[to] = append(preds[to], from)
		}
	}
	cum := make(map[string]int, len(g.nodes))
	for _, level := range g.levels {
		for _, n := range level {
			max := 0
			for _, p := range preds[n.ID] {
				if cum[p] > max {
					max = cum[p]
				}
			}
			cum[n.ID] = max + n.Latency
		}
	}
	return cum, nil
}

// LatencyCompensation returns, for every edge (from, to), the number of
// frames `from`'s output must be delayed by before reaching `to` so
// that every path converging on a shared sink arrives aligned: the
// graph-wide maximum cumulative latency minus the latency already
// accrued along that particular edge's source.
func (g *Graph) LatencyCompensation() (map[[2]string]int, error) {
	cum, err := g.CumulativeLatency()
	if err != nil {
		return nil, err
	}
	maxLatency := 0
	for _, v := range cum {
		if v > maxLatency {
			maxLatency = v
		}
	}
	comp := make(map[[2]string]int)
	for from, outs := range g.edges {
		for to := range outs {
			comp[[2]string{from, to}] = maxLatency - cum[from]
		}
	}
	return comp, nil
}
