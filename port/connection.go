package port

import (
	"math"
	"sync/atomic"
)

// Connection is a directed, gain-multiplied edge between two ports (spec
// §3 PortConnection). Multiple fan-in connections to the same destination
// are allowed; Port.Process sums them each cycle.
type Connection struct {
	src, dst *Port

	multiplier atomic.Uint32 // float32 bits; mutated from the control thread
	enabled    atomic.Bool
	locked     bool
}

// Multiplier returns the connection's current gain multiplier.
func (c *Connection) Multiplier() float32 {
	return math.Float32frombits(c.multiplier.Load())
}

// SetMultiplier updates the gain multiplier. Safe to call from the control
// thread while the audio thread is between cycles (§5 ordering).
func (c *Connection) SetMultiplier(m float32) {
	c.multiplier.Store(math.Float32bits(m))
}

// Enabled reports whether this connection currently contributes to the
// destination's fan-in sum.
func (c *Connection) Enabled() bool { return c.enabled.Load() }

// SetEnabled toggles the connection without removing it from the graph.
func (c *Connection) SetEnabled(enabled bool) { c.enabled.Store(enabled) }

// Locked reports whether this connection is protected against casual
// disconnection by UI/editing code (spec §3).
func (c *Connection) Locked() bool { return c.locked }

// Source and Destination return the endpoints' stable IDs.
func (c *Connection) Source() ID      { return c.src.id }
func (c *Connection) Destination() ID { return c.dst.id }

// Disconnect removes this connection from its destination's incoming list.
func (c *Connection) Disconnect() {
	dst := c.dst
	for i, cur := range dst.connsIn {
		if cur == c {
			dst.connsIn = append(dst.connsIn[:i], dst.connsIn[i+1:]...)
			return
		}
	}
}
