package plugin

import (
	"fmt"

	"github.com/shaban/dawcore/region"
)

// Chain manages an ordered sequence of plugin slots on a Channel strip
// (spec §4.7's MidiFx/Inserts arrays), grounded on the teacher's own
// PluginChain API (AddPlugin/RemovePlugin/ReorderPlugin/SetPluginBypassed).
// Capacity is fixed by the caller (STRIP_SIZE=9, spec §6) rather than
// baked into Chain itself, so the same type serves both MidiFx and Inserts.
type Chain struct {
	Capacity int
	Slots    []*Wrapper
}

// NewChain creates an empty chain capped at capacity slots.
func NewChain(capacity int) *Chain {
	return &Chain{Capacity: capacity, Slots: make([]*Wrapper, 0, capacity)}
}

// Add appends a plugin slot to the end of the chain.
func (c *Chain) Add(w *Wrapper) error {
	if len(c.Slots) >= c.Capacity {
		return fmt.Errorf("plugin: chain full (capacity %d)", c.Capacity)
	}
	c.Slots = append(c.Slots, w)
	return nil
}

// Remove drops the slot at index.
func (c *Chain) Remove(index int) error {
	if index < 0 || index >= len(c.Slots) {
		return fmt.Errorf("plugin: invalid chain index %d", index)
	}
	c.Slots = append(c.Slots[:index], c.Slots[index+1:]...)
	return nil
}

// Reorder moves the slot at fromIndex to toIndex, shifting the rest.
func (c *Chain) Reorder(fromIndex, toIndex int) error {
	if fromIndex < 0 || fromIndex >= len(c.Slots) {
		return fmt.Errorf("plugin: invalid from index %d", fromIndex)
	}
	if toIndex < 0 || toIndex >= len(c.Slots) {
		return fmt.Errorf("plugin: invalid to index %d", toIndex)
	}
	if fromIndex == toIndex {
		return nil
	}
	w := c.Slots[fromIndex]
	c.Slots = append(c.Slots[:fromIndex], c.Slots[fromIndex+1:]...)
	rest := append([]*Wrapper{w}, c.Slots[toIndex:]...)
	c.Slots = append(c.Slots[:toIndex], rest...)
	return nil
}

// SetBypassed toggles bypass on the slot at index.
func (c *Chain) SetBypassed(index int, bypassed bool) error {
	if index < 0 || index >= len(c.Slots) {
		return fmt.Errorf("plugin: invalid chain index %d", index)
	}
	c.Slots[index].SetBypassed(bypassed)
	return nil
}

// Process runs every slot in order, wiring each one's output into the
// next one's input is the caller's responsibility (graph-level
// connections) — Chain.Process only drives each slot's own block.
//
// A slot that fails or underruns is wired around by Wrapper.Process
// itself, so the chain keeps running regardless; any per-slot errors are
// collected and returned for the caller's rate-limited logging (spec §7
// treats PluginInstantiationFailed and XRun as "bypass and notify", not
// "abort the cycle").
func (c *Chain) Process(ti region.TimeInfo) []error {
	var errs []error
	for _, w := range c.Slots {
		if err := w.Process(ti); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
