// Package automation implements AutomationTrack (spec §4.4): evaluating a
// control port's value at a timeline position, and the touch/latch
// recording state machine that writes new automation points during
// playback.
package automation

import (
	"fmt"
	"math"
	"time"

	"github.com/shaban/dawcore/port"
	"github.com/shaban/dawcore/region"
)

// Mode is the automation track's overall behavior for the current cycle.
type Mode int

const (
	ModeOff Mode = iota
	ModeRead
	ModeRecord
)

// RecordMode selects how Record mode captures incoming values.
type RecordMode int

const (
	RecordTouch RecordMode = iota
	RecordLatch
)

// TouchRecordingWindow is how long after a control's last touch the track
// keeps recording in Touch mode. The original's AUTOMATION_RECORDING_TOUCH_REL_MS
// constant wasn't present in the retrieved source; 500ms matches the
// touch-and-release feel described by the surrounding state machine.
const TouchRecordingWindow = 500 * time.Millisecond

// Track is one automation lane bound to a control port.
type Track struct {
	PortID     port.ID
	Mode       Mode
	RecordMode RecordMode
	Height     int
	Visible    bool
	Regions    []*region.Region

	recordingStarted bool
	lastTouch        time.Time
}

// AddRegion appends an automation region to the track. r.Kind must be
// KindAutomation.
func (t *Track) AddRegion(r *region.Region) error {
	if r.Kind != region.KindAutomation {
		return fmt.Errorf("automation: region kind %s is not an automation region", r.Kind)
	}
	t.Regions = append(t.Regions, r)
	return nil
}

// regionAt returns, among the regions starting at or before pos, the one
// with the greatest StartPos (the first one added wins a tie). With
// endsAfter=false a region whose EndPos <= pos does not qualify; with
// endsAfter=true a region that has already ended still does. It does no
// clamping itself: ValAtPos clamps the query to end_pos-1.
func (t *Track) regionAt(pos int64, endsAfter bool) *region.Region {
	var best *region.Region
	for _, r := range t.Regions {
		if r.StartPos > pos {
			continue
		}
		if !endsAfter && r.EndPos <= pos {
			continue
		}
		if best == nil || r.StartPos > best.StartPos {
			best = r
		}
	}
	return best
}

// apBefore returns the index of the latest AutomationPoint at or before
// localPos inside r.Points, or -1 if none qualifies.
func apBefore(r *region.Region, localPos int64) int {
	idx := -1
	for i, ap := range r.Points {
		if ap.LocalPos <= localPos {
			if idx == -1 || ap.LocalPos > r.Points[idx].LocalPos {
				idx = i
			}
		}
	}
	return idx
}

// ValAtPos evaluates the control value at a timeline position (spec
// §4.4). normalized selects whether the result is in [0,1] or in the
// port's real range; endsAfter mirrors the original's handling of a
// position past a region's end while still wanting that region's last
// value.
func (t *Track) ValAtPos(pos int64, normalized, endsAfter bool, p *port.Port) (float64, error) {
	r := t.regionAt(pos, endsAfter)
	if r == nil {
		if p == nil {
			return 0, nil
		}
		return controlValue(p, normalized), nil
	}

	queryPos := pos
	if endsAfter && r.EndPos <= pos {
		queryPos = r.EndPos - 1
	}
	localPos := r.TimelineFramesToLocal(queryPos, true)

	idx := apBefore(r, localPos)
	if idx == -1 {
		if p == nil {
			return 0, nil
		}
		return controlValue(p, normalized), nil
	}
	ap := r.Points[idx]

	if idx+1 >= len(r.Points) {
		if normalized {
			return ap.NormalizedValue, nil
		}
		return denormalize(p, ap.NormalizedValue), nil
	}
	next := r.Points[idx+1]

	numerator := localPos - ap.LocalPos
	denominator := next.LocalPos - ap.LocalPos
	var ratio float64
	switch {
	case numerator == 0:
		ratio = 0
	case denominator == 0:
		ratio = 1
	default:
		ratio = float64(numerator) / float64(denominator)
	}

	diff := math.Abs(ap.NormalizedValue - next.NormalizedValue)
	curveVal := evalCurve(ap, ratio)
	result := curveVal * diff
	if ap.NormalizedValue <= next.NormalizedValue {
		result += ap.NormalizedValue
	} else {
		result += next.NormalizedValue
	}

	if normalized {
		return result, nil
	}
	return denormalize(p, result), nil
}

func controlValue(p *port.Port, normalized bool) float64 {
	rng := p.Range()
	buf := p.Buffer()
	var v float64
	if len(buf) > 0 {
		v = float64(buf[0])
	}
	if !normalized {
		return v
	}
	if rng.Max == rng.Min {
		return 0
	}
	return float64((v - float64(rng.Min)) / float64(rng.Max-rng.Min))
}

func denormalize(p *port.Port, normalized float64) float64 {
	if p == nil {
		return normalized
	}
	rng := p.Range()
	return float64(rng.Min) + normalized*float64(rng.Max-rng.Min)
}
