package automation

import (
	"fmt"
	"sort"
	"time"

	"github.com/shaban/dawcore/region"
)

func errNotAutomationRegion(k region.Kind) error {
	return fmt.Errorf("automation: region kind %s is not an automation region", k)
}

func sortPoints(points []region.AutomationPoint) {
	sort.Slice(points, func(i, j int) bool { return points[i].LocalPos < points[j].LocalPos })
}

// Touch marks the control as having just been moved by the user, at
// curTime. Call this from the control-surface/UI handler whenever the
// bound port's value changes; ShouldBeRecording consults it for Touch
// mode's recording window.
func (t *Track) Touch(curTime time.Time) {
	t.lastTouch = curTime
}

// ShouldBeRecording reports whether the track should be writing
// automation points at curTime, mirroring the original's
// should_be_recording (spec §4.4).
func (t *Track) ShouldBeRecording(curTime time.Time) bool {
	if t.Mode != ModeRecord {
		return false
	}
	switch t.RecordMode {
	case RecordLatch:
		// Latch: always recording once armed, even without a touch,
		// matching the original's "recording even if the value doesn't
		// change" comment.
		return true
	case RecordTouch:
		if t.lastTouch.IsZero() {
			return false
		}
		if curTime.Sub(t.lastTouch) < TouchRecordingWindow {
			return true
		}
		return t.recordingStarted
	default:
		return false
	}
}

// ShouldReadAutomation reports whether playback should apply ValAtPos
// results to the bound port this cycle — false while actively
// recording, since the live value takes precedence (spec §4.4).
func (t *Track) ShouldReadAutomation(curTime time.Time) bool {
	if t.Mode == ModeOff {
		return false
	}
	return !t.ShouldBeRecording(curTime)
}

// RecordPoint writes an automation point into activeRegion at localPos,
// the write side of the touch/latch state machine: a point already at
// localPos is replaced, otherwise the new point is inserted in LocalPos
// order. Returns an error only if activeRegion is not an automation
// region; it does not check that the region covers localPos.
func (t *Track) RecordPoint(activeRegion *region.Region, localPos int64, normalizedValue float64, opts region.AutomationPoint) error {
	if activeRegion.Kind != region.KindAutomation {
		return errNotAutomationRegion(activeRegion.Kind)
	}
	opts.LocalPos = localPos
	opts.NormalizedValue = normalizedValue
	for i, ap := range activeRegion.Points {
		if ap.LocalPos == localPos {
			activeRegion.Points[i] = opts
			return nil
		}
	}
	activeRegion.Points = append(activeRegion.Points, opts)
	sortPoints(activeRegion.Points)
	return nil
}
