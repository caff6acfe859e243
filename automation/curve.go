package automation

import (
	"github.com/shaban/dawcore/curve"
	"github.com/shaban/dawcore/region"
)

// evalCurve applies ap's curve shape at ratio — the
// AutomationPoint.get_normalized_value_in_curve call in the original,
// reduced to the pure function the spec's Open Questions section
// describes.
func evalCurve(ap region.AutomationPoint, ratio float64) float64 {
	return curve.Eval(ratio, ap.CurveOpts)
}
