package enclosure

import (
	"math"

	"github.com/matzehuels/speakerbox/pkg/errors"
)

// TargetQtc is the system Q of a sealed box with a maximally flat
// (Butterworth) response.
const TargetQtc = 0.707

// CalculateSealed sizes a sealed box for a Qtc of [TargetQtc].
//
// It returns an INFEASIBLE_DESIGN error when the driver's Qts is at or above
// the target, since no finite box volume can lower the system Q below the
// driver's own.
func CalculateSealed(d Driver) (Result, error) {
	if err := d.Validate(); err != nil {
		return Result{}, err
	}

	ratio := TargetQtc / d.Qts
	alpha := ratio*ratio - 1
	if alpha <= 0 {
		return Result{}, errors.New(errors.ErrCodeInfeasibleDesign,
			"qts %g is at or above the target Qtc %g: a sealed box cannot reach this alignment", d.Qts, TargetQtc)
	}

	res := Result{
		Topology:          Sealed,
		BoxVolumeLiters:   d.Vas / alpha,
		CutoffFrequencyHz: d.Fs * math.Sqrt(ratio*ratio),
		TargetQtc:         TargetQtc,
	}
	if err := res.Validate(); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInfeasibleDesign, err, "sealed alignment for %s", d)
	}
	return res, nil
}
