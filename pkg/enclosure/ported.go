package enclosure

import (
	"math"

	"github.com/matzehuels/speakerbox/pkg/errors"
)

// Ported-box model constants. These are design simplifications, not the
// output of a vented-alignment optimizer.
const (
	// PortedVolumeRatio scales Vas to the ported box volume.
	PortedVolumeRatio = 2.5

	// TuningRatio scales Fs to the port tuning frequency.
	TuningRatio = 0.8

	// PortDiameterCm is the diameter of the single round port.
	PortDiameterCm = 5.0

	// MinPortLengthCm is the shortest port the model will report.
	MinPortLengthCm = 5.0

	// helmholtzConstant is the Helmholtz port-length constant for cm, liters and Hz.
	helmholtzConstant = 23562.5

	// endCorrection is the combined end correction per unit of port diameter.
	endCorrection = 0.732
)

// CalculatePorted sizes a ported box with the fixed-ratio model.
//
// The port length is clamped to [MinPortLengthCm]; when that happens
// Result.PortClamped is set and the tuning frequency is left unchanged.
func CalculatePorted(d Driver) (Result, error) {
	if err := d.Validate(); err != nil {
		return Result{}, err
	}

	vb := d.Vas * PortedVolumeRatio
	fb := d.Fs * TuningRatio

	length := PortLength(fb, vb, PortDiameterCm)
	clamped := length < MinPortLengthCm
	if clamped {
		length = MinPortLengthCm
	}

	res := Result{
		Topology:          Ported,
		BoxVolumeLiters:   vb,
		TuningFrequencyHz: fb,
		PortDiameterCm:    PortDiameterCm,
		PortLengthCm:      length,
		PortClamped:       clamped,
	}
	if err := res.Validate(); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInfeasibleDesign, err, "ported alignment for %s", d)
	}
	return res, nil
}

// PortLength returns the unclamped length in cm of a round port of the given
// diameter that tunes a box of vbLiters to fbHz.
func PortLength(fbHz, vbLiters, diameterCm float64) float64 {
	radius := diameterCm / 2
	area := math.Pi * (radius * radius)
	return (helmholtzConstant*area)/(fbHz*fbHz*vbLiters) - endCorrection*diameterCm
}
