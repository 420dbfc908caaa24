package enclosure

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/speakerbox/pkg/errors"
)

// Golden-ratio proportions for width, height and depth.
const (
	WidthRatio  = 1.0
	HeightRatio = 1.618
	DepthRatio  = 0.618
)

// Dimensions are the outer panel dimensions of a box in centimeters.
type Dimensions struct {
	WidthCm  float64 `json:"width_cm" yaml:"width_cm"`
	HeightCm float64 `json:"height_cm" yaml:"height_cm"`
	DepthCm  float64 `json:"depth_cm" yaml:"depth_cm"`
}

// Validate reports NON_POSITIVE_GEOMETRY if any side is not a positive finite number.
func (d Dimensions) Validate() error {
	if err := errors.ValidateDimension("width", d.WidthCm); err != nil {
		return err
	}
	if err := errors.ValidateDimension("height", d.HeightCm); err != nil {
		return err
	}
	return errors.ValidateDimension("depth", d.DepthCm)
}

// Volume returns width*height*depth, which approximates the volume the
// dimensions were derived from.
func (d Dimensions) Volume() float64 {
	return d.WidthCm * d.HeightCm * d.DepthCm
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%s × %s × %s cm", FormatTenth(d.WidthCm), FormatTenth(d.HeightCm), FormatTenth(d.DepthCm))
}

// CalculateDimensions derives golden-ratio panel dimensions for a volume.
//
// The three sides are scale*1, scale*1.618 and scale*0.618 where
// scale = cbrt(volume / (1*1.618*0.618)), each rounded to one decimal.
// The scale is taken directly from the liter figure, so the result is a
// proportion in the same numeric range as the volume rather than a
// unit-converted box size.
func CalculateDimensions(volumeLiters float64) (Dimensions, error) {
	if err := errors.ValidateDimension("box volume", volumeLiters); err != nil {
		return Dimensions{}, err
	}

	total := WidthRatio * HeightRatio * DepthRatio
	scale := math.Cbrt(volumeLiters / total)

	dims := Dimensions{
		WidthCm:  RoundTenth(WidthRatio * scale),
		HeightCm: RoundTenth(HeightRatio * scale),
		DepthCm:  RoundTenth(DepthRatio * scale),
	}
	// Very small volumes round a side down to zero.
	if err := dims.Validate(); err != nil {
		return Dimensions{}, errors.Wrap(errors.ErrCodeNonPositiveGeometry, err, "volume %g L is too small to lay out", volumeLiters)
	}
	return dims, nil
}

// RoundTenth rounds v to one decimal place, with exact halves rounding
// toward positive infinity. The result is the float64 nearest to the
// rounded decimal, so it formats back to at most one fractional digit.
func RoundTenth(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	t := v * 10
	if math.FMA(v, 10, -t) == 0 && t-math.Floor(t) == 0.5 {
		return (math.Floor(t) + 1) / 10
	}
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}

// FormatTenth formats v with exactly one fractional digit.
func FormatTenth(v float64) string {
	return strconv.FormatFloat(RoundTenth(v), 'f', 1, 64)
}
