package enclosure

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/speakerbox/pkg/errors"
)

// Topology selects the enclosure alignment.
type Topology string

const (
	Sealed Topology = "sealed"
	Ported Topology = "ported"
)

// Topologies lists the supported alignments in display order.
var Topologies = []Topology{Sealed, Ported}

// ParseTopology converts user input into a Topology.
// Matching is case-insensitive; "vented" and "bass-reflex" are accepted as
// synonyms for ported.
func ParseTopology(s string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sealed", "closed", "acoustic-suspension":
		return Sealed, nil
	case "ported", "vented", "bass-reflex":
		return Ported, nil
	case "":
		return "", errors.New(errors.ErrCodeMissingInput, "enclosure type is required")
	}
	return "", errors.New(errors.ErrCodeInvalidTopology, "invalid enclosure type: %q (must be one of: sealed, ported)", s)
}

func (t Topology) String() string { return string(t) }

// Driver holds the Thiele-Small parameters of a loudspeaker driver.
type Driver struct {
	Fs  float64 `json:"fs" yaml:"fs"`   // free-air resonance, Hz
	Qts float64 `json:"qts" yaml:"qts"` // total Q
	Vas float64 `json:"vas" yaml:"vas"` // equivalent compliance volume, liters
}

// Validate checks that every parameter is present, positive, and finite.
// Parameters are checked in fs, qts, vas order and the first failure wins.
func (d Driver) Validate() error {
	if err := errors.ValidateParameter("fs", d.Fs); err != nil {
		return err
	}
	if err := errors.ValidateParameter("qts", d.Qts); err != nil {
		return err
	}
	return errors.ValidateParameter("vas", d.Vas)
}

// Missing returns the names of parameters that are absent (zero or NaN).
func (d Driver) Missing() []string {
	var names []string
	for _, p := range []struct {
		name string
		v    float64
	}{{"fs", d.Fs}, {"qts", d.Qts}, {"vas", d.Vas}} {
		if p.v == 0 || math.IsNaN(p.v) {
			names = append(names, p.name)
		}
	}
	return names
}

func (d Driver) String() string {
	return fmt.Sprintf("fs=%gHz qts=%g vas=%gL", d.Fs, d.Qts, d.Vas)
}

// Result is the outcome of an enclosure calculation.
// Fields that do not apply to the topology are zero and omitted from JSON.
type Result struct {
	Topology        Topology `json:"topology" yaml:"topology"`
	BoxVolumeLiters float64  `json:"box_volume_liters" yaml:"box_volume_liters"`

	// Sealed
	CutoffFrequencyHz float64 `json:"cutoff_frequency_hz,omitempty" yaml:"cutoff_frequency_hz,omitempty"`
	TargetQtc         float64 `json:"target_qtc,omitempty" yaml:"target_qtc,omitempty"`

	// Ported
	TuningFrequencyHz float64 `json:"tuning_frequency_hz,omitempty" yaml:"tuning_frequency_hz,omitempty"`
	PortDiameterCm    float64 `json:"port_diameter_cm,omitempty" yaml:"port_diameter_cm,omitempty"`
	PortLengthCm      float64 `json:"port_length_cm,omitempty" yaml:"port_length_cm,omitempty"`
	PortClamped       bool    `json:"port_clamped,omitempty" yaml:"port_clamped,omitempty"`
}

// Validate reports NON_POSITIVE_GEOMETRY for a result whose volume must not be
// persisted or rendered.
func (r Result) Validate() error {
	return errors.ValidateDimension("box volume", r.BoxVolumeLiters)
}

// Calculate runs the derivation branch for topology t.
func Calculate(d Driver, t Topology) (Result, error) {
	switch t {
	case Sealed:
		return CalculateSealed(d)
	case Ported:
		return CalculatePorted(d)
	case "":
		return Result{}, errors.New(errors.ErrCodeMissingInput, "enclosure type is required")
	}
	return Result{}, errors.New(errors.ErrCodeInvalidTopology, "invalid enclosure type: %q", t)
}
