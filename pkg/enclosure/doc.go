// Package enclosure sizes loudspeaker boxes from Thiele-Small driver
// parameters.
//
// # Overview
//
// A [Driver] carries the three Thiele-Small parameters the calculator needs:
// free-air resonance (Fs, Hz), total Q (Qts), and equivalent compliance
// volume (Vas, liters). [Calculate] maps a driver and a [Topology] to a
// [Result] describing the box volume and the acoustic behavior of the chosen
// alignment. [CalculateDimensions] turns a volume into golden-ratio panel
// dimensions in centimeters.
//
// # Alignments
//
// Sealed boxes target a Butterworth system Q of 0.707 ([TargetQtc]):
//
//	alpha = (Qtc/Qts)^2 - 1
//	Vb    = Vas / alpha
//	F3    = Fs * sqrt((Qtc/Qts)^2)
//
// A driver with Qts >= 0.707 cannot reach that alignment in any closed box;
// [CalculateSealed] reports this as an INFEASIBLE_DESIGN error rather than
// returning an infinite or negative volume.
//
// Ported boxes use a fixed-ratio model rather than a full vented-alignment
// solver: Vb = 2.5 * Vas, Fb = 0.8 * Fs, and a single round port of
// [PortDiameterCm] whose length follows the Helmholtz resonator formula in
// cm / liter / Hz units. Port lengths below [MinPortLengthCm] are clamped to
// that floor; the tuning frequency is not recomputed after clamping.
//
// # Dimensions
//
// Width, height, and depth follow the proportions 1 : 1.618 : 0.618 so that
// no pair of parallel walls shares a standing-wave mode. Each side is rounded
// to one decimal place.
//
// # Concurrency
//
// Every function in this package is pure and safe for concurrent use.
package enclosure
