package enclosure

import (
	"math"
	"testing"

	"github.com/matzehuels/speakerbox/pkg/errors"
)

const eps = 1e-9

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestCalculateSealedExample(t *testing.T) {
	res, err := CalculateSealed(Driver{Fs: 40, Qts: 0.4, Vas: 50})
	if err != nil {
		t.Fatalf("CalculateSealed: %v", err)
	}

	alpha := (0.707/0.4)*(0.707/0.4) - 1
	if !approx(alpha, 2.1240, 1e-3) {
		t.Fatalf("alpha = %v, want ≈2.124", alpha)
	}
	if !approx(res.BoxVolumeLiters, 50/alpha, eps) {
		t.Errorf("BoxVolumeLiters = %v, want %v", res.BoxVolumeLiters, 50/alpha)
	}
	if !approx(res.BoxVolumeLiters, 23.54, 0.05) {
		t.Errorf("BoxVolumeLiters = %v, want ≈23.5", res.BoxVolumeLiters)
	}
	if !approx(res.CutoffFrequencyHz, 70.7, 1e-6) {
		t.Errorf("CutoffFrequencyHz = %v, want 70.7", res.CutoffFrequencyHz)
	}
	if res.TargetQtc != 0.707 {
		t.Errorf("TargetQtc = %v, want 0.707", res.TargetQtc)
	}
	if res.Topology != Sealed {
		t.Errorf("Topology = %v, want sealed", res.Topology)
	}
}

func TestCalculateSealedPositiveBelowTarget(t *testing.T) {
	for _, qts := range []float64{0.05, 0.2, 0.35, 0.5, 0.7, 0.706} {
		for _, fs := range []float64{18, 40, 120} {
			for _, vas := range []float64{1, 50, 400} {
				res, err := CalculateSealed(Driver{Fs: fs, Qts: qts, Vas: vas})
				if err != nil {
					t.Fatalf("qts=%v fs=%v vas=%v: %v", qts, fs, vas, err)
				}
				if !(res.BoxVolumeLiters > 0) || math.IsInf(res.BoxVolumeLiters, 0) {
					t.Errorf("qts=%v: BoxVolumeLiters = %v, want positive finite", qts, res.BoxVolumeLiters)
				}
				if !(res.CutoffFrequencyHz > 0) {
					t.Errorf("qts=%v: CutoffFrequencyHz = %v, want positive", qts, res.CutoffFrequencyHz)
				}
			}
		}
	}
}

func TestCalculateSealedInfeasible(t *testing.T) {
	for _, qts := range []float64{0.707, 0.71, 0.9, 1.5} {
		_, err := CalculateSealed(Driver{Fs: 40, Qts: qts, Vas: 50})
		if !errors.Is(err, errors.ErrCodeInfeasibleDesign) {
			t.Errorf("qts=%v: err = %v, want INFEASIBLE_DESIGN", qts, err)
		}
		if errors.Is(err, errors.ErrCodeMissingInput) {
			t.Errorf("qts=%v: infeasible design reported as missing input", qts)
		}
	}
}

func TestCalculatePortedExample(t *testing.T) {
	res, err := CalculatePorted(Driver{Fs: 35, Qts: 0.35, Vas: 60})
	if err != nil {
		t.Fatalf("CalculatePorted: %v", err)
	}
	if res.BoxVolumeLiters != 150 {
		t.Errorf("BoxVolumeLiters = %v, want 150", res.BoxVolumeLiters)
	}
	if !approx(res.TuningFrequencyHz, 28, eps) {
		t.Errorf("TuningFrequencyHz = %v, want 28", res.TuningFrequencyHz)
	}
	if res.PortDiameterCm != 5 {
		t.Errorf("PortDiameterCm = %v, want 5", res.PortDiameterCm)
	}

	raw := PortLength(28, 150, 5)
	if !approx(raw, 0.27409, 1e-4) {
		t.Errorf("raw PortLength = %v, want ≈0.274", raw)
	}
	if res.PortLengthCm != MinPortLengthCm || !res.PortClamped {
		t.Errorf("PortLengthCm = %v (clamped=%v), want floor %v", res.PortLengthCm, res.PortClamped, MinPortLengthCm)
	}
}

func TestCalculatePortedUnclamped(t *testing.T) {
	// Small, low-tuned box: the Helmholtz length exceeds the floor.
	res, err := CalculatePorted(Driver{Fs: 30, Qts: 0.4, Vas: 10})
	if err != nil {
		t.Fatalf("CalculatePorted: %v", err)
	}
	want := PortLength(24, 25, 5)
	if res.PortClamped || !approx(res.PortLengthCm, want, eps) {
		t.Errorf("PortLengthCm = %v (clamped=%v), want %v unclamped", res.PortLengthCm, res.PortClamped, want)
	}
	if res.PortLengthCm <= MinPortLengthCm {
		t.Errorf("PortLengthCm = %v, want above floor", res.PortLengthCm)
	}
}

func TestCalculatePortedProperties(t *testing.T) {
	for _, fs := range []float64{15, 28.5, 40, 90, 250} {
		for _, qts := range []float64{0.2, 0.5, 1.1} {
			for _, vas := range []float64{0.5, 12, 60, 300} {
				d := Driver{Fs: fs, Qts: qts, Vas: vas}
				res, err := CalculatePorted(d)
				if err != nil {
					t.Fatalf("%s: %v", d, err)
				}
				if !approx(res.BoxVolumeLiters, vas*2.5, eps) {
					t.Errorf("%s: BoxVolumeLiters = %v, want %v", d, res.BoxVolumeLiters, vas*2.5)
				}
				if !approx(res.TuningFrequencyHz, fs*0.8, eps) {
					t.Errorf("%s: TuningFrequencyHz = %v, want %v", d, res.TuningFrequencyHz, fs*0.8)
				}
				if res.PortLengthCm < 5 {
					t.Errorf("%s: PortLengthCm = %v, want >= 5", d, res.PortLengthCm)
				}
			}
		}
	}
}

func TestCalculateInvalidDriver(t *testing.T) {
	tests := []struct {
		name   string
		driver Driver
		want   errors.Code
	}{
		{"missing fs", Driver{Qts: 0.4, Vas: 50}, errors.ErrCodeMissingInput},
		{"missing qts", Driver{Fs: 40, Vas: 50}, errors.ErrCodeMissingInput},
		{"missing vas", Driver{Fs: 40, Qts: 0.4}, errors.ErrCodeMissingInput},
		{"NaN vas", Driver{Fs: 40, Qts: 0.4, Vas: math.NaN()}, errors.ErrCodeMissingInput},
		{"negative fs", Driver{Fs: -40, Qts: 0.4, Vas: 50}, errors.ErrCodeInfeasibleDesign},
		{"infinite vas", Driver{Fs: 40, Qts: 0.4, Vas: math.Inf(1)}, errors.ErrCodeInfeasibleDesign},
	}

	for _, tt := range tests {
		for _, topo := range Topologies {
			t.Run(tt.name+"/"+topo.String(), func(t *testing.T) {
				res, err := Calculate(tt.driver, topo)
				if got := errors.GetCode(err); got != tt.want {
					t.Errorf("code = %q, want %q (err=%v)", got, tt.want, err)
				}
				if res != (Result{}) {
					t.Errorf("result = %+v, want zero value on error", res)
				}
			})
		}
	}
}

func TestCalculateTopology(t *testing.T) {
	d := Driver{Fs: 40, Qts: 0.4, Vas: 50}

	if _, err := Calculate(d, ""); !errors.Is(err, errors.ErrCodeMissingInput) {
		t.Errorf("empty topology: err = %v, want MISSING_INPUT", err)
	}
	if _, err := Calculate(d, "bandpass"); !errors.Is(err, errors.ErrCodeInvalidTopology) {
		t.Errorf("bandpass: err = %v, want INVALID_TOPOLOGY", err)
	}

	sealed, _ := Calculate(d, Sealed)
	direct, _ := CalculateSealed(d)
	if sealed != direct {
		t.Errorf("Calculate(sealed) = %+v, want %+v", sealed, direct)
	}
}

func TestCalculateIdempotent(t *testing.T) {
	d := Driver{Fs: 33.3, Qts: 0.37, Vas: 71.2}
	for _, topo := range Topologies {
		a, errA := Calculate(d, topo)
		b, errB := Calculate(d, topo)
		if errA != nil || errB != nil {
			t.Fatalf("%s: %v / %v", topo, errA, errB)
		}
		if a != b {
			t.Errorf("%s: results differ: %+v vs %+v", topo, a, b)
		}
	}
}

func TestParseTopology(t *testing.T) {
	tests := []struct {
		input string
		want  Topology
		code  errors.Code
	}{
		{"sealed", Sealed, ""},
		{"Sealed", Sealed, ""},
		{" closed ", Sealed, ""},
		{"ported", Ported, ""},
		{"vented", Ported, ""},
		{"bass-reflex", Ported, ""},
		{"", "", errors.ErrCodeMissingInput},
		{"bandpass", "", errors.ErrCodeInvalidTopology},
	}

	for _, tt := range tests {
		got, err := ParseTopology(tt.input)
		if got != tt.want || errors.GetCode(err) != tt.code {
			t.Errorf("ParseTopology(%q) = %q, %v; want %q, code %q", tt.input, got, err, tt.want, tt.code)
		}
	}
}

func TestDriverMissing(t *testing.T) {
	got := Driver{Qts: 0.4, Vas: math.NaN()}.Missing()
	if len(got) != 2 || got[0] != "fs" || got[1] != "vas" {
		t.Errorf("Missing() = %v, want [fs vas]", got)
	}
	if got := (Driver{Fs: 1, Qts: 1, Vas: 1}).Missing(); len(got) != 0 {
		t.Errorf("Missing() = %v, want empty", got)
	}
}
