package processing

import (
	"math"
	"testing"

	"github.com/PVSensors/ASQESpectrometer/calibration"
	"github.com/PVSensors/ASQESpectrometer/models"
)

// flatFrame returns a full-length frame with every sample set to v.
func flatFrame(v uint16) models.RawFrame {
	frame := make(models.RawFrame, models.FrameLength)
	for i := range frame {
		frame[i] = v
	}
	return frame
}

// flatCalib returns calibration data with constant coefficients.
func flatCalib(norm, power, bckAT float64) *calibration.Data {
	d := &calibration.Data{
		BckAT:      bckAT,
		Wavelength: make([]float64, models.SpectrumLength),
		NormCoef:   make([]float64, models.SpectrumLength),
		PowerCoef:  make([]float64, models.SpectrumLength),
	}
	for i := range d.NormCoef {
		d.NormCoef[i] = norm
		d.PowerCoef[i] = power
	}
	return d
}

func TestSubtractBackgroundLength(t *testing.T) {
	out := SubtractBackground(flatFrame(1000))
	if len(out) != models.SpectrumLength {
		t.Fatalf("output length = %d, want %d", len(out), models.SpectrumLength)
	}
}

func TestSubtractBackgroundFlat(t *testing.T) {
	// Dark pixels equal the window pixels, so everything cancels.
	out := SubtractBackground(flatFrame(1000))
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want 0", i, v)
		}
	}
}

// The two dark ranges have different sample counts (16 vs 6). The background
// is the mean of the two range means, not the mean of the pooled samples;
// with asymmetric dark values these disagree and the former must win.
func TestSubtractBackgroundAsymmetricDarkRanges(t *testing.T) {
	frame := flatFrame(1000)
	for i := models.DarkLowStart; i < models.DarkLowEnd; i++ {
		frame[i] = 100
	}
	for i := models.DarkHighStart; i < models.DarkHighEnd; i++ {
		frame[i] = 200
	}
	// (mean(100 x16) + mean(200 x6)) / 2 = 150
	out := SubtractBackground(frame)
	for i, v := range out {
		if v != 850 {
			t.Fatalf("out[%d] = %v, want 850", i, v)
		}
	}
}

func TestNormalize(t *testing.T) {
	corrected := []float64{10, -4, 0}
	calib := &calibration.Data{NormCoef: []float64{2, 4, 8}}
	out := Normalize(corrected, calib)
	want := []float64{5, -1, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
	// Input untouched.
	if corrected[0] != 10 {
		t.Fatal("Normalize mutated its input")
	}
}

func TestNormalizeZeroCoef(t *testing.T) {
	calib := &calibration.Data{NormCoef: []float64{0, 0}}
	out := Normalize([]float64{5, 0}, calib)
	if !math.IsInf(out[0], 1) {
		t.Errorf("5/0 = %v, want +Inf", out[0])
	}
	if !math.IsNaN(out[1]) {
		t.Errorf("0/0 = %v, want NaN", out[1])
	}
}

func TestPowerCalibrate(t *testing.T) {
	calib := &calibration.Data{BckAT: 2, PowerCoef: []float64{3}}
	out := PowerCalibrate([]float64{5}, calib, 100)
	// 5 * 3 / (100 * 2)
	if out[0] != 0.075 {
		t.Fatalf("out[0] = %v, want 0.075", out[0])
	}
}

func TestPowerCalibrateZeroDenominator(t *testing.T) {
	cases := []struct {
		name       string
		bckAT      float64
		exposureUS uint32
	}{
		{"zero bck_aT", 0, 1000},
		{"zero exposure", 2, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calib := &calibration.Data{BckAT: tc.bckAT, PowerCoef: []float64{1, 1, 1}}
			out := PowerCalibrate([]float64{5, -5, 0}, calib, tc.exposureUS)
			if !math.IsInf(out[0], 1) || !math.IsInf(out[1], -1) {
				t.Errorf("nonzero/0 = %v, %v, want +Inf, -Inf", out[0], out[1])
			}
			if !math.IsNaN(out[2]) {
				t.Errorf("0/0 = %v, want NaN", out[2])
			}
		})
	}
}

func TestCalibrateFlatFrameIsZero(t *testing.T) {
	// Window equals dark level, so the corrected spectrum is zero and stays
	// zero through normalization and power calibration.
	out := Calibrate(flatFrame(1000), flatCalib(2, 4, 1), 500)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want 0", i, v)
		}
	}
}

func TestCalibrateComposesStages(t *testing.T) {
	frame := flatFrame(1000)
	// Raise the window 400 counts above the dark level.
	for i := models.WindowStart; i < models.WindowEnd; i++ {
		frame[i] = 1400
	}
	calib := flatCalib(2, 4, 1)
	out := Calibrate(frame, calib, 500)
	// (1400 - 1000) / 2 * 4 / (500 * 1) = 1.6
	if len(out) != models.SpectrumLength {
		t.Fatalf("output length = %d, want %d", len(out), models.SpectrumLength)
	}
	for i, v := range out {
		if v != 1.6 {
			t.Fatalf("out[%d] = %v, want 1.6", i, v)
		}
	}
}
