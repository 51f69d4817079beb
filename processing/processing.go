// Package processing implements the spectral correction pipeline.
//
// All functions are pure transforms over a captured frame and parsed
// calibration data; none of them touch the device. The three stages compose
// strictly in order: background subtraction, normalization, power calibration.
// Floating-point edge cases (zero coefficients, zero exposure) are surfaced as
// IEEE inf/NaN, never masked or clamped.
package processing

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/PVSensors/ASQESpectrometer/calibration"
	"github.com/PVSensors/ASQESpectrometer/models"
)

// SubtractBackground estimates the fixed-offset sensor background from the
// masked edge pixels and removes it from the active window.
//
// The background is the mean of the low dark range (16 samples) averaged with
// the mean of the high dark range (6 samples). The asymmetric sample counts
// mirror the sensor's edge-pixel layout and must not be equalized. The result
// is frame[WindowStart:WindowEnd] minus background, length SpectrumLength.
func SubtractBackground(frame models.RawFrame) []float64 {
	devd := meanU16(frame[models.DarkLowStart:models.DarkLowEnd])
	devd2 := meanU16(frame[models.DarkHighStart:models.DarkHighEnd])
	background := (devd + devd2) / 2

	out := make([]float64, models.SpectrumLength)
	for i := range out {
		out[i] = float64(frame[models.WindowStart+i]) - background
	}
	return out
}

// Normalize divides the background-corrected spectrum elementwise by the
// per-pixel normalization coefficients. A zero coefficient produces inf/NaN
// in the output per standard floating-point rules.
//
// Panics if corrected and calib.NormCoef differ in length.
func Normalize(corrected []float64, calib *calibration.Data) []float64 {
	out := make([]float64, len(corrected))
	copy(out, corrected)
	floats.Div(out, calib.NormCoef)
	return out
}

// PowerCalibrate converts a normalized spectrum into radiometric power:
// out[i] = normalized[i] * PowerCoef[i] / (exposureUS * BckAT).
//
// A zero exposure time or zero BckAT yields inf/NaN outputs, surfaced to the
// caller unchanged.
func PowerCalibrate(normalized []float64, calib *calibration.Data, exposureUS uint32) []float64 {
	out := make([]float64, len(normalized))
	floats.MulTo(out, normalized, calib.PowerCoef)
	denom := float64(exposureUS) * calib.BckAT
	for i := range out {
		out[i] /= denom
	}
	return out
}

// Calibrate runs the full pipeline over one captured frame.
func Calibrate(frame models.RawFrame, calib *calibration.Data, exposureUS uint32) []float64 {
	corrected := SubtractBackground(frame)
	normalized := Normalize(corrected, calib)
	return PowerCalibrate(normalized, calib, exposureUS)
}

// meanU16 is stat.Mean over a u16 slice.
func meanU16(s []uint16) float64 {
	f := make([]float64, len(s))
	for i, v := range s {
		f[i] = float64(v)
	}
	return stat.Mean(f, nil)
}
