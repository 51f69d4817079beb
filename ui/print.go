package ui

import (
	"fmt"
	"math"

	"github.com/PVSensors/ASQESpectrometer/models"
)

// PrintLiveLine prints a single in-place (carriage-return) line summarizing
// the latest calibrated spectrum: peak wavelength, peak intensity, and total
// integrated power.
func PrintLiveLine(sp models.Spectrum, captures int) {
	peakIdx := 0
	peak := math.Inf(-1)
	total := 0.0
	for i, v := range sp.Intensity {
		total += v
		if v > peak {
			peak = v
			peakIdx = i
		}
	}
	peakWL := 0.0
	if peakIdx < len(sp.Wavelength) {
		peakWL = sp.Wavelength[peakIdx]
	}
	fmt.Printf("\r[LIVE %04d] peak %8.2f nm  %12.4e  total %12.4e          ", captures, peakWL, peak, total)
}

// PrintSavedLine confirms a saved capture on its own line.
func PrintSavedLine(path string) {
	Greenf("\nSaved %s\n", path)
}
