// Package models defines the data types shared between the spectrometer
// session core, the web server, and the command-line tools.
//
// It also holds the sensor geometry table: the CCD frame length, the usable
// pixel window, and the dark-pixel ranges used for background estimation.
// These values are properties of the ASQE sensor layout and appear in exactly
// one place so a hardware revision requires a single-point change.
package models

import "fmt"

// Sensor geometry.
const (
	// FrameLength is the number of u16 samples in one raw CCD readout.
	FrameLength = 3694

	// WindowStart/WindowEnd bound the optically active pixel window
	// (half-open, frame[WindowStart:WindowEnd]).
	WindowStart = 32
	WindowEnd   = 3685

	// SpectrumLength is the length of every processed spectrum and of each
	// calibration coefficient array (WindowEnd - WindowStart).
	SpectrumLength = WindowEnd - WindowStart

	// DarkLowStart/DarkLowEnd and DarkHighStart/DarkHighEnd are the masked
	// edge-pixel ranges averaged for background estimation (half-open).
	// The two ranges have different lengths (16 vs 6 samples); that asymmetry
	// matches the physical edge-pixel layout of the sensor.
	DarkLowStart  = 15
	DarkLowEnd    = 31
	DarkHighStart = 3686
	DarkHighEnd   = 3692
)

// RawFrame is one raw capture of pixel intensities, length FrameLength.
// A frame is produced fresh per trigger and never mutated after capture.
type RawFrame []uint16

// AcquisitionConfig mirrors the device-resident acquisition parameters.
//
// The device validates value ranges; the only invariant enforced locally is
// PixelStart < PixelEnd (see Validate).
type AcquisitionConfig struct {
	Scans          uint16 `json:"scans"`
	BlankScans     uint16 `json:"blankScans"`
	ExposureTimeUS uint32 `json:"exposureTimeUs"`
	ScanMode       uint8  `json:"scanMode"`
	PixelStart     uint16 `json:"pixelStart"`
	PixelEnd       uint16 `json:"pixelEnd"`
	ReductionMode  uint8  `json:"reductionMode"`
}

// DefaultAcquisitionConfig returns the power-on defaults used by the session.
func DefaultAcquisitionConfig() AcquisitionConfig {
	return AcquisitionConfig{
		Scans:          1,
		BlankScans:     0,
		ExposureTimeUS: 1000,
		ScanMode:       3,
		PixelStart:     0,
		PixelEnd:       3647,
		ReductionMode:  0,
	}
}

// Validate checks the locally enforced invariants.
func (c AcquisitionConfig) Validate() error {
	if c.PixelStart >= c.PixelEnd {
		return fmt.Errorf("pixelStart (%d) must be less than pixelEnd (%d)", c.PixelStart, c.PixelEnd)
	}
	return nil
}

// Spectrum pairs wavelengths with intensities, both of SpectrumLength.
// Instances are value results; callers own them exclusively.
type Spectrum struct {
	Wavelength []float64 `json:"wavelength"`
	Intensity  []float64 `json:"intensity"`
}
