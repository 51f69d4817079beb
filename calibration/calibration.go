// Package calibration extracts the ASQE calibration dataset from device flash.
//
// The dataset is stored as newline-delimited text at flash offset 0,
// terminated by the first 0xFF 0xFF byte pair. Its layout is a versionless
// format contract: fixed line indices for the scalar exposure constant and the
// three per-pixel coefficient arrays. All layout knowledge lives in the
// constant table below; a format revision requires a single-point change.
package calibration

import (
	"github.com/PVSensors/ASQESpectrometer/models"
)

// Flat calibration-file layout (0-indexed line numbers, ranges half-open).
const (
	// BckATLine holds the scalar exposure-normalization constant.
	BckATLine = 1

	// WavelengthStart through PowerEnd bound the three coefficient arrays.
	// Each span is exactly models.SpectrumLength lines; the single lines
	// between spans are section separators.
	WavelengthStart = 12
	WavelengthEnd   = WavelengthStart + models.SpectrumLength // 3665
	NormStart       = WavelengthEnd + 1                       // 3666
	NormEnd         = NormStart + models.SpectrumLength       // 7319
	PowerStart      = NormEnd + 1                             // 7320
	PowerEnd        = PowerStart + models.SpectrumLength      // 10973

	// MinLines is the minimum line count a blob must have before any span is
	// sliced out of it.
	MinLines = PowerEnd
)

// Flash read parameters.
const (
	// ChunkSize is the fixed size of each flash read.
	ChunkSize = 1000

	// MaxBlobBytes caps how far into flash the reader scans for the
	// termination marker before giving up.
	MaxBlobBytes = 100000
)

// Marker is the two-byte pattern that terminates the calibration text in flash.
var Marker = []byte{0xFF, 0xFF}

// Data is the parsed calibration dataset. It is immutable once loaded; the
// session caches one instance for its whole lifetime.
type Data struct {
	// BckAT is the scalar constant combined with exposure time during power
	// calibration.
	BckAT float64

	// Wavelength, NormCoef and PowerCoef are parallel per-pixel arrays of
	// length models.SpectrumLength, indexed by window pixel.
	Wavelength []float64
	NormCoef   []float64
	PowerCoef  []float64
}

// Load reads the calibration blob out of flash and parses it.
func Load(fr FlashReader, opts ReadOptions) (*Data, error) {
	blob, err := ReadBlob(fr, opts)
	if err != nil {
		return nil, err
	}
	return Parse(blob)
}
