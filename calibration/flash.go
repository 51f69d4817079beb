package calibration

import (
	"bytes"
	"fmt"
)

// FlashReader is the single device primitive the blob reader needs.
// *device.Sim and any full device handle satisfy it.
type FlashReader interface {
	ReadFlash(buf []byte, offset uint32) error
}

// ReadOptions controls how ReadBlob behaves when the termination marker is
// never found within MaxBlobBytes.
type ReadOptions struct {
	// RequireMarker, when true, turns a missing termination marker into a
	// *FormatError. When false (the reference behavior) the accumulated bytes
	// are returned as-is, which silently yields a truncated or over-length
	// blob; Parse will usually reject such a blob later.
	RequireMarker bool
}

// ReadBlob assembles the calibration text from flash.
//
// It reads ChunkSize-byte chunks starting at offset 0 and scans each chunk
// independently for the first occurrence of Marker. On a hit, only the bytes
// before the marker are appended and reading stops. Because each chunk is
// scanned on its own, a marker split across a chunk boundary is not detected;
// that is a known limitation of the flash layout tooling, not something the
// reader compensates for.
func ReadBlob(fr FlashReader, opts ReadOptions) ([]byte, error) {
	blob := make([]byte, 0, ChunkSize)
	chunk := make([]byte, ChunkSize)
	for offset := uint32(0); offset <= MaxBlobBytes; offset += ChunkSize {
		if err := fr.ReadFlash(chunk, offset); err != nil {
			return nil, err
		}
		if i := bytes.Index(chunk, Marker); i >= 0 {
			return append(blob, chunk[:i]...), nil
		}
		blob = append(blob, chunk...)
	}
	if opts.RequireMarker {
		return nil, &FormatError{
			Reason: fmt.Sprintf("termination marker not found within %d bytes of flash", MaxBlobBytes),
			Line:   -1,
		}
	}
	return blob, nil
}
