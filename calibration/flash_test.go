package calibration

import (
	"bytes"
	"errors"
	"testing"
)

// flashImage serves its bytes and returns 0xFF filler past the end, like
// erased NOR flash.
type flashImage []byte

func (f flashImage) ReadFlash(buf []byte, offset uint32) error {
	for i := range buf {
		pos := int(offset) + i
		if pos < len(f) {
			buf[i] = f[pos]
		} else {
			buf[i] = 0xFF
		}
	}
	return nil
}

// zeroFlash never contains the marker.
type zeroFlash struct{}

func (zeroFlash) ReadFlash(buf []byte, offset uint32) error {
	for i := range buf {
		buf[i] = 0
	}
	return nil
}

type failFlash struct{ err error }

func (f failFlash) ReadFlash(buf []byte, offset uint32) error { return f.err }

func TestReadBlobStopsAtErasedRegion(t *testing.T) {
	img := flashImage("hello calibration")
	blob, err := ReadBlob(img, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadBlob failed: %v", err)
	}
	if !bytes.Equal(blob, []byte("hello calibration")) {
		t.Fatalf("blob = %q, want %q", blob, "hello calibration")
	}
}

func TestReadBlobStopsAtMarkerMidChunk(t *testing.T) {
	img := make(flashImage, 0, 600)
	img = append(img, bytes.Repeat([]byte{'a'}, 300)...)
	img = append(img, Marker...)
	img = append(img, bytes.Repeat([]byte{'b'}, 200)...)

	blob, err := ReadBlob(img, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadBlob failed: %v", err)
	}
	if len(blob) != 300 {
		t.Fatalf("blob length = %d, want 300", len(blob))
	}
	if bytes.ContainsRune(blob, 'b') {
		t.Fatalf("blob contains bytes from after the marker")
	}
}

// A marker that begins exactly on a chunk boundary lies wholly inside the
// next chunk and is detected normally.
func TestReadBlobMarkerAtChunkBoundary(t *testing.T) {
	img := make(flashImage, 0, 2*ChunkSize+2)
	img = append(img, bytes.Repeat([]byte{'a'}, 2*ChunkSize)...)
	img = append(img, Marker...) // bytes 2000 and 2001

	blob, err := ReadBlob(img, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadBlob failed: %v", err)
	}
	if len(blob) != 2*ChunkSize {
		t.Fatalf("blob length = %d, want %d", len(blob), 2*ChunkSize)
	}
}

// A marker pair straddling a chunk boundary is not seen, because each chunk
// is scanned independently. The split bytes end up inside the blob and the
// read continues until a marker lands wholly inside a later chunk.
func TestReadBlobMissesMarkerSplitAcrossChunks(t *testing.T) {
	img := make(flashImage, 0, 2501)
	img = append(img, bytes.Repeat([]byte{'a'}, ChunkSize-1)...)
	img = append(img, Marker...) // bytes 999 and 1000
	img = append(img, bytes.Repeat([]byte{'b'}, 1500)...)

	blob, err := ReadBlob(img, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadBlob failed: %v", err)
	}
	if len(blob) != len(img) {
		t.Fatalf("blob length = %d, want %d (split marker swallowed)", len(blob), len(img))
	}
	if blob[ChunkSize-1] != 0xFF || blob[ChunkSize] != 0xFF {
		t.Fatalf("split marker bytes missing from blob")
	}
}

func TestReadBlobNoMarker(t *testing.T) {
	// Reference behavior: return everything scanned, let Parse reject it.
	blob, err := ReadBlob(zeroFlash{}, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadBlob failed: %v", err)
	}
	wantLen := (MaxBlobBytes/ChunkSize + 1) * ChunkSize
	if len(blob) != wantLen {
		t.Fatalf("blob length = %d, want %d", len(blob), wantLen)
	}

	// Strict behavior: missing marker is a format error.
	_, err = ReadBlob(zeroFlash{}, ReadOptions{RequireMarker: true})
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FormatError", err)
	}
	if fe.Line != -1 {
		t.Fatalf("FormatError.Line = %d, want -1", fe.Line)
	}
}

func TestReadBlobPropagatesReadError(t *testing.T) {
	boom := errors.New("flash transfer failed")
	_, err := ReadBlob(failFlash{err: boom}, ReadOptions{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
