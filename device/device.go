// Package device defines the boundary to the native spectrometer driver.
//
// The firmware layer exposes status-code-returning primitives (0 = success);
// implementations of Device wrap those primitives and surface nonzero status
// codes as typed errors. The package does not define the wire protocol between
// driver and firmware; that belongs to the native layer.
package device

import "fmt"

// Device is the set of firmware primitives the session core depends on.
//
// A Device handle is an exclusively owned resource: no two calls may be in
// flight concurrently, and callers must serialize access externally if they
// need multi-threaded use.
type Device interface {
	// Connect opens the device handle.
	Connect() error

	// Disconnect releases the device handle. It is safe to call on an
	// already-disconnected device.
	Disconnect() error

	// SetAcquisitionParameters pushes scan count, blank-scan count, scan mode
	// and exposure time to the device.
	SetAcquisitionParameters(scans, blankScans uint16, scanMode uint8, exposureUS uint32) error

	// SetFrameFormat pushes the pixel window and reduction mode, returning the
	// pixel count the device will actually report.
	SetFrameFormat(pixelStart, pixelEnd uint16, reductionMode uint8) (pixelCount uint16, err error)

	// GetStatus reports the device status byte and the number of frames
	// currently available for retrieval.
	GetStatus() (deviceStatus uint8, frameCount uint16, err error)

	// GetFrame copies up to maxLen samples of the most recent frame into buf.
	GetFrame(buf []uint16, maxLen uint16) error

	// TriggerAcquisition starts one exposure. Fire-and-forget; completion is
	// observed via GetStatus.
	TriggerAcquisition() error

	// ReadFlash copies len(buf) bytes of device flash starting at offset.
	ReadFlash(buf []byte, offset uint32) error
}

// StatusError reports a nonzero status code returned by a device primitive.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("device: %s failed with status %d", e.Op, e.Code)
}

// ConnectError reports a failed connection attempt.
type ConnectError struct {
	Code int
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("device: connect failed with status %d", e.Code)
}
