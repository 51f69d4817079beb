package device

import (
	"math"
	"sync"
)

// Sim is an in-memory Device used by tests, the CLI -sim mode, and the web
// server demo mode. It replays a fixed frame image and flash image and records
// every parameter pushed to it.
//
// The zero value is not usable; construct with NewSim.
type Sim struct {
	mu sync.Mutex

	// Frame is the raw readout returned by GetFrame.
	Frame []uint16
	// Flash is the device flash image served by ReadFlash. Reads past the end
	// of the image return 0xFF filler, like erased NOR flash.
	Flash []byte

	// ConnectStatus, when nonzero, makes Connect fail with that code.
	ConnectStatus int
	// PollsUntilReady is how many GetStatus calls after a trigger report zero
	// frames before the frame becomes available.
	PollsUntilReady int
	// Unresponsive makes GetStatus report zero frames forever.
	Unresponsive bool

	connected  bool
	triggered  bool
	pollsSeen  int
	flashReads int

	// Last pushed configuration, for assertions.
	LastScans         uint16
	LastBlankScans    uint16
	LastScanMode      uint8
	LastExposureUS    uint32
	LastPixelStart    uint16
	LastPixelEnd      uint16
	LastReductionMode uint8
}

// NewSim returns a simulator with a flat frame image of the given length.
func NewSim(frameLen int) *Sim {
	frame := make([]uint16, frameLen)
	for i := range frame {
		frame[i] = 1000
	}
	return &Sim{Frame: frame}
}

// SetGaussianFrame fills the frame image with a synthetic emission line:
// baseline plus a gaussian peak centered at pixel center with the given
// amplitude and width.
func (s *Sim) SetGaussianFrame(baseline, amplitude float64, center, width int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Frame {
		d := float64(i - center)
		v := baseline + amplitude*math.Exp(-d*d/(2*float64(width*width)))
		if v < 0 {
			v = 0
		}
		if v > math.MaxUint16 {
			v = math.MaxUint16
		}
		s.Frame[i] = uint16(v)
	}
}

// FlashReads reports how many ReadFlash calls the simulator has served.
// The session memoizes calibration data; tests use this counter to prove it.
func (s *Sim) FlashReads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flashReads
}

// Connected reports whether the handle is currently open.
func (s *Sim) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Sim) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ConnectStatus != 0 {
		return &ConnectError{Code: s.ConnectStatus}
	}
	s.connected = true
	return nil
}

func (s *Sim) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *Sim) SetAcquisitionParameters(scans, blankScans uint16, scanMode uint8, exposureUS uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return &StatusError{Op: "setAcquisitionParameters", Code: 1}
	}
	s.LastScans = scans
	s.LastBlankScans = blankScans
	s.LastScanMode = scanMode
	s.LastExposureUS = exposureUS
	return nil
}

func (s *Sim) SetFrameFormat(pixelStart, pixelEnd uint16, reductionMode uint8) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return 0, &StatusError{Op: "setFrameFormat", Code: 1}
	}
	s.LastPixelStart = pixelStart
	s.LastPixelEnd = pixelEnd
	s.LastReductionMode = reductionMode
	return pixelEnd - pixelStart + 1, nil
}

func (s *Sim) TriggerAcquisition() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return &StatusError{Op: "triggerAcquisition", Code: 1}
	}
	s.triggered = true
	s.pollsSeen = 0
	return nil
}

func (s *Sim) GetStatus() (uint8, uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return 0, 0, &StatusError{Op: "getStatus", Code: 1}
	}
	if !s.triggered || s.Unresponsive {
		return 0, 0, nil
	}
	s.pollsSeen++
	if s.pollsSeen <= s.PollsUntilReady {
		return 0, 0, nil
	}
	return 0, 1, nil
}

func (s *Sim) GetFrame(buf []uint16, maxLen uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return &StatusError{Op: "getFrame", Code: 1}
	}
	n := len(buf)
	if int(maxLen) < n {
		n = int(maxLen)
	}
	if len(s.Frame) < n {
		n = len(s.Frame)
	}
	copy(buf[:n], s.Frame[:n])
	s.triggered = false
	return nil
}

func (s *Sim) ReadFlash(buf []byte, offset uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return &StatusError{Op: "readFlash", Code: 1}
	}
	s.flashReads++
	for i := range buf {
		pos := int(offset) + i
		if pos < len(s.Flash) {
			buf[i] = s.Flash[pos]
		} else {
			buf[i] = 0xFF
		}
	}
	return nil
}
