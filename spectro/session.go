// Package spectro drives one ASQE spectrometer through a device handle:
// connection lifecycle, acquisition configuration, triggered capture, and the
// calibrated-spectrum pipeline on top of the processing package.
//
// A Session owns its device exclusively and performs no locking; callers that
// need concurrent access must serialize externally. Each spectrum accessor
// performs exactly one hardware trigger and composes the pure processing
// stages over that single frame.
package spectro

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PVSensors/ASQESpectrometer/calibration"
	"github.com/PVSensors/ASQESpectrometer/device"
	"github.com/PVSensors/ASQESpectrometer/models"
	"github.com/PVSensors/ASQESpectrometer/processing"
)

const (
	// pollInterval is the fixed cadence at which the capture loop queries the
	// device for frame readiness.
	pollInterval = 25 * time.Millisecond

	// DefaultCaptureTimeout bounds how long CaptureRaw waits for a frame
	// before giving up on an unresponsive device.
	DefaultCaptureTimeout = 10 * time.Second

	// getFrameMaxLen is the max-length argument passed to the firmware frame
	// retrieval primitive.
	getFrameMaxLen = 65535
)

// ErrCaptureTimeout is returned when the device does not report a ready frame
// within the session's capture timeout.
var ErrCaptureTimeout = errors.New("spectro: timed out waiting for frame")

// ErrNotConnected is returned by operations that require an open device handle.
var ErrNotConnected = errors.New("spectro: not connected")

// Session is the lifecycle wrapper around one spectrometer.
type Session struct {
	dev device.Device
	cfg models.AcquisitionConfig

	connected bool
	// pixelCount is the device-reported count from the last Configure. It is
	// captured for future use and not consumed downstream yet.
	pixelCount uint16

	calib *calibration.Data

	captureTimeout time.Duration
	flashOpts      calibration.ReadOptions
}

// Option customizes a Session at construction time.
type Option func(*Session)

// WithCaptureTimeout overrides DefaultCaptureTimeout. d <= 0 disables the
// timeout entirely, restoring the reference poll-forever behavior.
func WithCaptureTimeout(d time.Duration) Option {
	return func(s *Session) { s.captureTimeout = d }
}

// WithFlashReadOptions controls calibration blob reading, in particular
// whether a missing termination marker is an error.
func WithFlashReadOptions(opts calibration.ReadOptions) Option {
	return func(s *Session) { s.flashOpts = opts }
}

// NewSession wraps dev with the default acquisition configuration. The device
// is not contacted until Connect.
func NewSession(dev device.Device, opts ...Option) *Session {
	s := &Session{
		dev:            dev,
		cfg:            models.DefaultAcquisitionConfig(),
		captureTimeout: DefaultCaptureTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Connect opens the device handle. No retry: a rejected connect surfaces the
// device's *device.ConnectError immediately.
func (s *Session) Connect() error {
	if s.connected {
		return nil
	}
	if err := s.dev.Connect(); err != nil {
		return err
	}
	s.connected = true
	return nil
}

// Close disconnects unconditionally. It runs on every teardown path,
// including after configuration or capture failures, and is safe to call
// more than once.
func (s *Session) Close() error {
	s.connected = false
	return s.dev.Disconnect()
}

// Config returns the session's current acquisition configuration.
func (s *Session) Config() models.AcquisitionConfig { return s.cfg }

// Configure validates cfg locally, pushes it to the device, and records the
// device-reported pixel count.
func (s *Session) Configure(cfg models.AcquisitionConfig) error {
	if !s.connected {
		return ErrNotConnected
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("spectro: %w", err)
	}
	if err := s.dev.SetAcquisitionParameters(cfg.Scans, cfg.BlankScans, cfg.ScanMode, cfg.ExposureTimeUS); err != nil {
		return err
	}
	n, err := s.dev.SetFrameFormat(cfg.PixelStart, cfg.PixelEnd, cfg.ReductionMode)
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.pixelCount = n
	return nil
}

// CaptureRaw triggers one exposure and blocks until the frame is retrieved.
//
// The device is polled at a fixed 25 ms cadence until it reports a nonzero
// frame count. The wait is bounded by the session's capture timeout
// (ErrCaptureTimeout) and by ctx. Each call fires exactly one hardware
// trigger and allocates a fresh frame buffer.
func (s *Session) CaptureRaw(ctx context.Context) (models.RawFrame, error) {
	if !s.connected {
		return nil, ErrNotConnected
	}
	if err := s.dev.TriggerAcquisition(); err != nil {
		return nil, err
	}

	var deadline <-chan time.Time
	if s.captureTimeout > 0 {
		t := time.NewTimer(s.captureTimeout)
		defer t.Stop()
		deadline = t.C
	}
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, ErrCaptureTimeout
		case <-tick.C:
			_, frames, err := s.dev.GetStatus()
			if err != nil {
				return nil, err
			}
			if frames == 0 {
				continue
			}
			frame := make(models.RawFrame, models.FrameLength)
			if err := s.dev.GetFrame(frame, getFrameMaxLen); err != nil {
				return nil, err
			}
			return frame, nil
		}
	}
}

// Calibration returns the session's calibration data, reading and parsing it
// from flash on first use. The parsed data is memoized for the session's
// lifetime and never re-read, even if flash contents change.
func (s *Session) Calibration() (*calibration.Data, error) {
	if s.calib != nil {
		return s.calib, nil
	}
	if !s.connected {
		return nil, ErrNotConnected
	}
	d, err := calibration.Load(s.dev, s.flashOpts)
	if err != nil {
		return nil, err
	}
	s.calib = d
	return d, nil
}

// BackgroundCorrected captures one frame and returns the background-corrected
// window, length models.SpectrumLength.
func (s *Session) BackgroundCorrected(ctx context.Context) ([]float64, error) {
	frame, err := s.CaptureRaw(ctx)
	if err != nil {
		return nil, err
	}
	return processing.SubtractBackground(frame), nil
}

// Normalized captures one frame and returns the normalized spectrum paired
// with its wavelength axis.
func (s *Session) Normalized(ctx context.Context) (models.Spectrum, error) {
	calib, err := s.Calibration()
	if err != nil {
		return models.Spectrum{}, err
	}
	frame, err := s.CaptureRaw(ctx)
	if err != nil {
		return models.Spectrum{}, err
	}
	corrected := processing.SubtractBackground(frame)
	return models.Spectrum{
		Wavelength: calib.Wavelength,
		Intensity:  processing.Normalize(corrected, calib),
	}, nil
}

// Calibrated captures one frame and returns the fully power-calibrated
// spectrum. Zero calibration denominators propagate as inf/NaN intensities.
func (s *Session) Calibrated(ctx context.Context) (models.Spectrum, error) {
	calib, err := s.Calibration()
	if err != nil {
		return models.Spectrum{}, err
	}
	frame, err := s.CaptureRaw(ctx)
	if err != nil {
		return models.Spectrum{}, err
	}
	return models.Spectrum{
		Wavelength: calib.Wavelength,
		Intensity:  processing.Calibrate(frame, calib, s.cfg.ExposureTimeUS),
	}, nil
}
