package server

import (
	"time"

	"github.com/PVSensors/ASQESpectrometer/models"
)

// APIError is the canonical error envelope returned by JSON endpoints.
type APIError struct {
	Error string `json:"error"`
}

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	OK        bool      `json:"ok"`
	Timestamp time.Time `json:"timestamp"`
}

// ConnectRequest optionally carries the acquisition configuration to push
// right after connecting. When absent, the session defaults are used.
type ConnectRequest struct {
	Config *models.AcquisitionConfig `json:"config,omitempty"`
}

// ConnectResponse is returned by /api/connect.
type ConnectResponse struct {
	Connected bool                     `json:"connected"`
	Config    models.AcquisitionConfig `json:"config"`
}

// CaptureRequest selects which pipeline stage /api/capture should return.
// Kind is one of "raw", "corrected", "normalized", "calibrated" (default).
type CaptureRequest struct {
	Kind string `json:"kind,omitempty"`
}

// CaptureResponse returns the capture result plus the stored record id used
// by /api/download.
type CaptureResponse struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Spectrum models.Spectrum `json:"spectrum"`
}

// StreamStartRequest configures the live capture loop.
type StreamStartRequest struct {
	IntervalMS int `json:"intervalMs,omitempty"`
}

// WSMessage is the event envelope sent over /ws/spectra. The frontend
// switches on `type` and treats `data` as an arbitrary JSON object.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
