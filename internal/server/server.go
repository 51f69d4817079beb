package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PVSensors/ASQESpectrometer/device"
	"github.com/PVSensors/ASQESpectrometer/export"
	"github.com/PVSensors/ASQESpectrometer/models"
	"github.com/PVSensors/ASQESpectrometer/ports"
	"github.com/PVSensors/ASQESpectrometer/spectro"
)

// defaultStreamInterval paces the live loop when the client does not ask for
// a specific cadence.
const defaultStreamInterval = 250 * time.Millisecond

// DeviceSession serializes all spectrometer access behind one mutex. The
// spectro.Session itself is single-threaded; every handler that touches it
// must hold mu.
type DeviceSession struct {
	mu sync.Mutex

	session *spectro.Session

	// One active operation at a time
	opCancel context.CancelFunc
	opKind   string
}

type Server struct {
	mux *http.ServeMux

	store *CaptureStore
	dev   *DeviceSession

	wsSpectra *WSHub

	// newDevice builds the device handle for /api/connect. Injected so the
	// binary can choose between hardware and the simulator.
	newDevice func() device.Device
}

func New(webDir string, newDevice func() device.Device) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		store:     NewCaptureStore(64),
		dev:       &DeviceSession{},
		wsSpectra: NewWSHub(),
		newDevice: newDevice,
	}

	// API
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/ports", s.handlePorts)
	s.mux.HandleFunc("/api/connect", s.handleConnect)
	s.mux.HandleFunc("/api/disconnect", s.handleDisconnect)
	s.mux.HandleFunc("/api/configure", s.handleConfigure)
	s.mux.HandleFunc("/api/capture", s.handleCapture)
	s.mux.HandleFunc("/api/captures", s.handleCaptures)
	s.mux.HandleFunc("/api/stream/start", s.handleStreamStart)
	s.mux.HandleFunc("/api/stream/stop", s.handleStopOp)
	s.mux.HandleFunc("/api/download", s.handleDownload)

	// WS
	s.mux.HandleFunc("/ws/spectra", s.handleWSSpectra)

	// Static frontend
	fs := http.FileServer(http.Dir(webDir))
	s.mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Avoid stale UI/assets after updates (especially important with ESM imports).
		if r.URL != nil {
			p := r.URL.Path
			if p == "/" ||
				strings.HasPrefix(p, "/assets/") ||
				strings.HasSuffix(p, ".html") ||
				strings.HasSuffix(p, ".js") ||
				strings.HasSuffix(p, ".css") {
				w.Header().Set("Cache-Control", "no-store")
			}
		}
		fs.ServeHTTP(w, r)
	}))

	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	b, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, 200, HealthResponse{OK: true, Timestamp: time.Now()})
}

func (s *Server) handlePorts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, 200, map[string]interface{}{"ports": ports.List()})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req ConnectRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}

	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()

	s.dev.cancelLocked()
	s.dev.closeLocked()

	sess := spectro.NewSession(s.newDevice())
	if err := sess.Connect(); err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	cfg := models.DefaultAcquisitionConfig()
	if req.Config != nil {
		cfg = *req.Config
	}
	if err := sess.Configure(cfg); err != nil {
		_ = sess.Close()
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	s.dev.session = sess

	s.writeJSON(w, 200, ConnectResponse{Connected: true, Config: sess.Config()})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	s.dev.cancelLocked()
	s.dev.closeLocked()
	s.writeJSON(w, 200, map[string]bool{"ok": true})
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var cfg models.AcquisitionConfig
	if err := s.readJSON(r, &cfg); err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}

	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	if s.dev.session == nil {
		s.writeJSON(w, 400, APIError{Error: "not connected"})
		return
	}
	if s.dev.opKind != "" {
		s.writeJSON(w, 400, APIError{Error: "busy"})
		return
	}
	if err := s.dev.session.Configure(cfg); err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	s.writeJSON(w, 200, ConnectResponse{Connected: true, Config: s.dev.session.Config()})
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req CaptureRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = "calibrated"
	}

	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	if s.dev.session == nil {
		s.writeJSON(w, 400, APIError{Error: "not connected"})
		return
	}
	if s.dev.opKind != "" {
		s.writeJSON(w, 400, APIError{Error: "busy"})
		return
	}

	sp, err := s.captureLocked(r.Context(), kind)
	if err != nil {
		s.writeJSON(w, 500, APIError{Error: err.Error()})
		return
	}
	id := s.store.Add(kind, s.dev.session.Config(), sp)
	s.writeJSON(w, 200, CaptureResponse{ID: id, Kind: kind, Spectrum: sp})
}

// captureLocked runs one capture of the requested pipeline stage. Caller
// holds dev.mu. Stages without a wavelength axis get pixel indices so the CSV
// download always has two columns.
func (s *Server) captureLocked(ctx context.Context, kind string) (models.Spectrum, error) {
	sess := s.dev.session
	switch kind {
	case "raw":
		frame, err := sess.CaptureRaw(ctx)
		if err != nil {
			return models.Spectrum{}, err
		}
		sp := models.Spectrum{
			Wavelength: make([]float64, len(frame)),
			Intensity:  make([]float64, len(frame)),
		}
		for i, v := range frame {
			sp.Wavelength[i] = float64(i)
			sp.Intensity[i] = float64(v)
		}
		return sp, nil
	case "corrected":
		corrected, err := sess.BackgroundCorrected(ctx)
		if err != nil {
			return models.Spectrum{}, err
		}
		sp := models.Spectrum{
			Wavelength: make([]float64, len(corrected)),
			Intensity:  corrected,
		}
		for i := range sp.Wavelength {
			sp.Wavelength[i] = float64(models.WindowStart + i)
		}
		return sp, nil
	case "normalized":
		return sess.Normalized(ctx)
	case "calibrated":
		return sess.Calibrated(ctx)
	default:
		return models.Spectrum{}, fmt.Errorf("unknown capture kind %q", kind)
	}
}

func (s *Server) handleCaptures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, 200, map[string]interface{}{"captures": s.store.List()})
}

func (s *Server) handleStreamStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req StreamStartRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeJSON(w, 400, APIError{Error: err.Error()})
		return
	}
	interval := defaultStreamInterval
	if req.IntervalMS > 0 {
		interval = time.Duration(req.IntervalMS) * time.Millisecond
	}

	s.dev.mu.Lock()
	if s.dev.session == nil {
		s.dev.mu.Unlock()
		s.writeJSON(w, 400, APIError{Error: "not connected"})
		return
	}
	if s.dev.opKind != "" {
		s.dev.mu.Unlock()
		s.writeJSON(w, 400, APIError{Error: "busy"})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.dev.opCancel = cancel
	s.dev.opKind = "stream"
	s.dev.mu.Unlock()

	go s.streamLoop(ctx, interval)

	s.writeJSON(w, 200, map[string]bool{"ok": true})
}

// streamLoop captures calibrated spectra at the given pace and broadcasts
// them until the operation is cancelled. Each capture takes dev.mu so API
// calls interleave between frames rather than racing the session.
func (s *Server) streamLoop(ctx context.Context, interval time.Duration) {
	defer func() {
		s.dev.mu.Lock()
		s.dev.opKind = ""
		s.dev.opCancel = nil
		s.dev.mu.Unlock()
		s.wsSpectra.Broadcast(WSMessage{Type: "streamStopped"})
	}()

	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.dev.mu.Lock()
			sess := s.dev.session
			if sess == nil {
				s.dev.mu.Unlock()
				return
			}
			sp, err := sess.Calibrated(ctx)
			s.dev.mu.Unlock()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.wsSpectra.Broadcast(WSMessage{Type: "error", Data: map[string]string{"error": err.Error()}})
				return
			}
			s.wsSpectra.Broadcast(WSMessage{Type: "spectrum", Data: sp})
		}
	}
}

func (s *Server) handleStopOp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	s.dev.cancelLocked()
	s.writeJSON(w, 200, map[string]bool{"ok": true})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		s.writeJSON(w, 400, APIError{Error: "missing id"})
		return
	}
	rec, ok := s.store.Get(id)
	if !ok {
		s.writeJSON(w, 404, APIError{Error: "not found"})
		return
	}
	name := fmt.Sprintf("spectrum_%s_%s.csv", rec.Kind, rec.Taken.Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(200)
	_ = export.WriteCSV(w, rec.Spectrum)
}

func (s *Server) handleWSSpectra(w http.ResponseWriter, r *http.Request) {
	s.wsSpectra.ServeWS(w, r)
}

func (d *DeviceSession) cancelLocked() {
	if d.opCancel != nil {
		d.opCancel()
		d.opCancel = nil
		d.opKind = ""
	}
}

func (d *DeviceSession) closeLocked() {
	if d.session != nil {
		_ = d.session.Close()
	}
	d.session = nil
}
