package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PVSensors/ASQESpectrometer/models"
)

// CaptureRecord is one stored capture, addressable by ID for CSV download.
type CaptureRecord struct {
	ID       string                   `json:"id"`
	Kind     string                   `json:"kind"`
	Taken    time.Time                `json:"taken"`
	Config   models.AcquisitionConfig `json:"config"`
	Spectrum models.Spectrum          `json:"spectrum"`
}

// CaptureStore keeps recent captures in memory, bounded to maxRecords. The
// oldest records are evicted first.
type CaptureStore struct {
	mu         sync.Mutex
	records    map[string]*CaptureRecord
	maxRecords int
}

func NewCaptureStore(maxRecords int) *CaptureStore {
	if maxRecords <= 0 {
		maxRecords = 64
	}
	return &CaptureStore{
		records:    make(map[string]*CaptureRecord),
		maxRecords: maxRecords,
	}
}

func newRecordID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// Add stores a capture and returns its new ID.
func (s *CaptureStore) Add(kind string, cfg models.AcquisitionConfig, sp models.Spectrum) string {
	rec := &CaptureRecord{
		ID:       newRecordID(),
		Kind:     kind,
		Taken:    time.Now(),
		Config:   cfg,
		Spectrum: sp,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	s.evictLocked()
	return rec.ID
}

func (s *CaptureStore) evictLocked() {
	if len(s.records) <= s.maxRecords {
		return
	}
	recs := make([]*CaptureRecord, 0, len(s.records))
	for _, r := range s.records {
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Taken.Before(recs[j].Taken) })
	for _, r := range recs[:len(recs)-s.maxRecords] {
		delete(s.records, r.ID)
	}
}

// Get returns the record with the given ID, or false when unknown.
func (s *CaptureStore) Get(id string) (*CaptureRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	return rec, ok
}

// List returns all records newest first, without their spectra. The UI uses
// this to populate the download list.
func (s *CaptureStore) List() []CaptureRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CaptureRecord, 0, len(s.records))
	for _, r := range s.records {
		c := *r
		c.Spectrum = models.Spectrum{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Taken.After(out[j].Taken) })
	return out
}
