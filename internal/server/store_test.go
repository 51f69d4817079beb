package server

import (
	"testing"

	"github.com/PVSensors/ASQESpectrometer/models"
)

func TestCaptureStoreAddGet(t *testing.T) {
	s := NewCaptureStore(4)
	sp := models.Spectrum{Wavelength: []float64{1}, Intensity: []float64{2}}
	id := s.Add("calibrated", models.DefaultAcquisitionConfig(), sp)
	if id == "" {
		t.Fatal("empty id")
	}
	rec, ok := s.Get(id)
	if !ok {
		t.Fatal("record not found")
	}
	if rec.Kind != "calibrated" || rec.Spectrum.Intensity[0] != 2 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if _, ok := s.Get("nope"); ok {
		t.Fatal("Get returned a record for an unknown id")
	}
}

func TestCaptureStoreEvictsOldest(t *testing.T) {
	s := NewCaptureStore(3)
	cfg := models.DefaultAcquisitionConfig()
	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, s.Add("raw", cfg, models.Spectrum{}))
	}
	if got := len(s.List()); got != 3 {
		t.Fatalf("stored %d records, want 3", got)
	}
	if _, ok := s.Get(ids[len(ids)-1]); !ok {
		t.Fatal("newest record evicted")
	}
}

func TestCaptureStoreListOmitsSpectra(t *testing.T) {
	s := NewCaptureStore(4)
	s.Add("raw", models.DefaultAcquisitionConfig(), models.Spectrum{
		Wavelength: make([]float64, 100),
		Intensity:  make([]float64, 100),
	})
	list := s.List()
	if len(list) != 1 {
		t.Fatalf("list length = %d, want 1", len(list))
	}
	if len(list[0].Spectrum.Intensity) != 0 {
		t.Fatal("List leaked spectrum payload")
	}
}
