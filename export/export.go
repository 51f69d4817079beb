// Package export persists captured spectra to disk and render streams.
//
// CSV output is two columns (wavelength, intensity) with a header row, which
// plotting tools and spreadsheets ingest directly. JSON output round-trips
// the models.Spectrum shape used by the HTTP API.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/PVSensors/ASQESpectrometer/models"
)

// WriteCSV renders sp as CSV to w.
func WriteCSV(w io.Writer, sp models.Spectrum) error {
	if len(sp.Wavelength) != len(sp.Intensity) {
		return fmt.Errorf("export: wavelength/intensity length mismatch (%d vs %d)", len(sp.Wavelength), len(sp.Intensity))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"wavelength_nm", "intensity"}); err != nil {
		return err
	}
	for i := range sp.Wavelength {
		rec := []string{
			strconv.FormatFloat(sp.Wavelength[i], 'g', -1, 64),
			strconv.FormatFloat(sp.Intensity[i], 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes sp as CSV to path, overwriting any existing file.
func SaveCSV(path string, sp models.Spectrum) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, sp); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SaveJSON writes sp as indented JSON to path.
func SaveJSON(path string, sp models.Spectrum) error {
	data, err := json.MarshalIndent(sp, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
