// Command `calblobgen` writes a synthetic calibration flash image to a file.
// The output is the line-oriented text blob the driver parses from device
// flash, terminated with the 0xFF 0xFF marker, and is mainly useful for
// populating simulators and flash-programming fixtures.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/PVSensors/ASQESpectrometer/calibration"
	"github.com/PVSensors/ASQESpectrometer/models"
)

func main() {
	var (
		out     = flag.String("out", "calibration.bin", "output file")
		bckAT   = flag.Float64("bckat", 1.0, "background-per-exposure-time coefficient")
		wlStart = flag.Float64("wlstart", 340.0, "wavelength of the first window pixel, nm")
		wlStep  = flag.Float64("wlstep", 0.25, "wavelength increment per pixel, nm")
		norm    = flag.Float64("norm", 1.0, "normalization coefficient for every pixel")
		power   = flag.Float64("power", 1.0, "power coefficient for every pixel")
	)
	flag.Parse()

	d := &calibration.Data{
		BckAT:      *bckAT,
		Wavelength: make([]float64, models.SpectrumLength),
		NormCoef:   make([]float64, models.SpectrumLength),
		PowerCoef:  make([]float64, models.SpectrumLength),
	}
	for i := range d.Wavelength {
		d.Wavelength[i] = *wlStart + *wlStep*float64(i)
		d.NormCoef[i] = *norm
		d.PowerCoef[i] = *power
	}

	blob, err := calibration.BuildBlob(d)
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}
	blob = append(blob, calibration.Marker...)

	if err := os.WriteFile(*out, blob, 0644); err != nil {
		log.Fatalf("Write failed: %v", err)
	}
	log.Printf("Wrote %d bytes to %s", len(blob), *out)
}
