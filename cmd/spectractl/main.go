// Command `spectractl` is the interactive console client for the ASQE
// spectrometer. It connects, pushes the acquisition configuration, then runs
// a live capture loop printing a one-line summary of each calibrated
// spectrum.
//
// Keys during the live loop:
//
//	c   save the latest spectrum as CSV into -out
//	j   save the latest spectrum as JSON into -out
//	ESC quit
//
// `spectractl -ports` lists candidate serial ports and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/PVSensors/ASQESpectrometer/calibration"
	"github.com/PVSensors/ASQESpectrometer/device"
	"github.com/PVSensors/ASQESpectrometer/export"
	"github.com/PVSensors/ASQESpectrometer/models"
	"github.com/PVSensors/ASQESpectrometer/ports"
	"github.com/PVSensors/ASQESpectrometer/spectro"
	"github.com/PVSensors/ASQESpectrometer/ui"
)

func main() {
	var (
		listPorts = flag.Bool("ports", false, "list candidate serial ports and exit")
		outDir    = flag.String("out", ".", "directory for saved spectra")
		interval  = flag.Duration("interval", 500*time.Millisecond, "live capture pace")
		once      = flag.Bool("once", false, "capture a single spectrum, save it, and exit")
		debug     = flag.Bool("debug", false, "verbose debug output")

		scans     = flag.Uint("scans", 1, "scans per acquisition")
		blank     = flag.Uint("blank", 0, "blank scans per acquisition")
		exposure  = flag.Uint("exposure", 1000, "exposure time in microseconds")
		scanMode  = flag.Uint("scanmode", 3, "device scan mode")
		pixStart  = flag.Uint("pixstart", 0, "first pixel of the readout window")
		pixEnd    = flag.Uint("pixend", 3647, "last pixel of the readout window")
		reduction = flag.Uint("reduction", 0, "pixel reduction mode")
	)
	flag.Parse()

	if *listPorts {
		list := ports.List()
		if len(list) == 0 {
			fmt.Println("No serial ports found")
			return
		}
		for _, p := range list {
			if p.VID != "" || p.PID != "" {
				fmt.Printf("%-20s VID=%s PID=%s\n", p.Name, p.VID, p.PID)
			} else {
				fmt.Println(p.Name)
			}
		}
		return
	}

	cfg := models.AcquisitionConfig{
		Scans:          uint16(*scans),
		BlankScans:     uint16(*blank),
		ExposureTimeUS: uint32(*exposure),
		ScanMode:       uint8(*scanMode),
		PixelStart:     uint16(*pixStart),
		PixelEnd:       uint16(*pixEnd),
		ReductionMode:  uint8(*reduction),
	}

	sess := spectro.NewSession(newSimDevice())
	if err := sess.Connect(); err != nil {
		log.Fatalf("Connect failed: %v", err)
	}
	defer sess.Close()

	if err := sess.Configure(cfg); err != nil {
		log.Fatalf("Configure failed: %v", err)
	}
	ui.Debugf(*debug, "configured: %+v\n", cfg)

	ctx := context.Background()

	if *once {
		sp, err := sess.Calibrated(ctx)
		if err != nil {
			log.Fatalf("Capture failed: %v", err)
		}
		path := savePath(*outDir, "csv")
		if err := export.SaveCSV(path, sp); err != nil {
			log.Fatalf("Save failed: %v", err)
		}
		ui.PrintSavedLine(path)
		return
	}

	ui.Greenf("Live capture. Press 'c' to save CSV, 'j' to save JSON, ESC to quit.\n")
	keys := ui.StartKeyEvents()
	ui.DrainKeys()

	tick := time.NewTicker(*interval)
	defer tick.Stop()

	var latest models.Spectrum
	captures := 0
	for {
		select {
		case k := <-keys:
			switch k {
			case 27:
				fmt.Println()
				return
			case 'c', 'C':
				if captures == 0 {
					ui.Warningf("\nNothing captured yet\n")
					continue
				}
				path := savePath(*outDir, "csv")
				if err := export.SaveCSV(path, latest); err != nil {
					ui.Warningf("\nSave failed: %v\n", err)
					continue
				}
				ui.PrintSavedLine(path)
			case 'j', 'J':
				if captures == 0 {
					ui.Warningf("\nNothing captured yet\n")
					continue
				}
				path := savePath(*outDir, "json")
				if err := export.SaveJSON(path, latest); err != nil {
					ui.Warningf("\nSave failed: %v\n", err)
					continue
				}
				ui.PrintSavedLine(path)
			}
		case <-tick.C:
			sp, err := sess.Calibrated(ctx)
			if err != nil {
				fmt.Println()
				log.Fatalf("Capture failed: %v", err)
			}
			latest = sp
			captures++
			ui.PrintLiveLine(latest, captures)
		}
	}
}

func savePath(dir, ext string) string {
	name := fmt.Sprintf("spectrum_%s.%s", time.Now().Format("20060102_150405"), ext)
	return filepath.Join(dir, name)
}

// newSimDevice builds a simulator with an emission peak and a well-formed
// calibration image. Hardware use plugs a native-driver Device in here.
func newSimDevice() device.Device {
	sim := device.NewSim(models.FrameLength)
	sim.SetGaussianFrame(1100, 30000, 1800, 120)

	d := &calibration.Data{BckAT: 1.0}
	d.Wavelength = make([]float64, models.SpectrumLength)
	d.NormCoef = make([]float64, models.SpectrumLength)
	d.PowerCoef = make([]float64, models.SpectrumLength)
	for i := range d.Wavelength {
		d.Wavelength[i] = 340 + 0.25*float64(i)
		d.NormCoef[i] = 1
		d.PowerCoef[i] = 1
	}
	blob, err := calibration.BuildBlob(d)
	if err != nil {
		log.Fatalf("Failed to build simulator calibration: %v", err)
	}
	sim.Flash = append(blob, calibration.Marker...)
	return sim
}
