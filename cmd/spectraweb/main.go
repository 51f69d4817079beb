// Command `spectraweb` runs the ASQE spectrometer web UI + HTTP API locally.
//
// It serves static assets from `-web` (defaults to `./web`) and exposes JSON
// APIs + a WebSocket spectrum stream used by the frontend to connect to the
// device, configure acquisition, capture spectra at any pipeline stage, and
// download them as CSV.
//
// Flags:
//
//	-addr: TCP address to listen on (default 127.0.0.1:8080)
//	-web:  path to web root containing index.html
//	-open: open the UI URL in your default browser at startup
//
// As shipped the server drives the built-in simulator; a hardware build swaps
// the device factory passed to server.New for one backed by the native driver.
//
// Env:
//
//	SPECTRAWEB_NO_OPEN=1 disables browser auto-open even when -open is set.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/PVSensors/ASQESpectrometer/calibration"
	"github.com/PVSensors/ASQESpectrometer/device"
	"github.com/PVSensors/ASQESpectrometer/internal/server"
	"github.com/PVSensors/ASQESpectrometer/models"
)

func main() {
	var (
		addr = flag.String("addr", "127.0.0.1:8080", "http listen address")
		web  = flag.String("web", "./web", "path to web root (index.html)")
		open = flag.Bool("open", false, "open the web UI in your default browser on startup")
	)
	flag.Parse()

	// Resolve web directory to an absolute path so logging and FileServer
	// behavior are consistent regardless of the current working directory.
	webDir, err := filepath.Abs(*web)
	if err != nil {
		log.Fatalf("Failed to resolve web directory: %v", err)
	}
	if st, err := os.Stat(webDir); err != nil || !st.IsDir() {
		log.Fatalf("Web directory does not exist: %s", webDir)
	}

	s := server.New(webDir, func() device.Device { return newSimDevice() })

	// Bind the listen address early so we fail fast if the port is in use.
	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", *addr, err)
	}

	uiURL := makeUIURL(*addr)
	log.Printf("Serving on http://%s", *addr)
	log.Printf("UI:        %s", uiURL)

	if *open && os.Getenv("SPECTRAWEB_NO_OPEN") == "" {
		if err := openBrowser(uiURL); err != nil {
			log.Printf("WARN: failed to open browser: %v", err)
		}
	}

	if err := http.Serve(ln, s.Handler()); err != nil {
		fmt.Println(err)
	}
}

// newSimDevice builds a simulator with a plausible emission peak and a
// well-formed calibration image so every pipeline stage works end to end.
func newSimDevice() *device.Sim {
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

// makeUIURL turns a listen address (host:port) into a browser-friendly URL.
// Wildcard binds (0.0.0.0 / ::) map to 127.0.0.1.
func makeUIURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Sprintf("http://%s/", strings.TrimSpace(addr))
	}
	if host == "" || host == "0.0.0.0" || host == "::" || host == "[::]" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%s/", host, port)
}

// openBrowser tries to open the given URL in the OS default browser. It is
// non-blocking so the server startup path is not delayed by browser launch.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("cmd", "/c", "start", "", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
