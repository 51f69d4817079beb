// Package ports enumerates candidate serial device nodes.
//
// ASQE spectrometers enumerate as USB CDC devices; the native driver locates
// the instrument itself, but operators still want to see which nodes exist
// when diagnosing a machine. This is a best-effort aid, not part of the
// acquisition path.
package ports

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"go.bug.st/serial/enumerator"
)

// Info describes one enumerated port.
type Info struct {
	Name string `json:"name"`
	// VID/PID are set when the port is USB-backed and the OS reports them.
	VID string `json:"vid,omitempty"`
	PID string `json:"pid,omitempty"`
}

// List returns the available serial ports, sorted by name and de-duplicated.
//
// It prefers the cross-platform enumerator (which can report USB VID/PID) and
// falls back to device-node globbing on platforms where enumeration returns
// nothing.
func List() []Info {
	if detailed, err := enumerator.GetDetailedPortsList(); err == nil && len(detailed) > 0 {
		out := make([]Info, 0, len(detailed))
		seen := make(map[string]struct{}, len(detailed))
		for _, p := range detailed {
			if p == nil || p.Name == "" {
				continue
			}
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			info := Info{Name: p.Name}
			if p.IsUSB {
				info.VID = p.VID
				info.PID = p.PID
			}
			out = append(out, info)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	}

	switch runtime.GOOS {
	case "windows":
		return nil
	case "darwin":
		return listByGlob("/dev/cu.*", "/dev/tty.*")
	default:
		return listByGlob("/dev/ttyUSB*", "/dev/ttyACM*")
	}
}

// listByGlob expands glob patterns into a stable, de-duplicated list.
func listByGlob(patterns ...string) []Info {
	seen := map[string]struct{}{}
	out := make([]Info, 0, 8)
	for _, pat := range patterns {
		matches, _ := filepath.Glob(pat)
		for _, m := range matches {
			if m == "" {
				continue
			}
			if _, err := os.Stat(m); err != nil {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, Info{Name: m})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
