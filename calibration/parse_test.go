package calibration

import (
	"errors"
	"strings"
	"testing"

	"github.com/PVSensors/ASQESpectrometer/models"
)

func testData() *Data {
	d := &Data{
		BckAT:      0.125,
		Wavelength: make([]float64, models.SpectrumLength),
		NormCoef:   make([]float64, models.SpectrumLength),
		PowerCoef:  make([]float64, models.SpectrumLength),
	}
	for i := range d.Wavelength {
		d.Wavelength[i] = 340 + 0.25*float64(i)
		d.NormCoef[i] = 1 + float64(i%7)
		d.PowerCoef[i] = 0.5 + float64(i%3)
	}
	return d
}

func TestBuildParseRoundTrip(t *testing.T) {
	want := testData()
	blob, err := BuildBlob(want)
	if err != nil {
		t.Fatalf("BuildBlob failed: %v", err)
	}

	got, err := Parse(blob)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.BckAT != want.BckAT {
		t.Errorf("BckAT = %v, want %v", got.BckAT, want.BckAT)
	}
	for name, pair := range map[string][2][]float64{
		"Wavelength": {got.Wavelength, want.Wavelength},
		"NormCoef":   {got.NormCoef, want.NormCoef},
		"PowerCoef":  {got.PowerCoef, want.PowerCoef},
	} {
		g, w := pair[0], pair[1]
		if len(g) != models.SpectrumLength {
			t.Fatalf("%s length = %d, want %d", name, len(g), models.SpectrumLength)
		}
		for i := range g {
			if g[i] != w[i] {
				t.Fatalf("%s[%d] = %v, want %v", name, i, g[i], w[i])
			}
		}
	}
}

func TestParseAcceptsCRLF(t *testing.T) {
	blob, err := BuildBlob(testData())
	if err != nil {
		t.Fatalf("BuildBlob failed: %v", err)
	}
	crlf := strings.ReplaceAll(string(blob), "\n", "\r\n")
	got, err := Parse([]byte(crlf))
	if err != nil {
		t.Fatalf("Parse failed on CRLF blob: %v", err)
	}
	if got.BckAT != 0.125 {
		t.Errorf("BckAT = %v, want 0.125", got.BckAT)
	}
}

func TestParseRejects(t *testing.T) {
	valid, err := BuildBlob(testData())
	if err != nil {
		t.Fatalf("BuildBlob failed: %v", err)
	}
	corruptLine := func(n int, repl string) []byte {
		lines := strings.Split(string(valid), "\n")
		lines[n] = repl
		return []byte(strings.Join(lines, "\n"))
	}

	cases := []struct {
		name     string
		blob     []byte
		wantLine int
	}{
		{"empty", nil, -1},
		{"truncated", []byte("ASQE-CAL\n0.125\n1\n2\n3\n"), -1},
		{"binary garbage", []byte{0x80, 0xFE, 0x01, 0x00}, -1},
		{"bad bck_aT", corruptLine(BckATLine, "not-a-number"), BckATLine},
		{"bad wavelength entry", corruptLine(WavelengthStart+17, "12..5"), WavelengthStart + 17},
		{"bad norm entry", corruptLine(NormStart+5, ""), NormStart + 5},
		{"bad power entry", corruptLine(PowerEnd-1, "1e"), PowerEnd - 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.blob)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want *FormatError", err)
			}
			if fe.Line != tc.wantLine {
				t.Errorf("FormatError.Line = %d, want %d", fe.Line, tc.wantLine)
			}
		})
	}
}

func TestBuildBlobRejectsWrongLengths(t *testing.T) {
	d := testData()
	d.NormCoef = d.NormCoef[:10]
	if _, err := BuildBlob(d); err == nil {
		t.Fatal("BuildBlob accepted short coefficient array")
	}
}
