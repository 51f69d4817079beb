package calibration

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PVSensors/ASQESpectrometer/models"
)

// BuildBlob renders d into the flat text layout Parse consumes.
//
// The returned bytes do not include the flash termination marker; callers
// embedding the blob into a flash image append Marker themselves. Header and
// separator lines that Parse skips are emitted as zeros.
//
// The three coefficient arrays must each have models.SpectrumLength entries.
func BuildBlob(d *Data) ([]byte, error) {
	if len(d.Wavelength) != models.SpectrumLength ||
		len(d.NormCoef) != models.SpectrumLength ||
		len(d.PowerCoef) != models.SpectrumLength {
		return nil, fmt.Errorf("calibration: coefficient arrays must have %d entries", models.SpectrumLength)
	}

	var sb strings.Builder
	line := 0
	emit := func(s string) {
		sb.WriteString(s)
		sb.WriteByte('\n')
		line++
	}
	emitSpan := func(start int, vals []float64) {
		for line < start {
			emit("0")
		}
		for _, v := range vals {
			emit(strconv.FormatFloat(v, 'g', -1, 64))
		}
	}

	emit("ASQE-CAL")
	emit(strconv.FormatFloat(d.BckAT, 'g', -1, 64))
	emitSpan(WavelengthStart, d.Wavelength)
	emitSpan(NormStart, d.NormCoef)
	emitSpan(PowerStart, d.PowerCoef)

	return []byte(sb.String()), nil
}
