package pgm

import (
	"strings"

	"github.com/matzehuels/femtopgm/pkg/errors"
)

// Lab names a laser writing station. The station determines the shutter
// settle time.
type Lab string

const (
	LabCapable Lab = "CAPABLE"
	LabDiamond Lab = "DIAMOND"
	LabFire    Lab = "FIRE"
)

// Labs lists the known stations.
var Labs = []Lab{LabCapable, LabDiamond, LabFire}

// ParseLab resolves a station name case-insensitively.
func ParseLab(s string) (Lab, error) {
	l := Lab(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Labs {
		if l == known {
			return l, nil
		}
	}
	return "", errors.Configuration("lab must be one of CAPABLE, DIAMOND, FIRE, got %q", s)
}

// ShutterTime is the settle time of the shutter in seconds. CAPABLE uses a
// PSO-gated modulator and needs none.
func (l Lab) ShutterTime() float64 {
	if l == LabCapable {
		return 0
	}
	return 0.005
}
