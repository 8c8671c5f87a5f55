package toolpath

import (
	"math"

	"github.com/matzehuels/femtopgm/pkg/errors"
)

// Controller limits shared by all objects.
const (
	DefaultCmdRateMax = 1200.0 // commands per second
	DefaultAccMax     = 500.0  // mm/s^2
)

// WaveguideParams configures a waveguide. Start from
// DefaultWaveguideParams and override what the job sets; zero values are
// taken literally.
type WaveguideParams struct {
	Scan       int     // number of passes, >= 1
	Speed      float64 // writing speed [mm/s]
	SpeedPos   float64 // positioning speed [mm/s]
	Depth      float64 // nominal depth below the surface [mm]
	Radius     float64 // bend radius [mm]
	Settle     float64 // dwell before writing [s]
	CmdRateMax float64
	AccMax     float64
}

// DefaultWaveguideParams returns the writing parameters used when a job
// leaves them unset.
func DefaultWaveguideParams() WaveguideParams {
	return WaveguideParams{
		Scan:       1,
		Speed:      20,
		SpeedPos:   40,
		Depth:      0.035,
		Radius:     15,
		CmdRateMax: DefaultCmdRateMax,
		AccMax:     DefaultAccMax,
	}
}

// Validate checks the parameters.
func (p WaveguideParams) Validate() error {
	if p.Scan < 1 {
		return errors.InvalidArgument("scan must be at least 1, got %d", p.Scan)
	}
	return positive(
		named{"speed", p.Speed},
		named{"speed_pos", p.SpeedPos},
		named{"radius", p.Radius},
		named{"cmd_rate_max", p.CmdRateMax},
		named{"acc_max", p.AccMax},
	)
}

// DL is the maximum sample spacing, speed / cmd_rate_max.
func (p WaveguideParams) DL() float64 {
	return p.Speed / p.CmdRateMax
}

// LVelo is the runway length needed to reach writing speed.
func (p WaveguideParams) LVelo() float64 {
	return 3 * 0.5 * p.Speed * p.Speed / p.AccMax
}

// MarkerParams configures an alignment marker.
type MarkerParams struct {
	Scan       int
	Speed      float64
	SpeedPos   float64
	Depth      float64
	LX         float64 // horizontal arm length [mm]
	LY         float64 // vertical arm length [mm]
	CmdRateMax float64
}

// DefaultMarkerParams returns the marker defaults.
func DefaultMarkerParams() MarkerParams {
	return MarkerParams{
		Scan:       1,
		Speed:      1,
		SpeedPos:   5,
		Depth:      0.001,
		LX:         1,
		LY:         0.060,
		CmdRateMax: DefaultCmdRateMax,
	}
}

// Validate checks the parameters.
func (p MarkerParams) Validate() error {
	if p.Scan < 1 {
		return errors.InvalidArgument("scan must be at least 1, got %d", p.Scan)
	}
	return positive(
		named{"speed", p.Speed},
		named{"speed_pos", p.SpeedPos},
		named{"lx", p.LX},
		named{"ly", p.LY},
		named{"cmd_rate_max", p.CmdRateMax},
	)
}

// TrenchParams configures trench blocks and trench columns. Start from
// DefaultTrenchParams.
type TrenchParams struct {
	XCenter     float64 // column center [mm]
	YMin        float64 // lower column edge [mm]
	YMax        float64 // upper column edge [mm]
	Bridge      float64 // unwritten bridge around each waveguide [mm]
	Length      float64 // trench length along x [mm]
	NBoxZ       int     // number of stacked passes
	ZOff        float64 // offset of the first pass below the box top [mm]
	HBox        float64 // box height [mm]
	DeltaZ      float64 // layer pitch [mm]
	DeltaFloor  float64 // floor offset below the last wall layer [mm]
	BeamWaist   float64 // fill pitch [mm]
	RoundCorner float64 // corner allowance [mm]
	Speed       float64
	SpeedPos    float64
	CmdRateMax  float64
}

// DefaultTrenchParams returns the trench defaults.
func DefaultTrenchParams() TrenchParams {
	return TrenchParams{
		Bridge:      0.026,
		Length:      1,
		NBoxZ:       4,
		ZOff:        0.020,
		HBox:        0.075,
		DeltaZ:      0.0015,
		DeltaFloor:  0.001,
		BeamWaist:   0.004,
		RoundCorner: 0.005,
		Speed:       4,
		SpeedPos:    5,
		CmdRateMax:  DefaultCmdRateMax,
	}
}

// Validate checks the parameters.
func (p TrenchParams) Validate() error {
	if p.NBoxZ < 1 {
		return errors.InvalidArgument("nboxz must be at least 1, got %d", p.NBoxZ)
	}
	if err := nonNegative(
		named{"bridge", p.Bridge},
		named{"z_off", p.ZOff},
		named{"round_corner", p.RoundCorner},
	); err != nil {
		return err
	}
	return positive(
		named{"length", p.Length},
		named{"h_box", p.HBox},
		named{"deltaz", p.DeltaZ},
		named{"delta_floor", p.DeltaFloor},
		named{"beam_waist", p.BeamWaist},
		named{"speed", p.Speed},
		named{"speed_pos", p.SpeedPos},
		named{"cmd_rate_max", p.CmdRateMax},
	)
}

// AdjBridge is the distance kept clear on each side of a waveguide.
func (p TrenchParams) AdjBridge() float64 {
	return p.Bridge/2 + p.BeamWaist + p.RoundCorner
}

// DL is the maximum sample spacing.
func (p TrenchParams) DL() float64 {
	return p.Speed / p.CmdRateMax
}

// LayerDepths returns the z of every pass, top to bottom. The last entry is
// the floor.
func (p TrenchParams) LayerDepths() []float64 {
	zs := make([]float64, p.NBoxZ)
	z := p.HBox - p.ZOff
	for i := range zs {
		zs[i] = z
		z -= p.DeltaZ
	}
	if n := len(zs); n > 1 {
		zs[n-1] = zs[n-2] - p.DeltaFloor
	}
	return zs
}

type named struct {
	name string
	v    float64
}

func positive(vals ...named) error {
	for _, v := range vals {
		if !(v.v > 0) || math.IsInf(v.v, 0) {
			return errors.InvalidArgument("%s must be positive and finite, got %g", v.name, v.v)
		}
	}
	return nil
}

func nonNegative(vals ...named) error {
	for _, v := range vals {
		if !(v.v >= 0) || math.IsInf(v.v, 0) {
			return errors.InvalidArgument("%s must be non-negative and finite, got %g", v.name, v.v)
		}
	}
	return nil
}
