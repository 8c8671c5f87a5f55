package io

// jobFile mirrors the TOML document. Optional settings are pointers so an
// absent key takes its default and an explicit zero is kept.
type jobFile struct {
	Program    programSection     `toml:"program"`
	Bunches    []bunchSection     `toml:"bunch"`
	Waveguides []waveguideSection `toml:"waveguide"`
	Markers    []markerSection    `toml:"marker"`
	Trenches   []trenchSection    `toml:"trench"`
	Columns    []trenchParams     `toml:"trench_column"`
}

type programSection struct {
	Filename     string    `toml:"filename"`
	Lab          string    `toml:"lab"`
	SampleSize   []float64 `toml:"sample_size"`
	NewOrigin    []float64 `toml:"new_origin"`
	Angle        float64   `toml:"angle"`
	Warp         bool      `toml:"warp"`
	LongPause    *float64  `toml:"long_pause"`
	ShortPause   *float64  `toml:"short_pause"`
	OutputDigits *int      `toml:"output_digits"`
}

type bunchSection struct {
	Name   string `toml:"name"`
	Kind   string `toml:"kind"`
	Scan   *int   `toml:"scan"`
	Parent string `toml:"parent"`
}

type waveguideSection struct {
	Scan       *int          `toml:"scan"`
	Speed      *float64      `toml:"speed"`
	Depth      *float64      `toml:"depth"`
	Radius     *float64      `toml:"radius"`
	SpeedPos   *float64      `toml:"speed_pos"`
	Settle     *float64      `toml:"settle"`
	CmdRateMax *float64      `toml:"cmd_rate_max"`
	AccMax     *float64      `toml:"acc_max"`
	Start      []float64     `toml:"start"`
	Bunch      string        `toml:"bunch"`
	Moves      []moveSection `toml:"move"`
}

type moveSection struct {
	Kind      string    `toml:"kind"`
	Increment []float64 `toml:"increment"`
	DY        float64   `toml:"dy"`
	DZ        float64   `toml:"dz"`
	Arm       float64   `toml:"arm"`
}

type markerSection struct {
	Position   []float64 `toml:"position"`
	Depth      *float64  `toml:"depth"`
	LX         *float64  `toml:"lx"`
	LY         *float64  `toml:"ly"`
	Speed      *float64  `toml:"speed"`
	SpeedPos   *float64  `toml:"speed_pos"`
	CmdRateMax *float64  `toml:"cmd_rate_max"`
	Scan       *int      `toml:"scan"`
	Bunch      string    `toml:"bunch"`
}

type trenchSection struct {
	trenchParams
	Polygon [][]float64 `toml:"polygon"`
	Bunch   string      `toml:"bunch"`
}

type trenchParams struct {
	XCenter     float64  `toml:"x_center"`
	YMin        float64  `toml:"y_min"`
	YMax        float64  `toml:"y_max"`
	Bridge      *float64 `toml:"bridge"`
	Length      *float64 `toml:"length"`
	NBoxZ       *int     `toml:"nboxz"`
	ZOff        *float64 `toml:"z_off"`
	HBox        *float64 `toml:"h_box"`
	DeltaZ      *float64 `toml:"deltaz"`
	DeltaFloor  *float64 `toml:"delta_floor"`
	BeamWaist   *float64 `toml:"beam_waist"`
	RoundCorner *float64 `toml:"round_corner"`
	Speed       *float64 `toml:"speed"`
	SpeedPos    *float64 `toml:"speed_pos"`
	CmdRateMax  *float64 `toml:"cmd_rate_max"`
}

// override replaces *dst with v when the key was present.
func override[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
