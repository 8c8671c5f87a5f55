package pgm

import (
	"strconv"
	"strings"
)

const header = `ENABLE X Y Z
METRIC
SECONDS
WAIT MODE NOWAIT
VELOCITY ON
PSOCONTROL X RESET
PSOOUTPUT X CONTROL 3 0
PSOCONTROL X OFF
ABSOLUTE
G17`

// formatter renders numbers with a fixed number of fractional digits.
type formatter struct {
	digits int
}

func (f formatter) num(v float64) string {
	s := strconv.FormatFloat(v, 'f', f.digits, 64)
	if strings.HasPrefix(s, "-") && strings.Trim(s[1:], "0.") == "" {
		return s[1:]
	}
	return s
}

func (f formatter) move(x, y, z, feed float64) string {
	var b strings.Builder
	b.WriteString("LINEAR X")
	b.WriteString(f.num(x))
	b.WriteString(" Y")
	b.WriteString(f.num(y))
	b.WriteString(" Z")
	b.WriteString(f.num(z))
	b.WriteString(" F")
	b.WriteString(f.num(feed))
	return b.String()
}

func (f formatter) dwell(seconds float64) string {
	return "DWELL " + f.num(seconds)
}

func (f formatter) shutter(on bool, settle float64) string {
	s := "PSOCONTROL X OFF"
	if on {
		s = "PSOCONTROL X ON"
	}
	if settle > 0 {
		s += "\n" + f.dwell(settle)
	}
	return s
}

func (f formatter) header(title string) string {
	if title == "" {
		return header
	}
	return "; " + title + "\n" + header
}
