package pgm

// Kind is the instruction opcode.
type Kind uint8

const (
	KindHeader Kind = iota
	KindDwell
	KindShutterOn
	KindShutterOff
	KindMove
	KindRepeatBegin
	KindRepeatEnd
	KindHome
)

var kindNames = [...]string{
	KindHeader:      "HEADER",
	KindDwell:       "DWELL",
	KindShutterOn:   "SHUTTER_ON",
	KindShutterOff:  "SHUTTER_OFF",
	KindMove:        "MOVE",
	KindRepeatBegin: "REPEAT_BEGIN",
	KindRepeatEnd:   "REPEAT_END",
	KindHome:        "HOME",
}

// String returns the opcode name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// Instruction is one emitted program step with its rendered text.
type Instruction struct {
	Kind Kind

	X, Y, Z float64 // MOVE target
	F       float64 // MOVE feed rate [mm/s]
	Seconds float64 // DWELL duration, shutter settle time
	Count   int     // REPEAT_BEGIN iterations

	Line string
}

// String returns the rendered text.
func (in Instruction) String() string { return in.Line }

// Count returns how many instructions of kind k are in ins.
func Count(ins []Instruction, k Kind) int {
	n := 0
	for _, in := range ins {
		if in.Kind == k {
			n++
		}
	}
	return n
}
