// Package pgm emits numeric-control programs for the laser writer.
//
// A [Builder] turns transformed point sequences into an ordered list of
// [Instruction] values and renders them as Aerotech-style PGM text:
//
//	LINEAR X1.000000 Y0.000000 Z0.035000 F20.000000
//	PSOCONTROL X ON
//	REPEAT 3
//	ENDREPEAT
//	DWELL 0.500000
//	HOME X Y Z
//
// Shutter state is tracked across calls. A change of state emits a shutter
// instruction followed by the move to the point; a move to the current
// position is never emitted. Repeat blocks close the shutter on entry and
// exit so every pass starts from the same state.
//
// An optional [Observer] sees every instruction as it is appended; the
// fabrication-time accountant hooks in this way.
package pgm
