// Package toolpath samples structural objects into ordered point sequences.
//
// Three object kinds are written by the tool:
//
//   - [Waveguide]: built by chaining primitive moves (Start, Linear,
//     CircBend, SinBend, SinMZI, SplineBridge, End) like a pen plotter script.
//   - [Marker]: a fixed stroke pattern (an alignment cross).
//   - [Trench]: a closed polygon written as stacked boundary passes and a
//     filled floor.
//
// A [TrenchColumn] owns the trenches cut between a set of waveguides.
//
// Every primitive appends points at a spacing of at most dl = speed /
// cmd_rate_max, the distance covered between two controller commands at
// writing speed. A zero-length move appends a single point, and consecutive
// identical points are dropped when the sequence is read back.
//
// Builders record the first error and ignore later calls; check Err before
// using the object.
package toolpath
