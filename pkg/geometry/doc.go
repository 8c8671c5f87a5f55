// Package geometry holds the point model shared by every stage of the
// compiler and the stateless coordinate transforms applied to it.
//
// A [Point] is a 5-tuple: planar position (X, Y), focus height Z, an
// attribute F (feed rate in mm/s, or zero when unused) and a [Shutter] state.
// A point's shutter is the beam state while the tool travels to that point.
//
// [Transform] maps raw object coordinates into the machine frame described
// by a [Frame]: the origin is subtracted first, the result is rotated about
// (0, 0), and the warp compensation is added to Z. The order is fixed;
// rotating before translating moves the logical origin.
//
// [Mask] splits a point sequence into beam-on and beam-off traces for
// diagnostics. Samples of the other state keep X and get [NoDraw] for Y and Z.
package geometry
