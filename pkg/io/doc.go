// Package io reads job files and writes compiled programs.
//
// # Job Format
//
// A job is a TOML document describing the program configuration and every
// object of one cell:
//
//	[program]
//	filename = "chip"
//	lab = "CAPABLE"
//	sample_size = [25, 25]
//	new_origin = [0.5, 0.5]
//	angle = 0.0
//	warp = false
//
//	[[bunch]]
//	name = "arms"
//	kind = "waveguide"
//	scan = 2
//
//	[[waveguide]]
//	bunch = "arms"
//	start = [-2, 0.08, 0.035]
//	speed = 20
//
//	  [[waveguide.move]]
//	  kind = "linear"
//	  increment = [5, 0, 0]
//
//	  [[waveguide.move]]
//	  kind = "sin_mzi"
//	  dy = 0.08
//	  arm = 2
//
//	[[marker]]
//	position = [1, 1]
//
//	[[trench_column]]
//	x_center = 3
//	y_min = 0
//	y_max = 1
//
// Move kinds are linear (increment), circ_bend (dy), sin_bend (dy),
// sin_mzi (dy, arm) and spline_bridge (dy, dz). Every waveguide is started
// at start and ended after its last move.
//
// Bunches group objects of one kind and may name a parent bunch. A bunch
// appears in the writing order where its first object appears. Trench
// columns are cut between all waveguides of the job. Unknown keys are
// reported as a CONFIGURATION_ERROR.
//
// # Export
//
// [ExportPrograms] writes every compiled program into a directory. Files are
// staged under temporary names and renamed only once all of them were
// written, so a failed write leaves no truncated program behind.
package io
