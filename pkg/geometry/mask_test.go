package geometry

import (
	"testing"

	"github.com/matzehuels/femtopgm/pkg/errors"
)

func samplePoints() []Point {
	return []Point{
		{X: 0, Y: 0, Z: 0.1, S: ShutterClosed},
		{X: 1, Y: 0.5, Z: 0.1, S: ShutterOpen},
		{X: 2, Y: 1.0, Z: 0.2, S: ShutterOpen},
		{X: 3, Y: 1.5, Z: 0.2, S: ShutterClosed},
	}
}

func TestMask(t *testing.T) {
	for _, state := range []int{0, 1} {
		pts := samplePoints()
		masked, err := Mask(pts, state)
		if err != nil {
			t.Fatalf("Mask(%d) error = %v", state, err)
		}
		if len(masked) != len(pts) {
			t.Fatalf("len = %d, want %d", len(masked), len(pts))
		}
		for i, p := range pts {
			m := masked[i]
			if m.X != p.X {
				t.Errorf("state %d point %d: X = %v, want %v", state, i, m.X, p.X)
			}
			if int(p.S) == state {
				if m.Y != p.Y || m.Z != p.Z {
					t.Errorf("state %d point %d: kept sample changed: %+v", state, i, m)
				}
				continue
			}
			if !IsNoDraw(m.Y) || !IsNoDraw(m.Z) {
				t.Errorf("state %d point %d: want NoDraw, got (%v, %v)", state, i, m.Y, m.Z)
			}
		}
	}
}

func TestMaskRejectsInvalidState(t *testing.T) {
	for _, state := range []int{-1, 2, 10} {
		_, err := Mask(samplePoints(), state)
		if !errors.Is(err, errors.ErrCodeInvalidArgument) {
			t.Errorf("Mask(%d) error = %v, want INVALID_ARGUMENT", state, err)
		}
	}
}

func TestTransitions(t *testing.T) {
	got := Transitions(samplePoints())
	want := []int{1, 3}
	if len(got) != len(want) {
		t.Fatalf("Transitions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Transitions() = %v, want %v", got, want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	p := Point{X: 1, Y: 2, Z: 3, F: 20, S: ShutterOpen}
	q := p
	q.S = ShutterClosed

	got := Coalesce([]Point{p, p, p, q, q, p})
	if len(got) != 3 {
		t.Fatalf("Coalesce() len = %d, want 3: %+v", len(got), got)
	}
	if got[0] != p || got[1] != q || got[2] != p {
		t.Errorf("Coalesce() = %+v", got)
	}
	if Coalesce(nil) != nil {
		t.Error("Coalesce(nil) should be nil")
	}
}
