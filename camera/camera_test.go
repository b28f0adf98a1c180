package camera

import (
	"math"
	"testing"

	"glint/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-12)

func TestBasis(t *testing.T) {
	c := NewPinholeCamera(vec3.T{0, 0, 5}, vec3.T{0, 0, -3}, vec3.T{0, 2, 1}, vec3.T{1, 1, 1})

	want := []vec3.T{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}}
	got := []vec3.T{c.Eye(), c.Left(), c.Up()}
	if diff := cmp.Diff(got, want, approx); diff != "" {
		t.Errorf("Bad eye/left/up basis; diff (-got +want)\n%s", diff)
	}
}

func TestImageToRay(t *testing.T) {
	c := NewPinholeCamera(vec3.T{0, 0, 5}, vec3.T{0, 0, -1}, vec3.T{0, 1, 0}, vec3.T{1, 1, 1})

	// The center of an odd-sized image looks straight down the eye.
	r := c.ImageToRay(1, 3, 1, 3)
	if diff := cmp.Diff(r.Point, vec3.T{0, 0, 5}); diff != "" {
		t.Errorf("Bad origin; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(r.Slope, vec3.T{0, 0, -1}, approx); diff != "" {
		t.Errorf("Bad center slope; diff (-got +want)\n%s", diff)
	}

	// Top-left pixel leans left (-x) and up (+y).
	tl := c.ImageToRay(0, 2, 0, 2)
	want := vec3.Normalize(vec3.T{-0.5, 0.5, -1})
	if diff := cmp.Diff(tl.Slope, want, approx); diff != "" {
		t.Errorf("Bad top-left slope; diff (-got +want)\n%s", diff)
	}

	for row := 0; row < 4; row++ {
		for col := 0; col < 6; col++ {
			if n := c.ImageToRay(row, 4, col, 6).Slope.Norm(); math.Abs(n-1) > 1e-12 {
				t.Errorf("Slope for (%d, %d) has length %v, want 1", row, col, n)
			}
		}
	}
}

func TestApertureForFOV(t *testing.T) {
	a := ApertureForFOV(90, 100, 200)
	if diff := cmp.Diff(a, vec3.T{1, 2, 1}, approx); diff != "" {
		t.Errorf("Bad aperture; diff (-got +want)\n%s", diff)
	}
}
