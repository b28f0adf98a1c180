package aabox

import (
	"math"
	"testing"

	"glint/ray"
	"glint/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func unitBox() AABox {
	return AABox{
		X: ray.Span{Lo: -1, Hi: 1},
		Y: ray.Span{Lo: -1, Hi: 1},
		Z: ray.Span{Lo: -1, Hi: 1},
	}
}

func TestGrowToPoint(t *testing.T) {
	got := AccumZeroAABox()
	if got.IsFinite() {
		t.Errorf("Empty accumulator reported finite")
	}

	for _, p := range []vec3.T{{1, -2, 3}, {-1, 4, 0}, {0, 0, -5}} {
		got = GrowToPoint(got, p)
	}

	want := AABox{
		X: ray.Span{Lo: -1, Hi: 1},
		Y: ray.Span{Lo: -2, Hi: 4},
		Z: ray.Span{Lo: -5, Hi: 3},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad box; diff (-got +want)\n%s", diff)
	}
	if !got.IsFinite() {
		t.Errorf("Grown box reported infinite")
	}
}

func TestRayTest(t *testing.T) {
	testCases := []struct {
		name     string
		r        ray.Ray
		wantHit  bool
		wantSpan ray.Span
	}{
		{
			name:     "straight through",
			r:        ray.Ray{Point: vec3.T{0, 0, 5}, Slope: vec3.T{0, 0, -1}},
			wantHit:  true,
			wantSpan: ray.Span{Lo: 4, Hi: 6},
		},
		{
			name:     "from inside",
			r:        ray.Ray{Point: vec3.T{0, 0, 0}, Slope: vec3.T{1, 0, 0}},
			wantHit:  true,
			wantSpan: ray.Span{Lo: 0, Hi: 1},
		},
		{
			name:    "pointing away",
			r:       ray.Ray{Point: vec3.T{0, 0, 5}, Slope: vec3.T{0, 0, 1}},
			wantHit: false,
		},
		{
			name:    "parallel outside slab",
			r:       ray.Ray{Point: vec3.T{0, 2, 5}, Slope: vec3.T{0, 0, -1}},
			wantHit: false,
		},
		{
			name:     "grazing face",
			r:        ray.Ray{Point: vec3.T{1, 0, 5}, Slope: vec3.T{0, 0, -1}},
			wantHit:  true,
			wantSpan: ray.Span{Lo: 4, Hi: 6},
		},
		{
			name:    "diagonal miss",
			r:       ray.Ray{Point: vec3.T{3, 0, 3}, Slope: vec3.Normalize(vec3.T{-1, 0, 1})},
			wantHit: false,
		},
		{
			name:     "diagonal through corner region",
			r:        ray.Ray{Point: vec3.T{-3, -3, 0}, Slope: vec3.Normalize(vec3.T{1, 1, 0})},
			wantHit:  true,
			wantSpan: ray.Span{Lo: 2 * math.Sqrt2, Hi: 4 * math.Sqrt2},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, hit := RayTest(tc.r, unitBox())
			if hit != tc.wantHit {
				t.Fatalf("Got hit=%v, want %v", hit, tc.wantHit)
			}
			if !hit {
				return
			}
			if diff := cmp.Diff(got, tc.wantSpan, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("Bad span; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestPad(t *testing.T) {
	flat := AABox{
		X: ray.Span{Lo: -1, Hi: 1},
		Y: ray.Span{Lo: 0, Hi: 0},
		Z: ray.Span{Lo: -1, Hi: 1},
	}

	// A ray skimming along a zero-thickness box only enters it once padded.
	r := ray.Ray{Point: vec3.T{-5, 1e-9, 0}, Slope: vec3.T{1, 0, 0}}
	if _, hit := RayTest(r, flat); hit {
		t.Errorf("Unpadded flat box was hit")
	}
	if _, hit := RayTest(r, Pad(flat, 1e-6)); !hit {
		t.Errorf("Padded flat box was missed")
	}
}
