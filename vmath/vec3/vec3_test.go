package vec3

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-12)

func TestArithmetic(t *testing.T) {
	a := T{1, 2, 3}
	b := T{4, -5, 6}

	testCases := []struct {
		name string
		got  T
		want T
	}{
		{"AddVV", AddVV(a, b), T{5, -3, 9}},
		{"SubVV", SubVV(a, b), T{-3, 7, -3}},
		{"MulVS", MulVS(a, -2), T{-2, -4, -6}},
		{"MulVV", MulVV(a, b), T{4, -10, 18}},
		{"Neg", Neg(b), T{-4, 5, -6}},
		{"CProd", CProd(T{1, 0, 0}, T{0, 1, 0}), T{0, 0, 1}},
	}

	for _, tc := range testCases {
		if diff := cmp.Diff(tc.got, tc.want, approx); diff != "" {
			t.Errorf("%s: bad result; diff (-got +want)\n%s", tc.name, diff)
		}
	}

	if got, want := IProd(a, b), 12.0; got != want {
		t.Errorf("IProd: got %v, want %v", got, want)
	}
	if got, want := (T{3, 4, 0}).Norm(), 5.0; got != want {
		t.Errorf("Norm: got %v, want %v", got, want)
	}
}

func TestCProdIsPerpendicular(t *testing.T) {
	vecs := []T{
		{1, 2, 3},
		{-4, 0.5, 9},
		{0.1, -0.2, 0.3},
		{7, 7, -7},
	}
	for _, a := range vecs {
		for _, b := range vecs {
			c := CProd(a, b)
			if math.Abs(IProd(c, a)) > 1e-9 || math.Abs(IProd(c, b)) > 1e-9 {
				t.Errorf("CProd(%v, %v) = %v is not perpendicular to both inputs", a, b, c)
			}
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, v := range []T{{1, 2, 3}, {-0.001, 0, 0}, {1e6, -1e6, 3}, {0, 0, -7}} {
		once := Normalize(v)
		twice := Normalize(once)
		if diff := cmp.Diff(twice, once, approx); diff != "" {
			t.Errorf("Normalize(%v) not idempotent; diff (-twice +once)\n%s", v, diff)
		}
		if got := once.Norm(); math.Abs(got-1) > 1e-12 {
			t.Errorf("Normalize(%v) has length %v, want 1", v, got)
		}
	}
}

func TestReflectLaw(t *testing.T) {
	n := Normalize(T{0, 1, 1})
	for _, d := range []T{{1, -1, 0}, {0, -2, -0.5}, {3, 0.2, -1}} {
		r := Reflect(d, n)
		if math.Abs(IProd(d, n)+IProd(r, n)) > 1e-12 {
			t.Errorf("Reflect(%v): normal component not mirrored; d.n=%v r.n=%v", d, IProd(d, n), IProd(r, n))
		}
		if math.Abs(d.Norm()-r.Norm()) > 1e-12 {
			t.Errorf("Reflect(%v): length changed; got %v, want %v", d, r.Norm(), d.Norm())
		}
	}
}

func TestReject(t *testing.T) {
	got := Reject(T{0, 0, 2}, T{1, 1, 1})
	if diff := cmp.Diff(got, T{1, 1, 0}, approx); diff != "" {
		t.Errorf("Bad rejection; diff (-got +want)\n%s", diff)
	}
}
