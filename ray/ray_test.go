package ray

import (
	"testing"

	"glint/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestEval(t *testing.T) {
	r := Ray{Point: vec3.T{1, 2, 3}, Slope: vec3.T{0, 0, -1}}
	if diff := cmp.Diff(r.Eval(4), vec3.T{1, 2, -1}); diff != "" {
		t.Errorf("Bad point; diff (-got +want)\n%s", diff)
	}
}

func TestToward(t *testing.T) {
	r := Toward(vec3.T{0, 0, 0}, vec3.T{0, 3, 4})
	want := Ray{Point: vec3.T{0, 0, 0}, Slope: vec3.T{0, 0.6, 0.8}}
	if diff := cmp.Diff(r, want, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Bad ray; diff (-got +want)\n%s", diff)
	}
}
