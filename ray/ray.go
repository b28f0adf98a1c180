package ray

import (
	"glint/vmath/vec3"
)

// Span is a closed interval of ray parameters.
type Span struct {
	Lo, Hi float64
}

// Ray is the half-line Point + t*Slope, t >= 0.
//
// Slope is expected to be normalized by whoever builds the ray; nothing in
// the intersection code renormalizes it.
type Ray struct {
	Point vec3.T
	Slope vec3.T
}

// Toward builds a ray from `from` aimed at `to`.  The two points must differ.
func Toward(from, to vec3.T) Ray {
	return Ray{
		Point: from,
		Slope: vec3.Normalize(vec3.SubVV(to, from)),
	}
}

func (r *Ray) Eval(t float64) vec3.T {
	return vec3.T{
		r.Point[0] + t*r.Slope[0],
		r.Point[1] + t*r.Slope[1],
		r.Point[2] + t*r.Slope[2],
	}
}
