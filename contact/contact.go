package contact

import (
	"glint/ray"
	"glint/vmath/vec3"
)

// Contact is the hit record for one ray against the scene.  It only lives for
// the duration of a single trace step.
type Contact struct {
	// Distance along R at which the surface was crossed.
	T float64
	R ray.Ray
	P vec3.T

	// Unit surface normal, oriented against R.Slope.
	N vec3.T

	// Index of the owning object in the scene's object list.
	Object int
}

// FaceForward flips n so that it opposes the incoming direction d.
func FaceForward(n, d vec3.T) vec3.T {
	if vec3.IProd(d, n) > 0 {
		return vec3.Neg(n)
	}
	return n
}
