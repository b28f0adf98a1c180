package scene

import (
	"glint/contact"
	"glint/material"
	"glint/ray"
	"glint/vmath/vec3"
)

// NoHit is the colour Trace returns when the ray escapes the scene.  No real
// colour has a negative channel.
func NoHit() vec3.T {
	return vec3.T{-1, 0, 0}
}

func IsNoHit(c vec3.T) bool {
	return c[0] < 0
}

const (
	// Weights of the local and mirrored colours on reflective surfaces.
	LocalWeight     = 0.7
	ReflectedWeight = 0.3

	// ReflectionBias lifts a reflected ray off its surface so that it does not
	// immediately re-hit a flat face at t=0.
	ReflectionBias = 1e-6
)

// Trace is the renderer entry point for one ray.  The ray origin doubles as
// the Phong view point.
//
// depth counts mirror bounces already taken; recursion stops once it reaches
// maxDepth, so maxDepth == 0 never recurses.
func Trace(origin, direction vec3.T, s *Scene, depth, maxDepth int) vec3.T {
	return s.traceRay(ray.Ray{Point: origin, Slope: direction}, depth, maxDepth)
}

func (s *Scene) traceRay(r ray.Ray, depth, maxDepth int) vec3.T {
	hit, ok := FindNearest(r, s.Objects)
	if !ok {
		return NoHit()
	}

	obj := s.Objects[hit.Object]
	local := s.shadeContact(hit)

	if !obj.Reflective || depth >= maxDepth {
		return local
	}

	mirrored := ray.Ray{
		Point: vec3.AddVV(hit.P, vec3.MulVS(hit.N, ReflectionBias)),
		Slope: vec3.Reflect(r.Slope, hit.N),
	}
	reflected := s.traceRay(mirrored, depth+1, maxDepth)
	if IsNoHit(reflected) {
		return local
	}

	return Blend(local, reflected)
}

// Blend mixes the local colour of a reflective surface with what it mirrors,
// then dims the mix by the local colour's brightness.
func Blend(local, reflected vec3.T) vec3.T {
	mixed := vec3.AddVV(vec3.MulVS(local, LocalWeight), vec3.MulVS(reflected, ReflectedWeight))
	return vec3.MulVS(mixed, material.Brightness(local))
}

func (s *Scene) shadeContact(hit contact.Contact) vec3.T {
	obj := s.Objects[hit.Object]
	return s.Phong.Shade(s.Light, s.Ambient, material.Sample{
		ViewOrigin: hit.R.Point,
		Point:      hit.P,
		Normal:     hit.N,
		Color:      obj.Color,
		Shadowed:   InShadow(hit.P, s.Light, s.Objects, hit.Object),
	})
}
