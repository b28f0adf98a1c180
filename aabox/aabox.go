package aabox

import (
	"math"

	"glint/ray"
	"glint/vmath/vec3"
)

type AABox struct {
	X, Y, Z ray.Span
}

// AccumZeroAABox is the identity for MinContainingAABox and GrowToPoint.
func AccumZeroAABox() AABox {
	return AABox{
		X: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
		Y: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
		Z: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
	}
}

func minContainingSpan(a, b ray.Span) ray.Span {
	return ray.Span{Lo: math.Min(a.Lo, b.Lo), Hi: math.Max(a.Hi, b.Hi)}
}

func MinContainingAABox(a, b AABox) AABox {
	return AABox{
		X: minContainingSpan(a.X, b.X),
		Y: minContainingSpan(a.Y, b.Y),
		Z: minContainingSpan(a.Z, b.Z),
	}
}

func GrowToPoint(a AABox, p vec3.T) AABox {
	return MinContainingAABox(a, AABox{
		X: ray.Span{Lo: p[0], Hi: p[0]},
		Y: ray.Span{Lo: p[1], Hi: p[1]},
		Z: ray.Span{Lo: p[2], Hi: p[2]},
	})
}

// Pad grows every face of a outward by d.
func Pad(a AABox, d float64) AABox {
	return AABox{
		X: ray.Span{Lo: a.X.Lo - d, Hi: a.X.Hi + d},
		Y: ray.Span{Lo: a.Y.Lo - d, Hi: a.Y.Hi + d},
		Z: ray.Span{Lo: a.Z.Lo - d, Hi: a.Z.Hi + d},
	}
}

func (a AABox) IsFinite() bool {
	for _, s := range []ray.Span{a.X, a.Y, a.Z} {
		if math.IsInf(s.Lo, 0) || math.IsInf(s.Hi, 0) || math.IsNaN(s.Lo) || math.IsNaN(s.Hi) {
			return false
		}
	}
	return true
}

func (a AABox) axis(i int) ray.Span {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

// RayTest clips the ray's t >= 0 half against each slab of b.  It returns the
// covered parameter span, or false if the ray never enters the box.
func RayTest(r ray.Ray, b AABox) (ray.Span, bool) {
	cover := ray.Span{Lo: 0, Hi: math.Inf(1)}

	for i := 0; i < 3; i++ {
		slab := b.axis(i)
		p, s := r.Point[i], r.Slope[i]

		if s == 0 {
			if p < slab.Lo || p > slab.Hi {
				return ray.Span{}, false
			}
			continue
		}

		lo := (slab.Lo - p) / s
		hi := (slab.Hi - p) / s
		if hi < lo {
			lo, hi = hi, lo
		}

		if lo > cover.Lo {
			cover.Lo = lo
		}
		if hi < cover.Hi {
			cover.Hi = hi
		}
		if cover.Hi < cover.Lo {
			return ray.Span{}, false
		}
	}

	return cover, true
}
