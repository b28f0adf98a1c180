package geometry

import (
	"math"

	"glint/aabox"
	"glint/ray"
	"glint/vmath/vec3"
)

// Epsilon bounds the ray/surface denominator below which a ray is considered
// parallel to a flat surface.  Such rays miss.
const Epsilon = 1e-9

// boundsPad widens reported bounds so that rounding in the exact intersection
// tests never lands a hit outside its box.  It is relative to the largest
// coordinate magnitude of the box, since rounding error grows with it.
const boundsPad = 1e-6

// Root is one surface crossing along a ray.
type Root struct {
	T float64
	N vec3.T
}

// Crossing is the result of a successful intersection test.
//
// Near.T <= Far.T always holds.  Single-sided primitives (plane, triangle)
// report the same root in both slots.
type Crossing struct {
	Near, Far Root
}

// Span returns the parameter interval covered by the crossing.
func (c Crossing) Span() ray.Span {
	return ray.Span{Lo: c.Near.T, Hi: c.Far.T}
}

func single(r Root) Crossing {
	return Crossing{Near: r, Far: r}
}

type Geometry interface {
	// Intersect tests the ray against the surface.  The bool is false on a
	// miss, in which case the Crossing is meaningless.
	Intersect(r ray.Ray) (Crossing, bool)
}

// Bounded is implemented by finite primitives.  Any ray that hits the
// primitive at t >= 0 enters its Bounds.
type Bounded interface {
	Bounds() aabox.AABox
}

func boundsOf(points ...vec3.T) aabox.AABox {
	b := aabox.AccumZeroAABox()
	for _, p := range points {
		b = aabox.GrowToPoint(b, p)
	}

	scale := 1.0
	for _, v := range []float64{b.X.Lo, b.X.Hi, b.Y.Lo, b.Y.Hi, b.Z.Lo, b.Z.Hi} {
		scale = math.Max(scale, math.Abs(v))
	}
	return aabox.Pad(b, boundsPad*scale)
}

// Sphere is solved with the geometric (projection) method.
//
// A ray whose origin is inside the sphere and that points away from the
// center is reported as a miss.
type Sphere struct {
	Center vec3.T
	Radius float64
}

func (s *Sphere) Intersect(r ray.Ray) (Crossing, bool) {
	toCenter := vec3.SubVV(s.Center, r.Point)

	proj := vec3.IProd(toCenter, r.Slope)
	if proj < 0 {
		return Crossing{}, false
	}

	radius2 := s.Radius * s.Radius
	perp2 := vec3.IProd(toCenter, toCenter) - proj*proj
	if perp2 > radius2 {
		return Crossing{}, false
	}

	halfChord := math.Sqrt(radius2 - perp2)
	tNear := proj - halfChord
	tFar := proj + halfChord

	return Crossing{
		Near: Root{T: tNear, N: s.normalAlong(r, tNear)},
		Far:  Root{T: tFar, N: s.normalAlong(r, tFar)},
	}, true
}

func (s *Sphere) Bounds() aabox.AABox {
	r := vec3.T{s.Radius, s.Radius, s.Radius}
	return boundsOf(vec3.SubVV(s.Center, r), vec3.AddVV(s.Center, r))
}

// NormalAt is the outward unit normal at p.
func (s *Sphere) NormalAt(p vec3.T) vec3.T {
	return vec3.Normalize(vec3.SubVV(p, s.Center))
}

// normalAlong is the normal at r.Eval(t), flipped when the ray is leaving the
// sphere from inside.
func (s *Sphere) normalAlong(r ray.Ray, t float64) vec3.T {
	n := s.NormalAt(r.Eval(t))
	if vec3.IProd(r.Slope, n) > 0 {
		return vec3.Neg(n)
	}
	return n
}

// Plane is an infinite plane through Point.  Normal need not be unit length.
type Plane struct {
	Point  vec3.T
	Normal vec3.T
}

func (p *Plane) Intersect(r ray.Ray) (Crossing, bool) {
	n := vec3.Normalize(p.Normal)
	t, ok := planeDistance(r, p.Point, n)
	if !ok {
		return Crossing{}, false
	}
	return single(Root{T: t, N: n}), true
}

// planeDistance solves for the parameter at which r meets the plane through
// p0 with unit normal n.
func planeDistance(r ray.Ray, p0, n vec3.T) (float64, bool) {
	denom := vec3.IProd(n, r.Slope)
	if math.Abs(denom) < Epsilon {
		return 0, false
	}

	t := vec3.IProd(vec3.SubVV(p0, r.Point), n) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Triangle is a transient face used to decompose polyhedra.  Vertex winding
// only affects the sign of the reported normal.
type Triangle struct {
	V0, V1, V2 vec3.T
}

func (tr *Triangle) Normal() vec3.T {
	return vec3.Normalize(vec3.CProd(vec3.SubVV(tr.V1, tr.V0), vec3.SubVV(tr.V2, tr.V0)))
}

func (tr *Triangle) Bounds() aabox.AABox {
	return boundsOf(tr.V0, tr.V1, tr.V2)
}

func (tr *Triangle) Intersect(r ray.Ray) (Crossing, bool) {
	n := tr.Normal()

	t, ok := planeDistance(r, tr.V0, n)
	if !ok {
		return Crossing{}, false
	}

	p := r.Eval(t)

	// Same-side test: p must be on the inner side of every edge.
	edges := [3][2]vec3.T{
		{tr.V0, tr.V1},
		{tr.V1, tr.V2},
		{tr.V2, tr.V0},
	}
	for _, e := range edges {
		edge := vec3.SubVV(e[1], e[0])
		toP := vec3.SubVV(p, e[0])
		if vec3.IProd(vec3.CProd(edge, toP), n) < 0 {
			return Crossing{}, false
		}
	}

	return single(Root{T: t, N: n}), true
}

// Pyramid is a tetrahedron: base triangle V[0], V[1], V[2] plus apex V[3].
type Pyramid struct {
	V [4]vec3.T
}

func NewPyramid(base0, base1, base2, apex vec3.T) *Pyramid {
	return &Pyramid{V: [4]vec3.T{base0, base1, base2, apex}}
}

func (py *Pyramid) Faces() [4]Triangle {
	v := py.V
	return [4]Triangle{
		{v[0], v[1], v[2]},
		{v[0], v[1], v[3]},
		{v[1], v[2], v[3]},
		{v[2], v[0], v[3]},
	}
}

func (py *Pyramid) Bounds() aabox.AABox {
	return boundsOf(py.V[:]...)
}

// Intersect only reports a hit once two faces have been crossed; a line
// through a convex solid crosses its surface exactly twice.
func (py *Pyramid) Intersect(r ray.Ray) (Crossing, bool) {
	var acc nearestTwo
	faces := py.Faces()
	for i := range faces {
		if c, ok := faces[i].Intersect(r); ok {
			acc.add(c.Near)
		}
	}

	if acc.count < 2 {
		return Crossing{}, false
	}
	return Crossing{Near: acc.near, Far: acc.far}, true
}

// Cube vertex ordering.  Index = 4*bottom + 2*back + right, where top is +Y,
// right is +X and front is +Z.
const (
	TopLeftFront = iota
	TopRightFront
	TopLeftBack
	TopRightBack
	BottomLeftFront
	BottomRightFront
	BottomLeftBack
	BottomRightBack
)

// cubeQuads lists each face as a perimeter walk over the vertex ordering.
var cubeQuads = [6][4]int{
	{TopLeftFront, TopRightFront, TopRightBack, TopLeftBack},
	{BottomLeftFront, BottomLeftBack, BottomRightBack, BottomRightFront},
	{TopLeftFront, BottomLeftFront, BottomRightFront, TopRightFront},
	{TopLeftBack, TopRightBack, BottomRightBack, BottomLeftBack},
	{TopLeftFront, TopLeftBack, BottomLeftBack, BottomLeftFront},
	{TopRightFront, BottomRightFront, BottomRightBack, TopRightBack},
}

// Cube is a hexahedron given by eight vertices in the order above.  The
// vertices are not required to form an axis-aligned or even a true cube.
type Cube struct {
	V [8]vec3.T
}

// AxisCube builds an axis-aligned cube of edge length side.
func AxisCube(center vec3.T, side float64) *Cube {
	h := side / 2
	c := &Cube{}
	for i := range c.V {
		x, y, z := -h, h, h
		if i&1 != 0 {
			x = h
		}
		if i&2 != 0 {
			z = -h
		}
		if i&4 != 0 {
			y = -h
		}
		c.V[i] = vec3.AddVV(center, vec3.T{x, y, z})
	}
	return c
}

// Faces splits each quad into two triangles sharing the quad's first vertex.
func (cu *Cube) Faces() [12]Triangle {
	var faces [12]Triangle
	for i, q := range cubeQuads {
		a, b, c, d := cu.V[q[0]], cu.V[q[1]], cu.V[q[2]], cu.V[q[3]]
		faces[2*i] = Triangle{a, b, c}
		faces[2*i+1] = Triangle{a, c, d}
	}
	return faces
}

func (cu *Cube) Bounds() aabox.AABox {
	return boundsOf(cu.V[:]...)
}

// Intersect reports a hit as soon as any face is crossed.  When only one face
// is crossed, the far root repeats the near one.
func (cu *Cube) Intersect(r ray.Ray) (Crossing, bool) {
	var acc nearestTwo
	faces := cu.Faces()
	for i := range faces {
		if c, ok := faces[i].Intersect(r); ok {
			acc.add(c.Near)
		}
	}

	switch acc.count {
	case 0:
		return Crossing{}, false
	case 1:
		return single(acc.near), true
	}
	return Crossing{Near: acc.near, Far: acc.far}, true
}

// nearestTwo keeps the two smallest roots seen so far.
type nearestTwo struct {
	near, far Root
	count     int
}

func (n *nearestTwo) add(r Root) {
	switch {
	case n.count == 0:
		n.near = r
	case r.T < n.near.T:
		n.far = n.near
		n.near = r
	case n.count == 1 || r.T < n.far.T:
		n.far = r
	}
	n.count++
}
