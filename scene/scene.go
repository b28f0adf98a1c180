package scene

import (
	"math"

	"glint/aabox"
	"glint/contact"
	"glint/geometry"
	"glint/material"
	"glint/ray"
	"glint/vmath/vec3"
)

// Object pairs a primitive with its surface envelope.  Objects are built once
// before rendering and only read afterwards.
type Object struct {
	TheGeometry geometry.Geometry
	Color       vec3.T
	Reflective  bool
}

type Scene struct {
	Objects []*Object

	Light   material.Light
	Ambient material.Ambient
	Phong   material.Phong

	// Background replaces NoHit() when a frame is rendered.
	Background vec3.T
}

// AddObject is a convenience function to register an object and get its
// index.
func (s *Scene) AddObject(o *Object) int {
	s.Objects = append(s.Objects, o)
	return len(s.Objects) - 1
}

// intersectObject runs o's primitive test and picks the root a ray actually
// sees: the far one when the ray starts inside the shape.
func intersectObject(o *Object, r ray.Ray) (geometry.Root, bool) {
	if b, ok := o.TheGeometry.(geometry.Bounded); ok {
		if _, hit := aabox.RayTest(r, b.Bounds()); !hit {
			return geometry.Root{}, false
		}
	}

	c, ok := o.TheGeometry.Intersect(r)
	if !ok {
		return geometry.Root{}, false
	}

	root := c.Near
	if root.T < 0 {
		root = c.Far
	}
	if root.T < 0 {
		return geometry.Root{}, false
	}
	return root, true
}

// FindNearest returns the closest surface along r among objects.
//
// The reported normal always faces the side the ray arrived from.
func FindNearest(r ray.Ray, objects []*Object) (contact.Contact, bool) {
	minT := math.Inf(1)
	minIndex := -1
	var minRoot geometry.Root

	for i, o := range objects {
		root, ok := intersectObject(o, r)
		if !ok {
			continue
		}
		if root.T < minT {
			minT = root.T
			minIndex = i
			minRoot = root
		}
	}

	if minIndex == -1 {
		return contact.Contact{}, false
	}

	return contact.Contact{
		T:      minT,
		R:      r,
		P:      r.Eval(minT),
		N:      contact.FaceForward(minRoot.N, r.Slope),
		Object: minIndex,
	}, true
}

// InShadow reports whether any object other than objects[exclude] intersects
// the ray from p toward the light.
//
// Occluders beyond the light also count.
func InShadow(p vec3.T, light material.Light, objects []*Object, exclude int) bool {
	shadowRay := ray.Toward(p, light.Position)
	for i, o := range objects {
		if i == exclude {
			continue
		}
		if _, ok := intersectObject(o, shadowRay); ok {
			return true
		}
	}
	return false
}
