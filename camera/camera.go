package camera

import (
	"math"

	"glint/ray"
	"glint/vmath/mat33"
	"glint/vmath/vec3"
)

type Camera interface {
	ImageToRay(curRow, imgRows, curCol, imgCols int) ray.Ray
}

// PinholeCamera shoots every ray from Center through the pixel center on an
// image plane one unit along Eye.
type PinholeCamera struct {
	Center vec3.T

	// Columns are the eye, left and up directions.
	ApertureToWorld mat33.T

	// Scale of the image plane along eye, left and up.  The first component
	// is the focal distance.
	Aperture vec3.T
}

// NewPinholeCamera builds an orthonormal eye/left/up basis.  up only needs to
// be non-parallel to eye.
func NewPinholeCamera(center, eye, up, aperture vec3.T) *PinholeCamera {
	e := vec3.Normalize(eye)
	u := vec3.Normalize(vec3.Reject(e, up))
	l := vec3.CProd(u, e)
	return &PinholeCamera{
		Center:          center,
		ApertureToWorld: mat33.FromColumns(e, l, u),
		Aperture:        aperture,
	}
}

// ApertureForFOV sizes the image plane for a vertical field of view (in
// degrees) and the frame's aspect ratio.
func ApertureForFOV(fovY float64, imgRows, imgCols int) vec3.T {
	half := math.Tan(fovY * math.Pi / 360)
	return vec3.T{
		1.0,
		half * float64(imgCols) / float64(imgRows),
		half,
	}
}

func (c *PinholeCamera) ImageToRay(curRow, imgRows, curCol, imgCols int) ray.Ray {
	imageCoords := vec3.T{
		1.0,
		1.0 - 2.0*(float64(curCol)+0.5)/float64(imgCols),
		1.0 - 2.0*(float64(curRow)+0.5)/float64(imgRows),
	}

	return ray.Ray{
		Point: c.Center,
		Slope: vec3.Normalize(mat33.MulMV(c.ApertureToWorld, vec3.MulVV(imageCoords, c.Aperture))),
	}
}

func (c *PinholeCamera) Eye() vec3.T {
	return mat33.Column(c.ApertureToWorld, 0)
}

func (c *PinholeCamera) Left() vec3.T {
	return mat33.Column(c.ApertureToWorld, 1)
}

func (c *PinholeCamera) Up() vec3.T {
	return mat33.Column(c.ApertureToWorld, 2)
}
