// Package mat33 is the row-major 3x3 matrix used for camera bases.
package mat33

import (
	"glint/vmath/vec3"
)

type T [9]float64

func Identity() T {
	return T{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// FromColumns builds the matrix whose columns are a, b, and c.
func FromColumns(a, b, c vec3.T) T {
	return T{
		a[0], b[0], c[0],
		a[1], b[1], c[1],
		a[2], b[2], c[2],
	}
}

func Column(m T, i int) vec3.T {
	return vec3.T{m[i], m[3+i], m[6+i]}
}

func MulMV(a T, b vec3.T) vec3.T {
	return vec3.T{
		a[0]*b[0] + a[1]*b[1] + a[2]*b[2],
		a[3]*b[0] + a[4]*b[1] + a[5]*b[2],
		a[6]*b[0] + a[7]*b[1] + a[8]*b[2],
	}
}
