package material

import (
	"math"

	"glint/vmath/vec3"
)

// Phong holds the scene-wide illumination coefficients.
type Phong struct {
	// Ambient, diffuse and specular reflection coefficients.
	Ka, Kd, Ks float64

	// Specular exponent.
	Eta float64

	// Specular scale applied on top of Ks.
	Os float64
}

func DefaultPhong() Phong {
	return Phong{
		Ka:  0.2,
		Kd:  0.7,
		Ks:  0.5,
		Eta: 20,
		Os:  1,
	}
}

type Light struct {
	Position vec3.T
	Color    vec3.T
}

type Ambient struct {
	Color vec3.T
}

// Sample is everything Shade needs to know about one surface point.
type Sample struct {
	// Where the viewing ray came from.
	ViewOrigin vec3.T

	Point  vec3.T
	Normal vec3.T
	Color  vec3.T

	// Shadowed zeroes the point light's diffuse and specular terms.
	Shadowed bool
}

// Shade evaluates ambient + diffuse + specular at s.  The result is not
// clamped.
func (m Phong) Shade(light Light, ambient Ambient, s Sample) vec3.T {
	intensity := vec3.MulVS(ambient.Color, m.Ka)

	if !s.Shadowed {
		toView := vec3.Normalize(vec3.SubVV(s.ViewOrigin, s.Point))
		toLight := vec3.Normalize(vec3.SubVV(light.Position, s.Point))

		lambert := vec3.IProd(s.Normal, toLight)
		mirrored := vec3.Normalize(vec3.SubVV(vec3.MulVS(s.Normal, 2*lambert), toLight))

		diffuse := m.Kd * math.Max(0, lambert)
		specular := m.Ks * m.Os * math.Pow(math.Max(0, vec3.IProd(mirrored, toView)), m.Eta)

		intensity = vec3.AddVV(intensity, vec3.MulVS(light.Color, diffuse+specular))
	}

	return vec3.MulVV(s.Color, intensity)
}

// Brightness is the Rec. 601 luma of an RGB colour.
func Brightness(c vec3.T) float64 {
	return 0.299*c[0] + 0.587*c[1] + 0.114*c[2]
}
