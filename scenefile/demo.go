package scenefile

// demoScene is rendered when no scene file is given.
const demoScene = `
coefficients: {ka: 0.2, kd: 0.7, ks: 0.5, eta: 20, os: 1}
light: {position: [5, 10, 10], color: [1, 1, 1]}
ambient: {color: [0.3, 0.3, 0.3]}
background: [0.05, 0.05, 0.1]
camera: {center: [0, 2, 12], eye: [0, -0.15, -1], up: [0, 1, 0], fov: 60}
max_reflections: 5
objects:
- sphere: {center: [-2.5, 0, 0], radius: 2}
  color: [1, 0, 0]
  reflective: true
- sphere: {center: [2.5, 0, -2], radius: 2}
  color: [0, 0, 1]
- plane: {point: [0, -2, 0], normal: [0, 1, 0]}
  color: [0.8, 0.8, 0.8]
  reflective: true
- pyramid: {vertices: [[4, -2, 3], [6, -2, 3], [5, -2, 1], [5, 0.5, 2]]}
  color: [1, 0.8, 0]
- cube: {center: [-5, -1, 3], side: 2}
  color: [0, 0.8, 0.2]
`

// Demo returns the built-in scene along with the bytes it was parsed from.
func Demo() (*Description, []byte, error) {
	desc, err := Parse([]byte(demoScene))
	if err != nil {
		return nil, nil, err
	}
	return desc, []byte(demoScene), nil
}
