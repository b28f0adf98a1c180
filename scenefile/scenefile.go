// Package scenefile loads scene descriptions written in YAML.
//
// A scene file looks like:
//
//	coefficients: {ka: 0.2, kd: 0.7, ks: 0.5, eta: 20, os: 1}
//	light: {position: [0, 10, 10], color: [1, 1, 1]}
//	ambient: {color: [0.3, 0.3, 0.3]}
//	background: [0, 0, 0]
//	camera: {center: [0, 0, 5], eye: [0, 0, -1], up: [0, 1, 0], fov: 60}
//	max_reflections: 5
//	objects:
//	- sphere: {center: [0, 0, 0], radius: 1}
//	  color: [1, 0, 0]
//	  reflective: true
//	- plane: {point: [0, -1, 0], normal: [0, 1, 0]}
//	  color: [1, 1, 1]
//	- pyramid: {vertices: [[-1, 0, -1], [1, 0, -1], [0, 0, 1], [0, 2, 0]]}
//	  color: [0, 0, 1]
//	- cube: {center: [3, 0, 0], side: 1}
//	  color: [0, 1, 0]
//
// A cube may instead list its eight vertices (see geometry.Cube for the
// ordering).  Omitted sections take the defaults below.
package scenefile

import (
	"os"

	"glint/camera"
	"glint/geometry"
	"glint/material"
	"glint/scene"
	"glint/vmath/vec3"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

const (
	DefaultMaxReflections = 5
	DefaultFOV            = 60.0
)

type file struct {
	Coefficients   *coefficientsConfig `yaml:"coefficients"`
	Light          *lightConfig        `yaml:"light"`
	Ambient        *ambientConfig      `yaml:"ambient"`
	Background     []float64           `yaml:"background"`
	Camera         *cameraConfig       `yaml:"camera"`
	MaxReflections *int                `yaml:"max_reflections"`
	Objects        []objectConfig      `yaml:"objects"`
}

type coefficientsConfig struct {
	Ka  float64 `yaml:"ka"`
	Kd  float64 `yaml:"kd"`
	Ks  float64 `yaml:"ks"`
	Eta float64 `yaml:"eta"`
	Os  float64 `yaml:"os"`
}

type lightConfig struct {
	Position []float64 `yaml:"position"`
	Color    []float64 `yaml:"color"`
}

type ambientConfig struct {
	Color []float64 `yaml:"color"`
}

type cameraConfig struct {
	Center []float64 `yaml:"center"`
	Eye    []float64 `yaml:"eye"`
	Up     []float64 `yaml:"up"`
	FOV    float64   `yaml:"fov"`
}

type objectConfig struct {
	Sphere  *sphereConfig  `yaml:"sphere"`
	Plane   *planeConfig   `yaml:"plane"`
	Pyramid *pyramidConfig `yaml:"pyramid"`
	Cube    *cubeConfig    `yaml:"cube"`

	Color      []float64 `yaml:"color"`
	Reflective bool      `yaml:"reflective"`
}

type sphereConfig struct {
	Center []float64 `yaml:"center"`
	Radius float64   `yaml:"radius"`
}

type planeConfig struct {
	Point  []float64 `yaml:"point"`
	Normal []float64 `yaml:"normal"`
}

type pyramidConfig struct {
	Vertices [][]float64 `yaml:"vertices"`
}

type cubeConfig struct {
	Vertices [][]float64 `yaml:"vertices"`
	Center   []float64   `yaml:"center"`
	Side     float64     `yaml:"side"`
}

// CameraSetup is the camera placement from the file.  The aperture depends on
// the output size, so the camera itself is built later.
type CameraSetup struct {
	Center, Eye, Up vec3.T
	FOV             float64
}

func (c CameraSetup) Build(imgRows, imgCols int) *camera.PinholeCamera {
	return camera.NewPinholeCamera(c.Center, c.Eye, c.Up, camera.ApertureForFOV(c.FOV, imgRows, imgCols))
}

type Description struct {
	Scene          *scene.Scene
	Camera         CameraSetup
	MaxReflections int
}

func Load(fileName string) (*Description, []byte, error) {
	fileBytes, err := os.ReadFile(fileName)
	if err != nil {
		return nil, nil, xerrors.Errorf("while reading scene file: %w", err)
	}

	desc, err := Parse(fileBytes)
	if err != nil {
		return nil, nil, xerrors.Errorf("in scene file %q: %w", fileName, err)
	}
	return desc, fileBytes, nil
}

func Parse(in []byte) (*Description, error) {
	f := &file{}
	if err := yaml.UnmarshalStrict(in, f); err != nil {
		return nil, xerrors.Errorf("while unmarshaling scene: %w", err)
	}

	realScene := &scene.Scene{
		Phong:   material.DefaultPhong(),
		Light:   material.Light{Position: vec3.T{0, 10, 10}, Color: vec3.T{1, 1, 1}},
		Ambient: material.Ambient{Color: vec3.T{0.3, 0.3, 0.3}},
	}

	if c := f.Coefficients; c != nil {
		realScene.Phong = material.Phong{Ka: c.Ka, Kd: c.Kd, Ks: c.Ks, Eta: c.Eta, Os: c.Os}
	}

	if l := f.Light; l != nil {
		pos, err := convertVec3(l.Position, "light.position")
		if err != nil {
			return nil, err
		}
		col, err := convertVec3(l.Color, "light.color")
		if err != nil {
			return nil, err
		}
		realScene.Light = material.Light{Position: pos, Color: col}
	}

	if a := f.Ambient; a != nil {
		col, err := convertVec3(a.Color, "ambient.color")
		if err != nil {
			return nil, err
		}
		realScene.Ambient = material.Ambient{Color: col}
	}

	if f.Background != nil {
		bg, err := convertVec3(f.Background, "background")
		if err != nil {
			return nil, err
		}
		realScene.Background = bg
	}

	for i, o := range f.Objects {
		obj, err := convertObject(o)
		if err != nil {
			return nil, xerrors.Errorf("object %d: %w", i, err)
		}
		realScene.AddObject(obj)
	}

	cam, err := convertCamera(f.Camera)
	if err != nil {
		return nil, err
	}

	desc := &Description{
		Scene:          realScene,
		Camera:         cam,
		MaxReflections: DefaultMaxReflections,
	}
	if f.MaxReflections != nil {
		if *f.MaxReflections < 0 {
			return nil, xerrors.Errorf("max_reflections must not be negative, got %d", *f.MaxReflections)
		}
		desc.MaxReflections = *f.MaxReflections
	}

	return desc, nil
}

func convertObject(o objectConfig) (*scene.Object, error) {
	shapes := 0
	for _, present := range []bool{o.Sphere != nil, o.Plane != nil, o.Pyramid != nil, o.Cube != nil} {
		if present {
			shapes++
		}
	}
	if shapes != 1 {
		return nil, xerrors.Errorf("want exactly one of sphere, plane, pyramid, cube; got %d", shapes)
	}

	col, err := convertVec3(o.Color, "color")
	if err != nil {
		return nil, err
	}

	var g geometry.Geometry
	switch {
	case o.Sphere != nil:
		g, err = convertSphere(o.Sphere)
	case o.Plane != nil:
		g, err = convertPlane(o.Plane)
	case o.Pyramid != nil:
		g, err = convertPyramid(o.Pyramid)
	case o.Cube != nil:
		g, err = convertCube(o.Cube)
	}
	if err != nil {
		return nil, err
	}

	return &scene.Object{
		TheGeometry: g,
		Color:       col,
		Reflective:  o.Reflective,
	}, nil
}

func convertSphere(in *sphereConfig) (*geometry.Sphere, error) {
	center, err := convertVec3(in.Center, "sphere.center")
	if err != nil {
		return nil, err
	}
	if !(in.Radius > 0) {
		return nil, xerrors.Errorf("sphere.radius must be positive, got %v", in.Radius)
	}
	return &geometry.Sphere{Center: center, Radius: in.Radius}, nil
}

func convertPlane(in *planeConfig) (*geometry.Plane, error) {
	point, err := convertVec3(in.Point, "plane.point")
	if err != nil {
		return nil, err
	}
	normal, err := convertVec3(in.Normal, "plane.normal")
	if err != nil {
		return nil, err
	}
	if normal.Norm() == 0 {
		return nil, xerrors.New("plane.normal must not be zero")
	}
	return &geometry.Plane{Point: point, Normal: normal}, nil
}

func convertPyramid(in *pyramidConfig) (*geometry.Pyramid, error) {
	if len(in.Vertices) != 4 {
		return nil, xerrors.Errorf("pyramid needs 4 vertices, got %d", len(in.Vertices))
	}

	py := &geometry.Pyramid{}
	for i, v := range in.Vertices {
		conv, err := convertVec3(v, "pyramid.vertices")
		if err != nil {
			return nil, err
		}
		py.V[i] = conv
	}

	faces := py.Faces()
	if err := checkFaces(faces[:]); err != nil {
		return nil, xerrors.Errorf("pyramid: %w", err)
	}
	return py, nil
}

func convertCube(in *cubeConfig) (*geometry.Cube, error) {
	var cu *geometry.Cube
	switch {
	case in.Vertices != nil && in.Center != nil:
		return nil, xerrors.New("cube takes either vertices or center/side, not both")
	case in.Vertices != nil:
		if len(in.Vertices) != 8 {
			return nil, xerrors.Errorf("cube needs 8 vertices, got %d", len(in.Vertices))
		}
		cu = &geometry.Cube{}
		for i, v := range in.Vertices {
			conv, err := convertVec3(v, "cube.vertices")
			if err != nil {
				return nil, err
			}
			cu.V[i] = conv
		}
	default:
		center, err := convertVec3(in.Center, "cube.center")
		if err != nil {
			return nil, err
		}
		if !(in.Side > 0) {
			return nil, xerrors.Errorf("cube.side must be positive, got %v", in.Side)
		}
		cu = geometry.AxisCube(center, in.Side)
	}

	faces := cu.Faces()
	if err := checkFaces(faces[:]); err != nil {
		return nil, xerrors.Errorf("cube: %w", err)
	}
	return cu, nil
}

// checkFaces rejects faces whose normal cannot be normalized.
func checkFaces(faces []geometry.Triangle) error {
	for i, f := range faces {
		n := vec3.CProd(vec3.SubVV(f.V1, f.V0), vec3.SubVV(f.V2, f.V0))
		if n.Norm() == 0 {
			return xerrors.Errorf("face %d is degenerate", i)
		}
	}
	return nil
}

func convertCamera(in *cameraConfig) (CameraSetup, error) {
	cam := CameraSetup{
		Center: vec3.T{0, 0, 5},
		Eye:    vec3.T{0, 0, -1},
		Up:     vec3.T{0, 1, 0},
		FOV:    DefaultFOV,
	}
	if in == nil {
		return cam, nil
	}

	var err error
	if in.Center != nil {
		if cam.Center, err = convertVec3(in.Center, "camera.center"); err != nil {
			return CameraSetup{}, err
		}
	}
	if in.Eye != nil {
		if cam.Eye, err = convertVec3(in.Eye, "camera.eye"); err != nil {
			return CameraSetup{}, err
		}
	}
	if in.Up != nil {
		if cam.Up, err = convertVec3(in.Up, "camera.up"); err != nil {
			return CameraSetup{}, err
		}
	}
	if in.FOV != 0 {
		cam.FOV = in.FOV
	}

	if cam.Eye.Norm() == 0 {
		return CameraSetup{}, xerrors.New("camera.eye must not be zero")
	}
	if vec3.CProd(cam.Eye, cam.Up).Norm() == 0 {
		return CameraSetup{}, xerrors.New("camera.up must not be parallel to camera.eye")
	}
	if !(cam.FOV > 0 && cam.FOV < 180) {
		return CameraSetup{}, xerrors.Errorf("camera.fov must be in (0, 180), got %v", cam.FOV)
	}
	return cam, nil
}

func convertVec3(in []float64, field string) (vec3.T, error) {
	if len(in) != 3 {
		return vec3.T{}, xerrors.Errorf("%s needs 3 components, got %d", field, len(in))
	}
	return vec3.T{in[0], in[1], in[2]}, nil
}
