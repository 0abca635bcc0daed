// Package preview rasterizes meshes to images in software for quick inspection.
package preview

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/isomesh/mesh"
)

// View configures the camera used to render a preview.
type View struct {
	Width, Height int
	// Supersampling factor used for antialiasing.
	Scale int
	// Eye is the camera position after the mesh is fit in a bi-unit cube.
	Eye    ms3.Vec
	LookAt ms3.Vec
	Up     ms3.Vec
	Near   float64
	Far    float64
	// Fovy is the vertical field of view in degrees.
	Fovy float64
}

// DefaultView returns an isometric-ish view of the bi-unit cube.
func DefaultView() View {
	return View{
		Width:  800,
		Height: 600,
		Scale:  2,
		Eye:    ms3.Vec{X: 3, Y: 3, Z: 3},
		Up:     ms3.Vec{Z: 1},
		Near:   1,
		Far:    10,
		Fovy:   30,
	}
}

// Render draws m with a phong shader using the mesh's smoothed vertex normals.
func Render(m mesh.Mesh, view View) (image.Image, error) {
	if m.IsEmpty() {
		return nil, errors.New("preview: empty mesh")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("preview: non-positive image size")
	}
	if view.Scale < 1 {
		view.Scale = 1
	}
	fmesh := toFauxgl(m)
	var (
		eye    = vec(view.Eye)
		center = vec(view.LookAt)
		up     = vec(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize() // light direction
		color  = fauxgl.HexColor("#468966")           // object color
	)
	// fit mesh in a bi-unit cube centered at the origin
	fmesh.BiUnitCube()
	context := fauxgl.NewContext(view.Width*view.Scale, view.Height*view.Scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(view.Fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(fmesh)
	// downsample image for antialiasing
	img := context.Image()
	img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	return img, nil
}

// WritePNG renders m and saves the result as a PNG file.
func WritePNG(path string, m mesh.Mesh, view View) error {
	img, err := Render(m, view)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}

func toFauxgl(m mesh.Mesh) *fauxgl.Mesh {
	tris := make([]*fauxgl.Triangle, m.TriangleCount())
	for i := range tris {
		t := m.Triangle(i)
		tri := &fauxgl.Triangle{
			V1: fauxgl.Vertex{Position: vec(t.V[0]), Normal: vec(t.N[0])},
			V2: fauxgl.Vertex{Position: vec(t.V[1]), Normal: vec(t.N[1])},
			V3: fauxgl.Vertex{Position: vec(t.V[2]), Normal: vec(t.N[2])},
		}
		tris[i] = tri
	}
	return fauxgl.NewTriangleMesh(tris)
}

func vec(v ms3.Vec) fauxgl.Vector {
	return fauxgl.V(float64(v.X), float64(v.Y), float64(v.Z))
}
