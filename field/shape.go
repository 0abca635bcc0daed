package field

import (
	"fmt"
	"math"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/internal/d3"
)

// shapeBuilder returns a shape scaled to fit a cube of side s centered at the origin.
type shapeBuilder func(s float64) (sdf.SDF3, error)

var catalog = map[string]shapeBuilder{
	"sphere": func(s float64) (sdf.SDF3, error) {
		return sdf.Sphere3D(0.35 * s)
	},
	"box": func(s float64) (sdf.SDF3, error) {
		return sdf.Box3D(v3.Vec{X: 0.6 * s, Y: 0.5 * s, Z: 0.4 * s}, 0.05*s)
	},
	"cylinder": func(s float64) (sdf.SDF3, error) {
		return sdf.Cylinder3D(0.7*s, 0.3*s, 0.02*s)
	},
	"drilled-box": func(s float64) (sdf.SDF3, error) {
		box, err := sdf.Box3D(v3.Vec{X: 0.6 * s, Y: 0.6 * s, Z: 0.6 * s}, 0.03*s)
		if err != nil {
			return nil, err
		}
		hole, err := sdf.Cylinder3D(0.8*s, 0.15*s, 0)
		if err != nil {
			return nil, err
		}
		crossHole := sdf.Transform3D(hole, sdf.RotateY(math.Pi/2))
		return sdf.Difference3D(box, sdf.Union3D(hole, crossHole)), nil
	},
	"dumbbell": func(s float64) (sdf.SDF3, error) {
		ball, err := sdf.Sphere3D(0.15 * s)
		if err != nil {
			return nil, err
		}
		bar, err := sdf.Cylinder3D(0.5*s, 0.06*s, 0)
		if err != nil {
			return nil, err
		}
		left := sdf.Transform3D(ball, sdf.Translate3d(v3.Vec{X: -0.25 * s}))
		right := sdf.Transform3D(ball, sdf.Translate3d(v3.Vec{X: 0.25 * s}))
		bar = sdf.Transform3D(bar, sdf.RotateY(math.Pi/2))
		return sdf.Union3D(left, right, bar), nil
	},
}

// ShapeNames returns the names of all catalog shapes in sorted order.
func ShapeNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupShape returns a Shape generator for the named catalog shape.
// The returned error wraps isomesh.ErrConfig if name is not in the catalog.
func LookupShape(name string) (Shape, error) {
	if _, ok := catalog[name]; !ok {
		return Shape{}, fmt.Errorf("unknown shape %q, want one of %v: %w", name, ShapeNames(), isomesh.ErrConfig)
	}
	return Shape{Name: name}, nil
}

// Shape samples the signed distance of a catalog shape centered in the extent.
// Samples are negative inside the shape, so the surface sits at iso level 0.
type Shape struct {
	Name string
}

// Generate evaluates the shape at every grid point. The shape is sized
// relative to the smallest extent component.
func (sh Shape) Generate(dst *Field, extent ms3.Vec) error {
	build, ok := catalog[sh.Name]
	if !ok {
		return fmt.Errorf("unknown shape %q: %w", sh.Name, isomesh.ErrConfig)
	}
	size := float64(d3.Min(extent))
	s, err := build(size)
	if err != nil {
		return fmt.Errorf("building shape %q: %w", sh.Name, err)
	}
	center := ms3.Scale(0.5, extent)
	i := 0
	for z := 0; z < dst.NZ; z++ {
		for y := 0; y < dst.NY; y++ {
			for x := 0; x < dst.NX; x++ {
				p := ms3.Sub(dst.Point(x, y, z, extent), center)
				dst.Data[i] = float32(s.Evaluate(v3.Vec{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}))
				i++
			}
		}
	}
	return nil
}
