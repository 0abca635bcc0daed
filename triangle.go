package isomesh

import "github.com/soypat/glgl/math/ms3"

// Triangle is a single marching cubes output triangle. Vertices are in world
// coordinates and wound counter-clockwise when seen from the high-value side.
type Triangle struct {
	V [3]ms3.Vec
	// N holds the raw per-vertex normals interpolated from the field gradient.
	N [3]ms3.Vec
}

// Degenerate reports whether the triangle has zero area.
func (t Triangle) Degenerate(tol float32) bool {
	e1 := ms3.Sub(t.V[1], t.V[0])
	e2 := ms3.Sub(t.V[2], t.V[0])
	return ms3.Norm(ms3.Cross(e1, e2)) <= tol
}

// Normal returns the unit geometric normal of the triangle, or the zero vector
// for degenerate triangles.
func (t Triangle) Normal() ms3.Vec {
	e1 := ms3.Sub(t.V[1], t.V[0])
	e2 := ms3.Sub(t.V[2], t.V[0])
	n := ms3.Cross(e1, e2)
	if l := ms3.Norm(n); l > 0 {
		return ms3.Scale(1/l, n)
	}
	return ms3.Vec{}
}

// GridPoint is a sampled grid point exposed for debug visualization.
type GridPoint struct {
	Pos   ms3.Vec
	Value float32
	// Inside is set when Value does not exceed the iso level.
	Inside bool
}

// GridPoints appends a GridPoint for each of the field values in data to dst and returns the result.
// data is indexed x fastest and must have dims.Prod() elements.
func GridPoints(dst []GridPoint, data []float32, dims V3i, extent ms3.Vec, iso float32) []GridPoint {
	if len(data) != dims.Prod() {
		panic("bug: field data length does not match grid dimensions")
	}
	spacing := Spacing(dims, extent)
	i := 0
	for z := 0; z < dims[2]; z++ {
		for y := 0; y < dims[1]; y++ {
			for x := 0; x < dims[0]; x++ {
				v := data[i]
				dst = append(dst, GridPoint{
					Pos:    ms3.MulElem(V3i{x, y, z}.Vec(), spacing),
					Value:  v,
					Inside: v <= iso,
				})
				i++
			}
		}
	}
	return dst
}
