/*

Integer 3D grid vectors

*/

package isomesh

import "github.com/soypat/glgl/math/ms3"

// V3i is a 3D integer vector. Used for grid point and cell coordinates.
type V3i [3]int

// SubScalar subtracts a scalar from each component of the vector.
func (a V3i) SubScalar(b int) V3i {
	return V3i{a[0] - b, a[1] - b, a[2] - b}
}

// Vec converts V3i (integer) to ms3.Vec (float).
func (a V3i) Vec() ms3.Vec {
	return ms3.Vec{X: float32(a[0]), Y: float32(a[1]), Z: float32(a[2])}
}

// Add adds two vectors. Return v = a + b.
func (a V3i) Add(b V3i) V3i {
	return V3i{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Prod returns the product of the components. For a point count
// vector this is the total number of points.
func (a V3i) Prod() int {
	return a[0] * a[1] * a[2]
}

// Index returns the x-fastest linear index of a inside a grid of size dims.
func (a V3i) Index(dims V3i) int {
	return a[0] + dims[0]*(a[1]+dims[1]*a[2])
}
