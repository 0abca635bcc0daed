// Package field implements dense scalar field storage and the generators that fill it.
package field

import (
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/isomesh"
)

// Generator fills a field with sampled values. The field's dimensions are
// set by the caller before Generate is called. extent is the physical size
// spanned by the grid.
type Generator interface {
	Generate(dst *Field, extent ms3.Vec) error
}

// Field is a dense 3D grid of float32 samples stored x fastest, then y, then z.
type Field struct {
	NX, NY, NZ int
	Data       []float32
}

// Ensure shapes the field to nx*ny*nz points. Storage is only reallocated when
// the shape changes, in which case the previous storage is released first and
// Ensure returns true. Sample values are undefined after a reallocation.
func (f *Field) Ensure(nx, ny, nz int) (reallocated bool) {
	if nx < 1 || ny < 1 || nz < 1 {
		panic("bug: non-positive field dimension")
	}
	if f.Data != nil && f.NX == nx && f.NY == ny && f.NZ == nz {
		return false
	}
	f.Release()
	f.NX, f.NY, f.NZ = nx, ny, nz
	f.Data = make([]float32, nx*ny*nz)
	return true
}

// Release drops the field storage.
func (f *Field) Release() {
	f.Data = nil
	f.NX, f.NY, f.NZ = 0, 0, 0
}

// Dims returns the point counts of the field.
func (f *Field) Dims() isomesh.V3i { return isomesh.V3i{f.NX, f.NY, f.NZ} }

// Len returns the number of samples.
func (f *Field) Len() int { return f.NX * f.NY * f.NZ }

// Index returns the linear index of grid point (x,y,z).
func (f *Field) Index(x, y, z int) int {
	return x + f.NX*(y+f.NY*z)
}

// At returns the sample at grid point (x,y,z).
func (f *Field) At(x, y, z int) float32 {
	return f.Data[x+f.NX*(y+f.NY*z)]
}

// Gradient returns the field gradient at grid point (x,y,z) in world units
// using central differences. One-sided differences are used on the boundary.
func (f *Field) Gradient(x, y, z int, spacing ms3.Vec) ms3.Vec {
	return ms3.Vec{
		X: f.diff(x, y, z, 0, f.NX, spacing.X),
		Y: f.diff(x, y, z, 1, f.NY, spacing.Y),
		Z: f.diff(x, y, z, 2, f.NZ, spacing.Z),
	}
}

func (f *Field) diff(x, y, z, axis, n int, h float32) float32 {
	p := [3]int{x, y, z}
	c := p[axis]
	lo, hi := c-1, c+1
	if lo < 0 {
		lo = c
	}
	if hi >= n {
		hi = c
	}
	if lo == hi {
		return 0 // Single point along axis.
	}
	p[axis] = lo
	vlo := f.At(p[0], p[1], p[2])
	p[axis] = hi
	vhi := f.At(p[0], p[1], p[2])
	return (vhi - vlo) / (float32(hi-lo) * h)
}

// Fill sets every sample to v.
func (f *Field) Fill(v float32) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

// Point returns the world position of grid point (x,y,z) for a field spanning extent.
func (f *Field) Point(x, y, z int, extent ms3.Vec) ms3.Vec {
	spacing := isomesh.Spacing(f.Dims(), extent)
	return ms3.MulElem(isomesh.V3i{x, y, z}.Vec(), spacing)
}

// normalized returns the grid coordinate of (x,y,z) mapped to [0,1] per axis.
func (f *Field) normalized(x, y, z int) ms3.Vec {
	return ms3.Vec{
		X: float32(x) / float32(f.NX-1),
		Y: float32(y) / float32(f.NY-1),
		Z: float32(z) / float32(f.NZ-1),
	}
}
