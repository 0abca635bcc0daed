package d3

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// float32 vector routines missing from ms3.

// EqualWithin reports whether every component of a and b differs by at most tol.
func EqualWithin(a, b ms3.Vec, tol float32) bool {
	return math32.Abs(a.X-b.X) <= tol &&
		math32.Abs(a.Y-b.Y) <= tol &&
		math32.Abs(a.Z-b.Z) <= tol
}

// Min returns the smallest component of a.
func Min(a ms3.Vec) float32 {
	return math32.Min(a.Z, math32.Min(a.X, a.Y))
}

// Lerp returns a + t*(b-a).
func Lerp(a, b ms3.Vec, t float32) ms3.Vec {
	return ms3.Vec{
		X: a.X + t*(b.X-a.X),
		Y: a.Y + t*(b.Y-a.Y),
		Z: a.Z + t*(b.Z-a.Z),
	}
}

// UnitOrZero returns a normalized. The zero vector is returned unchanged.
func UnitOrZero(a ms3.Vec) ms3.Vec {
	l := ms3.Norm(a)
	if l == 0 {
		return ms3.Vec{}
	}
	return ms3.Scale(1/l, a)
}

// Key is the exact bit pattern of a position with signed zeros folded, usable as a map key.
type Key [3]uint32

// KeyOf returns the canonical Key of v. -0 and +0 map to the same key.
func KeyOf(v ms3.Vec) Key {
	return Key{bits(v.X), bits(v.Y), bits(v.Z)}
}

func bits(f float32) uint32 {
	if f == 0 {
		return 0
	}
	return math32.Float32bits(f)
}

// Set is a collection of points with bounds queries.
type Set []ms3.Vec

// Min return the minimum components of a set of vectors.
func (a Set) Min() ms3.Vec {
	vmin := a[0]
	for _, v := range a[1:] {
		vmin = ms3.MinElem(vmin, v)
	}
	return vmin
}

// Max return the maximum components of a set of vectors.
func (a Set) Max() ms3.Vec {
	vmax := a[0]
	for _, v := range a[1:] {
		vmax = ms3.MaxElem(vmax, v)
	}
	return vmax
}
