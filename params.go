package isomesh

import (
	"math"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// MaxTrianglesPerCell is the most triangles marching cubes emits for a single cell.
const MaxTrianglesPerCell = 5

// MaxGridAxis is the largest point count accepted along a single grid axis.
// Bounding each axis keeps every grid size product within int64 and every
// axis exactly representable as a float32.
const MaxGridAxis = 1 << 16

// Source selects how the scalar field is filled.
type Source uint8

const (
	// SourceProcedural fills the field with fractal noise.
	SourceProcedural Source = iota
	// SourceLiteral fills the field from a string of decimal digits.
	SourceLiteral
	// SourceShape samples a signed distance function from the shape catalog.
	SourceShape
)

var sourceNames = [...]string{
	SourceProcedural: "procedural",
	SourceLiteral:    "literal",
	SourceShape:      "shape",
}

func (s Source) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return "Source(" + strconv.Itoa(int(s)) + ")"
}

// ParseSource returns the Source named by s.
func ParseSource(s string) (Source, error) {
	for i, name := range sourceNames {
		if name == s {
			return Source(i), nil
		}
	}
	return 0, errConfig("unknown field source %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	if int(s) >= len(sourceNames) {
		return nil, errConfig("unknown field source %d", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(b []byte) error {
	v, err := ParseSource(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Params is the full input of an extraction run. Params is comparable
// and the pipeline relies on value equality to skip redundant runs.
type Params struct {
	// Dims is the number of grid points along each axis. Components
	// must be integral and at least 2.
	Dims ms3.Vec
	// Extent is the physical size of the sampled volume.
	Extent ms3.Vec
	// IsoLevel is the threshold between inside and outside.
	IsoLevel float32
	Source   Source
	// Literal holds the decimal digits used when Source is SourceLiteral.
	Literal string
	// Shape names a catalog shape used when Source is SourceShape.
	Shape string
	// Debug enables production of grid point visualization data.
	Debug bool
}

// Validate checks p and returns an error wrapping ErrConfig on the first problem found.
func (p Params) Validate() error {
	dims := [3]float32{p.Dims.X, p.Dims.Y, p.Dims.Z}
	ext := [3]float32{p.Extent.X, p.Extent.Y, p.Extent.Z}
	for i, axis := range "xyz" {
		d := dims[i]
		switch {
		case !finite(d):
			return errConfig("grid %c dimension not finite", axis)
		case d < 2:
			return errConfig("grid %c dimension %g must be at least 2", axis, d)
		case d != math32.Floor(d):
			return errConfig("grid %c dimension %g not integral", axis, d)
		case d > MaxGridAxis:
			return errConfig("grid %c dimension %g exceeds %d", axis, d, MaxGridAxis)
		}
		if !finite(ext[i]) || ext[i] <= 0 {
			return errConfig("extent %c must be positive and finite, got %g", axis, ext[i])
		}
	}
	if !finite(p.IsoLevel) {
		return errConfig("iso level not finite")
	}
	switch p.Source {
	case SourceProcedural:
	case SourceLiteral:
		if p.Literal == "" {
			return errConfig("literal source requires digits")
		}
		for i := 0; i < len(p.Literal); i++ {
			if c := p.Literal[i]; c < '0' || c > '9' {
				return errConfig("literal byte %d (%q) is not a decimal digit", i, c)
			}
		}
	case SourceShape:
		if p.Shape == "" {
			return errConfig("shape source requires a shape name")
		}
	default:
		return errConfig("unknown field source %d", p.Source)
	}
	// Vertex indices are 32 bit.
	g := p.Grid()
	cells := int64(g[0]-1) * int64(g[1]-1) * int64(g[2]-1)
	if cells*MaxTrianglesPerCell*3 > math.MaxUint32 || int64(g[0])*int64(g[1])*int64(g[2]) > math.MaxInt32 {
		return errConfig("grid %dx%dx%d exceeds triangle buffer capacity", g[0], g[1], g[2])
	}
	return nil
}

// Grid returns the integer point counts of the grid. Only meaningful for validated Params.
func (p Params) Grid() V3i {
	return V3i{int(p.Dims.X), int(p.Dims.Y), int(p.Dims.Z)}
}

// Cells returns the number of cubes in the grid.
func (p Params) Cells() int {
	return p.Grid().SubScalar(1).Prod()
}

// Capacity returns the triangle capacity needed to march the grid in the worst case.
func (p Params) Capacity() int {
	return p.Cells() * MaxTrianglesPerCell
}

// Spacing returns the world distance between neighbouring grid points along each axis.
func (p Params) Spacing() ms3.Vec {
	return Spacing(p.Grid(), p.Extent)
}

// Spacing returns the grid point spacing of a grid with dims points spanning extent.
func Spacing(dims V3i, extent ms3.Vec) ms3.Vec {
	return ms3.Vec{
		X: extent.X / float32(dims[0]-1),
		Y: extent.Y / float32(dims[1]-1),
		Z: extent.Z / float32(dims[2]-1),
	}
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
