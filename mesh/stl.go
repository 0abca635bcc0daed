package mesh

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

const stlTriangleSize = 50

// stlHeader defines the binary STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

// WriteSTL writes the mesh to w in binary STL format. STL stores one normal
// per facet so the geometric triangle normal is written.
func WriteSTL(w io.Writer, m *Mesh) error {
	if m.IsEmpty() {
		return errors.New("empty mesh")
	}
	bw := bufio.NewWriter(w)
	header := stlHeader{
		Count: uint32(m.TriangleCount()),
	}
	if err := binary.Write(bw, binary.LittleEndian, &header); err != nil {
		return err
	}
	var b [stlTriangleSize]byte
	for i := 0; i < m.TriangleCount(); i++ {
		tri := m.Triangle(i)
		d := stlTriangle{
			Normal:  f32(tri.Normal()),
			Vertex1: f32(tri.V[0]),
			Vertex2: f32(tri.V[1]),
			Vertex3: f32(tri.V[2]),
		}
		d.put(b[:])
		if _, err := bw.Write(b[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math32.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math32.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math32.Float32bits(f[2]))
}

func f32(v ms3.Vec) [3]float32 { return [3]float32{v.X, v.Y, v.Z} }
