package mesh

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/isomesh/internal/d3"
)

func TestWriteSTL(t *testing.T) {
	m := Assembler{}.Assemble(foldedQuad(), 2)
	var b bytes.Buffer
	err := WriteSTL(&b, &m)
	if err != nil {
		t.Fatal(err)
	}
	data := b.Bytes()
	if len(data) != 84+2*stlTriangleSize {
		t.Fatalf("unexpected STL size %d", len(data))
	}
	if n := binary.LittleEndian.Uint32(data[80:]); n != 2 {
		t.Fatalf("header count %d, want 2", n)
	}
	for i := 0; i < 2; i++ {
		rec := data[84+i*stlTriangleSize:]
		want := m.Triangle(i)
		if n := stlVec(rec); !d3.EqualWithin(n, want.Normal(), 1e-6) {
			t.Errorf("triangle %d facet normal %v, want %v", i, n, want.Normal())
		}
		for k := 0; k < 3; k++ {
			if v := stlVec(rec[12+12*k:]); v != want.V[k] {
				t.Errorf("triangle %d vertex %d is %v, want %v", i, k, v, want.V[k])
			}
		}
		if attr := binary.LittleEndian.Uint16(rec[48:]); attr != 0 {
			t.Errorf("triangle %d attribute count %d", i, attr)
		}
	}
}

func TestWriteSTLEmpty(t *testing.T) {
	var b bytes.Buffer
	if err := WriteSTL(&b, &Mesh{}); err == nil {
		t.Error("expected error writing empty mesh")
	}
}

func stlVec(b []byte) ms3.Vec {
	return ms3.Vec{
		X: math32.Float32frombits(binary.LittleEndian.Uint32(b)),
		Y: math32.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math32.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}
