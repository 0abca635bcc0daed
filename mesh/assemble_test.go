package mesh

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/internal/d3"
)

// Two triangles sharing the edge (0,0,0)-(1,0,0) folded along it.
func foldedQuad() []isomesh.Triangle {
	up := ms3.Vec{Z: 1}
	side := ms3.Vec{Y: -1}
	return []isomesh.Triangle{
		{
			V: [3]ms3.Vec{{}, {X: 1}, {X: 1, Y: 1}},
			N: [3]ms3.Vec{up, up, up},
		},
		{
			V: [3]ms3.Vec{{X: 1}, {}, {X: 0.5, Z: -1}},
			N: [3]ms3.Vec{side, side, side},
		},
	}
}

func TestAssembleSharedNormals(t *testing.T) {
	tris := foldedQuad()
	m := Assembler{}.Assemble(tris, len(tris))
	if m.VertexCount() != 6 || len(m.Indices) != 6 || m.TriangleCount() != 2 {
		t.Fatalf("want 6 vertices/indices, got %d/%d", m.VertexCount(), len(m.Indices))
	}
	for i, idx := range m.Indices {
		if idx != uint32(i) {
			t.Fatalf("index %d is %d, want identity", i, idx)
		}
	}
	shared := d3.UnitOrZero(ms3.Vec{Y: -1, Z: 1})
	// Corners on the shared edge are averaged.
	for _, v := range []int{0, 1, 3, 4} {
		if !d3.EqualWithin(m.Normals[v], shared, 1e-6) {
			t.Errorf("vertex %d normal %v, want %v", v, m.Normals[v], shared)
		}
	}
	if m.Normals[2] != (ms3.Vec{Z: 1}) || m.Normals[5] != (ms3.Vec{Y: -1}) {
		t.Errorf("unshared normals modified: %v %v", m.Normals[2], m.Normals[5])
	}
}

func TestAssembleUnitNormals(t *testing.T) {
	tris := foldedQuad()
	tris[0].N = [3]ms3.Vec{{X: 3}, {Y: 0.1}, {X: 2, Y: 2, Z: 2}}
	m := Assembler{}.Assemble(tris, 2)
	for i, n := range m.Normals {
		if l := ms3.Norm(n); math32.Abs(l-1) > 1e-5 {
			t.Errorf("normal %d has length %g", i, l)
		}
	}
}

func TestAssembleCancellingNormals(t *testing.T) {
	tris := foldedQuad()
	tris[1].N = [3]ms3.Vec{{Z: -1}, {Z: -1}, {Z: -1}}
	m := Assembler{}.Assemble(tris, 2)
	if m.Normals[0] != (ms3.Vec{}) {
		t.Errorf("opposing normals should sum to zero, got %v", m.Normals[0])
	}
}

func TestAssembleSignedZero(t *testing.T) {
	negz := math32.Copysign(0, -1)
	tris := []isomesh.Triangle{
		{V: [3]ms3.Vec{{}, {X: 1}, {Y: 1}}, N: [3]ms3.Vec{{Z: 1}, {Z: 1}, {Z: 1}}},
		{V: [3]ms3.Vec{{X: negz}, {Y: -1}, {X: 1}}, N: [3]ms3.Vec{{X: 1}, {X: 1}, {X: 1}}},
	}
	m := Assembler{}.Assemble(tris, 2)
	if m.Normals[0] != m.Normals[3] {
		t.Errorf("-0 and +0 positions not merged: %v vs %v", m.Normals[0], m.Normals[3])
	}
}

func TestAssembleCountBounds(t *testing.T) {
	tris := foldedQuad()
	m := Assembler{}.Assemble(tris, 1)
	if m.TriangleCount() != 1 {
		t.Errorf("want 1 triangle, got %d", m.TriangleCount())
	}
	empty := Assembler{}.Assemble(tris, 0)
	if !empty.IsEmpty() {
		t.Error("zero count must give empty mesh")
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic for count beyond buffer")
		}
	}()
	Assembler{}.Assemble(tris, 3)
}

func TestAssembleWeld(t *testing.T) {
	const eps = 1e-4
	tris := foldedQuad()
	// Nudge the second triangle's shared corners off the exact positions.
	tris[1].V[0].X += eps
	tris[1].V[1].Y += eps
	exact := Assembler{}.Assemble(tris, 2)
	if exact.Normals[0] != (ms3.Vec{Z: 1}) {
		t.Fatalf("exact keying should not merge nudged corners, got %v", exact.Normals[0])
	}
	welded := Assembler{WeldTolerance: 10 * eps}.Assemble(tris, 2)
	shared := d3.UnitOrZero(ms3.Vec{Y: -1, Z: 1})
	for _, v := range []int{0, 1, 3, 4} {
		if !d3.EqualWithin(welded.Normals[v], shared, 1e-6) {
			t.Errorf("welded vertex %d normal %v, want %v", v, welded.Normals[v], shared)
		}
	}
	if welded.Vertices[3] != tris[1].V[0] {
		t.Error("welding must not move vertices")
	}
}

func TestMeshBoundsFlatten(t *testing.T) {
	m := Assembler{}.Assemble(foldedQuad(), 2)
	bb := m.Bounds()
	if bb.Min != (ms3.Vec{Y: 0, Z: -1}) || bb.Max != (ms3.Vec{X: 1, Y: 1}) {
		t.Errorf("unexpected bounds %+v", bb)
	}
	pos, nrm := m.Flatten()
	if len(pos) != 18 || len(nrm) != 18 {
		t.Fatalf("flattened lengths %d %d", len(pos), len(nrm))
	}
	if tri := m.Triangle(1); tri.V[2] != (ms3.Vec{X: 0.5, Z: -1}) {
		t.Errorf("triangle readback mismatch: %v", tri.V)
	}
}
