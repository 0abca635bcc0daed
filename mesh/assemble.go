package mesh

import (
	"fmt"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/internal/d3"
)

// Assembler turns triangle soup into a Mesh. Every triangle corner becomes
// its own vertex. Normals of corners sharing a position are summed and
// renormalized so shading is smooth across triangles.
type Assembler struct {
	// WeldTolerance, when positive, makes corners whose positions lie within
	// this distance share one averaged normal. Zero requires exact position equality.
	WeldTolerance float32
}

// Assemble builds a mesh from the first n triangles of tris.
// Assemble panics if n is negative or exceeds len(tris).
func (a Assembler) Assemble(tris []isomesh.Triangle, n int) Mesh {
	if n < 0 || n > len(tris) {
		panic(fmt.Sprintf("bug: triangle count %d outside buffer of length %d", n, len(tris)))
	}
	tris = tris[:n]
	nv := 3 * n
	m := Mesh{
		Vertices: make([]ms3.Vec, nv),
		Normals:  make([]ms3.Vec, nv),
		Indices:  make([]uint32, nv),
	}
	for i, tri := range tris {
		for k := 0; k < 3; k++ {
			m.Vertices[3*i+k] = tri.V[k]
			m.Indices[3*i+k] = uint32(3*i + k)
		}
	}
	groups, ngroups := exactGroups(m.Vertices)
	if a.WeldTolerance > 0 {
		groups, ngroups = weldGroups(m.Vertices, groups, ngroups, a.WeldTolerance)
	}
	// First pass accumulates raw normals, second pass writes back the unit sums.
	sums := make([]ms3.Vec, ngroups)
	for i, tri := range tris {
		for k := 0; k < 3; k++ {
			g := groups[3*i+k]
			sums[g] = ms3.Add(sums[g], tri.N[k])
		}
	}
	for g := range sums {
		sums[g] = d3.UnitOrZero(sums[g])
	}
	for v, g := range groups {
		m.Normals[v] = sums[g]
	}
	return m
}

// exactGroups assigns each vertex the id of its distinct position. Ids are
// handed out in first seen order.
func exactGroups(verts []ms3.Vec) (groups []int32, ngroups int) {
	groups = make([]int32, len(verts))
	ids := make(map[d3.Key]int32, len(verts)/4)
	for i, v := range verts {
		key := d3.KeyOf(v)
		id, ok := ids[key]
		if !ok {
			id = int32(len(ids))
			ids[key] = id
		}
		groups[i] = id
	}
	return groups, len(ids)
}
