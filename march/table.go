package march

import "github.com/soypat/isomesh"

// MaxTrianglesPerCell is the most triangles a single cell can emit.
const MaxTrianglesPerCell = isomesh.MaxTrianglesPerCell

// Cube corner offsets. Bit i of a cell configuration is set when corner i is inside.
var cornerOffsets = [8]isomesh.V3i{
	{0, 0, 0},
	{1, 0, 0},
	{1, 1, 0},
	{0, 1, 0},
	{0, 0, 1},
	{1, 0, 1},
	{1, 1, 1},
	{0, 1, 1},
}

// Cube edges as corner pairs. The first corner always has the lower grid
// coordinate so that cells sharing an edge interpolate in the same direction.
var edgeCorners = [12][2]uint8{
	{0, 1}, {1, 2}, {3, 2}, {0, 3},
	{4, 5}, {5, 6}, {7, 6}, {4, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Cube faces, corners listed counter-clockwise seen from outside the cube.
var faceCorners = [6][4]uint8{
	{0, 3, 2, 1}, // z=0
	{4, 5, 6, 7}, // z=1
	{0, 1, 5, 4}, // y=0
	{3, 7, 6, 2}, // y=1
	{0, 4, 7, 3}, // x=0
	{1, 2, 6, 5}, // x=1
}

// triTable lists, for every cell configuration, the edges crossed by each
// emitted triangle. Every three consecutive entries form one triangle.
var triTable [256][]uint8

func init() {
	var edgeOf [8][8]int8
	for i := range edgeOf {
		for j := range edgeOf[i] {
			edgeOf[i][j] = -1
		}
	}
	for e, c := range edgeCorners {
		edgeOf[c[0]][c[1]] = int8(e)
		edgeOf[c[1]][c[0]] = int8(e)
	}
	for config := 0; config < 256; config++ {
		triTable[config] = triangulateConfig(uint8(config), &edgeOf)
		if len(triTable[config]) > 3*MaxTrianglesPerCell {
			panic("bug: cell configuration exceeds triangle limit")
		}
	}
}

// triangulateConfig traces the iso-contour on each cube face and joins the
// resulting segments into closed loops which are then fanned into triangles.
//
// On a face, a segment runs from the edge leaving an inside run of corners to the
// edge entering it. This cuts inside corners apart on ambiguous faces. The
// choice depends only on the signs of the face's corners, so both cells sharing
// a face always agree and the surface is closed.
func triangulateConfig(config uint8, edgeOf *[8][8]int8) []uint8 {
	inside := func(c uint8) bool { return config&(1<<c) != 0 }
	var next [12]int8
	for i := range next {
		next[i] = -1
	}
	for _, face := range faceCorners {
		for i := 0; i < 4; i++ {
			ci, cn := face[i], face[(i+1)%4]
			if !inside(ci) || inside(cn) {
				continue
			}
			start := edgeOf[ci][cn]
			j := i
			for inside(face[(j+3)%4]) {
				j = (j + 3) % 4
			}
			end := edgeOf[face[(j+3)%4]][face[j]]
			next[start] = end
		}
	}
	var tris []uint8
	var visited [12]bool
	var loop []uint8
	for e := range next {
		if next[e] < 0 || visited[e] {
			continue
		}
		loop = loop[:0]
		for cur := int8(e); !visited[cur]; cur = next[cur] {
			visited[cur] = true
			loop = append(loop, uint8(cur))
		}
		for k := 1; k+1 < len(loop); k++ {
			tris = append(tris, loop[0], loop[k+1], loop[k])
		}
	}
	return tris
}
