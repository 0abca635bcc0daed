// Package march implements the marching cubes cell classifier and triangulator.
// Cells are processed independently by a pool of goroutines which append their
// triangles into a shared fixed capacity arena.
package march

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/field"
	"github.com/soypat/isomesh/internal/arena"
	"github.com/soypat/isomesh/internal/d3"
)

// Slot is a triangle written to the arena tagged with the cell that produced it.
type Slot struct {
	// Key is the linear cell index shifted left 3 bits plus the triangle's ordinal within the cell.
	Key uint64
	isomesh.Triangle
}

// Capacity returns the arena capacity required to march a field of the given point counts.
func Capacity(dims isomesh.V3i) int {
	return dims.SubScalar(1).Prod() * MaxTrianglesPerCell
}

// Config returns the configuration index of a cell given its 8 corner samples.
// Corner i sets bit i when its sample does not exceed iso.
func Config(values *[8]float32, iso float32) uint8 {
	var config uint8
	for i, v := range values {
		if v <= iso {
			config |= 1 << i
		}
	}
	return config
}

// TriangleCount returns the number of triangles emitted for a cell configuration.
func TriangleCount(config uint8) int {
	return len(triTable[config]) / 3
}

// Job tracks a dispatched marching cubes run.
type Job struct {
	wg    sync.WaitGroup
	once  sync.Once
	count int
	dst   *arena.Buffer[Slot]
}

// Dispatch starts marching all cells of f using the given number of worker
// goroutines and returns immediately. workers <= 0 uses GOMAXPROCS.
// dst must be reset and have capacity for Capacity(f.Dims()) slots; Dispatch
// panics otherwise. dst must not be touched until the job's Count returns.
func Dispatch(dst *arena.Buffer[Slot], f *field.Field, spacing ms3.Vec, iso float32, workers int) *Job {
	dims := f.Dims()
	if dims[0] < 2 || dims[1] < 2 || dims[2] < 2 || len(f.Data) != dims.Prod() {
		panic("bug: field not shaped for marching")
	}
	need := Capacity(dims)
	if dst.Cap() < need {
		panic(fmt.Sprintf("bug: triangle arena capacity %d below required %d", dst.Cap(), need))
	}
	if dst.Len() != 0 {
		panic("bug: triangle arena not reset before dispatch")
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	cells := dims.SubScalar(1).Prod()
	if workers > cells {
		workers = cells
	}
	job := &Job{dst: dst}
	chunk := (cells + workers - 1) / workers
	for start := 0; start < cells; start += chunk {
		end := start + chunk
		if end > cells {
			end = cells
		}
		job.wg.Add(1)
		go func(start, end int) {
			defer job.wg.Done()
			w := worker{f: f, spacing: spacing, iso: iso, dst: dst}
			for cell := start; cell < end; cell++ {
				w.march(cell)
			}
		}(start, end)
	}
	return job
}

// Wait blocks until every cell has been processed.
func (j *Job) Wait() { j.wg.Wait() }

// Count waits for the dispatch to complete and returns the number of
// triangles written. The counter is read once after the barrier.
func (j *Job) Count() int {
	j.once.Do(func() {
		j.wg.Wait()
		j.count = j.dst.Len()
	})
	return j.count
}

// Readback appends the first Count triangles to dst in canonical cell order
// and returns the result. The order is independent of goroutine scheduling.
func (j *Job) Readback(dst []isomesh.Triangle) []isomesh.Triangle {
	n := j.Count()
	slots := j.dst.Valid()[:n]
	sort.Slice(slots, func(a, b int) bool { return slots[a].Key < slots[b].Key })
	for i := range slots {
		dst = append(dst, slots[i].Triangle)
	}
	return dst
}

type worker struct {
	f       *field.Field
	spacing ms3.Vec
	iso     float32
	dst     *arena.Buffer[Slot]
}

func (w *worker) march(cell int) {
	f := w.f
	cx := f.NX - 1
	cy := f.NY - 1
	base := isomesh.V3i{cell % cx, (cell / cx) % cy, cell / (cx * cy)}
	var values [8]float32
	var corners [8]isomesh.V3i
	for i, off := range cornerOffsets {
		c := base.Add(off)
		corners[i] = c
		values[i] = f.At(c[0], c[1], c[2])
	}
	config := Config(&values, w.iso)
	edges := triTable[config]
	ntri := len(edges) / 3
	if ntri == 0 {
		return
	}
	if ntri > MaxTrianglesPerCell {
		panic("bug: cell emitted more triangles than allowed")
	}
	var verts [12]ms3.Vec
	var norms [12]ms3.Vec
	var done uint16
	for _, e := range edges {
		if done&(1<<e) != 0 {
			continue
		}
		done |= 1 << e
		verts[e], norms[e] = w.edgeVertex(e, &corners, &values)
	}
	slots := w.dst.Reserve(ntri)
	for t := range slots {
		slot := &slots[t]
		slot.Key = uint64(cell)<<3 | uint64(t)
		for k := 0; k < 3; k++ {
			e := edges[3*t+k]
			slot.V[k] = verts[e]
			slot.N[k] = norms[e]
		}
	}
}

// edgeVertex interpolates the iso crossing on edge e and its gradient normal.
func (w *worker) edgeVertex(e uint8, corners *[8]isomesh.V3i, values *[8]float32) (pos, normal ms3.Vec) {
	ia, ib := edgeCorners[e][0], edgeCorners[e][1]
	a, b := corners[ia], corners[ib]
	va, vb := values[ia], values[ib]
	t := (w.iso - va) / (vb - va)
	pa := ms3.MulElem(a.Vec(), w.spacing)
	pb := ms3.MulElem(b.Vec(), w.spacing)
	pos = d3.Lerp(pa, pb, t)
	ga := w.f.Gradient(a[0], a[1], a[2], w.spacing)
	gb := w.f.Gradient(b[0], b[1], b[2], w.spacing)
	normal = d3.UnitOrZero(d3.Lerp(ga, gb, t))
	return pos, normal
}
