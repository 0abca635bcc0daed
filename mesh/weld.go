package mesh

import (
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

var (
	_ kdtree.Interface  = kdPoints{}
	_ kdtree.Comparable = kdPoint{}
)

// weldGroups merges exact position groups whose representatives lie within tol
// of each other. Clusters grow greedily from the lowest unassigned group id so
// the result does not depend on tree layout.
func weldGroups(verts []ms3.Vec, groups []int32, ngroups int, tol float32) ([]int32, int) {
	pts := make(kdPoints, ngroups)
	for v, g := range groups {
		pts[g] = kdPoint{pos: verts[v], group: g}
	}
	// Tree construction reorders its input.
	tree := kdtree.New(append(kdPoints(nil), pts...), false)
	cluster := make([]int32, ngroups)
	for i := range cluster {
		cluster[i] = -1
	}
	tol2 := float64(tol) * float64(tol)
	nclusters := int32(0)
	for g := range pts {
		if cluster[g] >= 0 {
			continue
		}
		id := nclusters
		nclusters++
		cluster[g] = id
		keeper := kdtree.NewDistKeeper(tol2)
		tree.NearestSet(keeper, pts[g])
		for _, c := range keeper.Heap {
			if c.Comparable == nil {
				continue // Keeper sentinel.
			}
			near := c.Comparable.(kdPoint)
			if cluster[near.group] < 0 {
				cluster[near.group] = id
			}
		}
	}
	welded := make([]int32, len(groups))
	for v, g := range groups {
		welded[v] = cluster[g]
	}
	return welded, int(nclusters)
}

type kdPoints []kdPoint

type kdPoint struct {
	pos   ms3.Vec
	group int32
}

func (k kdPoints) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdPoints) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdPoints) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), points: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdPoints) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a kdPoint) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return kdComp(a, b.(kdPoint), int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdPoint) Distance(b kdtree.Comparable) float64 {
	d := ms3.Sub(a.pos, b.(kdPoint).pos)
	return float64(d.X)*float64(d.X) + float64(d.Y)*float64(d.Y) + float64(d.Z)*float64(d.Z)
}

// c = a.dim - b.dim
func kdComp(a, b kdPoint, dim int) float64 {
	switch dim {
	case 0:
		return float64(a.pos.X) - float64(b.pos.X)
	case 1:
		return float64(a.pos.Y) - float64(b.pos.Y)
	default:
		return float64(a.pos.Z) - float64(b.pos.Z)
	}
}

type kdPlane struct {
	dim    int
	points kdPoints
}

func (p kdPlane) Less(i, j int) bool {
	return kdComp(p.points[i], p.points[j], p.dim) < 0
}

func (p kdPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}

func (p kdPlane) Len() int { return len(p.points) }

func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
