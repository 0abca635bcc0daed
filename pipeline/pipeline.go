// Package pipeline drives the field generation, marching and assembly stages
// and skips work when the parameters have not changed since the last run.
package pipeline

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/field"
	"github.com/soypat/isomesh/internal/arena"
	"github.com/soypat/isomesh/march"
	"github.com/soypat/isomesh/mesh"
)

// Controller runs the iso-surface extraction chain. It keeps a snapshot of
// the parameters of the last successful run and the mesh it produced.
// Controller methods may be called from several goroutines but runs never overlap.
type Controller struct {
	// Procedural generates the field for isomesh.SourceProcedural. Defaults
	// to field.DefaultNoise on the CPU.
	Procedural field.Generator
	Assembler  mesh.Assembler
	// Workers is the number of marching goroutines. Zero uses GOMAXPROCS.
	Workers int
	// Log receives run diagnostics. Defaults to slog.Default.
	Log *slog.Logger

	mu     sync.Mutex
	last   isomesh.Params
	hasRun bool
	res    resources
	mesh   mesh.Mesh
	points []isomesh.GridPoint
	runs   int
	tris   []isomesh.Triangle
}

// resources is the storage owned by the controller between runs.
type resources struct {
	field  field.Field
	slots  *arena.Buffer[march.Slot]
	allocs int
}

// ensure shapes the field and triangle arena for dims. Storage is only
// recreated on a dimension change and old storage is released first.
func (r *resources) ensure(dims isomesh.V3i) {
	if r.field.Ensure(dims[0], dims[1], dims[2]) || r.slots == nil {
		if r.slots != nil {
			r.slots.Release()
		}
		r.slots = arena.New[march.Slot](march.Capacity(dims))
		r.allocs++
		return
	}
	r.slots.Reset()
}

func (r *resources) release() {
	r.field.Release()
	if r.slots != nil {
		r.slots.Release()
		r.slots = nil
	}
}

// Update runs the pipeline for p if p differs from the parameters of the
// last successful run, or if no run has succeeded yet. It reports whether a
// run took place. Invalid parameters return an error wrapping
// isomesh.ErrConfig before any resource is touched. On error the previous
// mesh is kept.
func (c *Controller) Update(p isomesh.Params) (ran bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasRun && p == c.last {
		return false, nil
	}
	gen, err := c.generator(p)
	if err != nil {
		return false, err
	}
	err = c.run(p, gen)
	if err != nil {
		return false, err
	}
	c.last = p
	c.hasRun = true
	return true, nil
}

// Invalidate forces the next Update to run regardless of its parameters.
// Used when a generator's own settings change.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	c.hasRun = false
	c.mu.Unlock()
}

func (c *Controller) generator(p isomesh.Params) (field.Generator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch p.Source {
	case isomesh.SourceLiteral:
		return field.Literal{Digits: p.Literal}, nil
	case isomesh.SourceShape:
		return field.LookupShape(p.Shape)
	}
	if c.Procedural != nil {
		return c.Procedural, nil
	}
	return field.DefaultNoise(), nil
}

func (c *Controller) run(p isomesh.Params, gen field.Generator) error {
	log := c.logger()
	start := time.Now()
	dims := p.Grid()
	c.res.ensure(dims)
	err := gen.Generate(&c.res.field, p.Extent)
	if err != nil {
		return fmt.Errorf("generating %s field: %w", p.Source, err)
	}
	job := march.Dispatch(c.res.slots, &c.res.field, p.Spacing(), p.IsoLevel, c.Workers)
	n := job.Count()
	c.tris = job.Readback(c.tris[:0])
	c.mesh = c.Assembler.Assemble(c.tris, n)
	c.points = nil
	if p.Debug {
		c.points = isomesh.GridPoints(make([]isomesh.GridPoint, 0, dims.Prod()), c.res.field.Data, dims, p.Extent, p.IsoLevel)
	}
	c.runs++
	log.Info("isosurface extracted",
		slog.String("source", p.Source.String()),
		slog.Int("nx", dims[0]), slog.Int("ny", dims[1]), slog.Int("nz", dims[2]),
		slog.Float64("iso", float64(p.IsoLevel)),
		slog.Int("triangles", n),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (c *Controller) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

// Mesh returns the mesh of the last successful run. The mesh must not be modified.
func (c *Controller) Mesh() mesh.Mesh {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mesh
}

// TriangleCount returns the triangle count recovered on the last successful run.
func (c *Controller) TriangleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mesh.TriangleCount()
}

// DebugPoints returns the sampled grid points of the last successful run if
// it had debug visualization enabled, otherwise nil.
func (c *Controller) DebugPoints() []isomesh.GridPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.points
}

// Runs returns the number of completed pipeline runs.
func (c *Controller) Runs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}

// Allocations returns how many times field and triangle storage was created.
func (c *Controller) Allocations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.res.allocs
}

// Close releases all storage held by the controller. The last mesh stays valid.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.res.release()
	c.hasRun = false
}
