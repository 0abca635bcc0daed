package pipeline

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGenerator struct {
	field.Generator
	calls int
}

func (g *countingGenerator) Generate(dst *field.Field, extent ms3.Vec) error {
	g.calls++
	return g.Generator.Generate(dst, extent)
}

func newController(t *testing.T) (*Controller, *countingGenerator, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	gen := &countingGenerator{Generator: field.DefaultNoise()}
	c := &Controller{
		Procedural: gen,
		Workers:    4,
		Log:        slog.New(slog.NewTextHandler(&logs, nil)),
	}
	return c, gen, &logs
}

func baseParams() isomesh.Params {
	return isomesh.Params{
		Dims:     ms3.Vec{X: 12, Y: 10, Z: 8},
		Extent:   ms3.Vec{X: 2, Y: 2, Z: 1},
		IsoLevel: 0.5,
	}
}

func TestDirtyCheck(t *testing.T) {
	c, gen, _ := newController(t)
	p := baseParams()
	ran, err := c.Update(p)
	require.NoError(t, err)
	assert.True(t, ran, "first update must run")
	ran, err = c.Update(p)
	require.NoError(t, err)
	assert.False(t, ran, "unchanged parameters must not run")
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, c.Runs())

	p.IsoLevel = 0.45
	ran, err = c.Update(p)
	require.NoError(t, err)
	assert.True(t, ran)
	ran, err = c.Update(p)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, 2, gen.calls)
	assert.Equal(t, 2, c.Runs())

	p.Debug = true
	ran, err = c.Update(p)
	require.NoError(t, err)
	assert.True(t, ran, "debug toggle is a tracked parameter")
	assert.Len(t, c.DebugPoints(), 12*10*8)

	c.Invalidate()
	ran, err = c.Update(p)
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestResourceReuse(t *testing.T) {
	c, _, _ := newController(t)
	p := baseParams()
	_, err := c.Update(p)
	require.NoError(t, err)
	p.IsoLevel = 0.6
	p.Extent.X = 3
	_, err = c.Update(p)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Allocations(), "storage must be reused when dims are unchanged")

	p.Dims.X = 16
	_, err = c.Update(p)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Allocations())
	c.Close()
	last := c.Mesh()
	assert.False(t, last.IsEmpty(), "close keeps last mesh")
}

func TestIdempotence(t *testing.T) {
	p := baseParams()
	c1, _, _ := newController(t)
	c2, _, _ := newController(t)
	c2.Workers = 1
	_, err := c1.Update(p)
	require.NoError(t, err)
	_, err = c2.Update(p)
	require.NoError(t, err)
	m1, m2 := c1.Mesh(), c2.Mesh()
	require.False(t, m1.IsEmpty())
	assert.Equal(t, m1.Vertices, m2.Vertices)
	assert.Equal(t, m1.Normals, m2.Normals)
	assert.Equal(t, m1.Indices, m2.Indices)
}

func TestConservationAndNormals(t *testing.T) {
	c, _, logs := newController(t)
	p := baseParams()
	_, err := c.Update(p)
	require.NoError(t, err)
	m := c.Mesh()
	n := c.TriangleCount()
	assert.LessOrEqual(t, n, p.Capacity())
	assert.Len(t, m.Indices, 3*n)
	for i, nrm := range m.Normals {
		l := ms3.Norm(nrm)
		if l != 0 {
			assert.InDelta(t, 1, l, 1e-5, "normal %d", i)
		}
	}
	assert.Contains(t, logs.String(), "isosurface extracted")
	assert.Contains(t, logs.String(), "triangles=")
	assert.Nil(t, c.DebugPoints())
}

func TestInvalidParamsKeepMesh(t *testing.T) {
	c, gen, _ := newController(t)
	p := baseParams()
	_, err := c.Update(p)
	require.NoError(t, err)
	before := c.Mesh()

	bad := p
	bad.Dims.Y = 1
	ran, err := c.Update(bad)
	assert.False(t, ran)
	assert.True(t, errors.Is(err, isomesh.ErrConfig))
	assert.Equal(t, 1, gen.calls, "invalid params must not reach the generator")
	assert.Equal(t, before, c.Mesh())

	bad = p
	bad.Source = isomesh.SourceShape
	bad.Shape = "teapot"
	_, err = c.Update(bad)
	assert.ErrorIs(t, err, isomesh.ErrConfig)
	assert.Equal(t, 1, c.Allocations())

	// Grid size products that would wrap int64 are rejected before allocation.
	bad = p
	bad.Dims = ms3.Vec{X: 2097153, Y: 2097153, Z: 2097153}
	require.NotPanics(t, func() { _, err = c.Update(bad) })
	assert.ErrorIs(t, err, isomesh.ErrConfig)
	assert.Equal(t, 1, c.Allocations())
	assert.Equal(t, before, c.Mesh())
}

func TestLiteralSource(t *testing.T) {
	c, gen, _ := newController(t)
	p := isomesh.Params{
		Dims:     ms3.Vec{X: 2, Y: 2, Z: 2},
		Extent:   ms3.Vec{X: 1, Y: 1, Z: 1},
		IsoLevel: 0.5,
		Source:   isomesh.SourceLiteral,
		Literal:  "0000",
		Debug:    true,
	}
	_, err := c.Update(p)
	require.NoError(t, err)
	assert.Equal(t, 0, gen.calls)
	assert.Equal(t, 2, c.TriangleCount())
	pts := c.DebugPoints()
	require.Len(t, pts, 8)
	for i, pt := range pts {
		assert.Equal(t, i < 4, pt.Inside, "point %d", i)
	}

	p.Literal = "11"
	_, err = c.Update(p)
	require.NoError(t, err)
	assert.Equal(t, 0, c.TriangleCount(), "uniform literal field is degenerate")
}

func TestShapeSource(t *testing.T) {
	c, _, _ := newController(t)
	c.Assembler.WeldTolerance = 1e-6
	p := isomesh.Params{
		Dims:   ms3.Vec{X: 16, Y: 16, Z: 16},
		Extent: ms3.Vec{X: 1, Y: 1, Z: 1},
		Source: isomesh.SourceShape,
		Shape:  "drilled-box",
	}
	_, err := c.Update(p)
	require.NoError(t, err)
	m := c.Mesh()
	bb := m.Bounds()
	assert.Less(t, bb.Max.X, float32(1))
	assert.Greater(t, bb.Min.X, float32(0))
}
