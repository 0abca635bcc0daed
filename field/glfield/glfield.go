// Package glfield evaluates procedural fields on the GPU with OpenGL compute shaders.
// All calls must be made from the goroutine that owns the current GL context.
package glfield

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-gl/gl/all-core/gl"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/isomesh/field"
)

var _ field.Generator = (*Noise)(nil)

// Noise generates the same fractal value noise as field.Noise with a compute
// shader writing a 3D R32F texture. The texture is kept between calls and is
// only recreated when the field dimensions change.
type Noise struct {
	params field.Noise
	prog   glgl.Program
	tex    uint32
	dims   [3]int
	allocs int
}

// NewNoise compiles the compute program for the noise parameters n.
func NewNoise(n field.Noise) (*Noise, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	var source bytes.Buffer
	err := writeProgram(&source, n)
	if err != nil {
		return nil, err
	}
	combinedSource, err := glgl.ParseCombined(&source)
	if err != nil {
		return nil, err
	}
	prog, err := glgl.CompileProgram(combinedSource)
	if err != nil {
		return nil, errors.New(string(combinedSource.Compute) + "\n" + err.Error())
	}
	return &Noise{params: n, prog: prog}, nil
}

// Params returns the noise parameters the program was compiled with.
func (n *Noise) Params() field.Noise { return n.params }

// Allocations returns how many times the field texture has been created.
func (n *Noise) Allocations() int { return n.allocs }

// Generate evaluates the noise on the GPU and reads the result back into dst.
func (n *Noise) Generate(dst *field.Field, _ ms3.Vec) error {
	if len(dst.Data) == 0 {
		return errors.New("glfield: empty destination field")
	}
	err := n.ensureTexture(dst.NX, dst.NY, dst.NZ)
	if err != nil {
		return err
	}
	n.prog.Bind()
	gl.BindImageTexture(0, n.tex, 0, true, 0, gl.WRITE_ONLY, gl.R32F)
	err = n.prog.RunCompute(dst.NX, dst.NY, dst.NZ)
	if err != nil {
		return err
	}
	gl.MemoryBarrier(gl.TEXTURE_UPDATE_BARRIER_BIT | gl.SHADER_IMAGE_ACCESS_BARRIER_BIT)
	gl.BindTexture(gl.TEXTURE_3D, n.tex)
	gl.GetTexImage(gl.TEXTURE_3D, 0, gl.RED, gl.FLOAT, gl.Ptr(&dst.Data[0]))
	return glError("reading field texture")
}

// ensureTexture creates the 3D field texture. An existing texture of another
// size is deleted before the new one is allocated.
func (n *Noise) ensureTexture(nx, ny, nz int) error {
	dims := [3]int{nx, ny, nz}
	if n.tex != 0 && n.dims == dims {
		return nil
	}
	n.Release()
	gl.GenTextures(1, &n.tex)
	gl.BindTexture(gl.TEXTURE_3D, n.tex)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage3D(gl.TEXTURE_3D, 0, gl.R32F, int32(nx), int32(ny), int32(nz), 0, gl.RED, gl.FLOAT, nil)
	if err := glError("allocating field texture"); err != nil {
		n.Release()
		return err
	}
	n.dims = dims
	n.allocs++
	return nil
}

// Release deletes the field texture.
func (n *Noise) Release() {
	if n.tex != 0 {
		gl.DeleteTextures(1, &n.tex)
		n.tex = 0
	}
	n.dims = [3]int{}
}

func glError(action string) error {
	code := gl.GetError()
	switch code {
	case gl.NO_ERROR:
		return nil
	case gl.OUT_OF_MEMORY:
		return fmt.Errorf("glfield: %s: GPU out of memory", action)
	}
	return fmt.Errorf("glfield: %s: GL error 0x%x", action, code)
}
