package field

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/isomesh"
)

// Noise generates fractal value noise (fBm) in [0,1]. The noise is sampled at
// the normalized grid coordinate so the same parameters produce the same
// pattern regardless of extent.
type Noise struct {
	Seed    uint32
	Octaves int
	// Frequency is the lattice frequency of the first octave over the unit cube.
	Frequency float32
	// Persistence scales the amplitude of each successive octave.
	Persistence float32
	// Lacunarity scales the frequency of each successive octave.
	Lacunarity float32
}

// DefaultNoise returns the noise parameters used when none are configured.
func DefaultNoise() Noise {
	return Noise{
		Seed:        1,
		Octaves:     4,
		Frequency:   4,
		Persistence: 0.5,
		Lacunarity:  2,
	}
}

// Validate checks the noise parameters.
func (n Noise) Validate() error {
	switch {
	case n.Octaves < 1 || n.Octaves > 16:
		return fmt.Errorf("noise octaves %d out of range [1,16]: %w", n.Octaves, isomesh.ErrConfig)
	case !(n.Frequency > 0) || math32.IsInf(n.Frequency, 0):
		return fmt.Errorf("noise frequency %g must be positive: %w", n.Frequency, isomesh.ErrConfig)
	case !(n.Persistence > 0) || math32.IsInf(n.Persistence, 0):
		return fmt.Errorf("noise persistence %g must be positive: %w", n.Persistence, isomesh.ErrConfig)
	case !(n.Lacunarity > 0) || math32.IsInf(n.Lacunarity, 0):
		return fmt.Errorf("noise lacunarity %g must be positive: %w", n.Lacunarity, isomesh.ErrConfig)
	}
	return nil
}

// Generate fills dst with noise. extent does not affect the result.
func (n Noise) Generate(dst *Field, extent ms3.Vec) error {
	if err := n.Validate(); err != nil {
		return err
	}
	i := 0
	for z := 0; z < dst.NZ; z++ {
		for y := 0; y < dst.NY; y++ {
			for x := 0; x < dst.NX; x++ {
				dst.Data[i] = n.Sample(dst.normalized(x, y, z))
				i++
			}
		}
	}
	return nil
}

// Sample evaluates the fBm at normalized coordinate u.
func (n Noise) Sample(u ms3.Vec) float32 {
	var sum, norm float32
	amp := float32(1)
	freq := n.Frequency
	for o := 0; o < n.Octaves; o++ {
		sum += amp * valueNoise(ms3.Scale(freq, u), n.Seed+uint32(o))
		norm += amp
		amp *= n.Persistence
		freq *= n.Lacunarity
	}
	return sum / norm
}

// valueNoise trilinearly interpolates hashed lattice values with a smoothstep fade.
func valueNoise(p ms3.Vec, seed uint32) float32 {
	fx, fy, fz := math32.Floor(p.X), math32.Floor(p.Y), math32.Floor(p.Z)
	ix, iy, iz := int32(fx), int32(fy), int32(fz)
	tx, ty, tz := fade(p.X-fx), fade(p.Y-fy), fade(p.Z-fz)

	c000 := hash3(ix, iy, iz, seed)
	c100 := hash3(ix+1, iy, iz, seed)
	c010 := hash3(ix, iy+1, iz, seed)
	c110 := hash3(ix+1, iy+1, iz, seed)
	c001 := hash3(ix, iy, iz+1, seed)
	c101 := hash3(ix+1, iy, iz+1, seed)
	c011 := hash3(ix, iy+1, iz+1, seed)
	c111 := hash3(ix+1, iy+1, iz+1, seed)

	x00 := lerp(c000, c100, tx)
	x10 := lerp(c010, c110, tx)
	x01 := lerp(c001, c101, tx)
	x11 := lerp(c011, c111, tx)
	y0 := lerp(x00, x10, ty)
	y1 := lerp(x01, x11, ty)
	return lerp(y0, y1, tz)
}

// hash3 maps a lattice point to [0,1]. Must stay in sync with the GLSL
// implementation in package glfield.
func hash3(x, y, z int32, seed uint32) float32 {
	h := uint32(x)*0x8da6b343 ^ uint32(y)*0xd8163841 ^ uint32(z)*0xcb1ab31f ^ seed*0x9e3779b9
	h ^= h >> 13
	h *= 0x5bd1e995
	h ^= h >> 15
	return float32(h&0xffffff) / 0xffffff
}

func fade(t float32) float32 { return t * t * (3 - 2*t) }

func lerp(a, b, t float32) float32 { return a + t*(b-a) }
