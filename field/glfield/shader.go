package glfield

import (
	"fmt"
	"io"

	"github.com/soypat/isomesh/field"
)

// The hash and interpolation must match package field bit for bit on the
// integer side so CPU and GPU agree to float rounding.
const noiseProgram = `#shader compute
#version 430

layout(local_size_x = 1, local_size_y = 1, local_size_z = 1) in;
layout(r32f, binding = 0) uniform image3D outField;

const uint  seed        = %du;
const int   octaves     = %d;
const float frequency   = %.9g;
const float persistence = %.9g;
const float lacunarity  = %.9g;

float hash3(ivec3 p, uint s) {
	uint h = uint(p.x)*0x8da6b343u ^ uint(p.y)*0xd8163841u ^ uint(p.z)*0xcb1ab31fu ^ s*0x9e3779b9u;
	h ^= h >> 13;
	h *= 0x5bd1e995u;
	h ^= h >> 15;
	return float(h & 0xffffffu) / 16777215.0;
}

float fade(float t) { return t*t*(3.0-2.0*t); }

float valueNoise(vec3 p, uint s) {
	vec3 f = floor(p);
	ivec3 i = ivec3(f);
	vec3 t = vec3(fade(p.x-f.x), fade(p.y-f.y), fade(p.z-f.z));
	float x00 = mix(hash3(i, s),              hash3(i+ivec3(1,0,0), s), t.x);
	float x10 = mix(hash3(i+ivec3(0,1,0), s), hash3(i+ivec3(1,1,0), s), t.x);
	float x01 = mix(hash3(i+ivec3(0,0,1), s), hash3(i+ivec3(1,0,1), s), t.x);
	float x11 = mix(hash3(i+ivec3(0,1,1), s), hash3(i+ivec3(1,1,1), s), t.x);
	return mix(mix(x00, x10, t.y), mix(x01, x11, t.y), t.z);
}

void main() {
	ivec3 gid = ivec3(gl_GlobalInvocationID);
	ivec3 size = imageSize(outField);
	if (any(greaterThanEqual(gid, size))) {
		return;
	}
	vec3 u = vec3(gid) / vec3(size - ivec3(1));
	float sum = 0.0;
	float norm = 0.0;
	float amp = 1.0;
	float freq = frequency;
	for (int o = 0; o < octaves; o++) {
		sum += amp * valueNoise(u*freq, seed+uint(o));
		norm += amp;
		amp *= persistence;
		freq *= lacunarity;
	}
	imageStore(outField, gid, vec4(sum/norm, 0.0, 0.0, 0.0));
}
`

func writeProgram(w io.Writer, n field.Noise) error {
	_, err := fmt.Fprintf(w, noiseProgram, n.Seed, n.Octaves, n.Frequency, n.Persistence, n.Lacunarity)
	return err
}
