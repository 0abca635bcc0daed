package glfield

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/isomesh/field"
)

func init() {
	runtime.LockOSThread() // For GL.
}

var glErr error

func TestMain(m *testing.M) {
	_, terminate, err := glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   "compute",
		Version: [2]int{4, 6},
		Width:   1,
		Height:  1,
	})
	if err != nil {
		glErr = err
		os.Exit(m.Run())
	}
	code := m.Run()
	terminate()
	os.Exit(code)
}

func requireGL(t *testing.T) {
	t.Helper()
	if glErr != nil {
		t.Skip("no OpenGL context:", glErr)
	}
}

func TestWriteProgram(t *testing.T) {
	var buf bytes.Buffer
	err := writeProgram(&buf, field.DefaultNoise())
	if err != nil {
		t.Fatal(err)
	}
	src := buf.String()
	if !strings.HasPrefix(src, "#shader compute\n#version 430") {
		t.Error("program missing combined shader header")
	}
	for _, want := range []string{"const uint  seed        = 1u;", "const int   octaves     = 4;", "const float persistence = 0.5;"} {
		if !strings.Contains(src, want) {
			t.Errorf("program missing %q", want)
		}
	}
	if strings.Contains(src, "%!") {
		t.Error("format verb mismatch in program")
	}
}

func TestNoiseCPUvsGPU(t *testing.T) {
	requireGL(t)
	params := field.DefaultNoise()
	gpu, err := NewNoise(params)
	if err != nil {
		t.Fatal(err)
	}
	defer gpu.Release()
	for _, dims := range [][3]int{{9, 7, 5}, {9, 7, 5}, {16, 16, 16}} {
		var cpuField, gpuField field.Field
		cpuField.Ensure(dims[0], dims[1], dims[2])
		gpuField.Ensure(dims[0], dims[1], dims[2])
		extent := ms3.Vec{X: 1, Y: 1, Z: 1}
		if err := params.Generate(&cpuField, extent); err != nil {
			t.Fatal(err)
		}
		if err := gpu.Generate(&gpuField, extent); err != nil {
			t.Fatal(err)
		}
		const tol = 1e-4
		for i, dg := range gpuField.Data {
			dc := cpuField.Data[i]
			if diff := math32.Abs(dg - dc); diff > tol {
				t.Errorf("dims=%v sample %d: cpu=%f gpu=%f (diff=%f)", dims, i, dc, dg, diff)
			}
		}
	}
	if gpu.Allocations() != 2 {
		t.Errorf("texture should be recreated only on dimension change, got %d allocations", gpu.Allocations())
	}
}

func ExampleNewNoise() {
	gpu, err := NewNoise(field.DefaultNoise())
	if err != nil {
		fmt.Println("GPU unavailable:", err)
		return
	}
	defer gpu.Release()
	var f field.Field
	f.Ensure(32, 32, 32)
	err = gpu.Generate(&f, ms3.Vec{X: 1, Y: 1, Z: 1})
	if err != nil {
		fmt.Println(err)
	}
}
