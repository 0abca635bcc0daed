package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/muesli/termenv"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/config"
	"github.com/soypat/isomesh/field/glfield"
	"github.com/soypat/isomesh/internal/preview"
	"github.com/soypat/isomesh/mesh"
	"github.com/soypat/isomesh/pipeline"
)

func init() {
	runtime.LockOSThread() // For GL.
}

var (
	configPath  string
	previewPath string
	stlPath     string
	useGPU      bool
	debug       bool
)

func main() {
	flag.StringVar(&configPath, "config", "", "TOML configuration file. Defaults are used if empty")
	flag.StringVar(&previewPath, "preview", "", "Write a PNG preview of the mesh to this file")
	flag.StringVar(&stlPath, "stl", "", "Write the mesh to this file in binary STL format")
	flag.BoolVar(&useGPU, "gpu", false, "Enable GPU usage for procedural fields")
	flag.BoolVar(&debug, "debug", false, "Produce grid point debug data")
	flag.Parse()
	cfg, err := loadConfig(configPath)
	if err == nil {
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "gpu":
				cfg.GPU = useGPU
			case "debug":
				cfg.Debug = debug
			}
		})
		err = run(cfg)
	}
	switch code := exitCode(err); code {
	case 0:
	case 2:
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(code)
	default:
		log.Fatal(err)
	}
}

// loadConfig reads the configuration at path, or returns the defaults if path is empty.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// exitCode maps a run error to the process exit status. Configuration
// errors exit with 2 wherever they are detected.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, isomesh.ErrConfig):
		return 2
	}
	return 1
}

func run(cfg config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctl := &pipeline.Controller{
		Procedural: cfg.NoiseGenerator(),
		Assembler:  mesh.Assembler{WeldTolerance: cfg.WeldTolerance},
		Workers:    cfg.Workers,
		Log:        logger,
	}
	defer ctl.Close()
	if cfg.GPU && cfg.Source == isomesh.SourceProcedural {
		logger.Info("enable GPU usage")
		_, terminate, err := glgl.InitWithCurrentWindow33(glgl.WindowConfig{
			Title:   "compute",
			Version: [2]int{4, 6},
			Width:   1,
			Height:  1,
		})
		if err != nil {
			return fmt.Errorf("starting GLFW: %w", err)
		}
		defer terminate()
		gpu, err := glfield.NewNoise(cfg.NoiseGenerator())
		if err != nil {
			return err
		}
		defer gpu.Release()
		ctl.Procedural = gpu
	}

	p := cfg.Params()
	_, err = ctl.Update(p)
	if err != nil {
		return err
	}
	m := ctl.Mesh()
	printSummary(p, &m, ctl.DebugPoints())
	if stlPath != "" && !m.IsEmpty() {
		err = writeSTL(stlPath, &m)
		if err != nil {
			return err
		}
		logger.Info("wrote STL", slog.String("path", stlPath))
	}
	if previewPath != "" {
		if m.IsEmpty() {
			logger.Warn("skipping preview of empty mesh")
			return nil
		}
		err = preview.WritePNG(previewPath, m, preview.DefaultView())
		if err != nil {
			return err
		}
		logger.Info("wrote preview", slog.String("path", previewPath))
	}
	return nil
}

func writeSTL(path string, m *mesh.Mesh) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	err = mesh.WriteSTL(fp, m)
	if err != nil {
		return err
	}
	return fp.Close()
}

func printSummary(p isomesh.Params, m *mesh.Mesh, points []isomesh.GridPoint) {
	out := termenv.NewOutput(os.Stdout)
	label := func(s string) termenv.Style { return out.String(s).Bold() }
	value := func(a any) termenv.Style {
		return out.String(fmt.Sprint(a)).Foreground(out.Color("#468966"))
	}
	g := p.Grid()
	fmt.Fprintf(out, "%s %dx%dx%d over %v\n", label("grid"), g[0], g[1], g[2], p.Extent)
	fmt.Fprintf(out, "%s %s\n", label("source"), value(p.Source))
	fmt.Fprintf(out, "%s %s\n", label("triangles"), value(m.TriangleCount()))
	fmt.Fprintf(out, "%s %s\n", label("vertices"), value(m.VertexCount()))
	if !m.IsEmpty() {
		bb := m.Bounds()
		fmt.Fprintf(out, "%s %v to %v\n", label("bounds"), bb.Min, bb.Max)
	}
	if points != nil {
		inside := 0
		for _, pt := range points {
			if pt.Inside {
				inside++
			}
		}
		fmt.Fprintf(out, "%s %s of %d points inside\n", label("debug"), value(inside), len(points))
	}
}
