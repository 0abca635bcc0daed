// Package config loads extraction settings from TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/isomesh"
	"github.com/soypat/isomesh/field"
)

// Config is the on-disk representation of an extraction run.
type Config struct {
	Grid     [3]int         `toml:"grid"`
	Extent   [3]float32     `toml:"extent"`
	IsoLevel float32        `toml:"iso_level"`
	Source   isomesh.Source `toml:"source"`
	Literal  string         `toml:"literal,omitempty"`
	Shape    string         `toml:"shape,omitempty"`
	Debug    bool           `toml:"debug"`
	// Workers is the number of marching goroutines. Zero uses all CPUs.
	Workers int `toml:"workers"`
	// WeldTolerance enables tolerance based normal averaging when positive.
	WeldTolerance float32 `toml:"weld_tolerance"`
	// GPU evaluates procedural noise with an OpenGL compute shader.
	GPU      bool   `toml:"gpu"`
	LogLevel string `toml:"log_level"`
	Noise    Noise  `toml:"noise"`
}

// Noise holds the procedural field settings.
type Noise struct {
	Seed        uint32  `toml:"seed"`
	Octaves     int     `toml:"octaves"`
	Frequency   float32 `toml:"frequency"`
	Persistence float32 `toml:"persistence"`
	Lacunarity  float32 `toml:"lacunarity"`
}

// Default returns the configuration used for keys absent from a file.
func Default() Config {
	n := field.DefaultNoise()
	return Config{
		Grid:     [3]int{32, 32, 32},
		Extent:   [3]float32{10, 10, 10},
		IsoLevel: 0.5,
		Source:   isomesh.SourceProcedural,
		LogLevel: "info",
		Noise: Noise{
			Seed:        n.Seed,
			Octaves:     n.Octaves,
			Frequency:   n.Frequency,
			Persistence: n.Persistence,
			Lacunarity:  n.Lacunarity,
		},
	}
}

// Load reads and validates the TOML file at path.
func Load(path string) (Config, error) {
	fp, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer fp.Close()
	cfg, err := Decode(fp)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a TOML document on top of Default and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	err := dec.Decode(&cfg)
	if err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", isomesh.ErrConfig, strict.String())
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("%w: line %d column %d: %s", isomesh.ErrConfig, row, col, derr.Error())
		}
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (cfg Config) Encode(w io.Writer) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Validate checks the configuration as a whole.
func (cfg Config) Validate() error {
	// Checked before Params converts the grid to float32, which rounds above 1<<24.
	for i, n := range cfg.Grid {
		if n > isomesh.MaxGridAxis {
			return fmt.Errorf("grid[%d] = %d exceeds %d: %w", i, n, isomesh.MaxGridAxis, isomesh.ErrConfig)
		}
	}
	if err := cfg.Params().Validate(); err != nil {
		return err
	}
	if cfg.Source == isomesh.SourceShape {
		if _, err := field.LookupShape(cfg.Shape); err != nil {
			return err
		}
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("negative worker count %d: %w", cfg.Workers, isomesh.ErrConfig)
	}
	if cfg.WeldTolerance < 0 {
		return fmt.Errorf("negative weld tolerance %g: %w", cfg.WeldTolerance, isomesh.ErrConfig)
	}
	if _, err := cfg.Level(); err != nil {
		return err
	}
	return cfg.NoiseGenerator().Validate()
}

// Params returns the extraction parameters of the configuration.
func (cfg Config) Params() isomesh.Params {
	return isomesh.Params{
		Dims:     ms3.Vec{X: float32(cfg.Grid[0]), Y: float32(cfg.Grid[1]), Z: float32(cfg.Grid[2])},
		Extent:   ms3.Vec{X: cfg.Extent[0], Y: cfg.Extent[1], Z: cfg.Extent[2]},
		IsoLevel: cfg.IsoLevel,
		Source:   cfg.Source,
		Literal:  cfg.Literal,
		Shape:    cfg.Shape,
		Debug:    cfg.Debug,
	}
}

// NoiseGenerator returns the CPU procedural generator described by the configuration.
func (cfg Config) NoiseGenerator() field.Noise {
	return field.Noise{
		Seed:        cfg.Noise.Seed,
		Octaves:     cfg.Noise.Octaves,
		Frequency:   cfg.Noise.Frequency,
		Persistence: cfg.Noise.Persistence,
		Lacunarity:  cfg.Noise.Lacunarity,
	}
}

// Level returns the slog level named by LogLevel.
func (cfg Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", cfg.LogLevel, isomesh.ErrConfig)
	}
	return lvl, nil
}
