// Package config provides configuration loading and validation for the
// diffuse-particle engine, following the teacher's embedded-YAML-defaults
// pattern: a package-level Init/Cfg pair backed by a Load function that
// unmarshals embedded defaults and then an optional override file on top.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/foamkit/diffuse/vecmath"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every simulation parameter enumerated in spec.md §3.
type Config struct {
	Domain    DomainConfig    `yaml:"domain"`
	Kernel    KernelConfig    `yaml:"kernel"`
	Clamp     ClampConfig     `yaml:"clamp"`
	Birth     BirthConfig     `yaml:"birth"`
	Classify  ClassifyConfig  `yaml:"classify"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Advect    AdvectConfig    `yaml:"advect"`
	Frames    FrameConfig     `yaml:"frames"`
	IO        IOConfig        `yaml:"io"`

	// Derived holds values computed after loading; never read from YAML.
	Derived DerivedConfig `yaml:"-"`
}

// DomainConfig is the simulation's bounding box.
type DomainConfig struct {
	MinX float64 `yaml:"min_x"`
	MaxX float64 `yaml:"max_x"`
	MinY float64 `yaml:"min_y"`
	MaxY float64 `yaml:"max_y"`
	MinZ float64 `yaml:"min_z"`
	MaxZ float64 `yaml:"max_z"`
}

// KernelConfig holds the SPH smoothing length and particle mass.
type KernelConfig struct {
	H    float64 `yaml:"h"` // <=0 triggers the bounding-box fallback, see ResolveKernelRadius
	Mass float64 `yaml:"mass"`
}

// ClampConfig holds the three φ clamp windows.
type ClampConfig struct {
	MinTA float64 `yaml:"min_ta"`
	MaxTA float64 `yaml:"max_ta"`
	MinWC float64 `yaml:"min_wc"`
	MaxWC float64 `yaml:"max_wc"`
	MinK  float64 `yaml:"min_k"`
	MaxK  float64 `yaml:"max_k"`
}

// BirthConfig holds the birth-rate coefficients.
type BirthConfig struct {
	KTA float64 `yaml:"kta"`
	KWC float64 `yaml:"kwc"`
}

// ClassifyConfig holds the density thresholds separating spray/foam/bubble.
type ClassifyConfig struct {
	Spray   float64 `yaml:"spray"`
	Bubbles float64 `yaml:"bubbles"`
}

// LifecycleConfig holds the lifetime scale for newborn TTL.
type LifecycleConfig struct {
	Lifetime int `yaml:"lifetime"`
}

// AdvectConfig holds buoyancy/drag coefficients and gravity.
type AdvectConfig struct {
	KB      float64 `yaml:"kb"`
	KD      float64 `yaml:"kd"`
	Gravity float64 `yaml:"gravity"`
}

// TimestepEntry marks the frame from which a given tout applies.
type TimestepEntry struct {
	NStep int     `yaml:"nstep"`
	TOut  float64 `yaml:"tout"`
}

// FrameConfig holds the frame range and timestep schedule.
type FrameConfig struct {
	Start     int             `yaml:"start"`
	End       int             `yaml:"end"`
	PadWidth  int             `yaml:"pad_width"`
	Timesteps []TimestepEntry `yaml:"timesteps"`
}

// IOConfig holds file path templates and output toggles.
type IOConfig struct {
	DataPath       string `yaml:"data_path"`
	FilePrefix     string `yaml:"file_prefix"`
	OutputPath     string `yaml:"output_path"`
	OutputPrefix   string `yaml:"output_prefix"`
	TextFiles      bool   `yaml:"text_files"`
	VTKFiles       bool   `yaml:"vtk_files"`
	VTKDiffuseData bool   `yaml:"vtk_diffuse_data"`
	VTKFluidData   bool   `yaml:"vtk_fluid_data"`
}

// DerivedConfig holds values computed after loading.
type DerivedConfig struct {
	DomainMin vecmath.Vec
	DomainMax vecmath.Vec
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file on top of the embedded
// defaults, validates it, and computes derived values. If path is empty,
// only the embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()
	return cfg, nil
}

// Validate rejects a configuration that would make φ divide by zero, that
// has an empty or disordered timestep schedule, or that inverts the spray
// and bubble thresholds, per spec.md §7.
func (c *Config) Validate() error {
	windows := []struct {
		name       string
		tmin, tmax float64
	}{
		{"clamp.min_ta/max_ta", c.Clamp.MinTA, c.Clamp.MaxTA},
		{"clamp.min_wc/max_wc", c.Clamp.MinWC, c.Clamp.MaxWC},
		{"clamp.min_k/max_k", c.Clamp.MinK, c.Clamp.MaxK},
	}
	for _, w := range windows {
		if w.tmax <= w.tmin {
			return fmt.Errorf("config: %s: tmax (%v) must be greater than tmin (%v)", w.name, w.tmax, w.tmin)
		}
	}

	if c.Classify.Spray >= c.Classify.Bubbles {
		return fmt.Errorf("config: classify.spray (%v) must be less than classify.bubbles (%v)", c.Classify.Spray, c.Classify.Bubbles)
	}

	if c.Frames.Start > c.Frames.End {
		return fmt.Errorf("config: frames.start (%d) must be <= frames.end (%d)", c.Frames.Start, c.Frames.End)
	}

	if len(c.Frames.Timesteps) == 0 {
		return fmt.Errorf("config: frames.timesteps must not be empty")
	}
	for i := 1; i < len(c.Frames.Timesteps); i++ {
		if c.Frames.Timesteps[i].NStep <= c.Frames.Timesteps[i-1].NStep {
			return fmt.Errorf("config: frames.timesteps must be sorted by strictly increasing nstep")
		}
	}

	if c.Domain.MaxX <= c.Domain.MinX || c.Domain.MaxY <= c.Domain.MinY || c.Domain.MaxZ <= c.Domain.MinZ {
		return fmt.Errorf("config: domain box must have positive extent on every axis")
	}

	return nil
}

func (c *Config) computeDerived() {
	c.Derived.DomainMin = vecmath.Vec{X: c.Domain.MinX, Y: c.Domain.MinY, Z: c.Domain.MinZ}
	c.Derived.DomainMax = vecmath.Vec{X: c.Domain.MaxX, Y: c.Domain.MaxY, Z: c.Domain.MaxZ}
}

// ResolveKernelRadius returns the configured kernel radius, or — if none
// was supplied (Kernel.H <= 0) — a bounding-box-derived fallback: 1.3 times
// the cube root of the domain volume per particle for n particles (1.0 when
// n <= 0). The driver calls it once per loaded frame with that frame's
// particle count (see DESIGN.md).
func (c *Config) ResolveKernelRadius(n int) float64 {
	if c.Kernel.H > 0 {
		return c.Kernel.H
	}
	if n <= 0 {
		return 1.0
	}
	volume := (c.Domain.MaxX - c.Domain.MinX) * (c.Domain.MaxY - c.Domain.MinY) * (c.Domain.MaxZ - c.Domain.MinZ)
	spacing := math.Cbrt(volume / float64(n))
	return spacing * 1.3
}

// TimestepFor advances idx past any schedule entries whose nstep has been
// passed and returns the tout that applies at frame nstep, mirroring the
// cursor advance in spec.md §4.8.
func (c *Config) TimestepFor(idx int, nstep int) (float64, int) {
	ts := c.Frames.Timesteps
	for idx+1 < len(ts) && nstep > ts[idx+1].NStep {
		idx++
	}
	return ts[idx].TOut, idx
}

// WriteYAML writes the configuration to a YAML file, for reproducing a run.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
