// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Fluid     FluidConfig     `yaml:"fluid"`
	Input     InputConfig     `yaml:"input"`
	Ball      BallConfig      `yaml:"ball"`
	Emitters  []EmitterConfig `yaml:"emitters"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	TargetFPS int  `yaml:"target_fps"`
	Resizable bool `yaml:"resizable"`
}

// FluidConfig is everything the fluid engine reads. It is passed to the
// engine by value; the engine never reaches for the global config.
type FluidConfig struct {
	SimResolution       int     `yaml:"sim_resolution"`       // Velocity grid, shorter side
	DyeResolution       int     `yaml:"dye_resolution"`       // Dye grid, shorter side
	CaptureResolution   int     `yaml:"capture_resolution"`   // Screenshot size, shorter side
	DensityDissipation  float64 `yaml:"density_dissipation"`  // Dye fade per second
	VelocityDissipation float64 `yaml:"velocity_dissipation"` // Velocity fade per second
	Pressure            float64 `yaml:"pressure"`             // Pressure carried into the next frame
	PressureIterations  int     `yaml:"pressure_iterations"`  // Jacobi sweeps per step
	Curl                float64 `yaml:"curl"`                 // Vorticity confinement strength
	SplatRadius         float64 `yaml:"splat_radius"`         // Gaussian radius, percent of the view
	Shading             bool    `yaml:"shading"`
	BackColor           Color   `yaml:"back_color"`
	Transparent         bool    `yaml:"transparent"` // Checkerboard behind the fluid on screen

	Bloom   BloomConfig   `yaml:"bloom"`
	Sunrays SunraysConfig `yaml:"sunrays"`
}

// BloomConfig holds glow post-processing parameters.
type BloomConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Iterations int     `yaml:"iterations"` // Max downsample levels
	Resolution int     `yaml:"resolution"`
	Intensity  float64 `yaml:"intensity"`
	Threshold  float64 `yaml:"threshold"` // Brightness where glow starts
	SoftKnee   float64 `yaml:"soft_knee"` // Width of the threshold transition, 0..1
}

// SunraysConfig holds light shaft parameters.
type SunraysConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Resolution int     `yaml:"resolution"`
	Weight     float64 `yaml:"weight"`
}

// InputConfig holds pointer and splat generation parameters.
type InputConfig struct {
	SplatForce       float64 `yaml:"splat_force"`        // Drag delta multiplier
	Colorful         bool    `yaml:"colorful"`           // Cycle pointer colours
	ColorUpdateSpeed float64 `yaml:"color_update_speed"` // Colour changes per second
	BurstMin         int     `yaml:"burst_min"`          // Random splats per burst, lower bound
	BurstMax         int     `yaml:"burst_max"`          // Random splats per burst, upper bound (exclusive)
}

// BallConfig holds the fluid-carried ball parameters.
type BallConfig struct {
	Enabled bool    `yaml:"enabled"`
	X       float64 `yaml:"x"`      // Start position, normalized
	Y       float64 `yaml:"y"`      // Start position, normalized
	Radius  float64 `yaml:"radius"` // Fraction of screen height
	Focus   bool    `yaml:"focus"`  // Ball is the sunrays focal point
	Goals   bool    `yaml:"goals"`  // Goal mouths on the left and right edges
}

// EmitterConfig is a fixed pressure source (positive strength) or drain
// (negative strength).
type EmitterConfig struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Strength float64 `yaml:"strength"`
	Hue      float64 `yaml:"hue"` // Dye hue in degrees for sources
	Radius   float64 `yaml:"radius"`
}

// Color is an 8-bit RGB triple.
type Color struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// Floats returns the colour in 0..1.
func (c Color) Floats() (r, g, b float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds between perf log lines
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Frames in the rolling average
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	Aspect    float32 // Screen.Width / Screen.Height
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
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

// Set replaces the global configuration, e.g. after a hot reload.
func Set(cfg *Config) { global = cfg }

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.Aspect = 1
	if c.Screen.Height > 0 {
		c.Derived.Aspect = c.Derived.ScreenW32 / c.Derived.ScreenH32
	}

	for i := range c.Emitters {
		if c.Emitters[i].Radius == 0 {
			c.Emitters[i].Radius = 100
		}
	}
}

// Validate reports every out-of-range value, each wrapping ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, invalid("screen size %dx%d", c.Screen.Width, c.Screen.Height))
	}
	if c.Input.BurstMax < c.Input.BurstMin || c.Input.BurstMin < 0 {
		errs = append(errs, invalid("input burst range [%d, %d)", c.Input.BurstMin, c.Input.BurstMax))
	}
	if c.Ball.Radius < 0 {
		errs = append(errs, invalid("ball.radius %v", c.Ball.Radius))
	}
	if c.Telemetry.PerfCollectorWindow <= 0 {
		errs = append(errs, invalid("telemetry.perf_collector_window %d", c.Telemetry.PerfCollectorWindow))
	}
	if err := c.Fluid.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate checks the fluid parameters.
func (f FluidConfig) Validate() error {
	var errs []error
	positive := []struct {
		name string
		v    int
	}{
		{"fluid.sim_resolution", f.SimResolution},
		{"fluid.dye_resolution", f.DyeResolution},
		{"fluid.capture_resolution", f.CaptureResolution},
		{"fluid.pressure_iterations", f.PressureIterations},
		{"fluid.bloom.iterations", f.Bloom.Iterations},
		{"fluid.bloom.resolution", f.Bloom.Resolution},
		{"fluid.sunrays.resolution", f.Sunrays.Resolution},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, invalid("%s must be positive, got %d", p.name, p.v))
		}
	}
	if f.DensityDissipation < 0 || f.VelocityDissipation < 0 {
		errs = append(errs, invalid("dissipation must not be negative"))
	}
	if f.Pressure < 0 || f.Pressure > 1 {
		errs = append(errs, invalid("fluid.pressure %v outside [0, 1]", f.Pressure))
	}
	if f.SplatRadius <= 0 {
		errs = append(errs, invalid("fluid.splat_radius must be positive, got %v", f.SplatRadius))
	}
	if f.Bloom.SoftKnee < 0 || f.Bloom.SoftKnee > 1 {
		errs = append(errs, invalid("fluid.bloom.soft_knee %v outside [0, 1]", f.Bloom.SoftKnee))
	}
	return errors.Join(errs...)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

// WriteYAML writes the configuration to a YAML file.
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
