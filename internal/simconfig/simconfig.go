package simconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"gravity-engine/internal/bodygen"
)

// DefaultPath is the config file path, relative to the process working directory.
const DefaultPath = "config/gravity.yaml"

// Force model names accepted in Config.ForceModel.
const (
	ForceDirect    = "direct"
	ForceBarnesHut = "barneshut"
)

var (
	ErrInvalidBodyCount = errors.New("simconfig: body count must be positive")
	ErrInvalidConstant  = errors.New("simconfig: invalid constant")
)

// Config holds the numeric constants of a simulation run.
type Config struct {
	Bodies           int     `yaml:"bodies"`
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	VelocitySpan     float64 `yaml:"velocity_span"`
	BodyRadius       float64 `yaml:"body_radius"`
	Density          float64 `yaml:"density"`
	Gravity          float64 `yaml:"gravity"`
	Dt               float64 `yaml:"dt"`
	AnchorMassFactor float64 `yaml:"anchor_mass_factor"`
	// Seed 0 picks a time-based seed.
	Seed       uint64  `yaml:"seed"`
	ForceModel string  `yaml:"force_model"`
	Theta      float64 `yaml:"theta"`
	LogFile    string  `yaml:"log_file,omitempty"`
}

// Default returns ten planets around a sun in a 600x600 world.
func Default() Config {
	return Config{
		Bodies:           10,
		Width:            600,
		Height:           600,
		VelocitySpan:     3,
		BodyRadius:       1.5,
		Density:          0.001,
		Gravity:          1e4,
		Dt:               1,
		AnchorMassFactor: 1000,
		ForceModel:       ForceDirect,
		Theta:            0.5,
	}
}

// Load reads a YAML config from path on top of Default(). A missing file yields Default();
// a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("simconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from GRAVITY_* environment variables, e.g. GRAVITY_BODIES=25.
func ApplyEnv(cfg Config) (Config, error) {
	ints := map[string]*int{"GRAVITY_BODIES": &cfg.Bodies}
	floats := map[string]*float64{
		"GRAVITY_WIDTH":              &cfg.Width,
		"GRAVITY_HEIGHT":             &cfg.Height,
		"GRAVITY_VELOCITY_SPAN":      &cfg.VelocitySpan,
		"GRAVITY_BODY_RADIUS":        &cfg.BodyRadius,
		"GRAVITY_DENSITY":            &cfg.Density,
		"GRAVITY_GRAVITY":            &cfg.Gravity,
		"GRAVITY_DT":                 &cfg.Dt,
		"GRAVITY_ANCHOR_MASS_FACTOR": &cfg.AnchorMassFactor,
		"GRAVITY_THETA":              &cfg.Theta,
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, fmt.Errorf("simconfig: %s: %w", key, err)
			}
			*dst = n
		}
	}
	for key, dst := range floats {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return cfg, fmt.Errorf("simconfig: %s: %w", key, err)
			}
			*dst = f
		}
	}
	if v, ok := os.LookupEnv("GRAVITY_SEED"); ok && v != "" {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("simconfig: GRAVITY_SEED: %w", err)
		}
		cfg.Seed = s
	}
	if v, ok := os.LookupEnv("GRAVITY_FORCE_MODEL"); ok && v != "" {
		cfg.ForceModel = v
	}
	if v, ok := os.LookupEnv("GRAVITY_LOG_FILE"); ok && v != "" {
		cfg.LogFile = v
	}
	return cfg, nil
}

// Validate fails fast on settings that cannot produce a simulation.
func (c Config) Validate() error {
	if c.Bodies <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBodyCount, c.Bodies)
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"body_radius", c.BodyRadius},
		{"density", c.Density},
		{"gravity", c.Gravity},
		{"dt", c.Dt},
		{"anchor_mass_factor", c.AnchorMassFactor},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConstant, p.name, p.v)
		}
	}
	if c.VelocitySpan < 0 {
		return fmt.Errorf("%w: velocity_span must not be negative, got %v", ErrInvalidConstant, c.VelocitySpan)
	}
	switch c.ForceModel {
	case ForceDirect:
	case ForceBarnesHut:
		if c.Theta <= 0 || c.Theta > 2 {
			return fmt.Errorf("%w: theta must be in (0, 2], got %v", ErrInvalidConstant, c.Theta)
		}
	default:
		return fmt.Errorf("%w: unknown force_model %q", ErrInvalidConstant, c.ForceModel)
	}
	return nil
}

// BodyOptions maps the config onto body generation options.
func (c Config) BodyOptions() bodygen.Options {
	return bodygen.Options{
		Count:            c.Bodies,
		Width:            c.Width,
		Height:           c.Height,
		VelocitySpan:     c.VelocitySpan,
		Radius:           c.BodyRadius,
		Density:          c.Density,
		AnchorMassFactor: c.AnchorMassFactor,
	}
}
