package sim

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"

	"gravity-engine/internal/bodygen"
	"gravity-engine/internal/env"
	"gravity-engine/internal/logger"
	"gravity-engine/internal/physics"
	"gravity-engine/internal/simconfig"
)

// Simulation wires a config, a generated body set and a physics world together and logs
// what happens to the bodies. It is not safe for concurrent use.
type Simulation struct {
	Config simconfig.Config
	world  *physics.World
	log    *logger.Logger
}

// LoadConfig reads envPath into the environment, then the YAML file at configPath,
// applies GRAVITY_* overrides and validates the result.
func LoadConfig(configPath, envPath string) (simconfig.Config, error) {
	if err := env.Load(envPath); err != nil {
		return simconfig.Config{}, fmt.Errorf("load env: %w", err)
	}
	cfg, err := simconfig.Load(configPath)
	if err != nil {
		return cfg, err
	}
	cfg, err = simconfig.ApplyEnv(cfg)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// New validates cfg, generates its bodies and builds the world. A nil log logs to
// cfg.LogFile (memory only when empty).
func New(cfg simconfig.Config, log *logger.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bodies, err := bodygen.Generate(cfg.BodyOptions(), bodygen.NewRand(cfg.Seed))
	if err != nil {
		return nil, err
	}
	return NewWithBodies(cfg, log, bodies)
}

// NewWithBodies builds a simulation over a caller-supplied body set; bodies generation
// settings in cfg are ignored.
func NewWithBodies(cfg simconfig.Config, log *logger.Logger, bodies []*physics.Body) (*Simulation, error) {
	if log == nil {
		log = logger.New(cfg.LogFile)
	}
	var force physics.ForceModel = physics.NewDirect(cfg.Gravity)
	if cfg.ForceModel == simconfig.ForceBarnesHut {
		force = physics.NewBarnesHut(cfg.Gravity, cfg.Theta)
	}
	w, swallowed, err := physics.NewWorld(physics.Params{Density: cfg.Density, Dt: cfg.Dt}, force, bodies)
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}
	s := &Simulation{Config: cfg, world: w, log: log}
	log.Logf("simulation started: %d bodies, force model %s, G=%g, density=%g, dt=%g",
		len(bodies), cfg.ForceModel, cfg.Gravity, cfg.Density, cfg.Dt)
	s.logMerges("swallowed at start", swallowed)
	return s, nil
}

// Tick advances the world one step and logs its merges.
func (s *Simulation) Tick() []physics.Merge {
	merges := s.world.Step()
	s.logMerges(fmt.Sprintf("tick %d", s.world.Ticks()), merges)
	return merges
}

// Run ticks n times, or until ctx is done when n <= 0. It returns ctx.Err() if
// cancelled before finishing.
func (s *Simulation) Run(ctx context.Context, n int) error {
	for i := 0; n <= 0 || i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Tick()
	}
	return nil
}

func (s *Simulation) logMerges(when string, merges []physics.Merge) {
	for _, m := range merges {
		survivor, _ := s.world.Body(m.SurvivorID)
		absorbed, _ := s.world.Body(m.AbsorbedID)
		s.log.Logf("%s: %s#%d absorbed %s#%d, mass now %.6g",
			when, survivor.Name, survivor.ID, absorbed.Name, absorbed.ID, m.Mass)
	}
}

// SetPaused stops or resumes integration. Touching bodies keep merging while paused.
func (s *Simulation) SetPaused(p bool) {
	if s.world.Paused == p {
		return
	}
	s.world.Paused = p
	if p {
		s.log.Log("paused")
	} else {
		s.log.Log("resumed")
	}
}

// TogglePaused flips the pause flag and returns the new value.
func (s *Simulation) TogglePaused() bool {
	s.SetPaused(!s.world.Paused)
	return s.world.Paused
}

// Paused reports whether integration is paused.
func (s *Simulation) Paused() bool {
	return s.world.Paused
}

// Snapshot returns a copy of every body for drawing.
func (s *Simulation) Snapshot() ([]physics.BodyView, error) {
	return s.world.Snapshot()
}

// Body returns a copy of the body with the given id, for following a focused body.
func (s *Simulation) Body(id int) (physics.BodyView, bool) {
	var v physics.BodyView
	b, ok := s.world.Body(id)
	if !ok {
		return v, false
	}
	if err := copier.Copy(&v, b); err != nil {
		return v, false
	}
	return v, true
}

// World exposes the underlying world for diagnostics.
func (s *Simulation) World() *physics.World {
	return s.world
}

// Log returns the event log.
func (s *Simulation) Log() *logger.Logger {
	return s.log
}
