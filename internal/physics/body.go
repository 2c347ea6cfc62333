package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Body is a circular 2D body with position, velocity, mass and radius.
// Inactive bodies have been merged into another body; they stay in the world so that
// ids held by consumers keep resolving, but they no longer take part in the simulation.
// The anchor body never moves and always survives a merge.
type Body struct {
	ID       int
	Name     string
	Position r2.Vec
	Velocity r2.Vec
	Mass     float64
	Radius   float64
	Active   bool
	Anchor   bool
}

// State is the integrated part of a body: position and velocity.
type State struct {
	Position r2.Vec
	Velocity r2.Vec
}

// Derivative is the time derivative of a State: velocity and acceleration.
type Derivative struct {
	Velocity     r2.Vec
	Acceleration r2.Vec
}

// MassFromRadius returns the mass of a sphere of the given radius and density.
func MassFromRadius(radius, density float64) float64 {
	return density * 4 * math.Pi * radius * radius * radius / 3
}

// RadiusFromMass inverts MassFromRadius.
func RadiusFromMass(mass, density float64) float64 {
	return math.Cbrt(3 * mass / (4 * math.Pi * density))
}

// NewBody returns an active body of the given radius at pos with velocity vel.
// Mass is derived from radius and density.
func NewBody(id int, name string, pos, vel r2.Vec, radius, density float64) *Body {
	b := &Body{
		ID:       id,
		Name:     name,
		Position: pos,
		Velocity: vel,
		Radius:   radius,
		Active:   true,
	}
	b.SetMassFromRadius(density)
	return b
}

// SetMassFromRadius recomputes Mass from Radius.
func (b *Body) SetMassFromRadius(density float64) {
	b.Mass = MassFromRadius(b.Radius, density)
}

// SetRadiusFromMass recomputes Radius from Mass. Call after every mass change.
func (b *Body) SetRadiusFromMass(density float64) {
	b.Radius = RadiusFromMass(b.Mass, density)
}

// State returns the body's current position and velocity.
func (b *Body) State() State {
	return State{Position: b.Position, Velocity: b.Velocity}
}

// SetState overwrites position and velocity.
func (b *Body) SetState(s State) {
	b.Position = s.Position
	b.Velocity = s.Velocity
}

// Touches reports whether a and b overlap or touch (distance <= sum of radii).
func Touches(a, b *Body) bool {
	return r2.Norm(r2.Sub(a.Position, b.Position)) <= a.Radius+b.Radius
}
