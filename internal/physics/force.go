package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// MinDistanceSq is the squared distance below which a pair contributes no force.
const MinDistanceSq = 1e-10

// ForceModel computes the gravitational acceleration on a body.
//
// Bind is called by the World at the start of every integrate phase with the full body
// collection. Acceleration then evaluates the pull of every other active body on b as if
// b were at state s; s need not be b's stored state. t is carried for time-dependent models.
type ForceModel interface {
	Bind(bodies []*Body)
	Acceleration(b *Body, s State, t float64) r2.Vec
}

// pairAcceleration is the contribution of a mass m2 displaced by d from a body of mass m1.
// F = G*m1*m2/|d|^2 along d; coincident points yield zero.
func pairAcceleration(g, m1, m2 float64, d r2.Vec) r2.Vec {
	dsq := r2.Norm2(d)
	if dsq < MinDistanceSq {
		return r2.Vec{}
	}
	f := g * m1 * m2 / dsq
	return r2.Scale(f/math.Sqrt(dsq), d)
}

// Direct is the exact pairwise model: O(n) per call, O(n^2) per integrate phase.
type Direct struct {
	G      float64
	bodies []*Body
}

// NewDirect returns a pairwise force model with gravity constant g.
func NewDirect(g float64) *Direct {
	return &Direct{G: g}
}

// Bind records the body collection read by Acceleration.
func (d *Direct) Bind(bodies []*Body) {
	d.bodies = bodies
}

// Acceleration sums the pull of every other active body on b at state s.
func (d *Direct) Acceleration(b *Body, s State, _ float64) r2.Vec {
	var a r2.Vec
	for _, p := range d.bodies {
		if p == b || !p.Active {
			continue
		}
		a = r2.Add(a, pairAcceleration(d.G, b.Mass, p.Mass, r2.Sub(p.Position, s.Position)))
	}
	return a
}
