package physics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrMultipleAnchors = errors.New("physics: more than one anchor body")
	ErrDuplicateID     = errors.New("physics: duplicate body id")
	ErrInvalidBody     = errors.New("physics: invalid body")
)

// radiusTolerance is the relative slack allowed between a body's radius and its mass.
const radiusTolerance = 1e-9

// Params are the numeric constants of a World.
type Params struct {
	Density float64
	Dt      float64
}

// World owns the body collection and runs one tick per Step: integrate every active
// non-anchor body with RK4, then merge touching bodies.
// The collection is never shrunk; merged bodies stay addressable by id.
type World struct {
	Params Params
	Force  ForceModel
	// Paused skips the integrate phase; the resolve phase still runs.
	Paused bool

	bodies []*Body
	index  map[int]int
	anchor *Body
	t      float64
	ticks  uint64
}

// NewWorld takes ownership of bodies. At most one body may be the anchor, and every other
// body's radius must match its mass under p.Density. Active bodies already touching the
// anchor are merged into it; those merges are returned.
func NewWorld(p Params, force ForceModel, bodies []*Body) (*World, []Merge, error) {
	if p.Density <= 0 || p.Dt <= 0 {
		return nil, nil, fmt.Errorf("%w: density %v, dt %v", ErrInvalidBody, p.Density, p.Dt)
	}
	if force == nil {
		return nil, nil, errors.New("physics: nil force model")
	}
	w := &World{
		Params: p,
		Force:  force,
		bodies: bodies,
		index:  make(map[int]int, len(bodies)),
	}
	for i, b := range bodies {
		if b == nil {
			return nil, nil, fmt.Errorf("%w: nil body at index %d", ErrInvalidBody, i)
		}
		if b.Mass <= 0 || b.Radius <= 0 {
			return nil, nil, fmt.Errorf("%w: body %d has mass %v radius %v", ErrInvalidBody, b.ID, b.Mass, b.Radius)
		}
		if want := RadiusFromMass(b.Mass, p.Density); !b.Anchor && math.Abs(b.Radius-want) > radiusTolerance*want {
			return nil, nil, fmt.Errorf("%w: body %d radius %v does not match mass %v (want %v)", ErrInvalidBody, b.ID, b.Radius, b.Mass, want)
		}
		if _, ok := w.index[b.ID]; ok {
			return nil, nil, fmt.Errorf("%w: %d", ErrDuplicateID, b.ID)
		}
		w.index[b.ID] = i
		if b.Anchor {
			if w.anchor != nil {
				return nil, nil, fmt.Errorf("%w: %d and %d", ErrMultipleAnchors, w.anchor.ID, b.ID)
			}
			w.anchor = b
			b.Velocity = r2.Vec{}
		}
	}
	return w, w.swallow(), nil
}

// swallow merges every active body touching the anchor into it.
func (w *World) swallow() []Merge {
	if w.anchor == nil || !w.anchor.Active {
		return nil
	}
	var merges []Merge
	for _, b := range w.bodies {
		if b == w.anchor || !b.Active || !Touches(b, w.anchor) {
			continue
		}
		merge(w.anchor, b, w.Params.Density)
		merges = append(merges, Merge{SurvivorID: w.anchor.ID, AbsorbedID: b.ID, Mass: w.anchor.Mass})
	}
	return merges
}

// Step runs one tick and returns the merges of its resolve phase.
// Each body's RK4 stages read the live state of bodies already advanced this tick.
func (w *World) Step() []Merge {
	if !w.Paused {
		w.Force.Bind(w.bodies)
		for _, b := range w.bodies {
			if !b.Active || b.Anchor {
				continue
			}
			b.SetState(RK4(w.Force, b, w.t, w.Params.Dt))
		}
		w.t += w.Params.Dt
	}
	w.ticks++
	return Resolve(w.bodies, w.Params.Density)
}

// Body returns the body with the given id, active or not.
func (w *World) Body(id int) (*Body, bool) {
	i, ok := w.index[id]
	if !ok {
		return nil, false
	}
	return w.bodies[i], true
}

// Bodies returns the owned collection. Callers must not modify it.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Anchor returns the anchor body, or nil.
func (w *World) Anchor() *Body {
	return w.anchor
}

// Time is the simulated time; it advances by Dt on every integrating tick.
func (w *World) Time() float64 {
	return w.t
}

// Ticks counts Step calls, paused or not.
func (w *World) Ticks() uint64 {
	return w.ticks
}

// ActiveCount returns the number of active bodies.
func (w *World) ActiveCount() int {
	n := 0
	for _, b := range w.bodies {
		if b.Active {
			n++
		}
	}
	return n
}

// TotalMass sums the mass of active bodies. Absorbed mass lives on in its survivor.
func (w *World) TotalMass() float64 {
	m := 0.0
	for _, b := range w.bodies {
		if b.Active {
			m += b.Mass
		}
	}
	return m
}

// Momentum sums mass*velocity over active bodies.
func (w *World) Momentum() r2.Vec {
	var p r2.Vec
	for _, b := range w.bodies {
		if b.Active {
			p = r2.Add(p, r2.Scale(b.Mass, b.Velocity))
		}
	}
	return p
}
