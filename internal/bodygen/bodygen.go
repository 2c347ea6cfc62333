package bodygen

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"

	"gravity-engine/internal/physics"
)

// ErrInvalidBodyCount is returned for a body count below one.
var ErrInvalidBodyCount = errors.New("bodygen: body count must be positive")

// AnchorID is the id given to the anchor; generated bodies are numbered from 1.
const AnchorID = 0

// AnchorName is the display name of the anchor.
const AnchorName = "Sun"

// Names are the display names picked at random for generated bodies.
var Names = []string{"Venus", "Earth", "Mars", "Mercury", "Jupiter", "Saturn"}

// Options controls random body generation.
// Positions are uniform over [0,Width] x [0,Height]; each velocity component is uniform
// over [-VelocitySpan/2, VelocitySpan/2]. Every body starts with Radius and the mass that
// Density gives it. The anchor sits at the centre with AnchorMassFactor times that mass.
type Options struct {
	Count            int
	Width            float64
	Height           float64
	VelocitySpan     float64
	Radius           float64
	Density          float64
	AnchorMassFactor float64
}

// DefaultOptions returns the classic ten-planet setup.
func DefaultOptions() Options {
	return Options{
		Count:            10,
		Width:            600,
		Height:           600,
		VelocitySpan:     3,
		Radius:           1.5,
		Density:          0.001,
		AnchorMassFactor: 1000,
	}
}

// NewRand returns a random source for Generate. Seed 0 uses a time-based seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// Generate returns opts.Count random bodies followed by the anchor.
func Generate(opts Options, rng *rand.Rand) ([]*physics.Body, error) {
	if opts.Count <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBodyCount, opts.Count)
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.Radius <= 0 || opts.Density <= 0 || opts.AnchorMassFactor <= 0 {
		return nil, fmt.Errorf("bodygen: non-positive bound in %+v", opts)
	}
	bodies := make([]*physics.Body, 0, opts.Count+1)
	for i := 1; i <= opts.Count; i++ {
		pos := r2.Vec{X: rng.Float64() * opts.Width, Y: rng.Float64() * opts.Height}
		vel := r2.Vec{
			X: (rng.Float64() - 0.5) * opts.VelocitySpan,
			Y: (rng.Float64() - 0.5) * opts.VelocitySpan,
		}
		name := Names[rng.Intn(len(Names))]
		bodies = append(bodies, physics.NewBody(i, name, pos, vel, opts.Radius, opts.Density))
	}
	return append(bodies, Anchor(opts)), nil
}

// Anchor returns the anchor body for opts: centred, at rest, AnchorMassFactor times the
// mass of a generated body with its radius re-derived.
func Anchor(opts Options) *physics.Body {
	centre := r2.Vec{X: opts.Width / 2, Y: opts.Height / 2}
	a := physics.NewBody(AnchorID, AnchorName, centre, r2.Vec{}, opts.Radius, opts.Density)
	a.Anchor = true
	a.Mass *= opts.AnchorMassFactor
	a.SetRadiusFromMass(opts.Density)
	return a
}
