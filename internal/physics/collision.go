package physics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Merge records one absorption during a resolve pass.
type Merge struct {
	SurvivorID int
	AbsorbedID int
	// Mass is the survivor's mass after the merge.
	Mass float64
}

type contact struct {
	a, b *Body
	mass float64
}

// Resolve merges every touching pair of active bodies and returns the merges in the
// order they happened.
//
// Touching pairs are collected first and processed by descending combined mass, ties by
// ascending ids. Both bodies are re-checked for activity and contact right before each
// merge, so a body absorbed earlier in the pass is never merged again.
func Resolve(bodies []*Body, density float64) []Merge {
	var contacts []contact
	for i, a := range bodies {
		if !a.Active {
			continue
		}
		for _, b := range bodies[i+1:] {
			if b.Active && Touches(a, b) {
				contacts = append(contacts, contact{a: a, b: b, mass: a.Mass + b.Mass})
			}
		}
	}
	sort.SliceStable(contacts, func(i, j int) bool {
		ci, cj := contacts[i], contacts[j]
		if ci.mass != cj.mass {
			return ci.mass > cj.mass
		}
		if ci.a.ID != cj.a.ID {
			return ci.a.ID < cj.a.ID
		}
		return ci.b.ID < cj.b.ID
	})

	var merges []Merge
	for _, c := range contacts {
		if !c.a.Active || !c.b.Active || !Touches(c.a, c.b) {
			continue
		}
		survivor, absorbed := order(c.a, c.b)
		merge(survivor, absorbed, density)
		merges = append(merges, Merge{SurvivorID: survivor.ID, AbsorbedID: absorbed.ID, Mass: survivor.Mass})
	}
	return merges
}

// order returns (survivor, absorbed). The anchor always survives; otherwise the heavier
// body does, and the lower id breaks a tie.
func order(a, b *Body) (*Body, *Body) {
	switch {
	case a.Anchor:
		return a, b
	case b.Anchor:
		return b, a
	case a.Mass > b.Mass:
		return a, b
	case b.Mass > a.Mass:
		return b, a
	case a.ID <= b.ID:
		return a, b
	default:
		return b, a
	}
}

// merge folds absorbed into survivor conserving mass and momentum. An anchor survivor keeps
// its position and velocity. Merging a body with itself or with an inactive body panics.
func merge(survivor, absorbed *Body, density float64) {
	if survivor == absorbed {
		panic(fmt.Sprintf("physics: body %d merged with itself", survivor.ID))
	}
	if !survivor.Active || !absorbed.Active {
		panic(fmt.Sprintf("physics: merge of inactive body (%d into %d)", absorbed.ID, survivor.ID))
	}
	total := survivor.Mass + absorbed.Mass
	if !survivor.Anchor {
		p := r2.Add(r2.Scale(survivor.Mass, survivor.Velocity), r2.Scale(absorbed.Mass, absorbed.Velocity))
		survivor.Velocity = r2.Scale(1/total, p)
	}
	survivor.Mass = total
	survivor.SetRadiusFromMass(density)
	absorbed.Active = false
}
