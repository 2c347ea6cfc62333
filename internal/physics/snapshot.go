package physics

import (
	"github.com/jinzhu/copier"
	"gonum.org/v1/gonum/spatial/r2"
)

// BodyView is a read-only copy of a body for the presentation layer.
// Inactive views should not be drawn.
type BodyView struct {
	ID       int
	Name     string
	Position r2.Vec
	Velocity r2.Vec
	Mass     float64
	Radius   float64
	Active   bool
	Anchor   bool
}

// Snapshot copies every body, in collection order, into a fresh slice.
func (w *World) Snapshot() ([]BodyView, error) {
	views := make([]BodyView, len(w.bodies))
	for i, b := range w.bodies {
		if err := copier.Copy(&views[i], b); err != nil {
			return nil, err
		}
	}
	return views, nil
}
