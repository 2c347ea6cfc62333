package physics

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	testGravity = 1e4
	testRadius  = 1.5
)

func newAnchor(id int, pos r2.Vec) *Body {
	a := NewBody(id, "Sun", pos, r2.Vec{}, testRadius, testDensity)
	a.Anchor = true
	a.Mass *= 1000
	a.SetRadiusFromMass(testDensity)
	return a
}

func newTestWorld(t *testing.T, bodies ...*Body) *World {
	t.Helper()
	w, _, err := NewWorld(Params{Density: testDensity, Dt: 1}, NewDirect(testGravity), bodies)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func TestNewWorldRejectsInvalidCollections(t *testing.T) {
	p := Params{Density: testDensity, Dt: 1}
	a := newAnchor(0, r2.Vec{})
	b := newAnchor(1, r2.Vec{X: 500})
	if _, _, err := NewWorld(p, NewDirect(1), []*Body{a, b}); !errors.Is(err, ErrMultipleAnchors) {
		t.Fatalf("two anchors err=%v want %v", err, ErrMultipleAnchors)
	}

	c := NewBody(7, "Mars", r2.Vec{}, r2.Vec{}, 1, testDensity)
	d := NewBody(7, "Venus", r2.Vec{X: 50}, r2.Vec{}, 1, testDensity)
	if _, _, err := NewWorld(p, NewDirect(1), []*Body{c, d}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("duplicate ids err=%v want %v", err, ErrDuplicateID)
	}

	e := &Body{ID: 1, Active: true}
	if _, _, err := NewWorld(p, NewDirect(1), []*Body{e}); !errors.Is(err, ErrInvalidBody) {
		t.Fatalf("massless body err=%v want %v", err, ErrInvalidBody)
	}
	if _, _, err := NewWorld(p, NewDirect(1), []*Body{c, nil}); !errors.Is(err, ErrInvalidBody) {
		t.Fatalf("nil body err=%v want %v", err, ErrInvalidBody)
	}
	f := NewBody(8, "Mercury", r2.Vec{}, r2.Vec{}, 1, testDensity)
	f.Mass *= 2
	if _, _, err := NewWorld(p, NewDirect(1), []*Body{f}); !errors.Is(err, ErrInvalidBody) {
		t.Fatalf("radius/mass mismatch err=%v want %v", err, ErrInvalidBody)
	}
	f.SetRadiusFromMass(testDensity)
	if _, _, err := NewWorld(p, NewDirect(1), []*Body{f}); err != nil {
		t.Fatalf("consistent body rejected: %v", err)
	}
	if _, _, err := NewWorld(Params{Density: 1}, NewDirect(1), nil); !errors.Is(err, ErrInvalidBody) {
		t.Fatalf("zero dt err=%v want %v", err, ErrInvalidBody)
	}
}

func TestNewWorldSwallowsBodiesInsideAnchor(t *testing.T) {
	sun := newAnchor(0, r2.Vec{X: 300, Y: 300})
	inside := NewBody(1, "Earth", r2.Vec{X: 305, Y: 300}, r2.Vec{X: 1}, testRadius, testDensity)
	outside := NewBody(2, "Mars", r2.Vec{X: 400, Y: 300}, r2.Vec{}, testRadius, testDensity)
	sunMass := sun.Mass
	sun.Velocity = r2.Vec{X: 3}

	w, merges, err := NewWorld(Params{Density: testDensity, Dt: 1}, NewDirect(testGravity), []*Body{inside, sun, outside})
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	if len(merges) != 1 || merges[0].AbsorbedID != 1 || merges[0].SurvivorID != 0 {
		t.Fatalf("initial merges got=%+v", merges)
	}
	if inside.Active || !outside.Active {
		t.Fatalf("active flags inside=%v outside=%v", inside.Active, outside.Active)
	}
	if sun.Mass != sunMass+inside.Mass || sun.Velocity != (r2.Vec{}) {
		t.Fatalf("anchor after swallow mass=%v velocity=%v", sun.Mass, sun.Velocity)
	}
	if w.Anchor() != sun || w.ActiveCount() != 2 {
		t.Fatalf("anchor=%v active=%d", w.Anchor(), w.ActiveCount())
	}
}

func TestStepAdvancesTimeAndLooksUpByID(t *testing.T) {
	sun := newAnchor(0, r2.Vec{X: 300, Y: 300})
	p := NewBody(5, "Jupiter", r2.Vec{X: 400, Y: 300}, r2.Vec{Y: 0.1}, testRadius, testDensity)
	w := newTestWorld(t, sun, p)

	w.Step()
	w.Step()
	if w.Time() != 2 || w.Ticks() != 2 {
		t.Fatalf("time=%v ticks=%d want 2,2", w.Time(), w.Ticks())
	}
	got, ok := w.Body(5)
	if !ok || got != p {
		t.Fatalf("Body(5) got=%v ok=%v", got, ok)
	}
	if _, ok := w.Body(99); ok {
		t.Fatalf("Body(99) should not exist")
	}
	if p.Position.X >= 400 {
		t.Fatalf("body should fall toward the anchor, x=%v", p.Position.X)
	}
	if sun.Position != (r2.Vec{X: 300, Y: 300}) || sun.Velocity != (r2.Vec{}) {
		t.Fatalf("anchor moved: %v %v", sun.Position, sun.Velocity)
	}
}

func TestPausedSkipsIntegrationButResolves(t *testing.T) {
	a := NewBody(1, "Earth", r2.Vec{X: 10}, r2.Vec{X: 1}, testRadius, testDensity)
	b := NewBody(2, "Mars", r2.Vec{X: 11}, r2.Vec{X: -1}, testRadius, testDensity)
	c := NewBody(3, "Venus", r2.Vec{X: 200}, r2.Vec{Y: 1}, testRadius, testDensity)
	w := newTestWorld(t, a, b, c)
	w.Paused = true

	merges := w.Step()
	if len(merges) != 1 {
		t.Fatalf("merges while paused got=%+v want 1", merges)
	}
	if c.Position != (r2.Vec{X: 200}) || c.Velocity != (r2.Vec{Y: 1}) {
		t.Fatalf("paused body moved: %v %v", c.Position, c.Velocity)
	}
	if w.Time() != 0 || w.Ticks() != 1 {
		t.Fatalf("time=%v ticks=%d want 0,1", w.Time(), w.Ticks())
	}
}

func TestInactiveBodiesNeverMove(t *testing.T) {
	sun := newAnchor(0, r2.Vec{X: 300, Y: 300})
	a := NewBody(1, "Earth", r2.Vec{X: 100, Y: 100}, r2.Vec{X: 0.5}, testRadius, testDensity)
	b := NewBody(2, "Mars", r2.Vec{X: 101, Y: 100}, r2.Vec{X: -0.5}, testRadius, testDensity)
	w := newTestWorld(t, sun, a, b)

	w.Paused = true
	w.Step()
	w.Paused = false
	var dead *Body
	for _, x := range []*Body{a, b} {
		if !x.Active {
			dead = x
		}
	}
	if dead == nil {
		t.Fatalf("expected the touching pair to merge")
	}
	pos, vel := dead.Position, dead.Velocity
	for i := 0; i < 50; i++ {
		w.Step()
	}
	if dead.Position != pos || dead.Velocity != vel {
		t.Fatalf("inactive body moved: %v %v -> %v %v", pos, vel, dead.Position, dead.Velocity)
	}
}

func TestMassConservedOverManyTicks(t *testing.T) {
	sun := newAnchor(0, r2.Vec{X: 300, Y: 300})
	bodies := []*Body{sun}
	for i := 1; i <= 12; i++ {
		pos := r2.Vec{X: 300 + 120*math.Cos(float64(i)), Y: 300 + 120*math.Sin(float64(i))}
		vel := r2.Vec{X: math.Sin(float64(3 * i)), Y: math.Cos(float64(5 * i))}
		bodies = append(bodies, NewBody(i, "Saturn", pos, vel, testRadius, testDensity))
	}
	w := newTestWorld(t, bodies...)
	before := w.TotalMass()

	for i := 0; i < 400; i++ {
		w.Step()
		if got := w.TotalMass(); math.Abs(got-before) > 1e-12*before {
			t.Fatalf("tick %d total mass got=%v want=%v", i, got, before)
		}
	}
}

func TestOrbitStaysBounded(t *testing.T) {
	sun := newAnchor(0, r2.Vec{X: 300, Y: 300})
	const r = 100.0
	p := NewBody(1, "Earth", r2.Vec{X: 300 + r, Y: 300}, r2.Vec{}, testRadius, testDensity)
	mu := testGravity * p.Mass * sun.Mass
	p.Velocity = r2.Vec{Y: math.Sqrt(mu / r)}
	w := newTestWorld(t, sun, p)

	energy := func() float64 {
		d := r2.Norm(r2.Sub(p.Position, sun.Position))
		return 0.5*r2.Norm2(p.Velocity) - mu/d
	}
	e0 := energy()
	for i := 0; i < 10000; i++ {
		w.Step()
		d := r2.Norm(r2.Sub(p.Position, sun.Position))
		if d < 0.9*r || d > 1.1*r {
			t.Fatalf("tick %d orbit radius=%v left bounds around %v", i, d, r)
		}
	}
	if !p.Active {
		t.Fatalf("orbiting body was absorbed")
	}
	if drift := math.Abs((energy() - e0) / e0); drift > 1e-4 {
		t.Fatalf("energy drift=%g", drift)
	}
}

func TestSnapshotCopiesBodies(t *testing.T) {
	sun := newAnchor(0, r2.Vec{X: 300, Y: 300})
	p := NewBody(4, "Mercury", r2.Vec{X: 10, Y: 20}, r2.Vec{X: 1}, testRadius, testDensity)
	w := newTestWorld(t, sun, p)

	views, err := w.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("views got=%d want=2", len(views))
	}
	v := views[1]
	if v.ID != 4 || v.Name != "Mercury" || v.Position != p.Position || v.Velocity != p.Velocity ||
		v.Mass != p.Mass || v.Radius != p.Radius || !v.Active || v.Anchor {
		t.Fatalf("view got=%+v body=%+v", v, *p)
	}
	if !views[0].Anchor {
		t.Fatalf("first view should be the anchor")
	}
	views[1].Position.X = -1
	if p.Position.X != 10 {
		t.Fatalf("snapshot aliases the body")
	}
}
