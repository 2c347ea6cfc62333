package physics

import "gonum.org/v1/gonum/spatial/r2"

// DefaultTheta is the opening angle used when BarnesHut.Theta is zero.
const DefaultTheta = 0.5

// maxDepth bounds quadtree subdivision; bodies still sharing a cell there are kept
// together in one leaf, which also covers coincident bodies.
const maxDepth = 48

// BarnesHut approximates the pairwise model with a quadtree over the active bodies.
// The tree is rebuilt on every Bind. Distant cells act as a single mass at their centre
// of mass as of that Bind; bodies in opened leaves are read live. Zero Theta selects
// DefaultTheta; a negative Theta evaluates the exact pairwise sum.
type BarnesHut struct {
	G     float64
	Theta float64

	bodies []*Body
	root   *quad
	leaf   map[*Body]*quad
}

// NewBarnesHut returns a Barnes-Hut force model with gravity constant g and opening angle theta.
func NewBarnesHut(g, theta float64) *BarnesHut {
	return &BarnesHut{G: g, Theta: theta}
}

// quad is a square cell of the tree. Leaves hold bodies; inner cells hold children.
type quad struct {
	parent   *quad
	min      r2.Vec
	size     float64
	depth    int
	bodies   []*Body
	children [4]*quad
	inner    bool

	mass   float64
	center r2.Vec
}

// Bind rebuilds the quadtree over the active bodies at their current positions.
func (m *BarnesHut) Bind(bodies []*Body) {
	m.bodies = bodies
	m.root = nil
	m.leaf = make(map[*Body]*quad, len(bodies))
	if m.theta() == 0 {
		return
	}

	var lo, hi r2.Vec
	first := true
	for _, b := range bodies {
		if !b.Active {
			continue
		}
		if first {
			lo, hi, first = b.Position, b.Position, false
			continue
		}
		lo.X, lo.Y = min(lo.X, b.Position.X), min(lo.Y, b.Position.Y)
		hi.X, hi.Y = max(hi.X, b.Position.X), max(hi.Y, b.Position.Y)
	}
	if first {
		return
	}
	size := max(hi.X-lo.X, hi.Y-lo.Y)
	if size == 0 {
		size = 1
	}
	m.root = &quad{min: lo, size: size}
	for _, b := range bodies {
		if b.Active {
			m.insert(m.root, b)
		}
	}
	m.root.summarize()
}

func (m *BarnesHut) insert(q *quad, b *Body) {
	for q.inner {
		q = q.child(b.Position)
	}
	if len(q.bodies) == 0 || q.depth >= maxDepth {
		q.bodies = append(q.bodies, b)
		m.leaf[b] = q
		return
	}
	moved := q.bodies
	q.bodies = nil
	q.inner = true
	for _, o := range moved {
		m.insert(q, o)
	}
	m.insert(q, b)
}

// child returns the quadrant of q that pos falls in, creating it on first use.
func (q *quad) child(pos r2.Vec) *quad {
	half := q.size / 2
	i, corner := 0, q.min
	if pos.X >= q.min.X+half {
		i |= 1
		corner.X += half
	}
	if pos.Y >= q.min.Y+half {
		i |= 2
		corner.Y += half
	}
	if q.children[i] == nil {
		q.children[i] = &quad{parent: q, min: corner, size: half, depth: q.depth + 1}
	}
	return q.children[i]
}

// summarize fills mass and mass-weighted centre for q and its subtree.
func (q *quad) summarize() {
	var moment r2.Vec
	for _, b := range q.bodies {
		q.mass += b.Mass
		moment = r2.Add(moment, r2.Scale(b.Mass, b.Position))
	}
	for _, c := range q.children {
		if c == nil {
			continue
		}
		c.summarize()
		q.mass += c.mass
		moment = r2.Add(moment, r2.Scale(c.mass, c.center))
	}
	if q.mass > 0 {
		q.center = r2.Scale(1/q.mass, moment)
	}
}

// Acceleration evaluates the pull on b at state s, opening every cell that holds b
// or is too close for its size.
func (m *BarnesHut) Acceleration(b *Body, s State, _ float64) r2.Vec {
	if m.root == nil {
		var a r2.Vec
		for _, p := range m.bodies {
			if p != b && p.Active {
				a = r2.Add(a, pairAcceleration(m.G, b.Mass, p.Mass, r2.Sub(p.Position, s.Position)))
			}
		}
		return a
	}
	return m.walk(m.root, b, s.Position, m.theta())
}

func (m *BarnesHut) walk(q *quad, b *Body, pos r2.Vec, theta float64) r2.Vec {
	var a r2.Vec
	if !q.inner {
		for _, p := range q.bodies {
			if p != b && p.Active {
				a = r2.Add(a, pairAcceleration(m.G, b.Mass, p.Mass, r2.Sub(p.Position, pos)))
			}
		}
		return a
	}
	d := r2.Sub(q.center, pos)
	if !m.holds(q, b) && q.size*q.size < theta*theta*r2.Norm2(d) {
		return pairAcceleration(m.G, b.Mass, q.mass, d)
	}
	for _, c := range q.children {
		if c != nil {
			a = r2.Add(a, m.walk(c, b, pos, theta))
		}
	}
	return a
}

// holds reports whether b was placed under q at the last Bind.
func (m *BarnesHut) holds(q *quad, b *Body) bool {
	for l := m.leaf[b]; l != nil; l = l.parent {
		if l == q {
			return true
		}
	}
	return false
}

func (m *BarnesHut) theta() float64 {
	if m.Theta < 0 {
		return 0
	}
	if m.Theta == 0 {
		return DefaultTheta
	}
	return m.Theta
}
