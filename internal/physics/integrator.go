package physics

import "gonum.org/v1/gonum/spatial/r2"

// derivative evaluates (velocity, acceleration) at state s.
func derivative(f ForceModel, b *Body, s State, t float64) Derivative {
	return Derivative{Velocity: s.Velocity, Acceleration: f.Acceleration(b, s, t)}
}

// advance returns s moved along d for dt and the derivative sampled there at t+dt.
func advance(f ForceModel, b *Body, s State, d Derivative, t, dt float64) Derivative {
	next := State{
		Position: r2.Add(s.Position, r2.Scale(dt, d.Velocity)),
		Velocity: r2.Add(s.Velocity, r2.Scale(dt, d.Acceleration)),
	}
	return derivative(f, b, next, t+dt)
}

// RK4 advances b's state by dt with the classic fourth order Runge-Kutta scheme and
// returns the new state. b itself is not modified.
func RK4(f ForceModel, b *Body, t, dt float64) State {
	s := b.State()
	k1 := derivative(f, b, s, t)
	k2 := advance(f, b, s, k1, t, dt/2)
	k3 := advance(f, b, s, k2, t, dt/2)
	k4 := advance(f, b, s, k3, t, dt)

	vel := weighted(k1.Velocity, k2.Velocity, k3.Velocity, k4.Velocity)
	acc := weighted(k1.Acceleration, k2.Acceleration, k3.Acceleration, k4.Acceleration)
	return State{
		Position: r2.Add(s.Position, r2.Scale(dt, vel)),
		Velocity: r2.Add(s.Velocity, r2.Scale(dt, acc)),
	}
}

// weighted is (a + 2b + 2c + d) / 6.
func weighted(a, b, c, d r2.Vec) r2.Vec {
	sum := r2.Add(r2.Add(a, d), r2.Scale(2, r2.Add(b, c)))
	return r2.Scale(1.0/6.0, sum)
}
