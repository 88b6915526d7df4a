// Package integrators provides the fixed-step Runge-Kutta solver used
// by every model, with cubic-Hermite dense output. The dense output
// doubles as the history function of the memory (delay) models: the
// solution being built is itself the History handed to the right-hand
// side, following the method of steps.
package integrators

import (
	"fmt"

	"github.com/akarls/mtsim/internal/magnet"
)

// Func evaluates the time derivative of m into dm. Memory models read
// the trajectory solved so far through h; plain right-hand sides
// ignore it.
type Func func(t float64, m, dm magnet.State, h magnet.History)

type rk4 struct {
	k1, k2, k3, k4 magnet.State
	scratch        magnet.State
}

func (r *rk4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(magnet.State, n)
		r.k2 = make(magnet.State, n)
		r.k3 = make(magnet.State, n)
		r.k4 = make(magnet.State, n)
		r.scratch = make(magnet.State, n)
	}
}

// step advances sol by one step of size h from node n. The derivative
// at node n is recorded before the inner stages run, so history
// queries inside the active step extrapolate from the freshest node.
func (r *rk4) step(f Func, sol *Solution, n int, h float64) {
	y := sol.ys[n]
	dim := len(y)
	r.ensureScratch(dim)
	t := sol.t0 + float64(n)*h

	f(t, y, r.k1, sol)
	copy(sol.fs[n], r.k1)
	sol.filled = n + 1

	for i := 0; i < dim; i++ {
		r.scratch[i] = y[i] + h*0.5*r.k1[i]
	}
	f(t+h*0.5, r.scratch, r.k2, sol)

	for i := 0; i < dim; i++ {
		r.scratch[i] = y[i] + h*0.5*r.k2[i]
	}
	f(t+h*0.5, r.scratch, r.k3, sol)

	for i := 0; i < dim; i++ {
		r.scratch[i] = y[i] + h*r.k3[i]
	}
	f(t+h, r.scratch, r.k4, sol)

	h6 := h / 6.0
	next := sol.ys[n+1]
	for i := 0; i < dim; i++ {
		next[i] = y[i] + h6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
}

// SolveDDE integrates dm/dt = f over [t0, t1] with the given number of
// fixed steps. prior supplies history values for t <= t0; nil pins the
// history before t0 to m0. The returned Solution provides dense output
// and implements magnet.History.
func SolveDDE(f Func, m0 magnet.State, t0, t1 float64, steps int, prior magnet.History) (*Solution, error) {
	if steps < 1 {
		return nil, fmt.Errorf("integrators: step count %d < 1", steps)
	}
	if t1 <= t0 {
		return nil, fmt.Errorf("integrators: empty time span [%g, %g]", t0, t1)
	}
	sol := newSolution(m0, t0, t1, steps, prior)
	h := (t1 - t0) / float64(steps)

	var r rk4
	for n := 0; n < steps; n++ {
		r.step(f, sol, n, h)
		if !sol.ys[n+1].IsValid() {
			return nil, fmt.Errorf("integrators: t=%g: %w", t0+float64(n+1)*h, magnet.ErrInvalidState)
		}
	}

	// Derivative at the final node completes the last Hermite segment.
	f(t1, sol.ys[steps], sol.fs[steps], sol)
	sol.filled = steps + 1
	return sol, nil
}

// Solve integrates a plain ODE; identical to SolveDDE with no prior
// history.
func Solve(f Func, m0 magnet.State, t0, t1 float64, steps int) (*Solution, error) {
	return SolveDDE(f, m0, t0, t1, steps, nil)
}
