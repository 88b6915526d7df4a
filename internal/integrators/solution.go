package integrators

import (
	"math"

	"github.com/akarls/mtsim/internal/magnet"
)

// Solution is the dense output of a solve: node values plus node
// derivatives, interpolated with cubic Hermite segments. It implements
// magnet.History and is handed to the right-hand side while the solve
// is still in progress; queries past the freshest node extrapolate
// linearly from it (method-of-steps overlap within the active step).
type Solution struct {
	t0, t1 float64
	h      float64
	ys     []magnet.State
	fs     []magnet.State
	prior  magnet.History
	filled int // nodes whose derivative is recorded
}

func newSolution(m0 magnet.State, t0, t1 float64, steps int, prior magnet.History) *Solution {
	sol := &Solution{
		t0:    t0,
		t1:    t1,
		h:     (t1 - t0) / float64(steps),
		ys:    make([]magnet.State, steps+1),
		fs:    make([]magnet.State, steps+1),
		prior: prior,
	}
	sol.ys[0] = m0.Clone()
	for i := range sol.ys {
		if i > 0 {
			sol.ys[i] = make(magnet.State, len(m0))
		}
		sol.fs[i] = make(magnet.State, len(m0))
	}
	return sol
}

// Query returns component comp of the trajectory at time t.
func (s *Solution) Query(t float64, comp int) float64 {
	if t <= s.t0 {
		if s.prior != nil {
			return s.prior.Query(t, comp)
		}
		return s.ys[0][comp]
	}
	last := s.filled - 1
	if last < 0 {
		if s.prior != nil {
			return s.prior.Query(s.t0, comp)
		}
		return s.ys[0][comp]
	}
	tLast := s.t0 + float64(last)*s.h
	if t >= tLast {
		// Inside the active step: extrapolate from the freshest node.
		return s.ys[last][comp] + (t-tLast)*s.fs[last][comp]
	}
	seg := int((t - s.t0) / s.h)
	if seg >= last {
		seg = last - 1
	}
	return s.hermite(seg, t, comp)
}

func (s *Solution) hermite(seg int, t float64, comp int) float64 {
	ts := s.t0 + float64(seg)*s.h
	th := (t - ts) / s.h
	th2 := th * th
	th3 := th2 * th
	h00 := 2*th3 - 3*th2 + 1
	h10 := th3 - 2*th2 + th
	h01 := -2*th3 + 3*th2
	h11 := th3 - th2
	return h00*s.ys[seg][comp] + h10*s.h*s.fs[seg][comp] +
		h01*s.ys[seg+1][comp] + h11*s.h*s.fs[seg+1][comp]
}

// At returns the interpolated full state at time t, clamped to the
// solved span.
func (s *Solution) At(t float64) magnet.State {
	t = math.Max(s.t0, math.Min(t, s.t1))
	out := make(magnet.State, len(s.ys[0]))
	for c := range out {
		out[c] = s.Query(t, c)
	}
	return out
}

// Last returns the state at the end of the span.
func (s *Solution) Last() magnet.State { return s.ys[len(s.ys)-1] }

// Span returns the solved time interval.
func (s *Solution) Span() (float64, float64) { return s.t0, s.t1 }

// Steps returns the number of integration steps taken.
func (s *Solution) Steps() int { return len(s.ys) - 1 }
