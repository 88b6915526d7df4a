// Package bloch provides the exact matrix-exponential solution of the
// two-pool Bloch equations with an explicit semi-solid transverse pair
// (valid for the Lorentzian lineshape, R2s = 1/T2s), and Henkelman's
// steady-state model. Both serve as references for the time-dependent
// saturation models.
package bloch

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/akarls/mtsim/internal/lineshape"
	"github.com/akarls/mtsim/internal/magnet"
)

// Dim is the full state dimension: [xf yf zf xs ys zs 1].
const Dim = 7

// Matrix returns the generator of the full two-pool Bloch system.
func Matrix(p *magnet.Params) *mat.Dense {
	w1 := p.B1 * p.Omega1
	r2s := 1 / p.T2s
	oneM0s := 1 - p.M0s
	a := mat.NewDense(Dim, Dim, nil)

	// Free pool.
	a.Set(0, 0, -p.R2f)
	a.Set(0, 1, -p.Omega0)
	a.Set(0, 2, w1)
	a.Set(1, 0, p.Omega0)
	a.Set(1, 1, -p.R2f)
	a.Set(2, 0, -w1)
	a.Set(2, 2, -(p.R1f + p.Rx*p.M0s))
	a.Set(2, 5, p.Rx*oneM0s)
	a.Set(2, 6, oneM0s*p.R1f)

	// Semi-solid pool.
	a.Set(3, 3, -r2s)
	a.Set(3, 4, -p.Omega0)
	a.Set(3, 5, w1)
	a.Set(4, 3, p.Omega0)
	a.Set(4, 4, -r2s)
	a.Set(5, 3, -w1)
	a.Set(5, 2, p.Rx*p.M0s)
	a.Set(5, 5, -(p.R1s + p.Rx*oneM0s))
	a.Set(5, 6, p.M0s*p.R1s)

	return a
}

// Propagate applies exp(A·t) to m0 and returns the state at t.
func Propagate(a *mat.Dense, m0 []float64, t float64) []float64 {
	n, _ := a.Dims()
	var at, e mat.Dense
	at.Scale(t, a)
	e.Exp(&at)

	out := make([]float64, n)
	v := mat.NewVecDense(n, out)
	v.MulVec(&e, mat.NewVecDense(n, m0))
	return out
}

// Equilibrium returns the thermal-equilibrium full state.
func Equilibrium(p *magnet.Params) []float64 {
	m := make([]float64, Dim)
	m[2] = 1 - p.M0s
	m[5] = p.M0s
	m[6] = 1
	return m
}

// IsolatedMatrix returns the 4×4 generator [xs ys zs 1] of an isolated
// semi-solid pool with R2s = 1/T2s.
func IsolatedMatrix(w1, omega0, r1, t2s float64) *mat.Dense {
	r2s := 1 / t2s
	a := mat.NewDense(4, 4, nil)
	a.Set(0, 0, -r2s)
	a.Set(0, 1, -omega0)
	a.Set(0, 2, w1)
	a.Set(1, 0, omega0)
	a.Set(1, 1, -r2s)
	a.Set(2, 0, -w1)
	a.Set(2, 2, -r1)
	a.Set(2, 3, r1)
	return a
}

// HenkelmanSteadyState solves the coupled steady state with the
// semi-solid saturation collapsed into the continuous-wave rate
// Rrf = π·(B1·ω1)²·g(ω0). It returns (zf, zs).
func HenkelmanSteadyState(p *magnet.Params, ls lineshape.Shape) (float64, float64, error) {
	w1 := p.B1 * p.Omega1
	rrf := GrahamCW(p, ls)
	oneM0s := 1 - p.M0s

	a := mat.NewDense(4, 4, []float64{
		-p.R2f, -p.Omega0, w1, 0,
		p.Omega0, -p.R2f, 0, 0,
		-w1, 0, -(p.R1f + p.Rx*p.M0s), p.Rx * oneM0s,
		0, 0, p.Rx * p.M0s, -(p.R1s + p.Rx*oneM0s + rrf),
	})
	b := mat.NewVecDense(4, []float64{0, 0, -oneM0s * p.R1f, -p.M0s * p.R1s})

	var v mat.VecDense
	if err := v.SolveVec(a, b); err != nil {
		return 0, 0, err
	}
	return v.AtVec(2), v.AtVec(3), nil
}

// GrahamCW is the continuous-wave saturation rate π·(B1·ω1)²·g(ω0).
func GrahamCW(p *magnet.Params, ls lineshape.Shape) float64 {
	w1 := p.B1 * p.Omega1
	return math.Pi * w1 * w1 * ls.Value(p.Omega0, p.T2s)
}
