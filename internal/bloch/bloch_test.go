package bloch

import (
	"math"
	"testing"

	"github.com/akarls/mtsim/internal/hamiltonian"
	"github.com/akarls/mtsim/internal/integrators"
	"github.com/akarls/mtsim/internal/lineshape"
	"github.com/akarls/mtsim/internal/magnet"
)

func testParams() magnet.Params {
	return magnet.Params{
		Omega1: 2 * math.Pi * 100,
		B1:     1,
		Omega0: 2 * math.Pi * 100,
		M0s:    0.2,
		R1f:    1,
		R2f:    15,
		Rx:     30,
		R1s:    2,
		T2s:    10e-6,
	}
}

// With no RF the free pool precesses at ω0 and decays with R2f; the
// matrix exponential must reproduce the closed form.
func TestPropagateFreePrecession(t *testing.T) {
	p := testParams()
	p.Omega1 = 0
	p.M0s = 0
	p.Rx = 0

	a := Matrix(&p)
	m0 := make([]float64, Dim)
	m0[0] = 1 // xf
	m0[6] = 1

	tt := 0.01
	got := Propagate(a, m0, tt)
	decay := math.Exp(-p.R2f * tt)
	wantX := decay * math.Cos(p.Omega0*tt)
	wantY := decay * math.Sin(p.Omega0*tt)
	if math.Abs(got[0]-wantX) > 1e-9 || math.Abs(got[1]-wantY) > 1e-9 {
		t.Errorf("transverse (%.9f, %.9f), expected (%.9f, %.9f)", got[0], got[1], wantX, wantY)
	}
	wantZ := 1 - math.Exp(-p.R1f*tt)
	if math.Abs(got[2]-wantZ) > 1e-9 {
		t.Errorf("zf = %.9f, expected %.9f", got[2], wantZ)
	}
}

func TestEquilibriumIsFixedPoint(t *testing.T) {
	p := testParams()
	p.Omega1 = 0

	a := Matrix(&p)
	m := Propagate(a, Equilibrium(&p), 5)
	want := Equilibrium(&p)
	for i := range want {
		if math.Abs(m[i]-want[i]) > 1e-9 {
			t.Errorf("component %d drifted: %.9f, expected %.9f", i, m[i], want[i])
		}
	}
}

// Henkelman's steady state is the fixed point of the linear
// continuous-wave system, so integrating that system long enough must
// converge to it.
func TestHenkelmanIsLongTimeLimitOfLinearCW(t *testing.T) {
	p := testParams()
	ls := lineshape.Lorentzian{}

	zf, zs, err := HenkelmanSteadyState(&p, ls)
	if err != nil {
		t.Fatalf("HenkelmanSteadyState: %v", err)
	}

	ev := &hamiltonian.Linear{P: &p, Rrf: GrahamCW(&p, ls)}
	m0 := magnet.NewState(1-p.M0s, p.M0s, 0)
	tEnd := 20.0
	steps := int(3 * p.Omega0 * tEnd)
	sol, err := integrators.Solve(ev.Derive, m0, 0, tEnd, steps)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	got := sol.Last()
	if math.Abs(got[magnet.Zf]-zf) > 1e-4 {
		t.Errorf("zf: integrated %.6f, steady state %.6f", got[magnet.Zf], zf)
	}
	if math.Abs(got[magnet.Zs]-zs) > 1e-4 {
		t.Errorf("zs: integrated %.6f, steady state %.6f", got[magnet.Zs], zs)
	}
}

// Sled's model with a constant long pulse approaches the same steady
// state: its running rate converges to the continuous-wave rate.
func TestHenkelmanIsLongTimeLimitOfSled(t *testing.T) {
	p := testParams()
	ls := lineshape.Lorentzian{}

	zf, zs, err := HenkelmanSteadyState(&p, ls)
	if err != nil {
		t.Fatalf("HenkelmanSteadyState: %v", err)
	}

	ev := &hamiltonian.Sled{P: &p, G: ls}
	m0 := magnet.NewState(1-p.M0s, p.M0s, 0)
	tEnd := 20.0
	steps := int(3 * p.Omega0 * tEnd)
	sol, err := integrators.Solve(ev.Derive, m0, 0, tEnd, steps)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	got := sol.Last()
	if math.Abs(got[magnet.Zf]-zf) > 5e-4 {
		t.Errorf("zf: integrated %.6f, steady state %.6f", got[magnet.Zf], zf)
	}
	if math.Abs(got[magnet.Zs]-zs) > 5e-4 {
		t.Errorf("zs: integrated %.6f, steady state %.6f", got[magnet.Zs], zs)
	}
}

// The generalized Bloch model reaches the same fixed point: with a
// constant history the memory integral collapses to the
// continuous-wave rate, so Henkelman's steady state solves the delay
// equation too.
func TestHenkelmanIsLongTimeLimitOfGBloch(t *testing.T) {
	p := testParams()
	ls := lineshape.Lorentzian{}

	zf, zs, err := HenkelmanSteadyState(&p, ls)
	if err != nil {
		t.Fatalf("HenkelmanSteadyState: %v", err)
	}

	ev := &hamiltonian.GBloch{P: &p, G: ls}
	m0 := magnet.NewState(1-p.M0s, p.M0s, 0)
	tEnd := 20.0
	steps := int(3 * p.Omega0 * tEnd)
	sol, err := integrators.SolveDDE(ev.Derive, m0, 0, tEnd, steps, nil)
	if err != nil {
		t.Fatalf("SolveDDE: %v", err)
	}
	got := sol.Last()
	if math.Abs(got[magnet.Zf]-zf) > 5e-4 {
		t.Errorf("zf: integrated %.6f, steady state %.6f", got[magnet.Zf], zf)
	}
	if math.Abs(got[magnet.Zs]-zs) > 5e-4 {
		t.Errorf("zs: integrated %.6f, steady state %.6f", got[magnet.Zs], zs)
	}
}

func TestIsolatedMatrixColumns(t *testing.T) {
	a := IsolatedMatrix(100, 50, 2, 10e-6)
	if got := a.At(0, 0); math.Abs(got+1e5) > 1e-4 {
		t.Errorf("a[0,0] = %g, expected -1/T2s", got)
	}
	if got := a.At(2, 0); got != -100 {
		t.Errorf("a[2,0] = %g, expected -ω1", got)
	}
	if got := a.At(2, 3); got != 2 {
		t.Errorf("a[2,3] = %g, expected R1", got)
	}
}
