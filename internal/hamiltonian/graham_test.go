package hamiltonian

import (
	"math"
	"testing"

	"github.com/akarls/mtsim/internal/integrators"
	"github.com/akarls/mtsim/internal/lineshape"
	"github.com/akarls/mtsim/internal/magnet"
)

func TestGrahamRateDerivatives(t *testing.T) {
	shapes := []struct {
		name string
		ls   lineshape.Shape
	}{
		{"lorentzian", lineshape.Lorentzian{}},
		{"gaussian", lineshape.Gaussian{}},
		{"superlorentzian", lineshape.SuperLorentzian{}},
	}
	w1, b1, trf, t2s := 1000*math.Pi, 0.9, 500e-6, 10e-6

	for _, sh := range shapes {
		e := 1e-11
		fd := (GrahamRrfSpectral(sh.ls, w1, b1, trf, t2s+e) -
			GrahamRrfSpectral(sh.ls, w1, b1, trf, t2s-e)) / (2 * e)
		got := GrahamDRrfDT2s(sh.ls, w1, b1, trf, t2s)
		if math.Abs(got-fd) > 1e-3*math.Abs(fd) {
			t.Errorf("%s: dRrf/dT2s = %.6g, finite difference %.6g", sh.name, got, fd)
		}

		e = 1e-7
		fd = (GrahamRrfSpectral(sh.ls, w1, b1+e, trf, t2s) -
			GrahamRrfSpectral(sh.ls, w1, b1-e, trf, t2s)) / (2 * e)
		got = GrahamDRrfDB1(sh.ls, w1, b1, trf, t2s)
		if math.Abs(got-fd) > 1e-6*math.Abs(fd) {
			t.Errorf("%s: dRrf/dB1 = %.6g, finite difference %.6g", sh.name, got, fd)
		}
	}
}

// For long on-resonance pulses Graham's spectral rate approaches the
// continuous-wave rate π·(B1·ω1)²·g(0).
func TestGrahamSpectralApproachesCW(t *testing.T) {
	ls := lineshape.Lorentzian{}
	w1, b1, t2s := 200*math.Pi, 1.0, 10e-6
	spectral := GrahamRrfSpectral(ls, w1, b1, 0.1, t2s) // τ = 10⁴
	cw := GrahamRrfSingleFrequency(ls, w1, b1, 0, t2s)
	if math.Abs(spectral-cw) > 1e-3*cw {
		t.Errorf("spectral rate %.6g, CW limit %.6g", spectral, cw)
	}
}

func TestLinearGradientsMatchFiniteDifferences(t *testing.T) {
	p := wmParams()
	ls := lineshape.Gaussian{}
	trf := 1e-3
	kinds := []magnet.GradKind{magnet.GradT2s, magnet.GradB1, magnet.GradM0s}

	terminal := func(pp magnet.Params, nGrad int) magnet.State {
		var grads []magnet.GradKind
		if nGrad > 0 {
			grads = kinds
		}
		ev := NewGraham(&pp, ls, grads, magnet.PulseExcitation, pp.Omega1, trf, false)
		m0 := magnet.NewState(0.7, 0.15, nGrad)
		sol, err := integrators.Solve(ev.Derive, m0, 0, trf, 1200)
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}
		return sol.Last()
	}

	final := terminal(p, len(kinds))
	eps := map[magnet.GradKind]float64{
		magnet.GradT2s: 1e-11,
		magnet.GradB1:  1e-6,
		magnet.GradM0s: 1e-6,
	}
	for i, kind := range kinds {
		e := eps[kind]
		up := terminal(kind.Perturb(p, e), 0)
		dn := terminal(kind.Perturb(p, -e), 0)
		blk := final.Block(i + 1)
		for _, comp := range []int{magnet.Xf, magnet.Yf, magnet.Zf, magnet.Zs} {
			want := (up[comp] - dn[comp]) / (2 * e)
			got := blk[comp]
			if math.Abs(got-want) > 1e-4*math.Max(1, math.Abs(want)) {
				t.Errorf("%s comp %d: analytic %.6g, finite difference %.6g", kind, comp, got, want)
			}
		}
	}
}

// Sled's rate and the generalized Bloch memory term describe the same
// saturation once the pulse has lasted several T2s, so the two models
// must land on nearly the same magnetization after a long pulse.
func TestSledTracksGBloch(t *testing.T) {
	p := wmParams()
	p.Omega1 = 500 * math.Pi
	p.Omega0 = 0
	trf := 2e-3

	m0 := magnet.NewState(1-p.M0s, p.M0s, 0)
	g := lineshape.Lorentzian{}

	sled := &Sled{P: &p, G: g}
	solSled, err := integrators.Solve(sled.Derive, m0.Clone(), 0, trf, 1500)
	if err != nil {
		t.Fatalf("Sled solve: %v", err)
	}
	gb := &GBloch{P: &p, G: g}
	solGB, err := integrators.SolveDDE(gb.Derive, m0.Clone(), 0, trf, 1500, nil)
	if err != nil {
		t.Fatalf("gBloch solve: %v", err)
	}

	a, b := solSled.Last(), solGB.Last()
	if math.Abs(a[magnet.Zs]-b[magnet.Zs]) > 0.02 {
		t.Errorf("zs: Sled %.5f, generalized Bloch %.5f", a[magnet.Zs], b[magnet.Zs])
	}
	if math.Abs(a[magnet.Zf]-b[magnet.Zf]) > 0.02 {
		t.Errorf("zf: Sled %.5f, generalized Bloch %.5f", a[magnet.Zf], b[magnet.Zf])
	}
}
