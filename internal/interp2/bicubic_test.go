package interp2

import (
	"math"
	"testing"
)

// Second-order node differences are exact for quadratics, so the
// spline must reproduce a quadratic surface and its derivatives
// exactly.
func quadratic(x, y float64) float64 { return 2 + 3*x - y + 0.5*x*x + 0.25*x*y + 1.5*y*y }

func fitQuadratic(t *testing.T) *Spline {
	t.Helper()
	nx, ny := 7, 9
	x0, x1 := -1.0, 2.0
	y0, y1 := 0.0, 4.0
	vals := make([]float64, nx*ny)
	dx := (x1 - x0) / float64(nx-1)
	dy := (y1 - y0) / float64(ny-1)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			vals[j*nx+i] = quadratic(x0+float64(i)*dx, y0+float64(j)*dy)
		}
	}
	s, err := New(x0, x1, nx, y0, y1, ny, vals)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestReproducesQuadratic(t *testing.T) {
	s := fitQuadratic(t)
	pts := [][2]float64{{-1, 0}, {0.31, 1.72}, {1.99, 3.99}, {-0.5, 2}, {2, 4}}
	for _, p := range pts {
		x, y := p[0], p[1]
		if got, want := s.At(x, y), quadratic(x, y); math.Abs(got-want) > 1e-10 {
			t.Errorf("At(%g, %g) = %.12f, expected %.12f", x, y, got, want)
		}
	}
}

func TestDerivativesOfQuadratic(t *testing.T) {
	s := fitQuadratic(t)
	x, y := 0.7, 2.3
	e := s.Full(x, y)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"Dx", e.Dx, 3 + x + 0.25*y},
		{"Dy", e.Dy, -1 + 0.25*x + 3*y},
		{"Dxx", e.Dxx, 1},
		{"Dyy", e.Dyy, 3},
		{"Dxy", e.Dxy, 0.25},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %.12f, expected %.12f", c.name, c.got, c.want)
		}
	}
}

func TestSmoothSurfaceAccuracy(t *testing.T) {
	nx, ny := 32, 32
	x0, x1 := 0.0, 3.0
	y0, y1 := 0.0, 3.0
	f := func(x, y float64) float64 { return math.Sin(x) * math.Exp(-y/2) }
	vals := make([]float64, nx*ny)
	dx := (x1 - x0) / float64(nx-1)
	dy := (y1 - y0) / float64(ny-1)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			vals[j*nx+i] = f(x0+float64(i)*dx, y0+float64(j)*dy)
		}
	}
	s, err := New(x0, x1, nx, y0, y1, ny, vals)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, p := range [][2]float64{{0.13, 0.4}, {1.5, 1.5}, {2.87, 2.9}} {
		got := s.At(p[0], p[1])
		want := f(p[0], p[1])
		if math.Abs(got-want) > 1e-5 {
			t.Errorf("At(%g, %g) = %.8f, expected %.8f", p[0], p[1], got, want)
		}
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(0, 1, 3, 0, 1, 4, make([]float64, 12)); err == nil {
		t.Error("expected error for grid too small")
	}
	if _, err := New(0, 1, 4, 0, 1, 4, make([]float64, 15)); err == nil {
		t.Error("expected error for value count mismatch")
	}
	if _, err := New(1, 1, 4, 0, 1, 4, make([]float64, 16)); err == nil {
		t.Error("expected error for empty domain")
	}
}

func TestPanicsOutsideDomain(t *testing.T) {
	s := fitQuadratic(t)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-domain query")
		}
	}()
	s.At(2.5, 1)
}
