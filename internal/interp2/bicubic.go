// Package interp2 implements a bicubic spline on a uniform 2-D grid
// with analytic gradient and Hessian, the interpolant behind the
// precomputed saturation-rate table.
package interp2

import "fmt"

// Spline is an immutable bicubic interpolant. Node derivatives are
// estimated with second-order finite differences, giving a C¹ surface
// whose per-patch polynomial supplies exact derivatives up to mixed
// second order. Queries outside the grid are a caller contract
// violation and panic.
type Spline struct {
	x0, dx float64
	y0, dy float64
	nx, ny int
	x1, y1 float64
	coef   []float64 // 16 per cell, cell-major
}

// New fits a bicubic spline to vals, where vals[j*nx+i] is the value
// at (x0 + i·dx, y0 + j·dy) on an nx×ny grid spanning [x0,x1]×[y0,y1].
func New(x0, x1 float64, nx int, y0, y1 float64, ny int, vals []float64) (*Spline, error) {
	if nx < 4 || ny < 4 {
		return nil, fmt.Errorf("interp2: grid %dx%d too small for bicubic fit", nx, ny)
	}
	if len(vals) != nx*ny {
		return nil, fmt.Errorf("interp2: %d values for %dx%d grid", len(vals), nx, ny)
	}
	if x1 <= x0 || y1 <= y0 {
		return nil, fmt.Errorf("interp2: empty domain [%g,%g]x[%g,%g]", x0, x1, y0, y1)
	}
	s := &Spline{
		x0: x0, dx: (x1 - x0) / float64(nx-1),
		y0: y0, dy: (y1 - y0) / float64(ny-1),
		nx: nx, ny: ny, x1: x1, y1: y1,
	}

	at := func(i, j int) float64 { return vals[j*nx+i] }
	fx := make([]float64, nx*ny)
	fy := make([]float64, nx*ny)
	fxy := make([]float64, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			fx[j*nx+i] = diffX(at, i, j, nx)
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			fy[j*nx+i] = diffY(at, i, j, ny)
			fxy[j*nx+i] = diffY(func(a, b int) float64 { return fx[b*nx+a] }, i, j, ny)
		}
	}

	s.coef = make([]float64, (nx-1)*(ny-1)*16)
	for cj := 0; cj < ny-1; cj++ {
		for ci := 0; ci < nx-1; ci++ {
			s.fitCell(ci, cj, at, fx, fy, fxy)
		}
	}
	return s, nil
}

// diffX is the second-order difference along x in grid units.
func diffX(at func(i, j int) float64, i, j, nx int) float64 {
	switch {
	case i == 0:
		return (-3*at(0, j) + 4*at(1, j) - at(2, j)) / 2
	case i == nx-1:
		return (3*at(nx-1, j) - 4*at(nx-2, j) + at(nx-3, j)) / 2
	default:
		return (at(i+1, j) - at(i-1, j)) / 2
	}
}

func diffY(at func(i, j int) float64, i, j, ny int) float64 {
	switch {
	case j == 0:
		return (-3*at(i, 0) + 4*at(i, 1) - at(i, 2)) / 2
	case j == ny-1:
		return (3*at(i, ny-1) - 4*at(i, ny-2) + at(i, ny-3)) / 2
	default:
		return (at(i, j+1) - at(i, j-1)) / 2
	}
}

// binv is the inverse cubic-Hermite basis.
var binv = [4][4]float64{
	{1, 0, 0, 0},
	{0, 0, 1, 0},
	{-3, 3, -2, -1},
	{2, -2, 1, 1},
}

func (s *Spline) fitCell(ci, cj int, at func(i, j int) float64, fx, fy, fxy []float64) {
	idx := func(i, j int) int { return (cj+j)*s.nx + (ci + i) }
	// Corner data in local (grid-spacing) units.
	var f [4][4]float64
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			f[i][j] = at(ci+i, cj+j)
			f[i][j+2] = fy[idx(i, j)]
			f[i+2][j] = fx[idx(i, j)]
			f[i+2][j+2] = fxy[idx(i, j)]
		}
	}
	// A = binv · f · binvᵀ.
	var tmp, a [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				tmp[i][j] += binv[i][k] * f[k][j]
			}
		}
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				a[i][j] += tmp[i][k] * binv[j][k]
			}
		}
	}
	base := (cj*(s.nx-1) + ci) * 16
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			s.coef[base+4*i+j] = a[i][j]
		}
	}
}

// Eval holds the value and partial derivatives of the spline at one
// point.
type Eval struct {
	V        float64
	Dx, Dy   float64
	Dxx, Dyy float64
	Dxy      float64
}

// At returns the interpolated value.
func (s *Spline) At(x, y float64) float64 { return s.Full(x, y).V }

// Full returns value, gradient and Hessian at (x, y).
func (s *Spline) Full(x, y float64) Eval {
	ci, u := s.locate(x, s.x0, s.dx, s.nx)
	cj, v := s.locate(y, s.y0, s.dy, s.ny)
	base := (cj*(s.nx-1) + ci) * 16

	up := [4]float64{1, u, u * u, u * u * u}
	vp := [4]float64{1, v, v * v, v * v * v}
	du := [4]float64{0, 1, 2 * u, 3 * u * u}
	dv := [4]float64{0, 1, 2 * v, 3 * v * v}
	duu := [4]float64{0, 0, 2, 6 * u}
	dvv := [4]float64{0, 0, 2, 6 * v}

	var e Eval
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			a := s.coef[base+4*i+j]
			e.V += a * up[i] * vp[j]
			e.Dx += a * du[i] * vp[j]
			e.Dy += a * up[i] * dv[j]
			e.Dxx += a * duu[i] * vp[j]
			e.Dyy += a * up[i] * dvv[j]
			e.Dxy += a * du[i] * dv[j]
		}
	}
	e.Dx /= s.dx
	e.Dy /= s.dy
	e.Dxx /= s.dx * s.dx
	e.Dyy /= s.dy * s.dy
	e.Dxy /= s.dx * s.dy
	return e
}

// Domain returns the fitted rectangle.
func (s *Spline) Domain() (x0, x1, y0, y1 float64) {
	return s.x0, s.x1, s.y0, s.y1
}

func (s *Spline) locate(x, x0, d float64, n int) (int, float64) {
	t := (x - x0) / d
	if t < -1e-9 || t > float64(n-1)*(1+1e-12)+1e-9 {
		panic(fmt.Sprintf("interp2: query %g outside fitted domain [%g, %g]", x, x0, x0+float64(n-1)*d))
	}
	c := int(t)
	if c > n-2 {
		c = n - 2
	}
	if c < 0 {
		c = 0
	}
	return c, t - float64(c)
}
