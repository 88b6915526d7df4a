package hamiltonian

import "github.com/akarls/mtsim/internal/magnet"

// addRelaxationCorrection adds the model-independent sensitivity
// correction for the relaxation and exchange parameter kinds. m is
// the base block, dg the derivative of the sensitivity block.
func addRelaxationCorrection(kind magnet.GradKind, p *magnet.Params, m, dg magnet.State) {
	oneM0s := 1 - p.M0s
	switch kind {
	case magnet.GradM0s:
		dg[magnet.Zf] -= p.Rx*m[magnet.Zf] + p.Rx*m[magnet.Zs] + p.R1f
		dg[magnet.Zs] += p.Rx*m[magnet.Zf] + p.Rx*m[magnet.Zs] + p.R1s
	case magnet.GradR1f:
		dg[magnet.Zf] += oneM0s - m[magnet.Zf]
	case magnet.GradR1s:
		dg[magnet.Zs] += p.M0s - m[magnet.Zs]
	case magnet.GradR1a:
		dg[magnet.Zf] += oneM0s - m[magnet.Zf]
		dg[magnet.Zs] += p.M0s - m[magnet.Zs]
	case magnet.GradR2f:
		dg[magnet.Xf] -= m[magnet.Xf]
		dg[magnet.Yf] -= m[magnet.Yf]
	case magnet.GradRx:
		dg[magnet.Zf] += -p.M0s*m[magnet.Zf] + oneM0s*m[magnet.Zs]
		dg[magnet.Zs] += p.M0s*m[magnet.Zf] - oneM0s*m[magnet.Zs]
	}
}

// addPrecessionOmega0 adds the Larmor cross term of the ω0
// sensitivity.
func addPrecessionOmega0(m, dg magnet.State) {
	dg[magnet.Xf] -= m[magnet.Yf]
	dg[magnet.Yf] += m[magnet.Xf]
}

// addRotationB1 adds the RF cross terms of the B1 sensitivity; w1rot
// is zero when the rotation is handled instantaneously outside the
// continuous equations.
func addRotationB1(p *magnet.Params, w1rot float64, m, dg magnet.State) {
	if w1rot == 0 {
		return
	}
	dg[magnet.Xf] += w1rot * m[magnet.Zf]
	dg[magnet.Zf] -= w1rot * m[magnet.Xf]
}
