package magnet

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/onsi/gomega"
)

func TestNewStateLayout(t *testing.T) {
	g := NewGomegaWithT(t)

	st := NewState(0.8, 0.2, 2)
	g.Expect(st).To(HaveLen(3 * BlockSize))
	g.Expect(st.Blocks()).To(Equal(3))

	base := st.Block(0)
	g.Expect(base[Zf]).To(Equal(0.8))
	g.Expect(base[Zs]).To(Equal(0.2))
	g.Expect(base[Hom]).To(Equal(1.0))

	for b := 1; b < 3; b++ {
		for c := 0; c < BlockSize; c++ {
			g.Expect(st.Block(b)[c]).To(BeZero(), fmt.Sprintf("block %d comp %d", b, c))
		}
	}
}

func TestBlockAliasesState(t *testing.T) {
	g := NewGomegaWithT(t)

	st := NewState(1, 0, 1)
	st.Block(1)[Zs] = 0.5
	g.Expect(st[BlockSize+Zs]).To(Equal(0.5))
}

func TestZeroPreservesHom(t *testing.T) {
	g := NewGomegaWithT(t)

	st := NewState(0.8, 0.2, 1)
	st.Block(1)[Xf] = 3
	st.Zero()
	g.Expect(st[Hom]).To(Equal(1.0))
	g.Expect(st.Block(1)[Hom]).To(BeZero())
	g.Expect(st[Zf]).To(BeZero())
	g.Expect(st.Block(1)[Xf]).To(BeZero())
}

func TestParamsValidate(t *testing.T) {
	g := NewGomegaWithT(t)

	valid := Params{M0s: 0.2, R1f: 1, R2f: 15, Rx: 30, R1s: 2, T2s: 10e-6, B1: 1}
	g.Expect(valid.Validate()).To(Succeed())

	cases := []Params{
		{M0s: -0.1, R1f: 1, R2f: 15, Rx: 30, R1s: 2, T2s: 10e-6},
		{M0s: 1.1, R1f: 1, R2f: 15, Rx: 30, R1s: 2, T2s: 10e-6},
		{M0s: 0.2, R1f: 0, R2f: 15, Rx: 30, R1s: 2, T2s: 10e-6},
		{M0s: 0.2, R1f: 1, R2f: 15, Rx: -1, R1s: 2, T2s: 10e-6},
		{M0s: 0.2, R1f: 1, R2f: 15, Rx: 30, R1s: 2, T2s: 0},
	}
	for i, p := range cases {
		err := p.Validate()
		g.Expect(err).To(HaveOccurred(), fmt.Sprintf("case %d", i))
		g.Expect(errors.Is(err, ErrParameterBounds)).To(BeTrue(), fmt.Sprintf("case %d: %v", i, err))
	}
}

func TestPerturb(t *testing.T) {
	g := NewGomegaWithT(t)

	p := Params{M0s: 0.2, R1f: 1, R2f: 15, Rx: 30, R1s: 2, T2s: 10e-6, B1: 1}
	q := GradR1a.Perturb(p, 1e-3)
	g.Expect(q.R1f).To(BeNumerically("~", 1.001, 1e-12))
	g.Expect(q.R1s).To(BeNumerically("~", 2.001, 1e-12))
	g.Expect(p.R1f).To(Equal(1.0), "Perturb must not mutate the receiver copy source")

	q = GradT2s.Perturb(p, 1e-9)
	g.Expect(q.T2s).To(BeNumerically("~", 10e-6+1e-9, 1e-18))
}

func TestGradKindString(t *testing.T) {
	g := NewGomegaWithT(t)
	g.Expect(GradM0s.String()).To(Equal("m0s"))
	g.Expect(GradB1.String()).To(Equal("B1"))
	g.Expect(GradKind(99).String()).To(Equal("unknown"))
}

func TestSimulationErrorUnwrap(t *testing.T) {
	g := NewGomegaWithT(t)

	err := &SimulationError{Pulse: 3, Time: 0.01, Wrapped: ErrEchoMismatch}
	g.Expect(errors.Is(err, ErrEchoMismatch)).To(BeTrue())
	g.Expect(err.Error()).To(ContainSubstring("pulse 3"))
}

func TestConstHistory(t *testing.T) {
	g := NewGomegaWithT(t)

	h := ConstHistory{1, 2, 3, 4, 5}
	g.Expect(h.Query(-1, 2)).To(Equal(3.0))
	g.Expect(h.Query(10, 0)).To(Equal(1.0))
}
