package magnet

import "math"

// BlockSize is the length of one magnetization block:
// [xf, yf, zf, zs, h] where h is the homogeneous source channel.
const BlockSize = 5

// Component indices within a block.
const (
	Xf = iota
	Yf
	Zf
	Zs
	Hom
)

// State is a magnetization vector. The first block holds the
// magnetization proper with Hom == 1; each appended sensitivity block
// holds the partial derivative of the base block with respect to one
// parameter and carries Hom == 0. Differentiating ṁ = A·m + b in a
// parameter gives ġ = A·g + (∂A)·m + ∂b: the source derivative enters
// through the explicit correction terms, so a unit Hom entry in a
// sensitivity block would count it twice. The finite-difference
// gradient tests pin this down.
type State []float64

// NewState allocates a state with nGrad sensitivity blocks appended to
// the base block. zf0 and zs0 are the thermal-equilibrium longitudinal
// components.
func NewState(zf0, zs0 float64, nGrad int) State {
	s := make(State, BlockSize*(nGrad+1))
	s[Zf] = zf0
	s[Zs] = zs0
	s[Hom] = 1
	return s
}

// Blocks returns the number of blocks (base plus sensitivities).
func (s State) Blocks() int { return len(s) / BlockSize }

// Block returns block i as a slice aliasing s.
func (s State) Block(i int) State {
	return s[BlockSize*i : BlockSize*(i+1)]
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Zero clears every entry but preserves the homogeneous channels.
func (s State) Zero() {
	hom := make([]float64, s.Blocks())
	for i := range hom {
		hom[i] = s[BlockSize*i+Hom]
	}
	for i := range s {
		s[i] = 0
	}
	for i, h := range hom {
		s[BlockSize*i+Hom] = h
	}
}

// History is read access to the trajectory solved so far. It is owned
// and updated by the integrator; evaluators only ever query it. For
// times at or before the start of the solve it returns the initial
// condition.
type History interface {
	Query(t float64, comp int) float64
}

// ConstHistory is a History pinned to a fixed state, used before the
// first solve step of a memory model.
type ConstHistory State

func (h ConstHistory) Query(_ float64, comp int) float64 { return h[comp] }
