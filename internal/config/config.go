// Package config loads YAML simulation presets: the tissue parameter
// set, the lineshape, the pulse train, and the saturation model to run.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/akarls/mtsim/internal/lineshape"
	"github.com/akarls/mtsim/internal/magnet"
	"github.com/akarls/mtsim/internal/sequence"
)

// Default acquisition settings, loosely a 3T inversion-recovery
// balanced train.
const (
	DefaultTR     = 3.5e-3
	DefaultTRF    = 500e-6
	DefaultAlpha  = 15.0
	DefaultPulses = 100
	DefaultNiter  = 2
)

type Config struct {
	Model     string       `yaml:"model"` // gbloch | graham | linear
	Lineshape string       `yaml:"lineshape"`
	Params    ParamsConfig `yaml:"params"`
	Train     TrainConfig  `yaml:"train"`
	Grads     []string     `yaml:"grads"`
}

// ParamsConfig mirrors magnet.Params in YAML. Rates in 1/s, T2s in
// seconds, omega0 in rad/s.
type ParamsConfig struct {
	M0s    float64 `yaml:"m0s"`
	R1f    float64 `yaml:"r1f"`
	R2f    float64 `yaml:"r2f"`
	Rx     float64 `yaml:"rx"`
	R1s    float64 `yaml:"r1s"`
	T2s    float64 `yaml:"t2s"`
	B1     float64 `yaml:"b1"`
	Omega0 float64 `yaml:"omega0"`
}

// TrainConfig describes the pulse train. Flip angles are in degrees.
// A single-entry alpha or trf list is repeated across npulses.
type TrainConfig struct {
	Alpha         []float64 `yaml:"alpha"`
	TRF           []float64 `yaml:"trf"`
	NPulses       int       `yaml:"npulses"`
	TR            float64   `yaml:"tr"`
	Niter         int       `yaml:"niter"`
	InversionPrep bool      `yaml:"inversion_prep"`
	InvDur        float64   `yaml:"inv_dur"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:     "gbloch",
		Lineshape: "superlorentzian",
		Params:    Presets["whitematter"],
		Train: TrainConfig{
			Alpha:         []float64{DefaultAlpha},
			TRF:           []float64{DefaultTRF},
			NPulses:       DefaultPulses,
			TR:            DefaultTR,
			Niter:         DefaultNiter,
			InversionPrep: true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MagnetParams converts the YAML parameter block into magnet.Params.
func (c *Config) MagnetParams() magnet.Params {
	p := c.Params
	return magnet.Params{
		M0s:    p.M0s,
		R1f:    p.R1f,
		R2f:    p.R2f,
		Rx:     p.Rx,
		R1s:    p.R1s,
		T2s:    p.T2s,
		B1:     p.B1,
		Omega0: p.Omega0,
	}
}

// Shape resolves the configured lineshape.
func (c *Config) Shape() (lineshape.Shape, error) {
	switch c.Lineshape {
	case "lorentzian":
		return lineshape.Lorentzian{}, nil
	case "gaussian":
		return lineshape.Gaussian{}, nil
	case "superlorentzian", "":
		return lineshape.SuperLorentzian{}, nil
	default:
		return nil, fmt.Errorf("config: unknown lineshape %q", c.Lineshape)
	}
}

// GradKinds resolves the requested sensitivity list.
func (c *Config) GradKinds() ([]magnet.GradKind, error) {
	kinds := make([]magnet.GradKind, 0, len(c.Grads))
	for _, name := range c.Grads {
		k, err := parseGrad(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func parseGrad(name string) (magnet.GradKind, error) {
	for k := magnet.GradM0s; k <= magnet.GradB1; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("config: unknown gradient %q", name)
}

// SequenceTrain expands the YAML train block into a pulse train with
// per-pulse amplitudes in rad/s.
func (c *Config) SequenceTrain() (sequence.Train, error) {
	t := c.Train
	n := t.NPulses
	if n == 0 {
		n = len(t.Alpha)
	}
	if n == 0 {
		return sequence.Train{}, fmt.Errorf("config: empty pulse train")
	}
	alpha, err := expand(t.Alpha, n, "alpha")
	if err != nil {
		return sequence.Train{}, err
	}
	trf, err := expand(t.TRF, n, "trf")
	if err != nil {
		return sequence.Train{}, err
	}
	w1 := make([]float64, n)
	for i := range w1 {
		if trf[i] <= 0 {
			return sequence.Train{}, fmt.Errorf("config: pulse %d: trf=%g", i, trf[i])
		}
		w1[i] = alpha[i] * math.Pi / 180 / trf[i]
	}
	niter := t.Niter
	if niter == 0 {
		niter = DefaultNiter
	}
	return sequence.Train{
		Omega1:        w1,
		TRF:           trf,
		TR:            t.TR,
		Niter:         niter,
		InversionPrep: t.InversionPrep,
		InvDur:        t.InvDur,
	}, nil
}

func expand(v []float64, n int, name string) ([]float64, error) {
	switch len(v) {
	case n:
		return v, nil
	case 1:
		out := make([]float64, n)
		for i := range out {
			out[i] = v[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("config: %s has %d entries, want 1 or %d", name, len(v), n)
	}
}
