package config

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/akarls/mtsim/internal/lineshape"
	"github.com/akarls/mtsim/internal/magnet"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "gbloch" {
		t.Errorf("expected model gbloch, got %s", cfg.Model)
	}
	if cfg.Lineshape != "superlorentzian" {
		t.Errorf("expected superlorentzian lineshape, got %s", cfg.Lineshape)
	}
	if cfg.Params != Presets["whitematter"] {
		t.Error("default params should be the white matter preset")
	}
	if cfg.Train.TR != DefaultTR || cfg.Train.NPulses != DefaultPulses {
		t.Errorf("unexpected default train: tr=%g npulses=%d", cfg.Train.TR, cfg.Train.NPulses)
	}
	if !cfg.Train.InversionPrep {
		t.Error("default train should use inversion prep")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	cfg := DefaultConfig()
	cfg.Model = "graham"
	cfg.Lineshape = "gaussian"
	cfg.Params.T2s = 9.5e-6
	cfg.Train.Alpha = []float64{10, 20, 30}
	cfg.Train.NPulses = 3
	cfg.Grads = []string{"m0s", "B1"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Model != "graham" || got.Lineshape != "gaussian" {
		t.Errorf("model/lineshape lost in round trip: %s/%s", got.Model, got.Lineshape)
	}
	if got.Params.T2s != 9.5e-6 {
		t.Errorf("t2s lost in round trip: %g", got.Params.T2s)
	}
	if len(got.Train.Alpha) != 3 || got.Train.Alpha[1] != 20 {
		t.Errorf("alpha list lost in round trip: %v", got.Train.Alpha)
	}
	if len(got.Grads) != 2 || got.Grads[0] != "m0s" {
		t.Errorf("grads lost in round trip: %v", got.Grads)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestGetPreset(t *testing.T) {
	p, ok := GetPreset("agar")
	if !ok {
		t.Fatal("expected the agar preset")
	}
	if p.T2s != 9.0e-6 {
		t.Errorf("expected agar t2s 9us, got %g", p.T2s)
	}

	if _, ok := GetPreset("nonexistent"); ok {
		t.Error("expected no preset for an unknown name")
	}

	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("ListPresets returned %d names, want %d", len(names), len(Presets))
	}
}

func TestMagnetParams(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.MagnetParams()
	if p.M0s != cfg.Params.M0s || p.T2s != cfg.Params.T2s || p.B1 != 1 {
		t.Errorf("parameter conversion mismatch: %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default preset should validate: %v", err)
	}
}

func TestShape(t *testing.T) {
	cases := map[string]lineshape.Shape{
		"lorentzian":      lineshape.Lorentzian{},
		"gaussian":        lineshape.Gaussian{},
		"superlorentzian": lineshape.SuperLorentzian{},
		"":                lineshape.SuperLorentzian{},
	}
	for name, want := range cases {
		cfg := &Config{Lineshape: name}
		got, err := cfg.Shape()
		if err != nil {
			t.Errorf("Shape(%q): %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("Shape(%q) = %T", name, got)
		}
	}

	cfg := &Config{Lineshape: "boxcar"}
	if _, err := cfg.Shape(); err == nil {
		t.Error("expected an error for an unknown lineshape")
	}
}

func TestGradKinds(t *testing.T) {
	cfg := &Config{Grads: []string{"m0s", "T2s", "B1"}}
	kinds, err := cfg.GradKinds()
	if err != nil {
		t.Fatalf("GradKinds: %v", err)
	}
	want := []magnet.GradKind{magnet.GradM0s, magnet.GradT2s, magnet.GradB1}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("grad %d: got %v, want %v", i, kinds[i], want[i])
		}
	}

	cfg = &Config{Grads: []string{"bogus"}}
	if _, err := cfg.GradKinds(); err == nil {
		t.Error("expected an error for an unknown gradient name")
	}
}

func TestSequenceTrainExpansion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Train.Alpha = []float64{30}
	cfg.Train.TRF = []float64{400e-6}
	cfg.Train.NPulses = 5

	tr, err := cfg.SequenceTrain()
	if err != nil {
		t.Fatalf("SequenceTrain: %v", err)
	}
	if len(tr.Omega1) != 5 || len(tr.TRF) != 5 {
		t.Fatalf("expected 5 pulses, got %d/%d", len(tr.Omega1), len(tr.TRF))
	}
	wantW1 := 30 * math.Pi / 180 / 400e-6
	for k := range tr.Omega1 {
		if math.Abs(tr.Omega1[k]-wantW1) > 1e-9*wantW1 {
			t.Errorf("pulse %d: omega1=%g, want %g", k, tr.Omega1[k], wantW1)
		}
		if tr.TRF[k] != 400e-6 {
			t.Errorf("pulse %d: trf=%g", k, tr.TRF[k])
		}
	}
	if err := tr.Validate(); err != nil {
		t.Errorf("expanded train should validate: %v", err)
	}
}

func TestSequenceTrainErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Train.Alpha = []float64{10, 20}
	cfg.Train.NPulses = 5
	if _, err := cfg.SequenceTrain(); err == nil {
		t.Error("expected an error for a mismatched alpha list")
	}

	cfg = DefaultConfig()
	cfg.Train.Alpha = nil
	cfg.Train.NPulses = 0
	if _, err := cfg.SequenceTrain(); err == nil {
		t.Error("expected an error for an empty train")
	}

	cfg = DefaultConfig()
	cfg.Train.TRF = []float64{0}
	if _, err := cfg.SequenceTrain(); err == nil {
		t.Error("expected an error for a zero pulse duration")
	}
}
