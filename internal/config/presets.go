package config

// Presets holds literature-flavored two-pool parameter sets. Values
// are starting points for simulation, not fitting results.
var Presets = map[string]ParamsConfig{
	"whitematter": {
		M0s: 0.212, R1f: 0.45, R2f: 13.0, Rx: 17.0, R1s: 2.6,
		T2s: 12.5e-6, B1: 1, Omega0: 0,
	},
	"graymatter": {
		M0s: 0.098, R1f: 0.61, R2f: 11.0, Rx: 19.0, R1s: 2.6,
		T2s: 11.0e-6, B1: 1, Omega0: 0,
	},
	"agar": {
		M0s: 0.055, R1f: 0.36, R2f: 18.0, Rx: 44.0, R1s: 1.0,
		T2s: 9.0e-6, B1: 1, Omega0: 0,
	},
}

func GetPreset(name string) (ParamsConfig, bool) {
	p, ok := Presets[name]
	return p, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
