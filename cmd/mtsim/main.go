package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/akarls/mtsim/internal/bloch"
	"github.com/akarls/mtsim/internal/config"
	"github.com/akarls/mtsim/internal/magnet"
	"github.com/akarls/mtsim/internal/r2sl"
	"github.com/akarls/mtsim/internal/sequence"
)

var (
	configFile string
	preset     string
	model      string
	shapeName  string
	niter      int
	omega0     float64
	omega1     float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mtsim",
		Short: "two-pool magnetization-transfer simulation",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate a pulse train and print the signal as CSV",
		RunE:  runTrain,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "tissue parameter preset")
	runCmd.Flags().StringVar(&model, "model", "", "saturation model: gbloch, graham, linear")
	runCmd.Flags().StringVar(&shapeName, "lineshape", "", "lineshape: lorentzian, gaussian, superlorentzian")
	runCmd.Flags().IntVar(&niter, "niter", 0, "pulse-train repetitions")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list tissue parameter presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Printf("%-12s m0s=%.3f R1f=%.2f R2f=%.1f Rx=%.1f R1s=%.2f T2s=%.1fus\n",
					name, p.M0s, p.R1f, p.R2f, p.Rx, p.R1s, p.T2s*1e6)
			}
			return nil
		},
	}

	steadyCmd := &cobra.Command{
		Use:   "steadystate",
		Short: "continuous-wave steady state (Henkelman model)",
		RunE:  runSteadyState,
	}
	steadyCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	steadyCmd.Flags().StringVar(&preset, "preset", "", "tissue parameter preset")
	steadyCmd.Flags().StringVar(&shapeName, "lineshape", "", "lineshape")
	steadyCmd.Flags().Float64Var(&omega0, "omega0", 2*math.Pi*1e3, "saturation offset, rad/s")
	steadyCmd.Flags().Float64Var(&omega1, "omega1", 2*math.Pi*100, "saturation amplitude, rad/s")

	rootCmd.AddCommand(runCmd, presetsCmd, steadyCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}
	if preset != "" {
		p, ok := config.GetPreset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q (try: mtsim presets)", preset)
		}
		cfg.Params = p
	}
	if model != "" {
		cfg.Model = model
	}
	if shapeName != "" {
		cfg.Lineshape = shapeName
	}
	if niter > 0 {
		cfg.Train.Niter = niter
	}
	return cfg, nil
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p := cfg.MagnetParams()
	ls, err := cfg.Shape()
	if err != nil {
		return err
	}
	grads, err := cfg.GradKinds()
	if err != nil {
		return err
	}
	train, err := cfg.SequenceTrain()
	if err != nil {
		return err
	}

	var res *sequence.Result
	opt := sequence.Options{}
	switch cfg.Model {
	case "gbloch", "":
		res, err = sequence.SimulateGBloch(p, ls, grads, train, opt)
	case "graham":
		res, err = sequence.SimulateGraham(p, ls, grads, train, opt)
	case "linear":
		tbl, terr := r2sl.Precompute(ls, trainBounds(&train, &p), r2sl.Options{})
		if terr != nil {
			return terr
		}
		res, err = sequence.SimulateLinear(p, tbl, grads, train, opt)
	default:
		return fmt.Errorf("unknown model %q", cfg.Model)
	}
	if err != nil {
		return err
	}
	return writeCSV(os.Stdout, res, grads)
}

// trainBounds sizes the saturation table to the pulse train with some
// margin, covering the inversion pulse when present.
func trainBounds(tr *sequence.Train, p *magnet.Params) r2sl.Bounds {
	trfMin, trfMax := tr.TRF[0], tr.TRF[0]
	alphaMax := 0.0
	for i, trf := range tr.TRF {
		trfMin = math.Min(trfMin, trf)
		trfMax = math.Max(trfMax, trf)
		alphaMax = math.Max(alphaMax, tr.Omega1[i]*trf)
	}
	if tr.InversionPrep && tr.InvDur > 0 {
		trfMin = math.Min(trfMin, tr.InvDur)
		trfMax = math.Max(trfMax, tr.InvDur)
		alphaMax = math.Max(alphaMax, math.Pi)
	}
	return r2sl.Bounds{
		TRFMin:   trfMin * 0.9,
		TRFMax:   trfMax * 1.1,
		T2sMin:   p.T2s * 0.9,
		T2sMax:   p.T2s * 1.1,
		AlphaMax: alphaMax * 1.1,
		B1Max:    math.Max(p.B1, 1) * 1.2,
	}
}

func runSteadyState(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p := cfg.MagnetParams()
	p.Omega0 = omega0
	p.Omega1 = omega1
	ls, err := cfg.Shape()
	if err != nil {
		return err
	}
	zf, zs, err := bloch.HenkelmanSteadyState(&p, ls)
	if err != nil {
		return err
	}
	fmt.Printf("zf=%.6f zs=%.6f (equilibrium %.6f / %.6f)\n", zf, zs, 1-p.M0s, p.M0s)
	return nil
}

func writeCSV(f *os.File, res *sequence.Result, grads []magnet.GradKind) error {
	w := csv.NewWriter(f)
	header := []string{"pulse", "re", "im", "mag"}
	for _, k := range grads {
		header = append(header, "d_"+k.String()+"_re", "d_"+k.String()+"_im")
	}
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, 0, len(header))
	for k, s := range res.Signal {
		row = row[:0]
		row = append(row,
			strconv.Itoa(k),
			strconv.FormatFloat(real(s), 'g', 10, 64),
			strconv.FormatFloat(imag(s), 'g', 10, 64),
			strconv.FormatFloat(cmplx.Abs(s), 'g', 10, 64))
		for i := range grads {
			g := res.Grads[i][k]
			row = append(row,
				strconv.FormatFloat(real(g), 'g', 10, 64),
				strconv.FormatFloat(imag(g), 'g', 10, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
