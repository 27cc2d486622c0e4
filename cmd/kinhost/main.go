package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/kinhost/internal/config"
	"github.com/san-kum/kinhost/internal/convert"
	"github.com/san-kum/kinhost/internal/host"
	"github.com/san-kum/kinhost/internal/scalar"
	"github.com/san-kum/kinhost/internal/store"
	"github.com/san-kum/kinhost/internal/tui"
)

var (
	configFile string
	links      int
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	jsonOut    string
	csvOut     string
	toStdout   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kinhost",
		Short: "host kinematic models with dependency-tracked caching",
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [preset]",
		Short: "show topology, layout, and cache entries",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInspect,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep the first joint and plot the tip height",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&jsonOut, "json", "", "write results to a JSON file")
	sweepCmd.Flags().StringVar(&csvOut, "csv", "", "write results to a CSV file")
	sweepCmd.Flags().BoolVar(&toStdout, "stdout", false, "print results as JSON instead of plotting")

	gradCmd := &cobra.Command{
		Use:   "grad [preset]",
		Short: "differentiate the tip height with dual numbers",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGrad,
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "animate a configuration sweep with live cache counters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("%-12s %s\n", name, describe(cfg))
			}
			return nil
		},
	}

	for _, c := range []*cobra.Command{inspectCmd, sweepCmd, gradCmd, liveCmd} {
		c.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
		c.Flags().IntVar(&links, "links", 0, "override link count")
		c.Flags().Float64Var(&sweepFrom, "from", 0, "override sweep start")
		c.Flags().Float64Var(&sweepTo, "to", 0, "override sweep end")
		c.Flags().IntVar(&sweepSteps, "steps", 0, "override sweep steps")
	}

	rootCmd.AddCommand(inspectCmd, sweepCmd, gradCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func describe(cfg *config.Config) string {
	if cfg.Model == "register" {
		return fmt.Sprintf("register, %d states", cfg.States)
	}
	return fmt.Sprintf("chain, %d links", cfg.Links)
}

// resolveConfig merges preset/file config with flag overrides.
func resolveConfig(args []string) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "default"

	if len(args) == 1 {
		preset := config.GetPreset(args[0])
		if preset == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (try `kinhost presets`)", args[0])
		}
		copied := *preset
		cfg = &copied
		name = args[0]
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
		name = configFile
	}

	if links > 0 {
		cfg.Links = links
		cfg.Lengths = nil
		cfg.Masses = nil
		cfg.InitAngles = nil
	}
	if sweepSteps > 0 {
		cfg.Sweep.Steps = sweepSteps
	}
	if sweepFrom != 0 || sweepTo != 0 {
		cfg.Sweep.From = sweepFrom
		cfg.Sweep.To = sweepTo
	}
	if cfg.Sweep.Steps <= 0 {
		cfg.Sweep.Steps = config.DefaultSweepSteps
	}
	return cfg, name, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(args)
	if err != nil {
		return err
	}
	h, err := config.BuildHost(cfg)
	if err != nil {
		return err
	}

	top := h.Topology()
	layout := h.Layout()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "preset\t%s\n", name)
	fmt.Fprintf(w, "model\t%s\n", cfg.Model)
	fmt.Fprintf(w, "discrete\t%v\n", h.IsDiscrete())
	fmt.Fprintf(w, "positions\t%d\n", top.NumPositions)
	fmt.Fprintf(w, "velocities\t%d\n", top.NumVelocities)
	fmt.Fprintf(w, "states\t%d\n", top.NumStates)
	fmt.Fprintf(w, "state size\t%d\n", layout.Size())
	if !layout.Discrete() {
		plo, phi, _ := layout.PositionBlock()
		vlo, vhi, _ := layout.VelocityBlock()
		fmt.Fprintf(w, "position block\t[%d,%d)\n", plo, phi)
		fmt.Fprintf(w, "velocity block\t[%d,%d)\n", vlo, vhi)
	}
	for i, entry := range h.CacheEntries() {
		fmt.Fprintf(w, "cache entry %d\t%s\n", i, entry)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(args)
	if err != nil {
		return err
	}
	h, err := config.BuildHost(cfg)
	if err != nil {
		return err
	}
	c, err := h.CreateContext()
	if err != nil {
		return err
	}
	if err := h.SetDefaultState(c); err != nil {
		return err
	}

	data := &store.SweepData{
		Model:     cfg.Model,
		Preset:    name,
		StateSize: h.Layout().Size(),
		Discrete:  h.IsDiscrete(),
		Entries:   h.CacheEntries(),
	}
	heights := make([]float64, 0, cfg.Sweep.Steps+1)

	for i := 0; i <= cfg.Sweep.Steps; i++ {
		q := cfg.Sweep.From + (cfg.Sweep.To-cfg.Sweep.From)*float64(i)/float64(cfg.Sweep.Steps)
		if h.IsDiscrete() {
			if err := c.SetRaw(0, scalar.Real(q)); err != nil {
				return err
			}
		} else {
			if err := c.SetPosition(0, scalar.Real(q)); err != nil {
				return err
			}
		}

		pos, err := h.EvalPositionKinematics(c)
		if err != nil {
			return err
		}
		if _, err := h.EvalVelocityKinematics(c); err != nil {
			return err
		}

		point := store.SweepPoint{
			Q:                q,
			PositionComputes: c.Recomputes(host.EntryPositionKinematics),
			VelocityComputes: c.Recomputes(host.EntryVelocityKinematics),
		}
		if n := pos.Frames(); n > 0 {
			point.TipX = pos.X[n-1].Float()
			point.TipY = pos.Y[n-1].Float()
		}
		data.Points = append(data.Points, point)
		heights = append(heights, point.TipY)
	}

	if jsonOut != "" {
		if err := store.ExportJSON(jsonOut, data); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", jsonOut)
	}
	if csvOut != "" {
		if err := store.ExportCSV(csvOut, data); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", csvOut)
	}
	if toStdout {
		return store.ExportJSONStdout(data)
	}
	if jsonOut == "" && csvOut == "" {
		graph := asciigraph.Plot(heights,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("tip height vs q0 (%s)", name)))
		fmt.Println(graph)
		last := data.Points[len(data.Points)-1]
		fmt.Printf("\n%d evaluations, %d position recomputes, %d velocity recomputes\n",
			len(data.Points), last.PositionComputes, last.VelocityComputes)
	}
	return nil
}

func runGrad(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(args)
	if err != nil {
		return err
	}
	if cfg.Model != "chain" {
		return fmt.Errorf("grad requires a continuous model, %s is discrete", cfg.Model)
	}
	h, err := config.BuildHost(cfg)
	if err != nil {
		return err
	}

	dual, err := convert.To[scalar.Dual](h)
	if err != nil {
		return err
	}
	c, err := dual.CreateContext()
	if err != nil {
		return err
	}
	if err := dual.SetDefaultState(c); err != nil {
		return err
	}

	derivs := make([]float64, 0, cfg.Sweep.Steps+1)
	for i := 0; i <= cfg.Sweep.Steps; i++ {
		q := cfg.Sweep.From + (cfg.Sweep.To-cfg.Sweep.From)*float64(i)/float64(cfg.Sweep.Steps)
		if err := c.SetPosition(0, scalar.Seed(q)); err != nil {
			return err
		}
		pos, err := dual.EvalPositionKinematics(c)
		if err != nil {
			return err
		}
		tip := pos.Frames() - 1
		derivs = append(derivs, pos.Y[tip].D)
	}

	graph := asciigraph.Plot(derivs,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("d(tip height)/dq0 (%s)", name)))
	fmt.Println(graph)

	// Cross-check the midpoint derivative against central differences on
	// the real host.
	mid := (cfg.Sweep.From + cfg.Sweep.To) / 2
	fd, err := finiteDiff(h, mid)
	if err != nil {
		return err
	}
	fmt.Printf("\nmidpoint q0=%.4f: dual=%.9f finite-diff=%.9f (|Δ|=%.2e)\n",
		mid, derivs[len(derivs)/2], fd, math.Abs(derivs[len(derivs)/2]-fd))
	return nil
}

func finiteDiff(h *host.Host[scalar.Real], q float64) (float64, error) {
	const eps = 1e-6
	c, err := h.CreateContext()
	if err != nil {
		return 0, err
	}
	tipY := func(q float64) (float64, error) {
		if err := c.SetPosition(0, scalar.Real(q)); err != nil {
			return 0, err
		}
		pos, err := h.EvalPositionKinematics(c)
		if err != nil {
			return 0, err
		}
		return pos.Y[pos.Frames()-1].Float(), nil
	}
	hi, err := tipY(q + eps)
	if err != nil {
		return 0, err
	}
	lo, err := tipY(q - eps)
	if err != nil {
		return 0, err
	}
	return (hi - lo) / (2 * eps), nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(args)
	if err != nil {
		return err
	}
	h, err := config.BuildHost(cfg)
	if err != nil {
		return err
	}
	return tui.Run(h, name, cfg.Sweep)
}
