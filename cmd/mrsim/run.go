package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/san-kum/mrsim/internal/config"
	"github.com/san-kum/mrsim/internal/dynamo"
	"github.com/san-kum/mrsim/internal/experiment"
	"github.com/san-kum/mrsim/internal/sim"
	"github.com/san-kum/mrsim/internal/storage"
	"github.com/san-kum/mrsim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

var (
	configFile string
	preset     string
	order      int
	dt         float64
	nSteps     int
	posX, posY float64
	slipX      float64
	slipY      float64
	rParam     float64
	sParam     float64
	radius     float64
	density    float64
	gamma      float64
	period     float64
	core       float64
	seed       int64
	particles  int
	spread     float64
	workers    int
	tracer     string
	withTracer bool
	theme      string
)

// addRunFlags registers the flags that override a run config.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVar(&order, "order", config.DefaultOrder, "history quadrature order (1, 2 or 3)")
	f.Float64Var(&dt, "dt", config.DefaultTimestep, "timestep")
	f.IntVar(&nSteps, "steps", config.DefaultSteps, "number of steps")
	f.Float64Var(&posX, "x", config.DefaultReleaseX, "release x")
	f.Float64Var(&posY, "y", config.DefaultReleaseY, "release y")
	f.Float64Var(&slipX, "wx", 0, "initial slip x")
	f.Float64Var(&slipY, "wy", 0, "initial slip y")
	f.Float64Var(&rParam, "R", 0, "density parameter R (overrides densities)")
	f.Float64Var(&sParam, "S", 0, "relaxation parameter S (overrides radius and viscosity)")
	f.Float64Var(&radius, "radius", config.DefaultRadius, "particle radius")
	f.Float64Var(&density, "density", config.DefaultParticleDensity, "particle density")
	f.Float64Var(&gamma, "gamma", config.DefaultGamma, "vortex circulation")
	f.Float64Var(&period, "period", config.DefaultPeriod, "blinking period")
	f.Float64Var(&core, "core", 0, "vortex core radius")
	f.Int64Var(&seed, "seed", 0, "random seed for ensemble releases")
	f.StringVar(&tracer, "tracer", config.DefaultTracer, "tracer integrator (euler, rk4)")
}

// resolveConfig builds the run config: defaults, then the preset, then the
// config file, then any flag set on the command line.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Flow = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Flow, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Flow))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Flow = args[0]
		}
	}

	flags := cmd.Flags()
	if flags.Changed("order") {
		cfg.Order = order
	}
	if flags.Changed("dt") {
		cfg.Parameters.Timestep = dt
	}
	if flags.Changed("steps") {
		cfg.Parameters.Steps = nSteps
	}
	if flags.Changed("x") {
		cfg.Position.X = posX
	}
	if flags.Changed("y") {
		cfg.Position.Y = posY
	}
	if flags.Changed("wx") {
		cfg.Slip.X = slipX
	}
	if flags.Changed("wy") {
		cfg.Slip.Y = slipY
	}
	if flags.Changed("R") {
		cfg.Parameters.DensityParameter = &rParam
	}
	if flags.Changed("S") {
		cfg.Parameters.RelaxationParameter = &sParam
	}
	if flags.Changed("radius") {
		cfg.Parameters.ParticleRadius = radius
	}
	if flags.Changed("density") {
		cfg.Parameters.ParticleDensity = density
	}
	if flags.Changed("gamma") {
		cfg.FlowOptions.Gamma = gamma
	}
	if flags.Changed("period") {
		cfg.FlowOptions.Period = period
	}
	if flags.Changed("core") {
		cfg.FlowOptions.Core = core
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("tracer") {
		cfg.Tracer = tracer
	}
	if f := flags.Lookup("particles"); f != nil && (f.Changed || cfg.Particles <= 1) {
		cfg.Particles = particles
	}
	if flags.Lookup("spread") != nil && flags.Changed("spread") {
		cfg.Spread = spread
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupExperiment(cmd *cobra.Command, args []string) (*experiment.Experiment, *experiment.Registry, error) {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
		return nil, nil, err
	}
	return exp, registry, nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	return st, st.Init()
}

func runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flow]",
		Short: "release one particle and store its trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(cmd)
	cmd.Flags().BoolVar(&withTracer, "with-tracer", false, "also follow a fluid tracer from the same release")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, registry, err := setupExperiment(cmd, args)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	cfg := exp.Config()
	fmt.Printf("running %s flow, %s, order %d...\n", cfg.Flow, exp.Params(), cfg.Order)
	result, runErr := exp.Run(cmd.Context())
	if result == nil {
		return runErr
	}

	runID, err := st.Save(cfg, exp.Params(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("state: %s\n", result.Phase)
	fmt.Printf("steps: %d\n", result.Trajectory.Steps())
	final := result.Final
	fmt.Printf("final: t=%.4f position=(%.6f, %.6f) slip=(%.6f, %.6f)\n",
		final.Time, final.Position.X, final.Position.Y, final.Slip.X, final.Slip.Y)
	printMetrics(result.Metrics)

	if withTracer {
		traj, err := exp.Tracer(cmd.Context(), registry)
		if traj == nil {
			return err
		}
		if err != nil {
			fmt.Printf("\ntracer stopped early: %v\n", err)
		}
		last := traj.Last()
		fmt.Printf("\ntracer: t=%.4f position=(%.6f, %.6f)\n", last.Time, last.Position.X, last.Position.Y)
		if n := min(traj.Len(), result.Trajectory.Len()); n > 0 {
			gap := r2.Norm(r2.Sub(result.Trajectory.At(n-1).Position, traj.At(n-1).Position))
			fmt.Printf("particle-tracer separation at t=%.4f: %.6f\n", traj.At(n-1).Time, gap)
		}
	}
	return runErr
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func ensembleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensemble [flow]",
		Short: "release many particles around a point concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addRunFlags(cmd)
	cmd.Flags().IntVar(&particles, "particles", 16, "number of particles")
	cmd.Flags().Float64Var(&spread, "spread", config.DefaultSpreadSize, "half-width of the release square")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0: GOMAXPROCS)")
	return cmd
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	exp, registry, err := setupExperiment(cmd, args)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	cfg := exp.Config()
	fmt.Printf("running %d particles in %s flow...\n", cfg.Particles, cfg.Flow)
	results, err := exp.RunEnsemble(cmd.Context(), workers, registry.DefaultMetrics)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tRELEASE\tFINAL\tSTATE\tPATH")
	var paths []float64
	failed := 0
	for i, res := range results {
		if res == nil {
			continue
		}
		runID, err := st.Save(cfg, exp.Params(), res)
		if err != nil {
			return err
		}
		first, last := res.Trajectory.First().Position, res.Final.Position
		fmt.Fprintf(w, "%d\t%s\t(%.3f, %.3f)\t(%.3f, %.3f)\t%s\t%.4f\n",
			i, runID, first.X, first.Y, last.X, last.Y, res.Phase, res.Metrics["path_length"])
		if res.Err != nil {
			failed++
			continue
		}
		paths = append(paths, res.Metrics["path_length"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(paths) > 0 {
		mean, std := stat.MeanStdDev(paths, nil)
		if len(paths) == 1 {
			std = 0
		}
		fmt.Printf("\npath length: mean %.4f, stddev %.4f over %d particles\n", mean, std, len(paths))
	}
	if failed > 0 {
		fmt.Printf("%d particles failed\n", failed)
	}
	return nil
}

func liveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [flow]",
		Short: "watch a particle move in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, _, err := setupExperiment(cmd, args)
			if err != nil {
				return err
			}
			cfg := exp.Config()
			m, err := viz.NewModel(cfg.Flow, exp.Field(), exp.Params(), cfg.Order, sim.Release{
				Position: cfg.Position.R2(),
				Slip:     cfg.Slip.R2(),
			})
			if err != nil {
				return err
			}
			return viz.Run(m)
		},
	}
	addRunFlags(cmd)
	cmd.Flags().StringVar(&theme, "theme", viz.CurrentTheme.Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))
	cmd.PreRun = func(cmd *cobra.Command, args []string) { viz.SetTheme(theme) }
	return cmd
}

// loadRun returns the metadata and trajectory of a stored run.
func loadRun(runID string) (*storage.RunMetadata, *dynamo.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, traj, nil
}
