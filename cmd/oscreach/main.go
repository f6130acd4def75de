package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/oscreach/internal/automation"
	"github.com/san-kum/oscreach/internal/config"
	"github.com/san-kum/oscreach/internal/experiment"
	"github.com/san-kum/oscreach/internal/logging"
	"github.com/san-kum/oscreach/internal/physics"
	"github.com/san-kum/oscreach/internal/storage"
	"github.com/san-kum/oscreach/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string

	period    float64
	amplitude float64
	pos       float64
	vel       float64
	radiusPos float64
	radiusVel float64
	alpha     float64
	horizon   float64
	model     string
	maxOrder  int

	solvePlot  int
	plotWidth  int
	plotHeight int
	showPhase  bool
	outDir     string
	samples    int
	alphas     []float64
	noSave     bool
	watch      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "oscreach",
		Short:         "reachability analysis of the harmonic oscillator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".oscreach", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "compute and store a flowpipe",
		Args:  cobra.NoArgs,
		RunE:  runSolve,
	}
	addProblemFlags(solveCmd)
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")
	solveCmd.Flags().IntVar(&solvePlot, "plot-width", 0, "print a position plot of this width")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot flowpipe bounds in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")
	plotCmd.Flags().BoolVar(&showPhase, "phase", false, "also draw the phase plane")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render flowpipe plots to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&outDir, "out", "", "output directory (default: <data>/<run_id>)")

	analyticCmd := &cobra.Command{
		Use:   "analytic",
		Short: "tabulate the closed-form solution",
		Args:  cobra.NoArgs,
		RunE:  printAnalytic,
	}
	addProblemFlags(analyticCmd)
	analyticCmd.Flags().IntVar(&samples, "samples", 21, "number of samples over the horizon")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "compare flowpipes across step-size factors",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addProblemFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&alphas, "alphas", nil, "step-size factors (default: every slider position)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "explore the step-size factor interactively",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addProblemFlags(liveCmd)
	liveCmd.Flags().BoolVar(&watch, "watch", false, "reload --config when the file changes")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPERIOD\tALPHA\tHORIZON\tMODEL\tINITIAL")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				x, v := p.InitialPoint()
				initial := fmt.Sprintf("(%g, %g)", x, v)
				if p.IsRegion() {
					initial += fmt.Sprintf(" ± (%g, %g)", p.Initial.RadiusPos, p.Initial.RadiusVel)
				}
				fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%s\t%s\n", name, p.Period, p.Alpha, p.Horizon, p.Model, initial)
			}
			return tw.Flush()
		},
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted batch of solves",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(solveCmd, listCmd, plotCmd, renderCmd, analyticCmd, sweepCmd, liveCmd, presetsCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addProblemFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().Float64Var(&period, "period", def.Period, "oscillation period")
	cmd.Flags().Float64Var(&amplitude, "amplitude", def.Amplitude, "amplitude")
	cmd.Flags().Float64Var(&pos, "pos", def.Amplitude, "initial position (default: amplitude)")
	cmd.Flags().Float64Var(&vel, "vel", 0, "initial velocity")
	cmd.Flags().Float64Var(&radiusPos, "radius-pos", 0, "initial position radius")
	cmd.Flags().Float64Var(&radiusVel, "radius-vel", 0, "initial velocity radius")
	cmd.Flags().Float64Var(&alpha, "alpha", def.Alpha, "step-size factor, step = alpha × period")
	cmd.Flags().Float64Var(&horizon, "horizon", def.Horizon, "time horizon")
	cmd.Flags().StringVar(&model, "model", def.Model, "approximation model (forward, discrete)")
	cmd.Flags().IntVar(&maxOrder, "max-order", def.MaxOrder, "zonotope order limit (0 uses the default)")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	applyFlags(cmd, cfg)
	return cfg, cfg.Validate()
}

// applyFlags copies explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("period") {
		cfg.Period = period
	}
	if flags.Changed("amplitude") {
		cfg.Amplitude = amplitude
	}
	if flags.Changed("pos") {
		p := pos
		cfg.Initial.Pos = &p
	}
	if flags.Changed("vel") {
		cfg.Initial.Vel = vel
	}
	if flags.Changed("radius-pos") {
		cfg.Initial.RadiusPos = radiusPos
	}
	if flags.Changed("radius-vel") {
		cfg.Initial.RadiusVel = radiusVel
	}
	if flags.Changed("alpha") {
		cfg.Alpha = alpha
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("model") {
		cfg.Model = model
	}
	if flags.Changed("max-order") {
		cfg.MaxOrder = maxOrder
	}
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	level := logLevel
	if cfg != nil {
		level = cfg.LogLevel
	}
	return logging.New(os.Stderr, level)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := experiment.Run(ctx, cfg, log)
	if err != nil {
		return err
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.Run{
			Config:   res.Config,
			Omega:    res.Oscillator.AngularFrequency(),
			Flowpipe: res.Flowpipe,
			Analytic: res.Analytic,
			Metrics:  res.Metrics,
		})
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Printf("%s\n", res.Oscillator)
	fmt.Printf("model: %s  step: %g  segments: %d  completed in %v\n",
		res.Flowpipe.Algorithm.Model, res.Flowpipe.Algorithm.StepSize, res.Flowpipe.Len(), res.Elapsed)
	printMetrics(res.Metrics)

	if solvePlot > 0 {
		g, err := viz.TimePlot(viz.FromResult(res), 0, solvePlot, 12)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(g)
	}
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tPERIOD\tALPHA\tMODEL\tSEGMENTS\tMAX WIDTH (x)")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%s\t%d\t%.4g\n",
			r.ID, r.Timestamp.Format(time.DateTime), r.Period, r.Alpha, r.Model, r.Segments, r.Metrics["max_width_pos"])
	}
	return tw.Flush()
}

func loadFigure(runID string) (viz.Figure, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return viz.Figure{}, err
	}
	boxes, err := st.LoadFlowpipe(runID)
	if err != nil {
		return viz.Figure{}, err
	}
	analytic, err := st.LoadAnalytic(runID)
	if err != nil {
		return viz.Figure{}, err
	}
	return viz.FromStored(meta, boxes, analytic), nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	fig, err := loadFigure(args[0])
	if err != nil {
		return err
	}

	fmt.Println(fig.Title)
	for dim := 0; dim < 2; dim++ {
		g, err := viz.TimePlot(fig, dim, plotWidth, plotHeight)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(g)
	}
	if showPhase {
		g, err := viz.PhasePlot(fig, plotWidth/2, plotHeight)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Print(g)
	}
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	fig, err := loadFigure(args[0])
	if err != nil {
		return err
	}
	dir := outDir
	if dir == "" {
		dir = filepath.Join(dataDir, args[0])
	}

	paths, err := viz.SavePNG(dir, fig)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println("wrote", p)
	}
	return nil
}

func printAnalytic(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if samples < 2 {
		return errors.New("need at least 2 samples")
	}

	osc, err := experiment.Oscillator(cfg)
	if err != nil {
		return err
	}
	x0, v0 := cfg.InitialPoint()
	x, err := osc.AnalyticSolution(physics.WithInitialCondition(x0, v0))
	if err != nil {
		return err
	}
	v, err := osc.AnalyticDerivative(physics.WithInitialCondition(x0, v0))
	if err != nil {
		return err
	}

	fmt.Printf("%s\n\n", osc)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "t\tx(t)\tv(t)\t")
	for i := 0; i < samples; i++ {
		t := cfg.Horizon * float64(i) / float64(samples-1)
		fmt.Fprintf(tw, "%.4f\t%.6f\t%.6f\t\n", t, x(t), v(t))
	}
	return tw.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	if len(alphas) == 0 {
		alphas = experiment.SliderAlphas()
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := experiment.Sweep(ctx, cfg, alphas, log)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALPHA\tSTEP\tSEGMENTS\tWIDTH x\tWIDTH v\tCONTAINED\tELAPSED")
	for _, r := range results {
		contained := "-"
		if c, ok := r.Metrics["reference_containment"]; ok {
			contained = fmt.Sprintf("%.1f%%", 100*c)
		}
		fmt.Fprintf(tw, "%.3f\t%.5g\t%d\t%.4g\t%.4g\t%s\t%v\n",
			r.Config.Alpha, r.Flowpipe.Algorithm.StepSize, r.Flowpipe.Len(),
			r.Metrics["max_width_pos"], r.Metrics["max_width_vel"], contained,
			r.Elapsed.Round(time.Microsecond))
	}
	return tw.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	log, err := newLogger(nil)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunScenario(ctx, sc, st, log)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n\n", sc.Name, sc.Description)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tRUN\tPERIOD\tALPHA\tMODEL\tSEGMENTS\tWIDTH x")
	for _, r := range results {
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%s\t%d\t%.4g\n",
			r.Name, runID, r.Result.Config.Period, r.Result.Config.Alpha,
			r.Result.Flowpipe.Algorithm.Model, r.Result.Flowpipe.Len(), r.Result.Metrics["max_width_pos"])
	}
	return tw.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if watch && configFile == "" {
		return errors.New("--watch needs --config")
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	// The terminal belongs to the TUI, so logs go to a file.
	log, f, err := logging.NewFile(filepath.Join(dataDir, "live.log"), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer f.Close()

	p := viz.NewLiveProgram(*cfg, log)

	if watch {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			err := config.Watch(ctx, configFile, func(c *config.Config, err error) {
				if err == nil {
					applyFlags(cmd, c)
					err = c.Validate()
				}
				p.Send(viz.ConfigMsg{Config: c, Err: err})
			})
			if err != nil {
				log.Error().Err(err).Str("path", configFile).Msg("config watcher stopped")
			}
		}()
	}

	_, err = p.Run()
	return err
}
