package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/san-kum/vectorize/internal/automation"
	"github.com/san-kum/vectorize/internal/config"
	"github.com/san-kum/vectorize/internal/driver"
	"github.com/san-kum/vectorize/internal/experiment"
	"github.com/san-kum/vectorize/internal/export"
	"github.com/san-kum/vectorize/internal/imaging"
	"github.com/san-kum/vectorize/internal/optim"
	"github.com/san-kum/vectorize/internal/render"
	"github.com/san-kum/vectorize/internal/storage"
	"github.com/san-kum/vectorize/internal/viz"
)

var (
	// Persistent
	dataDir    string
	storeKind  string
	logLevel   string
	logFormat  string
	configFile string
	preset     string

	// Run and live
	seed        int64
	runs        int
	generations int
	duration    time.Duration
	fps         float64
	mode        string
	maxSize     int
	validate    bool
	acceptance  float64
	resume      string
	theme       string

	// Output
	outPath   string
	scale     int
	format    string
	metric    string
	axes      []string
	numSteps  int
	sweepFrom float64
	sweepTo   float64
)

// main registers the vectorize commands and runs the root command. Any
// error is logged and exits with status 1.
func main() {
	rootCmd := &cobra.Command{
		Use:           "vectorize",
		Short:         "approximate images with evolving translucent polygons",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&storeKind, "store", config.DefaultStore, "run store backend (file, sqlite)")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run [image]",
		Short: "optimise an image and save the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimisation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().IntVar(&runs, "runs", 1, "independent lineages to run in parallel; the best is saved")
	runCmd.Flags().StringVar(&resume, "resume", "", "continue from the gene of a stored run")

	liveCmd := &cobra.Command{
		Use:   "live [image]",
		Short: "optimise an image with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.CurrentTheme.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a run and plot its fitness",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run (json, csv or svg fitness plot)",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "output format (json, csv, svg)")
	exportCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render the stored gene of a run to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVarP(&outPath, "output", "o", "", "output PNG (default <run_id>.png)")
	renderCmd.Flags().IntVar(&scale, "scale", 0, "resolution multiplier (default render.export_scale)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [image]",
		Short: "grid search over tuning parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneImage,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&axes, "param", nil, "search axis name=v1,v2,... (repeatable; one of "+strings.Join(optim.TunableNames(), ", ")+")")
	tuneCmd.Flags().StringVar(&metric, "metric", optim.MetricFitness, "value to minimise: fitness or a metric name")

	sweepCmd := &cobra.Command{
		Use:   "sweep [image] [param]",
		Short: "sweep one tuning parameter evenly",
		Args:  cobra.ExactArgs(2),
		RunE:  sweepImage,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "last value")
	sweepCmd.Flags().IntVar(&numSteps, "steps", 5, "number of values")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario and save every run",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, showCmd, exportCmd, renderCmd, presetsCmd, tuneCmd, sweepCmd, batchCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	f.IntVar(&generations, "generations", 0, "stop after this many generations (0 = unlimited)")
	f.DurationVar(&duration, "duration", 0, "stop after this wall time")
	f.Float64Var(&fps, "fps", 0, "generations per second (0 = unthrottled)")
	f.StringVar(&mode, "mode", string(render.ModePolygon), "fill mode (polygon, strip)")
	f.IntVar(&maxSize, "max-size", config.DefaultMaxSize, "downscale targets to this many pixels on the long edge (0 = off)")
	f.BoolVar(&validate, "validate", false, "check gene invariants after every step")
	f.Float64Var(&acceptance, "target-acceptance", 0, "hold this acceptance rate with the adaptive schedule instead of cooling linearly")
}

func setupLogging(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		// Fall back to flag values so the error itself is logged.
		logger, lerr := config.NewLogger(os.Stderr, logLevel, logFormat)
		if lerr == nil {
			slog.SetDefault(logger)
		}
		return err
	}
	logger, err := config.NewLogger(os.Stderr, cfg.Run.LogLevel, cfg.Run.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// loadConfig resolves defaults < preset < file < environment < flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	env.Apply(cfg)

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Run.DataDir = dataDir
	}
	if flags.Changed("store") {
		cfg.Run.Store = storeKind
	}
	if flags.Changed("log-level") {
		cfg.Run.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Run.LogFormat = logFormat
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if flags.Changed("runs") {
		cfg.Run.Runs = runs
	}
	if flags.Changed("validate") {
		cfg.Run.Validate = validate
	}
	if flags.Changed("generations") {
		cfg.Anneal.Schedule.MaxGenerations = generations
	}
	if flags.Changed("duration") {
		cfg.Anneal.Schedule.Duration = duration
	}
	if flags.Changed("fps") {
		cfg.Anneal.Schedule.FPS = fps
	}
	if flags.Changed("mode") {
		cfg.Render.Mode = mode
	}
	if flags.Changed("max-size") {
		cfg.Image.MaxSize = maxSize
	}
	if flags.Changed("target-acceptance") {
		cfg.Anneal.Adaptive.Enabled = true
		cfg.Anneal.Adaptive.TargetAcceptance = acceptance
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	st, err := storage.NewStore(cfg.Run.Store, cfg.Run.DataDir)
	if err != nil {
		return nil, err
	}
	if err := st.Init(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func loadTarget(cfg *config.Config, path string) (imaging.Buffer, error) {
	target, err := imaging.Load(path, cfg.ImageOptions())
	if err != nil {
		return imaging.Buffer{}, err
	}
	slog.Debug("target loaded", "image", path, "shape", target.Shape())
	return target, nil
}

func runOptimisation(cmd *cobra.Command, args []string) error {
	image := args[0]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	target, err := loadTarget(cfg, image)
	if err != nil {
		return err
	}

	var rec *storage.Run
	if cfg.Run.Runs > 1 {
		if resume != "" {
			return fmt.Errorf("--resume cannot be combined with --runs")
		}
		rec, err = runEnsemble(ctx, cfg, image, target)
	} else {
		rec, err = runSingle(ctx, cfg, st, image, target)
	}
	if rec == nil {
		return err
	}
	if err != nil {
		slog.Warn("run interrupted, saving partial result", "err", err)
	}

	runID, serr := st.Save(context.Background(), rec)
	if serr != nil {
		return fmt.Errorf("save run: %w", serr)
	}

	slog.Info("run complete",
		"run", runID,
		"generations", rec.Meta.Generations,
		"fitness", rec.Meta.BestFitness,
		"polygons", rec.Meta.Polygons,
		"reason", rec.Meta.Reason,
		"elapsed", rec.Meta.Elapsed.Round(time.Millisecond),
	)
	fmt.Println(runID)
	return nil
}

func runSingle(ctx context.Context, cfg *config.Config, st storage.Store, image string, target imaging.Buffer) (*storage.Run, error) {
	opts := experiment.Options{Seed: cfg.Run.Seed}
	if resume != "" {
		gene, err := st.LoadGene(ctx, resume)
		if err != nil {
			return nil, err
		}
		opts.Resume = gene
		slog.Info("resuming", "run", resume, "polygons", len(gene))
	}

	exp, err := experiment.New(cfg, target, opts)
	if err != nil {
		return nil, err
	}
	slog.Info("starting run", "image", image, "seed", exp.Seed(), "shape", target.Shape(), "mode", cfg.Render.Mode)

	res, err := exp.Run(ctx)
	if res == nil || res.Generations == 0 {
		return nil, err
	}
	return exp.Record(image, res), err
}

func runEnsemble(ctx context.Context, cfg *config.Config, image string, target imaging.Buffer) (*storage.Run, error) {
	seedStart := cfg.Run.Seed
	if seedStart == 0 {
		seedStart = time.Now().UnixNano()
	}
	slog.Info("starting ensemble", "image", image, "runs", cfg.Run.Runs, "seed", seedStart)

	ens := driver.NewEnsemble(experiment.Factory(cfg, target), cfg.Run.Runs, seedStart)
	drivers, results, err := ens.Run(ctx, cfg.Schedule())
	best := driver.Best(results)
	if best < 0 || results[best].Generations == 0 {
		return nil, err
	}
	for i, r := range results {
		if r != nil {
			slog.Debug("lineage finished", "seed", seedStart+int64(i), "fitness", r.FinalFitness)
		}
	}
	return experiment.Record(cfg, image, seedStart+int64(best), drivers[best], results[best]), err
}

func runLive(cmd *cobra.Command, args []string) error {
	image := args[0]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	st, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	target, err := loadTarget(cfg, image)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, target, experiment.Options{Seed: cfg.Run.Seed})
	if err != nil {
		return err
	}

	session := viz.NewSession(exp.Driver(), cfg.Schedule())
	session.Start(context.Background())

	m := viz.NewModel(session, viz.Options{
		Title: filepath.Base(image),
		Dir:   cfg.Run.DataDir,
		Scale: cfg.Render.ExportScale,
	})

	// Run Bubble Tea Program
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		session.Stop()
		return err
	}

	session.Stop()
	done := session.Wait()
	if done.Result == nil || done.Result.Generations == 0 {
		return done.Err
	}

	runID, err := st.Save(context.Background(), exp.Record(image, done.Result))
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	slog.Info("run saved", "run", runID, "generations", done.Result.Generations, "fitness", done.Result.FinalFitness)
	fmt.Println(runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(ctx)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tIMAGE\tWHEN\tGENERATIONS\tFITNESS\tPOLYGONS\tSIZE\tMODE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.6f\t%d\t%dx%d\t%s\n",
			run.ID,
			filepath.Base(run.Image),
			humanize.Time(run.Timestamp),
			humanize.Comma(int64(run.Generations)),
			run.BestFitness,
			run.Polygons,
			run.Width, run.Height,
			run.Render.Mode,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := storage.LoadRun(ctx, st, runID)
	if err != nil {
		return err
	}
	meta := run.Meta

	fmt.Printf("run:         %s\n", meta.ID)
	fmt.Printf("image:       %s (%dx%d, %d channels)\n", meta.Image, meta.Width, meta.Height, meta.Channels)
	fmt.Printf("when:        %s (%s)\n", meta.Timestamp.Format("2006-01-02 15:04:05"), humanize.Time(meta.Timestamp))
	fmt.Printf("seed:        %d\n", meta.Seed)
	fmt.Printf("generations: %s (%s accepted)\n", humanize.Comma(int64(meta.Generations)), humanize.Comma(int64(meta.Accepted)))
	fmt.Printf("fitness:     %.6f\n", meta.BestFitness)
	fmt.Printf("gene:        %d polygons, %d vertices\n", meta.Polygons, meta.Vertices)
	fmt.Printf("elapsed:     %s (%s)\n", meta.Elapsed.Round(time.Millisecond), meta.Reason)

	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, name := range sortedKeys(meta.Metrics) {
			fmt.Fprintf(w, "  %s\t%.4f\n", name, meta.Metrics[name])
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if chart := viz.FitnessChart(run.History, 80, 10); chart != "" {
		fmt.Println()
		fmt.Println(chart)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := storage.LoadRun(ctx, st, runID)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		return storage.ExportJSON(out, run)
	case "csv":
		w := csv.NewWriter(out)
		if err := w.Write([]string{"generation", "fitness", "temperature", "polygons"}); err != nil {
			return err
		}
		for _, s := range run.History {
			if err := w.Write([]string{
				strconv.Itoa(s.Generation),
				strconv.FormatFloat(s.Fitness, 'g', -1, 64),
				strconv.FormatFloat(s.Temperature, 'g', -1, 64),
				strconv.Itoa(s.Polygons),
			}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	case "svg":
		doc := export.FitnessToSVG(run.History, 800, 400, "#00ff88")
		if doc == "" {
			return fmt.Errorf("run %s has too little history to plot", runID)
		}
		_, err := fmt.Fprint(out, doc)
		return err
	}
	return fmt.Errorf("unknown format: %s", format)
}

func renderRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(ctx, runID)
	if err != nil {
		return err
	}
	gene, err := st.LoadGene(ctx, runID)
	if err != nil {
		return err
	}

	factor := scale
	if factor <= 0 {
		factor = cfg.Render.ExportScale
	}
	buf, err := imaging.NewBuffer(meta.Width*factor, meta.Height*factor, meta.Channels)
	if err != nil {
		return err
	}
	if err := render.New(meta.Render).Render(gene, &buf); err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = runID + ".png"
	}
	if err := imaging.SavePNG(path, buf.ToImage()); err != nil {
		return err
	}
	slog.Info("rendered", "run", runID, "output", path, "width", buf.Width, "height", buf.Height)
	return nil
}

func tuneImage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(axes) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	if cfg.Anneal.Schedule.MaxGenerations == 0 && cfg.Anneal.Schedule.Duration == 0 {
		return fmt.Errorf("tune needs --generations or --duration")
	}

	names := make([]string, len(axes))
	ranges := make([][]float64, len(axes))
	for i, a := range axes {
		names[i], ranges[i], err = optim.ParseAxis(a)
		if err != nil {
			return err
		}
	}

	target, err := loadTarget(cfg, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	grid := optim.NewGridSearch(names, ranges)
	slog.Info("starting grid search", "points", grid.Size(), "metric", metric)

	best, value, trials, err := grid.Search(ctx, func(params map[string]float64) (*experiment.Experiment, error) {
		c, err := optim.Apply(cfg, params)
		if err != nil {
			return nil, err
		}
		return experiment.New(c, target, experiment.Options{Seed: cfg.Run.Seed})
	}, metric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(metric))
	for _, t := range trials {
		cols := make([]string, len(names))
		for i, n := range names {
			cols[i] = strconv.FormatFloat(t.Params[n], 'g', -1, 64)
		}
		val := fmt.Sprintf("%.6f", t.Value)
		if t.Err != nil {
			val = "error: " + t.Err.Error()
		}
		fmt.Fprintln(w, strings.Join(cols, "\t")+"\t"+val)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	slog.Info("best parameters", "params", best, metric, value)
	return nil
}

func sweepImage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Anneal.Schedule.MaxGenerations == 0 && cfg.Anneal.Schedule.Duration == 0 {
		return fmt.Errorf("sweep needs --generations or --duration")
	}

	target, err := loadTarget(cfg, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	sweep := &automation.ParameterSweep{
		Param:    args[1],
		Min:      sweepFrom,
		Max:      sweepTo,
		NumSteps: numSteps,
		Seed:     cfg.Run.Seed,
	}
	results, err := automation.RunSweep(ctx, sweep, cfg, target)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFITNESS\tACCEPTANCE\tPOLYGONS\n", strings.ToUpper(sweep.Param))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.6f\t%.1f%%\t%d\n", r.ParamValue, r.FinalFitness, 100*r.AcceptanceRate, r.Polygons)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	slog.Info("starting scenario", "name", scenario.Name, "steps", len(scenario.Steps))
	results, err := automation.RunScenario(ctx, scenario, cfg, st)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tIMAGE\tGENERATIONS\tFITNESS")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.6f\n", r.RunID, r.Image, humanize.Comma(int64(r.Result.Generations)), r.Result.FinalFitness)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
