package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/spinlattice/internal/automation"
	"github.com/san-kum/spinlattice/internal/config"
	"github.com/san-kum/spinlattice/internal/experiment"
	"github.com/san-kum/spinlattice/internal/storage"
	"github.com/san-kum/spinlattice/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	width      int
	height     int
	initPolicy string
	coupling   float64
	kB         float64
	temp       float64
	p1         float64
	p2         float64
	p3         float64
	fractions  []float64
	sweeps     int
	tEquib     int
	tCorr      int
	noMeasure  bool
	seed       int64
	kSub       int
	label      string
	ensemble   int
	quiet      bool
	saveLive   bool
	// Sweep axes
	from    float64
	to      float64
	step    float64
	yFrom   float64
	yTo     float64
	yStep   float64
	workers int
	chart   bool
	// Run inspection
	column      string
	pngOut      string
	gridPNG     string
	themeName   string
	plain       bool
	maxLag      int
	deleteSweep bool
	// Grid search
	searchParams []string
	quantity     string
	maximise     bool
)

// main registers commands and flags, opens the preset browser when no
// subcommand is given, and exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:   "spinlattice",
		Short: "stochastic spin lattice and epidemic simulator",
		RunE:  runMenu,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")

	runCmd := &cobra.Command{
		Use:   "run [dynamics]",
		Short: "run a simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&ensemble, "ensemble", 1, "number of independent runs with consecutive seeds")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")

	liveCmd := &cobra.Command{
		Use:   "live [dynamics]",
		Short: "animate a simulation in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().BoolVar(&saveLive, "save", false, "save the run when the view closes")

	sweepCmd := &cobra.Command{
		Use:       "sweep [temperature|phase|cut|immunity]",
		Short:     "run a parameter sweep",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"temperature", "phase", "cut", "immunity"},
		RunE:      runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&from, "from", 0, "first value of the swept parameter")
	sweepCmd.Flags().Float64Var(&to, "to", 0, "last value of the swept parameter")
	sweepCmd.Flags().Float64Var(&step, "step", 0, "step of the swept parameter")
	sweepCmd.Flags().Float64Var(&yFrom, "p3-from", 0, "first p3 of a phase diagram")
	sweepCmd.Flags().Float64Var(&yTo, "p3-to", 0, "last p3 of a phase diagram")
	sweepCmd.Flags().Float64Var(&yStep, "p3-step", 0, "p3 step of a phase diagram")
	sweepCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "concurrent runs")
	sweepCmd.Flags().BoolVar(&chart, "chart", false, "write Results.png next to Results.csv")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search for the parameters that extremise a summary quantity",
		RunE:  runSearch,
	}
	addConfigFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&searchParams, "param", nil, "searched parameter as name=lo:hi:step or name=v1,v2,...")
	searchCmd.Flags().StringVar(&quantity, "quantity", "C", "summary quantity to optimise (E, M, C, X, avPsi, varPsi, ...)")
	searchCmd.Flags().BoolVar(&maximise, "max", true, "maximise instead of minimise")
	searchCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "concurrent runs")
	_ = searchCmd.MarkFlagRequired("param")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addConfigFlags(scenarioCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a run summary and its final lattice",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().StringVar(&themeName, "theme", "classic", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	showCmd.Flags().BoolVar(&plain, "plain", false, "print the lattice without color")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "column to plot (default: first)")
	plotCmd.Flags().StringVar(&pngOut, "png", "", "also write a chart of every column to this PNG file")
	plotCmd.Flags().StringVar(&gridPNG, "grid-png", "", "write the final lattice to this PNG file")
	plotCmd.Flags().StringVar(&themeName, "theme", "classic", "color theme for --grid-png")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "autocorrelation and spectrum of a recorded series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "", "column to analyze (default: first)")
	analyzeCmd.Flags().IntVar(&maxLag, "max-lag", 50, "largest autocorrelation lag in samples")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a recorded series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and series to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	catalogCmd := &cobra.Command{
		Use:   "catalog [sweep_id]",
		Short: "list recorded sweeps, or the runs of one sweep",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showCatalog,
	}
	catalogCmd.Flags().BoolVar(&deleteSweep, "delete", false, "delete the sweep from the catalog")

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, searchCmd, scenarioCmd, listCmd, showCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, presetsCmd, catalogCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a preset, e.g. ising/critical")
	f.IntVar(&width, "width", config.DefaultWidth, "lattice width")
	f.IntVar(&height, "height", 0, "lattice height (0 for square)")
	f.StringVar(&initPolicy, "init", "random", "initial spins: random, uniform or split")
	f.Float64Var(&coupling, "J", config.DefaultJ, "exchange coupling")
	f.Float64Var(&kB, "k", config.DefaultK, "Boltzmann constant")
	f.Float64Var(&temp, "T", config.DefaultT, "temperature")
	f.Float64Var(&p1, "p1", 0.5, "S to I probability")
	f.Float64Var(&p2, "p2", 0.5, "I to R probability")
	f.Float64Var(&p3, "p3", 0.5, "R to S probability")
	f.Float64SliceVar(&fractions, "proportions", nil, "initial S,I,R,Im fractions")
	f.IntVar(&sweeps, "sweeps", config.DefaultSweeps, "number of sweeps")
	f.IntVar(&tEquib, "t-equib", config.DefaultTEquib, "equilibration sweeps before measuring")
	f.IntVar(&tCorr, "t-corr", config.DefaultTCorr, "sweeps between measurements")
	f.BoolVar(&noMeasure, "no-measure", false, "do not record measurements")
	f.Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	f.IntVar(&kSub, "k-sub", config.DefaultKSub, "bootstrap resamples")
	f.StringVar(&label, "label", config.DefaultLabel, "run label")
}

// resolveConfig layers, lowest first: defaults or preset, config file,
// SPINLATTICE_* environment, then flags the user set explicitly.
// resolveConfig layers the preset, the per-command defaults, the config
// file, the environment and the changed flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string, defaultPreset string, defaults ...func(*config.Config)) (*config.Config, error) {
	cfg := config.DefaultConfig()
	name := preset
	if name == "" {
		name = defaultPreset
	}
	if name != "" {
		model, p, ok := strings.Cut(name, "/")
		if !ok {
			return nil, fmt.Errorf("preset %q: want model/name", name)
		}
		cfg = config.GetPreset(model, p)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets(model))
		}
	}
	for _, apply := range defaults {
		apply(cfg)
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Dynamics = args[0]
	}

	f := cmd.Flags()
	if f.Changed("data") {
		cfg.DataDir = dataDir
	}
	if f.Changed("width") {
		cfg.Width = width
	}
	if f.Changed("height") {
		cfg.Height = height
	}
	if f.Changed("init") {
		cfg.Init = initPolicy
	}
	params := map[string]float64{"J": coupling, "k": kB, "T": temp, "p1": p1, "p2": p2, "p3": p3}
	for _, name := range []string{"J", "k", "T", "p1", "p2", "p3"} {
		if f.Changed(name) {
			if err := automation.SetParam(cfg, name, params[name]); err != nil {
				return nil, err
			}
		}
	}
	if f.Changed("proportions") {
		cfg.Proportions = fractions
	}
	if f.Changed("sweeps") {
		cfg.Sweeps = sweeps
	}
	if f.Changed("t-equib") {
		cfg.TEquib = tEquib
	}
	if f.Changed("t-corr") {
		cfg.TCorr = tCorr
	}
	if f.Changed("no-measure") {
		cfg.Measure = !noMeasure
	}
	if f.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if f.Changed("k-sub") {
		cfg.KSub = kSub
	}
	if f.Changed("label") {
		cfg.Label = label
	}
	return cfg, cfg.Validate()
}

// openStore resolves the data directory for commands that only read runs.
func openStore(cmd *cobra.Command) (*storage.Store, error) {
	dir := dataDir
	if !cmd.Flags().Changed("data") {
		cfg := config.DefaultConfig()
		if err := config.ApplyEnv(cfg); err != nil {
			return nil, err
		}
		dir = cfg.DataDir
	}
	return storage.New(dir), nil
}

func progressWriter() io.Writer {
	if quiet {
		return io.Discard
	}
	return os.Stdout
}

func runMenu(cmd *cobra.Command, args []string) error {
	base := config.DefaultConfig()
	if err := config.ApplyEnv(base); err != nil {
		return err
	}
	if base.Seed == 0 {
		base.Seed = time.Now().UnixNano()
	}
	_, err := tea.NewProgram(viz.NewMenu(experiment.NewRegistry(), base), tea.WithAltScreen()).Run()
	return err
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args, "")
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if ensemble > 1 {
		return runEnsemble(cmd.Context(), cfg, reg, st)
	}

	exp, err := experiment.New(cfg, reg)
	if err != nil {
		return err
	}
	w, h := cfg.Dims()
	fmt.Printf("running %s on a %dx%d lattice (seed %d)\n", exp.Dynamics(), w, h, cfg.Seed)

	start := time.Now()
	res, err := exp.Run(cmd.Context(), progressWriter())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, res)
	if err != nil {
		return err
	}

	fmt.Println(viz.Summary(res.Label, resultFields(res)))
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("saved run: %s\n", runID)
	return nil
}

func runEnsemble(ctx context.Context, cfg *config.Config, reg *experiment.Registry, st *storage.Store) error {
	fmt.Printf("running %d %s simulations from seed %d\n", ensemble, cfg.Dynamics, cfg.Seed)
	results, err := experiment.RunEnsemble(ctx, cfg, reg, ensemble)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	names := quantityOrder(results[0])
	fmt.Fprintln(w, "RUN\t"+strings.Join(names, "\t")+"\tSAVED")
	for i, res := range results {
		c := cfg.Clone()
		c.Seed = cfg.Seed + int64(i)
		c.Label = res.Label
		runID, err := st.Save(c, res)
		if err != nil {
			return err
		}
		q := res.Quantities()
		row := []string{res.Label}
		for _, name := range names {
			row = append(row, fmt.Sprintf("%.4g", q[name]))
		}
		fmt.Fprintln(w, strings.Join(append(row, runID), "\t"))
	}
	return w.Flush()
}

var (
	isingQuantities    = []string{"E", "M", "C", "X", "errE", "errM", "errC", "errX"}
	epidemicQuantities = []string{"avI", "varI", "avPsi", "varPsi", "errPsi"}
)

func quantityOrder(res *experiment.Result) []string {
	if res.Family == experiment.Epidemic {
		return epidemicQuantities
	}
	return isingQuantities
}

func resultFields(res *experiment.Result) []viz.Field {
	status := "completed"
	if res.Stopped {
		status = "absorbed"
	}
	fields := []viz.Field{
		{Label: "dynamics", Value: res.Dynamics},
		{Label: "lattice", Value: fmt.Sprintf("%dx%d", res.Width, res.Height)},
		{Label: "sweeps", Value: fmt.Sprintf("%d (%s)", res.T, status)},
		{Label: "samples", Value: fmt.Sprintf("%d", res.Samples())},
	}
	q := res.Quantities()
	for _, name := range quantityOrder(res) {
		if v, ok := q[name]; ok {
			fields = append(fields, viz.Num(name, v))
		}
	}
	return append(fields, metricFields(res.Metrics)...)
}

func metricFields(m map[string]float64) []viz.Field {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fields := make([]viz.Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, viz.Num(name, m[name]))
	}
	return fields
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args, "")
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	m := viz.NewModel(exp.Simulator(), cfg.Label, exp.Family() == experiment.Epidemic, cfg.TCorr, cfg.Sweeps)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if err := final.(viz.Model).Err(); err != nil {
		return err
	}

	if !saveLive {
		return nil
	}
	res, err := exp.Analyse()
	if err != nil {
		return err
	}
	runID, err := storage.New(cfg.DataDir).Save(cfg, res)
	if err != nil {
		return err
	}
	fmt.Printf("saved run: %s\n", runID)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := config.Models()
	if len(args) > 0 {
		models = args
	}
	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Printf("no presets for model: %s\n", model)
			continue
		}
		fmt.Printf("presets for %s:\n", model)
		for _, p := range presets {
			fmt.Printf("  %s/%s\n", model, p)
		}
	}
	return nil
}
