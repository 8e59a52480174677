package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/spinlattice/internal/analysis"
	"github.com/san-kum/spinlattice/internal/automation"
	"github.com/san-kum/spinlattice/internal/config"
	"github.com/san-kum/spinlattice/internal/experiment"
	"github.com/san-kum/spinlattice/internal/optim"
	"github.com/san-kum/spinlattice/internal/sim"
	"github.com/san-kum/spinlattice/internal/storage"
	"github.com/san-kum/spinlattice/internal/viz"
	"github.com/spf13/cobra"
)

// axis is the default grid of a sweep kind. A non-zero sweeps replaces
// the preset's run length before the config file, env and flags apply.
type axis struct {
	from, to, step    float64
	yFrom, yTo, yStep float64
	sweeps            int
}

var sweepAxes = map[string]axis{
	"temperature": {from: 1, to: 3, step: 0.1},
	"phase":       {from: 0, to: 1, step: 0.025, yFrom: 0, yTo: 1, yStep: 0.025, sweeps: 1000},
	"cut":         {from: 0.2, to: 0.5, step: 0.01, sweeps: 10000},
	"immunity":    {from: 0, to: 1, step: 0.01, sweeps: 10000},
}

func (ax axis) defaults(cfg *config.Config) {
	if ax.sweeps > 0 {
		cfg.Sweeps = ax.sweeps
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	kind := args[0]
	ax, ok := sweepAxes[kind]
	if !ok {
		return fmt.Errorf("unknown sweep: %s (available: temperature, phase, cut, immunity)", kind)
	}
	f := cmd.Flags()
	if f.Changed("from") {
		ax.from = from
	}
	if f.Changed("to") {
		ax.to = to
	}
	if f.Changed("step") {
		ax.step = step
	}
	if f.Changed("p3-from") {
		ax.yFrom = yFrom
	}
	if f.Changed("p3-to") {
		ax.yTo = yTo
	}
	if f.Changed("p3-step") {
		ax.yStep = yStep
	}

	defaultPreset := "sirs/equilibrium"
	if kind == "temperature" {
		defaultPreset = ""
	}
	cfg, err := resolveConfig(cmd, nil, defaultPreset, ax.defaults)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	if _, family, err := reg.GetRule(cfg.Dynamics); err != nil {
		return err
	} else if (family == experiment.Epidemic) == (kind == "temperature") {
		return fmt.Errorf("sweep %s does not apply to %s dynamics", kind, cfg.Dynamics)
	}

	var sw *automation.Sweep
	switch kind {
	case "temperature":
		sw = automation.TemperatureScan(cfg, ax.from, ax.to, ax.step)
	case "phase":
		sw = automation.PhaseDiagram(cfg, automation.Range(ax.from, ax.to, ax.step), automation.Range(ax.yFrom, ax.yTo, ax.yStep), p2)
	case "cut":
		sw = automation.PhaseCut(cfg, automation.Range(ax.from, ax.to, ax.step), p2, p3)
	case "immunity":
		sw = automation.ImmunityScan(cfg, automation.Range(ax.from, ax.to, ax.step), p1, p2, p3)
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	catalog, err := storage.OpenCatalog(filepath.Join(cfg.DataDir, "catalog.db"))
	if err != nil {
		return err
	}
	defer catalog.Close()

	fmt.Printf("sweep %s: %d runs on %d workers\n", sw.ID, len(sw.Points), workers)
	results, err := automation.RunSweep(cmd.Context(), sw, reg, automation.Options{
		Workers:  workers,
		Store:    st,
		Catalog:  catalog,
		Progress: os.Stdout,
	})
	if err != nil {
		return err
	}

	dir := filepath.Join(cfg.DataDir, sw.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	out, err := os.Create(filepath.Join(dir, "Results.csv"))
	if err != nil {
		return err
	}
	if err := automation.WriteResults(out, results); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Printf("results written to %s\n", filepath.Join(dir, "Results.csv"))
	reportPeaks(kind, results)

	if chart {
		return writeSweepChart(dir, kind, results)
	}
	return nil
}

func reportPeaks(kind string, results []automation.SweepResult) {
	names := []string{"varPsi"}
	if kind == "temperature" {
		names = []string{"C", "X"}
	}
	for _, name := range names {
		r, v, err := optim.Peak(results, name)
		if err != nil {
			continue
		}
		fmt.Printf("%s peak: %.4g at run %d (%s)\n", name, v, r.Run, describePoint(r.Point))
	}
}

func describePoint(p automation.Point) string {
	var parts []string
	for _, name := range []string{"J", "k", "T", "p1", "p2", "p3"} {
		if v, ok := p.Params[name]; ok {
			parts = append(parts, fmt.Sprintf("%s=%g", name, v))
		}
	}
	if p.Proportions != nil {
		parts = append(parts, fmt.Sprintf("immune=%g", p.Proportions[len(p.Proportions)-1]))
	}
	return strings.Join(parts, " ")
}

func runSearch(cmd *cobra.Command, args []string) error {
	names := make([]string, 0, len(searchParams))
	ranges := make([][]float64, 0, len(searchParams))
	for _, raw := range searchParams {
		name, vals, err := parseParamRange(raw)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	cfg, err := resolveConfig(cmd, nil, "")
	if err != nil {
		return err
	}
	g := optim.NewGridSearch(names, ranges)
	g.Maximise = maximise
	fmt.Printf("searching %d points for the %s of %s\n", len(g.Points()), map[bool]string{true: "maximum", false: "minimum"}[maximise], quantity)

	best, v, err := g.Search(cmd.Context(), cfg, experiment.NewRegistry(), quantity, automation.Options{
		Workers:  workers,
		Progress: os.Stdout,
	})
	if err != nil {
		return err
	}
	fmt.Printf("best %s: %.6g at %s\n", quantity, v, describePoint(automation.Point{Params: best}))
	return nil
}

// parseParamRange reads name=lo:hi:step or name=v1,v2,...
func parseParamRange(raw string) (string, []float64, error) {
	name, rest, ok := strings.Cut(raw, "=")
	if !ok || name == "" || rest == "" {
		return "", nil, fmt.Errorf("param %q: want name=lo:hi:step or name=v1,v2", raw)
	}
	if parts := strings.Split(rest, ":"); len(parts) == 3 {
		var bounds [3]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return "", nil, fmt.Errorf("param %s: %w", name, err)
			}
			bounds[i] = v
		}
		return name, automation.Range(bounds[0], bounds[1], bounds[2]), nil
	}
	var vals []float64
	for _, part := range strings.Split(rest, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return "", nil, fmt.Errorf("param %s: %w", name, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}

func writeSweepChart(dir, kind string, results []automation.SweepResult) error {
	if kind == "phase" {
		fmt.Println("phase diagrams have two axes; skipping chart")
		return nil
	}
	xs := make([]float64, len(results))
	ys := make(map[string][]float64)
	names := []string{"avPsi", "varPsi"}
	if kind == "temperature" {
		names = []string{"C", "X"}
	}
	for i, r := range results {
		switch kind {
		case "temperature":
			xs[i] = r.Config.T
		case "immunity":
			xs[i] = r.Config.Proportions[3]
		default:
			xs[i] = r.Config.Probabilities[0]
		}
		q := r.Result.Quantities()
		for _, name := range names {
			ys[name] = append(ys[name], q[name])
		}
	}

	xLabel := map[string]string{"temperature": "T", "immunity": "immune fraction", "cut": "p1"}[kind]
	path := filepath.Join(dir, "Results.png")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := viz.SweepChart(f, kind+" sweep", xLabel, xs, ys); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("chart written to %s\n", path)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := resolveConfig(cmd, nil, "")
	if err != nil {
		return err
	}
	st := storage.New(base.DataDir)

	fmt.Printf("scenario %s: %s\n", sc.Name, sc.Description)
	results, err := automation.RunScenario(cmd.Context(), sc, base, experiment.NewRegistry(), st, os.Stdout)
	if err != nil {
		return err
	}
	for _, res := range results {
		fmt.Println(viz.Summary(res.Label, resultFields(res)))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tDYNAMICS\tTIME\tLATTICE\tSWEEPS\tSAMPLES\tSTATUS")

	for _, run := range runs {
		status := "completed"
		if run.Stopped {
			status = "absorbed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dx%d\t%d\t%d\t%s\n",
			run.ID,
			run.Label,
			run.Dynamics,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.FinalT,
			run.Samples,
			status,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fields := []viz.Field{
		{Label: "label", Value: meta.Label},
		{Label: "dynamics", Value: meta.Dynamics},
		{Label: "lattice", Value: fmt.Sprintf("%dx%d", meta.Width, meta.Height)},
		{Label: "seed", Value: fmt.Sprintf("%d", meta.Seed)},
		{Label: "sweeps", Value: fmt.Sprintf("%d of %d", meta.FinalT, meta.Sweeps)},
		{Label: "samples", Value: fmt.Sprintf("%d", meta.Samples)},
	}
	for _, name := range append(append([]string{}, isingQuantities...), epidemicQuantities...) {
		if v, ok := meta.Quantities[name]; ok {
			fields = append(fields, viz.Num(name, v))
		}
	}
	fields = append(fields, metricFields(meta.Metrics)...)
	fmt.Println(viz.Summary(meta.ID, fields))

	rows, err := st.LoadGrid(args[0])
	if err != nil {
		return err
	}
	epidemic := meta.Family == experiment.Epidemic.String()
	if plain {
		fmt.Print(viz.PlainGrid(rows, epidemic))
	} else {
		fmt.Print(viz.RenderGrid(rows, epidemic, viz.GetTheme(themeName)))
	}
	return nil
}

// loadColumn returns the named column of a run's series, or its first
// column when name is empty.
func loadColumn(st *storage.Store, runID, name string) (*sim.Series, string, []float64, error) {
	series, err := st.LoadSeries(runID)
	if err != nil {
		return nil, "", nil, err
	}
	cols := series.Columns()
	if name == "" {
		if len(cols) == 0 {
			return nil, "", nil, fmt.Errorf("run %s has no columns", runID)
		}
		name = cols[0]
	}
	vals, ok := series.Column(name)
	if !ok {
		return nil, "", nil, fmt.Errorf("run %s has no column %q (columns: %s)", runID, name, strings.Join(cols, ", "))
	}
	if len(vals) == 0 {
		return nil, "", nil, fmt.Errorf("run %s recorded no samples", runID)
	}
	return series, name, vals, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, name, _, err := loadColumn(st, runID, column)
	if err != nil {
		return err
	}

	graph, err := viz.PlotColumn(series, name, 80, 15)
	if err != nil {
		return err
	}
	fmt.Printf("run: %s (%s)\n\n", meta.ID, meta.Dynamics)
	fmt.Println(graph)

	if pngOut != "" {
		f, err := os.Create(pngOut)
		if err != nil {
			return err
		}
		if err := viz.SeriesChart(f, meta.Label, series); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("chart written to %s\n", pngOut)
	}

	if gridPNG != "" {
		rows, err := st.LoadGrid(runID)
		if err != nil {
			return err
		}
		img := viz.GridImage(rows, meta.Family == experiment.Epidemic.String(), viz.GetTheme(themeName), 8)
		if err := viz.SavePNG(gridPNG, img); err != nil {
			return err
		}
		fmt.Printf("lattice written to %s\n", gridPNG)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, name, vals, err := loadColumn(st, runID, column)
	if err != nil {
		return err
	}

	fmt.Printf("series analysis: %s\n", meta.ID)
	fmt.Printf("column: %s, %d samples every %d sweeps\n\n", name, len(vals), meta.TCorr)
	fmt.Printf("mean: %.6g  std err: %.6g  variance: %.6g\n\n", analysis.Mean(vals), analysis.StdErr(vals), analysis.Variance(vals))

	acf := analysis.Autocorrelation(vals, maxLag)
	if len(acf) < 2 {
		fmt.Println("series is constant; no autocorrelation")
		return nil
	}
	fmt.Println(asciigraph.Plot(acf,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("autocorrelation (lag in samples)"),
	))
	fmt.Println()

	tau := analysis.CorrelationTime(vals)
	if tau < 0 {
		fmt.Println("correlation time: longer than the series")
	} else {
		fmt.Printf("correlation time: %d samples (%d sweeps)\n", tau, tau*meta.TCorr)
	}

	ps := analysis.PowerSpectrum(vals)
	if len(ps) < 3 {
		return nil
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(ps[1:],
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+name+")"),
	))

	maxIdx := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[maxIdx] {
			maxIdx = i
		}
	}
	period := float64(len(vals)*meta.TCorr) / float64(maxIdx)
	fmt.Printf("dominant period: %.1f sweeps\n", period)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, series)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, series)
}

func showCatalog(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	path := filepath.Join(st.BaseDir(), "catalog.db")
	if _, err := os.Stat(path); err != nil {
		fmt.Println("no sweeps recorded")
		return nil
	}
	catalog, err := storage.OpenCatalog(path)
	if err != nil {
		return err
	}
	defer catalog.Close()
	ctx := cmd.Context()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if len(args) == 0 {
		sweeps, err := catalog.Sweeps(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "SWEEP\tDYNAMICS\tRUNS\tSTARTED")
		for _, s := range sweeps {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.Sweep, s.Dynamics, s.Runs, s.Started.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	}

	if deleteSweep {
		n, err := catalog.Delete(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d rows of %s\n", n, args[0])
		return nil
	}

	rows, err := catalog.Rows(ctx, args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no sweep %s", args[0])
	}
	names := isingQuantities[:4]
	if rows[0].Dynamics == "sirs" {
		names = epidemicQuantities[:4]
	}
	fmt.Fprintln(w, "RUN\tT\tP1\tP2\tP3\tN\tn\t"+strings.Join(names, "\t")+"\tRUN_ID")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%g\t%g\t%g\t%g\t%d\t%d", r.Run, r.T, r.P1, r.P2, r.P3, r.Size, r.Samples)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.4g", r.Quantities[name])
		}
		fmt.Fprintf(w, "\t%s\n", r.RunID)
	}
	return w.Flush()
}
