package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/bow-simulation/virtualbow-sub001/internal/config"
	"github.com/bow-simulation/virtualbow-sub001/internal/model"
	"github.com/bow-simulation/virtualbow-sub001/internal/numerics"
	"github.com/bow-simulation/virtualbow-sub001/internal/optim"
	"github.com/bow-simulation/virtualbow-sub001/internal/storage"
	"github.com/bow-simulation/virtualbow-sub001/internal/tui"
	"github.com/bow-simulation/virtualbow-sub001/internal/viz"
)

var (
	dataDir string

	dynamic      bool
	live         bool
	verbose      bool
	noSave       bool
	profileMode  string
	exportPath   string
	drawSteps    int
	limbElements int
	strElements  int

	preset string
	width  int
	height int

	sweepParams []string
	metric      string
	minimize    bool
	workers     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bowsim",
		Short:         "static and dynamic bow simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bowsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "simulate a model file or preset",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().BoolVar(&dynamic, "dynamic", false, "simulate the shot after the static draw")
	runCmd.Flags().BoolVar(&live, "live", false, "show live progress")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log solver iterations")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&profileMode, "profile", "", "write a cpu or mem profile")
	runCmd.Flags().StringVar(&exportPath, "export", "", "write the complete output as json")
	runCmd.Flags().IntVar(&drawSteps, "draw-steps", 0, "override settings.n_draw_steps")
	runCmd.Flags().IntVar(&limbElements, "limb-elements", 0, "override settings.n_limb_elements")
	runCmd.Flags().IntVar(&strElements, "string-elements", 0, "override settings.n_string_elements")

	profileCmd := &cobra.Command{
		Use:   "profile [model]",
		Short: "show the unloaded limb and its section properties",
		Args:  cobra.ExactArgs(1),
		RunE:  showProfile,
	}
	profileCmd.Flags().IntVar(&width, "width", 60, "drawing width")
	profileCmd.Flags().IntVar(&height, "height", 20, "drawing height")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a model file",
		Args:  cobra.ExactArgs(1),
		RunE:  initModel,
	}
	initCmd.Flags().StringVar(&preset, "preset", "longbow", "preset to start from")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list example bows",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show the results of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&width, "width", 40, "drawing width")
	showCmd.Flags().IntVar(&height, "height", 20, "drawing height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [path]",
		Short: "export the complete output of a run as json",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := storage.New(dataDir).LoadOutput(args[0])
			if err != nil {
				return err
			}
			return storage.ExportJSON(args[1], out)
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "simulate a grid of input values in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringArrayVarP(&sweepParams, "param", "p", nil, "name=v1,v2,... or name=start:stop:count, repeatable")
	sweepCmd.Flags().StringVar(&metric, "metric", "", "result to rank by (default final_draw_force or arrow_velocity)")
	sweepCmd.Flags().BoolVar(&minimize, "minimize", false, "rank the smallest metric first")
	sweepCmd.Flags().BoolVar(&dynamic, "dynamic", false, "simulate the shot for every point")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel simulations (default one per cpu)")

	rootCmd.AddCommand(runCmd, profileCmd, initCmd, presetsCmd, listCmd, showCmd, exportCmd, sweepCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, viz.Failure.Render("error:"), err)
		os.Exit(1)
	}
}

// loadModel reads a model file, or falls back to a preset of that name.
func loadModel(arg string) (*model.InputData, string, error) {
	if _, err := os.Stat(arg); errors.Is(err, fs.ErrNotExist) {
		if p := config.GetPreset(arg); p != nil {
			return p, arg, nil
		}
		return nil, "", fmt.Errorf("no model file or preset %q (presets: %s)", arg, strings.Join(config.ListPresets(), ", "))
	}
	in, err := config.Load(arg)
	if err != nil {
		return nil, "", err
	}
	return in, strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg)), nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	in, name, err := loadModel(args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("draw-steps") {
		in.Settings.NDrawSteps = drawSteps
	}
	if cmd.Flags().Changed("limb-elements") {
		in.Settings.NLimbElements = limbElements
	}
	if cmd.Flags().Changed("string-elements") {
		in.Settings.NStringElements = strElements
	}
	in.Settings.Verbose = verbose && !live

	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dataDir)).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(dataDir)).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q (cpu or mem)", profileMode)
	}

	mode := model.Static
	if dynamic {
		mode = model.Dynamic
	}

	start := time.Now()
	var out *model.Output
	if live {
		out, err = tui.RunWithProgress(fmt.Sprintf("%s (%s)", name, mode), func(ctx context.Context, p model.Progress) (*model.Output, error) {
			return model.Simulate(ctx, in, mode, p)
		})
	} else {
		fmt.Printf("simulating %s (%s)...\n", name, mode)
		out, err = model.Simulate(cmd.Context(), in, mode, nil)
	}
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(name, in, mode, out)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	if exportPath != "" {
		if err := storage.ExportJSON(exportPath, out); err != nil {
			return err
		}
	}

	fmt.Println(viz.SummaryTable(out))
	printGraphs(out)
	return nil
}

func printGraphs(out *model.Output) {
	if st := out.Statics; st != nil {
		fmt.Println(viz.Graph(st.States.DrawForce, "draw force [N] over draw steps"))
		fmt.Println()
	}
	if dy := out.Dynamics; dy != nil {
		s := &dy.States
		fmt.Println(viz.Graph(s.ArrowVel, "arrow velocity [m/s] over time"))
		fmt.Println()
		fmt.Println(viz.Graphs("energy [J]: limbs, string, arrow", sum(s.EPotLimbs, s.EKinLimbs), sum(s.EPotString, s.EKinString), s.EKinArrow))
		fmt.Println()
	}
}

func sum(a, b []float64) []float64 {
	s := make([]float64, min(len(a), len(b)))
	for i := range s {
		s[i] = a[i] + b[i]
	}
	return s
}

func showProfile(cmd *cobra.Command, args []string) error {
	in, name, err := loadModel(args[0])
	if err != nil {
		return err
	}
	limb, err := model.NewLimbProperties(in)
	if err != nil {
		return err
	}

	n := limb.Nodes()
	belly := viz.Polyline{X: make([]float64, n), Y: make([]float64, n)}
	for i := range n {
		belly.X[i], belly.Y[i] = limb.Belly(i)
	}
	back := viz.Polyline{X: limb.XBack, Y: limb.YBack}

	fmt.Println(viz.Title.Render(name))
	fmt.Print(viz.Plot(width, height, back, belly).String())
	fmt.Printf("limb length %.4f m\n\n", limb.Length)
	fmt.Println(viz.Graph(limb.Width, "width [m] from root to tip"))
	fmt.Println()
	fmt.Println(viz.Graph(limb.Height, "height [m] from root to tip"))
	fmt.Println()
	fmt.Println(viz.Graph(limb.EI, "bending stiffness [Nm²] from root to tip"))
	return nil
}

func initModel(cmd *cobra.Command, args []string) error {
	in := config.GetPreset(preset)
	if in == nil {
		return fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
	}
	if _, err := os.Stat(args[0]); err == nil {
		return fmt.Errorf("%s already exists", args[0])
	}
	if err := config.Save(args[0], in); err != nil {
		return err
	}
	fmt.Printf("wrote %s from preset %s\n", args[0], preset)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tMODE\tDRAW FORCE\tVELOCITY")

	for _, run := range runs {
		velocity := "-"
		if v, ok := run.Metrics["arrow_velocity"]; ok {
			velocity = fmt.Sprintf("%.2f m/s", v)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f N\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Metrics["final_draw_force"],
			velocity,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	out, err := st.LoadOutput(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("mode: %s\n\n", meta.Mode)
	fmt.Println(viz.SummaryTable(out))

	table, err := st.LoadStates(runID, storage.Statics)
	if err != nil {
		return err
	}
	fmt.Println(viz.Graph(table.Column("draw_force"), "draw force [N] over draw steps"))
	fmt.Println()

	if out.Statics != nil {
		last := out.Statics.States.Len() - 1
		fmt.Println(viz.Subtle.Render("braced"))
		fmt.Print(viz.BowShape(&out.Statics.States, 0, width, height))
		fmt.Println(viz.Subtle.Render("full draw"))
		fmt.Print(viz.BowShape(&out.Statics.States, last, width, height))
	}

	if meta.Mode == model.Dynamic.String() {
		table, err := st.LoadStates(runID, storage.Dynamics)
		if err != nil {
			return err
		}
		fmt.Println(viz.Graph(table.Column("arrow_vel"), "arrow velocity [m/s] over time"))
	}
	return nil
}

// parseParam reads name=v1,v2,... or name=start:stop:count.
func parseParam(arg string) (optim.Param, error) {
	name, values, ok := strings.Cut(arg, "=")
	if !ok {
		return optim.Param{}, fmt.Errorf("parameter %q: expected name=values", arg)
	}
	p := optim.Param{Name: strings.TrimSpace(name)}

	if parts := strings.Split(values, ":"); len(parts) == 3 {
		start, err1 := strconv.ParseFloat(parts[0], 64)
		stop, err2 := strconv.ParseFloat(parts[1], 64)
		count, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return p, fmt.Errorf("parameter %q: %w", arg, err)
		}
		if count < 1 {
			return p, fmt.Errorf("parameter %q: count must be positive", arg)
		}
		p.Values = numerics.Linspace(start, stop, count)
		return p, nil
	}

	for _, field := range strings.Split(values, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return p, fmt.Errorf("parameter %q: %w", arg, err)
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	in, name, err := loadModel(args[0])
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("no --param given (one of %s)", strings.Join(optim.ParamNames(), ", "))
	}

	var params []optim.Param
	for _, arg := range sweepParams {
		p, err := parseParam(arg)
		if err != nil {
			return err
		}
		params = append(params, p)
	}
	g, err := optim.NewGridSearch(params, workers)
	if err != nil {
		return err
	}

	mode := model.Static
	key := "final_draw_force"
	if dynamic {
		mode = model.Dynamic
		key = "arrow_velocity"
	}
	if metric != "" {
		key = metric
	}
	rate := func(out *model.Output) (float64, bool) {
		v, ok := storage.Summary(out)[key]
		return v, ok
	}

	total := len(g.Points())
	finished := 0
	fmt.Printf("sweeping %s over %d points (%s)...\n", name, total, mode)
	points, err := g.Run(cmd.Context(), in, mode, func(optim.Point) {
		finished++
		fmt.Printf("\r%s %d/%d", viz.ProgressBar(float64(finished)/float64(total), 30), finished, total)
	})
	fmt.Println()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, p := range params {
		fmt.Fprintf(w, "%s\t", strings.ToUpper(p.Name))
	}
	fmt.Fprintln(w, strings.ToUpper(key))
	for _, pt := range points {
		for _, p := range params {
			fmt.Fprintf(w, "%g\t", pt.Params[p.Name])
		}
		if pt.Err != nil {
			fmt.Fprintln(w, viz.Failure.Render(pt.Err.Error()))
			continue
		}
		if v, ok := rate(pt.Output); ok {
			fmt.Fprintf(w, "%.6g\n", v)
		} else {
			fmt.Fprintln(w, "-")
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best, ok := optim.Best(points, rate, minimize)
	if !ok {
		return fmt.Errorf("no point produced %s", key)
	}
	v, _ := rate(best.Output)
	var desc []string
	for _, p := range params {
		desc = append(desc, fmt.Sprintf("%s=%g", p.Name, best.Params[p.Name]))
	}
	fmt.Printf("\nbest: %s with %s %s\n", strings.Join(desc, " "), key, viz.Success.Render(fmt.Sprintf("%.6g", v)))
	return nil
}
