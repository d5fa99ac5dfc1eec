package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/secular/internal/config"
	"github.com/san-kum/secular/internal/farm"
	"github.com/san-kum/secular/internal/integrators"
	"github.com/san-kum/secular/internal/sim"
	"github.com/san-kum/secular/internal/storage"
	"github.com/san-kum/secular/internal/tui"
)

type runFlags struct {
	input      string
	outDir     string
	start, end int
	workers    string
	configFile string
	preset     string
	stepper    string
	absTol     float64
	relTol     float64
	stopAIn    float64
	grOuter    bool
	precision  int
	progress   bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "integrate the tasks of an input file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd, &f)
		},
	}
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "task file, one task per line")
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "output", "output directory")
	cmd.Flags().IntVar(&f.start, "start", 1, "first task id")
	cmd.Flags().IntVar(&f.end, "end", 1, "last task id")
	cmd.Flags().StringVarP(&f.workers, "workers", "w", config.DefaultWorkers, "worker count or auto")
	cmd.Flags().StringVar(&f.configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&f.preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&f.stepper, "stepper", config.DefaultStepper, fmt.Sprintf("stepper %v", integrators.Names()))
	cmd.Flags().Float64Var(&f.absTol, "abs-tol", config.DefaultTolerance, "absolute error tolerance")
	cmd.Flags().Float64Var(&f.relTol, "rel-tol", config.DefaultTolerance, "relative error tolerance")
	cmd.Flags().Float64Var(&f.stopAIn, "stop-a-in", 0, "end a task once the inner semi-major axis (AU) drops to this; 0 disables")
	cmd.Flags().BoolVar(&f.grOuter, "gr-outer", false, "add outer-orbit GR precession to double-averaged GR tasks")
	cmd.Flags().IntVar(&f.precision, "precision", config.DefaultPrecision, "significant digits written")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "show a live progress view")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// resolveConfig layers defaults, a preset or config file, then explicitly
// set flags.
func resolveConfig(cmd *cobra.Command, f *runFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.preset != "" {
		cfg = config.GetPreset(f.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
	}
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("stepper") {
		cfg.Stepper = f.stepper
	}
	if flags.Changed("abs-tol") {
		cfg.Tolerance.Abs = f.absTol
	}
	if flags.Changed("rel-tol") {
		cfg.Tolerance.Rel = f.relTol
	}
	if flags.Changed("stop-a-in") {
		cfg.StopAIn = f.stopAIn
	}
	if flags.Changed("gr-outer") {
		cfg.GROuter = f.grOuter
	}
	if flags.Changed("precision") {
		cfg.Precision = f.precision
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTasks(cmd *cobra.Command, f *runFlags) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}
	rng, err := farm.NewRange(f.start, f.end)
	if err != nil {
		return err
	}
	workers, err := farm.Workers(cfg.Workers, rng.Len())
	if err != nil {
		return err
	}
	factory, err := integrators.Lookup(cfg.Stepper)
	if err != nil {
		return err
	}

	in, err := os.Open(f.input)
	if err != nil {
		return err
	}
	defer in.Close()

	store := storage.New(f.outDir, cfg.Precision)
	if err := store.Init(); err != nil {
		return err
	}
	lastState, logSink, err := store.OpenShared()
	if err != nil {
		return err
	}
	defer lastState.Close()
	defer logSink.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner := &farm.Runner{
		Store:     store,
		LastState: lastState,
		Log:       logSink,
		Stepper:   factory,
		Tolerance: cfg.Tolerance,
		Sim:       cfg.Sim(),
		Options:   cfg.Options(),
		StopAIn:   cfg.StopAIn,
		Logger:    logger,
	}
	fm := &farm.Farm{
		Workers: workers,
		Range:   rng,
		Runner:  runner,
		Logger:  logger,
	}

	logger.Info("run started",
		zap.String("input", f.input),
		zap.Int("start", rng.Start),
		zap.Int("end", rng.End),
		zap.Int("workers", workers),
		zap.String("stepper", cfg.Stepper))

	started := time.Now()
	var summary farm.Summary
	if f.progress {
		summary, err = runWithProgress(ctx, cancel, fm, in, rng.Len())
	} else {
		summary, err = fm.Run(ctx, in)
	}
	elapsed := time.Since(started)

	meta := &storage.RunMetadata{
		Input:     f.input,
		StartID:   rng.Start,
		EndID:     rng.End,
		Workers:   workers,
		Stepper:   cfg.Stepper,
		AbsTol:    cfg.Tolerance.Abs,
		RelTol:    cfg.Tolerance.Rel,
		StopAIn:   cfg.StopAIn,
		GROuter:   cfg.GROuter,
		Started:   started,
		Elapsed:   elapsed.Seconds(),
		Counts:    summary.Counts(),
		MaxDrifts: summary.MaxDrifts,
	}
	if serr := store.SaveMetadata(meta); serr != nil {
		logger.Warn("saving run metadata", zap.Error(serr))
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, elapsed))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("run interrupted: %w", err)
		}
		return err
	}
	return nil
}

func runWithProgress(ctx context.Context, cancel func(), fm *farm.Farm, in io.Reader, total int) (farm.Summary, error) {
	p := tea.NewProgram(tui.NewProgress(total, cancel), tea.WithContext(ctx))
	fm.OnOutcome = func(o farm.Outcome) { p.Send(tui.OutcomeMsg(o)) }

	type result struct {
		summary farm.Summary
		err     error
	}
	done := make(chan result, 1)
	go func() {
		s, err := fm.Run(ctx, in)
		p.Send(tui.DoneMsg{Summary: s, Err: err})
		done <- result{s, err}
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		r := <-done
		return r.summary, errors.Join(r.err, err)
	}
	r := <-done
	return r.summary, r.err
}

func renderSummary(s farm.Summary, elapsed time.Duration) string {
	var b strings.Builder
	b.WriteString(tui.Title.Render("run complete") + "  " + tui.Subtle.Render(elapsed.Round(time.Millisecond).String()) + "\n\n")
	row := func(label string, n int, style func(...string) string) {
		b.WriteString(fmt.Sprintf("%s %s\n", tui.MetricLabel.Render(fmt.Sprintf("%-14s", label)), style(fmt.Sprint(n))))
	}
	row(sim.Finished.String(), s.Finished, tui.StatusFinished.Render)
	row(sim.MaxIterationAborted.String(), s.MaxIteration, tui.StatusAborted.Render)
	row("failed", s.Failed, tui.StatusFailed.Render)
	row("skipped", s.Skipped, tui.Subtle.Render)

	if len(s.MaxDrifts) > 0 {
		b.WriteString("\n")
		names := make([]string, 0, len(s.MaxDrifts))
		for k := range s.MaxDrifts {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			b.WriteString(fmt.Sprintf("%s %s\n", tui.MetricLabel.Render(fmt.Sprintf("%-26s", k)), tui.MetricValue.Render(fmt.Sprintf("%.3e", s.MaxDrifts[k]))))
		}
	}
	return tui.Panel.Render(strings.TrimRight(b.String(), "\n"))
}
