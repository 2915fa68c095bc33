package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mepsim/internal/analysis"
	"github.com/san-kum/mepsim/internal/config"
	"github.com/san-kum/mepsim/internal/experiment"
	"github.com/san-kum/mepsim/internal/render"
	"github.com/san-kum/mepsim/internal/sim"
	"github.com/san-kum/mepsim/internal/storage"
	"github.com/san-kum/mepsim/internal/viz"
)

// loadConfig resolves --preset, then --config. A missing default config
// file is created from the sample first.
func loadConfig() (*config.Config, error) {
	if preset != "" {
		cfg, err := config.GetPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		return cfg, nil
	}

	if configFile == config.DefaultFile {
		if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
			if err := config.WriteSample(configFile); err != nil {
				return nil, err
			}
			fmt.Printf("no config found, wrote sample to %s\n", configFile)
		}
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("elements") {
		cfg.Path.Elements = elements
	}
	if cmd.Flags().Changed("spring") {
		cfg.Path.SpringConstant = spring
	}
	if cmd.Flags().Changed("scale") {
		cfg.PES.Scale = scale
	}
	if cmd.Flags().Changed("limit") {
		cfg.ConvergenceLimit = limit
	}
	if cmd.Flags().Changed("max-iter") {
		cfg.MaxIterations = maxIter
	}
	if cmd.Flags().Changed("pin-ends") {
		cfg.Path.PinEnds = pinEnds
	}
	if cmd.Flags().Changed("relax-ends") {
		cfg.Path.RelaxEnds = relaxEnds
	}
}

func progressObserver() sim.Observer {
	return sim.ObserverFunc(func(it sim.Iteration) {
		if it.Index == 0 {
			fmt.Printf("starting with initial energy: %15.10f\n", it.Energy)
			return
		}
		fmt.Printf("iteration: %4d resulted in energy: %15.10f and took: %.3f sec\n",
			it.Index, it.Energy, it.Elapsed.Seconds())
	})
}

func runRelaxation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	name := runName
	if name == "" {
		name = preset
	}
	if name == "" {
		name = "mep"
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(registry.DefaultMetrics()); err != nil {
		return err
	}
	for _, w := range exp.Warnings() {
		fmt.Printf("warning: %v\n", w)
	}
	fmt.Printf("Setup took: %.3f sec\n", exp.SetupTime().Seconds())

	simulator := exp.GetSimulator()
	simulator.AddObserver(progressObserver())

	var (
		writer   *render.FrameWriter
		recorder *render.GIFRecorder
	)
	if frames || gifOut != "" {
		renderer, err := render.NewRenderer(cfg.Image, exp.Field())
		if err != nil {
			return err
		}
		writer, err = render.NewFrameWriter(renderer, outDir, every)
		if err != nil {
			return err
		}
		writer.PNG = frames
		if gifOut != "" {
			recorder = render.NewGIFRecorder(0)
			writer.Recorder = recorder
		}
		simulator.AddObserver(writer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		fmt.Printf("stopped: %v\n", runErr)
	}

	if writer != nil {
		if err := writer.Err(); err != nil {
			return err
		}
		if frames {
			fmt.Printf("wrote %d frames to %s\n", writer.Written(), outDir)
		}
	}
	if recorder != nil {
		if err := recorder.Save(gifOut); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d frames)\n", gifOut, recorder.Len())
	}

	points := exp.Chain().Points()
	runID, err := st.Save(name, cfg, result, points)
	if err != nil {
		return err
	}

	printSummary(runID, result)

	prof := analysis.NewProfile(points, exp.Field())
	saddle := prof.Saddle()
	if saddle.Index >= 0 {
		fmt.Println()
		fmt.Println(viz.LabelStyle().Render("saddle estimate"))
		fmt.Printf("  image %d at (%.4f, %.4f), energy %.6f\n", saddle.Index, saddle.Point.X, saddle.Point.Y, saddle.Energy)
		fmt.Printf("  forward barrier %.6f, backward barrier %.6f\n", saddle.Forward, saddle.Backward)
		fmt.Println()
		fmt.Println(analysis.ProfileToASCII(prof, 60, 12))
	}

	if len(result.Energies) > 1 {
		fmt.Println(asciigraph.Plot(result.Energies,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("average energy per iteration"),
		))
	}
	return runErr
}

func printSummary(runID string, result *sim.Result) {
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(viz.LabelStyle().Render(fmt.Sprintf("%-18s", label)))
		b.WriteString(viz.ValueStyle().Render(value))
		b.WriteString("\n")
	}

	row("run id", runID)
	row("status", viz.StatusStyle(result.Status.String()).Render(result.Status.String()))
	row("iterations", fmt.Sprintf("%d", result.Iterations))
	row("initial energy", fmt.Sprintf("%.10f", result.InitialEnergy))
	row("final energy", fmt.Sprintf("%.10f", result.FinalEnergy))
	row("took", result.Duration.Round(time.Millisecond).String())
	if result.EnergyIncreased {
		row("note", "last iteration raised the energy")
	}

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(name, fmt.Sprintf("%.6f", result.Metrics[name]))
	}

	fmt.Println()
	fmt.Println(viz.BoxWithTitle("relaxation", strings.TrimRight(b.String(), "\n"), 56))
}
