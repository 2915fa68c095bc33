package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/mepsim/internal/config"
	"github.com/san-kum/mepsim/internal/experiment"
	"github.com/san-kum/mepsim/internal/optim"
)

var (
	springMin, springMax float64
	scaleMin, scaleMax   float64
	springSteps          int
	scaleSteps           int
	objective            string
	sweepMaxIter         int
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over spring constant and surface scale",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	cmd.Flags().StringVar(&configFile, "config", config.DefaultFile, "config file path (yaml or json)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&springMin, "spring-min", 0, "lowest spring constant")
	cmd.Flags().Float64Var(&springMax, "spring-max", 0.5, "highest spring constant")
	cmd.Flags().IntVar(&springSteps, "spring-steps", 5, "spring constant samples")
	cmd.Flags().Float64Var(&scaleMin, "scale-min", 0.5, "lowest surface scale")
	cmd.Flags().Float64Var(&scaleMax, "scale-max", 1.5, "highest surface scale")
	cmd.Flags().IntVar(&scaleSteps, "scale-steps", 3, "surface scale samples")
	cmd.Flags().StringVar(&objective, "objective", optim.ObjectiveIterations, "final_energy, iterations or a metric name")
	cmd.Flags().IntVar(&sweepMaxIter, "max-iter", 5000, "iteration bound per trial (0 = unbounded)")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := loadConfig()
	if err != nil {
		return err
	}
	base.MaxIterations = sweepMaxIter

	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(registry.DefaultMetrics()); err != nil {
			return nil, err
		}
		return exp, nil
	}

	params := []string{"spring_constant", "scale"}
	gs := optim.NewGridSearch(params, [][]float64{
		optim.Linspace(springMin, springMax, springSteps),
		optim.Linspace(scaleMin, scaleMax, scaleSteps),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, value, err := gs.Search(ctx, build, objective)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPRING\tSCALE\tSTATUS\tVALUE\tERROR")
	for _, t := range gs.Trials() {
		errText := ""
		if t.Err != nil {
			errText = t.Err.Error()
		}
		fmt.Fprintf(w, "%.4f\t%.4f\t%s\t%.6f\t%s\n",
			t.Params["spring_constant"], t.Params["scale"], t.Status, t.Value, errText)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6f at spring_constant=%.4f scale=%.4f\n",
		objective, value, best["spring_constant"], best["scale"])
	return nil
}
