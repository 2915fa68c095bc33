package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/mepsim/internal/automation"
	"github.com/san-kum/mepsim/internal/config"
	"github.com/san-kum/mepsim/internal/experiment"
	"github.com/san-kum/mepsim/internal/storage"
)

var (
	trials       int
	perturbation float64
	seed         int64
	mcMaxIter    int
)

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario and store every step",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
}

func newMonteCarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the anchors and report the spread of the barrier",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	cmd.Flags().StringVar(&configFile, "config", config.DefaultFile, "config file path (yaml or json)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	cmd.Flags().Float64Var(&perturbation, "perturbation", 0.25, "anchor jitter on each axis")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	cmd.Flags().IntVar(&mcMaxIter, "max-iter", 5000, "iteration bound per trial (0 = unbounded)")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))
	results, runErr := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), st)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tSTATUS\tITER\tFINAL E\tSADDLE E")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.8f\t%.8f\n",
			r.Name, r.RunID, r.Result.Status, r.Result.Iterations, r.Result.FinalEnergy, r.Saddle.Energy)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base, err := loadConfig()
	if err != nil {
		return err
	}
	base.MaxIterations = mcMaxIter

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, runErr := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         base,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         seed,
	}, experiment.NewRegistry())

	stats := automation.Stats(results)
	fmt.Printf("trials: %d ok, %d failed\n", stats.Succeeded, stats.Failed)
	fmt.Printf("saddle energy: mean %.6f, stddev %.6f\n", stats.Mean, stats.StdDev)
	return runErr
}
