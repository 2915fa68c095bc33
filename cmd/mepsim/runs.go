package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mepsim/internal/analysis"
	"github.com/san-kum/mepsim/internal/export"
	"github.com/san-kum/mepsim/internal/storage"
)

// resolveRun returns args[0] or, when no ID is given, the latest run.
func resolveRun(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return st.Latest()
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTATUS\tITER\tFINAL E\tSECONDS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.8f\t%.3f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Status,
			run.Iterations,
			run.FinalEnergy,
			run.Seconds,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	energies, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}
	path, err := st.LoadPath(runID)
	if err != nil {
		return err
	}
	if len(energies) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("status: %s after %d iterations\n", meta.Status, meta.Iterations)
	if rate := analysis.ConvergenceRate(energies); !math.IsNaN(rate) {
		fmt.Printf("contraction per iteration: %.4f\n", rate)
	}
	fmt.Println()

	fmt.Println(asciigraph.Plot(energies,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("average energy per iteration"),
	))
	fmt.Println()
	fmt.Println(analysis.PathToASCII(path, 60, 20))

	if meta.Config != nil {
		prof := analysis.NewProfile(path, meta.Config.Field())
		fmt.Println()
		fmt.Println(analysis.ProfileToASCII(prof, 60, 12))
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	return st.ExportCSV(runID, os.Stdout)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	if outputPath != "" {
		if err := st.ExportJSONFile(runID, outputPath); err != nil {
			return err
		}
		fmt.Printf("exported %s to %s\n", runID, outputPath)
		return nil
	}
	return st.ExportJSON(runID, os.Stdout)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if meta.Config == nil {
		return fmt.Errorf("run %s has no stored config", runID)
	}
	path, err := st.LoadPath(runID)
	if err != nil {
		return err
	}

	svg := export.PathToSVG(path, meta.Config.Field(), meta.Config.Image, export.DefaultSVGOptions())
	if svg == "" {
		return fmt.Errorf("run %s has too few points to draw", runID)
	}

	out := outputPath
	if out == "" {
		out = filepath.Join(st.Dir(runID), "path.svg")
	}
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func energyPNG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	energies, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}

	dir := outputPath
	if dir == "" {
		dir = st.Dir(runID)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if err := export.EnergyPlot(energies, filepath.Join(dir, "energy.png")); err != nil {
		return err
	}
	if err := export.ConvergencePlot(energies, filepath.Join(dir, "convergence.png")); err != nil {
		// a single-iteration run has no deltas to draw
		fmt.Printf("skipped convergence.png: %v\n", err)
	}
	if meta.Config != nil {
		path, err := st.LoadPath(runID)
		if err != nil {
			return err
		}
		prof := analysis.NewProfile(path, meta.Config.Field())
		if err := export.ProfilePlot(prof, filepath.Join(dir, "profile.png")); err != nil {
			return err
		}
	}
	fmt.Printf("wrote charts to %s\n", dir)
	return nil
}
