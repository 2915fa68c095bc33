package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/mepsim/internal/config"
	"github.com/san-kum/mepsim/internal/sim"
	"github.com/san-kum/mepsim/internal/viz"
)

var (
	dataDir string
	verbose bool

	configFile string
	preset     string

	outDir     string
	frames     bool
	every      int
	gifOut     string
	elements   int
	spring     float64
	scale      float64
	limit      float64
	maxIter    int
	pinEnds    bool
	relaxEnds  bool
	runName    string
	outputPath string
)

// main registers the command tree; with no subcommand it opens the
// interactive preset picker.
func main() {
	rootCmd := &cobra.Command{
		Use:   "mepsim",
		Short: "minimum energy path relaxation on 2D surfaces",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mepsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "relax a path and save the run",
		Args:  cobra.NoArgs,
		RunE:  runRelaxation,
	}
	runCmd.Flags().StringVar(&configFile, "config", config.DefaultFile, "config file path (yaml or json)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&outDir, "out", "images", "frame output directory")
	runCmd.Flags().BoolVar(&frames, "frames", true, "write progress_NNNN.png frames")
	runCmd.Flags().IntVar(&every, "every", 1, "write every n-th frame")
	runCmd.Flags().StringVar(&gifOut, "gif", "", "also write an animated gif to this path")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the preset or \"mep\")")
	runCmd.Flags().IntVar(&elements, "elements", config.DefaultElements, "number of path elements")
	runCmd.Flags().Float64Var(&spring, "spring", 0, "spring constant")
	runCmd.Flags().Float64Var(&scale, "scale", config.DefaultScale, "surface scale")
	runCmd.Flags().Float64Var(&limit, "limit", config.DefaultConvergenceLimit, "convergence limit")
	runCmd.Flags().IntVar(&maxIter, "max-iter", config.DefaultMaxIterations, "iteration bound (0 = unbounded)")
	runCmd.Flags().BoolVar(&pinEnds, "pin-ends", false, "keep the anchors fixed")
	runCmd.Flags().BoolVar(&relaxEnds, "relax-ends", false, "relax the anchors into their wells first")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the sample config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.WriteSample(path); err != nil {
				return err
			}
			fmt.Printf("wrote sample config to %s\n", path)
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the path relax in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", config.DefaultFile, "config file path (yaml or json)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy history and final path",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the final path to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write to file instead of stdout")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "draw the final path over the surface as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: path.svg in the run directory)")

	energyPNGCmd := &cobra.Command{
		Use:   "energy-png [run_id]",
		Short: "plot energy, convergence and profile charts as PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  energyPNG,
	}
	energyPNGCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory (default: the run directory)")

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

	rootCmd.AddCommand(runCmd, initCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, svgCmd, energyPNGCmd, presetsCmd, newSweepCmd(), newBatchCmd(), newMonteCarloCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	sim.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func runLive(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("preset") && !cmd.Flags().Changed("config") {
		return viz.RunInteractive()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	name := preset
	if name == "" {
		name = "mep"
	}
	return viz.RunLive(cfg, name)
}
