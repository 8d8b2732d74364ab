// Package cmd implements the roisim command-line interface.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/roisim/emu"
	"github.com/sarchlab/roisim/sampling"
	"github.com/sarchlab/roisim/sampling/roi"
	"github.com/sarchlab/roisim/simulate"
	timingcache "github.com/sarchlab/roisim/timing/cache"
	timingcore "github.com/sarchlab/roisim/timing/core"
	"github.com/sarchlab/roisim/timing/latency"
	"github.com/sarchlab/roisim/workload"
)

var (
	// Sampling profile flags. Intervals are in millions of instructions.
	ffInterval       float64
	warmupInterval   float64
	roiInterval      float64
	initFFInterval   float64
	numROIs          int
	continueSim      bool
	startOnWorkBegin bool
	simpleMode       bool

	// Input and output flags.
	workloadPath string
	latencyPath  string
	statsPath    string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "roisim",
	Short: "Sampled region-of-interest simulation driver",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workload under the sampling profile",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level %q", logLevel)
		}
		logrus.SetLevel(level)

		program := buildProgram()
		simulator := buildSimulator(program)
		coordinator := buildCoordinator()

		if err := simulator.Instantiate(); err != nil {
			logrus.Fatalf("instantiating simulator: %v", err)
		}

		simulator.RegisterHandlers(coordinator.EventHandlers())

		if err := coordinator.Register(simulator); err != nil {
			logrus.Fatalf("registering engine: %v", err)
		}

		if err := simulator.Run(); err != nil {
			logrus.Fatalf("running simulation: %v", err)
		}

		logrus.Infof("executed %d instructions in total", simulator.Position())
	},
}

func buildProgram() *workload.Program {
	spec := workload.DefaultSpec()

	if workloadPath != "" {
		loaded, err := workload.LoadSpec(workloadPath)
		if err != nil {
			logrus.Fatalf("loading workload: %v", err)
		}
		spec = loaded
	}

	program, err := spec.Build()
	if err != nil {
		logrus.Fatalf("building workload: %v", err)
	}

	return program
}

func buildSimulator(program *workload.Program) *simulate.Simulator {
	latencyConfig := latency.DefaultConfig()

	if latencyPath != "" {
		loaded, err := latency.LoadConfig(latencyPath)
		if err != nil {
			logrus.Fatalf("loading latency config: %v", err)
		}
		latencyConfig = loaded
	}

	processor := simulate.NewSwitchableProcessor(
		emu.NewFastCore(),
		timingcore.NewDetailedCore(
			latency.NewTable(latencyConfig),
			timingcache.DefaultL1DConfig(),
		),
	)

	var opts []simulate.SimulatorOption
	if statsPath != "" {
		statsFile, err := os.Create(statsPath)
		if err != nil {
			logrus.Fatalf("creating stats file: %v", err)
		}
		opts = append(opts, simulate.WithStatsWriter(statsFile))
	}

	return simulate.NewSimulator(program, processor, opts...)
}

func buildCoordinator() *sampling.Coordinator {
	if simpleMode {
		return sampling.NewCoordinator(roi.NewSimpleManager())
	}

	manager, err := roi.NewPeriodicManager(roi.PeriodicConfig{
		FFInterval:       ffInterval,
		WarmupInterval:   warmupInterval,
		ROIInterval:      roiInterval,
		InitFFInterval:   initFFInterval,
		NumROIs:          numROIs,
		ContinueSim:      continueSim,
		StartOnWorkBegin: startOnWorkBegin,
	})
	if err != nil {
		logrus.Fatalf("configuring periodic sampler: %v", err)
	}

	return sampling.NewCoordinator(manager)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().Float64Var(&ffInterval, "ff-interval", roi.DefaultFFInterval,
		"Fast-forward interval between ROIs, in millions of instructions")
	runCmd.Flags().Float64Var(&warmupInterval, "warmup-interval", roi.DefaultWarmupInterval,
		"Warmup interval before each ROI, in millions of instructions")
	runCmd.Flags().Float64Var(&roiInterval, "roi-interval", roi.DefaultROIInterval,
		"Measurement interval of each ROI, in millions of instructions")
	runCmd.Flags().Float64Var(&initFFInterval, "init-ff-interval", roi.DefaultInitFFInterval,
		"Initial fast-forward interval, in millions of instructions")
	runCmd.Flags().IntVar(&numROIs, "num-rois", 0,
		"Stop sampling after this many ROIs (0 = unlimited)")
	runCmd.Flags().BoolVar(&continueSim, "continue-sim", false,
		"After the last ROI, keep fast-forwarding instead of ending the simulation")
	runCmd.Flags().BoolVar(&startOnWorkBegin, "start-on-workbegin", false,
		"Wait for a workbegin annotation before starting the first period")
	runCmd.Flags().BoolVar(&simpleMode, "simple", false,
		"Measure annotated regions directly instead of sampling periodically")

	runCmd.Flags().StringVar(&workloadPath, "workload", "",
		"Path to a workload spec YAML file (default: built-in workload)")
	runCmd.Flags().StringVar(&latencyPath, "latency-config", "",
		"Path to a latency configuration JSON file")
	runCmd.Flags().StringVar(&statsPath, "stats-out", "",
		"Write statistics dumps to this file instead of stdout")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info",
		"Log verbosity level")

	rootCmd.AddCommand(runCmd)
}
