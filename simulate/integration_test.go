package simulate_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/roisim/emu"
	"github.com/sarchlab/roisim/sampling"
	"github.com/sarchlab/roisim/sampling/roi"
	"github.com/sarchlab/roisim/simulate"
	"github.com/sarchlab/roisim/timing/cache"
	"github.com/sarchlab/roisim/timing/core"
	"github.com/sarchlab/roisim/timing/latency"
	"github.com/sarchlab/roisim/workload"
)

// The full stack end to end: a periodic sampling policy driving core
// switches and stats segments over a synthetic workload.
var _ = Describe("Sampled simulation", func() {
	var statsOut *bytes.Buffer

	// 10k instructions with the annotated region from 1000 to 9000.
	buildProgram := func() *workload.Program {
		spec := workload.DefaultSpec()
		spec.TotalInstructions = 10_000
		spec.Regions = []workload.Region{{Begin: 1000, End: 9000}}

		program, err := spec.Build()
		Expect(err).ToNot(HaveOccurred())

		return program
	}

	buildSimulator := func(program *workload.Program) *simulate.Simulator {
		processor := simulate.NewSwitchableProcessor(
			emu.NewFastCore(),
			core.NewDetailedCore(latency.NewTable(nil), cache.DefaultL1DConfig()),
		)

		return simulate.NewSimulator(program, processor,
			simulate.WithStatsWriter(statsOut))
	}

	// Intervals in millions of instructions: 2000 insts fast-forward,
	// 1000 warmup, 1000 measurement.
	periodicConfig := func() roi.PeriodicConfig {
		return roi.PeriodicConfig{
			FFInterval:       0.002,
			WarmupInterval:   0.001,
			ROIInterval:      0.001,
			NumROIs:          2,
			StartOnWorkBegin: true,
		}
	}

	run := func(manager sampling.Manager, simulator *simulate.Simulator) error {
		coordinator := sampling.NewCoordinator(manager)

		Expect(simulator.Instantiate()).To(Succeed())
		simulator.RegisterHandlers(coordinator.EventHandlers())
		Expect(coordinator.Register(simulator)).To(Succeed())

		return simulator.Run()
	}

	BeforeEach(func() {
		statsOut = &bytes.Buffer{}
	})

	It("should sample the configured ROIs and keep going", func() {
		config := periodicConfig()
		config.ContinueSim = true

		manager, err := roi.NewPeriodicManager(config)
		Expect(err).ToNot(HaveOccurred())

		simulator := buildSimulator(buildProgram())
		Expect(run(manager, simulator)).To(Succeed())

		// Workbegin at 1000, then 2000 ff + 1000 warmup + 1000 roi per
		// sample: ROIs end at 5000 and 9000, and the run continues to the
		// end of the program.
		Expect(manager.CompletedROIs()).To(Equal(2))
		Expect(manager.CurrentPhase()).To(Equal(roi.PhaseNoWork))
		Expect(simulator.Position()).To(Equal(uint64(10_000)))

		output := statsOut.String()
		Expect(output).To(ContainSubstring("begin stats dump #2"))
		Expect(output).ToNot(ContainSubstring("begin stats dump #3"))
		// Measurement happens on the detailed core.
		Expect(output).To(ContainSubstring("sim.active_core        detailed"))
	})

	It("should end the simulation after the last ROI", func() {
		manager, err := roi.NewPeriodicManager(periodicConfig())
		Expect(err).ToNot(HaveOccurred())

		simulator := buildSimulator(buildProgram())
		Expect(run(manager, simulator)).To(Succeed())

		Expect(manager.CompletedROIs()).To(Equal(2))
		Expect(simulator.Position()).To(Equal(uint64(9000)))
	})

	It("should measure exactly the annotated region with the simple policy", func() {
		simulator := buildSimulator(buildProgram())
		Expect(run(roi.NewSimpleManager(), simulator)).To(Succeed())

		Expect(simulator.Position()).To(Equal(uint64(10_000)))

		// One dump closing the region, one on exit.
		output := statsOut.String()
		Expect(output).To(ContainSubstring("begin stats dump #1"))
		Expect(output).To(ContainSubstring("begin stats dump #2"))
		// The region runs on the detailed core and the dump lands before
		// the switch back.
		Expect(output).To(ContainSubstring("sim.active_core        detailed"))
	})

	It("should fail to register a sampling policy over a fixed processor", func() {
		program := buildProgram()
		simulator := simulate.NewSimulator(program,
			simulate.NewFixedProcessor(emu.NewFastCore()),
			simulate.WithStatsWriter(statsOut))

		manager, err := roi.NewPeriodicManager(periodicConfig())
		Expect(err).ToNot(HaveOccurred())

		Expect(run(manager, simulator)).To(MatchError(sampling.ErrNotSwitchable))
	})
})
