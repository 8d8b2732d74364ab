package simulate_test

import (
	"bytes"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/roisim/sampling"
	"github.com/sarchlab/roisim/simulate"
	"github.com/sarchlab/roisim/workload"
)

// stubCore counts instructions at one cycle each and records the chunks
// it was asked to execute.
type stubCore struct {
	chunks []uint64
}

func (c *stubCore) Name() string { return "stub" }

func (c *stubCore) Execute(_ *workload.Program, _, count uint64) uint64 {
	c.chunks = append(c.chunks, count)
	return count
}

func (c *stubCore) ResetStats() {}

var _ = Describe("Simulator", func() {
	var (
		core      *stubCore
		simulator *simulate.Simulator
		statsOut  *bytes.Buffer
	)

	// 1000 instructions with an annotated region from 200 to 800.
	buildProgram := func() *workload.Program {
		spec := workload.DefaultSpec()
		spec.TotalInstructions = 1000
		spec.Regions = []workload.Region{{Begin: 200, End: 800}}

		program, err := spec.Build()
		Expect(err).ToNot(HaveOccurred())

		return program
	}

	BeforeEach(func() {
		core = &stubCore{}
		statsOut = &bytes.Buffer{}
		simulator = simulate.NewSimulator(
			buildProgram(),
			simulate.NewFixedProcessor(core),
			simulate.WithStatsWriter(statsOut),
		)
	})

	It("should refuse to run before instantiation", func() {
		err := simulator.Run()

		Expect(err).To(MatchError(sampling.ErrNotReady))
	})

	It("should run the whole workload with no handlers installed", func() {
		Expect(simulator.Instantiate()).To(Succeed())

		Expect(simulator.Run()).To(Succeed())

		Expect(simulator.Position()).To(Equal(uint64(1000)))
		// One chunk per boundary: workbegin, workend, program end.
		Expect(core.chunks).To(Equal([]uint64{200, 600, 200}))
	})

	It("should raise a MaxInsts event at the scheduled limit", func() {
		Expect(simulator.Instantiate()).To(Succeed())

		var firedAt []uint64
		simulator.RegisterHandlers(map[sampling.ExitEvent]sampling.Handler{
			sampling.MaxInsts: func() (sampling.Verdict, error) {
				firedAt = append(firedAt, simulator.Position())
				return sampling.VerdictStop, nil
			},
		})
		simulator.ScheduleMaxInsts(100)

		Expect(simulator.Run()).To(Succeed())

		Expect(firedAt).To(Equal([]uint64{100}))
		Expect(simulator.Position()).To(Equal(uint64(100)))
	})

	It("should fire a due MaxInsts limit before a coinciding marker", func() {
		Expect(simulator.Instantiate()).To(Succeed())

		var events []sampling.ExitEvent
		record := func(event sampling.ExitEvent) sampling.Handler {
			return func() (sampling.Verdict, error) {
				events = append(events, event)
				return sampling.VerdictContinue, nil
			}
		}
		simulator.RegisterHandlers(map[sampling.ExitEvent]sampling.Handler{
			sampling.MaxInsts:  record(sampling.MaxInsts),
			sampling.WorkBegin: record(sampling.WorkBegin),
		})

		// Due at instruction 200, right where the workbegin marker sits.
		simulator.ScheduleMaxInsts(200)

		Expect(simulator.Run()).To(Succeed())

		Expect(events).To(Equal([]sampling.ExitEvent{
			sampling.MaxInsts, sampling.WorkBegin,
		}))
	})

	It("should stop when a marker handler says so", func() {
		Expect(simulator.Instantiate()).To(Succeed())

		simulator.RegisterHandlers(map[sampling.ExitEvent]sampling.Handler{
			sampling.WorkBegin: func() (sampling.Verdict, error) {
				return sampling.VerdictStop, nil
			},
		})

		Expect(simulator.Run()).To(Succeed())

		Expect(simulator.Position()).To(Equal(uint64(200)))
	})

	It("should propagate handler errors", func() {
		Expect(simulator.Instantiate()).To(Succeed())

		handlerErr := errors.New("policy exploded")
		simulator.RegisterHandlers(map[sampling.ExitEvent]sampling.Handler{
			sampling.WorkBegin: func() (sampling.Verdict, error) {
				return sampling.VerdictNone, handlerErr
			},
		})

		Expect(simulator.Run()).To(MatchError(handlerErr))
	})

	It("should restart the live instruction count on a stats reset", func() {
		Expect(simulator.Instantiate()).To(Succeed())

		var atEnd uint64
		simulator.RegisterHandlers(map[sampling.ExitEvent]sampling.Handler{
			sampling.MaxInsts: func() (sampling.Verdict, error) {
				Expect(simulator.SimInsts()).To(Equal(uint64(100)))
				simulator.ResetStats()
				return sampling.VerdictContinue, nil
			},
			sampling.Exit: func() (sampling.Verdict, error) {
				atEnd = simulator.SimInsts()
				return sampling.VerdictStop, nil
			},
		})
		simulator.ScheduleMaxInsts(100)

		Expect(simulator.Run()).To(Succeed())

		Expect(atEnd).To(Equal(uint64(900)))
		Expect(simulator.Position()).To(Equal(uint64(1000)))
	})

	It("should write numbered stats blocks", func() {
		Expect(simulator.Instantiate()).To(Succeed())

		simulator.DumpStats()
		simulator.DumpStats()

		output := statsOut.String()
		Expect(output).To(ContainSubstring("begin stats dump #1"))
		Expect(output).To(ContainSubstring("begin stats dump #2"))
		Expect(output).To(ContainSubstring("sim.instructions"))
		Expect(output).To(ContainSubstring(fmt.Sprintf("sim.active_core        %s", core.Name())))
	})
})

var _ = Describe("SwitchableProcessor", func() {
	It("should start on the fast core and flip on switch", func() {
		fast := &stubCore{}
		detailed := &stubCore{}
		processor := simulate.NewSwitchableProcessor(fast, detailed)

		Expect(processor.ActiveCore()).To(BeIdenticalTo(fast))

		processor.Switch()
		Expect(processor.ActiveCore()).To(BeIdenticalTo(detailed))

		processor.Switch()
		Expect(processor.ActiveCore()).To(BeIdenticalTo(fast))
	})

	It("should expose both cores for stats resets", func() {
		fast := &stubCore{}
		detailed := &stubCore{}
		processor := simulate.NewSwitchableProcessor(fast, detailed)

		Expect(processor.Cores()).To(HaveLen(2))
	})
})
