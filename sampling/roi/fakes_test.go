package roi_test

import (
	"github.com/sarchlab/roisim/sampling"
)

// traceEngine is a scripted engine that records the order of every
// side-effecting call the sampling layer makes.
type traceEngine struct {
	simInsts uint64

	pending    uint64
	hasPending bool

	ops []string

	processor *traceProcessor
}

func newTraceEngine() *traceEngine {
	e := &traceEngine{}
	e.processor = &traceProcessor{engine: e}

	return e
}

func (e *traceEngine) ScheduleMaxInsts(n uint64) {
	e.pending = n
	e.hasPending = true
}

func (e *traceEngine) SimInsts() uint64 {
	return e.simInsts
}

func (e *traceEngine) ResetStats() {
	e.ops = append(e.ops, "reset")
	e.simInsts = 0
}

func (e *traceEngine) DumpStats() {
	e.ops = append(e.ops, "dump")
}

func (e *traceEngine) Instantiated() bool {
	return true
}

func (e *traceEngine) Processor() sampling.Processor {
	return e.processor
}

func (e *traceEngine) count(op string) int {
	n := 0
	for _, o := range e.ops {
		if o == op {
			n++
		}
	}

	return n
}

type traceProcessor struct {
	engine *traceEngine
}

func (p *traceProcessor) Name() string { return "trace" }

func (p *traceProcessor) Switch() {
	p.engine.ops = append(p.engine.ops, "switch")
}

// harness wires one manager to a coordinator and a traceEngine, and steps
// the scheduled MaxInsts events the way an engine run loop would.
type harness struct {
	engine   *traceEngine
	coord    *sampling.Coordinator
	handlers map[sampling.ExitEvent]sampling.Handler
}

func newHarness(manager sampling.Manager) (*harness, error) {
	h := &harness{
		engine: newTraceEngine(),
		coord:  sampling.NewCoordinator(manager),
	}

	h.handlers = h.coord.EventHandlers()

	if err := h.coord.Register(h.engine); err != nil {
		return nil, err
	}

	return h, nil
}

// step advances the engine to the pending instruction limit and raises the
// MaxInsts event. It reports the dispatch verdict.
func (h *harness) step() (sampling.Verdict, error) {
	if !h.engine.hasPending {
		return sampling.VerdictNone, nil
	}

	h.engine.simInsts += h.engine.pending
	h.engine.hasPending = false

	return h.handlers[sampling.MaxInsts]()
}

func (h *harness) fire(event sampling.ExitEvent) (sampling.Verdict, error) {
	return h.handlers[event]()
}
