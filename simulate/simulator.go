// Package simulate provides the simulation engine that executes workloads
// and raises exit events.
//
// The Simulator advances a workload on the active core of its processor,
// stopping at scheduled instruction limits, annotation markers, and the
// end of the program. At each stop it invokes the handler registered for
// the corresponding exit-event kind and honors its stop verdict.
package simulate

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/roisim/sampling"
	"github.com/sarchlab/roisim/workload"
)

// boundaryKind is what the run loop stops at next.
type boundaryKind int

const (
	boundaryMaxInsts boundaryKind = iota
	boundaryMarker
	boundaryEnd
)

// Simulator executes a workload and dispatches exit events.
type Simulator struct {
	program   *workload.Program
	processor Processor

	handlers map[sampling.ExitEvent]sampling.Handler

	// position is the absolute instruction count retired so far.
	position uint64

	// Live statistics segment, restarted on ResetStats.
	segmentInsts  uint64
	segmentCycles uint64

	// Pending "stop after N further instructions" request.
	pendingInsts uint64
	hasPending   bool

	nextMarker   int
	instantiated bool
	dumpCount    int

	statsOut io.Writer
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithStatsWriter directs statistics dumps to w instead of stdout.
func WithStatsWriter(w io.Writer) SimulatorOption {
	return func(s *Simulator) {
		s.statsOut = w
	}
}

// NewSimulator creates a Simulator for the given program and processor.
// The simulator is not ready to run until Instantiate is called.
func NewSimulator(program *workload.Program, processor Processor, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		program:   program,
		processor: processor,
		statsOut:  os.Stdout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Instantiate wires the simulator for execution.
func (s *Simulator) Instantiate() error {
	if s.program == nil {
		return fmt.Errorf("simulator has no program")
	}

	if s.processor == nil {
		return fmt.Errorf("simulator has no processor")
	}

	s.instantiated = true

	return nil
}

// RegisterHandlers installs the exit-event dispatch table the run loop
// invokes.
func (s *Simulator) RegisterHandlers(handlers map[sampling.ExitEvent]sampling.Handler) {
	s.handlers = handlers
}

// ScheduleMaxInsts asks the simulator to raise a MaxInsts exit event after
// n further instructions. A new request replaces any pending one.
func (s *Simulator) ScheduleMaxInsts(n uint64) {
	s.pendingInsts = n
	s.hasPending = true
}

// SimInsts returns the live instruction count of the current statistics
// segment.
func (s *Simulator) SimInsts() uint64 {
	return s.segmentInsts
}

// ResetStats restarts the statistics segment and clears core statistics.
// Warm microarchitectural state, such as cache contents, is preserved.
func (s *Simulator) ResetStats() {
	s.segmentInsts = 0
	s.segmentCycles = 0

	for _, core := range s.processor.Cores() {
		core.ResetStats()
	}
}

// DumpStats writes the current statistics block.
func (s *Simulator) DumpStats() {
	s.dumpCount++

	fmt.Fprintf(s.statsOut, "---------- begin stats dump #%d ----------\n", s.dumpCount)
	fmt.Fprintf(s.statsOut, "sim.instructions       %d\n", s.segmentInsts)
	fmt.Fprintf(s.statsOut, "sim.cycles             %d\n", s.segmentCycles)
	fmt.Fprintf(s.statsOut, "sim.active_core        %s\n", s.processor.Name())

	if reporter, ok := s.processor.ActiveCore().(interface{ ReportStats(io.Writer) }); ok {
		reporter.ReportStats(s.statsOut)
	}

	fmt.Fprintf(s.statsOut, "---------- end stats dump #%d ------------\n", s.dumpCount)
}

// Instantiated reports whether Instantiate has completed.
func (s *Simulator) Instantiated() bool {
	return s.instantiated
}

// Processor returns the simulator's processor handle.
func (s *Simulator) Processor() sampling.Processor {
	return s.processor
}

// Position returns the absolute instruction count retired so far.
func (s *Simulator) Position() uint64 {
	return s.position
}

// Run executes the workload to completion or until a handler requests a
// stop.
func (s *Simulator) Run() error {
	if !s.instantiated {
		return fmt.Errorf("simulator is not instantiated: %w", sampling.ErrNotReady)
	}

	for {
		boundary, kind := s.nextBoundary()

		if chunk := boundary - s.position; chunk > 0 {
			core := s.processor.ActiveCore()
			cycles := core.Execute(s.program, s.position, chunk)

			s.position += chunk
			s.segmentInsts += chunk
			s.segmentCycles += cycles

			if s.hasPending {
				s.pendingInsts -= chunk
			}
		}

		stop, err := s.fireBoundary(kind)
		if err != nil {
			return err
		}

		if stop {
			logrus.Infof("simulation stopped at instruction %d", s.position)
			return nil
		}

		if kind == boundaryEnd {
			logrus.Infof("workload finished at instruction %d", s.position)
			return nil
		}
	}
}

// nextBoundary picks the closest stopping point ahead of the current
// position. A due MaxInsts limit wins ties so the scheduled event fires
// before a coinciding marker.
func (s *Simulator) nextBoundary() (uint64, boundaryKind) {
	boundary := s.program.Total
	kind := boundaryEnd

	if s.nextMarker < len(s.program.Markers) {
		at := s.program.Markers[s.nextMarker].Instruction
		if at <= boundary {
			boundary = at
			kind = boundaryMarker
		}
	}

	if s.hasPending {
		at := s.position + s.pendingInsts
		if at <= boundary {
			boundary = at
			kind = boundaryMaxInsts
		}
	}

	return boundary, kind
}

// fireBoundary raises the exit event for the boundary just reached and
// returns whether a stop was requested.
func (s *Simulator) fireBoundary(kind boundaryKind) (bool, error) {
	switch kind {
	case boundaryMaxInsts:
		s.hasPending = false
		return s.fire(sampling.MaxInsts)

	case boundaryMarker:
		marker := s.program.Markers[s.nextMarker]
		s.nextMarker++

		event := sampling.WorkBegin
		if marker.Kind == workload.MarkerWorkEnd {
			event = sampling.WorkEnd
		}

		return s.fire(event)

	default:
		return s.fire(sampling.Exit)
	}
}

// fire invokes the registered handler for an exit-event kind. Events with
// no registered handler continue silently, except Exit, which always ends
// the run.
func (s *Simulator) fire(event sampling.ExitEvent) (bool, error) {
	handler, ok := s.handlers[event]
	if !ok {
		return event == sampling.Exit, nil
	}

	logrus.Debugf("raising exit event %s at instruction %d", event, s.position)

	verdict, err := handler()
	if err != nil {
		return false, fmt.Errorf("handling %s: %w", event, err)
	}

	return verdict == sampling.VerdictStop, nil
}
