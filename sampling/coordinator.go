package sampling

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Coordinator reconciles multiple sampling policies into a single wakeup
// schedule for one simulation engine.
//
// It registers each manager, collects their handler tables, merges their
// desired wakeups into one schedule request, dispatches each incoming exit
// event to every interested manager in registration order, and maintains
// cumulative progress counters that survive engine statistics resets.
//
// A Coordinator is bound to exactly one engine for its lifetime; it is not
// reusable across engine instances. Dispatch is single-threaded: the
// engine calls in synchronously from its own run loop, and a handler never
// triggers another dispatch cycle while it is running.
type Coordinator struct {
	managers []Manager
	handlers []map[ExitEvent]Handler

	engine Engine

	// Cumulative counts across statistics resets, so current time stays
	// continuous even though the engine's live counter restarts at each
	// reset.
	totalInstructions uint64
	totalCycles       uint64
}

// NewCoordinator creates a Coordinator over the given managers. Dispatch
// order follows the order given here.
func NewCoordinator(managers ...Manager) *Coordinator {
	return &Coordinator{
		managers: managers,
	}
}

// Register binds the coordinator to its engine, registers every manager,
// collects their handler tables, and performs the first schedule merge.
func (c *Coordinator) Register(engine Engine) error {
	if c.engine != nil {
		return fmt.Errorf("coordinator is already registered with an engine: %w", ErrNotReady)
	}

	logrus.Debug("registering engine with coordinator")
	c.engine = engine

	for _, m := range c.managers {
		m.Register(c)
		c.handlers = append(c.handlers, m.EventHandlers())
	}

	return c.schedule()
}

// EventHandlers returns the dispatch table the engine invokes, one handler
// per exit-event kind the sampling layer consumes.
func (c *Coordinator) EventHandlers() map[ExitEvent]Handler {
	return map[ExitEvent]Handler{
		Checkpoint:    c.unscheduledHandler(Checkpoint),
		MaxInsts:      c.maxInstsHandler(),
		SimpointBegin: c.unscheduledHandler(SimpointBegin),
		WorkBegin:     c.unscheduledHandler(WorkBegin),
		WorkEnd:       c.unscheduledHandler(WorkEnd),
		Exit:          c.unscheduledHandler(Exit),
	}
}

// CurrentTime returns the current point in execution progress. If the
// engine is unset or not yet instantiated it returns the all-zero point.
//
// Cycle and tick progress are not yet tracked through the engine; the
// cycle axis carries only the cumulative count and the tick axis is
// always zero.
func (c *Coordinator) CurrentTime() EventTime {
	if c.engine == nil || !c.engine.Instantiated() {
		return AtInstruction(0).WithCycle(0).WithTick(0)
	}

	return AtInstruction(c.totalInstructions + c.engine.SimInsts()).
		WithCycle(c.totalCycles).
		WithTick(0)
}

// TotalInstructions returns the cumulative instruction count across all
// statistics resets so far. It does not include the live count of the
// current segment.
func (c *Coordinator) TotalInstructions() uint64 {
	return c.totalInstructions
}

// ResetStats folds the engine's live instruction count into the
// cumulative counter, then resets the engine's statistics so the live
// counter restarts at zero. It is a no-op with a diagnostic if no engine
// is registered.
func (c *Coordinator) ResetStats() {
	if c.engine == nil {
		logrus.Debug("can't reset stats, no engine")
		return
	}

	segment := c.engine.SimInsts()
	c.totalInstructions += segment
	// Cycle accumulation is not yet wired through the engine.

	logrus.Debugf("segment instructions: %d", segment)
	logrus.Debugf("total instructions: %d", c.totalInstructions)

	c.engine.ResetStats()
}

// DumpStats asks the engine to flush its current statistics block. It is a
// no-op with a diagnostic if no engine is registered.
func (c *Coordinator) DumpStats() {
	if c.engine == nil {
		logrus.Debug("can't dump stats, no engine")
		return
	}

	logrus.Debug("dumping stats")
	c.engine.DumpStats()
}

// SwitchProcessor asks the engine to swap its active core model. It fails
// with ErrNotReady if no engine is registered or the engine has not been
// instantiated, and with ErrNotSwitchable if the active processor has no
// switch capability.
func (c *Coordinator) SwitchProcessor() error {
	if c.engine == nil {
		return fmt.Errorf("coordinator has no engine: %w", ErrNotReady)
	}

	if !c.engine.Instantiated() {
		return fmt.Errorf("engine is not instantiated: %w", ErrNotReady)
	}

	processor := c.engine.Processor()
	if processor == nil {
		return fmt.Errorf("engine has no processor: %w", ErrNotReady)
	}

	switchable, ok := processor.(SwitchableProcessor)
	if !ok {
		return fmt.Errorf("processor %q has no switch capability: %w",
			processor.Name(), ErrNotSwitchable)
	}

	switchable.Switch()

	return nil
}

// schedule merges all managers' wakeups and forwards the result to the
// engine. For each axis independently the merge takes the minimum defined
// value across managers; axes no manager defines stay undefined. Only the
// instruction axis is actionable; a defined cycle or tick axis is fatal.
func (c *Coordinator) schedule() error {
	currentTime := c.CurrentTime()
	closest := EventTime{}

	for _, m := range c.managers {
		next := m.NextWakeup()

		if n, ok := next.Instruction(); ok {
			if cur, defined := closest.Instruction(); !defined || cur > n {
				closest = closest.WithInstruction(n)
			}
		}

		if n, ok := next.Cycle(); ok {
			if cur, defined := closest.Cycle(); !defined || cur > n {
				closest = closest.WithCycle(n)
			}
		}

		if n, ok := next.Tick(); ok {
			if cur, defined := closest.Tick(); !defined || cur > n {
				closest = closest.WithTick(n)
			}
		}
	}

	logrus.Debugf("current time: %s", currentTime)
	logrus.Debugf("next event time: %s", closest)

	if insts, ok := closest.Instruction(); ok {
		if _, defined := currentTime.Instruction(); defined && c.engine != nil {
			c.engine.ScheduleMaxInsts(insts)
		}
	}

	if _, ok := closest.Cycle(); ok {
		return fmt.Errorf("cycle-based wakeup requested: %w", ErrUnimplementedAxis)
	}

	if _, ok := closest.Tick(); ok {
		return fmt.Errorf("tick-based wakeup requested: %w", ErrUnimplementedAxis)
	}

	return nil
}

// maxInstsHandler returns the dispatch handler for MaxInsts events. Per
// invocation it runs the MaxInsts handler of every manager whose wakeup is
// due, ORs the stop verdicts, re-merges the schedule, and returns the
// aggregate.
func (c *Coordinator) maxInstsHandler() Handler {
	return func() (Verdict, error) {
		currentTime := c.CurrentTime()
		currentInsts, haveInsts := currentTime.Instruction()
		stop := false

		logrus.Debugf("current time: %s", currentTime)

		for i, m := range c.managers {
			handler, interested := c.handlers[i][MaxInsts]
			if !interested {
				continue
			}

			due, defined := m.NextWakeup().Instruction()
			if !defined || !haveInsts || due > currentInsts {
				continue
			}

			verdict, err := handler()
			if err != nil {
				return VerdictNone, fmt.Errorf("dispatching %s: %w", MaxInsts, err)
			}

			stop = stop || verdict == VerdictStop
		}

		if err := c.schedule(); err != nil {
			return VerdictNone, err
		}

		return c.aggregate(stop), nil
	}
}

// unscheduledHandler returns the dispatch handler for event kinds that
// arrive directly from the engine rather than through the schedule
// (WORKBEGIN, WORKEND, EXIT, CHECKPOINT, SIMPOINT_BEGIN). Every interested
// manager is invoked unconditionally, and a handler that produces no
// verdict counts as requesting a stop.
func (c *Coordinator) unscheduledHandler(event ExitEvent) Handler {
	return func() (Verdict, error) {
		stop := false

		logrus.Debugf("received event %s", event)

		for i := range c.managers {
			handler, interested := c.handlers[i][event]
			if !interested {
				continue
			}

			verdict, err := handler()
			if err != nil {
				return VerdictNone, fmt.Errorf("dispatching %s: %w", event, err)
			}

			stop = stop || verdict != VerdictContinue
		}

		if err := c.schedule(); err != nil {
			return VerdictNone, err
		}

		return c.aggregate(stop), nil
	}
}

func (c *Coordinator) aggregate(stop bool) Verdict {
	if stop {
		logrus.Debug("ending simulation")
		return VerdictStop
	}

	logrus.Debug("continuing simulation")

	return VerdictContinue
}
