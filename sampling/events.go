// Package sampling coordinates region-of-interest sampling policies for a
// simulation engine.
//
// A Coordinator owns a set of Managers, merges their desired wakeup times
// into a single schedule request, dispatches the engine's exit events to
// every interested manager, and aggregates their stop/continue verdicts.
// Concrete sampling policies live in the sampling/roi package.
package sampling

// ExitEvent identifies a kind of exit event reported by the simulation
// engine.
type ExitEvent int

const (
	// Checkpoint is raised when the engine takes a checkpoint.
	Checkpoint ExitEvent = iota

	// MaxInsts is raised when a scheduled instruction-count limit is
	// reached.
	MaxInsts

	// SimpointBegin is raised at the beginning of a SimPoint region.
	SimpointBegin

	// WorkBegin is raised by a workload annotation marking the start of
	// the representative region of execution.
	WorkBegin

	// WorkEnd is raised by a workload annotation marking the end of the
	// representative region of execution.
	WorkEnd

	// Exit is raised when the workload terminates.
	Exit
)

func (e ExitEvent) String() string {
	switch e {
	case Checkpoint:
		return "CHECKPOINT"
	case MaxInsts:
		return "MAX_INSTS"
	case SimpointBegin:
		return "SIMPOINT_BEGIN"
	case WorkBegin:
		return "WORKBEGIN"
	case WorkEnd:
		return "WORKEND"
	case Exit:
		return "EXIT"
	default:
		return "UNKNOWN"
	}
}

// Verdict is a handler's decision about whether the simulation should stop.
type Verdict int

const (
	// VerdictNone means the handler produced no decision. During
	// unscheduled dispatch a declared-but-non-responding handler counts
	// as requesting a stop; this defaulting is part of the dispatch
	// contract.
	VerdictNone Verdict = iota

	// VerdictContinue requests that the simulation keep running.
	VerdictContinue

	// VerdictStop requests that the simulation stop.
	VerdictStop
)

// Handler is a resumable step function invoked once per matching exit
// event. The state it advances lives in the manager that produced it, so
// repeated invocations move that manager through its phases.
type Handler func() (Verdict, error)
