package sampling

import "fmt"

// EventTime marks a point in simulated execution progress.
//
// A point is expressed along up to three independent axes: instruction
// count, cycle count, and tick count. Each axis is optional; an axis that
// is absent from a point does not constrain that axis. The zero EventTime
// constrains no axis at all.
//
// Points are partially ordered per axis only. Comparing values across
// different axes is meaningless, and an absent axis is never treated as
// zero.
type EventTime struct {
	instruction uint64
	cycle       uint64
	tick        uint64

	hasInstruction bool
	hasCycle       bool
	hasTick        bool
}

// AtInstruction returns an EventTime that constrains only the instruction
// axis.
func AtInstruction(n uint64) EventTime {
	return EventTime{instruction: n, hasInstruction: true}
}

// AtCycle returns an EventTime that constrains only the cycle axis.
func AtCycle(n uint64) EventTime {
	return EventTime{cycle: n, hasCycle: true}
}

// AtTick returns an EventTime that constrains only the tick axis.
func AtTick(n uint64) EventTime {
	return EventTime{tick: n, hasTick: true}
}

// WithInstruction returns a copy of t with the instruction axis set to n.
func (t EventTime) WithInstruction(n uint64) EventTime {
	t.instruction = n
	t.hasInstruction = true
	return t
}

// WithCycle returns a copy of t with the cycle axis set to n.
func (t EventTime) WithCycle(n uint64) EventTime {
	t.cycle = n
	t.hasCycle = true
	return t
}

// WithTick returns a copy of t with the tick axis set to n.
func (t EventTime) WithTick(n uint64) EventTime {
	t.tick = n
	t.hasTick = true
	return t
}

// Instruction returns the instruction axis value and whether it is defined.
func (t EventTime) Instruction() (uint64, bool) {
	return t.instruction, t.hasInstruction
}

// Cycle returns the cycle axis value and whether it is defined.
func (t EventTime) Cycle() (uint64, bool) {
	return t.cycle, t.hasCycle
}

// Tick returns the tick axis value and whether it is defined.
func (t EventTime) Tick() (uint64, bool) {
	return t.tick, t.hasTick
}

// Add returns the axis-wise sum of t and other. An axis is defined in the
// result only if both operands define it.
func (t EventTime) Add(other EventTime) EventTime {
	var sum EventTime

	if t.hasInstruction && other.hasInstruction {
		sum = sum.WithInstruction(t.instruction + other.instruction)
	}

	if t.hasCycle && other.hasCycle {
		sum = sum.WithCycle(t.cycle + other.cycle)
	}

	if t.hasTick && other.hasTick {
		sum = sum.WithTick(t.tick + other.tick)
	}

	return sum
}

func (t EventTime) String() string {
	return fmt.Sprintf("EventTime(instruction=%s, cycle=%s, tick=%s)",
		axisString(t.instruction, t.hasInstruction),
		axisString(t.cycle, t.hasCycle),
		axisString(t.tick, t.hasTick))
}

func axisString(v uint64, defined bool) string {
	if !defined {
		return "none"
	}
	return fmt.Sprintf("%d", v)
}
