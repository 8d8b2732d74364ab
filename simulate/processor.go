package simulate

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/roisim/workload"
)

// Core is one execution core model the simulator can run the workload on.
type Core interface {
	// Name identifies the core model.
	Name() string

	// Execute advances count instructions starting at the given absolute
	// position and returns the cycles simulated.
	Execute(prog *workload.Program, start, count uint64) uint64

	// ResetStats clears the core's segment statistics.
	ResetStats()
}

// Processor is the simulator's active-core selection.
type Processor interface {
	// Name identifies the active core model.
	Name() string

	// ActiveCore returns the core the simulator should execute on.
	ActiveCore() Core

	// Cores returns every core the processor holds.
	Cores() []Core
}

// SwitchableProcessor pairs a fast-forward core with a detailed core and
// swaps between them on demand. The fast core starts active.
type SwitchableProcessor struct {
	fast     Core
	detailed Core

	detailedActive bool
}

// NewSwitchableProcessor creates a SwitchableProcessor with the fast core
// active.
func NewSwitchableProcessor(fast, detailed Core) *SwitchableProcessor {
	return &SwitchableProcessor{
		fast:     fast,
		detailed: detailed,
	}
}

// Name returns the active core's name.
func (p *SwitchableProcessor) Name() string {
	return p.ActiveCore().Name()
}

// Switch swaps the active core.
func (p *SwitchableProcessor) Switch() {
	p.detailedActive = !p.detailedActive
	logrus.Debugf("switched active core to %s", p.ActiveCore().Name())
}

// ActiveCore returns the currently active core.
func (p *SwitchableProcessor) ActiveCore() Core {
	if p.detailedActive {
		return p.detailed
	}

	return p.fast
}

// Cores returns the fast and detailed cores.
func (p *SwitchableProcessor) Cores() []Core {
	return []Core{p.fast, p.detailed}
}

// FixedProcessor runs a single core with no switch capability. Sampling
// policies that request a processor switch against it fail with
// ErrNotSwitchable.
type FixedProcessor struct {
	core Core
}

// NewFixedProcessor creates a FixedProcessor.
func NewFixedProcessor(core Core) *FixedProcessor {
	return &FixedProcessor{core: core}
}

// Name returns the core's name.
func (p *FixedProcessor) Name() string {
	return p.core.Name()
}

// ActiveCore returns the core.
func (p *FixedProcessor) ActiveCore() Core {
	return p.core
}

// Cores returns the single core.
func (p *FixedProcessor) Cores() []Core {
	return []Core{p.core}
}
