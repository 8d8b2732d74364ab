// Package emu provides the functional fast-forward core.
//
// The fast core advances through the workload without timing detail: no
// cache modeling, no branch prediction, a nominal one cycle per
// instruction. It exists to move execution cheaply between measured
// regions.
package emu

import (
	"github.com/sarchlab/roisim/workload"
)

// FastCore is the functional fast-forward core model.
type FastCore struct {
	instructions uint64
}

// NewFastCore creates a FastCore.
func NewFastCore() *FastCore {
	return &FastCore{}
}

// Name identifies the core model.
func (c *FastCore) Name() string {
	return "fast"
}

// Execute advances count instructions starting at the given position and
// returns the nominal cycle count.
func (c *FastCore) Execute(prog *workload.Program, start, count uint64) uint64 {
	c.instructions += count

	// Nominal IPC of 1; the fast core does not model time.
	return count
}

// Instructions returns the number of instructions executed since the last
// statistics reset.
func (c *FastCore) Instructions() uint64 {
	return c.instructions
}

// ResetStats clears the core's statistics counters.
func (c *FastCore) ResetStats() {
	c.instructions = 0
}
