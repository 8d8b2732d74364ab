// Package latency provides per-class instruction latencies for the
// detailed core.
package latency

import (
	"github.com/sarchlab/roisim/workload"
)

// Table maps instruction classes to execution latencies in cycles.
type Table struct {
	config *Config
}

// NewTable creates a Table from a configuration. A nil configuration uses
// the defaults.
func NewTable(config *Config) *Table {
	if config == nil {
		config = DefaultConfig()
	}

	return &Table{config: config}
}

// ForClass returns the base execution latency of an instruction class.
// Memory latencies for loads and stores are charged separately by the
// cache model; the values here cover the execution stage only.
func (t *Table) ForClass(class workload.Class) uint64 {
	switch class {
	case workload.ClassLoad:
		return t.config.LoadLatency
	case workload.ClassStore:
		return t.config.StoreLatency
	case workload.ClassBranch:
		return t.config.BranchLatency
	default:
		return t.config.ALULatency
	}
}

// MispredictPenalty returns the additional cycles lost on a branch
// misprediction.
func (t *Table) MispredictPenalty() uint64 {
	return t.config.BranchMispredictPenalty
}
