// Package core provides the detailed timing core model.
//
// The detailed core charges per-class execution latencies, models loads
// and stores through a data cache, and pays branch misprediction
// penalties. Its cache keeps warm state across statistics resets.
package core

import (
	"fmt"
	"io"

	"github.com/sarchlab/roisim/timing/cache"
	"github.com/sarchlab/roisim/timing/latency"
	"github.com/sarchlab/roisim/workload"
)

// Stats holds the detailed core's statistics for the current segment.
type Stats struct {
	// Instructions retired.
	Instructions uint64
	// Cycles simulated.
	Cycles uint64
	// Mispredicts is the number of mispredicted branches.
	Mispredicts uint64
}

// CPI returns cycles per instruction for the segment.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}

	return float64(s.Cycles) / float64(s.Instructions)
}

// DetailedCore is the detailed timing core model.
type DetailedCore struct {
	table  *latency.Table
	dcache *cache.Cache

	stats Stats
}

// NewDetailedCore creates a DetailedCore with the given latency table and
// data cache configuration.
func NewDetailedCore(table *latency.Table, dcacheConfig cache.Config) *DetailedCore {
	return &DetailedCore{
		table:  table,
		dcache: cache.New(dcacheConfig),
	}
}

// Name identifies the core model.
func (c *DetailedCore) Name() string {
	return "detailed"
}

// Execute simulates count instructions starting at the given position and
// returns the cycles they took.
func (c *DetailedCore) Execute(prog *workload.Program, start, count uint64) uint64 {
	stream := prog.Stream(start)

	var cycles uint64
	for i := uint64(0); i < count; i++ {
		op := stream.Next()
		opCycles := c.table.ForClass(op.Class)

		switch op.Class {
		case workload.ClassLoad:
			_, memCycles := c.dcache.Access(op.Addr, false)
			opCycles += memCycles
		case workload.ClassStore:
			_, memCycles := c.dcache.Access(op.Addr, true)
			opCycles += memCycles
		case workload.ClassBranch:
			if op.Mispredict {
				opCycles += c.table.MispredictPenalty()
				c.stats.Mispredicts++
			}
		}

		cycles += opCycles
	}

	c.stats.Instructions += count
	c.stats.Cycles += cycles

	return cycles
}

// Stats returns the segment statistics.
func (c *DetailedCore) Stats() Stats {
	return c.stats
}

// CacheStats returns the data cache's segment statistics.
func (c *DetailedCore) CacheStats() cache.Stats {
	return c.dcache.Stats()
}

// ResetStats clears the segment statistics. The cache stays warm.
func (c *DetailedCore) ResetStats() {
	c.stats = Stats{}
	c.dcache.ResetStats()
}

// ReportStats writes the core's statistics block to w.
func (c *DetailedCore) ReportStats(w io.Writer) {
	cacheStats := c.dcache.Stats()
	accesses := cacheStats.Reads + cacheStats.Writes

	hitRate := 0.0
	if accesses > 0 {
		hitRate = float64(cacheStats.Hits) / float64(accesses)
	}

	fmt.Fprintf(w, "detailed.instructions  %d\n", c.stats.Instructions)
	fmt.Fprintf(w, "detailed.cycles        %d\n", c.stats.Cycles)
	fmt.Fprintf(w, "detailed.cpi           %.3f\n", c.stats.CPI())
	fmt.Fprintf(w, "detailed.mispredicts   %d\n", c.stats.Mispredicts)
	fmt.Fprintf(w, "dcache.accesses        %d\n", accesses)
	fmt.Fprintf(w, "dcache.hits            %d\n", cacheStats.Hits)
	fmt.Fprintf(w, "dcache.misses          %d\n", cacheStats.Misses)
	fmt.Fprintf(w, "dcache.evictions       %d\n", cacheStats.Evictions)
	fmt.Fprintf(w, "dcache.hit_rate        %.3f\n", hitRate)
}
