package sampling

// Processor is the engine's active execution core or core model.
type Processor interface {
	// Name identifies the active core model, for diagnostics.
	Name() string
}

// SwitchableProcessor is a Processor that can swap between its
// fast-forward and detailed core models.
type SwitchableProcessor interface {
	Processor

	// Switch swaps the active core model.
	Switch()
}

// Engine is the set of capabilities the sampling layer requires from a
// simulation engine.
type Engine interface {
	// ScheduleMaxInsts asks the engine to raise a MaxInsts exit event
	// after n further instructions.
	ScheduleMaxInsts(n uint64)

	// SimInsts returns the live instruction count of the current
	// statistics segment. It restarts at zero on ResetStats.
	SimInsts() uint64

	// ResetStats resets the engine's statistics counters.
	ResetStats()

	// DumpStats flushes the engine's current statistics block.
	DumpStats()

	// Instantiated reports whether the engine has been constructed and
	// wired. It does not imply the engine is running.
	Instantiated() bool

	// Processor returns the engine's active processor handle.
	Processor() Processor
}
