// Package roi provides region-of-interest sampling policies.
//
// PeriodicManager drives a sampled fast-forward/warmup/measure cycle:
//
//	(1) Fast-forward for an initial interval.
//	(2) For each ROI:
//	    (a) Fast-forward on the cheap core.
//	    (b) Switch to the detailed core and warm up.
//	    (c) Collect statistics for the ROI interval.
//	(3) Repeat (2) until the configured number of ROIs completes.
//
// SimpleManager instead follows workload annotations directly: measure
// between WORKBEGIN and WORKEND, nothing else.
package roi

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/roisim/sampling"
)

// Default intervals, in millions of instructions.
const (
	DefaultFFInterval     = 1000.0
	DefaultWarmupInterval = 200.0
	DefaultROIInterval    = 800.0
	DefaultInitFFInterval = 0.0
)

const instsPerMillion = 1_000_000

// Phase identifies the current phase of a PeriodicManager.
type Phase int

const (
	// PhaseNoWork means the manager is idle, waiting for a WORKBEGIN
	// annotation.
	PhaseNoWork Phase = iota

	// PhaseFFInit is the initial fast-forward phase.
	PhaseFFInit

	// PhaseFFWork is the per-sample fast-forward phase.
	PhaseFFWork

	// PhaseWarmup runs the detailed core to populate caches and
	// predictors before measurement.
	PhaseWarmup

	// PhaseROI is the measurement phase.
	PhaseROI
)

func (p Phase) String() string {
	switch p {
	case PhaseNoWork:
		return "NO_WORK"
	case PhaseFFInit:
		return "FF_INIT"
	case PhaseFFWork:
		return "FF_WORK"
	case PhaseWarmup:
		return "WARMUP"
	case PhaseROI:
		return "ROI"
	default:
		return "UNKNOWN"
	}
}

// PeriodicConfig configures a PeriodicManager. All intervals are in
// millions of instructions and must be non-negative finite numbers.
type PeriodicConfig struct {
	// FFInterval is the fast-forward interval between ROIs.
	FFInterval float64

	// WarmupInterval is the warmup interval before each ROI.
	WarmupInterval float64

	// ROIInterval is the measurement interval of each ROI.
	ROIInterval float64

	// InitFFInterval is the initial fast-forward interval before the
	// first sample.
	InitFFInterval float64

	// NumROIs caps the number of ROIs to sample. Zero means unlimited.
	NumROIs int

	// ContinueSim keeps the simulation fast-forwarding after the last
	// ROI instead of ending it.
	ContinueSim bool

	// StartOnWorkBegin defers the first phase until a WORKBEGIN
	// annotation arrives.
	StartOnWorkBegin bool
}

// DefaultPeriodicConfig returns a PeriodicConfig with the default
// intervals and no ROI cap.
func DefaultPeriodicConfig() PeriodicConfig {
	return PeriodicConfig{
		FFInterval:     DefaultFFInterval,
		WarmupInterval: DefaultWarmupInterval,
		ROIInterval:    DefaultROIInterval,
		InitFFInterval: DefaultInitFFInterval,
	}
}

// PeriodicManager samples ROIs periodically by instruction count.
type PeriodicManager struct {
	sampling.ManagerBase

	ffInterval     uint64
	warmupInterval uint64
	roiInterval    uint64
	initFFInterval uint64

	numROIs          int
	continueSim      bool
	startOnWorkBegin bool

	phase         Phase
	completedROIs int
}

// NewPeriodicManager validates the configuration and creates a
// PeriodicManager in its initial phase.
func NewPeriodicManager(cfg PeriodicConfig) (*PeriodicManager, error) {
	ffInterval, err := intervalInsts("ff interval", cfg.FFInterval)
	if err != nil {
		return nil, err
	}

	warmupInterval, err := intervalInsts("warmup interval", cfg.WarmupInterval)
	if err != nil {
		return nil, err
	}

	roiInterval, err := intervalInsts("roi interval", cfg.ROIInterval)
	if err != nil {
		return nil, err
	}

	initFFInterval, err := intervalInsts("initial ff interval", cfg.InitFFInterval)
	if err != nil {
		return nil, err
	}

	if cfg.NumROIs < 0 {
		return nil, fmt.Errorf("num rois cannot be negative, was %d: %w",
			cfg.NumROIs, sampling.ErrInvalidConfig)
	}

	m := &PeriodicManager{
		ffInterval:       ffInterval,
		warmupInterval:   warmupInterval,
		roiInterval:      roiInterval,
		initFFInterval:   initFFInterval,
		numROIs:          cfg.NumROIs,
		continueSim:      cfg.ContinueSim,
		startOnWorkBegin: cfg.StartOnWorkBegin,
	}

	m.enterInitialPhase()

	logrus.Debugf("initial phase: %s", m.phase)
	logrus.Debugf("initial wakeup: %s", m.NextWakeup())

	return m, nil
}

// intervalInsts converts an interval in millions of instructions to an
// instruction count, rejecting negative and non-finite values.
func intervalInsts(name string, millions float64) (uint64, error) {
	if math.IsNaN(millions) || math.IsInf(millions, 0) {
		return 0, fmt.Errorf("%s must be a finite number, was %v: %w",
			name, millions, sampling.ErrInvalidConfig)
	}

	if millions < 0 {
		return 0, fmt.Errorf("%s cannot be negative, was %v: %w",
			name, millions, sampling.ErrInvalidConfig)
	}

	return uint64(math.Round(millions * instsPerMillion)), nil
}

func (m *PeriodicManager) enterInitialPhase() {
	switch {
	case m.startOnWorkBegin:
		// Idle until the workload announces itself.
		m.phase = PhaseNoWork
	case m.initFFInterval > 0:
		m.phase = PhaseFFInit
		m.SetNextWakeup(sampling.AtInstruction(m.initFFInterval))
	default:
		m.phase = PhaseFFWork
		m.SetNextWakeup(sampling.AtInstruction(m.ffInterval))
	}
}

// EventHandlers declares the manager's interest in MAX_INSTS, WORKBEGIN,
// WORKEND, and EXIT events.
func (m *PeriodicManager) EventHandlers() map[sampling.ExitEvent]sampling.Handler {
	return map[sampling.ExitEvent]sampling.Handler{
		sampling.MaxInsts:  m.handleMaxInsts,
		sampling.WorkBegin: m.handleWorkBegin,
		sampling.WorkEnd:   m.handleWorkEnd,
		sampling.Exit:      m.handleExit,
	}
}

// CurrentPhase returns the manager's current phase.
func (m *PeriodicManager) CurrentPhase() Phase {
	return m.phase
}

// CompletedROIs returns how many ROIs have finished measuring so far.
func (m *PeriodicManager) CompletedROIs() int {
	return m.completedROIs
}

// handleMaxInsts advances the phase machine when a scheduled instruction
// limit is reached.
func (m *PeriodicManager) handleMaxInsts() (sampling.Verdict, error) {
	currentInsts, _ := m.CurrentTime().Instruction()

	switch m.phase {
	case PhaseROI:
		// Stats dumped before the core switch, so the dumped block
		// reflects the just-finished ROI rather than the next
		// fast-forward segment.
		m.DumpStats()
		m.completedROIs++

		if m.numROIs > 0 && m.completedROIs >= m.numROIs {
			if !m.continueSim {
				logrus.Infof("instruction %d: completed all ROIs, ending simulation",
					currentInsts)

				// Clear the unwanted trailing stats block.
				m.ResetStats()

				return sampling.VerdictStop, nil
			}

			logrus.Infof("instruction %d: completed all ROIs, fast-forwarding until completion",
				currentInsts)
			m.ClearNextWakeup()
		} else {
			logrus.Infof("instruction %d: entering ROI #%d fast-forward phase, switching to fast-forward processor",
				currentInsts, m.completedROIs+1)
			m.SetNextWakeup(sampling.AtInstruction(m.ffInterval))
		}

		if err := m.SwitchProcessor(); err != nil {
			return sampling.VerdictNone, err
		}

		m.phase = PhaseFFWork

	case PhaseWarmup:
		logrus.Infof("instruction %d: entering ROI #%d measurement phase",
			currentInsts, m.completedROIs+1)

		m.ResetStats()

		m.phase = PhaseROI
		m.SetNextWakeup(sampling.AtInstruction(m.roiInterval))

	case PhaseFFWork:
		logrus.Infof("instruction %d: entering ROI #%d warmup phase, switching to detailed processor",
			currentInsts, m.completedROIs+1)

		if err := m.SwitchProcessor(); err != nil {
			return sampling.VerdictNone, err
		}

		m.phase = PhaseWarmup
		m.SetNextWakeup(sampling.AtInstruction(m.warmupInterval))

	case PhaseFFInit:
		logrus.Infof("instruction %d: entering ROI #%d fast-forward phase",
			currentInsts, m.completedROIs+1)

		m.phase = PhaseFFWork
		m.SetNextWakeup(sampling.AtInstruction(m.ffInterval))

	default:
		// A WORKEND in the middle of a sample interval can leave one
		// stale scheduled wakeup behind. Idle tick.
		m.ClearNextWakeup()
	}

	return sampling.VerdictContinue, nil
}

// handleWorkBegin starts (or restarts) sampling when the workload
// announces the representative region of execution.
func (m *PeriodicManager) handleWorkBegin() (sampling.Verdict, error) {
	currentInsts, _ := m.CurrentTime().Instruction()

	if m.initFFInterval > 0 {
		logrus.Infof("instruction %d: entering initial fast-forward phase on workbegin",
			currentInsts)

		m.phase = PhaseFFInit
		m.SetNextWakeup(sampling.AtInstruction(m.initFFInterval))
	} else {
		logrus.Infof("instruction %d: entering fast-forward phase for ROI #%d on workbegin",
			currentInsts, m.completedROIs+1)

		m.phase = PhaseFFWork
		m.SetNextWakeup(sampling.AtInstruction(m.ffInterval))
	}

	return sampling.VerdictContinue, nil
}

// handleWorkEnd suspends sampling until the next WORKBEGIN. A ROI cut
// short still gets its statistics dumped and counts as completed.
func (m *PeriodicManager) handleWorkEnd() (sampling.Verdict, error) {
	currentInsts, _ := m.CurrentTime().Instruction()

	logrus.Infof("instruction %d: stopping ROIs on workend", currentInsts)

	if m.phase == PhaseROI {
		m.DumpStats()
		m.completedROIs++
	}

	// Clear the unwanted trailing stats block.
	m.ResetStats()

	m.phase = PhaseNoWork
	m.ClearNextWakeup()

	return sampling.VerdictContinue, nil
}

// handleExit ends the simulation. A ROI cut short still gets its
// statistics dumped and counts as completed.
func (m *PeriodicManager) handleExit() (sampling.Verdict, error) {
	currentInsts, _ := m.CurrentTime().Instruction()

	logrus.Infof("instruction %d: ending simulation on exit", currentInsts)

	if m.phase == PhaseROI {
		m.DumpStats()
		m.completedROIs++
	}

	// Clear the unwanted trailing stats block.
	m.ResetStats()

	return sampling.VerdictStop, nil
}
