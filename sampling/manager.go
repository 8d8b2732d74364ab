package sampling

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Manager is a pluggable sampling policy. It declares interest in specific
// exit-event kinds, tracks its own next desired wakeup, and reacts to
// event dispatch by advancing its internal phase.
//
// Managers are constructed once at simulation setup with fully-resolved
// configuration and live for the entire run.
type Manager interface {
	// EventHandlers returns the exit-event kinds this manager reacts to
	// and the handler for each. The table is collected once, when the
	// coordinator registers the manager.
	EventHandlers() map[ExitEvent]Handler

	// NextWakeup returns the manager's current scheduling request.
	NextWakeup() EventTime

	// SetNextWakeup replaces the manager's scheduling request.
	SetNextWakeup(t EventTime)

	// ClearNextWakeup removes the manager's scheduling request.
	ClearNextWakeup()

	// Register stores a back-reference to the coordinator the manager is
	// registered with. The reference is non-owning: the coordinator
	// outlives every manager's use of it within a run.
	Register(c *Coordinator)
}

// ManagerBase provides the shared plumbing of a Manager: wakeup storage,
// the coordinator back-reference, and delegation of statistics and
// processor operations. Concrete policies embed it and implement
// EventHandlers.
type ManagerBase struct {
	coordinator *Coordinator
	nextWakeup  EventTime
}

// SetNextWakeup replaces the manager's scheduling request.
func (b *ManagerBase) SetNextWakeup(t EventTime) {
	b.nextWakeup = t
}

// ClearNextWakeup removes the manager's scheduling request.
func (b *ManagerBase) ClearNextWakeup() {
	b.nextWakeup = EventTime{}
}

// NextWakeup returns the manager's current scheduling request.
func (b *ManagerBase) NextWakeup() EventTime {
	return b.nextWakeup
}

// Register stores the non-owning coordinator back-reference.
func (b *ManagerBase) Register(c *Coordinator) {
	b.coordinator = c
}

// CurrentTime returns the coordinator's current time, or the all-zero
// point if the manager is not registered.
func (b *ManagerBase) CurrentTime() EventTime {
	if b.coordinator == nil {
		return AtInstruction(0).WithCycle(0).WithTick(0)
	}

	return b.coordinator.CurrentTime()
}

// ResetStats resets the engine's statistics through the coordinator. It is
// a no-op with a diagnostic if the manager is not registered.
func (b *ManagerBase) ResetStats() {
	if b.coordinator == nil {
		logrus.Debug("can't reset stats, no coordinator")
		return
	}

	b.coordinator.ResetStats()
}

// DumpStats dumps the engine's statistics through the coordinator. It is a
// no-op with a diagnostic if the manager is not registered.
func (b *ManagerBase) DumpStats() {
	if b.coordinator == nil {
		logrus.Debug("can't dump stats, no coordinator")
		return
	}

	b.coordinator.DumpStats()
}

// SwitchProcessor asks the engine to swap the active core model. It fails
// with ErrNotReady if the manager is not registered with a coordinator.
func (b *ManagerBase) SwitchProcessor() error {
	if b.coordinator == nil {
		return fmt.Errorf("manager is not registered with a coordinator: %w", ErrNotReady)
	}

	return b.coordinator.SwitchProcessor()
}
