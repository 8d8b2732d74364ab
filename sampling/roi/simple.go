package roi

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/roisim/sampling"
)

// SimpleManager measures exactly the annotated regions of the workload.
//
// On WORKBEGIN it switches to the detailed core and starts a fresh
// statistics segment; on WORKEND it dumps the segment and switches back to
// the fast-forward core. There is no interval configuration and no
// scheduled wakeup.
type SimpleManager struct {
	sampling.ManagerBase
}

// NewSimpleManager creates a SimpleManager.
func NewSimpleManager() *SimpleManager {
	return &SimpleManager{}
}

// EventHandlers declares the manager's interest in WORKBEGIN, WORKEND, and
// EXIT events.
func (m *SimpleManager) EventHandlers() map[sampling.ExitEvent]sampling.Handler {
	return map[sampling.ExitEvent]sampling.Handler{
		sampling.WorkBegin: m.handleWorkBegin,
		sampling.WorkEnd:   m.handleWorkEnd,
		sampling.Exit:      m.handleExit,
	}
}

func (m *SimpleManager) handleWorkBegin() (sampling.Verdict, error) {
	currentInsts, _ := m.CurrentTime().Instruction()

	logrus.Infof("instruction %d: entering ROI, switching to detailed processor on workbegin",
		currentInsts)

	if err := m.SwitchProcessor(); err != nil {
		return sampling.VerdictNone, err
	}

	m.ResetStats()

	return sampling.VerdictContinue, nil
}

func (m *SimpleManager) handleWorkEnd() (sampling.Verdict, error) {
	currentInsts, _ := m.CurrentTime().Instruction()

	logrus.Infof("instruction %d: exiting ROI, switching to fast-forward processor on workend",
		currentInsts)

	m.DumpStats()
	m.ResetStats()

	if err := m.SwitchProcessor(); err != nil {
		return sampling.VerdictNone, err
	}

	return sampling.VerdictContinue, nil
}

func (m *SimpleManager) handleExit() (sampling.Verdict, error) {
	currentInsts, _ := m.CurrentTime().Instruction()

	logrus.Infof("instruction %d: exiting simulation on exit", currentInsts)

	m.DumpStats()

	return sampling.VerdictStop, nil
}
