package model

import (
	"fmt"
	"time"

	"memwatch/internal/scheduler"
)

func (m *Model) handleToggleSampling() string {
	if m.ctl.UsageState() == scheduler.Running {
		m.ctl.Stop()
		return "Memory sampling paused"
	}
	m.ctl.Start()
	return "Memory sampling resumed"
}

func (m *Model) handleToggleListing() string {
	if m.ctl.ListingState() == scheduler.Running {
		m.ctl.StopAdditional()
		return "Process listing paused"
	}
	m.ctl.StartAdditional()
	return "Process listing resumed"
}

func (m *Model) handleIntervalChange(delta int) string {
	current := int(m.ctl.Interval() / time.Second)
	next := bound(current+delta, minIntervalSeconds, maxIntervalSeconds)
	if next == current {
		return fmt.Sprintf("Update interval stays at %ds", current)
	}

	m.ctl.SetInterval(next)
	return fmt.Sprintf("Update interval set to %ds", next)
}
