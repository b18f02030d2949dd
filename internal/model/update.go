package model

import (
	reader "memwatch/internal/memory"

	tea "github.com/charmbracelet/bubbletea"
)

// Init starts both reader tasks once the program loop is running
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		m.ctl.Start()
		m.ctl.StartAdditional()
		return nil
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case UsageMsg:
		m.Usage = reader.MemorySnapshot(msg)
	case RatioMsg:
		m.Ratio = float64(msg)
	case ProcessesMsg:
		m.Processes = msg
	}
	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.ctl.Stop()
		m.ctl.StopAdditional()
		return m, tea.Quit
	case "s":
		m.Message = m.handleToggleSampling()
	case "p":
		m.Message = m.handleToggleListing()
	case "+", "=":
		m.Message = m.handleIntervalChange(1)
	case "-", "_":
		m.Message = m.handleIntervalChange(-1)
	}
	return m, nil
}

func bound(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
