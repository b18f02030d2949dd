package model

import (
	"time"

	reader "memwatch/internal/memory"
	"memwatch/internal/observable"
	"memwatch/internal/ranking"
	"memwatch/internal/scheduler"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	minIntervalSeconds = 1
	maxIntervalSeconds = 60
)

// Controller is the part of the memory reader the UI drives
type Controller interface {
	Start()
	Stop()
	StartAdditional()
	StopAdditional()
	SetInterval(seconds int)
	Interval() time.Duration
	UsageState() scheduler.State
	ListingState() scheduler.State
}

// Views are the reader outputs the UI renders
type Views interface {
	Usage() observable.View[reader.MemorySnapshot]
	TopProcesses() observable.View[[]ranking.ProcessUsage]
	UtilizationRatio() observable.View[float64]
}

// UsageMsg carries a published snapshot into the program
type UsageMsg reader.MemorySnapshot

// RatioMsg carries a published utilization ratio
type RatioMsg float64

// ProcessesMsg carries a published listing
type ProcessesMsg []ranking.ProcessUsage

type Model struct {
	Usage     reader.MemorySnapshot
	Ratio     float64
	Processes []ranking.ProcessUsage
	Message   string

	ctl Controller
}

func NewModel(ctl Controller) tea.Model {
	return &Model{
		Processes: []ranking.ProcessUsage{},
		ctl:       ctl,
	}
}

// Subscribe forwards every publish of views to send, usually
// (*tea.Program).Send, so values reach the model on the program loop.
func Subscribe(views Views, send func(tea.Msg)) (unsubscribe func()) {
	unsubscribers := []func(){
		views.Usage().Subscribe(func(snapshot reader.MemorySnapshot) {
			send(UsageMsg(snapshot))
		}),
		views.UtilizationRatio().Subscribe(func(ratio float64) {
			send(RatioMsg(ratio))
		}),
		views.TopProcesses().Subscribe(func(processes []ranking.ProcessUsage) {
			send(ProcessesMsg(processes))
		}),
	}

	return func() {
		for _, u := range unsubscribers {
			u()
		}
	}
}
