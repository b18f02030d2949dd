package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	reader "memwatch/internal/memory"
	"memwatch/internal/ranking"
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Memory"))
	b.WriteRune('\n')
	b.WriteString(renderUsage(m.Usage))
	b.WriteString(renderBar(m.Ratio))
	b.WriteString("\n\n")
	b.WriteString(renderProcesses(m.Processes))

	b.WriteString(statusStyle.Render(fmt.Sprintf("\nsampling: %s   processes: %s   interval: %ds",
		m.ctl.UsageState(),
		m.ctl.ListingState(),
		int(m.ctl.Interval()/time.Second))))
	b.WriteRune('\n')

	if m.Message != "" {
		b.WriteString(messageStyle.Render(m.Message))
		b.WriteRune('\n')
	}

	b.WriteString("\n(s to toggle sampling, p to toggle processes, +/- to change interval, q to quit)\n")

	return b.String()
}

func renderUsage(snapshot reader.MemorySnapshot) string {
	var b strings.Builder
	for _, row := range []struct {
		label string
		bytes float64
	}{
		{"Total", snapshot.Total},
		{"Used", snapshot.Used},
		{"Free", snapshot.Free},
	} {
		b.WriteString(labelStyle.Render(row.label))
		b.WriteString(valueStyle.Render(reader.FormatBytes(row.bytes)))
		b.WriteRune('\n')
	}
	return b.String()
}

func renderBar(ratio float64) string {
	ratio = math.Max(0, math.Min(1, ratio))
	filled := int(math.Round(ratio * barWidth))

	style := barLowStyle
	switch {
	case ratio >= 0.85:
		style = barHighStyle
	case ratio >= 0.6:
		style = barMediumStyle
	}

	return style.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled)) +
		fmt.Sprintf(" %5.1f%%", ratio*100)
}

func renderProcesses(processes []ranking.ProcessUsage) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(
		pidStyle.Render("PID") +
			commandStyle.Render("COMMAND") +
			memoryStyle.Render("MEMORY"),
	))
	b.WriteRune('\n')

	if len(processes) == 0 {
		b.WriteString(rowStyle.Render("  no processes listed"))
		b.WriteRune('\n')
		return b.String()
	}

	for _, p := range processes {
		b.WriteString(rowStyle.Render(
			pidStyle.Render(strconv.Itoa(p.PID)) +
				commandStyle.Render(p.Command) +
				memoryStyle.Render(reader.FormatBytes(p.MemoryBytes)),
		))
		b.WriteRune('\n')
	}
	return b.String()
}
