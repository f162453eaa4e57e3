package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/erpdeploy/internal/provisioning"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderSteps(&b, m)

	if len(m.Logs) > 0 {
		renderLogs(&b, m)
	}

	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	title := fmt.Sprintf("erpdeploy: %s", m.Domain)
	if m.Target != "" {
		title += fmt.Sprintf(" (%s)", m.Target)
	}
	if m.DryRun {
		title += " [plan]"
	}
	b.WriteString(titleStyle.Render(title))

	status := " "
	switch {
	case m.Err != nil:
		status += failedStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	case m.Done && m.Report != nil && m.Report.Failed() > 0:
		status += warningStyle.Render("Finished with warnings")
	case m.Done:
		status += readyStyle.Render("Finished")
	default:
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame)+" ") + dimStyle.Render("Provisioning...")
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	progress := m.Progress()
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = max(m.Width-30, 10)
	}
	filled := min(int(float64(barWidth)*progress), barWidth)

	bar := progressBarFull.Render(strings.Repeat("█", filled)) +
		progressBarEmpty.Render(strings.Repeat("░", barWidth-filled))

	fmt.Fprintf(b, "  %s %d%%  step %d/%d\n", bar, int(progress*100), m.Current, len(m.Steps))
}

func renderSteps(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Steps"))
	b.WriteString("\n")

	for _, row := range m.Steps {
		icon, style := stepIcon(row, m.SpinnerFrame)
		line := fmt.Sprintf("    %s %s", style(icon), style(row.Name))
		if row.Reason != "" && row.Status != provisioning.StatusFailed {
			line += dimStyle.Render("  " + row.Reason)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if row.Err != "" {
			fmt.Fprintf(b, "        %s\n", failedStyle.Render(row.Err))
		}
		if row.Remedy != "" {
			fmt.Fprintf(b, "        %s\n", warningStyle.Render("fix: "+row.Remedy))
		}
	}
}

func renderLogs(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Log"))
	b.WriteString("\n")
	for _, line := range m.Logs {
		fmt.Fprintf(b, "    %s\n", dimStyle.Render(line))
	}
}

func renderFooter(b *strings.Builder, m Model) {
	elapsed := formatDuration(time.Since(m.StartTime))
	b.WriteString(footerStyle.Render(fmt.Sprintf("  elapsed: %s  |  q: quit", elapsed)))
	b.WriteString("\n")
}

func stepIcon(row StepRow, frame int) (string, styleFunc) {
	switch {
	case row.Active:
		return currentSpinner(frame), sf(activeStyle)
	case row.Status == provisioning.StatusExecuted:
		return checkMark, sf(readyStyle)
	case row.Status == provisioning.StatusSkipped:
		return skipMark, sf(dimStyle)
	case row.Status == provisioning.StatusPlanned:
		return planMark, sf(warningStyle)
	case row.Status == provisioning.StatusFailed:
		return crossMark, sf(failedStyle)
	default:
		return pending, sf(dimStyle)
	}
}

func currentSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
