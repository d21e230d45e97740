package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/companion/pkg/app/styles"
	"github.com/kerbaras/companion/pkg/services"
)

var stateLabels = map[services.State]string{
	services.StateIdle:     "Starting",
	services.StateOffline:  "Offline",
	services.StateChecking: "Checking manifest version",
	services.StateFetching: "Downloading manifest",
	services.StateReady:    "Ready",
	services.StateFailed:   "Failed",
}

// ProgressTracker renders the latest bootstrap status.
type ProgressTracker struct {
	status services.Status
	recent []string
	width  int
}

func NewProgressTracker(width int) *ProgressTracker {
	return &ProgressTracker{
		status: services.Status{State: services.StateIdle},
		width:  width,
	}
}

func (p *ProgressTracker) Update(status services.Status) {
	p.status = status
	if status.Table != "" {
		p.recent = append(p.recent, string(status.Table))
		if len(p.recent) > 5 {
			p.recent = p.recent[len(p.recent)-5:]
		}
	}
}

func (p *ProgressTracker) SetWidth(width int) {
	p.width = width
}

func (p *ProgressTracker) Status() services.Status {
	return p.status
}

// Done reports whether the bootstrap reached a final state.
func (p *ProgressTracker) Done() bool {
	return p.status.State == services.StateReady || p.status.State == services.StateFailed
}

func (p *ProgressTracker) View() string {
	var b strings.Builder

	state := p.status.State
	label := stateLabels[state]
	if label == "" {
		label = string(state)
	}
	b.WriteString(styles.StatusStyle(string(state)).Render(label))
	b.WriteString("\n")

	if state == services.StateFetching && p.status.Total > 0 {
		percentage := float64(p.status.Downloaded) / float64(p.status.Total) * 100
		b.WriteString(renderProgressBar(p.status.Downloaded, p.status.Total, p.width-4))
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d/%d tables - %.0f%%",
			p.status.Downloaded, p.status.Total, percentage)))
		b.WriteString("\n")

		for _, table := range p.recent {
			b.WriteString(styles.MutedStyle.Render("  ✓ " + table))
			b.WriteString("\n")
		}
	}

	if state == services.StateFailed {
		b.WriteString(styles.StatusError.Render(services.Message(p.status.Kind)))
		b.WriteString("\n")
		if p.status.Detail != "" {
			b.WriteString(styles.MutedStyle.Render(p.status.Detail))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	bar := styles.ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
	return bar
}

// SimpleProgress renders a simple progress bar
func SimpleProgress(current, total, width int) string {
	return renderProgressBar(current, total, width)
}
