package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🎬 StoryReel Render Monitor"))
	b.WriteString("\n\n")

	b.WriteString(m.stateText())
	b.WriteString("\n\n")

	if m.JobID != "" {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("Job: %s", m.JobID)))
		b.WriteString("\n")
	}
	if m.Status != nil && m.Status.Artifact != "" {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("Artifact: %s", m.Status.Artifact)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.Logs) > 0 {
		b.WriteString(InfoStyle.Render("📝 Recent Activity:"))
		b.WriteString("\n")
		for _, line := range m.Logs {
			b.WriteString(InfoStyle.Render("   " + line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.State == StateComplete {
		b.WriteString(BoxStyle.Render("Render complete.\nDownload: GET /api/render/" + m.JobID + "/file"))
		b.WriteString("\n\n")
	}

	switch m.State {
	case StateIdle:
		b.WriteString(InfoStyle.Render("Press 's' to start | 'q' to quit"))
	case StateRendering:
		b.WriteString(InfoStyle.Render("Press 'c' to cancel the render | 'q' to quit (render keeps running)"))
	case StateComplete:
		b.WriteString(HighlightStyle.Render("Press 'q' to exit"))
	default:
		b.WriteString(InfoStyle.Render("Press 'q' to quit"))
	}

	return b.String()
}
