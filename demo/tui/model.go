package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"storyreel/render"
)

// State is the demo's own lifecycle, layered over the remote job states.
type State string

const (
	StateIdle      State = "idle"
	StateStarting  State = "starting"
	StateRendering State = "rendering"
	StateComplete  State = "complete"
	StateFailed    State = "failed"
	StateError     State = "error"
)

// Model drives the render monitor: it starts one job, polls its status and
// lets the user cancel it. Quitting the monitor detaches; the render keeps
// running server-side unless 'c' was pressed.
type Model struct {
	Client  *RenderClient
	Payload []byte

	State    State
	JobID    string
	Status   *render.Status
	Logs     []string
	Err      error
	canceled bool
}

// NewModel creates an idle monitor for the given API and render payload.
func NewModel(apiURL string, payload []byte) Model {
	return Model{
		Client:  NewRenderClient(apiURL),
		Payload: payload,
		State:   StateIdle,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// AddLog appends one log line, keeping only the most recent entries.
func (m Model) AddLog(line string) Model {
	m.Logs = append(m.Logs, line)
	if len(m.Logs) > 8 {
		m.Logs = m.Logs[len(m.Logs)-8:]
	}
	return m
}

func (m Model) stateText() string {
	switch m.State {
	case StateIdle:
		return InfoStyle.Render("Idle. Press 's' to start the render.")
	case StateStarting:
		return StatusStyle.Render("⏳ Starting render...")
	case StateRendering:
		progress := 0.0
		if m.Status != nil {
			progress = m.Status.Progress
		}
		return ProgressStyle.Render(fmt.Sprintf("🎬 Rendering %s", progressBar(progress)))
	case StateComplete:
		return StatusStyle.Render("✅ Render complete")
	case StateFailed:
		msg := "render failed"
		if m.Status != nil && m.Status.Error != "" {
			msg = m.Status.Error
		}
		return ErrorStyle.Render("❌ " + msg)
	case StateError:
		return ErrorStyle.Render(fmt.Sprintf("❌ %v", m.Err))
	}
	return ""
}

// progressBar renders a 30-cell bar with a percentage.
func progressBar(fraction float64) string {
	const width = 30
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * width)
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return fmt.Sprintf("[%s] %3.0f%%", bar, fraction*100)
}
