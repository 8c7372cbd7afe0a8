package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"storyreel/render"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case RenderStartedMsg:
		return m.handleRenderStarted(msg)
	case StatusUpdateMsg:
		return m.handleStatusUpdate(msg)
	case CancelSentMsg:
		return m.handleCancelSent(msg)
	case TickMsg:
		if m.State == StateRendering {
			return m, pollStatus(m.Client, m.JobID)
		}
	}
	return m, nil
}

// handleKeyPress processes keyboard input. Quitting never cancels the
// server-side render; only 'c' does.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "s", "S":
		if m.State == StateIdle {
			m.State = StateStarting
			m = m.AddLog("Starting render job...")
			return m, startRender(m.Client, m.Payload)
		}
	case "c", "C":
		if m.State == StateRendering && !m.canceled {
			m.canceled = true
			m = m.AddLog("Requesting cancellation...")
			return m, sendCancel(m.Client, m.JobID)
		}
	}
	return m, nil
}

func (m Model) handleRenderStarted(msg RenderStartedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.JobID = msg.JobID
	m.State = StateRendering
	m = m.AddLog(fmt.Sprintf("Render job started: %s", msg.JobID))
	return m, tea.Batch(pollStatus(m.Client, m.JobID), tickCmd())
}

func (m Model) handleStatusUpdate(msg StatusUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.Status = msg.Status

	switch msg.Status.State {
	case render.StateComplete:
		m.State = StateComplete
		m = m.AddLog("Render finished")
		return m, nil
	case render.StateFailed:
		m.State = StateFailed
		m = m.AddLog("Render failed")
		return m, nil
	}
	return m, tickCmd()
}

func (m Model) handleCancelSent(msg CancelSentMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.canceled = false
		m = m.AddLog(fmt.Sprintf("Cancel request failed: %v", msg.Err))
		return m, nil
	}
	m = m.AddLog("Cancel requested; waiting for the session to stop")
	return m, nil
}
