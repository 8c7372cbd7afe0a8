package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// startRender creates a command that posts the render payload.
func startRender(client *RenderClient, payload []byte) tea.Cmd {
	return func() tea.Msg {
		jobID, err := client.StartRender(payload)
		return RenderStartedMsg{JobID: jobID, Err: err}
	}
}

// pollStatus creates a command that fetches the job status once.
func pollStatus(client *RenderClient, jobID string) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus(jobID)
		return StatusUpdateMsg{Status: status, Err: err}
	}
}

// sendCancel creates a command that requests cancellation.
func sendCancel(client *RenderClient, jobID string) tea.Cmd {
	return func() tea.Msg {
		return CancelSentMsg{Err: client.Cancel(jobID)}
	}
}

// tickCmd creates a command that ticks every 500ms for polling.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
