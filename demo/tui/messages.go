package tui

import (
	"time"

	"storyreel/render"
)

// RenderStartedMsg reports the outcome of starting a render job.
type RenderStartedMsg struct {
	JobID string
	Err   error
}

// StatusUpdateMsg carries a fresh status snapshot from the API.
type StatusUpdateMsg struct {
	Status *render.Status
	Err    error
}

// CancelSentMsg reports the outcome of a cancel request.
type CancelSentMsg struct {
	Err error
}

// TickMsg drives the polling loop.
type TickMsg struct {
	Time time.Time
}
