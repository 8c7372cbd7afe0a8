package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"storyreel/config"
)

// SessionState is the lifecycle of one render session.
type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateRendering SessionState = "rendering"
	StateComplete  SessionState = "complete"
	StateFailed    SessionState = "failed"
)

// ErrRenderInProgress is returned when Start is called while a render is
// already active; sessions run one render at a time.
var ErrRenderInProgress = errors.New("a render is already in progress")

// Status is a point-in-time snapshot of a session.
type Status struct {
	State    SessionState `json:"state"`
	Progress float64      `json:"progress"`
	Artifact string       `json:"artifact,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// Session owns the configuration and lifecycle of renders: configuration is
// mutable while idle and frozen once a render starts. The render surface,
// encoder handle and audio graph inside the pipeline are exclusively owned
// by the active invocation. Observers may detach at any time without
// stopping the render; Cancel stops it cooperatively at the next frame.
type Session struct {
	mu       sync.Mutex
	state    SessionState
	cfg      Config
	progress float64
	artifact string
	err      error
	cancel   context.CancelFunc

	outDir      string
	newPipeline func(*Config) *Pipeline

	// OnProgress, when set, observes render progress in [0,1].
	OnProgress func(fraction float64)
}

// NewSession creates an idle session writing artifacts under outDir.
func NewSession(outDir string) *Session {
	if outDir == "" {
		outDir = config.OutputDir
	}
	return &Session{
		state:       StateIdle,
		outDir:      outDir,
		newPipeline: NewPipeline,
	}
}

// Configure replaces the session configuration. Rejected while rendering.
func (s *Session) Configure(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRendering {
		return ErrRenderInProgress
	}
	s.cfg = cfg
	return nil
}

// Start validates the configuration, discards any prior artifact and runs
// the render to completion or failure in the calling goroutine. Re-entrant
// starts are rejected.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateRendering {
		s.mu.Unlock()
		return ErrRenderInProgress
	}
	if err := s.cfg.Validate(); err != nil {
		s.state = StateFailed
		s.err = err
		s.mu.Unlock()
		return err
	}
	s.discardArtifactLocked()
	s.state = StateRendering
	s.progress = 0
	s.err = nil

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	cfg := s.cfg
	outPath := filepath.Join(s.outDir, fmt.Sprintf("storyreel_%d.webm", time.Now().UnixNano()))
	s.mu.Unlock()
	defer cancel()

	pipe := s.newPipeline(&cfg)
	pipe.OnProgress = func(frame, total int) {
		frac := float64(frame) / float64(total)
		s.mu.Lock()
		s.progress = frac
		observer := s.OnProgress
		s.mu.Unlock()
		if observer != nil {
			observer(frac)
		}
	}

	err := pipe.Run(ctx, outPath)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel = nil
	if err != nil {
		s.state = StateFailed
		s.err = err
		return err
	}
	s.state = StateComplete
	s.progress = 1
	s.artifact = outPath
	return nil
}

// Cancel requests cooperative cancellation of an in-flight render. It is a
// no-op when nothing is rendering.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Snapshot returns the current session status.
func (s *Session) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{State: s.state, Progress: s.progress, Artifact: s.artifact}
	if s.err != nil {
		st.Error = s.err.Error()
	}
	return st
}

// Close cancels any in-flight render, discards the artifact and returns the
// session to idle. Artifacts are never cached across sessions.
func (s *Session) Close() {
	s.Cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discardArtifactLocked()
	s.state = StateIdle
	s.progress = 0
	s.err = nil
}

func (s *Session) discardArtifactLocked() {
	if s.artifact != "" {
		os.Remove(s.artifact)
		s.artifact = ""
	}
}
