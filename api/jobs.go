package api

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"storyreel/render"
	"storyreel/story"
)

// ErrJobNotFound is returned for lookups of unknown job IDs.
var ErrJobNotFound = errors.New("job not found")

// renderJob couples one render session with the scratch directory that holds
// its decoded audio inputs and its artifact.
type renderJob struct {
	ID      string
	Session *render.Session
	Dir     string
}

// imageJobState mirrors render.SessionState for batch image generation jobs.
type imageJobState string

const (
	imageJobRunning  imageJobState = "running"
	imageJobComplete imageJobState = "complete"
	imageJobFailed   imageJobState = "failed"
)

// imageJob tracks one asynchronous batch image generation.
type imageJob struct {
	ID string

	mu     sync.Mutex
	state  imageJobState
	done   int
	total  int
	slides []story.GeneratedSlide
	err    error
}

func (j *imageJob) progress(done, total int) {
	j.mu.Lock()
	j.done, j.total = done, total
	j.mu.Unlock()
}

func (j *imageJob) finish(slides []story.GeneratedSlide, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err != nil {
		j.state = imageJobFailed
		j.err = err
		return
	}
	j.state = imageJobComplete
	j.slides = slides
}

type imageJobStatus struct {
	State imageJobState `json:"state"`
	Done  int           `json:"done"`
	Total int           `json:"total"`
	Error string        `json:"error,omitempty"`
}

func (j *imageJob) snapshot() (imageJobStatus, []story.GeneratedSlide) {
	j.mu.Lock()
	defer j.mu.Unlock()
	st := imageJobStatus{State: j.state, Done: j.done, Total: j.total}
	if j.err != nil {
		st.Error = j.err.Error()
	}
	return st, j.slides
}

// jobRegistry tracks in-flight and finished jobs by ID.
type jobRegistry struct {
	mu      sync.Mutex
	renders map[string]*renderJob
	images  map[string]*imageJob
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{
		renders: make(map[string]*renderJob),
		images:  make(map[string]*imageJob),
	}
}

func (r *jobRegistry) addRender(session *render.Session, dir string) *renderJob {
	job := &renderJob{ID: uuid.NewString(), Session: session, Dir: dir}
	r.mu.Lock()
	r.renders[job.ID] = job
	r.mu.Unlock()
	return job
}

func (r *jobRegistry) getRender(id string) (*renderJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.renders[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (r *jobRegistry) removeRender(id string) (*renderJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.renders[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	delete(r.renders, id)
	return job, nil
}

func (r *jobRegistry) addImageJob(total int) *imageJob {
	job := &imageJob{ID: uuid.NewString(), state: imageJobRunning, total: total}
	r.mu.Lock()
	r.images[job.ID] = job
	r.mu.Unlock()
	return job
}

func (r *jobRegistry) getImageJob(id string) (*imageJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.images[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}
