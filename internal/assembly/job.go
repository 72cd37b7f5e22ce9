package assembly

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase names one step of the assembly state machine.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseAcquiringEngine    Phase = "acquiring_engine"
	PhaseWritingAudio       Phase = "writing_audio"
	PhasePreparingThumbnail Phase = "preparing_thumbnail"
	PhaseEncoding           Phase = "encoding"
	PhaseDone               Phase = "done"
	PhaseFailed             Phase = "failed"
)

// Terminal reports whether the phase ends a job.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// Job tracks one video assembly attempt. Progress only moves forward: a
// stale update can never lower the reported percentage, and terminal states
// are frozen.
type Job struct {
	id      string
	created time.Time

	mu       sync.Mutex
	phase    Phase
	percent  int
	message  string
	artifact string
	failure  string
}

// NewJob creates an idle job with a fresh identifier.
func NewJob() *Job {
	return &Job{
		id:      uuid.New().String(),
		created: time.Now(),
		phase:   PhaseIdle,
	}
}

// ID returns the job identifier.
func (j *Job) ID() string {
	return j.id
}

// Snapshot is a point-in-time view of job state.
type Snapshot struct {
	ID       string    `json:"id"`
	Phase    Phase     `json:"phase"`
	Percent  int       `json:"percent"`
	Message  string    `json:"message"`
	Error    string    `json:"error,omitempty"`
	Artifact string    `json:"-"`
	Created  time.Time `json:"createdAt"`
}

// Snapshot returns the current job state.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Snapshot{
		ID:       j.id,
		Phase:    j.phase,
		Percent:  j.percent,
		Message:  j.message,
		Error:    j.failure,
		Artifact: j.artifact,
		Created:  j.created,
	}
}

// Active reports whether the job is still running.
func (j *Job) Active() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return !j.phase.Terminal()
}

func (j *Job) update(phase Phase, percent int, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.phase.Terminal() {
		return
	}
	j.phase = phase
	if percent > j.percent {
		j.percent = percent
	}
	j.message = message
}

func (j *Job) complete(artifact, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.phase.Terminal() {
		return
	}
	j.phase = PhaseDone
	j.percent = 100
	j.message = message
	j.artifact = artifact
}

// Fail marks the job failed. Callers that abort before assembly starts use
// this; assembly itself fails jobs internally.
func (j *Job) Fail(err error) {
	j.fail(err)
}

// Complete marks the job done with the produced artifact path.
func (j *Job) Complete(artifact, message string) {
	j.complete(artifact, message)
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.phase.Terminal() {
		return
	}
	j.phase = PhaseFailed
	j.message = "Job failed"
	if err != nil {
		j.failure = err.Error()
	}
}
