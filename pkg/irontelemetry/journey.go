// journey.go tracks multi-step application flows attached to events.

package irontelemetry

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type stepStatus string

const (
	stepInProgress stepStatus = "in_progress"
	stepCompleted  stepStatus = "completed"
	stepFailed     stepStatus = "failed"
)

// Journey is an active multi-step flow. Events captured while a journey is
// active carry a snapshot of it for correlating failures to business logic
// position.
//
// A journey handle must be finished by calling End: End completes the
// journey unless Fail was called first, and detaches it from the client that
// started it. Deferring End right after StartJourney gives the scoped
// acquire/release shape:
//
//	j := client.StartJourney("checkout")
//	defer j.End()
type Journey struct {
	mu          sync.Mutex
	id          string
	name        string
	startedAt   time.Time
	metadata    map[string]any
	user        *User
	currentStep *Step
	completed   bool
	failed      bool
	onEnd       func()
}

func newJourney(name string) *Journey {
	return &Journey{
		id:        uuid.NewString(),
		name:      name,
		startedAt: time.Now(),
		metadata:  make(map[string]any),
	}
}

// ID returns the journey's unique identifier.
func (j *Journey) ID() string {
	return j.id
}

// SetUser attaches user context to this journey. A journey user takes
// precedence over the client's user when events are built.
func (j *Journey) SetUser(id, email string, data map[string]any) *Journey {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.user = &User{ID: id, Email: email, Data: data}
	return j
}

// SetMetadata records a metadata entry carried in the journey snapshot.
func (j *Journey) SetMetadata(key string, value any) *Journey {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.metadata[key] = value
	return j
}

// StartStep begins a new step, completing any step still in progress.
func (j *Journey) StartStep(name, category string) *Step {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.finishCurrentStepLocked(stepCompleted)
	step := &Step{
		name:      name,
		category:  category,
		journey:   j,
		startedAt: time.Now(),
		status:    stepInProgress,
		data:      make(map[string]any),
	}
	j.currentStep = step
	return step
}

// Complete marks the journey (and any in-progress step) completed.
func (j *Journey) Complete() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finishCurrentStepLocked(stepCompleted)
	j.completed = true
}

// Fail marks the journey (and any in-progress step) failed.
func (j *Journey) Fail() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finishCurrentStepLocked(stepFailed)
	j.failed = true
}

// IsComplete reports whether the journey has been completed or failed.
func (j *Journey) IsComplete() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.completed || j.failed
}

// End finishes the journey: it completes it unless Complete or Fail already
// ran, and detaches it from the client that started it. Safe to call after
// Fail; the failure outcome is kept.
func (j *Journey) End() {
	if !j.IsComplete() {
		j.Complete()
	}

	j.mu.Lock()
	onEnd := j.onEnd
	j.onEnd = nil
	j.mu.Unlock()
	if onEnd != nil {
		onEnd()
	}
}

// Context returns the snapshot attached to events built while this journey
// is active.
func (j *Journey) Context() JourneyContext {
	j.mu.Lock()
	defer j.mu.Unlock()

	var current string
	if j.currentStep != nil {
		current = j.currentStep.name
	}

	metadata := make(map[string]any, len(j.metadata))
	for k, v := range j.metadata {
		metadata[k] = v
	}

	return JourneyContext{
		JourneyID:   j.id,
		Name:        j.name,
		CurrentStep: current,
		StartedAt:   j.startedAt,
		Metadata:    metadata,
	}
}

// User returns the journey-scoped user, or nil.
func (j *Journey) User() *User {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.user
}

func (j *Journey) finishCurrentStepLocked(status stepStatus) {
	if j.currentStep == nil {
		return
	}
	j.currentStep.finish(status)
	j.currentStep = nil
}

// Step is a single step within a journey. A step handle should be finished
// with End (complete unless Fail ran first), typically via defer.
type Step struct {
	mu        sync.Mutex
	name      string
	category  string
	journey   *Journey
	startedAt time.Time
	endedAt   time.Time
	status    stepStatus
	data      map[string]any
}

// Name returns the step name.
func (s *Step) Name() string {
	return s.name
}

// Journey returns the step's parent journey.
func (s *Step) Journey() *Journey {
	return s.journey
}

// SetData records a data entry on this step.
func (s *Step) SetData(key string, value any) *Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s
}

// Complete marks the step completed.
func (s *Step) Complete() {
	s.finish(stepCompleted)
}

// Fail marks the step failed.
func (s *Step) Fail() {
	s.finish(stepFailed)
}

// End completes the step if it is still in progress. An earlier Complete or
// Fail wins.
func (s *Step) End() {
	s.finish(stepCompleted)
}

func (s *Step) finish(status stepStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != stepInProgress {
		return
	}
	s.status = status
	s.endedAt = time.Now()
}
