// Package domain holds the records the batch driver persists about its runs.
package domain

import (
	"fmt"
	"time"
)

// RunState describes the current state of a Run.
type RunState int

const (
	RunStateUnknown   RunState = 0
	RunStateRunning   RunState = 10 // Job loaded, steps executing
	RunStateSucceeded RunState = 20 // Every step completed
	RunStateFailed    RunState = 30 // At least one step failed
)

func (s RunState) String() string {
	switch s {
	case RunStateRunning:
		return "RUNNING"
	case RunStateSucceeded:
		return "SUCCEEDED"
	case RunStateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// IsFinal reports whether no further transition is possible.
func (s RunState) IsFinal() bool {
	return s == RunStateSucceeded || s == RunStateFailed
}

// ValidRunStateTransition checks if a state transition is valid.
// Valid transitions: RUNNING -> SUCCEEDED | FAILED
func ValidRunStateTransition(from, to RunState) bool {
	switch from {
	case RunStateRunning:
		return to.IsFinal()
	case RunStateSucceeded, RunStateFailed:
		return false
	default:
		return to == RunStateRunning
	}
}

// Run is one execution of a job file.
type Run struct {
	ID         string
	Job        string
	JobPath    string
	State      RunState
	Failures   int
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
	Version    int64
}

// NewRun creates a running Run with the given ID.
func NewRun(id, job, jobPath string) *Run {
	return &Run{
		ID:        id,
		Job:       job,
		JobPath:   jobPath,
		State:     RunStateRunning,
		StartedAt: time.Now().UTC(),
		Version:   1,
	}
}

// Finish moves the run to its final state.
func (r *Run) Finish(failures int, message string) error {
	to := RunStateSucceeded
	if failures > 0 {
		to = RunStateFailed
	}
	if !ValidRunStateTransition(r.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, r.State, to)
	}
	r.State = to
	r.Failures = failures
	r.Message = message
	r.FinishedAt = time.Now().UTC()
	return nil
}

// Duration is the wall time of a finished run.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
