// Package submission records judging attempts and their lifecycle.
package submission

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidTransition is returned when completing a submission that is already terminal
	ErrInvalidTransition = errors.New("invalid submission status transition")

	// ErrNotFound is returned by stores when no submission has the id
	ErrNotFound = errors.New("submission not found")
)

// Submission is the persisted record of a single judging attempt
type Submission struct {
	ID          string     `json:"_id"`
	TaskGroup   string     `json:"projectType"`
	TaskID      int        `json:"taskId"`
	Source      string     `json:"code"`
	Status      Status     `json:"status"`
	Output      string     `json:"output"`
	TestsPassed int        `json:"testsPassed"`
	TestsTotal  int        `json:"testsTotal"`
	SubmittedAt time.Time  `json:"submittedAt"`
	EvaluatedAt *time.Time `json:"evaluatedAt,omitempty"`
}

// AllPassed reports whether every test of a completed submission passed
func (s *Submission) AllPassed() bool {
	return s.Status == StatusPassed
}

// Store persists submissions. Save assigns an id to a submission without one.
type Store interface {
	Save(ctx context.Context, s *Submission) error
	FindByID(ctx context.Context, id string) (*Submission, error) // ErrNotFound if not exists
}
