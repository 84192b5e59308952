package worker

import (
	"context"
	"time"

	"github.com/criyle/go-static-judge/judge"
	"github.com/criyle/go-static-judge/submission"
)

// Request defines single worker request
type Request struct {
	RequestID string
	judge.Input
}

// Response defines worker response for single request
type Response struct {
	RequestID  string
	Submission *submission.Submission
	Outcomes   []judge.Outcome
	Summary    judge.Summary
	Time       time.Duration // time spent on evaluation
	Error      error
}

// Archiver receives every completed submission
type Archiver interface {
	Archive(ctx context.Context, s *submission.Submission) error
}
