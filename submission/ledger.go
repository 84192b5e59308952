package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/criyle/go-static-judge/judge"
)

// Ledger drives submissions through Running -> Passed | Failed and persists
// every step to its store. Re-judging creates a new submission.
type Ledger struct {
	store Store
	now   func() time.Time
}

// Option configures the ledger
type Option func(*Ledger)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger creates a ledger over the store
func NewLedger(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Create records a new running submission
func (l *Ledger) Create(ctx context.Context, group string, id int, source string) (*Submission, error) {
	s := &Submission{
		TaskGroup:   group,
		TaskID:      id,
		Source:      source,
		Status:      StatusRunning,
		SubmittedAt: l.now(),
	}
	if err := l.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}
	return s, nil
}

// Complete fills the result of the outcomes into the submission.
// A terminal submission is left untouched and ErrInvalidTransition is returned.
// s is only updated once the completed record is saved, so a failed save can be retried.
func (l *Ledger) Complete(ctx context.Context, s *Submission, outcomes []judge.Outcome) (*Submission, error) {
	if s.Status.Terminal() {
		return s, fmt.Errorf("complete submission %s in status %v: %w", s.ID, s.Status, ErrInvalidTransition)
	}

	c := *s
	sum := judge.Summarize(outcomes)
	if sum.AllPassed {
		c.Status = StatusPassed
	} else {
		c.Status = StatusFailed
	}
	c.TestsPassed = sum.TestsPassed
	c.TestsTotal = sum.TestsTotal
	c.Output = judge.Render(outcomes)
	now := l.now()
	c.EvaluatedAt = &now

	if err := l.store.Save(ctx, &c); err != nil {
		return s, fmt.Errorf("save submission %s: %w", s.ID, err)
	}
	*s = c
	return s, nil
}

// Get loads a submission by id
func (l *Ledger) Get(ctx context.Context, id string) (*Submission, error) {
	return l.store.FindByID(ctx, id)
}
