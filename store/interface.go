// Package store provides submission stores backed by memory, BadgerDB and SQLite.
package store

import (
	"context"

	"github.com/criyle/go-static-judge/submission"
	"github.com/google/uuid"
)

// Store defines interface to persist submissions
type Store interface {
	submission.Store
	Remove(ctx context.Context, id string) (bool, error) // Remove deletes a submission by id
	List(ctx context.Context) ([]string, error)          // List return all submission ids
	Close() error
}

func generateID() string {
	return uuid.NewString()
}

// assignID sets a new id on a submission that does not carry one
func assignID(s *submission.Submission) {
	if s.ID == "" {
		s.ID = generateID()
	}
}
