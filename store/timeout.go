package store

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/criyle/go-static-judge/submission"
)

var (
	_ Store          = &Timeout{}
	_ heap.Interface = &Timeout{}
)

// Timeout is a submission store with a maximum retention since first save
type Timeout struct {
	mu sync.Mutex
	Store
	timeout   time.Duration
	now       func() time.Time
	entries   []timeoutEntry
	idToIndex map[string]int

	stopOnce sync.Once
	looping  bool
	done     chan struct{}
	stopped  chan struct{}
}

type timeoutEntry struct {
	id   string
	time time.Time
}

// NewTimeout creates a store that removes submissions older than timeout.
// The check loop runs until Close.
func NewTimeout(s Store, timeout time.Duration, checkInterval time.Duration) *Timeout {
	t := newTimeout(s, timeout, time.Now)
	t.looping = true
	go t.checkTimeoutLoop(checkInterval)
	return t
}

func newTimeout(s Store, timeout time.Duration, now func() time.Time) *Timeout {
	return &Timeout{
		Store:     s,
		timeout:   timeout,
		now:       now,
		entries:   make([]timeoutEntry, 0),
		idToIndex: make(map[string]int),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

func (t *Timeout) checkTimeoutLoop(interval time.Duration) {
	defer close(t.stopped)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		t.checkTimeoutAndRemove()
		select {
		case <-ticker.C:
		case <-t.done:
			return
		}
	}
}

func (t *Timeout) checkTimeoutAndRemove() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	now := t.now()
	for len(t.entries) > 0 && t.entries[0].time.Add(t.timeout).Before(now) {
		f := t.entries[0]
		t.Store.Remove(context.Background(), f.id)
		heap.Pop(t)
		removed++
	}
	return removed
}

func (t *Timeout) Len() int {
	return len(t.entries)
}

func (t *Timeout) Less(i, j int) bool {
	return t.entries[i].time.Before(t.entries[j].time)
}

func (t *Timeout) Swap(i, j int) {
	t.entries[i], t.entries[j] = t.entries[j], t.entries[i]
	t.idToIndex[t.entries[i].id] = i
	t.idToIndex[t.entries[j].id] = j
}

func (t *Timeout) Push(x any) {
	e := x.(timeoutEntry)
	t.entries = append(t.entries, e)
	t.idToIndex[e.id] = len(t.entries) - 1
}

func (t *Timeout) Pop() any {
	e := t.entries[len(t.entries)-1]
	t.entries = t.entries[:len(t.entries)-1]
	delete(t.idToIndex, e.id)
	return e
}

// Save stores the submission and starts its retention clock on first save
func (t *Timeout) Save(ctx context.Context, s *submission.Submission) error {
	if err := t.Store.Save(ctx, s); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.idToIndex[s.ID]; !ok {
		heap.Push(t, timeoutEntry{s.ID, t.now()})
	}
	return nil
}

func (t *Timeout) Remove(ctx context.Context, id string) (bool, error) {
	success, err := t.Store.Remove(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()

	index, ok := t.idToIndex[id]
	if !ok {
		return success, err
	}
	heap.Remove(t, index)
	return success, err
}

// Close stops the check loop and closes the underlying store
func (t *Timeout) Close() error {
	t.stopOnce.Do(func() {
		close(t.done)
		if t.looping {
			<-t.stopped
		}
	})
	return t.Store.Close()
}
