// Package worker runs judging requests on a bounded pool of goroutines.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/criyle/go-static-judge/judge"
	"github.com/criyle/go-static-judge/submission"
	"go.uber.org/zap"
)

const maxWaiting = 512

// ErrClosed is returned for requests submitted to a worker that is not running
var ErrClosed = errors.New("worker is not running")

// Config defines worker configuration
type Config struct {
	Engine        *judge.Engine
	Ledger        *submission.Ledger
	Archiver      Archiver // optional
	Parallelism   int
	Logger        *zap.Logger
	JudgeObserver func(Response)
}

// Worker defines interface for judge
type Worker interface {
	Start()
	Submit(context.Context, *Request) <-chan Response
	Execute(context.Context, *Request) <-chan Response
	Shutdown()
}

// worker defines judge worker
type worker struct {
	engine      *judge.Engine
	ledger      *submission.Ledger
	archiver    Archiver
	parallelism int
	logger      *zap.Logger

	judgeObserver func(Response)

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup

	// mu guards running and the close of workCh
	mu      sync.RWMutex
	running bool
	workCh  chan workRequest
	done    chan struct{}
}

type workRequest struct {
	*Request
	context.Context
	resultCh chan<- Response
}

// New creates new worker
func New(conf Config) Worker {
	logger := conf.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	parallelism := conf.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	return &worker{
		engine:        conf.Engine,
		ledger:        conf.Ledger,
		archiver:      conf.Archiver,
		parallelism:   parallelism,
		logger:        logger,
		judgeObserver: conf.JudgeObserver,
	}
}

// Start starts worker loops with given parallelism
func (w *worker) Start() {
	w.startOnce.Do(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.workCh = make(chan workRequest, maxWaiting)
		w.done = make(chan struct{})
		w.running = true
		w.wg.Add(w.parallelism)
		for i := 0; i < w.parallelism; i++ {
			go w.loop()
		}
	})
}

// Submit queues a single request, waiting for a free slot until ctx is done
func (w *worker) Submit(ctx context.Context, req *Request) <-chan Response {
	ch := make(chan Response, 1)

	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.running {
		ch <- Response{RequestID: req.RequestID, Error: ErrClosed}
		return ch
	}
	select {
	case w.workCh <- workRequest{
		Request:  req,
		Context:  ctx,
		resultCh: ch,
	}:
	case <-ctx.Done():
		ch <- Response{RequestID: req.RequestID, Error: ctx.Err()}
	case <-w.done:
		ch <- Response{RequestID: req.RequestID, Error: ErrClosed}
	}
	return ch
}

// Execute will execute the request in new goroutine (bypass the parallelism limit)
func (w *worker) Execute(ctx context.Context, req *Request) <-chan Response {
	ch := make(chan Response, 1)

	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.running {
		ch <- Response{RequestID: req.RequestID, Error: ErrClosed}
		return ch
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.workDoJudge(workRequest{
			Request:  req,
			Context:  ctx,
			resultCh: ch,
		})
	}()
	return ch
}

// Shutdown rejects new requests, judges the queued ones and waits for them to finish
func (w *worker) Shutdown() {
	w.stopOnce.Do(func() {
		w.mu.RLock()
		done := w.done
		w.mu.RUnlock()
		if done != nil {
			// release Submit calls blocked on a full queue
			close(done)
		}

		w.mu.Lock()
		if w.running {
			w.running = false
			close(w.workCh)
		}
		w.mu.Unlock()

		w.wg.Wait()
	})
}

func (w *worker) loop() {
	defer w.wg.Done()
	for req := range w.workCh {
		w.workDoJudge(req)
	}
}

func (w *worker) workDoJudge(req workRequest) {
	rt := w.judge(req.Context, req.Input)
	rt.RequestID = req.RequestID
	if w.judgeObserver != nil {
		w.judgeObserver(rt)
	}
	req.resultCh <- rt
}

func (w *worker) judge(ctx context.Context, in judge.Input) (rt Response) {
	if err := ctx.Err(); err != nil {
		rt.Error = err
		return
	}
	if err := in.Validate(); err != nil {
		rt.Error = err
		return
	}

	// once judging starts the record is written through even if the caller goes away
	sctx := context.WithoutCancel(ctx)

	s, err := w.ledger.Create(sctx, in.TaskGroup, in.TaskID, in.Source)
	if err != nil {
		rt.Error = err
		return
	}

	start := time.Now()
	rt.Outcomes = w.engine.Evaluate(in.Source, in.TaskGroup, in.TaskID)
	rt.Time = time.Since(start)
	rt.Summary = judge.Summarize(rt.Outcomes)

	s, err = w.ledger.Complete(sctx, s, rt.Outcomes)
	rt.Submission = s
	if err != nil {
		rt.Error = err
		return
	}
	w.logger.Debug("submission judged",
		zap.String("id", s.ID),
		zap.String("group", s.TaskGroup),
		zap.Int("task", s.TaskID),
		zap.Stringer("status", s.Status),
		zap.Int("passed", s.TestsPassed),
		zap.Int("total", s.TestsTotal))

	if w.archiver != nil {
		if err := w.archiver.Archive(sctx, s); err != nil {
			w.logger.Warn("archive submission failed", zap.String("id", s.ID), zap.Error(err))
		}
	}
	return
}
