package main

import (
	"context"
	"errors"
	"sync"

	"github.com/criyle/go-static-judge/store"
	"github.com/criyle/go-static-judge/submission"
	"github.com/criyle/go-static-judge/worker"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "static_judge"
)

var (
	// 10us -> 100ms
	timeBuckets = []float64{
		0.00001, 0.00002, 0.00005, 0.0001, 0.0002, 0.0005,
		0.001, 0.002, 0.005, 0.01, 0.025, 0.05, 0.1,
	}

	// 64 byte (1<<6) -> 1m (1<<20)
	sourceSizeBucket = prometheus.ExponentialBuckets(1<<6, 2, 15)

	metricsSummaryQuantile = map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}

	judgeErrorCount = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "error",
		Help:      "Number of judge requests returns error",
	})

	judgeTimeHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "time_seconds",
		Help:      "Histogram for the evaluation time",
		Buckets:   timeBuckets,
	}, []string{"status"})

	judgeTimeSummary = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  metricsNamespace,
		Name:       "time",
		Help:       "Summary for the evaluation time",
		Objectives: metricsSummaryQuantile,
	}, []string{"status"})

	judgeSourceHist = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "source_size_bytes",
		Help:      "Histogram for the submitted source size",
		Buckets:   sourceSizeBucket,
	})

	judgeCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "submissions",
		Help:      "Number of judged submissions",
	}, []string{"group", "status"})

	judgeInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "in_flight",
		Help:      "Number of judge requests submitted and not yet finished",
	})

	storeTotalCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "submission_current_total",
		Help:      "Total number of current submissions in the store",
	})

	storeErrorCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "store_error",
		Help:      "Number of store operations returns error",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(judgeErrorCount, judgeCount, judgeInFlight)
	prometheus.MustRegister(judgeTimeHist, judgeTimeSummary, judgeSourceHist)
	prometheus.MustRegister(storeTotalCount, storeErrorCount)
}

func judgeObserve(res worker.Response) {
	if res.Error != nil {
		judgeErrorCount.Inc()
	}
	s := res.Submission
	if s == nil {
		return
	}
	status := s.Status.String()
	ob := res.Time.Seconds()
	judgeTimeHist.WithLabelValues(status).Observe(ob)
	judgeTimeSummary.WithLabelValues(status).Observe(ob)
	judgeSourceHist.Observe(float64(len(s.Source)))
	judgeCount.WithLabelValues(s.TaskGroup, status).Inc()
}

var _ worker.Worker = &metricsWorker{}

type metricsWorker struct {
	worker.Worker
}

func newMetricsWorker(w worker.Worker) worker.Worker {
	return &metricsWorker{Worker: w}
}

func (w *metricsWorker) Submit(ctx context.Context, req *worker.Request) <-chan worker.Response {
	return w.track(w.Worker.Submit(ctx, req))
}

func (w *metricsWorker) Execute(ctx context.Context, req *worker.Request) <-chan worker.Response {
	return w.track(w.Worker.Execute(ctx, req))
}

func (w *metricsWorker) track(in <-chan worker.Response) <-chan worker.Response {
	judgeInFlight.Inc()
	out := make(chan worker.Response, 1)
	go func() {
		rt := <-in
		judgeInFlight.Dec()
		out <- rt
	}()
	return out
}

var _ store.Store = &metricsStore{}

type metricsStore struct {
	mu sync.Mutex
	store.Store
	ids map[string]struct{}
}

func newMetricsStore(s store.Store) store.Store {
	return &metricsStore{
		Store: s,
		ids:   make(map[string]struct{}),
	}
}

func (m *metricsStore) Save(ctx context.Context, s *submission.Submission) error {
	if err := m.Store.Save(ctx, s); err != nil {
		storeErrorCount.WithLabelValues("save").Inc()
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[s.ID]; !ok {
		m.ids[s.ID] = struct{}{}
		storeTotalCount.Inc()
	}
	return nil
}

func (m *metricsStore) FindByID(ctx context.Context, id string) (*submission.Submission, error) {
	s, err := m.Store.FindByID(ctx, id)
	if err != nil && !errors.Is(err, submission.ErrNotFound) {
		storeErrorCount.WithLabelValues("find").Inc()
	}
	return s, err
}

func (m *metricsStore) Remove(ctx context.Context, id string) (bool, error) {
	success, err := m.Store.Remove(ctx, id)
	if err != nil {
		storeErrorCount.WithLabelValues("remove").Inc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[id]; ok && success {
		delete(m.ids, id)
		storeTotalCount.Dec()
	}
	return success, err
}
