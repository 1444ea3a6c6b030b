package repository

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/queue"
)

const forecastRecordType = "forecast.record"

// WriteRecorder counts sink writes performed by the workers.
type WriteRecorder interface {
	RecordSinkWrite(sink string, ok bool)
}

// AsyncSink moves sink writes off the request path through a bounded worker queue.
// Record only fails when the buffer is full or the sink is closed. Writes made by
// the workers are counted under the wrapped sink's name.
type AsyncSink struct {
	inner        domrepo.ForecastSink
	q            *queue.MemoryQueue
	drainTimeout time.Duration
}

// NewAsyncSink starts workers writing to inner. m may be nil.
func NewAsyncSink(inner domrepo.ForecastSink, l *applogger.Logger, m WriteRecorder, cfg queue.QueueConfig, drainTimeout time.Duration) (*AsyncSink, error) {
	q := queue.NewMemoryQueue(l, cfg, &recordJob{sink: inner, metrics: m})
	if err := q.Start(); err != nil {
		return nil, fmt.Errorf("start %s sink workers: %w", inner.Name(), err)
	}
	if drainTimeout <= 0 {
		drainTimeout = 5 * time.Second
	}
	return &AsyncSink{inner: inner, q: q, drainTimeout: drainTimeout}, nil
}

func (s *AsyncSink) Record(ctx context.Context, r *models.ForecastRecord) error {
	if err := s.q.Enqueue(ctx, forecastRecordType, r); err != nil {
		return fmt.Errorf("enqueue forecast %s: %w", r.ID, err)
	}
	return nil
}

// Name is the wrapped sink's name with an "+async" suffix, so enqueues
// and real writes are counted separately.
func (s *AsyncSink) Name() string { return s.inner.Name() + "+async" }

// Close drains buffered records before closing the wrapped sink.
func (s *AsyncSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
	defer cancel()
	qerr := s.q.Stop(ctx)
	if err := s.inner.Close(); err != nil {
		return err
	}
	return qerr
}

type recordJob struct {
	sink    domrepo.ForecastSink
	metrics WriteRecorder
}

func (j *recordJob) Name() string { return "forecast-sink-" + j.sink.Name() }
func (j *recordJob) Type() string { return forecastRecordType }

func (j *recordJob) Handle(ctx context.Context, payload interface{}) error {
	rec, err := queue.ParsePayload[models.ForecastRecord](payload)
	if err != nil {
		return err
	}
	err = j.sink.Record(ctx, rec)
	if j.metrics != nil {
		j.metrics.RecordSinkWrite(j.sink.Name(), err == nil)
	}
	return err
}

var _ domrepo.ForecastSink = (*AsyncSink)(nil)
