// Package clicks counts successful resolutions in the background. Counting is
// best-effort: increments may be dropped when the queue is full or the store
// fails, and may be applied in any order.
package clicks

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Siddarth2230/shortlink/pkg/metrics"
)

var ErrClosed = errors.New("click recorder closed")

// Incrementer persists one click for a short code.
type Incrementer interface {
	IncrementClicks(ctx context.Context, shortCode string) error
}

type Options struct {
	Workers   int
	QueueSize int
	// Timeout bounds each increment. Increments run detached from the
	// request that produced them.
	Timeout time.Duration
}

// Recorder is a fixed pool of workers draining a bounded queue of clicks.
type Recorder struct {
	store   Incrementer
	opts    Options
	logger  logrus.FieldLogger
	queue   chan string
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	started sync.Once
}

func NewRecorder(store Incrementer, opts Options, logger logrus.FieldLogger) *Recorder {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Recorder{
		store:  store,
		opts:   opts,
		logger: logger,
		queue:  make(chan string, opts.QueueSize),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (r *Recorder) Start() {
	r.started.Do(func() {
		for i := 0; i < r.opts.Workers; i++ {
			r.wg.Add(1)
			go r.work()
		}
	})
}

// Record enqueues a click without blocking. A full queue drops the click.
func (r *Recorder) Record(shortCode string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		metrics.ClickEvents.WithLabelValues("dropped").Inc()
		return
	}

	select {
	case r.queue <- shortCode:
	default:
		metrics.ClickEvents.WithLabelValues("dropped").Inc()
		r.logger.WithField("short_code", shortCode).Warn("click queue full, dropping click")
	}
}

// Close stops accepting clicks and waits for queued ones to be written or
// for ctx to end.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	// workers drain whatever is still queued
	r.Start()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "draining click queue")
	}
}

// Run starts the workers and blocks until ctx is cancelled, then drains the
// queue for up to the increment timeout.
func (r *Recorder) Run(ctx context.Context) error {
	r.Start()
	<-ctx.Done()

	drainCtx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
	defer cancel()
	return r.Close(drainCtx)
}

func (r *Recorder) work() {
	defer r.wg.Done()
	for shortCode := range r.queue {
		r.increment(shortCode)
	}
}

func (r *Recorder) increment(shortCode string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
	defer cancel()

	if err := r.store.IncrementClicks(ctx, shortCode); err != nil {
		metrics.ClickEvents.WithLabelValues("failed").Inc()
		r.logger.WithError(err).WithField("short_code", shortCode).Error("click increment failed")
		return
	}
	metrics.ClickEvents.WithLabelValues("recorded").Inc()
}
