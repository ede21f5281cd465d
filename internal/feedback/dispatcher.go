package feedback

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// ErrDispatcherClosed is returned by SubmitFeedback after Close.
var ErrDispatcherClosed = errors.New("feedback dispatcher closed")

const (
	defaultQueueSize       = 256
	defaultWorkers         = 2
	defaultDeliveryTimeout = 5 * time.Second
)

// DispatcherOptions tune the delivery queue.
type DispatcherOptions struct {
	QueueSize       int
	Workers         int
	DeliveryTimeout time.Duration
	Recorder        metrics.Recorder
	Logger          *slog.Logger
}

// Dispatcher queues events and delivers them to a Sink on background
// workers. Callers never wait for delivery; a full queue drops the event.
type Dispatcher struct {
	sink    Sink
	queue   chan Event
	timeout time.Duration
	rec     metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

// NewDispatcher starts the workers.
func NewDispatcher(sink Sink, opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = defaultDeliveryTimeout
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan Event, opts.QueueSize),
		timeout: opts.DeliveryTimeout,
		rec:     opts.Recorder,
		logger:  opts.Logger,
		now:     time.Now,
	}
	for range opts.Workers {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// SubmitFeedback validates fb, stamps it into an Event for pageURL and
// enqueues it. It returns as soon as the event is queued or dropped.
func (d *Dispatcher) SubmitFeedback(pageURL string, fb Payload) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	opinion, _ := ParseOpinion(string(fb.Opinion))

	ev := Event{
		ID:        uuid.NewString(),
		Name:      EventName,
		URL:       pageURL,
		Opinion:   opinion,
		Message:   strings.TrimSpace(fb.Message),
		Timestamp: d.now().UTC(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- ev:
		d.rec.IncFeedbackEvent(metrics.FeedbackAccepted)
	default:
		d.rec.IncFeedbackEvent(metrics.FeedbackDropped)
		d.logger.Warn("Feedback queue full, dropping event",
			logfields.EventID(ev.ID),
			logfields.URL(ev.URL))
	}
	return nil
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.deliver(ev)
	}
}

// deliver makes exactly one attempt. Failures are logged, never retried.
func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	if err := d.sink.Deliver(ctx, ev); err != nil {
		d.rec.IncFeedbackEvent(metrics.FeedbackFailed)
		d.logger.Warn("Feedback delivery failed",
			logfields.EventID(ev.ID),
			logfields.Sink(d.sink.Name()),
			logfields.Error(err))
		return
	}
	d.rec.IncFeedbackEvent(metrics.FeedbackDelivered)
	d.logger.Debug("Feedback delivered",
		logfields.EventID(ev.ID),
		logfields.Sink(d.sink.Name()),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
}

// Close stops accepting events, waits for the queue to drain and closes the
// sink. If ctx expires first the remaining events keep draining in the
// background and ctx.Err() is returned.
func (d *Dispatcher) Close(ctx context.Context) error {
	var err error
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()

		drained := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(drained)
		}()

		select {
		case <-drained:
			err = d.sink.Close()
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	return err
}
