package notify

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/scribehub/writing-marketplace/internal/api/metrics"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes notifications to a fixed set of workers using consistent
// hashing on the recipient ID, guaranteeing per-user delivery ordering.
// It implements ports.Notifier; callers never block and never see delivery
// failures.
type Dispatcher struct {
	workers   []chan ports.NotificationInput
	deliverer *Deliverer
	log       zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, deliverer *Deliverer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan ports.NotificationInput, numWorkers),
		deliverer: deliverer,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.NotificationInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Notify enqueues each notification on the worker owning its recipient.
// When a worker's buffer is full the notification is dropped and logged
// rather than blocking the caller.
func (d *Dispatcher) Notify(inputs ...ports.NotificationInput) {
	for _, in := range inputs {
		if in.UserID == "" {
			continue
		}
		idx := d.shardIndex(in.UserID)
		select {
		case d.workers[idx] <- in:
			metrics.NotifyQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		default:
			d.log.Warn().
				Str("user_id", in.UserID).
				Int("worker_id", idx).
				Msg("notification dropped, worker queue full")
		}
	}
}

// shardIndex maps a recipient ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.NotificationInput) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotifyQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if err := d.deliverer.Deliver(ctx, in); err != nil {
				d.log.Error().Err(err).
					Str("user_id", in.UserID).
					Int("worker_id", id).
					Msg("notification delivery failed")
			}
		}
	}
}
