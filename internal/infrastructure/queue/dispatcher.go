package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/smartcompute/monitoring-system/internal/api/metrics"
	"github.com/smartcompute/monitoring-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes security events to a fixed set of workers using consistent
// hashing on the asset ID, guaranteeing per-asset event ordering.
type Dispatcher struct {
	workers []chan ports.SecurityEventInput
	service ports.TriageService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.TriageService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.SecurityEventInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.SecurityEventInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its asset.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event ports.SecurityEventInput) {
	idx := d.shardIndex(event.AssetID)
	d.workers[idx] <- event
	metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// EnqueueBatch enqueues multiple events preserving per-asset ordering.
func (d *Dispatcher) EnqueueBatch(events []ports.SecurityEventInput) {
	for _, e := range events {
		d.Enqueue(e)
	}
}

// Depths reports the current queue depth of every worker channel. The
// orchestrator feeds these into its scaling decisions.
func (d *Dispatcher) Depths() []int {
	depths := make([]int, len(d.workers))
	for i, ch := range d.workers {
		depths[i] = len(ch)
	}
	return depths
}

// shardIndex maps an asset ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(assetID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(assetID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.SecurityEventInput) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.EventsQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if _, err := d.service.Process(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("asset_id", event.AssetID).
					Int("worker_id", id).
					Msg("event triage failed")
			}
		}
	}
}
