package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/officelunch/attendance-api/internal/api/metrics"
	"github.com/officelunch/attendance-api/internal/core/domain"
	"github.com/officelunch/attendance-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	sendTimeout    = 15 * time.Second
)

// ErrNoSender is reported for deliveries on a channel nobody configured.
var ErrNoSender = errors.New("no sender configured for channel")

// Dispatcher fans deliveries out to a fixed set of workers using consistent
// hashing on the recipient, so one recipient's deliveries go out in order
// while different recipients are served concurrently.
type Dispatcher struct {
	workers int
	senders map[domain.Channel]ports.Sender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, senders map[domain.Channel]ports.Sender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Dispatcher{workers: numWorkers, senders: senders, log: log}
}

// Dispatch sends every delivery and returns one result per delivery, in input
// order. A failed delivery never stops the others; there is no retry.
func (d *Dispatcher) Dispatch(ctx context.Context, deliveries []domain.Delivery) []domain.DeliveryResult {
	results := make([]domain.DeliveryResult, len(deliveries))
	if len(deliveries) == 0 {
		return results
	}

	n := min(d.workers, len(deliveries))
	shards := make([][]int, n)
	for i, del := range deliveries {
		s := shardIndex(del.RecipientID, n)
		shards[s] = append(shards[s], i)
	}

	var g errgroup.Group
	for w, idxs := range shards {
		if len(idxs) == 0 {
			continue
		}
		g.Go(func() error {
			d.runWorker(ctx, w, idxs, deliveries, results)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// runWorker writes only to the result slots it owns.
func (d *Dispatcher) runWorker(ctx context.Context, id int, idxs []int, deliveries []domain.Delivery, results []domain.DeliveryResult) {
	depth := metrics.DispatchQueueDepth.WithLabelValues(strconv.Itoa(id))
	depth.Set(float64(len(idxs)))
	defer depth.Set(0)

	for _, i := range idxs {
		del := deliveries[i]
		err := d.deliver(ctx, del)
		results[i] = domain.DeliveryResult{Delivery: del, Err: err}
		depth.Dec()

		if err != nil {
			d.log.Error().Err(err).
				Str("recipient_id", del.RecipientID).
				Str("channel", string(del.Channel)).
				Int("worker_id", id).
				Msg("delivery failed")
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, del domain.Delivery) error {
	channel := string(del.Channel)
	if err := ctx.Err(); err != nil {
		metrics.DeliveriesTotal.WithLabelValues(channel, "failed").Inc()
		return err
	}

	sender, ok := d.senders[del.Channel]
	if !ok || sender == nil {
		metrics.DeliveriesTotal.WithLabelValues(channel, "failed").Inc()
		return fmt.Errorf("%w: %s", ErrNoSender, channel)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	start := time.Now()
	err := sender.Send(sendCtx, del.Address, del.Message)
	metrics.DeliveryDuration.WithLabelValues(channel).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.DeliveriesTotal.WithLabelValues(channel, "failed").Inc()
		return err
	}
	metrics.DeliveriesTotal.WithLabelValues(channel, "sent").Inc()
	return nil
}

// shardIndex maps a recipient deterministically to a worker index.
func shardIndex(recipientID string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipientID))
	return int(h.Sum32() % uint32(n))
}
