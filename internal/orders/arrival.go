package orders

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/example/flashpizza/internal/models"
)

// AckStore persists the ids of orders an admin has acknowledged.
type AckStore interface {
	Load() (map[string]struct{}, error)
	Add(ids ...string) error
}

// ArrivalDetector tells genuinely new orders apart from orders that were
// merely re-synced. An order counts as arrived the first time it is seen in
// status new, unless an admin acknowledged it earlier, possibly in a
// previous run. Orders in the first snapshot after startup are listed as
// pending but not announced, since they were placed before this run.
type ArrivalDetector struct {
	acks AckStore
	log  *zap.Logger

	mu       sync.Mutex
	primed   bool
	seen     map[string]struct{}
	acked    map[string]struct{}
	pending  []string
	handlers []func(models.Order)
}

func NewArrivalDetector(acks AckStore, log *zap.Logger) (*ArrivalDetector, error) {
	if log == nil {
		log = zap.NewNop()
	}
	acked, err := acks.Load()
	if err != nil {
		return nil, fmt.Errorf("load acknowledged orders: %w", err)
	}
	return &ArrivalDetector{
		acks:  acks,
		log:   log.Named("arrivals"),
		seen:  make(map[string]struct{}),
		acked: acked,
	}, nil
}

// OnArrival registers fn to run once per arrived order, outside the lock.
func (d *ArrivalDetector) OnArrival(fn func(models.Order)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, fn)
}

// Observe processes one orders snapshot.
func (d *ArrivalDetector) Observe(orders []models.Order) {
	d.mu.Lock()
	var arrived []models.Order
	for _, o := range orders {
		_, seen := d.seen[o.ID]
		_, acked := d.acked[o.ID]
		if !seen && !acked && o.Status == models.OrderStatusNew && !d.isPending(o.ID) {
			d.pending = append(d.pending, o.ID)
			arrived = append(arrived, o)
		}
	}
	for _, o := range orders {
		d.seen[o.ID] = struct{}{}
	}
	if !d.primed {
		d.primed = true
		if len(arrived) > 0 {
			d.log.Info("unacknowledged orders from before startup", zap.Int("count", len(arrived)))
		}
		arrived = nil
	}
	handlers := slices.Clone(d.handlers)
	d.mu.Unlock()

	for _, o := range arrived {
		d.log.Info("new order arrived", zap.String("order_id", o.ID), zap.Float64("total", o.Total))
		for _, fn := range handlers {
			fn(o)
		}
	}
}

// Pending returns the ids of arrived, unacknowledged orders in arrival order.
func (d *ArrivalDetector) Pending() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string{}, d.pending...)
}

// Acknowledge dismisses one order for good.
func (d *ArrivalDetector) Acknowledge(id string) error {
	if err := d.acks.Add(id); err != nil {
		return fmt.Errorf("acknowledge %s: %w", id, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.acked[id] = struct{}{}
	d.drop(id)
	return nil
}

// AcknowledgeAll dismisses every pending order.
func (d *ArrivalDetector) AcknowledgeAll() error {
	ids := d.Pending()
	if len(ids) == 0 {
		return nil
	}
	if err := d.acks.Add(ids...); err != nil {
		return fmt.Errorf("acknowledge all: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		d.acked[id] = struct{}{}
		d.drop(id)
	}
	return nil
}

func (d *ArrivalDetector) isPending(id string) bool {
	for _, p := range d.pending {
		if p == id {
			return true
		}
	}
	return false
}

func (d *ArrivalDetector) drop(id string) {
	kept := d.pending[:0]
	for _, p := range d.pending {
		if p != id {
			kept = append(kept, p)
		}
	}
	d.pending = kept
}
