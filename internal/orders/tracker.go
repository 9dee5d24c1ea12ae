// Package orders follows orders through their lifecycle on both the customer
// and the admin side.
package orders

import (
	"time"

	"github.com/example/flashpizza/internal/models"
)

// ActiveOrder returns the most recent order that is not yet terminal.
func ActiveOrder(orders []models.Order) (models.Order, bool) {
	var active models.Order
	found := false
	for _, o := range orders {
		if o.Status.Terminal() {
			continue
		}
		if !found || o.CreatedAt.After(active.CreatedAt) {
			active = o
			found = true
		}
	}
	return active, found
}

// NextStatus is the single forward step offered to the admin for status.
func NextStatus(status models.OrderStatus) (models.OrderStatus, bool) {
	switch status {
	case models.OrderStatusNew:
		return models.OrderStatusPreparing, true
	case models.OrderStatusPreparing:
		return models.OrderStatusOutForDelivery, true
	case models.OrderStatusOutForDelivery:
		return models.OrderStatusCompleted, true
	}
	return "", false
}

var deliveryMinutes = map[models.OrderStatus]time.Duration{
	models.OrderStatusNew:            35 * time.Minute,
	models.OrderStatusPreparing:      25 * time.Minute,
	models.OrderStatusOutForDelivery: 10 * time.Minute,
}

// EstimatedDelivery returns when the order should arrive. Terminal orders
// have no estimate.
func EstimatedDelivery(o models.Order) (time.Time, bool) {
	d, ok := deliveryMinutes[o.Status]
	if !ok {
		return time.Time{}, false
	}
	return o.CreatedAt.Add(d), true
}

// Tracker is the order a customer is looking at. It is a plain value so it
// can be stored with the rest of the session.
type Tracker struct {
	Displayed *models.Order `json:"displayed,omitempty"`
}

// Track points the tracker at o.
func (t Tracker) Track(o models.Order) Tracker {
	return Tracker{Displayed: &o}
}

// Observe reconciles the displayed order with a fresh orders snapshot. The
// displayed copy is only replaced when its status moved. With nothing shown,
// or when the shown order is missing from the snapshot, a different active
// order is adopted; otherwise the shown order stays, since a just-placed
// order may not have synced yet.
func (t Tracker) Observe(orders []models.Order) (Tracker, bool) {
	if t.Displayed != nil {
		for _, o := range orders {
			if o.ID != t.Displayed.ID {
				continue
			}
			if o.Status == t.Displayed.Status {
				return t, false
			}
			return t.Track(o), true
		}
	}

	active, ok := ActiveOrder(orders)
	if !ok {
		return t, false
	}
	return t.Track(active), true
}
