package orders

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/notifications"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNoNextStatus  = errors.New("order has no next status")
)

// StatusStore reads orders and writes their status field.
type StatusStore interface {
	Order(id string) (models.Order, bool)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error
}

// Lifecycle carries out admin status actions. Any known status is accepted;
// only Advance restricts itself to the forward step.
type Lifecycle struct {
	orders StatusStore
	notes  *notifications.Center
	log    *zap.Logger
}

func NewLifecycle(orders StatusStore, notes *notifications.Center, log *zap.Logger) *Lifecycle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{orders: orders, notes: notes, log: log.Named("lifecycle")}
}

func (l *Lifecycle) MarkPreparing(ctx context.Context, id string) (models.Order, error) {
	return l.Transition(ctx, id, models.OrderStatusPreparing)
}

func (l *Lifecycle) MarkOutForDelivery(ctx context.Context, id string) (models.Order, error) {
	return l.Transition(ctx, id, models.OrderStatusOutForDelivery)
}

func (l *Lifecycle) MarkCompleted(ctx context.Context, id string) (models.Order, error) {
	return l.Transition(ctx, id, models.OrderStatusCompleted)
}

func (l *Lifecycle) Cancel(ctx context.Context, id string) (models.Order, error) {
	return l.Transition(ctx, id, models.OrderStatusCancelled)
}

// Advance moves the order one step forward.
func (l *Lifecycle) Advance(ctx context.Context, id string) (models.Order, error) {
	order, ok := l.orders.Order(id)
	if !ok {
		return models.Order{}, fmt.Errorf("%s: %w", id, ErrOrderNotFound)
	}
	next, ok := NextStatus(order.Status)
	if !ok {
		return models.Order{}, fmt.Errorf("%s is %s: %w", id, order.Status, ErrNoNextStatus)
	}
	return l.Transition(ctx, id, next)
}

// Transition writes status and tells both sides about it.
func (l *Lifecycle) Transition(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	order, ok := l.orders.Order(id)
	if !ok {
		return models.Order{}, fmt.Errorf("%s: %w", id, ErrOrderNotFound)
	}
	if err := l.orders.UpdateOrderStatus(ctx, id, status); err != nil {
		return models.Order{}, err
	}

	from := order.Status
	order.Status = status
	l.log.Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	l.announce(order)
	return order, nil
}

func (l *Lifecycle) announce(o models.Order) {
	if l.notes == nil {
		return
	}
	short := o.ShortID()

	switch o.Status {
	case models.OrderStatusPreparing:
		l.notes.ShowToast(notifications.AdminScope, models.ToastSuccess, fmt.Sprintf("Order #%s marked as Preparing", short))
		l.notes.SetForOrder(o.ID, "Order Being Prepared", fmt.Sprintf("Your order #%s is being prepared. Estimated delivery: 25-30 mins.", o.ID))
	case models.OrderStatusOutForDelivery:
		l.notes.ShowToast(notifications.AdminScope, models.ToastSuccess, fmt.Sprintf("Order #%s is Out for Delivery", short))
		l.notes.SetForOrder(o.ID, "Out for Delivery", fmt.Sprintf("Your order #%s is on its way!", o.ID))
	case models.OrderStatusCompleted:
		l.notes.ShowToast(notifications.AdminScope, models.ToastSuccess, fmt.Sprintf("Order #%s completed", short))
		l.notes.RemoveForOrder(o.ID)
	case models.OrderStatusCancelled:
		l.notes.ShowToast(notifications.AdminScope, models.ToastInfo, fmt.Sprintf("Order #%s has been cancelled", short))
		l.notes.SetForOrder(o.ID, "Order Cancelled", fmt.Sprintf("Your order #%s has been cancelled.", o.ID))
	case models.OrderStatusNew:
		l.notes.ShowToast(notifications.AdminScope, models.ToastInfo, fmt.Sprintf("Order #%s moved back to New", short))
	}
}
