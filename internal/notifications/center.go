// Package notifications keeps per-order customer notifications and
// short-lived toasts.
package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/flashpizza/internal/models"
)

// ToastTTL is how long a toast stays visible.
const ToastTTL = 3 * time.Second

// AdminScope is the toast scope of the back-office.
const AdminScope = "admin"

type toast struct {
	models.Toast
	expires time.Time
}

// Center holds notifications newest first. There is at most one
// notification per order id.
type Center struct {
	mu            sync.Mutex
	notifications []models.Notification
	toasts        map[string][]toast
	now           func() time.Time
}

func NewCenter() *Center {
	return &Center{
		toasts: make(map[string][]toast),
		now:    time.Now,
	}
}

// WithClock replaces the time source. Used in tests.
func (c *Center) WithClock(now func() time.Time) *Center {
	c.now = now
	return c
}

// SetForOrder replaces whatever notification orderID had with a new unread one.
func (c *Center) SetForOrder(orderID, title, message string) models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := models.Notification{
		ID:        uuid.NewString(),
		Type:      models.NotificationOrder,
		Title:     title,
		Message:   message,
		Timestamp: c.now(),
		OrderID:   orderID,
	}
	kept := make([]models.Notification, 0, len(c.notifications)+1)
	kept = append(kept, n)
	for _, existing := range c.notifications {
		if existing.OrderID != orderID {
			kept = append(kept, existing)
		}
	}
	c.notifications = kept
	return n
}

func (c *Center) RemoveForOrder(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter(func(n models.Notification) bool { return n.OrderID != orderID })
}

// MarkRead marks the notification id as read, limited to orderIDs when given.
func (c *Center) MarkRead(id string, orderIDs []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := visibleTo(orderIDs)
	for i := range c.notifications {
		if c.notifications[i].ID == id && visible(c.notifications[i]) {
			c.notifications[i].Read = true
			return true
		}
	}
	return false
}

func (c *Center) MarkAllRead(orderIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := visibleTo(orderIDs)
	for i := range c.notifications {
		if visible(c.notifications[i]) {
			c.notifications[i].Read = true
		}
	}
}

// Clear removes one notification.
func (c *Center) Clear(id string, orderIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := visibleTo(orderIDs)
	c.filter(func(n models.Notification) bool { return n.ID != id || !visible(n) })
}

func (c *Center) ClearAll(orderIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := visibleTo(orderIDs)
	c.filter(func(n models.Notification) bool { return !visible(n) })
}

// List returns the notifications of orderIDs, newest first. A nil
// orderIDs lists everything.
func (c *Center) List(orderIDs []string) []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := visibleTo(orderIDs)
	out := make([]models.Notification, 0, len(c.notifications))
	for _, n := range c.notifications {
		if visible(n) {
			out = append(out, n)
		}
	}
	return out
}

func (c *Center) UnreadCount(orderIDs []string) int {
	count := 0
	for _, n := range c.List(orderIDs) {
		if !n.Read {
			count++
		}
	}
	return count
}

// ShowToast queues a toast for scope. It disappears after ToastTTL.
func (c *Center) ShowToast(scope string, kind models.ToastType, message string) models.Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := toast{
		Toast:   models.Toast{ID: uuid.NewString(), Type: kind, Message: message},
		expires: c.now().Add(ToastTTL),
	}
	c.toasts[scope] = append(c.pruned(scope), t)
	return t.Toast
}

func (c *Center) RemoveToast(scope, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var kept []toast
	for _, t := range c.pruned(scope) {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.setToasts(scope, kept)
}

// Toasts returns the visible toasts of scope, oldest first.
func (c *Center) Toasts(scope string) []models.Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.pruned(scope)
	c.setToasts(scope, live)

	out := make([]models.Toast, len(live))
	for i, t := range live {
		out[i] = t.Toast
	}
	return out
}

// pruned drops expired toasts of scope. Callers hold mu.
func (c *Center) pruned(scope string) []toast {
	now := c.now()
	var live []toast
	for _, t := range c.toasts[scope] {
		if now.Before(t.expires) {
			live = append(live, t)
		}
	}
	return live
}

func (c *Center) setToasts(scope string, list []toast) {
	if len(list) == 0 {
		delete(c.toasts, scope)
		return
	}
	c.toasts[scope] = list
}

func (c *Center) filter(keep func(models.Notification) bool) {
	kept := c.notifications[:0:0]
	for _, n := range c.notifications {
		if keep(n) {
			kept = append(kept, n)
		}
	}
	c.notifications = kept
}

func visibleTo(orderIDs []string) func(models.Notification) bool {
	if orderIDs == nil {
		return func(models.Notification) bool { return true }
	}
	set := make(map[string]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		set[id] = struct{}{}
	}
	return func(n models.Notification) bool {
		_, ok := set[n.OrderID]
		return ok
	}
}
