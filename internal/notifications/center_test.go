package notifications_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/notifications"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestSetForOrder_ReplacesNotAppends(t *testing.T) {
	center := notifications.NewCenter()

	center.SetForOrder("FP1", "Order Confirmed!", "placed")
	center.SetForOrder("FP2", "Order Confirmed!", "placed")
	latest := center.SetForOrder("FP1", "Preparing", "in the oven")

	list := center.List(nil)
	require.Len(t, list, 2)
	assert.Equal(t, latest.ID, list[0].ID)
	assert.Equal(t, "Preparing", list[0].Title)
	assert.Equal(t, "FP2", list[1].OrderID)
	assert.False(t, list[0].Read)
}

func TestRemoveForOrder(t *testing.T) {
	center := notifications.NewCenter()
	center.SetForOrder("FP1", "a", "a")
	center.SetForOrder("FP2", "b", "b")

	center.RemoveForOrder("FP1")
	list := center.List(nil)
	require.Len(t, list, 1)
	assert.Equal(t, "FP2", list[0].OrderID)
}

func TestScopedReadAndClear(t *testing.T) {
	center := notifications.NewCenter()
	mine := center.SetForOrder("FP1", "a", "a")
	other := center.SetForOrder("FP2", "b", "b")
	own := []string{"FP1"}

	assert.Equal(t, 1, center.UnreadCount(own))
	assert.False(t, center.MarkRead(other.ID, own))
	assert.True(t, center.MarkRead(mine.ID, own))
	assert.Equal(t, 0, center.UnreadCount(own))
	assert.Equal(t, 1, center.UnreadCount(nil))

	center.MarkAllRead(nil)
	assert.Equal(t, 0, center.UnreadCount(nil))

	center.ClearAll(own)
	assert.Empty(t, center.List(own))
	assert.Len(t, center.List(nil), 1)

	center.Clear(other.ID, []string{})
	assert.Len(t, center.List(nil), 1)
	center.Clear(other.ID, nil)
	assert.Empty(t, center.List(nil))
}

func TestToasts_ExpireAndAreScoped(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	center := notifications.NewCenter().WithClock(clock.now)

	first := center.ShowToast("s1", models.ToastSuccess, "Order placed")
	clock.advance(2 * time.Second)
	center.ShowToast("s1", models.ToastInfo, "Preparing")
	center.ShowToast(notifications.AdminScope, models.ToastInfo, "New order")

	toasts := center.Toasts("s1")
	require.Len(t, toasts, 2)
	assert.Equal(t, first.ID, toasts[0].ID)
	assert.Len(t, center.Toasts(notifications.AdminScope), 1)

	clock.advance(1500 * time.Millisecond)
	toasts = center.Toasts("s1")
	require.Len(t, toasts, 1)
	assert.Equal(t, "Preparing", toasts[0].Message)

	center.RemoveToast("s1", toasts[0].ID)
	assert.Empty(t, center.Toasts("s1"))
}
