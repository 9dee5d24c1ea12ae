package alarm_test

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/flashpizza/internal/alarm"
	"github.com/example/flashpizza/internal/models"
)

func orders(statuses ...models.OrderStatus) []models.Order {
	out := make([]models.Order, len(statuses))
	for i, s := range statuses {
		out[i] = models.Order{ID: string(rune('A' + i)), Status: s}
	}
	return out
}

func TestAlarm_StartsAndStopsWithNewOrders(t *testing.T) {
	var rings atomic.Int32
	a := alarm.New(alarm.RingerFunc(func(context.Context) error {
		rings.Add(1)
		return nil
	}), 10*time.Millisecond, nil)
	defer a.Stop()

	a.Evaluate(orders(models.OrderStatusPreparing, models.OrderStatusCompleted))
	assert.False(t, a.Active())

	a.Evaluate(orders(models.OrderStatusNew, models.OrderStatusPreparing))
	assert.True(t, a.Active())
	assert.Eventually(t, func() bool { return rings.Load() >= 3 }, time.Second, 5*time.Millisecond)

	// Re-evaluating while running does not start a second loop.
	a.Evaluate(orders(models.OrderStatusNew, models.OrderStatusNew))
	assert.True(t, a.Active())

	a.Evaluate(orders(models.OrderStatusPreparing))
	assert.False(t, a.Active())

	stopped := rings.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, stopped, rings.Load())
}

func TestAlarm_RingsImmediately(t *testing.T) {
	var rings atomic.Int32
	a := alarm.New(alarm.RingerFunc(func(context.Context) error {
		rings.Add(1)
		return nil
	}), time.Hour, nil)
	defer a.Stop()

	a.Evaluate(orders(models.OrderStatusNew))
	assert.Eventually(t, func() bool { return rings.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestAlarm_SwallowsRingerFailures(t *testing.T) {
	var calls atomic.Int32
	a := alarm.New(alarm.RingerFunc(func(context.Context) error {
		calls.Add(1)
		return errors.New("audio unsupported")
	}), 5*time.Millisecond, nil)

	a.Evaluate(orders(models.OrderStatusNew))
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, a.Active())
	a.Stop()
	assert.False(t, a.Active())
}

func TestBellRinger(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, alarm.BellRinger{W: &buf}.Ring(context.Background()))
	assert.Equal(t, "\a", buf.String())
}
