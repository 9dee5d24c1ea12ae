// Package alarm rings a repeating signal while new orders wait for the admin.
package alarm

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/flashpizza/internal/models"
)

// DefaultInterval is the pause between two rings.
const DefaultInterval = 3 * time.Second

// Ringer produces one signal.
type Ringer interface {
	Ring(ctx context.Context) error
}

// RingerFunc adapts a function to Ringer.
type RingerFunc func(ctx context.Context) error

func (f RingerFunc) Ring(ctx context.Context) error { return f(ctx) }

// BellRinger writes the terminal bell character to w.
type BellRinger struct {
	W io.Writer
}

func (b BellRinger) Ring(context.Context) error {
	_, err := io.WriteString(b.W, "\a")
	return err
}

// Alarm runs the ring loop. Evaluate must be called with every orders update.
type Alarm struct {
	ringer   Ringer
	interval time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(ringer Ringer, interval time.Duration, log *zap.Logger) *Alarm {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Alarm{ringer: ringer, interval: interval, log: log.Named("alarm")}
}

// Evaluate starts the loop when at least one order is new and stops it when
// none remain.
func (a *Alarm) Evaluate(orders []models.Order) {
	pending := 0
	for _, o := range orders {
		if o.Status == models.OrderStatusNew {
			pending++
		}
	}
	if pending > 0 {
		a.start(pending)
		return
	}
	a.Stop()
}

// Active reports whether the loop is running.
func (a *Alarm) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// Stop halts the loop and waits for it to exit.
func (a *Alarm) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	a.log.Info("alarm stopped")
}

func (a *Alarm) start(pending int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	a.log.Info("alarm started", zap.Int("new_orders", pending))
	go a.loop(ctx, a.done)
}

func (a *Alarm) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.ring(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.ring(ctx)
		}
	}
}

// ring swallows ringer failures; the alarm is best effort.
func (a *Alarm) ring(ctx context.Context) {
	if a.ringer == nil {
		return
	}
	if err := a.ringer.Ring(ctx); err != nil {
		a.log.Debug("ring failed", zap.Error(err))
	}
}
