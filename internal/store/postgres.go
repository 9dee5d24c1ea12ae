package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/flashpizza/internal/models"
)

// NotifyChannel carries the name of the collection that changed.
const NotifyChannel = "flashpizza_documents"

const (
	upsertSQL = `INSERT INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?::jsonb, ?) ` +
		`ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`
	lockSQL   = `SELECT body FROM documents WHERE collection = ? AND id = ? FOR UPDATE`
	deleteSQL = `DELETE FROM documents WHERE collection = ? AND id = ?`
	notifySQL = `SELECT pg_notify(?, ?)`
)

type pgWatcher struct {
	collection string
	fn         func(Documents)
}

// PostgresBackend stores documents in a single jsonb table and pushes changes
// to watchers through LISTEN/NOTIFY.
type PostgresBackend struct {
	db  *gorm.DB
	dsn string
	log *zap.Logger
	now func() time.Time

	mu       sync.Mutex
	watchers map[int]pgWatcher
	nextID   int
	listener *pq.Listener
	closed   bool

	// deliverMu orders the initial snapshot of a watcher against reloads,
	// so a watcher never sees an older snapshot after a newer one.
	deliverMu sync.Mutex

	stop chan struct{}
	done chan struct{}
}

// NewPostgresBackend wraps an open connection. dsn is used for the
// notification listener, which connects on the first Watch.
func NewPostgresBackend(db *gorm.DB, dsn string, log *zap.Logger) *PostgresBackend {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresBackend{
		db:       db,
		dsn:      dsn,
		log:      log.Named("pg-store"),
		now:      time.Now,
		watchers: make(map[int]pgWatcher),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (b *PostgresBackend) Mode() Mode { return ModeRealtime }

func (b *PostgresBackend) Get(ctx context.Context, collection string) (Documents, error) {
	var rows []models.Document
	if err := b.db.WithContext(ctx).Where("collection = ?", collection).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	docs := make(Documents, len(rows))
	for _, row := range rows {
		docs[row.ID] = json.RawMessage(row.Body)
	}
	return docs, nil
}

func (b *PostgresBackend) Set(ctx context.Context, collection, id string, doc json.RawMessage) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(upsertSQL, collection, id, string(doc), b.now()).Error; err != nil {
			return fmt.Errorf("set %s/%s: %w", collection, id, err)
		}
		return notify(tx, collection)
	})
}

func (b *PostgresBackend) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var body string
		if err := tx.Raw(lockSQL, collection, id).Scan(&body).Error; err != nil {
			return fmt.Errorf("lock %s/%s: %w", collection, id, err)
		}
		merged, err := mergeFields(json.RawMessage(body), fields)
		if err != nil {
			return fmt.Errorf("merge %s/%s: %w", collection, id, err)
		}
		if err := tx.Exec(upsertSQL, collection, id, string(merged), b.now()).Error; err != nil {
			return fmt.Errorf("merge %s/%s: %w", collection, id, err)
		}
		return notify(tx, collection)
	})
}

func (b *PostgresBackend) Remove(ctx context.Context, collection, id string) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(deleteSQL, collection, id).Error; err != nil {
			return fmt.Errorf("remove %s/%s: %w", collection, id, err)
		}
		return notify(tx, collection)
	})
}

func notify(tx *gorm.DB, collection string) error {
	if err := tx.Exec(notifySQL, NotifyChannel, collection).Error; err != nil {
		return fmt.Errorf("notify %s: %w", collection, err)
	}
	return nil
}

// Watch delivers the current collection and then every pushed change.
func (b *PostgresBackend) Watch(ctx context.Context, collection string, fn func(Documents)) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	if err := b.listen(); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	b.mu.Unlock()
	return b.subscribe(ctx, collection, fn)
}

// subscribe registers fn and delivers its first snapshot while holding
// deliverMu.
func (b *PostgresBackend) subscribe(ctx context.Context, collection string, fn func(Documents)) (func(), error) {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	id := b.nextID
	b.nextID++
	b.watchers[id] = pgWatcher{collection: collection, fn: fn}
	b.mu.Unlock()

	docs, err := b.Get(ctx, collection)
	if err != nil {
		b.unwatch(id)
		return nil, err
	}
	fn(docs)

	var once sync.Once
	cancel := func() { once.Do(func() { b.unwatch(id) }) }
	context.AfterFunc(ctx, cancel)
	return cancel, nil
}

func (b *PostgresBackend) unwatch(id int) {
	b.mu.Lock()
	delete(b.watchers, id)
	b.mu.Unlock()
}

// listen starts the notification listener once. Callers hold mu.
func (b *PostgresBackend) listen() error {
	if b.listener != nil {
		return nil
	}

	listener := pq.NewListener(b.dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			b.log.Warn("listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	if err := listener.Listen(NotifyChannel); err != nil {
		listener.Close()
		return fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}
	b.listener = listener
	go b.loop(listener)
	return nil
}

func (b *PostgresBackend) loop(listener *pq.Listener) {
	defer close(b.done)

	for {
		select {
		case <-b.stop:
			return
		case n, ok := <-listener.Notify:
			if !ok {
				return
			}
			if n == nil {
				// Reconnected; notifications may have been missed.
				b.reloadAll()
				continue
			}
			b.reload(n.Extra)
		case <-time.After(90 * time.Second):
			go func() {
				if err := listener.Ping(); err != nil {
					b.log.Warn("listener ping failed", zap.Error(err))
				}
			}()
		}
	}
}

func (b *PostgresBackend) reloadAll() {
	b.mu.Lock()
	seen := map[string]struct{}{}
	for _, w := range b.watchers {
		seen[w.collection] = struct{}{}
	}
	b.mu.Unlock()

	for collection := range seen {
		b.reload(collection)
	}
}

func (b *PostgresBackend) reload(collection string) {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	var targets []func(Documents)
	for _, w := range b.watchers {
		if w.collection == collection {
			targets = append(targets, w.fn)
		}
	}
	b.mu.Unlock()
	if len(targets) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	docs, err := b.Get(ctx, collection)
	if err != nil {
		b.log.Warn("reload failed", zap.String("collection", collection), zap.Error(err))
		return
	}
	for _, fn := range targets {
		fn(docs.Clone())
	}
}

// Close stops the listener. The gorm connection is owned by the caller.
func (b *PostgresBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	listener := b.listener
	b.watchers = map[int]pgWatcher{}
	b.mu.Unlock()

	if listener == nil {
		return nil
	}
	close(b.stop)
	<-b.done
	return listener.Close()
}
