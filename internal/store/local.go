package store

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often local snapshot files are re-read.
const DefaultPollInterval = 2 * time.Second

// Namespaced keys of the on-device mirror.
var localKeys = map[string]string{
	CollectionMenuItems:   "flashpizza_menu_items",
	CollectionCoupons:     "flashpizza_coupons",
	CollectionOrders:      "flashpizza_orders",
	CollectionStoreConfig: "flashpizza_store_config",
}

// AcknowledgedOrdersKey holds the ids of orders an admin has acknowledged.
const AcknowledgedOrdersKey = "flashpizza_acknowledged_orders"

// LocalPath returns the snapshot file of a collection inside dir.
func LocalPath(dir, collection string) string {
	key, ok := localKeys[collection]
	if !ok {
		key = "flashpizza_" + collection
	}
	return filepath.Join(dir, key+".json")
}

type localWatcher struct {
	collection string
	fn         func(Documents)
}

// LocalBackend keeps each collection as a JSON snapshot file. Writes apply to
// an in-memory mirror first, persist second and are broadcast to in-process
// watchers right away. A poll loop picks up changes made by other processes.
type LocalBackend struct {
	dir      string
	interval time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	mirror   map[string]Documents
	hashes   map[string][sha256.Size]byte
	versions map[string]uint64
	watchers map[int]localWatcher
	nextID   int
	closed   bool
	readFile func(string) ([]byte, error)

	// emitMu keeps deliveries in write order.
	emitMu sync.Mutex

	stop chan struct{}
	done chan struct{}
}

// NewLocalBackend opens dir, creating it when missing, and starts polling.
func NewLocalBackend(dir string, interval time.Duration, log *zap.Logger) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}

	b := &LocalBackend{
		dir:      dir,
		interval: interval,
		log:      log.Named("local-store"),
		mirror:   make(map[string]Documents),
		hashes:   make(map[string][sha256.Size]byte),
		versions: make(map[string]uint64),
		watchers: make(map[int]localWatcher),
		readFile: os.ReadFile,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.poll()
	return b, nil
}

func (b *LocalBackend) Mode() Mode { return ModeLocal }

func (b *LocalBackend) Get(_ context.Context, collection string) (Documents, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	docs, err := b.current(collection)
	if err != nil {
		return nil, err
	}
	return docs.Clone(), nil
}

func (b *LocalBackend) Set(_ context.Context, collection, id string, doc json.RawMessage) error {
	return b.write(collection, func(docs Documents) (Documents, error) {
		docs[id] = append(json.RawMessage(nil), doc...)
		return docs, nil
	})
}

func (b *LocalBackend) Merge(_ context.Context, collection, id string, fields map[string]any) error {
	return b.write(collection, func(docs Documents) (Documents, error) {
		merged, err := mergeFields(docs[id], fields)
		if err != nil {
			return nil, err
		}
		docs[id] = merged
		return docs, nil
	})
}

func (b *LocalBackend) Remove(_ context.Context, collection, id string) error {
	return b.write(collection, func(docs Documents) (Documents, error) {
		delete(docs, id)
		return docs, nil
	})
}

// Watch registers fn and delivers the current snapshot before returning.
func (b *LocalBackend) Watch(ctx context.Context, collection string, fn func(Documents)) (func(), error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	docs, err := b.current(collection)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	id := b.nextID
	b.nextID++
	b.watchers[id] = localWatcher{collection: collection, fn: fn}
	b.emitMu.Lock()
	b.mu.Unlock()

	fn(docs.Clone())
	b.emitMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.watchers, id)
			b.mu.Unlock()
		})
	}
	if ctx != nil {
		context.AfterFunc(ctx, cancel)
	}
	return cancel, nil
}

// Close stops the poll loop. Pending watchers receive nothing further.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.watchers = map[int]localWatcher{}
	b.mu.Unlock()

	close(b.stop)
	<-b.done
	return nil
}

// write applies change to the mirror, persists it and broadcasts the result.
// A persist failure is returned but the mirror keeps the new state.
func (b *LocalBackend) write(collection string, change func(Documents) (Documents, error)) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	docs, err := b.current(collection)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	next, err := change(docs.Clone())
	if err != nil {
		b.mu.Unlock()
		return err
	}
	if next == nil {
		next = Documents{}
	}
	b.mirror[collection] = next
	b.versions[collection]++

	persistErr := b.persist(collection, next)
	targets := b.targets(collection)
	b.emitMu.Lock()
	b.mu.Unlock()

	for _, fn := range targets {
		fn(next.Clone())
	}
	b.emitMu.Unlock()

	if persistErr != nil {
		b.log.Warn("snapshot persist failed", zap.String("collection", collection), zap.Error(persistErr))
		return fmt.Errorf("persist %s: %w", collection, persistErr)
	}
	return nil
}

// current returns the mirror for collection, loading the file on first use.
// Callers hold mu.
func (b *LocalBackend) current(collection string) (Documents, error) {
	if docs, ok := b.mirror[collection]; ok {
		return docs, nil
	}
	raw, err := b.read(collection)
	if err != nil {
		return nil, err
	}
	docs, err := decodeSnapshot(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", collection, err)
	}
	b.mirror[collection] = docs
	b.hashes[collection] = hashOf(raw)
	return docs, nil
}

func (b *LocalBackend) read(collection string) ([]byte, error) {
	return readSnapshot(b.readFile, LocalPath(b.dir, collection))
}

func readSnapshot(readFile func(string) ([]byte, error), path string) ([]byte, error) {
	raw, err := readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return raw, err
}

func (b *LocalBackend) persist(collection string, docs Documents) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(LocalPath(b.dir, collection), raw); err != nil {
		return err
	}
	b.hashes[collection] = hashOf(raw)
	return nil
}

func (b *LocalBackend) targets(collection string) []func(Documents) {
	var out []func(Documents)
	for _, w := range b.watchers {
		if w.collection == collection {
			out = append(out, w.fn)
		}
	}
	return out
}

func (b *LocalBackend) poll() {
	defer close(b.done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.scan()
		}
	}
}

// scan re-reads every watched collection and delivers the ones whose file
// content hash moved since it was last seen. A read that raced an in-process
// write is dropped; the next tick sees the file that write produced.
func (b *LocalBackend) scan() {
	b.mu.Lock()
	watched := map[string]uint64{}
	for _, w := range b.watchers {
		watched[w.collection] = b.versions[w.collection]
	}
	readFile := b.readFile
	b.mu.Unlock()

	for collection, version := range watched {
		raw, err := readSnapshot(readFile, LocalPath(b.dir, collection))
		if err != nil {
			b.log.Warn("snapshot read failed", zap.String("collection", collection), zap.Error(err))
			continue
		}
		sum := hashOf(raw)

		b.mu.Lock()
		if b.closed || b.versions[collection] != version || b.hashes[collection] == sum {
			b.mu.Unlock()
			continue
		}
		b.hashes[collection] = sum
		docs, err := decodeSnapshot(raw)
		if err != nil {
			b.mu.Unlock()
			b.log.Warn("snapshot decode failed", zap.String("collection", collection), zap.Error(err))
			continue
		}
		b.mirror[collection] = docs
		targets := b.targets(collection)
		b.emitMu.Lock()
		b.mu.Unlock()

		for _, fn := range targets {
			fn(docs.Clone())
		}
		b.emitMu.Unlock()
	}
}

func decodeSnapshot(raw []byte) (Documents, error) {
	docs := Documents{}
	if len(raw) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// hashOf maps a missing file to the zero hash.
func hashOf(raw []byte) [sha256.Size]byte {
	if raw == nil {
		return [sha256.Size]byte{}
	}
	return sha256.Sum256(raw)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
