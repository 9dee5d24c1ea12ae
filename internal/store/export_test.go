package store

import "context"

// Hooks into unexported paths that depend on a live listener or on timing.

func (b *PostgresBackend) SubscribeForTest(ctx context.Context, collection string, fn func(Documents)) (func(), error) {
	return b.subscribe(ctx, collection, fn)
}

func (b *PostgresBackend) ReloadForTest(collection string) { b.reload(collection) }

func (b *LocalBackend) SetReadFileForTest(fn func(string) ([]byte, error)) {
	b.mu.Lock()
	b.readFile = fn
	b.mu.Unlock()
}

func (b *LocalBackend) ScanForTest() { b.scan() }
