package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// AckFile persists acknowledged order ids as a JSON array.
type AckFile struct {
	path string
	mu   sync.Mutex
}

func NewAckFile(dir string) (*AckFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &AckFile{path: filepath.Join(dir, AcknowledgedOrdersKey+".json")}, nil
}

// Load returns the acknowledged ids. A missing file is an empty set.
func (f *AckFile) Load() (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Add records ids as acknowledged.
func (f *AckFile) Add(ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	set, err := f.load()
	if err != nil {
		return err
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}

	list := make([]string, 0, len(set))
	for id := range set {
		list = append(list, id)
	}
	sort.Strings(list)

	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return writeFileAtomic(f.path, raw)
}

func (f *AckFile) load() (map[string]struct{}, error) {
	set := map[string]struct{}{}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return nil, err
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode acknowledged orders: %w", err)
	}
	for _, id := range list {
		set[id] = struct{}{}
	}
	return set, nil
}
