package vault

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("vault: record not found")
)

// InMemoryVault keeps records in a map guarded by a read-write lock. Values are
// copied on the way in and out so callers cannot alias stored records.
type InMemoryVault struct {
	lock    sync.RWMutex
	records map[string][]byte
}

func NewInMemoryVault() *InMemoryVault {
	return &InMemoryVault{
		records: make(map[string][]byte),
	}
}

func (store *InMemoryVault) Import(id string, data []byte) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	store.records[id] = clone(data)
	return nil
}

func (store *InMemoryVault) ImportIfAbsent(id string, data []byte) (bool, error) {
	store.lock.Lock()
	defer store.lock.Unlock()

	if _, ok := store.records[id]; ok {
		return false, nil
	}
	store.records[id] = clone(data)
	return true, nil
}

func (store *InMemoryVault) Get(id string) ([]byte, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()

	data, ok := store.records[id]
	if !ok {
		return nil, errors.WithMessagef(ErrNotFound, "vault: id %s", id)
	}
	return clone(data), nil
}

func (store *InMemoryVault) Has(id string) bool {
	store.lock.RLock()
	defer store.lock.RUnlock()

	_, ok := store.records[id]
	return ok
}

func (store *InMemoryVault) Delete(id string) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	delete(store.records, id)
	return nil
}

func (store *InMemoryVault) IDs() []string {
	store.lock.RLock()
	defer store.lock.RUnlock()

	ids := make([]string, 0, len(store.records))
	for id := range store.records {
		ids = append(ids, id)
	}
	return ids
}

func clone(data []byte) []byte {
	return append([]byte(nil), data...)
}
