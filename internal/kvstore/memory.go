package kvstore

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var ErrClosed = errors.New("store is closed")

// MemoryStore keeps everything in maps. Update works on copies and swaps them
// in only when the update function succeeds.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	assets  map[string]Blob
	closed  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
		assets:  make(map[string]Blob),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.records[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(v), true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	return m.Update(ctx, func(tx Tx) error { return tx.Set(key, value) })
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	return m.Update(ctx, func(tx Tx) error { return tx.Delete(key) })
}

func (m *MemoryStore) GetAsset(_ context.Context, key string) (*Blob, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	b, ok := m.assets[key]
	if !ok {
		return nil, false, nil
	}
	return &Blob{MimeType: b.MimeType, Data: cloneBytes(b.Data)}, true, nil
}

func (m *MemoryStore) SetAsset(ctx context.Context, key string, blob *Blob) error {
	return m.Update(ctx, func(tx Tx) error { return tx.SetAsset(key, blob) })
}

func (m *MemoryStore) DeleteAsset(ctx context.Context, key string) error {
	return m.Update(ctx, func(tx Tx) error { return tx.DeleteAsset(key) })
}

func (m *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	tx := &memoryTx{
		records: make(map[string][]byte, len(m.records)),
		assets:  make(map[string]Blob, len(m.assets)),
	}
	for k, v := range m.records {
		tx.records[k] = v
	}
	for k, v := range m.assets {
		tx.assets[k] = v
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.records = tx.records
	m.assets = tx.assets
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type memoryTx struct {
	records map[string][]byte
	assets  map[string]Blob
}

func (t *memoryTx) Get(key string) ([]byte, bool, error) {
	v, ok := t.records[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(v), true, nil
}

func (t *memoryTx) Set(key string, value []byte) error {
	t.records[key] = cloneBytes(value)
	return nil
}

func (t *memoryTx) Delete(key string) error {
	delete(t.records, key)
	return nil
}

func (t *memoryTx) SetAsset(key string, blob *Blob) error {
	if blob == nil {
		return errors.Errorf("nil asset for %s", key)
	}
	t.assets[key] = Blob{MimeType: blob.MimeType, Data: cloneBytes(blob.Data)}
	return nil
}

func (t *memoryTx) DeleteAsset(key string) error {
	delete(t.assets, key)
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
