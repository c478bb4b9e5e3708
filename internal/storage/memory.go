package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// MemoryStorage is an in-process BlobStorage used by tests and local runs.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]map[string]memoryObject

	// Now is swappable so tests can control modification times.
	Now func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]map[string]memoryObject),
		Now:     time.Now,
	}
}

func (m *MemoryStorage) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[bucket][key]
	if !ok {
		return nil, ErrNotFound
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, nil
}

func (m *MemoryStorage) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.objects[bucket] == nil {
		m.objects[bucket] = make(map[string]memoryObject)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[bucket][key] = memoryObject{
		data:         stored,
		contentType:  contentType,
		lastModified: m.Now(),
	}
	return nil
}

// PutWithTime stores an object with an explicit modification time. Tests use
// it to build retention scenarios.
func (m *MemoryStorage) PutWithTime(bucket, key string, data []byte, lastModified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.objects[bucket] == nil {
		m.objects[bucket] = make(map[string]memoryObject)
	}
	m.objects[bucket][key] = memoryObject{data: data, lastModified: lastModified}
}

func (m *MemoryStorage) List(ctx context.Context, bucket, prefix, token string, limit int) ([]ObjectInfo, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key := range m.objects[bucket] {
		if strings.HasPrefix(key, prefix) && key > token {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	next := ""
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
		next = keys[len(keys)-1]
	}

	infos := make([]ObjectInfo, 0, len(keys))
	for _, key := range keys {
		infos = append(infos, ObjectInfo{
			Key:          key,
			LastModified: m.objects[bucket][key].lastModified,
		})
	}
	return infos, next, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[bucket][key]; !ok {
		return ErrNotFound
	}
	delete(m.objects[bucket], key)
	return nil
}
