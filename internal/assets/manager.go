package assets

import (
	"context"
	"fmt"

	"github.com/Faultbox/showroom/internal/model"
)

// Manager fetches model files through a source with a byte cache in front.
// Decoding is never cached: every Load returns a fresh asset so callers can
// mutate their copy without sharing.
type Manager struct {
	source Source
	cache  *Cache
}

func NewManager(source Source) *Manager {
	return &Manager{
		source: source,
		cache:  NewCache(),
	}
}

// Bytes returns the raw file contents, from cache when possible.
func (m *Manager) Bytes(ctx context.Context, path string) ([]byte, error) {
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}
	data, err := m.source.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	m.cache.Set(path, data)
	return data, nil
}

// Load fetches and decodes one model. It satisfies viewer.LoadFunc.
func (m *Manager) Load(ctx context.Context, path string) (*model.Asset, error) {
	data, err := m.Bytes(ctx, path)
	if err != nil {
		return nil, err
	}
	asset, err := model.Decode(data, path)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return asset, nil
}

// Invalidate drops the cached bytes for path.
func (m *Manager) Invalidate(path string) {
	m.cache.Invalidate(path)
}

// CacheStats reports cache hits and misses.
func (m *Manager) CacheStats() (hits, misses int) {
	return m.cache.Stats()
}
