package blob

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore is a read-through LRU in front of another Store. Backup runs
// resolve the same receipt bytes for several record types in a row, so
// repeated gets are the common case.
type CachedStore struct {
	inner Store
	cache *lru.Cache[string, []byte]
}

// NewCachedStore wraps inner with an LRU of the given size.
func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

func (c *CachedStore) Put(id string, data []byte) error {
	if err := c.inner.Put(id, data); err != nil {
		return err
	}
	c.cache.Add(id, data)
	return nil
}

func (c *CachedStore) Get(id string) ([]byte, error) {
	if data, ok := c.cache.Get(id); ok {
		return data, nil
	}
	data, err := c.inner.Get(id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(id, data)
	return data, nil
}

// SetFilename passes through to the inner store when it keeps filenames.
func (c *CachedStore) SetFilename(id, name string) error {
	if named, ok := c.inner.(NamedStore); ok {
		return named.SetFilename(id, name)
	}
	return nil
}

// Filename passes through to the inner store when it keeps filenames.
func (c *CachedStore) Filename(id string) (string, error) {
	if named, ok := c.inner.(NamedStore); ok {
		return named.Filename(id)
	}
	return "", nil
}
