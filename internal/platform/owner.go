package platform

import "sync"

// ownerCache memoizes owner-id to name lookups; a tree usually has only a
// handful of distinct owners.
type ownerCache struct {
	names sync.Map // string -> string
}

func (c *ownerCache) lookup(key string, resolve func() (string, error)) (string, error) {
	if v, ok := c.names.Load(key); ok {
		return v.(string), nil //nolint:forcetypeassert // only strings are stored
	}
	name, err := resolve()
	if err != nil {
		return "", err
	}
	c.names.Store(key, name)
	return name, nil
}
