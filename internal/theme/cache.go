package theme

import (
	"encoding/json"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Cache memoizes resolved trees for a single request. Entries are keyed by a
// hash of the override layers, so a different override never sees a stale
// tree. Create one per request; never share it across requests.
type Cache struct {
	resolver *Resolver
	req      RequestContext

	mu      sync.Mutex
	entries map[uint64]Tree
}

// NewCache binds a cache to one resolver and one request
func NewCache(resolver *Resolver, req RequestContext) *Cache {
	return &Cache{
		resolver: resolver,
		req:      req,
		entries:  make(map[uint64]Tree),
	}
}

// Resolve returns the tree for the overrides, resolving it on first use.
// The returned tree is shared by later calls with equal overrides and must
// not be modified.
func (c *Cache) Resolve(definitionOverride, callOverride Tree) Tree {
	key := cacheKey(definitionOverride, callOverride)

	c.mu.Lock()
	defer c.mu.Unlock()

	if tree, ok := c.entries[key]; ok {
		return tree
	}
	tree := c.resolver.Resolve(c.req, definitionOverride, callOverride)
	c.entries[key] = tree
	return tree
}

// Len returns the number of cached trees
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheKey hashes the canonical JSON encoding (map keys sorted) of both layers.
// Values JSON cannot encode fall back to their %v form.
func cacheKey(layers ...Tree) uint64 {
	d := xxhash.New()
	for _, layer := range layers {
		if len(layer) == 0 {
			d.WriteString("{}")
		} else if encoded, err := json.Marshal(layer); err == nil {
			d.Write(encoded)
		} else {
			d.WriteString(formatValue(map[string]interface{}(layer)))
		}
		d.WriteString("\x00")
	}
	return d.Sum64()
}
