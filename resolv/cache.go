package resolv

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"

	"github.com/birkland/objinfo"
	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	"github.com/pkg/errors"
)

// Cache memoizes resolved object metadata.  It is best effort, never a source
// of truth:  a failed Get is a miss, and a failed Put is reported but leaves
// the resolution intact.
type Cache interface {
	Get(ctx context.Context, key string) (objinfo.ObjectInfo, bool)
	Put(ctx context.Context, key string, info objinfo.ObjectInfo) error
}

// MemoryCache is an unbounded in-memory Cache.  Entries live as long as the
// cache does.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]objinfo.ObjectInfo
}

// NewMemoryCache creates an empty MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]objinfo.ObjectInfo{}}
}

// Get returns a copy of the cached value, if any
func (c *MemoryCache) Get(_ context.Context, key string) (objinfo.ObjectInfo, bool) {
	c.mu.RLock()
	info, ok := c.entries[key]
	c.mu.RUnlock()

	return clone(info), ok
}

// Put inserts or overwrites the value for the given key
func (c *MemoryCache) Put(_ context.Context, key string, info objinfo.ObjectInfo) error {
	info = clone(info)

	c.mu.Lock()
	c.entries[key] = info
	c.mu.Unlock()

	return nil
}

// Len is the number of cached entries
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// The attachment is the only part of an ObjectInfo that is shared by reference
func clone(info objinfo.ObjectInfo) objinfo.ObjectInfo {
	if info.MeshAttachment != nil {
		info.MeshAttachment = append([]byte{}, info.MeshAttachment...)
	}
	return info
}

// DatastoreCache keeps JSON encoded object metadata in a datastore, under
// /objinfo/<namespace>/<escaped key>.  Read errors count as misses.
type DatastoreCache struct {
	ds        datastore.Datastore
	namespace string
}

// NewDatastoreCache creates a cache over the given datastore.  A nil datastore
// means a fresh, thread safe, in-memory map datastore.
func NewDatastoreCache(ds datastore.Datastore, namespace string) *DatastoreCache {
	if ds == nil {
		ds = dssync.MutexWrap(datastore.NewMapDatastore())
	}

	return &DatastoreCache{
		ds:        ds,
		namespace: escapeKey(namespace),
	}
}

// Get reads and decodes the cached value, if any
func (c *DatastoreCache) Get(ctx context.Context, key string) (objinfo.ObjectInfo, bool) {
	var info objinfo.ObjectInfo

	data, err := c.ds.Get(ctx, c.key(key))
	if err != nil {
		return info, false
	}

	if err := json.Unmarshal(data, &info); err != nil {
		return objinfo.ObjectInfo{}, false
	}
	return info, true
}

// Put encodes and writes the value for the given key
func (c *DatastoreCache) Put(ctx context.Context, key string, info objinfo.ObjectInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return errors.Wrapf(err, "could not encode object info for %s", key)
	}

	return errors.Wrapf(c.ds.Put(ctx, c.key(key), data), "could not write object info for %s", key)
}

func (c *DatastoreCache) key(key string) datastore.Key {
	return datastore.KeyWithNamespaces([]string{"objinfo", c.namespace, escapeKey(key)})
}

// Datastore keys are cleaned like paths, so solidi and dots have to go
func escapeKey(s string) string {
	if s == "" {
		return "_"
	}
	return strings.ReplaceAll(url.QueryEscape(s), ".", "%2E")
}
