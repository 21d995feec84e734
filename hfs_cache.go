// hfs_cache.go - fixed-size LRU block cache, per spec.md §4.5.7. The
// cache is single-threaded (cooperative); no locking within it, matching
// the teacher's single-threaded SystemBus region model adapted here.

package main

import "container/list"

type cacheKey struct {
	blockNum uint64
}

type cacheEntry struct {
	key    cacheKey
	data   []byte
	dirty  bool
	pinned int
}

// BlockCache is a fixed-size LRU pool keyed by (volume, blockNum), per
// spec.md §4.5.7. This kernel mounts at most one volume per cache
// instance, so the volume half of the key is implicit in which cache the
// caller holds.
type BlockCache struct {
	device    BlockDevice
	drive     int
	blockSize uint32
	capacity  int

	order   *list.List
	entries map[cacheKey]*list.Element

	Hits   uint64
	Misses uint64
}

// NewBlockCache constructs a cache of capacity buffers of blockSize bytes
// each, reading from and writing to drive on device on miss/eviction.
func NewBlockCache(device BlockDevice, drive int, blockSize uint32, capacity int) *BlockCache {
	return &BlockCache{
		device:    device,
		drive:     drive,
		blockSize: blockSize,
		capacity:  capacity,
		order:     list.New(),
		entries:   make(map[cacheKey]*list.Element),
	}
}

// Get returns a pinned buffer for blockNum, reading from disk on miss.
// The caller must call Release when done.
func (c *BlockCache) Get(blockNum uint64) ([]byte, error) {
	key := cacheKey{blockNum: blockNum}
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		ent := el.Value.(*cacheEntry)
		ent.pinned++
		c.Hits++
		return ent.data, nil
	}

	c.Misses++
	buf := make([]byte, c.blockSize)
	if err := c.device.ReadBlocks(c.drive, blockNum, 1, buf); err != nil {
		return nil, &HFSError{Kind: HFSErrBadVolume, Operation: "cache_get", Details: "disk read failed", Err: err}
	}

	if c.order.Len() >= c.capacity {
		if err := c.evictOne(); err != nil {
			return nil, err
		}
	}

	ent := &cacheEntry{key: key, data: buf, pinned: 1}
	el := c.order.PushFront(ent)
	c.entries[key] = el
	return ent.data, nil
}

// Release unpins buf; if dirty, marks it for write-back. Per spec.md
// §4.5.7.
func (c *BlockCache) Release(blockNum uint64, dirty bool) {
	key := cacheKey{blockNum: blockNum}
	el, ok := c.entries[key]
	if !ok {
		return
	}
	ent := el.Value.(*cacheEntry)
	if ent.pinned > 0 {
		ent.pinned--
	}
	if dirty {
		ent.dirty = true
	}
}

// evictOne evicts the least-recently-used unpinned buffer, issuing a
// synchronous write if it is dirty, per spec.md §4.5.7.
func (c *BlockCache) evictOne() error {
	for el := c.order.Back(); el != nil; el = el.Prev() {
		ent := el.Value.(*cacheEntry)
		if ent.pinned > 0 {
			continue
		}
		if ent.dirty {
			if err := c.device.WriteBlocks(c.drive, ent.key.blockNum, 1, ent.data); err != nil {
				return &HFSError{Kind: HFSErrBadVolume, Operation: "cache_evict", Details: "write-back failed", Err: err}
			}
		}
		c.order.Remove(el)
		delete(c.entries, ent.key)
		return nil
	}
	return &HFSError{Kind: HFSErrParam, Operation: "cache_evict", Details: "no unpinned buffer to evict"}
}

// Flush writes back every dirty buffer without evicting it, for unmount
// or explicit flush, per spec.md §4.5.7.
func (c *BlockCache) Flush() error {
	for el := c.order.Front(); el != nil; el = el.Next() {
		ent := el.Value.(*cacheEntry)
		if !ent.dirty {
			continue
		}
		if err := c.device.WriteBlocks(c.drive, ent.key.blockNum, 1, ent.data); err != nil {
			return &HFSError{Kind: HFSErrBadVolume, Operation: "cache_flush", Details: "write-back failed", Err: err}
		}
		ent.dirty = false
	}
	return nil
}
