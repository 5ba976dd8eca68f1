package convindex

import (
	"sort"
	"time"
)

// CacheCapacity bounds the preview cache. Eviction drops the numerically
// smallest message ids first: ids are assigned monotonically, so id order
// approximates recency without tracking accesses.
const CacheCapacity = 200

type previewMeta struct {
	preview   string
	timestamp time.Time
	senderID  int64
}

type previewCache struct {
	capacity int
	meta     map[int64]previewMeta
}

func newPreviewCache(capacity int) *previewCache {
	return &previewCache{capacity: capacity, meta: make(map[int64]previewMeta)}
}

func (c *previewCache) put(id int64, preview string, ts time.Time, senderID int64) {
	c.meta[id] = previewMeta{preview: preview, timestamp: ts, senderID: senderID}
}

// refresh rewrites the preview of an already-cached message, keeping its
// timestamp and sender. Unknown ids are ignored: an edit to an evicted
// message has nothing to update.
func (c *previewCache) refresh(id int64, preview string) {
	meta, ok := c.meta[id]
	if !ok {
		return
	}
	meta.preview = preview
	c.meta[id] = meta
}

func (c *previewCache) remove(id int64) {
	delete(c.meta, id)
}

func (c *previewCache) get(id int64) (previewMeta, bool) {
	meta, ok := c.meta[id]
	return meta, ok
}

func (c *previewCache) len() int { return len(c.meta) }

// evict enforces the capacity bound after a batch of writes.
func (c *previewCache) evict() {
	over := len(c.meta) - c.capacity
	if over <= 0 {
		return
	}
	ids := make([]int64, 0, len(c.meta))
	for id := range c.meta {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids[:over] {
		delete(c.meta, id)
	}
}
