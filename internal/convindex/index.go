// Package convindex maintains the ordered, deduplicated set of recent
// conversations together with their cached preview metadata.
//
// The index is the single mutation point for both the real-time path and
// the backfill path: all writes serialise on its mutex, so the sorted
// sequence and the lookup tables can never disagree.
package convindex

import (
	"sort"
	"sync"
	"time"

	"github.com/mosaicdim/recents/internal/model"
)

type entry struct {
	key model.ConversationKey

	// display data the key's canonical form loses
	topic      string
	recipients []int64

	latestID int64
}

// Conversation is the read view of one index entry, joined with whatever
// preview metadata is still cached for its latest message. Key doubles as
// the opaque navigation destination for opening the conversation.
type Conversation struct {
	Key        model.ConversationKey `json:"key"`
	Topic      string                `json:"topic,omitempty"`
	Recipients []int64               `json:"recipients,omitempty"`
	LatestID   int64                 `json:"latest_id"`
	Timestamp  time.Time             `json:"timestamp,omitempty"`
	SenderID   int64                 `json:"sender_id,omitempty"`
	Preview    string                `json:"preview,omitempty"`
	HasPreview bool                  `json:"has_preview"`
}

// Index is the ordered conversation set. Entries are kept strictly
// descending by latest message id; ids are globally unique so ties cannot
// occur.
type Index struct {
	mu      sync.Mutex
	entries []*entry

	// latest-id lookup tables, kept exactly consistent with entries
	topicLatest map[int64]map[string]int64
	dmLatest    map[string]int64

	cache *previewCache

	subsMu sync.Mutex
	subs   map[string]chan struct{}
}

func New() *Index {
	return &Index{
		topicLatest: make(map[int64]map[string]int64),
		dmLatest:    make(map[string]int64),
		cache:       newPreviewCache(CacheCapacity),
		subs:        make(map[string]chan struct{}),
	}
}

// UpsertMessage applies one message to the index and notifies subscribers.
func (ix *Index) UpsertMessage(msg *model.Message, previewText string) {
	ix.mu.Lock()
	ix.upsertLocked(msg, previewText)
	ix.cache.evict()
	ix.mu.Unlock()

	ix.notify()
}

// UpsertBatch applies a backfill batch as one logical mutation: subscribers
// see a single change signal after the whole batch has landed.
func (ix *Index) UpsertBatch(msgs []*model.Message, previews []string) {
	if len(msgs) == 0 {
		return
	}

	ix.mu.Lock()
	for i, msg := range msgs {
		ix.upsertLocked(msg, previews[i])
	}
	ix.cache.evict()
	ix.mu.Unlock()

	ix.notify()
}

// ApplyEdit refreshes cached previews for edited messages. Edits never move
// a message between conversations, so sort order and identity are
// untouched.
func (ix *Index) ApplyEdit(ids []int64, previewText string) {
	ix.mu.Lock()
	for _, id := range ids {
		ix.cache.refresh(id, previewText)
	}
	ix.mu.Unlock()

	ix.notify()
}

// ApplyDelete drops cached preview data for deleted messages. The
// conversations themselves stay listed: recomputing a true latest head
// would need per-conversation history the index does not keep, so a deleted
// head simply shows no preview until a newer message supersedes it.
func (ix *Index) ApplyDelete(ids []int64) {
	ix.mu.Lock()
	for _, id := range ids {
		ix.cache.remove(id)
	}
	ix.mu.Unlock()

	ix.notify()
}

// Conversations returns the current list, newest first.
func (ix *Index) Conversations() []Conversation {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	out := make([]Conversation, 0, len(ix.entries))
	for _, e := range ix.entries {
		c := Conversation{
			Key:        e.key,
			Topic:      e.topic,
			Recipients: e.recipients,
			LatestID:   e.latestID,
		}
		if meta, ok := ix.cache.get(e.latestID); ok {
			c.Timestamp = meta.timestamp
			c.SenderID = meta.senderID
			c.Preview = meta.preview
			c.HasPreview = true
		}
		out = append(out, c)
	}
	return out
}

// Len reports the number of listed conversations.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.entries)
}

// Restore seeds the index from a saved snapshot. It only applies to an
// empty index and does not notify: it runs before any reader or writer is
// wired up.
func (ix *Index) Restore(convs []Conversation) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(ix.entries) > 0 {
		return
	}
	for _, c := range convs {
		if _, exists := ix.latestLocked(c.Key); exists {
			continue
		}
		e := &entry{key: c.Key, topic: c.Topic, recipients: c.Recipients, latestID: c.LatestID}
		ix.insertLocked(e)
		ix.setLatestLocked(c.Key, c.LatestID)
		if c.HasPreview {
			ix.cache.put(c.LatestID, c.Preview, c.Timestamp, c.SenderID)
		}
	}
	ix.cache.evict()
}

func (ix *Index) upsertLocked(msg *model.Message, previewText string) {
	key := msg.Key()

	if cur, ok := ix.latestLocked(key); ok {
		if msg.ID < cur {
			// out-of-order or duplicate delivery
			return
		}
		ix.cache.put(msg.ID, previewText, msg.Timestamp, msg.SenderID)
		if msg.ID == cur {
			// same head re-reported: the cache refresh above is all
			// that is needed, sort position cannot have changed
			return
		}
		ix.removeLocked(cur)
	} else {
		ix.cache.put(msg.ID, previewText, msg.Timestamp, msg.SenderID)
	}

	e := &entry{key: key, latestID: msg.ID}
	if key.Kind == model.KindTopic {
		e.topic = msg.Topic
	} else {
		e.recipients = msg.Recipients
	}
	ix.insertLocked(e)
	ix.setLatestLocked(key, msg.ID)
}

func (ix *Index) latestLocked(key model.ConversationKey) (int64, bool) {
	if key.Kind == model.KindDirect {
		id, ok := ix.dmLatest[key.DM]
		return id, ok
	}
	topics, ok := ix.topicLatest[key.ChannelID]
	if !ok {
		return 0, false
	}
	id, ok := topics[key.Topic]
	return id, ok
}

func (ix *Index) setLatestLocked(key model.ConversationKey, id int64) {
	if key.Kind == model.KindDirect {
		ix.dmLatest[key.DM] = id
		return
	}
	topics, ok := ix.topicLatest[key.ChannelID]
	if !ok {
		topics = make(map[string]int64)
		ix.topicLatest[key.ChannelID] = topics
	}
	topics[key.Topic] = id
}

// insertLocked places e so the sequence stays strictly descending.
func (ix *Index) insertLocked(e *entry) {
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].latestID < e.latestID
	})
	ix.entries = append(ix.entries, nil)
	copy(ix.entries[i+1:], ix.entries[i:])
	ix.entries[i] = e
}

// removeLocked drops the unique entry whose latest id is latestID.
func (ix *Index) removeLocked(latestID int64) {
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].latestID <= latestID
	})
	if i == len(ix.entries) || ix.entries[i].latestID != latestID {
		return
	}
	copy(ix.entries[i:], ix.entries[i+1:])
	ix.entries[len(ix.entries)-1] = nil
	ix.entries = ix.entries[:len(ix.entries)-1]
}
