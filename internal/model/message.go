package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind distinguishes the two conversation variants.
type Kind int

const (
	KindTopic Kind = iota
	KindDirect
)

func (k Kind) String() string {
	switch k {
	case KindTopic:
		return "topic"
	case KindDirect:
		return "direct"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Flags carries the per-viewer classification the server attaches to a
// message.
type Flags struct {
	Mentioned         bool `json:"mentioned"`
	WildcardMentioned bool `json:"wildcard_mentioned"`
	AlertWord         bool `json:"alert_word"`
}

// Message is a single rendered message as delivered by the server, either
// over the event transport or inside a historical batch. IDs are assigned
// by the server and are globally unique and monotonic: a higher id is a
// newer message.
type Message struct {
	ID        int64  `json:"id"`
	Kind      Kind   `json:"kind"`
	ChannelID int64  `json:"channel_id,omitempty"`
	Topic     string `json:"topic,omitempty"`

	// Recipients lists every participant of a direct conversation,
	// including the viewer. Empty for topic messages.
	Recipients []int64 `json:"recipients,omitempty"`

	SenderID  int64     `json:"sender_id"`
	Timestamp time.Time `json:"timestamp"`
	// Content is the server-rendered HTML of the message body.
	Content string `json:"content"`
	Flags   Flags  `json:"flags"`
}

// Key returns the identity of the conversation this message belongs to.
func (m *Message) Key() ConversationKey {
	if m.Kind == KindDirect {
		return DirectKey(m.Recipients)
	}
	return TopicKey(m.ChannelID, m.Topic)
}

// ConversationKey identifies a conversation. It is a tagged value: for
// KindTopic the ChannelID/Topic pair is set (topic in canonical form), for
// KindDirect the DM participant string is set. Keys compare with ==.
type ConversationKey struct {
	Kind      Kind   `json:"kind"`
	ChannelID int64  `json:"channel_id,omitempty"`
	Topic     string `json:"topic,omitempty"`
	DM        string `json:"dm,omitempty"`
}

// TopicKey builds the identity of a channel-topic conversation. Topic names
// that differ only by case denote the same conversation, so the stored form
// is case-folded.
func TopicKey(channelID int64, topic string) ConversationKey {
	return ConversationKey{
		Kind:      KindTopic,
		ChannelID: channelID,
		Topic:     CanonicalTopic(topic),
	}
}

// DirectKey builds the identity of a direct-message conversation from its
// participant set. Order does not matter; the single-participant self
// conversation is valid.
func DirectKey(userIDs []int64) ConversationKey {
	ids := make([]int64, len(userIDs))
	copy(ids, userIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, 0, len(ids))
	var last int64 = -1
	for _, id := range ids {
		if id == last {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d", id))
		last = id
	}
	return ConversationKey{Kind: KindDirect, DM: strings.Join(parts, ",")}
}

// CanonicalTopic maps a topic name to the form used for identity
// comparison.
func CanonicalTopic(topic string) string {
	return strings.ToLower(topic)
}

func (k ConversationKey) String() string {
	if k.Kind == KindDirect {
		return "dm:" + k.DM
	}
	return fmt.Sprintf("topic:%d:%s", k.ChannelID, k.Topic)
}
