// Package source declares the boundary contracts the core depends on. The
// transport collaborator owns the wire protocol; the core only sees these
// interfaces.
package source

import (
	"context"

	"github.com/mosaicdim/recents/internal/model"
)

// Filter names one classification channel of the historical query API. The
// four filters are independent and non-overlapping only in the sense that
// each is paginated on its own; a message may match several.
type Filter string

const (
	FilterDirect    Filter = "is:dm"
	FilterMentioned Filter = "is:mentioned"
	FilterAlertWord Filter = "has:alert"
	FilterFollowed  Filter = "is:followed"
)

// Filters lists every classification channel in a stable order.
func Filters() []Filter {
	return []Filter{FilterDirect, FilterMentioned, FilterAlertWord, FilterFollowed}
}

// Anchor positions a historical query. The zero value is invalid; use
// Newest or Before.
type Anchor struct {
	// Newest anchors at the newest available message.
	Newest bool
	// MessageID anchors at a specific message when Newest is false.
	MessageID int64
	// IncludeAnchor controls whether the anchor message itself may appear
	// in the batch.
	IncludeAnchor bool
}

// Newest returns an anchor at the newest available message.
func Newest() Anchor { return Anchor{Newest: true} }

// Before returns an exclusive anchor at the given id: the batch contains
// only strictly older messages.
func Before(id int64) Anchor { return Anchor{MessageID: id} }

// Batch is one page of history for a single filter.
type Batch struct {
	Messages []*model.Message
	// FoundOldest reports that the oldest available history was reached.
	// It is the only signal that may mark a channel exhausted; an empty
	// Messages slice alone does not.
	FoundOldest bool
}

// MessageSource pages through historical messages, newest first.
type MessageSource interface {
	Query(ctx context.Context, filter Filter, anchor Anchor, limit int) (*Batch, error)
}

// VisibilityStore answers topic-follow lookups for the relevance predicate.
type VisibilityStore interface {
	IsTopicFollowed(ctx context.Context, channelID int64, topic string) bool
}
