// Package router forwards real-time events from the transport to the
// conversation index. It is deliberately thin: classification and ordering
// decisions all live behind the index's operations.
package router

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mosaicdim/recents/internal/backfill"
	"github.com/mosaicdim/recents/internal/convindex"
	"github.com/mosaicdim/recents/internal/model"
	"github.com/mosaicdim/recents/internal/preview"
	"github.com/mosaicdim/recents/internal/source"
)

type Router struct {
	index      *convindex.Index
	visibility source.VisibilityStore
}

func New(ix *convindex.Index, vis source.VisibilityStore) *Router {
	return &Router{index: ix, visibility: vis}
}

// Handle dispatches one event frame. Unknown event types are logged and
// dropped; the transport may be newer than this client.
func (r *Router) Handle(ctx context.Context, ev *model.Event) {
	switch ev.Type {
	case model.EventMessage:
		r.handleMessage(ctx, ev.Message)
	case model.EventUpdateMessage:
		r.handleUpdate(ev)
	case model.EventDeleteMessage:
		r.index.ApplyDelete(ev.MessageIDs)
	default:
		log.Debug().Str("type", ev.Type).Msg("dropping unknown event")
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *model.Message) {
	if msg == nil {
		return
	}
	if !backfill.Relevant(ctx, r.visibility, msg) {
		return
	}
	r.index.UpsertMessage(msg, preview.Extract(msg.Content, preview.DefaultMaxLen))
}

func (r *Router) handleUpdate(ev *model.Event) {
	// Cosmetic re-renders carry the same logical content; touching the
	// cache for them would churn previews for no visible change.
	if !ev.ContentChanged {
		return
	}
	r.index.ApplyEdit(ev.MessageIDs, preview.Extract(ev.Content, preview.DefaultMaxLen))
}
