package backfill

import (
	"context"

	"github.com/mosaicdim/recents/internal/model"
	"github.com/mosaicdim/recents/internal/source"
)

// Relevant decides whether a message belongs in the conversation list.
// Direct messages always do; a channel-topic message qualifies when the
// viewer was mentioned (including wildcard mentions), an alert word
// matched, or the viewer follows the topic.
func Relevant(ctx context.Context, vis source.VisibilityStore, msg *model.Message) bool {
	if msg.Kind == model.KindDirect {
		return true
	}
	if msg.Flags.Mentioned || msg.Flags.WildcardMentioned || msg.Flags.AlertWord {
		return true
	}
	return vis.IsTopicFollowed(ctx, msg.ChannelID, msg.Topic)
}
