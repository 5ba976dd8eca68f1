package backfill

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mosaicdim/recents/internal/model"
)

func TestRelevant(t *testing.T) {
	vis := &fakeVisibility{followed: map[string]bool{"1/release": true}}
	ctx := context.Background()

	cases := []struct {
		name string
		msg  *model.Message
		want bool
	}{
		{"direct message", &model.Message{Kind: model.KindDirect}, true},
		{"mentioned", &model.Message{Kind: model.KindTopic, Flags: model.Flags{Mentioned: true}}, true},
		{"wildcard mention", &model.Message{Kind: model.KindTopic, Flags: model.Flags{WildcardMentioned: true}}, true},
		{"alert word", &model.Message{Kind: model.KindTopic, Flags: model.Flags{AlertWord: true}}, true},
		{"followed topic", &model.Message{Kind: model.KindTopic, ChannelID: 1, Topic: "release"}, true},
		{"unfollowed topic", &model.Message{Kind: model.KindTopic, ChannelID: 1, Topic: "chatter"}, false},
		{"followed topic other channel", &model.Message{Kind: model.KindTopic, ChannelID: 2, Topic: "release"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Relevant(ctx, vis, tc.msg))
		})
	}
}
