package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaicdim/recents/internal/backfill"
	"github.com/mosaicdim/recents/internal/convindex"
	"github.com/mosaicdim/recents/internal/model"
	"github.com/mosaicdim/recents/internal/source"
)

type stubConf struct{}

func (stubConf) GetHTTPAddr() string { return "127.0.0.1:0" }

type stubSource struct{}

func (stubSource) Query(context.Context, source.Filter, source.Anchor, int) (*source.Batch, error) {
	return &source.Batch{FoundOldest: true}, nil
}

type stubVisibility struct{}

func (stubVisibility) IsTopicFollowed(context.Context, int64, string) bool { return false }

func newTestService() (*Service, *convindex.Index, *backfill.Engine) {
	ix := convindex.New()
	engine := backfill.New(stubSource{}, stubVisibility{}, ix, 100)
	return NewService(stubConf{}, ix, engine), ix, engine
}

func TestHandleConversations(t *testing.T) {
	s, ix, _ := newTestService()

	ix.UpsertMessage(&model.Message{
		ID: 100, Kind: model.KindDirect, Recipients: []int64{1, 2},
		SenderID: 2, Timestamp: time.Unix(1700000100, 0),
	}, "hello there")
	ix.UpsertMessage(&model.Message{
		ID: 90, Kind: model.KindTopic, ChannelID: 1, Topic: "design",
		SenderID: 3, Timestamp: time.Unix(1700000090, 0),
	}, "the mockups")

	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []convindex.Conversation `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, int64(100), resp.Items[0].LatestID)
	assert.Equal(t, "hello there", resp.Items[0].Preview)
}

func TestHandleConversationsLimit(t *testing.T) {
	s, ix, _ := newTestService()
	for id := int64(1); id <= 5; id++ {
		ix.UpsertMessage(&model.Message{
			ID: id, Kind: model.KindDirect, Recipients: []int64{id},
		}, "p")
	}

	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversations?limit=2", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []convindex.Conversation `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
}

func TestHandleBackfillStatusAndOlder(t *testing.T) {
	s, _, engine := newTestService()

	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/backfill/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var st backfill.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.False(t, st.InitialDone)

	require.NoError(t, engine.FetchInitial(context.Background()))

	w = httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/backfill/older", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.True(t, st.InitialDone)
	assert.True(t, st.HasReachedOldest)
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestService()
	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
