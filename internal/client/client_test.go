package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaicdim/recents/internal/source"
)

func TestQueryEncodesAnchor(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":42,"kind":1,"recipients":[1,2],"sender_id":2,"content":"<p>hi</p>"}],"found_oldest":true}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, APIKey: "sekrit"})
	require.NoError(t, err)

	batch, err := c.Query(context.Background(), source.FilterDirect, source.Newest(), 100)
	require.NoError(t, err)

	assert.Equal(t, "is:dm", gotQuery["filter"])
	assert.Equal(t, "newest", gotQuery["anchor"])
	assert.Equal(t, "100", gotQuery["limit"])

	require.Len(t, batch.Messages, 1)
	assert.Equal(t, int64(42), batch.Messages[0].ID)
	assert.True(t, batch.FoundOldest)

	_, err = c.Query(context.Background(), source.FilterDirect, source.Before(42), 100)
	require.NoError(t, err)
	assert.Equal(t, "42", gotQuery["anchor"])
	assert.Equal(t, "false", gotQuery["include_anchor"])
}

func TestQueryErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Query(context.Background(), source.FilterDirect, source.Newest(), 100)
	assert.Error(t, err)
}

func TestIsTopicFollowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/topic_visibility", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("channel_id"))
		assert.Equal(t, "release", r.URL.Query().Get("topic"))
		w.Write([]byte(`{"followed":true}`))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	assert.True(t, c.IsTopicFollowed(context.Background(), 4, "release"))
}

func TestIsTopicFollowedFailsClosed(t *testing.T) {
	c, err := New(Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	assert.False(t, c.IsTopicFollowed(context.Background(), 4, "release"))
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
