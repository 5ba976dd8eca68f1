// Package client implements the source contracts over the messaging
// server's JSON API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mosaicdim/recents/internal/errors"
	"github.com/mosaicdim/recents/internal/model"
	"github.com/mosaicdim/recents/internal/source"
)

// Config controls the API client.
type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

// Client talks to the messaging server. It implements
// source.MessageSource and source.VisibilityStore.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("server base URL cannot be empty")
	}

	httpClient := &http.Client{}
	if cfg.RequestTimeout > 0 {
		httpClient.Timeout = cfg.RequestTimeout
	}

	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

type messagesResponse struct {
	Messages    []*model.Message `json:"messages"`
	FoundOldest bool             `json:"found_oldest"`
}

// Query fetches one page of history for a classification filter, newest
// first.
func (c *Client) Query(ctx context.Context, filter source.Filter, anchor source.Anchor, limit int) (*source.Batch, error) {
	params := url.Values{}
	params.Set("filter", string(filter))
	params.Set("limit", strconv.Itoa(limit))
	if anchor.Newest {
		params.Set("anchor", "newest")
	} else {
		params.Set("anchor", strconv.FormatInt(anchor.MessageID, 10))
		params.Set("include_anchor", strconv.FormatBool(anchor.IncludeAnchor))
	}

	var resp messagesResponse
	if err := c.getJSON(ctx, "/api/v1/messages", params, &resp); err != nil {
		return nil, errors.QueryFailed(string(filter), err)
	}
	return &source.Batch{Messages: resp.Messages, FoundOldest: resp.FoundOldest}, nil
}

type visibilityResponse struct {
	Followed bool `json:"followed"`
}

// IsTopicFollowed reports whether the viewer follows a channel topic. A
// lookup failure counts as not followed: the worst case is a conversation
// missing until the next message classifies it again.
func (c *Client) IsTopicFollowed(ctx context.Context, channelID int64, topic string) bool {
	params := url.Values{}
	params.Set("channel_id", strconv.FormatInt(channelID, 10))
	params.Set("topic", topic)

	var resp visibilityResponse
	if err := c.getJSON(ctx, "/api/v1/topic_visibility", params, &resp); err != nil {
		log.Debug().Err(err).Int64("channel_id", channelID).Str("topic", topic).Msg("topic visibility lookup failed")
		return false
	}
	return resp.Followed
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.DecodeFailed(path, err)
	}
	return nil
}
