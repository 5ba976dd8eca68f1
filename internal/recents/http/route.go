package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosaicdim/recents/internal/errors"
)

// GET /api/v1/conversations
func (s *Service) handleConversations(c *gin.Context) {
	q := struct {
		Limit int `form:"limit"`
	}{}

	if err := c.BindQuery(&q); err != nil {
		errors.Err(c, err)
		return
	}

	convs := s.index.Conversations()
	if q.Limit > 0 && q.Limit < len(convs) {
		convs = convs[:q.Limit]
	}

	c.JSON(http.StatusOK, gin.H{"items": convs})
}

// GET /api/v1/backfill/status
func (s *Service) handleBackfillStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Status())
}

// POST /api/v1/backfill/older
//
// Kicks one older fetch. The engine silently coalesces while a fetch is in
// flight, so hammering this endpoint is harmless.
func (s *Service) handleBackfillOlder(c *gin.Context) {
	if err := s.engine.FetchOlder(c.Request.Context()); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.Status())
}

// GET /api/v1/updates
//
// Server-sent change stream: one "update" event per index mutation batch,
// no payload. Consumers re-read /conversations.
func (s *Service) handleUpdates(c *gin.Context) {
	id, ch := s.index.Subscribe()
	defer s.index.Unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ch:
			c.SSEvent("update", "")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
