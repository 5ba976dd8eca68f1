// Package backfill pages historical messages into the conversation index.
//
// It runs the four classification queries (direct, mentioned, alert-word,
// followed-topic) in parallel, each with its own pagination cursor, and
// merges the results through the index's batch upsert. A run either lands
// as a whole or fails as a whole: a failed run leaves every cursor exactly
// where it was, so the same fetch can simply be retried.
package backfill

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mosaicdim/recents/internal/convindex"
	"github.com/mosaicdim/recents/internal/model"
	"github.com/mosaicdim/recents/internal/preview"
	"github.com/mosaicdim/recents/internal/source"
)

// DefaultBatchSize is the per-channel page size.
const DefaultBatchSize = 100

type cursor struct {
	// oldest is the smallest id seen on this channel; only valid once
	// anchored is set. It moves monotonically backward.
	oldest   int64
	anchored bool
	// exhausted is set only from the source's own found-oldest signal and
	// never unset.
	exhausted bool
}

// Engine drives historical fetches for one account session.
type Engine struct {
	source     source.MessageSource
	visibility source.VisibilityStore
	index      *convindex.Index
	batchSize  int

	mu          sync.Mutex
	fetching    bool
	initialDone bool
	cursors     map[source.Filter]*cursor
}

func New(src source.MessageSource, vis source.VisibilityStore, ix *convindex.Index, batchSize int) *Engine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	cursors := make(map[source.Filter]*cursor, len(source.Filters()))
	for _, f := range source.Filters() {
		cursors[f] = &cursor{}
	}
	return &Engine{
		source:     src,
		visibility: vis,
		index:      ix,
		batchSize:  batchSize,
		cursors:    cursors,
	}
}

// FetchInitial performs the one-time cold-start fetch, anchored at the
// newest available message on every channel. Calls while a fetch is in
// flight, or after the initial fetch has completed, are dropped: callers
// coalesce onto the in-flight run's results.
func (e *Engine) FetchInitial(ctx context.Context) error {
	e.mu.Lock()
	if e.initialDone || e.fetching {
		e.mu.Unlock()
		return nil
	}
	e.fetching = true
	e.mu.Unlock()
	defer e.clearFetching()

	anchors := make(map[source.Filter]source.Anchor, len(e.cursors))
	for f := range e.cursors {
		anchors[f] = source.Newest()
	}
	if err := e.run(ctx, anchors); err != nil {
		return err
	}

	e.mu.Lock()
	e.initialDone = true
	e.mu.Unlock()
	return nil
}

// FetchOlder pages further back from each channel's cursor, excluding the
// anchor message itself. It is a no-op while a fetch is in flight, before
// the initial fetch has completed, or once every channel is exhausted.
func (e *Engine) FetchOlder(ctx context.Context) error {
	e.mu.Lock()
	if e.fetching || !e.initialDone || e.allExhaustedLocked() {
		e.mu.Unlock()
		return nil
	}
	anchors := make(map[source.Filter]source.Anchor)
	for f, c := range e.cursors {
		switch {
		case c.exhausted:
		case !c.anchored:
			// the channel's initial page was empty but history remains;
			// anchor it at newest again
			anchors[f] = source.Newest()
		default:
			anchors[f] = source.Before(c.oldest)
		}
	}
	e.fetching = true
	e.mu.Unlock()
	defer e.clearFetching()

	return e.run(ctx, anchors)
}

// run issues one query per anchored channel in parallel. All queries must
// succeed before any result is applied; cursors and exhaustion flags only
// move on success.
func (e *Engine) run(ctx context.Context, anchors map[source.Filter]source.Anchor) error {
	g, gctx := errgroup.WithContext(ctx)

	var resMu sync.Mutex
	results := make(map[source.Filter]*source.Batch, len(anchors))

	for f, a := range anchors {
		g.Go(func() error {
			batch, err := e.source.Query(gctx, f, a, e.batchSize)
			if err != nil {
				return err
			}
			resMu.Lock()
			results[f] = batch
			resMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.apply(ctx, results)
	return nil
}

func (e *Engine) apply(ctx context.Context, results map[source.Filter]*source.Batch) {
	var msgs []*model.Message
	var previews []string

	e.mu.Lock()
	for f, batch := range results {
		c := e.cursors[f]
		for _, msg := range batch.Messages {
			if !c.anchored || msg.ID < c.oldest {
				c.oldest = msg.ID
				c.anchored = true
			}
		}
		if batch.FoundOldest {
			c.exhausted = true
		}
	}
	e.mu.Unlock()

	for _, batch := range results {
		for _, msg := range batch.Messages {
			if !Relevant(ctx, e.visibility, msg) {
				continue
			}
			msgs = append(msgs, msg)
			previews = append(previews, preview.Extract(msg.Content, preview.DefaultMaxLen))
		}
	}
	e.index.UpsertBatch(msgs, previews)
}

func (e *Engine) clearFetching() {
	e.mu.Lock()
	e.fetching = false
	e.mu.Unlock()
}

// HasReachedOldest reports whether every classification channel has hit the
// oldest available history.
func (e *Engine) HasReachedOldest() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.allExhaustedLocked()
}

func (e *Engine) allExhaustedLocked() bool {
	for _, c := range e.cursors {
		if !c.exhausted {
			return false
		}
	}
	return true
}

// Status describes the engine's observable state.
type Status struct {
	Fetching         bool `json:"fetching"`
	InitialDone      bool `json:"initial_done"`
	HasReachedOldest bool `json:"has_reached_oldest"`

	Channels map[string]ChannelStatus `json:"channels"`
}

// ChannelStatus is the per-channel cursor view.
type ChannelStatus struct {
	OldestSeen int64 `json:"oldest_seen,omitempty"`
	Exhausted  bool  `json:"exhausted"`
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Fetching:         e.fetching,
		InitialDone:      e.initialDone,
		HasReachedOldest: e.allExhaustedLocked(),
		Channels:         make(map[string]ChannelStatus, len(e.cursors)),
	}
	for f, c := range e.cursors {
		cs := ChannelStatus{Exhausted: c.exhausted}
		if c.anchored {
			cs.OldestSeen = c.oldest
		}
		st.Channels[string(f)] = cs
	}
	return st
}
