// Package recents wires the conversation index, backfill engine, event
// transport, and HTTP service into one account session.
package recents

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/mosaicdim/recents/internal/backfill"
	"github.com/mosaicdim/recents/internal/client"
	"github.com/mosaicdim/recents/internal/convindex"
	"github.com/mosaicdim/recents/internal/recents/conf"
	"github.com/mosaicdim/recents/internal/recents/http"
	"github.com/mosaicdim/recents/internal/router"
	"github.com/mosaicdim/recents/internal/snapshot"
	"github.com/mosaicdim/recents/internal/transport"
)

// Manager owns one running session.
type Manager struct {
	cfg *conf.Config

	index  *convindex.Index
	engine *backfill.Engine
	http   *http.Service
	snap   *snapshot.Store

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

func New(cfg *conf.Config) *Manager {
	return &Manager{
		cfg:        cfg,
		shutdownCh: make(chan struct{}),
	}
}

// Run starts the session and blocks until a shutdown signal arrives.
func (m *Manager) Run() error {
	cli, err := client.New(client.Config{
		BaseURL:        m.cfg.ServerURL,
		APIKey:         m.cfg.APIKey,
		RequestTimeout: m.cfg.RequestTimeout(),
	})
	if err != nil {
		return err
	}

	m.index = convindex.New()
	m.restoreSnapshot()

	m.engine = backfill.New(cli, cli, m.index, m.cfg.BatchSize)
	rt := router.New(m.index, cli)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if m.cfg.EventURL != "" {
		listener := transport.NewListener(m.cfg.EventURL, m.cfg.APIKey, rt)
		go listener.Run(ctx)
	} else {
		log.Warn().Msg("no event URL configured; running without real-time updates")
	}

	m.http = http.NewService(m, m.index, m.engine)
	if err := m.http.Start(); err != nil {
		return err
	}

	go func() {
		if err := m.engine.FetchInitial(ctx); err != nil {
			log.Err(err).Msg("initial backfill failed; retry via POST /api/v1/backfill/older after restart or next trigger")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-m.shutdownCh:
	}

	return m.stop()
}

// Shutdown requests a graceful stop; safe to call more than once.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() { close(m.shutdownCh) })
}

func (m *Manager) stop() error {
	if m.http != nil {
		if err := m.http.Stop(); err != nil {
			log.Err(err).Msg("stop http service failed")
		}
	}
	m.saveSnapshot()
	if m.snap != nil {
		if err := m.snap.Close(); err != nil {
			log.Err(err).Msg("close snapshot store failed")
		}
	}
	return nil
}

func (m *Manager) restoreSnapshot() {
	if m.cfg.SnapshotPath == "" {
		return
	}
	snap, err := snapshot.Open(m.cfg.SnapshotPath)
	if err != nil {
		log.Warn().Err(err).Msg("open snapshot store failed; continuing without persistence")
		return
	}
	m.snap = snap

	convs, err := snap.Load()
	if err != nil {
		log.Warn().Err(err).Msg("load snapshot failed")
		return
	}
	if len(convs) > 0 {
		m.index.Restore(convs)
		log.Info().Int("conversations", len(convs)).Msg("restored conversation list from snapshot")
	}
}

func (m *Manager) saveSnapshot() {
	if m.snap == nil {
		return
	}
	if err := m.snap.Save(m.index.Conversations()); err != nil {
		log.Err(err).Msg("save snapshot failed")
	}
}

// GetHTTPAddr implements the HTTP service's Config interface.
func (m *Manager) GetHTTPAddr() string {
	return m.cfg.HTTPAddr
}
