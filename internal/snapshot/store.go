// Package snapshot persists the visible conversation list so a restart can
// show the last-known state while backfill refreshes it. Only the entries
// are saved: cursors and cache bookkeeping always start fresh.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mosaicdim/recents/internal/convindex"
	"github.com/mosaicdim/recents/internal/errors"
	"github.com/mosaicdim/recents/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	kind          INTEGER NOT NULL,
	channel_id    INTEGER NOT NULL DEFAULT 0,
	topic         TEXT    NOT NULL DEFAULT '',
	dm            TEXT    NOT NULL DEFAULT '',
	display_topic TEXT    NOT NULL DEFAULT '',
	recipients    TEXT    NOT NULL DEFAULT '[]',
	latest_id     INTEGER NOT NULL,
	ts            INTEGER NOT NULL DEFAULT 0,
	sender_id     INTEGER NOT NULL DEFAULT 0,
	preview       TEXT    NOT NULL DEFAULT '',
	has_preview   INTEGER NOT NULL DEFAULT 0
);`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.SnapshotFailed("open", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.SnapshotFailed("migrate", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored snapshot with the given list.
func (s *Store) Save(convs []convindex.Conversation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.SnapshotFailed("begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM conversations`); err != nil {
		return errors.SnapshotFailed("clear", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO conversations
		(kind, channel_id, topic, dm, display_topic, recipients, latest_id, ts, sender_id, preview, has_preview)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.SnapshotFailed("prepare", err)
	}
	defer stmt.Close()

	for _, c := range convs {
		recipients, err := json.Marshal(c.Recipients)
		if err != nil {
			return errors.SnapshotFailed("encode recipients", err)
		}
		var ts int64
		if !c.Timestamp.IsZero() {
			ts = c.Timestamp.Unix()
		}
		_, err = stmt.Exec(
			int(c.Key.Kind), c.Key.ChannelID, c.Key.Topic, c.Key.DM,
			c.Topic, string(recipients), c.LatestID, ts, c.SenderID,
			c.Preview, boolToInt(c.HasPreview),
		)
		if err != nil {
			return errors.SnapshotFailed("insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.SnapshotFailed("commit", err)
	}
	return nil
}

// Load returns the stored snapshot, newest first.
func (s *Store) Load() ([]convindex.Conversation, error) {
	rows, err := s.db.Query(`SELECT kind, channel_id, topic, dm, display_topic,
		recipients, latest_id, ts, sender_id, preview, has_preview
		FROM conversations ORDER BY latest_id DESC`)
	if err != nil {
		return nil, errors.SnapshotFailed("query", err)
	}
	defer rows.Close()

	convs := []convindex.Conversation{}
	for rows.Next() {
		var (
			kind, hasPreview  int
			ts                int64
			recipientsEncoded string
			c                 convindex.Conversation
		)
		err := rows.Scan(
			&kind, &c.Key.ChannelID, &c.Key.Topic, &c.Key.DM,
			&c.Topic, &recipientsEncoded, &c.LatestID, &ts, &c.SenderID,
			&c.Preview, &hasPreview,
		)
		if err != nil {
			return nil, errors.SnapshotFailed("scan", err)
		}
		c.Key.Kind = model.Kind(kind)
		c.HasPreview = hasPreview != 0
		if ts > 0 {
			c.Timestamp = time.Unix(ts, 0).UTC()
		}
		if err := json.Unmarshal([]byte(recipientsEncoded), &c.Recipients); err != nil {
			return nil, errors.SnapshotFailed("decode recipients", err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.SnapshotFailed("iterate", err)
	}
	return convs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
