// Package postgres backs the document store with a single Postgres table.
// Compare-and-swap is a conditional UPDATE on the version column; change
// notifications ride LISTEN/NOTIFY on the documents channel.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/cdurbin34/draftroom/internal/store"
)

const notifyChannel = "draftroom_documents"

// Store implements store.Store over a pgx connection pool. The DSN is kept
// for the lib/pq listener that Subscribe spins up; pgx pools cannot hold a
// dedicated LISTEN session.
type Store struct {
	pool *pgxpool.Pool
	dsn  string
}

var _ store.Store = (*Store)(nil)

// New returns a Postgres-backed document store.
func New(pool *pgxpool.Pool, dsn string) *Store {
	return &Store{pool: pool, dsn: dsn}
}

// Schema is the DDL this store expects. Kept here so migrations and tests
// share one definition.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
    key        TEXT PRIMARY KEY,
    parent_key TEXT,
    data       JSONB NOT NULL,
    version    BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS documents_parent_key_idx ON documents (parent_key, created_at);
`

func (s *Store) Get(ctx context.Context, key string) (store.Document, error) {
	var doc store.Document
	doc.Key = key
	err := s.pool.QueryRow(ctx,
		`SELECT data, version FROM documents WHERE key = $1`, key,
	).Scan(&doc.Data, &doc.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Document{}, store.ErrNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var version int64
	if expectedVersion == 0 {
		tag, err := tx.Exec(ctx,
			`INSERT INTO documents (key, data, version) VALUES ($1, $2, 1)
			 ON CONFLICT (key) DO NOTHING`, key, data)
		if err != nil {
			return 0, fmt.Errorf("failed to create document: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return 0, store.ErrVersionConflict
		}
		version = 1
	} else {
		err := tx.QueryRow(ctx,
			`UPDATE documents
			 SET data = $2, version = version + 1, updated_at = now()
			 WHERE key = $1 AND version = $3
			 RETURNING version`, key, data, expectedVersion,
		).Scan(&version)
		if errors.Is(err, pgx.ErrNoRows) {
			// Disambiguate: missing row vs stale version.
			var exists bool
			if probeErr := s.pool.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM documents WHERE key = $1)`, key,
			).Scan(&exists); probeErr != nil {
				return 0, fmt.Errorf("failed to probe document: %w", probeErr)
			}
			if !exists {
				return 0, store.ErrNotFound
			}
			return 0, store.ErrVersionConflict
		}
		if err != nil {
			return 0, fmt.Errorf("failed to update document: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, key); err != nil {
		return 0, fmt.Errorf("failed to notify: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return version, nil
}

func (s *Store) Append(ctx context.Context, parentKey string, data []byte) (string, error) {
	key := parentKey + "/" + uuid.NewString()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO documents (key, parent_key, data, version) VALUES ($1, $2, $3, 1)`,
		key, parentKey, data); err != nil {
		return "", fmt.Errorf("failed to append document: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, key); err != nil {
		return "", fmt.Errorf("failed to notify: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return key, nil
}

func (s *Store) List(ctx context.Context, parentKey string) ([]store.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, data, version FROM documents
		 WHERE parent_key = $1 ORDER BY created_at, key`, parentKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var doc store.Document
		if err := rows.Scan(&doc.Key, &doc.Data, &doc.Version); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Subscribe listens for document change notifications and re-reads each
// changed document before delivering it, so subscribers always observe a
// committed version.
func (s *Store) Subscribe(ctx context.Context, keyPrefix string) (<-chan store.Document, error) {
	listener := pq.NewListener(s.dsn, 10*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("store listener event")
			}
		})
	if err := listener.Listen(notifyChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}

	out := make(chan store.Document, 64)
	go func() {
		defer close(out)
		defer listener.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case note := <-listener.Notify:
				if note == nil {
					// Connection was re-established; notifications may have
					// been missed, nothing to replay here.
					continue
				}
				key := note.Extra
				if len(key) < len(keyPrefix) || key[:len(keyPrefix)] != keyPrefix {
					continue
				}
				doc, err := s.Get(ctx, key)
				if err != nil {
					log.Error().Err(err).Str("key", key).Msg("failed to read changed document")
					continue
				}
				select {
				case out <- doc:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
