package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"traffic-recorder/internal/domain/entity"
	"traffic-recorder/internal/infrastructure/database"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
)

// PostgresStore keeps values in the kv_entries table and announces writes with
// NOTIFY. Notification payloads carry only the key (NOTIFY payloads are capped
// at 8000 bytes), so subscribers re-read the value and report the previous
// value they observed themselves as OldValue.
type PostgresStore struct {
	db        *database.Database
	namespace string
	channel   string
	logger    *zap.Logger
}

func NewPostgresStore(db *database.Database, namespace string, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:        db,
		namespace: namespace,
		channel:   namespace + "_changes",
		logger:    logger.Named("postgres_store"),
	}
}

func (s *PostgresStore) key(key string) string {
	return s.namespace + ":" + key
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`, s.key(key),
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from postgres: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.ExecContext(ctx, upsert, s.key(key), value, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}

	// Delivered to listeners only when the transaction commits
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, s.channel, key); err != nil {
		return fmt.Errorf("failed to notify change of %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Subscribe(ctx context.Context) (<-chan entity.StoreChange, error) {
	listener := pq.NewListener(s.db.DSN, listenerMinReconnect, listenerMaxReconnect,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				s.logger.Warn("Listener event", zap.Int("event", int(event)), zap.Error(err))
			}
		},
	)

	if err := listener.Listen(s.channel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", s.channel, err)
	}

	out := make(chan entity.StoreChange, subscriberBuffer)

	go func() {
		defer close(out)
		defer listener.Close()

		lastSeen := make(map[string][]byte)

		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				// nil is sent after a reconnect; notifications may have been missed
				if n == nil {
					s.logger.Info("Listener reconnected", zap.String("channel", s.channel))
					continue
				}

				key := n.Extra
				value, err := s.Get(ctx, key)
				if err != nil {
					s.logger.Warn("Failed to read changed key", zap.String("key", key), zap.Error(err))
					continue
				}

				change := entity.StoreChange{Key: key, OldValue: lastSeen[key], NewValue: value}
				lastSeen[key] = value

				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
