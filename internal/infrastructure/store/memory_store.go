package store

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"traffic-recorder/internal/domain/entity"
)

// subscriberBuffer bounds how far a slow subscriber may fall behind before
// changes are dropped for it.
const subscriberBuffer = 256

// MemoryStore is an in-process KVStore. Writers never block on subscribers.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	subs   map[uuid.UUID]chan entity.StoreChange
	closed bool
	logger *zap.Logger
}

func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string][]byte),
		subs:   make(map[uuid.UUID]chan entity.StoreChange),
		logger: logger.Named("memory_store"),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	value, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(value), nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	old := s.data[key]
	s.data[key] = bytes.Clone(value)

	// Broadcast under the lock so every subscriber sees commits in order
	for id, ch := range s.subs {
		change := entity.StoreChange{
			Key:      key,
			OldValue: bytes.Clone(old),
			NewValue: bytes.Clone(value),
		}
		select {
		case ch <- change:
		default:
			s.logger.Warn("Subscriber channel full, dropping change",
				zap.String("subscriber", id.String()),
				zap.String("key", key),
			)
		}
	}

	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context) (<-chan entity.StoreChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	id := uuid.New()
	ch := make(chan entity.StoreChange, subscriberBuffer)
	s.subs[id] = ch

	go func() {
		<-ctx.Done()
		s.unsubscribe(id)
	}()

	return ch, nil
}

func (s *MemoryStore) unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	return nil
}
