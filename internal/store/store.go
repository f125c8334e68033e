package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/slot-swap-service/internal/domain"
	"github.com/spec-kit/slot-swap-service/pkg/util"
)

// Snapshotter persists the three collections as a whole. Load returns nil
// data when no snapshot exists yet.
type Snapshotter interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// snapshot is the durable wire shape, one document per collection.
type snapshot struct {
	Users []*domain.User `json:"users"`
	Slots []*domain.Slot `json:"slots"`
	Swaps []*domain.Swap `json:"swaps"`
}

// Store holds the users, slots and swaps collections behind a single
// serialization point. All reads and writes happen inside Transact; there is
// no mutation path outside a transaction, which is what keeps multi-record
// operations (both halves of a swap) free of torn state under concurrency.
type Store struct {
	mu     sync.Mutex
	snap   Snapshotter
	logger *zap.Logger

	users *Collection[*domain.User]
	slots *Collection[*domain.Slot]
	swaps *Collection[*domain.Swap]
}

// Tx is a mutable copy of all collections, visible to exactly one Transact
// callback at a time. Committed records are never mutated afterward: every
// later transaction works on fresh clones, so records handed out of a
// transaction are safe to read concurrently.
type Tx struct {
	Users *Collection[*domain.User]
	Slots *Collection[*domain.Slot]
	Swaps *Collection[*domain.Swap]

	dirty bool
}

// Open loads the latest snapshot from snap and returns a ready store. A
// missing snapshot yields an empty state.
func Open(ctx context.Context, snap Snapshotter, logger *zap.Logger) (*Store, error) {
	data, err := snap.Load(ctx)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}

	var loaded snapshot
	if len(data) > 0 {
		if err := json.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("decode store snapshot: %w", err)
		}
	}

	s := &Store{
		snap:   snap,
		logger: logger,
		users:  newCollection("users", loaded.Users),
		slots:  newCollection("slots", loaded.Slots),
		swaps:  newCollection("swaps", loaded.Swaps),
	}
	logger.Info("store opened",
		zap.Int("users", s.users.Len()),
		zap.Int("slots", s.slots.Len()),
		zap.Int("swaps", s.swaps.Len()))
	return s, nil
}

// Transact runs fn against a mutable copy of all collections under an
// exclusive section. If fn returns an error the copy is discarded and the
// error propagates verbatim; nothing is persisted. On success a mutated copy
// is written through the Snapshotter before becoming visible; a failed write
// rolls back and surfaces as STORE_UNAVAILABLE, so the whole operation is
// safe to retry. Read-only transactions skip the durable write.
func (s *Store) Transact(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{}
	mark := func() { tx.dirty = true }
	tx.Users = s.users.clone(mark)
	tx.Slots = s.slots.clone(mark)
	tx.Swaps = s.swaps.clone(mark)

	if err := fn(tx); err != nil {
		return err
	}

	if tx.dirty {
		data, err := json.Marshal(snapshot{
			Users: tx.Users.recs,
			Slots: tx.Slots.recs,
			Swaps: tx.Swaps.recs,
		})
		if err != nil {
			return util.NewStoreUnavailable(err)
		}
		if err := s.snap.Save(ctx, data); err != nil {
			s.logger.Error("snapshot save failed, transaction rolled back", zap.Error(err))
			return util.NewStoreUnavailable(err)
		}
	}

	s.users, s.slots, s.swaps = tx.Users, tx.Slots, tx.Swaps
	return nil
}
