package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/slot-swap-service/internal/config"
	"github.com/spec-kit/slot-swap-service/internal/domain"
	"github.com/spec-kit/slot-swap-service/internal/observability"
	"github.com/spec-kit/slot-swap-service/internal/store"
)

// memSnapshot is an in-memory snapshot backend for service tests.
type memSnapshot struct {
	mu   sync.Mutex
	data []byte
}

func (m *memSnapshot) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, nil
}

func (m *memSnapshot) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), &memSnapshot{}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func newTestSwapService(t *testing.T) (*SwapService, *SlotService) {
	t.Helper()
	st := newTestStore(t)
	swaps := NewSwapService(st, nil, observability.NewMetrics(), zap.NewNop())
	slots := NewSlotService(st, nil)
	return swaps, slots
}

func testAuthConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            4,
		},
	}
}

// seedSlot creates a slot for owner and walks it to the wanted status.
func seedSlot(t *testing.T, slots *SlotService, ownerID, title string, status domain.SlotStatus) *domain.Slot {
	t.Helper()
	slot, err := slots.CreateSlot(context.Background(), ownerID, SlotCreateInput{
		Title:     title,
		StartTime: "2026-03-02T18:00",
		EndTime:   "2026-03-02T19:00",
	})
	require.NoError(t, err)
	if status == domain.SlotStatusBusy {
		return slot
	}

	swappable := domain.SlotStatusSwappable
	slot, err = slots.UpdateSlot(context.Background(), ownerID, slot.ID, SlotUpdateInput{Status: &swappable})
	require.NoError(t, err)
	return slot
}

// getSlot fetches a slot by id straight from the owner's listing.
func getSlot(t *testing.T, slots *SlotService, ownerID, slotID string) *domain.Slot {
	t.Helper()
	owned, err := slots.ListOwnSlots(context.Background(), ownerID)
	require.NoError(t, err)
	for _, s := range owned {
		if s.ID == slotID {
			return s
		}
	}
	t.Fatalf("slot %s not owned by %s", slotID, ownerID)
	return nil
}
