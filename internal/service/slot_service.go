package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/slot-swap-service/internal/domain"
	"github.com/spec-kit/slot-swap-service/internal/events"
	"github.com/spec-kit/slot-swap-service/internal/store"
	apperrors "github.com/spec-kit/slot-swap-service/pkg/util"
)

// SlotService coordinates slot CRUD and the owner-edit rows of the slot
// state machine. The swap-driven transitions live in SwapService.
type SlotService struct {
	store      *store.Store
	dispatcher events.Dispatcher
}

// NewSlotService constructs the service.
func NewSlotService(st *store.Store, dispatcher events.Dispatcher) *SlotService {
	return &SlotService{store: st, dispatcher: dispatcher}
}

// SlotCreateInput describes slot creation payload. Times are opaque to the
// core; no ordering or overlap validation is performed.
type SlotCreateInput struct {
	Title     string
	StartTime string
	EndTime   string
}

// SlotUpdateInput describes an owner edit. Nil fields are left untouched.
type SlotUpdateInput struct {
	Title     *string
	StartTime *string
	EndTime   *string
	Status    *domain.SlotStatus
}

// CreateSlot creates a slot owned by the caller, initially BUSY.
func (s *SlotService) CreateSlot(ctx context.Context, callerID string, input SlotCreateInput) (*domain.Slot, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.StartTime == "" || input.EndTime == "" {
		return nil, apperrors.NewValidationError("title, startTime and endTime are required", nil)
	}

	var slot *domain.Slot
	err := s.store.Transact(ctx, func(tx *store.Tx) error {
		created, err := tx.Slots.Insert(&domain.Slot{
			OwnerID:   callerID,
			Title:     title,
			StartTime: input.StartTime,
			EndTime:   input.EndTime,
			Status:    domain.SlotStatusBusy,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		slot = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventSlotCreated,
		ActorID: callerID,
		Payload: events.SlotCreatedPayload{SlotID: slot.ID, Title: slot.Title},
	})
	return slot, nil
}

// ListOwnSlots returns the caller's slots in insertion order.
func (s *SlotService) ListOwnSlots(ctx context.Context, callerID string) ([]*domain.Slot, error) {
	var slots []*domain.Slot
	err := s.store.Transact(ctx, func(tx *store.Tx) error {
		slots = tx.Slots.Find(func(sl *domain.Slot) bool { return sl.OwnerID == callerID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// ListSwappableSlots returns marketplace offers: every SWAPPABLE slot not
// owned by the caller.
func (s *SlotService) ListSwappableSlots(ctx context.Context, callerID string) ([]*domain.Slot, error) {
	var slots []*domain.Slot
	err := s.store.Transact(ctx, func(tx *store.Tx) error {
		slots = tx.Slots.Find(func(sl *domain.Slot) bool {
			return sl.Status == domain.SlotStatusSwappable && sl.OwnerID != callerID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// UpdateSlot applies an owner edit. Status changes are restricted to the
// BUSY/SWAPPABLE toggle; a slot locked SWAP_PENDING rejects any status edit.
func (s *SlotService) UpdateSlot(ctx context.Context, callerID, slotID string, input SlotUpdateInput) (*domain.Slot, error) {
	if input.Status != nil && !domain.ValidSlotStatus(*input.Status) {
		return nil, apperrors.NewInvalidRequest("unknown slot status", map[string]any{"status": string(*input.Status)})
	}

	var slot *domain.Slot
	var oldStatus domain.SlotStatus
	err := s.store.Transact(ctx, func(tx *store.Tx) error {
		existing, ok := tx.Slots.Get(slotID)
		if !ok {
			return apperrors.NewNotFound("slot", map[string]any{"id": slotID})
		}
		if existing.OwnerID != callerID {
			return apperrors.NewForbidden("slot belongs to another user")
		}
		if input.Status != nil && !domain.CanOwnerSetStatus(existing.Status, *input.Status) {
			return apperrors.NewInvalidState("slot status cannot be changed", map[string]any{
				"from": string(existing.Status),
				"to":   string(*input.Status),
			})
		}
		oldStatus = existing.Status

		updated, err := tx.Slots.Update(slotID, func(sl *domain.Slot) {
			if input.Title != nil {
				sl.Title = strings.TrimSpace(*input.Title)
			}
			if input.StartTime != nil {
				sl.StartTime = *input.StartTime
			}
			if input.EndTime != nil {
				sl.EndTime = *input.EndTime
			}
			if input.Status != nil {
				sl.Status = *input.Status
			}
			now := time.Now().UTC()
			sl.UpdatedAt = &now
		})
		if err != nil {
			return err
		}
		slot = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventSlotUpdated,
		ActorID: callerID,
		Payload: events.SlotUpdatedPayload{SlotID: slot.ID, OldStatus: oldStatus, NewStatus: slot.Status},
	})
	return slot, nil
}

// DeleteSlot removes an owned slot. A slot locked inside an in-flight
// negotiation cannot be deleted.
func (s *SlotService) DeleteSlot(ctx context.Context, callerID, slotID string) error {
	err := s.store.Transact(ctx, func(tx *store.Tx) error {
		existing, ok := tx.Slots.Get(slotID)
		if !ok {
			return apperrors.NewNotFound("slot", map[string]any{"id": slotID})
		}
		if existing.OwnerID != callerID {
			return apperrors.NewForbidden("slot belongs to another user")
		}
		if existing.Status == domain.SlotStatusSwapPending {
			return apperrors.NewInvalidState("slot is locked in a pending swap", map[string]any{"id": slotID})
		}
		return tx.Slots.Remove(slotID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventSlotDeleted,
		ActorID: callerID,
		Payload: events.SlotDeletedPayload{SlotID: slotID},
	})
	return nil
}

func (s *SlotService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
