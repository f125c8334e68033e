package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/slot-swap-service/internal/domain"
	"github.com/spec-kit/slot-swap-service/internal/events"
	"github.com/spec-kit/slot-swap-service/internal/observability"
	"github.com/spec-kit/slot-swap-service/internal/store"
	apperrors "github.com/spec-kit/slot-swap-service/pkg/util"
)

// SwapService runs the swap transaction protocol: one-for-one ownership
// exchanges between two SWAPPABLE slots of two different users. Every
// operation executes inside exactly one store transaction, so a racing
// request observes either all of this service's effects or none.
type SwapService struct {
	store      *store.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewSwapService constructs the service.
func NewSwapService(st *store.Store, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *SwapService {
	return &SwapService{store: st, dispatcher: dispatcher, metrics: metrics, logger: logger}
}

// SwapInbox groups a user's negotiations by direction.
type SwapInbox struct {
	Incoming []*domain.Swap
	Outgoing []*domain.Swap
}

// RequestSwap creates a PENDING swap between the caller's slot and a
// counterparty slot and locks both slots SWAP_PENDING. The counterparty's
// owner is captured at this instant. Requesting against a slot that is not
// SWAPPABLE fails INVALID_STATE, which is what makes "at most one pending
// swap per slot" hold under concurrent requests.
func (s *SwapService) RequestSwap(ctx context.Context, callerID, requesterSlotID, counterpartySlotID string) (*domain.Swap, error) {
	var swap *domain.Swap
	err := s.store.Transact(ctx, func(tx *store.Tx) error {
		mine, ok := tx.Slots.Get(requesterSlotID)
		if !ok {
			return apperrors.NewNotFound("requester slot", map[string]any{"id": requesterSlotID})
		}
		if mine.OwnerID != callerID {
			return apperrors.NewForbidden("requester slot belongs to another user")
		}

		theirs, ok := tx.Slots.Get(counterpartySlotID)
		if !ok {
			return apperrors.NewNotFound("counterparty slot", map[string]any{"id": counterpartySlotID})
		}

		if requesterSlotID == counterpartySlotID {
			return apperrors.NewInvalidRequest("cannot swap a slot with itself", map[string]any{"id": requesterSlotID})
		}

		if mine.Status != domain.SlotStatusSwappable || theirs.Status != domain.SlotStatusSwappable {
			return apperrors.NewInvalidState("both slots must be swappable", map[string]any{
				"requesterSlotStatus":    string(mine.Status),
				"counterpartySlotStatus": string(theirs.Status),
			})
		}

		created, err := tx.Swaps.Insert(&domain.Swap{
			RequesterSlotID:    requesterSlotID,
			CounterpartySlotID: counterpartySlotID,
			RequesterID:        callerID,
			CounterpartyID:     theirs.OwnerID,
			Status:             domain.SwapStatusPending,
			CreatedAt:          time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		lock := func(sl *domain.Slot) { sl.Status = domain.SlotStatusSwapPending }
		if _, err := tx.Slots.Update(requesterSlotID, lock); err != nil {
			return err
		}
		if _, err := tx.Slots.Update(counterpartySlotID, lock); err != nil {
			return err
		}

		swap = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventSwapRequested,
		ActorID: callerID,
		Payload: events.SwapRequestedPayload{
			SwapID:             swap.ID,
			RequesterSlotID:    swap.RequesterSlotID,
			CounterpartySlotID: swap.CounterpartySlotID,
			CounterpartyID:     swap.CounterpartyID,
		},
	})
	return swap, nil
}

// RespondToSwap settles a PENDING swap. Only the invited counterparty may
// answer, exactly once. Acceptance exchanges the two slots' owners and parks
// both BUSY; rejection releases both back to SWAPPABLE with owners untouched.
func (s *SwapService) RespondToSwap(ctx context.Context, callerID, swapID string, accept bool) (*domain.Swap, error) {
	var swap *domain.Swap
	err := s.store.Transact(ctx, func(tx *store.Tx) error {
		existing, ok := tx.Swaps.Get(swapID)
		if !ok {
			return apperrors.NewNotFound("swap", map[string]any{"id": swapID})
		}
		if existing.Status != domain.SwapStatusPending {
			return apperrors.NewInvalidState("swap already settled", map[string]any{
				"id":     swapID,
				"status": string(existing.Status),
			})
		}
		if existing.CounterpartyID != callerID {
			return apperrors.NewForbidden("only the invited counterparty may respond")
		}

		mine, okMine := tx.Slots.Get(existing.RequesterSlotID)
		theirs, okTheirs := tx.Slots.Get(existing.CounterpartySlotID)
		if !okMine || !okTheirs {
			// Deletion is guarded against SWAP_PENDING, so a missing slot here
			// means the data itself is damaged, not that the caller raced.
			s.logger.Error("pending swap references missing slot",
				zap.String("swap_id", swapID),
				zap.Bool("requester_slot_present", okMine),
				zap.Bool("counterparty_slot_present", okTheirs))
			return apperrors.NewConsistencyFault("swap references a missing slot", map[string]any{"id": swapID})
		}

		// CounterpartyID was captured at request time and is not re-validated
		// against the slot's current owner; an ownership change through any
		// path other than this protocol would go unnoticed here. Surface the
		// drift in the logs instead of silently changing the behavior.
		if theirs.OwnerID != existing.CounterpartyID {
			s.logger.Warn("counterparty slot changed owner while swap was pending",
				zap.String("swap_id", swapID),
				zap.String("captured_owner", existing.CounterpartyID),
				zap.String("current_owner", theirs.OwnerID))
		}

		if accept {
			requesterOwner, counterpartyOwner := mine.OwnerID, theirs.OwnerID
			if _, err := tx.Slots.Update(mine.ID, func(sl *domain.Slot) {
				sl.OwnerID = counterpartyOwner
				sl.Status = domain.SlotStatusBusy
			}); err != nil {
				return err
			}
			if _, err := tx.Slots.Update(theirs.ID, func(sl *domain.Slot) {
				sl.OwnerID = requesterOwner
				sl.Status = domain.SlotStatusBusy
			}); err != nil {
				return err
			}
		} else {
			release := func(sl *domain.Slot) { sl.Status = domain.SlotStatusSwappable }
			if _, err := tx.Slots.Update(mine.ID, release); err != nil {
				return err
			}
			if _, err := tx.Slots.Update(theirs.ID, release); err != nil {
				return err
			}
		}

		updated, err := tx.Swaps.Update(swapID, func(sw *domain.Swap) {
			if accept {
				sw.Status = domain.SwapStatusAccepted
			} else {
				sw.Status = domain.SwapStatusRejected
			}
			now := time.Now().UTC()
			sw.RespondedAt = &now
		})
		if err != nil {
			return err
		}
		swap = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSwapOutcome(string(swap.Status))
	s.publish(ctx, events.Event{
		Type:    events.EventSwapResponded,
		ActorID: callerID,
		Payload: events.SwapRespondedPayload{SwapID: swap.ID, Status: swap.Status},
	})
	return swap, nil
}

// ListSwapsForUser returns the caller's negotiations: incoming where the
// caller is the invited counterparty, outgoing where the caller initiated.
// Order is the store's insertion order.
func (s *SwapService) ListSwapsForUser(ctx context.Context, callerID string) (*SwapInbox, error) {
	inbox := &SwapInbox{}
	err := s.store.Transact(ctx, func(tx *store.Tx) error {
		inbox.Incoming = tx.Swaps.Find(func(sw *domain.Swap) bool { return sw.CounterpartyID == callerID })
		inbox.Outgoing = tx.Swaps.Find(func(sw *domain.Swap) bool { return sw.RequesterID == callerID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inbox, nil
}

func (s *SwapService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
