package events

import (
	"time"

	"github.com/spec-kit/slot-swap-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSlotCreated   EventType = "slot_created"
	EventSlotUpdated   EventType = "slot_updated"
	EventSlotDeleted   EventType = "slot_deleted"
	EventSwapRequested EventType = "swap_requested"
	EventSwapResponded EventType = "swap_responded"
)

// Event represents a domain event emitted by services. ID and Timestamp are
// filled by the dispatcher when left empty.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SlotCreatedPayload payload.
type SlotCreatedPayload struct {
	SlotID string `json:"slot_id"`
	Title  string `json:"title"`
}

// SlotUpdatedPayload payload.
type SlotUpdatedPayload struct {
	SlotID    string            `json:"slot_id"`
	OldStatus domain.SlotStatus `json:"old_status"`
	NewStatus domain.SlotStatus `json:"new_status"`
}

// SlotDeletedPayload payload.
type SlotDeletedPayload struct {
	SlotID string `json:"slot_id"`
}

// SwapRequestedPayload payload.
type SwapRequestedPayload struct {
	SwapID             string `json:"swap_id"`
	RequesterSlotID    string `json:"requester_slot_id"`
	CounterpartySlotID string `json:"counterparty_slot_id"`
	CounterpartyID     string `json:"counterparty_id"`
}

// SwapRespondedPayload payload.
type SwapRespondedPayload struct {
	SwapID string            `json:"swap_id"`
	Status domain.SwapStatus `json:"status"`
}
