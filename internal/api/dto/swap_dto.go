package dto

import (
	"time"

	"github.com/spec-kit/slot-swap-service/internal/domain"
	"github.com/spec-kit/slot-swap-service/internal/service"
)

// CreateSwapRequest payload.
type CreateSwapRequest struct {
	RequesterSlotID    string `json:"requester_slot_id"`
	CounterpartySlotID string `json:"counterparty_slot_id"`
}

// RespondSwapRequest payload. Accept is a pointer so a missing field is
// distinguishable from an explicit false.
type RespondSwapRequest struct {
	Accept *bool `json:"accept"`
}

// SwapResponse is the API shape for a swap negotiation.
type SwapResponse struct {
	ID                 string     `json:"id"`
	RequesterSlotID    string     `json:"requester_slot_id"`
	CounterpartySlotID string     `json:"counterparty_slot_id"`
	RequesterID        string     `json:"requester_id"`
	CounterpartyID     string     `json:"counterparty_id"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	RespondedAt        *time.Time `json:"responded_at,omitempty"`
}

// NewSwapResponse maps a domain swap.
func NewSwapResponse(s *domain.Swap) SwapResponse {
	return SwapResponse{
		ID:                 s.ID,
		RequesterSlotID:    s.RequesterSlotID,
		CounterpartySlotID: s.CounterpartySlotID,
		RequesterID:        s.RequesterID,
		CounterpartyID:     s.CounterpartyID,
		Status:             string(s.Status),
		CreatedAt:          s.CreatedAt,
		RespondedAt:        s.RespondedAt,
	}
}

// SwapInboxResponse groups a user's swaps by direction.
type SwapInboxResponse struct {
	Incoming []SwapResponse `json:"incoming"`
	Outgoing []SwapResponse `json:"outgoing"`
}

// NewSwapInboxResponse maps a service inbox.
func NewSwapInboxResponse(inbox *service.SwapInbox) SwapInboxResponse {
	out := SwapInboxResponse{
		Incoming: make([]SwapResponse, 0, len(inbox.Incoming)),
		Outgoing: make([]SwapResponse, 0, len(inbox.Outgoing)),
	}
	for _, s := range inbox.Incoming {
		out.Incoming = append(out.Incoming, NewSwapResponse(s))
	}
	for _, s := range inbox.Outgoing {
		out.Outgoing = append(out.Outgoing, NewSwapResponse(s))
	}
	return out
}
