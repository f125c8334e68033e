package domain

import "time"

// SwapStatus enumerates outcomes of a swap negotiation.
type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "PENDING"
	SwapStatusAccepted SwapStatus = "ACCEPTED"
	SwapStatusRejected SwapStatus = "REJECTED"
)

// Swap is a negotiation record pairing exactly two slots and their owners as
// of request time. RequesterID and CounterpartyID are captured at creation
// and never rewritten, even if the underlying slots later change owner.
// Swaps are append-only: once created they move PENDING -> ACCEPTED or
// PENDING -> REJECTED exactly once and are never deleted.
type Swap struct {
	ID                 string     `json:"id"`
	RequesterSlotID    string     `json:"requesterSlotId"`
	CounterpartySlotID string     `json:"counterpartySlotId"`
	RequesterID        string     `json:"requesterId"`
	CounterpartyID     string     `json:"counterpartyId"`
	Status             SwapStatus `json:"status"`
	CreatedAt          time.Time  `json:"createdAt"`
	RespondedAt        *time.Time `json:"respondedAt,omitempty"`
}

func (s *Swap) GetID() string   { return s.ID }
func (s *Swap) SetID(id string) { s.ID = id }

// Clone returns a deep copy safe to mutate independently.
func (s *Swap) Clone() *Swap {
	cp := *s
	if s.RespondedAt != nil {
		t := *s.RespondedAt
		cp.RespondedAt = &t
	}
	return &cp
}
