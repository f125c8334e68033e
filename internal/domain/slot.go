package domain

import "time"

// SlotStatus enumerates lifecycle states for slots.
type SlotStatus string

const (
	// SlotStatusBusy is the initial state: the slot is booked and off the market.
	SlotStatusBusy SlotStatus = "BUSY"
	// SlotStatusSwappable marks the slot as offered for trade.
	SlotStatusSwappable SlotStatus = "SWAPPABLE"
	// SlotStatusSwapPending locks the slot inside exactly one in-flight
	// negotiation. The lock is visible state, not a hidden mutex, so it
	// survives listing and inspection.
	SlotStatusSwapPending SlotStatus = "SWAP_PENDING"
)

// ValidSlotStatus reports whether s is a known status value. Unknown strings
// are rejected at the boundary rather than stored.
func ValidSlotStatus(s SlotStatus) bool {
	switch s {
	case SlotStatusBusy, SlotStatusSwappable, SlotStatusSwapPending:
		return true
	}
	return false
}

// CanOwnerSetStatus reports whether an owner-initiated edit may move a slot
// from one status to another. Owners only toggle BUSY and SWAPPABLE;
// SWAP_PENDING is entered and left exclusively by the swap protocol.
func CanOwnerSetStatus(from, to SlotStatus) bool {
	if from == SlotStatusSwapPending || to == SlotStatusSwapPending {
		return false
	}
	return true
}

// Slot is a single owned, schedulable interval eligible for trading.
// Title, StartTime and EndTime are opaque to the core: no overlap or
// ordering validation is performed on them.
type Slot struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"ownerId"`
	Title     string     `json:"title"`
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
	Status    SlotStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func (s *Slot) GetID() string   { return s.ID }
func (s *Slot) SetID(id string) { s.ID = id }

// Clone returns a deep copy safe to mutate independently.
func (s *Slot) Clone() *Slot {
	cp := *s
	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		cp.UpdatedAt = &t
	}
	return &cp
}
