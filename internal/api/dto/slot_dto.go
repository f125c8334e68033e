package dto

import (
	"time"

	"github.com/spec-kit/slot-swap-service/internal/domain"
)

// CreateSlotRequest payload.
type CreateSlotRequest struct {
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// UpdateSlotRequest payload; omitted fields are left untouched.
type UpdateSlotRequest struct {
	Title     *string `json:"title"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Status    *string `json:"status"`
}

// SlotResponse is the API shape for a slot.
type SlotResponse struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Title     string     `json:"title"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NewSlotResponse maps a domain slot.
func NewSlotResponse(s *domain.Slot) SlotResponse {
	return SlotResponse{
		ID:        s.ID,
		OwnerID:   s.OwnerID,
		Title:     s.Title,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// NewSlotListResponse maps a list of domain slots.
func NewSlotListResponse(slots []*domain.Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, NewSlotResponse(s))
	}
	return out
}
