package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidSlotStatus(t *testing.T) {
	t.Parallel()

	require.True(t, ValidSlotStatus(SlotStatusBusy))
	require.True(t, ValidSlotStatus(SlotStatusSwappable))
	require.True(t, ValidSlotStatus(SlotStatusSwapPending))
	require.False(t, ValidSlotStatus("ON_HOLD"))
	require.False(t, ValidSlotStatus(""))
	require.False(t, ValidSlotStatus("busy"))
}

func TestCanOwnerSetStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		from    SlotStatus
		to      SlotStatus
		allowed bool
	}{
		{"busy to swappable", SlotStatusBusy, SlotStatusSwappable, true},
		{"swappable to busy", SlotStatusSwappable, SlotStatusBusy, true},
		{"busy to busy", SlotStatusBusy, SlotStatusBusy, true},
		{"swappable to swappable", SlotStatusSwappable, SlotStatusSwappable, true},
		{"busy to pending", SlotStatusBusy, SlotStatusSwapPending, false},
		{"swappable to pending", SlotStatusSwappable, SlotStatusSwapPending, false},
		{"pending to busy", SlotStatusSwapPending, SlotStatusBusy, false},
		{"pending to swappable", SlotStatusSwapPending, SlotStatusSwappable, false},
		{"pending to pending", SlotStatusSwapPending, SlotStatusSwapPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.allowed, CanOwnerSetStatus(tc.from, tc.to))
		})
	}
}

func TestSlotClone(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	slot := &Slot{ID: "s1", OwnerID: "u1", Status: SlotStatusBusy, UpdatedAt: &now}
	cp := slot.Clone()

	cp.OwnerID = "u2"
	*cp.UpdatedAt = cp.UpdatedAt.Add(time.Hour)

	require.Equal(t, "u1", slot.OwnerID)
	require.Equal(t, now, *slot.UpdatedAt)
}
