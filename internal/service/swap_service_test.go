package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/slot-swap-service/internal/domain"
	"github.com/spec-kit/slot-swap-service/internal/observability"
	"github.com/spec-kit/slot-swap-service/internal/store"
	"github.com/spec-kit/slot-swap-service/pkg/util"
)

func TestRequestSwap(t *testing.T) {
	t.Parallel()

	t.Run("creates pending swap and locks both slots", func(t *testing.T) {
		swaps, slots := newTestSwapService(t)
		mine := seedSlot(t, slots, "u1", "mine", domain.SlotStatusSwappable)
		theirs := seedSlot(t, slots, "u2", "theirs", domain.SlotStatusSwappable)

		swap, err := swaps.RequestSwap(context.Background(), "u1", mine.ID, theirs.ID)
		require.NoError(t, err)
		require.Equal(t, domain.SwapStatusPending, swap.Status)
		require.Equal(t, "u1", swap.RequesterID)
		require.Equal(t, "u2", swap.CounterpartyID)
		require.Nil(t, swap.RespondedAt)

		require.Equal(t, domain.SlotStatusSwapPending, getSlot(t, slots, "u1", mine.ID).Status)
		require.Equal(t, domain.SlotStatusSwapPending, getSlot(t, slots, "u2", theirs.ID).Status)
	})

	t.Run("missing requester slot reports not found", func(t *testing.T) {
		swaps, slots := newTestSwapService(t)
		theirs := seedSlot(t, slots, "u2", "theirs", domain.SlotStatusSwappable)

		_, err := swaps.RequestSwap(context.Background(), "u1", "missing", theirs.ID)
		require.True(t, util.HasCode(err, util.CodeNotFound), "got %v", err)
	})

	t.Run("requesting with another user's slot is forbidden", func(t *testing.T) {
		swaps, slots := newTestSwapService(t)
		mine := seedSlot(t, slots, "u1", "mine", domain.SlotStatusSwappable)
		theirs := seedSlot(t, slots, "u2", "theirs", domain.SlotStatusSwappable)

		_, err := swaps.RequestSwap(context.Background(), "u3", mine.ID, theirs.ID)
		require.True(t, util.HasCode(err, util.CodeForbidden), "got %v", err)
	})

	t.Run("missing counterparty slot reports not found", func(t *testing.T) {
		swaps, slots := newTestSwapService(t)
		mine := seedSlot(t, slots, "u1", "mine", domain.SlotStatusSwappable)

		_, err := swaps.RequestSwap(context.Background(), "u1", mine.ID, "missing")
		require.True(t, util.HasCode(err, util.CodeNotFound), "got %v", err)
	})

	t.Run("self swap is rejected without mutating anything", func(t *testing.T) {
		swaps, slots := newTestSwapService(t)
		mine := seedSlot(t, slots, "u1", "mine", domain.SlotStatusSwappable)

		_, err := swaps.RequestSwap(context.Background(), "u1", mine.ID, mine.ID)
		require.True(t, util.HasCode(err, util.CodeInvalidRequest), "got %v", err)

		require.Equal(t, domain.SlotStatusSwappable, getSlot(t, slots, "u1", mine.ID).Status)
		inbox, err := swaps.ListSwapsForUser(context.Background(), "u1")
		require.NoError(t, err)
		require.Empty(t, inbox.Outgoing)
	})

	t.Run("both slots must be swappable", func(t *testing.T) {
		swaps, slots := newTestSwapService(t)
		mine := seedSlot(t, slots, "u1", "mine", domain.SlotStatusSwappable)
		theirs := seedSlot(t, slots, "u2", "theirs", domain.SlotStatusBusy)

		_, err := swaps.RequestSwap(context.Background(), "u1", mine.ID, theirs.ID)
		require.True(t, util.HasCode(err, util.CodeInvalidState), "got %v", err)
		require.Equal(t, domain.SlotStatusSwappable, getSlot(t, slots, "u1", mine.ID).Status)
	})

	t.Run("a locked slot cannot enter a second negotiation", func(t *testing.T) {
		swaps, slots := newTestSwapService(t)
		mine := seedSlot(t, slots, "u1", "mine", domain.SlotStatusSwappable)
		theirs := seedSlot(t, slots, "u2", "theirs", domain.SlotStatusSwappable)
		other := seedSlot(t, slots, "u3", "other", domain.SlotStatusSwappable)

		_, err := swaps.RequestSwap(context.Background(), "u1", mine.ID, theirs.ID)
		require.NoError(t, err)

		_, err = swaps.RequestSwap(context.Background(), "u3", other.ID, theirs.ID)
		require.True(t, util.HasCode(err, util.CodeInvalidState), "got %v", err)
	})
}

func TestRespondToSwap(t *testing.T) {
	t.Parallel()

	t.Run("acceptance exchanges owners and parks both slots busy", func(t *testing.T) {
		swaps, slots := newTestSwapService(t)
		mine := seedSlot(t, slots, "u1", "mine", domain.SlotStatusSwappable)
		theirs := seedSlot(t, slots, "u2", "theirs", domain.SlotStatusSwappable)

		swap, err := swaps.RequestSwap(context.Background(), "u1", mine.ID, theirs.ID)
		require.NoError(t, err)

		settled, err := swaps.RespondToSwap(context.Background(), "u2", swap.ID, true)
		require.NoError(t, err)
		require.Equal(t, domain.SwapStatusAccepted, settled.Status)
		require.NotNil(t, settled.RespondedAt)

		// mine is now u2's, theirs is now u1's, both off the market.
		exMine := getSlot(t, slots, "u2", mine.ID)
		require.Equal(t, domain.SlotStatusBusy, exMine.Status)
		exTheirs := getSlot(t, slots, "u1", theirs.ID)
		require.Equal(t, domain.SlotStatusBusy, exTheirs.Status)
	})

	t.Run("rejection releases both slots with owners unchanged", func(t *testing.T) {
		swaps, slots := newTestSwapService(t)
		mine := seedSlot(t, slots, "u1", "mine", domain.SlotStatusSwappable)
		theirs := seedSlot(t, slots, "u2", "theirs", domain.SlotStatusSwappable)

		swap, err := swaps.RequestSwap(context.Background(), "u1", mine.ID, theirs.ID)
		require.NoError(t, err)

		settled, err := swaps.RespondToSwap(context.Background(), "u2", swap.ID, false)
		require.NoError(t, err)
		require.Equal(t, domain.SwapStatusRejected, settled.Status)
		require.NotNil(t, settled.RespondedAt)

		require.Equal(t, domain.SlotStatusSwappable, getSlot(t, slots, "u1", mine.ID).Status)
		require.Equal(t, domain.SlotStatusSwappable, getSlot(t, slots, "u2", theirs.ID).Status)
	})

	t.Run("unknown swap id reports not found", func(t *testing.T) {
		swaps, _ := newTestSwapService(t)
		_, err := swaps.RespondToSwap(context.Background(), "u2", "missing", true)
		require.True(t, util.HasCode(err, util.CodeNotFound), "got %v", err)
	})

	t.Run("only the invited counterparty may answer", func(t *testing.T) {
		swaps, slots := newTestSwapService(t)
		mine := seedSlot(t, slots, "u1", "mine", domain.SlotStatusSwappable)
		theirs := seedSlot(t, slots, "u2", "theirs", domain.SlotStatusSwappable)

		swap, err := swaps.RequestSwap(context.Background(), "u1", mine.ID, theirs.ID)
		require.NoError(t, err)

		// The requester cannot accept their own offer; neither can a bystander.
		_, err = swaps.RespondToSwap(context.Background(), "u1", swap.ID, true)
		require.True(t, util.HasCode(err, util.CodeForbidden), "got %v", err)
		_, err = swaps.RespondToSwap(context.Background(), "u3", swap.ID, true)
		require.True(t, util.HasCode(err, util.CodeForbidden), "got %v", err)
	})

	t.Run("pending swap whose slot vanished is a consistency fault", func(t *testing.T) {
		st := newTestStore(t)
		swaps := NewSwapService(st, nil, observability.NewMetrics(), zap.NewNop())
		slots := NewSlotService(st, nil)
		mine := seedSlot(t, slots, "u1", "mine", domain.SlotStatusSwappable)
		theirs := seedSlot(t, slots, "u2", "theirs", domain.SlotStatusSwappable)

		swap, err := swaps.RequestSwap(context.Background(), "u1", mine.ID, theirs.ID)
		require.NoError(t, err)

		// The delete guard makes this state unreachable through the API, so
		// damage the data directly.
		err = st.Transact(context.Background(), func(tx *store.Tx) error {
			return tx.Slots.Remove(theirs.ID)
		})
		require.NoError(t, err)

		_, err = swaps.RespondToSwap(context.Background(), "u2", swap.ID, true)
		require.True(t, util.HasCode(err, util.CodeConsistency), "got %v", err)

		// The failed response must not settle the swap.
		inbox, err := swaps.ListSwapsForUser(context.Background(), "u2")
		require.NoError(t, err)
		require.Len(t, inbox.Incoming, 1)
		require.Equal(t, domain.SwapStatusPending, inbox.Incoming[0].Status)
		require.Nil(t, inbox.Incoming[0].RespondedAt)
	})

	t.Run("counterparty slot reowned mid-negotiation still settles", func(t *testing.T) {
		st := newTestStore(t)
		swaps := NewSwapService(st, nil, observability.NewMetrics(), zap.NewNop())
		slots := NewSlotService(st, nil)
		mine := seedSlot(t, slots, "u1", "mine", domain.SlotStatusSwappable)
		theirs := seedSlot(t, slots, "u2", "theirs", domain.SlotStatusSwappable)

		swap, err := swaps.RequestSwap(context.Background(), "u1", mine.ID, theirs.ID)
		require.NoError(t, err)

		// Hand the counterparty slot to a third user behind the service's
		// back. The drift is logged, not rejected, and the captured
		// counterparty keeps the right to answer.
		err = st.Transact(context.Background(), func(tx *store.Tx) error {
			_, err := tx.Slots.Update(theirs.ID, func(sl *domain.Slot) { sl.OwnerID = "u9" })
			return err
		})
		require.NoError(t, err)

		settled, err := swaps.RespondToSwap(context.Background(), "u2", swap.ID, true)
		require.NoError(t, err)
		require.Equal(t, domain.SwapStatusAccepted, settled.Status)

		// Acceptance exchanges the current owners: mine goes to u9, theirs
		// goes back to u1, both off the market.
		require.Equal(t, domain.SlotStatusBusy, getSlot(t, slots, "u9", mine.ID).Status)
		require.Equal(t, domain.SlotStatusBusy, getSlot(t, slots, "u1", theirs.ID).Status)
	})

	t.Run("a settled swap is terminal regardless of the second answer", func(t *testing.T) {
		swaps, slots := newTestSwapService(t)
		mine := seedSlot(t, slots, "u1", "mine", domain.SlotStatusSwappable)
		theirs := seedSlot(t, slots, "u2", "theirs", domain.SlotStatusSwappable)

		swap, err := swaps.RequestSwap(context.Background(), "u1", mine.ID, theirs.ID)
		require.NoError(t, err)

		_, err = swaps.RespondToSwap(context.Background(), "u2", swap.ID, false)
		require.NoError(t, err)

		_, err = swaps.RespondToSwap(context.Background(), "u2", swap.ID, true)
		require.True(t, util.HasCode(err, util.CodeInvalidState), "got %v", err)
		_, err = swaps.RespondToSwap(context.Background(), "u2", swap.ID, false)
		require.True(t, util.HasCode(err, util.CodeInvalidState), "got %v", err)
	})
}

func TestListSwapsForUser(t *testing.T) {
	t.Parallel()

	swaps, slots := newTestSwapService(t)
	a1 := seedSlot(t, slots, "alice", "a1", domain.SlotStatusSwappable)
	b1 := seedSlot(t, slots, "bob", "b1", domain.SlotStatusSwappable)
	b2 := seedSlot(t, slots, "bob", "b2", domain.SlotStatusSwappable)
	c1 := seedSlot(t, slots, "carol", "c1", domain.SlotStatusSwappable)

	first, err := swaps.RequestSwap(context.Background(), "alice", a1.ID, b1.ID)
	require.NoError(t, err)
	second, err := swaps.RequestSwap(context.Background(), "carol", c1.ID, b2.ID)
	require.NoError(t, err)

	bobInbox, err := swaps.ListSwapsForUser(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, bobInbox.Incoming, 2)
	require.Empty(t, bobInbox.Outgoing)
	require.Equal(t, first.ID, bobInbox.Incoming[0].ID)
	require.Equal(t, second.ID, bobInbox.Incoming[1].ID)

	aliceInbox, err := swaps.ListSwapsForUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Empty(t, aliceInbox.Incoming)
	require.Len(t, aliceInbox.Outgoing, 1)
	require.Equal(t, first.ID, aliceInbox.Outgoing[0].ID)
}

func TestFullNegotiationRoundTrip(t *testing.T) {
	t.Parallel()

	swaps, slots := newTestSwapService(t)

	s1, err := slots.CreateSlot(context.Background(), "a", SlotCreateInput{Title: "s1", StartTime: "t0", EndTime: "t1"})
	require.NoError(t, err)
	require.Equal(t, domain.SlotStatusBusy, s1.Status)
	swappable := domain.SlotStatusSwappable
	_, err = slots.UpdateSlot(context.Background(), "a", s1.ID, SlotUpdateInput{Status: &swappable})
	require.NoError(t, err)

	s2 := seedSlot(t, slots, "b", "s2", domain.SlotStatusSwappable)

	swap, err := swaps.RequestSwap(context.Background(), "a", s1.ID, s2.ID)
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusPending, swap.Status)

	settled, err := swaps.RespondToSwap(context.Background(), "b", swap.ID, true)
	require.NoError(t, err)
	require.Equal(t, domain.SwapStatusAccepted, settled.Status)

	gotS1 := getSlot(t, slots, "b", s1.ID)
	require.Equal(t, domain.SlotStatusBusy, gotS1.Status)
	gotS2 := getSlot(t, slots, "a", s2.ID)
	require.Equal(t, domain.SlotStatusBusy, gotS2.Status)
}

func TestConcurrentRequestsOnSameSlot(t *testing.T) {
	t.Parallel()

	swaps, slots := newTestSwapService(t)
	target := seedSlot(t, slots, "owner", "target", domain.SlotStatusSwappable)

	const contenders = 8
	slotIDs := make([]string, contenders)
	for i := 0; i < contenders; i++ {
		slotIDs[i] = seedSlot(t, slots, "rival", "rival-slot", domain.SlotStatusSwappable).ID
	}

	var wg sync.WaitGroup
	wg.Add(contenders)
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		go func(slotID string) {
			defer wg.Done()
			_, err := swaps.RequestSwap(context.Background(), "rival", slotID, target.ID)
			results <- err
		}(slotIDs[i])
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case util.HasCode(err, util.CodeInvalidState):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, won, "exactly one request may lock the slot")
	require.Equal(t, contenders-1, lost)
	require.Equal(t, domain.SlotStatusSwapPending, getSlot(t, slots, "owner", target.ID).Status)
}
