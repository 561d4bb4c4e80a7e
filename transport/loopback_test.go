package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/groupmesh/groupmesh/types"
)

func TestLoopback_RankAndCapability(t *testing.T) {
	t.Parallel()

	hub := NewLoopbackHub(4, true)
	require.Equal(t, 4, hub.WorldSize())

	tp := hub.Transport(2)
	require.Equal(t, 2, tp.Rank())
	require.True(t, tp.CPUCapable())

	require.False(t, NewLoopbackHub(4, false).Transport(0).CPUCapable())
}

func TestLoopback_CreateGroup(t *testing.T) {
	t.Parallel()

	hub := NewLoopbackHub(4, true)
	ranks := []int{0, 1, 2, 3}

	groups := make([]types.Group, 4)
	var wg sync.WaitGroup
	for _, rank := range ranks {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()

			group, err := hub.Transport(rank).CreateGroup(t.Context(), types.GroupRequest{
				Name:    "world",
				Ranks:   ranks,
				Timeout: 5 * time.Second,
			})
			require.NoError(t, err)
			groups[rank] = group
		}(rank)
	}
	wg.Wait()

	for rank, group := range groups {
		require.Equal(t, "world", group.Name())
		require.Equal(t, ranks, group.Ranks())
		require.Equal(t, 4, group.Size())
		require.Equal(t, rank, group.LocalRank())
		require.Equal(t, types.BackendDefault, group.Backend())
	}

	require.EqualValues(t, 4, hub.CreateGroupCalls())
}

func TestLoopback_CreateGroup_SubsetAndOrder(t *testing.T) {
	t.Parallel()

	hub := NewLoopbackHub(8, true)

	// A strided data group: the local rank follows list order, not
	// numeric order.
	ranks := []int{1, 3, 5, 7}

	var wg sync.WaitGroup
	for i, rank := range ranks {
		wg.Add(1)
		go func(idx, rank int) {
			defer wg.Done()

			group, err := hub.Transport(rank).CreateGroup(t.Context(), types.GroupRequest{
				Name:    "data-1",
				Ranks:   ranks,
				Timeout: 5 * time.Second,
			})
			require.NoError(t, err)
			require.Equal(t, idx, group.LocalRank())
		}(i, rank)
	}
	wg.Wait()
}

func TestLoopback_CreateGroup_Validation(t *testing.T) {
	t.Parallel()

	hub := NewLoopbackHub(4, true)
	tp := hub.Transport(0)

	tests := []struct {
		name string
		req  types.GroupRequest
		want error
	}{
		{"empty name", types.GroupRequest{Ranks: []int{0}}, types.ErrInvalidGroupRequest},
		{"empty ranks", types.GroupRequest{Name: "g"}, types.ErrInvalidGroupRequest},
		{"rank out of range", types.GroupRequest{Name: "g", Ranks: []int{0, 7}}, types.ErrInvalidGroupRequest},
		{"duplicate rank", types.GroupRequest{Name: "g", Ranks: []int{0, 0}}, types.ErrInvalidGroupRequest},
		{"caller not member", types.GroupRequest{Name: "g", Ranks: []int{1, 2}}, types.ErrNotMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tp.CreateGroup(t.Context(), tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}

	// Validation failures never count as construction calls reaching
	// the rendezvous... but the counter tracks attempts, so assert it
	// stayed at zero: rejected requests return before counting.
	require.EqualValues(t, 0, hub.CreateGroupCalls())
}

func TestLoopback_CreateGroup_Timeout(t *testing.T) {
	t.Parallel()

	hub := NewLoopbackHub(2, true)

	// Rank 1 never calls: rank 0 must fail with the timeout, not hang.
	_, err := hub.Transport(0).CreateGroup(t.Context(), types.GroupRequest{
		Name:    "abandoned",
		Ranks:   []int{0, 1},
		Timeout: 50 * time.Millisecond,
	})
	require.ErrorIs(t, err, types.ErrGroupTimeout)
}

func TestLoopback_CreateGroup_MembershipMismatch(t *testing.T) {
	t.Parallel()

	hub := NewLoopbackHub(4, true)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = hub.Transport(0).CreateGroup(t.Context(), types.GroupRequest{
			Name:    "split-brain",
			Ranks:   []int{0, 1},
			Timeout: 5 * time.Second,
		})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = hub.Transport(1).CreateGroup(t.Context(), types.GroupRequest{
			Name:    "split-brain",
			Ranks:   []int{1, 2},
			Timeout: 5 * time.Second,
		})
	}()
	wg.Wait()

	// One side published first; the other observed the disagreement.
	// Both must fail rather than deadlock.
	require.Error(t, errs[0])
	require.Error(t, errs[1])
	require.True(t,
		errors.Is(errs[0], types.ErrMembershipMismatch) || errors.Is(errs[1], types.ErrMembershipMismatch),
		"at least one side must report the mismatch, got %v and %v", errs[0], errs[1])
}

func TestLoopback_Barrier(t *testing.T) {
	t.Parallel()

	hub := NewLoopbackHub(3, true)
	ranks := []int{0, 1, 2}

	var wg sync.WaitGroup
	for _, rank := range ranks {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()

			group, err := hub.Transport(rank).CreateGroup(t.Context(), types.GroupRequest{
				Name:    "barrier-group",
				Ranks:   ranks,
				Timeout: 5 * time.Second,
			})
			require.NoError(t, err)

			// Two consecutive barriers: generations must not blend.
			require.NoError(t, group.Barrier(t.Context()))
			require.NoError(t, group.Barrier(t.Context()))
		}(rank)
	}
	wg.Wait()
}

func TestLoopback_Broadcast(t *testing.T) {
	t.Parallel()

	hub := NewLoopbackHub(4, true)
	ranks := []int{0, 1, 2, 3}
	payload := []byte("topology-blob")

	results := make([][]byte, 4)
	var wg sync.WaitGroup
	for _, rank := range ranks {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()

			group, err := hub.Transport(rank).CreateGroup(t.Context(), types.GroupRequest{
				Name:    "bcast-group",
				Ranks:   ranks,
				Timeout: 5 * time.Second,
			})
			require.NoError(t, err)

			var sent []byte
			if rank == 2 {
				sent = payload
			}
			got, err := group.Broadcast(t.Context(), 2, sent)
			require.NoError(t, err)
			results[rank] = got
		}(rank)
	}
	wg.Wait()

	for rank, got := range results {
		require.Equal(t, payload, got, "rank %d", rank)
	}
}

func TestLoopback_Broadcast_LateMember(t *testing.T) {
	t.Parallel()

	hub := NewLoopbackHub(2, true)
	ranks := []int{0, 1}
	payload := []byte("late-arrival")

	groups := make([]types.Group, 2)
	var wg sync.WaitGroup
	for _, rank := range ranks {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()

			group, err := hub.Transport(rank).CreateGroup(t.Context(), types.GroupRequest{
				Name:    "staggered",
				Ranks:   ranks,
				Timeout: 5 * time.Second,
			})
			require.NoError(t, err)
			groups[rank] = group
		}(rank)
	}
	wg.Wait()

	// Members of a collective are ordered, not simultaneous: the root
	// publishes and returns before the other member even enters its
	// matching call. The payload must still be there for it.
	got, err := groups[0].Broadcast(t.Context(), 0, payload)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	ctx, cancel := context.WithTimeout(t.Context(), 500*time.Millisecond)
	defer cancel()

	got, err = groups[1].Broadcast(ctx, 0, nil)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	// A second staggered round: the first round's slot was reclaimed
	// after both members consumed it, so sequence numbers stay aligned.
	got, err = groups[0].Broadcast(t.Context(), 0, []byte("round-2"))
	require.NoError(t, err)
	require.Equal(t, []byte("round-2"), got)

	got, err = groups[1].Broadcast(ctx, 0, nil)
	require.NoError(t, err)
	require.Equal(t, []byte("round-2"), got)
}

func TestLoopback_Broadcast_RootNotMember(t *testing.T) {
	t.Parallel()

	hub := NewLoopbackHub(4, true)
	ranks := []int{0, 1}

	var group types.Group
	var wg sync.WaitGroup
	for _, rank := range ranks {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()

			g, err := hub.Transport(rank).CreateGroup(t.Context(), types.GroupRequest{
				Name:    "small",
				Ranks:   ranks,
				Timeout: 5 * time.Second,
			})
			require.NoError(t, err)
			if rank == 0 {
				group = g
			}
		}(rank)
	}
	wg.Wait()

	_, err := group.Broadcast(t.Context(), 3, nil)
	require.ErrorIs(t, err, types.ErrNotMember)
}

func TestLoopback_ContextCancellation(t *testing.T) {
	t.Parallel()

	hub := NewLoopbackHub(2, true)

	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := hub.Transport(0).CreateGroup(ctx, types.GroupRequest{
		Name:  "cancelled",
		Ranks: []int{0, 1},
	})
	require.ErrorIs(t, err, context.Canceled)
}
