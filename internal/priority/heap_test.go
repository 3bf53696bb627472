package priority

import (
	"delivery-fleet-sim/internal/domain"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func single(id int, deadline domain.SimTime) domain.Item {
	return domain.Item{domain.NewPackage(id, "X", deadline, 1, "")}
}

func TestDeadlineHeapPopOrder(t *testing.T) {
	h := NewDeadlineHeap(4)
	h.Push(single(1, domain.EndOfDay))
	h.Push(single(2, 10*3600+30*60))
	h.Push(single(3, 9*3600))
	h.Push(domain.Item{
		domain.NewPackage(4, "X", domain.EndOfDay, 1, ""),
		domain.NewPackage(5, "X", 10*3600, 1, ""),
	})

	var got []domain.SimTime
	for {
		it, ok := h.Pop()
		if !ok {
			break
		}
		got = append(got, it.Deadline())
	}

	require.Equal(t, []domain.SimTime{9 * 3600, 10 * 3600, 10*3600 + 30*60, domain.EndOfDay}, got)
}

func TestDeadlineHeapEmpty(t *testing.T) {
	h := NewDeadlineHeap(0)
	_, ok := h.Pop()
	require.False(t, ok)
	_, ok = h.Peek()
	require.False(t, ok)
}

func TestDeadlineHeapInvariantUnderInterleaving(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	h := NewDeadlineHeap(0)
	var last domain.SimTime

	for i := 0; i < 2000; i++ {
		if rng.Intn(3) > 0 || h.Len() == 0 {
			h.Push(single(i, domain.SimTime(rng.Intn(86400))))
		} else {
			root, _ := h.Peek()
			it, ok := h.Pop()
			require.True(t, ok)
			require.Equal(t, root.Deadline(), it.Deadline())
			last = it.Deadline()
			if next, ok := h.Peek(); ok {
				require.GreaterOrEqual(t, next.Deadline(), last)
			}
		}
		require.True(t, h.valid(), "heap invariant broken after op %d", i)
	}

	drained := h.Drain()
	for i := 1; i < len(drained); i++ {
		require.LessOrEqual(t, drained[i-1].Deadline(), drained[i].Deadline())
	}
	require.Zero(t, h.Len())
}
