// Package priority orders assignment items by their earliest deadline.
package priority

import "delivery-fleet-sim/internal/domain"

// DeadlineHeap is a binary min-heap of items keyed by Item.Deadline.
// Equal keys come out in no particular order.
type DeadlineHeap struct {
	data []domain.Item
}

func NewDeadlineHeap(capacity int) *DeadlineHeap {
	return &DeadlineHeap{data: make([]domain.Item, 0, capacity)}
}

func (h *DeadlineHeap) Len() int { return len(h.data) }

// Push appends the item and sifts it up. O(log n).
func (h *DeadlineHeap) Push(it domain.Item) {
	h.data = append(h.data, it)
	h.up(len(h.data) - 1)
}

// Pop removes the item with the earliest deadline. O(log n).
// The second result is false when the heap is empty.
func (h *DeadlineHeap) Pop() (domain.Item, bool) {
	if len(h.data) == 0 {
		return nil, false
	}
	last := len(h.data) - 1
	h.swap(0, last)
	it := h.data[last]
	h.data[last] = nil
	h.data = h.data[:last]
	h.down(0)
	return it, true
}

// Peek returns the root without removing it.
func (h *DeadlineHeap) Peek() (domain.Item, bool) {
	if len(h.data) == 0 {
		return nil, false
	}
	return h.data[0], true
}

func (h *DeadlineHeap) key(i int) domain.SimTime { return h.data[i].Deadline() }

func (h *DeadlineHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.key(i) >= h.key(parent) {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *DeadlineHeap) down(i int) {
	n := len(h.data)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && h.key(left) < h.key(smallest) {
			smallest = left
		}
		if right < n && h.key(right) < h.key(smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

func (h *DeadlineHeap) swap(i, j int) { h.data[i], h.data[j] = h.data[j], h.data[i] }

// valid reports whether every node's key is <= both children's keys.
func (h *DeadlineHeap) valid() bool {
	for i := range h.data {
		for _, c := range []int{2*i + 1, 2*i + 2} {
			if c < len(h.data) && h.key(c) < h.key(i) {
				return false
			}
		}
	}
	return true
}

// Drain pops every item, returning them in deadline order.
func (h *DeadlineHeap) Drain() []domain.Item {
	out := make([]domain.Item, 0, len(h.data))
	for {
		it, ok := h.Pop()
		if !ok {
			return out
		}
		out = append(out, it)
	}
}
