// Package registry is the id-keyed store of every package in a run.
//
// It is a fixed-bucket hash table: ids hash by integer modulo the bucket
// count and collisions chain within a bucket. The bucket count is chosen
// once and the table never resizes.
package registry

import "delivery-fleet-sim/internal/domain"

type node struct {
	key  int
	pkg  *domain.Package
	next *node
}

type Registry struct {
	buckets []*node
	size    int
}

// New allocates capacity buckets (at least one).
func New(capacity int) *Registry {
	if capacity < 1 {
		capacity = 1
	}
	return &Registry{buckets: make([]*node, capacity)}
}

func (r *Registry) hash(id int) int {
	h := id % len(r.buckets)
	if h < 0 {
		h += len(r.buckets)
	}
	return h
}

// Insert stores pkg under id, replacing any package already stored there.
func (r *Registry) Insert(id int, pkg *domain.Package) {
	i := r.hash(id)
	for n := r.buckets[i]; n != nil; n = n.next {
		if n.key == id {
			n.pkg = pkg
			return
		}
	}
	r.buckets[i] = &node{key: id, pkg: pkg, next: r.buckets[i]}
	r.size++
}

// Get returns the package stored under id; ok is false when absent.
func (r *Registry) Get(id int) (*domain.Package, bool) {
	for n := r.buckets[r.hash(id)]; n != nil; n = n.next {
		if n.key == id {
			return n.pkg, true
		}
	}
	return nil, false
}

// Delete removes id and returns the package that was stored.
func (r *Registry) Delete(id int) (*domain.Package, bool) {
	i := r.hash(id)
	var prev *node
	for n := r.buckets[i]; n != nil; n = n.next {
		if n.key == id {
			if prev == nil {
				r.buckets[i] = n.next
			} else {
				prev.next = n.next
			}
			r.size--
			return n.pkg, true
		}
		prev = n
	}
	return nil, false
}

// Values returns every stored package exactly once, in bucket order.
func (r *Registry) Values() []*domain.Package {
	out := make([]*domain.Package, 0, r.size)
	for _, head := range r.buckets {
		for n := head; n != nil; n = n.next {
			out = append(out, n.pkg)
		}
	}
	return out
}

func (r *Registry) Len() int { return r.size }

// Capacity is the fixed bucket count.
func (r *Registry) Capacity() int { return len(r.buckets) }

// Bucket lists the ids chained in bucket i; nil when i is out of range.
func (r *Registry) Bucket(i int) []int {
	if i < 0 || i >= len(r.buckets) {
		return nil
	}
	var ids []int
	for n := r.buckets[i]; n != nil; n = n.next {
		ids = append(ids, n.key)
	}
	return ids
}
