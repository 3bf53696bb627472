package registry

import (
	"delivery-fleet-sim/internal/domain"
	"slices"
)

// Filter returns the packages matching keep, sorted by id for stable output.
func (r *Registry) Filter(keep func(*domain.Package) bool) []*domain.Package {
	var out []*domain.Package
	for _, p := range r.Values() {
		if keep(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Package) int { return a.PackageID - b.PackageID })
	return out
}

func (r *Registry) WithStatus(statuses ...domain.PackageStatus) []*domain.Package {
	return r.Filter(func(p *domain.Package) bool { return slices.Contains(statuses, p.Status) })
}

func (r *Registry) AtHub() []*domain.Package { return r.WithStatus(domain.StatusAtHub) }

func (r *Registry) Unavailable() []*domain.Package { return r.WithStatus(domain.StatusUnavailable) }

func (r *Registry) OnTrucks() []*domain.Package {
	return r.WithStatus(domain.StatusOnTruck, domain.StatusInTransit, domain.StatusNextStop)
}

func (r *Registry) Delivered() []*domain.Package { return r.WithStatus(domain.StatusDelivered) }

// CountByStatus tallies packages per status; every status has an entry.
func (r *Registry) CountByStatus() map[domain.PackageStatus]int {
	counts := make(map[domain.PackageStatus]int, len(domain.AllPackageStatuses()))
	for _, s := range domain.AllPackageStatuses() {
		counts[s] = 0
	}
	for _, p := range r.Values() {
		counts[p.Status]++
	}
	return counts
}

// Undelivered counts packages that have not reached DELIVERED.
func (r *Registry) Undelivered() int {
	n := 0
	for _, p := range r.Values() {
		if p.Status != domain.StatusDelivered {
			n++
		}
	}
	return n
}
