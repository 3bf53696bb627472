package scenario

import (
	"delivery-fleet-sim/internal/adapters/distance"
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/ports"
	"delivery-fleet-sim/internal/services"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownLocation means an address matched no row of the location table.
var ErrUnknownLocation = errors.New("unknown location")

// World is everything the driver needs, resolved and validated.
type World struct {
	Hub             string
	Start           domain.SimTime
	EndOfDay        domain.SimTime
	ArrivalAt       domain.SimTime
	FleetSize       int
	Capacity        int
	SpeedMPH        float64
	RegistryBuckets int
	Packages        []*domain.Package
	Constraints     domain.Constraints
	Corrections     []services.Correction
	Distances       *distance.TableDistanceProvider
}

// Resolver maps free-form addresses to canonical location names.
type Resolver struct {
	rows []ports.LocationRecord
}

func NewResolver(rows []ports.LocationRecord) *Resolver {
	return &Resolver{rows: rows}
}

// Resolve returns the first location whose address text contains address.
// Matching ignores case and surrounding whitespace.
func (r *Resolver) Resolve(address string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(address))
	if needle == "" {
		return "", fmt.Errorf("resolve: empty address: %w", ErrUnknownLocation)
	}
	for _, row := range r.rows {
		if strings.EqualFold(strings.TrimSpace(row.Location), needle) {
			return row.Location, nil
		}
		if strings.Contains(strings.ToLower(row.PackageText), needle) {
			return row.Location, nil
		}
	}
	return "", fmt.Errorf("resolve %q: %w", address, ErrUnknownLocation)
}

// Build turns the pre-parsed tables and the scenario into a World.
func Build(sc Scenario, pkgs []ports.PackageRecord, locs []ports.LocationRecord, dists []ports.DistanceRecord) (*World, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, errors.New("build world: no packages")
	}

	table, err := distance.NewTableDistanceProvider(dists)
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}
	resolver := NewResolver(locs)

	hub, err := resolver.Resolve(sc.Hub)
	if err != nil {
		return nil, fmt.Errorf("build world: hub: %w", err)
	}
	if !table.Knows(hub) {
		return nil, fmt.Errorf("build world: hub %q: %w", hub, ports.ErrMissingDistance)
	}

	// Validate already parsed these.
	start, _ := domain.ParseSimTime(sc.Start)
	end, _ := domain.ParseSimTime(sc.EndOfDay)
	arrival, _ := domain.ParseSimTime(sc.ArrivalAt)

	w := &World{
		Hub:             hub,
		Start:           start,
		EndOfDay:        end,
		ArrivalAt:       arrival,
		FleetSize:       sc.Fleet.Size(),
		Capacity:        sc.Fleet.Capacity,
		SpeedMPH:        sc.Fleet.SpeedMPH,
		RegistryBuckets: sc.RegistryBuckets,
		Constraints:     domain.NewConstraints(),
		Distances:       table,
	}

	delayed := make(map[int]bool, len(sc.Delayed))
	for _, id := range sc.Delayed {
		delayed[id] = true
	}

	seen := make(map[int]bool, len(pkgs))
	var groups [][]int
	for _, rec := range pkgs {
		if seen[rec.PackageID] {
			return nil, fmt.Errorf("build world: duplicate package id %d", rec.PackageID)
		}
		seen[rec.PackageID] = true

		p, flags, err := buildPackage(rec, resolver, table)
		if err != nil {
			return nil, fmt.Errorf("build world: %w", err)
		}

		if len(flags.Trucks) > 0 {
			for _, t := range flags.Trucks {
				if t < 1 || t > w.FleetSize {
					return nil, fmt.Errorf("build world: package %d: truck %d outside fleet of %d", p.PackageID, t, w.FleetSize)
				}
			}
			w.Constraints.Restrict(p.PackageID, flags.Trucks...)
		}
		if len(flags.With) > 0 {
			groups = append(groups, append([]int{p.PackageID}, flags.With...))
		}
		if flags.Delayed || flags.WrongAddress || delayed[p.PackageID] {
			p.MarkUnavailable()
		}
		w.Packages = append(w.Packages, p)
	}

	for id, trucks := range sc.Eligibility {
		if !seen[id] {
			return nil, fmt.Errorf("build world: eligibility for unknown package %d", id)
		}
		w.Constraints.Restrict(id, trucks...)
	}

	groups = append(groups, sc.Bundles...)
	for _, g := range groups {
		for _, id := range g {
			if !seen[id] {
				return nil, fmt.Errorf("build world: bundle %v names unknown package %d", g, id)
			}
		}
	}
	w.Constraints.Bundles = MergeBundles(groups)

	for i, c := range sc.Corrections {
		if !seen[c.PackageID] {
			return nil, fmt.Errorf("build world: corrections[%d]: unknown package %d", i, c.PackageID)
		}
		dest, err := resolver.Resolve(c.Address)
		if err != nil {
			return nil, fmt.Errorf("build world: corrections[%d]: %w", i, err)
		}
		if !table.Knows(dest) {
			return nil, fmt.Errorf("build world: corrections[%d] %q: %w", i, dest, ports.ErrMissingDistance)
		}
		at, _ := domain.ParseSimTime(c.At)
		w.Corrections = append(w.Corrections, services.Correction{
			PackageID:   c.PackageID,
			At:          at,
			Address:     c.Address,
			Destination: dest,
		})
	}
	slices.SortStableFunc(w.Corrections, func(a, b services.Correction) int { return int(a.At - b.At) })

	return w, nil
}

func buildPackage(rec ports.PackageRecord, resolver *Resolver, table *distance.TableDistanceProvider) (*domain.Package, NoteFlags, error) {
	deadline, err := domain.ParseSimTime(rec.Deadline)
	if err != nil {
		return nil, NoteFlags{}, fmt.Errorf("package %d: %w", rec.PackageID, err)
	}

	dest, err := resolver.Resolve(rec.Address)
	if err != nil {
		return nil, NoteFlags{}, fmt.Errorf("package %d: %w", rec.PackageID, err)
	}
	if !table.Knows(dest) {
		return nil, NoteFlags{}, fmt.Errorf("package %d %q: %w", rec.PackageID, dest, ports.ErrMissingDistance)
	}

	flags, err := ParseNotes(rec.Notes)
	if err != nil {
		return nil, NoteFlags{}, fmt.Errorf("package %d: %w", rec.PackageID, err)
	}

	p := domain.NewPackage(rec.PackageID, dest, deadline, rec.Weight, rec.Notes)
	p.Address = rec.FullAddress()
	return p, flags, nil
}

// MergeBundles unions overlapping groups. Each result is sorted, and results
// are ordered by their smallest id.
func MergeBundles(groups [][]int) []domain.Bundle {
	var sets []map[int]bool
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		merged := make(map[int]bool, len(g))
		for _, id := range g {
			merged[id] = true
		}

		kept := sets[:0]
		for _, s := range sets {
			if overlaps(s, merged) {
				for id := range s {
					merged[id] = true
				}
				continue
			}
			kept = append(kept, s)
		}
		sets = append(kept, merged)
	}

	out := make([]domain.Bundle, 0, len(sets))
	for _, s := range sets {
		b := make(domain.Bundle, 0, len(s))
		for id := range s {
			b = append(b, id)
		}
		slices.Sort(b)
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b domain.Bundle) int { return a[0] - b[0] })
	return out
}

func overlaps(a, b map[int]bool) bool {
	for id := range a {
		if b[id] {
			return true
		}
	}
	return false
}
