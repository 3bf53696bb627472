package services

import (
	"delivery-fleet-sim/internal/adapters/distance"
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/registry"
)

// At 18 mph one mile takes exactly 200 seconds.
const (
	speed = 18.0
	eight = domain.SimTime(8 * 3600)
)

func testTable() *distance.MockDistanceProvider {
	return distance.NewMockDistanceProvider([]distance.MockPair{
		{From: "HUB", To: "A", Miles: 3},
		{From: "HUB", To: "B", Miles: 4.5},
		{From: "HUB", To: "C", Miles: 2},
		{From: "A", To: "B", Miles: 1.5},
		{From: "A", To: "C", Miles: 2.5},
		{From: "B", To: "C", Miles: 3},
	})
}

func newRegistry(pkgs ...*domain.Package) *registry.Registry {
	r := registry.New(10)
	for _, p := range pkgs {
		r.Insert(p.PackageID, p)
	}
	return r
}

func destinations(pkgs []*domain.Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Destination
	}
	return out
}

func packageIDs(pkgs []*domain.Package) []int {
	out := make([]int, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.PackageID
	}
	return out
}
