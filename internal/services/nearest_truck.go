package services

import (
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/ports"
	"errors"
	"fmt"
)

// ErrNoTruckAvailable is returned when no truck has room for another stop.
var ErrNoTruckAvailable = errors.New("no truck available")

// Pick the truck whose current location is closest to target.
//
// Only trucks with at least one free slot are considered. Ties go to the
// lower truck id so the choice is deterministic.
func NearestTruck(trucks []*domain.Truck, target string, distances ports.DistanceProvider) (*domain.Truck, float64, error) {
	var best *domain.Truck
	bestMiles := 0.0

	for _, t := range trucks {
		if t.FreeCapacity() < 1 {
			continue
		}
		d, err := distances.GetDistance(t.Location, target)
		if err != nil {
			return nil, 0, fmt.Errorf("nearest truck: truck %d: %w", t.TruckID, err)
		}
		if best == nil || d < bestMiles || (d == bestMiles && t.TruckID < best.TruckID) {
			best = t
			bestMiles = d
		}
	}

	if best == nil {
		return nil, 0, fmt.Errorf("nearest truck: to %q: %w", target, ErrNoTruckAvailable)
	}
	return best, bestMiles, nil
}
