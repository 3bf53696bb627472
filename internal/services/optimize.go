package services

import (
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/ports"
	"fmt"
	"slices"
)

// Floating-point sums of the same legs in a different order can differ in
// the last bits; improvements smaller than this are ignored.
const minImprovementMiles = 1e-9

// Re-order a manifest by pairwise swaps.
//
// A swap of any two positions is kept only if the route stays deadline
// feasible and its total distance (return leg included) strictly drops.
// Passes repeat until no swap improves, which is a local optimum only.
func OptimizeRouteOrder(
	pkgs []*domain.Package,
	start string,
	hub string,
	now domain.SimTime,
	speedMPH float64,
	distances ports.DistanceProvider,
) ([]*domain.Package, error) {
	best := slices.Clone(pkgs)
	if len(best) < 2 {
		return best, nil
	}

	bestDistance, err := RouteDistance(best, start, hub, distances)
	if err != nil {
		return nil, fmt.Errorf("optimize route order: %w", err)
	}

	for improved := true; improved; {
		improved = false
		for i := 0; i < len(best)-1; i++ {
			for j := i + 1; j < len(best); j++ {
				if best[i].Destination == best[j].Destination {
					continue
				}

				best[i], best[j] = best[j], best[i]

				ok, err := MeetsDeadlines(best, start, now, speedMPH, distances)
				if err != nil {
					return nil, fmt.Errorf("optimize route order: %w", err)
				}
				if ok {
					d, err := RouteDistance(best, start, hub, distances)
					if err != nil {
						return nil, fmt.Errorf("optimize route order: %w", err)
					}
					if d < bestDistance-minImprovementMiles {
						bestDistance = d
						improved = true
						continue
					}
				}

				best[i], best[j] = best[j], best[i]
			}
		}
	}

	return best, nil
}
