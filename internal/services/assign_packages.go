package services

import (
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/ports"
	"delivery-fleet-sim/internal/priority"
	"delivery-fleet-sim/internal/registry"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"
)

// Score weights for the greedy selection. Lower scores win.
const (
	distanceWeight = 3.0
	clusterBonus   = 1.5
	urgencyScale   = 14400.0
)

// Assignment records what one truck was loaded with in a round.
type Assignment struct {
	TruckID    int
	PackageIDs []int
}

// Assigner is the route-assignment engine.
//
// Trucks are served one at a time; a truck's manifest is built greedily from
// the hub pool and committed before the next truck looks at the pool, so an
// earlier truck's choice is never reconsidered.
type Assigner struct {
	Registry    *registry.Registry
	Constraints domain.Constraints
	Distances   ports.DistanceProvider
	Clock       *domain.Clock
}

func NewAssigner(reg *registry.Registry, constraints domain.Constraints, distances ports.DistanceProvider, clock *domain.Clock) *Assigner {
	return &Assigner{
		Registry:    reg,
		Constraints: constraints,
		Distances:   distances,
		Clock:       clock,
	}
}

// AssignRoutes loads and dispatches every truck that is sitting at the hub.
func (a *Assigner) AssignRoutes(trucks []*domain.Truck) ([]Assignment, error) {
	if a.Registry == nil || a.Distances == nil || a.Clock == nil {
		return nil, errors.New("assign routes: assigner is not fully configured")
	}

	var out []Assignment
	for _, t := range trucks {
		if t.Status != domain.TruckAtHub {
			continue
		}

		var manifest []*domain.Package
		if pool := a.Pool(); len(pool) > 0 {
			var err error
			manifest, err = a.BuildManifest(t, pool)
			if err != nil {
				return out, fmt.Errorf("assign routes: truck %d: %w", t.TruckID, err)
			}
		}
		if len(manifest) > 0 {
			if err := t.LoadMultiple(manifest); err != nil {
				return out, fmt.Errorf("assign routes: truck %d: %w", t.TruckID, err)
			}
		}

		// Stops left aboard by a correction go out even with nothing new.
		if len(t.Manifest) == 0 {
			continue
		}
		if err := t.StartRoute(); err != nil {
			return out, fmt.Errorf("assign routes: truck %d: %w", t.TruckID, err)
		}

		ids := make([]int, len(manifest))
		for i, p := range manifest {
			ids[i] = p.PackageID
		}
		log.Debug().Int("truck", t.TruckID).Ints("packages", ids).Msg("manifest committed")
		out = append(out, Assignment{TruckID: t.TruckID, PackageIDs: ids})
	}
	return out, nil
}

// Pool groups the hub packages into items ordered by earliest deadline.
// Every hub-present member of a bundle forms one item; members elsewhere are
// simply left out.
func (a *Assigner) Pool() []domain.Item {
	atHub := a.Registry.AtHub()
	byID := make(map[int]*domain.Package, len(atHub))
	for _, p := range atHub {
		byID[p.PackageID] = p
	}

	h := priority.NewDeadlineHeap(len(atHub))
	grouped := make(map[int]bool)
	for _, b := range a.Constraints.Bundles {
		var item domain.Item
		for _, id := range b {
			p, ok := byID[id]
			if !ok || grouped[id] {
				continue
			}
			item = append(item, p)
			grouped[id] = true
		}
		if len(item) > 0 {
			h.Push(item)
		}
	}

	for _, p := range atHub {
		if !grouped[p.PackageID] {
			h.Push(domain.Item{p})
		}
	}
	return h.Drain()
}

// BuildManifest picks items for truck from pool until nothing else fits.
//
// Each candidate is tried against an optimized tentative manifest; infeasible
// ones (capacity, eligibility or a missed deadline) are skipped. The feasible
// candidate with the lowest score is committed. Ties go to the earlier pool
// position.
func (a *Assigner) BuildManifest(truck *domain.Truck, pool []domain.Item) ([]*domain.Package, error) {
	start, now, err := a.afterHeldStops(truck)
	if err != nil {
		return nil, err
	}
	free := truck.FreeCapacity()
	remaining := slices.Clone(pool)

	var manifest []*domain.Package
	tail := start

	for len(manifest) < free && len(remaining) > 0 {
		bestIdx := -1
		bestScore := math.Inf(1)
		var bestManifest []*domain.Package

		for i, item := range remaining {
			if len(manifest)+len(item) > free {
				continue
			}
			if !a.Constraints.CanCarryItem(item, truck.TruckID) {
				continue
			}

			tentative := append(slices.Clone(manifest), item...)
			tentative, err := OptimizeRouteOrder(tentative, start, truck.Hub, now, truck.SpeedMPH, a.Distances)
			if err != nil {
				return nil, err
			}
			ok, err := MeetsDeadlines(tentative, start, now, truck.SpeedMPH, a.Distances)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}

			d, err := a.Distances.GetDistance(tail, item.FirstDestination())
			if err != nil {
				return nil, fmt.Errorf("build manifest: %w", err)
			}
			if score := ItemScore(item, d, now); score < bestScore {
				bestIdx = i
				bestScore = score
				bestManifest = tentative
			}
		}

		if bestIdx < 0 {
			break
		}

		manifest = bestManifest
		tail = remaining[bestIdx].LastDestination()
		remaining = slices.Delete(remaining, bestIdx, bestIdx+1)
	}

	if len(manifest) == 0 {
		return nil, nil
	}
	return OptimizeRouteOrder(manifest, start, truck.Hub, now, truck.SpeedMPH, a.Distances)
}

// New packages are driven after anything the truck already holds, so the
// route is planned from the last held stop at the time it is reached.
func (a *Assigner) afterHeldStops(truck *domain.Truck) (string, domain.SimTime, error) {
	loc := truck.Location
	elapsed := 0.0
	for _, s := range truck.Manifest {
		d, err := a.Distances.GetDistance(loc, s.Location())
		if err != nil {
			return "", 0, fmt.Errorf("build manifest: held stops: %w", err)
		}
		elapsed += travelSeconds(d, truck.SpeedMPH)
		loc = s.Location()
	}
	return loc, a.Clock.Now() + domain.SimTime(math.Round(elapsed)), nil
}

// ItemScore weighs the distance to the item, its size, and how close its
// deadline is. Items without a hard deadline get the end-of-day urgency.
func ItemScore(item domain.Item, miles float64, now domain.SimTime) float64 {
	urgency := float64(domain.EndOfDay)
	if dl := item.Deadline(); dl != domain.EndOfDay {
		urgency = max(1, float64(dl-now))
	}
	return distanceWeight*miles - clusterBonus*float64(len(item)-1) + urgency/urgencyScale
}
