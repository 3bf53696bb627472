package services

import (
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/ports"
	"errors"
	"fmt"
	"math"
)

// Seconds needed to drive miles at a constant speed.
func travelSeconds(miles, speedMPH float64) float64 {
	return 3600 * miles / speedMPH
}

// Plan the timed walk of a stop sequence.
//
// Stops are visited in the given order starting at start at departAt; the
// plan records the arrival time of each stop and aggregate metrics.
// Optionally includes the return leg to hub in the totals.
func PlanRoute(
	truckID int,
	departAt domain.SimTime,
	start string,
	hub string,
	speedMPH float64,
	stops []domain.Stop,
	distances ports.DistanceProvider,
	returnToStart bool,
) (*domain.RoutePlan, error) {
	if start == "" {
		return nil, errors.New("plan route: start location must be non-empty")
	}
	if speedMPH <= 0 {
		return nil, fmt.Errorf("plan route: truck %d speed must be positive", truckID)
	}

	plan := &domain.RoutePlan{
		TruckID:  truckID,
		DepartAt: departAt,
		Stops:    make([]domain.RouteStop, 0, len(stops)),
	}

	elapsed := 0.0
	current := start
	for _, s := range stops {
		d, err := distances.GetDistance(current, s.Location())
		if err != nil {
			return nil, fmt.Errorf("plan route: truck %d: %w", truckID, err)
		}
		elapsed += travelSeconds(d, speedMPH)
		plan.TotalDistanceMiles += d

		rs := domain.RouteStop{
			Destination: s.Location(),
			ArriveAt:    departAt + domain.SimTime(math.Round(elapsed)),
		}
		switch v := s.(type) {
		case domain.Delivery:
			rs.PackageIDs = []int{v.Package.PackageID}
		case domain.Waypoint:
			rs.Waypoint = true
		}
		plan.Stops = append(plan.Stops, rs)
		current = s.Location()
	}

	if returnToStart && len(stops) > 0 {
		back, err := distances.GetDistance(current, hub)
		if err != nil {
			return nil, fmt.Errorf("plan route: truck %d return leg: %w", truckID, err)
		}
		elapsed += travelSeconds(back, speedMPH)
		plan.TotalDistanceMiles += back
	}

	plan.TotalDurationSeconds = int(math.Round(elapsed))
	return plan, nil
}

// Create a RoutePlan for the truck's remaining manifest from where it is now.
func PlanTruckRoute(truck *domain.Truck, now domain.SimTime, distances ports.DistanceProvider) (*domain.RoutePlan, error) {
	if truck == nil {
		return nil, errors.New("plan truck route: truck must be non-nil")
	}

	start := truck.Location
	departAt := now
	stops := truck.Manifest

	// An en-route truck is partway down its first leg.
	if truck.Status == domain.TruckEnRoute && len(stops) > 0 {
		departAt = now + domain.SimTime(math.Round(travelSeconds(truck.Remaining, truck.SpeedMPH)))
		start = stops[0].Location()
		head := domain.RouteStop{Destination: start, ArriveAt: departAt}
		if d, ok := stops[0].(domain.Delivery); ok {
			head.PackageIDs = []int{d.Package.PackageID}
		} else {
			head.Waypoint = true
		}

		plan, err := PlanRoute(truck.TruckID, departAt, start, truck.Hub, truck.SpeedMPH, stops[1:], distances, true)
		if err != nil {
			return nil, fmt.Errorf("plan truck route: %w", err)
		}
		plan.DepartAt = now
		plan.Stops = append([]domain.RouteStop{head}, plan.Stops...)
		plan.TotalDistanceMiles += truck.Remaining
		plan.TotalDurationSeconds = int(departAt-now) + plan.TotalDurationSeconds
		return plan, nil
	}

	plan, err := PlanRoute(truck.TruckID, departAt, start, truck.Hub, truck.SpeedMPH, stops, distances, true)
	if err != nil {
		return nil, fmt.Errorf("plan truck route: %w", err)
	}
	return plan, nil
}

// MeetsDeadlines walks pkgs in order from start at now and fails as soon as
// a package with a hard deadline would arrive after it.
func MeetsDeadlines(
	pkgs []*domain.Package,
	start string,
	now domain.SimTime,
	speedMPH float64,
	distances ports.DistanceProvider,
) (bool, error) {
	clock := float64(now)
	current := start
	for _, p := range pkgs {
		d, err := distances.GetDistance(current, p.Destination)
		if err != nil {
			return false, fmt.Errorf("meets deadlines: %w", err)
		}
		clock += travelSeconds(d, speedMPH)
		if p.HasDeadline() && clock > float64(p.Deadline) {
			return false, nil
		}
		current = p.Destination
	}
	return true, nil
}

// RouteDistance is the sum of every leg from start through pkgs plus the
// return leg to hub. An empty route is zero.
func RouteDistance(pkgs []*domain.Package, start, hub string, distances ports.DistanceProvider) (float64, error) {
	if len(pkgs) == 0 {
		return 0, nil
	}

	total := 0.0
	current := start
	for _, p := range pkgs {
		d, err := distances.GetDistance(current, p.Destination)
		if err != nil {
			return 0, fmt.Errorf("route distance: %w", err)
		}
		total += d
		current = p.Destination
	}

	back, err := distances.GetDistance(current, hub)
	if err != nil {
		return 0, fmt.Errorf("route distance: return leg: %w", err)
	}
	return total + back, nil
}
