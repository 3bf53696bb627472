package services

import (
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/ports"
	"errors"
	"testing"
)

func TestRoutePlannerPlanRoute(t *testing.T) {
	pkgs := []*domain.Package{
		domain.NewPackage(1, "A", domain.EndOfDay, 1, ""),
		domain.NewPackage(3, "C", domain.EndOfDay, 1, ""),
		domain.NewPackage(2, "B", domain.EndOfDay, 1, ""),
	}

	plan, err := PlanRoute(1, eight, "HUB", "HUB", speed, domain.Deliveries(pkgs), testTable(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(plan.Stops))
	}
	wantArrive := []domain.SimTime{eight + 600, eight + 1100, eight + 1700}
	for i, s := range plan.Stops {
		if s.ArriveAt != wantArrive[i] {
			t.Fatalf("stop %d arrive = %s, want %s", i, s.ArriveAt, wantArrive[i])
		}
	}
	if plan.Stops[1].PackageIDs[0] != 3 {
		t.Fatalf("second stop packages = %v, want [3]", plan.Stops[1].PackageIDs)
	}
	if plan.TotalDurationSeconds != 1700 {
		t.Fatalf("duration = %d, want 1700", plan.TotalDurationSeconds)
	}
	if plan.TotalDistanceMiles != 8.5 {
		t.Fatalf("distance = %v, want 8.5", plan.TotalDistanceMiles)
	}

	withReturn, err := PlanRoute(1, eight, "HUB", "HUB", speed, domain.Deliveries(pkgs), testTable(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withReturn.TotalDistanceMiles != 13 || withReturn.TotalDurationSeconds != 2600 {
		t.Fatalf("with return = %v mi / %d s, want 13 mi / 2600 s",
			withReturn.TotalDistanceMiles, withReturn.TotalDurationSeconds)
	}
}

func TestRoutePlannerMarksWaypoints(t *testing.T) {
	stops := []domain.Stop{
		domain.Waypoint{Destination: "A", Reason: "pick up"},
		domain.Delivery{Package: domain.NewPackage(7, "B", domain.EndOfDay, 1, "")},
	}

	plan, err := PlanRoute(2, eight, "HUB", "HUB", speed, stops, testTable(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.Stops[0].Waypoint || len(plan.Stops[0].PackageIDs) != 0 {
		t.Fatalf("first stop = %+v, want waypoint without packages", plan.Stops[0])
	}
	if plan.Stops[1].Waypoint {
		t.Fatalf("second stop should be a delivery")
	}
}

func TestRoutePlannerMissingDistance(t *testing.T) {
	stops := domain.Deliveries([]*domain.Package{domain.NewPackage(1, "NOWHERE", domain.EndOfDay, 1, "")})

	_, err := PlanRoute(1, eight, "HUB", "HUB", speed, stops, testTable(), false)
	if !errors.Is(err, ports.ErrMissingDistance) {
		t.Fatalf("err = %v, want ErrMissingDistance", err)
	}
}

func TestMeetsDeadlines(t *testing.T) {
	a := domain.NewPackage(1, "A", eight+600, 1, "")
	b := domain.NewPackage(2, "B", domain.EndOfDay, 1, "")

	ok, err := MeetsDeadlines([]*domain.Package{a, b}, "HUB", eight, speed, testTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("arriving exactly at the deadline should be feasible")
	}

	a.Deadline = eight + 599
	ok, err = MeetsDeadlines([]*domain.Package{a, b}, "HUB", eight, speed, testTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("arriving one second late should be infeasible")
	}

	// Sentinel deadlines never fail, however late.
	ok, _ = MeetsDeadlines([]*domain.Package{b}, "HUB", domain.EndOfDay+1000, speed, testTable())
	if !ok {
		t.Fatalf("package without deadline reported infeasible")
	}
}

func TestRouteDistance(t *testing.T) {
	d, err := RouteDistance(nil, "HUB", "HUB", testTable())
	if err != nil || d != 0 {
		t.Fatalf("empty route = %v, %v; want 0, nil", d, err)
	}

	pkgs := []*domain.Package{
		domain.NewPackage(1, "A", domain.EndOfDay, 1, ""),
		domain.NewPackage(2, "B", domain.EndOfDay, 1, ""),
	}
	d, err = RouteDistance(pkgs, "HUB", "HUB", testTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 9 {
		t.Fatalf("distance = %v, want 9", d)
	}

	// Starting away from the hub still ends with the return leg.
	d, _ = RouteDistance(pkgs, "C", "HUB", testTable())
	if d != 8.5 {
		t.Fatalf("distance from C = %v, want 8.5", d)
	}
}

func TestPlanTruckRouteEnRoute(t *testing.T) {
	clock := domain.NewClock(eight)
	truck := domain.NewTruck(1, 16, speed, "HUB", clock, testTable())
	pkgs := []*domain.Package{
		domain.NewPackage(1, "A", domain.EndOfDay, 1, ""),
		domain.NewPackage(2, "B", domain.EndOfDay, 1, ""),
	}
	if err := truck.LoadMultiple(pkgs); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := truck.StartRoute(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := truck.Update(300); err != nil {
		t.Fatalf("update: %v", err)
	}
	clock.Advance(300)

	plan, err := PlanTruckRoute(truck, clock.Now(), testTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Stops) != 2 {
		t.Fatalf("stops = %d, want 2", len(plan.Stops))
	}
	// Halfway down the 3 mile leg to A.
	if plan.Stops[0].ArriveAt != eight+600 {
		t.Fatalf("arrive A = %s, want %s", plan.Stops[0].ArriveAt, eight+600)
	}
	if plan.Stops[1].ArriveAt != eight+900 {
		t.Fatalf("arrive B = %s, want %s", plan.Stops[1].ArriveAt, eight+900)
	}
	if plan.TotalDistanceMiles != 7.5 {
		t.Fatalf("distance = %v, want 7.5", plan.TotalDistanceMiles)
	}
}
