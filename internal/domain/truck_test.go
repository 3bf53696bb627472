package domain

import (
	"bytes"
	"delivery-fleet-sim/internal/adapters/distance"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
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

const eight = SimTime(8 * 3600)

func TestTruckLoadRespectsCapacity(t *testing.T) {
	clock := NewClock(eight)
	truck := NewTruck(1, 2, 18, "HUB", clock, testTable())

	pkgs := []*Package{
		NewPackage(1, "A", EndOfDay, 1, ""),
		NewPackage(2, "B", EndOfDay, 1, ""),
		NewPackage(3, "C", EndOfDay, 1, ""),
	}

	err := truck.LoadMultiple(pkgs)
	if !errors.Is(err, ErrOverCapacity) {
		t.Fatalf("err = %v, want ErrOverCapacity", err)
	}
	if len(truck.Manifest) != 0 {
		t.Fatalf("manifest len = %d, want 0 after failed load", len(truck.Manifest))
	}
	for _, p := range pkgs {
		if p.Status != StatusAtHub || p.TruckID != 0 {
			t.Errorf("package %d = %s truck %d, want AT_HUB truck 0", p.PackageID, p.Status, p.TruckID)
		}
	}

	if err := truck.LoadMultiple(pkgs[:2]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := truck.Load(pkgs[2]); !errors.Is(err, ErrOverCapacity) {
		t.Fatalf("third load err = %v, want ErrOverCapacity", err)
	}
	for _, p := range pkgs[:2] {
		if p.Status != StatusOnTruck || p.TruckID != 1 || p.LoadedAt == nil || *p.LoadedAt != eight {
			t.Errorf("package %d not marked loaded: %+v", p.PackageID, p)
		}
	}
}

func TestTruckDeliversInOrderAndReturns(t *testing.T) {
	clock := NewClock(eight)
	truck := NewTruck(1, 16, 18, "HUB", clock, testTable())

	pkg1 := NewPackage(1, "A", EndOfDay, 1, "")
	pkg2 := NewPackage(2, "B", EndOfDay, 1, "")

	if err := truck.LoadMultiple([]*Package{pkg1, pkg2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := truck.StartRoute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if truck.Status != TruckEnRoute {
		t.Fatalf("status = %s, want EN_ROUTE", truck.Status)
	}
	if pkg1.Status != StatusNextStop || pkg2.Status != StatusInTransit {
		t.Fatalf("statuses = %s/%s, want NEXT_STOP/IN_TRANSIT", pkg1.Status, pkg2.Status)
	}
	if truck.Remaining != 3 {
		t.Fatalf("remaining = %v, want 3", truck.Remaining)
	}

	step := func(seconds int) {
		t.Helper()
		clock.Advance(seconds)
		if err := truck.Update(seconds); err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	// 3 miles at 18 mph is 600 seconds.
	step(300)
	if pkg1.Status != StatusNextStop {
		t.Fatalf("pkg1 delivered early: %s", pkg1.Status)
	}
	step(300)
	if pkg1.Status != StatusDelivered || *pkg1.DeliveredAt != eight+600 {
		t.Fatalf("pkg1 = %s at %v, want DELIVERED at %v", pkg1.Status, pkg1.DeliveredAt, eight+600)
	}
	if pkg2.Status != StatusNextStop {
		t.Fatalf("pkg2 = %s, want NEXT_STOP", pkg2.Status)
	}
	if truck.Location != "A" {
		t.Fatalf("location = %q, want A", truck.Location)
	}

	step(300)
	if pkg2.Status != StatusDelivered {
		t.Fatalf("pkg2 = %s, want DELIVERED", pkg2.Status)
	}
	if truck.Status != TruckReturning || truck.NextStop != "HUB" {
		t.Fatalf("truck = %s next=%q, want RETURNING to HUB", truck.Status, truck.NextStop)
	}

	step(900)
	if truck.Status != TruckAtHub || truck.Location != "HUB" {
		t.Fatalf("truck = %s at %q, want AT_HUB at HUB", truck.Status, truck.Location)
	}
	if truck.Miles != 9 {
		t.Fatalf("miles = %v, want 9", truck.Miles)
	}
	if len(truck.Delivered) != 2 {
		t.Fatalf("delivered = %d, want 2", len(truck.Delivered))
	}

	// AT_HUB is a fixed point.
	step(3600)
	if truck.Status != TruckAtHub || truck.Miles != 9 {
		t.Fatalf("idle truck moved: %s miles=%v", truck.Status, truck.Miles)
	}
}

func TestTruckUpdateCarriesOvershoot(t *testing.T) {
	clock := NewClock(eight)
	truck := NewTruck(2, 16, 18, "HUB", clock, testTable())

	pkg1 := NewPackage(1, "A", EndOfDay, 1, "")
	pkg2 := NewPackage(2, "B", EndOfDay, 1, "")
	if err := truck.LoadMultiple([]*Package{pkg1, pkg2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := truck.StartRoute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1200 s covers 6 miles: A (3), B (+1.5) and 1.5 of the 4.5 mile return.
	clock.Advance(1200)
	if err := truck.Update(1200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pkg1.Status != StatusDelivered || pkg2.Status != StatusDelivered {
		t.Fatalf("statuses = %s/%s, want both DELIVERED", pkg1.Status, pkg2.Status)
	}
	if truck.Status != TruckReturning || truck.Remaining != 3 {
		t.Fatalf("truck = %s remaining=%v, want RETURNING remaining=3", truck.Status, truck.Remaining)
	}
}

func TestTruckInsertNextSplicesBehindHead(t *testing.T) {
	clock := NewClock(eight)
	truck := NewTruck(1, 3, 18, "HUB", clock, testTable())

	pkg1 := NewPackage(1, "A", EndOfDay, 1, "")
	pkg2 := NewPackage(2, "B", EndOfDay, 1, "")
	if err := truck.LoadMultiple([]*Package{pkg1, pkg2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := truck.StartRoute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := NewPackage(9, "C", EndOfDay, 1, "")
	err := truck.InsertNext(Waypoint{Destination: "B", Reason: "pick up package 9"}, Delivery{Package: dup})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(truck.Manifest) != 4 {
		t.Fatalf("manifest len = %d, want 4", len(truck.Manifest))
	}
	if _, ok := truck.Manifest[1].(Waypoint); !ok {
		t.Fatalf("manifest[1] = %T, want Waypoint", truck.Manifest[1])
	}
	if d, ok := truck.Manifest[2].(Delivery); !ok || d.Package != dup {
		t.Fatalf("manifest[2] = %#v, want duplicate delivery", truck.Manifest[2])
	}
	if dup.Status != StatusInTransit || dup.TruckID != 1 {
		t.Fatalf("dup = %s truck %d, want IN_TRANSIT truck 1", dup.Status, dup.TruckID)
	}

	// Same package id again takes no extra room.
	again := dup.Clone()
	if err := truck.Load(again); err != nil {
		t.Fatalf("duplicate id load: %v", err)
	}
	if truck.PackageCount() != 3 || truck.FreeCapacity() != 0 {
		t.Fatalf("count=%d free=%d, want 3/0", truck.PackageCount(), truck.FreeCapacity())
	}
}

func TestTruckInsertNextHoldsIdleTruck(t *testing.T) {
	clock := NewClock(eight)
	truck := NewTruck(1, 16, 18, "HUB", clock, testTable())

	dup := NewPackage(9, "C", EndOfDay, 1, "")
	if err := truck.InsertNext(Waypoint{Destination: "A", Reason: "pickup"}, Delivery{Package: dup}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if truck.Status != TruckAtHub || len(truck.Manifest) != 2 {
		t.Fatalf("truck = %s with %d stops, want AT_HUB holding 2", truck.Status, len(truck.Manifest))
	}
	if dup.Status != StatusOnTruck || dup.TruckID != 1 {
		t.Fatalf("dup = %s truck %d, want ON_TRUCK truck 1", dup.Status, dup.TruckID)
	}

	// Nothing moves until the truck is dispatched.
	if err := truck.Update(600); err != nil {
		t.Fatalf("update: %v", err)
	}
	if truck.Miles != 0 || truck.Location != "HUB" {
		t.Fatalf("idle truck moved: miles=%v location=%s", truck.Miles, truck.Location)
	}

	if err := truck.StartRoute(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if truck.Status != TruckEnRoute || truck.NextStop != "A" || truck.Remaining != 3 {
		t.Fatalf("truck = %s next=%q remaining=%v, want EN_ROUTE to A (3mi)", truck.Status, truck.NextStop, truck.Remaining)
	}
	if dup.Status != StatusInTransit {
		t.Fatalf("dup = %s, want IN_TRANSIT behind the waypoint", dup.Status)
	}
}

func TestTruckInsertNextWhileReturning(t *testing.T) {
	clock := NewClock(eight)
	truck := NewTruck(1, 16, 18, "HUB", clock, testTable())

	if err := truck.Load(NewPackage(1, "A", EndOfDay, 1, "")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := truck.StartRoute(); err != nil {
		t.Fatalf("start: %v", err)
	}
	// 3 miles out to A, then 2 of the 3 miles home.
	if err := truck.Update(600); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := truck.Update(400); err != nil {
		t.Fatalf("update: %v", err)
	}
	if truck.Status != TruckReturning || truck.Remaining != 1 || truck.Miles != 3 {
		t.Fatalf("setup: %s remaining=%v miles=%v", truck.Status, truck.Remaining, truck.Miles)
	}

	if err := truck.InsertNext(Waypoint{Destination: "A", Reason: "pickup"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if truck.Status != TruckEnRoute || truck.NextStop != "A" || truck.Remaining != 2 {
		t.Fatalf("after turnaround: %s next=%q remaining=%v, want EN_ROUTE to A with 2mi left",
			truck.Status, truck.NextStop, truck.Remaining)
	}
	if truck.Miles != 3 {
		t.Fatalf("miles = %v, want 3 until the leg completes", truck.Miles)
	}

	// Halfway back to A: not there yet.
	if err := truck.Update(200); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(truck.Delivered) != 1 || truck.Remaining != 1 {
		t.Fatalf("waypoint reached early: delivered=%d remaining=%v", len(truck.Delivered), truck.Remaining)
	}

	if err := truck.Update(200); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(truck.Delivered) != 2 || truck.Location != "A" {
		t.Fatalf("delivered=%d location=%s, want waypoint reached at A", len(truck.Delivered), truck.Location)
	}
	// 3 out, 2 toward the hub, 2 back.
	if truck.Miles != 7 {
		t.Fatalf("miles = %v, want 7", truck.Miles)
	}

	if err := truck.Update(600); err != nil {
		t.Fatalf("update: %v", err)
	}
	if truck.Status != TruckAtHub || truck.Miles != 10 {
		t.Fatalf("truck = %s miles=%v, want AT_HUB after 10 miles", truck.Status, truck.Miles)
	}
}

func TestTruckDeliverLogsLatePackage(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	clock := NewClock(eight)
	truck := NewTruck(1, 16, 18, "HUB", clock, testTable())
	late := NewPackage(4, "A", eight, 1, "")
	if err := truck.Load(late); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := truck.StartRoute(); err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.Advance(600)
	if err := truck.Update(600); err != nil {
		t.Fatalf("update: %v", err)
	}

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, `"message":"package delivered"`) {
			line = l
		}
	}
	if line == "" {
		t.Fatalf("no delivery line in log: %s", buf.String())
	}
	for _, want := range []string{`"truck":1`, `"package":4`, `"late":true`, `"at":"08:10:00"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("delivery line %s missing %s", line, want)
		}
	}
}
