package scenario

import (
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/ports"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	sc, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), sc)
	require.Equal(t, 2, sc.Fleet.Size())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
hub: HUB
start: "08:30"
fleet:
  trucks: 2
  drivers: 2
  capacity: 4
  speed_mph: 18
corrections:
  - package_id: 3
    at: "10:20 AM"
    address: 2 Main St
bundles:
  - [1, 2]
eligibility:
  4: [2]
delayed: [5]
`)

	sc, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "HUB", sc.Hub)
	require.Equal(t, "08:30", sc.Start)
	require.Equal(t, "09:05", sc.ArrivalAt)
	require.Equal(t, 4, sc.Fleet.Capacity)
	require.Equal(t, 40, sc.RegistryBuckets)
	require.Len(t, sc.Corrections, 1)
	require.Equal(t, [][]int{{1, 2}}, sc.Bundles)
	require.Equal(t, []int{2}, sc.Eligibility[4])
	require.Equal(t, []int{5}, sc.Delayed)
}

func TestLoadRejectsInvalidScenario(t *testing.T) {
	cases := map[string]string{
		"no drivers":         "fleet: {trucks: 3, drivers: 0, capacity: 16, speed_mph: 18}\n",
		"bad start":          "start: noon\n",
		"end before start":   "start: \"10:00\"\nend_of_day: \"09:00\"\n",
		"truck out of fleet": "eligibility:\n  4: [3]\n",
		"correction no addr": "corrections:\n  - {package_id: 9, at: \"10:20\"}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			require.Error(t, err)
		})
	}
}

func TestParseNotes(t *testing.T) {
	tests := []struct {
		notes string
		want  NoteFlags
	}{
		{"", NoteFlags{}},
		{"Can only be on truck 2", NoteFlags{Trucks: []int{2}}},
		{"Delayed on flight---will not arrive to depot until 9:05 am", NoteFlags{Delayed: true}},
		{"Wrong address listed", NoteFlags{WrongAddress: true}},
		{"Must be delivered with 15, 19", NoteFlags{With: []int{15, 19}}},
		{"must be delivered with 13,15", NoteFlags{With: []int{13, 15}}},
	}
	for _, tc := range tests {
		got, err := ParseNotes(tc.notes)
		require.NoError(t, err, tc.notes)
		require.Equal(t, tc.want, got, tc.notes)
	}
}

func TestMergeBundles(t *testing.T) {
	got := MergeBundles([][]int{{14, 15, 19}, {16, 13, 19}, {20, 13, 15}, {7, 8}, {}})
	require.Equal(t, []domain.Bundle{{7, 8}, {13, 14, 15, 16, 19, 20}}, got)
}

func testTables() ([]ports.PackageRecord, []ports.LocationRecord, []ports.DistanceRecord) {
	pkgs := []ports.PackageRecord{
		{PackageID: 1, Address: "1 North Rd", City: "Salt Lake City", State: "UT", Zip: "84101", Deadline: "10:30 AM", Weight: 2},
		{PackageID: 2, Address: "2 Main St", City: "Salt Lake City", State: "UT", Zip: "84102", Deadline: "EOD", Weight: 3, Notes: "Can only be on truck 2"},
		{PackageID: 3, Address: "1 North Rd", City: "Salt Lake City", State: "UT", Zip: "84101", Deadline: "EOD", Weight: 1, Notes: "Must be delivered with 1"},
		{PackageID: 4, Address: "2 Main St", City: "Salt Lake City", State: "UT", Zip: "84102", Deadline: "EOD", Weight: 1, Notes: "Delayed on flight"},
		{PackageID: 5, Address: "1 North Rd", City: "Salt Lake City", State: "UT", Zip: "84101", Deadline: "EOD", Weight: 1, Notes: "Wrong address listed"},
	}
	locs := []ports.LocationRecord{
		{Location: "HUB", PackageText: "Depot 100 Hub Way"},
		{Location: "North", PackageText: "North Office 1 North Rd"},
		{Location: "Main", PackageText: "Main Office 2 Main St"},
	}
	dists := []ports.DistanceRecord{
		{From: "HUB", To: "North", Miles: 3},
		{From: "HUB", To: "Main", Miles: 2},
		{From: "North", To: "Main", Miles: 1.5},
	}
	return pkgs, locs, dists
}

func TestBuildWorld(t *testing.T) {
	pkgs, locs, dists := testTables()
	sc := Default()
	sc.Hub = "HUB"
	sc.Corrections = []CorrectionSpec{{PackageID: 5, At: "10:20", Address: "2 Main St"}}

	w, err := Build(sc, pkgs, locs, dists)
	require.NoError(t, err)

	require.Equal(t, "HUB", w.Hub)
	require.Equal(t, domain.SimTime(8*3600), w.Start)
	require.Equal(t, domain.EndOfDay, w.EndOfDay)
	require.Equal(t, 2, w.FleetSize)
	require.Len(t, w.Packages, 5)

	byID := map[int]*domain.Package{}
	for _, p := range w.Packages {
		byID[p.PackageID] = p
	}
	require.Equal(t, "North", byID[1].Destination)
	require.Equal(t, "1 North Rd, Salt Lake City, UT 84101", byID[1].Address)
	require.Equal(t, domain.SimTime(10*3600+30*60), byID[1].Deadline)
	require.False(t, byID[2].HasDeadline())

	require.True(t, w.Constraints.CanCarry(2, 2))
	require.False(t, w.Constraints.CanCarry(2, 1))
	require.Equal(t, []domain.Bundle{{1, 3}}, w.Constraints.Bundles)

	require.Equal(t, domain.StatusUnavailable, byID[4].Status)
	require.Equal(t, domain.StatusUnavailable, byID[5].Status)
	require.Equal(t, domain.StatusAtHub, byID[1].Status)

	require.Len(t, w.Corrections, 1)
	require.Equal(t, "Main", w.Corrections[0].Destination)
	require.Equal(t, domain.SimTime(10*3600+20*60), w.Corrections[0].At)
}

func TestBuildWorldUnknownAddress(t *testing.T) {
	pkgs, locs, dists := testTables()
	pkgs[0].Address = "99 Nowhere Blvd"
	sc := Default()
	sc.Hub = "HUB"

	_, err := Build(sc, pkgs, locs, dists)
	require.True(t, errors.Is(err, ErrUnknownLocation), "err = %v", err)
}

func TestBuildWorldMissingDistance(t *testing.T) {
	pkgs, locs, dists := testTables()
	locs = append(locs, ports.LocationRecord{Location: "Island", PackageText: "7 Far Away Ln"})
	pkgs[0].Address = "7 Far Away Ln"
	sc := Default()
	sc.Hub = "HUB"

	_, err := Build(sc, pkgs, locs, dists)
	require.ErrorIs(t, err, ports.ErrMissingDistance)
}

func TestBuildWorldRejectsDuplicateIDs(t *testing.T) {
	pkgs, locs, dists := testTables()
	pkgs = append(pkgs, pkgs[0])
	sc := Default()
	sc.Hub = "HUB"

	_, err := Build(sc, pkgs, locs, dists)
	require.ErrorContains(t, err, "duplicate package id 1")
}
