package api

import (
	"delivery-fleet-sim/internal/api/dto"
	"delivery-fleet-sim/internal/ports"
	"delivery-fleet-sim/internal/scenario"
	"delivery-fleet-sim/internal/simulation"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	pkgs := []ports.PackageRecord{
		{PackageID: 1, Address: "1 A St", Deadline: "9:00 AM", Weight: 2},
		{PackageID: 2, Address: "2 B St", Deadline: "EOD", Weight: 1, Notes: "Can only be on truck 2"},
		{PackageID: 3, Address: "3 C St", Deadline: "EOD", Weight: 5},
		{PackageID: 4, Address: "3 C St", Deadline: "EOD", Weight: 1, Notes: "Delayed on flight"},
	}
	locs := []ports.LocationRecord{
		{Location: "HUB", PackageText: "Depot 100 Hub Way"},
		{Location: "A", PackageText: "A House 1 A St"},
		{Location: "B", PackageText: "B House 2 B St"},
		{Location: "C", PackageText: "C House 3 C St"},
	}
	dists := []ports.DistanceRecord{
		{From: "HUB", To: "A", Miles: 3},
		{From: "HUB", To: "B", Miles: 4.5},
		{From: "HUB", To: "C", Miles: 2},
		{From: "A", To: "B", Miles: 1.5},
		{From: "A", To: "C", Miles: 2.5},
		{From: "B", To: "C", Miles: 3},
	}

	sc := scenario.Default()
	sc.Hub = "HUB"
	sc.RegistryBuckets = 4

	w, err := scenario.Build(sc, pkgs, locs, dists)
	require.NoError(t, err)
	sim, err := simulation.New(w, simulation.Options{TickSeconds: 60, RunID: "router-test"})
	require.NoError(t, err)
	return NewRouter(sim)
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterRequestID(t *testing.T) {
	h := newTestRouter(t)

	rr := serve(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
}

func TestRouterRunsDay(t *testing.T) {
	h := newTestRouter(t)

	rr := serve(t, h, http.MethodGet, "/packages?status=unavailable", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var held dto.ListPackagesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &held))
	require.Len(t, held.Packages, 1)
	require.Equal(t, 4, held.Packages[0].PackageID)

	rr = serve(t, h, http.MethodPost, "/simulation/tick", `{"seconds":600}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var status dto.SimulationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	require.Equal(t, "08:10:00", status.Now)
	require.Equal(t, "router-test", status.RunID)

	rr = serve(t, h, http.MethodPost, "/simulation/run", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	require.True(t, status.Done)
	require.Equal(t, 4, status.Delivered)
	require.Zero(t, status.Outstanding)
	require.Positive(t, status.TotalMiles)

	rr = serve(t, h, http.MethodGet, "/packages?status=delivered", "")
	var done dto.ListPackagesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &done))
	require.Len(t, done.Packages, 4)

	rr = serve(t, h, http.MethodGet, "/packages/2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var two dto.PackageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &two))
	require.Equal(t, 2, two.TruckID)
	require.Equal(t, "DELIVERED", two.Status)
	require.NotNil(t, two.DeliveredAt)

	rr = serve(t, h, http.MethodGet, "/trucks", "")
	var trucks dto.ListTrucksResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &trucks))
	require.Len(t, trucks.Trucks, 2)

	rr = serve(t, h, http.MethodGet, "/trucks/1/plan", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var plan dto.PlanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &plan))
	require.Empty(t, plan.Stops)
}

func TestRouterUnknownRoutes(t *testing.T) {
	h := newTestRouter(t)

	require.Equal(t, http.StatusNotFound, serve(t, h, http.MethodGet, "/nope", "").Code)
	require.Equal(t, http.StatusNotFound, serve(t, h, http.MethodGet, "/packages/99", "").Code)
	require.Equal(t, http.StatusNotFound, serve(t, h, http.MethodGet, "/trucks/7/plan", "").Code)
	require.Equal(t, http.StatusMethodNotAllowed, serve(t, h, http.MethodDelete, "/simulation", "").Code)
}
