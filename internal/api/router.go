package api

import (
	"delivery-fleet-sim/internal/api/handlers"
	"net/http"
)

// NewRouter wires HTTP handlers around the simulation and returns an http.Handler.
// Handlers only see the Simulator interface.
func NewRouter(sim handlers.Simulator) http.Handler {
	mux := http.NewServeMux()

	pkgHandler := &handlers.PackageHandler{Sim: sim}
	truckHandler := &handlers.TruckHandler{Sim: sim}
	simHandler := &handlers.SimulationHandler{Sim: sim}

	mux.HandleFunc("/health", handlers.Health(sim))
	mux.HandleFunc("/packages", pkgHandler.List)
	mux.HandleFunc("/packages/{id}", pkgHandler.Get)
	mux.HandleFunc("/trucks", truckHandler.List)
	mux.HandleFunc("/trucks/{id}/plan", truckHandler.Plan)
	mux.HandleFunc("/simulation", simHandler.Status)
	mux.HandleFunc("/simulation/tick", simHandler.Tick)
	mux.HandleFunc("/simulation/run", simHandler.Run)
	mux.HandleFunc("/simulation/next-delivery", simHandler.NextDelivery)

	return loggingMiddleware(mux)
}
