package handlers

import (
	"net/http"
)

// Liveness check; also reports the simulation clock.
func Health(sim Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowOnly(w, r, http.MethodGet) {
			return
		}

		snap := sim.Snapshot()
		res := map[string]any{
			"status": "ok",
			"now":    snap.Now.String(),
			"done":   snap.Done,
		}
		writeJSON(w, r, http.StatusOK, res)
	}
}
