package handlers

import (
	"delivery-fleet-sim/internal/api/dto"
	"delivery-fleet-sim/internal/simulation"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

type TruckHandler struct {
	Sim Simulator
}

func (h *TruckHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodGet) {
		return
	}

	trucks := h.Sim.Trucks()
	res := dto.ListTrucksResponse{Trucks: make([]dto.TruckResponse, 0, len(trucks))}
	for _, t := range trucks {
		res.Trucks = append(res.Trucks, dto.NewTruckResponse(t))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Plan shows the timed route for what is left on one truck.
func (h *TruckHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodGet) {
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "truck id must be an integer")
		return
	}

	plan, err := h.Sim.Plan(id)
	if errors.Is(err, simulation.ErrUnknownTruck) {
		writeError(w, r, http.StatusNotFound, "truck not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Int("truck", id).Msg("plan truck route failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewPlanResponse(plan))
}
