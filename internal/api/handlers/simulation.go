package handlers

import (
	"delivery-fleet-sim/internal/api/dto"
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/simulation"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SimulationHandler steps and reports on the shared simulation.
type SimulationHandler struct {
	Sim Simulator
}

func (h *SimulationHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewSimulationResponse(h.Sim.Snapshot()))
}

func (h *SimulationHandler) Tick(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodPost) {
		return
	}

	var req dto.TickRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Seconds < 0 || req.Seconds > int(domain.EndOfDay) {
		writeError(w, r, http.StatusBadRequest, "seconds must be between 0 and 86400")
		return
	}

	h.respond(w, r, h.Sim.Tick(req.Seconds))
}

func (h *SimulationHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodPost) {
		return
	}
	h.respond(w, r, h.Sim.RunToCompletion(r.Context()))
}

func (h *SimulationHandler) NextDelivery(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodPost) {
		return
	}

	rows, err := h.Sim.RunUntilNextDelivery(r.Context())
	if err != nil && !errors.Is(err, simulation.ErrEndOfDay) {
		h.respond(w, r, err)
		return
	}

	res := dto.NextDeliveryResponse{
		Deliveries: make([]dto.DeliveryResponse, 0, len(rows)),
		Simulation: dto.NewSimulationResponse(h.Sim.Snapshot()),
	}
	for _, row := range rows {
		res.Deliveries = append(res.Deliveries, dto.NewDeliveryResponse(row))
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusConflict
	}
	writeJSON(w, r, status, res)
}

// A failed day is a conflict with the simulation state, not a server fault.
func (h *SimulationHandler) respond(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, dto.NewSimulationResponse(h.Sim.Snapshot()))
	case errors.Is(err, simulation.ErrEndOfDay):
		writeJSON(w, r, http.StatusConflict, dto.NewSimulationResponse(h.Sim.Snapshot()))
	case errors.Is(err, r.Context().Err()):
		writeError(w, r, http.StatusServiceUnavailable, "request cancelled")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("simulation step failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
