package handlers

import (
	"delivery-fleet-sim/internal/api/dto"
	"delivery-fleet-sim/internal/simulation"
	"net/http"
	"strconv"
)

// PackageHandler exposes read-only package lookups.
type PackageHandler struct {
	Sim Simulator
}

func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodGet) {
		return
	}

	view, err := simulation.ParseView(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pkgs := h.Sim.Packages(view)
	res := dto.ListPackagesResponse{
		Packages: make([]dto.PackageResponse, 0, len(pkgs)),
	}
	for _, p := range pkgs {
		res.Packages = append(res.Packages, dto.NewPackageResponse(p))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodGet) {
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "package id must be an integer")
		return
	}

	p, ok := h.Sim.Lookup(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "package not found")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewPackageResponse(p))
}
