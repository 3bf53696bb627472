package dto

import (
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/ports"
	"delivery-fleet-sim/internal/simulation"
)

type TickRequest struct {
	Seconds int `json:"seconds"`
}

type TruckResponse struct {
	TruckID    int     `json:"truck_id"`
	Status     string  `json:"status"`
	Location   string  `json:"location"`
	NextStop   string  `json:"next_stop,omitempty"`
	Remaining  float64 `json:"remaining_miles"`
	Miles      float64 `json:"miles"`
	Capacity   int     `json:"capacity"`
	PackageIDs []int   `json:"package_ids"`
	Waypoints  int     `json:"waypoints,omitempty"`
	Delivered  int     `json:"delivered_stops"`
}

type ListTrucksResponse struct {
	Trucks []TruckResponse `json:"trucks"`
}

func NewTruckResponse(t simulation.TruckReport) TruckResponse {
	ids := t.PackageIDs
	if ids == nil {
		ids = []int{}
	}
	return TruckResponse{
		TruckID:    t.TruckID,
		Status:     string(t.Status),
		Location:   t.Location,
		NextStop:   t.NextStop,
		Remaining:  t.Remaining,
		Miles:      t.Miles,
		Capacity:   t.Capacity,
		PackageIDs: ids,
		Waypoints:  t.Waypoints,
		Delivered:  t.Delivered,
	}
}

type CorrectionResponse struct {
	PackageID int    `json:"package_id"`
	Status    string `json:"status"`
	Action    string `json:"action"`
	TruckID   int    `json:"truck_id,omitempty"`
}

type SimulationResponse struct {
	RunID       string               `json:"run_id"`
	Now         string               `json:"now"`
	Done        bool                 `json:"done"`
	Error       string               `json:"error,omitempty"`
	Counts      map[string]int       `json:"counts"`
	Total       int                  `json:"total"`
	Outstanding int                  `json:"outstanding"`
	Delivered   int                  `json:"delivered"`
	TotalMiles  float64              `json:"total_miles"`
	ExtraRoutes int                  `json:"extra_routes"`
	Corrections []CorrectionResponse `json:"corrections"`
}

func NewSimulationResponse(s simulation.Snapshot) SimulationResponse {
	res := SimulationResponse{
		RunID:       s.RunID,
		Now:         s.Now.String(),
		Done:        s.Done,
		Error:       s.Err,
		Counts:      make(map[string]int, len(s.Counts)),
		Total:       s.Total,
		Outstanding: s.Outstanding,
		Delivered:   s.Delivered,
		TotalMiles:  s.TotalMiles,
		ExtraRoutes: s.ExtraRoutes,
		Corrections: make([]CorrectionResponse, 0, len(s.Corrections)),
	}
	for status, n := range s.Counts {
		res.Counts[string(status)] = n
	}
	for _, c := range s.Corrections {
		res.Corrections = append(res.Corrections, CorrectionResponse{
			PackageID: c.PackageID,
			Status:    string(c.Status),
			Action:    c.Action,
			TruckID:   c.TruckID,
		})
	}
	return res
}

type DeliveryResponse struct {
	PackageID   int    `json:"package_id"`
	TruckID     int    `json:"truck_id"`
	Destination string `json:"destination"`
	DeliveredAt string `json:"delivered_at"`
	Deadline    string `json:"deadline"`
	Annotation  string `json:"annotation,omitempty"`
}

type NextDeliveryResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
	Simulation SimulationResponse `json:"simulation"`
}

func NewDeliveryResponse(r ports.DeliveryRow) DeliveryResponse {
	return DeliveryResponse{
		PackageID:   r.PackageID,
		TruckID:     r.TruckID,
		Destination: r.Destination,
		DeliveredAt: domain.SimTime(r.DeliveredAt).String(),
		Deadline:    deadlineString(domain.SimTime(r.Deadline)),
		Annotation:  r.Annotation,
	}
}
