package dto

import "delivery-fleet-sim/internal/domain"

type PlanStopResponse struct {
	Destination string `json:"destination"`
	ArriveAt    string `json:"arrive_at"`
	PackageIDs  []int  `json:"package_ids"`
	Waypoint    bool   `json:"waypoint,omitempty"`
}

type PlanResponse struct {
	TruckID              int                `json:"truck_id"`
	DepartAt             string             `json:"depart_at"`
	TotalDistanceMiles   float64            `json:"total_distance_miles"`
	TotalDurationSeconds int                `json:"total_duration_seconds"`
	Stops                []PlanStopResponse `json:"stops"`
}

func NewPlanResponse(p *domain.RoutePlan) PlanResponse {
	stops := make([]PlanStopResponse, 0, len(p.Stops))
	for _, s := range p.Stops {
		ids := s.PackageIDs
		if ids == nil {
			ids = []int{}
		}
		stops = append(stops, PlanStopResponse{
			Destination: s.Destination,
			ArriveAt:    s.ArriveAt.String(),
			PackageIDs:  ids,
			Waypoint:    s.Waypoint,
		})
	}

	return PlanResponse{
		TruckID:              p.TruckID,
		DepartAt:             p.DepartAt.String(),
		TotalDistanceMiles:   p.TotalDistanceMiles,
		TotalDurationSeconds: p.TotalDurationSeconds,
		Stops:                stops,
	}
}
