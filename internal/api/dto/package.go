package dto

import "delivery-fleet-sim/internal/domain"

type PackageResponse struct {
	PackageID   int     `json:"package_id"`
	Address     string  `json:"address"`
	Destination string  `json:"destination"`
	Deadline    string  `json:"deadline"`
	Weight      float64 `json:"weight"`
	Notes       string  `json:"notes,omitempty"`
	Status      string  `json:"status"`
	TruckID     int     `json:"truck_id,omitempty"`
	LoadedAt    *string `json:"loaded_at"`
	DeliveredAt *string `json:"delivered_at"`
	Annotation  string  `json:"annotation,omitempty"`
}

type ListPackagesResponse struct {
	Packages []PackageResponse `json:"packages"`
}

func timeString(t *domain.SimTime) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

// Deadlines without a hard cutoff render as EOD.
func deadlineString(t domain.SimTime) string {
	if t == domain.EndOfDay {
		return "EOD"
	}
	return t.String()
}

func NewPackageResponse(p domain.Package) PackageResponse {
	return PackageResponse{
		PackageID:   p.PackageID,
		Address:     p.Address,
		Destination: p.Destination,
		Deadline:    deadlineString(p.Deadline),
		Weight:      p.Weight,
		Notes:       p.Notes,
		Status:      string(p.Status),
		TruckID:     p.TruckID,
		LoadedAt:    timeString(p.LoadedAt),
		DeliveredAt: timeString(p.DeliveredAt),
		Annotation:  p.Annotation,
	}
}
