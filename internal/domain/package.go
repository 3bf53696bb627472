package domain

// Lifecycle state of a Package.
type PackageStatus string

const (
	StatusAtHub       PackageStatus = "AT_HUB"
	StatusOnTruck     PackageStatus = "ON_TRUCK"
	StatusInTransit   PackageStatus = "IN_TRANSIT"
	StatusNextStop    PackageStatus = "NEXT_STOP"
	StatusDelivered   PackageStatus = "DELIVERED"
	StatusUnavailable PackageStatus = "UNAVAILABLE"
)

// AllPackageStatuses lists every status; remediation tables are checked against it.
func AllPackageStatuses() []PackageStatus {
	return []PackageStatus{
		StatusAtHub,
		StatusOnTruck,
		StatusInTransit,
		StatusNextStop,
		StatusDelivered,
		StatusUnavailable,
	}
}

// Loaded reports whether the status implies an assigned truck.
func (s PackageStatus) Loaded() bool {
	switch s {
	case StatusOnTruck, StatusInTransit, StatusNextStop, StatusDelivered:
		return true
	}
	return false
}

// Represents a single delivery unit handled by the system.
// A Package has a unique identifier and a single canonical destination.
// TruckID is zero unless the status is one of the loaded states.
type Package struct {
	PackageID   int
	Address     string
	Destination string
	Deadline    SimTime
	Weight      float64
	Notes       string
	Status      PackageStatus
	TruckID     int
	LoadedAt    *SimTime
	DeliveredAt *SimTime
	Annotation  string
}

func NewPackage(id int, destination string, deadline SimTime, weight float64, notes string) *Package {
	return &Package{
		PackageID:   id,
		Destination: destination,
		Deadline:    deadline,
		Weight:      weight,
		Notes:       notes,
		Status:      StatusAtHub,
	}
}

// HasDeadline is false for the end-of-day sentinel.
func (p *Package) HasDeadline() bool { return p.Deadline != EndOfDay }

func (p *Package) MarkOnTruck(truckID int, at SimTime) {
	p.Status = StatusOnTruck
	p.TruckID = truckID
	p.LoadedAt = &at
}

func (p *Package) MarkNextStop() { p.Status = StatusNextStop }

func (p *Package) MarkInTransit() { p.Status = StatusInTransit }

func (p *Package) MarkDelivered(at SimTime) {
	p.Status = StatusDelivered
	p.DeliveredAt = &at
}

// MarkAtHub returns the package to the hub and clears any truck assignment.
func (p *Package) MarkAtHub() {
	p.Status = StatusAtHub
	p.TruckID = 0
	p.LoadedAt = nil
}

func (p *Package) MarkUnavailable() {
	p.Status = StatusUnavailable
	p.TruckID = 0
	p.LoadedAt = nil
}

// Clone returns an independent copy; pointer fields are duplicated.
func (p *Package) Clone() *Package {
	c := *p
	if p.LoadedAt != nil {
		v := *p.LoadedAt
		c.LoadedAt = &v
	}
	if p.DeliveredAt != nil {
		v := *p.DeliveredAt
		c.DeliveredAt = &v
	}
	return &c
}
