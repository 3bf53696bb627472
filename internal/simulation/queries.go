package simulation

import (
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/ports"
	"delivery-fleet-sim/internal/services"
	"fmt"
	"slices"
)

// View selects a status group of packages.
type View string

const (
	ViewAll         View = ""
	ViewAtHub       View = "at_hub"
	ViewUnavailable View = "unavailable"
	ViewOnTruck     View = "on_truck"
	ViewDelivered   View = "delivered"
)

func ParseView(raw string) (View, error) {
	switch v := View(raw); v {
	case ViewAll, ViewAtHub, ViewUnavailable, ViewOnTruck, ViewDelivered:
		return v, nil
	}
	return "", fmt.Errorf("unknown package view %q", raw)
}

// TruckReport is a point-in-time copy of one truck.
type TruckReport struct {
	TruckID    int
	Status     domain.TruckStatus
	Location   string
	NextStop   string
	Remaining  float64
	Miles      float64
	PackageIDs []int
	Waypoints  int
	Delivered  int
	Capacity   int
}

// Snapshot summarizes the run for reporting.
type Snapshot struct {
	RunID       string
	Now         domain.SimTime
	Done        bool
	Err         string
	Counts      map[domain.PackageStatus]int
	Total       int
	Outstanding int
	Delivered   int
	TotalMiles  float64
	ExtraRoutes int
	Corrections []CorrectionReport
}

// CorrectionReport is a fired correction without the live duplicate record.
type CorrectionReport struct {
	PackageID int
	Status    domain.PackageStatus
	Action    string
	TruckID   int
}

func copies(pkgs []*domain.Package) []domain.Package {
	out := make([]domain.Package, len(pkgs))
	for i, p := range pkgs {
		out[i] = *p.Clone()
	}
	return out
}

// Lookup returns a copy of a registered package.
func (s *Simulation) Lookup(id int) (domain.Package, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.registry.Get(id)
	if !ok {
		return domain.Package{}, false
	}
	return *p.Clone(), true
}

// Packages returns copies of the packages in a view, ordered by id.
func (s *Simulation) Packages(v View) []domain.Package {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch v {
	case ViewAtHub:
		return copies(s.registry.AtHub())
	case ViewUnavailable:
		return copies(s.registry.Unavailable())
	case ViewOnTruck:
		return copies(s.registry.OnTrucks())
	case ViewDelivered:
		return copies(s.registry.Delivered())
	}
	return copies(s.registry.Filter(func(*domain.Package) bool { return true }))
}

func (s *Simulation) Trucks() []TruckReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TruckReport, 0, len(s.trucks))
	for _, t := range s.trucks {
		r := TruckReport{
			TruckID:   t.TruckID,
			Status:    t.Status,
			Location:  t.Location,
			NextStop:  t.NextStop,
			Remaining: t.Remaining,
			Miles:     t.Miles,
			Delivered: len(t.Delivered),
			Capacity:  t.Capacity,
		}
		for _, stop := range t.Manifest {
			switch v := stop.(type) {
			case domain.Delivery:
				r.PackageIDs = append(r.PackageIDs, v.Package.PackageID)
			case domain.Waypoint:
				r.Waypoints++
			}
		}
		out = append(out, r)
	}
	return out
}

// Plan is the timed route for what is left on one truck.
func (s *Simulation) Plan(truckID int) (*domain.RoutePlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.trucks {
		if t.TruckID == truckID {
			return services.PlanTruckRoute(t, s.clock.Now(), s.distances)
		}
	}
	return nil, fmt.Errorf("plan: truck %d: %w", truckID, ErrUnknownTruck)
}

func (s *Simulation) Miles() map[int]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]float64, len(s.trucks))
	for _, t := range s.trucks {
		out[t.TruckID] = t.Miles
	}
	return out
}

func (s *Simulation) TotalMiles() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalMiles()
}

func (s *Simulation) Now() domain.SimTime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Now()
}

func (s *Simulation) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Simulation) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Deliveries returns every delivered stop so far in delivery order.
func (s *Simulation) Deliveries() []ports.DeliveryRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.deliveries)
}

func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		RunID:       s.runID,
		Now:         s.clock.Now(),
		Done:        s.done,
		Counts:      s.registry.CountByStatus(),
		Total:       s.registry.Len(),
		Outstanding: s.outstanding(),
		Delivered:   len(s.deliveries),
		TotalMiles:  s.totalMiles(),
		ExtraRoutes: s.extraRoutes(),
	}
	for _, r := range s.remedies {
		snap.Corrections = append(snap.Corrections, CorrectionReport{
			PackageID: r.PackageID,
			Status:    r.Status,
			Action:    r.Action,
			TruckID:   r.TruckID,
		})
	}
	if s.err != nil {
		snap.Err = s.err.Error()
	}
	return snap
}

// Summary is the persisted form of a finished (or failed) run.
func (s *Simulation) Summary() ports.RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := ports.RunSummary{
		RunID:       s.runID,
		FinishedAt:  int(s.clock.Now()),
		TotalMiles:  s.totalMiles(),
		Delivered:   len(s.deliveries),
		ExtraRoutes: s.extraRoutes(),
	}
	if s.err != nil {
		sum.Failed = true
		sum.FailReason = s.err.Error()
	}
	return sum
}
