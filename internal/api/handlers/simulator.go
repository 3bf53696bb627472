package handlers

import (
	"context"
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/ports"
	"delivery-fleet-sim/internal/simulation"
)

// Simulator is what the handlers need from the running simulation.
type Simulator interface {
	Tick(seconds int) error
	RunToCompletion(ctx context.Context) error
	RunUntilNextDelivery(ctx context.Context) ([]ports.DeliveryRow, error)
	Lookup(id int) (domain.Package, bool)
	Packages(v simulation.View) []domain.Package
	Trucks() []simulation.TruckReport
	Plan(truckID int) (*domain.RoutePlan, error)
	Snapshot() simulation.Snapshot
}
