package ports

import "context"

// Kinds of simulation events reported to an EventSink.
const (
	EventDispatch   = "dispatch"
	EventDelivery   = "delivery"
	EventWaypoint   = "waypoint"
	EventArrival    = "arrival"
	EventCorrection = "correction"
	EventReturned   = "returned"
	EventCompleted  = "completed"
)

// A single simulation event. At is seconds since midnight.
type SimEvent struct {
	RunID     string  `json:"run_id"`
	At        int     `json:"at"`
	Kind      string  `json:"kind"`
	TruckID   int     `json:"truck_id,omitempty"`
	PackageID int     `json:"package_id,omitempty"`
	Location  string  `json:"location,omitempty"`
	Miles     float64 `json:"miles,omitempty"`
	Detail    string  `json:"detail,omitempty"`
}

// Receives simulation events as they happen (journal, test recorders).
type EventSink interface {
	Record(ev SimEvent) error
}

// One delivered stop in a finished run.
type DeliveryRow struct {
	PackageID   int
	TruckID     int
	Destination string
	DeliveredAt int
	Deadline    int
	Annotation  string
}

// Summary of a finished run persisted next to its deliveries.
type RunSummary struct {
	RunID       string
	FinishedAt  int
	TotalMiles  float64
	Delivered   int
	ExtraRoutes int
	Failed      bool
	FailReason  string
}

// Port: persists finished runs and their delivery rows.
type DeliveryLog interface {
	SaveRun(ctx context.Context, summary RunSummary, rows []DeliveryRow) error
	ListDeliveries(ctx context.Context, runID string) ([]DeliveryRow, error)
	ListRuns(ctx context.Context) ([]RunSummary, error)
}
