package domain

// Represents a single stop in a planned route: arriving at a destination
// at a computed simulation time.
type RouteStop struct {
	Destination string
	ArriveAt    SimTime
	PackageIDs  []int
	Waypoint    bool
}

// Represents the timed walk of a truck's manifest.
// A RoutePlan is derived planning data and contains no side effects.
type RoutePlan struct {
	TruckID              int
	DepartAt             SimTime
	Stops                []RouteStop
	TotalDurationSeconds int
	TotalDistanceMiles   float64
}
