package ports

import "errors"

// ErrMissingDistance is returned when a location pair has no entry in the distance table.
var ErrMissingDistance = errors.New("missing distance")

// Contract for retrieving travel distance between two canonical locations.
type DistanceProvider interface {
	// Return the distance in miles between two locations. Lookups are symmetric.
	GetDistance(origin string, destination string) (float64, error)
}
