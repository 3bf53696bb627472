package domain

// Stop is one manifest entry. It is a closed set: Delivery or Waypoint.
type Stop interface {
	// Location is the canonical location the truck drives to for this stop.
	Location() string
	isStop()
}

// Delivery drops off a package at its destination.
type Delivery struct {
	Package *Package
}

func (d Delivery) Location() string { return d.Package.Destination }
func (Delivery) isStop()            {}

// Waypoint sends the truck to a location without delivering anything,
// e.g. to recover a misdelivered package.
type Waypoint struct {
	Destination string
	Reason      string
}

func (w Waypoint) Location() string { return w.Destination }
func (Waypoint) isStop()            {}

// Deliveries wraps packages as delivery stops.
func Deliveries(pkgs []*Package) []Stop {
	stops := make([]Stop, 0, len(pkgs))
	for _, p := range pkgs {
		stops = append(stops, Delivery{Package: p})
	}
	return stops
}
