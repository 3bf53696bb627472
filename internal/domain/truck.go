package domain

import (
	"delivery-fleet-sim/internal/ports"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
)

// ErrOverCapacity is an invariant violation: a truck was asked to carry more
// packages than it has room for.
var ErrOverCapacity = errors.New("truck over capacity")

type TruckStatus string

const (
	TruckAtHub     TruckStatus = "AT_HUB"
	TruckEnRoute   TruckStatus = "EN_ROUTE"
	TruckReturning TruckStatus = "RETURNING"
)

// Delivery truck aggregate holding its manifest and physical progress.
// Manifest stops are driven in order; the head is always the current target.
type Truck struct {
	TruckID   int
	Capacity  int
	SpeedMPH  float64
	Hub       string
	Location  string
	NextStop  string
	Remaining float64
	Status    TruckStatus
	Manifest  []Stop
	Delivered []Stop
	Miles     float64

	leg       float64
	clock     *Clock
	distances ports.DistanceProvider
}

func NewTruck(id int, capacity int, speedMPH float64, hub string, clock *Clock, distances ports.DistanceProvider) *Truck {
	return &Truck{
		TruckID:   id,
		Capacity:  capacity,
		SpeedMPH:  speedMPH,
		Hub:       hub,
		Location:  hub,
		Status:    TruckAtHub,
		clock:     clock,
		distances: distances,
	}
}

// A duplicate record of a package already aboard (same id) takes no extra room.
func (t *Truck) packageIDs() map[int]bool {
	ids := make(map[int]bool, len(t.Manifest))
	for _, s := range t.Manifest {
		if d, ok := s.(Delivery); ok {
			ids[d.Package.PackageID] = true
		}
	}
	return ids
}

// PackageCount is the number of distinct packages aboard.
func (t *Truck) PackageCount() int { return len(t.packageIDs()) }

func (t *Truck) FreeCapacity() int { return t.Capacity - t.PackageCount() }

// Packages returns the manifest's delivery stops in driving order.
func (t *Truck) Packages() []*Package {
	out := make([]*Package, 0, len(t.Manifest))
	for _, s := range t.Manifest {
		if d, ok := s.(Delivery); ok {
			out = append(out, d.Package)
		}
	}
	return out
}

func (t *Truck) checkCapacity(stops []Stop) error {
	ids := t.packageIDs()
	before := len(ids)
	for _, s := range stops {
		if d, ok := s.(Delivery); ok {
			ids[d.Package.PackageID] = true
		}
	}
	if len(ids) > t.Capacity {
		return fmt.Errorf(
			"load truck: truck %d cannot take %d more packages (capacity=%d loaded=%d): %w",
			t.TruckID, len(ids)-before, t.Capacity, before, ErrOverCapacity,
		)
	}
	return nil
}

func (t *Truck) markLoaded(stops []Stop, inTransit bool) {
	now := t.clock.Now()
	for _, s := range stops {
		d, ok := s.(Delivery)
		if !ok {
			continue
		}
		d.Package.MarkOnTruck(t.TruckID, now)
		if inTransit {
			d.Package.MarkInTransit()
		}
	}
}

// Load a single package onto the truck.
func (t *Truck) Load(pkg *Package) error {
	return t.LoadMultiple([]*Package{pkg})
}

// Load multiple packages onto the end of the manifest. Nothing is loaded if
// the whole batch does not fit.
func (t *Truck) LoadMultiple(pkgs []*Package) error {
	stops := Deliveries(pkgs)
	if err := t.checkCapacity(stops); err != nil {
		return err
	}
	t.markLoaded(stops, t.Status == TruckEnRoute)
	t.Manifest = append(t.Manifest, stops...)
	return nil
}

// InsertNext splices stops directly behind the current target.
//
// An idle truck only takes the stops aboard; the next assignment round tops
// it up and dispatches it. A returning truck turns around where it is: the
// new leg runs back to its last stop, then on to the new head.
func (t *Truck) InsertNext(stops ...Stop) error {
	if len(stops) == 0 {
		return nil
	}
	if err := t.checkCapacity(stops); err != nil {
		return err
	}

	switch {
	case t.Status == TruckEnRoute && len(t.Manifest) > 0:
		t.markLoaded(stops, true)
		t.Manifest = slices.Insert(t.Manifest, 1, stops...)
		return nil
	case t.Status == TruckAtHub:
		t.markLoaded(stops, false)
		t.Manifest = append(t.Manifest, stops...)
		return nil
	}

	// Driven toward the hub so far; not yet on the odometer.
	driven := 0.0
	if t.Status == TruckReturning {
		driven = t.leg - t.Remaining
	}
	t.markLoaded(stops, false)
	t.Manifest = append(t.Manifest, stops...)
	if err := t.StartRoute(); err != nil {
		return err
	}
	t.Remaining += driven
	t.leg += 2 * driven
	return nil
}

// StartRoute targets the manifest head: head becomes NEXT_STOP, every other
// package IN_TRANSIT.
func (t *Truck) StartRoute() error {
	if len(t.Manifest) == 0 {
		return fmt.Errorf("start route: truck %d has an empty manifest", t.TruckID)
	}

	head := t.Manifest[0]
	d, err := t.distances.GetDistance(t.Location, head.Location())
	if err != nil {
		return fmt.Errorf("start route: truck %d from %q to %q: %w", t.TruckID, t.Location, head.Location(), err)
	}

	if t.Status != TruckEnRoute {
		log.Info().Int("truck", t.TruckID).Int("stops", len(t.Manifest)).
			Stringer("at", t.clock.Now()).Msg("truck departing")
	}

	t.Status = TruckEnRoute
	t.NextStop = head.Location()
	t.Remaining = d
	t.leg = d

	for i, s := range t.Manifest {
		p, ok := s.(Delivery)
		if !ok {
			continue
		}
		if i == 0 {
			p.Package.MarkNextStop()
		} else {
			p.Package.MarkInTransit()
		}
	}
	return nil
}

// Update advances the truck by seconds of driving at constant speed.
// Distance left over after reaching a stop carries into the next leg.
func (t *Truck) Update(seconds int) error {
	if t.Status == TruckAtHub {
		return nil
	}

	t.Remaining -= t.SpeedMPH * float64(seconds) / 3600
	for t.Remaining <= 0 {
		overshoot := -t.Remaining

		if t.Status == TruckReturning {
			t.arriveAtHub()
			return nil
		}

		if err := t.Deliver(); err != nil {
			return err
		}
		t.Remaining -= overshoot
	}
	return nil
}

// Deliver completes the manifest head and moves on to the next stop, or
// heads back to the hub when the manifest is empty.
func (t *Truck) Deliver() error {
	if len(t.Manifest) == 0 {
		return fmt.Errorf("deliver: truck %d has nothing to deliver", t.TruckID)
	}

	head := t.Manifest[0]
	t.Manifest = t.Manifest[1:]
	t.Miles += t.leg
	t.Location = head.Location()

	switch s := head.(type) {
	case Delivery:
		now := t.clock.Now()
		s.Package.MarkDelivered(now)
		ev := log.Info().Int("truck", t.TruckID).Int("package", s.Package.PackageID).
			Str("location", s.Package.Destination).Stringer("at", now)
		if s.Package.HasDeadline() && now > s.Package.Deadline {
			ev = ev.Stringer("deadline", s.Package.Deadline).Bool("late", true)
		}
		if s.Package.Annotation != "" {
			ev = ev.Str("note", s.Package.Annotation)
		}
		ev.Msg("package delivered")
	case Waypoint:
		log.Warn().Int("truck", t.TruckID).Str("location", s.Destination).
			Str("reason", s.Reason).Msg("truck reached waypoint")
	}
	t.Delivered = append(t.Delivered, head)

	if len(t.Manifest) > 0 {
		return t.StartRoute()
	}
	return t.returnToHub()
}

func (t *Truck) returnToHub() error {
	d, err := t.distances.GetDistance(t.Location, t.Hub)
	if err != nil {
		return fmt.Errorf("return to hub: truck %d from %q: %w", t.TruckID, t.Location, err)
	}
	t.Status = TruckReturning
	t.NextStop = t.Hub
	t.Remaining = d
	t.leg = d
	return nil
}

func (t *Truck) arriveAtHub() {
	t.Miles += t.leg
	t.leg = 0
	t.Remaining = 0
	t.Location = t.Hub
	t.NextStop = ""
	t.Status = TruckAtHub
	log.Info().Int("truck", t.TruckID).Stringer("at", t.clock.Now()).
		Float64("miles", t.Miles).Msg("truck back at hub")
}
