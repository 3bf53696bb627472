package simulation

import (
	"context"
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/ports"
	"delivery-fleet-sim/internal/registry"
	"delivery-fleet-sim/internal/scenario"
	"delivery-fleet-sim/internal/services"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrEndOfDay is terminal: the day ended with packages still outstanding.
var ErrEndOfDay = errors.New("end of day reached with packages outstanding")

var ErrUnknownTruck = errors.New("unknown truck")

const defaultTickSeconds = 1

type Options struct {
	// Seconds per tick when Tick is called with a non-positive value.
	TickSeconds int
	RunID       string
	Sink        ports.EventSink
}

type scheduledCorrection struct {
	services.Correction
	fired bool
}

// Simulation owns the clock and drives the fleet one tick at a time.
// Every exported method takes the same lock, so a query never sees a
// half-applied tick.
type Simulation struct {
	mu sync.Mutex

	runID       string
	tickSeconds int
	clock       *domain.Clock
	endOfDay    domain.SimTime
	registry    *registry.Registry
	trucks      []*domain.Truck
	assigner    *services.Assigner
	corrector   *services.Corrector
	distances   ports.DistanceProvider
	sink        ports.EventSink

	arrivalAt   domain.SimTime
	arrived     bool
	corrections []*scheduledCorrection
	duplicates  []*domain.Package
	remedies    []services.Remediation

	deliveries []ports.DeliveryRow
	seen       map[int]int
	lastStatus map[int]domain.TruckStatus

	done bool
	err  error
}

// New builds a simulation at the world's start time.
func New(w *scenario.World, opts Options) (*Simulation, error) {
	if w == nil {
		return nil, errors.New("new simulation: world must be non-nil")
	}
	if w.FleetSize < 1 {
		return nil, fmt.Errorf("new simulation: fleet size %d", w.FleetSize)
	}

	if opts.TickSeconds <= 0 {
		opts.TickSeconds = defaultTickSeconds
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	clock := domain.NewClock(w.Start)
	reg := registry.New(w.RegistryBuckets)
	for _, p := range w.Packages {
		reg.Insert(p.PackageID, p)
	}

	trucks := make([]*domain.Truck, w.FleetSize)
	for i := range trucks {
		trucks[i] = domain.NewTruck(i+1, w.Capacity, w.SpeedMPH, w.Hub, clock, w.Distances)
	}

	s := &Simulation{
		runID:       opts.RunID,
		tickSeconds: opts.TickSeconds,
		clock:       clock,
		endOfDay:    w.EndOfDay,
		registry:    reg,
		trucks:      trucks,
		assigner:    services.NewAssigner(reg, w.Constraints, w.Distances, clock),
		corrector:   &services.Corrector{Trucks: trucks, Distances: w.Distances, Clock: clock},
		distances:   w.Distances,
		sink:        opts.Sink,
		arrivalAt:   w.ArrivalAt,
		seen:        make(map[int]int, len(trucks)),
		lastStatus:  make(map[int]domain.TruckStatus, len(trucks)),
	}
	for _, c := range w.Corrections {
		s.corrections = append(s.corrections, &scheduledCorrection{Correction: c})
	}
	for _, t := range trucks {
		s.lastStatus[t.TruckID] = t.Status
	}

	log.Info().Str("run", s.runID).Int("packages", reg.Len()).Int("buckets", reg.Capacity()).
		Int("trucks", len(trucks)).Stringer("start", clock.Now()).Msg("simulation ready")
	return s, nil
}

func (s *Simulation) RunID() string { return s.runID }

// Tick advances the simulation by seconds; non-positive uses the configured
// tick length. Ticking a finished simulation is a no-op.
func (s *Simulation) Tick(seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick(seconds)
}

func (s *Simulation) tick(seconds int) error {
	if s.err != nil {
		return s.err
	}
	if s.done {
		return nil
	}
	if seconds <= 0 {
		seconds = s.tickSeconds
	}

	now := s.clock.Advance(seconds)

	if err := s.fireEvents(now); err != nil {
		return s.fail(err)
	}

	assigned, err := s.assigner.AssignRoutes(s.trucks)
	if err != nil {
		return s.fail(err)
	}
	for _, a := range assigned {
		s.emit(ports.SimEvent{
			Kind:    ports.EventDispatch,
			TruckID: a.TruckID,
			Detail:  fmt.Sprint(a.PackageIDs),
		})
	}

	for _, t := range s.trucks {
		if err := t.Update(seconds); err != nil {
			return s.fail(fmt.Errorf("tick at %s: %w", now, err))
		}
	}
	s.collect()

	if n := s.outstanding(); n == 0 {
		s.done = true
		s.emit(ports.SimEvent{Kind: ports.EventCompleted, Miles: s.totalMiles()})
		log.Info().Str("run", s.runID).Stringer("at", now).Float64("miles", s.totalMiles()).
			Int("extra_routes", s.extraRoutes()).Msg("all packages delivered")
		return nil
	} else if now >= s.endOfDay {
		return s.fail(fmt.Errorf("tick at %s: %d outstanding: %w", now, n, ErrEndOfDay))
	}
	return nil
}

func (s *Simulation) fail(err error) error {
	s.err = err
	log.Error().Err(err).Str("run", s.runID).Stringer("at", s.clock.Now()).Msg("simulation failed")
	return err
}

// Events fire on the first tick at or after their time.
func (s *Simulation) fireEvents(now domain.SimTime) error {
	if !s.arrived && now >= s.arrivalAt {
		s.arrived = true
		s.unlockArrivals()
	}

	for _, c := range s.corrections {
		if c.fired || now < c.At {
			continue
		}
		c.fired = true

		pkg, ok := s.registry.Get(c.PackageID)
		if !ok {
			return fmt.Errorf("correction: package %d not registered", c.PackageID)
		}
		r, err := s.corrector.Apply(pkg, c.Correction)
		if err != nil {
			return err
		}
		if r.Duplicate != nil {
			s.duplicates = append(s.duplicates, r.Duplicate)
		}
		s.remedies = append(s.remedies, r)
		s.emit(ports.SimEvent{
			Kind:      ports.EventCorrection,
			TruckID:   r.TruckID,
			PackageID: r.PackageID,
			Location:  c.Destination,
			Detail:    fmt.Sprintf("%s from %s", r.Action, r.Status),
		})
	}
	return nil
}

// Every delayed package reaches the hub except those still waiting on a
// correction.
func (s *Simulation) unlockArrivals() {
	pending := make(map[int]bool)
	for _, c := range s.corrections {
		if !c.fired {
			pending[c.PackageID] = true
		}
	}

	var ids []int
	for _, p := range s.registry.Unavailable() {
		if pending[p.PackageID] {
			continue
		}
		p.MarkAtHub()
		ids = append(ids, p.PackageID)
	}

	log.Info().Ints("packages", ids).Stringer("at", s.clock.Now()).Msg("delayed packages arrived")
	s.emit(ports.SimEvent{Kind: ports.EventArrival, Detail: fmt.Sprint(ids)})
}

// Picks up what every truck did during the last update.
func (s *Simulation) collect() {
	now := s.clock.Now()
	for _, t := range s.trucks {
		for _, stop := range t.Delivered[s.seen[t.TruckID]:] {
			switch v := stop.(type) {
			case domain.Delivery:
				row := ports.DeliveryRow{
					PackageID:   v.Package.PackageID,
					TruckID:     t.TruckID,
					Destination: v.Package.Destination,
					DeliveredAt: int(now),
					Deadline:    int(v.Package.Deadline),
					Annotation:  v.Package.Annotation,
				}
				if v.Package.DeliveredAt != nil {
					row.DeliveredAt = int(*v.Package.DeliveredAt)
				}
				s.deliveries = append(s.deliveries, row)
				s.emit(ports.SimEvent{
					Kind:      ports.EventDelivery,
					TruckID:   t.TruckID,
					PackageID: v.Package.PackageID,
					Location:  v.Package.Destination,
					Detail:    v.Package.Annotation,
				})
			case domain.Waypoint:
				s.emit(ports.SimEvent{
					Kind:     ports.EventWaypoint,
					TruckID:  t.TruckID,
					Location: v.Destination,
					Detail:   v.Reason,
				})
			}
		}
		s.seen[t.TruckID] = len(t.Delivered)

		if t.Status == domain.TruckAtHub && s.lastStatus[t.TruckID] != domain.TruckAtHub {
			s.emit(ports.SimEvent{Kind: ports.EventReturned, TruckID: t.TruckID, Location: t.Hub, Miles: t.Miles})
		}
		s.lastStatus[t.TruckID] = t.Status
	}
}

// Sink failures are logged; they never stop the run.
func (s *Simulation) emit(ev ports.SimEvent) {
	if s.sink == nil {
		return
	}
	ev.RunID = s.runID
	ev.At = int(s.clock.Now())
	if err := s.sink.Record(ev); err != nil {
		log.Warn().Err(err).Str("kind", ev.Kind).Msg("event sink write failed")
	}
}

func (s *Simulation) outstanding() int {
	n := s.registry.Undelivered()
	for _, d := range s.duplicates {
		if d.Status != domain.StatusDelivered {
			n++
		}
	}
	return n
}

func (s *Simulation) totalMiles() float64 {
	total := 0.0
	for _, t := range s.trucks {
		total += t.Miles
	}
	return total
}

// Deliveries beyond one per registered package: misdeliveries that had to be
// driven again.
func (s *Simulation) extraRoutes() int {
	return max(0, len(s.deliveries)-s.registry.Len())
}

// RunToCompletion ticks until nothing is outstanding or the run fails.
// The lock is released between ticks so queries can interleave.
func (s *Simulation) RunToCompletion(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.mu.Lock()
		err := s.tick(0)
		done := s.done
		s.mu.Unlock()

		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// RunUntilNextDelivery ticks until at least one more stop is delivered, or
// the run completes, and returns the new deliveries.
func (s *Simulation) RunUntilNextDelivery(ctx context.Context) ([]ports.DeliveryRow, error) {
	s.mu.Lock()
	start := len(s.deliveries)
	s.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.mu.Lock()
		err := s.tick(0)
		done := s.done
		var fresh []ports.DeliveryRow
		if len(s.deliveries) > start {
			fresh = append(fresh, s.deliveries[start:]...)
		}
		s.mu.Unlock()

		if err != nil {
			return fresh, err
		}
		if len(fresh) > 0 || done {
			return fresh, nil
		}
	}
}
