package services

import (
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/ports"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ErrUnhandledStatus means a package status has no remediation branch.
var ErrUnhandledStatus = errors.New("no remediation for package status")

// Remediation actions.
const (
	ActionRecall    = "recall"
	ActionOverwrite = "overwrite"
	ActionRedeliver = "redeliver"
	ActionRelease   = "release"
)

// Annotations left on corrected packages.
const (
	NoteMisdelivered = "delivered to wrong address initially"
	NoteWrongAddress = "went to wrong address, not delivered"
	NoteCorrected    = "delivered after correction"
)

// Correction is a scheduled destination change for one package.
type Correction struct {
	PackageID   int
	At          domain.SimTime
	Address     string
	Destination string
}

// Remediation describes what a correction did.
type Remediation struct {
	PackageID int
	Status    domain.PackageStatus
	Action    string
	TruckID   int
	Duplicate *domain.Package
}

// Corrector applies destination corrections against the live fleet.
type Corrector struct {
	Trucks    []*domain.Truck
	Distances ports.DistanceProvider
	Clock     *domain.Clock
}

type remediationFunc func(c *Corrector, pkg *domain.Package, fix Correction) (Remediation, error)

var remediations = map[domain.PackageStatus]remediationFunc{
	domain.StatusDelivered:   (*Corrector).recall,
	domain.StatusOnTruck:     (*Corrector).overwrite,
	domain.StatusInTransit:   (*Corrector).overwrite,
	domain.StatusAtHub:       (*Corrector).overwrite,
	domain.StatusNextStop:    (*Corrector).redeliver,
	domain.StatusUnavailable: (*Corrector).release,
}

func init() {
	if missing := UnhandledStatuses(); len(missing) > 0 {
		panic(fmt.Sprintf("services: no remediation for %v", missing))
	}
}

// UnhandledStatuses lists statuses with no remediation branch.
func UnhandledStatuses() []domain.PackageStatus {
	var missing []domain.PackageStatus
	for _, s := range domain.AllPackageStatuses() {
		if _, ok := remediations[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// Apply dispatches on the package's current status.
func (c *Corrector) Apply(pkg *domain.Package, fix Correction) (Remediation, error) {
	if pkg == nil {
		return Remediation{}, errors.New("apply correction: package must be non-nil")
	}
	if fix.Destination == "" {
		return Remediation{}, fmt.Errorf("apply correction: package %d: destination must be non-empty", pkg.PackageID)
	}

	fn, ok := remediations[pkg.Status]
	if !ok {
		return Remediation{}, fmt.Errorf("apply correction: package %d status %s: %w", pkg.PackageID, pkg.Status, ErrUnhandledStatus)
	}

	status := pkg.Status
	r, err := fn(c, pkg, fix)
	if err != nil {
		return Remediation{}, fmt.Errorf("apply correction: package %d: %w", pkg.PackageID, err)
	}
	r.PackageID = pkg.PackageID
	r.Status = status

	log.Info().Int("package", pkg.PackageID).Str("status", string(status)).
		Str("action", r.Action).Str("destination", fix.Destination).
		Stringer("at", c.Clock.Now()).Msg("destination corrected")
	return r, nil
}

// A copy of pkg headed for the corrected destination.
func corrected(pkg *domain.Package, fix Correction) *domain.Package {
	dup := pkg.Clone()
	dup.Address = fix.Address
	dup.Destination = fix.Destination
	dup.Annotation = NoteCorrected
	dup.DeliveredAt = nil
	dup.MarkAtHub()
	return dup
}

// Already delivered: the nearest truck goes back for it, then on to the
// corrected address.
func (c *Corrector) recall(pkg *domain.Package, fix Correction) (Remediation, error) {
	truck, _, err := NearestTruck(c.Trucks, pkg.Destination, c.Distances)
	if err != nil {
		return Remediation{}, err
	}

	dup := corrected(pkg, fix)
	pickup := domain.Waypoint{
		Destination: pkg.Destination,
		Reason:      fmt.Sprintf("pick up package %d", pkg.PackageID),
	}
	if err := truck.InsertNext(pickup, domain.Delivery{Package: dup}); err != nil {
		return Remediation{}, err
	}
	pkg.Annotation = NoteMisdelivered

	return Remediation{Action: ActionRecall, TruckID: truck.TruckID, Duplicate: dup}, nil
}

func (c *Corrector) overwrite(pkg *domain.Package, fix Correction) (Remediation, error) {
	pkg.Address = fix.Address
	pkg.Destination = fix.Destination
	return Remediation{Action: ActionOverwrite, TruckID: pkg.TruckID}, nil
}

// The truck is already committed to the old address; the corrected copy
// rides at the back of the same manifest.
func (c *Corrector) redeliver(pkg *domain.Package, fix Correction) (Remediation, error) {
	var truck *domain.Truck
	for _, t := range c.Trucks {
		if t.TruckID == pkg.TruckID {
			truck = t
			break
		}
	}
	if truck == nil {
		return Remediation{}, fmt.Errorf("redeliver: truck %d not found", pkg.TruckID)
	}

	dup := corrected(pkg, fix)
	if err := truck.Load(dup); err != nil {
		return Remediation{}, err
	}
	pkg.Annotation = NoteWrongAddress

	return Remediation{Action: ActionRedeliver, TruckID: truck.TruckID, Duplicate: dup}, nil
}

func (c *Corrector) release(pkg *domain.Package, fix Correction) (Remediation, error) {
	pkg.Address = fix.Address
	pkg.Destination = fix.Destination
	pkg.MarkAtHub()
	return Remediation{Action: ActionRelease}, nil
}
