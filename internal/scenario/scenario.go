package scenario

import (
	"delivery-fleet-sim/internal/domain"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is the run configuration that is not part of the input tables.
type Scenario struct {
	Hub             string           `yaml:"hub"`
	Start           string           `yaml:"start"`
	EndOfDay        string           `yaml:"end_of_day"`
	ArrivalAt       string           `yaml:"arrival_at"`
	Fleet           FleetSpec        `yaml:"fleet"`
	RegistryBuckets int              `yaml:"registry_buckets"`
	Corrections     []CorrectionSpec `yaml:"corrections,omitempty"`
	Bundles         [][]int          `yaml:"bundles,omitempty"`
	Eligibility     map[int][]int    `yaml:"eligibility,omitempty"`
	Delayed         []int            `yaml:"delayed,omitempty"`
}

type FleetSpec struct {
	Trucks   int     `yaml:"trucks"`
	Drivers  int     `yaml:"drivers"`
	Capacity int     `yaml:"capacity"`
	SpeedMPH float64 `yaml:"speed_mph"`
}

// Size is the number of trucks that can actually drive.
func (f FleetSpec) Size() int { return min(f.Trucks, f.Drivers) }

type CorrectionSpec struct {
	PackageID int    `yaml:"package_id"`
	At        string `yaml:"at"`
	Address   string `yaml:"address"`
}

func Default() Scenario {
	return Scenario{
		Hub:       "Western Governors University",
		Start:     "08:00",
		EndOfDay:  "24:00",
		ArrivalAt: "09:05",
		Fleet: FleetSpec{
			Trucks:   3,
			Drivers:  2,
			Capacity: 16,
			SpeedMPH: 18,
		},
		RegistryBuckets: 40,
	}
}

// Load reads a scenario file over the defaults. An empty path yields the
// defaults.
func Load(path string) (Scenario, error) {
	sc := Default()
	if strings.TrimSpace(path) == "" {
		return sc, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return sc, fmt.Errorf("load scenario: %w", err)
	}
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return sc, fmt.Errorf("load scenario %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return sc, fmt.Errorf("load scenario %s: %w", path, err)
	}
	return sc, nil
}

func (s Scenario) Validate() error {
	if strings.TrimSpace(s.Hub) == "" {
		return errors.New("hub must be non-empty")
	}
	if s.Fleet.Size() < 1 {
		return fmt.Errorf("fleet needs at least one truck and one driver (trucks=%d drivers=%d)", s.Fleet.Trucks, s.Fleet.Drivers)
	}
	if s.Fleet.Capacity < 1 {
		return fmt.Errorf("fleet capacity must be positive, got %d", s.Fleet.Capacity)
	}
	if s.Fleet.SpeedMPH <= 0 {
		return fmt.Errorf("fleet speed must be positive, got %v", s.Fleet.SpeedMPH)
	}
	if s.RegistryBuckets < 1 {
		return fmt.Errorf("registry_buckets must be positive, got %d", s.RegistryBuckets)
	}

	start, err := domain.ParseSimTime(s.Start)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := domain.ParseSimTime(s.EndOfDay)
	if err != nil {
		return fmt.Errorf("end_of_day: %w", err)
	}
	if end <= start {
		return fmt.Errorf("end_of_day %s must be after start %s", end, start)
	}
	if _, err := domain.ParseSimTime(s.ArrivalAt); err != nil {
		return fmt.Errorf("arrival_at: %w", err)
	}

	for i, c := range s.Corrections {
		if c.PackageID == 0 {
			return fmt.Errorf("corrections[%d]: package_id is required", i)
		}
		if strings.TrimSpace(c.Address) == "" {
			return fmt.Errorf("corrections[%d]: address is required", i)
		}
		if _, err := domain.ParseSimTime(c.At); err != nil {
			return fmt.Errorf("corrections[%d].at: %w", i, err)
		}
	}

	for id, trucks := range s.Eligibility {
		for _, t := range trucks {
			if t < 1 || t > s.Fleet.Size() {
				return fmt.Errorf("eligibility for package %d: truck %d outside fleet of %d", id, t, s.Fleet.Size())
			}
		}
	}
	return nil
}
