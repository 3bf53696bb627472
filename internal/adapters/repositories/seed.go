package repositories

import (
	"context"
	"database/sql"
	"delivery-fleet-sim/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type PackageSeed struct {
	PackageID int     `json:"package_id"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zip       string  `json:"zip"`
	Deadline  string  `json:"deadline"`
	Weight    float64 `json:"weight"`
	Notes     string  `json:"notes"`
}

type LocationSeed struct {
	Location    string `json:"location"`
	PackageText string `json:"package_text"`
}

type DistanceSeed struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Miles float64 `json:"miles"`
}

// Seed is the JSON layout of a seed file.
type Seed struct {
	Packages  []PackageSeed  `json:"packages"`
	Locations []LocationSeed `json:"locations"`
	Distances []DistanceSeed `json:"distances"`
}

// ReadSeed parses and validates a seed file.
func ReadSeed(jsonPath string) (Seed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return Seed{}, fmt.Errorf("read seed: parse json: %w", err)
	}
	if err := data.Validate(); err != nil {
		return Seed{}, fmt.Errorf("read seed %q: %w", jsonPath, err)
	}
	return data, nil
}

func (s Seed) Validate() error {
	if len(s.Packages) == 0 {
		return errors.New("no packages")
	}
	for i, p := range s.Packages {
		if p.PackageID <= 0 {
			return fmt.Errorf("invalid package_id at index %d: %d", i+1, p.PackageID)
		}
		if strings.TrimSpace(p.Address) == "" {
			return fmt.Errorf("package %d: address cannot be empty", p.PackageID)
		}
		if strings.TrimSpace(p.Deadline) == "" {
			return fmt.Errorf("package %d: deadline cannot be empty", p.PackageID)
		}
		if p.Weight < 0 {
			return fmt.Errorf("package %d: negative weight", p.PackageID)
		}
	}
	for i, l := range s.Locations {
		if strings.TrimSpace(l.Location) == "" {
			return fmt.Errorf("location at index %d: name cannot be empty", i+1)
		}
	}
	for i, d := range s.Distances {
		if strings.TrimSpace(d.From) == "" || strings.TrimSpace(d.To) == "" {
			return fmt.Errorf("distance at index %d: endpoints cannot be empty", i+1)
		}
		if d.Miles < 0 {
			return fmt.Errorf("distance at index %d: negative miles", i+1)
		}
	}
	return nil
}

// Records converts the seed into the rows the core consumes, without a
// database round trip.
func (s Seed) Records() ([]ports.PackageRecord, []ports.LocationRecord, []ports.DistanceRecord) {
	pkgs := make([]ports.PackageRecord, len(s.Packages))
	for i, p := range s.Packages {
		pkgs[i] = ports.PackageRecord(p)
	}
	locs := make([]ports.LocationRecord, len(s.Locations))
	for i, l := range s.Locations {
		locs[i] = ports.LocationRecord(l)
	}
	dists := make([]ports.DistanceRecord, len(s.Distances))
	for i, d := range s.Distances {
		dists[i] = ports.DistanceRecord(d)
	}
	return pkgs, locs, dists
}

// Populate the database from a JSON seed file. Existing rows are replaced.
func SeedFromJSON(ctx context.Context, db *sql.DB, d Dialect, jsonPath string) error {
	data, err := ReadSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	pkgStmt, err := tx.PrepareContext(ctx, d.Rebind(`
	INSERT INTO packages (package_id, address, city, state, zip, deadline, weight, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (package_id) DO UPDATE
	SET address = excluded.address,
		city = excluded.city,
		state = excluded.state,
		zip = excluded.zip,
		deadline = excluded.deadline,
		weight = excluded.weight,
		notes = excluded.notes;
	`))
	if err != nil {
		return fmt.Errorf("seed: prepare package insert: %w", err)
	}
	defer pkgStmt.Close()

	for _, p := range data.Packages {
		if _, err := pkgStmt.ExecContext(ctx, p.PackageID, strings.TrimSpace(p.Address), p.City, p.State, p.Zip, p.Deadline, p.Weight, p.Notes); err != nil {
			return fmt.Errorf("seed: insert package_id=%d: %w", p.PackageID, err)
		}
	}

	locStmt, err := tx.PrepareContext(ctx, d.Rebind(`
	INSERT INTO locations (location, package_text)
	VALUES (?, ?)
	ON CONFLICT (location) DO UPDATE
	SET package_text = excluded.package_text;
	`))
	if err != nil {
		return fmt.Errorf("seed: prepare location insert: %w", err)
	}
	defer locStmt.Close()

	for _, l := range data.Locations {
		if _, err := locStmt.ExecContext(ctx, strings.TrimSpace(l.Location), l.PackageText); err != nil {
			return fmt.Errorf("seed: insert location=%q: %w", l.Location, err)
		}
	}

	distStmt, err := tx.PrepareContext(ctx, d.Rebind(`
	INSERT INTO distances (origin, destination, miles)
	VALUES (?, ?, ?)
	ON CONFLICT (origin, destination) DO UPDATE
	SET miles = excluded.miles;
	`))
	if err != nil {
		return fmt.Errorf("seed: prepare distance insert: %w", err)
	}
	defer distStmt.Close()

	for _, r := range data.Distances {
		if _, err := distStmt.ExecContext(ctx, strings.TrimSpace(r.From), strings.TrimSpace(r.To), r.Miles); err != nil {
			return fmt.Errorf("seed: insert distance %q -> %q: %w", r.From, r.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
