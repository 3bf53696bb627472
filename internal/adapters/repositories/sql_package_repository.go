package repositories

import (
	"context"
	"database/sql"
	"delivery-fleet-sim/internal/platform/obs"
	"delivery-fleet-sim/internal/ports"
	"errors"
	"fmt"
)

// SQL-backed implementation of the PackageRepository port. Works against
// SQLite and Postgres.
type SQLPackageRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLPackageRepository(db *sql.DB, d Dialect) *SQLPackageRepository {
	return &SQLPackageRepository{DB: db, Dialect: d}
}

// Return all packages stored in the database.
func (s *SQLPackageRepository) ListPackages(ctx context.Context) (_ []ports.PackageRecord, err error) {
	defer obs.Time(ctx, "repo.ListPackages")(&err)

	if s.DB == nil {
		return nil, errors.New("sql package repository: DB is nil")
	}

	query := `
	SELECT
		package_id,
		address,
		city,
		state,
		zip,
		deadline,
		weight,
		notes
	FROM packages
	ORDER BY package_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list packages: query packages table: %w", err)
	}
	defer rows.Close()

	packages := make([]ports.PackageRecord, 0, 64)
	for rows.Next() {
		var p ports.PackageRecord
		err := rows.Scan(&p.PackageID, &p.Address, &p.City, &p.State, &p.Zip, &p.Deadline, &p.Weight, &p.Notes)
		if err != nil {
			return nil, fmt.Errorf("list packages: scan row: %w", err)
		}
		packages = append(packages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list packages: row iteration: %w", err)
	}

	return packages, nil
}

func (s *SQLPackageRepository) ListLocations(ctx context.Context) (_ []ports.LocationRecord, err error) {
	defer obs.Time(ctx, "repo.ListLocations")(&err)

	if s.DB == nil {
		return nil, errors.New("sql package repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT location, package_text
	FROM locations
	ORDER BY location;
	`)
	if err != nil {
		return nil, fmt.Errorf("list locations: query locations table: %w", err)
	}
	defer rows.Close()

	var out []ports.LocationRecord
	for rows.Next() {
		var l ports.LocationRecord
		if err := rows.Scan(&l.Location, &l.PackageText); err != nil {
			return nil, fmt.Errorf("list locations: scan row: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLPackageRepository) ListDistances(ctx context.Context) (_ []ports.DistanceRecord, err error) {
	defer obs.Time(ctx, "repo.ListDistances")(&err)

	if s.DB == nil {
		return nil, errors.New("sql package repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT origin, destination, miles
	FROM distances
	ORDER BY origin, destination;
	`)
	if err != nil {
		return nil, fmt.Errorf("list distances: query distances table: %w", err)
	}
	defer rows.Close()

	var out []ports.DistanceRecord
	for rows.Next() {
		var d ports.DistanceRecord
		if err := rows.Scan(&d.From, &d.To, &d.Miles); err != nil {
			return nil, fmt.Errorf("list distances: scan row: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list distances: row iteration: %w", err)
	}

	return out, nil
}
