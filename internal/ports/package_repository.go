package ports

import "context"

// A package row as ingested from the package table, before address resolution.
type PackageRecord struct {
	PackageID int
	Address   string
	City      string
	State     string
	Zip       string
	Deadline  string
	Weight    float64
	Notes     string
}

// FullAddress joins the address parts the way the location table spells them.
func (r PackageRecord) FullAddress() string {
	return r.Address + ", " + r.City + ", " + r.State + " " + r.Zip
}

// Maps free-form address text to a canonical location name.
type LocationRecord struct {
	Location    string
	PackageText string
}

// Distance in miles between two canonical locations.
type DistanceRecord struct {
	From  string
	To    string
	Miles float64
}

// Port: a boundary for retrieving the pre-parsed input tables.
type PackageRepository interface {
	// Retrieve all package rows.
	ListPackages(ctx context.Context) ([]PackageRecord, error)
	// Retrieve the address to location mapping.
	ListLocations(ctx context.Context) ([]LocationRecord, error)
	// Retrieve pairwise location distances.
	ListDistances(ctx context.Context) ([]DistanceRecord, error)
}
