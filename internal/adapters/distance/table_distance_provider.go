package distance

import (
	"delivery-fleet-sim/internal/ports"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// TableDistanceProvider serves distances from the pre-parsed distance table.
// The table only needs one direction per pair; lookups are symmetric.
type TableDistanceProvider struct {
	miles     map[string]float64
	locations map[string]struct{}
}

func key(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func NewTableDistanceProvider(records []ports.DistanceRecord) (*TableDistanceProvider, error) {
	t := &TableDistanceProvider{
		miles:     make(map[string]float64, len(records)),
		locations: make(map[string]struct{}),
	}

	for i, r := range records {
		from := strings.TrimSpace(r.From)
		to := strings.TrimSpace(r.To)
		if from == "" || to == "" {
			return nil, fmt.Errorf("distance table: row %d: empty location", i+1)
		}
		if r.Miles < 0 {
			return nil, fmt.Errorf("distance table: row %d: negative distance %q -> %q", i+1, from, to)
		}
		if from == to && r.Miles != 0 {
			return nil, fmt.Errorf("distance table: row %d: non-zero self distance for %q", i+1, from)
		}

		t.miles[key(from, to)] = r.Miles
		t.locations[from] = struct{}{}
		t.locations[to] = struct{}{}
	}

	if len(t.miles) == 0 {
		return nil, errors.New("distance table: no rows")
	}
	return t, nil
}

func (t *TableDistanceProvider) GetDistance(origin, destination string) (float64, error) {
	if origin == destination {
		return 0, nil
	}
	d, ok := t.miles[key(origin, destination)]
	if !ok {
		return 0, fmt.Errorf("distance table: %q -> %q: %w", origin, destination, ports.ErrMissingDistance)
	}
	return d, nil
}

// Locations returns every location named in the table, sorted.
func (t *TableDistanceProvider) Locations() []string {
	out := make([]string, 0, len(t.locations))
	for l := range t.locations {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

// Knows reports whether the location appears in the table at all.
func (t *TableDistanceProvider) Knows(location string) bool {
	_, ok := t.locations[location]
	return ok
}
