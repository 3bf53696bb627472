package distance

import (
	"delivery-fleet-sim/internal/ports"
	"fmt"
)

type MockPair struct {
	From, To string
	Miles    float64
}

// MockDistanceProvider answers from a fixed pair list. Pairs are symmetric
// and a location is zero miles from itself.
type MockDistanceProvider struct {
	m     map[string]float64
	Calls int
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]float64, len(pairs)*2)
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p.Miles
		m[p.To+"|"+p.From] = p.Miles
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) GetDistance(origin, destination string) (float64, error) {
	p.Calls++
	if origin == destination {
		return 0, nil
	}
	r, ok := p.m[origin+"|"+destination]
	if !ok {
		return 0, fmt.Errorf("missing pair %q -> %q: %w", origin, destination, ports.ErrMissingDistance)
	}

	return r, nil
}
