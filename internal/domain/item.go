package domain

// Item is the unit of assignment: a single package or the hub-present
// members of a bundle, which must be loaded together.
type Item []*Package

// Deadline is the earliest member deadline.
func (it Item) Deadline() SimTime {
	earliest := EndOfDay
	for _, p := range it {
		if p.Deadline < earliest {
			earliest = p.Deadline
		}
	}
	return earliest
}

func (it Item) FirstDestination() string { return it[0].Destination }

func (it Item) LastDestination() string { return it[len(it)-1].Destination }

// Bundle is a declared set of package ids that must ship together.
type Bundle []int

// Constraints holds per-package truck eligibility and the declared bundles.
type Constraints struct {
	Eligible map[int]map[int]bool
	Bundles  []Bundle
}

func NewConstraints() Constraints {
	return Constraints{Eligible: make(map[int]map[int]bool)}
}

// Restrict limits packageID to the given trucks.
func (c *Constraints) Restrict(packageID int, truckIDs ...int) {
	if c.Eligible == nil {
		c.Eligible = make(map[int]map[int]bool)
	}
	set := make(map[int]bool, len(truckIDs))
	for _, id := range truckIDs {
		set[id] = true
	}
	c.Eligible[packageID] = set
}

// CanCarry reports whether truckID may carry packageID. Packages without an
// entry are eligible for every truck.
func (c Constraints) CanCarry(packageID, truckID int) bool {
	set, ok := c.Eligible[packageID]
	if !ok {
		return true
	}
	return set[truckID]
}

// CanCarryItem requires every member to be eligible.
func (c Constraints) CanCarryItem(it Item, truckID int) bool {
	for _, p := range it {
		if !c.CanCarry(p.PackageID, truckID) {
			return false
		}
	}
	return true
}
