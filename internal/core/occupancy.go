package core

import (
	"rentcore/pkg/domain"
)

// NewOccupancyMaintainer returns the maintainer that keeps unit statuses and
// property occupancy counts consistent with lease state. It runs inside every
// transaction after the body and before rule evaluation.
func NewOccupancyMaintainer() domain.Maintainer {
	return occupancyMaintainer{}
}

type occupancyMaintainer struct{}

func (occupancyMaintainer) Name() string { return "occupancy" }

// Maintain derives occupancy in two passes. First, units are cascaded to
// match lease state: a unit with an active lease becomes occupied, an
// occupied unit with no active lease becomes available. A unit under
// maintenance is left alone; activating a lease on it is blocked by the
// occupancy rule. Second, each property's OccupiedUnits is recomputed as a
// full count over its units, never an increment.
func (occupancyMaintainer) Maintain(tx domain.Transaction, _ []domain.Change) error {
	view := tx.Snapshot()

	activeLeases := make(map[string]int)
	for _, lease := range view.ListLeases() {
		if lease.Status == domain.LeaseStatusActive {
			activeLeases[lease.UnitID]++
		}
	}

	for _, unit := range view.ListUnits() {
		leased := activeLeases[unit.ID] > 0
		switch {
		case leased && unit.Status == domain.UnitStatusAvailable:
			if _, err := tx.UpdateUnit(unit.ID, func(u *domain.Unit) error {
				u.Status = domain.UnitStatusOccupied
				return nil
			}); err != nil {
				return err
			}
		case !leased && unit.Status == domain.UnitStatusOccupied:
			if _, err := tx.UpdateUnit(unit.ID, func(u *domain.Unit) error {
				u.Status = domain.UnitStatusAvailable
				return nil
			}); err != nil {
				return err
			}
		}
	}

	view = tx.Snapshot()
	occupied := make(map[string]int)
	for _, unit := range view.ListUnits() {
		if unit.Status == domain.UnitStatusOccupied {
			occupied[unit.PropertyID]++
		}
	}
	for _, property := range view.ListProperties() {
		count := occupied[property.ID]
		if property.OccupiedUnits == count {
			continue
		}
		if _, err := tx.UpdateProperty(property.ID, func(p *domain.Property) error {
			p.OccupiedUnits = count
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}
