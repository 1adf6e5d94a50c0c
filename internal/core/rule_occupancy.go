package core

import (
	"context"
	"fmt"

	"rentcore/pkg/domain"
)

// NewOccupancyRule returns the rule enforcing occupancy invariants after the
// maintainer has run: at most one active lease per unit, unit status
// consistent with lease state, and property occupancy counts equal to the
// actual count of occupied units.
func NewOccupancyRule() domain.Rule {
	return occupancyRule{}
}

type occupancyRule struct{}

func (occupancyRule) Name() string { return "occupancy" }

func (occupancyRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	activeLeases := make(map[string]int)
	for _, lease := range view.ListLeases() {
		if lease.Status == domain.LeaseStatusActive {
			activeLeases[lease.UnitID]++
		}
	}
	for unitID, count := range activeLeases {
		if count > 1 {
			res.Violations = append(res.Violations, occupancyViolation(domain.EntityUnit, unitID,
				fmt.Sprintf("unit %s has %d active leases", unitID, count)))
		}
	}

	occupied := make(map[string]int)
	for _, unit := range view.ListUnits() {
		leased := activeLeases[unit.ID] > 0
		switch unit.Status {
		case domain.UnitStatusOccupied:
			occupied[unit.PropertyID]++
			if !leased {
				res.Violations = append(res.Violations, occupancyViolation(domain.EntityUnit, unit.ID,
					fmt.Sprintf("unit %s is occupied without an active lease", unit.ID)))
			}
		default:
			if leased {
				res.Violations = append(res.Violations, occupancyViolation(domain.EntityUnit, unit.ID,
					fmt.Sprintf("unit %s has an active lease but status %s", unit.ID, unit.Status)))
			}
		}
	}

	for _, property := range view.ListProperties() {
		count := occupied[property.ID]
		if property.OccupiedUnits != count {
			res.Violations = append(res.Violations, occupancyViolation(domain.EntityProperty, property.ID,
				fmt.Sprintf("property %s records %d occupied units, actual %d", property.ID, property.OccupiedUnits, count)))
		}
	}

	return res, nil
}

func occupancyViolation(entity domain.EntityType, entityID, message string) domain.Violation {
	return domain.Violation{
		Rule:     "occupancy",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   entity,
		EntityID: entityID,
	}
}
