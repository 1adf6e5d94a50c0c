package core

import (
	"context"
	"fmt"

	"rentcore/pkg/domain"
)

// NewStatusTransitionRule returns the rule blocking status changes not
// permitted by the fixed per-entity transition tables.
func NewStatusTransitionRule() domain.Rule {
	return statusTransitionRule{}
}

type statusTransitionRule struct{}

func (statusTransitionRule) Name() string { return "status_transition" }

func statusOf(entity domain.EntityType, payload any) (id, status string, ok bool) {
	switch entity {
	case domain.EntityUnit:
		v, ok := payload.(domain.Unit)
		if !ok {
			return "", "", false
		}
		return v.ID, string(v.Status), true
	case domain.EntityApplication:
		v, ok := payload.(domain.Application)
		if !ok {
			return "", "", false
		}
		return v.ID, string(v.Status), true
	case domain.EntityLease:
		v, ok := payload.(domain.Lease)
		if !ok {
			return "", "", false
		}
		return v.ID, string(v.Status), true
	case domain.EntityPayment:
		v, ok := payload.(domain.Payment)
		if !ok {
			return "", "", false
		}
		return v.ID, string(v.Status), true
	case domain.EntityMaintenanceRequest:
		v, ok := payload.(domain.MaintenanceRequest)
		if !ok {
			return "", "", false
		}
		return v.ID, string(v.Status), true
	}
	return "", "", false
}

func (statusTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		machine, ok := domain.MachineFor(change.Entity)
		if !ok {
			continue
		}
		afterID, afterStatus, ok := statusOf(change.Entity, change.After)
		if !ok {
			continue
		}
		if !machine.IsValidState(afterStatus) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "status_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s %s is set to unknown status %s", machine.Label, afterID, afterStatus),
				Entity:   change.Entity,
				EntityID: afterID,
			})
			continue
		}
		_, beforeStatus, ok := statusOf(change.Entity, change.Before)
		if !ok || beforeStatus == afterStatus {
			continue
		}
		if !machine.CanTransition(beforeStatus, afterStatus) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "status_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s %s cannot move from %s to %s", machine.Label, afterID, beforeStatus, afterStatus),
				Entity:   change.Entity,
				EntityID: afterID,
			})
		}
	}
	return res, nil
}
