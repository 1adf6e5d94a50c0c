package core

import (
	"context"
	"fmt"

	"rentcore/pkg/domain"
)

// NewReferenceIntegrityRule returns the rule enforcing that every foreign key
// in the committed state resolves to a live record of the right kind. The
// service performs the same checks in-transaction with typed errors; this
// rule is the whole-state backstop for mutations that bypass the service.
func NewReferenceIntegrityRule() domain.Rule {
	return referenceIntegrityRule{}
}

type referenceIntegrityRule struct{}

func (referenceIntegrityRule) Name() string { return "reference_integrity" }

func (referenceIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	users := make(map[string]domain.User)
	for _, u := range view.ListUsers() {
		users[u.ID] = u
	}
	properties := make(map[string]struct{})
	for _, p := range view.ListProperties() {
		properties[p.ID] = struct{}{}
	}
	units := make(map[string]struct{})
	for _, u := range view.ListUnits() {
		units[u.ID] = struct{}{}
	}
	leases := make(map[string]struct{})
	for _, l := range view.ListLeases() {
		leases[l.ID] = struct{}{}
	}

	requireUser := func(entity domain.EntityType, entityID, field, userID string, role domain.UserRole) {
		user, ok := users[userID]
		if !ok {
			res.Violations = append(res.Violations, referenceViolation(entity, entityID,
				fmt.Sprintf("%s %s %s references missing user %s", entity, entityID, field, userID)))
			return
		}
		if role != "" && user.Role != role {
			res.Violations = append(res.Violations, referenceViolation(entity, entityID,
				fmt.Sprintf("%s %s %s resolves to %s %s, want %s", entity, entityID, field, user.Role, userID, role)))
		}
	}

	for _, p := range view.ListProperties() {
		requireUser(domain.EntityProperty, p.ID, "landlord_id", p.LandlordID, domain.RoleLandlord)
	}
	for _, u := range view.ListUnits() {
		if _, ok := properties[u.PropertyID]; !ok {
			res.Violations = append(res.Violations, referenceViolation(domain.EntityUnit, u.ID,
				fmt.Sprintf("unit %s references missing property %s", u.ID, u.PropertyID)))
		}
	}
	for _, a := range view.ListApplications() {
		if _, ok := units[a.UnitID]; !ok {
			res.Violations = append(res.Violations, referenceViolation(domain.EntityApplication, a.ID,
				fmt.Sprintf("application %s references missing unit %s", a.ID, a.UnitID)))
		}
		requireUser(domain.EntityApplication, a.ID, "tenant_id", a.TenantID, domain.RoleTenant)
	}
	for _, l := range view.ListLeases() {
		if _, ok := units[l.UnitID]; !ok {
			res.Violations = append(res.Violations, referenceViolation(domain.EntityLease, l.ID,
				fmt.Sprintf("lease %s references missing unit %s", l.ID, l.UnitID)))
		}
		requireUser(domain.EntityLease, l.ID, "tenant_id", l.TenantID, domain.RoleTenant)
	}
	for _, p := range view.ListPayments() {
		if _, ok := leases[p.LeaseID]; !ok {
			res.Violations = append(res.Violations, referenceViolation(domain.EntityPayment, p.ID,
				fmt.Sprintf("payment %s references missing lease %s", p.ID, p.LeaseID)))
		}
		requireUser(domain.EntityPayment, p.ID, "tenant_id", p.TenantID, domain.RoleTenant)
	}
	for _, m := range view.ListMaintenanceRequests() {
		if _, ok := units[m.UnitID]; !ok {
			res.Violations = append(res.Violations, referenceViolation(domain.EntityMaintenanceRequest, m.ID,
				fmt.Sprintf("maintenance request %s references missing unit %s", m.ID, m.UnitID)))
		}
		requireUser(domain.EntityMaintenanceRequest, m.ID, "tenant_id", m.TenantID, domain.RoleTenant)
	}
	for _, m := range view.ListMessages() {
		requireUser(domain.EntityMessage, m.ID, "sender_id", m.SenderID, "")
		requireUser(domain.EntityMessage, m.ID, "receiver_id", m.ReceiverID, "")
		if m.SenderID == m.ReceiverID {
			res.Violations = append(res.Violations, referenceViolation(domain.EntityMessage, m.ID,
				fmt.Sprintf("message %s sender and receiver are the same user %s", m.ID, m.SenderID)))
		}
	}

	return res, nil
}

func referenceViolation(entity domain.EntityType, entityID, message string) domain.Violation {
	return domain.Violation{
		Rule:     "reference_integrity",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   entity,
		EntityID: entityID,
	}
}
