package core

import (
	"context"
	"fmt"

	"rentcore/pkg/domain"
)

// Transition dispatches a status change to the typed operation for the
// entity kind, so callers holding only an entity name and target status go
// through the same guards as direct calls.
func (s *Service) Transition(ctx context.Context, entity EntityType, id, to string) (Result, error) {
	switch entity {
	case domain.EntityUnit:
		_, res, err := s.TransitionUnit(ctx, id, domain.UnitStatus(to))
		return res, err
	case domain.EntityApplication:
		switch domain.ApplicationStatus(to) {
		case domain.ApplicationStatusApproved:
			_, res, err := s.ApproveApplication(ctx, id)
			return res, err
		case domain.ApplicationStatusRejected:
			_, res, err := s.RejectApplication(ctx, id)
			return res, err
		}
	case domain.EntityLease:
		switch domain.LeaseStatus(to) {
		case domain.LeaseStatusActive:
			_, res, err := s.ActivateLease(ctx, id)
			return res, err
		case domain.LeaseStatusEnded:
			_, res, err := s.EndLease(ctx, id)
			return res, err
		case domain.LeaseStatusTerminated:
			_, res, err := s.TerminateLease(ctx, id)
			return res, err
		}
	case domain.EntityPayment:
		switch domain.PaymentStatus(to) {
		case domain.PaymentStatusPaid:
			_, res, err := s.MarkPaymentPaid(ctx, id)
			return res, err
		case domain.PaymentStatusOverdue:
			_, res, err := s.MarkPaymentOverdue(ctx, id)
			return res, err
		}
	case domain.EntityMaintenanceRequest:
		switch domain.MaintenanceStatus(to) {
		case domain.MaintenanceStatusInProgress:
			_, res, err := s.StartMaintenanceRequest(ctx, id)
			return res, err
		case domain.MaintenanceStatusResolved:
			_, res, err := s.ResolveMaintenanceRequest(ctx, id)
			return res, err
		}
	}
	machine, ok := domain.MachineFor(entity)
	if !ok {
		return Result{}, fmt.Errorf("entity %s has no status machine", entity)
	}
	if !machine.IsValidState(to) {
		return Result{}, domain.ValidationError{Entity: entity, Field: "status", Reason: "unknown status " + to}
	}
	// Valid status but not a reachable target for any operation, e.g. moving
	// a lease back to pending.
	current := ""
	switch entity {
	case domain.EntityApplication:
		if a, ok := s.store.GetApplication(id); ok {
			current = string(a.Status)
		}
	case domain.EntityLease:
		if l, ok := s.store.GetLease(id); ok {
			current = string(l.Status)
		}
	case domain.EntityPayment:
		if p, ok := s.store.GetPayment(id); ok {
			current = string(p.Status)
		}
	case domain.EntityMaintenanceRequest:
		if m, ok := s.store.GetMaintenanceRequest(id); ok {
			current = string(m.Status)
		}
	}
	if current == "" {
		return Result{}, domain.NotFound{Entity: entity, ID: id}
	}
	return Result{}, domain.InvalidTransition{Entity: entity, ID: id, From: current, To: to}
}
