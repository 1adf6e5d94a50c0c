package core

import (
	"context"

	"rentcore/pkg/domain"
)

// SubmitApplication persists a tenant's rental application after resolving
// the unit and the applicant.
func (s *Service) SubmitApplication(ctx context.Context, application Application) (Application, Result, error) {
	var created Application
	res, err := s.run(ctx, "submit_application", func(tx Transaction) error {
		view := tx.Snapshot()
		if _, err := requireUnit(view, "unit_id", application.UnitID); err != nil {
			return err
		}
		if _, err := requireUser(view, "tenant_id", application.TenantID, domain.RoleTenant); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateApplication(application)
		return err
	})
	return created, res, err
}

// ApproveApplication moves an application from pending to approved.
func (s *Service) ApproveApplication(ctx context.Context, id string) (Application, Result, error) {
	return s.transitionApplication(ctx, "approve_application", id, domain.ApplicationStatusApproved)
}

// RejectApplication moves an application from pending to rejected.
func (s *Service) RejectApplication(ctx context.Context, id string) (Application, Result, error) {
	return s.transitionApplication(ctx, "reject_application", id, domain.ApplicationStatusRejected)
}

func (s *Service) transitionApplication(ctx context.Context, op, id string, to domain.ApplicationStatus) (Application, Result, error) {
	var updated Application
	res, err := s.run(ctx, op, func(tx Transaction) error {
		application, ok := tx.Snapshot().FindApplication(id)
		if !ok {
			return domain.NotFound{Entity: domain.EntityApplication, ID: id}
		}
		machine, _ := domain.MachineFor(domain.EntityApplication)
		if !machine.CanTransition(string(application.Status), string(to)) {
			return domain.InvalidTransition{Entity: domain.EntityApplication, ID: id, From: string(application.Status), To: string(to)}
		}
		var err error
		updated, err = tx.UpdateApplication(id, func(a *Application) error {
			a.Status = to
			return nil
		})
		return err
	})
	return updated, res, err
}

// CreateLease persists a lease agreement after resolving its unit and tenant.
func (s *Service) CreateLease(ctx context.Context, lease Lease) (Lease, Result, error) {
	var created Lease
	res, err := s.run(ctx, "create_lease", func(tx Transaction) error {
		view := tx.Snapshot()
		if _, err := requireUnit(view, "unit_id", lease.UnitID); err != nil {
			return err
		}
		if _, err := requireUser(view, "tenant_id", lease.TenantID, domain.RoleTenant); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateLease(lease)
		return err
	})
	return created, res, err
}

// ActivateLease moves a lease from pending to active. The unit must not be
// under maintenance and must not carry another active lease; the occupancy
// maintainer then flips the unit to occupied and bumps the property count.
func (s *Service) ActivateLease(ctx context.Context, id string) (Lease, Result, error) {
	var updated Lease
	res, err := s.run(ctx, "activate_lease", func(tx Transaction) error {
		view := tx.Snapshot()
		lease, ok := view.FindLease(id)
		if !ok {
			return domain.NotFound{Entity: domain.EntityLease, ID: id}
		}
		machine, _ := domain.MachineFor(domain.EntityLease)
		if !machine.CanTransition(string(lease.Status), string(domain.LeaseStatusActive)) {
			return domain.InvalidTransition{Entity: domain.EntityLease, ID: id, From: string(lease.Status), To: string(domain.LeaseStatusActive)}
		}
		unit, err := requireUnit(view, "unit_id", lease.UnitID)
		if err != nil {
			return err
		}
		if unit.Status == domain.UnitStatusMaintenance {
			return domain.InvalidTransition{Entity: domain.EntityLease, ID: id, From: string(lease.Status), To: string(domain.LeaseStatusActive)}
		}
		if hasActiveLease(view, lease.UnitID, id) {
			return domain.InvalidTransition{Entity: domain.EntityLease, ID: id, From: string(lease.Status), To: string(domain.LeaseStatusActive)}
		}
		updated, err = tx.UpdateLease(id, func(l *Lease) error {
			l.Status = domain.LeaseStatusActive
			return nil
		})
		return err
	})
	return updated, res, err
}

// EndLease moves a lease from active to ended at natural conclusion. The
// occupancy maintainer frees the unit in the same transaction.
func (s *Service) EndLease(ctx context.Context, id string) (Lease, Result, error) {
	return s.closeLease(ctx, "end_lease", id, domain.LeaseStatusEnded)
}

// TerminateLease moves a lease from active to terminated before its end date.
func (s *Service) TerminateLease(ctx context.Context, id string) (Lease, Result, error) {
	return s.closeLease(ctx, "terminate_lease", id, domain.LeaseStatusTerminated)
}

func (s *Service) closeLease(ctx context.Context, op, id string, to domain.LeaseStatus) (Lease, Result, error) {
	var updated Lease
	res, err := s.run(ctx, op, func(tx Transaction) error {
		lease, ok := tx.Snapshot().FindLease(id)
		if !ok {
			return domain.NotFound{Entity: domain.EntityLease, ID: id}
		}
		machine, _ := domain.MachineFor(domain.EntityLease)
		if !machine.CanTransition(string(lease.Status), string(to)) {
			return domain.InvalidTransition{Entity: domain.EntityLease, ID: id, From: string(lease.Status), To: string(to)}
		}
		var err error
		updated, err = tx.UpdateLease(id, func(l *Lease) error {
			l.Status = to
			return nil
		})
		return err
	})
	return updated, res, err
}

// RecordPayment persists a payment against a lease. The tenant on the
// payment must hold the lease it settles.
func (s *Service) RecordPayment(ctx context.Context, payment Payment) (Payment, Result, error) {
	var created Payment
	res, err := s.run(ctx, "record_payment", func(tx Transaction) error {
		view := tx.Snapshot()
		lease, err := requireLease(view, "lease_id", payment.LeaseID)
		if err != nil {
			return err
		}
		if _, err := requireUser(view, "tenant_id", payment.TenantID, domain.RoleTenant); err != nil {
			return err
		}
		if payment.TenantID != lease.TenantID {
			return domain.ValidationError{Entity: domain.EntityPayment, Field: "tenant_id", Reason: "tenant does not hold the lease"}
		}
		created, err = tx.CreatePayment(payment)
		return err
	})
	return created, res, err
}

// MarkPaymentPaid settles a payment, stamping its paid date.
func (s *Service) MarkPaymentPaid(ctx context.Context, id string) (Payment, Result, error) {
	var updated Payment
	res, err := s.run(ctx, "mark_payment_paid", func(tx Transaction) error {
		payment, ok := tx.Snapshot().FindPayment(id)
		if !ok {
			return domain.NotFound{Entity: domain.EntityPayment, ID: id}
		}
		machine, _ := domain.MachineFor(domain.EntityPayment)
		if !machine.CanTransition(string(payment.Status), string(domain.PaymentStatusPaid)) {
			return domain.InvalidTransition{Entity: domain.EntityPayment, ID: id, From: string(payment.Status), To: string(domain.PaymentStatusPaid)}
		}
		paidAt := s.nowFn()
		var err error
		updated, err = tx.UpdatePayment(id, func(p *Payment) error {
			p.Status = domain.PaymentStatusPaid
			p.PaidDate = &paidAt
			return nil
		})
		return err
	})
	return updated, res, err
}

// MarkPaymentOverdue flags an unpaid payment past its due date.
func (s *Service) MarkPaymentOverdue(ctx context.Context, id string) (Payment, Result, error) {
	var updated Payment
	res, err := s.run(ctx, "mark_payment_overdue", func(tx Transaction) error {
		payment, ok := tx.Snapshot().FindPayment(id)
		if !ok {
			return domain.NotFound{Entity: domain.EntityPayment, ID: id}
		}
		machine, _ := domain.MachineFor(domain.EntityPayment)
		if !machine.CanTransition(string(payment.Status), string(domain.PaymentStatusOverdue)) {
			return domain.InvalidTransition{Entity: domain.EntityPayment, ID: id, From: string(payment.Status), To: string(domain.PaymentStatusOverdue)}
		}
		var err error
		updated, err = tx.UpdatePayment(id, func(p *Payment) error {
			p.Status = domain.PaymentStatusOverdue
			return nil
		})
		return err
	})
	return updated, res, err
}
