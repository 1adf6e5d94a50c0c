package core

import (
	"context"

	"rentcore/pkg/domain"
)

// OpenMaintenanceRequest persists a maintenance ticket after resolving its
// unit and reporting tenant.
func (s *Service) OpenMaintenanceRequest(ctx context.Context, request MaintenanceRequest) (MaintenanceRequest, Result, error) {
	var created MaintenanceRequest
	res, err := s.run(ctx, "open_maintenance_request", func(tx Transaction) error {
		view := tx.Snapshot()
		if _, err := requireUnit(view, "unit_id", request.UnitID); err != nil {
			return err
		}
		if _, err := requireUser(view, "tenant_id", request.TenantID, domain.RoleTenant); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateMaintenanceRequest(request)
		return err
	})
	return created, res, err
}

// UpdateMaintenanceRequest mutates a ticket using the provided mutator.
func (s *Service) UpdateMaintenanceRequest(ctx context.Context, id string, mutator func(*MaintenanceRequest) error) (MaintenanceRequest, Result, error) {
	var updated MaintenanceRequest
	res, err := s.run(ctx, "update_maintenance_request", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateMaintenanceRequest(id, mutator)
		return err
	})
	return updated, res, err
}

// StartMaintenanceRequest moves a ticket from open to in_progress.
func (s *Service) StartMaintenanceRequest(ctx context.Context, id string) (MaintenanceRequest, Result, error) {
	return s.transitionMaintenance(ctx, "start_maintenance_request", id, domain.MaintenanceStatusInProgress)
}

// ResolveMaintenanceRequest moves a ticket from in_progress to resolved.
func (s *Service) ResolveMaintenanceRequest(ctx context.Context, id string) (MaintenanceRequest, Result, error) {
	return s.transitionMaintenance(ctx, "resolve_maintenance_request", id, domain.MaintenanceStatusResolved)
}

func (s *Service) transitionMaintenance(ctx context.Context, op, id string, to domain.MaintenanceStatus) (MaintenanceRequest, Result, error) {
	var updated MaintenanceRequest
	res, err := s.run(ctx, op, func(tx Transaction) error {
		request, ok := tx.Snapshot().FindMaintenanceRequest(id)
		if !ok {
			return domain.NotFound{Entity: domain.EntityMaintenanceRequest, ID: id}
		}
		machine, _ := domain.MachineFor(domain.EntityMaintenanceRequest)
		if !machine.CanTransition(string(request.Status), string(to)) {
			return domain.InvalidTransition{Entity: domain.EntityMaintenanceRequest, ID: id, From: string(request.Status), To: string(to)}
		}
		var err error
		updated, err = tx.UpdateMaintenanceRequest(id, func(m *MaintenanceRequest) error {
			m.Status = to
			return nil
		})
		return err
	})
	return updated, res, err
}

// SendMessage persists a message between two existing users.
func (s *Service) SendMessage(ctx context.Context, message Message) (Message, Result, error) {
	var created Message
	res, err := s.run(ctx, "send_message", func(tx Transaction) error {
		view := tx.Snapshot()
		if _, err := requireUser(view, "sender_id", message.SenderID, ""); err != nil {
			return err
		}
		if _, err := requireUser(view, "receiver_id", message.ReceiverID, ""); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateMessage(message)
		return err
	})
	return created, res, err
}

// MarkMessageRead stamps a message's read time. Already-read messages keep
// their original timestamp.
func (s *Service) MarkMessageRead(ctx context.Context, id string) (Message, Result, error) {
	var updated Message
	res, err := s.run(ctx, "mark_message_read", func(tx Transaction) error {
		readAt := s.nowFn()
		var err error
		updated, err = tx.UpdateMessage(id, func(m *Message) error {
			if m.ReadAt == nil {
				m.ReadAt = &readAt
			}
			return nil
		})
		return err
	})
	return updated, res, err
}
