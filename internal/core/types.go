// Package core exposes the transactional rental-management service, its
// rules, derived-state maintainers, and workflow orchestration.
package core

import "rentcore/pkg/domain"

type (
	User               = domain.User
	Property           = domain.Property
	Unit               = domain.Unit
	Application        = domain.Application
	Lease              = domain.Lease
	Payment            = domain.Payment
	MaintenanceRequest = domain.MaintenanceRequest
	Message            = domain.Message

	Change          = domain.Change
	Result          = domain.Result
	RulesEngine     = domain.RulesEngine
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
	EntityType      = domain.EntityType
)
