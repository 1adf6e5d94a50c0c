package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Update operations take a mutator; the
// implementation restores identity fields (id, createdAt, identity foreign
// keys) after the mutator runs, so immutability is structural.
type Transaction interface {
	Snapshot() TransactionView
	CreateUser(User) (User, error)
	UpdateUser(id string, mutator func(*User) error) (User, error)
	CreateProperty(Property) (Property, error)
	UpdateProperty(id string, mutator func(*Property) error) (Property, error)
	CreateUnit(Unit) (Unit, error)
	UpdateUnit(id string, mutator func(*Unit) error) (Unit, error)
	CreateApplication(Application) (Application, error)
	UpdateApplication(id string, mutator func(*Application) error) (Application, error)
	CreateLease(Lease) (Lease, error)
	UpdateLease(id string, mutator func(*Lease) error) (Lease, error)
	CreatePayment(Payment) (Payment, error)
	UpdatePayment(id string, mutator func(*Payment) error) (Payment, error)
	CreateMaintenanceRequest(MaintenanceRequest) (MaintenanceRequest, error)
	UpdateMaintenanceRequest(id string, mutator func(*MaintenanceRequest) error) (MaintenanceRequest, error)
	CreateMessage(Message) (Message, error)
	UpdateMessage(id string, mutator func(*Message) error) (Message, error)
}

// TransactionView provides read-only access to snapshot data for rules and
// in-transaction reference checks.
type TransactionView interface {
	RuleView
}

// PersistentStore is a minimal abstraction over durable backends. Records are
// never hard-deleted in normal operation; soft states (inactive, ended,
// resolved) represent retirement.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetUser(id string) (User, bool)
	ListUsers() []User
	GetProperty(id string) (Property, bool)
	ListProperties() []Property
	GetUnit(id string) (Unit, bool)
	ListUnits() []Unit
	GetApplication(id string) (Application, bool)
	ListApplications() []Application
	GetLease(id string) (Lease, bool)
	ListLeases() []Lease
	GetPayment(id string) (Payment, bool)
	ListPayments() []Payment
	GetMaintenanceRequest(id string) (MaintenanceRequest, bool)
	ListMaintenanceRequests() []MaintenanceRequest
	GetMessage(id string) (Message, bool)
	ListMessages() []Message
}
