package memory

import (
	"strings"
	"time"

	"rentcore/pkg/domain"
)

// transaction is a mutation set applied to a cloned state and swapped in on commit.
type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

var _ domain.Transaction = (*transaction)(nil)

// Snapshot exposes the transactional state to reference checks and maintainers.
func (tx *transaction) Snapshot() TransactionView {
	return newTxView(&tx.state)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

func defaultStatus(entity domain.EntityType, status string) (string, error) {
	machine, ok := domain.MachineFor(entity)
	if !ok {
		return status, nil
	}
	if status == "" {
		return machine.Initial, nil
	}
	if !machine.IsValidState(status) {
		return "", domain.ValidationError{Entity: entity, Field: "status", Reason: "unknown status " + status}
	}
	if status != machine.Initial {
		return "", domain.ValidationError{Entity: entity, Field: "status", Reason: "must be created as " + machine.Initial}
	}
	return status, nil
}

// validatePaidDate holds the invariant that PaidDate is set exactly when the
// payment is paid.
func validatePaidDate(p Payment) error {
	if p.Status == domain.PaymentStatusPaid && p.PaidDate == nil {
		return domain.ValidationError{Entity: domain.EntityPayment, Field: "paid_date", Reason: "required when status is paid"}
	}
	if p.Status != domain.PaymentStatusPaid && p.PaidDate != nil {
		return domain.ValidationError{Entity: domain.EntityPayment, Field: "paid_date", Reason: "must be unset unless status is paid"}
	}
	return nil
}

// CreateUser stores a new user. Emails are unique across all users.
func (tx *transaction) CreateUser(u User) (User, error) {
	if u.ID == "" {
		u.ID = newID()
	}
	if _, exists := tx.state.users[u.ID]; exists {
		return User{}, domain.DuplicateKey{Entity: domain.EntityUser, Field: "id", Value: u.ID}
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" {
		return User{}, domain.ValidationError{Entity: domain.EntityUser, Field: "email", Reason: "required"}
	}
	if u.Role != domain.RoleLandlord && u.Role != domain.RoleTenant {
		return User{}, domain.ValidationError{Entity: domain.EntityUser, Field: "role", Reason: "must be landlord or tenant"}
	}
	for _, existing := range tx.state.users {
		if existing.Email == u.Email {
			return User{}, domain.DuplicateKey{Entity: domain.EntityUser, Field: "email", Value: u.Email}
		}
	}
	if u.Status == "" {
		u.Status = domain.UserStatusActive
	}
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.users[u.ID] = cloneUser(u)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionCreate, After: cloneUser(u)})
	return cloneUser(u), nil
}

// UpdateUser mutates a user using the provided mutator function.
func (tx *transaction) UpdateUser(id string, mutator func(*User) error) (User, error) {
	current, ok := tx.state.users[id]
	if !ok {
		return User{}, domain.NotFound{Entity: domain.EntityUser, ID: id}
	}
	before := cloneUser(current)
	if err := mutator(&current); err != nil {
		return User{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.Email = strings.ToLower(strings.TrimSpace(current.Email))
	for uid, existing := range tx.state.users {
		if uid != id && existing.Email == current.Email {
			return User{}, domain.DuplicateKey{Entity: domain.EntityUser, Field: "email", Value: current.Email}
		}
	}
	current.UpdatedAt = tx.now
	tx.state.users[id] = cloneUser(current)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionUpdate, Before: before, After: cloneUser(current)})
	return cloneUser(current), nil
}

// CreateProperty stores a new property. OccupiedUnits starts at zero and is
// maintained by the occupancy maintainer from then on.
func (tx *transaction) CreateProperty(p Property) (Property, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if _, exists := tx.state.properties[p.ID]; exists {
		return Property{}, domain.DuplicateKey{Entity: domain.EntityProperty, Field: "id", Value: p.ID}
	}
	if p.Name == "" {
		return Property{}, domain.ValidationError{Entity: domain.EntityProperty, Field: "name", Reason: "required"}
	}
	if p.TotalUnits < 0 {
		return Property{}, domain.ValidationError{Entity: domain.EntityProperty, Field: "total_units", Reason: "must be non-negative"}
	}
	if p.Status == "" {
		p.Status = domain.PropertyStatusActive
	}
	p.OccupiedUnits = 0
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.properties[p.ID] = cloneProperty(p)
	tx.recordChange(Change{Entity: domain.EntityProperty, Action: domain.ActionCreate, After: cloneProperty(p)})
	return cloneProperty(p), nil
}

// UpdateProperty mutates an existing property.
func (tx *transaction) UpdateProperty(id string, mutator func(*Property) error) (Property, error) {
	current, ok := tx.state.properties[id]
	if !ok {
		return Property{}, domain.NotFound{Entity: domain.EntityProperty, ID: id}
	}
	before := cloneProperty(current)
	if err := mutator(&current); err != nil {
		return Property{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	if current.TotalUnits < 0 {
		return Property{}, domain.ValidationError{Entity: domain.EntityProperty, Field: "total_units", Reason: "must be non-negative"}
	}
	current.UpdatedAt = tx.now
	tx.state.properties[id] = cloneProperty(current)
	tx.recordChange(Change{Entity: domain.EntityProperty, Action: domain.ActionUpdate, Before: before, After: cloneProperty(current)})
	return cloneProperty(current), nil
}

// CreateUnit stores a new unit. UnitNumber must be unique within the property.
func (tx *transaction) CreateUnit(u Unit) (Unit, error) {
	if u.ID == "" {
		u.ID = newID()
	}
	if _, exists := tx.state.units[u.ID]; exists {
		return Unit{}, domain.DuplicateKey{Entity: domain.EntityUnit, Field: "id", Value: u.ID}
	}
	if u.UnitNumber == "" {
		return Unit{}, domain.ValidationError{Entity: domain.EntityUnit, Field: "unit_number", Reason: "required"}
	}
	if u.RentAmount < 0 || u.DepositAmount < 0 {
		return Unit{}, domain.ValidationError{Entity: domain.EntityUnit, Field: "rent_amount", Reason: "must be non-negative"}
	}
	for _, existing := range tx.state.units {
		if existing.PropertyID == u.PropertyID && existing.UnitNumber == u.UnitNumber {
			return Unit{}, domain.DuplicateKey{Entity: domain.EntityUnit, Field: "unit_number", Value: u.UnitNumber}
		}
	}
	status, err := defaultStatus(domain.EntityUnit, string(u.Status))
	if err != nil {
		return Unit{}, err
	}
	u.Status = domain.UnitStatus(status)
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.units[u.ID] = cloneUnit(u)
	tx.recordChange(Change{Entity: domain.EntityUnit, Action: domain.ActionCreate, After: cloneUnit(u)})
	return cloneUnit(u), nil
}

// UpdateUnit mutates an existing unit. PropertyID is an identity reference and
// is restored after the mutator runs.
func (tx *transaction) UpdateUnit(id string, mutator func(*Unit) error) (Unit, error) {
	current, ok := tx.state.units[id]
	if !ok {
		return Unit{}, domain.NotFound{Entity: domain.EntityUnit, ID: id}
	}
	before := cloneUnit(current)
	if err := mutator(&current); err != nil {
		return Unit{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.PropertyID = before.PropertyID
	for uid, existing := range tx.state.units {
		if uid != id && existing.PropertyID == current.PropertyID && existing.UnitNumber == current.UnitNumber {
			return Unit{}, domain.DuplicateKey{Entity: domain.EntityUnit, Field: "unit_number", Value: current.UnitNumber}
		}
	}
	current.UpdatedAt = tx.now
	tx.state.units[id] = cloneUnit(current)
	tx.recordChange(Change{Entity: domain.EntityUnit, Action: domain.ActionUpdate, Before: before, After: cloneUnit(current)})
	return cloneUnit(current), nil
}

// CreateApplication stores a new rental application.
func (tx *transaction) CreateApplication(a Application) (Application, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	if _, exists := tx.state.applications[a.ID]; exists {
		return Application{}, domain.DuplicateKey{Entity: domain.EntityApplication, Field: "id", Value: a.ID}
	}
	if a.MonthlyIncome < 0 {
		return Application{}, domain.ValidationError{Entity: domain.EntityApplication, Field: "monthly_income", Reason: "must be non-negative"}
	}
	status, err := defaultStatus(domain.EntityApplication, string(a.Status))
	if err != nil {
		return Application{}, err
	}
	a.Status = domain.ApplicationStatus(status)
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.applications[a.ID] = cloneApplication(a)
	tx.recordChange(Change{Entity: domain.EntityApplication, Action: domain.ActionCreate, After: cloneApplication(a)})
	return cloneApplication(a), nil
}

// UpdateApplication mutates an application. UnitID and TenantID are identity
// references and are restored after the mutator runs.
func (tx *transaction) UpdateApplication(id string, mutator func(*Application) error) (Application, error) {
	current, ok := tx.state.applications[id]
	if !ok {
		return Application{}, domain.NotFound{Entity: domain.EntityApplication, ID: id}
	}
	before := cloneApplication(current)
	if err := mutator(&current); err != nil {
		return Application{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UnitID = before.UnitID
	current.TenantID = before.TenantID
	current.UpdatedAt = tx.now
	tx.state.applications[id] = cloneApplication(current)
	tx.recordChange(Change{Entity: domain.EntityApplication, Action: domain.ActionUpdate, Before: before, After: cloneApplication(current)})
	return cloneApplication(current), nil
}

// CreateLease stores a new lease agreement.
func (tx *transaction) CreateLease(l Lease) (Lease, error) {
	if l.ID == "" {
		l.ID = newID()
	}
	if _, exists := tx.state.leases[l.ID]; exists {
		return Lease{}, domain.DuplicateKey{Entity: domain.EntityLease, Field: "id", Value: l.ID}
	}
	if !l.StartDate.Before(l.EndDate) {
		return Lease{}, domain.ValidationError{Entity: domain.EntityLease, Field: "start_date", Reason: "must precede end_date"}
	}
	if l.RentAmount < 0 || l.DepositAmount < 0 {
		return Lease{}, domain.ValidationError{Entity: domain.EntityLease, Field: "rent_amount", Reason: "must be non-negative"}
	}
	status, err := defaultStatus(domain.EntityLease, string(l.Status))
	if err != nil {
		return Lease{}, err
	}
	l.Status = domain.LeaseStatus(status)
	l.CreatedAt = tx.now
	l.UpdatedAt = tx.now
	tx.state.leases[l.ID] = cloneLease(l)
	tx.recordChange(Change{Entity: domain.EntityLease, Action: domain.ActionCreate, After: cloneLease(l)})
	return cloneLease(l), nil
}

// UpdateLease mutates a lease. UnitID and TenantID are identity references
// and are restored after the mutator runs.
func (tx *transaction) UpdateLease(id string, mutator func(*Lease) error) (Lease, error) {
	current, ok := tx.state.leases[id]
	if !ok {
		return Lease{}, domain.NotFound{Entity: domain.EntityLease, ID: id}
	}
	before := cloneLease(current)
	if err := mutator(&current); err != nil {
		return Lease{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UnitID = before.UnitID
	current.TenantID = before.TenantID
	if !current.StartDate.Before(current.EndDate) {
		return Lease{}, domain.ValidationError{Entity: domain.EntityLease, Field: "start_date", Reason: "must precede end_date"}
	}
	current.UpdatedAt = tx.now
	tx.state.leases[id] = cloneLease(current)
	tx.recordChange(Change{Entity: domain.EntityLease, Action: domain.ActionUpdate, Before: before, After: cloneLease(current)})
	return cloneLease(current), nil
}

// CreatePayment stores a new payment record.
func (tx *transaction) CreatePayment(p Payment) (Payment, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if _, exists := tx.state.payments[p.ID]; exists {
		return Payment{}, domain.DuplicateKey{Entity: domain.EntityPayment, Field: "id", Value: p.ID}
	}
	if p.Amount < 0 {
		return Payment{}, domain.ValidationError{Entity: domain.EntityPayment, Field: "amount", Reason: "must be non-negative"}
	}
	status, err := defaultStatus(domain.EntityPayment, string(p.Status))
	if err != nil {
		return Payment{}, err
	}
	p.Status = domain.PaymentStatus(status)
	if err := validatePaidDate(p); err != nil {
		return Payment{}, err
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.payments[p.ID] = clonePayment(p)
	tx.recordChange(Change{Entity: domain.EntityPayment, Action: domain.ActionCreate, After: clonePayment(p)})
	return clonePayment(p), nil
}

// UpdatePayment mutates a payment. LeaseID and TenantID are identity
// references and are restored after the mutator runs.
func (tx *transaction) UpdatePayment(id string, mutator func(*Payment) error) (Payment, error) {
	current, ok := tx.state.payments[id]
	if !ok {
		return Payment{}, domain.NotFound{Entity: domain.EntityPayment, ID: id}
	}
	before := clonePayment(current)
	if err := mutator(&current); err != nil {
		return Payment{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.LeaseID = before.LeaseID
	current.TenantID = before.TenantID
	if current.Amount < 0 {
		return Payment{}, domain.ValidationError{Entity: domain.EntityPayment, Field: "amount", Reason: "must be non-negative"}
	}
	if err := validatePaidDate(current); err != nil {
		return Payment{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.payments[id] = clonePayment(current)
	tx.recordChange(Change{Entity: domain.EntityPayment, Action: domain.ActionUpdate, Before: before, After: clonePayment(current)})
	return clonePayment(current), nil
}

// CreateMaintenanceRequest stores a new maintenance ticket.
func (tx *transaction) CreateMaintenanceRequest(m MaintenanceRequest) (MaintenanceRequest, error) {
	if m.ID == "" {
		m.ID = newID()
	}
	if _, exists := tx.state.maintenance[m.ID]; exists {
		return MaintenanceRequest{}, domain.DuplicateKey{Entity: domain.EntityMaintenanceRequest, Field: "id", Value: m.ID}
	}
	if m.Title == "" {
		return MaintenanceRequest{}, domain.ValidationError{Entity: domain.EntityMaintenanceRequest, Field: "title", Reason: "required"}
	}
	status, err := defaultStatus(domain.EntityMaintenanceRequest, string(m.Status))
	if err != nil {
		return MaintenanceRequest{}, err
	}
	m.Status = domain.MaintenanceStatus(status)
	m.CreatedAt = tx.now
	m.UpdatedAt = tx.now
	tx.state.maintenance[m.ID] = cloneMaintenance(m)
	tx.recordChange(Change{Entity: domain.EntityMaintenanceRequest, Action: domain.ActionCreate, After: cloneMaintenance(m)})
	return cloneMaintenance(m), nil
}

// UpdateMaintenanceRequest mutates a ticket. UnitID and TenantID are identity
// references and are restored after the mutator runs.
func (tx *transaction) UpdateMaintenanceRequest(id string, mutator func(*MaintenanceRequest) error) (MaintenanceRequest, error) {
	current, ok := tx.state.maintenance[id]
	if !ok {
		return MaintenanceRequest{}, domain.NotFound{Entity: domain.EntityMaintenanceRequest, ID: id}
	}
	before := cloneMaintenance(current)
	if err := mutator(&current); err != nil {
		return MaintenanceRequest{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UnitID = before.UnitID
	current.TenantID = before.TenantID
	current.UpdatedAt = tx.now
	tx.state.maintenance[id] = cloneMaintenance(current)
	tx.recordChange(Change{Entity: domain.EntityMaintenanceRequest, Action: domain.ActionUpdate, Before: before, After: cloneMaintenance(current)})
	return cloneMaintenance(current), nil
}

// CreateMessage stores a message between two distinct users.
func (tx *transaction) CreateMessage(m Message) (Message, error) {
	if m.ID == "" {
		m.ID = newID()
	}
	if _, exists := tx.state.messages[m.ID]; exists {
		return Message{}, domain.DuplicateKey{Entity: domain.EntityMessage, Field: "id", Value: m.ID}
	}
	if m.SenderID == m.ReceiverID {
		return Message{}, domain.ValidationError{Entity: domain.EntityMessage, Field: "receiver_id", Reason: "sender and receiver must differ"}
	}
	if m.SentAt.IsZero() {
		m.SentAt = tx.now
	}
	m.CreatedAt = tx.now
	m.UpdatedAt = tx.now
	tx.state.messages[m.ID] = cloneMessage(m)
	tx.recordChange(Change{Entity: domain.EntityMessage, Action: domain.ActionCreate, After: cloneMessage(m)})
	return cloneMessage(m), nil
}

// UpdateMessage mutates a message. Sender, receiver, and sent time are
// immutable and restored after the mutator runs.
func (tx *transaction) UpdateMessage(id string, mutator func(*Message) error) (Message, error) {
	current, ok := tx.state.messages[id]
	if !ok {
		return Message{}, domain.NotFound{Entity: domain.EntityMessage, ID: id}
	}
	before := cloneMessage(current)
	if err := mutator(&current); err != nil {
		return Message{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.SenderID = before.SenderID
	current.ReceiverID = before.ReceiverID
	current.SentAt = before.SentAt
	current.UpdatedAt = tx.now
	tx.state.messages[id] = cloneMessage(current)
	tx.recordChange(Change{Entity: domain.EntityMessage, Action: domain.ActionUpdate, Before: before, After: cloneMessage(current)})
	return cloneMessage(current), nil
}
