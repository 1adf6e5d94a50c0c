// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentcore/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// User aliases domain.User for in-memory persistence operations.
	User = domain.User
	// Property aliases domain.Property.
	Property = domain.Property
	// Unit aliases domain.Unit.
	Unit = domain.Unit
	// Application aliases domain.Application.
	Application = domain.Application
	// Lease aliases domain.Lease.
	Lease = domain.Lease
	// Payment aliases domain.Payment.
	Payment = domain.Payment
	// MaintenanceRequest aliases domain.MaintenanceRequest.
	MaintenanceRequest = domain.MaintenanceRequest
	// Message aliases domain.Message.
	Message = domain.Message
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	users        map[string]User
	properties   map[string]Property
	units        map[string]Unit
	applications map[string]Application
	leases       map[string]Lease
	payments     map[string]Payment
	maintenance  map[string]MaintenanceRequest
	messages     map[string]Message
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Users        map[string]User               `json:"users"`
	Properties   map[string]Property           `json:"properties"`
	Units        map[string]Unit               `json:"units"`
	Applications map[string]Application        `json:"applications"`
	Leases       map[string]Lease              `json:"leases"`
	Payments     map[string]Payment            `json:"payments"`
	Maintenance  map[string]MaintenanceRequest `json:"maintenance"`
	Messages     map[string]Message            `json:"messages"`
}

func newMemoryState() memoryState {
	return memoryState{
		users:        make(map[string]User),
		properties:   make(map[string]Property),
		units:        make(map[string]Unit),
		applications: make(map[string]Application),
		leases:       make(map[string]Lease),
		payments:     make(map[string]Payment),
		maintenance:  make(map[string]MaintenanceRequest),
		messages:     make(map[string]Message),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.users {
		cloned.users[k] = cloneUser(v)
	}
	for k, v := range s.properties {
		cloned.properties[k] = cloneProperty(v)
	}
	for k, v := range s.units {
		cloned.units[k] = cloneUnit(v)
	}
	for k, v := range s.applications {
		cloned.applications[k] = cloneApplication(v)
	}
	for k, v := range s.leases {
		cloned.leases[k] = cloneLease(v)
	}
	for k, v := range s.payments {
		cloned.payments[k] = clonePayment(v)
	}
	for k, v := range s.maintenance {
		cloned.maintenance[k] = cloneMaintenance(v)
	}
	for k, v := range s.messages {
		cloned.messages[k] = cloneMessage(v)
	}
	return cloned
}

func cloneUser(u User) User { return u }

func cloneProperty(p Property) Property {
	cp := p
	cp.Amenities = append([]string(nil), p.Amenities...)
	cp.ImageKeys = append([]string(nil), p.ImageKeys...)
	return cp
}

func cloneUnit(u Unit) Unit {
	cp := u
	cp.Amenities = append([]string(nil), u.Amenities...)
	cp.ImageKeys = append([]string(nil), u.ImageKeys...)
	return cp
}

func cloneApplication(a Application) Application { return a }
func cloneLease(l Lease) Lease                   { return l }

func clonePayment(p Payment) Payment {
	cp := p
	if p.PaidDate != nil {
		paid := *p.PaidDate
		cp.PaidDate = &paid
	}
	return cp
}

func cloneMaintenance(m MaintenanceRequest) MaintenanceRequest {
	cp := m
	cp.ImageKeys = append([]string(nil), m.ImageKeys...)
	return cp
}

func cloneMessage(m Message) Message {
	cp := m
	if m.ReadAt != nil {
		read := *m.ReadAt
		cp.ReadAt = &read
	}
	return cp
}

// Store provides an in-memory transactional store for the rental domain.
// Writers are serialized under a single lock; readers observe committed
// clones only, so a read concurrent with a write sees either the pre- or
// post-state of a record, never a partially applied one.
type Store struct {
	mu          sync.RWMutex
	state       memoryState
	engine      *RulesEngine
	maintainers []domain.Maintainer
	nowFn       func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine
// and derived-state maintainers.
func NewStore(engine *RulesEngine, maintainers ...domain.Maintainer) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:       newMemoryState(),
		engine:      engine,
		maintainers: maintainers,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the transaction clock, for tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		s.nowFn = fn
	}
}

func newID() string { return uuid.NewString() }

// RunInTransaction executes fn within a transactional copy of the store
// state. After fn returns, maintainers recompute derived aggregates and the
// rules engine evaluates the resulting state; blocking violations discard the
// whole mutation set, so no partial write ever commits.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	for _, m := range s.maintainers {
		if err := m.Maintain(tx, tx.changes); err != nil {
			return Result{}, err
		}
	}

	var result Result
	if s.engine != nil {
		view := newTxView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(newTxView(&snapshot))
}

// ExportState returns a deep copy of the committed state for snapshotting.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromState(s.state)
}

// ImportState replaces the committed state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(snapshot)
}

func snapshotFromState(state memoryState) Snapshot {
	snap := Snapshot{
		Users:        make(map[string]User, len(state.users)),
		Properties:   make(map[string]Property, len(state.properties)),
		Units:        make(map[string]Unit, len(state.units)),
		Applications: make(map[string]Application, len(state.applications)),
		Leases:       make(map[string]Lease, len(state.leases)),
		Payments:     make(map[string]Payment, len(state.payments)),
		Maintenance:  make(map[string]MaintenanceRequest, len(state.maintenance)),
		Messages:     make(map[string]Message, len(state.messages)),
	}
	for k, v := range state.users {
		snap.Users[k] = cloneUser(v)
	}
	for k, v := range state.properties {
		snap.Properties[k] = cloneProperty(v)
	}
	for k, v := range state.units {
		snap.Units[k] = cloneUnit(v)
	}
	for k, v := range state.applications {
		snap.Applications[k] = cloneApplication(v)
	}
	for k, v := range state.leases {
		snap.Leases[k] = cloneLease(v)
	}
	for k, v := range state.payments {
		snap.Payments[k] = clonePayment(v)
	}
	for k, v := range state.maintenance {
		snap.Maintenance[k] = cloneMaintenance(v)
	}
	for k, v := range state.messages {
		snap.Messages[k] = cloneMessage(v)
	}
	return snap
}

func stateFromSnapshot(snap Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range snap.Users {
		state.users[k] = cloneUser(v)
	}
	for k, v := range snap.Properties {
		state.properties[k] = cloneProperty(v)
	}
	for k, v := range snap.Units {
		state.units[k] = cloneUnit(v)
	}
	for k, v := range snap.Applications {
		state.applications[k] = cloneApplication(v)
	}
	for k, v := range snap.Leases {
		state.leases[k] = cloneLease(v)
	}
	for k, v := range snap.Payments {
		state.payments[k] = clonePayment(v)
	}
	for k, v := range snap.Maintenance {
		state.maintenance[k] = cloneMaintenance(v)
	}
	for k, v := range snap.Messages {
		state.messages[k] = cloneMessage(v)
	}
	return state
}

// Read helpers ---------------------------------------------------------------

// GetUser retrieves a user by ID from committed state.
func (s *Store) GetUser(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.users[id]
	if !ok {
		return User{}, false
	}
	return cloneUser(u), true
}

// ListUsers returns all users from committed state.
func (s *Store) ListUsers() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.state.users))
	for _, u := range s.state.users {
		out = append(out, cloneUser(u))
	}
	return out
}

// GetProperty retrieves a property by ID.
func (s *Store) GetProperty(id string) (Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.properties[id]
	if !ok {
		return Property{}, false
	}
	return cloneProperty(p), true
}

// ListProperties returns all properties.
func (s *Store) ListProperties() []Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Property, 0, len(s.state.properties))
	for _, p := range s.state.properties {
		out = append(out, cloneProperty(p))
	}
	return out
}

// GetUnit retrieves a unit by ID.
func (s *Store) GetUnit(id string) (Unit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.units[id]
	if !ok {
		return Unit{}, false
	}
	return cloneUnit(u), true
}

// ListUnits returns all units.
func (s *Store) ListUnits() []Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Unit, 0, len(s.state.units))
	for _, u := range s.state.units {
		out = append(out, cloneUnit(u))
	}
	return out
}

// GetApplication retrieves an application by ID.
func (s *Store) GetApplication(id string) (Application, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.applications[id]
	if !ok {
		return Application{}, false
	}
	return cloneApplication(a), true
}

// ListApplications returns all applications.
func (s *Store) ListApplications() []Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Application, 0, len(s.state.applications))
	for _, a := range s.state.applications {
		out = append(out, cloneApplication(a))
	}
	return out
}

// GetLease retrieves a lease by ID.
func (s *Store) GetLease(id string) (Lease, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.state.leases[id]
	if !ok {
		return Lease{}, false
	}
	return cloneLease(l), true
}

// ListLeases returns all leases.
func (s *Store) ListLeases() []Lease {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Lease, 0, len(s.state.leases))
	for _, l := range s.state.leases {
		out = append(out, cloneLease(l))
	}
	return out
}

// GetPayment retrieves a payment by ID.
func (s *Store) GetPayment(id string) (Payment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.payments[id]
	if !ok {
		return Payment{}, false
	}
	return clonePayment(p), true
}

// ListPayments returns all payments.
func (s *Store) ListPayments() []Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Payment, 0, len(s.state.payments))
	for _, p := range s.state.payments {
		out = append(out, clonePayment(p))
	}
	return out
}

// GetMaintenanceRequest retrieves a maintenance request by ID.
func (s *Store) GetMaintenanceRequest(id string) (MaintenanceRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.maintenance[id]
	if !ok {
		return MaintenanceRequest{}, false
	}
	return cloneMaintenance(m), true
}

// ListMaintenanceRequests returns all maintenance requests.
func (s *Store) ListMaintenanceRequests() []MaintenanceRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MaintenanceRequest, 0, len(s.state.maintenance))
	for _, m := range s.state.maintenance {
		out = append(out, cloneMaintenance(m))
	}
	return out
}

// GetMessage retrieves a message by ID.
func (s *Store) GetMessage(id string) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.messages[id]
	if !ok {
		return Message{}, false
	}
	return cloneMessage(m), true
}

// ListMessages returns all messages.
func (s *Store) ListMessages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, 0, len(s.state.messages))
	for _, m := range s.state.messages {
		out = append(out, cloneMessage(m))
	}
	return out
}
