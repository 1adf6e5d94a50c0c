package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"rentcore/internal/infra/persistence/memory"
	"rentcore/pkg/domain"
)

// Service exposes higher-level transactional operations for the rental schema.
// Every mutation runs through the store's transaction boundary, so the
// occupancy maintainer and registered rules apply uniformly.
type Service struct {
	store   PersistentStore
	logger  *zap.Logger
	metrics *Metrics
	nowFn   func() time.Time
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger attaches a structured logger to the service.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder to the service.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

// WithNowFunc overrides the service clock, for tests.
func WithNowFunc(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.nowFn = fn
		}
	}
}

// DefaultEngine returns a rules engine with the standard rental rules
// registered: status transitions, reference integrity, and occupancy.
func DefaultEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewStatusTransitionRule())
	engine.Register(NewReferenceIntegrityRule())
	engine.Register(NewOccupancyRule())
	return engine
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: zap.NewNop(),
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over an in-memory store wired with the
// default engine and occupancy maintainer.
func NewInMemoryService(opts ...Option) *Service {
	store := memory.NewStore(DefaultEngine(), NewOccupancyMaintainer())
	return NewService(store, opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// run executes fn inside a store transaction, recording outcome logs and
// metrics per operation.
func (s *Service) run(ctx context.Context, op string, fn func(Transaction) error) (Result, error) {
	start := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	duration := time.Since(start)
	if s.metrics != nil {
		s.metrics.observeTransaction(op, duration, err)
	}
	if err != nil {
		s.logger.Warn("transaction rejected",
			zap.String("operation", op),
			zap.Duration("duration", duration),
			zap.Error(err))
		return res, err
	}
	s.logger.Debug("transaction committed",
		zap.String("operation", op),
		zap.Duration("duration", duration),
		zap.Int("violations", len(res.Violations)))
	if s.metrics != nil {
		s.metrics.setOccupancy(s.store.ListProperties())
	}
	return res, nil
}

func requireUser(view TransactionView, field, id string, role domain.UserRole) (User, error) {
	user, ok := view.FindUser(id)
	if !ok {
		return User{}, domain.DanglingReference{Field: field, TargetKind: domain.EntityUser, TargetID: id}
	}
	if role != "" && user.Role != role {
		return User{}, domain.KindMismatch{Field: field, TargetID: id, Want: string(role), Got: string(user.Role)}
	}
	return user, nil
}

func requireProperty(view TransactionView, field, id string) (Property, error) {
	property, ok := view.FindProperty(id)
	if !ok {
		return Property{}, domain.DanglingReference{Field: field, TargetKind: domain.EntityProperty, TargetID: id}
	}
	return property, nil
}

func requireUnit(view TransactionView, field, id string) (Unit, error) {
	unit, ok := view.FindUnit(id)
	if !ok {
		return Unit{}, domain.DanglingReference{Field: field, TargetKind: domain.EntityUnit, TargetID: id}
	}
	return unit, nil
}

func requireLease(view TransactionView, field, id string) (Lease, error) {
	lease, ok := view.FindLease(id)
	if !ok {
		return Lease{}, domain.DanglingReference{Field: field, TargetKind: domain.EntityLease, TargetID: id}
	}
	return lease, nil
}

func hasActiveLease(view TransactionView, unitID string, excludeLeaseID string) bool {
	for _, lease := range view.ListLeases() {
		if lease.UnitID == unitID && lease.Status == domain.LeaseStatusActive && lease.ID != excludeLeaseID {
			return true
		}
	}
	return false
}

// CreateUser registers a landlord or tenant account.
func (s *Service) CreateUser(ctx context.Context, user User) (User, Result, error) {
	var created User
	res, err := s.run(ctx, "create_user", func(tx Transaction) error {
		var err error
		created, err = tx.CreateUser(user)
		return err
	})
	return created, res, err
}

// UpdateUser mutates a user using the provided mutator.
func (s *Service) UpdateUser(ctx context.Context, id string, mutator func(*User) error) (User, Result, error) {
	var updated User
	res, err := s.run(ctx, "update_user", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateUser(id, mutator)
		return err
	})
	return updated, res, err
}

// DeactivateUser retires an account. Records are never hard-deleted.
func (s *Service) DeactivateUser(ctx context.Context, id string) (User, Result, error) {
	var updated User
	res, err := s.run(ctx, "deactivate_user", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateUser(id, func(u *User) error {
			u.Status = domain.UserStatusInactive
			return nil
		})
		return err
	})
	return updated, res, err
}

// CreateProperty persists a new property after resolving its landlord.
func (s *Service) CreateProperty(ctx context.Context, property Property) (Property, Result, error) {
	var created Property
	res, err := s.run(ctx, "create_property", func(tx Transaction) error {
		if _, err := requireUser(tx.Snapshot(), "landlord_id", property.LandlordID, domain.RoleLandlord); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateProperty(property)
		return err
	})
	return created, res, err
}

// UpdateProperty mutates a property using the provided mutator.
func (s *Service) UpdateProperty(ctx context.Context, id string, mutator func(*Property) error) (Property, Result, error) {
	var updated Property
	res, err := s.run(ctx, "update_property", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateProperty(id, mutator)
		return err
	})
	return updated, res, err
}

// ArchiveProperty retires a property. Blocked while any of its units still
// carries an active lease.
func (s *Service) ArchiveProperty(ctx context.Context, id string) (Property, Result, error) {
	var updated Property
	res, err := s.run(ctx, "archive_property", func(tx Transaction) error {
		view := tx.Snapshot()
		for _, unit := range view.ListUnits() {
			if unit.PropertyID == id && hasActiveLease(view, unit.ID, "") {
				return domain.ValidationError{Entity: domain.EntityProperty, Field: "status", Reason: "property has units with active leases"}
			}
		}
		var err error
		updated, err = tx.UpdateProperty(id, func(p *Property) error {
			p.Status = domain.PropertyStatusInactive
			return nil
		})
		return err
	})
	return updated, res, err
}

// CreateUnit persists a new unit after resolving its property.
func (s *Service) CreateUnit(ctx context.Context, unit Unit) (Unit, Result, error) {
	var created Unit
	res, err := s.run(ctx, "create_unit", func(tx Transaction) error {
		if _, err := requireProperty(tx.Snapshot(), "property_id", unit.PropertyID); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateUnit(unit)
		return err
	})
	return created, res, err
}

// UpdateUnit mutates a unit using the provided mutator.
func (s *Service) UpdateUnit(ctx context.Context, id string, mutator func(*Unit) error) (Unit, Result, error) {
	var updated Unit
	res, err := s.run(ctx, "update_unit", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateUnit(id, mutator)
		return err
	})
	return updated, res, err
}

// TransitionUnit moves a unit through its status machine. Occupied is driven
// by lease state: a unit cannot be marked occupied without an active lease,
// cannot be freed while one exists, and cannot enter maintenance while leased.
func (s *Service) TransitionUnit(ctx context.Context, id string, to domain.UnitStatus) (Unit, Result, error) {
	var updated Unit
	res, err := s.run(ctx, "transition_unit", func(tx Transaction) error {
		view := tx.Snapshot()
		unit, ok := view.FindUnit(id)
		if !ok {
			return domain.NotFound{Entity: domain.EntityUnit, ID: id}
		}
		machine, _ := domain.MachineFor(domain.EntityUnit)
		if !machine.CanTransition(string(unit.Status), string(to)) {
			return domain.InvalidTransition{Entity: domain.EntityUnit, ID: id, From: string(unit.Status), To: string(to)}
		}
		leased := hasActiveLease(view, id, "")
		if to == domain.UnitStatusOccupied && !leased {
			return domain.InvalidTransition{Entity: domain.EntityUnit, ID: id, From: string(unit.Status), To: string(to)}
		}
		if to != domain.UnitStatusOccupied && leased {
			return domain.InvalidTransition{Entity: domain.EntityUnit, ID: id, From: string(unit.Status), To: string(to)}
		}
		var err error
		updated, err = tx.UpdateUnit(id, func(u *Unit) error {
			u.Status = to
			return nil
		})
		return err
	})
	return updated, res, err
}
