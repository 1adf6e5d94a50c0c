package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"rentcore/pkg/domain"
)

func testClock() func() time.Time {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return base }
}

func TestStoreCRUDAndValidation(t *testing.T) {
	store := NewStore(nil)
	store.SetNowFunc(testClock())
	ctx := context.Background()

	var landlordID, tenantID, propertyID, unitID, leaseID string

	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		landlord, err := tx.CreateUser(User{Email: "owner@example.com", FirstName: "Asha", LastName: "Odhiambo", Role: domain.RoleLandlord})
		if err != nil {
			return err
		}
		landlordID = landlord.ID
		if landlord.Status != domain.UserStatusActive {
			return fmt.Errorf("expected default active status, got %s", landlord.Status)
		}

		if _, err := tx.CreateUser(User{Email: "OWNER@example.com", Role: domain.RoleTenant}); err == nil {
			return fmt.Errorf("expected duplicate email error")
		} else if !errors.As(err, &domain.DuplicateKey{}) {
			return fmt.Errorf("expected DuplicateKey, got %T", err)
		}

		tenant, err := tx.CreateUser(User{Email: "tenant@example.com", FirstName: "Brian", LastName: "Mwangi", Role: domain.RoleTenant})
		if err != nil {
			return err
		}
		tenantID = tenant.ID

		property, err := tx.CreateProperty(Property{Name: "Ngong Road Flats", City: "Nairobi", County: "Nairobi", LandlordID: landlordID, TotalUnits: 4, OccupiedUnits: 3})
		if err != nil {
			return err
		}
		propertyID = property.ID
		if property.OccupiedUnits != 0 {
			return fmt.Errorf("occupied units must start at zero, got %d", property.OccupiedUnits)
		}

		unit, err := tx.CreateUnit(Unit{PropertyID: propertyID, UnitNumber: "D-1", Type: domain.UnitTypeOneBR, RentAmount: 20000})
		if err != nil {
			return err
		}
		unitID = unit.ID
		if unit.Status != domain.UnitStatusAvailable {
			return fmt.Errorf("expected default available status, got %s", unit.Status)
		}

		if _, err := tx.CreateUnit(Unit{PropertyID: propertyID, UnitNumber: "D-1"}); err == nil {
			return fmt.Errorf("expected unit number collision error")
		}

		lease, err := tx.CreateLease(Lease{
			UnitID:    unitID,
			TenantID:  tenantID,
			StartDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			return err
		}
		leaseID = lease.ID

		if _, err := tx.CreateLease(Lease{UnitID: unitID, TenantID: tenantID, StartDate: lease.EndDate, EndDate: lease.StartDate}); err == nil {
			return fmt.Errorf("expected start/end validation error")
		}
		if _, err := tx.CreatePayment(Payment{LeaseID: leaseID, TenantID: tenantID, Amount: -5}); err == nil {
			return fmt.Errorf("expected negative amount validation error")
		}
		if _, err := tx.CreateMessage(Message{SenderID: tenantID, ReceiverID: tenantID, Content: "self"}); err == nil {
			return fmt.Errorf("expected self-message validation error")
		}
		return nil
	}); err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	got, ok := store.GetLease(leaseID)
	if !ok {
		t.Fatalf("lease %s not found after commit", leaseID)
	}
	if got.Status != domain.LeaseStatusPending {
		t.Fatalf("expected pending lease, got %s", got.Status)
	}
	if len(store.ListUnits()) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(store.ListUnits()))
	}
}

func TestStoreUpdateRestoresIdentityFields(t *testing.T) {
	store := NewStore(nil)
	store.SetNowFunc(testClock())
	ctx := context.Background()

	var propertyID, otherPropertyID, unitID string
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		landlord, err := tx.CreateUser(User{Email: "l@example.com", Role: domain.RoleLandlord})
		if err != nil {
			return err
		}
		p1, err := tx.CreateProperty(Property{Name: "One", LandlordID: landlord.ID})
		if err != nil {
			return err
		}
		propertyID = p1.ID
		p2, err := tx.CreateProperty(Property{Name: "Two", LandlordID: landlord.ID})
		if err != nil {
			return err
		}
		otherPropertyID = p2.ID
		unit, err := tx.CreateUnit(Unit{PropertyID: propertyID, UnitNumber: "A-1"})
		if err != nil {
			return err
		}
		unitID = unit.ID
		return nil
	}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		updated, err := tx.UpdateUnit(unitID, func(u *Unit) error {
			u.ID = "forged"
			u.PropertyID = otherPropertyID
			u.UnitNumber = "A-2"
			return nil
		})
		if err != nil {
			return err
		}
		if updated.ID != unitID {
			return fmt.Errorf("id must be immutable, got %s", updated.ID)
		}
		if updated.PropertyID != propertyID {
			return fmt.Errorf("property reference must be immutable, got %s", updated.PropertyID)
		}
		if updated.UnitNumber != "A-2" {
			return fmt.Errorf("unit number should be editable, got %s", updated.UnitNumber)
		}
		return nil
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdateUnit("missing", func(u *Unit) error { return nil })
		return err
	}); err == nil {
		t.Fatal("expected not found error")
	} else if !errors.As(err, &domain.NotFound{}) {
		t.Fatalf("expected NotFound, got %T", err)
	}
}

func TestStoreCreateStatusMustBeInitial(t *testing.T) {
	store := NewStore(nil)
	store.SetNowFunc(testClock())
	ctx := context.Background()

	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		landlord, err := tx.CreateUser(User{Email: "init-owner@example.com", Role: domain.RoleLandlord})
		if err != nil {
			return err
		}
		tenant, err := tx.CreateUser(User{Email: "init-tenant@example.com", Role: domain.RoleTenant})
		if err != nil {
			return err
		}
		property, err := tx.CreateProperty(Property{Name: "Umoja Gardens", LandlordID: landlord.ID})
		if err != nil {
			return err
		}

		if _, err := tx.CreateUnit(Unit{PropertyID: property.ID, UnitNumber: "U-1", Status: domain.UnitStatusOccupied}); err == nil {
			return fmt.Errorf("expected occupied-at-creation unit to be rejected")
		} else if !errors.As(err, &domain.ValidationError{}) {
			return fmt.Errorf("expected ValidationError, got %T", err)
		}
		unit, err := tx.CreateUnit(Unit{PropertyID: property.ID, UnitNumber: "U-1"})
		if err != nil {
			return err
		}

		if _, err := tx.CreateApplication(Application{UnitID: unit.ID, TenantID: tenant.ID, Status: domain.ApplicationStatusApproved}); err == nil {
			return fmt.Errorf("expected approved-at-creation application to be rejected")
		}

		start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0)
		for _, status := range []domain.LeaseStatus{domain.LeaseStatusActive, domain.LeaseStatusEnded} {
			if _, err := tx.CreateLease(Lease{UnitID: unit.ID, TenantID: tenant.ID, StartDate: start, EndDate: end, Status: status}); err == nil {
				return fmt.Errorf("expected %s-at-creation lease to be rejected", status)
			}
		}
		lease, err := tx.CreateLease(Lease{UnitID: unit.ID, TenantID: tenant.ID, StartDate: start, EndDate: end})
		if err != nil {
			return err
		}

		if _, err := tx.CreatePayment(Payment{LeaseID: lease.ID, TenantID: tenant.ID, Amount: 100, Status: domain.PaymentStatusPaid}); err == nil {
			return fmt.Errorf("expected paid-at-creation payment to be rejected")
		}
		return nil
	}); err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestStorePaymentPaidDateMatchesStatus(t *testing.T) {
	store := NewStore(nil)
	store.SetNowFunc(testClock())
	ctx := context.Background()

	paidAt := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	var paymentID string
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		landlord, err := tx.CreateUser(User{Email: "due-owner@example.com", Role: domain.RoleLandlord})
		if err != nil {
			return err
		}
		tenant, err := tx.CreateUser(User{Email: "due-tenant@example.com", Role: domain.RoleTenant})
		if err != nil {
			return err
		}
		property, err := tx.CreateProperty(Property{Name: "Kasarani View", LandlordID: landlord.ID})
		if err != nil {
			return err
		}
		unit, err := tx.CreateUnit(Unit{PropertyID: property.ID, UnitNumber: "K-1"})
		if err != nil {
			return err
		}
		lease, err := tx.CreateLease(Lease{
			UnitID:    unit.ID,
			TenantID:  tenant.ID,
			StartDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			return err
		}

		if _, err := tx.CreatePayment(Payment{LeaseID: lease.ID, TenantID: tenant.ID, Amount: 100, PaidDate: &paidAt}); err == nil {
			return fmt.Errorf("expected paid date on a pending payment to be rejected")
		}
		payment, err := tx.CreatePayment(Payment{LeaseID: lease.ID, TenantID: tenant.ID, Amount: 100})
		if err != nil {
			return err
		}
		paymentID = payment.ID

		if _, err := tx.UpdatePayment(paymentID, func(p *Payment) error {
			p.Status = domain.PaymentStatusPaid
			return nil
		}); err == nil {
			return fmt.Errorf("expected paid without a paid date to be rejected")
		} else if !errors.As(err, &domain.ValidationError{}) {
			return fmt.Errorf("expected ValidationError, got %T", err)
		}
		if _, err := tx.UpdatePayment(paymentID, func(p *Payment) error {
			p.PaidDate = &paidAt
			return nil
		}); err == nil {
			return fmt.Errorf("expected paid date without paid status to be rejected")
		}

		updated, err := tx.UpdatePayment(paymentID, func(p *Payment) error {
			p.Status = domain.PaymentStatusPaid
			p.PaidDate = &paidAt
			return nil
		})
		if err != nil {
			return err
		}
		if updated.Status != domain.PaymentStatusPaid || updated.PaidDate == nil {
			return fmt.Errorf("expected settled payment, got %+v", updated)
		}
		return nil
	}); err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	got, ok := store.GetPayment(paymentID)
	if !ok {
		t.Fatalf("payment %s not found after commit", paymentID)
	}
	if got.Status != domain.PaymentStatusPaid || got.PaidDate == nil || !got.PaidDate.Equal(paidAt) {
		t.Fatalf("unexpected committed payment: %+v", got)
	}
}

type blockEverythingRule struct{}

func (blockEverythingRule) Name() string { return "block_everything" }

func (blockEverythingRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for range changes {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "block_everything",
			Severity: domain.SeverityBlock,
			Message:  "all mutations rejected",
		})
	}
	return res, nil
}

func TestStoreBlockingRuleDiscardsTransaction(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockEverythingRule{})
	store := NewStore(engine)
	ctx := context.Background()

	res, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.CreateUser(User{Email: "blocked@example.com", Role: domain.RoleTenant})
		return err
	})
	if err == nil {
		t.Fatal("expected blocking rule to reject commit")
	}
	var ruleErr domain.RuleViolationError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected RuleViolationError, got %T", err)
	}
	if !res.HasBlocking() {
		t.Fatal("expected blocking violations in result")
	}
	if len(store.ListUsers()) != 0 {
		t.Fatalf("blocked transaction must not commit, found %d users", len(store.ListUsers()))
	}
}

type renameMaintainer struct{}

func (renameMaintainer) Name() string { return "rename" }

func (renameMaintainer) Maintain(tx domain.Transaction, changes []domain.Change) error {
	for _, change := range changes {
		if change.Entity != domain.EntityProperty || change.Action != domain.ActionCreate {
			continue
		}
		property, ok := change.After.(domain.Property)
		if !ok {
			continue
		}
		if _, err := tx.UpdateProperty(property.ID, func(p *domain.Property) error {
			p.Name = p.Name + " (verified)"
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func TestStoreMaintainerRunsBeforeCommit(t *testing.T) {
	store := NewStore(nil, renameMaintainer{})
	ctx := context.Background()

	var propertyID string
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		landlord, err := tx.CreateUser(User{Email: "m@example.com", Role: domain.RoleLandlord})
		if err != nil {
			return err
		}
		property, err := tx.CreateProperty(Property{Name: "Riverside Court", LandlordID: landlord.ID})
		if err != nil {
			return err
		}
		propertyID = property.ID
		return nil
	}); err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	got, ok := store.GetProperty(propertyID)
	if !ok {
		t.Fatalf("property %s not found", propertyID)
	}
	if got.Name != "Riverside Court (verified)" {
		t.Fatalf("maintainer did not run, name %q", got.Name)
	}
}

func TestStoreSnapshotRoundTrip(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		landlord, err := tx.CreateUser(User{Email: "snap@example.com", Role: domain.RoleLandlord})
		if err != nil {
			return err
		}
		property, err := tx.CreateProperty(Property{Name: "Snapshot Plaza", LandlordID: landlord.ID, Amenities: []string{"Parking"}})
		if err != nil {
			return err
		}
		_, err = tx.CreateUnit(Unit{PropertyID: property.ID, UnitNumber: "S-1"})
		return err
	}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	snapshot := store.ExportState()
	restored := NewStore(nil)
	restored.ImportState(snapshot)

	if len(restored.ListUsers()) != 1 || len(restored.ListProperties()) != 1 || len(restored.ListUnits()) != 1 {
		t.Fatalf("unexpected restored counts: %d users, %d properties, %d units",
			len(restored.ListUsers()), len(restored.ListProperties()), len(restored.ListUnits()))
	}

	// Mutating the snapshot must not leak into restored state.
	for id, p := range snapshot.Properties {
		p.Amenities[0] = "mutated"
		snapshot.Properties[id] = p
	}
	if restored.ListProperties()[0].Amenities[0] != "Parking" {
		t.Fatal("snapshot import must deep-copy slices")
	}
}

func TestStoreViewIsReadOnlySnapshot(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.CreateUser(User{Email: "view@example.com", Role: domain.RoleTenant})
		return err
	}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := store.View(ctx, func(view TransactionView) error {
		users := view.ListUsers()
		if len(users) != 1 {
			return fmt.Errorf("expected 1 user, got %d", len(users))
		}
		if _, ok := view.FindUser(users[0].ID); !ok {
			return fmt.Errorf("find by id failed")
		}
		return nil
	}); err != nil {
		t.Fatalf("view failed: %v", err)
	}
}
