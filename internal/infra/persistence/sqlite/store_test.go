package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"rentcore/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rentcore.db")
	ctx := context.Background()

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	var propertyID, unitID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		landlord, err := tx.CreateUser(domain.User{Email: "owner@example.com", Role: domain.RoleLandlord})
		if err != nil {
			return err
		}
		property, err := tx.CreateProperty(domain.Property{Name: "Persisted Plaza", LandlordID: landlord.ID, TotalUnits: 1, Amenities: []string{"Parking"}})
		if err != nil {
			return err
		}
		propertyID = property.ID
		unit, err := tx.CreateUnit(domain.Unit{PropertyID: propertyID, UnitNumber: "P-1", RentAmount: 20000})
		if err != nil {
			return err
		}
		unitID = unit.ID
		return nil
	}); err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	property, ok := reopened.GetProperty(propertyID)
	if !ok {
		t.Fatalf("property %s not hydrated", propertyID)
	}
	if property.Name != "Persisted Plaza" || len(property.Amenities) != 1 {
		t.Fatalf("unexpected property: %+v", property)
	}
	unit, ok := reopened.GetUnit(unitID)
	if !ok {
		t.Fatalf("unit %s not hydrated", unitID)
	}
	if unit.Status != domain.UnitStatusAvailable || unit.RentAmount != 20000 {
		t.Fatalf("unexpected unit: %+v", unit)
	}
	if len(reopened.ListUsers()) != 1 {
		t.Fatalf("expected 1 user, got %d", len(reopened.ListUsers()))
	}

	// Writes against the reopened handle persist too.
	if _, err := reopened.RunInTransaction(ctx, func(tx domain.Transaction) error {
		tenant, err := tx.CreateUser(domain.User{Email: "tenant@example.com", Role: domain.RoleTenant})
		if err != nil {
			return err
		}
		_, err = tx.CreateLease(domain.Lease{
			UnitID:    unitID,
			TenantID:  tenant.ID,
			StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		})
		return err
	}); err != nil {
		t.Fatalf("second transaction failed: %v", err)
	}
	if len(reopened.ListLeases()) != 1 {
		t.Fatalf("expected 1 lease, got %d", len(reopened.ListLeases()))
	}
}

func TestStoreRejectedTransactionNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rentcore.db")
	ctx := context.Background()

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateUser(domain.User{Email: "a@example.com", Role: domain.RoleTenant}); err != nil {
			return err
		}
		_, err := tx.CreateUser(domain.User{Email: "a@example.com", Role: domain.RoleTenant})
		return err
	}); err == nil {
		t.Fatal("expected duplicate email to reject transaction")
	}

	if len(store.ListUsers()) != 0 {
		t.Fatalf("rejected transaction leaked %d users", len(store.ListUsers()))
	}

	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count state rows: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected transaction wrote %d snapshot rows", count)
	}
}
