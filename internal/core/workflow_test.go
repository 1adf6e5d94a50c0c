package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentcore/pkg/domain"
)

func TestOnboardTenantWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result := f.svc.OnboardTenant(ctx, OnboardTenantInput{
		Tenant: User{Email: "new.tenant@example.com", FirstName: "Amina", LastName: "Hassan"},
		UnitID: f.unitID,
		Application: Application{
			EmploymentStatus: "Employed",
			MonthlyIncome:    95000,
			MoveInDate:       time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		},
	})
	if !result.Success {
		t.Fatalf("workflow failed at %s: %v", result.FailedStep, result.Err)
	}
	if len(result.CompletedSteps) != 2 {
		t.Fatalf("expected 2 completed steps, got %v", result.CompletedSteps)
	}
	if len(result.Created[domain.EntityUser]) != 1 || len(result.Created[domain.EntityApplication]) != 1 {
		t.Fatalf("unexpected created entities: %+v", result.Created)
	}

	application, ok := f.svc.Store().GetApplication(result.Created[domain.EntityApplication][0])
	if !ok {
		t.Fatal("application not committed")
	}
	if application.UnitID != f.unitID || application.Status != domain.ApplicationStatusPending {
		t.Fatalf("unexpected application: %+v", application)
	}
}

func TestSignLeaseWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	application, _, err := f.svc.SubmitApplication(ctx, Application{
		UnitID:        f.unitID,
		TenantID:      f.tenantID,
		MonthlyIncome: 70000,
		MoveInDate:    time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("submit application: %v", err)
	}

	result := f.svc.SignLease(ctx, SignLeaseInput{
		ApplicationID: application.ID,
		Lease: Lease{
			StartDate:  time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			RentAmount: 18000,
		},
	})
	if !result.Success {
		t.Fatalf("workflow failed at %s: %v", result.FailedStep, result.Err)
	}

	unit, _ := f.svc.Store().GetUnit(f.unitID)
	if unit.Status != domain.UnitStatusOccupied {
		t.Fatalf("expected occupied unit, got %s", unit.Status)
	}
	property, _ := f.svc.Store().GetProperty(f.propertyID)
	if property.OccupiedUnits != 1 {
		t.Fatalf("expected 1 occupied unit, got %d", property.OccupiedUnits)
	}
	lease, _ := f.svc.Store().GetLease(result.Created[domain.EntityLease][0])
	if lease.Status != domain.LeaseStatusActive || lease.TenantID != f.tenantID {
		t.Fatalf("unexpected lease: %+v", lease)
	}
}

// A workflow halts at the first failing step but keeps the work of every
// completed step, because each step commits its own transaction.
func TestWorkflowHaltsWithoutRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result := f.svc.RunWorkflow(ctx, Workflow{
		Name: "expand_property",
		Steps: []WorkflowStep{
			{
				Name: "add_unit",
				Run: func(ctx context.Context, state *WorkflowState) error {
					created, _, err := state.Service().CreateUnit(ctx, Unit{PropertyID: f.propertyID, UnitNumber: "A-201", RentAmount: 22000})
					if err != nil {
						return err
					}
					state.Record(domain.EntityUnit, created.ID)
					return nil
				},
			},
			{
				Name: "add_duplicate_unit",
				Run: func(ctx context.Context, state *WorkflowState) error {
					_, _, err := state.Service().CreateUnit(ctx, Unit{PropertyID: f.propertyID, UnitNumber: "A-201"})
					return err
				},
			},
			{
				Name: "never_reached",
				Run: func(context.Context, *WorkflowState) error {
					t.Fatal("step after failure must not run")
					return nil
				},
			},
		},
	})

	if result.Success {
		t.Fatal("expected workflow failure")
	}
	if result.FailedStep != "add_duplicate_unit" {
		t.Fatalf("unexpected failed step %q", result.FailedStep)
	}
	var dup domain.DuplicateKey
	if !errors.As(result.Err, &dup) {
		t.Fatalf("expected DuplicateKey, got %T: %v", result.Err, result.Err)
	}
	if len(result.CompletedSteps) != 1 || result.CompletedSteps[0] != "add_unit" {
		t.Fatalf("unexpected completed steps %v", result.CompletedSteps)
	}

	// The first step's unit stays committed.
	unitID := result.Created[domain.EntityUnit][0]
	if _, ok := f.svc.Store().GetUnit(unitID); !ok {
		t.Fatal("unit from completed step must remain committed")
	}
	if len(f.svc.Store().ListUnits()) != 3 {
		t.Fatalf("expected 3 units, got %d", len(f.svc.Store().ListUnits()))
	}
}

func TestSeedSampleData(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	result := svc.SeedSampleData(ctx)
	if !result.Success {
		t.Fatalf("seed failed at %s: %v", result.FailedStep, result.Err)
	}

	store := svc.Store()
	if got := len(store.ListUsers()); got != 7 {
		t.Fatalf("expected 7 users, got %d", got)
	}
	if got := len(store.ListProperties()); got != 3 {
		t.Fatalf("expected 3 properties, got %d", got)
	}
	if got := len(store.ListUnits()); got != 24 {
		t.Fatalf("expected 24 units, got %d", got)
	}
	if got := len(store.ListApplications()); got != 2 {
		t.Fatalf("expected 2 applications, got %d", got)
	}
	if got := len(store.ListLeases()); got != 2 {
		t.Fatalf("expected 2 leases, got %d", got)
	}
	if got := len(store.ListPayments()); got != 8 {
		t.Fatalf("expected 8 payments, got %d", got)
	}
	if got := len(store.ListMaintenanceRequests()); got != 3 {
		t.Fatalf("expected 3 maintenance requests, got %d", got)
	}
	if got := len(store.ListMessages()); got != 4 {
		t.Fatalf("expected 4 messages, got %d", got)
	}

	for _, lease := range store.ListLeases() {
		if lease.Status != domain.LeaseStatusActive {
			t.Fatalf("seeded lease %s should be active, got %s", lease.ID, lease.Status)
		}
	}

	occupiedUnits := 0
	for _, unit := range store.ListUnits() {
		if unit.Status == domain.UnitStatusOccupied {
			occupiedUnits++
		}
	}
	if occupiedUnits != 2 {
		t.Fatalf("expected 2 occupied units, got %d", occupiedUnits)
	}

	occupiedByProperty := 0
	for _, property := range store.ListProperties() {
		occupiedByProperty += property.OccupiedUnits
	}
	if occupiedByProperty != 2 {
		t.Fatalf("expected property occupancy totals to sum to 2, got %d", occupiedByProperty)
	}

	paid, pending := 0, 0
	for _, payment := range store.ListPayments() {
		switch payment.Status {
		case domain.PaymentStatusPaid:
			if payment.PaidDate == nil {
				t.Fatalf("paid payment %s missing paid date", payment.ID)
			}
			paid++
		case domain.PaymentStatusPending:
			pending++
		}
	}
	if paid != 6 || pending != 2 {
		t.Fatalf("expected 6 paid and 2 pending payments, got %d and %d", paid, pending)
	}
}

// Seeding twice fails on duplicate emails but keeps the first run's data.
func TestSeedSampleDataIsNotIdempotent(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	if result := svc.SeedSampleData(ctx); !result.Success {
		t.Fatalf("first seed failed: %v", result.Err)
	}
	result := svc.SeedSampleData(ctx)
	if result.Success {
		t.Fatal("expected second seed to fail")
	}
	if result.FailedStep != "create_landlords" {
		t.Fatalf("expected failure at create_landlords, got %s", result.FailedStep)
	}
	if got := len(svc.Store().ListUsers()); got != 7 {
		t.Fatalf("expected first run's 7 users intact, got %d", got)
	}
}
