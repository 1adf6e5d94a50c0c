package domain

import "testing"

func TestMachineFor(t *testing.T) {
	stateful := []EntityType{EntityUnit, EntityApplication, EntityLease, EntityPayment, EntityMaintenanceRequest}
	for _, entity := range stateful {
		machine, ok := MachineFor(entity)
		if !ok {
			t.Fatalf("expected machine for %s", entity)
		}
		if !machine.IsValidState(machine.Initial) {
			t.Fatalf("%s initial state %q not in valid set", entity, machine.Initial)
		}
	}
	for _, entity := range []EntityType{EntityUser, EntityProperty, EntityMessage} {
		if _, ok := MachineFor(entity); ok {
			t.Fatalf("%s should not have a status machine", entity)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		entity EntityType
		from   string
		to     string
		want   bool
	}{
		{EntityUnit, "available", "occupied", true},
		{EntityUnit, "available", "maintenance", true},
		{EntityUnit, "occupied", "available", true},
		{EntityUnit, "occupied", "maintenance", false},
		{EntityUnit, "maintenance", "available", true},
		{EntityUnit, "maintenance", "occupied", false},

		{EntityApplication, "pending", "approved", true},
		{EntityApplication, "pending", "rejected", true},
		{EntityApplication, "approved", "rejected", false},
		{EntityApplication, "rejected", "pending", false},

		{EntityLease, "pending", "active", true},
		{EntityLease, "pending", "ended", false},
		{EntityLease, "active", "ended", true},
		{EntityLease, "active", "terminated", true},
		{EntityLease, "ended", "active", false},
		{EntityLease, "terminated", "active", false},

		{EntityPayment, "pending", "paid", true},
		{EntityPayment, "pending", "overdue", true},
		{EntityPayment, "overdue", "paid", true},
		{EntityPayment, "paid", "overdue", false},
		{EntityPayment, "paid", "pending", false},

		{EntityMaintenanceRequest, "open", "in_progress", true},
		{EntityMaintenanceRequest, "open", "resolved", false},
		{EntityMaintenanceRequest, "in_progress", "resolved", true},
		{EntityMaintenanceRequest, "resolved", "open", false},
	}
	for _, c := range cases {
		machine, ok := MachineFor(c.entity)
		if !ok {
			t.Fatalf("no machine for %s", c.entity)
		}
		if got := machine.CanTransition(c.from, c.to); got != c.want {
			t.Errorf("%s %s -> %s: got %v, want %v", c.entity, c.from, c.to, got, c.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	cases := []struct {
		entity EntityType
		state  string
		want   bool
	}{
		{EntityUnit, "available", false},
		{EntityUnit, "occupied", false},
		{EntityApplication, "approved", true},
		{EntityApplication, "rejected", true},
		{EntityLease, "ended", true},
		{EntityLease, "terminated", true},
		{EntityLease, "active", false},
		{EntityPayment, "paid", true},
		{EntityPayment, "overdue", false},
		{EntityMaintenanceRequest, "resolved", true},
	}
	for _, c := range cases {
		machine, _ := MachineFor(c.entity)
		if got := machine.IsTerminal(c.state); got != c.want {
			t.Errorf("%s %s terminal: got %v, want %v", c.entity, c.state, got, c.want)
		}
	}
}

func TestIsValidState(t *testing.T) {
	machine, _ := MachineFor(EntityLease)
	for _, state := range []string{"pending", "active", "ended", "terminated"} {
		if !machine.IsValidState(state) {
			t.Errorf("expected %q valid", state)
		}
	}
	for _, state := range []string{"", "paused", "ACTIVE"} {
		if machine.IsValidState(state) {
			t.Errorf("expected %q invalid", state)
		}
	}
}
