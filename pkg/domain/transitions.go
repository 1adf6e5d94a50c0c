package domain

// StatusMachine holds the fixed transition table for one stateful entity kind.
// User, Property, and Message carry simple enumerated flags and have no machine.
type StatusMachine struct {
	Entity  EntityType
	Label   string
	Initial string
	Valid   map[string]struct{}
	Allowed map[string]map[string]struct{}
}

var statusMachines = map[EntityType]StatusMachine{
	EntityUnit: {
		Entity:  EntityUnit,
		Label:   "unit",
		Initial: string(UnitStatusAvailable),
		Valid: toSet(
			string(UnitStatusAvailable),
			string(UnitStatusOccupied),
			string(UnitStatusMaintenance),
		),
		Allowed: map[string]map[string]struct{}{
			string(UnitStatusAvailable):   toSet(string(UnitStatusOccupied), string(UnitStatusMaintenance)),
			string(UnitStatusOccupied):    toSet(string(UnitStatusAvailable)),
			string(UnitStatusMaintenance): toSet(string(UnitStatusAvailable)),
		},
	},
	EntityApplication: {
		Entity:  EntityApplication,
		Label:   "application",
		Initial: string(ApplicationStatusPending),
		Valid: toSet(
			string(ApplicationStatusPending),
			string(ApplicationStatusApproved),
			string(ApplicationStatusRejected),
		),
		Allowed: map[string]map[string]struct{}{
			string(ApplicationStatusPending): toSet(string(ApplicationStatusApproved), string(ApplicationStatusRejected)),
		},
	},
	EntityLease: {
		Entity:  EntityLease,
		Label:   "lease",
		Initial: string(LeaseStatusPending),
		Valid: toSet(
			string(LeaseStatusPending),
			string(LeaseStatusActive),
			string(LeaseStatusEnded),
			string(LeaseStatusTerminated),
		),
		Allowed: map[string]map[string]struct{}{
			string(LeaseStatusPending): toSet(string(LeaseStatusActive)),
			string(LeaseStatusActive):  toSet(string(LeaseStatusEnded), string(LeaseStatusTerminated)),
		},
	},
	EntityPayment: {
		Entity:  EntityPayment,
		Label:   "payment",
		Initial: string(PaymentStatusPending),
		Valid: toSet(
			string(PaymentStatusPending),
			string(PaymentStatusPaid),
			string(PaymentStatusOverdue),
		),
		Allowed: map[string]map[string]struct{}{
			string(PaymentStatusPending): toSet(string(PaymentStatusPaid), string(PaymentStatusOverdue)),
			string(PaymentStatusOverdue): toSet(string(PaymentStatusPaid)),
		},
	},
	EntityMaintenanceRequest: {
		Entity:  EntityMaintenanceRequest,
		Label:   "maintenance request",
		Initial: string(MaintenanceStatusOpen),
		Valid: toSet(
			string(MaintenanceStatusOpen),
			string(MaintenanceStatusInProgress),
			string(MaintenanceStatusResolved),
		),
		Allowed: map[string]map[string]struct{}{
			string(MaintenanceStatusOpen):       toSet(string(MaintenanceStatusInProgress)),
			string(MaintenanceStatusInProgress): toSet(string(MaintenanceStatusResolved)),
		},
	},
}

// MachineFor returns the transition table for the given entity kind, if any.
func MachineFor(entity EntityType) (StatusMachine, bool) {
	m, ok := statusMachines[entity]
	return m, ok
}

// IsValidState reports whether state is a known status for the machine.
func (m StatusMachine) IsValidState(state string) bool {
	_, ok := m.Valid[state]
	return ok
}

// CanTransition reports whether the table permits moving from one status to
// another. Guard conditions (active leases, paid dates) are checked by the
// service and rules layers, not here.
func (m StatusMachine) CanTransition(from, to string) bool {
	targets, ok := m.Allowed[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// IsTerminal reports whether no transition leaves the given status.
func (m StatusMachine) IsTerminal(state string) bool {
	return len(m.Allowed[state]) == 0
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
