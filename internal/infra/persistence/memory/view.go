package memory

import "rentcore/pkg/domain"

// txView is a read-only window over a transactional state, handed to rules,
// maintainers, and in-transaction reference checks. Returned values are clones.
type txView struct {
	state *memoryState
}

var _ domain.TransactionView = txView{}

func newTxView(state *memoryState) txView {
	return txView{state: state}
}

func (v txView) ListUsers() []User {
	out := make([]User, 0, len(v.state.users))
	for _, u := range v.state.users {
		out = append(out, cloneUser(u))
	}
	return out
}

func (v txView) ListProperties() []Property {
	out := make([]Property, 0, len(v.state.properties))
	for _, p := range v.state.properties {
		out = append(out, cloneProperty(p))
	}
	return out
}

func (v txView) ListUnits() []Unit {
	out := make([]Unit, 0, len(v.state.units))
	for _, u := range v.state.units {
		out = append(out, cloneUnit(u))
	}
	return out
}

func (v txView) ListApplications() []Application {
	out := make([]Application, 0, len(v.state.applications))
	for _, a := range v.state.applications {
		out = append(out, cloneApplication(a))
	}
	return out
}

func (v txView) ListLeases() []Lease {
	out := make([]Lease, 0, len(v.state.leases))
	for _, l := range v.state.leases {
		out = append(out, cloneLease(l))
	}
	return out
}

func (v txView) ListPayments() []Payment {
	out := make([]Payment, 0, len(v.state.payments))
	for _, p := range v.state.payments {
		out = append(out, clonePayment(p))
	}
	return out
}

func (v txView) ListMaintenanceRequests() []MaintenanceRequest {
	out := make([]MaintenanceRequest, 0, len(v.state.maintenance))
	for _, m := range v.state.maintenance {
		out = append(out, cloneMaintenance(m))
	}
	return out
}

func (v txView) ListMessages() []Message {
	out := make([]Message, 0, len(v.state.messages))
	for _, m := range v.state.messages {
		out = append(out, cloneMessage(m))
	}
	return out
}

func (v txView) FindUser(id string) (User, bool) {
	u, ok := v.state.users[id]
	if !ok {
		return User{}, false
	}
	return cloneUser(u), true
}

func (v txView) FindProperty(id string) (Property, bool) {
	p, ok := v.state.properties[id]
	if !ok {
		return Property{}, false
	}
	return cloneProperty(p), true
}

func (v txView) FindUnit(id string) (Unit, bool) {
	u, ok := v.state.units[id]
	if !ok {
		return Unit{}, false
	}
	return cloneUnit(u), true
}

func (v txView) FindApplication(id string) (Application, bool) {
	a, ok := v.state.applications[id]
	if !ok {
		return Application{}, false
	}
	return cloneApplication(a), true
}

func (v txView) FindLease(id string) (Lease, bool) {
	l, ok := v.state.leases[id]
	if !ok {
		return Lease{}, false
	}
	return cloneLease(l), true
}

func (v txView) FindPayment(id string) (Payment, bool) {
	p, ok := v.state.payments[id]
	if !ok {
		return Payment{}, false
	}
	return clonePayment(p), true
}

func (v txView) FindMaintenanceRequest(id string) (MaintenanceRequest, bool) {
	m, ok := v.state.maintenance[id]
	if !ok {
		return MaintenanceRequest{}, false
	}
	return cloneMaintenance(m), true
}

func (v txView) FindMessage(id string) (Message, bool) {
	m, ok := v.state.messages[id]
	if !ok {
		return Message{}, false
	}
	return cloneMessage(m), true
}
