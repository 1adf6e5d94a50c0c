package domain

import "fmt"

// NotFound reports a lookup for an identifier with no live record.
type NotFound struct {
	Entity EntityType
	ID     string
}

func (e NotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// DanglingReference reports a foreign-key field naming a record that does not exist.
type DanglingReference struct {
	Field      string
	TargetKind EntityType
	TargetID   string
}

func (e DanglingReference) Error() string {
	return fmt.Sprintf("%s references missing %s %s", e.Field, e.TargetKind, e.TargetID)
}

// KindMismatch reports a foreign-key field resolving to a record of the wrong
// kind or role, e.g. a tenant_id naming a landlord account.
type KindMismatch struct {
	Field    string
	TargetID string
	Want     string
	Got      string
}

func (e KindMismatch) Error() string {
	return fmt.Sprintf("%s %s is %s, want %s", e.Field, e.TargetID, e.Got, e.Want)
}

// InvalidTransition reports a status change not permitted by the entity's
// transition table or its guard conditions.
type InvalidTransition struct {
	Entity EntityType
	ID     string
	From   string
	To     string
}

func (e InvalidTransition) Error() string {
	return fmt.Sprintf("%s %s cannot transition from %s to %s", e.Entity, e.ID, e.From, e.To)
}

// ValidationError reports a malformed field value, such as a negative amount
// or an end date preceding a start date.
type ValidationError struct {
	Entity EntityType
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Entity, e.Field, e.Reason)
}

// DuplicateKey reports a uniqueness violation, such as a reused email or a
// unit number collision within one property.
type DuplicateKey struct {
	Entity EntityType
	Field  string
	Value  string
}

func (e DuplicateKey) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}
