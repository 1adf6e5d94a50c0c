// Package domain defines the persistent rental entities, status enums, typed
// errors, and rule evaluation primitives used by rentcore.
package domain

import "time"

// EntityType identifies the kind of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityUser identifies a landlord or tenant account record.
	EntityUser EntityType = "user"
	// EntityProperty identifies a rental property record.
	EntityProperty EntityType = "property"
	// EntityUnit identifies a rentable unit within a property.
	EntityUnit EntityType = "unit"
	// EntityApplication identifies a tenant rental application.
	EntityApplication EntityType = "application"
	// EntityLease identifies a lease agreement record.
	EntityLease EntityType = "lease"
	// EntityPayment identifies a rent payment record.
	EntityPayment EntityType = "payment"
	// EntityMaintenanceRequest identifies a maintenance ticket.
	EntityMaintenanceRequest EntityType = "maintenance_request"
	// EntityMessage identifies an inter-user message.
	EntityMessage EntityType = "message"
)

// UserRole distinguishes landlord accounts from tenant accounts.
type UserRole string

// Canonical user roles referenced by property and application records.
const (
	RoleLandlord UserRole = "landlord"
	RoleTenant   UserRole = "tenant"
)

// UserStatus is a simple enumerated flag without ordered transitions.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// PropertyStatus is a simple enumerated flag without ordered transitions.
type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusInactive PropertyStatus = "inactive"
)

// UnitType enumerates the supported unit layouts.
type UnitType string

// Canonical unit types used for listings and filtering.
const (
	UnitTypeStudio    UnitType = "studio"
	UnitTypeBedsitter UnitType = "bedsitter"
	UnitTypeOneBR     UnitType = "1br"
	UnitTypeTwoBR     UnitType = "2br"
	UnitTypeThreeBR   UnitType = "3br+"
)

// UnitStatus enumerates unit availability states governed by the unit state machine.
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "available"
	UnitStatusOccupied    UnitStatus = "occupied"
	UnitStatusMaintenance UnitStatus = "maintenance"
)

// ApplicationStatus enumerates rental application workflow states.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// LeaseStatus enumerates lease lifecycle states.
type LeaseStatus string

const (
	LeaseStatusPending    LeaseStatus = "pending"
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusEnded      LeaseStatus = "ended"
	LeaseStatusTerminated LeaseStatus = "terminated"
)

// PaymentStatus enumerates payment posting states.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// PaymentMethod enumerates supported settlement channels.
type PaymentMethod string

// Canonical payment methods recognised on payment records.
const (
	PaymentMethodMpesa        PaymentMethod = "mpesa"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
)

// MaintenancePriority enumerates ticket urgency levels.
type MaintenancePriority string

const (
	PriorityLow    MaintenancePriority = "low"
	PriorityMedium MaintenancePriority = "medium"
	PriorityHigh   MaintenancePriority = "high"
)

// MaintenanceStatus enumerates ticket workflow states, monotonic forward only.
type MaintenanceStatus string

const (
	MaintenanceStatusOpen       MaintenanceStatus = "open"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusResolved   MaintenanceStatus = "resolved"
)

// Base contains common fields for all domain records. Identifiers are opaque,
// assigned at creation, immutable, and never reused.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User represents a landlord or tenant account.
type User struct {
	Base
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	Role      UserRole   `json:"role"`
	Status    UserStatus `json:"status"`
}

// Property represents a rental property owned by a landlord.
// OccupiedUnits is derived state: it always equals the count of the property's
// units with status occupied and is recomputed by the store, never edited.
type Property struct {
	Base
	Name          string         `json:"name"`
	Address       string         `json:"address"`
	City          string         `json:"city"`
	County        string         `json:"county"`
	Description   string         `json:"description,omitempty"`
	LandlordID    string         `json:"landlord_id"`
	TotalUnits    int            `json:"total_units"`
	OccupiedUnits int            `json:"occupied_units"`
	Amenities     []string       `json:"amenities"`
	ImageKeys     []string       `json:"image_keys,omitempty"`
	Status        PropertyStatus `json:"status"`
}

// Unit represents a rentable unit within a property. UnitNumber is unique
// within the owning property. PropertyID is an identity reference and is
// immutable after creation.
type Unit struct {
	Base
	PropertyID    string     `json:"property_id"`
	UnitNumber    string     `json:"unit_number"`
	Type          UnitType   `json:"type"`
	Bedrooms      int        `json:"bedrooms"`
	Bathrooms     int        `json:"bathrooms"`
	SquareMeters  float64    `json:"square_meters"`
	RentAmount    int64      `json:"rent_amount"`
	DepositAmount int64      `json:"deposit_amount"`
	Status        UnitStatus `json:"status"`
	Floor         int        `json:"floor"`
	Amenities     []string   `json:"amenities"`
	ImageKeys     []string   `json:"image_keys,omitempty"`
}

// Application represents a tenant's rental application for a unit.
type Application struct {
	Base
	UnitID           string            `json:"unit_id"`
	TenantID         string            `json:"tenant_id"`
	EmploymentStatus string            `json:"employment_status"`
	MonthlyIncome    int64             `json:"monthly_income"`
	EmergencyContact string            `json:"emergency_contact,omitempty"`
	EmergencyPhone   string            `json:"emergency_phone,omitempty"`
	MoveInDate       time.Time         `json:"move_in_date"`
	Status           ApplicationStatus `json:"status"`
}

// Lease represents a lease agreement between a tenant and a unit.
// UnitID is an identity reference and is immutable after creation.
type Lease struct {
	Base
	UnitID           string      `json:"unit_id"`
	TenantID         string      `json:"tenant_id"`
	StartDate        time.Time   `json:"start_date"`
	EndDate          time.Time   `json:"end_date"`
	RentAmount       int64       `json:"rent_amount"`
	DepositAmount    int64       `json:"deposit_amount"`
	PaymentFrequency string      `json:"payment_frequency"`
	Status           LeaseStatus `json:"status"`
	Terms            string      `json:"terms,omitempty"`
}

// Payment represents a rent payment against a lease. PaidDate is set only
// when the payment transitions to paid. LeaseID is an identity reference.
type Payment struct {
	Base
	LeaseID        string        `json:"lease_id"`
	TenantID       string        `json:"tenant_id"`
	Amount         int64         `json:"amount"`
	DueDate        time.Time     `json:"due_date"`
	PaidDate       *time.Time    `json:"paid_date,omitempty"`
	Status         PaymentStatus `json:"status"`
	Method         PaymentMethod `json:"method"`
	TransactionRef string        `json:"transaction_ref,omitempty"`
}

// MaintenanceRequest represents a maintenance ticket raised by a tenant.
type MaintenanceRequest struct {
	Base
	UnitID      string              `json:"unit_id"`
	TenantID    string              `json:"tenant_id"`
	Category    string              `json:"category"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    MaintenancePriority `json:"priority"`
	Status      MaintenanceStatus   `json:"status"`
	ImageKeys   []string            `json:"image_keys,omitempty"`
}

// Message represents a message sent between two distinct users.
type Message struct {
	Base
	SenderID   string     `json:"sender_id"`
	ReceiverID string     `json:"receiver_id"`
	Subject    string     `json:"subject"`
	Content    string     `json:"content"`
	SentAt     time.Time  `json:"sent_at"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported operations captured per transaction.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
