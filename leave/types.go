/*
Package leave implements the leave entitlement and application engine.

PURPOSE:
  This package contains the core domain logic for tracking how many days of
  each leave category an employee is entitled to in a year, validating new
  leave requests against policy and against existing commitments, and moving
  a request through its lifecycle (pending, approved, rejected, cancelled).

KEY CONCEPTS IN THIS FILE (types.go):
  - LeaveType:    One leave category (Annual, Sick, ...) with its entitlement
                  and carry-forward configuration, scoped to a tenant
  - Application:  One employee's request for a contiguous date range
  - Days:         A day amount (uses decimal.Decimal to avoid float errors)
  - Actor:        Who is performing an operation, passed explicitly on
                  every call - never ambient state
  - Tenant/Employee/... IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Explicit actor context: every mutation names who performs it
  2. Derived balances: balance is computed from applications, never stored
  3. Terminal states: approved/rejected/cancelled records are immutable
  4. Precision: decimal day amounts, no floating-point drift

SEE ALSO:
  - catalog.go:   LeaveType CRUD and seeding
  - balance.go:   Balance computation
  - lifecycle.go: Application state machine
  - policy.go:    Pure submission rules
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TenantID string
type EmployeeID string
type LeaveTypeID string
type ApplicationID string
type ActorID string

// =============================================================================
// ACTOR - Who is performing an operation
// =============================================================================

type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
	RoleSystem   Role = "system"
)

// Actor identifies who is performing an operation. The surrounding
// application resolves the session to an Actor and passes it on every call;
// the engine never consults global session state.
type Actor struct {
	ID       ActorID
	Role     Role
	TenantID TenantID

	// EmployeeID is set when the actor is (or acts as) an employee.
	// Used for the cancel-own-request check.
	EmployeeID EmployeeID
}

// CanDecide reports whether the actor may approve or reject applications.
func (a Actor) CanDecide() bool {
	return a.Role == RoleHR || a.Role == RoleAdmin
}

// =============================================================================
// DAYS - A day amount
// =============================================================================

// Days is a quantity of leave days. Balances are day arithmetic over many
// applications, so this uses decimal.Decimal rather than float64.
type Days struct {
	Value decimal.Decimal
}

func NewDays(n int) Days {
	return Days{Value: decimal.NewFromInt(int64(n))}
}

func ZeroDays() Days { return Days{Value: decimal.Zero} }

func (d Days) Add(o Days) Days         { return Days{Value: d.Value.Add(o.Value)} }
func (d Days) Sub(o Days) Days         { return Days{Value: d.Value.Sub(o.Value)} }
func (d Days) IsNegative() bool        { return d.Value.IsNegative() }
func (d Days) IsZero() bool            { return d.Value.IsZero() }
func (d Days) LessThan(o Days) bool    { return d.Value.LessThan(o.Value) }
func (d Days) GreaterThan(o Days) bool { return d.Value.GreaterThan(o.Value) }
func (d Days) Equal(o Days) bool       { return d.Value.Equal(o.Value) }
func (d Days) Float64() float64        { f, _ := d.Value.Float64(); return f }
func (d Days) String() string          { return d.Value.String() }

func (d Days) Min(o Days) Days {
	if d.LessThan(o) {
		return d
	}
	return o
}

// =============================================================================
// LEAVE TYPE - One leave category for a tenant
// =============================================================================

// LeaveType is one leave category (Annual, Sick, Maternity, ...) owned by a
// tenant. Identity is tenant + name; Name is unique per tenant.
type LeaveType struct {
	ID       LeaveTypeID
	TenantID TenantID
	Name     string

	// AnnualDays is the yearly entitlement, in [0, 365].
	AnnualDays int

	IsPaid bool

	// CarryForwardAllowed permits unused days to roll into the next year,
	// capped at MaxCarryForwardDays. MaxCarryForwardDays <= AnnualDays.
	CarryForwardAllowed bool
	MaxCarryForwardDays int

	// Active is the soft-retirement flag. A type with application history
	// can never be deleted, only deactivated.
	Active bool

	Description string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// APPLICATION - One employee's request for a contiguous date range
// =============================================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Open reports whether the application still holds its date range for
// conflict purposes. Pending and Approved block overlapping requests;
// terminal rejected/cancelled records never conflict.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusApproved
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Application is one leave request. StartDate and EndDate are inclusive;
// DaysRequested is always the inclusive calendar day count of the range.
type Application struct {
	ID          ApplicationID
	TenantID    TenantID
	EmployeeID  EmployeeID
	LeaveTypeID LeaveTypeID

	StartDate     Date
	EndDate       Date
	DaysRequested int

	Reason string
	Status Status

	// Decision fields, set once when the record leaves Pending via an HR
	// decision. Nil while pending and for cancellations.
	DecidedBy        *ActorID
	DecisionComments *string
	DecidedAt        *time.Time

	CreatedAt time.Time
}

// =============================================================================
// BALANCE - Derived projection, never stored
// =============================================================================

// Balance is the read-only projection of one employee's position against one
// leave type for a calendar year.
//
//	Entitled  = AnnualDays + CarriedIn
//	Used      = sum of DaysRequested over approved applications starting in the year
//	Remaining = max(0, Entitled - Used)
type Balance struct {
	Type LeaveType
	Year int

	Entitled  Days
	CarriedIn Days
	Used      Days
	Remaining Days
}
