/*
store.go - Persistence interfaces for leave types and applications

PURPOSE:
  Defines the interface between the engine and the record store. The engine
  owns no SQL; the surrounding application supplies a Store implementation
  and the engine enforces its invariants on top of it.

KEY INTERFACES:
  TypeStore:        LeaveType rows
  ApplicationStore: Application rows
  TxStore:          Store plus transactional execution
  ActivityLog:      Append-only audit sink, best-effort

TENANT SCOPING:
  Every read takes the tenant id and must return only that tenant's rows.
  A row outside the tenant is indistinguishable from a missing row.

TRANSACTIONS:
  Submit runs "read open applications -> validate -> insert pending" as one
  atomic unit via WithTx, so two concurrent overlapping submissions cannot
  both pass the conflict check. Decide and cancel use WithTx for per-record
  read-modify-write.

IMPLEMENTATIONS:
  - store/sqlite:       production SQLite store
  - leave/store/memory: in-memory store for tests

SEE ALSO:
  - lifecycle.go: Uses WithTx for atomic submission
  - balance.go:   Read-only consumer of ApplicationStore
*/
package leave

import (
	"context"
	"time"
)

// =============================================================================
// TYPE STORE - LeaveType rows
// =============================================================================

type TypeStore interface {
	// ListTypes returns all leave types for a tenant, active or not,
	// ordered by name.
	ListTypes(ctx context.Context, tenant TenantID) ([]LeaveType, error)

	// GetType returns a leave type, or nil if it does not exist in the
	// tenant's scope.
	GetType(ctx context.Context, tenant TenantID, id LeaveTypeID) (*LeaveType, error)

	InsertType(ctx context.Context, lt LeaveType) error
	UpdateType(ctx context.Context, lt LeaveType) error
	DeleteType(ctx context.Context, tenant TenantID, id LeaveTypeID) error

	// CountTypes gates idempotent seeding: seed only when count == 0.
	CountTypes(ctx context.Context, tenant TenantID) (int, error)

	// CountApplicationsForType counts applications referencing the type in
	// any status. A non-zero count makes the type permanently non-deletable.
	CountApplicationsForType(ctx context.Context, tenant TenantID, id LeaveTypeID) (int, error)
}

// =============================================================================
// APPLICATION STORE - Application rows
// =============================================================================

type ApplicationStore interface {
	InsertApplication(ctx context.Context, app Application) error

	// GetApplication returns an application, or nil if it does not exist in
	// the tenant's scope.
	GetApplication(ctx context.Context, tenant TenantID, id ApplicationID) (*Application, error)

	UpdateApplication(ctx context.Context, app Application) error

	// ListOpenForEmployee returns the employee's Pending and Approved
	// applications. Terminal records never participate in conflict checks.
	ListOpenForEmployee(ctx context.Context, tenant TenantID, employee EmployeeID) ([]Application, error)

	// ListApprovedInYear returns Approved applications of one type whose
	// StartDate falls in the given calendar year.
	ListApprovedInYear(ctx context.Context, tenant TenantID, employee EmployeeID, typeID LeaveTypeID, year int) ([]Application, error)

	// ListForEmployee returns the employee's full application history,
	// newest first.
	ListForEmployee(ctx context.Context, tenant TenantID, employee EmployeeID) ([]Application, error)

	// ListPending returns the tenant's Pending applications, oldest first,
	// for the HR decision queue.
	ListPending(ctx context.Context, tenant TenantID) ([]Application, error)
}

// =============================================================================
// COMBINED STORE
// =============================================================================

type Store interface {
	TypeStore
	ApplicationStore
}

// TxStore adds transactional execution. If fn returns an error the
// transaction rolls back; otherwise it commits.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// ACTIVITY LOG - Audit sink, best-effort
// =============================================================================

type AuditEvent string

const (
	EventLeaveSubmitted AuditEvent = "leave_submitted"
	EventLeaveApproved  AuditEvent = "leave_approved"
	EventLeaveRejected  AuditEvent = "leave_rejected"
	EventLeaveCancelled AuditEvent = "leave_cancelled"
	EventTypesSeeded    AuditEvent = "leave_types_seeded"
)

// AuditEntry records who did what when.
type AuditEntry struct {
	TenantID    TenantID
	ActorID     ActorID
	Event       AuditEvent
	Description string
	At          time.Time
}

// ActivityLog receives one entry after every successful state transition.
// Writes are best-effort: a failed write is reported to monitoring via the
// engine's logger but never rolls back the business transition.
type ActivityLog interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// NopActivityLog discards all entries.
type NopActivityLog struct{}

func (NopActivityLog) Record(context.Context, AuditEntry) error { return nil }
