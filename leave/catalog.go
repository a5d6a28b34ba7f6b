/*
catalog.go - Leave type configuration per tenant

PURPOSE:
  CRUD over a tenant's leave categories, plus one-time seeding of a
  standard set for new tenants. Configuration is immutable-per-period from
  the engine's point of view: the balance and lifecycle paths only read it.

DELETION RULES:
  A leave type referenced by ANY application - in any status - can never be
  hard-deleted; history must stay explainable. Deactivate is the only way
  to retire such a type. Delete succeeds only with zero references.

SEEDING:
  Seed installs the standard set (Annual, Sick, Maternity, Paternity,
  Compassionate, Study, Emergency) only when the tenant has zero types.
  The count check runs inside the same store transaction as the inserts,
  so concurrent first access cannot seed twice.

SEE ALSO:
  - balance.go: Reads AnnualDays and the carry-forward configuration
  - store.go:   TypeStore interface
*/
package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxAnnualDays = 365

// Catalog manages a tenant's leave types.
type Catalog struct {
	Store TxStore
	Log   *zap.Logger
}

func NewCatalog(store TxStore, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{Store: store, Log: log.Named("leave.catalog")}
}

// List returns all leave types for the tenant, active and retired.
func (c *Catalog) List(ctx context.Context, tenant TenantID) ([]LeaveType, error) {
	return c.Store.ListTypes(ctx, tenant)
}

// Get returns one leave type.
func (c *Catalog) Get(ctx context.Context, tenant TenantID, id LeaveTypeID) (*LeaveType, error) {
	lt, err := c.Store.GetType(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if lt == nil {
		return nil, &NotFoundError{Kind: "leave type", ID: string(id)}
	}
	return lt, nil
}

// Create validates and inserts a new leave type. ID and timestamps are
// assigned here.
func (c *Catalog) Create(ctx context.Context, tenant TenantID, lt LeaveType) (*LeaveType, error) {
	lt.TenantID = tenant
	if err := validateType(lt); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lt.ID = LeaveTypeID(uuid.NewString())
	lt.Active = true
	lt.CreatedAt = now
	lt.UpdatedAt = now

	if err := c.Store.InsertType(ctx, lt); err != nil {
		return nil, err
	}
	c.Log.Info("leave type created",
		zap.String("tenant_id", string(tenant)),
		zap.String("leave_type_id", string(lt.ID)),
		zap.String("name", lt.Name),
	)
	return &lt, nil
}

// Update validates and replaces the mutable attributes of a leave type.
func (c *Catalog) Update(ctx context.Context, tenant TenantID, id LeaveTypeID, lt LeaveType) (*LeaveType, error) {
	existing, err := c.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}

	lt.TenantID = tenant
	if err := validateType(lt); err != nil {
		return nil, err
	}

	existing.Name = lt.Name
	existing.AnnualDays = lt.AnnualDays
	existing.IsPaid = lt.IsPaid
	existing.CarryForwardAllowed = lt.CarryForwardAllowed
	existing.MaxCarryForwardDays = lt.MaxCarryForwardDays
	existing.Active = lt.Active
	existing.Description = lt.Description
	existing.UpdatedAt = time.Now().UTC()

	if err := c.Store.UpdateType(ctx, *existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Deactivate retires a leave type without touching its history. The type
// stops appearing in balances and stops accepting submissions.
func (c *Catalog) Deactivate(ctx context.Context, tenant TenantID, id LeaveTypeID) (*LeaveType, error) {
	existing, err := c.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}

	existing.Active = false
	existing.UpdatedAt = time.Now().UTC()
	if err := c.Store.UpdateType(ctx, *existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a leave type that no application has ever referenced.
// Any reference, regardless of status, makes the type permanently
// non-deletable.
func (c *Catalog) Delete(ctx context.Context, tenant TenantID, id LeaveTypeID) error {
	if _, err := c.Get(ctx, tenant, id); err != nil {
		return err
	}

	return c.Store.WithTx(ctx, func(s Store) error {
		refs, err := s.CountApplicationsForType(ctx, tenant, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return &ConflictError{
				Kind:   "leave type",
				ID:     string(id),
				Reason: "applications reference this type; deactivate instead",
			}
		}
		return s.DeleteType(ctx, tenant, id)
	})
}

// =============================================================================
// SEEDING - Standard leave types for new tenants
// =============================================================================

type seedSpec struct {
	name        string
	annualDays  int
	paid        bool
	carry       bool
	maxCarry    int
	description string
}

// The fixed defaults installed for a tenant with no configuration yet.
var defaultTypes = []seedSpec{
	{"Annual Leave", 21, true, true, 5, "Yearly paid vacation entitlement"},
	{"Sick Leave", 14, true, false, 0, "Paid sick days, medical note may be required"},
	{"Maternity Leave", 90, true, false, 0, "Paid maternity leave"},
	{"Paternity Leave", 14, true, false, 0, "Paid paternity leave"},
	{"Compassionate Leave", 5, true, false, 0, "Bereavement and family emergencies"},
	{"Study Leave", 10, false, false, 0, "Unpaid leave for examinations and study"},
	{"Emergency Leave", 5, false, false, 0, "Unpaid short-notice personal emergencies"},
}

// Seed installs the default leave types when the tenant has none. Calling
// it again is a no-op: the count==0 gate runs inside the transaction.
func (c *Catalog) Seed(ctx context.Context, tenant TenantID) ([]LeaveType, error) {
	var seeded []LeaveType

	err := c.Store.WithTx(ctx, func(s Store) error {
		count, err := s.CountTypes(ctx, tenant)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, spec := range defaultTypes {
			lt := LeaveType{
				ID:                  LeaveTypeID(uuid.NewString()),
				TenantID:            tenant,
				Name:                spec.name,
				AnnualDays:          spec.annualDays,
				IsPaid:              spec.paid,
				CarryForwardAllowed: spec.carry,
				MaxCarryForwardDays: spec.maxCarry,
				Active:              true,
				Description:         spec.description,
				CreatedAt:           now,
				UpdatedAt:           now,
			}
			if err := s.InsertType(ctx, lt); err != nil {
				return err
			}
			seeded = append(seeded, lt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(seeded) > 0 {
		c.Log.Info("seeded default leave types",
			zap.String("tenant_id", string(tenant)),
			zap.Int("count", len(seeded)),
		)
	}
	return seeded, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateType(lt LeaveType) error {
	if lt.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if lt.AnnualDays < 0 || lt.AnnualDays > maxAnnualDays {
		return &ValidationError{Field: "annual_days", Reason: "must be between 0 and 365"}
	}
	if lt.MaxCarryForwardDays < 0 {
		return &ValidationError{Field: "max_carry_forward_days", Reason: "must not be negative"}
	}
	if lt.CarryForwardAllowed && lt.MaxCarryForwardDays > lt.AnnualDays {
		return &ValidationError{Field: "max_carry_forward_days", Reason: "must not exceed annual days"}
	}
	return nil
}
