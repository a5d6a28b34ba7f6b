/*
Package sqlite provides a SQLite-backed implementation of the leave storage
interfaces.

PURPOSE:
  Implements leave.TxStore and leave.ActivityLog using SQLite. In production
  the same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  leave_types:        Per-tenant leave category configuration
  leave_applications: Leave requests and their lifecycle status
  activity_log:       Append-only audit entries

INDEXES:
  idx_applications_employee_status: Conflict checks (hot path)
  idx_applications_employee_start:  Balance computation by start-date year
  idx_applications_tenant_status:   HR pending queue
  idx_types_tenant_name (unique):   Name uniqueness per tenant

CONCURRENCY:
  SQLite is opened in WAL mode. A sync.RWMutex serializes writers in process;
  the engine's WithTx paths additionally get database-transaction atomicity,
  so the conflict check and the insert observe one snapshot.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  lifecycle := leave.NewLifecycle(store, store, logger)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leave/store.go:        Interface definitions
  - leave/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/leave-engine/leave"
)

// Store implements leave.TxStore and leave.ActivityLog.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Leave categories, scoped to tenant
	CREATE TABLE IF NOT EXISTS leave_types (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		annual_days INTEGER NOT NULL,
		is_paid BOOLEAN NOT NULL DEFAULT TRUE,
		carry_forward BOOLEAN NOT NULL DEFAULT FALSE,
		max_carry_forward_days INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		description TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_types_tenant_name
		ON leave_types(tenant_id, LOWER(name));
	CREATE INDEX IF NOT EXISTS idx_types_tenant
		ON leave_types(tenant_id);

	-- Leave requests
	CREATE TABLE IF NOT EXISTS leave_applications (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL REFERENCES leave_types(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days_requested INTEGER NOT NULL,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		decided_by TEXT,
		decision_comments TEXT,
		created_at TEXT NOT NULL,
		decided_at TEXT
	);

	-- Conflict checks: open applications per employee (hot path)
	CREATE INDEX IF NOT EXISTS idx_applications_employee_status
		ON leave_applications(tenant_id, employee_id, status);

	-- Balance computation: approved days by start date
	CREATE INDEX IF NOT EXISTS idx_applications_employee_start
		ON leave_applications(tenant_id, employee_id, leave_type_id, start_date);

	-- HR pending queue
	CREATE INDEX IF NOT EXISTS idx_applications_tenant_status
		ON leave_applications(tenant_id, status);

	-- Type deletion guard
	CREATE INDEX IF NOT EXISTS idx_applications_type
		ON leave_applications(leave_type_id);

	-- Audit entries (append-only)
	CREATE TABLE IF NOT EXISTS activity_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		event TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activity_tenant
		ON activity_log(tenant_id, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query can run
// either standalone or inside WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// TYPE STORE (leave.TypeStore interface)
// =============================================================================

const typeColumns = `id, tenant_id, name, annual_days, is_paid, carry_forward,
	max_carry_forward_days, active, description, created_at, updated_at`

func (s *Store) ListTypes(ctx context.Context, tenant leave.TenantID) ([]leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listTypes(ctx, s.db, tenant)
}

func listTypes(ctx context.Context, db dbtx, tenant leave.TenantID) ([]leave.LeaveType, error) {
	query := `SELECT ` + typeColumns + ` FROM leave_types WHERE tenant_id = ? ORDER BY LOWER(name)`
	rows, err := db.QueryContext(ctx, query, tenant)
	if err != nil {
		return nil, storageErr("list leave types", err)
	}
	defer rows.Close()

	var types []leave.LeaveType
	for rows.Next() {
		lt, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, lt)
	}
	return types, rows.Err()
}

func (s *Store) GetType(ctx context.Context, tenant leave.TenantID, id leave.LeaveTypeID) (*leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getType(ctx, s.db, tenant, id)
}

func getType(ctx context.Context, db dbtx, tenant leave.TenantID, id leave.LeaveTypeID) (*leave.LeaveType, error) {
	query := `SELECT ` + typeColumns + ` FROM leave_types WHERE tenant_id = ? AND id = ?`
	rows, err := db.QueryContext(ctx, query, tenant, id)
	if err != nil {
		return nil, storageErr("get leave type", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	lt, err := scanType(rows)
	if err != nil {
		return nil, err
	}
	return &lt, nil
}

func (s *Store) InsertType(ctx context.Context, lt leave.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertType(ctx, s.db, lt)
}

func insertType(ctx context.Context, db dbtx, lt leave.LeaveType) error {
	query := `
		INSERT INTO leave_types
		(id, tenant_id, name, annual_days, is_paid, carry_forward,
		 max_carry_forward_days, active, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		lt.ID, lt.TenantID, lt.Name, lt.AnnualDays, lt.IsPaid, lt.CarryForwardAllowed,
		lt.MaxCarryForwardDays, lt.Active, lt.Description,
		lt.CreatedAt.UTC().Format(time.RFC3339), lt.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &leave.ConflictError{Kind: "leave type", ID: lt.Name, Reason: "name already exists"}
		}
		return storageErr("insert leave type", err)
	}
	return nil
}

func (s *Store) UpdateType(ctx context.Context, lt leave.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateType(ctx, s.db, lt)
}

func updateType(ctx context.Context, db dbtx, lt leave.LeaveType) error {
	query := `
		UPDATE leave_types
		SET name = ?, annual_days = ?, is_paid = ?, carry_forward = ?,
		    max_carry_forward_days = ?, active = ?, description = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`
	res, err := db.ExecContext(ctx, query,
		lt.Name, lt.AnnualDays, lt.IsPaid, lt.CarryForwardAllowed,
		lt.MaxCarryForwardDays, lt.Active, lt.Description,
		lt.UpdatedAt.UTC().Format(time.RFC3339),
		lt.TenantID, lt.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &leave.ConflictError{Kind: "leave type", ID: lt.Name, Reason: "name already exists"}
		}
		return storageErr("update leave type", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &leave.NotFoundError{Kind: "leave type", ID: string(lt.ID)}
	}
	return nil
}

func (s *Store) DeleteType(ctx context.Context, tenant leave.TenantID, id leave.LeaveTypeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteType(ctx, s.db, tenant, id)
}

func deleteType(ctx context.Context, db dbtx, tenant leave.TenantID, id leave.LeaveTypeID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM leave_types WHERE tenant_id = ? AND id = ?`, tenant, id)
	if err != nil {
		return storageErr("delete leave type", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &leave.NotFoundError{Kind: "leave type", ID: string(id)}
	}
	return nil
}

func (s *Store) CountTypes(ctx context.Context, tenant leave.TenantID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countTypes(ctx, s.db, tenant)
}

func countTypes(ctx context.Context, db dbtx, tenant leave.TenantID) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leave_types WHERE tenant_id = ?`, tenant,
	).Scan(&count)
	if err != nil {
		return 0, storageErr("count leave types", err)
	}
	return count, nil
}

func (s *Store) CountApplicationsForType(ctx context.Context, tenant leave.TenantID, id leave.LeaveTypeID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countApplicationsForType(ctx, s.db, tenant, id)
}

func countApplicationsForType(ctx context.Context, db dbtx, tenant leave.TenantID, id leave.LeaveTypeID) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leave_applications WHERE tenant_id = ? AND leave_type_id = ?`,
		tenant, id,
	).Scan(&count)
	if err != nil {
		return 0, storageErr("count applications for type", err)
	}
	return count, nil
}

func scanType(rows *sql.Rows) (leave.LeaveType, error) {
	var (
		lt          leave.LeaveType
		description sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := rows.Scan(
		&lt.ID, &lt.TenantID, &lt.Name, &lt.AnnualDays, &lt.IsPaid,
		&lt.CarryForwardAllowed, &lt.MaxCarryForwardDays, &lt.Active,
		&description, &createdAt, &updatedAt,
	)
	if err != nil {
		return lt, storageErr("scan leave type", err)
	}
	lt.Description = description.String
	lt.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	lt.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return lt, nil
}

// =============================================================================
// APPLICATION STORE (leave.ApplicationStore interface)
// =============================================================================

const appColumns = `id, tenant_id, employee_id, leave_type_id, start_date, end_date,
	days_requested, reason, status, decided_by, decision_comments, created_at, decided_at`

func (s *Store) InsertApplication(ctx context.Context, app leave.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertApplication(ctx, s.db, app)
}

func insertApplication(ctx context.Context, db dbtx, app leave.Application) error {
	query := `
		INSERT INTO leave_applications
		(id, tenant_id, employee_id, leave_type_id, start_date, end_date,
		 days_requested, reason, status, decided_by, decision_comments, created_at, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		app.ID, app.TenantID, app.EmployeeID, app.LeaveTypeID,
		app.StartDate.String(), app.EndDate.String(),
		app.DaysRequested, app.Reason, app.Status,
		nullableActor(app.DecidedBy), nullableString(app.DecisionComments),
		app.CreatedAt.UTC().Format(time.RFC3339), nullableTime(app.DecidedAt),
	)
	if err != nil {
		return storageErr("insert application", err)
	}
	return nil
}

func (s *Store) GetApplication(ctx context.Context, tenant leave.TenantID, id leave.ApplicationID) (*leave.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getApplication(ctx, s.db, tenant, id)
}

func getApplication(ctx context.Context, db dbtx, tenant leave.TenantID, id leave.ApplicationID) (*leave.Application, error) {
	query := `SELECT ` + appColumns + ` FROM leave_applications WHERE tenant_id = ? AND id = ?`
	rows, err := db.QueryContext(ctx, query, tenant, id)
	if err != nil {
		return nil, storageErr("get application", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	app, err := scanApplication(rows)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *Store) UpdateApplication(ctx context.Context, app leave.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateApplication(ctx, s.db, app)
}

func updateApplication(ctx context.Context, db dbtx, app leave.Application) error {
	query := `
		UPDATE leave_applications
		SET status = ?, decided_by = ?, decision_comments = ?, decided_at = ?
		WHERE tenant_id = ? AND id = ?
	`
	res, err := db.ExecContext(ctx, query,
		app.Status, nullableActor(app.DecidedBy), nullableString(app.DecisionComments),
		nullableTime(app.DecidedAt), app.TenantID, app.ID,
	)
	if err != nil {
		return storageErr("update application", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &leave.NotFoundError{Kind: "application", ID: string(app.ID)}
	}
	return nil
}

func (s *Store) ListOpenForEmployee(ctx context.Context, tenant leave.TenantID, employee leave.EmployeeID) ([]leave.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listOpenForEmployee(ctx, s.db, tenant, employee)
}

func listOpenForEmployee(ctx context.Context, db dbtx, tenant leave.TenantID, employee leave.EmployeeID) ([]leave.Application, error) {
	query := `
		SELECT ` + appColumns + `
		FROM leave_applications
		WHERE tenant_id = ? AND employee_id = ? AND status IN ('pending', 'approved')
		ORDER BY start_date ASC
	`
	return queryApplications(ctx, db, "list open applications", query, tenant, employee)
}

func (s *Store) ListApprovedInYear(ctx context.Context, tenant leave.TenantID, employee leave.EmployeeID, typeID leave.LeaveTypeID, year int) ([]leave.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listApprovedInYear(ctx, s.db, tenant, employee, typeID, year)
}

func listApprovedInYear(ctx context.Context, db dbtx, tenant leave.TenantID, employee leave.EmployeeID, typeID leave.LeaveTypeID, year int) ([]leave.Application, error) {
	// start_date is stored as YYYY-MM-DD, so a year is a lexicographic range.
	query := `
		SELECT ` + appColumns + `
		FROM leave_applications
		WHERE tenant_id = ? AND employee_id = ? AND leave_type_id = ?
		  AND status = 'approved'
		  AND start_date >= ? AND start_date <= ?
		ORDER BY start_date ASC
	`
	from := fmt.Sprintf("%04d-01-01", year)
	to := fmt.Sprintf("%04d-12-31", year)
	return queryApplications(ctx, db, "list approved applications", query, tenant, employee, typeID, from, to)
}

func (s *Store) ListForEmployee(ctx context.Context, tenant leave.TenantID, employee leave.EmployeeID) ([]leave.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listForEmployee(ctx, s.db, tenant, employee)
}

func listForEmployee(ctx context.Context, db dbtx, tenant leave.TenantID, employee leave.EmployeeID) ([]leave.Application, error) {
	query := `
		SELECT ` + appColumns + `
		FROM leave_applications
		WHERE tenant_id = ? AND employee_id = ?
		ORDER BY created_at DESC
	`
	return queryApplications(ctx, db, "list applications", query, tenant, employee)
}

func (s *Store) ListPending(ctx context.Context, tenant leave.TenantID) ([]leave.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listPending(ctx, s.db, tenant)
}

func listPending(ctx context.Context, db dbtx, tenant leave.TenantID) ([]leave.Application, error) {
	query := `
		SELECT ` + appColumns + `
		FROM leave_applications
		WHERE tenant_id = ? AND status = 'pending'
		ORDER BY created_at ASC
	`
	return queryApplications(ctx, db, "list pending applications", query, tenant)
}

func queryApplications(ctx context.Context, db dbtx, op, query string, args ...any) ([]leave.Application, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var apps []leave.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func scanApplication(rows *sql.Rows) (leave.Application, error) {
	var (
		app              leave.Application
		startDate        string
		endDate          string
		reason           sql.NullString
		decidedBy        sql.NullString
		decisionComments sql.NullString
		createdAt        string
		decidedAt        sql.NullString
	)
	err := rows.Scan(
		&app.ID, &app.TenantID, &app.EmployeeID, &app.LeaveTypeID,
		&startDate, &endDate, &app.DaysRequested, &reason, &app.Status,
		&decidedBy, &decisionComments, &createdAt, &decidedAt,
	)
	if err != nil {
		return app, storageErr("scan application", err)
	}

	app.StartDate, _ = leave.ParseDate(startDate)
	app.EndDate, _ = leave.ParseDate(endDate)
	app.Reason = reason.String
	if decidedBy.Valid {
		id := leave.ActorID(decidedBy.String)
		app.DecidedBy = &id
	}
	if decisionComments.Valid {
		c := decisionComments.String
		app.DecisionComments = &c
	}
	app.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if decidedAt.Valid {
		t, _ := time.Parse(time.RFC3339, decidedAt.String)
		app.DecidedAt = &t
	}
	return app, nil
}

// =============================================================================
// TRANSACTIONAL STORE (leave.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. The store mutex is held
// for the duration, so in-process readers cannot interleave either.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}

// txStore routes every store call through the open *sql.Tx so reads inside
// WithTx observe the transaction's own writes.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) ListTypes(ctx context.Context, tenant leave.TenantID) ([]leave.LeaveType, error) {
	return listTypes(ctx, ts.tx, tenant)
}

func (ts *txStore) GetType(ctx context.Context, tenant leave.TenantID, id leave.LeaveTypeID) (*leave.LeaveType, error) {
	return getType(ctx, ts.tx, tenant, id)
}

func (ts *txStore) InsertType(ctx context.Context, lt leave.LeaveType) error {
	return insertType(ctx, ts.tx, lt)
}

func (ts *txStore) UpdateType(ctx context.Context, lt leave.LeaveType) error {
	return updateType(ctx, ts.tx, lt)
}

func (ts *txStore) DeleteType(ctx context.Context, tenant leave.TenantID, id leave.LeaveTypeID) error {
	return deleteType(ctx, ts.tx, tenant, id)
}

func (ts *txStore) CountTypes(ctx context.Context, tenant leave.TenantID) (int, error) {
	return countTypes(ctx, ts.tx, tenant)
}

func (ts *txStore) CountApplicationsForType(ctx context.Context, tenant leave.TenantID, id leave.LeaveTypeID) (int, error) {
	return countApplicationsForType(ctx, ts.tx, tenant, id)
}

func (ts *txStore) InsertApplication(ctx context.Context, app leave.Application) error {
	return insertApplication(ctx, ts.tx, app)
}

func (ts *txStore) GetApplication(ctx context.Context, tenant leave.TenantID, id leave.ApplicationID) (*leave.Application, error) {
	return getApplication(ctx, ts.tx, tenant, id)
}

func (ts *txStore) UpdateApplication(ctx context.Context, app leave.Application) error {
	return updateApplication(ctx, ts.tx, app)
}

func (ts *txStore) ListOpenForEmployee(ctx context.Context, tenant leave.TenantID, employee leave.EmployeeID) ([]leave.Application, error) {
	return listOpenForEmployee(ctx, ts.tx, tenant, employee)
}

func (ts *txStore) ListApprovedInYear(ctx context.Context, tenant leave.TenantID, employee leave.EmployeeID, typeID leave.LeaveTypeID, year int) ([]leave.Application, error) {
	return listApprovedInYear(ctx, ts.tx, tenant, employee, typeID, year)
}

func (ts *txStore) ListForEmployee(ctx context.Context, tenant leave.TenantID, employee leave.EmployeeID) ([]leave.Application, error) {
	return listForEmployee(ctx, ts.tx, tenant, employee)
}

func (ts *txStore) ListPending(ctx context.Context, tenant leave.TenantID) ([]leave.Application, error) {
	return listPending(ctx, ts.tx, tenant)
}

// =============================================================================
// ACTIVITY LOG (leave.ActivityLog interface)
// =============================================================================

// Record appends one audit entry. Append-only: no update or delete path
// exists for activity_log.
func (s *Store) Record(ctx context.Context, entry leave.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := entry.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_log (tenant_id, actor_id, event, description, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.TenantID, entry.ActorID, entry.Event, entry.Description,
		at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return storageErr("record activity", err)
	}
	return nil
}

// Activity returns the tenant's newest audit entries, capped at limit.
func (s *Store) Activity(ctx context.Context, tenant leave.TenantID, limit int) ([]leave.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT tenant_id, actor_id, event, description, created_at
		 FROM activity_log WHERE tenant_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		tenant, limit,
	)
	if err != nil {
		return nil, storageErr("list activity", err)
	}
	defer rows.Close()

	var entries []leave.AuditEntry
	for rows.Next() {
		var (
			entry       leave.AuditEntry
			description sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&entry.TenantID, &entry.ActorID, &entry.Event, &description, &createdAt); err != nil {
			return nil, storageErr("scan activity", err)
		}
		entry.Description = description.String
		entry.At, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func storageErr(op string, err error) error {
	return &leave.StorageError{Op: op, Err: err}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableActor(id *leave.ActorID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
