// Package store provides leave.Store implementations.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	types map[leave.LeaveTypeID]leave.LeaveType
	apps  map[leave.ApplicationID]leave.Application
}

func NewMemory() *Memory {
	return &Memory{
		types: make(map[leave.LeaveTypeID]leave.LeaveType),
		apps:  make(map[leave.ApplicationID]leave.Application),
	}
}

// -----------------------------------------------------------------------------
// TypeStore
// -----------------------------------------------------------------------------

func (m *Memory) ListTypes(_ context.Context, tenant leave.TenantID) ([]leave.LeaveType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listTypesLocked(tenant), nil
}

func (m *Memory) listTypesLocked(tenant leave.TenantID) []leave.LeaveType {
	var out []leave.LeaveType
	for _, lt := range m.types {
		if lt.TenantID == tenant {
			out = append(out, lt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func (m *Memory) GetType(_ context.Context, tenant leave.TenantID, id leave.LeaveTypeID) (*leave.LeaveType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lt, ok := m.types[id]
	if !ok || lt.TenantID != tenant {
		return nil, nil
	}
	cp := lt
	return &cp, nil
}

func (m *Memory) InsertType(_ context.Context, lt leave.LeaveType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertTypeLocked(lt)
}

func (m *Memory) insertTypeLocked(lt leave.LeaveType) error {
	for _, existing := range m.types {
		if existing.TenantID == lt.TenantID && strings.EqualFold(existing.Name, lt.Name) {
			return &leave.ConflictError{Kind: "leave type", ID: lt.Name, Reason: "name already exists"}
		}
	}
	m.types[lt.ID] = lt
	return nil
}

func (m *Memory) UpdateType(_ context.Context, lt leave.LeaveType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateTypeLocked(lt)
}

func (m *Memory) updateTypeLocked(lt leave.LeaveType) error {
	existing, ok := m.types[lt.ID]
	if !ok || existing.TenantID != lt.TenantID {
		return &leave.NotFoundError{Kind: "leave type", ID: string(lt.ID)}
	}
	// Renames obey the same per-tenant uniqueness as inserts, matching the
	// SQL store's unique index.
	for _, other := range m.types {
		if other.ID != lt.ID && other.TenantID == lt.TenantID && strings.EqualFold(other.Name, lt.Name) {
			return &leave.ConflictError{Kind: "leave type", ID: lt.Name, Reason: "name already exists"}
		}
	}
	m.types[lt.ID] = lt
	return nil
}

func (m *Memory) DeleteType(_ context.Context, tenant leave.TenantID, id leave.LeaveTypeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteTypeLocked(tenant, id)
}

func (m *Memory) deleteTypeLocked(tenant leave.TenantID, id leave.LeaveTypeID) error {
	lt, ok := m.types[id]
	if !ok || lt.TenantID != tenant {
		return &leave.NotFoundError{Kind: "leave type", ID: string(id)}
	}
	delete(m.types, id)
	return nil
}

func (m *Memory) CountTypes(_ context.Context, tenant leave.TenantID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, lt := range m.types {
		if lt.TenantID == tenant {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountApplicationsForType(_ context.Context, tenant leave.TenantID, id leave.LeaveTypeID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, app := range m.apps {
		if app.TenantID == tenant && app.LeaveTypeID == id {
			n++
		}
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// ApplicationStore
// -----------------------------------------------------------------------------

func (m *Memory) InsertApplication(_ context.Context, app leave.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps[app.ID] = app
	return nil
}

func (m *Memory) GetApplication(_ context.Context, tenant leave.TenantID, id leave.ApplicationID) (*leave.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.apps[id]
	if !ok || app.TenantID != tenant {
		return nil, nil
	}
	cp := app
	return &cp, nil
}

func (m *Memory) UpdateApplication(_ context.Context, app leave.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateApplicationLocked(app)
}

func (m *Memory) updateApplicationLocked(app leave.Application) error {
	existing, ok := m.apps[app.ID]
	if !ok || existing.TenantID != app.TenantID {
		return &leave.NotFoundError{Kind: "application", ID: string(app.ID)}
	}
	m.apps[app.ID] = app
	return nil
}

func (m *Memory) ListOpenForEmployee(_ context.Context, tenant leave.TenantID, employee leave.EmployeeID) ([]leave.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []leave.Application
	for _, app := range m.apps {
		if app.TenantID == tenant && app.EmployeeID == employee && app.Status.Open() {
			out = append(out, app)
		}
	}
	sortByStart(out)
	return out, nil
}

func (m *Memory) ListApprovedInYear(_ context.Context, tenant leave.TenantID, employee leave.EmployeeID, typeID leave.LeaveTypeID, year int) ([]leave.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []leave.Application
	for _, app := range m.apps {
		if app.TenantID == tenant && app.EmployeeID == employee &&
			app.LeaveTypeID == typeID && app.Status == leave.StatusApproved &&
			app.StartDate.Year() == year {
			out = append(out, app)
		}
	}
	sortByStart(out)
	return out, nil
}

func (m *Memory) ListForEmployee(_ context.Context, tenant leave.TenantID, employee leave.EmployeeID) ([]leave.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []leave.Application
	for _, app := range m.apps {
		if app.TenantID == tenant && app.EmployeeID == employee {
			out = append(out, app)
		}
	}
	// Newest first.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListPending(_ context.Context, tenant leave.TenantID) ([]leave.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []leave.Application
	for _, app := range m.apps {
		if app.TenantID == tenant && app.Status == leave.StatusPending {
			out = append(out, app)
		}
	}
	// Oldest first: HR works the queue in arrival order.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func sortByStart(apps []leave.Application) {
	sort.Slice(apps, func(i, j int) bool { return apps[i].StartDate.Before(apps[j].StartDate) })
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support, simulated with a snapshot
// plus rollback on error.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

func (tm *TxMemory) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()

	if err := fn(&txMemoryView{parent: tm}); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

func (tm *TxMemory) snapshot() memorySnapshot {
	typesCopy := make(map[leave.LeaveTypeID]leave.LeaveType, len(tm.types))
	for k, v := range tm.types {
		typesCopy[k] = v
	}
	appsCopy := make(map[leave.ApplicationID]leave.Application, len(tm.apps))
	for k, v := range tm.apps {
		appsCopy[k] = v
	}
	return memorySnapshot{types: typesCopy, apps: appsCopy}
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.types = s.types
	tm.apps = s.apps
}

type memorySnapshot struct {
	types map[leave.LeaveTypeID]leave.LeaveType
	apps  map[leave.ApplicationID]leave.Application
}

// txMemoryView runs against the parent's maps directly. The parent mutex is
// held for the duration of WithTx, so the view is single-threaded.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) ListTypes(_ context.Context, tenant leave.TenantID) ([]leave.LeaveType, error) {
	return tv.parent.listTypesLocked(tenant), nil
}

func (tv *txMemoryView) GetType(_ context.Context, tenant leave.TenantID, id leave.LeaveTypeID) (*leave.LeaveType, error) {
	lt, ok := tv.parent.types[id]
	if !ok || lt.TenantID != tenant {
		return nil, nil
	}
	cp := lt
	return &cp, nil
}

func (tv *txMemoryView) InsertType(_ context.Context, lt leave.LeaveType) error {
	return tv.parent.insertTypeLocked(lt)
}

func (tv *txMemoryView) UpdateType(_ context.Context, lt leave.LeaveType) error {
	return tv.parent.updateTypeLocked(lt)
}

func (tv *txMemoryView) DeleteType(_ context.Context, tenant leave.TenantID, id leave.LeaveTypeID) error {
	return tv.parent.deleteTypeLocked(tenant, id)
}

func (tv *txMemoryView) CountTypes(_ context.Context, tenant leave.TenantID) (int, error) {
	n := 0
	for _, lt := range tv.parent.types {
		if lt.TenantID == tenant {
			n++
		}
	}
	return n, nil
}

func (tv *txMemoryView) CountApplicationsForType(_ context.Context, tenant leave.TenantID, id leave.LeaveTypeID) (int, error) {
	n := 0
	for _, app := range tv.parent.apps {
		if app.TenantID == tenant && app.LeaveTypeID == id {
			n++
		}
	}
	return n, nil
}

func (tv *txMemoryView) InsertApplication(_ context.Context, app leave.Application) error {
	tv.parent.apps[app.ID] = app
	return nil
}

func (tv *txMemoryView) GetApplication(_ context.Context, tenant leave.TenantID, id leave.ApplicationID) (*leave.Application, error) {
	app, ok := tv.parent.apps[id]
	if !ok || app.TenantID != tenant {
		return nil, nil
	}
	cp := app
	return &cp, nil
}

func (tv *txMemoryView) UpdateApplication(_ context.Context, app leave.Application) error {
	return tv.parent.updateApplicationLocked(app)
}

func (tv *txMemoryView) ListOpenForEmployee(_ context.Context, tenant leave.TenantID, employee leave.EmployeeID) ([]leave.Application, error) {
	var out []leave.Application
	for _, app := range tv.parent.apps {
		if app.TenantID == tenant && app.EmployeeID == employee && app.Status.Open() {
			out = append(out, app)
		}
	}
	sortByStart(out)
	return out, nil
}

func (tv *txMemoryView) ListApprovedInYear(_ context.Context, tenant leave.TenantID, employee leave.EmployeeID, typeID leave.LeaveTypeID, year int) ([]leave.Application, error) {
	var out []leave.Application
	for _, app := range tv.parent.apps {
		if app.TenantID == tenant && app.EmployeeID == employee &&
			app.LeaveTypeID == typeID && app.Status == leave.StatusApproved &&
			app.StartDate.Year() == year {
			out = append(out, app)
		}
	}
	sortByStart(out)
	return out, nil
}

func (tv *txMemoryView) ListForEmployee(_ context.Context, tenant leave.TenantID, employee leave.EmployeeID) ([]leave.Application, error) {
	var out []leave.Application
	for _, app := range tv.parent.apps {
		if app.TenantID == tenant && app.EmployeeID == employee {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (tv *txMemoryView) ListPending(_ context.Context, tenant leave.TenantID) ([]leave.Application, error) {
	var out []leave.Application
	for _, app := range tv.parent.apps {
		if app.TenantID == tenant && app.Status == leave.StatusPending {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// MEMORY ACTIVITY LOG
// =============================================================================

// MemoryActivityLog collects audit entries for assertions in tests.
type MemoryActivityLog struct {
	mu      sync.Mutex
	entries []leave.AuditEntry
}

func NewMemoryActivityLog() *MemoryActivityLog {
	return &MemoryActivityLog{}
}

func (l *MemoryActivityLog) Record(_ context.Context, entry leave.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns a copy of everything recorded so far.
func (l *MemoryActivityLog) Entries() []leave.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]leave.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Activity returns the tenant's entries newest first, capped at limit.
func (l *MemoryActivityLog) Activity(_ context.Context, tenant leave.TenantID, limit int) ([]leave.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}
	var out []leave.AuditEntry
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if l.entries[i].TenantID == tenant {
			out = append(out, l.entries[i])
		}
	}
	return out, nil
}
