/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Leave types:
    GET    /api/leave-types               List categories
    POST   /api/leave-types               Create category
    POST   /api/leave-types/seed          Seed default catalog (idempotent)
    GET    /api/leave-types/{id}          Get category
    PUT    /api/leave-types/{id}          Update category
    POST   /api/leave-types/{id}/deactivate  Retire category
    DELETE /api/leave-types/{id}          Delete (fails if referenced)

  Employees:
    GET    /api/employees/{id}/balances      Balance per active type
    GET    /api/employees/{id}/applications  Application history

  Applications:
    POST   /api/applications              Submit leave request
    GET    /api/applications/pending      HR pending queue
    GET    /api/applications/{id}         Get one application
    POST   /api/applications/{id}/approve Approve (HR/admin)
    POST   /api/applications/{id}/reject  Reject (HR/admin)
    POST   /api/applications/{id}/cancel  Cancel own pending request

  Audit:
    GET    /api/activity                  Recent audit entries

ACTOR RESOLUTION:
  The engine takes an explicit Actor on every mutating call. This API
  resolves it from headers set by the fronting auth layer:
    X-Tenant-ID   (required)
    X-Actor-ID    (required)
    X-Actor-Role  (employee | hr | admin, default employee)
    X-Employee-ID (optional, defaults to X-Actor-ID)
  No authentication is performed here - see the gateway configuration.

ERROR HANDLING:
  Domain errors map to HTTP status via errors.Is against the package
  sentinels:
  - 400: validation errors, malformed input
  - 403: authorization errors
  - 404: not found
  - 409: invalid state transitions, conflicts
  - 422: policy violations (notice, span, overlap, balance)
  - 500: storage errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/leave"
)

const timeFormat = time.RFC3339

// ActivityReader lists recent audit entries for a tenant. Implemented by
// both the SQLite store and the in-memory log.
type ActivityReader interface {
	Activity(ctx context.Context, tenant leave.TenantID, limit int) ([]leave.AuditEntry, error)
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Catalog   *leave.Catalog
	Lifecycle *leave.Lifecycle
	Balances  *leave.BalanceLedger
	Activity  ActivityReader

	validate *validator.Validate
	log      *zap.Logger
}

// NewHandler creates a handler wired to the given engine components.
// activity may be nil; the activity endpoint then returns 404.
func NewHandler(catalog *leave.Catalog, lifecycle *leave.Lifecycle, balances *leave.BalanceLedger, activity ActivityReader, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Catalog:   catalog,
		Lifecycle: lifecycle,
		Balances:  balances,
		Activity:  activity,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       log.Named("api"),
	}
}

// actorFrom resolves the acting identity from request headers.
func actorFrom(r *http.Request) (leave.Actor, error) {
	tenant := r.Header.Get("X-Tenant-ID")
	if tenant == "" {
		return leave.Actor{}, errors.New("missing X-Tenant-ID header")
	}
	actorID := r.Header.Get("X-Actor-ID")
	if actorID == "" {
		return leave.Actor{}, errors.New("missing X-Actor-ID header")
	}

	role := leave.Role(r.Header.Get("X-Actor-Role"))
	switch role {
	case leave.RoleEmployee, leave.RoleHR, leave.RoleAdmin:
	case "":
		role = leave.RoleEmployee
	default:
		return leave.Actor{}, errors.New("unknown X-Actor-Role")
	}

	employeeID := r.Header.Get("X-Employee-ID")
	if employeeID == "" {
		employeeID = actorID
	}

	return leave.Actor{
		ID:         leave.ActorID(actorID),
		Role:       role,
		TenantID:   leave.TenantID(tenant),
		EmployeeID: leave.EmployeeID(employeeID),
	}, nil
}

// =============================================================================
// LEAVE TYPE HANDLERS
// =============================================================================

// ListLeaveTypes returns all leave categories for the tenant.
// GET /api/leave-types
func (h *Handler) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	types, err := h.Catalog.List(r.Context(), actor.TenantID)
	if err != nil {
		h.writeDomainError(w, "Failed to list leave types", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveTypeDTOs(types))
}

// GetLeaveType returns one leave category.
// GET /api/leave-types/{id}
func (h *Handler) GetLeaveType(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	id := leave.LeaveTypeID(chi.URLParam(r, "id"))
	lt, err := h.Catalog.Get(r.Context(), actor.TenantID, id)
	if err != nil {
		h.writeDomainError(w, "Failed to get leave type", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveTypeDTO(*lt))
}

// CreateLeaveType creates a new leave category.
// POST /api/leave-types
func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	var req CreateLeaveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	isPaid := true
	if req.IsPaid != nil {
		isPaid = *req.IsPaid
	}

	created, err := h.Catalog.Create(r.Context(), actor.TenantID, leave.LeaveType{
		Name:                req.Name,
		AnnualDays:          req.AnnualDays,
		IsPaid:              isPaid,
		CarryForwardAllowed: req.CarryForwardAllowed,
		MaxCarryForwardDays: req.MaxCarryForwardDays,
		Description:         req.Description,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to create leave type", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveTypeDTO(*created))
}

// UpdateLeaveType updates an existing leave category.
// PUT /api/leave-types/{id}
func (h *Handler) UpdateLeaveType(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	var req UpdateLeaveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	id := leave.LeaveTypeID(chi.URLParam(r, "id"))
	updated, err := h.Catalog.Update(r.Context(), actor.TenantID, id, leave.LeaveType{
		Name:                req.Name,
		AnnualDays:          req.AnnualDays,
		IsPaid:              req.IsPaid,
		CarryForwardAllowed: req.CarryForwardAllowed,
		MaxCarryForwardDays: req.MaxCarryForwardDays,
		Active:              req.Active,
		Description:         req.Description,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to update leave type", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveTypeDTO(*updated))
}

// DeactivateLeaveType retires a category without deleting its history.
// POST /api/leave-types/{id}/deactivate
func (h *Handler) DeactivateLeaveType(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	id := leave.LeaveTypeID(chi.URLParam(r, "id"))
	lt, err := h.Catalog.Deactivate(r.Context(), actor.TenantID, id)
	if err != nil {
		h.writeDomainError(w, "Failed to deactivate leave type", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveTypeDTO(*lt))
}

// DeleteLeaveType hard-deletes a category. Fails with 409 when any
// application references it.
// DELETE /api/leave-types/{id}
func (h *Handler) DeleteLeaveType(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	id := leave.LeaveTypeID(chi.URLParam(r, "id"))
	if err := h.Catalog.Delete(r.Context(), actor.TenantID, id); err != nil {
		h.writeDomainError(w, "Failed to delete leave type", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SeedLeaveTypes installs the default catalog for a fresh tenant. Calling
// it on a tenant that already has types is a no-op.
// POST /api/leave-types/seed
func (h *Handler) SeedLeaveTypes(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	types, err := h.Catalog.Seed(r.Context(), actor.TenantID)
	if err != nil {
		h.writeDomainError(w, "Failed to seed leave types", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveTypeDTOs(types))
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// GetBalances returns the employee's balance for every active leave type.
// Year defaults to the current year; override with ?year=YYYY.
// GET /api/employees/{id}/balances
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	employee := leave.EmployeeID(chi.URLParam(r, "id"))
	year := time.Now().UTC().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year parameter", err)
			return
		}
		year = parsed
	}

	balances, err := h.Balances.Balances(r.Context(), actor.TenantID, employee, year)
	if err != nil {
		h.writeDomainError(w, "Failed to compute balances", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTOs(balances))
}

// =============================================================================
// APPLICATION HANDLERS
// =============================================================================

// SubmitApplication creates a new Pending leave request.
// POST /api/applications
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	var req SubmitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	start, err := leave.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := leave.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}

	app, err := h.Lifecycle.Submit(r.Context(), actor,
		leave.EmployeeID(req.EmployeeID), leave.LeaveTypeID(req.LeaveTypeID),
		start, end, req.Reason)
	if err != nil {
		h.writeDomainError(w, "Failed to submit application", err)
		return
	}
	writeJSON(w, http.StatusCreated, toApplicationDTO(*app))
}

// GetApplication returns one application.
// GET /api/applications/{id}
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	id := leave.ApplicationID(chi.URLParam(r, "id"))
	app, err := h.Lifecycle.Get(r.Context(), actor.TenantID, id)
	if err != nil {
		h.writeDomainError(w, "Failed to get application", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTO(*app))
}

// ListEmployeeApplications returns the employee's history, newest first.
// GET /api/employees/{id}/applications
func (h *Handler) ListEmployeeApplications(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	employee := leave.EmployeeID(chi.URLParam(r, "id"))
	apps, err := h.Lifecycle.ListForEmployee(r.Context(), actor.TenantID, employee)
	if err != nil {
		h.writeDomainError(w, "Failed to list applications", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTOs(apps))
}

// ListPendingApplications returns the tenant's review queue, oldest first.
// GET /api/applications/pending
func (h *Handler) ListPendingApplications(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	apps, err := h.Lifecycle.ListPending(r.Context(), actor.TenantID)
	if err != nil {
		h.writeDomainError(w, "Failed to list pending applications", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTOs(apps))
}

// ApproveApplication approves a pending request.
// POST /api/applications/{id}/approve
func (h *Handler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.DecisionApprove)
}

// RejectApplication rejects a pending request.
// POST /api/applications/{id}/reject
func (h *Handler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.DecisionReject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, decision leave.Decision) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	// Body is optional; an empty body means no comments.
	var req DecideApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	id := leave.ApplicationID(chi.URLParam(r, "id"))
	app, err := h.Lifecycle.Decide(r.Context(), actor, id, decision, req.Comments)
	if err != nil {
		h.writeDomainError(w, "Failed to decide application", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTO(*app))
}

// CancelApplication cancels the caller's own pending request.
// POST /api/applications/{id}/cancel
func (h *Handler) CancelApplication(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	id := leave.ApplicationID(chi.URLParam(r, "id"))
	app, err := h.Lifecycle.Cancel(r.Context(), actor, id)
	if err != nil {
		h.writeDomainError(w, "Failed to cancel application", err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationDTO(*app))
}

// =============================================================================
// ACTIVITY HANDLERS
// =============================================================================

// ListActivity returns the tenant's newest audit entries.
// GET /api/activity?limit=N
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	if h.Activity == nil {
		writeError(w, http.StatusNotFound, "Activity log not configured", nil)
		return
	}

	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor headers", err)
		return
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit parameter", err)
			return
		}
		limit = parsed
	}

	entries, err := h.Activity.Activity(r.Context(), actor.TenantID, limit)
	if err != nil {
		h.writeDomainError(w, "Failed to list activity", err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityDTOs(entries))
}

// Health is a liveness probe.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeDomainError maps engine errors to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, leave.ErrValidation):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, leave.ErrUnauthorized):
		writeError(w, http.StatusForbidden, message, err)
	case errors.Is(err, leave.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, leave.ErrInvalidState), errors.Is(err, leave.ErrConflict):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, leave.ErrPolicy):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	default:
		h.log.Error("internal error", zap.String("message", message), zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
