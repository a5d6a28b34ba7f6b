/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  them through a shared validator instance before touching domain logic.
  Domain rules (notice, span, balance, overlap) are NOT duplicated here -
  those belong to the engine.

SEE ALSO:
  - handlers.go: Uses these types
  - leave/types.go: Domain model these map from
*/
package api

import (
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateLeaveTypeRequest is the body for creating a leave category.
type CreateLeaveTypeRequest struct {
	Name                string `json:"name" validate:"required,max=100"`
	AnnualDays          int    `json:"annual_days" validate:"gte=0,lte=365"`
	IsPaid              *bool  `json:"is_paid"`
	CarryForwardAllowed bool   `json:"carry_forward_allowed"`
	MaxCarryForwardDays int    `json:"max_carry_forward_days" validate:"gte=0"`
	Description         string `json:"description" validate:"max=500"`
}

// UpdateLeaveTypeRequest is the body for updating a leave category.
type UpdateLeaveTypeRequest struct {
	Name                string `json:"name" validate:"required,max=100"`
	AnnualDays          int    `json:"annual_days" validate:"gte=0,lte=365"`
	IsPaid              bool   `json:"is_paid"`
	CarryForwardAllowed bool   `json:"carry_forward_allowed"`
	MaxCarryForwardDays int    `json:"max_carry_forward_days" validate:"gte=0"`
	Active              bool   `json:"active"`
	Description         string `json:"description" validate:"max=500"`
}

// SubmitApplicationRequest is the body for submitting a leave request.
type SubmitApplicationRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	LeaveTypeID string `json:"leave_type_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason      string `json:"reason" validate:"max=500"`
}

// DecideApplicationRequest carries optional reviewer comments for an
// approve or reject action.
type DecideApplicationRequest struct {
	Comments string `json:"comments" validate:"max=500"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// LeaveTypeDTO represents a leave category in API responses.
type LeaveTypeDTO struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	AnnualDays          int    `json:"annual_days"`
	IsPaid              bool   `json:"is_paid"`
	CarryForwardAllowed bool   `json:"carry_forward_allowed"`
	MaxCarryForwardDays int    `json:"max_carry_forward_days"`
	Active              bool   `json:"active"`
	Description         string `json:"description,omitempty"`
	CreatedAt           string `json:"created_at,omitempty"`
	UpdatedAt           string `json:"updated_at,omitempty"`
}

// ApplicationDTO represents a leave application in API responses.
type ApplicationDTO struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	LeaveTypeID      string  `json:"leave_type_id"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	DaysRequested    int     `json:"days_requested"`
	Reason           string  `json:"reason,omitempty"`
	Status           string  `json:"status"`
	DecidedBy        *string `json:"decided_by,omitempty"`
	DecisionComments *string `json:"decision_comments,omitempty"`
	CreatedAt        string  `json:"created_at"`
	DecidedAt        *string `json:"decided_at,omitempty"`
}

// BalanceDTO represents one leave-type balance for an employee and year.
type BalanceDTO struct {
	LeaveTypeID   string  `json:"leave_type_id"`
	LeaveTypeName string  `json:"leave_type_name"`
	Year          int     `json:"year"`
	Entitled      float64 `json:"entitled"`
	CarriedIn     float64 `json:"carried_in"`
	Used          float64 `json:"used"`
	Remaining     float64 `json:"remaining"`
}

// ActivityDTO represents one audit entry.
type ActivityDTO struct {
	ActorID     string `json:"actor_id"`
	Event       string `json:"event"`
	Description string `json:"description,omitempty"`
	At          string `json:"at"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func toLeaveTypeDTO(lt leave.LeaveType) LeaveTypeDTO {
	return LeaveTypeDTO{
		ID:                  string(lt.ID),
		Name:                lt.Name,
		AnnualDays:          lt.AnnualDays,
		IsPaid:              lt.IsPaid,
		CarryForwardAllowed: lt.CarryForwardAllowed,
		MaxCarryForwardDays: lt.MaxCarryForwardDays,
		Active:              lt.Active,
		Description:         lt.Description,
		CreatedAt:           lt.CreatedAt.Format(timeFormat),
		UpdatedAt:           lt.UpdatedAt.Format(timeFormat),
	}
}

func toLeaveTypeDTOs(types []leave.LeaveType) []LeaveTypeDTO {
	dtos := make([]LeaveTypeDTO, 0, len(types))
	for _, lt := range types {
		dtos = append(dtos, toLeaveTypeDTO(lt))
	}
	return dtos
}

func toApplicationDTO(app leave.Application) ApplicationDTO {
	dto := ApplicationDTO{
		ID:            string(app.ID),
		EmployeeID:    string(app.EmployeeID),
		LeaveTypeID:   string(app.LeaveTypeID),
		StartDate:     app.StartDate.String(),
		EndDate:       app.EndDate.String(),
		DaysRequested: app.DaysRequested,
		Reason:        app.Reason,
		Status:        string(app.Status),
		CreatedAt:     app.CreatedAt.Format(timeFormat),
	}
	if app.DecidedBy != nil {
		s := string(*app.DecidedBy)
		dto.DecidedBy = &s
	}
	dto.DecisionComments = app.DecisionComments
	if app.DecidedAt != nil {
		s := app.DecidedAt.Format(timeFormat)
		dto.DecidedAt = &s
	}
	return dto
}

func toApplicationDTOs(apps []leave.Application) []ApplicationDTO {
	dtos := make([]ApplicationDTO, 0, len(apps))
	for _, app := range apps {
		dtos = append(dtos, toApplicationDTO(app))
	}
	return dtos
}

func toBalanceDTO(b leave.Balance) BalanceDTO {
	return BalanceDTO{
		LeaveTypeID:   string(b.Type.ID),
		LeaveTypeName: b.Type.Name,
		Year:          b.Year,
		Entitled:      b.Entitled.Float64(),
		CarriedIn:     b.CarriedIn.Float64(),
		Used:          b.Used.Float64(),
		Remaining:     b.Remaining.Float64(),
	}
}

func toBalanceDTOs(balances []leave.Balance) []BalanceDTO {
	dtos := make([]BalanceDTO, 0, len(balances))
	for _, b := range balances {
		dtos = append(dtos, toBalanceDTO(b))
	}
	return dtos
}

func toActivityDTOs(entries []leave.AuditEntry) []ActivityDTO {
	dtos := make([]ActivityDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, ActivityDTO{
			ActorID:     string(e.ActorID),
			Event:       string(e.Event),
			Description: e.Description,
			At:          e.At.Format(timeFormat),
		})
	}
	return dtos
}
