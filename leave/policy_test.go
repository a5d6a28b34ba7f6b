package leave_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(y, m, d int) leave.Date {
	return leave.NewDate(y, time.Month(m), d)
}

// =============================================================================
// PURE RULE TESTS
// =============================================================================

func TestDateOrdered(t *testing.T) {
	assert.True(t, leave.DateOrdered(date(2024, 3, 10), date(2024, 3, 12)))
	assert.True(t, leave.DateOrdered(date(2024, 3, 10), date(2024, 3, 10)), "single-day request is ordered")
	assert.False(t, leave.DateOrdered(date(2024, 3, 12), date(2024, 3, 10)))
}

func TestMinimumNotice_BoundaryDays(t *testing.T) {
	// GIVEN: The default policy requiring 2 full days of notice
	// WHEN: Start dates straddle today+2
	// THEN: Exactly today+2 passes, anything earlier fails

	p := leave.DefaultSubmissionPolicy()
	today := date(2024, 3, 1)

	assert.False(t, p.MeetsMinimumNotice(today, today), "starting today is not allowed")
	assert.False(t, p.MeetsMinimumNotice(today, today.AddDays(1)), "tomorrow is one day short")
	assert.True(t, p.MeetsMinimumNotice(today, today.AddDays(2)), "today+2 is the earliest allowed start")
	assert.True(t, p.MeetsMinimumNotice(today, today.AddDays(30)))
}

func TestMaximumSpan_InclusiveCount(t *testing.T) {
	// GIVEN: The default 30-day span cap, counted inclusively
	p := leave.DefaultSubmissionPolicy()
	start := date(2024, 6, 1)

	// June 1 .. June 30 is exactly 30 days
	assert.True(t, p.WithinMaximumSpan(start, date(2024, 6, 30)))
	// June 1 .. July 1 is 31 days
	assert.False(t, p.WithinMaximumSpan(start, date(2024, 7, 1)))
	assert.True(t, p.WithinMaximumSpan(start, start), "single day always fits")
}

func TestSufficientBalance(t *testing.T) {
	assert.True(t, leave.SufficientBalance(leave.NewDays(5), leave.NewDays(5)), "exact fit allowed")
	assert.True(t, leave.SufficientBalance(leave.NewDays(5), leave.NewDays(3)))
	assert.False(t, leave.SufficientBalance(leave.NewDays(2), leave.NewDays(3)))
	assert.False(t, leave.SufficientBalance(leave.ZeroDays(), leave.NewDays(1)))
}

// =============================================================================
// COMPOSED WINDOW VALIDATION
// =============================================================================

func TestValidateWindow_RuleOrder(t *testing.T) {
	// GIVEN: A window failing both date order and notice
	// WHEN: Validated
	// THEN: The date-order violation is reported first, as a validation error

	p := leave.DefaultSubmissionPolicy()
	today := date(2024, 3, 1)

	err := p.ValidateWindow(today, date(2024, 3, 2), date(2024, 3, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrValidation), "reversed dates are a validation error, not policy")
}

func TestValidateWindow_NoticeViolation(t *testing.T) {
	p := leave.DefaultSubmissionPolicy()
	today := date(2024, 3, 1)

	err := p.ValidateWindow(today, today.AddDays(1), today.AddDays(3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrPolicy))

	var policyErr *leave.PolicyError
	require.True(t, errors.As(err, &policyErr))
	assert.Equal(t, leave.RuleNotice, policyErr.Rule)
}

func TestValidateWindow_SpanViolation(t *testing.T) {
	p := leave.DefaultSubmissionPolicy()
	today := date(2024, 3, 1)

	err := p.ValidateWindow(today, date(2024, 4, 1), date(2024, 5, 2))
	require.Error(t, err)

	var policyErr *leave.PolicyError
	require.True(t, errors.As(err, &policyErr))
	assert.Equal(t, leave.RuleSpan, policyErr.Rule)
}

func TestValidateWindow_Valid(t *testing.T) {
	p := leave.DefaultSubmissionPolicy()
	today := date(2024, 3, 1)

	assert.NoError(t, p.ValidateWindow(today, date(2024, 3, 10), date(2024, 3, 14)))
}

// =============================================================================
// INCLUSIVE DAY COUNTING
// =============================================================================

func TestInclusiveDays(t *testing.T) {
	assert.Equal(t, 1, leave.InclusiveDays(date(2024, 3, 10), date(2024, 3, 10)))
	assert.Equal(t, 3, leave.InclusiveDays(date(2024, 3, 10), date(2024, 3, 12)))
	// Calendar days, no weekend or holiday filtering: Fri..Mon is 4 days
	assert.Equal(t, 4, leave.InclusiveDays(date(2024, 3, 8), date(2024, 3, 11)))
	// Across a month boundary
	assert.Equal(t, 2, leave.InclusiveDays(date(2024, 2, 29), date(2024, 3, 1)))
}
