/*
policy.go - Pure submission rules

PURPOSE:
  The policy checks shared by submission and balance reads. All functions
  here are pure: no I/O, no clock access - "today" is a parameter.

RULE ORDER:
  The submission path composes the checks in a fixed order:

    date order -> notice -> span -> overlap -> balance

  The first failing check short-circuits with its specific error. The order
  is load-bearing: overlap and balance hit the store and assume the cheap
  structural checks already passed, so callers must not reorder.

SEE ALSO:
  - lifecycle.go: Composes these with ConflictDetector and BalanceLedger
  - conflict.go:  The overlap rule
*/
package leave

// Default policy parameters. The surrounding application may tighten or
// relax them per deployment via SubmissionPolicy.
const (
	DefaultMinNoticeDays = 2
	DefaultMaxSpanDays   = 30
)

// SubmissionPolicy holds the tunable submission rules.
type SubmissionPolicy struct {
	// MinNoticeDays: the start date must be at least this many days after
	// "today". 2 means today+2 is the earliest permitted start.
	MinNoticeDays int

	// MaxSpanDays caps the inclusive day count of a single request.
	MaxSpanDays int
}

func DefaultSubmissionPolicy() SubmissionPolicy {
	return SubmissionPolicy{
		MinNoticeDays: DefaultMinNoticeDays,
		MaxSpanDays:   DefaultMaxSpanDays,
	}
}

// DateOrdered reports whether end >= start.
func DateOrdered(start, end Date) bool {
	return end.AfterOrEqual(start)
}

// MeetsMinimumNotice reports whether start is at least MinNoticeDays after
// today.
func (p SubmissionPolicy) MeetsMinimumNotice(today, start Date) bool {
	return start.AfterOrEqual(today.AddDays(p.MinNoticeDays))
}

// WithinMaximumSpan reports whether the inclusive day count of [start, end]
// is at most MaxSpanDays.
func (p SubmissionPolicy) WithinMaximumSpan(start, end Date) bool {
	return InclusiveDays(start, end) <= p.MaxSpanDays
}

// SufficientBalance reports whether requested fits in remaining.
func SufficientBalance(remaining, requested Days) bool {
	return !requested.GreaterThan(remaining)
}

// ValidateWindow runs the structural and pure policy checks in order:
// date order, then notice, then span. It returns the first failure.
// Overlap and balance follow in the submission path (lifecycle.go).
func (p SubmissionPolicy) ValidateWindow(today, start, end Date) error {
	if start.IsZero() || end.IsZero() {
		return &ValidationError{Field: "dates", Reason: "start and end dates are required"}
	}
	if !DateOrdered(start, end) {
		return &ValidationError{Field: "end_date", Reason: "end date is before start date"}
	}
	if !p.MeetsMinimumNotice(today, start) {
		return &PolicyError{Rule: RuleNotice, Message: "insufficient notice"}
	}
	if !p.WithinMaximumSpan(start, end) {
		return &PolicyError{Rule: RuleSpan, Message: "exceeds maximum span"}
	}
	return nil
}
