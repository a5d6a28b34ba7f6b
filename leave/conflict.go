/*
conflict.go - Date-interval overlap detection

PURPOSE:
  Determines whether a candidate date range collides with any of the
  employee's existing open (Pending or Approved) applications. An employee
  can never hold two open applications sharing a calendar day, regardless of
  leave type.

OVERLAP TEST:
  Two closed intervals [a1, a2] and [b1, b2] intersect iff

    a1 <= b2  AND  a2 >= b1

  This covers all six relative orderings: disjoint before/after, one inside
  the other (both ways), partial overlap on either side, identical, and
  touching at a single shared day. A shared boundary day IS an overlap,
  matching the inclusive-day semantics of DaysRequested.

SEE ALSO:
  - policy.go:    The other submission rules
  - lifecycle.go: Re-runs the check inside the submit transaction
*/
package leave

import "context"

// IntervalsOverlap reports whether the closed intervals [aStart, aEnd] and
// [bStart, bEnd] share at least one day. Symmetric in its arguments.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd Date) bool {
	return aStart.BeforeOrEqual(bEnd) && aEnd.AfterOrEqual(bStart)
}

// ConflictDetector checks candidate intervals against an employee's open
// applications.
type ConflictDetector struct {
	Apps ApplicationStore
}

// Overlaps reports whether [start, end] intersects any Pending or Approved
// application of the employee. exclude, when non-empty, ignores that
// application - used when re-validating an existing record.
func (d *ConflictDetector) Overlaps(
	ctx context.Context,
	tenant TenantID,
	employee EmployeeID,
	start, end Date,
	exclude ApplicationID,
) (bool, error) {
	open, err := d.Apps.ListOpenForEmployee(ctx, tenant, employee)
	if err != nil {
		return false, err
	}

	for _, app := range open {
		if exclude != "" && app.ID == exclude {
			continue
		}
		if IntervalsOverlap(app.StartDate, app.EndDate, start, end) {
			return true, nil
		}
	}
	return false, nil
}
