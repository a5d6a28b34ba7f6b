/*
balance.go - Derived balance computation

PURPOSE:
  Computes, for an employee / leave type / year triple, the entitled,
  carried-in, used, and remaining day amounts. Balance is never stored: it
  is recomputed from the leave type configuration and the employee's
  approved applications on every read, so it can never drift out of sync.

CARRY-FORWARD:
  When a type allows carry-forward, the prior year's unused remainder rolls
  in, capped at MaxCarryForwardDays. The lookback is exactly one year: the
  prior year's balance is computed with zero carry-in, so unused days never
  compound across multiple years.

PENDING DAYS:
  Only Approved applications consume balance. Pending requests do not
  reserve days; HR is expected to read the balance before deciding. (The
  source system behaves this way; see DESIGN.md for the trade-off.)

ANOMALIES:
  remaining is clamped at zero. used > entitled can only happen through
  out-of-band data edits; it is logged as a data-integrity warning, never
  surfaced as an error or a negative number.

SEE ALSO:
  - catalog.go:   The leave type configuration this reads
  - lifecycle.go: Calls BalanceFor during submission
*/
package leave

import (
	"context"

	"go.uber.org/zap"
)

// BalanceLedger computes derived balances. It holds no state of its own;
// correctness depends on the store giving a consistent view of approved
// applications.
type BalanceLedger struct {
	Store Store
	Log   *zap.Logger
}

func NewBalanceLedger(store Store, log *zap.Logger) *BalanceLedger {
	if log == nil {
		log = zap.NewNop()
	}
	return &BalanceLedger{Store: store, Log: log.Named("leave.balance")}
}

// Balances returns one Balance per active leave type of the tenant.
func (l *BalanceLedger) Balances(ctx context.Context, tenant TenantID, employee EmployeeID, year int) ([]Balance, error) {
	types, err := l.Store.ListTypes(ctx, tenant)
	if err != nil {
		return nil, err
	}

	var balances []Balance
	for _, lt := range types {
		if !lt.Active {
			continue
		}
		b, err := l.BalanceFor(ctx, employee, lt, year)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, nil
}

// BalanceFor computes the balance for a single leave type.
func (l *BalanceLedger) BalanceFor(ctx context.Context, employee EmployeeID, lt LeaveType, year int) (Balance, error) {
	return l.balanceFor(ctx, employee, lt, year, true)
}

// balanceFor does the arithmetic. withCarry=false is the one-level-back
// recursion: the prior year is computed without its own carry-in.
func (l *BalanceLedger) balanceFor(ctx context.Context, employee EmployeeID, lt LeaveType, year int, withCarry bool) (Balance, error) {
	used, err := l.usedIn(ctx, employee, lt, year)
	if err != nil {
		return Balance{}, err
	}

	carriedIn := ZeroDays()
	if withCarry && lt.CarryForwardAllowed {
		prior, err := l.balanceFor(ctx, employee, lt, year-1, false)
		if err != nil {
			return Balance{}, err
		}
		carriedIn = prior.Remaining.Min(NewDays(lt.MaxCarryForwardDays))
	}

	entitled := NewDays(lt.AnnualDays).Add(carriedIn)
	remaining := entitled.Sub(used)
	if remaining.IsNegative() {
		// Data anomaly: more approved days than entitlement. Report zero,
		// flag for operational follow-up.
		l.Log.Warn("negative remaining balance clamped",
			zap.String("tenant_id", string(lt.TenantID)),
			zap.String("employee_id", string(employee)),
			zap.String("leave_type", lt.Name),
			zap.Int("year", year),
			zap.String("entitled", entitled.String()),
			zap.String("used", used.String()),
		)
		remaining = ZeroDays()
	}

	return Balance{
		Type:      lt,
		Year:      year,
		Entitled:  entitled,
		CarriedIn: carriedIn,
		Used:      used,
		Remaining: remaining,
	}, nil
}

func (l *BalanceLedger) usedIn(ctx context.Context, employee EmployeeID, lt LeaveType, year int) (Days, error) {
	approved, err := l.Store.ListApprovedInYear(ctx, lt.TenantID, employee, lt.ID, year)
	if err != nil {
		return Days{}, err
	}

	used := ZeroDays()
	for _, app := range approved {
		used = used.Add(NewDays(app.DaysRequested))
	}
	return used, nil
}
