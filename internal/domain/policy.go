package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LifecyclePolicy carries the time-dependent thresholds of the reservation
// lifecycle. The zero value is not usable; start from DefaultLifecyclePolicy
// and override via configuration.
type LifecyclePolicy struct {
	// CancelCutoff is how close to the screening start cancellation is still
	// allowed. At or inside the cutoff a reservation is no longer cancellable.
	CancelCutoff time.Duration

	// EarlyRefundWindow separates the early refund tier from the late one.
	EarlyRefundWindow time.Duration

	EarlyRefundRate decimal.Decimal
	LateRefundRate  decimal.Decimal

	// Check-in opens CheckInOpensBefore ahead of the screening start and
	// closes CheckInClosesAfter past it.
	CheckInOpensBefore time.Duration
	CheckInClosesAfter time.Duration
}

func DefaultLifecyclePolicy() LifecyclePolicy {
	return LifecyclePolicy{
		CancelCutoff:       2 * time.Hour,
		EarlyRefundWindow:  24 * time.Hour,
		EarlyRefundRate:    decimal.NewFromFloat(0.9),
		LateRefundRate:     decimal.NewFromFloat(0.5),
		CheckInOpensBefore: 2 * time.Hour,
		CheckInClosesAfter: 30 * time.Minute,
	}
}

// Refund computes the amount returned when a reservation with the given total
// is cancelled untilStart before the screening begins. It is a pure function
// of (total, untilStart): the early rate applies beyond EarlyRefundWindow,
// the late rate inside (CancelCutoff, EarlyRefundWindow], and nothing is
// refunded at or inside the cutoff.
func (p LifecyclePolicy) Refund(total decimal.Decimal, untilStart time.Duration) decimal.Decimal {
	switch {
	case untilStart > p.EarlyRefundWindow:
		return total.Mul(p.EarlyRefundRate).Round(2)
	case untilStart > p.CancelCutoff:
		return total.Mul(p.LateRefundRate).Round(2)
	default:
		return decimal.Zero
	}
}

// CheckInWindow returns the [opensAt, closesAt] interval during which
// check-in is accepted for a screening starting at start.
func (p LifecyclePolicy) CheckInWindow(start time.Time) (time.Time, time.Time) {
	return start.Add(-p.CheckInOpensBefore), start.Add(p.CheckInClosesAfter)
}
