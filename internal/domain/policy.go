package domain

import "time"

// CancellationPolicy decides whether a confirmed booking may be cancelled
// and how much of its amount is returned.
type CancellationPolicy struct {
	// Cutoff is the minimum lead time before start for a cancellation.
	Cutoff time.Duration
	// FullRefundBefore is the lead time above which the whole amount is refunded.
	FullRefundBefore time.Duration
	// PartialPercent applies between Cutoff and FullRefundBefore.
	PartialPercent int64
}

func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{
		Cutoff:           2 * time.Hour,
		FullRefundBefore: 24 * time.Hour,
		PartialPercent:   50,
	}
}

func (p CancellationPolicy) Cancellable(status BookingStatus, start, now time.Time) bool {
	return status == BookingConfirmed && start.Sub(now) > p.Cutoff
}

// Refund is the amount returned when cancelling at now a booking starting at start.
func (p CancellationPolicy) Refund(total int64, start, now time.Time) int64 {
	lead := start.Sub(now)

	switch {
	case lead > p.FullRefundBefore:
		return total
	case lead > p.Cutoff:
		return total * p.PartialPercent / 100
	default:
		return 0
	}
}

func RefundStatusFor(amount int64) RefundStatus {
	if amount > 0 {
		return RefundPending
	}
	return RefundNone
}
