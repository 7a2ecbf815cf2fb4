package domain

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// PromoCode is a court-specific discount with a validity window and a
// usage cap. UsedCount only moves through a conditional increment.
type PromoCode struct {
	ID            int64        `json:"id"`
	CourtID       int64        `json:"court_id"`
	Code          string       `json:"code"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue int64        `json:"discount_value"`
	StartsAt      time.Time    `json:"starts_at"`
	EndsAt        time.Time    `json:"ends_at"`
	UsageLimit    int          `json:"usage_limit"`
	UsedCount     int          `json:"used_count"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ActiveAt reports whether now lies inside the validity window (inclusive).
func (p *PromoCode) ActiveAt(now time.Time) bool {
	return !now.Before(p.StartsAt) && !now.After(p.EndsAt)
}

func (p *PromoCode) Exhausted() bool {
	return p.UsedCount >= p.UsageLimit
}

// Discount returns the amount taken off total. Percentages are floored and
// the discount never exceeds total.
func (p *PromoCode) Discount(total int64) int64 {
	var d int64
	switch p.DiscountType {
	case DiscountPercentage:
		d = total * p.DiscountValue / 100
	case DiscountFixed:
		d = p.DiscountValue
	}

	if d > total {
		d = total
	}
	if d < 0 {
		d = 0
	}

	return d
}
