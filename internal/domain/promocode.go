package domain

import "time"

// DiscountKind selects how a promo code's discount is computed.
type DiscountKind string

const (
	// DiscountValue subtracts a flat amount.
	DiscountValue DiscountKind = "value"
	// DiscountPercent subtracts a percentage of the eligible total.
	DiscountPercent DiscountKind = "percent"
	// DiscountPercentCapped subtracts a percentage, capped at MaxValue.
	DiscountPercentCapped DiscountKind = "percentage_with_max_value"
)

// DiscountRule is the tagged discount definition on a promo code. Which
// fields are meaningful depends on Kind: Value for flat discounts, Percent
// for percentage ones and additionally MaxValue for the capped variant.
type DiscountRule struct {
	Kind     DiscountKind `json:"kind"`
	Value    float64      `json:"value,omitempty"`
	Percent  float64      `json:"percent,omitempty"`
	MaxValue float64      `json:"max_value,omitempty"`
}

// Eligibility narrows which carts a promo code applies to. Zero values mean
// the constraint is absent.
type Eligibility struct {
	CategoryIDs  []string `json:"category_ids,omitempty"`
	AuthorIDs    []string `json:"author_ids,omitempty"`
	MinValue     float64  `json:"min_value,omitempty"`
	MinItemCount int      `json:"min_item_count,omitempty"`
}

// Usage counts how many times one user has consumed this code.
type Usage struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

// PromoCode is a reusable discount voucher, looked up by its unique name.
type PromoCode struct {
	Record
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Discount     DiscountRule `json:"discount"`
	Eligibility  *Eligibility `json:"eligibility,omitempty"`
	UsageLimit   int          `json:"usage_limit,omitempty"`
	CurrencyCode Currency     `json:"currency_code"`
	IssuedBy     IssuedBy     `json:"issued_by"`
	ExpiresAt    int64        `json:"expires_at,omitempty"`
	Usages       []Usage      `json:"usages,omitempty"`
	Status       Status       `json:"status"`
	DeletedBy    *DeletedBy   `json:"deleted_by,omitempty"`
}

// IsExpired reports whether the code's expiry instant has passed. Codes
// without an expiry never expire.
func (p *PromoCode) IsExpired(now time.Time) bool {
	return p.ExpiresAt != 0 && p.ExpiresAt < now.UnixMilli()
}

// TotalUsage sums consumption across all users.
func (p *PromoCode) TotalUsage() int {
	total := 0
	for _, u := range p.Usages {
		total += u.Count
	}
	return total
}

// UsageExhausted reports whether the shared usage limit has been reached.
// A zero limit means unlimited use.
func (p *PromoCode) UsageExhausted() bool {
	return p.UsageLimit > 0 && p.TotalUsage() >= p.UsageLimit
}
