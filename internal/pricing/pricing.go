// Package pricing implements the cart pricing and promotion-eligibility
// engine: cost aggregation, fee and tax generation, the storewide random
// discount, promo code eligibility evaluation and the final payable-amount
// breakdown.
//
// The engine is pure computation. Fetching carts, books and vouchers is the
// service layer's job; everything here works on already resolved records.
package pricing

import (
	"math"
	"math/rand/v2"

	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// Source draws bounded random integers. The default source is backed by
// math/rand/v2; tests inject a deterministic stub.
type Source interface {
	// IntN returns a random integer in [0, n).
	IntN(n int) int
}

type mathSource struct{}

func (mathSource) IntN(n int) int { return rand.IntN(n) }

// Engine computes price breakdowns using the configured pricing knobs and a
// random source.
type Engine struct {
	cfg config.PricingConfig
	src Source
}

// NewEngine creates an Engine. A nil src falls back to math/rand/v2.
func NewEngine(cfg config.PricingConfig, src Source) *Engine {
	if src == nil {
		src = mathSource{}
	}
	return &Engine{cfg: cfg, src: src}
}

// ResolvedLine pairs a cart line with its resolved catalog record. Book may
// be nil when the reference is dangling; such lines contribute zero amount
// but still count toward the quantity.
type ResolvedLine struct {
	Book     *domain.Book
	Quantity int
}

// Totals is the cost and quantity aggregate of a cart.
type Totals struct {
	Amount   float64 `json:"total_amount"`
	Quantity int     `json:"total_quantity"`
}

// Aggregate sums line costs and quantities. No side effects.
func Aggregate(lines []ResolvedLine) Totals {
	var t Totals
	for _, line := range lines {
		if line.Book != nil {
			t.Amount += line.Book.Price * float64(line.Quantity)
		}
		t.Quantity += line.Quantity
	}
	return t
}

// HandlingFee draws a fresh random handling fee. Never cached; every pricing
// call regenerates it.
func (e *Engine) HandlingFee() int {
	return e.src.IntN(e.cfg.FeeBound)
}

// DeliveryCharge draws a fresh random delivery charge, independent of the
// handling fee.
func (e *Engine) DeliveryCharge() int {
	return e.src.IntN(e.cfg.FeeBound)
}

// GST computes the tax charge on a cart total, rounded to two decimals.
func (e *Engine) GST(totalAmount float64) float64 {
	return Round2(totalAmount * e.cfg.GSTPercent / 100)
}

// RandomDiscountKind tags the storewide random discount variant.
type RandomDiscountKind string

const (
	// RandomDiscountAmount is a flat deduction (the capped case).
	RandomDiscountAmount RandomDiscountKind = "amount"
	// RandomDiscountPercent carries both the drawn percent and the amount
	// it computed to.
	RandomDiscountPercent RandomDiscountKind = "percent"
)

// RandomDiscount is the storewide randomized promotional deduction. It is
// always applied, independent of any promo code.
type RandomDiscount struct {
	Kind    RandomDiscountKind `json:"kind"`
	Percent int                `json:"percent,omitempty"`
	Amount  float64            `json:"amount"`
}

// RandomDiscount draws a random percent, computes the floored discount and
// caps it at the configured flat maximum.
func (e *Engine) RandomDiscount(totalAmount float64) RandomDiscount {
	percent := e.src.IntN(e.cfg.DiscountPercentBound)
	calculated := math.Floor(totalAmount * float64(percent) / 100)
	if calculated > e.cfg.DiscountCap {
		return RandomDiscount{Kind: RandomDiscountAmount, Amount: e.cfg.DiscountCap}
	}
	return RandomDiscount{Kind: RandomDiscountPercent, Percent: percent, Amount: calculated}
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
