package pricing

import (
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
)

// Breakdown is the full price computation for a cart. PayableAmount may be
// negative: gift card deductions are never floored.
type Breakdown struct {
	TotalAmount     float64        `json:"total_amount"`
	TotalQuantity   int            `json:"total_quantity"`
	HandlingFee     int            `json:"handling_fee"`
	DeliveryCharges int            `json:"delivery_charges"`
	GSTCharges      float64        `json:"gst_charges"`
	Discount        RandomDiscount `json:"discount"`
	GiftCardPrice   float64        `json:"gift_card_price"`
	PromoCodePrice  float64        `json:"promo_code_price"`
	PayableAmount   float64        `json:"payable_amount"`
}

// GiftCardDeduction validates an attached gift card and returns its full
// amount as a flat deduction. There is no partial redemption. A nil card
// deducts nothing.
func GiftCardDeduction(card *domain.GiftCard, now time.Time) (float64, error) {
	if card == nil {
		return 0, nil
	}
	if card.IsRedeemed {
		return 0, apperrors.AlreadyRedeemed("gift card has already been redeemed")
	}
	if card.IsExpired(now) {
		return 0, apperrors.Expired("gift card has expired")
	}
	return card.Amount, nil
}

// Compute assembles the payable-amount breakdown for a resolved cart.
// card and code are the cart's attached vouchers, already fetched by the
// caller; either may be nil.
//
// Lifecycle failures on either voucher abort the computation with an error.
// A promo code that is merely ineligible for this cart's shape aborts it
// with no result at all: Compute returns (nil, nil), which callers must
// treat as distinct from a zero-discount breakdown.
func (e *Engine) Compute(lines []ResolvedLine, card *domain.GiftCard, code *domain.PromoCode, now time.Time) (*Breakdown, error) {
	giftCardPrice, err := GiftCardDeduction(card, now)
	if err != nil {
		return nil, err
	}

	totals := Aggregate(lines)

	b := &Breakdown{
		TotalAmount:     totals.Amount,
		TotalQuantity:   totals.Quantity,
		HandlingFee:     e.HandlingFee(),
		DeliveryCharges: e.DeliveryCharge(),
		GSTCharges:      e.GST(totals.Amount),
		Discount:        e.RandomDiscount(totals.Amount),
		GiftCardPrice:   giftCardPrice,
	}

	if code != nil {
		report, err := e.Evaluate(code, lines, totals, now)
		if err != nil {
			return nil, err
		}
		if !report.Eligible {
			return nil, nil
		}
		b.PromoCodePrice = Discount(code, totals, report)
	}

	b.PayableAmount = Round2(totals.Amount +
		float64(b.HandlingFee) +
		float64(b.DeliveryCharges) +
		b.GSTCharges -
		b.Discount.Amount -
		b.GiftCardPrice -
		b.PromoCodePrice)

	return b, nil
}
