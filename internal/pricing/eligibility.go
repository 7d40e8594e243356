package pricing

import (
	"fmt"
	"slices"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
)

// Criterion is one pass/fail entry of an eligibility report. A nil Criterion
// on the report means the promo code carries no such constraint.
type Criterion struct {
	Applicable bool   `json:"is_applicable"`
	Message    string `json:"message,omitempty"`
}

// MatchCriterion extends Criterion with the matched ids and the summed unit
// prices of the cart lines that matched.
type MatchCriterion struct {
	Criterion
	MatchedIDs   []string `json:"matched_ids,omitempty"`
	MatchedPrice float64  `json:"matched_price,omitempty"`
}

// Report is the structured per-criterion outcome of evaluating a promo code
// against a cart. Expiry and usage-limit gates never appear here; those fail
// hard as errors before a report is produced.
type Report struct {
	Eligible bool            `json:"eligible"`
	Amount   *Criterion      `json:"amount,omitempty"`
	Quantity *Criterion      `json:"quantity,omitempty"`
	Category *MatchCriterion `json:"category,omitempty"`
	Author   *MatchCriterion `json:"author,omitempty"`
}

// FailureReason returns the first human-readable criterion failure, checked
// in priority order: amount, quantity, author, category. Empty when the
// report is eligible.
func (r *Report) FailureReason() string {
	for _, c := range []*Criterion{r.Amount, r.Quantity} {
		if c != nil && !c.Applicable && c.Message != "" {
			return c.Message
		}
	}
	for _, m := range []*MatchCriterion{r.Author, r.Category} {
		if m != nil && !m.Applicable && m.Message != "" {
			return m.Message
		}
	}
	return ""
}

// Evaluate checks a promo code against a resolved cart. Lifecycle gates
// (expiry, usage limit) raise immediately; cart-shape criteria (minimum
// amount, minimum item count, category and author scope) fail soft and are
// reported per criterion. Every soft criterion is evaluated, no
// short-circuiting, so the report is complete for suggestion UIs.
func (e *Engine) Evaluate(code *domain.PromoCode, lines []ResolvedLine, totals Totals, now time.Time) (*Report, error) {
	if code.IsExpired(now) {
		return nil, apperrors.Expired("promo code has expired")
	}
	if code.UsageExhausted() {
		return nil, apperrors.UsageLimitExceeded("promo code usage limit has been reached")
	}

	report := &Report{Eligible: true}
	el := code.Eligibility
	if el == nil {
		return report, nil
	}

	if el.MinValue > 0 {
		c := &Criterion{Applicable: totals.Amount >= el.MinValue}
		if !c.Applicable {
			c.Message = fmt.Sprintf("cart value must be at least %.2f to use this code", el.MinValue)
			report.Eligible = false
		}
		report.Amount = c
	}

	if el.MinItemCount > 0 {
		c := &Criterion{Applicable: totals.Quantity >= el.MinItemCount}
		if !c.Applicable {
			c.Message = fmt.Sprintf("cart must contain at least %d items to use this code", el.MinItemCount)
			report.Eligible = false
		}
		report.Quantity = c
	}

	if len(el.CategoryIDs) > 0 {
		m := matchLines(el.CategoryIDs, lines, func(b *domain.Book) string { return b.CategoryID })
		if !m.Applicable {
			m.Message = "none of the cart items belong to an eligible category"
			report.Eligible = false
		}
		report.Category = m
	}

	if len(el.AuthorIDs) > 0 {
		m := matchLines(el.AuthorIDs, lines, func(b *domain.Book) string { return b.AuthorID })
		if !m.Applicable {
			m.Message = "none of the cart items are by an eligible author"
			report.Eligible = false
		}
		report.Author = m
	}

	return report, nil
}

// matchLines intersects an eligible id set with the cart's lines. The
// matched price is the sum of unit prices of matching lines, counted once
// per line regardless of quantity.
func matchLines(eligibleIDs []string, lines []ResolvedLine, idOf func(*domain.Book) string) *MatchCriterion {
	m := &MatchCriterion{}
	for _, line := range lines {
		if line.Book == nil {
			continue
		}
		id := idOf(line.Book)
		if id == "" || !slices.Contains(eligibleIDs, id) {
			continue
		}
		if !slices.Contains(m.MatchedIDs, id) {
			m.MatchedIDs = append(m.MatchedIDs, id)
		}
		m.MatchedPrice += line.Book.Price
	}
	m.Applicable = len(m.MatchedIDs) > 0
	return m
}

// Discount computes the deduction for a promo code, given the eligibility
// report from Evaluate. Precedence: an applicable author match with a
// positive matched price wins, then an applicable category match, then the
// whole-cart total. Flat "value" codes deduct their fixed value regardless
// of which base matched; unknown kinds deduct nothing.
func Discount(code *domain.PromoCode, totals Totals, report *Report) float64 {
	rule := code.Discount
	if report != nil {
		if report.Author != nil && report.Author.Applicable && report.Author.MatchedPrice > 0 {
			return scaledDiscount(rule, report.Author.MatchedPrice)
		}
		if report.Category != nil && report.Category.Applicable && report.Category.MatchedPrice > 0 {
			return scaledDiscount(rule, report.Category.MatchedPrice)
		}
	}
	return scaledDiscount(rule, totals.Amount)
}

func scaledDiscount(rule domain.DiscountRule, base float64) float64 {
	switch rule.Kind {
	case domain.DiscountValue:
		return rule.Value
	case domain.DiscountPercent:
		return base * rule.Percent / 100
	case domain.DiscountPercentCapped:
		return min(base*rule.Percent/100, rule.MaxValue)
	}
	return 0
}
