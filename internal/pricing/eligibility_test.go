package pricing

import (
	"testing"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalLines() []ResolvedLine {
	return []ResolvedLine{
		{Book: book("book_1", 200, "cat_fiction", "author_leguin"), Quantity: 2},
		{Book: book("book_2", 100, "cat_poetry", "author_heaney"), Quantity: 1},
	}
}

func TestEvaluateNoEligibility(t *testing.T) {
	eng := newTestEngine(0)
	lines := evalLines()
	totals := Aggregate(lines)

	code := &domain.PromoCode{Name: "ANY", Status: domain.StatusActive}
	report, err := eng.Evaluate(code, lines, totals, time.Now())
	require.NoError(t, err)
	assert.True(t, report.Eligible)
	assert.Nil(t, report.Amount)
	assert.Nil(t, report.Category)
}

func TestEvaluateExpiredFailsHard(t *testing.T) {
	eng := newTestEngine(0)
	now := time.Now()
	lines := evalLines()

	code := &domain.PromoCode{
		Name:      "OLD",
		ExpiresAt: now.Add(-time.Minute).UnixMilli(),
		// Even with failing shape criteria, expiry raises instead of
		// producing a report.
		Eligibility: &domain.Eligibility{MinValue: 100000},
		Status:      domain.StatusActive,
	}
	report, err := eng.Evaluate(code, lines, Aggregate(lines), now)
	assert.ErrorIs(t, err, apperrors.ErrExpired)
	assert.Nil(t, report)
}

func TestEvaluateUsageLimitFailsHard(t *testing.T) {
	eng := newTestEngine(0)
	lines := evalLines()

	code := &domain.PromoCode{
		Name:       "CAPPED",
		UsageLimit: 2,
		Usages:     []domain.Usage{{UserID: "user_1", Count: 2}},
		Status:     domain.StatusActive,
	}
	_, err := eng.Evaluate(code, lines, Aggregate(lines), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrUsageLimitExceeded)
}

func TestEvaluateMinValue(t *testing.T) {
	eng := newTestEngine(0)
	lines := evalLines() // total 500

	code := &domain.PromoCode{
		Name:        "BIGSPEND",
		Eligibility: &domain.Eligibility{MinValue: 600},
		Status:      domain.StatusActive,
	}
	report, err := eng.Evaluate(code, lines, Aggregate(lines), time.Now())
	require.NoError(t, err)
	assert.False(t, report.Eligible)
	require.NotNil(t, report.Amount)
	assert.False(t, report.Amount.Applicable)
	assert.NotEmpty(t, report.Amount.Message)
}

func TestEvaluateAllCriteriaReported(t *testing.T) {
	// No short-circuit: every failing criterion appears in the report.
	eng := newTestEngine(0)
	lines := evalLines()

	code := &domain.PromoCode{
		Name: "PICKY",
		Eligibility: &domain.Eligibility{
			MinValue:     600,
			MinItemCount: 10,
			CategoryIDs:  []string{"cat_absent"},
			AuthorIDs:    []string{"author_absent"},
		},
		Status: domain.StatusActive,
	}
	report, err := eng.Evaluate(code, lines, Aggregate(lines), time.Now())
	require.NoError(t, err)
	assert.False(t, report.Eligible)
	assert.NotNil(t, report.Amount)
	assert.NotNil(t, report.Quantity)
	assert.NotNil(t, report.Category)
	assert.NotNil(t, report.Author)
	assert.False(t, report.Category.Applicable)
	assert.False(t, report.Author.Applicable)
}

func TestEvaluateCategoryMatch(t *testing.T) {
	eng := newTestEngine(0)
	lines := evalLines()

	code := &domain.PromoCode{
		Name:        "FICTION",
		Eligibility: &domain.Eligibility{CategoryIDs: []string{"cat_fiction", "cat_absent"}},
		Status:      domain.StatusActive,
	}
	report, err := eng.Evaluate(code, lines, Aggregate(lines), time.Now())
	require.NoError(t, err)
	assert.True(t, report.Eligible)
	require.NotNil(t, report.Category)
	assert.True(t, report.Category.Applicable)
	assert.Equal(t, []string{"cat_fiction"}, report.Category.MatchedIDs)
	// Unit price of the matching line, not multiplied by quantity.
	assert.Equal(t, 200.0, report.Category.MatchedPrice)
}

func TestEvaluateAuthorMatch(t *testing.T) {
	eng := newTestEngine(0)
	lines := evalLines()

	code := &domain.PromoCode{
		Name:        "HEANEY",
		Eligibility: &domain.Eligibility{AuthorIDs: []string{"author_heaney"}},
		Status:      domain.StatusActive,
	}
	report, err := eng.Evaluate(code, lines, Aggregate(lines), time.Now())
	require.NoError(t, err)
	assert.True(t, report.Eligible)
	require.NotNil(t, report.Author)
	assert.Equal(t, 100.0, report.Author.MatchedPrice)
}

func TestDiscountValueType(t *testing.T) {
	code := &domain.PromoCode{Discount: domain.DiscountRule{Kind: domain.DiscountValue, Value: 50}}
	got := Discount(code, Totals{Amount: 500}, &Report{Eligible: true})
	assert.Equal(t, 50.0, got)
}

func TestDiscountPercentType(t *testing.T) {
	code := &domain.PromoCode{Discount: domain.DiscountRule{Kind: domain.DiscountPercent, Percent: 10}}
	got := Discount(code, Totals{Amount: 500}, &Report{Eligible: true})
	assert.Equal(t, 50.0, got)
}

func TestDiscountPercentCapped(t *testing.T) {
	code := &domain.PromoCode{Discount: domain.DiscountRule{
		Kind: domain.DiscountPercentCapped, Percent: 20, MaxValue: 30,
	}}
	// 20% of 500 is 100, capped at 30.
	got := Discount(code, Totals{Amount: 500}, &Report{Eligible: true})
	assert.Equal(t, 30.0, got)
}

func TestDiscountUnknownKind(t *testing.T) {
	code := &domain.PromoCode{Discount: domain.DiscountRule{Kind: "mystery", Value: 99}}
	got := Discount(code, Totals{Amount: 500}, &Report{Eligible: true})
	assert.Zero(t, got)
}

func TestDiscountAuthorPrecedence(t *testing.T) {
	code := &domain.PromoCode{Discount: domain.DiscountRule{Kind: domain.DiscountPercent, Percent: 10}}
	report := &Report{
		Eligible: true,
		Author:   &MatchCriterion{Criterion: Criterion{Applicable: true}, MatchedPrice: 100},
		Category: &MatchCriterion{Criterion: Criterion{Applicable: true}, MatchedPrice: 300},
	}
	// Author match wins over category match.
	got := Discount(code, Totals{Amount: 500}, report)
	assert.Equal(t, 10.0, got)
}

func TestDiscountCategoryFallback(t *testing.T) {
	code := &domain.PromoCode{Discount: domain.DiscountRule{Kind: domain.DiscountPercent, Percent: 10}}
	report := &Report{
		Eligible: true,
		Category: &MatchCriterion{Criterion: Criterion{Applicable: true}, MatchedPrice: 300},
	}
	got := Discount(code, Totals{Amount: 500}, report)
	assert.Equal(t, 30.0, got)
}

func TestReportFailureReason(t *testing.T) {
	report := &Report{
		Quantity: &Criterion{Applicable: false, Message: "needs more items"},
		Category: &MatchCriterion{Criterion: Criterion{Applicable: false, Message: "wrong category"}},
	}
	// Quantity outranks category.
	assert.Equal(t, "needs more items", report.FailureReason())

	assert.Empty(t, (&Report{Eligible: true}).FailureReason())
}
