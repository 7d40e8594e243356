package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
)

func TestPromoCodeService_Create(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)

	code, err := env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
		Name:     "WELCOME50",
		Discount: domain.DiscountRule{Kind: domain.DiscountValue, Value: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, code.Status)
	assert.Equal(t, domain.ActorAdmin, code.IssuedBy.Type)

	// Names are unique, case-insensitively.
	_, err = env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
		Name:     "welcome50",
		Discount: domain.DiscountRule{Kind: domain.DiscountValue, Value: 50},
	})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	found, err := env.promoCodes.GetPromoCodeByName(ctx, "Welcome50")
	require.NoError(t, err)
	assert.Equal(t, code.ID, found.ID)
}

func TestPromoCodeService_Create_RejectsBadRules(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)

	tests := []struct {
		name string
		rule domain.DiscountRule
	}{
		{"unknown kind", domain.DiscountRule{Kind: "half_off"}},
		{"zero value", domain.DiscountRule{Kind: domain.DiscountValue}},
		{"percent over 100", domain.DiscountRule{Kind: domain.DiscountPercent, Percent: 120}},
		{"capped without max", domain.DiscountRule{Kind: domain.DiscountPercentCapped, Percent: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
				Name:     "CODE-" + tt.name,
				Discount: tt.rule,
			})
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestPromoCodeService_ApplyToCart(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	user := createTestUser(t, env.store, "reader@example.com", domain.RoleMember)
	authorID, categoryID := createTestCatalog(t, env)
	book := createTestBook(t, env, "Discounted", 250, authorID, categoryID, 0)

	_, err := env.carts.AddItems(ctx, user.ID, MutateItemsRequest{
		Items: []CartItemInput{{BookID: book.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
		Name:     "FLAT50",
		Discount: domain.DiscountRule{Kind: domain.DiscountValue, Value: 50},
	})
	require.NoError(t, err)

	cart, report, err := env.promoCodes.ApplyToCart(ctx, user.ID, "flat50")
	require.NoError(t, err)
	assert.True(t, report.Eligible)
	assert.NotEmpty(t, cart.PromoCodeID)

	view, err := env.carts.PriceCart(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Breakdown)
	assert.Equal(t, 50.0, view.Breakdown.PromoCodePrice)
	// 500 + 90 GST - 50 promo.
	assert.Equal(t, 540.0, view.Breakdown.PayableAmount)
}

func TestPromoCodeService_RetiredAttachedCodeStopsDiscounting(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	user := createTestUser(t, env.store, "reader@example.com", domain.RoleMember)
	authorID, categoryID := createTestCatalog(t, env)
	book := createTestBook(t, env, "Discounted", 250, authorID, categoryID, 0)

	_, err := env.carts.AddItems(ctx, user.ID, MutateItemsRequest{
		Items: []CartItemInput{{BookID: book.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	code, err := env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
		Name:     "FLAT50",
		Discount: domain.DiscountRule{Kind: domain.DiscountValue, Value: 50},
	})
	require.NoError(t, err)

	_, _, err = env.promoCodes.ApplyToCart(ctx, user.ID, "FLAT50")
	require.NoError(t, err)

	// Soft-delete the code behind the cart's back.
	require.NoError(t, env.promoCodes.DeletePromoCode(ctx, admin, code.ID))

	_, err = env.carts.PriceCart(ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPromoCodeService_ApplyToCart_Ineligible(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	user := createTestUser(t, env.store, "reader@example.com", domain.RoleMember)
	authorID, categoryID := createTestCatalog(t, env)
	book := createTestBook(t, env, "Cheap", 100, authorID, categoryID, 0)

	_, err := env.carts.AddItems(ctx, user.ID, MutateItemsRequest{
		Items: []CartItemInput{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
		Name:        "BIGSPENDER",
		Discount:    domain.DiscountRule{Kind: domain.DiscountPercent, Percent: 10},
		Eligibility: &domain.Eligibility{MinValue: 600},
	})
	require.NoError(t, err)

	_, report, err := env.promoCodes.ApplyToCart(ctx, user.ID, "BIGSPENDER")
	assert.ErrorIs(t, err, apperrors.ErrIneligible)
	require.NotNil(t, report)
	require.NotNil(t, report.Amount)
	assert.False(t, report.Amount.Applicable)

	// The rejected code was not attached.
	cart, err := env.carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.PromoCodeID)
}

func TestPromoCodeService_ApplyToCart_ExpiredFailsHard(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	user := createTestUser(t, env.store, "reader@example.com", domain.RoleMember)
	authorID, categoryID := createTestCatalog(t, env)
	book := createTestBook(t, env, "Late", 100, authorID, categoryID, 0)

	_, err := env.carts.AddItems(ctx, user.ID, MutateItemsRequest{
		Items: []CartItemInput{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	code, err := env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
		Name:     "TOOLATE",
		Discount: domain.DiscountRule{Kind: domain.DiscountValue, Value: 10},
	})
	require.NoError(t, err)

	code.ExpiresAt = time.Now().Add(-time.Hour).UnixMilli()
	require.NoError(t, env.store.PromoCodes.Update(ctx, code.ID, code))

	_, _, err = env.promoCodes.ApplyToCart(ctx, user.ID, "TOOLATE")
	assert.ErrorIs(t, err, apperrors.ErrExpired)
}

func TestPromoCodeService_IneligibleAttachedCodeYieldsNoBreakdown(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	user := createTestUser(t, env.store, "reader@example.com", domain.RoleMember)
	authorID, categoryID := createTestCatalog(t, env)
	first := createTestBook(t, env, "Keep", 400, authorID, categoryID, 0)
	second := createTestBook(t, env, "Drop", 300, authorID, categoryID, 0)

	_, err := env.carts.AddItems(ctx, user.ID, MutateItemsRequest{
		Items: []CartItemInput{
			{BookID: first.ID, Quantity: 1},
			{BookID: second.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	_, err = env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
		Name:        "OVER600",
		Discount:    domain.DiscountRule{Kind: domain.DiscountPercent, Percent: 10},
		Eligibility: &domain.Eligibility{MinValue: 600},
	})
	require.NoError(t, err)

	_, _, err = env.promoCodes.ApplyToCart(ctx, user.ID, "OVER600")
	require.NoError(t, err)

	// Shrinking the cart below the threshold leaves the code attached but
	// the pricing pass yields no breakdown at all.
	_, err = env.carts.RemoveItems(ctx, user.ID, MutateItemsRequest{
		Items: []CartItemInput{{BookID: second.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	view, err := env.carts.PriceCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Breakdown)
}

func TestPromoCodeService_Suggest(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	user := createTestUser(t, env.store, "reader@example.com", domain.RoleMember)

	fiction, err := env.books.CreateCategory(ctx, CreateCategoryRequest{Name: "Fiction"})
	require.NoError(t, err)
	poetry, err := env.books.CreateCategory(ctx, CreateCategoryRequest{Name: "Poetry"})
	require.NoError(t, err)
	history, err := env.books.CreateCategory(ctx, CreateCategoryRequest{Name: "History"})
	require.NoError(t, err)
	author, err := env.books.CreateAuthor(ctx, CreateAuthorRequest{Name: "Author"})
	require.NoError(t, err)

	inCart := createTestBook(t, env, "Novel", 300, author.ID, fiction.ID, 0)
	alsoIn := createTestBook(t, env, "Verses", 200, author.ID, poetry.ID, 0)

	_, err = env.carts.AddItems(ctx, user.ID, MutateItemsRequest{
		Items: []CartItemInput{
			{BookID: inCart.ID, Quantity: 1},
			{BookID: alsoIn.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	// Unscoped: always a candidate, applicable here.
	_, err = env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
		Name:     "ANYCART",
		Discount: domain.DiscountRule{Kind: domain.DiscountValue, Value: 25},
	})
	require.NoError(t, err)

	// Scoped to a category present in the cart but gated on a minimum the
	// cart misses: candidate, not applicable.
	_, err = env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
		Name:     "FICTION1000",
		Discount: domain.DiscountRule{Kind: domain.DiscountPercent, Percent: 10},
		Eligibility: &domain.Eligibility{
			CategoryIDs: []string{fiction.ID},
			MinValue:    1000,
		},
	})
	require.NoError(t, err)

	// Scoped only to an absent category: not even a candidate.
	_, err = env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
		Name:        "HISTORYONLY",
		Discount:    domain.DiscountRule{Kind: domain.DiscountPercent, Percent: 10},
		Eligibility: &domain.Eligibility{CategoryIDs: []string{history.ID}},
	})
	require.NoError(t, err)

	// Expired: dropped silently.
	expired, err := env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
		Name:     "BYGONE",
		Discount: domain.DiscountRule{Kind: domain.DiscountValue, Value: 10},
	})
	require.NoError(t, err)
	expired.ExpiresAt = time.Now().Add(-time.Hour).UnixMilli()
	require.NoError(t, env.store.PromoCodes.Update(ctx, expired.ID, expired))

	suggestions, err := env.promoCodes.Suggest(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	// Applicable codes sort first.
	assert.Equal(t, "ANYCART", suggestions[0].PromoCode.Name)
	assert.True(t, suggestions[0].IsApplicable)
	require.NotNil(t, suggestions[0].Report)

	assert.Equal(t, "FICTION1000", suggestions[1].PromoCode.Name)
	assert.False(t, suggestions[1].IsApplicable)
	assert.Contains(t, suggestions[1].Reason, "cart value must be at least")
}

func TestPromoCodeService_RemoveFromCart(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	user := createTestUser(t, env.store, "reader@example.com", domain.RoleMember)
	authorID, categoryID := createTestCatalog(t, env)
	book := createTestBook(t, env, "Plain", 100, authorID, categoryID, 0)

	_, err := env.carts.AddItems(ctx, user.ID, MutateItemsRequest{
		Items: []CartItemInput{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.promoCodes.CreatePromoCode(ctx, admin, CreatePromoCodeRequest{
		Name:     "TEMP",
		Discount: domain.DiscountRule{Kind: domain.DiscountValue, Value: 10},
	})
	require.NoError(t, err)

	_, _, err = env.promoCodes.ApplyToCart(ctx, user.ID, "TEMP")
	require.NoError(t, err)

	cart, err := env.promoCodes.RemoveFromCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.PromoCodeID)
}
