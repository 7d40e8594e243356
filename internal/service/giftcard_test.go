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

func issueTestCard(t *testing.T, env *testEnv, issuer *domain.User, recipientID string, amount float64) *domain.GiftCard {
	t.Helper()

	card, err := env.giftCards.CreateGiftCard(context.Background(), issuer, CreateGiftCardRequest{
		Name:        "Birthday",
		Amount:      amount,
		RecipientID: recipientID,
	})
	require.NoError(t, err)
	return card
}

func TestGiftCardService_Create(t *testing.T) {
	env := setupTestEnv(t)

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	admin.IsRoot = true
	user := createTestUser(t, env.store, "reader@example.com", domain.RoleMember)

	card := issueTestCard(t, env, admin, user.ID, 500)

	assert.Equal(t, user.ID, card.RecipientID)
	assert.Equal(t, domain.DefaultCurrency, card.CurrencyCode)
	assert.Equal(t, domain.ActorSuperAdmin, card.IssuedBy.Type)
	assert.Equal(t, admin.Email, card.IssuedBy.Email)
	assert.False(t, card.IsRedeemed)

	// Default expiry lands a year out.
	expiry := time.UnixMilli(card.ExpiresAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 365), expiry, time.Minute)
}

func TestGiftCardService_Create_UnknownRecipient(t *testing.T) {
	env := setupTestEnv(t)

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)

	_, err := env.giftCards.CreateGiftCard(context.Background(), admin, CreateGiftCardRequest{
		Name:        "Birthday",
		Amount:      500,
		RecipientID: "user_missing",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGiftCardService_ApplyToCart(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	user := createTestUser(t, env.store, "reader@example.com", domain.RoleMember)
	other := createTestUser(t, env.store, "other@example.com", domain.RoleMember)

	authorID, categoryID := createTestCatalog(t, env)
	book := createTestBook(t, env, "Gifted", 100, authorID, categoryID, 0)
	_, err := env.carts.AddItems(ctx, user.ID, MutateItemsRequest{
		Items: []CartItemInput{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	card := issueTestCard(t, env, admin, user.ID, 500)

	cart, err := env.carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, cart.GiftCardID)

	cart, err = env.giftCards.ApplyToCart(ctx, user, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card.ID, cart.GiftCardID)

	// The deduction is the full card amount and can push payable negative.
	view, err := env.carts.PriceCart(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Breakdown)
	assert.Equal(t, 500.0, view.Breakdown.GiftCardPrice)
	assert.Equal(t, -382.0, view.Breakdown.PayableAmount) // 100 + 18 GST - 500

	// Someone else's card cannot be applied.
	_, err = env.giftCards.ApplyToCart(ctx, other, card.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestGiftCardService_Redeem(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	user := createTestUser(t, env.store, "reader@example.com", domain.RoleMember)

	authorID, categoryID := createTestCatalog(t, env)
	book := createTestBook(t, env, "Redeemed", 100, authorID, categoryID, 0)
	_, err := env.carts.AddItems(ctx, user.ID, MutateItemsRequest{
		Items: []CartItemInput{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	card := issueTestCard(t, env, admin, user.ID, 500)
	_, err = env.giftCards.ApplyToCart(ctx, user, card.ID)
	require.NoError(t, err)

	redeemed, err := env.giftCards.Redeem(ctx, user, card.ID)
	require.NoError(t, err)
	assert.True(t, redeemed.IsRedeemed)
	assert.NotZero(t, redeemed.RedeemedAt)

	// Redemption detaches the card from the cart.
	cart, err := env.carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.GiftCardID)

	// Redemption is terminal.
	_, err = env.giftCards.Redeem(ctx, user, card.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRedeemed)
	_, err = env.giftCards.ApplyToCart(ctx, user, card.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRedeemed)
}

func TestGiftCardService_ExpiredCardFailsPricing(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	user := createTestUser(t, env.store, "reader@example.com", domain.RoleMember)

	authorID, categoryID := createTestCatalog(t, env)
	book := createTestBook(t, env, "Expired", 100, authorID, categoryID, 0)
	_, err := env.carts.AddItems(ctx, user.ID, MutateItemsRequest{
		Items: []CartItemInput{{BookID: book.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	card := issueTestCard(t, env, admin, user.ID, 500)
	_, err = env.giftCards.ApplyToCart(ctx, user, card.ID)
	require.NoError(t, err)

	// Back-date the expiry under the service.
	card.ExpiresAt = time.Now().Add(-time.Hour).UnixMilli()
	require.NoError(t, env.store.GiftCards.Update(ctx, card.ID, card))

	_, err = env.carts.PriceCart(ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrExpired)
}

func TestGiftCardService_DeleteHidesCard(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	user := createTestUser(t, env.store, "reader@example.com", domain.RoleMember)

	card := issueTestCard(t, env, admin, user.ID, 500)
	require.NoError(t, env.giftCards.DeleteGiftCard(ctx, admin, card.ID))

	_, err := env.giftCards.GetGiftCard(ctx, card.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	cards, err := env.giftCards.ListGiftCards(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cards)
}
