package store

import (
	"context"
	"testing"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestEntityCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := &domain.Book{Title: "The Left Hand of Darkness", Price: 499, Status: domain.StatusActive}
	book.ID = "book_1"

	require.NoError(t, s.Books.Create(ctx, book.ID, book))

	got, err := s.Books.Get(ctx, "book_1")
	require.NoError(t, err)
	assert.Equal(t, "The Left Hand of Darkness", got.Title)

	got.Price = 399
	require.NoError(t, s.Books.Update(ctx, got.ID, got))

	got, err = s.Books.Get(ctx, "book_1")
	require.NoError(t, err)
	assert.Equal(t, 399.0, got.Price)

	require.NoError(t, s.Books.Delete(ctx, "book_1"))
	_, err = s.Books.Get(ctx, "book_1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Delete is idempotent.
	require.NoError(t, s.Books.Delete(ctx, "book_1"))
}

func TestEntityCreateDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cart := &domain.Cart{OwnerID: "user_1", Items: []domain.LineItem{{BookID: "book_1", Quantity: 1}}}
	cart.ID = "cart_1"
	require.NoError(t, s.Carts.Create(ctx, cart.ID, cart))

	err := s.Carts.Create(ctx, "cart_1", cart)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestEntityUniqueIndexConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &domain.Cart{OwnerID: "user_1"}
	first.ID = "cart_1"
	require.NoError(t, s.Carts.Create(ctx, first.ID, first))

	// Second cart for the same owner must be rejected.
	second := &domain.Cart{OwnerID: "user_1"}
	second.ID = "cart_2"
	err := s.Carts.Create(ctx, second.ID, second)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestEntityGetByIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &domain.User{Email: "Reader@Example.com", Role: domain.RoleMember}
	user.ID = "user_1"
	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	// Email lookups are case-insensitive.
	got, err := s.Users.GetByIndex(ctx, "email", "reader@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "user_1", got.ID)

	_, err = s.Users.GetByIndex(ctx, "email", "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntityMultiIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"gift_1", "gift_2"} {
		card := &domain.GiftCard{RecipientID: "user_1", Amount: 100, Status: domain.StatusActive}
		card.ID = id
		require.NoError(t, s.GiftCards.Create(ctx, card.ID, card))
	}
	other := &domain.GiftCard{RecipientID: "user_2", Amount: 50, Status: domain.StatusActive}
	other.ID = "gift_3"
	require.NoError(t, s.GiftCards.Create(ctx, other.ID, other))

	var ids []string
	for card, err := range s.GiftCards.ListByIndex(ctx, "recipient", "user_1") {
		require.NoError(t, err)
		ids = append(ids, card.ID)
	}
	assert.ElementsMatch(t, []string{"gift_1", "gift_2"}, ids)
}

func TestEntityUpdateMovesIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := &domain.Book{Title: "Dune", AuthorID: "author_1", CategoryID: "cat_1", Status: domain.StatusActive}
	book.ID = "book_1"
	require.NoError(t, s.Books.Create(ctx, book.ID, book))

	book.CategoryID = "cat_2"
	require.NoError(t, s.Books.Update(ctx, book.ID, book))

	var inOld, inNew []string
	for b, err := range s.Books.ListByIndex(ctx, "category", "cat_1") {
		require.NoError(t, err)
		inOld = append(inOld, b.ID)
	}
	for b, err := range s.Books.ListByIndex(ctx, "category", "cat_2") {
		require.NoError(t, err)
		inNew = append(inNew, b.ID)
	}
	assert.Empty(t, inOld)
	assert.Equal(t, []string{"book_1"}, inNew)
}

func TestEntityList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Fiction", "Poetry", "History"} {
		cat := &domain.Category{Name: name, Status: domain.StatusActive}
		cat.ID = "cat_" + name
		require.NoError(t, s.Categories.Create(ctx, cat.ID, cat))
	}

	count := 0
	for _, err := range s.Categories.List(ctx) {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 3, count)
}

func TestPromoCodeNameIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	code := &domain.PromoCode{Name: "WELCOME10", Status: domain.StatusActive}
	code.ID = "promo_1"
	require.NoError(t, s.PromoCodes.Create(ctx, code.ID, code))

	got, err := s.PromoCodes.GetByIndex(ctx, "name", "welcome10")
	require.NoError(t, err)
	assert.Equal(t, "promo_1", got.ID)

	// Names are unique, case-insensitively.
	dup := &domain.PromoCode{Name: "Welcome10", Status: domain.StatusActive}
	dup.ID = "promo_2"
	assert.ErrorIs(t, s.PromoCodes.Create(ctx, dup.ID, dup), ErrAlreadyExists)
}
