package service

import (
	"context"
	"encoding/hex"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/pricing"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// fixedSource makes the random fees and storewide discount deterministic.
type fixedSource struct {
	value int
}

func (s fixedSource) IntN(n int) int {
	if s.value >= n {
		return n - 1
	}
	return s.value
}

// testEnv bundles every service wired against one temporary store.
type testEnv struct {
	store      *store.Store
	auth       *AuthService
	sessions   *SessionService
	users      *UserService
	books      *BookService
	carts      *CartService
	giftCards  *GiftCardService
	promoCodes *PromoCodeService
}

func testPricingConfig() config.PricingConfig {
	return config.PricingConfig{
		GSTPercent:           18,
		GiftCardExpiryDays:   365,
		FeeBound:             51,
		DiscountPercentBound: 16,
		DiscountCap:          100,
	}
}

// setupTestEnv creates services with temporary storage. The pricing engine
// draws zero for every random quantity so fee and discount assertions are
// exact.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(hex.EncodeToString(authKey), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	v := validation.New()
	cfg := testPricingConfig()
	engine := pricing.NewEngine(cfg, fixedSource{})

	sessionService := NewSessionService(s, tokenService, nil)
	authService := NewAuthService(s, tokenService, sessionService, v, nil)
	userService := NewUserService(s, sessionService, v, nil)
	bookService := NewBookService(s, nil, v, nil)
	cartService := NewCartService(s, engine, v, nil)
	giftCardService := NewGiftCardService(s, cfg, v, nil)
	promoCodeService := NewPromoCodeService(s, cartService, engine, v, nil)

	return &testEnv{
		store:      s,
		auth:       authService,
		sessions:   sessionService,
		users:      userService,
		books:      bookService,
		carts:      cartService,
		giftCards:  giftCardService,
		promoCodes: promoCodeService,
	}
}

// createTestUser stores a user directly, bypassing registration.
func createTestUser(t *testing.T, s *store.Store, email string, role domain.Role) *domain.User {
	t.Helper()

	userID, err := id.Generate("user")
	require.NoError(t, err)

	hash, err := auth.HashPassword("SecurePassword123!")
	require.NoError(t, err)

	user := &domain.User{
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
	}
	user.ID = userID
	user.InitTimestamps()

	require.NoError(t, s.Users.Create(context.Background(), userID, user))
	return user
}

// createTestCatalog seeds one author, one category and returns their ids.
func createTestCatalog(t *testing.T, env *testEnv) (authorID, categoryID string) {
	t.Helper()
	ctx := context.Background()

	author, err := env.books.CreateAuthor(ctx, CreateAuthorRequest{Name: "Test Author"})
	require.NoError(t, err)
	category, err := env.books.CreateCategory(ctx, CreateCategoryRequest{Name: "Fiction"})
	require.NoError(t, err)
	return author.ID, category.ID
}

// createTestBook stores an active book through the service.
func createTestBook(t *testing.T, env *testEnv, title string, price float64, authorID, categoryID string, maxQty int) *domain.Book {
	t.Helper()

	book, err := env.books.CreateBook(context.Background(), CreateBookRequest{
		Title:       title,
		Price:       price,
		AuthorID:    authorID,
		CategoryID:  categoryID,
		MaxQuantity: maxQty,
	})
	require.NoError(t, err)
	return book
}
