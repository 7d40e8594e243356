package api

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/backup"
	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/pricing"
	"github.com/inkwellapp/inkwell-server/internal/search"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// zeroSource removes randomness from pricing so tests can assert exact
// amounts: fees draw zero and the storewide discount is zero percent.
type zeroSource struct{}

func (zeroSource) IntN(int) int { return 0 }

// testServer bundles the API server with a humatest client.
type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := store.New(filepath.Join(tmpDir, "data"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	index, err := search.NewSearchIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	v := validation.New()
	pricingCfg := config.PricingConfig{
		GSTPercent:           18,
		GiftCardExpiryDays:   365,
		FeeBound:             51,
		DiscountPercentBound: 16,
		DiscountCap:          100,
	}
	engine := pricing.NewEngine(pricingCfg, zeroSource{})

	sessionService := service.NewSessionService(st, tokenService, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, v, logger)
	userService := service.NewUserService(st, sessionService, v, logger)
	searchService := service.NewSearchService(index, st, logger)
	st.SetSearchIndexer(searchService)
	bookService := service.NewBookService(st, searchService, v, logger)
	cartService := service.NewCartService(st, engine, v, logger)
	giftCardService := service.NewGiftCardService(st, pricingCfg, v, logger)
	promoCodeService := service.NewPromoCodeService(st, cartService, engine, v, logger)

	services := &Services{
		Auth:      authService,
		Session:   sessionService,
		User:      userService,
		Book:      bookService,
		Cart:      cartService,
		GiftCard:  giftCardService,
		PromoCode: promoCodeService,
		Search:    searchService,
		Backup:    backup.NewService(st, filepath.Join(tmpDir, "snapshots"), logger),
	}

	s := NewServer(st, services, logger)
	t.Cleanup(s.Close)

	return &testServer{Server: s, api: humatest.Wrap(t, s.api)}
}

// register creates an account and returns its access token. The first call
// per server gets the root admin.
func (ts *testServer) register(t *testing.T, email string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        email,
		"password":     "SecurePassword123!",
		"display_name": "Test User",
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.AccessToken
}

// seedCatalog creates an author, category, edition and two books through the
// admin API and returns the created IDs keyed by a short label.
func (ts *testServer) seedCatalog(t *testing.T, adminToken string) map[string]string {
	t.Helper()
	authz := "Authorization: Bearer " + adminToken

	ids := make(map[string]string)

	resp := ts.api.Post("/api/v1/authors", map[string]any{"name": "Robin Hobb"}, authz)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	ids["author"] = decodeID(t, resp.Body.Bytes())

	resp = ts.api.Post("/api/v1/categories", map[string]any{"name": "Fantasy"}, authz)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	ids["category"] = decodeID(t, resp.Body.Bytes())

	resp = ts.api.Post("/api/v1/editions", map[string]any{"name": "Paperback"}, authz)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	ids["edition"] = decodeID(t, resp.Body.Bytes())

	for i, title := range []string{"Assassin's Apprentice", "Royal Assassin"} {
		resp = ts.api.Post("/api/v1/books", map[string]any{
			"title":        title,
			"description":  map[string]any{"short": "A Farseer novel"},
			"price":        100.0 * float64(i+1),
			"author_id":    ids["author"],
			"category_id":  ids["category"],
			"edition_id":   ids["edition"],
			"max_quantity": 5,
		}, authz)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		ids[fmt.Sprintf("book%d", i+1)] = decodeID(t, resp.Body.Bytes())
	}

	return ids
}

// decodeID pulls the data.id field out of an envelope body.
func decodeID(t *testing.T, body []byte) string {
	t.Helper()

	var envelope testEnvelope[struct {
		ID string `json:"id"`
	}]
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.NotEmpty(t, envelope.Data.ID)
	return envelope.Data.ID
}
