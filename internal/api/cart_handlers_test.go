package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/service"
)

// addItems posts an add-items batch and returns the priced cart view.
func (ts *testServer) addItems(t *testing.T, token string, items []map[string]any) service.CartView {
	t.Helper()

	resp := ts.api.Post("/api/v1/cart/items",
		map[string]any{"items": items},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[service.CartView]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestCart_AddItemsAndPrice(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.register(t, "owner@example.com")
	ids := ts.seedCatalog(t, adminToken)
	readerToken := ts.register(t, "reader@example.com")

	view := ts.addItems(t, readerToken, []map[string]any{
		{"book_id": ids["book1"], "quantity": 2},
		{"book_id": ids["book2"], "quantity": 1},
	})

	require.NotNil(t, view.Breakdown)
	// 2x100 + 1x200 with deterministic zero fees and zero discount.
	assert.Equal(t, 400.0, view.Breakdown.TotalAmount)
	assert.Equal(t, 3, view.Breakdown.TotalQuantity)
	assert.Equal(t, 72.0, view.Breakdown.GSTCharges)
	assert.Equal(t, 472.0, view.Breakdown.PayableAmount)

	require.Len(t, view.Lines, 2)
	require.NotNil(t, view.Cart)
	assert.NotZero(t, view.Cart.Delivery.Time)
}

func TestCart_UnknownBookRejected(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "owner@example.com")
	readerToken := ts.register(t, "reader@example.com")

	resp := ts.api.Post("/api/v1/cart/items",
		map[string]any{"items": []map[string]any{{"book_id": "book_missing", "quantity": 1}}},
		"Authorization: Bearer "+readerToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCart_RemoveLastItemDeletesCart(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.register(t, "owner@example.com")
	ids := ts.seedCatalog(t, adminToken)
	readerToken := ts.register(t, "reader@example.com")
	authz := "Authorization: Bearer " + readerToken

	ts.addItems(t, readerToken, []map[string]any{{"book_id": ids["book1"], "quantity": 1}})

	resp := ts.api.Post("/api/v1/cart/items/remove",
		map[string]any{"items": []map[string]any{{"book_id": ids["book1"], "quantity": 1}}},
		authz)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/cart", authz)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCart_SetTip(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.register(t, "owner@example.com")
	ids := ts.seedCatalog(t, adminToken)
	readerToken := ts.register(t, "reader@example.com")
	authz := "Authorization: Bearer " + readerToken

	ts.addItems(t, readerToken, []map[string]any{{"book_id": ids["book1"], "quantity": 1}})

	resp := ts.api.Put("/api/v1/cart/tip", map[string]any{"tip": 30.0}, authz)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[service.CartView]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 30.0, envelope.Data.Cart.Tip)
}

func TestCart_AddressFlow(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.register(t, "owner@example.com")
	ids := ts.seedCatalog(t, adminToken)
	readerToken := ts.register(t, "reader@example.com")
	authz := "Authorization: Bearer " + readerToken

	resp := ts.api.Post("/api/v1/addresses", map[string]any{
		"recipient_name": "R. Reader",
		"phones":         []map[string]any{{"country_code": "+91", "number": "1234567890"}},
		"house_no":       "42",
		"city":           "Pune",
		"state":          "Maharashtra",
		"country":        "India",
		"pincode":        "411001",
	}, authz)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var created testEnvelope[struct {
		ID string `json:"id"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	ts.addItems(t, readerToken, []map[string]any{{"book_id": ids["book1"], "quantity": 1}})

	resp = ts.api.Put("/api/v1/cart/address",
		map[string]any{"address_id": created.Data.ID}, authz)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[service.CartView]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, created.Data.ID, envelope.Data.Cart.AddressID)

	resp = ts.api.Get("/api/v1/addresses", authz)
	require.Equal(t, http.StatusOK, resp.Code)

	var list testEnvelope[struct {
		Addresses []struct {
			City string `json:"city"`
		} `json:"addresses"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Data.Addresses, 1)
	assert.Equal(t, "Pune", list.Data.Addresses[0].City)
}

func TestCart_ForeignAddressRejected(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.register(t, "owner@example.com")
	ids := ts.seedCatalog(t, adminToken)
	ownerAuthz := "Authorization: Bearer " + adminToken

	resp := ts.api.Post("/api/v1/addresses", map[string]any{
		"recipient_name": "Owner",
		"phones":         []map[string]any{{"country_code": "+91", "number": "1112223334"}},
		"house_no":       "1",
		"city":           "Mumbai",
		"state":          "Maharashtra",
		"country":        "India",
		"pincode":        "400001",
	}, ownerAuthz)
	require.Equal(t, http.StatusOK, resp.Code)

	var created testEnvelope[struct {
		ID string `json:"id"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	readerToken := ts.register(t, "reader@example.com")
	ts.addItems(t, readerToken, []map[string]any{{"book_id": ids["book1"], "quantity": 1}})

	resp = ts.api.Put("/api/v1/cart/address",
		map[string]any{"address_id": created.Data.ID},
		"Authorization: Bearer "+readerToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}
