package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

func (s *Server) registerCartRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCart",
		Method:      http.MethodGet,
		Path:        "/api/v1/cart",
		Summary:     "Get cart",
		Description: "Returns the caller's cart with resolved lines and a price breakdown",
		Tags:        []string{"Cart"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCart)

	huma.Register(s.api, huma.Operation{
		OperationID: "addCartItems",
		Method:      http.MethodPost,
		Path:        "/api/v1/cart/items",
		Summary:     "Add items to cart",
		Description: "Adds the given quantities, creating the cart on first use",
		Tags:        []string{"Cart"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddCartItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeCartItems",
		Method:      http.MethodPost,
		Path:        "/api/v1/cart/items/remove",
		Summary:     "Remove items from cart",
		Description: "Decrements the given quantities, dropping emptied lines",
		Tags:        []string{"Cart"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveCartItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearCart",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cart",
		Summary:     "Clear cart",
		Tags:        []string{"Cart"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleClearCart)

	huma.Register(s.api, huma.Operation{
		OperationID: "setCartTip",
		Method:      http.MethodPut,
		Path:        "/api/v1/cart/tip",
		Summary:     "Set cart tip",
		Tags:        []string{"Cart"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetCartTip)

	huma.Register(s.api, huma.Operation{
		OperationID: "setCartAddress",
		Method:      http.MethodPut,
		Path:        "/api/v1/cart/address",
		Summary:     "Set delivery address",
		Tags:        []string{"Cart"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetCartAddress)

	huma.Register(s.api, huma.Operation{
		OperationID: "createAddress",
		Method:      http.MethodPost,
		Path:        "/api/v1/addresses",
		Summary:     "Create address",
		Tags:        []string{"Addresses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateAddress)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAddresses",
		Method:      http.MethodGet,
		Path:        "/api/v1/addresses",
		Summary:     "List addresses",
		Tags:        []string{"Addresses"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAddresses)
}

// === DTOs ===

// CartViewOutput wraps the priced cart view for Huma.
type CartViewOutput struct {
	Body *service.CartView
}

// MutateItemsInput wraps an item mutation batch for Huma.
type MutateItemsInput struct {
	Authorization string `header:"Authorization"`
	Body          service.MutateItemsRequest
}

// SetTipInput wraps the tip amount for Huma.
type SetTipInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		Tip float64 `json:"tip" doc:"Tip amount, zero clears it"`
	}
}

// SetCartAddressInput wraps an address attachment for Huma.
type SetCartAddressInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		AddressID string `json:"address_id" doc:"Address to deliver to"`
	}
}

// CreateAddressInput wraps the create address request for Huma.
type CreateAddressInput struct {
	Authorization string `header:"Authorization"`
	Body          service.CreateAddressRequest
}

// AddressOutput wraps a single address for Huma.
type AddressOutput struct {
	Body *domain.Address
}

// AddressListOutput wraps the caller's address list for Huma.
type AddressListOutput struct {
	Body struct {
		Addresses []*domain.Address `json:"addresses" doc:"Saved delivery addresses"`
	}
}

// === Handlers ===

func (s *Server) handleGetCart(ctx context.Context, input *AuthedInput) (*CartViewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Cart.PriceCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &CartViewOutput{Body: view}, nil
}

func (s *Server) handleAddCartItems(ctx context.Context, input *MutateItemsInput) (*CartViewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.Cart.AddItems(ctx, user.ID, input.Body); err != nil {
		return nil, err
	}

	view, err := s.services.Cart.PriceCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &CartViewOutput{Body: view}, nil
}

func (s *Server) handleRemoveCartItems(ctx context.Context, input *MutateItemsInput) (*CartViewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	cart, err := s.services.Cart.RemoveItems(ctx, user.ID, input.Body)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		// Last line removed, the cart is gone.
		return &CartViewOutput{Body: &service.CartView{Lines: []service.ResolvedCartLine{}}}, nil
	}

	view, err := s.services.Cart.PriceCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &CartViewOutput{Body: view}, nil
}

func (s *Server) handleClearCart(ctx context.Context, input *AuthedInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Cart.ClearCart(ctx, user.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "cart cleared"}}, nil
}

func (s *Server) handleSetCartTip(ctx context.Context, input *SetTipInput) (*CartViewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.Cart.SetTip(ctx, user.ID, input.Body.Tip); err != nil {
		return nil, err
	}

	view, err := s.services.Cart.PriceCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &CartViewOutput{Body: view}, nil
}

func (s *Server) handleSetCartAddress(ctx context.Context, input *SetCartAddressInput) (*CartViewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.Cart.SetAddress(ctx, user.ID, input.Body.AddressID); err != nil {
		return nil, err
	}

	view, err := s.services.Cart.PriceCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &CartViewOutput{Body: view}, nil
}

func (s *Server) handleCreateAddress(ctx context.Context, input *CreateAddressInput) (*AddressOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	address, err := s.services.Cart.CreateAddress(ctx, user.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &AddressOutput{Body: address}, nil
}

func (s *Server) handleListAddresses(ctx context.Context, input *AuthedInput) (*AddressListOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	addresses, err := s.services.Cart.ListAddresses(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	out := &AddressListOutput{}
	out.Body.Addresses = addresses
	return out, nil
}
