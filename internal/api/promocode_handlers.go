package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

func (s *Server) registerPromoCodeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createPromoCode",
		Method:      http.MethodPost,
		Path:        "/api/v1/promo-codes",
		Summary:     "Create promo code",
		Description: "Creates a promotional code. Admin only.",
		Tags:        []string{"Promo Codes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePromoCode)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPromoCodes",
		Method:      http.MethodGet,
		Path:        "/api/v1/promo-codes",
		Summary:     "List promo codes",
		Description: "Returns every promo code. Admin only.",
		Tags:        []string{"Promo Codes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPromoCodes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPromoCode",
		Method:      http.MethodGet,
		Path:        "/api/v1/promo-codes/{id}",
		Summary:     "Get promo code",
		Description: "Returns one promo code. Admin only.",
		Tags:        []string{"Promo Codes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPromoCode)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePromoCode",
		Method:      http.MethodPatch,
		Path:        "/api/v1/promo-codes/{id}",
		Summary:     "Update promo code",
		Description: "Applies a partial update. The name is immutable. Admin only.",
		Tags:        []string{"Promo Codes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePromoCode)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePromoCode",
		Method:      http.MethodDelete,
		Path:        "/api/v1/promo-codes/{id}",
		Summary:     "Delete promo code",
		Description: "Soft-deletes a promo code. Admin only.",
		Tags:        []string{"Promo Codes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePromoCode)

	huma.Register(s.api, huma.Operation{
		OperationID: "applyPromoCode",
		Method:      http.MethodPost,
		Path:        "/api/v1/cart/promo-code",
		Summary:     "Apply promo code to cart",
		Description: "Attaches the named code if the cart satisfies its eligibility",
		Tags:        []string{"Promo Codes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleApplyPromoCode)

	huma.Register(s.api, huma.Operation{
		OperationID: "removePromoCodeFromCart",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cart/promo-code",
		Summary:     "Detach promo code from cart",
		Tags:        []string{"Promo Codes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemovePromoCodeFromCart)

	huma.Register(s.api, huma.Operation{
		OperationID: "suggestPromoCodes",
		Method:      http.MethodGet,
		Path:        "/api/v1/cart/promo-codes/suggestions",
		Summary:     "Suggest promo codes",
		Description: "Lists codes relevant to the cart, applicable ones first",
		Tags:        []string{"Promo Codes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSuggestPromoCodes)
}

// === DTOs ===

// CreatePromoCodeInput wraps the create request for Huma.
type CreatePromoCodeInput struct {
	Authorization string `header:"Authorization"`
	Body          service.CreatePromoCodeRequest
}

// UpdatePromoCodeInput wraps the update request for Huma.
type UpdatePromoCodeInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Promo code ID"`
	Body          service.UpdatePromoCodeRequest
}

// PromoCodeIDInput identifies a promo code for an authenticated operation.
type PromoCodeIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Promo code ID"`
}

// ApplyPromoCodeInput wraps an apply-by-name request for Huma.
type ApplyPromoCodeInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		Name string `json:"name" minLength:"1" doc:"Promo code name, case-insensitive"`
	}
}

// PromoCodeOutput wraps a single promo code for Huma.
type PromoCodeOutput struct {
	Body *domain.PromoCode
}

// PromoCodeListOutput wraps a promo code list for Huma.
type PromoCodeListOutput struct {
	Body struct {
		PromoCodes []*domain.PromoCode `json:"promo_codes" doc:"Promotional codes"`
	}
}

// SuggestionListOutput wraps promo code suggestions for Huma.
type SuggestionListOutput struct {
	Body struct {
		Suggestions []service.Suggestion `json:"suggestions" doc:"Codes relevant to the cart, applicable first"`
	}
}

// === Handlers ===

func (s *Server) handleCreatePromoCode(ctx context.Context, input *CreatePromoCodeInput) (*PromoCodeOutput, error) {
	issuer, err := s.authenticateAndRequireAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	code, err := s.services.PromoCode.CreatePromoCode(ctx, issuer, input.Body)
	if err != nil {
		return nil, err
	}
	return &PromoCodeOutput{Body: code}, nil
}

func (s *Server) handleListPromoCodes(ctx context.Context, input *AuthedInput) (*PromoCodeListOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	codes, err := s.services.PromoCode.ListPromoCodes(ctx)
	if err != nil {
		return nil, err
	}

	out := &PromoCodeListOutput{}
	out.Body.PromoCodes = codes
	return out, nil
}

func (s *Server) handleGetPromoCode(ctx context.Context, input *PromoCodeIDInput) (*PromoCodeOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	code, err := s.services.PromoCode.GetPromoCode(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PromoCodeOutput{Body: code}, nil
}

func (s *Server) handleUpdatePromoCode(ctx context.Context, input *UpdatePromoCodeInput) (*PromoCodeOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	code, err := s.services.PromoCode.UpdatePromoCode(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &PromoCodeOutput{Body: code}, nil
}

func (s *Server) handleDeletePromoCode(ctx context.Context, input *PromoCodeIDInput) (*MessageOutput, error) {
	actor, err := s.authenticateAndRequireAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.PromoCode.DeletePromoCode(ctx, actor, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "promo code deleted"}}, nil
}

func (s *Server) handleApplyPromoCode(ctx context.Context, input *ApplyPromoCodeInput) (*CartViewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if _, _, err := s.services.PromoCode.ApplyToCart(ctx, user.ID, input.Body.Name); err != nil {
		return nil, err
	}

	view, err := s.services.Cart.PriceCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &CartViewOutput{Body: view}, nil
}

func (s *Server) handleRemovePromoCodeFromCart(ctx context.Context, input *AuthedInput) (*CartViewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.PromoCode.RemoveFromCart(ctx, user.ID); err != nil {
		return nil, err
	}

	view, err := s.services.Cart.PriceCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &CartViewOutput{Body: view}, nil
}

func (s *Server) handleSuggestPromoCodes(ctx context.Context, input *AuthedInput) (*SuggestionListOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	suggestions, err := s.services.PromoCode.Suggest(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	out := &SuggestionListOutput{}
	out.Body.Suggestions = suggestions
	return out, nil
}
