package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

func (s *Server) registerGiftCardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createGiftCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/gift-cards",
		Summary:     "Issue gift card",
		Description: "Issues a gift card to a recipient. Admin only.",
		Tags:        []string{"Gift Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateGiftCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAllGiftCards",
		Method:      http.MethodGet,
		Path:        "/api/v1/gift-cards/all",
		Summary:     "List all gift cards",
		Description: "Returns every issued gift card. Admin only.",
		Tags:        []string{"Gift Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAllGiftCards)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGiftCards",
		Method:      http.MethodGet,
		Path:        "/api/v1/gift-cards",
		Summary:     "List my gift cards",
		Description: "Returns gift cards issued to the caller",
		Tags:        []string{"Gift Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListGiftCards)

	huma.Register(s.api, huma.Operation{
		OperationID: "listIssuedGiftCards",
		Method:      http.MethodGet,
		Path:        "/api/v1/gift-cards/issued",
		Summary:     "List issued gift cards",
		Description: "Returns gift cards the caller has issued to others",
		Tags:        []string{"Gift Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListIssuedGiftCards)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGiftCard",
		Method:      http.MethodGet,
		Path:        "/api/v1/gift-cards/{id}",
		Summary:     "Get gift card",
		Tags:        []string{"Gift Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetGiftCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateGiftCard",
		Method:      http.MethodPatch,
		Path:        "/api/v1/gift-cards/{id}",
		Summary:     "Update gift card",
		Description: "Applies a partial update to an unredeemed card. Admin only.",
		Tags:        []string{"Gift Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateGiftCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteGiftCard",
		Method:      http.MethodDelete,
		Path:        "/api/v1/gift-cards/{id}",
		Summary:     "Delete gift card",
		Description: "Soft-deletes a gift card. Admin only.",
		Tags:        []string{"Gift Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteGiftCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "applyGiftCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/gift-cards/{id}/apply",
		Summary:     "Apply gift card to cart",
		Tags:        []string{"Gift Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleApplyGiftCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeGiftCardFromCart",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cart/gift-card",
		Summary:     "Detach gift card from cart",
		Tags:        []string{"Gift Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveGiftCardFromCart)

	huma.Register(s.api, huma.Operation{
		OperationID: "redeemGiftCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/gift-cards/{id}/redeem",
		Summary:     "Redeem gift card",
		Description: "Marks the card redeemed. Redemption is terminal.",
		Tags:        []string{"Gift Cards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRedeemGiftCard)
}

// === DTOs ===

// CreateGiftCardInput wraps the issue request for Huma.
type CreateGiftCardInput struct {
	Authorization string `header:"Authorization"`
	Body          service.CreateGiftCardRequest
}

// UpdateGiftCardInput wraps the update request for Huma.
type UpdateGiftCardInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Gift card ID"`
	Body          service.UpdateGiftCardRequest
}

// GiftCardIDInput identifies a gift card for an authenticated operation.
type GiftCardIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Gift card ID"`
}

// GiftCardOutput wraps a single gift card for Huma.
type GiftCardOutput struct {
	Body *domain.GiftCard
}

// ListGiftCardsInput carries the optional active-only filter.
type ListGiftCardsInput struct {
	Authorization string `header:"Authorization"`
	Active        bool   `query:"active" doc:"Only cards that are unredeemed and unexpired"`
}

// GiftCardListOutput wraps a gift card list for Huma.
type GiftCardListOutput struct {
	Body struct {
		GiftCards []*domain.GiftCard `json:"gift_cards" doc:"Issued gift cards"`
	}
}

// === Handlers ===

func (s *Server) handleCreateGiftCard(ctx context.Context, input *CreateGiftCardInput) (*GiftCardOutput, error) {
	issuer, err := s.authenticateAndRequireAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	card, err := s.services.GiftCard.CreateGiftCard(ctx, issuer, input.Body)
	if err != nil {
		return nil, err
	}
	return &GiftCardOutput{Body: card}, nil
}

func (s *Server) handleListAllGiftCards(ctx context.Context, input *AuthedInput) (*GiftCardListOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	cards, err := s.services.GiftCard.ListAllGiftCards(ctx)
	if err != nil {
		return nil, err
	}

	out := &GiftCardListOutput{}
	out.Body.GiftCards = cards
	return out, nil
}

func (s *Server) handleListGiftCards(ctx context.Context, input *ListGiftCardsInput) (*GiftCardListOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var cards []*domain.GiftCard
	if input.Active {
		cards, err = s.services.GiftCard.ListActiveGiftCards(ctx, user.ID)
	} else {
		cards, err = s.services.GiftCard.ListGiftCards(ctx, user.ID)
	}
	if err != nil {
		return nil, err
	}

	out := &GiftCardListOutput{}
	out.Body.GiftCards = cards
	return out, nil
}

func (s *Server) handleListIssuedGiftCards(ctx context.Context, input *AuthedInput) (*GiftCardListOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	cards, err := s.services.GiftCard.ListIssuedGiftCards(ctx, user)
	if err != nil {
		return nil, err
	}

	out := &GiftCardListOutput{}
	out.Body.GiftCards = cards
	return out, nil
}

func (s *Server) handleGetGiftCard(ctx context.Context, input *GiftCardIDInput) (*GiftCardOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	card, err := s.services.GiftCard.GetGiftCard(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if card.RecipientID != user.ID && !user.IsAdmin() {
		return nil, huma.Error404NotFound("Gift card not found")
	}
	return &GiftCardOutput{Body: card}, nil
}

func (s *Server) handleUpdateGiftCard(ctx context.Context, input *UpdateGiftCardInput) (*GiftCardOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	card, err := s.services.GiftCard.UpdateGiftCard(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &GiftCardOutput{Body: card}, nil
}

func (s *Server) handleDeleteGiftCard(ctx context.Context, input *GiftCardIDInput) (*MessageOutput, error) {
	actor, err := s.authenticateAndRequireAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.GiftCard.DeleteGiftCard(ctx, actor, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "gift card deleted"}}, nil
}

func (s *Server) handleApplyGiftCard(ctx context.Context, input *GiftCardIDInput) (*CartViewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.GiftCard.ApplyToCart(ctx, user, input.ID); err != nil {
		return nil, err
	}

	view, err := s.services.Cart.PriceCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &CartViewOutput{Body: view}, nil
}

func (s *Server) handleRemoveGiftCardFromCart(ctx context.Context, input *AuthedInput) (*CartViewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.GiftCard.RemoveFromCart(ctx, user.ID); err != nil {
		return nil, err
	}

	view, err := s.services.Cart.PriceCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &CartViewOutput{Body: view}, nil
}

func (s *Server) handleRedeemGiftCard(ctx context.Context, input *GiftCardIDInput) (*GiftCardOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	card, err := s.services.GiftCard.Redeem(ctx, user, input.ID)
	if err != nil {
		return nil, err
	}
	return &GiftCardOutput{Body: card}, nil
}
