package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// GiftCardService manages fixed-amount vouchers issued to individual users.
type GiftCardService struct {
	store     *store.Store
	cfg       config.PricingConfig
	validator *validation.Validator
	logger    *slog.Logger
}

// NewGiftCardService creates a new gift card service.
func NewGiftCardService(store *store.Store, cfg config.PricingConfig, validator *validation.Validator, logger *slog.Logger) *GiftCardService {
	return &GiftCardService{
		store:     store,
		cfg:       cfg,
		validator: validator,
		logger:    logger,
	}
}

// CreateGiftCardRequest contains the fields for issuing a gift card.
type CreateGiftCardRequest struct {
	Name         string          `json:"name" validate:"required,max=200"`
	Description  string          `json:"description,omitempty" validate:"max=1000"`
	Amount       float64         `json:"amount" validate:"required,gt=0"`
	CurrencyCode domain.Currency `json:"currency_code,omitempty"`
	RecipientID  string          `json:"recipient_id" validate:"required"`
	ExpiresAt    int64           `json:"expires_at,omitempty" validate:"gte=0"`
}

// CreateGiftCard issues a gift card to a recipient. Cards without an explicit
// expiry get the configured default, measured from issuance.
func (s *GiftCardService) CreateGiftCard(ctx context.Context, issuer *domain.User, req CreateGiftCardRequest) (*domain.GiftCard, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	currency := req.CurrencyCode
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	if !currency.Valid() {
		return nil, apperrors.Validationf("unsupported currency %q", currency)
	}

	recipient, err := s.store.Users.Get(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("recipient not found")
		}
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	if recipient.Status == domain.StatusDeleted {
		return nil, apperrors.NotFound("recipient not found")
	}

	now := time.Now()
	expiresAt := req.ExpiresAt
	if expiresAt == 0 {
		expiresAt = now.AddDate(0, 0, s.cfg.GiftCardExpiryDays).UnixMilli()
	} else if expiresAt <= now.UnixMilli() {
		return nil, apperrors.Validation("expiry must be in the future")
	}

	cardID, err := id.Generate("giftcard")
	if err != nil {
		return nil, fmt.Errorf("generate gift card ID: %w", err)
	}

	card := &domain.GiftCard{
		Name:         req.Name,
		Description:  req.Description,
		Amount:       req.Amount,
		CurrencyCode: currency,
		RecipientID:  req.RecipientID,
		IssuedBy:     ActorFor(issuer),
		ExpiresAt:    expiresAt,
		Status:       domain.StatusActive,
	}
	card.ID = cardID
	card.InitTimestamps()

	if err := s.store.GiftCards.Create(ctx, cardID, card); err != nil {
		return nil, fmt.Errorf("create gift card: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Gift card issued", "gift_card_id", cardID, "recipient_id", req.RecipientID, "amount", req.Amount)
	}
	return card, nil
}

// UpdateGiftCardRequest contains the mutable fields of an unredeemed card.
type UpdateGiftCardRequest struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string  `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	ExpiresAt   *int64   `json:"expires_at,omitempty"`
}

// UpdateGiftCard applies a partial update. Redeemed cards are immutable.
func (s *GiftCardService) UpdateGiftCard(ctx context.Context, cardID string, req UpdateGiftCardRequest) (*domain.GiftCard, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	card, err := s.GetGiftCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.IsRedeemed {
		return nil, apperrors.AlreadyRedeemed("gift card has already been redeemed")
	}

	if req.Name != "" {
		card.Name = req.Name
	}
	if req.Description != nil {
		card.Description = *req.Description
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, apperrors.Validation("amount must be positive")
		}
		card.Amount = *req.Amount
	}
	if req.ExpiresAt != nil {
		if *req.ExpiresAt != 0 && *req.ExpiresAt <= time.Now().UnixMilli() {
			return nil, apperrors.Validation("expiry must be in the future")
		}
		card.ExpiresAt = *req.ExpiresAt
	}
	card.Touch()

	if err := s.store.GiftCards.Update(ctx, cardID, card); err != nil {
		return nil, fmt.Errorf("update gift card: %w", err)
	}
	return card, nil
}

// GetGiftCard returns a card by ID. Soft-deleted cards read as missing.
func (s *GiftCardService) GetGiftCard(ctx context.Context, cardID string) (*domain.GiftCard, error) {
	card, err := s.store.GiftCards.Get(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("gift card not found")
		}
		return nil, fmt.Errorf("get gift card: %w", err)
	}
	if card.Status == domain.StatusDeleted {
		return nil, apperrors.NotFound("gift card not found")
	}
	return card, nil
}

// ListGiftCards returns all of a recipient's cards, soft-deleted ones
// excluded.
func (s *GiftCardService) ListGiftCards(ctx context.Context, recipientID string) ([]*domain.GiftCard, error) {
	var cards []*domain.GiftCard
	for card, err := range s.store.GiftCards.ListByIndex(ctx, "recipient", recipientID) {
		if err != nil {
			return nil, fmt.Errorf("list gift cards: %w", err)
		}
		if card.Status == domain.StatusDeleted {
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// ListActiveGiftCards returns the recipient's cards that can still be
// spent: not deleted, not redeemed, not expired.
func (s *GiftCardService) ListActiveGiftCards(ctx context.Context, recipientID string) ([]*domain.GiftCard, error) {
	cards, err := s.ListGiftCards(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	active := cards[:0]
	for _, card := range cards {
		if card.IsRedeemed || card.IsExpired(now) {
			continue
		}
		active = append(active, card)
	}
	return active, nil
}

// ListIssuedGiftCards returns the cards a user has issued to others. The
// root admin is recorded by email rather than ID, so both are matched.
func (s *GiftCardService) ListIssuedGiftCards(ctx context.Context, issuer *domain.User) ([]*domain.GiftCard, error) {
	var cards []*domain.GiftCard
	for card, err := range s.store.GiftCards.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list issued gift cards: %w", err)
		}
		if card.Status == domain.StatusDeleted {
			continue
		}
		if card.IssuedBy.ID == issuer.ID || (card.IssuedBy.Email != "" && card.IssuedBy.Email == issuer.Email) {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

// ListAllGiftCards returns every card in the store, for admin review.
func (s *GiftCardService) ListAllGiftCards(ctx context.Context) ([]*domain.GiftCard, error) {
	var cards []*domain.GiftCard
	for card, err := range s.store.GiftCards.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list gift cards: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// ApplyToCart attaches one of the user's cards to their cart. The card must
// belong to them and still be redeemable.
func (s *GiftCardService) ApplyToCart(ctx context.Context, user *domain.User, cardID string) (*domain.Cart, error) {
	card, err := s.GetGiftCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.RecipientID != user.ID {
		return nil, apperrors.Forbidden("gift card belongs to another user")
	}

	now := time.Now()
	if card.IsRedeemed {
		return nil, apperrors.AlreadyRedeemed("gift card has already been redeemed")
	}
	if card.IsExpired(now) {
		return nil, apperrors.Expired("gift card has expired")
	}
	if card.Status != domain.StatusActive {
		return nil, apperrors.NotFound("gift card not found")
	}

	cart, err := s.ownerCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	cart.GiftCardID = cardID
	cart.Touch()
	if err := s.store.Carts.Update(ctx, cart.ID, cart); err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return cart, nil
}

// RemoveFromCart detaches any gift card from the owner's cart.
func (s *GiftCardService) RemoveFromCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart, err := s.ownerCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	cart.GiftCardID = ""
	cart.Touch()
	if err := s.store.Carts.Update(ctx, cart.ID, cart); err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return cart, nil
}

// Redeem consumes the card for its full amount. Redemption is terminal and
// detaches the card from the owner's cart if it was applied there.
func (s *GiftCardService) Redeem(ctx context.Context, user *domain.User, cardID string) (*domain.GiftCard, error) {
	card, err := s.GetGiftCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.RecipientID != user.ID {
		return nil, apperrors.Forbidden("gift card belongs to another user")
	}

	now := time.Now()
	if card.IsRedeemed {
		return nil, apperrors.AlreadyRedeemed("gift card has already been redeemed")
	}
	if card.IsExpired(now) {
		return nil, apperrors.Expired("gift card has expired")
	}

	card.IsRedeemed = true
	card.RedeemedAt = now.UnixMilli()
	card.Touch()
	if err := s.store.GiftCards.Update(ctx, cardID, card); err != nil {
		return nil, fmt.Errorf("update gift card: %w", err)
	}

	if cart, err := s.ownerCart(ctx, user.ID); err == nil && cart.GiftCardID == cardID {
		cart.GiftCardID = ""
		cart.Touch()
		if err := s.store.Carts.Update(ctx, cart.ID, cart); err != nil && s.logger != nil {
			s.logger.Warn("Failed to detach redeemed gift card from cart", "cart_id", cart.ID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Gift card redeemed", "gift_card_id", cardID, "user_id", user.ID)
	}
	return card, nil
}

// DeleteGiftCard soft-deletes a card, recording the actor.
func (s *GiftCardService) DeleteGiftCard(ctx context.Context, actor *domain.User, cardID string) error {
	card, err := s.GetGiftCard(ctx, cardID)
	if err != nil {
		return err
	}

	issuer := ActorFor(actor)
	card.Status = domain.StatusDeleted
	card.DeletedBy = &domain.DeletedBy{Role: issuer.Type, ID: issuer.ID, Email: issuer.Email}
	card.Touch()

	if err := s.store.GiftCards.Update(ctx, cardID, card); err != nil {
		return fmt.Errorf("update gift card: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Gift card deleted", "gift_card_id", cardID, "actor_id", actor.ID)
	}
	return nil
}

func (s *GiftCardService) ownerCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart, err := s.store.Carts.GetByIndex(ctx, "owner", ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("cart not found")
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}
