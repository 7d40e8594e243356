package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/pricing"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// PromoCodeService manages discount codes and suggests them against carts.
type PromoCodeService struct {
	store     *store.Store
	carts     *CartService
	engine    *pricing.Engine
	validator *validation.Validator
	logger    *slog.Logger
}

// NewPromoCodeService creates a new promo code service.
func NewPromoCodeService(store *store.Store, carts *CartService, engine *pricing.Engine, validator *validation.Validator, logger *slog.Logger) *PromoCodeService {
	return &PromoCodeService{
		store:     store,
		carts:     carts,
		engine:    engine,
		validator: validator,
		logger:    logger,
	}
}

// CreatePromoCodeRequest contains the fields for a new promo code. Name is
// the code users type in and is unique, case-insensitive.
type CreatePromoCodeRequest struct {
	Name         string              `json:"name" validate:"required,max=100"`
	Description  string              `json:"description,omitempty" validate:"max=1000"`
	Discount     domain.DiscountRule `json:"discount"`
	Eligibility  *domain.Eligibility `json:"eligibility,omitempty"`
	UsageLimit   int                 `json:"usage_limit,omitempty" validate:"gte=0"`
	CurrencyCode domain.Currency     `json:"currency_code,omitempty"`
	ExpiresAt    int64               `json:"expires_at,omitempty" validate:"gte=0"`
}

func validateDiscountRule(rule domain.DiscountRule) error {
	switch rule.Kind {
	case domain.DiscountValue:
		if rule.Value <= 0 {
			return apperrors.Validation("discount value must be positive")
		}
	case domain.DiscountPercent:
		if rule.Percent <= 0 || rule.Percent > 100 {
			return apperrors.Validation("discount percent must be between 0 and 100")
		}
	case domain.DiscountPercentCapped:
		if rule.Percent <= 0 || rule.Percent > 100 {
			return apperrors.Validation("discount percent must be between 0 and 100")
		}
		if rule.MaxValue <= 0 {
			return apperrors.Validation("discount max_value must be positive")
		}
	default:
		return apperrors.Validationf("unknown discount kind %q", rule.Kind)
	}
	return nil
}

// CreatePromoCode adds a promo code. Category and author scopes are checked
// against the catalog so a code cannot be born pointing at nothing.
func (s *PromoCodeService) CreatePromoCode(ctx context.Context, issuer *domain.User, req CreatePromoCodeRequest) (*domain.PromoCode, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateDiscountRule(req.Discount); err != nil {
		return nil, err
	}

	currency := req.CurrencyCode
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	if !currency.Valid() {
		return nil, apperrors.Validationf("unsupported currency %q", currency)
	}
	if req.ExpiresAt != 0 && req.ExpiresAt <= time.Now().UnixMilli() {
		return nil, apperrors.Validation("expiry must be in the future")
	}

	if req.Eligibility != nil {
		for _, categoryID := range req.Eligibility.CategoryIDs {
			if _, err := s.store.Categories.Get(ctx, categoryID); err != nil {
				return nil, apperrors.NotFoundf("category %s not found", categoryID)
			}
		}
		for _, authorID := range req.Eligibility.AuthorIDs {
			if _, err := s.store.Authors.Get(ctx, authorID); err != nil {
				return nil, apperrors.NotFoundf("author %s not found", authorID)
			}
		}
	}

	codeID, err := id.Generate("promo")
	if err != nil {
		return nil, fmt.Errorf("generate promo code ID: %w", err)
	}

	code := &domain.PromoCode{
		Name:         req.Name,
		Description:  req.Description,
		Discount:     req.Discount,
		Eligibility:  req.Eligibility,
		UsageLimit:   req.UsageLimit,
		CurrencyCode: currency,
		IssuedBy:     ActorFor(issuer),
		ExpiresAt:    req.ExpiresAt,
		Status:       domain.StatusActive,
	}
	code.ID = codeID
	code.InitTimestamps()

	if err := s.store.PromoCodes.Create(ctx, codeID, code); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, apperrors.AlreadyExists("a promo code with this name already exists")
		}
		return nil, fmt.Errorf("create promo code: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Promo code created", "promo_code_id", codeID, "name", code.Name)
	}
	return code, nil
}

// UpdatePromoCodeRequest contains the mutable fields of a promo code. The
// name is immutable once issued.
type UpdatePromoCodeRequest struct {
	Description *string              `json:"description,omitempty"`
	Discount    *domain.DiscountRule `json:"discount,omitempty"`
	Eligibility *domain.Eligibility  `json:"eligibility,omitempty"`
	UsageLimit  *int                 `json:"usage_limit,omitempty"`
	ExpiresAt   *int64               `json:"expires_at,omitempty"`
	Status      domain.Status        `json:"status,omitempty" validate:"omitempty,oneof=active archived"`
}

// UpdatePromoCode applies a partial update to a promo code.
func (s *PromoCodeService) UpdatePromoCode(ctx context.Context, codeID string, req UpdatePromoCodeRequest) (*domain.PromoCode, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	code, err := s.GetPromoCode(ctx, codeID)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		code.Description = *req.Description
	}
	if req.Discount != nil {
		if err := validateDiscountRule(*req.Discount); err != nil {
			return nil, err
		}
		code.Discount = *req.Discount
	}
	if req.Eligibility != nil {
		code.Eligibility = req.Eligibility
	}
	if req.UsageLimit != nil {
		if *req.UsageLimit < 0 {
			return nil, apperrors.Validation("usage_limit must not be negative")
		}
		code.UsageLimit = *req.UsageLimit
	}
	if req.ExpiresAt != nil {
		code.ExpiresAt = *req.ExpiresAt
	}
	if req.Status != "" {
		code.Status = req.Status
	}
	code.Touch()

	if err := s.store.PromoCodes.Update(ctx, codeID, code); err != nil {
		return nil, fmt.Errorf("update promo code: %w", err)
	}
	return code, nil
}

// GetPromoCode returns a promo code by ID. Soft-deleted codes read as
// missing.
func (s *PromoCodeService) GetPromoCode(ctx context.Context, codeID string) (*domain.PromoCode, error) {
	code, err := s.store.PromoCodes.Get(ctx, codeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("promo code not found")
		}
		return nil, fmt.Errorf("get promo code: %w", err)
	}
	if code.Status == domain.StatusDeleted {
		return nil, apperrors.NotFound("promo code not found")
	}
	return code, nil
}

// GetPromoCodeByName looks a code up by its user-facing name,
// case-insensitively.
func (s *PromoCodeService) GetPromoCodeByName(ctx context.Context, name string) (*domain.PromoCode, error) {
	code, err := s.store.PromoCodes.GetByIndex(ctx, "name", name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("promo code not found")
		}
		return nil, fmt.Errorf("get promo code: %w", err)
	}
	if code.Status == domain.StatusDeleted {
		return nil, apperrors.NotFound("promo code not found")
	}
	return code, nil
}

// ListPromoCodes returns every promo code, for admin review.
func (s *PromoCodeService) ListPromoCodes(ctx context.Context) ([]*domain.PromoCode, error) {
	var codes []*domain.PromoCode
	for code, err := range s.store.PromoCodes.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list promo codes: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// DeletePromoCode soft-deletes a promo code, recording the actor.
func (s *PromoCodeService) DeletePromoCode(ctx context.Context, actor *domain.User, codeID string) error {
	code, err := s.GetPromoCode(ctx, codeID)
	if err != nil {
		return err
	}

	issuer := ActorFor(actor)
	code.Status = domain.StatusDeleted
	code.DeletedBy = &domain.DeletedBy{Role: issuer.Type, ID: issuer.ID, Email: issuer.Email}
	code.Touch()

	if err := s.store.PromoCodes.Update(ctx, codeID, code); err != nil {
		return fmt.Errorf("update promo code: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Promo code deleted", "promo_code_id", codeID, "actor_id", actor.ID)
	}
	return nil
}

// ApplyToCart attaches a promo code to the owner's cart by its name. The
// code is evaluated against the cart first: lifecycle failures surface as
// their own errors, and a cart that does not meet the code's criteria is
// rejected with the per-criterion report attached.
func (s *PromoCodeService) ApplyToCart(ctx context.Context, ownerID, name string) (*domain.Cart, *pricing.Report, error) {
	code, err := s.GetPromoCodeByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if code.Status != domain.StatusActive {
		return nil, nil, apperrors.NotFound("promo code not found")
	}

	cart, err := s.carts.GetCart(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}

	lines, _, err := s.carts.resolveLines(ctx, cart)
	if err != nil {
		return nil, nil, err
	}

	report, err := s.engine.Evaluate(code, lines, pricing.Aggregate(lines), time.Now())
	if err != nil {
		return nil, nil, err
	}
	if !report.Eligible {
		return nil, report, apperrors.Ineligible("promo code is not applicable to this cart", report)
	}

	cart.PromoCodeID = code.ID
	cart.Touch()
	if err := s.store.Carts.Update(ctx, cart.ID, cart); err != nil {
		return nil, nil, fmt.Errorf("update cart: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Promo code applied", "promo_code_id", code.ID, "cart_id", cart.ID)
	}
	return cart, report, nil
}

// RemoveFromCart detaches any promo code from the owner's cart.
func (s *PromoCodeService) RemoveFromCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart, err := s.carts.GetCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	cart.PromoCodeID = ""
	cart.Touch()
	if err := s.store.Carts.Update(ctx, cart.ID, cart); err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return cart, nil
}

// Suggestion is one promo code evaluated against a cart for display.
type Suggestion struct {
	PromoCode    *domain.PromoCode `json:"promo_code"`
	IsApplicable bool              `json:"is_applicable"`
	Report       *pricing.Report   `json:"report,omitempty"`
	Reason       string            `json:"reason,omitempty"`
}

// Suggest evaluates promo codes against the owner's cart. Candidates are
// codes with no eligibility scope plus codes whose category or author scope
// intersects what the cart actually holds; codes scoped entirely to absent
// categories and authors are not returned at all. Applicable codes come
// first with their matched-criteria detail, then inapplicable ones with a
// single reason. Expired and usage-exhausted codes are dropped rather than
// failing the whole request.
func (s *PromoCodeService) Suggest(ctx context.Context, ownerID string) ([]Suggestion, error) {
	cart, err := s.carts.GetCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	lines, _, err := s.carts.resolveLines(ctx, cart)
	if err != nil {
		return nil, err
	}
	totals := pricing.Aggregate(lines)

	var categoryIDs, authorIDs []string
	for _, line := range lines {
		if line.Book == nil {
			continue
		}
		if line.Book.CategoryID != "" && !slices.Contains(categoryIDs, line.Book.CategoryID) {
			categoryIDs = append(categoryIDs, line.Book.CategoryID)
		}
		if line.Book.AuthorID != "" && !slices.Contains(authorIDs, line.Book.AuthorID) {
			authorIDs = append(authorIDs, line.Book.AuthorID)
		}
	}

	now := time.Now()
	var applicable, inapplicable []Suggestion
	for code, err := range s.store.PromoCodes.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list promo codes: %w", err)
		}
		if code.Status == domain.StatusDeleted {
			continue
		}
		if !isCandidate(code, categoryIDs, authorIDs) {
			continue
		}

		report, err := s.engine.Evaluate(code, lines, totals, now)
		if err != nil {
			// Expired or exhausted candidates are simply not suggested.
			if errors.Is(err, apperrors.ErrExpired) || errors.Is(err, apperrors.ErrUsageLimitExceeded) {
				continue
			}
			return nil, err
		}

		if report.Eligible {
			applicable = append(applicable, Suggestion{
				PromoCode:    code,
				IsApplicable: true,
				Report:       report,
			})
		} else {
			inapplicable = append(inapplicable, Suggestion{
				PromoCode: code,
				Reason:    report.FailureReason(),
			})
		}
	}

	return append(applicable, inapplicable...), nil
}

// isCandidate reports whether a code is worth evaluating against a cart with
// the given distinct category and author sets. Unscoped codes always are;
// scoped codes must intersect at least one of the sets.
func isCandidate(code *domain.PromoCode, categoryIDs, authorIDs []string) bool {
	el := code.Eligibility
	if el == nil || (len(el.CategoryIDs) == 0 && len(el.AuthorIDs) == 0) {
		return true
	}
	for _, categoryID := range el.CategoryIDs {
		if slices.Contains(categoryIDs, categoryID) {
			return true
		}
	}
	for _, authorID := range el.AuthorIDs {
		if slices.Contains(authorIDs, authorID) {
			return true
		}
	}
	return false
}
