package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/pricing"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// CartService manages each user's single open cart and its price breakdown.
type CartService struct {
	store     *store.Store
	engine    *pricing.Engine
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(store *store.Store, engine *pricing.Engine, validator *validation.Validator, logger *slog.Logger) *CartService {
	return &CartService{
		store:     store,
		engine:    engine,
		validator: validator,
		logger:    logger,
	}
}

// CartItemInput is one book and quantity in a cart mutation batch.
type CartItemInput struct {
	BookID   string `json:"book_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// MutateItemsRequest is a batch of cart line changes.
type MutateItemsRequest struct {
	Items []CartItemInput `json:"items" validate:"required,min=1,dive"`
}

// GetCart returns the owner's cart, or NotFound if they have none.
func (s *CartService) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart, err := s.store.Carts.GetByIndex(ctx, "owner", ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("cart not found")
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// AddItems adds a batch of lines to the owner's cart, creating the cart if
// they have none. Quantities for books already in the cart merge into the
// existing line. Every resulting quantity is clamped to the book's per-cart
// cap. The delivery estimate is refreshed on every mutation.
//
// The batch is all-or-nothing: a duplicate book ID within it is a conflict,
// and an unknown book fails the whole request.
func (s *CartService) AddItems(ctx context.Context, ownerID string, req MutateItemsRequest) (*domain.Cart, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(req.Items))
	for _, item := range req.Items {
		if _, dup := seen[item.BookID]; dup {
			return nil, apperrors.Conflictf("duplicate book %s in request", item.BookID)
		}
		seen[item.BookID] = struct{}{}
	}

	books := make(map[string]*domain.Book, len(req.Items))
	for _, item := range req.Items {
		book, err := s.store.Books.Get(ctx, item.BookID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.NotFoundf("book %s not found", item.BookID)
			}
			return nil, fmt.Errorf("get book: %w", err)
		}
		if book.Status != domain.StatusActive {
			return nil, apperrors.NotFoundf("book %s not found", item.BookID)
		}
		books[item.BookID] = book
	}

	now := time.Now()
	cart, err := s.GetCart(ctx, ownerID)
	created := false
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		cartID, idErr := id.Generate("cart")
		if idErr != nil {
			return nil, fmt.Errorf("generate cart ID: %w", idErr)
		}
		cart = &domain.Cart{
			OwnerID:      ownerID,
			CurrencyCode: domain.DefaultCurrency,
		}
		cart.ID = cartID
		cart.InitTimestamps()
		created = true
	}

	for _, item := range req.Items {
		book := books[item.BookID]
		if i := cart.FindItem(item.BookID); i >= 0 {
			cart.Items[i].Quantity = book.ClampQuantity(cart.Items[i].Quantity + item.Quantity)
		} else {
			cart.Items = append(cart.Items, domain.LineItem{
				BookID:   item.BookID,
				Quantity: book.ClampQuantity(item.Quantity),
			})
		}
	}
	cart.Delivery = domain.EstimateDelivery(now)
	cart.Touch()

	if created {
		if err := s.store.Carts.Create(ctx, cart.ID, cart); err != nil {
			return nil, fmt.Errorf("create cart: %w", err)
		}
	} else {
		if err := s.store.Carts.Update(ctx, cart.ID, cart); err != nil {
			return nil, fmt.Errorf("update cart: %w", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Cart items added", "cart_id", cart.ID, "owner_id", ownerID, "lines", len(req.Items))
	}
	return cart, nil
}

// RemoveItems decrements a batch of lines in the owner's cart. Removing at
// least as many copies as a line holds drops the line; a cart with no lines
// left is deleted outright. Referencing a book the cart does not hold fails
// the request.
func (s *CartService) RemoveItems(ctx context.Context, ownerID string, req MutateItemsRequest) (*domain.Cart, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	cart, err := s.GetCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		i := cart.FindItem(item.BookID)
		if i < 0 {
			return nil, apperrors.NotFoundf("book %s is not in the cart", item.BookID)
		}
		if item.Quantity >= cart.Items[i].Quantity {
			cart.RemoveItem(item.BookID)
		} else {
			cart.Items[i].Quantity -= item.Quantity
		}
	}

	if cart.IsEmpty() {
		if err := s.store.Carts.Delete(ctx, cart.ID); err != nil {
			return nil, fmt.Errorf("delete cart: %w", err)
		}
		if s.logger != nil {
			s.logger.Info("Cart emptied and removed", "cart_id", cart.ID, "owner_id", ownerID)
		}
		return nil, nil
	}

	cart.Delivery = domain.EstimateDelivery(time.Now())
	cart.Touch()
	if err := s.store.Carts.Update(ctx, cart.ID, cart); err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return cart, nil
}

// ClearCart deletes the owner's cart. Clearing a missing cart is a no-op.
func (s *CartService) ClearCart(ctx context.Context, ownerID string) error {
	cart, err := s.GetCart(ctx, ownerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.store.Carts.Delete(ctx, cart.ID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// SetTip sets the tip amount on the owner's cart.
func (s *CartService) SetTip(ctx context.Context, ownerID string, tip float64) (*domain.Cart, error) {
	if tip < 0 {
		return nil, apperrors.Validation("tip must not be negative")
	}
	cart, err := s.GetCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	cart.Tip = tip
	cart.Touch()
	if err := s.store.Carts.Update(ctx, cart.ID, cart); err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return cart, nil
}

// SetAddress attaches one of the owner's delivery addresses to the cart.
func (s *CartService) SetAddress(ctx context.Context, ownerID, addressID string) (*domain.Cart, error) {
	address, err := s.store.Addresses.Get(ctx, addressID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("address not found")
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	if address.UserID != ownerID {
		return nil, apperrors.Forbidden("address belongs to another user")
	}

	cart, err := s.GetCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	cart.AddressID = addressID
	cart.Touch()
	if err := s.store.Carts.Update(ctx, cart.ID, cart); err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return cart, nil
}

// CartView is a cart with its resolved lines and price breakdown. Breakdown
// is nil when an attached promo code turned out ineligible for the cart's
// current shape.
type CartView struct {
	Cart      *domain.Cart       `json:"cart"`
	Lines     []ResolvedCartLine `json:"lines"`
	Breakdown *pricing.Breakdown `json:"breakdown,omitempty"`
}

// ResolvedCartLine pairs a cart line with its book. Book is nil when the
// catalog entry has since been deleted.
type ResolvedCartLine struct {
	BookID   string       `json:"book_id"`
	Quantity int          `json:"quantity"`
	Book     *domain.Book `json:"book,omitempty"`
}

// PriceCart resolves the owner's cart and computes its breakdown, including
// any attached gift card and promo code. Lifecycle failures on an attached
// voucher surface as errors; an ineligible promo code yields a view with a
// nil breakdown.
func (s *CartService) PriceCart(ctx context.Context, ownerID string) (*CartView, error) {
	cart, err := s.GetCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.priceCart(ctx, cart)
}

func (s *CartService) priceCart(ctx context.Context, cart *domain.Cart) (*CartView, error) {
	lines, resolved, err := s.resolveLines(ctx, cart)
	if err != nil {
		return nil, err
	}

	var card *domain.GiftCard
	if cart.GiftCardID != "" {
		card, err = s.store.GiftCards.Get(ctx, cart.GiftCardID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.NotFound("gift card not found")
			}
			return nil, fmt.Errorf("get gift card: %w", err)
		}
	}

	var code *domain.PromoCode
	if cart.PromoCodeID != "" {
		code, err = s.store.PromoCodes.Get(ctx, cart.PromoCodeID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.NotFound("promo code not found")
			}
			return nil, fmt.Errorf("get promo code: %w", err)
		}
		// A code retired after attachment must not keep discounting.
		if code.Status != domain.StatusActive {
			return nil, apperrors.NotFound("promo code not found")
		}
	}

	breakdown, err := s.engine.Compute(lines, card, code, time.Now())
	if err != nil {
		return nil, err
	}

	return &CartView{Cart: cart, Lines: resolved, Breakdown: breakdown}, nil
}

// resolveLines fetches each line's book. Books that have gone missing or
// been soft-deleted since the line was added resolve to nil so pricing can
// still count the quantity.
func (s *CartService) resolveLines(ctx context.Context, cart *domain.Cart) ([]pricing.ResolvedLine, []ResolvedCartLine, error) {
	lines := make([]pricing.ResolvedLine, 0, len(cart.Items))
	resolved := make([]ResolvedCartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		book, err := s.store.Books.Get(ctx, item.BookID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return nil, nil, fmt.Errorf("get book %s: %w", item.BookID, err)
			}
			book = nil
		}
		if book != nil && book.Status == domain.StatusDeleted {
			book = nil
		}
		lines = append(lines, pricing.ResolvedLine{Book: book, Quantity: item.Quantity})
		resolved = append(resolved, ResolvedCartLine{BookID: item.BookID, Quantity: item.Quantity, Book: book})
	}
	return lines, resolved, nil
}

// CreateAddressRequest contains the fields for a new delivery address.
type CreateAddressRequest struct {
	RecipientName string         `json:"recipient_name" validate:"required,max=200"`
	Phones        []domain.Phone `json:"phones" validate:"required,min=1"`
	HouseNo       string         `json:"house_no" validate:"required,max=200"`
	City          string         `json:"city" validate:"required,max=100"`
	State         string         `json:"state" validate:"required,max=100"`
	Country       string         `json:"country" validate:"required,max=100"`
	Pincode       string         `json:"pincode" validate:"required,max=20"`
	Landmark      string         `json:"landmark,omitempty" validate:"max=200"`
	Tag           string         `json:"tag,omitempty" validate:"max=50"`
}

// CreateAddress saves a delivery address for the user.
func (s *CartService) CreateAddress(ctx context.Context, ownerID string, req CreateAddressRequest) (*domain.Address, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	addressID, err := id.Generate("address")
	if err != nil {
		return nil, fmt.Errorf("generate address ID: %w", err)
	}

	address := &domain.Address{
		UserID:        ownerID,
		RecipientName: req.RecipientName,
		Phones:        req.Phones,
		HouseNo:       req.HouseNo,
		City:          req.City,
		State:         req.State,
		Country:       req.Country,
		Pincode:       req.Pincode,
		Landmark:      req.Landmark,
		Tag:           req.Tag,
	}
	address.ID = addressID
	address.InitTimestamps()

	if err := s.store.Addresses.Create(ctx, addressID, address); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return address, nil
}

// ListAddresses returns all delivery addresses saved by the user.
func (s *CartService) ListAddresses(ctx context.Context, ownerID string) ([]*domain.Address, error) {
	var addresses []*domain.Address
	for address, err := range s.store.Addresses.ListByIndex(ctx, "user", ownerID) {
		if err != nil {
			return nil, fmt.Errorf("list addresses: %w", err)
		}
		addresses = append(addresses, address)
	}
	return addresses, nil
}
