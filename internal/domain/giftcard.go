package domain

import "time"

// GiftCard is a fixed-amount voucher issued to a single recipient. The full
// amount is always consumed on use; there is no partial redemption or
// remaining balance.
type GiftCard struct {
	Record
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Amount       float64    `json:"amount"`
	CurrencyCode Currency   `json:"currency_code"`
	RecipientID  string     `json:"recipient_id"`
	IssuedBy     IssuedBy   `json:"issued_by"`
	ExpiresAt    int64      `json:"expires_at,omitempty"`
	IsRedeemed   bool       `json:"is_redeemed"`
	RedeemedAt   int64      `json:"redeemed_at,omitempty"`
	Status       Status     `json:"status"`
	DeletedBy    *DeletedBy `json:"deleted_by,omitempty"`
}

// IsExpired reports whether the card's expiry instant has passed. Cards
// without an expiry never expire.
func (g *GiftCard) IsExpired(now time.Time) bool {
	return g.ExpiresAt != 0 && g.ExpiresAt < now.UnixMilli()
}

// Redeemable reports whether the card can still be applied to a cart.
func (g *GiftCard) Redeemable(now time.Time) bool {
	return g.Status == StatusActive && !g.IsRedeemed && !g.IsExpired(now)
}
