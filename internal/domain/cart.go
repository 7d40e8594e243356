package domain

import "time"

// LineItem is one book and quantity in a cart.
type LineItem struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

// DeliveryEstimate is the promised delivery slot attached when a cart is
// created. Date is the day of month, Day the weekday (Sunday = 0) and Time
// the instant in epoch milliseconds.
type DeliveryEstimate struct {
	Date int   `json:"date"`
	Day  int   `json:"day"`
	Time int64 `json:"time"`
}

// EstimateDelivery computes the delivery slot two days out from now.
func EstimateDelivery(now time.Time) DeliveryEstimate {
	at := now.Add(48 * time.Hour)
	return DeliveryEstimate{
		Date: at.Day(),
		Day:  int(at.Weekday()),
		Time: at.UnixMilli(),
	}
}

// Cart is a user's open shopping cart. Each user has at most one; an emptied
// cart is removed from the store entirely.
type Cart struct {
	Record
	OwnerID      string           `json:"owner_id"`
	AddressID    string           `json:"address_id,omitempty"`
	Items        []LineItem       `json:"items"`
	CurrencyCode Currency         `json:"currency_code"`
	Tip          float64          `json:"tip,omitempty"`
	GiftCardID   string           `json:"gift_card_id,omitempty"`
	PromoCodeID  string           `json:"promo_code_id,omitempty"`
	Delivery     DeliveryEstimate `json:"delivery"`
}

// FindItem returns the index of the line holding bookID, or -1.
func (c *Cart) FindItem(bookID string) int {
	for i, it := range c.Items {
		if it.BookID == bookID {
			return i
		}
	}
	return -1
}

// RemoveItem drops the line holding bookID, if present.
func (c *Cart) RemoveItem(bookID string) {
	if i := c.FindItem(bookID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalQuantity sums quantities across all lines.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}
