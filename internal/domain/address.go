package domain

// Phone is a dialable number with its country prefix.
type Phone struct {
	CountryCode string `json:"country_code"`
	Number      string `json:"number"`
}

// Address is a delivery address owned by a user. A user may keep several and
// attach one to their cart.
type Address struct {
	Record
	UserID        string  `json:"user_id"`
	RecipientName string  `json:"recipient_name"`
	Phones        []Phone `json:"phones,omitempty"`
	HouseNo       string  `json:"house_no,omitempty"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	Country       string  `json:"country"`
	Pincode       string  `json:"pincode"`
	Landmark      string  `json:"landmark,omitempty"`
	Tag           string  `json:"tag,omitempty"`
}
