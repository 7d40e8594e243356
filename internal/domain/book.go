package domain

// Description holds the short blurb and the full text for a book listing.
type Description struct {
	Short string `json:"short,omitempty"`
	Long  string `json:"long,omitempty"`
}

// Image is a named link to cover or gallery art.
type Image struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Book is a catalog entry. Relations to author, category and edition are by
// ID; the store resolves them on read where a view needs the full object.
//
// MaxQuantity caps how many copies a single cart may hold. Zero means
// uncapped.
type Book struct {
	Record
	Title       string      `json:"title"`
	Description Description `json:"description"`
	Price       float64     `json:"price"`
	AuthorID    string      `json:"author_id"`
	CategoryID  string      `json:"category_id"`
	EditionID   string      `json:"edition_id,omitempty"`
	Pages       int         `json:"pages,omitempty"`
	Images      []Image     `json:"images,omitempty"`
	MaxQuantity int         `json:"max_quantity,omitempty"`
	Status      Status      `json:"status"`
	DeletedBy   *DeletedBy  `json:"deleted_by,omitempty"`
}

// ClampQuantity applies the per-cart copy cap to a requested quantity.
func (b *Book) ClampQuantity(qty int) int {
	if b.MaxQuantity > 0 && qty > b.MaxQuantity {
		return b.MaxQuantity
	}
	return qty
}

// Category groups books for browsing and promo eligibility.
type Category struct {
	Record
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
}

// Author is a book author. Promo codes may be scoped to authors.
type Author struct {
	Record
	Name   string `json:"name"`
	Bio    string `json:"bio,omitempty"`
	Status Status `json:"status"`
}

// Edition identifies a print run or format of a title.
type Edition struct {
	Record
	Name string `json:"name"`
	Year int    `json:"year,omitempty"`
}
