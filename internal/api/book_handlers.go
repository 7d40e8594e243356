package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns active books, filtered and sorted",
		Tags:        []string{"Catalog"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Catalog"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Adds a book to the catalog. Admin only.",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Applies a partial update. Admin only.",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Soft-deletes a catalog entry. Admin only.",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Tags:        []string{"Catalog"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create category",
		Description: "Adds a browsing category. Admin only.",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "List authors",
		Tags:        []string{"Catalog"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "createAuthor",
		Method:      http.MethodPost,
		Path:        "/api/v1/authors",
		Summary:     "Create author",
		Description: "Adds an author. Admin only.",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "createEdition",
		Method:      http.MethodPost,
		Path:        "/api/v1/editions",
		Summary:     "Create edition",
		Description: "Adds an edition. Admin only.",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateEdition)
}

// === DTOs ===

// BookResponse contains catalog entry data in API responses.
type BookResponse struct {
	ID          string             `json:"id" doc:"Book ID"`
	Title       string             `json:"title" doc:"Title"`
	Description domain.Description `json:"description" doc:"Short and long description"`
	Price       float64            `json:"price" doc:"Unit price"`
	AuthorID    string             `json:"author_id" doc:"Author ID"`
	CategoryID  string             `json:"category_id" doc:"Category ID"`
	EditionID   string             `json:"edition_id,omitempty" doc:"Edition ID"`
	Pages       int                `json:"pages,omitempty" doc:"Page count"`
	Images      []domain.Image     `json:"images,omitempty" doc:"Cover and gallery art"`
	MaxQuantity int                `json:"max_quantity,omitempty" doc:"Per-cart copy cap, zero means uncapped"`
	Status      string             `json:"status" doc:"Lifecycle status"`
	CreatedAt   time.Time          `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time          `json:"updated_at" doc:"Last update time"`
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Price:       b.Price,
		AuthorID:    b.AuthorID,
		CategoryID:  b.CategoryID,
		EditionID:   b.EditionID,
		Pages:       b.Pages,
		Images:      b.Images,
		MaxQuantity: b.MaxQuantity,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ListBooksInput contains catalog listing parameters.
type ListBooksInput struct {
	CategoryID string `query:"category_id" doc:"Filter by category"`
	AuthorID   string `query:"author_id" doc:"Filter by author"`
	SortBy     string `query:"sort_by" enum:"title,price,created_at" doc:"Sort field"`
	SortOrder  string `query:"sort_order" enum:"asc,desc" doc:"Sort direction"`
	Limit      int    `query:"limit" minimum:"0" maximum:"200" doc:"Page size"`
	Offset     int    `query:"offset" minimum:"0" doc:"Page offset"`
}

// BookListResponse contains a page of books.
type BookListResponse struct {
	Books []BookResponse `json:"books" doc:"Catalog entries"`
}

// BookListOutput wraps the book list for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// GetBookInput identifies a book by path.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookViewResponse is a book with its author and category resolved.
type BookViewResponse struct {
	BookResponse
	Author   *domain.Author   `json:"author,omitempty" doc:"Resolved author"`
	Category *domain.Category `json:"category,omitempty" doc:"Resolved category"`
}

// BookViewOutput wraps the resolved book view for Huma.
type BookViewOutput struct {
	Body BookViewResponse
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          service.CreateBookRequest
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          service.UpdateBookRequest
}

// BookIDInput identifies a book for an authenticated operation.
type BookIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// CategoryListOutput wraps the category list for Huma.
type CategoryListOutput struct {
	Body struct {
		Categories []*domain.Category `json:"categories" doc:"Browsing categories"`
	}
}

// CreateCategoryInput wraps the create category request for Huma.
type CreateCategoryInput struct {
	Authorization string `header:"Authorization"`
	Body          service.CreateCategoryRequest
}

// CategoryOutput wraps a single category for Huma.
type CategoryOutput struct {
	Body *domain.Category
}

// AuthorListOutput wraps the author list for Huma.
type AuthorListOutput struct {
	Body struct {
		Authors []*domain.Author `json:"authors" doc:"Authors"`
	}
}

// CreateAuthorInput wraps the create author request for Huma.
type CreateAuthorInput struct {
	Authorization string `header:"Authorization"`
	Body          service.CreateAuthorRequest
}

// AuthorOutput wraps a single author for Huma.
type AuthorOutput struct {
	Body *domain.Author
}

// CreateEditionInput wraps the create edition request for Huma.
type CreateEditionInput struct {
	Authorization string `header:"Authorization"`
	Body          service.CreateEditionRequest
}

// EditionOutput wraps a single edition for Huma.
type EditionOutput struct {
	Body *domain.Edition
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	books, err := s.services.Book.ListBooks(ctx, service.ListBooksParams{
		CategoryID: input.CategoryID,
		AuthorID:   input.AuthorID,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
		Limit:      input.Limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = toBookResponse(b)
	}
	return &BookListOutput{Body: BookListResponse{Books: resp}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookViewOutput, error) {
	view, err := s.services.Book.GetBookView(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if view.Status == domain.StatusDeleted {
		return nil, huma.Error404NotFound("Book not found")
	}

	return &BookViewOutput{Body: BookViewResponse{
		BookResponse: toBookResponse(view.Book),
		Author:       view.Author,
		Category:     view.Category,
	}}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	actor, err := s.authenticateAndRequireAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, actor, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "book deleted"}}, nil
}

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*CategoryListOutput, error) {
	categories, err := s.services.Book.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := &CategoryListOutput{}
	out.Body.Categories = categories
	return out, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	category, err := s.services.Book.CreateCategory(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: category}, nil
}

func (s *Server) handleListAuthors(ctx context.Context, _ *struct{}) (*AuthorListOutput, error) {
	authors, err := s.services.Book.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}

	out := &AuthorListOutput{}
	out.Body.Authors = authors
	return out, nil
}

func (s *Server) handleCreateAuthor(ctx context.Context, input *CreateAuthorInput) (*AuthorOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	author, err := s.services.Book.CreateAuthor(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: author}, nil
}

func (s *Server) handleCreateEdition(ctx context.Context, input *CreateEditionInput) (*EditionOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	edition, err := s.services.Book.CreateEdition(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &EditionOutput{Body: edition}, nil
}
