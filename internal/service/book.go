package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/search"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// BookService manages the catalog: books, categories, authors and editions.
type BookService struct {
	store     *store.Store
	search    *SearchService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new catalog service.
func NewBookService(store *store.Store, search *SearchService, validator *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		store:     store,
		search:    search,
		validator: validator,
		logger:    logger,
	}
}

// CreateBookRequest contains the fields for a new catalog entry.
type CreateBookRequest struct {
	Title       string             `json:"title" validate:"required,max=300"`
	Description domain.Description `json:"description,omitempty"`
	Price       float64            `json:"price" validate:"gte=0"`
	AuthorID    string             `json:"author_id" validate:"required"`
	CategoryID  string             `json:"category_id" validate:"required"`
	EditionID   string             `json:"edition_id,omitempty"`
	Pages       int                `json:"pages,omitempty" validate:"gte=0"`
	Images      []domain.Image     `json:"images,omitempty"`
	MaxQuantity int                `json:"max_quantity,omitempty" validate:"gte=0"`
}

// CreateBook adds a book to the catalog and indexes it for search.
func (s *BookService) CreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.Authors.Get(ctx, req.AuthorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("author not found")
		}
		return nil, fmt.Errorf("get author: %w", err)
	}
	if _, err := s.store.Categories.Get(ctx, req.CategoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("category not found")
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	if req.EditionID != "" {
		if _, err := s.store.Editions.Get(ctx, req.EditionID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.NotFound("edition not found")
			}
			return nil, fmt.Errorf("get edition: %w", err)
		}
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		AuthorID:    req.AuthorID,
		CategoryID:  req.CategoryID,
		EditionID:   req.EditionID,
		Pages:       req.Pages,
		Images:      req.Images,
		MaxQuantity: req.MaxQuantity,
		Status:      domain.StatusActive,
	}
	book.ID = bookID
	book.InitTimestamps()

	if err := s.store.Books.Create(ctx, bookID, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if err := s.store.Indexer().IndexBook(ctx, book); err != nil && s.logger != nil {
		s.logger.Warn("Failed to index book", "book_id", bookID, "error", err)
	}

	if s.logger != nil {
		s.logger.Info("Book created", "book_id", bookID, "title", book.Title)
	}
	return book, nil
}

// UpdateBookRequest contains the mutable fields of a catalog entry. Zero
// values leave the field unchanged; price updates use the pointer so a zero
// price is expressible.
type UpdateBookRequest struct {
	Title       string              `json:"title,omitempty" validate:"omitempty,max=300"`
	Description *domain.Description `json:"description,omitempty"`
	Price       *float64            `json:"price,omitempty"`
	CategoryID  string              `json:"category_id,omitempty"`
	AuthorID    string              `json:"author_id,omitempty"`
	EditionID   string              `json:"edition_id,omitempty"`
	Pages       int                 `json:"pages,omitempty" validate:"gte=0"`
	Images      []domain.Image      `json:"images,omitempty"`
	MaxQuantity *int                `json:"max_quantity,omitempty"`
	Status      domain.Status       `json:"status,omitempty" validate:"omitempty,oneof=active archived"`
}

// UpdateBook applies a partial update to a book and refreshes the search
// index. Soft deletion goes through DeleteBook, not here.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.Status == domain.StatusDeleted {
		return nil, apperrors.NotFound("book not found")
	}

	if req.Title != "" {
		book.Title = req.Title
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperrors.Validation("price must not be negative")
		}
		book.Price = *req.Price
	}
	if req.CategoryID != "" {
		if _, err := s.store.Categories.Get(ctx, req.CategoryID); err != nil {
			return nil, apperrors.NotFound("category not found")
		}
		book.CategoryID = req.CategoryID
	}
	if req.AuthorID != "" {
		if _, err := s.store.Authors.Get(ctx, req.AuthorID); err != nil {
			return nil, apperrors.NotFound("author not found")
		}
		book.AuthorID = req.AuthorID
	}
	if req.EditionID != "" {
		book.EditionID = req.EditionID
	}
	if req.Pages > 0 {
		book.Pages = req.Pages
	}
	if req.Images != nil {
		book.Images = req.Images
	}
	if req.MaxQuantity != nil {
		if *req.MaxQuantity < 0 {
			return nil, apperrors.Validation("max_quantity must not be negative")
		}
		book.MaxQuantity = *req.MaxQuantity
	}
	if req.Status != "" {
		book.Status = req.Status
	}
	book.Touch()

	if err := s.store.Books.Update(ctx, bookID, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	if err := s.store.Indexer().IndexBook(ctx, book); err != nil && s.logger != nil {
		s.logger.Warn("Failed to reindex book", "book_id", bookID, "error", err)
	}
	return book, nil
}

// GetBook returns a book by ID, including soft-deleted ones. Handlers that
// serve the public catalog filter on status.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// BookView is a book with its author and category resolved for display.
type BookView struct {
	*domain.Book
	Author   *domain.Author   `json:"author,omitempty"`
	Category *domain.Category `json:"category,omitempty"`
}

// GetBookView returns a book with author and category resolved. Dangling
// references resolve to nil rather than failing the read.
func (s *BookService) GetBookView(ctx context.Context, bookID string) (*BookView, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	view := &BookView{Book: book}
	if author, err := s.store.Authors.Get(ctx, book.AuthorID); err == nil {
		view.Author = author
	}
	if category, err := s.store.Categories.Get(ctx, book.CategoryID); err == nil {
		view.Category = category
	}
	return view, nil
}

// ListBooksParams filters and sorts a catalog listing.
type ListBooksParams struct {
	CategoryID string
	AuthorID   string
	SortBy     string // "title", "price", "created_at"
	SortOrder  string // "asc", "desc"
	Limit      int
	Offset     int
}

// ListBooks returns active books, filtered and sorted.
func (s *BookService) ListBooks(ctx context.Context, params ListBooksParams) ([]*domain.Book, error) {
	var books []*domain.Book
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		if book.Status != domain.StatusActive {
			continue
		}
		if params.CategoryID != "" && book.CategoryID != params.CategoryID {
			continue
		}
		if params.AuthorID != "" && book.AuthorID != params.AuthorID {
			continue
		}
		books = append(books, book)
	}

	sortBooks(books, params.SortBy, params.SortOrder)

	if params.Offset > 0 {
		if params.Offset >= len(books) {
			return nil, nil
		}
		books = books[params.Offset:]
	}
	if params.Limit > 0 && len(books) > params.Limit {
		books = books[:params.Limit]
	}
	return books, nil
}

func sortBooks(books []*domain.Book, sortBy, sortOrder string) {
	desc := sortOrder == "desc"
	slices.SortStableFunc(books, func(a, b *domain.Book) int {
		var c int
		switch sortBy {
		case "price":
			c = cmp.Compare(a.Price, b.Price)
		case "created_at":
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
		if desc {
			return -c
		}
		return c
	})
}

// SearchBooks runs a full-text catalog search.
func (s *BookService) SearchBooks(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.search.Search(ctx, params)
}

// DeleteBook soft-deletes a book, recording the actor, and drops it from the
// search index. Carts holding the book keep their lines; pricing treats the
// reference defensively.
func (s *BookService) DeleteBook(ctx context.Context, actor *domain.User, bookID string) error {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return err
	}

	issuer := ActorFor(actor)
	book.Status = domain.StatusDeleted
	book.DeletedBy = &domain.DeletedBy{Role: issuer.Type, ID: issuer.ID, Email: issuer.Email}
	book.Touch()

	if err := s.store.Books.Update(ctx, bookID, book); err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if err := s.store.Indexer().DeleteBook(ctx, bookID); err != nil && s.logger != nil {
		s.logger.Warn("Failed to remove book from index", "book_id", bookID, "error", err)
	}

	if s.logger != nil {
		s.logger.Info("Book deleted", "book_id", bookID, "actor_id", actor.ID)
	}
	return nil
}

// ResolveBooks fetches a set of books by ID. Missing or deleted books are
// absent from the result map; callers decide whether that is an error.
func (s *BookService) ResolveBooks(ctx context.Context, bookIDs []string) (map[string]*domain.Book, error) {
	resolved := make(map[string]*domain.Book, len(bookIDs))
	for _, bookID := range bookIDs {
		book, err := s.store.Books.Get(ctx, bookID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get book %s: %w", bookID, err)
		}
		if book.Status == domain.StatusDeleted {
			continue
		}
		resolved[bookID] = book
	}
	return resolved, nil
}

// CreateCategoryRequest contains the fields for a new category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

// CreateCategory adds a browsing category.
func (s *BookService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*domain.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	categoryID, err := id.Generate("category")
	if err != nil {
		return nil, fmt.Errorf("generate category ID: %w", err)
	}

	category := &domain.Category{
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.StatusActive,
	}
	category.ID = categoryID
	category.InitTimestamps()

	if err := s.store.Categories.Create(ctx, categoryID, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// ListCategories returns all active categories.
func (s *BookService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	for category, err := range s.store.Categories.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		if category.Status != domain.StatusActive {
			continue
		}
		categories = append(categories, category)
	}
	slices.SortFunc(categories, func(a, b *domain.Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return categories, nil
}

// CreateAuthorRequest contains the fields for a new author.
type CreateAuthorRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	Bio  string `json:"bio,omitempty" validate:"max=5000"`
}

// CreateAuthor adds an author.
func (s *BookService) CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*domain.Author, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	authorID, err := id.Generate("author")
	if err != nil {
		return nil, fmt.Errorf("generate author ID: %w", err)
	}

	author := &domain.Author{
		Name:   req.Name,
		Bio:    req.Bio,
		Status: domain.StatusActive,
	}
	author.ID = authorID
	author.InitTimestamps()

	if err := s.store.Authors.Create(ctx, authorID, author); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}
	return author, nil
}

// ListAuthors returns all active authors.
func (s *BookService) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	var authors []*domain.Author
	for author, err := range s.store.Authors.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list authors: %w", err)
		}
		if author.Status != domain.StatusActive {
			continue
		}
		authors = append(authors, author)
	}
	slices.SortFunc(authors, func(a, b *domain.Author) int {
		return strings.Compare(a.Name, b.Name)
	})
	return authors, nil
}

// CreateEditionRequest contains the fields for a new edition.
type CreateEditionRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Year int    `json:"year,omitempty" validate:"omitempty,gte=0,lte=3000"`
}

// CreateEdition adds an edition.
func (s *BookService) CreateEdition(ctx context.Context, req CreateEditionRequest) (*domain.Edition, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	editionID, err := id.Generate("edition")
	if err != nil {
		return nil, fmt.Errorf("generate edition ID: %w", err)
	}

	edition := &domain.Edition{Name: req.Name, Year: req.Year}
	edition.ID = editionID
	edition.InitTimestamps()

	if err := s.store.Editions.Create(ctx, editionID, edition); err != nil {
		return nil, fmt.Errorf("create edition: %w", err)
	}
	return edition, nil
}
