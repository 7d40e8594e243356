package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/search"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// SearchService keeps the Bleve catalog index in sync with the store and
// serves search queries. It implements store.SearchIndexer.
type SearchService struct {
	index  *search.SearchIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// IndexBook adds or updates a book in the search index. Deleted and archived
// books are removed instead, so they never surface in results.
func (s *SearchService) IndexBook(ctx context.Context, book *domain.Book) error {
	if book.Status != domain.StatusActive {
		return s.index.DeleteDocument(book.ID)
	}
	return s.index.IndexDocument(search.NewBookDocument(book))
}

// DeleteBook removes a book from the search index.
func (s *SearchService) DeleteBook(ctx context.Context, bookID string) error {
	return s.index.DeleteDocument(bookID)
}

// Search runs a catalog search query.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// Reindex rebuilds the whole index from the store. Used at startup and after
// mapping changes.
func (s *SearchService) Reindex(ctx context.Context) error {
	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	var docs []*search.BookDocument
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		if book.Status != domain.StatusActive {
			continue
		}
		docs = append(docs, search.NewBookDocument(book))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index books: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Catalog reindexed", "books", len(docs))
	}
	return nil
}
