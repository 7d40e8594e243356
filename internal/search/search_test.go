package search

import (
	"context"
	"testing"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	idx, err := NewSearchIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, idx.Close())
	})
	return idx
}

func seedBook(id, title, authorID, categoryID string, price float64) *BookDocument {
	b := &domain.Book{
		Title:      title,
		AuthorID:   authorID,
		CategoryID: categoryID,
		Price:      price,
		Status:     domain.StatusActive,
	}
	b.ID = id
	b.CreatedAt = time.Now()
	return NewBookDocument(b)
}

func seedCatalog(t *testing.T, idx *SearchIndex) {
	t.Helper()

	docs := []*BookDocument{
		seedBook("book_1", "The Dispossessed", "author_leguin", "cat_fiction", 450),
		seedBook("book_2", "The Left Hand of Darkness", "author_leguin", "cat_fiction", 499),
		seedBook("book_3", "Death of a Naturalist", "author_heaney", "cat_poetry", 299),
	}
	require.NoError(t, idx.IndexDocuments(docs))
}

func TestSearchByTitle(t *testing.T) {
	idx := newTestIndex(t)
	seedCatalog(t, idx)

	result, err := idx.Search(context.Background(), SearchParams{Query: "dispossessed", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book_1", result.Hits[0].ID)
	assert.Equal(t, "The Dispossessed", result.Hits[0].Title)
}

func TestSearchFuzzyTitle(t *testing.T) {
	idx := newTestIndex(t)
	seedCatalog(t, idx)

	// One character off still finds the book.
	result, err := idx.Search(context.Background(), SearchParams{Query: "darknes", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book_2", result.Hits[0].ID)

	// Casing must not matter either.
	result, err = idx.Search(context.Background(), SearchParams{Query: "Darknes", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book_2", result.Hits[0].ID)
}

func TestSearchCategoryFilter(t *testing.T) {
	idx := newTestIndex(t)
	seedCatalog(t, idx)

	result, err := idx.Search(context.Background(), SearchParams{CategoryID: "cat_poetry", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "book_3", result.Hits[0].ID)
}

func TestSearchPriceRange(t *testing.T) {
	idx := newTestIndex(t)
	seedCatalog(t, idx)

	result, err := idx.Search(context.Background(), SearchParams{MinPrice: 400, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 2)
}

func TestSearchSortByPrice(t *testing.T) {
	idx := newTestIndex(t)
	seedCatalog(t, idx)

	result, err := idx.Search(context.Background(), SearchParams{SortBy: "price", SortOrder: "asc", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 3)
	assert.Equal(t, "book_3", result.Hits[0].ID)
	assert.Equal(t, "book_2", result.Hits[2].ID)
}

func TestDeleteDocument(t *testing.T) {
	idx := newTestIndex(t)
	seedCatalog(t, idx)

	require.NoError(t, idx.DeleteDocument("book_1"))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestRebuildEmptiesIndex(t *testing.T) {
	idx := newTestIndex(t)
	seedCatalog(t, idx)

	require.NoError(t, idx.Rebuild())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}
