package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	apperrors "github.com/inkwellapp/inkwell-server/internal/errors"
)

func TestBookService_CreateBook_RequiresRelations(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	authorID, categoryID := createTestCatalog(t, env)

	_, err := env.books.CreateBook(ctx, CreateBookRequest{
		Title:      "Orphan",
		Price:      100,
		AuthorID:   "author_missing",
		CategoryID: categoryID,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.books.CreateBook(ctx, CreateBookRequest{
		Title:      "Orphan",
		Price:      100,
		AuthorID:   authorID,
		CategoryID: "category_missing",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	book, err := env.books.CreateBook(ctx, CreateBookRequest{
		Title:      "Rooted",
		Price:      100,
		AuthorID:   authorID,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, book.Status)
}

func TestBookService_UpdateBook(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	authorID, categoryID := createTestCatalog(t, env)
	book := createTestBook(t, env, "Before", 100, authorID, categoryID, 0)

	newPrice := 150.0
	updated, err := env.books.UpdateBook(ctx, book.ID, UpdateBookRequest{
		Title: "After",
		Price: &newPrice,
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, 150.0, updated.Price)
	assert.Equal(t, categoryID, updated.CategoryID)

	badPrice := -1.0
	_, err = env.books.UpdateBook(ctx, book.ID, UpdateBookRequest{Price: &badPrice})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBookService_ListBooks_FiltersAndSorts(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	author, err := env.books.CreateAuthor(ctx, CreateAuthorRequest{Name: "Author"})
	require.NoError(t, err)
	fiction, err := env.books.CreateCategory(ctx, CreateCategoryRequest{Name: "Fiction"})
	require.NoError(t, err)
	poetry, err := env.books.CreateCategory(ctx, CreateCategoryRequest{Name: "Poetry"})
	require.NoError(t, err)

	createTestBook(t, env, "Zebra", 300, author.ID, fiction.ID, 0)
	createTestBook(t, env, "Apple", 100, author.ID, fiction.ID, 0)
	createTestBook(t, env, "Mango", 200, author.ID, poetry.ID, 0)

	// Default sort is title, ascending.
	books, err := env.books.ListBooks(ctx, ListBooksParams{})
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "Apple", books[0].Title)
	assert.Equal(t, "Zebra", books[2].Title)

	// Price, descending.
	books, err = env.books.ListBooks(ctx, ListBooksParams{SortBy: "price", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, 300.0, books[0].Price)
	assert.Equal(t, 100.0, books[2].Price)

	// Category filter.
	books, err = env.books.ListBooks(ctx, ListBooksParams{CategoryID: poetry.ID})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Mango", books[0].Title)

	// Pagination.
	books, err = env.books.ListBooks(ctx, ListBooksParams{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Mango", books[0].Title)
}

func TestBookService_DeleteBook(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin := createTestUser(t, env.store, "owner@example.com", domain.RoleAdmin)
	authorID, categoryID := createTestCatalog(t, env)
	book := createTestBook(t, env, "Doomed", 100, authorID, categoryID, 0)

	require.NoError(t, env.books.DeleteBook(ctx, admin, book.ID))

	// The record survives with the deletion audit trail.
	got, err := env.books.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeleted, got.Status)
	require.NotNil(t, got.DeletedBy)
	assert.Equal(t, domain.ActorAdmin, got.DeletedBy.Role)
	assert.Equal(t, admin.ID, got.DeletedBy.ID)

	// Deleted books fall out of listings and resolution.
	books, err := env.books.ListBooks(ctx, ListBooksParams{})
	require.NoError(t, err)
	assert.Empty(t, books)

	resolved, err := env.books.ResolveBooks(ctx, []string{book.ID})
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestBookService_GetBookView(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	authorID, categoryID := createTestCatalog(t, env)
	book := createTestBook(t, env, "Viewed", 100, authorID, categoryID, 0)

	view, err := env.books.GetBookView(ctx, book.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Author)
	require.NotNil(t, view.Category)
	assert.Equal(t, "Test Author", view.Author.Name)
	assert.Equal(t, "Fiction", view.Category.Name)
}
