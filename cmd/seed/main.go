// Package main provides a tool to seed the database with catalog test data.
//
// This creates authors, categories, editions and a shelf of books so the
// storefront has something to browse during development.
//
// Usage:
//
//	DATA_PATH=~/inkwell go run ./cmd/seed
//	DATA_PATH=~/inkwell go run ./cmd/seed --create-users  # Also create test users
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

var createUsers = flag.Bool("create-users", false, "Create test users alongside the catalog")

type seedBook struct {
	title    string
	short    string
	price    float64
	pages    int
	author   string
	category string
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/inkwell")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if *createUsers {
		seedUsers(ctx, s)
	}

	authors := map[string]string{}
	for _, name := range []string{"Robin Hobb", "Ursula K. Le Guin", "Terry Pratchett"} {
		authorID := mustID("author")
		author := &domain.Author{Name: name, Status: domain.StatusActive}
		author.ID = authorID
		author.InitTimestamps()
		if err := s.Authors.Create(ctx, authorID, author); err != nil {
			log.Fatalf("Failed to create author %q: %v", name, err)
		}
		authors[name] = authorID
		fmt.Printf("Created author: %s\n", name)
	}

	categories := map[string]string{}
	for _, name := range []string{"Fantasy", "Science Fiction", "Humour"} {
		categoryID := mustID("category")
		category := &domain.Category{Name: name, Status: domain.StatusActive}
		category.ID = categoryID
		category.InitTimestamps()
		if err := s.Categories.Create(ctx, categoryID, category); err != nil {
			log.Fatalf("Failed to create category %q: %v", name, err)
		}
		categories[name] = categoryID
		fmt.Printf("Created category: %s\n", name)
	}

	editionID := mustID("edition")
	edition := &domain.Edition{Name: "Paperback", Year: 2020}
	edition.ID = editionID
	edition.InitTimestamps()
	if err := s.Editions.Create(ctx, editionID, edition); err != nil {
		log.Fatalf("Failed to create edition: %v", err)
	}

	books := []seedBook{
		{"Assassin's Apprentice", "First of the Farseer trilogy", 399, 480, "Robin Hobb", "Fantasy"},
		{"Royal Assassin", "Second of the Farseer trilogy", 449, 675, "Robin Hobb", "Fantasy"},
		{"Assassin's Quest", "Third of the Farseer trilogy", 449, 757, "Robin Hobb", "Fantasy"},
		{"A Wizard of Earthsea", "The first Earthsea novel", 299, 183, "Ursula K. Le Guin", "Fantasy"},
		{"The Left Hand of Darkness", "A Hainish cycle novel", 349, 304, "Ursula K. Le Guin", "Science Fiction"},
		{"The Dispossessed", "An ambiguous utopia", 349, 387, "Ursula K. Le Guin", "Science Fiction"},
		{"Guards! Guards!", "A Discworld novel", 329, 416, "Terry Pratchett", "Humour"},
		{"Mort", "Death takes an apprentice", 329, 272, "Terry Pratchett", "Humour"},
		{"Small Gods", "A Discworld novel", 329, 400, "Terry Pratchett", "Humour"},
	}

	for _, b := range books {
		bookID := mustID("book")
		book := &domain.Book{
			Title:       b.title,
			Description: domain.Description{Short: b.short},
			Price:       b.price,
			Pages:       b.pages,
			AuthorID:    authors[b.author],
			CategoryID:  categories[b.category],
			EditionID:   editionID,
			MaxQuantity: 5,
			Status:      domain.StatusActive,
		}
		book.ID = bookID
		book.InitTimestamps()
		if err := s.Books.Create(ctx, bookID, book); err != nil {
			log.Fatalf("Failed to create book %q: %v", b.title, err)
		}
		fmt.Printf("Created book: %s (%.0f)\n", b.title, b.price)
	}

	fmt.Println("\nSeed complete.")
}

func seedUsers(ctx context.Context, s *store.Store) {
	users := []struct {
		email  string
		name   string
		role   domain.Role
		isRoot bool
	}{
		{"admin@inkwell.local", "Store Admin", domain.RoleAdmin, true},
		{"reader@inkwell.local", "Test Reader", domain.RoleMember, false},
	}

	for _, u := range users {
		hash, err := auth.HashPassword("SeedPassword123!")
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}

		userID := mustID("user")
		user := &domain.User{
			Email:        u.email,
			DisplayName:  u.name,
			PasswordHash: hash,
			Role:         u.role,
			IsRoot:       u.isRoot,
			Status:       domain.StatusActive,
		}
		user.ID = userID
		user.InitTimestamps()

		if err := s.Users.Create(ctx, userID, user); err != nil {
			log.Printf("Skipping user %s: %v", u.email, err)
			continue
		}
		fmt.Printf("Created user: %s\n", u.email)
	}
}

func mustID(prefix string) string {
	generated, err := id.Generate(prefix)
	if err != nil {
		log.Fatalf("Failed to generate %s ID: %v", prefix, err)
	}
	return generated
}
