// Package store implements persistence on top of an embedded Badger database.
//
// Every domain type is stored as a JSON document under a typed key prefix,
// with secondary indexes for the lookups the services need.
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// SearchIndexer is the interface for keeping the catalog search index in
// sync with the store. Defined here so the store does not depend on the
// search implementation.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// DeleteBook is a no-op.
func (NoopSearchIndexer) DeleteBook(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Search indexer for keeping search in sync with catalog changes.
	// Set via SetSearchIndexer after store creation to avoid circular
	// dependencies.
	searchIndexer SearchIndexer

	// Generic entities
	Users      *Entity[domain.User]
	Sessions   *Entity[domain.Session]
	Books      *Entity[domain.Book]
	Categories *Entity[domain.Category]
	Authors    *Entity[domain.Author]
	Editions   *Entity[domain.Edition]
	Addresses  *Entity[domain.Address]
	Carts      *Entity[domain.Cart]
	GiftCards  *Entity[domain.GiftCard]
	PromoCodes *Entity[domain.PromoCode]
}

// New creates a new Store instance backed by the database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.initUsers()
	store.initSessions()
	store.initCatalog()
	store.initCarts()
	store.initVouchers()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Backup streams a full snapshot of the database to w using Badger's
// stream backup format. Returns the version up to which the backup ran.
func (s *Store) Backup(w io.Writer) (uint64, error) {
	version, err := s.db.Backup(w, 0)
	if err != nil {
		return 0, fmt.Errorf("backup database: %w", err)
	}
	return version, nil
}

// Load drops all existing data and replaces it with the snapshot read
// from r. Callers are responsible for rebuilding derived state such as
// the search index afterwards.
func (s *Store) Load(r io.Reader) error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("drop existing data: %w", err)
	}
	if err := s.db.Load(r, 16); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	return nil
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// Set after store creation because the search service needs the store to
// exist first.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// Indexer returns the configured search indexer, or a no-op one.
func (s *Store) Indexer() SearchIndexer {
	if s.searchIndexer == nil {
		return NoopSearchIndexer{}
	}
	return s.searchIndexer
}

// normalizeEmail lowercases and trims an email for case-insensitive lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeCode lowercases and trims a voucher code name.
func normalizeCode(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// initUsers initializes the Users entity with a case-insensitive email index.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail,
		)
}

// initSessions initializes the Sessions entity, indexed by owning user.
func (s *Store) initSessions() {
	s.Sessions = NewEntity[domain.Session](s, "session:").
		WithMultiIndex("user", func(sess *domain.Session) []string {
			return []string{sess.UserID}
		})
}

// initCatalog initializes the catalog entities. Books are indexed by author
// and category for promo eligibility scans.
func (s *Store) initCatalog() {
	s.Books = NewEntity[domain.Book](s, "book:").
		WithMultiIndex("author", func(b *domain.Book) []string {
			if b.AuthorID == "" {
				return nil
			}
			return []string{b.AuthorID}
		}).
		WithMultiIndex("category", func(b *domain.Book) []string {
			if b.CategoryID == "" {
				return nil
			}
			return []string{b.CategoryID}
		})

	s.Categories = NewEntity[domain.Category](s, "category:")
	s.Authors = NewEntity[domain.Author](s, "author:")
	s.Editions = NewEntity[domain.Edition](s, "edition:")
}

// initCarts initializes the Carts and Addresses entities. Each user owns at
// most one cart, so the owner index is unique.
func (s *Store) initCarts() {
	s.Carts = NewEntity[domain.Cart](s, "cart:").
		WithIndex("owner", func(c *domain.Cart) []string {
			return []string{c.OwnerID}
		})

	s.Addresses = NewEntity[domain.Address](s, "address:").
		WithMultiIndex("user", func(a *domain.Address) []string {
			return []string{a.UserID}
		})
}

// initVouchers initializes the GiftCards and PromoCodes entities. Promo
// codes are looked up by their unique, case-insensitive name.
func (s *Store) initVouchers() {
	s.GiftCards = NewEntity[domain.GiftCard](s, "giftcard:").
		WithMultiIndex("recipient", func(g *domain.GiftCard) []string {
			return []string{g.RecipientID}
		})

	s.PromoCodes = NewEntity[domain.PromoCode](s, "promo:").
		WithIndexTransform("name",
			func(p *domain.PromoCode) []string {
				return []string{normalizeCode(p.Name)}
			},
			normalizeCode,
		)
}
