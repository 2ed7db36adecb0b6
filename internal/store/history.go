package store

import (
	"context"

	"github.com/hanseo/rosetta-api/internal/domain"
)

// HistoryStore defines the interface for translation history persistence.
// Entries are kept newest-first and the store is capped: saving beyond the
// cap evicts the oldest entries.
type HistoryStore interface {
	// Create saves a history entry and evicts the oldest entries beyond
	// the store's cap. Returns validation errors wrapped in
	// ErrInvalidEntity if the entry is invalid.
	Create(ctx context.Context, entry *domain.HistoryEntry) error

	// GetByID retrieves an entry by its ID.
	// Returns ErrEntryNotFound if the entry does not exist.
	GetByID(ctx context.Context, id string) (*domain.HistoryEntry, error)

	// List returns entries newest-first, at most limit of them. A
	// non-positive limit applies the store's cap.
	List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error)

	// Search returns entries whose source or translated text contains the
	// query, case-insensitively, newest-first. An empty query behaves
	// like List.
	Search(ctx context.Context, query string, limit int) ([]*domain.HistoryEntry, error)

	// Delete removes one entry.
	// Returns ErrEntryNotFound if the entry does not exist.
	Delete(ctx context.Context, id string) error

	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int64, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int64, error)
}
