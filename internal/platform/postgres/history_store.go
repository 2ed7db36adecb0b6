package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/store"
)

// PostgresHistoryStore implements the store.HistoryStore interface
// using a PostgreSQL database as the storage backend. The store is capped:
// every Create evicts the oldest entries beyond maxEntries in the same
// transaction.
type PostgresHistoryStore struct {
	db         *sql.DB
	maxEntries int
	logger     *slog.Logger
}

// DefaultMaxEntries caps the history at the size the desktop client keeps.
const DefaultMaxEntries = 50

// NewPostgresHistoryStore creates a new PostgreSQL implementation of the
// HistoryStore interface. It accepts a database connection that should be
// initialized and managed by the caller. A non-positive maxEntries uses
// DefaultMaxEntries; if logger is nil, a default logger will be used.
func NewPostgresHistoryStore(db *sql.DB, maxEntries int, logger *slog.Logger) *PostgresHistoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresHistoryStore{
		db:         db,
		maxEntries: maxEntries,
		logger:     logger.With(slog.String("component", "history_store")),
	}
}

// Ensure PostgresHistoryStore implements store.HistoryStore interface
var _ store.HistoryStore = (*PostgresHistoryStore)(nil)

// Create implements store.HistoryStore.Create. The insert and the cap
// eviction run in one transaction so a concurrent reader never observes
// more than maxEntries entries.
func (s *PostgresHistoryStore) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := insertEntry(ctx, tx, entry); err != nil {
			return err
		}
		return evictBeyondCap(ctx, tx, s.maxEntries)
	})
	if err != nil {
		s.logger.Error("failed to create history entry",
			slog.String("entry_id", entry.ID),
			slog.String("error", err.Error()))
		return err
	}

	s.logger.Debug("history entry created", slog.String("entry_id", entry.ID))
	return nil
}

// GetByID implements store.HistoryStore.GetByID.
// Returns store.ErrEntryNotFound if the entry does not exist.
func (s *PostgresHistoryStore) GetByID(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_text, translated_text, source_lang, target_lang, created_at
		 FROM history_entries
		 WHERE id = $1`,
		id,
	)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEntryNotFound
		}
		return nil, MapError(err)
	}
	return entry, nil
}

// List implements store.HistoryStore.List.
func (s *PostgresHistoryStore) List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	if limit <= 0 || limit > s.maxEntries {
		limit = s.maxEntries
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, translated_text, source_lang, target_lang, created_at
		 FROM history_entries
		 ORDER BY created_at DESC, id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectEntries(rows)
}

// Search implements store.HistoryStore.Search. Matching is
// case-insensitive over both the source and the translated text.
func (s *PostgresHistoryStore) Search(ctx context.Context, query string, limit int) ([]*domain.HistoryEntry, error) {
	if query == "" {
		return s.List(ctx, limit)
	}
	if limit <= 0 || limit > s.maxEntries {
		limit = s.maxEntries
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, translated_text, source_lang, target_lang, created_at
		 FROM history_entries
		 WHERE source_text ILIKE $1 ESCAPE '\'
		    OR translated_text ILIKE $1 ESCAPE '\'
		 ORDER BY created_at DESC, id
		 LIMIT $2`,
		pattern,
		limit,
	)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectEntries(rows)
}

// Delete implements store.HistoryStore.Delete.
// Returns store.ErrEntryNotFound if the entry does not exist.
func (s *PostgresHistoryStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM history_entries WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "history entry"); err != nil {
		return store.ErrEntryNotFound
	}

	s.logger.Debug("history entry deleted", slog.String("entry_id", id))
	return nil
}

// Clear implements store.HistoryStore.Clear.
func (s *PostgresHistoryStore) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM history_entries`)
	if err != nil {
		return 0, MapError(err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	s.logger.Debug("history cleared", slog.Int64("removed", removed))
	return removed, nil
}

// Count implements store.HistoryStore.Count.
func (s *PostgresHistoryStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM history_entries`).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// insertEntry writes one entry. It accepts a connection or a transaction
// so callers control atomicity.
func insertEntry(ctx context.Context, db store.DBTX, entry *domain.HistoryEntry) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO history_entries
		   (id, source_text, translated_text, source_lang, target_lang, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID,
		entry.SourceText,
		entry.TranslatedText,
		entry.SourceLang,
		entry.TargetLang,
		entry.CreatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	return nil
}

// evictBeyondCap deletes the oldest entries beyond maxEntries.
func evictBeyondCap(ctx context.Context, db store.DBTX, maxEntries int) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM history_entries
		 WHERE id NOT IN (
		   SELECT id FROM history_entries
		   ORDER BY created_at DESC, id
		   LIMIT $1
		 )`,
		maxEntries,
	)
	if err != nil {
		return MapError(err)
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanEntry.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry maps one database row to a domain entry.
func scanEntry(row rowScanner) (*domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	err := row.Scan(
		&entry.ID,
		&entry.SourceText,
		&entry.TranslatedText,
		&entry.SourceLang,
		&entry.TargetLang,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// collectEntries drains rows into domain entries.
func collectEntries(rows *sql.Rows) ([]*domain.HistoryEntry, error) {
	entries := make([]*domain.HistoryEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, MapError(err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return entries, nil
}

// escapeLike escapes LIKE metacharacters in a user-supplied query so they
// match literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
