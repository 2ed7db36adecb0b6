package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/store"
)

// HistoryService provides read and maintenance operations over the
// translation history.
type HistoryService interface {
	// List returns entries newest-first, at most limit of them.
	List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error)

	// Search returns entries matching the query, newest-first. An empty
	// query behaves like List.
	Search(ctx context.Context, query string, limit int) ([]*domain.HistoryEntry, error)

	// Get returns one entry.
	// Returns domain.ErrInvalidID for a blank ID and
	// store.ErrEntryNotFound if the entry does not exist.
	Get(ctx context.Context, id string) (*domain.HistoryEntry, error)

	// Delete removes one entry.
	// Returns domain.ErrInvalidID for a blank ID and
	// store.ErrEntryNotFound if the entry does not exist.
	Delete(ctx context.Context, id string) error

	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int64, error)
}

// historyService is the production HistoryService implementation.
type historyService struct {
	store  store.HistoryStore
	logger *slog.Logger
}

var _ HistoryService = (*historyService)(nil)

// NewHistoryService creates a history service backed by the given store.
func NewHistoryService(historyStore store.HistoryStore, logger *slog.Logger) *historyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &historyService{
		store:  historyStore,
		logger: logger.With(slog.String("component", "history_service")),
	}
}

// List implements HistoryService.List.
func (s *historyService) List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	entries, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// Search implements HistoryService.Search.
func (s *historyService) Search(ctx context.Context, query string, limit int) ([]*domain.HistoryEntry, error) {
	entries, err := s.store.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}
	return entries, nil
}

// Get implements HistoryService.Get.
func (s *historyService) Get(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("history entry ID is blank: %w", domain.ErrInvalidID)
	}
	return s.store.GetByID(ctx, id)
}

// Delete implements HistoryService.Delete.
func (s *historyService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("history entry ID is blank: %w", domain.ErrInvalidID)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("history entry deleted", "entry_id", id)
	return nil
}

// Clear implements HistoryService.Clear.
func (s *historyService) Clear(ctx context.Context) (int64, error) {
	removed, err := s.store.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	s.logger.Info("history cleared", "removed", removed)
	return removed, nil
}
