package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/service"
	"github.com/hanseo/rosetta-api/internal/store"
)

// fakeHistoryService is a scripted service.HistoryService.
type fakeHistoryService struct {
	entries    []*domain.HistoryEntry
	err        error
	lastQuery  string
	lastLimit  int
	deletedIDs []string
	cleared    int64
}

var _ service.HistoryService = (*fakeHistoryService)(nil)

func (f *fakeHistoryService) List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	f.lastLimit = limit
	return f.entries, f.err
}

func (f *fakeHistoryService) Search(ctx context.Context, query string, limit int) ([]*domain.HistoryEntry, error) {
	f.lastQuery = query
	f.lastLimit = limit
	return f.entries, f.err
}

func (f *fakeHistoryService) Get(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, store.ErrEntryNotFound
}

func (f *fakeHistoryService) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeHistoryService) Clear(ctx context.Context) (int64, error) {
	return f.cleared, f.err
}

func newHistoryRouter(svc service.HistoryService) http.Handler {
	h := NewHistoryHandler(svc, nil)
	r := chi.NewRouter()
	r.Get("/api/history", h.List)
	r.Delete("/api/history", h.Clear)
	r.Get("/api/history/{id}", h.Get)
	r.Delete("/api/history/{id}", h.Delete)
	return r
}

func historyEntry(t *testing.T, id, text string) *domain.HistoryEntry {
	t.Helper()
	return &domain.HistoryEntry{
		ID:             id,
		SourceText:     text,
		TranslatedText: "translated: " + text,
		SourceLang:     domain.LanguageEnglish,
		TargetLang:     domain.LanguageKorean,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestHistoryList(t *testing.T) {
	svc := &fakeHistoryService{entries: []*domain.HistoryEntry{
		historyEntry(t, "aaa11111", "hello"),
		historyEntry(t, "bbb22222", "world"),
	}}
	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=10", nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp HistoryListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 10, svc.lastLimit)
	assert.Empty(t, svc.lastQuery, "no q parameter means a plain list")
}

func TestHistoryListWithQuery(t *testing.T) {
	svc := &fakeHistoryService{entries: []*domain.HistoryEntry{
		historyEntry(t, "aaa11111", "hello"),
	}}
	req := httptest.NewRequest(http.MethodGet, "/api/history?q=hel", nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hel", svc.lastQuery)
}

func TestHistoryListRejectsBadLimit(t *testing.T) {
	for _, limit := range []string{"abc", "-1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/history?limit="+limit, nil)
		w := httptest.NewRecorder()
		newHistoryRouter(&fakeHistoryService{}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit %q", limit)
	}
}

func TestHistoryGet(t *testing.T) {
	svc := &fakeHistoryService{entries: []*domain.HistoryEntry{
		historyEntry(t, "aaa11111", "hello"),
	}}

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/history/aaa11111", nil)
		w := httptest.NewRecorder()
		newHistoryRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var entry domain.HistoryEntry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
		assert.Equal(t, "hello", entry.SourceText)
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/history/missing1", nil)
		w := httptest.NewRecorder()
		newHistoryRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHistoryDelete(t *testing.T) {
	svc := &fakeHistoryService{}
	req := httptest.NewRequest(http.MethodDelete, "/api/history/aaa11111", nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"aaa11111"}, svc.deletedIDs)
}

func TestHistoryDeleteMissing(t *testing.T) {
	svc := &fakeHistoryService{err: store.ErrEntryNotFound}
	req := httptest.NewRequest(http.MethodDelete, "/api/history/missing1", nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistoryClear(t *testing.T) {
	svc := &fakeHistoryService{cleared: 7}
	req := httptest.NewRequest(http.MethodDelete, "/api/history", nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ClearHistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Removed)
}

func TestHistoryStoreFailure(t *testing.T) {
	svc := &fakeHistoryService{err: errors.New("connection reset")}
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()
	newHistoryRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset",
		"internal error details never reach the client")
}
