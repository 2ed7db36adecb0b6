package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanseo/rosetta-api/internal/config"
	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/store"
	"github.com/hanseo/rosetta-api/internal/task"
	"github.com/hanseo/rosetta-api/internal/translation"
)

// fakeTranslator runs a configurable function per call.
type fakeTranslator struct {
	mu    sync.Mutex
	calls int
	fn    func(text string, source, target domain.LanguageCode) (string, error)
}

func (f *fakeTranslator) Translate(
	ctx context.Context,
	text string,
	sourceLang, targetLang domain.LanguageCode,
	progress translation.ProgressFunc,
) (string, error) {
	f.mu.Lock()
	f.calls++
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return "translated: " + text, nil
	}
	return fn(text, sourceLang, targetLang)
}

func (f *fakeTranslator) setFn(fn func(text string, source, target domain.LanguageCode) (string, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn = fn
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeDetector returns a fixed answer.
type fakeDetector struct {
	code domain.LanguageCode
	ok   bool
}

func (f *fakeDetector) Detect(text string) (domain.LanguageCode, bool) {
	return f.code, f.ok
}

// memoryHistoryStore is an in-memory store.HistoryStore for tests.
type memoryHistoryStore struct {
	mu      sync.Mutex
	entries []*domain.HistoryEntry
}

var _ store.HistoryStore = (*memoryHistoryStore)(nil)

func (m *memoryHistoryStore) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]*domain.HistoryEntry{entry}, m.entries...)
	return nil
}

func (m *memoryHistoryStore) GetByID(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, store.ErrEntryNotFound
}

func (m *memoryHistoryStore) List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.HistoryEntry, len(m.entries))
	copy(out, m.entries)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryHistoryStore) Search(ctx context.Context, query string, limit int) ([]*domain.HistoryEntry, error) {
	return m.List(ctx, limit)
}

func (m *memoryHistoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return store.ErrEntryNotFound
}

func (m *memoryHistoryStore) Clear(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.entries))
	m.entries = nil
	return n, nil
}

func (m *memoryHistoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.entries)), nil
}

// fakeCache is a map-backed TranslationCache.
type fakeCache struct {
	mu      sync.Mutex
	results map[string]task.Result
}

func newFakeCache() *fakeCache {
	return &fakeCache{results: make(map[string]task.Result)}
}

func (f *fakeCache) key(req domain.TranslationRequest) string {
	return string(req.SourceLang) + "|" + string(req.TargetLang) + "|" + req.Text
}

func (f *fakeCache) Get(ctx context.Context, req domain.TranslationRequest) (task.Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.results[f.key(req)]
	return result, ok
}

func (f *fakeCache) Set(ctx context.Context, req domain.TranslationRequest, result task.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[f.key(req)] = result
}

func fastServiceConfig() config.TranslationConfig {
	return config.TranslationConfig{
		DebounceDelay:    20 * time.Millisecond,
		AttemptTimeout:   time.Second,
		MaxRetries:       2,
		MemoryMaxRetries: 1,
		InitialDelay:     5 * time.Millisecond,
		MaxDelay:         20 * time.Millisecond,
		Multiplier:       2.0,
		PoolSize:         2,
		MaxHistory:       50,
	}
}

type serviceFixture struct {
	svc        *translationService
	translator *fakeTranslator
	history    *memoryHistoryStore
	cache      *fakeCache
}

func newServiceFixture(t *testing.T, detector *fakeDetector, cache *fakeCache) *serviceFixture {
	t.Helper()
	if detector == nil {
		detector = &fakeDetector{code: domain.LanguageEnglish, ok: true}
	}

	ft := &fakeTranslator{}
	history := &memoryHistoryStore{}

	var tc TranslationCache
	if cache != nil {
		tc = cache
	}
	svc := NewTranslationService(fastServiceConfig(), ft, detector, history, tc, nil)
	t.Cleanup(func() { svc.Shutdown(2 * time.Second) })

	return &serviceFixture{svc: svc, translator: ft, history: history, cache: cache}
}

// waitForEvent consumes events until one of the given type arrives for id.
func waitForEvent(t *testing.T, events <-chan task.Event, id task.TaskID, typ task.EventType) task.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatal("event channel closed")
			}
			if ev.TaskID == id && ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event on task %s", typ, id)
		}
	}
}

func submitRequest(t *testing.T, svc TranslationService, text string, source, target domain.LanguageCode) task.TaskID {
	t.Helper()
	req, err := domain.NewTranslationRequest(text, source, target)
	require.NoError(t, err)
	id, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	return id
}

func TestSubmitRejectsInvalidRequests(t *testing.T) {
	f := newServiceFixture(t, nil, nil)

	_, err := f.svc.Submit(context.Background(), domain.TranslationRequest{
		Text:       "",
		SourceLang: domain.LanguageAuto,
		TargetLang: domain.LanguageKorean,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyText)

	_, err = f.svc.Submit(context.Background(), domain.TranslationRequest{
		Text:       "hello",
		SourceLang: domain.LanguageEnglish,
		TargetLang: domain.LanguageAuto,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTargetAuto)
}

func TestSubmitTranslatesAndRecordsHistory(t *testing.T) {
	f := newServiceFixture(t, nil, nil)
	events, unsubscribe := f.svc.Subscribe()
	defer unsubscribe()

	id := submitRequest(t, f.svc, "hello", domain.LanguageEnglish, domain.LanguageKorean)

	complete := waitForEvent(t, events, id, task.EventComplete)
	assert.Equal(t, "translated: hello", complete.Text)
	assert.Equal(t, domain.LanguageEnglish, complete.DetectedLang)
	waitForEvent(t, events, id, task.EventFinished)

	require.Eventually(t, func() bool {
		n, _ := f.history.Count(context.Background())
		return n == 1
	}, 2*time.Second, 10*time.Millisecond, "completion is recorded to history")

	entries, err := f.history.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", entries[0].SourceText)
	assert.Equal(t, "translated: hello", entries[0].TranslatedText)
	assert.Equal(t, domain.LanguageKorean, entries[0].TargetLang)
}

func TestSubmitDebouncesRapidSubmissions(t *testing.T) {
	f := newServiceFixture(t, nil, nil)
	events, unsubscribe := f.svc.Subscribe()
	defer unsubscribe()

	submitRequest(t, f.svc, "first", domain.LanguageEnglish, domain.LanguageKorean)
	submitRequest(t, f.svc, "second", domain.LanguageEnglish, domain.LanguageKorean)
	last := submitRequest(t, f.svc, "third", domain.LanguageEnglish, domain.LanguageKorean)

	complete := waitForEvent(t, events, last, task.EventComplete)
	assert.Equal(t, "translated: third", complete.Text)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, f.translator.callCount(), "earlier submissions never ran")
}

func TestSubmitImmediateSkipsDebounce(t *testing.T) {
	// A debounce window far beyond the event deadline: the test can only
	// pass if dispatch bypasses the debouncer.
	cfg := fastServiceConfig()
	cfg.DebounceDelay = 10 * time.Second

	ft := &fakeTranslator{}
	svc := NewTranslationService(cfg, ft, &fakeDetector{code: domain.LanguageEnglish, ok: true}, &memoryHistoryStore{}, nil, nil)
	t.Cleanup(func() { svc.Shutdown(2 * time.Second) })

	events, unsubscribe := svc.Subscribe()
	defer unsubscribe()

	req, err := domain.NewTranslationRequest("hello", domain.LanguageEnglish, domain.LanguageKorean)
	require.NoError(t, err)

	id, err := svc.SubmitImmediate(context.Background(), req)
	require.NoError(t, err)

	complete := waitForEvent(t, events, id, task.EventComplete)
	assert.Equal(t, "translated: hello", complete.Text)
}

func TestSubmitResolvesAutoDetect(t *testing.T) {
	t.Run("detector answer is used", func(t *testing.T) {
		f := newServiceFixture(t, &fakeDetector{code: domain.LanguageKorean, ok: true}, nil)
		events, unsubscribe := f.svc.Subscribe()
		defer unsubscribe()

		id := submitRequest(t, f.svc, "안녕하세요", domain.LanguageAuto, domain.LanguageEnglish)
		complete := waitForEvent(t, events, id, task.EventComplete)
		assert.Equal(t, domain.LanguageKorean, complete.DetectedLang)
	})

	t.Run("detection failure falls back to english", func(t *testing.T) {
		f := newServiceFixture(t, &fakeDetector{ok: false}, nil)
		events, unsubscribe := f.svc.Subscribe()
		defer unsubscribe()

		id := submitRequest(t, f.svc, "??", domain.LanguageAuto, domain.LanguageKorean)
		complete := waitForEvent(t, events, id, task.EventComplete)
		assert.Equal(t, domain.LanguageEnglish, complete.DetectedLang)
	})

	t.Run("explicit source skips detection", func(t *testing.T) {
		f := newServiceFixture(t, &fakeDetector{code: domain.LanguageJapanese, ok: true}, nil)
		events, unsubscribe := f.svc.Subscribe()
		defer unsubscribe()

		id := submitRequest(t, f.svc, "hello", domain.LanguageEnglish, domain.LanguageKorean)
		complete := waitForEvent(t, events, id, task.EventComplete)
		assert.Equal(t, domain.LanguageEnglish, complete.DetectedLang)
	})
}

func TestSubmitServesFromCache(t *testing.T) {
	cache := newFakeCache()
	f := newServiceFixture(t, nil, cache)
	events, unsubscribe := f.svc.Subscribe()
	defer unsubscribe()

	req, err := domain.NewTranslationRequest("hello", domain.LanguageEnglish, domain.LanguageKorean)
	require.NoError(t, err)
	cache.Set(context.Background(), req, task.Result{
		DetectedLang: domain.LanguageEnglish,
		Text:         "안녕하세요",
	})

	id, err := f.svc.Submit(context.Background(), req)
	require.NoError(t, err)

	complete := waitForEvent(t, events, id, task.EventComplete)
	assert.Equal(t, "안녕하세요", complete.Text)
	waitForEvent(t, events, id, task.EventFinished)
	assert.Zero(t, f.translator.callCount(), "cache hit never reaches the backend")
}

func TestSubmitPopulatesCacheOnCompletion(t *testing.T) {
	cache := newFakeCache()
	f := newServiceFixture(t, nil, cache)
	events, unsubscribe := f.svc.Subscribe()
	defer unsubscribe()

	id := submitRequest(t, f.svc, "hello", domain.LanguageEnglish, domain.LanguageKorean)
	waitForEvent(t, events, id, task.EventFinished)

	req, err := domain.NewTranslationRequest("hello", domain.LanguageEnglish, domain.LanguageKorean)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), req)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCancelPendingSubmission(t *testing.T) {
	f := newServiceFixture(t, nil, nil)

	id := submitRequest(t, f.svc, "hello", domain.LanguageEnglish, domain.LanguageKorean)
	assert.True(t, f.svc.Cancel(id), "cancelled inside the debounce window")

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, f.translator.callCount())
}

func TestCancelRunningTask(t *testing.T) {
	f := newServiceFixture(t, nil, nil)
	release := make(chan struct{})
	entered := make(chan struct{})
	f.translator.setFn(func(text string, source, target domain.LanguageCode) (string, error) {
		close(entered)
		<-release
		return "late", nil
	})
	defer close(release)

	events, unsubscribe := f.svc.Subscribe()
	defer unsubscribe()

	id := submitRequest(t, f.svc, "hello", domain.LanguageEnglish, domain.LanguageKorean)
	waitForEvent(t, events, id, task.EventStarted)
	<-entered

	assert.True(t, f.svc.Cancel(id))
	waitForEvent(t, events, id, task.EventFinished)

	n, _ := f.history.Count(context.Background())
	assert.Zero(t, n, "cancelled tasks never reach history")
}

func TestFailedTaskEmitsClassifiedError(t *testing.T) {
	f := newServiceFixture(t, nil, nil)
	f.translator.setFn(func(text string, source, target domain.LanguageCode) (string, error) {
		return "", errors.New("model not loaded")
	})

	events, unsubscribe := f.svc.Subscribe()
	defer unsubscribe()

	id := submitRequest(t, f.svc, "hello", domain.LanguageEnglish, domain.LanguageKorean)
	errEvent := waitForEvent(t, events, id, task.EventError)
	require.NotNil(t, errEvent.Err)
	assert.Equal(t, translation.ErrorKindModel, errEvent.Err.Kind)
	assert.False(t, errEvent.Err.Retryable)
	assert.Equal(t, 1, f.translator.callCount())
}

func TestSnapshotOfPendingSubmission(t *testing.T) {
	f := newServiceFixture(t, nil, nil)
	f.translator.setFn(func(text string, source, target domain.LanguageCode) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return "ok", nil
	})

	id := submitRequest(t, f.svc, "hello", domain.LanguageEnglish, domain.LanguageKorean)

	snap, ok := f.svc.Snapshot(id)
	require.True(t, ok)
	assert.Equal(t, task.StatePending, snap.State)
	assert.Equal(t, "hello", snap.Request.Text)
}

func TestLanguages(t *testing.T) {
	f := newServiceFixture(t, nil, nil)

	languages := f.svc.Languages()
	require.NotEmpty(t, languages)
	assert.Equal(t, domain.LanguageAuto, languages[0].Code, "auto-detect leads the list")
}

func TestShutdownRejectsFurtherWork(t *testing.T) {
	f := newServiceFixture(t, nil, nil)
	require.True(t, f.svc.Shutdown(time.Second))

	req, err := domain.NewTranslationRequest("hello", domain.LanguageEnglish, domain.LanguageKorean)
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, ErrServiceClosed)
}
