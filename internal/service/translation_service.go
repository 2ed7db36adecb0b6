package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hanseo/rosetta-api/internal/config"
	"github.com/hanseo/rosetta-api/internal/detect"
	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/platform/metrics"
	"github.com/hanseo/rosetta-api/internal/store"
	"github.com/hanseo/rosetta-api/internal/task"
	"github.com/hanseo/rosetta-api/internal/translation"
)

// TranslationCache abstracts the optional result cache so the service does
// not depend on a concrete cache implementation. Implementations must be
// non-blocking on failure: a broken cache degrades to a miss.
type TranslationCache interface {
	// Get returns a previously finished translation for req, or false on
	// a miss.
	Get(ctx context.Context, req domain.TranslationRequest) (task.Result, bool)

	// Set stores a finished translation for req.
	Set(ctx context.Context, req domain.TranslationRequest, result task.Result)
}

// TranslationService exposes the translation engine to delivery
// mechanisms: debounced submission, cancellation, task inspection, and a
// live event stream.
type TranslationService interface {
	// Submit validates a request and schedules it for execution after the
	// debounce window. Returns the task ID the request will run under.
	// Rapid successive submissions coalesce: only the last one survives.
	Submit(ctx context.Context, req domain.TranslationRequest) (task.TaskID, error)

	// SubmitImmediate validates a request and dispatches it without
	// debouncing. It does not disturb a pending debounced submission.
	SubmitImmediate(ctx context.Context, req domain.TranslationRequest) (task.TaskID, error)

	// Cancel cancels one task. Returns true if the task was active.
	Cancel(id task.TaskID) bool

	// CancelAll cancels the pending debounced submission and every active
	// task, returning how many tasks were cancelled.
	CancelAll() int

	// Snapshot returns a point-in-time view of an active task.
	Snapshot(id task.TaskID) (task.Snapshot, bool)

	// Subscribe returns a channel of lifecycle events for all tasks and a
	// function to unsubscribe. Slow consumers lose events rather than
	// blocking the engine.
	Subscribe() (<-chan task.Event, func())

	// Languages lists the languages available for translation.
	Languages() []domain.Language

	// Shutdown cancels everything and waits up to wait for in-flight
	// attempts to drain. Returns true if everything drained in time.
	Shutdown(wait time.Duration) bool
}

// taskTracker is the service's bookkeeping for one task's lifetime,
// keyed by task ID. All access is guarded by translationService.mu.
type taskTracker struct {
	request domain.TranslationRequest
	start   time.Time
	outcome string
	active  bool
}

// translationService is the production TranslationService implementation.
type translationService struct {
	orchestrator *task.Orchestrator
	debouncer    *task.Debouncer
	translator   translation.Translator
	detector     detect.Detector
	history      store.HistoryStore
	cache        TranslationCache
	logger       *slog.Logger

	mu          sync.Mutex
	trackers    map[task.TaskID]*taskTracker
	pendingID   task.TaskID
	subscribers map[int]chan task.Event
	nextSub     int
	closed      bool
}

var _ TranslationService = (*translationService)(nil)

// NewTranslationService wires the orchestration engine to its
// dependencies. The detector resolves auto-detect requests, the history
// store records finished translations, and cache may be nil to disable
// caching.
func NewTranslationService(
	cfg config.TranslationConfig,
	translator translation.Translator,
	detector detect.Detector,
	history store.HistoryStore,
	cache TranslationCache,
	logger *slog.Logger,
) *translationService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &translationService{
		translator:  translator,
		detector:    detector,
		history:     history,
		cache:       cache,
		logger:      logger.With(slog.String("component", "translation_service")),
		trackers:    make(map[task.TaskID]*taskTracker),
		subscribers: make(map[int]chan task.Event),
	}

	s.orchestrator = task.NewOrchestrator(s.translate, task.Config{
		AttemptTimeout: cfg.AttemptTimeout,
		Retry: task.RetryPolicy{
			MaxRetries:       cfg.MaxRetries,
			MemoryMaxRetries: cfg.MemoryMaxRetries,
			InitialDelay:     cfg.InitialDelay,
			MaxDelay:         cfg.MaxDelay,
			Multiplier:       cfg.Multiplier,
		},
		PoolSize: cfg.PoolSize,
	}, s.handleEvent, logger)

	s.debouncer = task.NewDebouncer(cfg.DebounceDelay, s.dispatch)
	return s
}

// Submit implements TranslationService.Submit.
func (s *translationService) Submit(ctx context.Context, req domain.TranslationRequest) (task.TaskID, error) {
	id, done, err := s.admit(ctx, req)
	if err != nil || done {
		return id, err
	}

	s.mu.Lock()
	// A submission still inside its debounce window is replaced; drop its
	// bookkeeping since it will never produce events.
	if s.pendingID != "" {
		delete(s.trackers, s.pendingID)
		metrics.TasksCoalesced.Inc()
	}
	id = s.debouncer.Submit(req)
	s.pendingID = id
	s.trackers[id] = &taskTracker{request: req, start: time.Now()}
	s.mu.Unlock()

	s.logger.Debug("translation submitted",
		"task_id", id,
		"source_lang", req.SourceLang,
		"target_lang", req.TargetLang,
		"text_length", len(req.Text))
	return id, nil
}

// SubmitImmediate implements TranslationService.SubmitImmediate.
func (s *translationService) SubmitImmediate(ctx context.Context, req domain.TranslationRequest) (task.TaskID, error) {
	id, done, err := s.admit(ctx, req)
	if err != nil || done {
		return id, err
	}

	id = task.NewTaskID()
	s.mu.Lock()
	s.trackers[id] = &taskTracker{request: req, start: time.Now()}
	s.mu.Unlock()
	s.orchestrator.ExecuteAs(id, req)

	s.logger.Debug("translation submitted without debounce",
		"task_id", id,
		"source_lang", req.SourceLang,
		"target_lang", req.TargetLang,
		"text_length", len(req.Text))
	return id, nil
}

// admit runs the shared front half of a submission: validation, the
// closed check, and the cache lookup. done reports that the request was
// fully served (from cache) and id is final.
func (s *translationService) admit(ctx context.Context, req domain.TranslationRequest) (id task.TaskID, done bool, err error) {
	if err := req.Validate(); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", false, ErrServiceClosed
	}
	s.mu.Unlock()

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, req); ok {
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			return s.completeFromCache(req, cached), true, nil
		}
		metrics.CacheRequests.WithLabelValues("miss").Inc()
	}

	metrics.TasksSubmitted.Inc()
	return "", false, nil
}

// Cancel implements TranslationService.Cancel.
func (s *translationService) Cancel(id task.TaskID) bool {
	s.mu.Lock()
	if id != "" && id == s.pendingID {
		s.pendingID = ""
		delete(s.trackers, id)
		s.mu.Unlock()
		return s.debouncer.CancelPending()
	}
	s.mu.Unlock()

	return s.orchestrator.Cancel(id)
}

// CancelAll implements TranslationService.CancelAll.
func (s *translationService) CancelAll() int {
	s.mu.Lock()
	if s.pendingID != "" {
		delete(s.trackers, s.pendingID)
		s.pendingID = ""
	}
	s.mu.Unlock()

	s.debouncer.CancelPending()
	return s.orchestrator.CancelAll()
}

// Snapshot implements TranslationService.Snapshot. A task still inside
// its debounce window reports as pending.
func (s *translationService) Snapshot(id task.TaskID) (task.Snapshot, bool) {
	s.mu.Lock()
	if id != "" && id == s.pendingID {
		tracker := s.trackers[id]
		s.mu.Unlock()
		return task.Snapshot{
			ID:      id,
			State:   task.StatePending,
			Request: tracker.request,
		}, true
	}
	s.mu.Unlock()

	return s.orchestrator.Snapshot(id)
}

// Subscribe implements TranslationService.Subscribe.
func (s *translationService) Subscribe() (<-chan task.Event, func()) {
	ch := make(chan task.Event, 64)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Languages implements TranslationService.Languages. Auto-detect is
// included; it is a valid source selection.
func (s *translationService) Languages() []domain.Language {
	return domain.SupportedLanguages(false)
}

// Shutdown implements TranslationService.Shutdown.
func (s *translationService) Shutdown(wait time.Duration) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return true
	}
	s.closed = true
	s.pendingID = ""
	s.mu.Unlock()

	s.debouncer.Stop()
	drained := s.orchestrator.Shutdown(wait)

	s.mu.Lock()
	for id, sub := range s.subscribers {
		delete(s.subscribers, id)
		close(sub)
	}
	s.mu.Unlock()
	return drained
}

// dispatch hands a request that survived its debounce window to the
// orchestrator.
func (s *translationService) dispatch(id task.TaskID, req domain.TranslationRequest) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.pendingID == id {
		s.pendingID = ""
	}
	s.mu.Unlock()

	s.orchestrator.ExecuteAs(id, req)
}

// translate is the blocking work of one attempt: resolve the source
// language, then call the backend.
func (s *translationService) translate(
	ctx context.Context,
	req domain.TranslationRequest,
	progress translation.ProgressFunc,
) (task.Result, error) {
	source := req.SourceLang
	if source == domain.LanguageAuto {
		if detected, ok := s.detector.Detect(req.Text); ok {
			source = detected
		} else {
			// Too short or ambiguous; English is the least bad guess.
			source = domain.LanguageEnglish
		}
	}

	text, err := s.translator.Translate(ctx, req.Text, source, req.TargetLang, progress)
	if err != nil {
		return task.Result{}, err
	}
	return task.Result{DetectedLang: source, Text: text}, nil
}

// completeFromCache short-circuits the engine for a cache hit: the
// subscriber-visible lifecycle is preserved, but nothing runs.
func (s *translationService) completeFromCache(req domain.TranslationRequest, cached task.Result) task.TaskID {
	id := task.NewTaskID()
	now := time.Now().UTC()

	s.broadcast(task.Event{Type: task.EventStarted, TaskID: id, Attempt: 1, Time: now})
	s.broadcast(task.Event{
		Type:         task.EventComplete,
		TaskID:       id,
		Attempt:      1,
		Time:         now,
		DetectedLang: cached.DetectedLang,
		Text:         cached.Text,
	})
	s.broadcast(task.Event{Type: task.EventFinished, TaskID: id, Attempt: 1, Time: now})

	s.logger.Debug("translation served from cache", "task_id", id)
	return id
}

// handleEvent is the orchestrator's listener. It runs on the coordinating
// goroutine, so it must stay quick: fan-out is non-blocking and history
// writes happen on their own goroutine.
func (s *translationService) handleEvent(ev task.Event) {
	s.broadcast(ev)

	s.mu.Lock()
	defer s.mu.Unlock()

	tracker, ok := s.trackers[ev.TaskID]
	if !ok {
		tracker = &taskTracker{start: ev.Time}
		s.trackers[ev.TaskID] = tracker
	}

	switch ev.Type {
	case task.EventStarted:
		if ev.Attempt == 1 && !tracker.active {
			tracker.active = true
			metrics.ActiveTasks.Inc()
		}

	case task.EventComplete:
		tracker.outcome = "succeeded"
		metrics.AttemptsTotal.WithLabelValues("success").Inc()
		s.recordCompletion(tracker.request, ev)

	case task.EventError:
		tracker.outcome = "failed"
		metrics.AttemptsTotal.WithLabelValues("failure").Inc()
		if ev.Err != nil {
			metrics.ErrorsTotal.WithLabelValues(string(ev.Err.Kind)).Inc()
		}

	case task.EventRetrying:
		tracker.outcome = "retrying"
		metrics.AttemptsTotal.WithLabelValues("failure").Inc()
		if ev.Err != nil {
			metrics.RetriesTotal.WithLabelValues(string(ev.Err.Kind)).Inc()
		}

	case task.EventFinished:
		if tracker.outcome == "retrying" {
			// The task lives on; the next attempt starts after the
			// backoff delay.
			tracker.outcome = ""
			return
		}
		outcome := tracker.outcome
		if outcome == "" {
			outcome = "cancelled"
		}
		metrics.TasksFinished.WithLabelValues(outcome).Inc()
		metrics.TaskDuration.WithLabelValues(outcome).Observe(time.Since(tracker.start).Seconds())
		if tracker.active {
			metrics.ActiveTasks.Dec()
		}
		delete(s.trackers, ev.TaskID)
	}
}

// recordCompletion persists a finished translation to history and the
// cache. Called with s.mu held; the slow work runs on its own goroutine.
func (s *translationService) recordCompletion(req domain.TranslationRequest, ev task.Event) {
	if req.Text == "" {
		// Tracker created from events alone; without the request there is
		// nothing to record.
		return
	}

	result := task.Result{DetectedLang: ev.DetectedLang, Text: ev.Text}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entry, err := domain.NewHistoryEntry(req.Text, result.Text, result.DetectedLang, req.TargetLang)
		if err != nil {
			s.logger.Warn("finished translation not recordable", "error", err)
			return
		}
		if err := s.history.Create(ctx, entry); err != nil {
			s.logger.Warn("failed to record history entry",
				"entry_id", entry.ID,
				"error", err)
		}

		if s.cache != nil {
			s.cache.Set(ctx, req, result)
		}
	}()
}

// broadcast fans an event out to all subscribers without blocking.
func (s *translationService) broadcast(ev task.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sub := range s.subscribers {
		select {
		case sub <- ev:
		default:
			s.logger.Warn("subscriber too slow, dropping event",
				"subscriber", id,
				"event_type", string(ev.Type))
		}
	}
}
