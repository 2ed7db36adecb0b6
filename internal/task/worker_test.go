package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/translation"
)

// drainEvents collects everything the worker emitted.
func drainEvents(ch chan workerEvent) []workerEvent {
	var out []workerEvent
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func eventTypes(evs []workerEvent) []workerEventType {
	types := make([]workerEventType, len(evs))
	for i, ev := range evs {
		types[i] = ev.typ
	}
	return types
}

func TestWorkerRunSuccess(t *testing.T) {
	t.Parallel()

	events := make(chan workerEvent, 8)
	run := func(ctx context.Context, req domain.TranslationRequest, progress translation.ProgressFunc) (Result, error) {
		progress(50, "translating")
		return Result{DetectedLang: domain.LanguageEnglish, Text: "안녕하세요"}, nil
	}

	w := newWorker("task0001", 2, testRequest("hello"), run, time.Second, events, make(chan struct{}))
	w.Run()

	evs := drainEvents(events)
	require.Equal(t,
		[]workerEventType{workerStarted, workerProgress, workerResult, workerFinished},
		eventTypes(evs))

	for _, ev := range evs {
		assert.Equal(t, TaskID("task0001"), ev.taskID)
		assert.Equal(t, 2, ev.attempt)
	}
	assert.Equal(t, 50, evs[1].percent)
	assert.Equal(t, "translating", evs[1].message)
	assert.Equal(t, "안녕하세요", evs[2].result.Text)
	assert.Equal(t, domain.LanguageEnglish, evs[2].result.DetectedLang)
}

func TestWorkerRunError(t *testing.T) {
	t.Parallel()

	events := make(chan workerEvent, 8)
	wantErr := errors.New("connection refused")
	run := func(ctx context.Context, req domain.TranslationRequest, progress translation.ProgressFunc) (Result, error) {
		return Result{}, wantErr
	}

	w := newWorker("task0002", 1, testRequest("hello"), run, time.Second, events, make(chan struct{}))
	w.Run()

	evs := drainEvents(events)
	require.Equal(t,
		[]workerEventType{workerStarted, workerError, workerFinished},
		eventTypes(evs))
	assert.ErrorIs(t, evs[1].err, wantErr)
}

func TestWorkerCancelledBeforeRun(t *testing.T) {
	t.Parallel()

	events := make(chan workerEvent, 8)
	called := false
	run := func(ctx context.Context, req domain.TranslationRequest, progress translation.ProgressFunc) (Result, error) {
		called = true
		return Result{}, nil
	}

	w := newWorker("task0003", 1, testRequest("hello"), run, time.Second, events, make(chan struct{}))
	w.Cancel()
	w.Run()

	evs := drainEvents(events)
	assert.Equal(t,
		[]workerEventType{workerStarted, workerFinished},
		eventTypes(evs))
	assert.False(t, called, "the blocking call is skipped when cancelled up front")
}

func TestWorkerCancelledDuringRun(t *testing.T) {
	t.Parallel()

	events := make(chan workerEvent, 8)
	w := newWorker("task0004", 1, testRequest("hello"), nil, time.Second, events, make(chan struct{}))
	w.run = func(ctx context.Context, req domain.TranslationRequest, progress translation.ProgressFunc) (Result, error) {
		// Cancellation arrives while the blocking call is in flight. The
		// call still finishes; its output must be suppressed.
		w.Cancel()
		progress(90, "post-processing")
		return Result{Text: "discarded"}, nil
	}
	w.Run()

	evs := drainEvents(events)
	assert.Equal(t,
		[]workerEventType{workerStarted, workerFinished},
		eventTypes(evs),
		"no progress, result or error after cancellation")
}

func TestWorkerAttemptTimeoutOnContext(t *testing.T) {
	t.Parallel()

	events := make(chan workerEvent, 8)
	run := func(ctx context.Context, req domain.TranslationRequest, progress translation.ProgressFunc) (Result, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok, "attempt context carries the timeout deadline")
		assert.WithinDuration(t, time.Now().Add(30*time.Millisecond), deadline, 25*time.Millisecond)
		<-ctx.Done()
		return Result{}, ctx.Err()
	}

	w := newWorker("task0005", 1, testRequest("hello"), run, 30*time.Millisecond, events, make(chan struct{}))
	w.Run()

	evs := drainEvents(events)
	require.Equal(t,
		[]workerEventType{workerStarted, workerError, workerFinished},
		eventTypes(evs))
	assert.ErrorIs(t, evs[1].err, context.DeadlineExceeded)
}

func TestWorkerIsCancelled(t *testing.T) {
	t.Parallel()

	w := newWorker("task0006", 1, testRequest("hello"), nil, time.Second, make(chan workerEvent, 1), make(chan struct{}))
	assert.False(t, w.IsCancelled())
	w.Cancel()
	assert.True(t, w.IsCancelled())
}
