package task

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hanseo/rosetta-api/internal/domain"
)

// Worker executes one attempt of a task on a pool goroutine. It reports
// lifecycle events back to the orchestrator and supports cooperative
// cancellation: the cancel flag is checked immediately before the blocking
// translation call and immediately after it returns. A worker whose flag
// is set at either checkpoint emits only a finished event. The blocking
// call itself is never preempted; a cancelled worker runs it to completion
// and its output is discarded.
type Worker struct {
	taskID  TaskID
	attempt int
	request domain.TranslationRequest
	run     TranslateFunc
	timeout time.Duration
	events  chan<- workerEvent
	done    <-chan struct{}

	cancelled atomic.Bool
}

// newWorker creates a worker bound to one attempt of one request.
// Workers are single-use: a finished worker is never resubmitted.
func newWorker(
	taskID TaskID,
	attempt int,
	request domain.TranslationRequest,
	run TranslateFunc,
	timeout time.Duration,
	events chan<- workerEvent,
	done <-chan struct{},
) *Worker {
	return &Worker{
		taskID:  taskID,
		attempt: attempt,
		request: request,
		run:     run,
		timeout: timeout,
		events:  events,
		done:    done,
	}
}

// Cancel requests cooperative cancellation of this attempt.
func (w *Worker) Cancel() {
	w.cancelled.Store(true)
}

// IsCancelled reports whether cancellation has been requested.
func (w *Worker) IsCancelled() bool {
	return w.cancelled.Load()
}

// Run executes the attempt. It is called on a pool goroutine.
func (w *Worker) Run() {
	w.send(workerEvent{typ: workerStarted})

	// Checkpoint: cancelled before the blocking call started.
	if w.cancelled.Load() {
		w.send(workerEvent{typ: workerFinished})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	result, err := w.run(ctx, w.request, w.reportProgress)

	// Checkpoint: cancelled while the blocking call was in flight.
	// The result or error is suppressed either way.
	if w.cancelled.Load() {
		w.send(workerEvent{typ: workerFinished})
		return
	}

	if err != nil {
		w.send(workerEvent{typ: workerError, err: err})
	} else {
		w.send(workerEvent{typ: workerResult, result: result})
	}

	w.send(workerEvent{typ: workerFinished})
}

// reportProgress forwards a progress update unless the attempt has been
// cancelled in the meantime.
func (w *Worker) reportProgress(percent int, message string) {
	if w.cancelled.Load() {
		return
	}
	w.send(workerEvent{typ: workerProgress, percent: percent, message: message})
}

// send delivers an event to the coordinating goroutine. The done channel
// keeps a late worker from blocking forever once the orchestrator has
// stopped consuming.
func (w *Worker) send(ev workerEvent) {
	ev.taskID = w.taskID
	ev.attempt = w.attempt
	select {
	case w.events <- ev:
	case <-w.done:
	}
}
