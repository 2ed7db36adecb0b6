package task

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hanseo/rosetta-api/internal/domain"
	"github.com/hanseo/rosetta-api/internal/translation"
)

// DefaultAttemptTimeout bounds a single translation attempt.
const DefaultAttemptTimeout = 60 * time.Second

// commandBuffer sizes the command and worker-event channels. Both are
// consumed by the coordinating goroutine; the buffer absorbs bursts from
// timers and pool goroutines without blocking them.
const commandBuffer = 64

// Config holds the orchestrator knobs.
type Config struct {
	// AttemptTimeout bounds each attempt. Zero uses DefaultAttemptTimeout.
	AttemptTimeout time.Duration

	// Retry is the backoff policy applied to retryable failures.
	Retry RetryPolicy

	// PoolSize is the worker pool capacity. Zero picks a size from the
	// CPU count.
	PoolSize int
}

// DefaultConfig returns the configuration the desktop client ships with.
func DefaultConfig() Config {
	return Config{
		AttemptTimeout: DefaultAttemptTimeout,
		Retry:          DefaultRetryPolicy(),
	}
}

// activeTask is the orchestrator's record of one in-flight task. It is
// only ever touched from the coordinating goroutine.
type activeTask struct {
	id      TaskID
	request domain.TranslationRequest
	state   State
	attempt int

	// attemptClosed is set when the orchestrator has already decided the
	// outcome of the current attempt (timeout, cancellation) and any
	// events the worker still produces for it must be dropped.
	attemptClosed bool

	worker       *Worker
	timeoutTimer *time.Timer
	retryTimer   *time.Timer

	result *Result
	terr   *translation.TranslationError
}

// Orchestrator coordinates debounced submissions, the worker pool, the
// per-attempt timeout and the retry state machine. All task state lives
// behind a single coordinating goroutine; external calls and timer
// callbacks post commands to it, and workers report events to it, so no
// task field is ever accessed concurrently.
//
// Submission is most-recent-wins: starting a task cancels every task
// still active.
type Orchestrator struct {
	run      TranslateFunc
	policy   RetryPolicy
	timeout  time.Duration
	pool     *WorkerPool
	listener Listener
	logger   *slog.Logger

	commands chan func()
	events   chan workerEvent
	quit     chan struct{}
	loopDone chan struct{}

	// active is owned by the coordinating goroutine.
	active map[TaskID]*activeTask

	mu     sync.Mutex
	closed bool
}

// NewOrchestrator creates and starts an orchestrator. The listener, if
// non-nil, receives every lifecycle event from the coordinating
// goroutine; it must not block for long.
func NewOrchestrator(run TranslateFunc, cfg Config, listener Listener, logger *slog.Logger) *Orchestrator {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}
	if cfg.Retry == (RetryPolicy{}) {
		cfg.Retry = DefaultRetryPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "orchestrator")

	o := &Orchestrator{
		run:      run,
		policy:   cfg.Retry,
		timeout:  cfg.AttemptTimeout,
		pool:     NewWorkerPool(cfg.PoolSize, logger),
		listener: listener,
		logger:   logger,
		commands: make(chan func(), commandBuffer),
		events:   make(chan workerEvent, commandBuffer),
		quit:     make(chan struct{}),
		loopDone: make(chan struct{}),
		active:   make(map[TaskID]*activeTask),
	}

	o.pool.Start()
	go o.loop()
	return o
}

// Execute starts a new task for req, cancelling every task still active.
// The returned ID can be used to cancel or inspect the task.
func (o *Orchestrator) Execute(req domain.TranslationRequest) TaskID {
	id := NewTaskID()
	o.ExecuteAs(id, req)
	return id
}

// ExecuteAs starts a task under a caller-assigned ID. The debouncer uses
// it so subscribers can hold the ID before the quiet window elapses.
func (o *Orchestrator) ExecuteAs(id TaskID, req domain.TranslationRequest) {
	o.post(func() { o.startTask(id, req) })
}

// Cancel requests cooperative cancellation of one task. Returns true if
// the task was active. The task's finished event is emitted before Cancel
// returns control to the coordinating goroutine; a blocking attempt
// already in flight runs to completion and its output is discarded.
func (o *Orchestrator) Cancel(id TaskID) bool {
	reply := make(chan bool, 1)
	if !o.post(func() {
		at, ok := o.active[id]
		if ok {
			o.cancelTask(at)
		}
		reply <- ok
	}) {
		return false
	}
	return <-reply
}

// CancelAll cancels every active task and returns how many there were.
func (o *Orchestrator) CancelAll() int {
	reply := make(chan int, 1)
	if !o.post(func() {
		reply <- o.cancelAll()
	}) {
		return 0
	}
	return <-reply
}

// Snapshot returns a point-in-time view of a task, or false if the task
// is not active.
func (o *Orchestrator) Snapshot(id TaskID) (Snapshot, bool) {
	reply := make(chan *Snapshot, 1)
	if !o.post(func() {
		at, ok := o.active[id]
		if !ok {
			reply <- nil
			return
		}
		reply <- at.snapshot()
	}) {
		return Snapshot{}, false
	}
	s := <-reply
	if s == nil {
		return Snapshot{}, false
	}
	return *s, true
}

// ActiveCount returns the number of tasks currently tracked.
func (o *Orchestrator) ActiveCount() int {
	reply := make(chan int, 1)
	if !o.post(func() { reply <- len(o.active) }) {
		return 0
	}
	return <-reply
}

// Shutdown cancels all tasks, waits up to wait for in-flight attempts to
// drain and stops the coordinating goroutine. Returns true if everything
// drained in time. The orchestrator cannot be restarted.
func (o *Orchestrator) Shutdown(wait time.Duration) bool {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return true
	}
	o.closed = true
	o.mu.Unlock()

	done := make(chan struct{})
	select {
	case o.commands <- func() {
		o.cancelAll()
		close(done)
	}:
		<-done
	case <-o.quit:
	}

	drained := o.pool.Shutdown(wait)
	close(o.quit)
	<-o.loopDone
	return drained
}

// post hands a command to the coordinating goroutine and waits for it
// to run. Returns false if the orchestrator shut down first; a command
// racing Shutdown may land in the buffer after the loop has exited, so
// the wait also watches quit to keep the caller from blocking on a
// reply that will never come.
func (o *Orchestrator) post(cmd func()) bool {
	o.mu.Lock()
	closed := o.closed
	o.mu.Unlock()
	if closed {
		return false
	}

	done := make(chan struct{})
	select {
	case o.commands <- func() {
		cmd()
		close(done)
	}:
	case <-o.quit:
		return false
	}

	select {
	case <-done:
		return true
	case <-o.quit:
		return false
	}
}

// loop is the coordinating goroutine.
func (o *Orchestrator) loop() {
	defer close(o.loopDone)

	for {
		select {
		case cmd := <-o.commands:
			cmd()
		case ev := <-o.events:
			o.handleWorkerEvent(ev)
		case <-o.quit:
			return
		}
	}
}

// startTask cancels everything active and dispatches the first attempt
// of a new task.
func (o *Orchestrator) startTask(id TaskID, req domain.TranslationRequest) {
	o.cancelAll()

	at := &activeTask{
		id:      id,
		request: req,
		state:   StatePending,
		attempt: 1,
	}
	o.active[id] = at
	o.logger.Debug("task started", "task_id", id, "target_lang", req.TargetLang)
	o.dispatch(at)
}

// dispatch submits the current attempt of at to the worker pool.
func (o *Orchestrator) dispatch(at *activeTask) {
	w := newWorker(at.id, at.attempt, at.request, o.run, o.timeout, o.events, o.quit)
	at.worker = w

	if err := o.pool.Submit(w); err != nil {
		// The pool rejected the attempt outright; retrying would hit the
		// same wall, so fail the task immediately.
		o.logger.Warn("worker submission rejected", "task_id", at.id, "error", err)
		at.worker = nil
		at.state = StateFailed
		at.terr = translation.Classify(err)
		at.attemptClosed = true
		o.emit(Event{Type: EventError, TaskID: at.id, Attempt: at.attempt, Err: at.terr})
		o.finishAttempt(at)
	}
}

// handleWorkerEvent applies one worker signal to the task table. Events
// from a superseded attempt, or from a task that is no longer tracked,
// are dropped.
func (o *Orchestrator) handleWorkerEvent(ev workerEvent) {
	at, ok := o.active[ev.taskID]
	if !ok || ev.attempt != at.attempt || at.attemptClosed {
		return
	}

	switch ev.typ {
	case workerStarted:
		at.state = StateRunning
		o.armTimeout(at)
		o.emit(Event{Type: EventStarted, TaskID: at.id, Attempt: at.attempt})

	case workerProgress:
		o.emit(Event{
			Type:    EventProgress,
			TaskID:  at.id,
			Attempt: at.attempt,
			Percent: ev.percent,
			Message: ev.message,
		})

	case workerResult:
		o.disarmTimeout(at)
		at.state = StateSucceeded
		result := ev.result
		at.result = &result
		o.emit(Event{
			Type:         EventComplete,
			TaskID:       at.id,
			Attempt:      at.attempt,
			DetectedLang: result.DetectedLang,
			Text:         result.Text,
		})

	case workerError:
		o.disarmTimeout(at)
		o.failAttempt(at, translation.Classify(ev.err), false)

	case workerFinished:
		o.finishAttempt(at)
	}
}

// armTimeout starts the per-attempt timeout. The callback posts back to
// the coordinating goroutine; taskID and attempt pin it to this attempt
// so a late firing cannot touch a newer one.
func (o *Orchestrator) armTimeout(at *activeTask) {
	id, attempt := at.id, at.attempt
	at.timeoutTimer = time.AfterFunc(o.timeout, func() {
		o.post(func() { o.onTimeout(id, attempt) })
	})
}

func (o *Orchestrator) disarmTimeout(at *activeTask) {
	if at.timeoutTimer != nil {
		at.timeoutTimer.Stop()
		at.timeoutTimer = nil
	}
}

// onTimeout handles the per-attempt timeout firing. The worker is
// cancelled cooperatively and a timeout error drives the retry decision
// without waiting for the blocking call to return.
func (o *Orchestrator) onTimeout(id TaskID, attempt int) {
	at, ok := o.active[id]
	if !ok || at.attempt != attempt || at.attemptClosed || at.state != StateRunning {
		return
	}

	o.logger.Debug("attempt timed out", "task_id", id, "attempt", attempt, "timeout", o.timeout)
	if at.worker != nil {
		at.worker.Cancel()
	}
	at.timeoutTimer = nil
	o.failAttempt(at, translation.NewTimeoutError(), true)
}

// failAttempt records a failed attempt and either schedules a retry or
// fails the task. When synthesizeFinished is set the worker's own
// finished event will never be observed for this attempt, so it is
// emitted here.
func (o *Orchestrator) failAttempt(at *activeTask, terr *translation.TranslationError, synthesizeFinished bool) {
	at.terr = terr

	if delay, retry := o.policy.ShouldRetry(terr, at.attempt); retry {
		at.state = StateRetrying
		maxAttempts := o.policy.EffectiveMaxRetries(terr.Kind) + 1
		o.logger.Debug("attempt failed, retrying",
			"task_id", at.id,
			"attempt", at.attempt,
			"max_attempts", maxAttempts,
			"kind", terr.Kind,
			"delay", delay)
		o.emit(Event{
			Type:        EventRetrying,
			TaskID:      at.id,
			Attempt:     at.attempt,
			MaxAttempts: maxAttempts,
			Delay:       delay,
			Err:         terr,
		})
		o.armRetry(at, delay)
	} else {
		at.state = StateFailed
		o.logger.Debug("task failed",
			"task_id", at.id,
			"attempt", at.attempt,
			"kind", terr.Kind,
			"retryable", terr.Retryable)
		o.emit(Event{Type: EventError, TaskID: at.id, Attempt: at.attempt, Err: terr})
	}

	if synthesizeFinished {
		at.attemptClosed = true
		o.finishAttempt(at)
	}
}

// armRetry schedules the next attempt after the backoff delay.
func (o *Orchestrator) armRetry(at *activeTask, delay time.Duration) {
	id, attempt := at.id, at.attempt
	at.retryTimer = time.AfterFunc(delay, func() {
		o.post(func() { o.onRetry(id, attempt) })
	})
}

// onRetry dispatches the next attempt of a retrying task.
func (o *Orchestrator) onRetry(id TaskID, attempt int) {
	at, ok := o.active[id]
	if !ok || at.attempt != attempt || at.state != StateRetrying {
		return
	}

	at.retryTimer = nil
	at.attempt++
	at.attemptClosed = false
	at.state = StatePending
	at.terr = nil
	o.dispatch(at)
}

// finishAttempt emits the finished event that closes the current attempt
// and drops the task from the table once it is terminal. A retrying task
// stays tracked until its next attempt runs.
func (o *Orchestrator) finishAttempt(at *activeTask) {
	o.emit(Event{Type: EventFinished, TaskID: at.id, Attempt: at.attempt})
	if at.state.IsTerminal() {
		delete(o.active, at.id)
	}
}

// cancelTask cancels one task: timers are stopped, the worker is flagged,
// the finished event is synthesized and the task is dropped. Any events
// the worker still produces refer to an unknown task and are discarded.
func (o *Orchestrator) cancelTask(at *activeTask) {
	o.disarmTimeout(at)
	if at.retryTimer != nil {
		at.retryTimer.Stop()
		at.retryTimer = nil
	}
	if at.worker != nil {
		at.worker.Cancel()
	}

	at.state = StateCancelled
	at.attemptClosed = true
	o.logger.Debug("task cancelled", "task_id", at.id, "attempt", at.attempt)
	o.finishAttempt(at)
}

// cancelAll cancels every tracked task and returns how many there were.
func (o *Orchestrator) cancelAll() int {
	n := len(o.active)
	for _, at := range o.active {
		o.cancelTask(at)
	}
	return n
}

// emit delivers one lifecycle event to the listener.
func (o *Orchestrator) emit(ev Event) {
	ev.Time = time.Now().UTC()
	if o.listener != nil {
		o.listener(ev)
	}
}

// snapshot builds an external view of the task. Pointers are copied so
// callers never alias orchestrator-owned state.
func (at *activeTask) snapshot() *Snapshot {
	s := &Snapshot{
		ID:      at.id,
		State:   at.state,
		Attempt: at.attempt,
		Request: at.request,
	}
	if at.result != nil {
		r := *at.result
		s.Result = &r
	}
	if at.terr != nil {
		e := *at.terr
		s.Err = &e
	}
	return s
}
