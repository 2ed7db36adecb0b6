package task

import (
	"sync"
	"time"

	"github.com/hanseo/rosetta-api/internal/domain"
)

// DefaultDebounceDelay is the window during which rapid successive
// submissions coalesce into one.
const DefaultDebounceDelay = 500 * time.Millisecond

// DispatchFunc delivers a debounced request for execution under a task ID
// that was assigned at submission time.
type DispatchFunc func(id TaskID, req domain.TranslationRequest)

// Debouncer coalesces rapid submissions: each Submit replaces any pending
// one, and only the request that survives the quiet window is dispatched.
// The task ID is assigned immediately so callers can subscribe to events
// before the task ever runs.
type Debouncer struct {
	delay    time.Duration
	dispatch DispatchFunc

	mu      sync.Mutex
	timer   *time.Timer
	pending TaskID
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet window. A
// non-positive delay uses DefaultDebounceDelay.
func NewDebouncer(delay time.Duration, dispatch DispatchFunc) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debouncer{delay: delay, dispatch: dispatch}
}

// Submit schedules req for dispatch after the quiet window, replacing any
// submission still waiting. It returns the task ID the request will run
// under if it survives debouncing.
func (d *Debouncer) Submit(req domain.TranslationRequest) TaskID {
	id := NewTaskID()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return id
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = id
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(id, req)
	})
	return id
}

// CancelPending drops any submission still inside its quiet window.
// Returns true if one was dropped.
func (d *Debouncer) CancelPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	d.pending = ""
	return stopped
}

// Stop shuts the debouncer down, dropping any pending submission. Further
// submissions are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = ""
	d.stopped = true
}

// fire dispatches a submission once its window elapsed, unless it was
// replaced or cancelled in the meantime.
func (d *Debouncer) fire(id TaskID, req domain.TranslationRequest) {
	d.mu.Lock()
	if d.stopped || d.pending != id {
		d.mu.Unlock()
		return
	}
	d.pending = ""
	d.timer = nil
	d.mu.Unlock()

	d.dispatch(id, req)
}
