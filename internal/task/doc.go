// Package task implements the asynchronous orchestration engine that moves
// a translation request from submission to a delivered result. It provides
// request debouncing, a bounded worker pool for blocking translation calls,
// per-attempt timeout enforcement, an exponential-backoff retry state
// machine with error-kind-specific limits, and ordered lifecycle events
// back to the caller.
//
// All orchestrator state is owned by a single coordinating goroutine;
// workers and timers communicate with it through message channels, so no
// locking is needed around the active-task table or retry state.
package task
