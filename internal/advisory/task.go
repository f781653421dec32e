package advisory

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// State is the lifecycle position of an advisory task.
type State int

// Task states. Succeeded, TimedOut, Failed and Cancelled are terminal.
const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateTimedOut
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateTimedOut:
		return "timed_out"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s >= StateSucceeded
}

// transitions lists the allowed moves. Terminal states have no entry.
// Running to Running is a retry.
var transitions = map[State][]State{
	StateIdle:    {StateRunning},
	StateRunning: {StateRunning, StateSucceeded, StateTimedOut, StateFailed, StateCancelled},
}

func canTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

// TaskHandle tracks one submitted advisory request.
type TaskHandle struct {
	onResult func(Result)
	cancel   context.CancelFunc
	done     chan struct{}
	exited   chan struct{}
	id       string
	result   Result
	state    State
	attempts int
	mu       sync.Mutex
}

func newTask(id string, cancel context.CancelFunc, onResult func(Result)) *TaskHandle {
	return &TaskHandle{
		id:       id,
		cancel:   cancel,
		onResult: onResult,
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
		state:    StateIdle,
	}
}

// ID returns the task identifier.
func (h *TaskHandle) ID() string {
	return h.id
}

// State returns the current state.
func (h *TaskHandle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Attempts returns how many provider calls have been started.
func (h *TaskHandle) Attempts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attempts
}

// Done is closed after the result has been delivered.
func (h *TaskHandle) Done() <-chan struct{} {
	return h.done
}

// Result returns the delivered result once the task is terminal.
func (h *TaskHandle) Result() (Result, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.state.Terminal()
}

// Cancel stops the task and delivers Cancelled unless a result was already delivered.
// It reports whether this call cancelled the task.
func (h *TaskHandle) Cancel() bool {
	return h.finish(cancelledResult())
}

// start moves Idle to Running.
func (h *TaskHandle) start() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.moveLocked(StateRunning)
}

// beginAttempt records a provider call. It fails once the task is terminal.
func (h *TaskHandle) beginAttempt() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.moveLocked(StateRunning) {
		return h.attempts, false
	}
	h.attempts++
	return h.attempts, true
}

func (h *TaskHandle) moveLocked(to State) bool {
	if !canTransition(h.state, to) {
		return false
	}
	h.state = to
	return true
}

// finish moves the task into the result's terminal state and delivers it.
// Only the first caller wins; later results are dropped.
func (h *TaskHandle) finish(res Result) bool {
	h.mu.Lock()
	if !h.moveLocked(res.state()) {
		h.mu.Unlock()
		return false
	}
	res.TaskID = h.id
	res.Attempts = h.attempts
	h.result = res
	h.mu.Unlock()

	h.cancel()
	h.onResult(res)
	close(h.done)
	return true
}
