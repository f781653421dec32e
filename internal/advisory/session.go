package advisory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/report"
)

// Session owns the single advisory slot of one interactive session.
type Session struct {
	runner  *Runner
	current *TaskHandle
	mu      sync.Mutex
	closed  bool
}

// Submit starts an advisory task for rep and returns without waiting for it.
// onResult is called exactly once with the task's outcome, from the goroutine
// that settles the task. Until the previous task's result has been delivered
// Submit returns common.ErrBusy and starts nothing.
func (s *Session) Submit(rep report.ComparisonReport, onResult func(Result)) (*TaskHandle, error) {
	if onResult == nil {
		return nil, fmt.Errorf("%w: result callback is required", common.ErrPrecondition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, common.ErrSessionClosed
	}
	if s.current != nil {
		select {
		case <-s.current.Done():
		default:
			return nil, common.ErrBusy
		}
	}

	prompt, err := s.runner.prompts.Build(rep.Clone())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := newTask(uuid.NewString(), cancel, onResult)
	h.start()
	s.current = h

	s.runner.logger.Info("submitted advisory task",
		"task_id", h.ID(),
		"categories", len(rep.CategoryDeltas),
		"prompt_bytes", len(prompt))

	go s.runner.run(ctx, h, prompt)
	return h, nil
}

// Current returns the most recent task, or nil if none was submitted.
func (s *Session) Current() *TaskHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close tears the session down. A running task is cancelled and delivers
// Cancelled; later submissions fail with common.ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	current := s.current
	s.mu.Unlock()

	if current != nil {
		current.Cancel()
	}
}
