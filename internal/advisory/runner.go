package advisory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/llm"
	"github.com/Veraticus/spend-ledger/internal/service"
)

// Config controls how advisory calls are made.
type Config struct {
	BusinessName  string
	Timeout       time.Duration // per attempt
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	MaxRetries    int
	MaxRows       int
}

// DefaultConfig returns a 90 second timeout with two retries.
func DefaultConfig() Config {
	return Config{
		Timeout:       90 * time.Second,
		MaxRetries:    2,
		RetryDelay:    2 * time.Second,
		MaxRetryDelay: 30 * time.Second,
		MaxRows:       50,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: advisory timeout must be positive, got %s", common.ErrInvalidConfig, c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: advisory max retries must not be negative, got %d", common.ErrInvalidConfig, c.MaxRetries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: advisory retry delay must not be negative, got %s", common.ErrInvalidConfig, c.RetryDelay)
	}
	if c.MaxRows <= 0 {
		return fmt.Errorf("%w: advisory max rows must be positive, got %d", common.ErrInvalidConfig, c.MaxRows)
	}
	return nil
}

// Runner executes advisory tasks against an LLM client.
type Runner struct {
	client  llm.Client
	prompts *PromptBuilder
	logger  *slog.Logger
	cfg     Config
}

// NewRunner creates a runner.
func NewRunner(client llm.Client, cfg Config, logger *slog.Logger) (*Runner, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: llm client", common.ErrMissingConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	prompts, err := NewPromptBuilder(cfg.BusinessName, cfg.MaxRows)
	if err != nil {
		return nil, err
	}

	return &Runner{
		client:  client,
		prompts: prompts,
		logger:  logger,
		cfg:     cfg,
	}, nil
}

// NewSession opens a session that can run one task at a time.
func (r *Runner) NewSession() *Session {
	return &Session{runner: r}
}

// analyze calls the provider and gives up when ctx ends, even if the
// client keeps going. A late reply is dropped.
func (r *Runner) analyze(ctx context.Context, prompt string) (string, error) {
	type reply struct {
		text string
		err  error
	}
	replies := make(chan reply, 1)
	go func() {
		text, err := r.client.Analyze(ctx, prompt, r.prompts.System())
		replies <- reply{text: text, err: err}
	}()

	select {
	case rep := <-replies:
		return rep.text, rep.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// run performs the provider call with retries and delivers the outcome.
func (r *Runner) run(ctx context.Context, h *TaskHandle, prompt string) {
	defer close(h.exited)

	start := time.Now()
	var (
		text         string
		lastTimedOut bool
	)

	attempt := func() error {
		n, ok := h.beginAttempt()
		if !ok {
			return &common.RetryableError{Err: context.Canceled, Retryable: false}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()

		out, err := r.analyze(attemptCtx, prompt)
		if err == nil {
			text = out
			return nil
		}
		if ctx.Err() != nil {
			return &common.RetryableError{Err: ctx.Err(), Retryable: false}
		}

		lastTimedOut = errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || llm.IsTimeout(err)
		retryable := lastTimedOut || llm.IsTransient(err) || common.IsRetryable(err)
		r.logger.Warn("advisory attempt failed",
			"task_id", h.ID(),
			"attempt", n,
			"timed_out", lastTimedOut,
			"retryable", retryable,
			"error", err)
		return &common.RetryableError{Err: err, Retryable: retryable}
	}

	err := common.WithRetry(ctx, attempt, service.RetryOptions{
		MaxAttempts:  r.cfg.MaxRetries + 1,
		InitialDelay: r.cfg.RetryDelay,
		MaxDelay:     r.cfg.MaxRetryDelay,
		Multiplier:   2,
	})

	var res Result
	switch {
	case err == nil:
		res = successResult(text)
	case ctx.Err() != nil:
		res = cancelledResult()
	case lastTimedOut:
		res = timedOutResult(err)
	default:
		res = apiErrorResult(errorMessage(err), err)
	}

	if h.finish(res) {
		r.logger.Info("advisory task finished",
			"task_id", h.ID(),
			"outcome", res.Outcome.String(),
			"attempts", h.Attempts(),
			"elapsed", time.Since(start).Round(time.Millisecond))
		return
	}
	r.logger.Debug("discarded advisory result for finished task",
		"task_id", h.ID(),
		"outcome", res.Outcome.String())
}

// errorMessage returns the provider's own message when there is one.
func errorMessage(err error) string {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var retryErr *common.RetryableError
	if errors.As(err, &retryErr) {
		return retryErr.Err.Error()
	}
	return err.Error()
}
