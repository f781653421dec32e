package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler runs a callback and prints a friendly message on Ctrl-C.
type InterruptHandler struct {
	writer        io.Writer
	onInterrupt   func()
	interrupted   bool
	advisoryShown bool
	mu            sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler. onInterrupt may be nil.
func NewInterruptHandler(writer io.Writer, onInterrupt func()) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer:      writer,
		onInterrupt: onInterrupt,
	}
}

// HandleInterrupts sets up signal handling and returns a context that will be
// canceled on interrupt. Handling stops when the parent context is done.
// With advisoryPending set, the message notes the advisory was cancelled.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, advisoryPending bool) context.Context {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer signal.Stop(sigChan)
		h.watch(ctx, cancel, sigChan, advisoryPending)
	}()
	return ctx
}

func (h *InterruptHandler) watch(ctx context.Context, cancel context.CancelFunc, signals <-chan os.Signal, advisoryPending bool) {
	select {
	case <-ctx.Done():
		return
	case <-signals:
	}

	h.mu.Lock()
	first := !h.interrupted
	if first {
		h.interrupted = true
		h.advisoryShown = advisoryPending
		h.showInterruptMessage()
	}
	h.mu.Unlock()

	if first && h.onInterrupt != nil {
		h.onInterrupt()
	}
	cancel()
}

// showInterruptMessage displays a friendly interrupt message.
func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning("Interrupted!")

	if h.advisoryShown {
		msg += "\n" + FormatInfo("Advisory cancelled. The comparison above is complete.")
	}

	msg += "\n" + FormatInfo("See you later! "+LedgerIcon) + "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		// Best effort - we're shutting down anyway
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
