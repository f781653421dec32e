package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNewInterruptHandler(t *testing.T) {
	tests := []struct {
		writer io.Writer
		name   string
	}{
		{
			name:   "with custom writer",
			writer: &bytes.Buffer{},
		},
		{
			name:   "with nil writer",
			writer: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInterruptHandler(tt.writer, nil)
			assert.NotNil(t, handler)
			assert.NotNil(t, handler.writer)
			assert.False(t, handler.interrupted)
		})
	}
}

func TestInterruptHandler_Signal(t *testing.T) {
	output := &syncBuffer{}
	var calls atomic.Int32
	handler := NewInterruptHandler(output, func() { calls.Add(1) })

	signals := make(chan os.Signal, 2)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.watch(ctx, cancel, signals, true)
	}()

	signals <- os.Interrupt
	signals <- os.Interrupt

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not react to signal")
	}

	require.Error(t, ctx.Err())
	assert.True(t, handler.WasInterrupted())
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, output.String(), "Interrupted!")
	assert.Contains(t, output.String(), "Advisory cancelled")
}

func TestInterruptHandler_ParentDone(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output, func() { t.Error("callback must not run") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handler.watch(ctx, cancel, make(chan os.Signal), false)

	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, output.String())
}

func TestShowInterruptMessage(t *testing.T) {
	tests := []struct {
		name          string
		expected      []string
		notExpected   []string
		advisoryShown bool
	}{
		{
			name:          "with pending advisory",
			advisoryShown: true,
			expected: []string{
				"Interrupted!",
				"Advisory cancelled",
				"See you later!",
			},
		},
		{
			name: "without advisory",
			expected: []string{
				"Interrupted!",
				"See you later!",
			},
			notExpected: []string{
				"Advisory cancelled",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer
			handler := &InterruptHandler{
				writer:        &output,
				advisoryShown: tt.advisoryShown,
			}

			handler.showInterruptMessage()

			outputStr := output.String()
			for _, expected := range tt.expected {
				assert.Contains(t, outputStr, expected)
			}
			for _, notExpected := range tt.notExpected {
				assert.NotContains(t, outputStr, notExpected)
			}
		})
	}
}
