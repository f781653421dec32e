package advisory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitions(t *testing.T) {
	terminal := []State{StateSucceeded, StateTimedOut, StateFailed, StateCancelled}
	all := append([]State{StateIdle, StateRunning}, terminal...)

	for _, from := range terminal {
		assert.True(t, from.Terminal(), from.String())
		for _, to := range all {
			assert.False(t, canTransition(from, to), "%s -> %s", from, to)
		}
	}

	assert.True(t, canTransition(StateIdle, StateRunning))
	assert.False(t, canTransition(StateIdle, StateSucceeded))
	assert.True(t, canTransition(StateRunning, StateRunning), "retry re-enters running")
	for _, to := range terminal {
		assert.True(t, canTransition(StateRunning, to), "running -> %s", to)
	}
}

func TestTaskHandle_FinishOnce(t *testing.T) {
	var delivered []Result
	h := newTask("t-1", func() {}, func(r Result) { delivered = append(delivered, r) })

	_, ok := h.beginAttempt()
	assert.False(t, ok, "cannot attempt before start")

	assert.True(t, h.start())
	n, ok := h.beginAttempt()
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	assert.True(t, h.finish(successResult("done")))
	assert.False(t, h.finish(cancelledResult()))
	assert.False(t, h.finish(timedOutResult(nil)))

	_, ok = h.beginAttempt()
	assert.False(t, ok, "no attempts after a terminal state")

	assert.Len(t, delivered, 1)
	assert.Equal(t, OutcomeSuccess, delivered[0].Outcome)
	assert.Equal(t, "t-1", delivered[0].TaskID)
	assert.Equal(t, 1, delivered[0].Attempts)

	select {
	case <-h.Done():
	default:
		t.Fatal("done should be closed")
	}
}
