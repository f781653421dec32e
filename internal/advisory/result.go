package advisory

import "fmt"

// Outcome tags an advisory Result.
type Outcome int

// Advisory outcomes. Exactly one is delivered per submitted task.
const (
	OutcomeSuccess Outcome = iota + 1
	OutcomeTimedOut
	OutcomeAPIError
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeAPIError:
		return "api_error"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the single value delivered for a task.
// Text is set for OutcomeSuccess, Message for OutcomeAPIError, and Err carries
// the last underlying error for OutcomeTimedOut and OutcomeAPIError.
type Result struct {
	Err      error
	TaskID   string
	Text     string
	Message  string
	Outcome  Outcome
	Attempts int
}

func successResult(text string) Result {
	return Result{Outcome: OutcomeSuccess, Text: text}
}

func timedOutResult(err error) Result {
	return Result{Outcome: OutcomeTimedOut, Err: err}
}

func apiErrorResult(message string, err error) Result {
	return Result{Outcome: OutcomeAPIError, Message: message, Err: err}
}

func cancelledResult() Result {
	return Result{Outcome: OutcomeCancelled}
}

// state returns the terminal task state that delivers this result.
func (r Result) state() State {
	switch r.Outcome {
	case OutcomeSuccess:
		return StateSucceeded
	case OutcomeTimedOut:
		return StateTimedOut
	case OutcomeCancelled:
		return StateCancelled
	default:
		return StateFailed
	}
}
