package engine

import "fmt"

// AdvisoryStatus tells the presenter what to expect after the report.
type AdvisoryStatus int

// Advisory statuses. Only AdvisoryPending is followed by a PresentAdvisory call.
const (
	AdvisoryNotRequested AdvisoryStatus = iota
	AdvisoryPending
	AdvisoryDenied
	AdvisoryUnavailable
	AdvisoryInsufficientData
	AdvisoryBusy
)

func (s AdvisoryStatus) String() string {
	switch s {
	case AdvisoryNotRequested:
		return "not requested"
	case AdvisoryPending:
		return "pending"
	case AdvisoryDenied:
		return "denied"
	case AdvisoryUnavailable:
		return "unavailable"
	case AdvisoryInsufficientData:
		return "insufficient data"
	case AdvisoryBusy:
		return "busy"
	default:
		return fmt.Sprintf("AdvisoryStatus(%d)", int(s))
	}
}

// Message returns a short explanation for statuses that skip the advisory.
func (s AdvisoryStatus) Message() string {
	switch s {
	case AdvisoryPending:
		return "Generating advisory report..."
	case AdvisoryDenied:
		return "Advisory reports are available to administrators only."
	case AdvisoryUnavailable:
		return "Advisory reports are not configured. Set llm.api_key to enable them."
	case AdvisoryInsufficientData:
		return "Both periods need at least one expense record for an advisory report."
	case AdvisoryBusy:
		return "An advisory report is already being generated. Wait for it to finish."
	default:
		return ""
	}
}
