// Package trigger models the job lifecycle events that can fire a
// notification, and the display styling bound to each of them.
package trigger

import "fmt"

// Kind is a recognized job lifecycle event.
type Kind string

const (
	Start            Kind = "start"
	Success          Kind = "success"
	Failure          Kind = "failure"
	AvgDuration      Kind = "avgduration"
	RetryableFailure Kind = "retryablefailure"
)

// Slack attachment severity palette.
const (
	ColorGood    = "good"
	ColorWarning = "warning"
	ColorDanger  = "danger"
)

// Kinds returns all recognized trigger kinds in a stable order.
func Kinds() []Kind {
	return []Kind{Start, Success, Failure, AvgDuration, RetryableFailure}
}

// Parse maps a raw trigger name to a Kind. Unknown names are an error,
// never a default.
func Parse(s string) (Kind, error) {
	switch Kind(s) {
	case Start, Success, Failure, AvgDuration, RetryableFailure:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown trigger type %q", s)
	}
}

// Color returns the attachment color for the kind. Only failure is danger,
// only success is good; everything else is a warning state.
func (k Kind) Color() string {
	switch k {
	case Success:
		return ColorGood
	case Failure:
		return ColorDanger
	default:
		return ColorWarning
	}
}

// StatusLabel returns the human-readable status text for a raw trigger
// name. Unrecognized names fall through to "Succeeded", matching the
// default branch of the message layout; callers that need strict
// validation use Parse first.
func StatusLabel(s string) string {
	switch Kind(s) {
	case Start:
		return "Started"
	case Failure:
		return "Failed"
	case AvgDuration:
		return "Average exceeded"
	case RetryableFailure:
		return "Retry Failure"
	default:
		return "Succeeded"
	}
}
