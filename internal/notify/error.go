package notify

import "errors"

// ErrorKind classifies dispatcher failures.
type ErrorKind int

const (
	// KindConfig: webhook base URL or token missing/invalid.
	KindConfig ErrorKind = iota
	// KindInvalidArgument: unrecognized trigger name.
	KindInvalidArgument
	// KindTemplate: template missing, malformed, or failed during render.
	KindTemplate
	// KindURL: base URL + token do not form a valid request URL.
	KindURL
	// KindConnection: network-level failure sending the request.
	KindConnection
	// KindResponse: failure reading the response body.
	KindResponse
	// KindDelivery: the webhook answered with something other than "ok".
	KindDelivery
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindInvalidArgument:
		return "invalid argument"
	case KindTemplate:
		return "template"
	case KindURL:
		return "url"
	case KindConnection:
		return "connection"
	case KindResponse:
		return "response"
	case KindDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// Error is a typed dispatcher failure.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from an error chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
