package chat

import (
	"errors"
	"fmt"

	"github.com/quocvuong92/gemini-chat/internal/api"
)

// ErrorKind enumerates the ways a chat turn can fail
type ErrorKind int

const (
	MessageTooLong ErrorKind = iota
	Network
	RateLimit
	Auth
	InvalidRequest
	Unknown
)

// String returns the name of the kind
func (k ErrorKind) String() string {
	switch k {
	case MessageTooLong:
		return "MessageTooLong"
	case Network:
		return "Network"
	case RateLimit:
		return "RateLimit"
	case Auth:
		return "Auth"
	case InvalidRequest:
		return "InvalidRequest"
	default:
		return "Unknown"
	}
}

// Error is a non-fatal failure of a single chat turn
type Error struct {
	Kind ErrorKind
	// Detail is a short human-readable explanation
	Detail string
	// Attempts is the number of remote calls made; zero when none were
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// kindFromAPI maps a remote-call kind to a chat error kind
func kindFromAPI(k api.Kind) ErrorKind {
	switch k {
	case api.KindNetwork:
		return Network
	case api.KindRateLimit:
		return RateLimit
	case api.KindAuth:
		return Auth
	case api.KindInvalidRequest:
		return InvalidRequest
	default:
		return Unknown
	}
}

// fromCallError normalizes any failure from the retried call into *Error
func fromCallError(err error) *Error {
	ce := &Error{Kind: kindFromAPI(api.Classify(err)), Err: err, Detail: err.Error()}

	var final *api.Error
	if errors.As(err, &final) {
		ce.Attempts = final.Attempts
		if final.Err != nil {
			ce.Detail = final.Err.Error()
		}
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		ce.Detail = apiErr.Message
	}
	return ce
}
