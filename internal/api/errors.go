package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/genai"
)

// Kind classifies a failed remote call and decides whether it is retried
type Kind int

const (
	// KindUnknown is anything not otherwise recognized; never retried
	KindUnknown Kind = iota
	// KindNetwork covers connectivity failures, timeouts and transient 5xx responses
	KindNetwork
	// KindRateLimit is quota exhaustion (HTTP 429)
	KindRateLimit
	// KindAuth is a rejected or missing API key
	KindAuth
	// KindInvalidRequest is a request the server refused to process
	KindInvalidRequest
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NETWORK"
	case KindRateLimit:
		return "RATE_LIMIT"
	case KindAuth:
		return "AUTH"
	case KindInvalidRequest:
		return "INVALID_REQUEST"
	default:
		return "UNKNOWN"
	}
}

// Retryable reports whether failures of this kind are retried
func (k Kind) Retryable() bool {
	return k == KindNetwork || k == KindRateLimit
}

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("empty response")

// APIError represents an error with status code
type APIError struct {
	StatusCode int
	// Status is the RPC status name, e.g. RESOURCE_EXHAUSTED
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// Error is the final failure of a retried call
type Error struct {
	Kind     Kind
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RetryableStatusCodes are HTTP status codes that should trigger a retry for AI API calls
var RetryableStatusCodes = []int{
	http.StatusTooManyRequests,     // 429 - Rate limited
	http.StatusServiceUnavailable,  // 503 - Service unavailable
	http.StatusGatewayTimeout,      // 504 - Gateway timeout
	http.StatusBadGateway,          // 502 - Bad gateway
	http.StatusInternalServerError, // 500 - Internal server error (transient)
}

// ShouldRetryAPICall checks if the error status code indicates we should retry the API call
func ShouldRetryAPICall(statusCode int) bool {
	for _, code := range RetryableStatusCodes {
		if statusCode == code {
			return true
		}
	}
	return false
}

// Classify maps any error from the remote call to exactly one Kind
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var final *Error
	if errors.As(err, &final) {
		return final.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, apiErr.Status, apiErr.Message)
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return classifyStatus(genaiErr.Code, genaiErr.Status, genaiErr.Message)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	if mentionsAPIKey(err.Error()) {
		return KindAuth
	}
	return KindUnknown
}

func classifyStatus(code int, status, message string) Kind {
	switch code {
	case http.StatusTooManyRequests:
		return KindRateLimit
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindNetwork
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	}

	switch strings.ToUpper(status) {
	case "RESOURCE_EXHAUSTED":
		return KindRateLimit
	case "UNAVAILABLE", "DEADLINE_EXCEEDED":
		return KindNetwork
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return KindAuth
	}

	// Gemini reports a bad key as 400 INVALID_ARGUMENT
	if mentionsAPIKey(message) {
		return KindAuth
	}

	switch strings.ToUpper(status) {
	case "INVALID_ARGUMENT", "FAILED_PRECONDITION", "NOT_FOUND":
		return KindInvalidRequest
	}
	switch code {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusRequestEntityTooLarge:
		return KindInvalidRequest
	}
	return KindUnknown
}

func mentionsAPIKey(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "api key") || strings.Contains(msg, "api_key")
}
