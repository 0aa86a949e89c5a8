package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit or quota error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model returned content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrNotFound indicates the provider rejected the model or the credential
// scope (404, "Requested entity was not found").
type ErrNotFound struct {
	Err error
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("requested entity was not found: %v", e.Err)
}

func (e *ErrNotFound) Unwrap() error { return e.Err }

// ErrUnsupportedInput indicates the provider cannot accept part of the request,
// such as a PDF attachment or an image request.
type ErrUnsupportedInput struct {
	Provider string
	Feature  string
}

func (e *ErrUnsupportedInput) Error() string {
	return fmt.Sprintf("%s provider does not support %s", e.Provider, e.Feature)
}

// notFoundMarker is the provider message that signals a missing or
// unauthorized model for the active credential.
const notFoundMarker = "Requested entity was not found"

// IsNotFound reports whether err is a not-found class error, either typed or
// identified by the provider message.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf *ErrNotFound
	if errors.As(err, &nf) {
		return true
	}
	return strings.Contains(err.Error(), notFoundMarker)
}
